package codec

import (
	"bytes"
	"encoding/gob"
)

// Gob encodes values with encoding/gob. It is the default codec for
// connections between Go processes.
type Gob struct{}

func (Gob) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, &Error{Err: err}
	}
	return buf.Bytes(), nil
}

func (Gob) Decode(data []byte, v any) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return &Error{Err: err}
	}
	return nil
}

// Register makes a concrete type transmittable inside interface-typed
// fields. It forwards to gob.Register.
func Register(v any) {
	gob.Register(v)
}
