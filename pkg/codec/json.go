package codec

import "encoding/json"

// JSON encodes values as JSON, for peers that are not Go programs.
// Numbers decode as float64 when the destination is untyped.
type JSON struct{}

func (JSON) Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &Error{Err: err}
	}
	return data, nil
}

func (JSON) Decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return &Error{Err: err}
	}
	return nil
}
