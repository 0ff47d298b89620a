// Package msg defines the gob-encoded messages exchanged on a control
// channel after two processes have paired their connection.
package msg

import (
	"encoding/gob"
	"fmt"
	"io"
)

// Message is implemented by every control message type.
type Message interface {
	MsgType() string
}

// Send gob-encodes m onto the control channel.
func Send(w io.Writer, m Message) error {
	if err := gob.NewEncoder(w).Encode(&m); err != nil {
		return fmt.Errorf("encoding %s: %w", m.MsgType(), err)
	}
	return nil
}

// Recv decodes the next control message from the channel.
func Recv(r io.Reader) (Message, error) {
	var m Message
	if err := gob.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding message: %w", err)
	}
	return m, nil
}
