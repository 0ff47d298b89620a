package msg

import "encoding/gob"

func init() {
	gob.Register(Hello{})
}

// Hello identifies a peer right after its channels come up.
type Hello struct {
	ID string
}

// MsgType returns the message type identifier for Hello messages.
func (m Hello) MsgType() string {
	return "Hello"
}
