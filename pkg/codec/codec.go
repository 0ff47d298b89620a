// Package codec defines the serialization contract used by framed
// connections. The connection layer treats a codec as a black box: it
// hands over a value, gets bytes, and propagates failures without
// interpreting them.
package codec

// Codec turns values into bytes and back. Implementations must be safe
// for use from multiple goroutines.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

// Error wraps a serialization failure so callers can tell it apart from
// transport errors.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return "codec: " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
