package listener

import "mwieser/conduit/pkg/codec"

// Option configures Listen and Dial.
type Option func(*options)

type options struct {
	backlog int
	authKey []byte
	codec   codec.Codec
}

func newOptions(opts []Option) *options {
	o := &options{backlog: 1}
	for _, fn := range opts {
		fn(o)
	}
	return o
}

// WithBacklog sets the listen backlog. The default of 1 fits the usual
// one-parent-one-child pairing.
func WithBacklog(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.backlog = n
		}
	}
}

// WithAuthKey enables the mutual handshake on accept and dial. An empty
// key disables authentication.
func WithAuthKey(key []byte) Option {
	return func(o *options) {
		o.authKey = key
	}
}

// WithCodec sets the codec handed to accepted and dialed connections.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}
