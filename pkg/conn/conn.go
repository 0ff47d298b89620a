// Package conn implements framed, message-oriented connections over raw
// byte-stream handles. Every message on the wire is a 4-byte big-endian
// length followed by exactly that many payload bytes; zero-length
// payloads still carry the header.
package conn

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"mwieser/conduit/pkg/codec"
	"mwieser/conduit/pkg/handle"
)

// Payloads up to this size are concatenated with the header and sent in
// one write. Larger payloads go out as two writes since the copy would
// cost more than any small-write latency it avoids.
const singleWriteLimit = 16 * 1024

var (
	// ErrClosed is returned by operations on a closed connection.
	ErrClosed = errors.New("conn: connection is closed")

	// ErrNotReadable is returned when receiving on a write-only connection.
	ErrNotReadable = errors.New("conn: connection is write-only")

	// ErrNotWritable is returned when sending on a read-only connection.
	ErrNotWritable = errors.New("conn: connection is read-only")

	// ErrTooLong reports an inbound frame exceeding the caller's limit.
	// The connection degrades, see the note on Connection.
	ErrTooLong = errors.New("conn: message longer than receive limit")

	// ErrBadLength reports a malformed declared frame length. Same
	// recovery path as ErrTooLong but a distinct cause.
	ErrBadLength = errors.New("conn: bad message length")
)

// BufferTooShortError is returned by RecvBytesInto when the destination
// cannot hold the message. It carries the payload so no data is lost.
type BufferTooShortError struct {
	Data []byte
}

func (e *BufferTooShortError) Error() string {
	return fmt.Sprintf("conn: buffer too short for %d byte message", len(e.Data))
}

// Connection is a framed message channel over exactly one handle.
//
// A connection that receives a frame violating the length policy does
// not necessarily die: if it is still writable only its read side is
// disabled, so a half-duplex writer keeps working. A read-only
// connection in the same situation is closed.
//
// Concurrent Send and Recv from different goroutines are fine, the read
// and write paths share no state. Concurrent Close with an in-flight
// operation is not; callers must serialize that themselves.
type Connection struct {
	h *handle.Handle
	c codec.Codec

	readable bool
	writable bool
}

// New wraps a handle into a connection. A nil codec defaults to gob.
func New(h *handle.Handle, c codec.Codec) *Connection {
	if c == nil {
		c = codec.Gob{}
	}

	return &Connection{
		h:        h,
		c:        c,
		readable: h.Readable(),
		writable: h.Writable(),
	}
}

// Handle exposes the underlying handle, e.g. for descriptor transfer or
// channel multiplexing.
func (c *Connection) Handle() *handle.Handle {
	return c.h
}

// FD returns the underlying descriptor.
func (c *Connection) FD() (int, error) {
	return c.h.FD()
}

// Closed reports whether the connection has been closed.
func (c *Connection) Closed() bool {
	return c.h.Closed()
}

// Readable reports whether the read side is usable.
func (c *Connection) Readable() bool {
	return c.readable
}

// Writable reports whether the write side is usable.
func (c *Connection) Writable() bool {
	return c.writable
}

// Close releases the handle. Safe to call more than once.
func (c *Connection) Close() error {
	return c.h.Close()
}

// Send encodes v with the connection's codec and sends it as one frame.
func (c *Connection) Send(v any) error {
	if err := c.checkWrite(); err != nil {
		return err
	}

	data, err := c.c.Encode(v)
	if err != nil {
		return err
	}
	return c.sendFramed(data)
}

// SendBytes sends p as one frame.
func (c *Connection) SendBytes(p []byte) error {
	if err := c.checkWrite(); err != nil {
		return err
	}
	return c.sendFramed(p)
}

// Recv receives one frame and decodes it into v.
func (c *Connection) Recv(v any) error {
	data, err := c.recvChecked(-1)
	if err != nil {
		return err
	}
	return c.c.Decode(data, v)
}

// RecvBytes receives one frame and returns its payload.
func (c *Connection) RecvBytes() ([]byte, error) {
	return c.recvChecked(-1)
}

// RecvBytesLimit is RecvBytes with an upper bound on the accepted frame
// size. A frame over the limit yields ErrTooLong and degrades the
// connection.
func (c *Connection) RecvBytesLimit(max int) ([]byte, error) {
	if max < 0 {
		return nil, errors.New("conn: negative receive limit")
	}
	return c.recvChecked(max)
}

// RecvBytesInto receives one frame into buf starting at offset and
// returns the payload size. If the message does not fit it returns a
// BufferTooShortError carrying the payload.
func (c *Connection) RecvBytesInto(buf []byte, offset int) (int, error) {
	if offset < 0 {
		return 0, errors.New("conn: negative offset")
	}
	if offset > len(buf) {
		return 0, errors.New("conn: offset past end of buffer")
	}

	data, err := c.recvChecked(-1)
	if err != nil {
		return 0, err
	}
	if len(buf)-offset < len(data) {
		return 0, &BufferTooShortError{Data: data}
	}

	copy(buf[offset:], data)
	return len(data), nil
}

// Poll reports whether a read would find data (or end of stream) within
// the timeout. A negative timeout blocks until the connection is ready.
func (c *Connection) Poll(timeout time.Duration) (bool, error) {
	if c.h.Closed() {
		return false, ErrClosed
	}
	if !c.readable {
		return false, ErrNotReadable
	}

	ready, err := Wait([]*Connection{c}, timeout)
	if err != nil {
		return false, err
	}
	return len(ready) > 0, nil
}

func (c *Connection) checkWrite() error {
	if c.h.Closed() {
		return ErrClosed
	}
	if !c.writable {
		return ErrNotWritable
	}
	return nil
}

func (c *Connection) recvChecked(max int) ([]byte, error) {
	if c.h.Closed() {
		return nil, ErrClosed
	}
	if !c.readable {
		return nil, ErrNotReadable
	}

	data, err := c.recvFramed(max)
	if err != nil {
		if errors.Is(err, ErrTooLong) || errors.Is(err, ErrBadLength) {
			c.degrade()
		}
		return nil, err
	}
	return data, nil
}

// degrade keeps a usable write path alive when there is one. A corrupt
// inbound frame must not silence a half-duplex writer.
func (c *Connection) degrade() {
	if c.writable {
		c.readable = false
	} else {
		c.h.Close()
	}
}

func (c *Connection) sendFramed(p []byte) error {
	if len(p) > math.MaxInt32 {
		return ErrBadLength
	}

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(p)))

	if len(p) > singleWriteLimit {
		if _, err := c.h.Write(header[:]); err != nil {
			return err
		}
		_, err := c.h.Write(p)
		return err
	}

	// One write also guarantees a zero-length message never sends the
	// header as a lone segment after the peer hung up.
	buf := make([]byte, 0, len(header)+len(p))
	buf = append(buf, header[:]...)
	buf = append(buf, p...)
	_, err := c.h.Write(buf)
	return err
}

func (c *Connection) recvFramed(max int) ([]byte, error) {
	var header [4]byte
	if err := c.readFull(header[:], true); err != nil {
		return nil, err
	}

	size := binary.BigEndian.Uint32(header[:])
	if size > math.MaxInt32 {
		return nil, ErrBadLength
	}
	if max >= 0 && int(size) > max {
		return nil, ErrTooLong
	}

	payload := make([]byte, size)
	if err := c.readFull(payload, false); err != nil {
		return nil, err
	}
	return payload, nil
}

// readFull reads exactly len(p) bytes. End of stream before the first
// header byte is io.EOF; anywhere later in the frame it is
// io.ErrUnexpectedEOF, a truncated message.
func (c *Connection) readFull(p []byte, atFrameStart bool) error {
	got := 0
	for got < len(p) {
		n, err := c.h.Read(p[got:])
		if errors.Is(err, io.EOF) {
			if atFrameStart && got == 0 {
				return io.EOF
			}
			return io.ErrUnexpectedEOF
		}
		if err != nil {
			return err
		}
		got += n
	}
	return nil
}
