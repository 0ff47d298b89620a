//go:build unix

package conn

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"time"
)

func duplexPair(t *testing.T) (*Connection, *Connection) {
	t.Helper()

	a, b, err := Pipe(true)
	if err != nil {
		t.Fatalf("Pipe(true) error = %v", err)
	}
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return a, b
}

func TestSendRecvBytes_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		size int
	}{
		{name: "empty", size: 0},
		{name: "small", size: 11},
		{name: "single write limit", size: singleWriteLimit},
		{name: "just above single write limit", size: singleWriteLimit + 1},
		{name: "large", size: 1 << 20},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			a, b := duplexPair(t)

			want := make([]byte, tc.size)
			for i := range want {
				want[i] = byte(i)
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- a.SendBytes(want)
			}()

			got, err := b.RecvBytes()
			if err != nil {
				t.Fatalf("RecvBytes() error = %v", err)
			}
			if sendErr := <-errCh; sendErr != nil {
				t.Fatalf("SendBytes() error = %v", sendErr)
			}
			if !bytes.Equal(got, want) {
				t.Errorf("RecvBytes() returned %d bytes that differ from the %d sent", len(got), len(want))
			}
		})
	}
}

func TestRecvBytes_PartialDelivery(t *testing.T) {
	t.Parallel()

	a, b := duplexPair(t)

	payload := []byte("reassembled from single byte segments")
	frame := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[4:], payload)

	go func() {
		for i := range frame {
			if _, err := a.Handle().Write(frame[i : i+1]); err != nil {
				return
			}
		}
	}()

	got, err := b.RecvBytes()
	if err != nil {
		t.Fatalf("RecvBytes() error = %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("RecvBytes() = %q, want %q", got, payload)
	}
}

func TestRecvBytesLimit_TooLong(t *testing.T) {
	t.Parallel()

	a, b := duplexPair(t)

	payload := []byte("does not fit")
	if err := a.SendBytes(payload); err != nil {
		t.Fatalf("SendBytes() error = %v", err)
	}

	_, err := b.RecvBytesLimit(len(payload) - 1)
	if !errors.Is(err, ErrTooLong) {
		t.Fatalf("RecvBytesLimit(%d) error = %v, want ErrTooLong", len(payload)-1, err)
	}

	// b is still writable, so only its read side degrades.
	if b.Readable() {
		t.Error("Readable() = true after an over-limit frame")
	}
	if _, err := b.RecvBytes(); !errors.Is(err, ErrNotReadable) {
		t.Errorf("RecvBytes() after degrade error = %v, want ErrNotReadable", err)
	}
	if err := b.SendBytes([]byte("still alive")); err != nil {
		t.Errorf("SendBytes() after degrade error = %v, want nil", err)
	}
}

func TestRecvBytes_BadDeclaredLength(t *testing.T) {
	t.Parallel()

	a, b := duplexPair(t)

	// A declared length above MaxInt32 is malformed, not merely too long.
	header := []byte{0xff, 0xff, 0xff, 0xff}
	if _, err := a.Handle().Write(header); err != nil {
		t.Fatalf("writing raw header: %v", err)
	}

	if _, err := b.RecvBytes(); !errors.Is(err, ErrBadLength) {
		t.Fatalf("RecvBytes() error = %v, want ErrBadLength", err)
	}

	// Same degrade path as an over-limit frame: the write side survives.
	if b.Readable() {
		t.Error("Readable() = true after a malformed frame length")
	}
	if _, err := b.RecvBytes(); !errors.Is(err, ErrNotReadable) {
		t.Errorf("RecvBytes() after degrade error = %v, want ErrNotReadable", err)
	}
	if err := b.SendBytes([]byte("still alive")); err != nil {
		t.Errorf("SendBytes() after degrade error = %v, want nil", err)
	}
}

func TestRecvBytesLimit_ReadOnlyEndCloses(t *testing.T) {
	t.Parallel()

	w, r, err := Pipe(false)
	if err != nil {
		t.Fatalf("Pipe(false) error = %v", err)
	}
	defer w.Close()
	defer r.Close()

	if err := w.SendBytes([]byte("too big for the reader")); err != nil {
		t.Fatalf("SendBytes() error = %v", err)
	}

	if _, err := r.RecvBytesLimit(1); !errors.Is(err, ErrTooLong) {
		t.Fatalf("RecvBytesLimit(1) error = %v, want ErrTooLong", err)
	}

	// No write path to keep, the whole connection goes down.
	if !r.Closed() {
		t.Error("Closed() = false after an over-limit frame on a read-only connection")
	}
}

func TestRecvBytesInto(t *testing.T) {
	t.Parallel()

	payload := []byte("fits exactly")

	tests := []struct {
		name      string
		bufSize   int
		offset    int
		wantShort bool
	}{
		{name: "exact capacity", bufSize: len(payload), offset: 0},
		{name: "extra capacity with offset", bufSize: len(payload) + 10, offset: 5},
		{name: "too short", bufSize: len(payload) - 1, offset: 0, wantShort: true},
		{name: "offset eats capacity", bufSize: len(payload), offset: 1, wantShort: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			a, b := duplexPair(t)

			if err := a.SendBytes(payload); err != nil {
				t.Fatalf("SendBytes() error = %v", err)
			}

			buf := make([]byte, tc.bufSize)
			n, err := b.RecvBytesInto(buf, tc.offset)

			if tc.wantShort {
				var short *BufferTooShortError
				if !errors.As(err, &short) {
					t.Fatalf("RecvBytesInto() error = %v, want BufferTooShortError", err)
				}
				if !bytes.Equal(short.Data, payload) {
					t.Errorf("BufferTooShortError.Data = %q, want %q", short.Data, payload)
				}
				return
			}

			if err != nil {
				t.Fatalf("RecvBytesInto() error = %v", err)
			}
			if n != len(payload) {
				t.Errorf("RecvBytesInto() = %d, want %d", n, len(payload))
			}
			if !bytes.Equal(buf[tc.offset:tc.offset+n], payload) {
				t.Errorf("buffer content at offset %d = %q, want %q", tc.offset, buf[tc.offset:tc.offset+n], payload)
			}
		})
	}
}

func TestRecvBytes_EndOfStream(t *testing.T) {
	t.Parallel()

	a, b := duplexPair(t)

	a.Close()

	if _, err := b.RecvBytes(); !errors.Is(err, io.EOF) {
		t.Errorf("RecvBytes() after peer close error = %v, want io.EOF", err)
	}
}

func TestRecvBytes_Truncated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  []byte
	}{
		{
			name: "mid header",
			raw:  []byte{0x00, 0x00},
		},
		{
			name: "mid payload",
			raw:  []byte{0x00, 0x00, 0x00, 0x0a, 'p', 'a', 'r'},
		},
		{
			name: "header only",
			raw:  []byte{0x00, 0x00, 0x00, 0x0a},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			a, b := duplexPair(t)

			if _, err := a.Handle().Write(tc.raw); err != nil {
				t.Fatalf("writing raw bytes: %v", err)
			}
			a.Close()

			if _, err := b.RecvBytes(); !errors.Is(err, io.ErrUnexpectedEOF) {
				t.Errorf("RecvBytes() error = %v, want io.ErrUnexpectedEOF", err)
			}
		})
	}
}

func TestHalfDuplex_CapabilityChecks(t *testing.T) {
	t.Parallel()

	w, r, err := Pipe(false)
	if err != nil {
		t.Fatalf("Pipe(false) error = %v", err)
	}
	defer w.Close()
	defer r.Close()

	if err := w.SendBytes([]byte("one way")); err != nil {
		t.Fatalf("SendBytes() on write end error = %v", err)
	}
	got, err := r.RecvBytes()
	if err != nil {
		t.Fatalf("RecvBytes() on read end error = %v", err)
	}
	if string(got) != "one way" {
		t.Errorf("RecvBytes() = %q, want %q", got, "one way")
	}

	if _, err := w.RecvBytes(); !errors.Is(err, ErrNotReadable) {
		t.Errorf("RecvBytes() on write end error = %v, want ErrNotReadable", err)
	}
	if err := r.SendBytes([]byte("x")); !errors.Is(err, ErrNotWritable) {
		t.Errorf("SendBytes() on read end error = %v, want ErrNotWritable", err)
	}
}

func TestClosedConnection(t *testing.T) {
	t.Parallel()

	a, b := duplexPair(t)
	_ = b

	a.Close()

	if err := a.SendBytes([]byte("x")); !errors.Is(err, ErrClosed) {
		t.Errorf("SendBytes() error = %v, want ErrClosed", err)
	}
	if _, err := a.RecvBytes(); !errors.Is(err, ErrClosed) {
		t.Errorf("RecvBytes() error = %v, want ErrClosed", err)
	}
	if _, err := a.Poll(0); !errors.Is(err, ErrClosed) {
		t.Errorf("Poll() error = %v, want ErrClosed", err)
	}
	if err := a.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}
}

func TestSendRecv_Messages(t *testing.T) {
	t.Parallel()

	type job struct {
		Op string
		N  int
	}

	a, b := duplexPair(t)

	want := job{Op: "ping", N: 42}
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Send(want)
	}()

	var got job
	if err := b.Recv(&got); err != nil {
		t.Fatalf("Recv() error = %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if got != want {
		t.Errorf("Recv() = %+v, want %+v", got, want)
	}
}

func TestPoll(t *testing.T) {
	t.Parallel()

	a, b := duplexPair(t)

	ready, err := b.Poll(0)
	if err != nil {
		t.Fatalf("Poll(0) error = %v", err)
	}
	if ready {
		t.Error("Poll(0) = true on an idle connection")
	}

	if err := a.SendBytes([]byte("wake up")); err != nil {
		t.Fatalf("SendBytes() error = %v", err)
	}

	ready, err = b.Poll(time.Second)
	if err != nil {
		t.Fatalf("Poll(1s) error = %v", err)
	}
	if !ready {
		t.Error("Poll(1s) = false with data pending")
	}
}
