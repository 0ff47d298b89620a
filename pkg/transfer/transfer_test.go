//go:build unix

package transfer

import (
	"bytes"
	"io"
	"testing"

	"mwieser/conduit/pkg/conn"
)

func TestSendRecv_Descriptor(t *testing.T) {
	t.Parallel()

	via1, via2, err := conn.Pipe(true)
	if err != nil {
		t.Fatalf("conn.Pipe(true) error = %v", err)
	}
	defer via1.Close()
	defer via2.Close()

	// A one-way pipe whose write end travels over the socket pair.
	w, r, err := conn.Pipe(false)
	if err != nil {
		t.Fatalf("conn.Pipe(false) error = %v", err)
	}
	defer r.Close()

	if err := Send(via1, w.Handle()); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	received, err := Recv(via2, false, true)
	if err != nil {
		t.Fatalf("Recv() error = %v", err)
	}
	defer received.Close()

	if received.Readable() || !received.Writable() {
		t.Errorf("received handle flags = (%v, %v), want (false, true)", received.Readable(), received.Writable())
	}

	// The received copy must be independent of the original.
	w.Close()

	want := []byte("written through the transferred descriptor")
	if _, err := received.Write(want); err != nil {
		t.Fatalf("Write() through received handle error = %v", err)
	}
	received.Close()

	got := make([]byte, len(want))
	if _, err := io.ReadFull(r.Handle(), got); err != nil {
		t.Fatalf("reading: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("read %q, want %q", got, want)
	}
}

func TestSend_ClosedHandle(t *testing.T) {
	t.Parallel()

	via1, via2, err := conn.Pipe(true)
	if err != nil {
		t.Fatalf("conn.Pipe(true) error = %v", err)
	}
	defer via1.Close()
	defer via2.Close()

	w, r, err := conn.Pipe(false)
	if err != nil {
		t.Fatalf("conn.Pipe(false) error = %v", err)
	}
	defer r.Close()

	w.Close()
	if err := Send(via1, w.Handle()); err == nil {
		t.Error("Send() error = nil for a closed handle")
	}
}
