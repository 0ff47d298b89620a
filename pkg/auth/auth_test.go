//go:build unix

package auth

import (
	"errors"
	"testing"

	"mwieser/conduit/pkg/conn"
)

func duplexPair(t *testing.T) (*conn.Connection, *conn.Connection) {
	t.Helper()

	a, b, err := conn.Pipe(true)
	if err != nil {
		t.Fatalf("conn.Pipe(true) error = %v", err)
	}
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return a, b
}

func TestHandshake_SameKey(t *testing.T) {
	t.Parallel()

	a, b := duplexPair(t)
	key := []byte("shared secret")

	errCh := make(chan error, 1)
	go func() {
		errCh <- AnswerChallenge(b, key)
	}()

	if err := DeliverChallenge(a, key); err != nil {
		t.Errorf("DeliverChallenge() error = %v", err)
	}
	if err := <-errCh; err != nil {
		t.Errorf("AnswerChallenge() error = %v", err)
	}
}

func TestHandshake_WrongKey(t *testing.T) {
	t.Parallel()

	a, b := duplexPair(t)

	errCh := make(chan error, 1)
	go func() {
		errCh <- AnswerChallenge(b, []byte("wrong key"))
	}()

	if err := DeliverChallenge(a, []byte("right key")); !errors.Is(err, ErrAuthentication) {
		t.Errorf("DeliverChallenge() error = %v, want ErrAuthentication", err)
	}
	if err := <-errCh; !errors.Is(err, ErrAuthentication) {
		t.Errorf("AnswerChallenge() error = %v, want ErrAuthentication", err)
	}
}

func TestAnswerChallenge_MalformedPrefix(t *testing.T) {
	t.Parallel()

	a, b := duplexPair(t)

	if err := a.SendBytes([]byte("#BOGUS#xxxxxxxxxxxxxxxxxxxx")); err != nil {
		t.Fatalf("SendBytes() error = %v", err)
	}

	if err := AnswerChallenge(b, []byte("key")); !errors.Is(err, ErrAuthentication) {
		t.Errorf("AnswerChallenge() error = %v, want ErrAuthentication", err)
	}
}

func TestDeliverChallenge_OversizedResponse(t *testing.T) {
	t.Parallel()

	a, b := duplexPair(t)

	go func() {
		// Ignore the challenge, answer with a frame over the handshake cap.
		b.RecvBytes()
		b.SendBytes(make([]byte, maxMessageLength+1))
	}()

	if err := DeliverChallenge(a, []byte("key")); err == nil {
		t.Error("DeliverChallenge() error = nil, want failure on oversized response")
	}
}
