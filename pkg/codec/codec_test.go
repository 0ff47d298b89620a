package codec

import (
	"errors"
	"testing"
)

func TestGob_RoundTrip(t *testing.T) {
	t.Parallel()

	type task struct {
		Op string
		N  int
	}

	want := task{Op: "ping", N: 42}

	data, err := Gob{}.Encode(want)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var got task
	if err := (Gob{}).Decode(data, &got); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != want {
		t.Errorf("Decode() = %+v, want %+v", got, want)
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	t.Parallel()

	want := map[string]any{"op": "ping", "n": float64(42)}

	data, err := JSON{}.Encode(want)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var got map[string]any
	if err := (JSON{}).Decode(data, &got); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got["op"] != want["op"] || got["n"] != want["n"] {
		t.Errorf("Decode() = %v, want %v", got, want)
	}
}

func TestJSON_EncodeFailureIsCodecError(t *testing.T) {
	t.Parallel()

	_, err := JSON{}.Encode(make(chan int))
	var codecErr *Error
	if !errors.As(err, &codecErr) {
		t.Fatalf("Encode(chan) error = %v, want *codec.Error", err)
	}
	if codecErr.Unwrap() == nil {
		t.Error("Unwrap() = nil, want the underlying serialization error")
	}
}

func TestGob_DecodeFailureIsCodecError(t *testing.T) {
	t.Parallel()

	var out int
	err := Gob{}.Decode([]byte("not gob data"), &out)
	var codecErr *Error
	if !errors.As(err, &codecErr) {
		t.Fatalf("Decode(garbage) error = %v, want *codec.Error", err)
	}
}
