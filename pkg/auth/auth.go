// Package auth implements the mutual challenge-response handshake that
// gates connections when a shared key is configured. The key itself
// never crosses the wire; each side proves possession by answering a
// random nonce with a keyed digest.
package auth

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"mwieser/conduit/pkg/conn"
)

const nonceLength = 20

// Frames larger than this are rejected during the handshake so a bogus
// peer cannot make us buffer arbitrary amounts of data.
const maxMessageLength = 256

var (
	challengePrefix = []byte("#CHALLENGE#")
	welcomeMarker   = []byte("#WELCOME#")
	failureMarker   = []byte("#FAILURE#")
)

// ErrAuthentication reports a failed handshake. The connection must be
// treated as unusable and closed by the caller.
var ErrAuthentication = errors.New("auth: authentication failed")

// DeliverChallenge sends a random nonce and verifies the peer's keyed
// digest, then announces the verdict with a welcome or failure marker.
func DeliverChallenge(c *conn.Connection, key []byte) error {
	nonce := make([]byte, nonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("rand.Read(): %w", err)
	}

	message := make([]byte, 0, len(challengePrefix)+len(nonce))
	message = append(message, challengePrefix...)
	message = append(message, nonce...)
	if err := c.SendBytes(message); err != nil {
		return fmt.Errorf("sending challenge: %w", err)
	}

	response, err := c.RecvBytesLimit(maxMessageLength)
	if err != nil {
		return fmt.Errorf("receiving digest: %w", err)
	}

	if hmac.Equal(response, digest(key, nonce)) {
		if err := c.SendBytes(welcomeMarker); err != nil {
			return fmt.Errorf("sending welcome: %w", err)
		}
		return nil
	}

	_ = c.SendBytes(failureMarker) // best effort, we fail either way
	return fmt.Errorf("%w: digest received was wrong", ErrAuthentication)
}

// AnswerChallenge answers the peer's nonce with a keyed digest and waits
// for its verdict.
func AnswerChallenge(c *conn.Connection, key []byte) error {
	message, err := c.RecvBytesLimit(maxMessageLength)
	if err != nil {
		return fmt.Errorf("receiving challenge: %w", err)
	}
	if !bytes.HasPrefix(message, challengePrefix) {
		return fmt.Errorf("%w: malformed challenge", ErrAuthentication)
	}
	nonce := message[len(challengePrefix):]

	if err := c.SendBytes(digest(key, nonce)); err != nil {
		return fmt.Errorf("sending digest: %w", err)
	}

	verdict, err := c.RecvBytesLimit(maxMessageLength)
	if err != nil {
		return fmt.Errorf("receiving verdict: %w", err)
	}
	if !bytes.Equal(verdict, welcomeMarker) {
		return fmt.Errorf("%w: digest was rejected", ErrAuthentication)
	}
	return nil
}

func digest(key, nonce []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(nonce)
	return mac.Sum(nil)
}
