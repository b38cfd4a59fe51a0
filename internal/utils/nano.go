package utils

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// SessionIDSize is the length of server-side session ids.
	SessionIDSize = 32
	// MessageIDSize is the length of contact message ids.
	MessageIDSize = 21
)

var (
	NanoidSize     = SessionIDSize
	nanoidAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NanoID returns a session sized id. It panics if the system random source
// fails.
func NanoID() string {
	return NanoIDSize(NanoidSize)
}

func NanoIDSize(size int) string {
	if size <= 0 {
		size = NanoidSize
	}

	return gonanoid.MustGenerate(nanoidAlphabet, size)
}

// NewMessageID is NanoID for request paths that report failure instead of
// panicking.
func NewMessageID() (string, error) {
	id, err := gonanoid.Generate(nanoidAlphabet, MessageIDSize)
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}

	return id, nil
}
