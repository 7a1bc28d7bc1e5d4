package core

import (
	"fmt"

	"github.com/google/uuid"
)

// ID is the identifier type used for all stored entities.
type ID string

func (id ID) String() string {
	return string(id)
}

func (id ID) IsZero() bool {
	return id == ""
}

// NewID generates a new random ID.
func NewID() (ID, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate ID: %w", err)
	}
	return ID(u.String()), nil
}

// MustNewID generates a new ID and panics on failure.
func MustNewID() ID {
	id, err := NewID()
	if err != nil {
		panic(err)
	}
	return id
}

// ParseID validates that s is a well-formed ID.
func ParseID(s string) (ID, error) {
	if s == "" {
		return "", fmt.Errorf("id cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("invalid id %q: %w", s, err)
	}
	return ID(s), nil
}
