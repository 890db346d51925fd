package models

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDProvider hands out identifiers for new entities.
type IDProvider interface {
	NewID() string
}

type uuidProvider struct{}

func (uuidProvider) NewID() string { return uuid.NewString() }

// UUIDs is the production id provider (UUID version 4).
var UUIDs IDProvider = uuidProvider{}

// SequenceIDs returns predictable ids ("<prefix>-1", "<prefix>-2", ...).
type SequenceIDs struct {
	Prefix string

	mu sync.Mutex
	n  int
}

func (s *SequenceIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", s.Prefix, s.n)
}
