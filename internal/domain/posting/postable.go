// Package posting provides the document posting engine. Posting a document
// turns its business content into immutable register movements; unposting
// removes them. Documents never write registers directly.
package posting

import (
	"context"

	"imprint/internal/core/entity"
	"imprint/internal/core/id"
)

// Postable is implemented by documents that produce register movements.
// entity.Document provides default implementations for everything except
// GetDocumentType and GenerateMovements.
type Postable interface {
	GetID() id.ID
	GetDocumentType() string
	GetPostedVersion() int
	IsPosted() bool

	// CanPost validates the document before posting.
	CanPost(ctx context.Context) error

	// MarkPosted / MarkUnposted flip the posted flag; MarkPosted also
	// increments the posting version.
	MarkPosted()
	MarkUnposted()

	// GenerateMovements produces the full movement set for the NEXT
	// posting version. It must not touch storage.
	GenerateMovements(ctx context.Context) (*MovementSet, error)
}

// MovementSet collects the movements one posting produces, grouped per
// register.
type MovementSet struct {
	ledger []entity.LedgerMovement
}

// NewMovementSet creates an empty movement set.
func NewMovementSet() *MovementSet {
	return &MovementSet{
		ledger: make([]entity.LedgerMovement, 0),
	}
}

// AddLedger appends a sales ledger movement.
func (s *MovementSet) AddLedger(m entity.LedgerMovement) {
	s.ledger = append(s.ledger, m)
}

// Ledger returns the collected sales ledger movements.
func (s *MovementSet) Ledger() []entity.LedgerMovement {
	return s.ledger
}

// IsEmpty reports whether the set contains no movements.
func (s *MovementSet) IsEmpty() bool {
	return len(s.ledger) == 0
}
