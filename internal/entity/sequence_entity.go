package entity

import (
	"time"

	"github.com/google/uuid"
)

// Sequence is a titled, ordered collection of steps owned by one user.
// The active sequence for a user is the most recently created one.
type Sequence struct {
	Id         uuid.UUID
	UserId     string
	Title      string
	RawPayload []byte // raw function-call arguments the sequence was generated from
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
	IsDeleted  bool
}

// SequenceStep is one numbered title/content unit within a sequence.
// Step numbers are 1-based and contiguous within their sequence.
type SequenceStep struct {
	Id         uuid.UUID
	SequenceId uuid.UUID
	StepNumber int
	Title      string
	Content    string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
	IsDeleted  bool
}
