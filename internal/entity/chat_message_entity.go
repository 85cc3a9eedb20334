package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one recorded turn in a user's conversation history.
// Turns are append-only; Sender is "user" or "ai".
type ChatMessage struct {
	Id        uuid.UUID
	UserId    string
	Message   string
	Sender    string
	CreatedAt time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
