package dto

import "github.com/google/uuid"

const (
	StepFieldTitle   = "stepTitle"
	StepFieldContent = "stepContent"
)

type UpdateStepRequest struct {
	SequenceId uuid.UUID `json:"sequenceId" validate:"required"`
	StepNumber int       `json:"stepNumber" validate:"required,min=1"`
	Field      string    `json:"field" validate:"required,oneof=stepTitle stepContent"`
	Value      string    `json:"value"`
}

type UpdateStepResponse struct {
	SequenceId uuid.UUID `json:"sequenceId"`
	Step       StepDTO   `json:"step"`
}

// SequenceUpdatedEvent is the payload published on every sequence mutation.
// It flows over the in-process bus to the websocket hub and, best effort,
// to NATS for external consumers.
type SequenceUpdatedEvent struct {
	UserId     string    `json:"user_id"`
	SequenceId uuid.UUID `json:"sequence_id"`
	Action     string    `json:"action"` // "created" | "step_added" | "step_edited" | "deleted"
	Steps      []StepDTO `json:"steps"`
}
