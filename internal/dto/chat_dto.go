package dto

import (
	"time"

	"github.com/google/uuid"
)

type ChatRequest struct {
	UserId  string `json:"user_id" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// StepDTO mirrors the wire format the sequence panel consumes.
type StepDTO struct {
	StepNumber  int    `json:"stepNumber"`
	StepTitle   string `json:"stepTitle"`
	StepContent string `json:"stepContent"`
}

type ChatResponse struct {
	Reply      string     `json:"reply"`
	Intent     string     `json:"intent,omitempty"`
	Sequence   []StepDTO  `json:"sequence"`
	SequenceId *uuid.UUID `json:"sequenceId,omitempty"`
}

type ClassifyRequest struct {
	Message string `json:"message"`
}

type ClassifyResponse struct {
	Intent string `json:"intent"`
}

type ChatHistoryItem struct {
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type SequenceWithStepsDTO struct {
	SequenceId uuid.UUID `json:"sequence_id"`
	Title      string    `json:"title"`
	Steps      []StepDTO `json:"steps"`
}

type LoadHistoryResponse struct {
	ChatHistory []ChatHistoryItem      `json:"chat_history"`
	Sequences   []SequenceWithStepsDTO `json:"sequences"`
}
