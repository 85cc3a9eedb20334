package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BySequenceID filters steps belonging to a sequence
type BySequenceID struct {
	SequenceID uuid.UUID
}

func (s BySequenceID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("sequence_id = ?", s.SequenceID)
}

// ByStepNumber filters by the 1-based step number within a sequence
type ByStepNumber struct {
	StepNumber int
}

func (s ByStepNumber) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("step_number = ?", s.StepNumber)
}

