package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Sequence struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId     string         `gorm:"type:varchar(255);not null;index"` // User ownership for data isolation
	Title      string         `gorm:"type:text;not null"`
	RawPayload datatypes.JSON `gorm:"type:jsonb"` // function-call arguments as returned by the model
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (Sequence) TableName() string {
	return "sequences"
}

type SequenceStep struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SequenceId uuid.UUID      `gorm:"type:uuid;not null;index"`
	StepNumber int            `gorm:"not null;index"`
	Title      string         `gorm:"type:text;not null"`
	Content    string         `gorm:"type:text"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (SequenceStep) TableName() string {
	return "sequence_steps"
}
