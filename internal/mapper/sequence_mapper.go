package mapper

import (
	"time"

	"github.com/rvemuri2/helix-backend/internal/entity"
	"github.com/rvemuri2/helix-backend/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SequenceMapper struct{}

func NewSequenceMapper() *SequenceMapper {
	return &SequenceMapper{}
}

func (m *SequenceMapper) SequenceToEntity(s *model.Sequence) *entity.Sequence {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.Sequence{
		Id:         s.Id,
		UserId:     s.UserId,
		Title:      s.Title,
		RawPayload: []byte(s.RawPayload),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  deletedAt,
		IsDeleted:  s.DeletedAt.Valid,
	}
}

func (m *SequenceMapper) SequenceToModel(s *entity.Sequence) *model.Sequence {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.Sequence{
		Id:         s.Id,
		UserId:     s.UserId,
		Title:      s.Title,
		RawPayload: datatypes.JSON(s.RawPayload),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  deletedAt,
	}
}

func (m *SequenceMapper) StepToEntity(s *model.SequenceStep) *entity.SequenceStep {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.SequenceStep{
		Id:         s.Id,
		SequenceId: s.SequenceId,
		StepNumber: s.StepNumber,
		Title:      s.Title,
		Content:    s.Content,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  deletedAt,
		IsDeleted:  s.DeletedAt.Valid,
	}
}

func (m *SequenceMapper) StepToModel(s *entity.SequenceStep) *model.SequenceStep {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.SequenceStep{
		Id:         s.Id,
		SequenceId: s.SequenceId,
		StepNumber: s.StepNumber,
		Title:      s.Title,
		Content:    s.Content,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  deletedAt,
	}
}
