package service

import (
	"context"
	"encoding/json"

	"github.com/rvemuri2/helix-backend/internal/dto"
	"github.com/rvemuri2/helix-backend/internal/pkg/logger"
	"github.com/rvemuri2/helix-backend/internal/pkg/serverutils"
	"github.com/rvemuri2/helix-backend/internal/repository/specification"
	"github.com/rvemuri2/helix-backend/internal/repository/unitofwork"
)

// ISequenceService covers direct (non-chat) sequence manipulation from the
// panel, currently just inline step edits.
type ISequenceService interface {
	UpdateStep(ctx context.Context, request *dto.UpdateStepRequest) (*dto.UpdateStepResponse, error)
}

type sequenceService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  IPublisherService
	logger     logger.ILogger
}

func NewSequenceService(
	uowFactory unitofwork.RepositoryFactory,
	publisher IPublisherService,
	sysLogger logger.ILogger,
) ISequenceService {
	return &sequenceService{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     sysLogger,
	}
}

func (ss *sequenceService) UpdateStep(ctx context.Context, request *dto.UpdateStepRequest) (*dto.UpdateStepResponse, error) {
	uow := ss.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	sequence, err := uow.SequenceRepository().FindOne(ctx, specification.ByID{ID: request.SequenceId})
	if err != nil {
		return nil, err
	}
	if sequence == nil {
		return nil, serverutils.NewAppError(404, "Step not found.")
	}

	step, err := uow.SequenceStepRepository().FindOne(ctx,
		specification.BySequenceID{SequenceID: request.SequenceId},
		specification.ByStepNumber{StepNumber: request.StepNumber},
	)
	if err != nil {
		return nil, err
	}
	if step == nil {
		return nil, serverutils.NewAppError(404, "Step not found.")
	}

	switch request.Field {
	case dto.StepFieldTitle:
		step.Title = request.Value
	case dto.StepFieldContent:
		step.Content = request.Value
	default:
		return nil, serverutils.NewAppError(400, "Invalid field.")
	}

	// Re-applying the same value is a no-op from the caller's point of view.
	if err := uow.SequenceStepRepository().Update(ctx, step); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	ss.publishUpdate(ctx, sequence.UserId, request)

	return &dto.UpdateStepResponse{
		SequenceId: request.SequenceId,
		Step: dto.StepDTO{
			StepNumber:  step.StepNumber,
			StepTitle:   step.Title,
			StepContent: step.Content,
		},
	}, nil
}

func (ss *sequenceService) publishUpdate(ctx context.Context, userId string, request *dto.UpdateStepRequest) {
	if ss.publisher == nil {
		return
	}

	uow := ss.uowFactory.NewUnitOfWork(ctx)
	steps, err := uow.SequenceStepRepository().FindAll(ctx,
		specification.BySequenceID{SequenceID: request.SequenceId},
		specification.OrderBy{Field: "step_number"},
	)
	if err != nil {
		ss.logger.Warn("SequenceService", "Failed to load steps for update event", map[string]interface{}{"error": err.Error()})
		return
	}

	dtos := make([]dto.StepDTO, len(steps))
	for i, s := range steps {
		dtos[i] = dto.StepDTO{StepNumber: s.StepNumber, StepTitle: s.Title, StepContent: s.Content}
	}

	payload, err := json.Marshal(dto.SequenceUpdatedEvent{
		UserId:     userId,
		SequenceId: request.SequenceId,
		Action:     "step_edited",
		Steps:      dtos,
	})
	if err != nil {
		return
	}
	if err := ss.publisher.Publish(ctx, payload); err != nil {
		ss.logger.Warn("SequenceService", "Failed to publish step update", map[string]interface{}{"error": err.Error()})
	}
}
