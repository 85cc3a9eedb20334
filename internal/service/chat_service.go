package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rvemuri2/helix-backend/internal/constant"
	"github.com/rvemuri2/helix-backend/internal/dto"
	"github.com/rvemuri2/helix-backend/internal/entity"
	"github.com/rvemuri2/helix-backend/internal/pkg/logger"
	"github.com/rvemuri2/helix-backend/internal/pkg/serverutils"
	"github.com/rvemuri2/helix-backend/internal/repository/specification"
	"github.com/rvemuri2/helix-backend/internal/repository/unitofwork"
	"github.com/rvemuri2/helix-backend/pkg/events"
	"github.com/rvemuri2/helix-backend/pkg/sequence/history"
	"github.com/rvemuri2/helix-backend/pkg/sequence/intent"
	"github.com/rvemuri2/helix-backend/pkg/sequence/stepgen"
	"github.com/rvemuri2/helix-backend/pkg/sequence/stepref"

	pktNats "github.com/rvemuri2/helix-backend/pkg/nats"

	"github.com/google/uuid"
)

// IChatService routes chat turns into sequence mutations.
type IChatService interface {
	SendMessage(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error)
	Classify(ctx context.Context, request *dto.ClassifyRequest) (*dto.ClassifyResponse, error)
	LoadHistory(ctx context.Context, userId string) (*dto.LoadHistoryResponse, error)
	ClearHistory(ctx context.Context, userId string) error
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	classifier intent.Classifier
	generator  *stepgen.Generator
	publisher  IPublisherService
	natsPub    *pktNats.Publisher
	logger     logger.ILogger
	llmLogger  *log.Logger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	classifier intent.Classifier,
	generator *stepgen.Generator,
	publisher IPublisherService,
	natsPub *pktNats.Publisher,
	sysLogger logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		classifier: classifier,
		generator:  generator,
		publisher:  publisher,
		natsPub:    natsPub,
		logger:     sysLogger,
		llmLogger:  initLLMLogger(),
	}
}

func initLLMLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "llm_helix.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM-HELIX] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

func (cs *chatService) SendMessage(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	userId := request.UserId

	// First contact creates the user and seeds the greeting turn, even when
	// the message itself turns out to be unusable.
	if err := cs.ensureUser(ctx, userId); err != nil {
		return nil, err
	}

	message := strings.TrimSpace(request.Message)
	if message == "" {
		return nil, serverutils.NewAppError(400, "Empty message.")
	}

	// The user's turn is committed before anything can fail downstream so
	// the transcript stays truthful even when generation errors out.
	if err := cs.recordUserTurn(ctx, userId, message); err != nil {
		return nil, err
	}

	verdict, err := cs.classifier.Classify(ctx, message)
	if err != nil {
		verdict = intent.NewSequence
	}
	cs.llmLogger.Printf("user=%s intent=%s message=%q", userId, verdict, message)

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	activeSequence, err := uow.SequenceRepository().FindOne(ctx,
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	switch verdict {
	case intent.AddStep:
		return cs.handleAddStep(ctx, userId, message, activeSequence)
	case intent.EditStep:
		return cs.handleEditStep(ctx, userId, message, activeSequence)
	case intent.NewSequence:
		return cs.handleNewSequence(ctx, userId, activeSequence)
	default:
		return &dto.ChatResponse{
			Reply:    "Unable to classify request. Please try again.",
			Sequence: []dto.StepDTO{},
		}, nil
	}
}

// ensureUser lazily creates the user together with the default greeting turn.
func (cs *chatService) ensureUser(ctx context.Context, userId string) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().FindById(ctx, userId)
	if err != nil {
		return err
	}
	if user != nil {
		return nil
	}

	if err := uow.UserRepository().Create(ctx, &entity.User{Id: userId}); err != nil {
		return err
	}
	greeting := &entity.ChatMessage{
		UserId:  userId,
		Message: constant.DefaultGreeting,
		Sender:  constant.ChatMessageSenderAI,
	}
	if err := uow.ChatMessageRepository().Create(ctx, greeting); err != nil {
		return err
	}
	return uow.Commit()
}

func (cs *chatService) recordUserTurn(ctx context.Context, userId, message string) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	turn := &entity.ChatMessage{
		UserId:  userId,
		Message: message,
		Sender:  constant.ChatMessageSenderUser,
	}
	if err := uow.ChatMessageRepository().Create(ctx, turn); err != nil {
		return err
	}
	return uow.Commit()
}

func (cs *chatService) handleAddStep(ctx context.Context, userId, message string, active *entity.Sequence) (*dto.ChatResponse, error) {
	if active == nil {
		return nil, serverutils.NewAppError(400, "No active sequence to add a step to.")
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.SequenceStepRepository().FindAll(ctx,
		specification.BySequenceID{SequenceID: active.Id},
		specification.OrderBy{Field: "step_number"},
	)
	if err != nil {
		return nil, err
	}

	lines := make([]string, len(existing))
	for i, s := range existing {
		lines[i] = fmt.Sprintf("%s - %s", s.Title, s.Content)
	}

	parsed, err := cs.generator.GenerateNewStep(ctx, strings.Join(lines, "\n"), message)
	if err != nil {
		cs.logger.Error("ChatService", "Step generation failed", map[string]interface{}{"error": err.Error(), "user_id": userId})
		return nil, serverutils.NewAppError(500, "Error calling the language model.")
	}

	newNum := 1
	if len(existing) > 0 {
		newNum = existing[len(existing)-1].StepNumber + 1
	}

	title := parsed.Title
	if title == "" {
		title = fmt.Sprintf("Step %d", newNum)
	}

	step := &entity.SequenceStep{
		SequenceId: active.Id,
		StepNumber: newNum,
		Title:      title,
		Content:    parsed.Content,
	}

	txn := cs.uowFactory.NewUnitOfWork(ctx)
	if err := txn.Begin(ctx); err != nil {
		return nil, err
	}
	defer txn.Rollback()
	if err := txn.SequenceStepRepository().Create(ctx, step); err != nil {
		return nil, err
	}
	if err := txn.ChatMessageRepository().Create(ctx, &entity.ChatMessage{
		UserId:  userId,
		Message: constant.StepAddedReply,
		Sender:  constant.ChatMessageSenderAI,
	}); err != nil {
		return nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}

	steps, err := cs.loadStepDTOs(ctx, active.Id)
	if err != nil {
		return nil, err
	}
	cs.publishSequenceUpdate(ctx, userId, active.Id, "step_added", steps)

	return &dto.ChatResponse{
		Reply:      constant.StepAddedReply,
		Intent:     string(intent.AddStep),
		Sequence:   steps,
		SequenceId: &active.Id,
	}, nil
}

func (cs *chatService) handleEditStep(ctx context.Context, userId, message string, active *entity.Sequence) (*dto.ChatResponse, error) {
	if active == nil {
		return nil, serverutils.NewAppError(400, "No active sequence to edit.")
	}

	ref, ok := stepref.Parse(message)
	if !ok {
		return nil, serverutils.NewAppError(400, "Could not determine which step to edit.")
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.SequenceStepRepository().FindAll(ctx,
		specification.BySequenceID{SequenceID: active.Id},
		specification.OrderBy{Field: "step_number"},
	)
	if err != nil {
		return nil, err
	}

	targetNum := ref.Number
	if ref.Last {
		if len(existing) == 0 {
			return nil, serverutils.NewAppError(400, "No steps available to edit.")
		}
		targetNum = existing[len(existing)-1].StepNumber
	}

	var target *entity.SequenceStep
	for _, s := range existing {
		if s.StepNumber == targetNum {
			target = s
			break
		}
	}
	if target == nil {
		return nil, serverutils.NewAppError(404, fmt.Sprintf("Step %d not found.", targetNum))
	}

	lines := make([]string, len(existing))
	for i, s := range existing {
		lines[i] = fmt.Sprintf("Step %d: %s - %s", s.StepNumber, s.Title, s.Content)
	}

	revision, err := cs.generator.ReviseStep(ctx, strings.Join(lines, "\n"), targetNum, target.Title, message)
	if err != nil {
		cs.logger.Error("ChatService", "Step revision failed", map[string]interface{}{"error": err.Error(), "user_id": userId})
		return nil, serverutils.NewAppError(500, "Error calling the language model for step edit.")
	}

	if revision.Clarification {
		// The model wants more input: store its question, mutate nothing.
		if err := cs.recordAITurn(ctx, userId, revision.Reply); err != nil {
			return nil, err
		}
		steps := make([]dto.StepDTO, len(existing))
		for i, s := range existing {
			steps[i] = dto.StepDTO{StepNumber: s.StepNumber, StepTitle: s.Title, StepContent: s.Content}
		}
		return &dto.ChatResponse{
			Reply:      revision.Reply,
			Intent:     "clarification",
			Sequence:   steps,
			SequenceId: &active.Id,
		}, nil
	}

	if revision.Title != "" {
		target.Title = revision.Title
	}
	target.Content = revision.Content

	confirm := fmt.Sprintf("Step %d updated.", targetNum)

	txn := cs.uowFactory.NewUnitOfWork(ctx)
	if err := txn.Begin(ctx); err != nil {
		return nil, err
	}
	defer txn.Rollback()
	if err := txn.SequenceStepRepository().Update(ctx, target); err != nil {
		return nil, err
	}
	if err := txn.ChatMessageRepository().Create(ctx, &entity.ChatMessage{
		UserId:  userId,
		Message: confirm,
		Sender:  constant.ChatMessageSenderAI,
	}); err != nil {
		return nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}

	steps, err := cs.loadStepDTOs(ctx, active.Id)
	if err != nil {
		return nil, err
	}
	cs.publishSequenceUpdate(ctx, userId, active.Id, "step_edited", steps)

	return &dto.ChatResponse{
		Reply:      confirm,
		Intent:     string(intent.EditStep),
		Sequence:   steps,
		SequenceId: &active.Id,
	}, nil
}

func (cs *chatService) handleNewSequence(ctx context.Context, userId string, active *entity.Sequence) (*dto.ChatResponse, error) {
	// Starting over always destroys the previous sequence first.
	if active != nil {
		txn := cs.uowFactory.NewUnitOfWork(ctx)
		if err := txn.Begin(ctx); err != nil {
			return nil, err
		}
		defer txn.Rollback()
		if err := txn.SequenceStepRepository().DeleteBySequenceId(ctx, active.Id); err != nil {
			return nil, err
		}
		if err := txn.SequenceRepository().Delete(ctx, active.Id); err != nil {
			return nil, err
		}
		if err := txn.Commit(); err != nil {
			return nil, err
		}
		cs.publishSequenceUpdate(ctx, userId, active.Id, "deleted", []dto.StepDTO{})
	}

	turns, err := cs.loadTurns(ctx, userId)
	if err != nil {
		return nil, err
	}

	result, err := cs.generator.GenerateSequence(ctx, history.BuildContext(stepgen.SystemPrompt, turns))
	if err != nil {
		if errors.Is(err, stepgen.ErrUnknownFunction) {
			return &dto.ChatResponse{
				Reply:    "I attempted to call an unknown function.",
				Sequence: []dto.StepDTO{},
			}, nil
		}
		cs.logger.Error("ChatService", "Sequence generation failed", map[string]interface{}{"error": err.Error(), "user_id": userId})
		return nil, serverutils.NewAppError(500, "Error calling the language model.")
	}

	if result.Clarification {
		if err := cs.recordAITurn(ctx, userId, result.Reply); err != nil {
			return nil, err
		}
		return &dto.ChatResponse{
			Reply:    result.Reply,
			Intent:   string(intent.NewSequence),
			Sequence: []dto.StepDTO{},
		}, nil
	}

	title := result.Draft.Title
	if title == "" {
		title = constant.DefaultSequenceTitle
	}

	sequence := &entity.Sequence{
		UserId:     userId,
		Title:      title,
		RawPayload: result.Raw,
	}

	txn := cs.uowFactory.NewUnitOfWork(ctx)
	if err := txn.Begin(ctx); err != nil {
		return nil, err
	}
	defer txn.Rollback()
	if err := txn.SequenceRepository().Create(ctx, sequence); err != nil {
		return nil, err
	}

	steps := make([]dto.StepDTO, 0, len(result.Draft.Steps))
	for i, draft := range result.Draft.Steps {
		stepTitle := draft.Title
		if stepTitle == "" {
			stepTitle = fmt.Sprintf("Step %d", i+1)
		}
		step := &entity.SequenceStep{
			SequenceId: sequence.Id,
			StepNumber: i + 1,
			Title:      stepTitle,
			Content:    draft.Content,
		}
		if err := txn.SequenceStepRepository().Create(ctx, step); err != nil {
			return nil, err
		}
		steps = append(steps, dto.StepDTO{StepNumber: i + 1, StepTitle: stepTitle, StepContent: draft.Content})
	}

	if err := txn.ChatMessageRepository().Create(ctx, &entity.ChatMessage{
		UserId:  userId,
		Message: constant.SequenceCreatedReply,
		Sender:  constant.ChatMessageSenderAI,
	}); err != nil {
		return nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}

	cs.publishSequenceUpdate(ctx, userId, sequence.Id, "created", steps)

	return &dto.ChatResponse{
		Reply:      constant.SequenceCreatedReply,
		Intent:     string(intent.NewSequence),
		Sequence:   steps,
		SequenceId: &sequence.Id,
	}, nil
}

func (cs *chatService) Classify(ctx context.Context, request *dto.ClassifyRequest) (*dto.ClassifyResponse, error) {
	message := strings.TrimSpace(request.Message)
	if message == "" {
		return &dto.ClassifyResponse{Intent: string(intent.NewSequence)}, nil
	}
	verdict, err := cs.classifier.Classify(ctx, message)
	if err != nil {
		verdict = intent.NewSequence
	}
	return &dto.ClassifyResponse{Intent: string(verdict)}, nil
}

func (cs *chatService) LoadHistory(ctx context.Context, userId string) (*dto.LoadHistoryResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	chatHistory := make([]dto.ChatHistoryItem, len(messages))
	for i, msg := range messages {
		chatHistory[i] = dto.ChatHistoryItem{
			Sender:    msg.Sender,
			Message:   msg.Message,
			Timestamp: msg.CreatedAt,
		}
	}

	// The panel always opens with the greeting, even for brand-new users.
	if len(chatHistory) == 0 || chatHistory[0].Sender != constant.ChatMessageSenderAI || chatHistory[0].Message != constant.DefaultGreeting {
		intro := dto.ChatHistoryItem{
			Sender:    constant.ChatMessageSenderAI,
			Message:   constant.DefaultGreeting,
			Timestamp: time.Now().UTC(),
		}
		chatHistory = append([]dto.ChatHistoryItem{intro}, chatHistory...)
	}

	sequences, err := uow.SequenceRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	sequenceDTOs := make([]dto.SequenceWithStepsDTO, 0, len(sequences))
	for _, seq := range sequences {
		steps, err := cs.loadStepDTOs(ctx, seq.Id)
		if err != nil {
			return nil, err
		}
		sequenceDTOs = append(sequenceDTOs, dto.SequenceWithStepsDTO{
			SequenceId: seq.Id,
			Title:      seq.Title,
			Steps:      steps,
		})
	}

	return &dto.LoadHistoryResponse{
		ChatHistory: chatHistory,
		Sequences:   sequenceDTOs,
	}, nil
}

func (cs *chatService) ClearHistory(ctx context.Context, userId string) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	count, err := uow.ChatMessageRepository().Count(ctx, specification.ByUserID{UserID: userId})
	if err != nil {
		return err
	}

	if err := uow.ChatMessageRepository().DeleteAllByUserId(ctx, userId); err != nil {
		return err
	}
	if err := uow.SequenceStepRepository().DeleteAllByUserId(ctx, userId); err != nil {
		return err
	}
	if err := uow.SequenceRepository().DeleteAllByUserId(ctx, userId); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	cs.logger.Info("ChatService", "Chat history cleared", map[string]interface{}{"user_id": userId, "messages": count})
	return nil
}

// --- helpers ---

func (cs *chatService) recordAITurn(ctx context.Context, userId, message string) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()
	if err := uow.ChatMessageRepository().Create(ctx, &entity.ChatMessage{
		UserId:  userId,
		Message: message,
		Sender:  constant.ChatMessageSenderAI,
	}); err != nil {
		return err
	}
	return uow.Commit()
}

func (cs *chatService) loadTurns(ctx context.Context, userId string) ([]history.Turn, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}
	turns := make([]history.Turn, len(messages))
	for i, msg := range messages {
		turns[i] = history.Turn{Sender: msg.Sender, Message: msg.Message}
	}
	return turns, nil
}

func (cs *chatService) loadStepDTOs(ctx context.Context, sequenceId uuid.UUID) ([]dto.StepDTO, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	steps, err := uow.SequenceStepRepository().FindAll(ctx,
		specification.BySequenceID{SequenceID: sequenceId},
		specification.OrderBy{Field: "step_number"},
	)
	if err != nil {
		return nil, err
	}
	dtos := make([]dto.StepDTO, len(steps))
	for i, s := range steps {
		dtos[i] = dto.StepDTO{StepNumber: s.StepNumber, StepTitle: s.Title, StepContent: s.Content}
	}
	return dtos, nil
}

func (cs *chatService) publishSequenceUpdate(ctx context.Context, userId string, sequenceId uuid.UUID, action string, steps []dto.StepDTO) {
	event := dto.SequenceUpdatedEvent{
		UserId:     userId,
		SequenceId: sequenceId,
		Action:     action,
		Steps:      steps,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		cs.logger.Error("ChatService", "Failed to marshal sequence update", map[string]interface{}{"error": err.Error()})
		return
	}

	if cs.publisher != nil {
		if err := cs.publisher.Publish(ctx, payload); err != nil {
			cs.logger.Warn("ChatService", "Failed to publish sequence update", map[string]interface{}{"error": err.Error()})
		}
	}

	if cs.natsPub != nil {
		evt := events.NewEvent("SEQUENCE_"+strings.ToUpper(action), map[string]interface{}{
			"user_id":     userId,
			"sequence_id": sequenceId.String(),
			"action":      action,
		})
		if err := cs.natsPub.Publish(ctx, evt); err != nil {
			cs.logger.Warn("ChatService", "Failed to publish NATS event", map[string]interface{}{"error": err.Error()})
		}
	}
}
