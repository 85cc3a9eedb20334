package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rvemuri2/helix-backend/internal/constant"
	"github.com/rvemuri2/helix-backend/internal/dto"
	"github.com/rvemuri2/helix-backend/internal/entity"
	"github.com/rvemuri2/helix-backend/internal/pkg/serverutils"
	"github.com/rvemuri2/helix-backend/pkg/llm"
	"github.com/rvemuri2/helix-backend/pkg/sequence/intent"
	"github.com/rvemuri2/helix-backend/pkg/sequence/stepgen"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newChatService(store *memStore, verdict intent.Intent, provider *scriptedLLM) (IChatService, *recordingPublisher) {
	publisher := &recordingPublisher{}
	svc := NewChatService(
		&fakeFactory{store: store},
		&fixedClassifier{verdict: verdict},
		stepgen.NewGenerator(provider, zap.NewNop()),
		publisher,
		nil,
		nopLogger{},
	)
	return svc, publisher
}

func seedSequence(store *memStore, userId string, stepTitles ...string) *entity.Sequence {
	seq := &entity.Sequence{UserId: userId, Title: "Outreach"}
	repo := &fakeSequenceRepo{store: store}
	repo.Create(context.Background(), seq)

	stepRepo := &fakeStepRepo{store: store}
	for i, title := range stepTitles {
		stepRepo.Create(context.Background(), &entity.SequenceStep{
			SequenceId: seq.Id,
			StepNumber: i + 1,
			Title:      title,
			Content:    "content of " + title,
		})
	}
	return seq
}

func TestSendMessageNewSequence(t *testing.T) {
	store := newMemStore()
	provider := &scriptedLLM{
		completion: &llm.Completion{
			FunctionCall: &llm.FunctionCall{
				Name: stepgen.FunctionName,
				Arguments: `{"sequence_title": "Dentist Outreach", "steps": [
					{"step_title": "Intro", "step_content": "Hey {{First_Name}}, ..."},
					{"step_title": "Body", "step_content": "Details here."}
				]}`,
			},
		},
	}
	svc, publisher := newChatService(store, intent.NewSequence, provider)

	res, err := svc.SendMessage(context.Background(), &dto.ChatRequest{
		UserId:  "user-1",
		Message: "write an outreach sequence for dentists",
	})
	assert.NoError(t, err)
	assert.Equal(t, constant.SequenceCreatedReply, res.Reply)
	assert.Equal(t, "new_sequence", res.Intent)
	assert.Len(t, res.Sequence, 2)
	assert.NotNil(t, res.SequenceId)

	// Lazy user creation happened, with the greeting turn first.
	assert.NotNil(t, store.users["user-1"])
	assert.Equal(t, constant.DefaultGreeting, store.messages[0].Message)
	assert.Equal(t, constant.ChatMessageSenderAI, store.messages[0].Sender)
	assert.Equal(t, "write an outreach sequence for dentists", store.messages[1].Message)
	assert.Equal(t, constant.SequenceCreatedReply, store.messages[2].Message)

	assert.Len(t, store.seqs, 1)
	assert.Equal(t, "Dentist Outreach", store.seqs[0].Title)
	assert.Len(t, store.steps, 2)

	// One "created" event on the bus.
	assert.Len(t, publisher.payloads, 1)
	var event dto.SequenceUpdatedEvent
	assert.NoError(t, json.Unmarshal(publisher.payloads[0], &event))
	assert.Equal(t, "created", event.Action)
	assert.Equal(t, "user-1", event.UserId)
}

func TestSendMessageNewSequenceCapsSteps(t *testing.T) {
	store := newMemStore()
	provider := &scriptedLLM{
		completion: &llm.Completion{
			FunctionCall: &llm.FunctionCall{
				Name: stepgen.FunctionName,
				Arguments: `{"sequence_title": "Long", "steps": [
					{"step_title": "1", "step_content": "a"},
					{"step_title": "2", "step_content": "b"},
					{"step_title": "3", "step_content": "c"},
					{"step_title": "4", "step_content": "d"},
					{"step_title": "5", "step_content": "e"}
				]}`,
			},
		},
	}
	svc, _ := newChatService(store, intent.NewSequence, provider)

	res, err := svc.SendMessage(context.Background(), &dto.ChatRequest{UserId: "u", Message: "go"})
	assert.NoError(t, err)
	assert.Len(t, res.Sequence, stepgen.MaxSteps)
	assert.Len(t, store.steps, stepgen.MaxSteps)
}

func TestSendMessageNewSequenceReplacesActive(t *testing.T) {
	store := newMemStore()
	old := seedSequence(store, "u", "Old Intro", "Old Body")
	provider := &scriptedLLM{
		completion: &llm.Completion{
			FunctionCall: &llm.FunctionCall{
				Name:      stepgen.FunctionName,
				Arguments: `{"sequence_title": "Fresh", "steps": [{"step_title": "New Intro", "step_content": "x"}]}`,
			},
		},
	}
	svc, publisher := newChatService(store, intent.NewSequence, provider)

	res, err := svc.SendMessage(context.Background(), &dto.ChatRequest{UserId: "u", Message: "start over"})
	assert.NoError(t, err)
	assert.NotEqual(t, old.Id, *res.SequenceId)

	assert.Len(t, store.seqs, 1)
	assert.Equal(t, "Fresh", store.seqs[0].Title)
	for _, s := range store.steps {
		assert.NotEqual(t, old.Id, s.SequenceId)
	}

	// "deleted" for the old sequence, then "created" for the new one.
	assert.Len(t, publisher.payloads, 2)
	var first dto.SequenceUpdatedEvent
	assert.NoError(t, json.Unmarshal(publisher.payloads[0], &first))
	assert.Equal(t, "deleted", first.Action)
}

func TestSendMessageNewSequenceClarification(t *testing.T) {
	store := newMemStore()
	provider := &scriptedLLM{
		completion: &llm.Completion{Content: "Who is the audience?"},
	}
	svc, publisher := newChatService(store, intent.NewSequence, provider)

	res, err := svc.SendMessage(context.Background(), &dto.ChatRequest{UserId: "u", Message: "write something"})
	assert.NoError(t, err)
	assert.Equal(t, "Who is the audience?", res.Reply)
	assert.Equal(t, "new_sequence", res.Intent)
	assert.Empty(t, res.Sequence)
	assert.Nil(t, res.SequenceId)

	assert.Empty(t, store.seqs)
	assert.Empty(t, publisher.payloads)
	// The question is part of the transcript.
	last := store.messages[len(store.messages)-1]
	assert.Equal(t, "Who is the audience?", last.Message)
	assert.Equal(t, constant.ChatMessageSenderAI, last.Sender)
}

func TestSendMessageNewSequenceTitleFallbacks(t *testing.T) {
	store := newMemStore()
	provider := &scriptedLLM{
		completion: &llm.Completion{
			FunctionCall: &llm.FunctionCall{
				Name:      stepgen.FunctionName,
				Arguments: `{"steps": [{"step_content": "content without title"}]}`,
			},
		},
	}
	svc, _ := newChatService(store, intent.NewSequence, provider)

	_, err := svc.SendMessage(context.Background(), &dto.ChatRequest{UserId: "u", Message: "go"})
	assert.NoError(t, err)
	assert.Equal(t, constant.DefaultSequenceTitle, store.seqs[0].Title)
	assert.Equal(t, "Step 1", store.steps[0].Title)
}

func TestSendMessageAddStep(t *testing.T) {
	store := newMemStore()
	seq := seedSequence(store, "u", "Intro", "Body")
	provider := &scriptedLLM{
		chatReply: "```json\n{\"step_title\": \"Pricing\", \"step_content\": \"Plans start at $99.\"}\n```",
	}
	svc, publisher := newChatService(store, intent.AddStep, provider)

	res, err := svc.SendMessage(context.Background(), &dto.ChatRequest{UserId: "u", Message: "add a step about pricing"})
	assert.NoError(t, err)
	assert.Equal(t, constant.StepAddedReply, res.Reply)
	assert.Equal(t, "add_step", res.Intent)
	assert.Equal(t, seq.Id, *res.SequenceId)
	assert.Len(t, res.Sequence, 3)
	assert.Equal(t, 3, res.Sequence[2].StepNumber)
	assert.Equal(t, "Pricing", res.Sequence[2].StepTitle)

	assert.Len(t, publisher.payloads, 1)
	var event dto.SequenceUpdatedEvent
	assert.NoError(t, json.Unmarshal(publisher.payloads[0], &event))
	assert.Equal(t, "step_added", event.Action)
}

func TestSendMessageAddStepUnstructuredReply(t *testing.T) {
	store := newMemStore()
	seedSequence(store, "u", "Intro")
	provider := &scriptedLLM{chatReply: "Just say thanks and sign off."}
	svc, _ := newChatService(store, intent.AddStep, provider)

	res, err := svc.SendMessage(context.Background(), &dto.ChatRequest{UserId: "u", Message: "add a closing step"})
	assert.NoError(t, err)
	// Freeform output lands as both title and content.
	assert.Equal(t, "Just say thanks and sign off.", res.Sequence[1].StepTitle)
	assert.Equal(t, "Just say thanks and sign off.", res.Sequence[1].StepContent)
}

func TestSendMessageAddStepNoActiveSequence(t *testing.T) {
	store := newMemStore()
	provider := &scriptedLLM{}
	svc, _ := newChatService(store, intent.AddStep, provider)

	_, err := svc.SendMessage(context.Background(), &dto.ChatRequest{UserId: "u", Message: "add a step"})
	appErr, ok := serverutils.AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, appErr.Code)
	assert.Equal(t, "No active sequence to add a step to.", appErr.Message)

	// The user turn is still on record, and no model call was made.
	assert.Equal(t, "add a step", store.messages[len(store.messages)-1].Message)
	assert.Zero(t, provider.chatCalls)
}

func TestSendMessageEditStep(t *testing.T) {
	store := newMemStore()
	seq := seedSequence(store, "u", "Intro", "Pitch", "Close")
	provider := &scriptedLLM{chatReply: "Hey {{First_Name}}, here is a much tighter pitch."}
	svc, publisher := newChatService(store, intent.EditStep, provider)

	res, err := svc.SendMessage(context.Background(), &dto.ChatRequest{UserId: "u", Message: "step 2 should be shorter"})
	assert.NoError(t, err)
	assert.Equal(t, "Step 2 updated.", res.Reply)
	assert.Equal(t, "edit_step", res.Intent)
	assert.Equal(t, seq.Id, *res.SequenceId)

	assert.Equal(t, "Pitch", store.steps[1].Title) // title unchanged
	assert.Equal(t, "Hey {{First_Name}}, here is a much tighter pitch.", store.steps[1].Content)

	assert.Len(t, publisher.payloads, 1)
	var event dto.SequenceUpdatedEvent
	assert.NoError(t, json.Unmarshal(publisher.payloads[0], &event))
	assert.Equal(t, "step_edited", event.Action)
}

func TestSendMessageEditStepAdoptsNewTitle(t *testing.T) {
	store := newMemStore()
	seedSequence(store, "u", "Intro", "Pitch")
	provider := &scriptedLLM{chatReply: "Warm Pitch\nHey {{First_Name}}, a friendlier pitch."}
	svc, _ := newChatService(store, intent.EditStep, provider)

	_, err := svc.SendMessage(context.Background(), &dto.ChatRequest{UserId: "u", Message: "make step 2 warmer"})
	assert.NoError(t, err)
	assert.Equal(t, "Warm Pitch", store.steps[1].Title)
	assert.Equal(t, "Hey {{First_Name}}, a friendlier pitch.", store.steps[1].Content)
}

func TestSendMessageEditLastStep(t *testing.T) {
	store := newMemStore()
	seedSequence(store, "u", "Intro", "Pitch", "Close")
	provider := &scriptedLLM{chatReply: "A crisper closing paragraph."}
	svc, _ := newChatService(store, intent.EditStep, provider)

	res, err := svc.SendMessage(context.Background(), &dto.ChatRequest{UserId: "u", Message: "shorten the last step"})
	assert.NoError(t, err)
	assert.Equal(t, "Step 3 updated.", res.Reply)
	assert.Equal(t, "A crisper closing paragraph.", store.steps[2].Content)
}

func TestSendMessageEditStepClarification(t *testing.T) {
	store := newMemStore()
	seedSequence(store, "u", "Intro", "Pitch")
	provider := &scriptedLLM{chatReply: "Could you clarify what should change in step 2?"}
	svc, publisher := newChatService(store, intent.EditStep, provider)

	res, err := svc.SendMessage(context.Background(), &dto.ChatRequest{UserId: "u", Message: "fix step 2"})
	assert.NoError(t, err)
	assert.Equal(t, "clarification", res.Intent)
	assert.Len(t, res.Sequence, 2)

	// Nothing mutated, no event published.
	assert.Equal(t, "content of Pitch", store.steps[1].Content)
	assert.Empty(t, publisher.payloads)
}

func TestSendMessageEditStepErrors(t *testing.T) {
	tests := []struct {
		name        string
		stepTitles  []string
		message     string
		wantCode    int
		wantMessage string
	}{
		{
			name:        "no active sequence",
			stepTitles:  nil,
			message:     "edit step 1",
			wantCode:    400,
			wantMessage: "No active sequence to edit.",
		},
		{
			name:        "no reference in message",
			stepTitles:  []string{"Intro"},
			message:     "make it nicer",
			wantCode:    400,
			wantMessage: "Could not determine which step to edit.",
		},
		{
			name:        "step out of range",
			stepTitles:  []string{"Intro"},
			message:     "edit step 7",
			wantCode:    404,
			wantMessage: "Step 7 not found.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			if tt.stepTitles != nil {
				seedSequence(store, "u", tt.stepTitles...)
			}
			provider := &scriptedLLM{}
			svc, _ := newChatService(store, intent.EditStep, provider)

			_, err := svc.SendMessage(context.Background(), &dto.ChatRequest{UserId: "u", Message: tt.message})
			appErr, ok := serverutils.AsAppError(err)
			assert.True(t, ok)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, tt.wantMessage, appErr.Message)
			assert.Zero(t, provider.chatCalls)
		})
	}
}

func TestSendMessageEmptyMessage(t *testing.T) {
	store := newMemStore()
	svc, _ := newChatService(store, intent.NewSequence, &scriptedLLM{})

	_, err := svc.SendMessage(context.Background(), &dto.ChatRequest{UserId: "u", Message: "   "})
	appErr, ok := serverutils.AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, appErr.Code)
	assert.Equal(t, "Empty message.", appErr.Message)

	// First contact still creates the user and greeting, but no user turn.
	assert.NotNil(t, store.users["u"])
	assert.Len(t, store.messages, 1)
	assert.Equal(t, constant.DefaultGreeting, store.messages[0].Message)
}

func TestClassifyEmptyDefaultsToNewSequence(t *testing.T) {
	store := newMemStore()
	svc, _ := newChatService(store, intent.EditStep, &scriptedLLM{})

	res, err := svc.Classify(context.Background(), &dto.ClassifyRequest{Message: "  "})
	assert.NoError(t, err)
	assert.Equal(t, "new_sequence", res.Intent)

	res, err = svc.Classify(context.Background(), &dto.ClassifyRequest{Message: "shorten step 2"})
	assert.NoError(t, err)
	assert.Equal(t, "edit_step", res.Intent)
}

func TestLoadHistoryInjectsGreeting(t *testing.T) {
	store := newMemStore()
	chatRepo := &fakeChatRepo{store: store}
	chatRepo.Create(context.Background(), &entity.ChatMessage{UserId: "u", Message: "hello", Sender: constant.ChatMessageSenderUser})
	seedSequence(store, "u", "Intro")

	svc, _ := newChatService(store, intent.NewSequence, &scriptedLLM{})

	res, err := svc.LoadHistory(context.Background(), "u")
	assert.NoError(t, err)
	assert.Equal(t, constant.DefaultGreeting, res.ChatHistory[0].Message)
	assert.Equal(t, constant.ChatMessageSenderAI, res.ChatHistory[0].Sender)
	assert.Equal(t, "hello", res.ChatHistory[1].Message)
	assert.Len(t, res.Sequences, 1)
	assert.Len(t, res.Sequences[0].Steps, 1)
}

func TestLoadHistoryKeepsExistingGreeting(t *testing.T) {
	store := newMemStore()
	chatRepo := &fakeChatRepo{store: store}
	chatRepo.Create(context.Background(), &entity.ChatMessage{UserId: "u", Message: constant.DefaultGreeting, Sender: constant.ChatMessageSenderAI})
	chatRepo.Create(context.Background(), &entity.ChatMessage{UserId: "u", Message: "hi", Sender: constant.ChatMessageSenderUser})

	svc, _ := newChatService(store, intent.NewSequence, &scriptedLLM{})

	res, err := svc.LoadHistory(context.Background(), "u")
	assert.NoError(t, err)
	assert.Len(t, res.ChatHistory, 2)
}

func TestClearHistory(t *testing.T) {
	store := newMemStore()
	chatRepo := &fakeChatRepo{store: store}
	chatRepo.Create(context.Background(), &entity.ChatMessage{UserId: "u", Message: "hi", Sender: constant.ChatMessageSenderUser})
	chatRepo.Create(context.Background(), &entity.ChatMessage{UserId: "other", Message: "hi", Sender: constant.ChatMessageSenderUser})
	seedSequence(store, "u", "Intro")

	svc, _ := newChatService(store, intent.NewSequence, &scriptedLLM{})

	assert.NoError(t, svc.ClearHistory(context.Background(), "u"))
	assert.Len(t, store.messages, 1)
	assert.Equal(t, "other", store.messages[0].UserId)
	assert.Empty(t, store.seqs)
	assert.Empty(t, store.steps)
}
