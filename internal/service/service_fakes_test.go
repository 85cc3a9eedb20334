package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rvemuri2/helix-backend/internal/entity"
	"github.com/rvemuri2/helix-backend/internal/repository/contract"
	"github.com/rvemuri2/helix-backend/internal/repository/specification"
	"github.com/rvemuri2/helix-backend/internal/repository/unitofwork"
	"github.com/rvemuri2/helix-backend/pkg/llm"
	"github.com/rvemuri2/helix-backend/pkg/sequence/intent"

	"github.com/google/uuid"
)

// memStore is a shared in-memory backing store for the fake repositories.
// Timestamps are monotonic so ordering specifications behave like the DB.
type memStore struct {
	mu       sync.Mutex
	clock    time.Time
	users    map[string]*entity.User
	seqs     []*entity.Sequence
	steps    []*entity.SequenceStep
	messages []*entity.ChatMessage
}

func newMemStore() *memStore {
	return &memStore{
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users: make(map[string]*entity.User),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

type querySpec struct {
	id         *uuid.UUID
	userID     *string
	sequenceID *uuid.UUID
	stepNumber *int
	orderField string
	orderDesc  bool
}

func decodeSpecs(specs []specification.Specification) querySpec {
	var q querySpec
	for _, s := range specs {
		switch spec := s.(type) {
		case specification.ByID:
			id := spec.ID
			q.id = &id
		case specification.ByUserID:
			uid := spec.UserID
			q.userID = &uid
		case specification.BySequenceID:
			sid := spec.SequenceID
			q.sequenceID = &sid
		case specification.ByStepNumber:
			n := spec.StepNumber
			q.stepNumber = &n
		case specification.OrderBy:
			q.orderField = spec.Field
			q.orderDesc = spec.Desc
		}
	}
	return q
}

// --- fake unit of work ---

type fakeFactory struct {
	store *memStore
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

type fakeUow struct {
	store *memStore
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) UserRepository() contract.UserRepository {
	return &fakeUserRepo{store: u.store}
}

func (u *fakeUow) SequenceRepository() contract.SequenceRepository {
	return &fakeSequenceRepo{store: u.store}
}

func (u *fakeUow) SequenceStepRepository() contract.SequenceStepRepository {
	return &fakeStepRepo{store: u.store}
}

func (u *fakeUow) ChatMessageRepository() contract.ChatMessageRepository {
	return &fakeChatRepo{store: u.store}
}

// --- fake repositories ---

type fakeUserRepo struct {
	store *memStore
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user.CreatedAt = r.store.tick()
	r.store.users[user.Id] = user
	return nil
}

func (r *fakeUserRepo) FindById(ctx context.Context, id string) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.users[id], nil
}

type fakeSequenceRepo struct {
	store *memStore
}

func (r *fakeSequenceRepo) Create(ctx context.Context, sequence *entity.Sequence) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if sequence.Id == uuid.Nil {
		sequence.Id = uuid.New()
	}
	sequence.CreatedAt = r.store.tick()
	r.store.seqs = append(r.store.seqs, sequence)
	return nil
}

func (r *fakeSequenceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.seqs[:0]
	for _, s := range r.store.seqs {
		if s.Id != id {
			kept = append(kept, s)
		}
	}
	r.store.seqs = kept
	return nil
}

func (r *fakeSequenceRepo) DeleteAllByUserId(ctx context.Context, userId string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.seqs[:0]
	for _, s := range r.store.seqs {
		if s.UserId != userId {
			kept = append(kept, s)
		}
	}
	r.store.seqs = kept
	return nil
}

func (r *fakeSequenceRepo) matches(specs []specification.Specification) []*entity.Sequence {
	q := decodeSpecs(specs)
	var out []*entity.Sequence
	for _, s := range r.store.seqs {
		if q.id != nil && s.Id != *q.id {
			continue
		}
		if q.userID != nil && s.UserId != *q.userID {
			continue
		}
		out = append(out, s)
	}
	sortByCreatedAtSeq(out, q.orderDesc)
	return out
}

func (r *fakeSequenceRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Sequence, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := r.matches(specs)
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *fakeSequenceRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Sequence, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.matches(specs), nil
}

type fakeStepRepo struct {
	store *memStore
}

func (r *fakeStepRepo) Create(ctx context.Context, step *entity.SequenceStep) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if step.Id == uuid.Nil {
		step.Id = uuid.New()
	}
	step.CreatedAt = r.store.tick()
	r.store.steps = append(r.store.steps, step)
	return nil
}

func (r *fakeStepRepo) Update(ctx context.Context, step *entity.SequenceStep) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i, s := range r.store.steps {
		if s.Id == step.Id {
			r.store.steps[i] = step
			return nil
		}
	}
	return nil
}

func (r *fakeStepRepo) DeleteBySequenceId(ctx context.Context, sequenceId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.steps[:0]
	for _, s := range r.store.steps {
		if s.SequenceId != sequenceId {
			kept = append(kept, s)
		}
	}
	r.store.steps = kept
	return nil
}

func (r *fakeStepRepo) DeleteAllByUserId(ctx context.Context, userId string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	owned := make(map[uuid.UUID]bool)
	for _, seq := range r.store.seqs {
		if seq.UserId == userId {
			owned[seq.Id] = true
		}
	}
	kept := r.store.steps[:0]
	for _, s := range r.store.steps {
		if !owned[s.SequenceId] {
			kept = append(kept, s)
		}
	}
	r.store.steps = kept
	return nil
}

func (r *fakeStepRepo) matches(specs []specification.Specification) []*entity.SequenceStep {
	q := decodeSpecs(specs)
	var out []*entity.SequenceStep
	for _, s := range r.store.steps {
		if q.sequenceID != nil && s.SequenceId != *q.sequenceID {
			continue
		}
		if q.stepNumber != nil && s.StepNumber != *q.stepNumber {
			continue
		}
		out = append(out, s)
	}
	sortByStepNumber(out, q.orderDesc)
	return out
}

func (r *fakeStepRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SequenceStep, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := r.matches(specs)
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *fakeStepRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SequenceStep, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.matches(specs), nil
}

type fakeChatRepo struct {
	store *memStore
}

func (r *fakeChatRepo) Create(ctx context.Context, message *entity.ChatMessage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if message.Id == uuid.Nil {
		message.Id = uuid.New()
	}
	message.CreatedAt = r.store.tick()
	r.store.messages = append(r.store.messages, message)
	return nil
}

func (r *fakeChatRepo) DeleteAllByUserId(ctx context.Context, userId string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.messages[:0]
	for _, m := range r.store.messages {
		if m.UserId != userId {
			kept = append(kept, m)
		}
	}
	r.store.messages = kept
	return nil
}

func (r *fakeChatRepo) matches(specs []specification.Specification) []*entity.ChatMessage {
	q := decodeSpecs(specs)
	var out []*entity.ChatMessage
	for _, m := range r.store.messages {
		if q.userID != nil && m.UserId != *q.userID {
			continue
		}
		out = append(out, m)
	}
	sortByCreatedAtMsg(out, q.orderDesc)
	return out
}

func (r *fakeChatRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.matches(specs), nil
}

func (r *fakeChatRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.matches(specs))), nil
}

// --- sorting helpers ---

func sortByCreatedAtSeq(items []*entity.Sequence, desc bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}

func sortByCreatedAtMsg(items []*entity.ChatMessage, desc bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}

func sortByStepNumber(items []*entity.SequenceStep, desc bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return items[i].StepNumber > items[j].StepNumber
		}
		return items[i].StepNumber < items[j].StepNumber
	})
}

// --- fake collaborators ---

type fixedClassifier struct {
	verdict intent.Intent
}

func (c *fixedClassifier) Classify(ctx context.Context, utterance string) (intent.Intent, error) {
	return c.verdict, nil
}

type scriptedLLM struct {
	chatReply  string
	chatErr    error
	completion *llm.Completion
	complErr   error

	chatCalls      int
	functionsCalls int
}

func (p *scriptedLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	p.chatCalls++
	return p.chatReply, p.chatErr
}

func (p *scriptedLLM) ChatWithFunctions(ctx context.Context, history []llm.Message, fns []llm.FunctionDef, opts ...llm.Option) (*llm.Completion, error) {
	p.functionsCalls++
	return p.completion, p.complErr
}

func (p *scriptedLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, nil, opts...)
}

type recordingPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *recordingPublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }
