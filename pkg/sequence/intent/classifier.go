package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rvemuri2/helix-backend/pkg/llm"

	"go.uber.org/zap"
)

const classificationPromptFmt = `Based on the following user request, classify the intent into one of three categories: 'add_step', 'edit_step', or 'new_sequence'.

Guidelines:
- If the request implies modifying or shortening an existing step (e.g., 'step 3 should be shorter'), output edit_step.
- If the request implies inserting an additional step, output add_step.
- Otherwise, output new_sequence.

User request: %s

Output only one word: add_step, edit_step, or new_sequence.`

// Cache memoizes verdicts for recently seen utterances.
type Cache interface {
	Get(utterance string) (string, bool)
	Save(utterance string, intent string)
}

// LLMClassifier asks the model for a one-word verdict at temperature zero.
// Any model failure or unparseable answer falls back to NewSequence so the
// chat flow keeps moving.
type LLMClassifier struct {
	provider llm.LLMProvider
	cache    Cache
	logger   *zap.Logger
}

var _ Classifier = &LLMClassifier{}

func NewLLMClassifier(provider llm.LLMProvider, cache Cache, logger *zap.Logger) *LLMClassifier {
	return &LLMClassifier{
		provider: provider,
		cache:    cache,
		logger:   logger,
	}
}

func (c *LLMClassifier) Classify(ctx context.Context, utterance string) (Intent, error) {
	if c.cache != nil {
		if cached, found := c.cache.Get(utterance); found {
			return parse(cached), nil
		}
	}

	prompt := fmt.Sprintf(classificationPromptFmt, utterance)
	answer, err := c.provider.Chat(ctx,
		[]llm.Message{{Role: "system", Content: prompt}},
		llm.WithTemperature(0),
	)
	if err != nil {
		c.logger.Warn("intent classification failed, defaulting to new_sequence", zap.Error(err))
		return NewSequence, nil
	}

	verdict := strings.ToLower(strings.TrimSpace(answer))
	result := parse(verdict)
	if c.cache != nil {
		c.cache.Save(utterance, string(result))
	}
	return result, nil
}

// KeywordClassifier is a model-free fallback built on surface cues. It keeps
// the builder usable when no LLM backend is configured.
type KeywordClassifier struct{}

var _ Classifier = &KeywordClassifier{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

var editCues = []string{"edit", "change", "shorten", "rewrite", "update", "revise", "reword"}
var addCues = []string{"add a step", "add another step", "add one more step", "append", "insert a step", "new step"}

func (c *KeywordClassifier) Classify(ctx context.Context, utterance string) (Intent, error) {
	lower := strings.ToLower(utterance)

	for _, cue := range addCues {
		if strings.Contains(lower, cue) {
			return AddStep, nil
		}
	}
	for _, cue := range editCues {
		if strings.Contains(lower, cue) {
			return EditStep, nil
		}
	}
	return NewSequence, nil
}
