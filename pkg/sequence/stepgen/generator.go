// Package stepgen turns chat context into sequence mutations through the
// model: full sequence generation, single-step append, and step revision.
package stepgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rvemuri2/helix-backend/pkg/llm"

	"go.uber.org/zap"
)

// MaxSteps caps how many generated steps are kept per sequence.
const MaxSteps = 4

// FunctionName identifies the single callable function offered to the model
// when a new sequence is requested.
const FunctionName = "performTaskInSequences"

// SystemPrompt is prepended to every generation context.
const SystemPrompt = `You are Helix, an AI assistant that generates fully personalized and actionable multi-step sequences for sales, outreach, or letters. Ask a clarifying question if the user's request is too vague. The first step must be a personalized greeting and introduction that starts with 'Hey {{First_Name}},' followed by an introductory paragraph. Subsequent steps should provide the detailed body of the message. Return your output as a JSON object with two keys: 'step_title' and 'step_content'.`

const functionDescription = `Generate a multi-step sequence based on the user's request. Return a JSON object with keys 'sequence_title' and 'steps', where each step is an object with keys 'step_title' and 'step_content'. If the user's request is vague, ask a clarifying question before generating the sequence.`

const appendPromptFmt = `You are Helix, an AI assistant that appends a new step to an existing sequence. Do not modify any existing steps. The current sequence is:
%s
Based on the following user request, generate one new step as a JSON object with keys 'step_title' and 'step_content'. Ensure the style matches the existing steps. Do not change any other step.`

const editPromptFmt = `You are Helix, a friendly AI assistant. The current sequence is:
%s
Your task is to update only the content of step %d (currently titled '%s') so that it fits naturally with the rest of the sequence in a warm, human tone. Incorporate the following user request into the revised content: %s
Return only the final revised version of the step content as a single paragraph without any step number, title, or markdown formatting. If a new title is warranted due to a topic shift, output the new title on the first line (without markdown symbols), followed by the revised content on the next line. Do not modify any other step.`

// SequenceResult is the outcome of a full generation attempt. Clarification
// means the model answered in plain text instead of calling the function; the
// Reply should be relayed to the user as-is and nothing is persisted.
type SequenceResult struct {
	Clarification bool
	Reply         string
	Draft         *SequenceDraft

	// Raw is the undecoded function-call payload, kept for auditing.
	Raw []byte
}

// ErrUnknownFunction is returned when the model calls a function that was
// never declared.
var ErrUnknownFunction = errors.New("model called an unknown function")

// Revision is the outcome of a step edit attempt. Clarification again means
// no mutation: relay Reply and wait for the user. Title is empty when the
// existing title should be kept.
type Revision struct {
	Clarification bool
	Reply         string
	Title         string
	Content       string
}

type Generator struct {
	provider llm.LLMProvider
	logger   *zap.Logger
}

func NewGenerator(provider llm.LLMProvider, logger *zap.Logger) *Generator {
	return &Generator{
		provider: provider,
		logger:   logger,
	}
}

func sequenceFunction() llm.FunctionDef {
	return llm.FunctionDef{
		Name:        FunctionName,
		Description: functionDescription,
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"sequence_title": map[string]interface{}{
					"type":        "string",
					"description": "Short title for the whole sequence.",
				},
				"steps": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"step_title":   map[string]interface{}{"type": "string"},
							"step_content": map[string]interface{}{"type": "string"},
						},
						"required": []string{"step_title", "step_content"},
					},
				},
			},
			"required": []string{"sequence_title", "steps"},
		},
	}
}

// GenerateSequence runs the function-calling turn over the full chat context.
// The caller is responsible for including SystemPrompt at the head of history.
func (g *Generator) GenerateSequence(ctx context.Context, history []llm.Message) (*SequenceResult, error) {
	completion, err := g.provider.ChatWithFunctions(ctx, history, []llm.FunctionDef{sequenceFunction()})
	if err != nil {
		return nil, fmt.Errorf("sequence generation: %w", err)
	}

	if completion.FunctionCall == nil {
		// Plain text answer: the model is asking a clarifying question.
		return &SequenceResult{
			Clarification: true,
			Reply:         strings.TrimSpace(completion.Content),
		}, nil
	}

	if completion.FunctionCall.Name != FunctionName {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, completion.FunctionCall.Name)
	}

	// Undecodable arguments degrade to an empty draft rather than failing
	// the whole turn; the title fallback kicks in downstream.
	var draft SequenceDraft
	args := StripCodeFence(completion.FunctionCall.Arguments)
	if err := json.Unmarshal([]byte(args), &draft); err != nil {
		g.logger.Warn("discarding undecodable function arguments", zap.Error(err))
		draft = SequenceDraft{}
	}

	if len(draft.Steps) > MaxSteps {
		g.logger.Debug("truncating generated sequence",
			zap.Int("generated", len(draft.Steps)),
			zap.Int("kept", MaxSteps))
		draft.Steps = draft.Steps[:MaxSteps]
	}

	return &SequenceResult{Draft: &draft, Raw: []byte(args)}, nil
}

// GenerateNewStep asks for one additional step matching the style of the
// steps rendered in stepsText.
func (g *Generator) GenerateNewStep(ctx context.Context, stepsText, utterance string) (ParsedStep, error) {
	prompt := fmt.Sprintf(appendPromptFmt, stepsText)
	reply, err := g.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: prompt},
		{Role: "user", Content: utterance},
	})
	if err != nil {
		return ParsedStep{}, fmt.Errorf("step generation: %w", err)
	}
	return ParseStep(reply), nil
}

// ReviseStep rewrites the content of one step. A reply mentioning "clarify"
// is treated as a question back to the user and causes no mutation. A
// multi-line reply may carry a replacement title on its first line; the title
// is only adopted when it actually differs from the current one.
func (g *Generator) ReviseStep(ctx context.Context, contextText string, stepNumber int, currentTitle, utterance string) (Revision, error) {
	// The utterance is embedded in the prompt itself; no separate user turn.
	prompt := fmt.Sprintf(editPromptFmt, contextText, stepNumber, currentTitle, utterance)
	reply, err := g.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: prompt},
	})
	if err != nil {
		return Revision{}, fmt.Errorf("step revision: %w", err)
	}

	reply = strings.TrimSpace(reply)
	if strings.Contains(strings.ToLower(reply), "clarify") {
		return Revision{Clarification: true, Reply: reply}, nil
	}

	revision := Revision{Content: reply}
	if idx := strings.Index(reply, "\n"); idx >= 0 {
		candidate := strings.TrimSpace(reply[:idx])
		rest := strings.TrimSpace(reply[idx+1:])
		if candidate != "" && rest != "" {
			if strings.EqualFold(candidate, currentTitle) {
				// Echoed current title, drop the line but keep the title.
				revision.Content = rest
			} else {
				revision.Title = candidate
				revision.Content = rest
			}
		}
	}

	// Models sometimes echo the title at the head of the content anyway.
	titlePrefix := regexp.MustCompile(`^` + regexp.QuoteMeta(currentTitle) + `[\s:\-]*`)
	revision.Content = strings.TrimSpace(titlePrefix.ReplaceAllString(revision.Content, ""))

	return revision, nil
}
