// Package intent classifies a chat utterance into one of the sequence
// builder's three routing intents.
package intent

import "context"

type Intent string

const (
	NewSequence Intent = "new_sequence"
	AddStep     Intent = "add_step"
	EditStep    Intent = "edit_step"
)

// Classifier decides how an utterance should be routed. Implementations must
// never fail the request path: when in doubt, return NewSequence.
type Classifier interface {
	Classify(ctx context.Context, utterance string) (Intent, error)
}

// parse normalizes a raw model answer into an intent, falling back to
// NewSequence for anything unrecognized.
func parse(raw string) Intent {
	switch Intent(raw) {
	case AddStep:
		return AddStep
	case EditStep:
		return EditStep
	default:
		return NewSequence
	}
}
