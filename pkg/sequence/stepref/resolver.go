// Package stepref resolves which step of a sequence a chat message refers to.
package stepref

import (
	"regexp"
	"strconv"
	"strings"
)

// Ref is a resolved step reference. Last means "the last step" regardless of
// how many steps exist; otherwise Number holds the 1-based step number.
type Ref struct {
	Last   bool
	Number int
}

var (
	lastPattern    = regexp.MustCompile(`(?i)(last|final)\s+step`)
	introPattern   = regexp.MustCompile(`(?i)(intro|beginning)\s+step`)
	numberPattern  = regexp.MustCompile(`(?i)(?:the\s+)?step\s+(\d+)`)
	ordinalPattern = regexp.MustCompile(`(?i)(?:the\s+)?(first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|tenth)\s+step`)
)

var ordinals = map[string]int{
	"first":   1,
	"second":  2,
	"third":   3,
	"fourth":  4,
	"fifth":   5,
	"sixth":   6,
	"seventh": 7,
	"eighth":  8,
	"ninth":   9,
	"tenth":   10,
}

// Parse extracts a step reference from a free-form message. Checks are
// ordered: "last/final step" wins over everything ("step 2 was the last
// step" targets the last step), then "intro/beginning step" maps to step 1,
// then an explicit "step N", then spelled-out ordinals up to "tenth step".
func Parse(message string) (Ref, bool) {
	if lastPattern.MatchString(message) {
		return Ref{Last: true}, true
	}

	if introPattern.MatchString(message) {
		return Ref{Number: 1}, true
	}

	if m := numberPattern.FindStringSubmatch(message); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return Ref{Number: n}, true
		}
	}

	if m := ordinalPattern.FindStringSubmatch(message); m != nil {
		if n, ok := ordinals[strings.ToLower(m[1])]; ok {
			return Ref{Number: n}, true
		}
	}

	return Ref{}, false
}

// Resolve parses the message and maps a "last step" reference onto the
// current step count. Returns false when no reference was found or the
// sequence is empty and the reference was relative.
func Resolve(message string, total int) (int, bool) {
	ref, ok := Parse(message)
	if !ok {
		return 0, false
	}
	if ref.Last {
		if total <= 0 {
			return 0, false
		}
		return total, true
	}
	return ref.Number, true
}
