// Package repair turns raw language-model output into a JSON object.
//
// Models wrap JSON in markdown fences, use typographic quotes, and get cut
// off by output limits. Parse runs an ordered list of stages over the
// normalized text and returns the first object any stage produces:
//
//	direct   parse the normalized text as-is
//	balance  append the closing braces a truncated response is missing
//	correct  ask the model to fix its own output (only with a Corrector)
//
// Normalization is applied exactly once, before the first stage.
package repair

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Stage names, as reported in Result and ParseError.
const (
	StageDirect  = "direct"
	StageBalance = "balance"
	StageCorrect = "correct"
)

// ErrNotObject is returned when the text is valid JSON but not an object.
var ErrNotObject = errors.New("invalid response format: not an object")

// Corrector asks the model to return a corrected version of invalid JSON.
type Corrector interface {
	Correct(ctx context.Context, invalid string) (string, error)
}

// CorrectorFunc adapts a function to Corrector.
type CorrectorFunc func(ctx context.Context, invalid string) (string, error)

// Correct calls f.
func (f CorrectorFunc) Correct(ctx context.Context, invalid string) (string, error) {
	return f(ctx, invalid)
}

// Result is a successfully parsed response.
type Result struct {
	Object map[string]any
	// Stage is the stage that produced Object.
	Stage string
}

// ParseError is returned when every stage failed to produce an object.
type ParseError struct {
	// Stages lists the stages that were attempted, in order.
	Stages []string
	// Err is the failure of the last stage.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse model response (tried %s): %v", strings.Join(e.Stages, ", "), e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// CorrectionError is returned when the corrective request itself fails.
// It is not a ParseError: the response was never obtained.
type CorrectionError struct {
	Err error
}

func (e *CorrectionError) Error() string {
	return fmt.Sprintf("requesting JSON correction: %v", e.Err)
}

func (e *CorrectionError) Unwrap() error { return e.Err }

type stage struct {
	name string
	run  func(ctx context.Context, text string) (map[string]any, error)
}

// Parse extracts a JSON object from raw model output. When c is nil the
// corrective stage is skipped.
func Parse(ctx context.Context, raw string, c Corrector) (Result, error) {
	text := Normalize(raw)

	stages := []stage{
		{name: StageDirect, run: func(_ context.Context, s string) (map[string]any, error) {
			return ParseObject(s)
		}},
		{name: StageBalance, run: func(_ context.Context, s string) (map[string]any, error) {
			return ParseObject(BalanceBraces(s))
		}},
	}
	if c != nil {
		stages = append(stages, stage{name: StageCorrect, run: func(ctx context.Context, s string) (map[string]any, error) {
			fixed, err := c.Correct(ctx, s)
			if err != nil {
				return nil, &CorrectionError{Err: err}
			}
			return ParseObject(strings.TrimSpace(fixed))
		}})
	}

	var tried []string
	var lastErr error
	for _, st := range stages {
		tried = append(tried, st.name)
		obj, err := st.run(ctx, text)
		if err == nil {
			return Result{Object: obj, Stage: st.name}, nil
		}
		var ce *CorrectionError
		if errors.As(err, &ce) {
			return Result{}, err
		}
		lastErr = err
	}
	return Result{}, &ParseError{Stages: tried, Err: lastErr}
}

var (
	leadingFence  = regexp.MustCompile("^```[A-Za-z0-9_+-]*[ \\t]*\\r?\\n")
	trailingFence = regexp.MustCompile("\\r?\\n\\s*```$")
)

// Normalize strips markdown code fences, zero-width spaces and
// typographic quotes, and trims surrounding whitespace.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	s = strings.NewReplacer(
		"\u200b", "",
		"\u2018", "'",
		"\u2019", "'",
		"\u201c", `"`,
		"\u201d", `"`,
	).Replace(s)
	return strings.TrimSpace(s)
}

// BalanceBraces appends the closing braces needed to match every opening
// brace outside string literals. Excess closing braces and brackets are
// left as they are.
func BalanceBraces(s string) string {
	open, closed := 0, 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			open++
		case '}':
			closed++
		}
	}

	if open > closed {
		return s + strings.Repeat("}", open-closed)
	}
	return s
}

// ParseObject decodes s and requires the result to be a JSON object.
func ParseObject(s string) (map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok || obj == nil {
		return nil, ErrNotObject
	}
	return obj, nil
}
