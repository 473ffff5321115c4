// Package uid generates values for UID (slug) attributes whose source field
// changed during translation.
package uid

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrEmptySource is returned when the target field yields no slug.
var ErrEmptySource = errors.New("uid source field is empty")

// maxSuffix bounds the "-N" suffix search of Slugger.
const maxSuffix = 1000

// Request describes one UID to generate.
type Request struct {
	// ContentTypeUID identifies the content type, e.g. "api::article.article".
	ContentTypeUID string
	// Field is the UID attribute name.
	Field string
	// TargetField is the attribute the UID is derived from.
	TargetField string
	// Data is the translated entry the UID is generated for.
	Data map[string]any
}

// Generator produces a UID value for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Slugger derives a slug from the target field of the request data.
type Slugger struct {
	// Exists reports whether slug is already used by another entry of the
	// content type. When nil every slug is considered free.
	Exists func(ctx context.Context, contentType, field, slug string) (bool, error)
}

// Generate returns the slug of req.Data[req.TargetField]. Taken slugs get
// a "-1", "-2", ... suffix.
func (s *Slugger) Generate(ctx context.Context, req Request) (string, error) {
	src, _ := req.Data[req.TargetField].(string)
	base := Slugify(src)
	if base == "" {
		return "", fmt.Errorf("%w: %s.%s", ErrEmptySource, req.ContentTypeUID, req.TargetField)
	}
	if s == nil || s.Exists == nil {
		return base, nil
	}

	candidate := base
	for i := 1; i <= maxSuffix; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		taken, err := s.Exists(ctx, req.ContentTypeUID, req.Field, candidate)
		if err != nil {
			return "", fmt.Errorf("checking uid %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("no free uid for %q after %d attempts", base, maxSuffix)
}

// Slugify lowercases s, folds diacritics and joins the remaining runs of
// letters and digits with single hyphens. Apostrophes inside words are
// dropped. Letters outside the Latin script are kept as they are.
func Slugify(s string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if sep && b.Len() > 0 {
				b.WriteByte('-')
			}
			sep = false
			b.WriteRune(r)
		case r == '\'' || r == '\u2019':
			// don't -> dont
		default:
			sep = true
		}
	}
	return b.String()
}
