// Package langmeta describes target languages for display: canonical
// BCP 47 code, native and English names and an emoji flag.
package langmeta

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes language display metadata.
type Meta struct {
	Code    string
	Name    string
	English string
	Flag    string
}

// String renders m as "Name (code)", or the bare code when no name is known.
func (m Meta) String() string {
	if m.Name == "" || m.Name == m.Code {
		return m.Code
	}
	return m.Name + " (" + m.Code + ")"
}

func parse(code string) (language.Tag, error) {
	return language.Parse(strings.ReplaceAll(strings.TrimSpace(code), "_", "-"))
}

// Canonicalize returns the canonical form of a language code, accepting
// POSIX-style separators such as pt_br.
func Canonicalize(code string) (string, error) {
	tag, err := parse(code)
	if err != nil {
		return "", err
	}
	return tag.String(), nil
}

// Resolve returns best-effort metadata for code. Unparseable codes are
// returned as their own name without a flag.
func Resolve(code string) Meta {
	tag, err := parse(code)
	if err != nil {
		return Meta{Code: code, Name: code}
	}
	m := Meta{
		Code:    tag.String(),
		Name:    display.Self.Name(tag),
		English: display.English.Tags().Name(tag),
	}
	if m.Name == "" {
		m.Name = m.Code
	}
	if region, conf := tag.Region(); conf != language.No {
		m.Flag = flagFromRegion(region.String())
	}
	return m
}

// flagFromRegion maps an ISO 3166 alpha-2 region to its regional
// indicator pair.
func flagFromRegion(region string) string {
	if len(region) != 2 {
		return ""
	}
	var b strings.Builder
	for _, r := range strings.ToUpper(region) {
		if r < 'A' || r > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + r - 'A')
	}
	return b.String()
}
