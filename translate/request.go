package translate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/minios-linux/llmtranslator/schema"
)

// Request is the body of a translation request, as sent by the admin
// panel and accepted by the CLI.
type Request struct {
	// ContentType is either a content-type schema object or the uid of a
	// schema known to the registry.
	ContentType json.RawMessage `json:"contentType"`
	// Fields is the record to translate.
	Fields map[string]any `json:"fields"`
	// Components maps component names to their schemas.
	Components schema.Components `json:"components,omitempty"`
	// TargetLanguage is the locale code to translate into.
	TargetLanguage string `json:"targetLanguage"`
}

// ErrNoContentType is returned by Resolve when the request carries no
// content type.
var ErrNoContentType = errors.New("contentType is required")

// Resolve returns the content type and components of the request. A uid
// content type is looked up in reg, and components missing from the
// request are taken from reg. reg may be nil.
func (r Request) Resolve(reg *schema.Registry) (*schema.Schema, schema.Components, error) {
	raw := bytes.TrimSpace(r.ContentType)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil, ErrNoContentType
	}

	var ct *schema.Schema
	if raw[0] == '"' {
		var uid string
		if err := json.Unmarshal(raw, &uid); err != nil {
			return nil, nil, fmt.Errorf("parsing contentType: %w", err)
		}
		if reg == nil {
			return nil, nil, fmt.Errorf("content type %q: no schema registry loaded", uid)
		}
		found, ok := reg.Lookup(uid)
		if !ok {
			return nil, nil, fmt.Errorf("unknown content type %q", uid)
		}
		ct = found
	} else {
		parsed, err := schema.Parse(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing contentType: %w", err)
		}
		ct = parsed
	}

	comps := make(schema.Components)
	if reg != nil {
		for name, c := range reg.Components() {
			comps[name] = c
		}
	}
	for name, c := range r.Components {
		comps[name] = c
	}
	return ct, comps, nil
}

// Config returns the per-request options.
func (r Request) Config() Config {
	return Config{TargetLanguage: r.TargetLanguage}
}
