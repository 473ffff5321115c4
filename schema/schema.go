// Package schema implements the content-type and component schemas that
// describe a CMS record.
//
// A schema is decoded from the JSON shape the admin panel sends:
//
//	{
//	    "uid": "api::article.article",
//	    "attributes": {
//	        "title": { "type": "string" },
//	        "slug":  { "type": "uid", "targetField": "title" },
//	        "seo":   { "type": "component", "component": "shared.seo" },
//	        "blocks": { "type": "dynamiczone", "components": ["shared.quote"] }
//	    }
//	}
//
// Attribute declaration order is preserved, since translatable fields are
// reported in that order.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Attribute types understood by the walker.
const (
	TypeString      = "string"
	TypeText        = "text"
	TypeRichText    = "richtext"
	TypeUID         = "uid"
	TypeComponent   = "component"
	TypeDynamicZone = "dynamiczone"
)

// DiscriminatorKey is the key a dynamic-zone item uses to name its component.
const DiscriminatorKey = "__component"

// Kind is the closed set of attribute shapes the walker dispatches on.
type Kind int

const (
	// KindScalar is any attribute that is neither translated nor descended
	// into (numbers, booleans, media, relations, uid, ...).
	KindScalar Kind = iota
	// KindTranslatable is a localizable string, text or richtext attribute.
	KindTranslatable
	// KindComponent is a single nested component.
	KindComponent
	// KindRepeatable is an ordered list of components of one type.
	KindRepeatable
	// KindDynamicZone is an ordered list of components of mixed types.
	KindDynamicZone
)

func (k Kind) String() string {
	switch k {
	case KindTranslatable:
		return "translatable"
	case KindComponent:
		return "component"
	case KindRepeatable:
		return "repeatable"
	case KindDynamicZone:
		return "dynamiczone"
	default:
		return "scalar"
	}
}

// I18nOptions holds the per-attribute localization override.
type I18nOptions struct {
	Localized *bool `json:"localized,omitempty"`
}

// PluginOptions holds plugin-specific attribute options.
type PluginOptions struct {
	I18n *I18nOptions `json:"i18n,omitempty"`
}

// Attribute describes one field of a schema.
type Attribute struct {
	Type        string `json:"type"`
	Component   string `json:"component,omitempty"`
	Repeatable  bool   `json:"repeatable,omitempty"`
	TargetField string `json:"targetField,omitempty"`
	// Components lists the components allowed in a dynamic zone.
	Components    []string       `json:"components,omitempty"`
	PluginOptions *PluginOptions `json:"pluginOptions,omitempty"`
}

// Localized reports whether the attribute takes part in localization.
// Only an explicit "localized": false disables it.
func (a Attribute) Localized() bool {
	if a.PluginOptions == nil || a.PluginOptions.I18n == nil || a.PluginOptions.I18n.Localized == nil {
		return true
	}
	return *a.PluginOptions.I18n.Localized
}

// Kind classifies the attribute.
func (a Attribute) Kind() Kind {
	switch a.Type {
	case TypeString, TypeText, TypeRichText:
		if a.Localized() {
			return KindTranslatable
		}
		return KindScalar
	case TypeComponent:
		if a.Repeatable {
			return KindRepeatable
		}
		return KindComponent
	case TypeDynamicZone:
		return KindDynamicZone
	default:
		return KindScalar
	}
}

// NamedAttribute is an attribute together with its field name.
type NamedAttribute struct {
	Name string
	Attribute
}

// Attributes is an ordered attribute list. It decodes from and encodes to
// a JSON object, keeping the key order of the source document.
type Attributes []NamedAttribute

// Get returns the attribute called name.
func (as Attributes) Get(name string) (Attribute, bool) {
	for _, a := range as {
		if a.Name == name {
			return a.Attribute, true
		}
	}
	return Attribute{}, false
}

// UnmarshalJSON decodes a JSON object token by token so declaration order
// survives.
func (as *Attributes) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*as = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))

	t, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := t.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("attributes: expected {, got %v", t)
	}

	var out Attributes
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := kt.(string)
		if !ok {
			return fmt.Errorf("attributes: expected string key, got %T", kt)
		}

		var attr Attribute
		if err := dec.Decode(&attr); err != nil {
			return fmt.Errorf("attribute %q: %w", name, err)
		}
		out = append(out, NamedAttribute{Name: name, Attribute: attr})
	}

	// Closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}

	*as = out
	return nil
}

// MarshalJSON encodes the attributes as a JSON object in declaration order.
func (as Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range as {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(a.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(a.Attribute)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Schema describes a content type or a component.
type Schema struct {
	UID        string     `json:"uid,omitempty"`
	Attributes Attributes `json:"attributes"`
}

// Components maps a component name (the value of a component attribute's
// "component" or of a dynamic-zone item's "__component") to its schema.
type Components map[string]*Schema

// Lookup returns the schema for name, or nil when it is not known.
func (c Components) Lookup(name string) *Schema {
	if c == nil || name == "" {
		return nil
	}
	return c[name]
}

// UIDField is a derived identifier attribute and the attribute it is
// derived from.
type UIDField struct {
	FieldName   string
	TargetField string
}

// UIDFields returns the top-level uid attributes that name a target field,
// in declaration order.
func (s *Schema) UIDFields() []UIDField {
	if s == nil {
		return nil
	}
	var out []UIDField
	for _, a := range s.Attributes {
		if a.Type == TypeUID && a.TargetField != "" {
			out = append(out, UIDField{FieldName: a.Name, TargetField: a.TargetField})
		}
	}
	return out
}
