// Package extract finds the translatable fields of a CMS record.
//
// The record is walked together with its schema: every attribute of the
// schema is looked up in the record, in declaration order, and dispatched
// on its kind. Localizable string leaves are collected; components,
// repeatable components and dynamic zones are descended into. Branches
// whose schema cannot be resolved, or whose value is absent or null,
// contribute nothing.
package extract

import (
	"strconv"

	"github.com/minios-linux/llmtranslator/content"
	"github.com/minios-linux/llmtranslator/schema"
)

// Fields returns the translatable fields of instance, depth-first and in
// attribute declaration order. The result is the same for the same input.
func Fields(ct *schema.Schema, instance map[string]any, components schema.Components) []content.Field {
	if ct == nil || instance == nil {
		return nil
	}
	w := &walker{components: components}
	w.walk(ct, instance, nil)
	return w.fields
}

type walker struct {
	components schema.Components
	fields     []content.Field
}

func (w *walker) walk(s *schema.Schema, data map[string]any, path content.Path) {
	for _, attr := range s.Attributes {
		value, ok := data[attr.Name]
		if !ok || value == nil {
			continue
		}
		fieldPath := path.Child(attr.Name)

		switch attr.Kind() {
		case schema.KindTranslatable:
			if str, ok := value.(string); ok {
				w.fields = append(w.fields, content.Field{
					Path:         fieldPath,
					Value:        str,
					OriginalPath: fieldPath.Child(),
				})
			}

		case schema.KindComponent:
			comp := w.components.Lookup(attr.Component)
			if comp == nil {
				continue
			}
			if obj, ok := value.(map[string]any); ok {
				w.walk(comp, obj, fieldPath)
			}

		case schema.KindRepeatable:
			comp := w.components.Lookup(attr.Component)
			if comp == nil {
				continue
			}
			switch v := value.(type) {
			case []any:
				for i, item := range v {
					if obj, ok := item.(map[string]any); ok {
						w.walk(comp, obj, fieldPath.Child(strconv.Itoa(i)))
					}
				}
			case map[string]any:
				// A single object stored under a repeatable attribute is
				// walked as a lone component.
				w.walk(comp, v, fieldPath)
			}

		case schema.KindDynamicZone:
			items, ok := value.([]any)
			if !ok {
				continue
			}
			for i, item := range items {
				obj, ok := item.(map[string]any)
				if !ok {
					continue
				}
				name, _ := obj[schema.DiscriminatorKey].(string)
				comp := w.components.Lookup(name)
				if comp == nil {
					continue
				}
				w.walk(comp, obj, fieldPath.Child(strconv.Itoa(i)))
			}

		case schema.KindScalar:
			// Not translated, not descended into.
		}
	}
}
