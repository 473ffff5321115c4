// Package payload builds the object sent to the language model from the
// extracted translatable fields.
//
// Only the extracted leaves end up in the payload. Array indices in field
// paths become ordinary object keys ("0", "1", ...), so a payload is always
// a tree of objects addressable with the same paths the fields carry.
package payload

import (
	"github.com/minios-linux/llmtranslator/content"
)

// Build returns the nested object holding the value of every field at its
// path. Intermediate objects shared by several paths are created once.
func Build(fields []content.Field) map[string]any {
	out := make(map[string]any)
	for _, f := range fields {
		if len(f.Path) == 0 {
			continue
		}
		cur := out
		for i, seg := range f.Path {
			if i == len(f.Path)-1 {
				cur[seg] = f.Value
				break
			}
			next, ok := cur[seg].(map[string]any)
			if !ok {
				next = make(map[string]any)
				cur[seg] = next
			}
			cur = next
		}
	}
	return out
}
