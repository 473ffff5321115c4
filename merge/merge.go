// Package merge writes translated values back into a CMS record.
package merge

import (
	"context"

	"go.uber.org/zap"

	"github.com/minios-linux/llmtranslator/content"
	"github.com/minios-linux/llmtranslator/metrics"
	"github.com/minios-linux/llmtranslator/schema"
	"github.com/minios-linux/llmtranslator/uid"
)

// Apply returns a deep copy of original with the value found in translated
// at each field's Path written at the field's OriginalPath.
//
// Fields missing from translated keep their original value. Nothing
// outside the recorded original paths is modified, and original is never
// mutated.
func Apply(original, translated map[string]any, fields []content.Field) map[string]any {
	out := content.CloneMap(original)
	if out == nil {
		out = make(map[string]any)
	}
	for _, f := range fields {
		v, ok := content.Get(translated, f.Path)
		if !ok {
			continue
		}
		content.Set(out, f.OriginalPath, content.Clone(v))
	}
	return out
}

// RegenerateUIDs overlays freshly generated values for every UID field
// whose target field is present at the top level of translated. The
// values are written into merged, which is also returned.
//
// Fields are processed in order and each generator call sees the UIDs
// generated before it. A generator failure is logged and that field keeps
// its merged value.
func RegenerateUIDs(
	ctx context.Context,
	uidFields []schema.UIDField,
	translated map[string]any,
	contentTypeUID string,
	merged map[string]any,
	gen uid.Generator,
	logger *zap.Logger,
) map[string]any {
	if logger == nil {
		logger = zap.NewNop()
	}
	if merged == nil {
		merged = make(map[string]any)
	}
	if gen == nil {
		return merged
	}

	for _, f := range uidFields {
		target, ok := translated[f.TargetField]
		if !ok {
			continue
		}

		data := make(map[string]any, len(merged)+1)
		for k, v := range merged {
			data[k] = v
		}
		data[f.TargetField] = target

		value, err := gen.Generate(ctx, uid.Request{
			ContentTypeUID: contentTypeUID,
			Field:          f.FieldName,
			TargetField:    f.TargetField,
			Data:           data,
		})
		if err != nil {
			metrics.UIDFailures.Inc()
			logger.Warn("failed to generate uid",
				zap.String("content_type", contentTypeUID),
				zap.String("field", f.FieldName),
				zap.String("target_field", f.TargetField),
				zap.Error(err),
			)
			continue
		}
		merged[f.FieldName] = value
	}
	return merged
}
