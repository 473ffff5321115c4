// Package translate runs the content translation pipeline: it extracts the
// translatable fields of a record, asks a language model to translate
// them, repairs the model output and merges the result back into the
// record.
//
// Generate never returns an error. Failures are reported in the response
// envelope together with the untouched input record.
package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/minios-linux/llmtranslator/config"
	"github.com/minios-linux/llmtranslator/extract"
	"github.com/minios-linux/llmtranslator/merge"
	"github.com/minios-linux/llmtranslator/metrics"
	"github.com/minios-linux/llmtranslator/payload"
	"github.com/minios-linux/llmtranslator/repair"
	"github.com/minios-linux/llmtranslator/schema"
	"github.com/minios-linux/llmtranslator/settings"
	"github.com/minios-linux/llmtranslator/uid"
)

// Envelope messages.
const (
	MessageSuccess    = "Translation completed successfully"
	MessageNoFields   = "No translatable fields found"
	failureMessageTag = "Translation failed: "
)

// Config holds the per-request options.
type Config struct {
	// TargetLanguage is the locale code to translate into, e.g. "fr".
	TargetLanguage string `json:"targetLanguage"`
}

// Validate checks that TargetLanguage is a well-formed language tag.
func (c Config) Validate() error {
	code := strings.TrimSpace(c.TargetLanguage)
	if code == "" {
		return errors.New("target language is required")
	}
	if _, err := language.Parse(code); err != nil {
		return fmt.Errorf("invalid target language %q: %w", c.TargetLanguage, err)
	}
	return nil
}

// Meta is the status part of a Response.
type Meta struct {
	OK      bool   `json:"ok"`
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
}

// Response is the result envelope of Generate.
type Response struct {
	Data map[string]any `json:"data"`
	Meta Meta           `json:"meta"`
}

// ConfigSource supplies the stored user configuration.
type ConfigSource interface {
	Config() (settings.UserConfig, error)
}

// Service translates content records. It holds no per-request state and
// is safe for concurrent use when its collaborators are.
type Service struct {
	client      ChatClient
	settings    ConfigSource
	uids        uid.Generator
	logger      *zap.Logger
	temperature float64
	correct     bool
}

// Option configures a Service.
type Option func(*Service)

// WithSettings sets the source of the user configuration.
func WithSettings(src ConfigSource) Option {
	return func(s *Service) { s.settings = src }
}

// WithUIDGenerator sets the UID generator. A nil generator disables UID
// regeneration.
func WithUIDGenerator(g uid.Generator) Option {
	return func(s *Service) { s.uids = g }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTemperature sets the temperature used when the user configuration
// has none. It is also the temperature of correction requests.
func WithTemperature(t float64) Option {
	return func(s *Service) { s.temperature = t }
}

// WithoutCorrection disables the corrective re-query.
func WithoutCorrection() Option {
	return func(s *Service) { s.correct = false }
}

// NewService returns a Service sending requests through client.
func NewService(client ChatClient, opts ...Option) *Service {
	s := &Service{
		client:      client,
		uids:        &uid.Slugger{},
		logger:      zap.NewNop(),
		temperature: config.DefaultTemperature,
		correct:     true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate translates the translatable fields of record into
// cfg.TargetLanguage. On failure the response carries record itself and
// an error message.
func (s *Service) Generate(ctx context.Context, ct *schema.Schema, record map[string]any, components schema.Components, cfg Config) Response {
	log := s.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("content_type", contentTypeUID(ct)),
		zap.String("target_language", cfg.TargetLanguage),
	)
	start := time.Now()

	data, n, err := s.generate(ctx, log, ct, record, components, cfg)
	if err != nil {
		metrics.Requests.WithLabelValues(metrics.OutcomeFailure).Inc()
		log.Error("translation failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return Response{
			Data: record,
			Meta: Meta{OK: false, Status: http.StatusInternalServerError, Message: failureMessage(err)},
		}
	}

	if n == 0 {
		metrics.Requests.WithLabelValues(metrics.OutcomeEmpty).Inc()
		log.Info("no translatable fields")
		return Response{Data: data, Meta: Meta{OK: true, Status: http.StatusOK, Message: MessageNoFields}}
	}

	metrics.Requests.WithLabelValues(metrics.OutcomeSuccess).Inc()
	log.Info("translation completed", zap.Int("fields", n), zap.Duration("elapsed", time.Since(start)))
	return Response{Data: data, Meta: Meta{OK: true, Status: http.StatusOK, Message: MessageSuccess}}
}

func (s *Service) generate(ctx context.Context, log *zap.Logger, ct *schema.Schema, record map[string]any, components schema.Components, cfg Config) (map[string]any, int, error) {
	if ct == nil {
		return nil, 0, errors.New("content type is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, 0, err
	}
	if s.client == nil {
		return nil, 0, errors.New("no language model client configured")
	}

	fields := extract.Fields(ct, record, components)
	if len(fields) == 0 {
		return merge.Apply(record, nil, nil), 0, nil
	}
	metrics.Fields.Add(float64(len(fields)))
	log.Debug("extracted translatable fields", zap.Int("fields", len(fields)))

	uc := s.userConfig(log)
	temperature := s.temperature
	if uc.Temperature != nil {
		temperature = *uc.Temperature
	}

	prompt, err := BuildPrompt(payload.Build(fields), strings.TrimSpace(cfg.TargetLanguage))
	if err != nil {
		return nil, 0, fmt.Errorf("building prompt: %w", err)
	}

	raw, err := s.complete(ctx, CallTranslate, ChatRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: BuildSystemPrompt(uc)},
			{Role: RoleUser, Content: prompt},
		},
		Temperature: temperature,
	})
	if err != nil {
		return nil, 0, err
	}

	var corrector repair.Corrector
	if s.correct {
		corrector = repair.CorrectorFunc(func(ctx context.Context, invalid string) (string, error) {
			log.Warn("model response is not valid JSON, requesting correction")
			return s.complete(ctx, CallCorrect, ChatRequest{
				Messages: []Message{
					{Role: RoleSystem, Content: SystemPromptFix},
					{Role: RoleUser, Content: BuildCorrectionPrompt(invalid)},
				},
				Temperature: s.temperature,
			})
		})
	}

	res, err := repair.Parse(ctx, raw, corrector)
	if err != nil {
		return nil, 0, err
	}
	metrics.RepairStages.WithLabelValues(res.Stage).Inc()
	log.Debug("parsed model response", zap.String("stage", res.Stage))

	merged := merge.Apply(record, res.Object, fields)
	merged = merge.RegenerateUIDs(ctx, ct.UIDFields(), res.Object, ct.UID, merged, s.uids, log)
	return merged, len(fields), nil
}

func (s *Service) complete(ctx context.Context, call string, req ChatRequest) (string, error) {
	start := time.Now()
	text, err := s.client.Complete(ctx, req)
	metrics.ProviderDuration.WithLabelValues(call).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", newProviderError(call, err)
	}
	return text, nil
}

// userConfig returns the stored user configuration. A broken store is
// logged and treated as empty.
func (s *Service) userConfig(log *zap.Logger) settings.UserConfig {
	if s.settings == nil {
		return settings.UserConfig{}
	}
	uc, err := s.settings.Config()
	if err != nil {
		log.Warn("cannot read user configuration, using defaults", zap.Error(err))
		return settings.UserConfig{}
	}
	if err := uc.Validate(); err != nil {
		log.Warn("ignoring invalid user temperature", zap.Error(err))
		uc.Temperature = nil
	}
	return uc
}

func failureMessage(err error) string {
	return failureMessageTag + err.Error()
}

func contentTypeUID(ct *schema.Schema) string {
	if ct == nil {
		return ""
	}
	return ct.UID
}
