// Package server exposes the translator over HTTP for the admin panel.
//
// Routes:
//
//	POST /generate   translate a record, body is a translate.Request
//	GET  /config     stored user configuration ({} when none)
//	POST /config     replace the stored user configuration
//	GET  /healthz    liveness probe
//	GET  /metrics    Prometheus metrics (optional)
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/minios-linux/llmtranslator/schema"
	"github.com/minios-linux/llmtranslator/settings"
	"github.com/minios-linux/llmtranslator/translate"
)

// MessageInternalError is the envelope message of unexpected failures.
const MessageInternalError = "Internal server error"

// Translator runs a translation request.
type Translator interface {
	Generate(ctx context.Context, ct *schema.Schema, record map[string]any, components schema.Components, cfg translate.Config) translate.Response
}

// ConfigStore persists the user configuration.
type ConfigStore interface {
	Config() (settings.UserConfig, error)
	SaveConfig(settings.UserConfig) error
}

// Options configures a Server.
type Options struct {
	Translator Translator
	Store      ConfigStore
	// Registry resolves content types sent by uid. May be nil.
	Registry *schema.Registry
	Logger   *zap.Logger
	// Metrics enables GET /metrics.
	Metrics bool
}

// Server is the HTTP front end of the translator.
type Server struct {
	engine *gin.Engine
	opts   Options
	log    *zap.Logger
}

// New builds the routes. It does not start listening.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{engine: gin.New(), opts: opts, log: log}

	s.engine.Use(s.requestLogger(), gin.CustomRecovery(s.recover))

	s.engine.POST("/generate", s.generate)
	s.engine.GET("/config", s.getConfig)
	s.engine.POST("/config", s.setConfig)
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	if opts.Metrics {
		s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func (s *Server) generate(c *gin.Context) {
	var req translate.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	ct, comps, err := req.Resolve(s.opts.Registry)
	if err != nil {
		s.fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if s.opts.Translator == nil {
		s.fail(c, http.StatusInternalServerError, MessageInternalError)
		return
	}

	resp := s.opts.Translator.Generate(c.Request.Context(), ct, req.Fields, comps, req.Config())
	c.JSON(resp.Meta.Status, resp)
}

func (s *Server) getConfig(c *gin.Context) {
	if s.opts.Store == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	uc, err := s.opts.Store.Config()
	if err != nil {
		s.log.Error("reading user configuration", zap.Error(err))
		s.fail(c, http.StatusInternalServerError, MessageInternalError)
		return
	}
	c.JSON(http.StatusOK, uc)
}

func (s *Server) setConfig(c *gin.Context) {
	if s.opts.Store == nil {
		s.fail(c, http.StatusInternalServerError, MessageInternalError)
		return
	}
	var uc settings.UserConfig
	if err := c.ShouldBindJSON(&uc); err != nil {
		s.fail(c, http.StatusBadRequest, "invalid configuration: "+err.Error())
		return
	}
	if err := uc.Validate(); err != nil {
		s.fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.opts.Store.SaveConfig(uc); err != nil {
		s.log.Error("saving user configuration", zap.Error(err))
		s.fail(c, http.StatusInternalServerError, MessageInternalError)
		return
	}
	s.getConfig(c)
}

// fail writes an error envelope without data.
func (s *Server) fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"meta": translate.Meta{OK: false, Status: status, Message: message},
	})
}

func (s *Server) recover(c *gin.Context, rec any) {
	s.log.Error("handler panic", zap.Any("panic", rec), zap.String("path", c.FullPath()))
	s.fail(c, http.StatusInternalServerError, MessageInternalError)
}

// requestLogger logs one line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			s.log.Warn("request", fields...)
		default:
			s.log.Info("request", fields...)
		}
	}
}
