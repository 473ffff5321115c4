// llmtranslator translates CMS content records with an OpenAI-compatible
// language model.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/minios-linux/llmtranslator/config"
	"github.com/minios-linux/llmtranslator/extract"
	"github.com/minios-linux/llmtranslator/i18n"
	"github.com/minios-linux/llmtranslator/langmeta"
	"github.com/minios-linux/llmtranslator/payload"
	"github.com/minios-linux/llmtranslator/schema"
	"github.com/minios-linux/llmtranslator/server"
	"github.com/minios-linux/llmtranslator/settings"
	"github.com/minios-linux/llmtranslator/translate"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+i18n.T(format)+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+i18n.T(format)+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+i18n.T(format)+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+i18n.T(format)+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir    string
	configPath string
	apiKeyFlag string
	verbose    bool

	logger = zap.NewNop()
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "llmtranslator",
		Short: i18n.T("Translate CMS content with a language model"),
		Long: `llmtranslator translates the localizable fields of CMS content records
with any OpenAI-compatible chat completion endpoint.

The schema of the content type decides which fields are sent: text fields,
components and dynamic zones are walked recursively, while non-localized,
relation, media and UID fields are left alone. The model reply is repaired
when it is not clean JSON and merged back into the record, and UID fields
are regenerated from their translated source fields.

Commands:
  translate   Translate a request file and print the result
  extract     Show the fields and payload a request would send
  serve       Run the HTTP API used by the admin panel
  config      Show or change configuration
  auth        Manage the LLM API key`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(verbose, cmd.Name() == "serve")
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	// Global persistent flags, inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", i18n.T("Directory searched for "+config.FileName))
	root.PersistentFlags().StringVar(&configPath, "config", "", i18n.T("Config file (overrides --root lookup)"))
	root.PersistentFlags().StringVar(&apiKeyFlag, "api-key", "", i18n.T("LLM API key (or "+settings.EnvAPIKey+" env var)"))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, i18n.T("Enable debug logging"))

	root.AddCommand(
		newTranslateCmd(),
		newExtractCmd(),
		newServeCmd(),
		newConfigCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// newLogger builds the structured logger. The server logs at info level,
// one-shot commands only report warnings unless verbose is set.
func newLogger(verbose, server bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	switch {
	case verbose:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case !server:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: i18n.T("Show version information"),
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "llmtranslator version %s\n", version)
			fmt.Fprintf(w, "  commit:    %s\n", commit)
			fmt.Fprintf(w, "  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// Shared provider flags
// ---------------------------------------------------------------------------

// providerFlags override config file and environment values for a single
// invocation. Only flags set on the command line are applied.
type providerFlags struct {
	endpoint    string
	model       string
	temperature float64
	timeout     time.Duration
	proxy       string
	schemas     string
}

func (p *providerFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&p.endpoint, "endpoint", "", i18n.T("OpenAI-compatible API base URL"))
	fs.StringVar(&p.model, "model", "", i18n.T("Model name"))
	fs.Float64Var(&p.temperature, "temperature", config.DefaultTemperature, i18n.T("Default sampling temperature (0-2)"))
	fs.DurationVar(&p.timeout, "timeout", 0, i18n.T("Request timeout (0 = no limit)"))
	fs.StringVar(&p.proxy, "proxy", "", i18n.T("HTTP/HTTPS proxy URL"))
	fs.StringVar(&p.schemas, "schemas", "", i18n.T("Directory with content-type and component schemas"))
}

func (p *providerFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("endpoint") {
		cfg.Endpoint = p.endpoint
	}
	if fs.Changed("model") {
		cfg.Model = p.model
	}
	if fs.Changed("temperature") {
		cfg.Temperature = p.temperature
	}
	if fs.Changed("timeout") {
		cfg.Timeout = p.timeout
	}
	if fs.Changed("proxy") {
		cfg.Proxy = p.proxy
	}
	if fs.Changed("schemas") {
		cfg.SchemasDir = p.schemas
	}
}

// ---------------------------------------------------------------------------
// Loading helpers
// ---------------------------------------------------------------------------

func configFilePath() string {
	if configPath != "" {
		return configPath
	}
	return filepath.Join(rootDir, config.FileName)
}

// loadConfig resolves the configuration and the settings store. The store
// is nil when the data directory cannot be determined.
func loadConfig() (config.Config, *settings.Store, error) {
	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(rootDir)
	}
	if err != nil {
		return config.Config{}, nil, err
	}

	store, err := settings.Default()
	if err != nil {
		logWarning("Settings directory unavailable: %v", err)
		store = nil
	}
	cfg.APIKey = store.ResolveAPIKey(apiKeyFlag)
	return cfg, store, nil
}

func loadRegistry(dir string) (*schema.Registry, error) {
	if dir == "" {
		return nil, nil
	}
	reg, err := schema.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded schemas", zap.String("dir", dir), zap.Strings("content_types", reg.UIDs()))
	return reg, nil
}

func buildService(cfg config.Config, store *settings.Store, correct bool) (*translate.Service, error) {
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			return nil, fmt.Errorf("%w (use --api-key, %s or 'llmtranslator auth login')", err, settings.EnvAPIKey)
		}
		return nil, err
	}

	opts := []translate.Option{
		translate.WithLogger(logger),
		translate.WithTemperature(cfg.Temperature),
	}
	if store != nil {
		opts = append(opts, translate.WithSettings(store))
	}
	if !correct {
		opts = append(opts, translate.WithoutCorrection())
	}
	return translate.NewService(translate.NewOpenAIClient(cfg), opts...), nil
}

// readRequest decodes a translation request from path, or from stdin when
// path is empty or "-".
func readRequest(path string, stdin io.Reader) (translate.Request, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
		path = "stdin"
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return translate.Request{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var req translate.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return translate.Request{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return req, nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func argPath(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

type translateArgs struct {
	input     string
	output    string
	target    string
	noCorrect bool
	provider  providerFlags
}

func newTranslateCmd() *cobra.Command {
	var a translateArgs

	cmd := &cobra.Command{
		Use:   "translate [request.json]",
		Short: i18n.T("Translate a content record"),
		Long: `Translate the record of a request file and print the response envelope.

The request has the same shape as the body of POST /generate:

  {
    "contentType": { "uid": "api::article.article", "attributes": { ... } },
    "components": { "shared.seo": { "attributes": { ... } } },
    "fields": { "title": "Hello", ... },
    "targetLanguage": "fr"
  }

contentType may also be the uid of a schema found in --schemas. The request
is read from stdin when no file is given.

Examples:
  llmtranslator translate request.json
  llmtranslator translate request.json --target de -o article.de.json
  cat request.json | llmtranslator translate --model gpt-4o-mini`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.input = argPath(args)
			return runTranslate(cmd, a)
		},
	}

	cmd.Flags().StringVarP(&a.output, "output", "o", "", i18n.T("Write the response to a file instead of stdout"))
	cmd.Flags().StringVarP(&a.target, "target", "t", "", i18n.T("Target language (overrides targetLanguage of the request)"))
	cmd.Flags().BoolVar(&a.noCorrect, "no-correct", false, i18n.T("Do not ask the model to correct invalid JSON"))
	a.provider.register(cmd.Flags())

	return cmd
}

func runTranslate(cmd *cobra.Command, a translateArgs) error {
	req, err := readRequest(a.input, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if a.target != "" {
		req.TargetLanguage = a.target
	}

	cfg, store, err := loadConfig()
	if err != nil {
		return err
	}
	a.provider.apply(cmd.Flags(), &cfg)

	reg, err := loadRegistry(cfg.SchemasDir)
	if err != nil {
		return err
	}
	ct, comps, err := req.Resolve(reg)
	if err != nil {
		return err
	}
	svc, err := buildService(cfg, store, !a.noCorrect)
	if err != nil {
		return err
	}

	logInfo("Translating %s into %s with %s", ct.UID, langmeta.Resolve(req.TargetLanguage), cfg.Model)
	resp := svc.Generate(cmd.Context(), ct, req.Fields, comps, req.Config())

	if err := writeResponse(cmd.OutOrStdout(), a.output, resp); err != nil {
		return err
	}
	if !resp.Meta.OK {
		return errors.New(resp.Meta.Message)
	}
	if a.output != "" && a.output != "-" {
		logSuccess("Translation written to %s", a.output)
	} else {
		logSuccess("%s", resp.Meta.Message)
	}
	return nil
}

func writeResponse(stdout io.Writer, path string, resp translate.Response) error {
	if path == "" || path == "-" {
		return writeJSON(stdout, resp)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := writeJSON(f, resp); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// ---------------------------------------------------------------------------
// extract (dry run)
// ---------------------------------------------------------------------------

func newExtractCmd() *cobra.Command {
	var (
		schemas     string
		showPayload bool
		showPrompt  bool
		target      string
	)

	cmd := &cobra.Command{
		Use:   "extract [request.json]",
		Short: i18n.T("Show the translatable fields of a request"),
		Long: `List the fields of a request record that would be sent to the model,
without calling it.

Each line shows the payload path, the path in the record and the value.
With --payload the JSON object sent to the model is printed instead, and
with --prompt the complete user prompt.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readRequest(argPath(args), cmd.InOrStdin())
			if err != nil {
				return err
			}
			if target != "" {
				req.TargetLanguage = target
			}

			var cfg config.Config
			if configPath != "" {
				cfg, err = config.LoadFile(configPath)
			} else {
				cfg, err = config.Load(rootDir)
			}
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("schemas") {
				cfg.SchemasDir = schemas
			}
			reg, err := loadRegistry(cfg.SchemasDir)
			if err != nil {
				return err
			}
			ct, comps, err := req.Resolve(reg)
			if err != nil {
				return err
			}
			return runExtract(cmd.OutOrStdout(), ct, req, comps, showPayload, showPrompt)
		},
	}

	cmd.Flags().StringVar(&schemas, "schemas", "", i18n.T("Directory with content-type and component schemas"))
	cmd.Flags().BoolVar(&showPayload, "payload", false, i18n.T("Print the JSON payload sent to the model"))
	cmd.Flags().BoolVar(&showPrompt, "prompt", false, i18n.T("Print the complete user prompt"))
	cmd.Flags().StringVarP(&target, "target", "t", "", i18n.T("Target language (overrides targetLanguage of the request)"))
	cmd.MarkFlagsMutuallyExclusive("payload", "prompt")

	return cmd
}

func runExtract(w io.Writer, ct *schema.Schema, req translate.Request, comps schema.Components, showPayload, showPrompt bool) error {
	fields := extract.Fields(ct, req.Fields, comps)
	if len(fields) == 0 {
		logWarning("No translatable fields found")
		return nil
	}
	logInfo("%s", fmt.Sprintf(i18n.N("Found %d translatable field", "Found %d translatable fields", len(fields)), len(fields)))

	switch {
	case showPrompt:
		if strings.TrimSpace(req.TargetLanguage) == "" {
			return errors.New(i18n.T("--prompt needs a target language"))
		}
		prompt, err := translate.BuildPrompt(payload.Build(fields), req.TargetLanguage)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, prompt)
		return err
	case showPayload:
		return writeJSON(w, payload.Build(fields))
	default:
		width := 0
		for _, f := range fields {
			width = max(width, len(f.Path.String()))
		}
		for _, f := range fields {
			fmt.Fprintf(w, "%-*s  %s  %s\n", width, f.Path, f.OriginalPath, preview(f.Value, 60))
		}
		return nil
	}
}

// preview renders v on a single line, truncated to n runes.
func preview(v any, n int) string {
	s, ok := v.(string)
	if !ok {
		data, err := json.Marshal(v)
		if err != nil {
			s = fmt.Sprint(v)
		} else {
			s = string(data)
		}
	}
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}

// ---------------------------------------------------------------------------
// serve
// ---------------------------------------------------------------------------

func newServeCmd() *cobra.Command {
	var (
		pf      providerFlags
		listen  string
		metrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: i18n.T("Run the HTTP API"),
		Long: `Serve the translation API used by the admin panel.

Routes:
  POST /generate   translate a record
  GET  /config     stored user configuration
  POST /config     replace the stored user configuration
  GET  /healthz    liveness probe
  GET  /metrics    Prometheus metrics (disable with --metrics=false)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := loadConfig()
			if err != nil {
				return err
			}
			pf.apply(cmd.Flags(), &cfg)
			if cmd.Flags().Changed("listen") {
				cfg.Listen = listen
			}
			if cmd.Flags().Changed("metrics") {
				cfg.Metrics = &metrics
			}
			return runServe(cmd.Context(), cfg, store)
		},
	}

	pf.register(cmd.Flags())
	cmd.Flags().StringVar(&listen, "listen", config.DefaultListen, i18n.T("Listen address"))
	cmd.Flags().BoolVar(&metrics, "metrics", true, i18n.T("Expose Prometheus metrics at /metrics"))

	return cmd
}

func runServe(ctx context.Context, cfg config.Config, store *settings.Store) error {
	reg, err := loadRegistry(cfg.SchemasDir)
	if err != nil {
		return err
	}
	svc, err := buildService(cfg, store, true)
	if err != nil {
		return err
	}
	if reg != nil {
		logInfo("Loaded %d content types from %s", len(reg.UIDs()), cfg.SchemasDir)
	}

	logger.Info("starting translator",
		zap.String("endpoint", cfg.BaseURL()),
		zap.String("model", cfg.Model),
		zap.Duration("timeout", cfg.Timeout),
		zap.Bool("metrics", cfg.MetricsEnabled()),
	)

	opts := server.Options{
		Translator: svc,
		Registry:   reg,
		Logger:     logger,
		Metrics:    cfg.MetricsEnabled(),
	}
	if store != nil {
		opts.Store = store
	}

	gin.SetMode(gin.ReleaseMode)
	logSuccess("Listening on http://%s", cfg.Listen)
	return server.New(opts).Run(ctx, cfg.Listen)
}

// ---------------------------------------------------------------------------
// config
// ---------------------------------------------------------------------------

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: i18n.T("Show or change configuration"),
		Long: `Show or change the llmtranslator configuration.

Provider settings are read from ` + config.FileName + ` in --root (or --config),
then from the environment:

  LLM_TRANSLATOR_LLM_BASE_URL   API base URL
  LLM_TRANSLATOR_LLM_MODEL      model name
  LLM_TRANSLATOR_LLM_API_KEY    API key
  LLM_TRANSLATOR_TIMEOUT        request timeout
  LLM_TRANSLATOR_PROXY          proxy URL

The user configuration (system prompt and temperature) is the one edited
from the admin panel and lives in the settings directory.`,
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigSetCmd(),
		newConfigPathCmd(),
		newConfigUserCmd(),
	)
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: i18n.T("Print the effective configuration"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprint(w, string(data))
			if cfg.APIKey != "" {
				fmt.Fprintf(w, "api_key: %s\n", settings.MaskKey(cfg.APIKey))
			} else {
				fmt.Fprintln(w, "api_key: (not set)")
			}
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: i18n.T("Set a key in the config file"),
		Long: `Set a key in the config file, creating it when needed.

Keys: endpoint, model, temperature, timeout, proxy, listen, schemas_dir, metrics`,
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return []string{"endpoint", "model", "temperature", "timeout", "proxy", "listen", "schemas_dir", "metrics"}, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configFilePath()
			if err := config.Set(path, args[0], args[1]); err != nil {
				return err
			}
			logSuccess("Updated %s in %s", args[0], path)
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: i18n.T("Print configuration file locations"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			abs, err := filepath.Abs(configFilePath())
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "config:   %s\n", abs)
			store, err := settings.Default()
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "settings: %s\n", store.ConfigPath())
			fmt.Fprintf(w, "auth:     %s\n", store.AuthPath())
			return nil
		},
	}
}

func newConfigUserCmd() *cobra.Command {
	var (
		systemPrompt string
		temperature  float64
		reset        bool
	)

	cmd := &cobra.Command{
		Use:   "user",
		Short: i18n.T("Show or edit the user configuration"),
		Long: `Show the stored user configuration, or change it with flags.

This is the configuration served by GET /config and replaced by POST /config.

Examples:
  llmtranslator config user
  llmtranslator config user --temperature 0.3
  llmtranslator config user --system-prompt "Keep brand names in English."
  llmtranslator config user --reset`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := settings.Default()
			if err != nil {
				return err
			}
			uc, err := store.Config()
			if err != nil {
				return err
			}

			fs := cmd.Flags()
			changed := reset || fs.Changed("system-prompt") || fs.Changed("temperature")
			if reset {
				uc = settings.UserConfig{}
			}
			if fs.Changed("system-prompt") {
				uc.SystemPrompt = systemPrompt
			}
			if fs.Changed("temperature") {
				t := temperature
				uc.Temperature = &t
			}
			if changed {
				if err := store.SaveConfig(uc); err != nil {
					return err
				}
				logSuccess("User configuration saved to %s", store.ConfigPath())
			}
			return writeJSON(cmd.OutOrStdout(), uc)
		},
	}

	cmd.Flags().StringVar(&systemPrompt, "system-prompt", "", i18n.T("System prompt sent before the translation rules"))
	cmd.Flags().Float64Var(&temperature, "temperature", config.DefaultTemperature, i18n.T("Sampling temperature (0-2)"))
	cmd.Flags().BoolVar(&reset, "reset", false, i18n.T("Clear the user configuration first"))

	return cmd
}

// ---------------------------------------------------------------------------
// auth
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: i18n.T("Manage the LLM API key"),
		Long: `Manage the API key used for the language model endpoint.

The key is looked up in this order: --api-key, LLM_TRANSLATOR_LLM_API_KEY,
then the key stored by 'auth login'.

Examples:
  llmtranslator auth login               Prompt for a key and store it
  echo "$KEY" | llmtranslator auth login Store a key from stdin
  llmtranslator auth status              Show where the key comes from
  llmtranslator auth logout              Remove the stored key`,
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthStatusCmd(),
	)
	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: i18n.T("Store an API key"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := settings.Default()
			if err != nil {
				return err
			}

			key := strings.TrimSpace(apiKeyFlag)
			if key == "" {
				existing := store.APIKey()
				if existing != "" {
					fmt.Fprintf(os.Stderr, i18n.T("  Current key: %s")+"\n", colorYellow+settings.MaskKey(existing)+colorReset)
					fmt.Fprint(os.Stderr, i18n.T("  Enter new key to replace, or press Enter to keep: "))
				} else {
					fmt.Fprint(os.Stderr, i18n.T("  Enter API key: "))
				}
				key, err = readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
				if key == "" && existing != "" {
					logInfo("Keeping existing key")
					return nil
				}
			}

			if err := store.SetAPIKey(key); err != nil {
				return err
			}
			logSuccess("API key saved to %s", store.AuthPath())
			return nil
		},
	}
}

func readLine(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", errors.New(i18n.T("no input received"))
	}
	return strings.TrimSpace(scanner.Text()), nil
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: i18n.T("Remove the stored API key"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := settings.Default()
			if err != nil {
				return err
			}
			if store.APIKey() == "" {
				logInfo("No stored API key")
				return nil
			}
			if err := store.RemoveAPIKey(); err != nil {
				return err
			}
			logSuccess("API key removed")
			return nil
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: i18n.T("Show which API key is in use"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := settings.Default()
			if err != nil {
				logWarning("Settings directory unavailable: %v", err)
				store = nil
			}
			source, key := apiKeySource(store)
			if key == "" {
				logWarning("No API key configured")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", settings.MaskKey(key), source)
			return nil
		},
	}
}

// apiKeySource reports where the resolved API key comes from.
func apiKeySource(store *settings.Store) (source, key string) {
	key = store.ResolveAPIKey(apiKeyFlag)
	switch {
	case key == "":
		return "", ""
	case apiKeyFlag != "":
		return "--api-key", key
	case strings.TrimSpace(os.Getenv(settings.EnvAPIKey)) != "":
		return settings.EnvAPIKey, key
	default:
		return store.AuthPath(), key
	}
}
