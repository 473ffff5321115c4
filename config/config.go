// Package config holds the process-wide translator configuration.
//
// Values are resolved once at startup, lowest priority first:
//
//  1. built-in defaults
//  2. .llmtranslator.yaml in the working directory
//  3. environment variables
//  4. command-line flags (applied by the caller)
//
// The API key is never read from or written to the YAML file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = ".llmtranslator.yaml"

// Defaults.
const (
	DefaultEndpoint    = "https://api.openai.com/v1"
	DefaultModel       = "gpt-4o"
	DefaultTemperature = 0.1
	DefaultTimeout     = 120 * time.Second
	DefaultListen      = "127.0.0.1:1337"
)

// Environment variables. Each setting has a primary name and the name the
// admin panel build uses.
var (
	EnvBaseURL = []string{"LLM_TRANSLATOR_LLM_BASE_URL", "STRAPI_ADMIN_LLM_TRANSLATOR_LLM_BASE_URL"}
	EnvModel   = []string{"LLM_TRANSLATOR_LLM_MODEL", "STRAPI_ADMIN_LLM_TRANSLATOR_LLM_MODEL"}
	EnvTimeout = []string{"LLM_TRANSLATOR_TIMEOUT"}
	EnvProxy   = []string{"LLM_TRANSLATOR_PROXY"}
)

// ErrMissingAPIKey is returned by Validate when no API key was resolved.
var ErrMissingAPIKey = errors.New("LLM API key is not configured")

// Config is the resolved translator configuration.
type Config struct {
	// Endpoint is the OpenAI-compatible API base URL. A trailing
	// "/chat/completions" is accepted and stripped.
	Endpoint string `yaml:"endpoint,omitempty"`
	// APIKey authenticates against Endpoint.
	APIKey string `yaml:"-"`
	// Model is the chat model name.
	Model string `yaml:"model,omitempty"`
	// Temperature is used when the user configuration does not set one.
	Temperature float64 `yaml:"temperature,omitempty"`
	// Timeout bounds a single provider request.
	Timeout time.Duration `yaml:"timeout,omitempty"`
	// Proxy is an optional HTTP(S) proxy URL for provider requests.
	Proxy string `yaml:"proxy,omitempty"`
	// Listen is the address of the HTTP admin API.
	Listen string `yaml:"listen,omitempty"`
	// SchemasDir holds content-type and component schema files.
	SchemasDir string `yaml:"schemas_dir,omitempty"`
	// Metrics enables the /metrics endpoint.
	Metrics *bool `yaml:"metrics,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Endpoint:    DefaultEndpoint,
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		Timeout:     DefaultTimeout,
		Listen:      DefaultListen,
	}
}

// Load returns the defaults overlaid with FileName from dir, if present,
// and the environment.
func Load(dir string) (Config, error) {
	cfg := Default()
	path := filepath.Join(dir, FileName)
	if err := cfg.mergeFile(path); err != nil {
		return Config{}, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile is Load with an explicit config file path. A missing file is
// an error.
func LoadFile(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}
	cfg := Default()
	if err := cfg.mergeFile(path); err != nil {
		return Config{}, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}

	// Keys absent from the file keep their current value.
	fc := *c
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	fc.APIKey = c.APIKey
	if fc.SchemasDir != c.SchemasDir && fc.SchemasDir != "" && !filepath.IsAbs(fc.SchemasDir) {
		fc.SchemasDir = filepath.Join(filepath.Dir(path), fc.SchemasDir)
	}
	*c = fc
	return nil
}

// ApplyEnv overrides c with the environment variables that are set.
func (c *Config) ApplyEnv() error {
	if v := lookupEnv(EnvBaseURL); v != "" {
		c.Endpoint = v
	}
	if v := lookupEnv(EnvModel); v != "" {
		c.Model = v
	}
	if v := lookupEnv(EnvProxy); v != "" {
		c.Proxy = v
	}
	if v := lookupEnv(EnvTimeout); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout[0], err)
		}
		c.Timeout = d
	}
	return nil
}

// parseTimeout accepts a Go duration ("90s") or a number of seconds.
func parseTimeout(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	secs, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q", s)
	}
	return time.Duration(secs) * time.Second, nil
}

func lookupEnv(names []string) string {
	for _, name := range names {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// Validate checks that the configuration is usable for translation.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid endpoint %q", c.Endpoint)
	}
	if c.Model == "" {
		return errors.New("model is empty")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %g", c.Temperature)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.Proxy != "" {
		if _, err := url.Parse(c.Proxy); err != nil {
			return fmt.Errorf("invalid proxy URL %q: %w", c.Proxy, err)
		}
	}
	return nil
}

// BaseURL returns Endpoint without a trailing "/chat/completions".
func (c Config) BaseURL() string {
	base := strings.TrimRight(c.Endpoint, "/")
	return strings.TrimSuffix(base, "/chat/completions")
}

// MetricsEnabled reports whether /metrics is served. Defaults to true.
func (c Config) MetricsEnabled() bool {
	return c.Metrics == nil || *c.Metrics
}

// Marshal returns c as YAML, for "config get".
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Set updates one YAML key of the config file at path, creating the file
// when needed. Unknown keys are rejected.
func Set(path, key, value string) error {
	var doc map[string]any
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if doc == nil {
		doc = make(map[string]any)
	}

	var v any = value
	switch key {
	case "endpoint", "model", "proxy", "listen", "schemas_dir":
	case "timeout":
		d, err := parseTimeout(value)
		if err != nil {
			return err
		}
		v = d.String()
	case "temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid temperature %q", value)
		}
		v = f
	case "metrics":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
		v = b
	default:
		return fmt.Errorf("unknown config key %q (valid: endpoint, model, temperature, timeout, proxy, listen, schemas_dir, metrics)", key)
	}
	doc[key] = v

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
