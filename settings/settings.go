// Package settings stores per-user translator settings.
//
// Settings live in the XDG data directory:
//
//	$XDG_DATA_HOME/llmtranslator/  (default: ~/.local/share/llmtranslator/)
//
// Files stored:
//   - settings.json  user configuration (system prompt, temperature)
//   - auth.json      the provider API key
//
// Both files are written with 0600 permissions.
//
// Lookup order for the API key:
//  1. --api-key flag (highest priority)
//  2. LLM_TRANSLATOR_LLM_API_KEY environment variable
//  3. auth.json
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	dataDirName    = "llmtranslator"
	configFileName = "settings.json"
	authFileName   = "auth.json"
)

// EnvAPIKey is the environment variable holding the provider API key.
const EnvAPIKey = "LLM_TRANSLATOR_LLM_API_KEY"

// MaxTemperature is the highest sampling temperature accepted.
const MaxTemperature = 2.0

// UserConfig is the user-editable part of the translation setup. Zero
// values mean "use the default".
type UserConfig struct {
	SystemPrompt string   `json:"systemPrompt,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
}

// Validate checks the temperature range.
func (c UserConfig) Validate() error {
	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > MaxTemperature) {
		return fmt.Errorf("temperature must be between 0 and %g, got %g", MaxTemperature, *c.Temperature)
	}
	return nil
}

type auth struct {
	Key string `json:"key"`
}

// Store reads and writes the settings files of one data directory.
// It is safe for concurrent use.
type Store struct {
	dir string
	mu  sync.Mutex
}

// Open returns a store rooted at dir.
func Open(dir string) *Store {
	return &Store{dir: dir}
}

// Default returns the store in the XDG data directory.
func Default() (*Store, error) {
	dir, err := DataDir()
	if err != nil {
		return nil, err
	}
	return Open(dir), nil
}

// DataDir returns the llmtranslator data directory.
// Respects $XDG_DATA_HOME (falls back to ~/.local/share).
func DataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string { return s.dir }

// ConfigPath returns the path of settings.json.
func (s *Store) ConfigPath() string { return filepath.Join(s.dir, configFileName) }

// AuthPath returns the path of auth.json.
func (s *Store) AuthPath() string { return filepath.Join(s.dir, authFileName) }

// ---------------------------------------------------------------------------
// User configuration
// ---------------------------------------------------------------------------

// Config returns the stored user configuration. A missing file yields the
// zero configuration.
func (s *Store) Config() (UserConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cfg UserConfig
	if err := s.read(configFileName, &cfg); err != nil {
		return UserConfig{}, err
	}
	return cfg, nil
}

// SaveConfig validates and stores cfg.
func (s *Store) SaveConfig(cfg UserConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(configFileName, cfg)
}

// ---------------------------------------------------------------------------
// API key
// ---------------------------------------------------------------------------

// APIKey returns the stored API key, or "" when none is stored or the
// file is unreadable.
func (s *Store) APIKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var a auth
	if err := s.read(authFileName, &a); err != nil {
		return ""
	}
	return a.Key
}

// SetAPIKey stores key.
func (s *Store) SetAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("API key is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(authFileName, auth{Key: key})
}

// RemoveAPIKey deletes the stored API key.
func (s *Store) RemoveAPIKey() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.AuthPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing auth file: %w", err)
	}
	return nil
}

// ResolveAPIKey returns the first non-empty key of flagValue, the
// environment and the store.
func (s *Store) ResolveAPIKey(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		return v
	}
	if s == nil {
		return ""
	}
	return s.APIKey()
}

// MaskKey returns a masked version of a key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// ---------------------------------------------------------------------------
// File access (callers hold s.mu)
// ---------------------------------------------------------------------------

func (s *Store) read(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

func (s *Store) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", name, err)
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(path, 0600)
}
