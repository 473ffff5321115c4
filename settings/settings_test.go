package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDataDirUsesXDGDataHome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir() error: %v", err)
	}
	wantDir := filepath.Join(tmp, "llmtranslator")
	if dir != wantDir {
		t.Fatalf("DataDir() = %q, want %q", dir, wantDir)
	}

	s, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	if got, want := s.ConfigPath(), filepath.Join(wantDir, "settings.json"); got != want {
		t.Fatalf("ConfigPath() = %q, want %q", got, want)
	}
	if got, want := s.AuthPath(), filepath.Join(wantDir, "auth.json"); got != want {
		t.Fatalf("AuthPath() = %q, want %q", got, want)
	}
}

func TestConfigMissingFileIsZero(t *testing.T) {
	s := Open(t.TempDir())
	cfg, err := s.Config()
	if err != nil {
		t.Fatalf("Config() error: %v", err)
	}
	if cfg.SystemPrompt != "" || cfg.Temperature != nil {
		t.Fatalf("Config() = %#v, want zero", cfg)
	}
}

func TestSaveConfigLifecycle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	s := Open(dir)

	temp := 0.3
	if err := s.SaveConfig(UserConfig{SystemPrompt: "Be formal.", Temperature: &temp}); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	info, err := os.Stat(s.ConfigPath())
	if err != nil {
		t.Fatalf("stat settings.json: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("settings.json mode = %o, want 600", info.Mode().Perm())
	}

	cfg, err := s.Config()
	if err != nil {
		t.Fatalf("Config() error: %v", err)
	}
	if cfg.SystemPrompt != "Be formal." {
		t.Fatalf("SystemPrompt = %q", cfg.SystemPrompt)
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0.3 {
		t.Fatalf("Temperature = %v, want 0.3", cfg.Temperature)
	}
}

func TestSaveConfigRejectsBadTemperature(t *testing.T) {
	s := Open(t.TempDir())
	for _, v := range []float64{-0.1, 2.5} {
		temp := v
		if err := s.SaveConfig(UserConfig{Temperature: &temp}); err == nil {
			t.Fatalf("SaveConfig(temperature=%g) should fail", v)
		}
	}
	if _, err := os.Stat(s.ConfigPath()); !os.IsNotExist(err) {
		t.Fatalf("settings.json should not be written, stat err=%v", err)
	}
}

func TestConfigInvalidJSON(t *testing.T) {
	s := Open(t.TempDir())
	if err := os.WriteFile(s.ConfigPath(), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Config(); err == nil {
		t.Fatal("Config() should fail on invalid JSON")
	}
}

func TestAPIKeyLifecycle(t *testing.T) {
	s := Open(t.TempDir())

	if got := s.APIKey(); got != "" {
		t.Fatalf("APIKey() on empty store = %q", got)
	}
	if err := s.SetAPIKey("   "); err == nil {
		t.Fatal("SetAPIKey(blank) should fail")
	}
	if err := s.SetAPIKey(" sk-stored "); err != nil {
		t.Fatalf("SetAPIKey() error: %v", err)
	}
	if got := s.APIKey(); got != "sk-stored" {
		t.Fatalf("APIKey() = %q, want sk-stored", got)
	}
	if err := s.RemoveAPIKey(); err != nil {
		t.Fatalf("RemoveAPIKey() error: %v", err)
	}
	if got := s.APIKey(); got != "" {
		t.Fatalf("APIKey() after remove = %q", got)
	}
	if err := s.RemoveAPIKey(); err != nil {
		t.Fatalf("RemoveAPIKey() on missing file should be a no-op, got: %v", err)
	}
}

func TestResolveAPIKeyPriority(t *testing.T) {
	s := Open(t.TempDir())
	if err := s.SetAPIKey("stored-key"); err != nil {
		t.Fatalf("SetAPIKey() error: %v", err)
	}

	t.Setenv(EnvAPIKey, "env-key")

	if got := s.ResolveAPIKey("flag-key"); got != "flag-key" {
		t.Fatalf("flag should win, got %q", got)
	}
	if got := s.ResolveAPIKey(""); got != "env-key" {
		t.Fatalf("env should win over store, got %q", got)
	}

	t.Setenv(EnvAPIKey, "")
	if got := s.ResolveAPIKey(""); got != "stored-key" {
		t.Fatalf("stored key expected, got %q", got)
	}

	var nilStore *Store
	if got := nilStore.ResolveAPIKey(""); got != "" {
		t.Fatalf("nil store should resolve to empty, got %q", got)
	}
}

func TestMaskKey(t *testing.T) {
	if got := MaskKey("short"); got != "****" {
		t.Fatalf("MaskKey(short) = %q, want ****", got)
	}
	if got := MaskKey("12345678"); got != "****" {
		t.Fatalf("MaskKey(8 chars) = %q, want ****", got)
	}
	if got := MaskKey("123456789"); got != "1234...6789" {
		t.Fatalf("MaskKey(9 chars) = %q, want 1234...6789", got)
	}
}
