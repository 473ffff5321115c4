package i18n

import "testing"

func clearLocaleEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvLang, "")
	t.Setenv("LANGUAGE", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
}

func TestDetectLanguage(t *testing.T) {
	t.Run("override wins", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv(EnvLang, "de")
		t.Setenv("LANGUAGE", "ru_RU.UTF-8")

		if got := detectLanguage(); got != "de" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "de")
		}
	})

	t.Run("LANGUAGE list and encoding", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "ru_RU.UTF-8:en_US")
		t.Setenv("LC_ALL", "de_DE.UTF-8")

		if got := detectLanguage(); got != "ru_RU" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "ru_RU")
		}
	})

	t.Run("C and POSIX are skipped", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "C")
		t.Setenv("LC_ALL", "POSIX")
		t.Setenv("LC_MESSAGES", "fr_FR.UTF-8")

		if got := detectLanguage(); got != "fr_FR" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "fr_FR")
		}
	})

	t.Run("falls back to en", func(t *testing.T) {
		clearLocaleEnv(t)
		if got := detectLanguage(); got != "en" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "en")
		}
	})
}

func TestPassthroughWhenUninitialized(t *testing.T) {
	old := po
	po = nil
	t.Cleanup(func() { po = old })

	if got := T("Translation written to %s"); got != "Translation written to %s" {
		t.Fatalf("T fallback = %q", got)
	}
	if got := Tf("Loaded %d schemas", 3); got != "Loaded 3 schemas" {
		t.Fatalf("Tf fallback = %q", got)
	}
	if got := N("field", "fields", 1); got != "field" {
		t.Fatalf("N singular fallback = %q", got)
	}
	if got := N("field", "fields", 2); got != "fields" {
		t.Fatalf("N plural fallback = %q", got)
	}
}

func TestRussianCatalog(t *testing.T) {
	old, oldLang := po, lang
	t.Cleanup(func() { po, lang = old, oldLang })

	Init("ru")

	if Language() != "ru" {
		t.Fatalf("Language() = %q, want ru", Language())
	}
	if got := T("API key removed"); got != "API-ключ удалён" {
		t.Fatalf("T(ru) = %q", got)
	}
	if got := T("message without translation"); got != "message without translation" {
		t.Fatalf("untranslated message = %q", got)
	}
}

func TestUnknownLanguagePassesThrough(t *testing.T) {
	old, oldLang := po, lang
	t.Cleanup(func() { po, lang = old, oldLang })

	Init("xx")
	if got := T("API key removed"); got != "API key removed" {
		t.Fatalf("T(xx) = %q", got)
	}
}
