package langmeta

import "testing"

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "pt_br", want: "pt-BR"},
		{in: " EN-us ", want: "en-US"},
		{in: "ru", want: "ru"},
	}

	for _, tc := range cases {
		got, err := Canonicalize(tc.in)
		if err != nil {
			t.Fatalf("Canonicalize(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	if _, err := Canonicalize(""); err == nil {
		t.Fatal("Canonicalize(\"\") should fail")
	}
}

func TestResolve(t *testing.T) {
	t.Run("known language", func(t *testing.T) {
		got := Resolve("de")
		if got.Code != "de" || got.Name != "Deutsch" || got.English != "German" {
			t.Fatalf("unexpected result: %#v", got)
		}
		if got.Flag != "\U0001F1E9\U0001F1EA" {
			t.Fatalf("flag = %q", got.Flag)
		}
		if got.String() != "Deutsch (de)" {
			t.Fatalf("String() = %q", got.String())
		}
	})

	t.Run("normalized code", func(t *testing.T) {
		got := Resolve("pt_br")
		if got.Code != "pt-BR" || got.Flag != "\U0001F1E7\U0001F1F7" {
			t.Fatalf("unexpected result: %#v", got)
		}
	})

	t.Run("unparseable passthrough", func(t *testing.T) {
		got := Resolve("not a tag!")
		if got.Name != "not a tag!" || got.Flag != "" || got.String() != "not a tag!" {
			t.Fatalf("unexpected result: %#v", got)
		}
	})
}

func TestFlagFromRegion(t *testing.T) {
	if got := flagFromRegion("us"); got != "\U0001F1FA\U0001F1F8" {
		t.Fatalf("flagFromRegion(us) = %q", got)
	}
	if got := flagFromRegion("USA"); got != "" {
		t.Fatalf("flagFromRegion(USA) = %q, want empty", got)
	}
	if got := flagFromRegion("1A"); got != "" {
		t.Fatalf("flagFromRegion(1A) = %q, want empty", got)
	}
}
