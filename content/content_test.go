package content

import (
	"testing"
)

func sampleRecord() map[string]any {
	return map[string]any{
		"title": "Hello",
		"seo": map[string]any{
			"metaTitle": "Meta",
		},
		"blocks": []any{
			map[string]any{"__component": "shared.quote", "body": "Quote"},
			map[string]any{"__component": "shared.media", "file": nil},
		},
		"views": float64(3),
	}
}

func TestPathChildDoesNotAlias(t *testing.T) {
	base := make(Path, 1, 8)
	base[0] = "blocks"

	a := base.Child("0")
	b := base.Child("1")

	if a.String() != "blocks.0" {
		t.Fatalf("a = %q, want blocks.0", a.String())
	}
	if b.String() != "blocks.1" {
		t.Fatalf("b = %q, want blocks.1 (sibling paths must not share storage)", b.String())
	}
	if len(base) != 1 {
		t.Fatalf("base modified: %v", base)
	}
}

func TestGet(t *testing.T) {
	rec := sampleRecord()

	tests := []struct {
		name   string
		path   Path
		want   any
		wantOK bool
	}{
		{"top-level string", Path{"title"}, "Hello", true},
		{"nested object", Path{"seo", "metaTitle"}, "Meta", true},
		{"array item by index", Path{"blocks", "0", "body"}, "Quote", true},
		{"present null", Path{"blocks", "1", "file"}, nil, true},
		{"missing key", Path{"missing"}, nil, false},
		{"index out of range", Path{"blocks", "5", "body"}, nil, false},
		{"non-numeric index", Path{"blocks", "x"}, nil, false},
		{"descend into scalar", Path{"title", "x"}, nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Get(rec, tc.path)
			if ok != tc.wantOK {
				t.Fatalf("Get(%v) ok = %v, want %v", tc.path, ok, tc.wantOK)
			}
			if got != tc.want {
				t.Fatalf("Get(%v) = %v, want %v", tc.path, got, tc.want)
			}
		})
	}
}

func TestSet(t *testing.T) {
	t.Run("overwrites existing leaf in array item", func(t *testing.T) {
		rec := sampleRecord()
		if !Set(rec, Path{"blocks", "0", "body"}, "Zitat") {
			t.Fatal("Set returned false")
		}
		if got, _ := Get(rec, Path{"blocks", "0", "body"}); got != "Zitat" {
			t.Fatalf("body = %v, want Zitat", got)
		}
	})

	t.Run("creates missing intermediate objects", func(t *testing.T) {
		rec := map[string]any{}
		if !Set(rec, Path{"a", "b", "c"}, "x") {
			t.Fatal("Set returned false")
		}
		if got, _ := Get(rec, Path{"a", "b", "c"}); got != "x" {
			t.Fatalf("a.b.c = %v, want x", got)
		}
	})

	t.Run("out of range index is a no-op", func(t *testing.T) {
		rec := sampleRecord()
		if Set(rec, Path{"blocks", "9", "body"}, "x") {
			t.Fatal("Set returned true for out of range index")
		}
		if n := len(rec["blocks"].([]any)); n != 2 {
			t.Fatalf("blocks len = %d, want 2", n)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		if Set(map[string]any{}, nil, "x") {
			t.Fatal("Set(nil path) returned true")
		}
	})
}

func TestCloneIsIndependent(t *testing.T) {
	rec := sampleRecord()
	cp := CloneMap(rec)

	Set(cp, Path{"seo", "metaTitle"}, "Changed")
	Set(cp, Path{"blocks", "0", "body"}, "Changed")

	if got, _ := Get(rec, Path{"seo", "metaTitle"}); got != "Meta" {
		t.Fatalf("original seo.metaTitle = %v, want Meta", got)
	}
	if got, _ := Get(rec, Path{"blocks", "0", "body"}); got != "Quote" {
		t.Fatalf("original blocks.0.body = %v, want Quote", got)
	}
	if CloneMap(nil) != nil {
		t.Fatal("CloneMap(nil) should be nil")
	}
}
