package slug

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "two words", input: "Coffee Shop", want: "coffee-shop"},
		{name: "punctuation", input: "Hello, World! 2026", want: "hello-world-2026"},
		{name: "apostrophe dropped", input: "Mom's Bakery", want: "moms-bakery"},
		{name: "typographic apostrophe", input: "Mom’s Bakery", want: "moms-bakery"},
		{name: "dots become hyphens", input: "Version 2.0.1", want: "version-2-0-1"},
		{name: "tabs and newlines", input: "hello\tnew\nworld", want: "hello-new-world"},
		{name: "leading and trailing separators", input: "  --Todo App--  ", want: "todo-app"},
		{name: "non-ascii letters", input: "Café Résumé", want: "caf-r-sum"},
		{name: "already a slug", input: "emi-calculator", want: "emi-calculator"},
		{name: "only symbols", input: "!@#$%^&*()", want: ""},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.input); got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGenerateIdempotent(t *testing.T) {
	for _, s := range []string{"Coffee Shop", "Mom's Bakery", "a--b", "  x  "} {
		once := Generate(s)
		if twice := Generate(once); twice != once {
			t.Errorf("Generate(Generate(%q)) = %q, want %q", s, twice, once)
		}
	}
}

func TestPackage(t *testing.T) {
	long := strings.Repeat("word ", 30)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "regular", input: "My Portfolio", want: "my-portfolio"},
		{name: "empty falls back", input: "", want: Fallback},
		{name: "symbols fall back", input: "???", want: Fallback},
		{name: "cut at hyphen", input: long, want: strings.TrimSuffix(strings.Repeat("word-", 13), "-")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Package(tt.input)
			if got != tt.want {
				t.Errorf("Package(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if len(got) > maxLen {
				t.Errorf("Package(%q) has %d characters", tt.input, len(got))
			}
		})
	}
}

func TestArchive(t *testing.T) {
	tests := []struct {
		name, site, id, want string
	}{
		{"with id", "Coffee Shop", "7f9c2b4e-1111-2222-3333-444455556666", "coffee-shop-7f9c2b4e.zip"},
		{"short id", "Coffee Shop", "42", "coffee-shop-42.zip"},
		{"no id", "Coffee Shop", "", "coffee-shop.zip"},
		{"no name", "", "abc", Fallback + "-abc.zip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Archive(tt.site, tt.id); got != tt.want {
				t.Errorf("Archive(%q, %q) = %q, want %q", tt.site, tt.id, got, tt.want)
			}
		})
	}
}
