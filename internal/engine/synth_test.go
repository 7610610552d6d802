package engine

import "testing"

func TestCleanMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bold", "This is **important** news", "This is important news"},
		{"italic", "This is *subtle* news", "This is subtle news"},
		{"underscore bold", "This is __important__ news", "This is important news"},
		{"underscore italic", "This is _subtle_ news", "This is subtle news"},
		{"header", "## Welcome\nto the show", "Welcome to the show"},
		{"link keeps text", "See [the docs](https://example.com) here", "See the docs here"},
		{"inline code", "Run `go test` now", "Run go test now"},
		{"fenced code removed", "Before ```code here``` after", "Before after"},
		{"bullet markers", "- first\n- second", "first second"},
		{"numbered markers", "1. first\n2. second", "first second"},
		{"blockquote", "> quoted line", "quoted line"},
		{"html tags", "Hello <em>world</em>", "Hello world"},
		{"whitespace collapsed", "too   many\n\n\nspaces", "too many spaces"},
		{"plain text untouched", "Just a normal sentence.", "Just a normal sentence."},
		{
			"markdown-laden utterance",
			"**Hello** there, *friend*! ### Not a header",
			"Hello there, friend! Not a header",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanMarkdown(tt.in); got != tt.want {
				t.Errorf("CleanMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanMarkdownIdempotent(t *testing.T) {
	inputs := []string{
		"**Bold** and *italic* with `code` and [links](http://x)",
		"## Header\n- item one\n- item two\n> quote",
		"Plain text stays plain.",
	}
	for _, in := range inputs {
		once := CleanMarkdown(in)
		twice := CleanMarkdown(once)
		if once != twice {
			t.Errorf("CleanMarkdown not idempotent:\nonce:  %q\ntwice: %q", once, twice)
		}
	}
}
