package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateEmptyInput(t *testing.T) {
	opts := GenerationOptions{Text: "   \n\t "}
	if err := opts.Validate(); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestValidateInputTooShort(t *testing.T) {
	opts := GenerationOptions{Text: "hi"}
	if err := opts.Validate(); !errors.Is(err, ErrInputTooShort) {
		t.Fatalf("expected ErrInputTooShort, got %v", err)
	}
}

func TestValidateBoundaryLengthPasses(t *testing.T) {
	// Exactly 10 runes, CJK included, passes at the boundary.
	opts := GenerationOptions{Text: "一二三四五六七八九十"}
	if err := opts.Validate(); err != nil {
		t.Fatalf("10-rune input should validate, got %v", err)
	}
	opts = GenerationOptions{Text: "abcdefghij"}
	if err := opts.Validate(); err != nil {
		t.Fatalf("10-char input should validate, got %v", err)
	}
}

func TestValidateMissingCustomModel(t *testing.T) {
	opts := GenerationOptions{Text: strings.Repeat("字", 20), Model: ModelCustom}
	if err := opts.Validate(); !errors.Is(err, ErrMissingCustomModel) {
		t.Fatalf("expected ErrMissingCustomModel, got %v", err)
	}

	opts.CustomModel = "my-model"
	if err := opts.Validate(); err != nil {
		t.Fatalf("custom model supplied, expected nil, got %v", err)
	}
}

func TestResolvedModel(t *testing.T) {
	cases := []struct {
		opts GenerationOptions
		want string
	}{
		{GenerationOptions{}, DefaultModel},
		{GenerationOptions{Model: "gemini-1.5-pro"}, "gemini-1.5-pro"},
		{GenerationOptions{Model: ModelCustom, CustomModel: " my-model "}, "my-model"},
	}
	for _, tc := range cases {
		if got := tc.opts.ResolvedModel(); got != tc.want {
			t.Fatalf("ResolvedModel() = %q, want %q", got, tc.want)
		}
	}
}

func TestTokenUsageTotal(t *testing.T) {
	usage := TokenUsage{PromptTokens: 120, CompletionTokens: 80}
	if got := usage.Total(); got != 200 {
		t.Fatalf("derived total = %d, want 200", got)
	}

	usage = TokenUsage{PromptTokens: 120, CompletionTokens: 80, TotalTokens: 210}
	if got := usage.Total(); got != 210 {
		t.Fatalf("explicit total = %d, want 210", got)
	}

	if got := (TokenUsage{}).Total(); got != 0 {
		t.Fatalf("zero usage total = %d, want 0", got)
	}
}

func TestDiagnoseWarnOnZeroUsage(t *testing.T) {
	script := Script{Segments: []Segment{{Role: "a", Text: "Hello."}}}
	diag := Diagnose(TokenUsage{}, script)
	if diag.OK {
		t.Fatal("expected warn for zero token usage")
	}
	if diag.Reason == "" {
		t.Fatal("warn must carry a remediation hint")
	}
}

func TestDiagnoseWarnOnModelError(t *testing.T) {
	script := Script{Raw: "text", Error: "upstream exploded"}
	diag := Diagnose(TokenUsage{TotalTokens: 500}, script)
	if diag.OK {
		t.Fatal("expected warn for model error")
	}
}

func TestDiagnoseOK(t *testing.T) {
	script := Script{Segments: []Segment{{Role: "a", Text: "Hello."}}}
	diag := Diagnose(TokenUsage{PromptTokens: 10, CompletionTokens: 5}, script)
	if !diag.OK {
		t.Fatalf("expected ok, got warn: %s", diag.Reason)
	}
}

func TestRoleDisplayName(t *testing.T) {
	if got := (Role{ID: "host"}).DisplayName(); got != "host" {
		t.Fatalf("nameless role should fall back to id, got %q", got)
	}
	if got := (Role{ID: "host", Name: "主持人"}).DisplayName(); got != "主持人" {
		t.Fatalf("got %q", got)
	}
}
