package llm

import (
	"errors"
	"strings"
	"testing"

	"github.com/dialogcast/dialogcast/domain"
)

func TestDecodeScriptStrictJSON(t *testing.T) {
	payload := `{"roles":[{"id":"host","name":"主持人"}],"segments":[{"role":"host","text":"开场。"}]}`

	script, ok := decodeScript(payload)
	if !ok {
		t.Fatal("expected successful decode")
	}
	if len(script.Segments) != 1 || script.Segments[0].Role != "host" {
		t.Fatalf("unexpected script: %+v", script)
	}
}

func TestDecodeScriptSalvagesBraceDelimitedJSON(t *testing.T) {
	payload := "好的，这是你要的脚本：\n```json\n{\"segments\":[{\"role\":\"host\",\"text\":\"开场。\"}]}\n```\n希望有帮助。"

	script, ok := decodeScript(payload)
	if !ok {
		t.Fatal("expected salvage decode to succeed")
	}
	if len(script.Segments) != 1 {
		t.Fatalf("unexpected script: %+v", script)
	}
}

func TestDecodeScriptRejectsProse(t *testing.T) {
	if _, ok := decodeScript("抱歉，我无法完成这个请求。"); ok {
		t.Fatal("prose must not decode into a script")
	}
}

func TestDecodeScriptRejectsEmptyObject(t *testing.T) {
	if _, ok := decodeScript("{}"); ok {
		t.Fatal("an empty script is not usable")
	}
}

func TestFallbackScriptSplitsSourceText(t *testing.T) {
	opts := domain.GenerationOptions{
		Text:         "第一句。第二句。第三句。",
		Participants: 2,
	}
	script := fallbackScript(opts, errors.New("connection refused"))

	if !script.ModelError() {
		t.Fatal("fallback script must carry the backend error")
	}
	if len(script.Roles) != 2 {
		t.Fatalf("expected 2 roles, got %d", len(script.Roles))
	}
	if script.Roles[0].Name != "主持人" || script.Roles[1].Name != "嘉宾1" {
		t.Fatalf("unexpected role names: %+v", script.Roles)
	}
	if len(script.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(script.Segments))
	}
	// Sentences alternate over the synthetic roles.
	if script.Segments[0].Role != "r1" || script.Segments[1].Role != "r2" || script.Segments[2].Role != "r1" {
		t.Fatalf("unexpected role rotation: %+v", script.Segments)
	}
	if script.Empty() {
		t.Fatal("fallback script must be renderable")
	}
}

func TestSystemPromptCarriesRoleInstruction(t *testing.T) {
	cases := []struct {
		participants int
		want         string
	}{
		{2, "角色：主持人、嘉宾"},
		{3, "角色：主持人、嘉宾A、嘉宾B"},
		{4, "角色：主持人A、主持人B、嘉宾A、嘉宾B"},
		{6, "角色：主持人、嘉宾1-5"},
	}
	for _, tc := range cases {
		prompt := systemPrompt(domain.StyleCasual, tc.participants)
		if !strings.Contains(prompt, tc.want) {
			t.Fatalf("prompt for %d participants missing %q", tc.participants, tc.want)
		}
	}
}

func TestSystemPromptUnknownStyleFallsBackToCasual(t *testing.T) {
	prompt := systemPrompt(domain.DialogStyle("noir"), 2)
	if !strings.Contains(prompt, stylePrompts[domain.StyleCasual]) {
		t.Fatal("unknown style should fall back to the casual prompt")
	}
}

func TestUserPromptEmbedsSourceText(t *testing.T) {
	opts := domain.GenerationOptions{Text: "共享单车治理难题引发关注。", Style: domain.StyleProfessional}
	prompt := userPrompt(opts)
	if !strings.Contains(prompt, opts.Text) {
		t.Fatal("user prompt must embed the full source text")
	}
	if !strings.Contains(prompt, "professional") {
		t.Fatal("user prompt must name the requested style")
	}
	if !strings.Contains(prompt, `"segments"`) {
		t.Fatal("user prompt must describe the JSON output contract")
	}
}
