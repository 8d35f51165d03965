package domain

import (
	"strings"
	"unicode/utf8"
)

// DefaultModel is the generation model used when the caller does not pick one.
const DefaultModel = "gemini-2.0-flash-001"

// ModelCustom is the sentinel selecting a caller-supplied model name.
const ModelCustom = "custom"

// DialogStyle selects the prompt catalog entry used for script generation.
type DialogStyle string

const (
	StyleCasual        DialogStyle = "casual"
	StyleProfessional  DialogStyle = "professional"
	StyleEntertainment DialogStyle = "entertainment"
)

// Label returns the human readable name of the style.
func (s DialogStyle) Label() string {
	switch s {
	case StyleProfessional:
		return "专业严谨"
	case StyleEntertainment:
		return "娱乐幽默"
	default:
		return "轻松随意"
	}
}

// Role is one participant identity referenced by script segments.
type Role struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Title string `json:"title,omitempty"`
}

// DisplayName returns the role's name, falling back to its id.
func (r Role) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// Segment is one attributed utterance in a structured script.
type Segment struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Script is the generation service's structured result. Either Segments or Raw
// is populated; Raw is the unstructured fallback when the model output could
// not be decoded into segments.
type Script struct {
	Roles    []Role    `json:"roles,omitempty"`
	Segments []Segment `json:"segments,omitempty"`
	Raw      string    `json:"raw,omitempty"`
	Notes    string    `json:"notes,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// ModelError reports whether the generation backend itself flagged a failure.
func (s Script) ModelError() bool {
	return s.Error != ""
}

// Empty reports whether the script carries no usable content at all.
func (s Script) Empty() bool {
	return len(s.Segments) == 0 && strings.TrimSpace(s.Raw) == ""
}

// TokenUsage reports the token accounting returned alongside a script.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Total returns the reported total, deriving it from prompt+completion when the
// backend did not supply one.
func (u TokenUsage) Total() int {
	if u.TotalTokens > 0 {
		return u.TotalTokens
	}
	return u.PromptTokens + u.CompletionTokens
}

// DialogTurn is the canonical rendering unit of a normalized script.
type DialogTurn struct {
	RoleID  string `json:"role"`
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// GenerationOptions carries the user's generation request.
type GenerationOptions struct {
	Text         string      `json:"text"`
	Style        DialogStyle `json:"style"`
	Participants int         `json:"participants"`
	Model        string      `json:"model"`
	CustomModel  string      `json:"custom_model,omitempty"`
}

const minInputRunes = 10

// Validate checks the options before any network interaction.
func (o GenerationOptions) Validate() error {
	text := strings.TrimSpace(o.Text)
	if text == "" {
		return ErrEmptyInput
	}
	if utf8.RuneCountInString(text) < minInputRunes {
		return ErrInputTooShort
	}
	if o.Model == ModelCustom && strings.TrimSpace(o.CustomModel) == "" {
		return ErrMissingCustomModel
	}
	return nil
}

// ResolvedModel returns the model identifier the generation request will use.
func (o GenerationOptions) ResolvedModel() string {
	if o.Model == ModelCustom {
		return strings.TrimSpace(o.CustomModel)
	}
	if o.Model == "" {
		return DefaultModel
	}
	return o.Model
}
