package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/dialogcast/dialogcast/domain"
)

const (
	maxOutputTokens = 4096
	temperature     = 0.7
)

type GeminiGenerator struct {
	client *genai.Client
}

func NewGeminiGenerator() domain.ScriptGenerator {
	ctx := context.TODO()

	client, err := genai.NewClient(
		ctx,
		&genai.ClientConfig{
			HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
		},
	)
	if err != nil {
		panic(fmt.Errorf("creating genai client: %w", err))
	}

	return &GeminiGenerator{client: client}
}

func (g *GeminiGenerator) GenerateScript(ctx context.Context, opts domain.GenerationOptions) (domain.Script, domain.TokenUsage, error) {
	model := opts.ResolvedModel()

	resp, err := g.client.Models.GenerateContent(
		ctx,
		model,
		genai.Text(userPrompt(opts)),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{{Text: systemPrompt(opts.Style, opts.Participants)}},
			},
			ResponseMIMEType: "application/json",
			Temperature:      genai.Ptr[float32](temperature),
			MaxOutputTokens:  maxOutputTokens,
		},
	)
	if err != nil {
		// A failed call degrades to a locally split script carrying the error,
		// so the caller still gets something renderable plus a zero-usage
		// report for the diagnostic to pick up.
		return fallbackScript(opts, err), domain.TokenUsage{}, nil
	}

	usage := tokenUsage(resp)
	text := resp.Text()

	script, ok := decodeScript(text)
	if !ok {
		script = domain.Script{
			Roles: []domain.Role{
				{ID: "host", Name: "主持人"},
				{ID: "guest", Name: "嘉宾"},
			},
			Segments: []domain.Segment{{Role: "host", Text: text}},
			Error:    "JSON解析失败",
		}
	}
	if script.Raw == "" {
		script.Raw = text
	}
	return script, usage, nil
}

// decodeScript parses the model output into a script, retrying with the
// outermost brace-delimited slice when the output has prose around the JSON.
func decodeScript(text string) (domain.Script, bool) {
	var script domain.Script
	if err := json.Unmarshal([]byte(text), &script); err == nil && !script.Empty() {
		return script, true
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		script = domain.Script{}
		if err := json.Unmarshal([]byte(text[start:end+1]), &script); err == nil && !script.Empty() {
			return script, true
		}
	}
	return domain.Script{}, false
}

// fallbackScript builds a script locally by splitting the source text into
// sentences and distributing them over synthetic roles.
func fallbackScript(opts domain.GenerationOptions, cause error) domain.Script {
	participants := opts.Participants
	if participants < 1 {
		participants = 2
	}

	roles := make([]domain.Role, participants)
	for i := range roles {
		name := "主持人"
		if i > 0 {
			name = fmt.Sprintf("嘉宾%d", i)
		}
		roles[i] = domain.Role{ID: fmt.Sprintf("r%d", i+1), Name: name}
	}

	sentences := domain.SplitSentences(opts.Text)
	segments := make([]domain.Segment, 0, len(sentences))
	for i, sentence := range sentences {
		segments = append(segments, domain.Segment{
			Role: roles[i%participants].ID,
			Text: sentence,
		})
	}

	rawLimit := len(sentences)
	if rawLimit > 5 {
		rawLimit = 5
	}

	return domain.Script{
		Roles:    roles,
		Segments: segments,
		Raw:      strings.Join(sentences[:rawLimit], "\n"),
		Error:    cause.Error(),
	}
}

func tokenUsage(resp *genai.GenerateContentResponse) domain.TokenUsage {
	if resp == nil || resp.UsageMetadata == nil {
		return domain.TokenUsage{}
	}
	return domain.TokenUsage{
		PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
		CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
	}
}
