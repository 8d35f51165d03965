package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dialogcast/dialogcast/domain"
)

// Fixed download names for the two export forms.
const (
	TextExportFilename       = "播客对话.txt"
	StructuredExportFilename = "podcast-script.json"
)

// ExportService reconstructs exportable representations of the current session.
type ExportService struct {
	sessions *SessionStore
}

func NewExportService(sessions *SessionStore) *ExportService {
	return &ExportService{sessions: sessions}
}

// Reconstruct renders the plain-text export: configuration header, token-usage
// block when a report exists, a separator, then the turns in order.
func (s *ExportService) Reconstruct() (string, error) {
	session := s.sessions.Snapshot()
	if session == nil || session.Script == nil {
		return "", domain.ErrNothingGenerated
	}
	return renderDialogText(session), nil
}

// ReconstructStructured re-serializes the current script verbatim.
func (s *ExportService) ReconstructStructured() ([]byte, error) {
	session := s.sessions.Snapshot()
	if session == nil || session.Script == nil {
		return nil, domain.ErrNothingGenerated
	}
	payload, err := json.MarshalIndent(session.Script, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing script: %w", err)
	}
	return payload, nil
}

func renderDialogText(session *Session) string {
	var b strings.Builder

	model := session.Model
	if model == "" {
		model = domain.DefaultModel
	}
	fmt.Fprintf(&b, "对话风格：%s\n", session.Options.Style.Label())
	fmt.Fprintf(&b, "参与人数：%d\n", session.Options.Participants)
	fmt.Fprintf(&b, "使用模型：%s\n", model)

	if session.Usage != nil {
		fmt.Fprintf(&b, "Token 用量：prompt=%d completion=%d total=%d\n",
			session.Usage.PromptTokens,
			session.Usage.CompletionTokens,
			session.Usage.Total())
	}

	b.WriteString(strings.Repeat("-", 40))
	b.WriteString("\n")

	for i, turn := range session.Dialog {
		if i > 0 {
			b.WriteString("\n")
		}
		if turn.Speaker != "" {
			fmt.Fprintf(&b, "%s: %s\n", turn.Speaker, turn.Text)
		} else {
			fmt.Fprintf(&b, "%s\n", turn.Text)
		}
	}

	return b.String()
}
