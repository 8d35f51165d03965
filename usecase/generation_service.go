package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/dialogcast/dialogcast/domain"
	"github.com/dialogcast/dialogcast/utils/log"
)

const (
	// PipelineEventsTopic carries pipeline progress events to connected clients.
	PipelineEventsTopic = "pipeline.events"

	archiveExcerptRunes = 12
	archiveTimeLayout   = "20060102_150405"
)

// GenerationService runs the text-generation leg of the pipeline: it validates
// the request, calls the generation backend, normalizes the script into dialog
// turns, replaces the session record, and fires the detached auto-save.
type GenerationService struct {
	generator domain.ScriptGenerator
	archiver  domain.Archiver
	broker    domain.MessageBroker
	sessions  *SessionStore

	mu       sync.Mutex
	inFlight bool
	lastOpts *domain.GenerationOptions

	now func() time.Time
}

// GenerationResult is everything a caller needs to render a finished
// generation: the normalized turns plus the diagnostic verdict.
type GenerationResult struct {
	Script     domain.Script       `json:"script"`
	Usage      domain.TokenUsage   `json:"token_usage"`
	Dialog     []domain.DialogTurn `json:"dialog"`
	Model      string              `json:"model"`
	Diagnostic domain.Diagnostic   `json:"diagnostic"`
}

func NewGenerationService(
	generator domain.ScriptGenerator,
	archiver domain.Archiver,
	broker domain.MessageBroker,
	sessions *SessionStore,
) *GenerationService {
	return &GenerationService{
		generator: generator,
		archiver:  archiver,
		broker:    broker,
		sessions:  sessions,
		now:       time.Now,
	}
}

// Generate runs one generation end to end. At most one generation is in flight
// at a time; re-entrant calls fail with ErrGenerationInFlight and the caller
// may retry once the first call settles.
func (s *GenerationService) Generate(ctx context.Context, opts domain.GenerationOptions) (*GenerationResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if !s.begin(opts) {
		return nil, domain.ErrGenerationInFlight
	}
	defer s.end()

	script, usage, err := s.generator.GenerateScript(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("generating script: %w", err)
	}

	dialog := domain.Normalize(script, script.Roles)
	model := opts.ResolvedModel()

	session := &Session{
		Script:  &script,
		Usage:   &usage,
		Dialog:  dialog,
		Options: opts,
		Model:   model,
	}
	s.sessions.replace(session)

	diagnostic := domain.Diagnose(usage, script)
	if !diagnostic.OK {
		log.WithCtx(ctx).Warn("possible silent generation failure",
			zap.String("model", model),
			zap.Int("total_tokens", usage.Total()),
			zap.Bool("model_error", script.ModelError()))
	}

	// Auto-save runs detached: its failure is logged, never surfaced, and
	// never blocks completion of the generation.
	go s.autoSave(context.Background(), session)

	s.publish(ctx, domain.PipelineEvent{
		Kind:      domain.EventScriptGenerated,
		Model:     model,
		TurnCount: len(dialog),
		Timestamp: s.now(),
	})
	if !diagnostic.OK {
		s.publish(ctx, domain.PipelineEvent{
			Kind:      domain.EventGenerationWarning,
			Model:     model,
			Detail:    diagnostic.Reason,
			Timestamp: s.now(),
		})
	}

	return &GenerationResult{
		Script:     script,
		Usage:      usage,
		Dialog:     dialog,
		Model:      model,
		Diagnostic: diagnostic,
	}, nil
}

// Regenerate replays the previously used options through Generate. It has no
// special-casing: identical preconditions and side effects apply.
func (s *GenerationService) Regenerate(ctx context.Context) (*GenerationResult, error) {
	s.mu.Lock()
	opts := s.lastOpts
	s.mu.Unlock()
	if opts == nil {
		return nil, domain.ErrNothingGenerated
	}
	return s.Generate(ctx, *opts)
}

func (s *GenerationService) begin(opts domain.GenerationOptions) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return false
	}
	s.inFlight = true
	s.lastOpts = &opts
	return true
}

func (s *GenerationService) end() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

func (s *GenerationService) autoSave(ctx context.Context, session *Session) {
	if s.archiver == nil {
		return
	}
	filename := archiveFilename(session.Dialog, s.now())
	content := renderDialogText(session)
	if err := s.archiver.Save(ctx, filename, content, *session.Script); err != nil {
		log.WithCtx(ctx).Warn("auto-save failed",
			zap.String("filename", filename),
			zap.Error(err))
	}
}

func (s *GenerationService) publish(ctx context.Context, event domain.PipelineEvent) {
	if s.broker == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.WithCtx(ctx).Error("marshaling pipeline event", zap.Error(err))
		return
	}
	if err := s.broker.Publish(ctx, PipelineEventsTopic, event.Kind, payload); err != nil {
		log.WithCtx(ctx).Warn("publishing pipeline event",
			zap.String("kind", event.Kind),
			zap.Error(err))
	}
}

// archiveFilename builds a sortable save name from a short sanitized excerpt
// of the first turn's text plus a timestamp.
func archiveFilename(dialog []domain.DialogTurn, now time.Time) string {
	excerpt := "podcast"
	if len(dialog) > 0 {
		if sanitized := sanitizeExcerpt(dialog[0].Text); sanitized != "" {
			excerpt = sanitized
		}
	}
	return excerpt + "_" + now.Format(archiveTimeLayout)
}

// sanitizeExcerpt strips everything but ASCII alphanumerics and CJK runes and
// truncates the result to a short fixed length.
func sanitizeExcerpt(text string) string {
	var b strings.Builder
	count := 0
	for _, r := range text {
		if count == archiveExcerptRunes {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case unicode.Is(unicode.Han, r):
		default:
			continue
		}
		b.WriteRune(r)
		count++
	}
	return b.String()
}
