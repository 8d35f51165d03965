package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dialogcast/dialogcast/domain"
	"github.com/dialogcast/dialogcast/utils/log"
)

// AssemblyService drives the downstream speech stages: per-turn synthesis on
// demand, and the two-stage whole-dialog assembly (batch voice processing,
// then podcast assembly).
type AssemblyService struct {
	synthesizer domain.SpeechSynthesizer
	processor   domain.VoiceProcessor
	assembler   domain.PodcastAssembler
	broker      domain.MessageBroker
	sessions    *SessionStore

	mu       sync.Mutex
	inFlight bool

	now func() time.Time
}

func NewAssemblyService(
	synthesizer domain.SpeechSynthesizer,
	processor domain.VoiceProcessor,
	assembler domain.PodcastAssembler,
	broker domain.MessageBroker,
	sessions *SessionStore,
) *AssemblyService {
	return &AssemblyService{
		synthesizer: synthesizer,
		processor:   processor,
		assembler:   assembler,
		broker:      broker,
		sessions:    sessions,
		now:         time.Now,
	}
}

// Synthesize produces audio for a single turn. Calls are independent: there is
// no queueing or de-duplication, and a failure is scoped to its own turn.
func (s *AssemblyService) Synthesize(ctx context.Context, turn domain.DialogTurn) (string, error) {
	audioRef, err := s.synthesizer.Synthesize(ctx, turn)
	if err != nil {
		return "", fmt.Errorf("synthesizing turn for %s: %w", turn.RoleID, err)
	}
	s.publish(ctx, domain.PipelineEvent{
		Kind:      domain.EventTurnSynthesized,
		Artifact:  audioRef,
		Timestamp: s.now(),
	})
	return audioRef, nil
}

// Assemble turns the current dialog into a podcast artifact through two
// dependent stages. Stage 2 is only attempted after stage 1 succeeds, and a
// failure is attributed to the stage that produced it. Stage 1 output is
// discarded on a stage 2 failure; there is no retry or resume.
func (s *AssemblyService) Assemble(ctx context.Context) (string, error) {
	session := s.sessions.Snapshot()
	if session == nil || len(session.Dialog) == 0 {
		return "", domain.ErrNoDialog
	}

	if !s.begin() {
		return "", domain.ErrAssemblyInFlight
	}
	defer s.end()

	processed, err := s.processor.ProcessDialog(ctx, session.Dialog)
	if err != nil {
		return "", &domain.StageError{Stage: domain.StageVoiceProcessing, Err: err}
	}

	title := fmt.Sprintf("播客对话 %s", s.now().Format("2006-01-02"))
	artifact, err := s.assembler.CreatePodcast(ctx, processed, title)
	if err != nil {
		return "", &domain.StageError{Stage: domain.StageAssembly, Err: err}
	}

	s.publish(ctx, domain.PipelineEvent{
		Kind:      domain.EventPodcastAssembled,
		TurnCount: len(session.Dialog),
		Artifact:  artifact,
		Timestamp: s.now(),
	})
	return artifact, nil
}

func (s *AssemblyService) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return false
	}
	s.inFlight = true
	return true
}

func (s *AssemblyService) end() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

func (s *AssemblyService) publish(ctx context.Context, event domain.PipelineEvent) {
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
