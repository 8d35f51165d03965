package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dialogcast/dialogcast/domain"
)

type fakeSynthesizer struct {
	err error
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, turn domain.DialogTurn) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "audio/" + turn.RoleID + ".mp3", nil
}

type fakeProcessor struct {
	mu      sync.Mutex
	calls   int
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeProcessor) ProcessDialog(ctx context.Context, dialog []domain.DialogTurn) ([]domain.ProcessedTurn, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	processed := make([]domain.ProcessedTurn, len(dialog))
	for i, turn := range dialog {
		processed[i] = domain.ProcessedTurn{DialogTurn: turn, AudioPath: "audio/" + turn.RoleID + ".mp3"}
	}
	return processed, nil
}

func (f *fakeProcessor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeAssembler struct {
	mu    sync.Mutex
	calls int
	err   error
	title string
}

func (f *fakeAssembler) CreatePodcast(ctx context.Context, processed []domain.ProcessedTurn, title string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.title = title
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return "audio/podcast.json", nil
}

func (f *fakeAssembler) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func storeWithDialog() *SessionStore {
	sessions := NewSessionStore()
	script := structuredScript()
	sessions.replace(&Session{
		Script: &script,
		Usage:  &domain.TokenUsage{TotalTokens: 100},
		Dialog: domain.Normalize(script, script.Roles),
	})
	return sessions
}

func TestAssembleRequiresDialog(t *testing.T) {
	svc := NewAssemblyService(&fakeSynthesizer{}, &fakeProcessor{}, &fakeAssembler{}, nil, NewSessionStore())

	if _, err := svc.Assemble(context.Background()); !errors.Is(err, domain.ErrNoDialog) {
		t.Fatalf("expected ErrNoDialog, got %v", err)
	}
}

func TestAssembleStageTwoNeverRunsAfterStageOneFailure(t *testing.T) {
	processor := &fakeProcessor{err: errors.New("tts quota exceeded")}
	assembler := &fakeAssembler{}
	svc := NewAssemblyService(&fakeSynthesizer{}, processor, assembler, nil, storeWithDialog())

	_, err := svc.Assemble(context.Background())
	var stageErr *domain.StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected StageError, got %v", err)
	}
	if stageErr.Stage != domain.StageVoiceProcessing {
		t.Fatalf("failure attributed to %q, want %q", stageErr.Stage, domain.StageVoiceProcessing)
	}
	if assembler.callCount() != 0 {
		t.Fatalf("stage 2 was attempted %d times after stage 1 failure", assembler.callCount())
	}
}

func TestAssembleStageTwoFailureAttribution(t *testing.T) {
	assembler := &fakeAssembler{err: errors.New("manifest write failed")}
	svc := NewAssemblyService(&fakeSynthesizer{}, &fakeProcessor{}, assembler, nil, storeWithDialog())

	_, err := svc.Assemble(context.Background())
	var stageErr *domain.StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected StageError, got %v", err)
	}
	if stageErr.Stage != domain.StageAssembly {
		t.Fatalf("failure attributed to %q, want %q", stageErr.Stage, domain.StageAssembly)
	}
}

func TestAssembleSuccess(t *testing.T) {
	assembler := &fakeAssembler{}
	svc := NewAssemblyService(&fakeSynthesizer{}, &fakeProcessor{}, assembler, nil, storeWithDialog())

	artifact, err := svc.Assemble(context.Background())
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if artifact != "audio/podcast.json" {
		t.Fatalf("unexpected artifact: %q", artifact)
	}
	if !strings.HasPrefix(assembler.title, "播客对话 ") {
		t.Fatalf("title %q does not carry the date-derived prefix", assembler.title)
	}
}

func TestAssembleSingleFlight(t *testing.T) {
	processor := &fakeProcessor{started: make(chan struct{}), release: make(chan struct{})}
	svc := NewAssemblyService(&fakeSynthesizer{}, processor, &fakeAssembler{}, nil, storeWithDialog())

	done := make(chan error, 1)
	go func() {
		_, err := svc.Assemble(context.Background())
		done <- err
	}()

	<-processor.started
	if _, err := svc.Assemble(context.Background()); !errors.Is(err, domain.ErrAssemblyInFlight) {
		t.Fatalf("expected ErrAssemblyInFlight, got %v", err)
	}

	close(processor.release)
	if err := <-done; err != nil {
		t.Fatalf("first assembly failed: %v", err)
	}
}

func TestSynthesizeWrapsTurnScopedFailure(t *testing.T) {
	svc := NewAssemblyService(&fakeSynthesizer{err: errors.New("voice unavailable")}, &fakeProcessor{}, &fakeAssembler{}, nil, NewSessionStore())

	_, err := svc.Synthesize(context.Background(), domain.DialogTurn{RoleID: "host", Text: "你好。"})
	if err == nil || !strings.Contains(err.Error(), "host") {
		t.Fatalf("expected turn-scoped error naming the role, got %v", err)
	}
}

func TestSynthesizeIndependentOfAssemblyState(t *testing.T) {
	svc := NewAssemblyService(&fakeSynthesizer{}, &fakeProcessor{}, &fakeAssembler{}, nil, NewSessionStore())

	ref, err := svc.Synthesize(context.Background(), domain.DialogTurn{RoleID: "guest", Text: "好的。"})
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if ref != "audio/guest.mp3" {
		t.Fatalf("unexpected audio reference: %q", ref)
	}
}
