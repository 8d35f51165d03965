package podcast

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dialogcast/dialogcast/adapters/hasher"
	"github.com/dialogcast/dialogcast/domain"
)

type fakeBackend struct {
	calls int
	err   error
}

func (f *fakeBackend) SynthesizeText(ctx context.Context, text string, roleID string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("audio:" + roleID + ":" + text), nil
}

func newTestStore(t *testing.T, backend SpeechBackend) *Store {
	t.Helper()
	store, err := NewStore(backend, hasher.New(), t.TempDir())
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	return store
}

func TestSynthesizeWritesAudioFile(t *testing.T) {
	store := newTestStore(t, &fakeBackend{})

	path, err := store.Synthesize(context.Background(), domain.DialogTurn{RoleID: "host", Text: "你好。"})
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}

	base := filepath.Base(path)
	if !strings.HasPrefix(base, "host_") || !strings.HasSuffix(base, ".mp3") {
		t.Fatalf("unexpected audio filename: %q", base)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading audio file: %v", err)
	}
	if string(content) != "audio:host:你好。" {
		t.Fatalf("unexpected audio content: %q", content)
	}
}

func TestProcessDialogAbortsOnFirstFailure(t *testing.T) {
	backend := &fakeBackend{err: errors.New("quota exceeded")}
	store := newTestStore(t, backend)

	dialog := []domain.DialogTurn{
		{RoleID: "host", Text: "一。"},
		{RoleID: "guest", Text: "二。"},
	}
	_, err := store.ProcessDialog(context.Background(), dialog)
	if err == nil {
		t.Fatal("expected failure")
	}
	if backend.calls != 1 {
		t.Fatalf("backend called %d times after first failure, want 1", backend.calls)
	}
}

func TestProcessDialogAnnotatesEveryTurn(t *testing.T) {
	store := newTestStore(t, &fakeBackend{})

	dialog := []domain.DialogTurn{
		{RoleID: "host", Speaker: "主持人", Text: "一。"},
		{RoleID: "guest", Speaker: "嘉宾", Text: "二。"},
	}
	processed, err := store.ProcessDialog(context.Background(), dialog)
	if err != nil {
		t.Fatalf("ProcessDialog returned error: %v", err)
	}
	if len(processed) != 2 {
		t.Fatalf("expected 2 processed turns, got %d", len(processed))
	}
	for i, p := range processed {
		if p.DialogTurn != dialog[i] {
			t.Fatalf("turn %d mutated: %+v", i, p.DialogTurn)
		}
		if p.AudioPath == "" {
			t.Fatalf("turn %d has no audio path", i)
		}
	}
}

func TestCreatePodcastWritesManifest(t *testing.T) {
	store := newTestStore(t, &fakeBackend{})

	processed := []domain.ProcessedTurn{
		{DialogTurn: domain.DialogTurn{RoleID: "host", Speaker: "主持人", Text: "一。"}, AudioPath: "a.mp3"},
	}
	path, err := store.CreatePodcast(context.Background(), processed, "播客对话 2025-03-14")
	if err != nil {
		t.Fatalf("CreatePodcast returned error: %v", err)
	}

	base := filepath.Base(path)
	if !strings.HasPrefix(base, "podcast_") || !strings.HasSuffix(base, ".json") {
		t.Fatalf("unexpected manifest filename: %q", base)
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading manifest: %v", err)
	}
	var manifest podcastManifest
	if err := json.Unmarshal(payload, &manifest); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}
	if manifest.Title != "播客对话 2025-03-14" {
		t.Fatalf("manifest title = %q", manifest.Title)
	}
	if len(manifest.Dialog) != 1 || manifest.Dialog[0].AudioPath != "a.mp3" {
		t.Fatalf("manifest dialog wrong: %+v", manifest.Dialog)
	}
}
