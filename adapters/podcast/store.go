package podcast

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/dialogcast/dialogcast/domain"
	"github.com/dialogcast/dialogcast/utils/log"
)

// SpeechBackend renders one utterance as audio bytes.
type SpeechBackend interface {
	SynthesizeText(ctx context.Context, text string, roleID string) ([]byte, error)
}

// Store persists synthesized audio and assembled podcast artifacts under a
// single output directory. It implements the per-turn synthesizer, the batch
// voice processor, and the final assembler.
type Store struct {
	backend SpeechBackend
	hasher  domain.Hasher
	dir     string
	now     func() time.Time
}

func NewStore(backend SpeechBackend, hasher domain.Hasher, dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating audio directory: %w", err)
	}
	return &Store{
		backend: backend,
		hasher:  hasher,
		dir:     dir,
		now:     time.Now,
	}, nil
}

// Synthesize renders one turn and writes it to the store, returning the audio
// file path.
func (s *Store) Synthesize(ctx context.Context, turn domain.DialogTurn) (string, error) {
	audio, err := s.backend.SynthesizeText(ctx, turn.Text, turn.RoleID)
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%s_%s_%d.mp3", turn.RoleID, s.shortHash(turn.Text), s.now().Unix())
	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", fmt.Errorf("writing audio file: %w", err)
	}

	log.WithCtx(ctx).Debug("turn audio stored",
		zap.String("role", turn.RoleID),
		zap.String("path", path))
	return path, nil
}

// ProcessDialog synthesizes every turn of the dialog in order. The first
// failure aborts the batch.
func (s *Store) ProcessDialog(ctx context.Context, dialog []domain.DialogTurn) ([]domain.ProcessedTurn, error) {
	processed := make([]domain.ProcessedTurn, 0, len(dialog))
	for i, turn := range dialog {
		path, err := s.Synthesize(ctx, turn)
		if err != nil {
			return nil, fmt.Errorf("processing turn %d: %w", i, err)
		}
		processed = append(processed, domain.ProcessedTurn{DialogTurn: turn, AudioPath: path})
	}
	return processed, nil
}

type podcastManifest struct {
	Title     string                 `json:"title"`
	CreatedAt int64                  `json:"created_at"`
	Dialog    []domain.ProcessedTurn `json:"dialog"`
}

// CreatePodcast writes the final podcast manifest referencing the processed
// dialog's audio files and returns the manifest path.
func (s *Store) CreatePodcast(ctx context.Context, processed []domain.ProcessedTurn, title string) (string, error) {
	manifest := podcastManifest{
		Title:     title,
		CreatedAt: s.now().Unix(),
		Dialog:    processed,
	}
	payload, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding podcast manifest: %w", err)
	}

	filename := fmt.Sprintf("podcast_%s_%d.json", s.shortHash(title), s.now().Unix())
	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("writing podcast manifest: %w", err)
	}

	log.WithCtx(ctx).Info("podcast assembled",
		zap.String("title", title),
		zap.Int("turns", len(processed)),
		zap.String("path", path))
	return path, nil
}

func (s *Store) shortHash(text string) string {
	sum := s.hasher.Hash([]byte(text))
	if len(sum) > 8 {
		sum = sum[:8]
	}
	return sum
}
