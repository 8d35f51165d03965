package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dialogcast/dialogcast/domain"
	"github.com/dialogcast/dialogcast/utils/log"
)

// FileArchiver saves generated scripts under a directory: the rendered text as
// <name>.txt and the script itself as <name>.json.
type FileArchiver struct {
	dir string
}

func NewFileArchiver(dir string) (*FileArchiver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}
	return &FileArchiver{dir: dir}, nil
}

func (a *FileArchiver) Save(ctx context.Context, filename string, content string, script domain.Script) error {
	textPath := filepath.Join(a.dir, filename+".txt")
	if err := os.WriteFile(textPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing archive text: %w", err)
	}

	payload, err := json.MarshalIndent(script, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding archive script: %w", err)
	}
	scriptPath := filepath.Join(a.dir, filename+".json")
	if err := os.WriteFile(scriptPath, payload, 0o644); err != nil {
		return fmt.Errorf("writing archive script: %w", err)
	}

	log.WithCtx(ctx).Debug("script archived", zap.String("filename", filename))
	return nil
}
