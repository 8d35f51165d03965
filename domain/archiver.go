package domain

import "context"

// Archiver persists a generated script for later retrieval. Saves are
// best-effort; callers fire them detached and only log failures.
type Archiver interface {
	Save(ctx context.Context, filename string, content string, script Script) error
}
