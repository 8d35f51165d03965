package domain

import "context"

// ScriptGenerator abstracts the text-generation backend that turns source
// material into a podcast script.
type ScriptGenerator interface {
	// GenerateScript requests a structured script for the given options and
	// returns it together with the backend's token accounting.
	GenerateScript(ctx context.Context, opts GenerationOptions) (Script, TokenUsage, error)
}
