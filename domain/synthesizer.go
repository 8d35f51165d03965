package domain

import "context"

// SpeechSynthesizer turns a single dialog turn into stored audio and returns a
// reference to it (a file path or URL).
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, turn DialogTurn) (string, error)
}

// ProcessedTurn is a dialog turn annotated with its synthesized audio.
type ProcessedTurn struct {
	DialogTurn
	AudioPath string `json:"audio_path"`
}

// VoiceProcessor is assembly stage 1: batch voice processing of a whole dialog.
type VoiceProcessor interface {
	ProcessDialog(ctx context.Context, dialog []DialogTurn) ([]ProcessedTurn, error)
}

// PodcastAssembler is assembly stage 2: it combines a processed dialog and a
// title into the final podcast artifact and returns the artifact path.
type PodcastAssembler interface {
	CreatePodcast(ctx context.Context, processed []ProcessedTurn, title string) (string, error)
}
