package tts

import (
	"context"
	"fmt"
	"sync"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
)

// Voice is the synthesis configuration for one speaker role.
type Voice struct {
	Name         string `json:"voice_id"`
	LanguageCode string `json:"language_code"`
}

var defaultVoices = map[string]Voice{
	"host":   {Name: "cmn-CN-Standard-B", LanguageCode: "cmn-CN"},
	"guest":  {Name: "cmn-CN-Standard-C", LanguageCode: "cmn-CN"},
	"guestA": {Name: "cmn-CN-Standard-C", LanguageCode: "cmn-CN"},
	"guestB": {Name: "cmn-CN-Standard-D", LanguageCode: "cmn-CN"},
}

type GoogleTTS struct {
	client *texttospeech.Client

	mu     sync.RWMutex
	voices map[string]Voice
}

func NewGoogleTTS() *GoogleTTS {
	client, err := texttospeech.NewClient(context.Background())
	if err != nil {
		panic(fmt.Errorf("creating Google tts client: %w", err))
	}
	voices := make(map[string]Voice, len(defaultVoices))
	for id, v := range defaultVoices {
		voices[id] = v
	}
	return &GoogleTTS{
		client: client,
		voices: voices,
	}
}

// SynthesizeText renders text as MP3 audio using the voice registered for the
// given role. Unknown roles fall back to the host voice.
func (g *GoogleTTS) SynthesizeText(ctx context.Context, text string, roleID string) ([]byte, error) {
	voice := g.voiceFor(roleID)

	req := texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{
				Text: text,
			},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: voice.LanguageCode,
			Name:         voice.Name,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	}
	resp, err := g.client.SynthesizeSpeech(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("synthesizing speech: %w", err)
	}

	return resp.GetAudioContent(), nil
}

// Voices lists the registered role voices.
func (g *GoogleTTS) Voices() map[string]Voice {
	g.mu.RLock()
	defer g.mu.RUnlock()
	voices := make(map[string]Voice, len(g.voices))
	for id, v := range g.voices {
		voices[id] = v
	}
	return voices
}

// UpdateVoice replaces the voice for an already registered role.
func (g *GoogleTTS) UpdateVoice(roleID string, voice Voice) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.voices[roleID]; !ok {
		return false
	}
	g.voices[roleID] = voice
	return true
}

func (g *GoogleTTS) voiceFor(roleID string) Voice {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if voice, ok := g.voices[roleID]; ok {
		return voice
	}
	return g.voices["host"]
}
