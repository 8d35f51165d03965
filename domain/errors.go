package domain

import (
	"errors"
	"fmt"
)

// Validation errors, checked before any network call is made.
var (
	ErrEmptyInput         = errors.New("input text is empty")
	ErrInputTooShort      = errors.New("input text is shorter than 10 characters")
	ErrMissingCustomModel = errors.New("custom model selected but no model name supplied")
)

// Precondition errors on dependent flows.
var (
	ErrNoDialog         = errors.New("no dialog available for assembly")
	ErrNothingGenerated = errors.New("no script has been generated yet")
)

// Single-flight guards.
var (
	ErrGenerationInFlight = errors.New("a generation is already in flight")
	ErrAssemblyInFlight   = errors.New("an assembly is already in flight")
)

// Assembly stages, used to attribute a failure to the step that produced it.
const (
	StageVoiceProcessing = "voice-processing"
	StageAssembly        = "assembly"
)

// StageError attributes a multi-stage pipeline failure to a specific stage.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
