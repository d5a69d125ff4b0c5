package llamabridge

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is()
var (
	ErrModelNotFound    = errors.New("llamabridge: model file not found")
	ErrSessionClosed    = errors.New("llamabridge: session is closed")
	ErrSessionIsNil     = errors.New("llamabridge: session is nil and not defined")
	ErrTokenizeFailed   = errors.New("llamabridge: tokenization failed")
	ErrPromptTooLong    = errors.New("llamabridge: prompt exceeds context size")
	ErrDecodeFailed     = errors.New("llamabridge: decode operation failed")
	ErrInvalidHandle    = errors.New("llamabridge: invalid handle")
	ErrSessionDestroyed = errors.New("llamabridge: session already destroyed")
	ErrLibraryLoad      = errors.New("llamabridge: unable to load llama.cpp library")
	ErrRegistryClosed   = errors.New("llamabridge: registry is closed")
)

// ModelLoadError provides details about model loading failures.
type ModelLoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("llamabridge: failed to load model %q: %s", e.Path, e.Reason)
}

func (e *ModelLoadError) Unwrap() error {
	return e.Err
}

// ContextInitError is returned when the model loaded but its inference
// context could not be built. The model has already been released.
type ContextInitError struct {
	Path        string
	ContextSize int
	Err         error
}

func (e *ContextInitError) Error() string {
	return fmt.Sprintf("llamabridge: failed to create context (n_ctx=%d) for %q: %v", e.ContextSize, e.Path, e.Err)
}

func (e *ContextInitError) Unwrap() error {
	return e.Err
}

// GenerationError provides details about text generation failures.
type GenerationError struct {
	Stage   string // "clear", "decode", "sample", "detokenize"
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("llamabridge: generation failed during %s: %s", e.Stage, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// TokenizeError provides details about tokenization failures.
type TokenizeError struct {
	Text    string
	Message string
}

func (e *TokenizeError) Error() string {
	if len(e.Text) > 50 {
		return fmt.Sprintf("llamabridge: tokenization failed for %q...: %s", e.Text[:50], e.Message)
	}
	return fmt.Sprintf("llamabridge: tokenization failed for %q: %s", e.Text, e.Message)
}

func (e *TokenizeError) Unwrap() error {
	return ErrTokenizeFailed
}
