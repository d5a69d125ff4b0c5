package llamabridge

import (
	"context"
	"runtime"
	"strconv"
	"sync"
)

// Session is a loaded model plus its inference context.
//
// Each Generate call is independent: the context memory is cleared before
// the prompt is decoded, so no conversation state carries over. Calls on one
// Session are serialized; a forward pass in progress cannot be interrupted.
type Session struct {
	genMu sync.Mutex // exclusive access to the native context
	model *model

	state     State
	stateLock sync.RWMutex
}

// Open loads the model at path and builds its inference context.
// No Session is returned unless both resources were created.
func Open(path string, opts ...Option) (*Session, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	m, err := openModel(path, cfg)
	if err != nil {
		return nil, err
	}

	s := &Session{
		model: m,
		state: StateLoaded,
	}

	// Safety net if the caller forgets Close
	runtime.SetFinalizer(s, (*Session).Close)

	return s, nil
}

// State returns the lifecycle state of the session.
func (s *Session) State() State {
	if s == nil {
		return StateUninitialized
	}
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()
	return s.state
}

func (s *Session) isLoaded() bool {
	return s.State() == StateLoaded
}

// Generate tokenizes prompt, decodes it in a single forward pass and returns
// the greedily sampled next token.
//
// A prompt that tokenizes to nothing yields an empty Result and no error.
// ctx is only checked before work starts; a nil ctx means
// context.Background().
func (s *Session) Generate(ctx context.Context, prompt string) (Result, error) {
	if s == nil {
		return Result{Token: NoToken}, ErrSessionIsNil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return Result{Token: NoToken}, err
	}

	s.genMu.Lock()
	defer s.genMu.Unlock()

	if !s.isLoaded() {
		return Result{Token: NoToken}, ErrSessionClosed
	}
	m := s.model

	tokens, err := m.tokenize(prompt)
	if err != nil {
		return Result{Token: NoToken}, err
	}
	if len(tokens) == 0 {
		return Result{Token: NoToken}, nil
	}
	if len(tokens) > m.contextSize {
		return Result{Token: NoToken}, ErrPromptTooLong
	}

	// Never decode on top of a previous prompt's memory.
	if err := m.engine.ClearMemory(m.ctx); err != nil {
		m.log.WithError(err).Warn("clearing context memory failed")
		return Result{Token: NoToken}, &GenerationError{
			Stage:   "clear",
			Message: "failed to clear context memory: " + err.Error(),
			Err:     err,
		}
	}
	if err := m.engine.Decode(m.ctx, tokens); err != nil {
		m.log.WithError(err).WithField("tokens", len(tokens)).Warn("decode failed")
		return Result{Token: NoToken}, &GenerationError{
			Stage:   "decode",
			Message: "failed to decode " + strconv.Itoa(len(tokens)) + " prompt tokens: " + err.Error(),
			Err:     ErrDecodeFailed,
		}
	}

	token := m.engine.SampleGreedy(m.ctx)
	text, err := m.piece(token)
	if err != nil {
		return Result{Token: NoToken}, err
	}

	return Result{Text: text, Token: token}, nil
}

// Close releases the context and the model.
// It is safe to call Close multiple times and waits for an ongoing Generate.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}

	// If already closed, return early
	if s.State() == StateDestroyed {
		return nil
	}

	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.stateLock.Lock()
	defer s.stateLock.Unlock()
	if s.state == StateDestroyed {
		return nil
	}
	s.state = StateDestroyed

	runtime.SetFinalizer(s, nil)

	s.model.close()
	s.model = nil

	return nil
}
