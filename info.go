package llamabridge

// Info describes a loaded session.
type Info struct {
	Path        string // Model file the session was opened from
	Description string // Model description (e.g., "llama 1B Q4_K - Medium")
	ContextSize int    // Context window in tokens
	VocabSize   int    // Vocabulary size
}

// Info returns details about the loaded model.
// Returns the zero value once the session is closed.
func (s *Session) Info() Info {
	if s == nil {
		return Info{}
	}
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()
	if s.state != StateLoaded || s.model == nil {
		return Info{}
	}
	return Info{
		Path:        s.model.path,
		Description: s.model.description,
		ContextSize: s.model.contextSize,
		VocabSize:   s.model.vocabSize,
	}
}
