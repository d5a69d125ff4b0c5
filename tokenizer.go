package llamabridge

import "strconv"

// pieceBufferSize is the initial buffer for a single token's text.
const pieceBufferSize = 64

// tokenize converts text to token IDs, adding the model's leading special
// tokens and treating special-token syntax in text as literal characters.
// The first attempt uses len(text)+2 slots; a too-small buffer is resized to
// exactly the reported size and retried once.
func (m *model) tokenize(text string) ([]Token, error) {
	buf := make([]Token, len(text)+2)
	n := m.engine.Tokenize(m.native, text, buf, true, false)
	if n < 0 {
		required := -int(n)
		m.log.WithField("required", required).Debug("token buffer too small, retrying")
		buf = make([]Token, required)
		n = m.engine.Tokenize(m.native, text, buf, true, false)
	}
	if n < 0 {
		return nil, &TokenizeError{Text: text, Message: "buffer still too small after resize (need " + strconv.Itoa(int(-n)) + ")"}
	}
	return buf[:n], nil
}

// piece converts a single token ID to its text, rendering special tokens.
func (m *model) piece(token Token) (string, error) {
	buf := make([]byte, pieceBufferSize)
	n := m.engine.TokenToPiece(m.native, token, buf)
	if n < 0 {
		buf = make([]byte, -n)
		n = m.engine.TokenToPiece(m.native, token, buf)
	}
	if n < 0 {
		return "", &GenerationError{Stage: "detokenize", Message: "token " + strconv.Itoa(int(token)) + " has no text"}
	}
	return string(buf[:n]), nil
}
