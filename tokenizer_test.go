package llamabridge

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_FitsInitialBuffer(t *testing.T) {
	s, e := openFake(t)

	tokens, err := s.model.tokenize("The quick brown fox")
	require.NoError(t, err)
	assert.Len(t, tokens, len("The quick brown fox")+1)
	assert.Equal(t, 1, e.tokenizeCalls)
}

func TestTokenize_ResizeRetryOnce(t *testing.T) {
	s, e := openFake(t)
	e.expand = 3 // 3 tokens per byte, more than len+2

	tokens, err := s.model.tokenize("Hello")
	require.NoError(t, err)
	assert.Len(t, tokens, 1+3*len("Hello"))
	assert.Equal(t, 2, e.tokenizeCalls, "exactly one retry")
}

func TestTokenize_FailsAfterRetry(t *testing.T) {
	s, e := openFake(t)
	e.alwaysShort = true

	tokens, err := s.model.tokenize("Hello")
	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, ErrTokenizeFailed)

	var tokErr *TokenizeError
	require.ErrorAs(t, err, &tokErr)
	assert.Equal(t, "Hello", tokErr.Text)
	assert.Equal(t, 2, e.tokenizeCalls)
}

func TestGenerate_TokenizeFailure(t *testing.T) {
	s, e := openFake(t)
	e.alwaysShort = true

	res, err := s.Generate(context.Background(), "Hello")
	assert.ErrorIs(t, err, ErrTokenizeFailed)
	assert.True(t, res.Empty())
	assert.Zero(t, e.count("decode"))
}

func TestPiece_Short(t *testing.T) {
	s, _ := openFake(t)

	text, err := s.model.piece(fakeNext)
	require.NoError(t, err)
	assert.Equal(t, " world", text)
}

func TestPiece_Resize(t *testing.T) {
	s, e := openFake(t)
	long := strings.Repeat("x", pieceBufferSize*2)
	e.pieces[7] = long

	text, err := s.model.piece(7)
	require.NoError(t, err)
	assert.Equal(t, long, text)
}

func TestPiece_UnknownToken(t *testing.T) {
	s, _ := openFake(t)

	text, err := s.model.piece(99)
	require.NoError(t, err)
	assert.Equal(t, "<99>", text)
}
