package llamabridge

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestModelEnv names a GGUF model used by the native integration test.
// The llama.cpp libraries are located through LLAMABRIDGE_LIB.
const TestModelEnv = "LLAMABRIDGE_TEST_MODEL"

func TestNative_EndToEnd(t *testing.T) {
	path := os.Getenv(TestModelEnv)
	if path == "" {
		t.Skipf("%s not set", TestModelEnv)
	}

	r := NewRegistry()
	defer r.Close()

	h, err := r.Create(path, WithContextSize(256))
	require.NoError(t, err)
	require.NotEqual(t, InvalidHandle, h)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	res, err := r.Generate(ctx, h, "Hello")
	require.NoError(t, err)
	assert.False(t, res.Empty())
	assert.NotEmpty(t, res.Text)
	t.Logf("Hello -> %q (token %d)", res.Text, res.Token)

	again, err := r.Generate(ctx, h, "Hello")
	require.NoError(t, err)
	assert.Equal(t, res, again, "greedy single-shot generation is deterministic")

	_, err = r.Generate(ctx, h, "")
	assert.NoError(t, err)

	require.NoError(t, r.Destroy(h))
	assert.ErrorIs(t, r.Destroy(h), ErrSessionDestroyed)
}

func TestNative_MissingModel(t *testing.T) {
	h, err := NewRegistry(WithTombstoneTTL(0)).Create("/nonexistent/path/to/model.gguf")
	assert.Equal(t, InvalidHandle, h)
	assert.ErrorIs(t, err, ErrModelNotFound)
}
