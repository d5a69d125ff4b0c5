package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteResult_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeResult(&buf, "text", resultOutput{Text: " world", Token: 42}))
	assert.Equal(t, " world\n", buf.String())
}

func TestWriteResult_JSON(t *testing.T) {
	var buf bytes.Buffer
	out := resultOutput{Model: "m.gguf", Prompt: "Hello", Text: " world", Token: 42}
	require.NoError(t, writeResult(&buf, "json", out))

	var got resultOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, out, got)
}

func TestWriteResult_TOML(t *testing.T) {
	var buf bytes.Buffer
	out := resultOutput{Model: "m.gguf", Prompt: "", Token: -1, Empty: true}
	require.NoError(t, writeResult(&buf, "toml", out))
	assert.Contains(t, buf.String(), "empty = true")

	var got resultOutput
	_, err := toml.Decode(buf.String(), &got)
	require.NoError(t, err)
	assert.Equal(t, out, got)
}

func TestWriteResult_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, writeResult(&buf, "yaml", resultOutput{}))
	assert.False(t, validFormat("yaml"))
	assert.True(t, validFormat("toml"))
}
