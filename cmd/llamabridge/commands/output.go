package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/BurntSushi/toml"
)

var formats = []string{"text", "json", "toml"}

type resultOutput struct {
	Model  string `json:"model" toml:"model"`
	Prompt string `json:"prompt" toml:"prompt"`
	Text   string `json:"text" toml:"text"`
	Token  int32  `json:"token" toml:"token"`
	Empty  bool   `json:"empty" toml:"empty"`
}

func validFormat(format string) bool {
	return slices.Contains(formats, format)
}

func writeResult(w io.Writer, format string, out resultOutput) error {
	switch format {
	case "text":
		_, err := fmt.Fprintln(w, out.Text)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "toml":
		return toml.NewEncoder(w).Encode(out)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
