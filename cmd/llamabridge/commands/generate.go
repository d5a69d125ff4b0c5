package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/expki/llamabridge"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [prompt]",
	Short: "Print the next token for a prompt",
	Long: `Load the model, decode the prompt in a single forward pass and print the
greedily sampled next token. The prompt comes from --prompt or the
positional arguments.`,
	Example: `  llamabridge generate --model tiny.gguf "Hello"
  llamabridge generate --model tiny.gguf --prompt "Hello" --format toml`,
	RunE: runGenerate,
}

var (
	generatePrompt string
	generateFormat string
)

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("model", "m", "", "path to GGUF model file")
	generateCmd.Flags().IntP("ctx-size", "c", 2048, "context window size")
	generateCmd.Flags().Int("gpu-layers", 0, "layers to offload to GPU")
	generateCmd.Flags().StringVarP(&generatePrompt, "prompt", "p", "", "prompt text")
	generateCmd.Flags().StringVarP(&generateFormat, "format", "f", "text", "output format (text, json, toml)")

	v.BindPFlag("model.path", generateCmd.Flags().Lookup("model"))
	v.BindPFlag("model.context_size", generateCmd.Flags().Lookup("ctx-size"))
	v.BindPFlag("model.gpu_layers", generateCmd.Flags().Lookup("gpu-layers"))
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if !validFormat(generateFormat) {
		return fmt.Errorf("unknown format %q", generateFormat)
	}

	prompt := generatePrompt
	if prompt == "" {
		prompt = strings.Join(args, " ")
	}
	if cfg.Model.Path == "" {
		return errors.New("no model: pass --model or set model.path")
	}

	reg := llamabridge.NewRegistry(
		llamabridge.WithTombstoneTTL(0),
		llamabridge.WithSessionOptions(sessionOptions(cfg)...),
	)
	defer reg.Close()

	h, err := reg.Create(cfg.Model.Path)
	if err != nil {
		return err
	}
	defer reg.Destroy(h)

	res, err := reg.Generate(cmd.Context(), h, prompt)
	if err != nil {
		return err
	}

	return writeResult(cmd.OutOrStdout(), generateFormat, resultOutput{
		Model:  cfg.Model.Path,
		Prompt: prompt,
		Text:   res.Text,
		Token:  res.Token,
		Empty:  res.Empty(),
	})
}
