package commands

import (
	"context"

	"github.com/expki/llamabridge"
	"github.com/expki/llamabridge/internal/config"
	"github.com/expki/llamabridge/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time with -ldflags "-X .../commands.version=..."
var version = "dev"

var (
	cfgFile string
	v       = viper.New()

	cfg *config.Config
	log *logrus.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "llamabridge",
	Short: "Single-token llama.cpp inference behind opaque handles",
	Long: `llamabridge loads a GGUF model through llama.cpp, decodes a prompt in one
forward pass and prints the greedily chosen next token.

The same handle-based surface is available over HTTP (serve) and as a C
shared library (cmd/llamabridge-ffi).`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.llamabridge/llamabridge.{yaml,toml})")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "show llama.cpp logs")
	rootCmd.PersistentFlags().String("lib", "", "directory of the llama.cpp shared libraries (env LLAMABRIDGE_LIB)")

	v.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	v.BindPFlag("model.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	v.BindPFlag("model.lib_path", rootCmd.PersistentFlags().Lookup("lib"))
}

// setup loads configuration and wires logging before any subcommand runs.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadWith(v, cfgFile)
	if err != nil {
		return err
	}

	logger, err := logging.New(loaded.Logging.Level, loaded.Logging.File, loaded.Logging.Console)
	if err != nil {
		return err
	}

	llamabridge.SetLogger(logger)
	llamabridge.SetVerbose(loaded.Model.Verbose)

	cfg, log = loaded, logger
	log.WithField("config", v.ConfigFileUsed()).Debug("configuration loaded")
	return nil
}

// sessionOptions maps configuration onto library options.
func sessionOptions(c *config.Config) []llamabridge.Option {
	return []llamabridge.Option{
		llamabridge.WithContextSize(c.Model.ContextSize),
		llamabridge.WithGPULayers(c.Model.GPULayers),
		llamabridge.WithLibPath(c.Model.LibPath),
	}
}
