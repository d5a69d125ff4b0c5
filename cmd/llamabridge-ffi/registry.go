package main

import (
	"sync"

	"github.com/expki/llamabridge"
	"github.com/expki/llamabridge/internal/config"
	"github.com/expki/llamabridge/internal/logging"
	"github.com/sirupsen/logrus"
)

var (
	regOnce sync.Once
	reg     *llamabridge.Registry
	log     = logrus.New()
)

// registry builds the process registry on first use from the same
// configuration sources as the CLI. A broken config falls back to defaults
// so the host process still gets working handles.
func registry() *llamabridge.Registry {
	regOnce.Do(func() {
		cfg, err := config.Load("")
		if err != nil {
			log.WithError(err).Warn("config unusable, using defaults")
			cfg = config.DefaultConfig()
		}

		if l, err := logging.New(cfg.Logging.Level, cfg.Logging.File, cfg.Logging.Console); err == nil {
			log = l
		} else {
			log.WithError(err).Warn("logging setup failed")
		}
		llamabridge.SetLogger(log)
		llamabridge.SetVerbose(cfg.Model.Verbose)

		reg = llamabridge.NewRegistry(
			llamabridge.WithTombstoneTTL(cfg.Server.TombstoneTTL),
			llamabridge.WithSessionOptions(
				llamabridge.WithContextSize(cfg.Model.ContextSize),
				llamabridge.WithGPULayers(cfg.Model.GPULayers),
				llamabridge.WithLibPath(cfg.Model.LibPath),
			),
		)
	})
	return reg
}

// recoverExport keeps panics from unwinding into the host.
func recoverExport(name string, fallback func()) {
	if r := recover(); r != nil {
		log.WithField("export", name).Errorf("panic: %v", r)
		if fallback != nil {
			fallback()
		}
	}
}
