package llamabridge

import (
	"errors"
	"os"

	"github.com/sirupsen/logrus"
)

// model owns a native model and the context built from it.
// The context never outlives the model: close releases context first.
type model struct {
	engine      Engine
	native      NativeModel
	ctx         NativeContext
	path        string
	contextSize int
	vocabSize   int
	description string
	log         *logrus.Entry
}

// openModel loads weights and builds a context as one step. If the context
// cannot be built the weights are released before the error is returned.
func openModel(path string, cfg Config) (*model, error) {
	base := cfg.Logger
	if base == nil {
		base = logger()
	}
	log := base.WithFields(pathFields(path))

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ModelLoadError{Path: path, Reason: "no such file", Err: ErrModelNotFound}
		}
		return nil, &ModelLoadError{Path: path, Reason: err.Error(), Err: err}
	}

	engine := cfg.Engine
	if engine == nil {
		var err error
		engine, err = newLlamaEngine(cfg.LibPath)
		if err != nil {
			return nil, &ModelLoadError{Path: path, Reason: "native library unavailable", Err: err}
		}
	}

	contextSize := cfg.ContextSize
	if contextSize <= 0 {
		contextSize = DefaultContextSize
	}

	native, err := engine.LoadModel(path, ModelParams{GPULayers: cfg.GPULayers})
	if err != nil {
		return nil, &ModelLoadError{Path: path, Reason: "failed to load model", Err: err}
	}
	if native == nil {
		return nil, &ModelLoadError{Path: path, Reason: "engine returned no model"}
	}

	ctx, err := engine.NewContext(native, ContextParams{ContextSize: contextSize, BatchSize: contextSize})
	if err == nil && ctx == nil {
		err = errors.New("engine returned no context")
	}
	if err != nil {
		engine.FreeModel(native)
		log.WithError(err).Warn("context creation failed, model released")
		return nil, &ContextInitError{Path: path, ContextSize: contextSize, Err: err}
	}

	log.WithField("n_ctx", contextSize).Debug("model loaded")
	return &model{
		engine:      engine,
		native:      native,
		ctx:         ctx,
		path:        path,
		contextSize: contextSize,
		vocabSize:   engine.VocabSize(native),
		description: engine.Description(native),
		log:         log,
	}, nil
}

// close releases the context, then the model. Safe to call more than once.
func (m *model) close() {
	if m == nil {
		return
	}
	if m.ctx != nil {
		m.engine.FreeContext(m.ctx)
		m.ctx = nil
	}
	if m.native != nil {
		m.engine.FreeModel(m.native)
		m.native = nil
	}
	m.log.Debug("model released")
}
