package llamabridge

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hybridgroup/yzma/pkg/llama"
)

// LibPathEnv names the environment variable holding the directory of the
// llama.cpp shared libraries.
const LibPathEnv = "LLAMABRIDGE_LIB"

const defaultLibPath = "./lib"

var (
	libMu     sync.Mutex
	libLoaded bool

	verboseMu sync.Mutex
	verbose   bool
)

// SetVerbose enables or disables llama.cpp's own log output.
// It takes effect when the native library is loaded, so call it before the
// first Open.
func SetVerbose(v bool) {
	verboseMu.Lock()
	defer verboseMu.Unlock()
	verbose = v
}

func isVerbose() bool {
	verboseMu.Lock()
	defer verboseMu.Unlock()
	return verbose
}

// resolveLibPath picks the library directory: explicit option, then
// LLAMABRIDGE_LIB, then ./lib.
func resolveLibPath(configured string) string {
	libPath := configured
	if libPath == "" {
		libPath = os.Getenv(LibPathEnv)
	}
	if libPath == "" {
		libPath = defaultLibPath
	}
	if abs, err := filepath.Abs(libPath); err == nil {
		libPath = abs
	}
	return libPath
}

// llamaEngine drives llama.cpp through yzma's purego bindings.
type llamaEngine struct{}

type llamaModel struct {
	model llama.Model
	vocab llama.Vocab
}

// newLlamaEngine loads the shared libraries on first success. A failed load
// is not remembered, so a later call may retry with another path.
func newLlamaEngine(libPath string) (Engine, error) {
	libMu.Lock()
	defer libMu.Unlock()

	if libLoaded {
		return llamaEngine{}, nil
	}

	libPath = resolveLibPath(libPath)
	logger().WithField("lib", libPath).Debug("loading llama.cpp libraries")
	if err := llama.Load(libPath); err != nil {
		return nil, fmt.Errorf("%w from %s: %v", ErrLibraryLoad, libPath, err)
	}
	if !isVerbose() {
		llama.LogSet(llama.LogSilent())
	}
	llama.Init()
	libLoaded = true

	return llamaEngine{}, nil
}

func (llamaEngine) LoadModel(path string, params ModelParams) (NativeModel, error) {
	mp := llama.ModelDefaultParams()
	mp.NGpuLayers = int32(params.GPULayers)

	m, err := llama.ModelLoadFromFile(path, mp)
	if err != nil {
		return nil, err
	}
	return &llamaModel{model: m, vocab: llama.ModelGetVocab(m)}, nil
}

func (llamaEngine) FreeModel(m NativeModel) {
	lm := m.(*llamaModel)
	if err := llama.ModelFree(lm.model); err != nil {
		logger().WithError(err).Warn("llama_model_free failed")
	}
}

func (llamaEngine) NewContext(m NativeModel, params ContextParams) (NativeContext, error) {
	lm := m.(*llamaModel)

	cp := llama.ContextDefaultParams()
	cp.NCtx = uint32(params.ContextSize)
	cp.NBatch = uint32(params.BatchSize)
	cp.Embeddings = 0

	return llama.InitFromModel(lm.model, cp)
}

func (llamaEngine) FreeContext(c NativeContext) {
	if err := llama.Free(c.(llama.Context)); err != nil {
		logger().WithError(err).Warn("llama_free failed")
	}
}

func (llamaEngine) Tokenize(m NativeModel, text string, buf []Token, addSpecial, parseSpecial bool) int32 {
	lm := m.(*llamaModel)

	tokens := llama.Tokenize(lm.vocab, text, addSpecial, parseSpecial)
	if len(tokens) > len(buf) {
		return -int32(len(tokens))
	}
	for i, t := range tokens {
		buf[i] = Token(t)
	}
	return int32(len(tokens))
}

func (llamaEngine) ClearMemory(c NativeContext) error {
	mem, err := llama.GetMemory(c.(llama.Context))
	if err != nil {
		return err
	}
	return llama.MemoryClear(mem, true)
}

func (llamaEngine) Decode(c NativeContext, tokens []Token) error {
	batchTokens := make([]llama.Token, len(tokens))
	for i, t := range tokens {
		batchTokens[i] = llama.Token(t)
	}

	// BatchGetOne is a view over batchTokens, it is not freed.
	batch := llama.BatchGetOne(batchTokens)
	rc, err := llama.Decode(c.(llama.Context), batch)
	if err != nil {
		return err
	}
	if rc != 0 {
		return fmt.Errorf("llama_decode returned %d", rc)
	}
	return nil
}

func (llamaEngine) SampleGreedy(c NativeContext) Token {
	sampler := llama.SamplerInitGreedy()
	defer llama.SamplerFree(sampler)
	return Token(llama.SamplerSample(sampler, c.(llama.Context), -1))
}

func (llamaEngine) TokenToPiece(m NativeModel, token Token, buf []byte) int32 {
	lm := m.(*llamaModel)
	return llama.TokenToPiece(lm.vocab, llama.Token(token), buf, 0, true)
}

func (llamaEngine) VocabSize(m NativeModel) int {
	return int(llama.VocabNTokens(m.(*llamaModel).vocab))
}

func (llamaEngine) Description(m NativeModel) string {
	return llama.ModelDesc(m.(*llamaModel).model)
}

