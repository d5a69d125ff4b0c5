package llamabridge

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
)

const (
	fakeBOS  Token = 1
	fakeNext Token = 42
)

// fakeEngine is an in-memory Engine. Every byte of a prompt becomes one
// token (byte+10), optionally repeated expand times, preceded by fakeBOS
// when addBOS is set.
type fakeEngine struct {
	mu    sync.Mutex
	calls []string

	addBOS      bool
	expand      int
	alwaysShort bool

	loadErr   error
	ctxErr    error
	clearErr  error
	decodeErr error

	onLoad func()

	next   Token
	pieces map[Token]string

	tokenizeCalls int
	decoded       [][]Token
	contextParams ContextParams

	liveModels   atomic.Int32
	liveContexts atomic.Int32
	inFlight     atomic.Int32
	overlapped   atomic.Bool
}

type fakeModel struct{ id int }
type fakeContext struct{ id int }

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		addBOS: true,
		expand: 1,
		next:   fakeNext,
		pieces: map[Token]string{fakeNext: " world"},
	}
}

func (e *fakeEngine) record(call string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, call)
}

func (e *fakeEngine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

func (e *fakeEngine) count(call string) int {
	n := 0
	for _, c := range e.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (e *fakeEngine) LoadModel(path string, params ModelParams) (NativeModel, error) {
	e.record("load")
	if e.onLoad != nil {
		e.onLoad()
	}
	if e.loadErr != nil {
		return nil, e.loadErr
	}
	e.liveModels.Add(1)
	return &fakeModel{}, nil
}

func (e *fakeEngine) FreeModel(m NativeModel) {
	e.record("free_model")
	e.liveModels.Add(-1)
}

func (e *fakeEngine) NewContext(m NativeModel, params ContextParams) (NativeContext, error) {
	e.record("new_context")
	if e.ctxErr != nil {
		return nil, e.ctxErr
	}
	e.mu.Lock()
	e.contextParams = params
	e.mu.Unlock()
	e.liveContexts.Add(1)
	return &fakeContext{}, nil
}

func (e *fakeEngine) FreeContext(c NativeContext) {
	e.record("free_context")
	e.liveContexts.Add(-1)
}

func (e *fakeEngine) Tokenize(m NativeModel, text string, buf []Token, addSpecial, parseSpecial bool) int32 {
	e.mu.Lock()
	e.tokenizeCalls++
	e.mu.Unlock()

	if e.alwaysShort {
		return -int32(len(buf) + 1)
	}

	var tokens []Token
	if addSpecial && e.addBOS {
		tokens = append(tokens, fakeBOS)
	}
	for _, b := range []byte(text) {
		for range e.expand {
			tokens = append(tokens, Token(b)+10)
		}
	}
	if len(tokens) > len(buf) {
		return -int32(len(tokens))
	}
	copy(buf, tokens)
	return int32(len(tokens))
}

func (e *fakeEngine) ClearMemory(c NativeContext) error {
	e.record("clear")
	return e.clearErr
}

func (e *fakeEngine) Decode(c NativeContext, tokens []Token) error {
	if e.inFlight.Add(1) > 1 {
		e.overlapped.Store(true)
	}
	defer e.inFlight.Add(-1)

	e.record("decode")
	if e.decodeErr != nil {
		return e.decodeErr
	}
	e.mu.Lock()
	e.decoded = append(e.decoded, append([]Token(nil), tokens...))
	e.mu.Unlock()
	return nil
}

func (e *fakeEngine) SampleGreedy(c NativeContext) Token {
	e.record("sample")
	return e.next
}

func (e *fakeEngine) TokenToPiece(m NativeModel, token Token, buf []byte) int32 {
	p, ok := e.pieces[token]
	if !ok {
		p = "<" + strconv.Itoa(int(token)) + ">"
	}
	if len(p) > len(buf) {
		return -int32(len(p))
	}
	return int32(copy(buf, p))
}

func (e *fakeEngine) VocabSize(m NativeModel) int { return 266 }

func (e *fakeEngine) Description(m NativeModel) string { return "fake 1M F16" }

var errFake = errors.New("fake failure")

// modelFile creates an empty file to stand in for a GGUF model.
func modelFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.gguf")
	if err := os.WriteFile(path, []byte("GGUF"), 0o644); err != nil {
		t.Fatalf("write model file: %v", err)
	}
	return path
}

// openFake opens a session backed by a fresh fakeEngine.
func openFake(t *testing.T, opts ...Option) (*Session, *fakeEngine) {
	t.Helper()
	e := newFakeEngine()
	s, err := Open(modelFile(t), append([]Option{WithEngine(e)}, opts...)...)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, e
}
