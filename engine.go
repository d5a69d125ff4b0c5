package llamabridge

// NativeModel is an engine-owned reference to loaded weights and vocabulary.
type NativeModel any

// NativeContext is an engine-owned reference to inference state built from a NativeModel.
type NativeContext any

// ModelParams are passed to the engine when loading weights.
type ModelParams struct {
	GPULayers int
}

// ContextParams are passed to the engine when building an inference context.
type ContextParams struct {
	ContextSize int
	BatchSize   int
}

// Engine is the native inference library as seen by the bridge.
// Implementations are not required to be safe for concurrent use on the same
// context; Session serializes access.
type Engine interface {
	// LoadModel loads weights from path.
	LoadModel(path string, params ModelParams) (NativeModel, error)

	// FreeModel releases a model returned by LoadModel.
	FreeModel(m NativeModel)

	// NewContext builds an inference context. The model must outlive it.
	NewContext(m NativeModel, params ContextParams) (NativeContext, error)

	// FreeContext releases a context returned by NewContext.
	FreeContext(c NativeContext)

	// Tokenize writes the tokens of text into buf and returns how many were
	// written. A negative result -n means buf was too small and n tokens are
	// required.
	Tokenize(m NativeModel, text string, buf []Token, addSpecial, parseSpecial bool) int32

	// ClearMemory drops all cached positions from the context.
	ClearMemory(c NativeContext) error

	// Decode runs one forward pass over tokens as a single batch.
	Decode(c NativeContext, tokens []Token) error

	// SampleGreedy returns the arg-max token of the last decoded position.
	SampleGreedy(c NativeContext) Token

	// TokenToPiece writes the text of token into buf and returns its length.
	// A negative result -n means buf was too small and n bytes are required.
	TokenToPiece(m NativeModel, token Token, buf []byte) int32

	// VocabSize returns the number of tokens in the model's vocabulary.
	VocabSize(m NativeModel) int

	// Description returns a human readable model description.
	Description(m NativeModel) string
}
