package llamabridge

// Token is a vocabulary token ID.
type Token = int32

// NoToken marks a Result that carries no generated token.
const NoToken Token = -1

// State is the lifecycle position of a Session.
// Transitions are linear: Uninitialized -> Loaded -> Destroyed.
type State int

const (
	StateUninitialized State = iota // Not yet loaded
	StateLoaded                     // Model and context are live
	StateDestroyed                  // Resources released, terminal
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoaded:
		return "loaded"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Result is the outcome of a single Generate call.
type Result struct {
	Text  string // Surface form of the sampled token
	Token Token  // Sampled token ID, NoToken when nothing was generated
}

// Empty reports whether the call produced no token.
// An empty Result is a valid outcome and is distinct from a failure.
func (r Result) Empty() bool {
	return r.Token == NoToken
}

// GPULayersAll is a constant to offload all model layers to GPU.
// llama.cpp will offload as many layers as fit in available VRAM.
const GPULayersAll = 999
