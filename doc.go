// Package llamabridge exposes a llama.cpp model behind opaque handles so that
// callers on the far side of a foreign-function boundary can load a model,
// ask for the next token of a prompt, and release the model again.
//
// The native library is reached through yzma's purego bindings, so the
// package itself builds without a C toolchain. Point it at the directory of
// the llama.cpp shared libraries with [WithLibPath] or the LLAMABRIDGE_LIB
// environment variable.
//
// # Quick Start
//
//	s, err := llamabridge.Open("model.gguf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	res, err := s.Generate(ctx, "Hello")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(res.Text)
//
// # What Generate Does
//
// Generate tokenizes the prompt with the model's leading special tokens,
// decodes every prompt token in a single forward pass, picks the arg-max next
// token and returns its text. It returns exactly one token. No state carries
// over between calls: the context memory is cleared before each decode.
//
// # Handles
//
// [Registry] maps integer [Handle] values to sessions for callers that cannot
// hold Go pointers. [InvalidHandle] (0) is never assigned. Handles are never
// reused, so a stale handle is always detected; for a while after [Destroy]
// it reports [ErrSessionDestroyed] rather than [ErrInvalidHandle].
//
//	h, err := llamabridge.Create("model.gguf")
//	res, err := llamabridge.Generate(ctx, h, "Hello")
//	llamabridge.Destroy(h)
//
// # Thread Safety
//
// Generate calls on one Session are serialized. Close waits for an ongoing
// Generate and is safe to call multiple times. A forward pass that has
// started cannot be cancelled.
//
// # Error Handling
//
// Sentinel errors can be checked with [errors.Is]:
//
//   - [ErrModelNotFound]: model path does not exist
//   - [ErrSessionClosed]: operation on a closed session
//   - [ErrInvalidHandle], [ErrSessionDestroyed]: bad or stale handle
//   - [ErrTokenizeFailed]: prompt could not be tokenized
//   - [ErrPromptTooLong]: prompt exceeds context size
//   - [ErrDecodeFailed]: forward pass failed
//
// Typed errors carry details and can be checked with [errors.As]:
// [ModelLoadError], [ContextInitError], [TokenizeError], [GenerationError].
package llamabridge
