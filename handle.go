package llamabridge

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/jellydator/ttlcache/v3"
)

// Handle is an opaque reference to a Session held by a Registry.
// Handles are never reused within a Registry.
type Handle int64

// InvalidHandle is never assigned to a session and signals failure.
const InvalidHandle Handle = 0

// Registry maps handles to owned sessions.
// It is safe for concurrent use; calls on one session are serialized by the
// session itself.
type Registry struct {
	cfg RegistryConfig

	mu       sync.RWMutex
	sessions map[Handle]*Session
	closed   bool
	next     atomic.Int64

	tombstones *ttlcache.Cache[Handle, struct{}]
	stopOnce   sync.Once
}

// NewRegistry creates an empty registry.
// Close must be called to stop the tombstone janitor.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := DefaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Registry{
		cfg:      cfg,
		sessions: make(map[Handle]*Session),
	}
	if cfg.TombstoneTTL > 0 {
		r.tombstones = ttlcache.New[Handle, struct{}](
			ttlcache.WithTTL[Handle, struct{}](cfg.TombstoneTTL),
			ttlcache.WithDisableTouchOnHit[Handle, struct{}](),
		)
		go r.tombstones.Start()
	}
	return r
}

// Create opens a session for the model at path and returns its handle.
// On failure it returns InvalidHandle and the error from Open, or
// ErrRegistryClosed once Close has been called.
func (r *Registry) Create(path string, opts ...Option) (Handle, error) {
	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return InvalidHandle, ErrRegistryClosed
	}

	all := slices.Concat(r.cfg.SessionOptions, opts)
	s, err := Open(path, all...)
	if err != nil {
		logger().WithFields(pathFields(path)).WithError(err).Debug("create failed")
		return InvalidHandle, err
	}

	r.mu.Lock()
	if r.closed {
		// Close ran while the model was loading.
		r.mu.Unlock()
		s.Close()
		return InvalidHandle, ErrRegistryClosed
	}
	h := Handle(r.next.Add(1))
	r.sessions[h] = s
	r.mu.Unlock()

	logger().WithFields(pathFields(path)).WithField("handle", int64(h)).Debug("session created")
	return h, nil
}

// Session returns the live session behind h.
func (r *Registry) Session(h Handle) (*Session, error) {
	if h == InvalidHandle {
		return nil, ErrInvalidHandle
	}
	r.mu.RLock()
	s, ok := r.sessions[h]
	r.mu.RUnlock()
	if !ok {
		return nil, r.missing(h)
	}
	return s, nil
}

// Generate runs a single greedy step on the session behind h.
func (r *Registry) Generate(ctx context.Context, h Handle, prompt string) (Result, error) {
	s, err := r.Session(h)
	if err != nil {
		return Result{Token: NoToken}, err
	}
	res, err := s.Generate(ctx, prompt)
	if errors.Is(err, ErrSessionClosed) {
		// destroyed between lookup and generate
		return res, ErrSessionDestroyed
	}
	return res, err
}

// Destroy closes the session behind h and forgets the handle.
// Destroying InvalidHandle is a no-op. Destroying a handle twice returns
// ErrSessionDestroyed (or ErrInvalidHandle once the tombstone expired) and
// does not touch native memory.
func (r *Registry) Destroy(h Handle) error {
	if h == InvalidHandle {
		return nil
	}

	r.mu.Lock()
	s, ok := r.sessions[h]
	if ok {
		delete(r.sessions, h)
	}
	r.mu.Unlock()
	if !ok {
		return r.missing(h)
	}

	if r.tombstones != nil {
		r.tombstones.Set(h, struct{}{}, ttlcache.DefaultTTL)
	}
	logger().WithField("handle", int64(h)).Debug("session destroyed")
	return s.Close()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close destroys every live session and stops the tombstone janitor.
// Create fails with ErrRegistryClosed afterwards.
func (r *Registry) Close() error {
	r.mu.Lock()
	r.closed = true
	handles := make([]Handle, 0, len(r.sessions))
	for h := range r.sessions {
		handles = append(handles, h)
	}
	r.mu.Unlock()

	var errs []error
	for _, h := range handles {
		if err := r.Destroy(h); err != nil && !errors.Is(err, ErrSessionDestroyed) {
			errs = append(errs, err)
		}
	}

	r.stopOnce.Do(func() {
		if r.tombstones != nil {
			r.tombstones.Stop()
		}
	})
	return errors.Join(errs...)
}

func (r *Registry) missing(h Handle) error {
	if r.tombstones != nil && r.tombstones.Has(h) {
		return ErrSessionDestroyed
	}
	return ErrInvalidHandle
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry used by Create, Generate and Destroy.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Create opens a session in the Default registry.
func Create(path string, opts ...Option) (Handle, error) {
	return Default().Create(path, opts...)
}

// Generate runs a single greedy step on a session in the Default registry.
func Generate(ctx context.Context, h Handle, prompt string) (Result, error) {
	return Default().Generate(ctx, h, prompt)
}

// Destroy closes a session in the Default registry.
func Destroy(h Handle) error {
	return Default().Destroy(h)
}
