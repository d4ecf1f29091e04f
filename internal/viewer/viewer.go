// Package viewer owns the lifecycle of the model shown by one viewer instance.
//
// Loads run in the background; their results are applied only on the caller's
// thread by Update or Await, so a rendering backend is never touched concurrently.
// Every Show bumps a generation counter and results from older generations are
// dropped without reaching the backend.
package viewer

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/skinforge/pkg/skin"
)

// ErrClosed is returned by Show after Close.
var ErrClosed = errors.New("viewer: closed")

// State is the lifecycle state of a viewer.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateDisplaying
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateDisplaying:
		return "displaying"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Loader produces a model for a skin reference. It runs off the host thread.
type Loader interface {
	Load(ctx context.Context, ref string) (*skin.Model, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, ref string) (*skin.Model, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, ref string) (*skin.Model, error) {
	return f(ctx, ref)
}

// Backend holds the rendering resources of displayed models.
// It is only called from Update, Await and Close.
type Backend interface {
	Upload(m *skin.Model) error
	Release(m *skin.Model)
}

type result struct {
	gen   uint64
	ref   string
	model *skin.Model
	err   error
}

// Viewer shows one model at a time.
type Viewer struct {
	loader  Loader
	backend Backend
	log     *zap.Logger

	results chan result
	done    chan struct{}
	wg      sync.WaitGroup

	mu      sync.Mutex
	state   State
	gen     uint64
	cancel  context.CancelFunc
	current *skin.Model
	ref     string
	err     error
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithLogger sets the viewer logger.
func WithLogger(l *zap.Logger) Option {
	return func(v *Viewer) { v.log = l }
}

// New creates an empty viewer.
func New(loader Loader, backend Backend, opts ...Option) *Viewer {
	v := &Viewer{
		loader:  loader,
		backend: backend,
		log:     zap.NewNop(),
		results: make(chan result, 4),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// State returns the current lifecycle state.
func (v *Viewer) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Generation returns the number of the most recent Show.
func (v *Viewer) Generation() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gen
}

// Current returns the displayed model and the reference it was built from.
func (v *Viewer) Current() (*skin.Model, string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current, v.ref
}

// Err returns the load error behind the displayed placeholder, if any.
func (v *Viewer) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Show starts loading ref and supersedes any load in flight.
// It returns the generation of the new load.
func (v *Viewer) Show(ctx context.Context, ref string) (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state == StateClosed {
		return 0, ErrClosed
	}
	if v.cancel != nil {
		v.cancel()
	}
	v.gen++
	gen := v.gen
	loadCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.state = StateLoading

	v.log.Debug("load started", zap.Uint64("gen", gen), zap.String("ref", ref))

	v.wg.Add(1)
	go v.load(loadCtx, gen, ref)
	return gen, nil
}

func (v *Viewer) load(ctx context.Context, gen uint64, ref string) {
	defer v.wg.Done()

	m, err := v.loader.Load(ctx, ref)
	if err == nil && m == nil {
		err = errors.New("loader returned no model")
	}
	if !v.isCurrent(gen) {
		return
	}
	select {
	case v.results <- result{gen: gen, ref: ref, model: m, err: err}:
	case <-v.done:
	}
}

func (v *Viewer) isCurrent(gen uint64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return gen == v.gen && v.state != StateClosed
}

// Update applies finished loads without blocking. Call it once per frame from
// the thread that owns the backend. It reports whether the displayed model changed.
func (v *Viewer) Update() bool {
	changed := false
	for {
		select {
		case r := <-v.results:
			if v.apply(r) {
				changed = true
			}
		default:
			return changed
		}
	}
}

// Await blocks until no load is in flight, applying results as they arrive.
func (v *Viewer) Await(ctx context.Context) error {
	for {
		v.Update()
		switch v.State() {
		case StateClosed:
			return ErrClosed
		case StateLoading:
		default:
			return nil
		}
		select {
		case r := <-v.results:
			v.apply(r)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// apply installs r if it belongs to the current generation.
func (v *Viewer) apply(r result) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if r.gen != v.gen || v.state == StateClosed {
		v.log.Debug("stale load discarded", zap.Uint64("gen", r.gen), zap.Uint64("current", v.gen))
		return false
	}
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}

	m := r.model
	v.err = r.err
	if r.err != nil {
		v.log.Warn("skin load failed, showing placeholder", zap.String("ref", r.ref), zap.Error(r.err))
		m = skin.Placeholder()
	} else {
		for _, p := range m.Parts {
			if p.OverlayErr != nil {
				v.log.Warn("overlay skipped", zap.String("ref", r.ref), zap.String("part", p.Name), zap.Error(p.OverlayErr))
			}
		}
	}

	v.releaseCurrent()
	if err := v.backend.Upload(m); err != nil {
		v.log.Error("upload failed", zap.String("ref", r.ref), zap.Error(err))
		v.err = err
		failed := m
		m = nil
		if !failed.Placeholder {
			ph := skin.Placeholder()
			if err := v.backend.Upload(ph); err != nil {
				v.log.Error("placeholder upload failed", zap.Error(err))
			} else {
				m = ph
			}
		}
	}

	v.current = m
	v.ref = r.ref
	if m == nil {
		v.state = StateEmpty
	} else {
		v.state = StateDisplaying
	}
	v.log.Debug("model applied", zap.Uint64("gen", r.gen), zap.String("ref", r.ref), zap.Stringer("state", v.state))
	return true
}

func (v *Viewer) releaseCurrent() {
	if v.current != nil {
		v.backend.Release(v.current)
		v.current = nil
	}
}

// Close cancels loads in flight and releases the displayed model.
// Call it from the thread that owns the backend. Later calls do nothing.
func (v *Viewer) Close() {
	v.mu.Lock()
	if v.state == StateClosed {
		v.mu.Unlock()
		return
	}
	v.state = StateClosed
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.releaseCurrent()
	v.ref = ""
	v.mu.Unlock()

	close(v.done)
	v.wg.Wait()
}
