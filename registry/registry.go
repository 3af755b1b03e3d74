// Package registry owns every live estimator and hands out opaque integer
// handles for them.
//
// Handles come from a counter that starts at 1 and only moves forward, so a
// handle is never reused within a process and 0 is never valid. A single
// RWMutex guards the handle map; each entry carries its own mutex so that
// calls on one handle are serialized while calls on different handles run
// concurrently.
package registry

import (
	"slices"
	"sync"

	"github.com/YuminosukeSato/linbridge/core/model"
	"github.com/YuminosukeSato/linbridge/pkg/errors"
	"github.com/YuminosukeSato/linbridge/pkg/log"
	"github.com/YuminosukeSato/linbridge/pkg/telemetry"
)

// Handle identifies a registered estimator.
type Handle uint64

// Factory builds a fresh estimator for a variant name. An empty kind selects
// the configured default.
type Factory func(kind string) (model.Estimator, error)

// Entry is one registered estimator plus the mutex serializing access to it.
type Entry struct {
	mu   sync.Mutex
	kind string
	est  model.Estimator
}

// Kind returns the variant name the entry was created with.
func (e *Entry) Kind() string {
	return e.kind
}

// Registry maps handles to estimators.
type Registry struct {
	mu      sync.RWMutex
	entries map[Handle]*Entry
	next    Handle

	factory Factory
	logger  log.Logger
	metrics *telemetry.Metrics
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l log.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// WithTelemetry reports the live handle count to m.
func WithTelemetry(m *telemetry.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// New creates an empty registry that builds estimators with factory.
func New(factory Factory, opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[Handle]*Entry),
		next:    1,
		factory: factory,
		logger:  log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create builds a new estimator of the given kind and registers it.
func (r *Registry) Create(kind string) (Handle, error) {
	est, err := r.factory(kind)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	h := r.next
	r.next++
	r.entries[h] = &Entry{kind: kind, est: est}
	live := len(r.entries)
	r.mu.Unlock()

	r.metrics.OnLiveModels(live)
	r.logger.Debug("model registered",
		log.HandleKey, uint64(h),
		log.EstimatorKindKey, kind,
		log.LiveModelsKey, live,
	)
	return h, nil
}

// Delete removes h. It reports whether h was registered; unknown handles are
// not an error.
func (r *Registry) Delete(h Handle) bool {
	r.mu.Lock()
	_, ok := r.entries[h]
	delete(r.entries, h)
	live := len(r.entries)
	r.mu.Unlock()

	if ok {
		r.metrics.OnLiveModels(live)
		r.logger.Debug("model deleted", log.HandleKey, uint64(h), log.LiveModelsKey, live)
	}
	return ok
}

// Get returns the entry for h or an UnknownHandleError.
func (r *Registry) Get(op string, h Handle) (*Entry, error) {
	r.mu.RLock()
	e, ok := r.entries[h]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.NewUnknownHandleError(op, uint64(h))
	}
	return e, nil
}

// With resolves h and runs fn while holding the entry's mutex.
//
// A concurrent Delete does not interrupt fn; the estimator is dropped once fn
// returns.
func (r *Registry) With(op string, h Handle, fn func(model.Estimator) error) error {
	e, err := r.Get(op, h)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.est)
}

// Len returns the number of registered handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Handles returns the registered handles in ascending order.
func (r *Registry) Handles() []Handle {
	r.mu.RLock()
	hs := make([]Handle, 0, len(r.entries))
	for h := range r.entries {
		hs = append(hs, h)
	}
	r.mu.RUnlock()
	slices.Sort(hs)
	return hs
}
