// Package model defines the estimator capability and the fitted/feature-count
// state shared by every estimator variant.
package model

import (
	"sync"

	"github.com/YuminosukeSato/linbridge/pkg/errors"
)

// StateManager manages the fitted state of a model in a thread-safe manner.
//
// The feature count is established by the first successful Fit or
// SetCoefficients and never changes afterwards.
type StateManager struct {
	mu sync.RWMutex

	fitted    bool
	nFeatures int
	nSamples  int
}

// NewStateManager creates a new StateManager instance.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted returns whether the model has been fitted.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fitted
}

// NFeatures returns the established feature count, or 0 before the first commit.
func (s *StateManager) NFeatures() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nFeatures
}

// NSamples returns the number of rows seen by the last successful fit.
func (s *StateManager) NSamples() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nSamples
}

// CheckFeatures returns a DimensionError when nFeatures disagrees with an
// already established feature count.
func (s *StateManager) CheckFeatures(op string, nFeatures int) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fitted && s.nFeatures != nFeatures {
		return errors.NewDimensionError(op, s.nFeatures, nFeatures, 1)
	}
	return nil
}

// RequireFitted returns a NotFittedError if the model has not been fitted.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}

// Commit marks the model as fitted with the given dimensions. Callers commit
// only after the new coefficients are fully computed.
func (s *StateManager) Commit(nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = true
	s.nFeatures = nFeatures
	s.nSamples = nSamples
}

// Reset resets the fitted state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = false
	s.nFeatures = 0
	s.nSamples = 0
}
