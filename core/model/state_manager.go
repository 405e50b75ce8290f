// Package model provides fitted-state bookkeeping for retention curve
// estimators.
package model

import (
	"sync"

	"github.com/YuminosukeSato/wrcfit/pkg/errors"
)

// ModelState represents the complete state of an estimator.
type ModelState struct {
	Fitted   bool   `json:"fitted"`
	Model    string `json:"model,omitempty"`
	NSamples int    `json:"n_samples,omitempty"`
	NDropped int    `json:"n_dropped,omitempty"`
	Seed     int64  `json:"seed,omitempty"`
}

// RequireFitted returns a NotFittedError naming method if the state is not
// fitted.
func (st ModelState) RequireFitted(estimator, method string) error {
	if !st.Fitted {
		return errors.NewNotFittedError(estimator, method)
	}
	return nil
}

// StateManager manages the fitted state of an estimator in a thread-safe
// manner. Estimators hold one by composition and guard their own fitted
// values with WithState and WithStateMut, so that state and values change
// together.
type StateManager struct {
	mu    sync.RWMutex
	state ModelState
}

// NewStateManager creates a new StateManager instance.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted returns whether the estimator has been fitted.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Fitted
}

// GetState returns the current state as a ModelState struct.
func (s *StateManager) GetState() ModelState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// WithState executes fn with the state locked for reading.
func (s *StateManager) WithState(fn func(st ModelState) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

// WithStateMut executes fn with the state locked for writing. Changes fn
// makes to st are kept only when it returns nil.
func (s *StateManager) WithStateMut(fn func(st *ModelState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state
	if err := fn(&next); err != nil {
		return err
	}
	s.state = next
	return nil
}
