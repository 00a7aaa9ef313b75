package model

import "sync"

// StateManager tracks fitted state and the data dimensions seen by Fit.
// Fields are exported so gob can persist them with the owning model.
type StateManager struct {
	mu sync.RWMutex

	Fitted    bool
	NFeatures int
	NSamples  int
}

// NewStateManager returns an unfitted state.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted reports whether SetFitted has been called since the last Reset.
func (s *StateManager) IsFitted() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Fitted
}

// SetFitted marks the model as trained.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = true
}

// SetDimensions records the shape of the training data.
func (s *StateManager) SetDimensions(nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.NFeatures = nFeatures
	s.NSamples = nSamples
}

// Dimensions returns the recorded feature and sample counts.
func (s *StateManager) Dimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.NFeatures, s.NSamples
}

// Reset clears fitted state and dimensions.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = false
	s.NFeatures = 0
	s.NSamples = 0
}
