package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/wrcfit/pkg/errors"
)

func TestStateManagerLifecycle(t *testing.T) {
	s := NewStateManager()
	assert.False(t, s.IsFitted())

	err := s.GetState().RequireFitted("Estimator", "Predict")
	var nfErr *errors.NotFittedError
	require.True(t, errors.As(err, &nfErr))
	assert.Equal(t, "Predict", nfErr.Method)

	fitted := ModelState{
		Fitted:   true,
		Model:    "VanGenuchten",
		NSamples: 12,
		NDropped: 1,
		Seed:     42,
	}
	require.NoError(t, s.WithStateMut(func(st *ModelState) error {
		*st = fitted
		return nil
	}))
	assert.True(t, s.IsFitted())
	assert.NoError(t, s.GetState().RequireFitted("Estimator", "Predict"))
	assert.Equal(t, fitted, s.GetState())

	var seen ModelState
	require.NoError(t, s.WithState(func(st ModelState) error {
		seen = st
		return nil
	}))
	assert.Equal(t, fitted, seen)

	require.NoError(t, s.WithStateMut(func(st *ModelState) error {
		*st = ModelState{}
		return nil
	}))
	assert.False(t, s.IsFitted())
	assert.Equal(t, ModelState{}, s.GetState())
}

func TestStateManagerDiscardsFailedMutation(t *testing.T) {
	s := NewStateManager()
	boom := errors.New("boom")

	err := s.WithStateMut(func(st *ModelState) error {
		st.Fitted = true
		st.Model = "FredlundXing"
		return boom
	})
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, ModelState{}, s.GetState())
}

func TestStateManagerConcurrentAccess(t *testing.T) {
	s := NewStateManager()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = s.WithStateMut(func(st *ModelState) error {
				*st = ModelState{Fitted: true, Model: "BrooksCorey", NSamples: i, Seed: int64(i)}
				return nil
			})
		}(i)
		go func() {
			defer wg.Done()
			_ = s.GetState()
			_ = s.IsFitted()
		}()
	}
	wg.Wait()
	assert.True(t, s.IsFitted())
	assert.Equal(t, "BrooksCorey", s.GetState().Model)
}
