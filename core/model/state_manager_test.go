package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/linbridge/pkg/errors"
)

func TestStateManager_Lifecycle(t *testing.T) {
	s := NewStateManager()
	assert.False(t, s.IsFitted())
	assert.Equal(t, 0, s.NFeatures())

	err := s.RequireFitted("OLS", "Predict")
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Predict", nf.Method)

	// any feature count is accepted before the first commit
	assert.NoError(t, s.CheckFeatures("Fit", 7))

	s.Commit(3, 10)
	assert.True(t, s.IsFitted())
	assert.Equal(t, 3, s.NFeatures())
	assert.Equal(t, 10, s.NSamples())
	assert.NoError(t, s.RequireFitted("OLS", "Predict"))
	assert.NoError(t, s.CheckFeatures("Fit", 3))

	err = s.CheckFeatures("Fit", 4)
	var dim *errors.DimensionError
	require.True(t, errors.As(err, &dim))
	assert.Equal(t, 3, dim.Expected)
	assert.Equal(t, 4, dim.Got)
	assert.Equal(t, 1, dim.Axis)

	s.Reset()
	assert.False(t, s.IsFitted())
	assert.NoError(t, s.CheckFeatures("Fit", 4))
}
