package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestL_BeforeInitIsUsable(t *testing.T) {
	assert.NotNil(t, L())
	assert.NotPanics(t, func() { Info("before init") })
}

func TestNew(t *testing.T) {
	for _, env := range []string{"development", "production", "test"} {
		t.Run(env, func(t *testing.T) {
			l, err := New(env)
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestInit_ReplacesGlobal(t *testing.T) {
	before := L()
	require.NoError(t, Init("development"))
	assert.NotSame(t, before, L())
}
