package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DevelopmentEnvsUseDevelopmentEncoder(t *testing.T) {
	for _, env := range []string{"local", "development", "dev"} {
		logger, err := New(env)
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}
}

func TestNew_UnknownOrProductionEnvUsesProductionEncoder(t *testing.T) {
	for _, env := range []string{"production", "staging", ""} {
		logger, err := New(env)
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}
}

func TestNewNop_ReturnsUsableLogger(t *testing.T) {
	logger := NewNop()
	require.NotNil(t, logger)
	logger.Info("should not panic")
}
