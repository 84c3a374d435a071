package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSetLevel(t *testing.T) {
	require.NoError(t, Init(false))
	assert.False(t, Log.Core().Enabled(zap.DebugLevel))

	require.NoError(t, SetLevel("debug"))
	assert.True(t, Log.Core().Enabled(zap.DebugLevel))

	require.NoError(t, SetLevel("error"))
	assert.False(t, Log.Core().Enabled(zap.WarnLevel))
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	assert.Error(t, SetLevel("loud"))
}
