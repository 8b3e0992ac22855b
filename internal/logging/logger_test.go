package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name          string
		verbose       bool
		format        Format
		expectedLevel zapcore.Level
		expectError   bool
	}{
		{name: "console info", format: FormatConsole, expectedLevel: zapcore.InfoLevel},
		{name: "json debug", verbose: true, format: FormatJSON, expectedLevel: zapcore.DebugLevel},
		{name: "unknown format", format: Format("xml"), expectError: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := New(tc.verbose, tc.format)
			if tc.expectError {
				assert.Error(t, err)
				assert.Nil(t, logger)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tc.expectedLevel))
			assert.False(t, logger.Core().Enabled(tc.expectedLevel-1))
		})
	}
}
