package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("info"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestNewWithOutput_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")

	log := NewZapAdapter(NewWithOutput("info", "json", path))
	log.WithFields(map[string]interface{}{"taskType": "generate-quick-prediction"}).
		Info("prediction generated", map[string]interface{}{"score": 61.5})
	log.Debug("suppressed at info level", nil)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"prediction generated"`)
	assert.Contains(t, string(data), `"taskType":"generate-quick-prediction"`)
	assert.NotContains(t, string(data), "suppressed")
}

func TestMapToZapFields(t *testing.T) {
	assert.Nil(t, mapToZapFields(nil))

	fields := mapToZapFields(map[string]interface{}{"error": errors.New("boom")})
	require.Len(t, fields, 1)
	assert.Equal(t, "error", fields[0].Key)
	assert.Equal(t, zapcore.ErrorType, fields[0].Type)
}

func TestNoOpAndTestLoggers(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNoOpLogger().WithError(errors.New("ignored")).Warn("noop", nil)
		NewTestLogger(t).With(map[string]interface{}{"k": "v"}).Error("visible in test output", nil)
	})
}
