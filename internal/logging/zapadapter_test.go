package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestZapAdapterWrite(t *testing.T) {
	var buf bytes.Buffer
	zl := NewZapLogger(New(DebugLevel, &buf))

	zl.Info("fitting model",
		zap.Int("samples", 200),
		zap.Float64("noise_var", 0.25),
		zap.String("kernel", "matern52"),
		zap.Bool("pooled", true),
	)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "fitting model", entry["message"])
	assert.Equal(t, float64(200), entry["samples"])
	assert.Equal(t, 0.25, entry["noise_var"])
	assert.Equal(t, "matern52", entry["kernel"])
	assert.Equal(t, true, entry["pooled"])
}

func TestZapAdapterNamedLogger(t *testing.T) {
	var buf bytes.Buffer
	zl := NewZapLogger(New(DebugLevel, &buf)).Named("gaussian_process")

	zl.Debug("refit")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "gaussian_process", entry["logger"])
	assert.Equal(t, "DEBUG", entry["level"])
}

func TestZapAdapterErrorField(t *testing.T) {
	var buf bytes.Buffer
	zl := NewZapLogger(New(DebugLevel, &buf))

	zl.Error("solve failed", zap.Error(errors.New("singular matrix")))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "singular matrix", entry["error"])
}

func TestZapAdapterLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	zl := NewZapLogger(New(ErrorLevel, &buf))

	zl.Debug("dropped")
	zl.Info("dropped")
	zl.Warn("dropped")
	assert.Zero(t, buf.Len())

	zl.Error("kept")
	assert.NotZero(t, buf.Len())
}

func TestZapAdapterWith(t *testing.T) {
	var buf bytes.Buffer
	zl := NewZapLogger(New(DebugLevel, &buf)).With(zap.String("subsystem", "search"))

	zl.Info("started")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "search", entry["subsystem"])
}
