package app

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/specialistvlad/smartnodego/internal/catalog"
	"github.com/specialistvlad/smartnodego/internal/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig(Config{ConfigPath: "node.hcl"})
	require.NoError(t, err)

	assert.Equal(t, catalog.DefaultBase, cfg.BaseNamespace)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Zero(t, cfg.Pacing)
}

func TestNewConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "log format", cfg: Config{LogFormat: "xml"}, wantErr: `invalid log format "xml"`},
		{name: "log level", cfg: Config{LogLevel: "loud"}, wantErr: `invalid log level "loud"`},
		{name: "pacing", cfg: Config{Pacing: -time.Second}, wantErr: "pacing must not be negative"},
		{name: "port", cfg: Config{HealthcheckPort: 70000}, wantErr: "healthcheck port 70000 is out of range"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.cfg)
			assert.Nil(t, cfg)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestNewConfig_JoinsErrors(t *testing.T) {
	_, err := NewConfig(Config{LogFormat: "xml", LogLevel: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log format")
	assert.Contains(t, err.Error(), "log level")
}

func TestNewLogger(t *testing.T) {
	t.Run("text renders critical", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger("warn", "text", &buf)

		logger.Info("hidden")
		logger.Log(context.Background(), diag.LevelCritical, "duplicate component")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "level=CRITICAL")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger("debug", "json", &buf)

		logger.Debug("visible")

		assert.Contains(t, buf.String(), `"level":"DEBUG"`)
		assert.Contains(t, buf.String(), `"msg":"visible"`)
	})
}
