package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "tabstreams", cfg.ServiceID)
	assert.Equal(t, []string{"nats://localhost:4222"}, cfg.NATS.URLs)
	assert.Equal(t, -1, cfg.NATS.MaxReconnects)
	assert.Equal(t, 2*time.Second, cfg.NATS.ReconnectWait)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `{
		"service_id": "tsv-repair-svc",
		"nats": {"urls": ["nats://10.0.0.1:4222"], "reconnect_wait": "5s"},
		"logging": {"level": "debug", "format": "json"},
		"components": {
			"tsv-repair-main": {
				"type": "tsv_repair",
				"enabled": true,
				"config": {"script": "function process(r, e) { return r; }"}
			}
		}
	}`)

	cfg, err := NewLoader().LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "tsv-repair-svc", cfg.ServiceID)
	assert.Equal(t, []string{"nats://10.0.0.1:4222"}, cfg.NATS.URLs)
	assert.Equal(t, 5*time.Second, cfg.NATS.ReconnectWait)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 9090, cfg.Metrics.Port, "unset fields keep defaults")

	instance, ok := cfg.Components["tsv-repair-main"]
	require.True(t, ok)
	assert.Equal(t, "tsv_repair", instance.Type)
	assert.True(t, instance.Enabled)
	assert.NotEmpty(t, instance.Config)
}

func TestLoadLayersMergeInOrder(t *testing.T) {
	base := writeConfigFile(t, `{"service_id": "base", "logging": {"level": "warn"}}`)
	override := writeConfigFile(t, `{"service_id": "override"}`)

	loader := NewLoader()
	loader.AddLayer(base)
	loader.AddLayer(override)

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "override", cfg.ServiceID)
	assert.Equal(t, "warn", cfg.Logging.Level, "earlier layer survives where later is silent")
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown top-level key", `{"service_id": "x", "bogus": true}`},
		{"wrong urls type", `{"nats": {"urls": "nats://localhost:4222"}}`},
		{"bad log level", `{"logging": {"level": "verbose"}}`},
		{"component missing type", `{"components": {"a": {"enabled": true}}}`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := writeConfigFile(t, test.content)
			_, err := NewLoader().LoadFile(path)
			require.Error(t, err)
		})
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := NewLoader().LoadFile("/nonexistent/config.json")
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TABSTREAMS_SERVICE_ID", "from-env")
	t.Setenv("TABSTREAMS_NATS_URLS", "nats://a:4222,nats://b:4222")
	t.Setenv("TABSTREAMS_LOG_LEVEL", "error")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.ServiceID)
	assert.Equal(t, []string{"nats://a:4222", "nats://b:4222"}, cfg.NATS.URLs)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	valid := NewLoader().getDefaults()
	require.NoError(t, valid.Validate())

	noService := *valid
	noService.ServiceID = ""
	assert.Error(t, noService.Validate())

	badService := *valid
	badService.ServiceID = "has spaces"
	assert.Error(t, badService.Validate())

	noURLs := *valid
	noURLs.NATS = NATSConfig{}
	assert.Error(t, noURLs.Validate())

	badComponent := *valid
	badComponent.Components = ComponentConfigs{"ok-name": {Type: ""}}
	assert.Error(t, badComponent.Validate())
}

func TestStringMasksCredentials(t *testing.T) {
	cfg := NewLoader().getDefaults()
	cfg.NATS.Password = "hunter2"
	cfg.NATS.Token = "secret-token"

	s := cfg.String()
	assert.NotContains(t, s, "hunter2")
	assert.NotContains(t, s, "secret-token")
}

func TestUnmarshalReconnectWaitForms(t *testing.T) {
	var fromString Config
	require.NoError(t, json.Unmarshal(
		[]byte(`{"nats": {"urls": ["u"], "reconnect_wait": "3s"}}`), &fromString))
	assert.Equal(t, 3*time.Second, fromString.NATS.ReconnectWait)

	var fromNumber Config
	require.NoError(t, json.Unmarshal(
		[]byte(`{"nats": {"urls": ["u"], "reconnect_wait": 1000000000}}`), &fromNumber))
	assert.Equal(t, time.Second, fromNumber.NATS.ReconnectWait)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("bogus"))
}

func TestSaveToFileRoundTrip(t *testing.T) {
	cfg := NewLoader().getDefaults()
	cfg.ServiceID = "round-trip"
	path := filepath.Join(t.TempDir(), "saved.json")

	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := NewLoader().LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "round-trip", loaded.ServiceID)
}
