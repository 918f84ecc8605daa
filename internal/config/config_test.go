package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
	require.Equal(t, 200*time.Millisecond, Default().Journal.FlushInterval())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
logging:
  level: debug
output:
  format: json
  pretty: true
journal:
  path: /tmp/journal.db
serve:
  transport: http
  addr: 127.0.0.1:9000
backend:
  kind: mirror
  trigger: focus_gained
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Output.Format)
	require.True(t, cfg.Output.Pretty)
	require.Equal(t, "/tmp/journal.db", cfg.Journal.Path)
	require.Equal(t, 1024, cfg.Journal.BufferSize)
	require.Equal(t, "http", cfg.Serve.Transport)
	require.Equal(t, "127.0.0.1:9000", cfg.Serve.Addr)
	require.Equal(t, "mirror", cfg.Backend.Kind)
	require.Equal(t, "focus_gained", cfg.Backend.Trigger)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ACCESSBRIDGE_LOGGING_LEVEL", "trace")
	t.Setenv("ACCESSBRIDGE_OUTPUT_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "trace", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Output.Format)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate_ReportsEverything(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "loud"
	cfg.Output.Format = "xml"
	cfg.Journal.BufferSize = 0
	cfg.Serve.Transport = "carrier-pigeon"
	cfg.Backend.Kind = "braille"
	cfg.Backend.Trigger = "never"

	err := cfg.Validate()
	require.Error(t, err)
	for _, field := range []string{"logging.level", "output.format", "journal.buffer_size", "serve.transport", "backend.kind", "backend.trigger"} {
		require.ErrorContains(t, err, field)
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "logging:\n  level: info\n")

	reloaded := make(chan *Config, 4)
	require.NoError(t, Watch(ctx, path, func(cfg *Config, err error) {
		if err == nil {
			reloaded <- cfg
		}
	}))

	writeFile(t, path, "logging:\n  level: error\n")
	select {
	case cfg := <-reloaded:
		require.Equal(t, "error", cfg.Logging.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}
