package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 50051, cfg.Server.GRPCPort)
	assert.Empty(t, cfg.Server.APITokenHash)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 20*time.Millisecond, cfg.Worker.PreviewInterval)
	assert.Zero(t, cfg.Worker.CallTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Frontend.TickInterval)
	assert.True(t, cfg.Frontend.AutoOpenFirst)
	assert.Equal(t, "sim", cfg.Device.Backend)
	assert.Empty(t, cfg.Settings.Exclude)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  http_port: 9090
worker:
  preview_interval: 40ms
  call_timeout: 2s
frontend:
  auto_open_first: false
settings:
  exclude: [status, internalfirmware]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, 40*time.Millisecond, cfg.Worker.PreviewInterval)
	assert.Equal(t, 2*time.Second, cfg.Worker.CallTimeout)
	assert.False(t, cfg.Frontend.AutoOpenFirst)
	assert.Equal(t, []string{"status", "internalfirmware"}, cfg.Settings.Exclude)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("OCC_SERVER_HTTP_PORT", "7070")

	cfg, err := Load(writeConfig(t, "server:\n  http_port: 9090\n"))
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.HTTPPort)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "device:\n  backend: usb\n"))
	assert.ErrorContains(t, err, "device.backend")

	_, err = Load(writeConfig(t, "server:\n  http_port: 0\n"))
	assert.ErrorContains(t, err, "http_port")

	_, err = Load(writeConfig(t, "server:\n  grpc_port: 8080\n"))
	assert.ErrorContains(t, err, "grpc_port")

	_, err = Load(writeConfig(t, "server:\n  api_token_hash: secret\n"))
	assert.ErrorContains(t, err, "api_token_hash")
}
