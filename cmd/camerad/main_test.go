package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KevinKickass/OpenCameraCore/internal/auth"
)

func TestDevicesCommandFallsBackToDemo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "device:\n  fixture: " + filepath.Join(dir, "missing.yaml") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	var out bytes.Buffer
	cmd := newCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"devices", "--config", path})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "CamX\tusb:001,002\nCamY\tusb:001,003\n", out.String())
}

func TestDevicesCommandRejectsBadConfig(t *testing.T) {
	cmd := newCommand()
	cmd.SetArgs([]string{"devices", "--config", filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, cmd.Execute())
}

func TestTokenCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"token"})
	require.NoError(t, cmd.Execute())

	var token, hash string
	_, err := fmt.Sscanf(out.String(), "token: %s\napi_token_hash: %s\n", &token, &hash)
	require.NoError(t, err)
	assert.True(t, auth.Verify(token, hash))
}
