package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.env")
	require.NoError(t, os.WriteFile(valid, []byte("TRACKER_DOTENV_CHECK=loaded\n"), 0o600))
	t.Setenv("TRACKER_DOTENV_CHECK", "")
	require.NoError(t, os.Unsetenv("TRACKER_DOTENV_CHECK"))

	tests := []struct {
		name    string
		file    string
		wantLog bool
	}{
		{name: "missing file is ignored", file: filepath.Join(dir, "missing.env")},
		{name: "valid file is loaded", file: valid},
		{name: "unreadable file is logged", file: dir, wantLog: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			loadDotEnv(&buf, tt.file)

			if tt.wantLog {
				assert.Contains(t, buf.String(), "Failed to load .env file")
				return
			}
			assert.Empty(t, buf.String())
		})
	}

	assert.Equal(t, "loaded", os.Getenv("TRACKER_DOTENV_CHECK"))
}
