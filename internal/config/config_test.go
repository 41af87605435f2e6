package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_FirstRunWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:8080", cfg.Listen)
	require.True(t, cfg.Sources.Canned)
	require.Equal(t, 140, cfg.Layout.MinWeekHeight)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, again)
}

func TestLoad_PartialConfigIsNormalized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
listen: ":9000"
layout:
  row_height: 40
icons:
  Podcast: mdi-microphone
sources:
  http:
    base_url: http://backend.local/api
  ics:
    - url: https://example.com/cal.ics
      name: Agency
      media_type: Digital
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.Listen)
	require.Equal(t, 40, cfg.Layout.RowHeight)
	require.Equal(t, 80, cfg.Layout.BaseHeight)
	require.Equal(t, "mdi-microphone", cfg.Icons["Podcast"])
	require.False(t, cfg.Sources.Canned)
	require.Equal(t, 15, cfg.Sources.HTTP.TimeoutSeconds)
	require.Len(t, cfg.Sources.ICS, 1)
	require.Equal(t, "Digital", cfg.Sources.ICS[0].MediaType)
	require.Equal(t, "*/15 * * * *", cfg.RefreshCron)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [unclosed"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestSave_Errors(t *testing.T) {
	require.ErrorIs(t, Save("", DefaultConfig()), ErrEmptyPath)
	require.ErrorIs(t, Save(filepath.Join(t.TempDir(), "c.yaml"), nil), ErrNilConfig)
	_, err := Load("")
	require.ErrorIs(t, err, ErrEmptyPath)
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timezone = "UTC"
	loc, err := cfg.Location()
	require.NoError(t, err)
	require.Equal(t, "UTC", loc.String())

	cfg.Timezone = "Nowhere/Invalid"
	loc, err = cfg.Location()
	require.Error(t, err)
	require.NotNil(t, loc)
}
