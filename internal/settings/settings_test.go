package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/TFMV/fsview/internal/fserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "cfg")
	s, err := NewStore(dir, nil)
	require.NoError(t, err)
	return s, dir
}

func TestPathCreatesDir(t *testing.T) {
	s, dir := newTestStore(t)

	path, err := s.Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)

	st, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, st.IsDir())
}

func TestLoadDefaults(t *testing.T) {
	s, _ := newTestStore(t)

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), got)
}

func TestSaveLoad(t *testing.T) {
	s, dir := newTestStore(t)

	want := Default()
	want.ThemeMode = "dark"
	want.FontSize = 18
	want.FocusMode = true
	want.ParagraphFocusOpacity = 0.5
	require.NoError(t, s.Save(want))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestSavedDocumentFormat(t *testing.T) {
	s, dir := newTestStore(t)
	require.NoError(t, s.Save(Default()))

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"themeMode\": \"system\"")

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "system", doc["themeMode"])
	assert.Equal(t, 16.0, doc["fontSize"])
	assert.Equal(t, 30000.0, doc["autoSaveInterval"])
	assert.Equal(t, "assets", doc["imageAssetsFolder"])
	assert.Len(t, doc, 20)
}

func TestLoadPartialDocument(t *testing.T) {
	s, dir := newTestStore(t)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{"themeMode":"light","fontSize":20}`), 0644))

	got, err := s.Load()
	require.NoError(t, err)
	want := Default()
	want.ThemeMode = "light"
	want.FontSize = 20
	assert.Equal(t, want, got)
}

func TestLoadCorrupt(t *testing.T) {
	s, dir := newTestStore(t)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{"themeMode":`), 0644))

	_, err := s.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, fserr.ErrInvalidInput)
	assert.Contains(t, err.Error(), "failed to parse settings")
}

func TestNewStoreDefaultDir(t *testing.T) {
	if _, err := os.UserConfigDir(); err != nil {
		t.Skip("no user config dir")
	}
	s, err := NewStore("", nil)
	require.NoError(t, err)
	assert.Equal(t, AppName, filepath.Base(s.dir))
}
