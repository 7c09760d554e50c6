package pypimap_test

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lox/internal/adapters/pypimap"
)

func TestLoadOverridesGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(`{"foo-bar-car": "my-test-name"}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "mapping.json.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	overrides, err := pypimap.LoadOverrides(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"foo-bar-car": "my-test-name"}, overrides)
}

func TestLoadOverridesPlainJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"foo": "bar"}`), 0o600))

	overrides, err := pypimap.LoadOverrides(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"foo": "bar"}, overrides)
}

func TestLoadOverridesMissingFile(t *testing.T) {
	overrides, err := pypimap.LoadOverrides(filepath.Join(t.TempDir(), "absent.json.gz"))
	require.NoError(t, err)
	assert.Empty(t, overrides)
}

func TestLoadOverridesCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err := pypimap.LoadOverrides(path)
	require.Error(t, err)
}
