package json

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deployments.json")

	require.NoError(t, NewWriter().WriteJSON(path, map[string]string{"PengolinToken": "0x01"}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"PengolinToken\": \"0x01\"\n}\n", string(content))

	var got map[string]string
	require.NoError(t, NewReader().ReadJSON(path, &got))
	assert.Equal(t, "0x01", got["PengolinToken"])
}

func TestReaderReportsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

	var target map[string]any
	err := NewReader().ReadJSON(path, &target)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}
