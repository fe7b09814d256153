package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSecret(t *testing.T, root, key, value string, mode os.FileMode) {
	t.Helper()

	path := filepath.Join(root, key)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(value), mode))
	require.NoError(t, os.Chmod(path, mode))
}

func TestSourceRejectsInvalidKeys(t *testing.T) {
	t.Parallel()

	source := NewSource(t.TempDir())
	testCases := []struct {
		name    string
		key     string
		wantErr string
	}{
		{name: "empty", key: "", wantErr: "credential key is empty"},
		{name: "whitespace", key: "   ", wantErr: "credential key is empty"},
		{name: "absolute", key: "/absolute/path", wantErr: "invalid credential key"},
		{name: "traversal", key: "../escape", wantErr: "invalid credential key"},
		{name: "deep traversal", key: "../../secret", wantErr: "invalid credential key"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := source.Get(context.Background(), tc.key)
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestSourceGetTrimsStoredValue(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSecret(t, root, "pdfmcp/default", "pk_live_123\n", 0o600)

	got, err := NewSource(root).Get(context.Background(), "pdfmcp/default")
	require.NoError(t, err)
	assert.Equal(t, "pk_live_123", got)
}

func TestSourceGetRefusesPermissiveFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSecret(t, root, "shared", "pk_live_123", 0o644)

	_, err := NewSource(root).Get(context.Background(), "shared")
	require.Error(t, err)
	assert.ErrorContains(t, err, "accessible by other users")
}

func TestSourceGetReportsMissingAndEmpty(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSecret(t, root, "empty", " \n", 0o600)
	source := NewSource(root)

	_, err := source.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = source.Get(context.Background(), "empty")
	assert.ErrorContains(t, err, "is empty")
}
