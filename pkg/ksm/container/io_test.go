package container

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileThenReadFileRoundTrips(t *testing.T) {
	raw := Build(emptyPopulatedFile(V132))
	path := filepath.Join(t.TempDir(), "out.ksm")

	require.NoError(t, WriteFile(path, raw))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestReadFileRejectsMisalignedSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.ksm")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))

	_, err := ReadFile(path)
	assert.Error(t, err)
}
