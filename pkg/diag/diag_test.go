package diag

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutDiagnosticsFileHasNoOpCloser(t *testing.T) {
	log, closer, err := New("")
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.NoError(t, closer())
}

func TestNewWithDiagnosticsFileWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diag.json")

	log, closer, err := New(path)
	require.NoError(t, err)

	log.Warn("unrecognized words in instruction stream", "count", 3)
	require.NoError(t, closer())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	line := strings.TrimSpace(string(data))
	require.NotEmpty(t, line)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "unrecognized words in instruction stream", entry["msg"])
	assert.Equal(t, float64(3), entry["count"])
}

func TestDiscardIsNonNilAndSafeToUse(t *testing.T) {
	log := Discard()
	require.NotNil(t, log)
	assert.NotPanics(t, func() { log.Info("noop") })
}
