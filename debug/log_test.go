package debug

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogToWriter(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	t.Cleanup(Disable)

	require.True(t, Enabled())
	Log("seq", "client %d", 128)
	assert.Regexp(t, `^\[\d\d:\d\d:\d\d\.\d{3}\] seq        client 128\n$`, buf.String())

	Disable()
	Log("seq", "dropped")
	assert.NotContains(t, buf.String(), "dropped")
	assert.False(t, Enabled())
}

func TestLogEvery(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	t.Cleanup(Disable)

	for i := 0; i < 10; i++ {
		LogEvery(5, "listen", "tick")
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "tick (every 5, count=10)")
}

func TestEnableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")
	require.NoError(t, Enable(path))
	Log("bridge", "hello")
	Disable()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "debug logging started")
	assert.Contains(t, string(data), "hello")
}
