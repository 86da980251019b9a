package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"0", zerolog.ErrorLevel},
		{"1", zerolog.WarnLevel},
		{"2", zerolog.InfoLevel},
		{"3", zerolog.DebugLevel},
		{"Warning", zerolog.WarnLevel},
		{"debug", zerolog.DebugLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew_MovesPreviousLogToBackup(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, logFileName), []byte("previous run\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, backupFileName), []byte("older run\n"), 0o644))

	l := New(Config{Level: "info", Format: "json", Path: dir})
	defer l.Close()

	data, err := os.ReadFile(filepath.Join(dir, backupFileName))
	require.NoError(t, err)
	assert.Equal(t, "previous run\n", string(data))

	l.Info().Msg("fresh start")
	data, err = os.ReadFile(filepath.Join(dir, logFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "fresh start")
	assert.NotContains(t, string(data), "previous run")
}

func TestNew_LevelGatesOutput(t *testing.T) {
	l := New(Config{Level: "0", Format: "json", BufferSize: 10})

	l.Info().Msg("hidden")
	l.Error().Msg("shown")

	entries := l.GetRecentLogs()
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0].Message)
	assert.Equal(t, "error", entries[0].Level)
}

func TestBuffer_KeepsMostRecent(t *testing.T) {
	b := NewBuffer(3)
	for _, msg := range []string{"a", "b", "c", "d", "e"} {
		_, err := b.Write([]byte(`{"level":"info","message":"` + msg + `","component":"sync","id":1}`))
		require.NoError(t, err)
	}

	entries := b.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "c", entries[0].Message)
	assert.Equal(t, "e", entries[2].Message)
	assert.Equal(t, "sync", entries[2].Component)
	assert.Equal(t, float64(1), entries[2].Fields["id"])
}

func TestBuffer_IgnoresMalformed(t *testing.T) {
	b := NewBuffer(2)
	n, err := b.Write([]byte("not json"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Empty(t, b.Entries())
}
