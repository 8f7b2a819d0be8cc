package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedwatch/sourcegrid/pkg/cache"
	apperr "github.com/feedwatch/sourcegrid/pkg/errors"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12", 12, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseID("feed", tt.in)
			if tt.wantErr {
				assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidInput), "parseID(%q) error = %v", tt.in, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs("feed", []string{"1", "7"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 7}, ids)

	ids, err = parseIDs("feed", nil)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = parseIDs("feed", []string{"1", "x"})
	assert.Error(t, err)
}

func TestParseSwitch(t *testing.T) {
	for _, s := range []string{"on", "enable", "true"} {
		got, err := parseSwitch(s)
		require.NoError(t, err)
		assert.True(t, got, s)
	}
	for _, s := range []string{"off", "disable", "false"} {
		got, err := parseSwitch(s)
		require.NoError(t, err)
		assert.False(t, got, s)
	}
	_, err := parseSwitch("yes")
	assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidInput))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "Économ…", truncate("Économie et marchés", 7))
}

func TestOpenOutput(t *testing.T) {
	var stdout bytes.Buffer
	w, err := openOutput("-", &stdout)
	require.NoError(t, err)
	_, _ = w.Write([]byte("x"))
	require.NoError(t, w.Close())
	assert.Equal(t, "x", stdout.String())

	path := filepath.Join(t.TempDir(), "grid.json")
	w, err = openOutput(path, &stdout)
	require.NoError(t, err)
	_, _ = w.Write([]byte("{}"))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestCacheLocation(t *testing.T) {
	assert.Equal(t, "/tmp/sg", cacheLocation(cache.Options{Backend: cache.BackendFile, Dir: "/tmp/sg"}))
	assert.Equal(t, "redis://localhost:6379/2", cacheLocation(cache.Options{
		Backend: cache.BackendRedis,
		Redis:   cache.RedisConfig{Addr: "localhost:6379", DB: 2},
	}))
	assert.Equal(t, "(disabled)", cacheLocation(cache.Options{Backend: cache.BackendNone}))
}

func TestSyncActionLabel(t *testing.T) {
	assert.Equal(t, "cloned", syncActionLabel("cloned"))
	assert.Equal(t, "updated", syncActionLabel("update"))
	assert.Equal(t, "already up to date", syncActionLabel("up_to_date"))
	assert.Equal(t, "synchronised (reset)", syncActionLabel("reset"))
}
