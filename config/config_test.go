package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "CANOPY_CHAT", cfg.StreamName)
	assert.Equal(t, 5, cfg.SearchLimit)
	assert.Equal(t, 0.7, cfg.MinSimilarity)
	assert.Equal(t, 50*time.Millisecond, cfg.WordDelay)
	assert.Less(t, cfg.PingPeriod, cfg.PongWait)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().ServerAddr, cfg.ServerAddr)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canopy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server_addr: ":9090"
record_store_url: "http://store.internal:8000"
search_limit: 10
word_delay: 0s
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ServerAddr)
	assert.Equal(t, "http://store.internal:8000", cfg.RecordStoreURL)
	assert.Equal(t, 10, cfg.SearchLimit)
	assert.Equal(t, time.Duration(0), cfg.WordDelay)
	// Untouched keys keep their defaults.
	assert.Equal(t, Default().NatsURL, cfg.NatsURL)
}

func TestLoad_EnvOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canopy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`server_addr: ":9090"`), 0o644))

	t.Setenv("CANOPY_SERVER_ADDR", ":7070")
	t.Setenv("CANOPY_RECORD_STORE_URL", "http://override:8000")
	t.Setenv("CANOPY_MIN_SIMILARITY", "0.5")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.ServerAddr)
	assert.Equal(t, "http://override:8000", cfg.RecordStoreURL)
	assert.Equal(t, 0.5, cfg.MinSimilarity)
}

func TestLoad_RejectsInvalidSimilarity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canopy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`min_similarity: 1.5`), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "min_similarity")
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canopy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_addr: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
