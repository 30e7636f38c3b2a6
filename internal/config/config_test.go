package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "continuumDecisions", cfg.Storage.Key)
	assert.Equal(t, time.Second, cfg.Insights.Latency)
	assert.Equal(t, 5, cfg.Query.ItemsPerPage)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, filepath.Join(os.Getenv("HOME"), ".continuum", "continuum.db"), cfg.Storage.Path)
	assert.Empty(t, cfg.Tagging.Rules)
}

func TestLoadFromPath(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		expectError bool
		validate    func(*testing.T, *Config)
	}{
		{
			name: "overrides",
			yaml: `
storage:
  path: /tmp/journal.db
server:
  addr: "127.0.0.1:9000"
insights:
  latency: 250ms
  rules:
    follow_up_tag: review
query:
  items_per_page: 10
log:
  level: debug
  format: json
tagging:
  rules:
    - tag: health
      keywords: [doctor, gym]
sentiment:
  positive: [calm]
  negative: [tense]
`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/tmp/journal.db", cfg.Storage.Path)
				assert.Equal(t, "continuumDecisions", cfg.Storage.Key)
				assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
				assert.Equal(t, 250*time.Millisecond, cfg.Insights.Latency)
				assert.Equal(t, "review", cfg.Insights.Rules.FollowUpTag)
				assert.Equal(t, 10, cfg.Query.ItemsPerPage)
				assert.Equal(t, "json", cfg.Log.Format)
				require.Len(t, cfg.Tagging.Rules, 1)
				assert.Equal(t, "health", cfg.Tagging.Rules[0].Tag)
				assert.Equal(t, []string{"doctor", "gym"}, cfg.Tagging.Rules[0].Keywords)
				assert.Equal(t, []string{"calm"}, cfg.Sentiment.Positive)
			},
		},
		{
			name:        "bad page size",
			yaml:        "query:\n  items_per_page: 0\n",
			expectError: true,
		},
		{
			name:        "rule without keywords",
			yaml:        "tagging:\n  rules:\n    - tag: empty\n",
			expectError: true,
		},
		{
			name:        "bad log level",
			yaml:        "log:\n  level: shouting\n",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))

			cfg, err := Load(path)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CONTINUUM_SERVER_ADDR", ":9999")
	t.Setenv("CONTINUUM_INSIGHTS_LATENCY", "0s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, time.Duration(0), cfg.Insights.Latency)
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/someone")
	assert.Equal(t, "/home/someone/x.db", expandPath("~/x.db"))
	assert.Equal(t, "/abs/x.db", expandPath("/abs/x.db"))
}
