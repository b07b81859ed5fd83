package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("USER", "alice")
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "alice", cfg.User.ID)
	assert.Equal(t, 64, cfg.Icons.Size)
	assert.Equal(t, 8, cfg.Capture.MaxInFlight)
	assert.Equal(t, "high", cfg.DND.Threshold)
	assert.Equal(t, "Work", cfg.Spaces.DefaultName)
	assert.Equal(t, "INBOX", cfg.Mail.Mailbox)
	assert.Equal(t, "app", cfg.Display.GroupBy)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
user:
  id: bob
dnd:
  enabled: true
  threshold: medium
display:
  group_by: space
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("TOASTCENTER_ICONS_SIZE", "32")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "bob", cfg.User.ID)
	assert.True(t, cfg.DND.Enabled)
	assert.Equal(t, "medium", cfg.DND.Threshold)
	assert.Equal(t, "space", cfg.Display.GroupBy)
	assert.Equal(t, 32, cfg.Icons.Size)
	assert.Equal(t, 64, cfg.Capture.Buffer)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dnd:\n  threshold: urgent\n"), 0o644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "dnd.threshold")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"defaults", func(*AppConfig) {}, false},
		{"empty user", func(c *AppConfig) { c.User.ID = "" }, true},
		{"user with separator", func(c *AppConfig) { c.User.ID = "../etc" }, true},
		{"zero icon size", func(c *AppConfig) { c.Icons.Size = 0 }, true},
		{"zero in flight", func(c *AppConfig) { c.Capture.MaxInFlight = 0 }, true},
		{"bad group", func(c *AppConfig) { c.Display.GroupBy = "day" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultAppConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultAppConfig()
	cfg.User.ID = "carol"
	cfg.DND.Enabled = true

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "carol", loaded.User.ID)
	assert.True(t, loaded.DND.Enabled)
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority(" High ")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	p, err = ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, PriorityNone, p)

	_, err = ParsePriority("urgent")
	assert.Error(t, err)
}
