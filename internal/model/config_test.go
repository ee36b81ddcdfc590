package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, err, nil)
	assert.Equal(t, len(cfg.Sources), 0)
	assert.Equal(t, cfg.Badges.Alert.MarkReadWhenSeen, true)
	assert.Equal(t, cfg.Badges.Message.MarkReadWhenSeen, false)
	assert.Equal(t, cfg.Display.PollIntervalSec, defaultPollIntervalSec)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
sources:
  - name: enwiki
    title: Wikipedia
    url: https://en.wikipedia.org/wiki/$1
  - name: commons
    title: Commons
    api_url: https://commons.example.org/api
    foreign: true
    enabled: false
    poll_interval_sec: 30
badges:
  message:
    mark_read_when_seen: true
store:
  path: /tmp/notifications.db
`
	assert.Equal(t, os.WriteFile(path, []byte(yaml), 0o644), nil)

	cfg, err := LoadConfig(path)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(cfg.Sources), 2)

	assert.Equal(t, cfg.Sources[0].Name, "enwiki")
	assert.Equal(t, cfg.Sources[0].Enabled, true)
	assert.Equal(t, cfg.Sources[0].PollIntervalSec, defaultPollIntervalSec)
	assert.Equal(t, cfg.Sources[0].Foreign, false)

	assert.Equal(t, cfg.Sources[1].Foreign, true)
	assert.Equal(t, cfg.Sources[1].Enabled, false)
	assert.Equal(t, cfg.Sources[1].PollIntervalSec, 30)
	assert.Equal(t, cfg.Sources[1].APIURL, "https://commons.example.org/api")

	assert.Equal(t, cfg.Badges.Alert.MarkReadWhenSeen, true)
	assert.Equal(t, cfg.Badges.For(BadgeMessage).MarkReadWhenSeen, true)
	assert.Equal(t, cfg.Store.Path, "/tmp/notifications.db")
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.Equal(t, os.WriteFile(path, []byte("sources: [\n"), 0o644), nil)

	_, err := LoadConfig(path)
	assert.NotEqual(t, err, nil)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := defaultAppConfig()
	cfg.Sources = append(cfg.Sources, SourceConfig{
		Name:            "dewiki",
		Title:           "Wikipedia (de)",
		Foreign:         true,
		Enabled:         true,
		PollIntervalSec: 45,
	})
	assert.Equal(t, SaveConfig(path, cfg), nil)

	loaded, err := LoadConfig(path)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(loaded.Sources), 1)
	assert.Equal(t, loaded.Sources[0].Name, "dewiki")
	assert.Equal(t, loaded.Sources[0].PollIntervalSec, 45)
	assert.Equal(t, loaded.Badges.Alert.MarkReadWhenSeen, true)
}
