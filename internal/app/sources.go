package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/glog"

	"github.com/nhle/notification-center/internal/credential"
	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/source"
	"github.com/nhle/notification-center/internal/source/local"
	"github.com/nhle/notification-center/internal/source/remote"
	"github.com/nhle/notification-center/internal/store"
)

// registeredSource is a source ready to be polled.
type registeredSource struct {
	src      source.Source
	interval time.Duration
}

// sourcesRegisteredMsg is sent when the configured sources have been
// built. Registration itself happens on the update loop.
type sourcesRegisteredMsg struct {
	sources []registeredSource
}

// sourceAddedMsg is sent once a wiki entered in the form was saved.
type sourceAddedMsg struct {
	source registeredSource
	err    error
}

// registerSources merges the sources of the config file with the ones
// saved in the store and builds a transport for each enabled one. The
// config file wins when both name the same source.
func (m Model) registerSources() tea.Cmd {
	s := m.store
	configured := m.cfg.Sources

	return func() tea.Msg {
		ctx := context.Background()

		saved, err := s.GetSources(ctx)
		if err != nil {
			glog.Errorf("[app]failed to load sources: %s", err)
		}

		seen := map[string]bool{}
		var all []model.SourceConfig
		for _, cfg := range append(append([]model.SourceConfig{}, configured...), saved...) {
			if seen[cfg.Name] {
				continue
			}
			seen[cfg.Name] = true
			all = append(all, cfg)
		}

		var sources []registeredSource
		for _, cfg := range all {
			if !cfg.Enabled {
				continue
			}
			sources = append(sources, buildSource(s, cfg))
		}

		glog.Infof("[app]registered %d sources", len(sources))
		return sourcesRegisteredMsg{sources: sources}
	}
}

// saveSource stores a wiki entered in the form and its token.
func (m Model) saveSource(cfg model.SourceConfig, token string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if err := s.UpsertSource(context.Background(), cfg); err != nil {
			return sourceAddedMsg{err: err}
		}
		if token != "" {
			if err := credential.Set(credential.TokenKey(cfg.Name), token); err != nil {
				return sourceAddedMsg{err: err}
			}
		}
		return sourceAddedMsg{source: buildSource(s, cfg)}
	}
}

// enableSource builds the transport of a wiki that was switched back on.
func (m Model) enableSource(cfg model.SourceConfig) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		return sourceAddedMsg{source: buildSource(s, cfg)}
	}
}

// buildSource creates the transport of one wiki. Wikis with an API URL
// are fetched over HTTP and cached in the store; the others are served
// from the store alone.
func buildSource(s store.Store, cfg model.SourceConfig) registeredSource {
	info := source.Info{
		Name:    cfg.Name,
		Title:   cfg.Title,
		URL:     cfg.URL,
		Foreign: cfg.Foreign,
	}

	var upstream source.Source
	if cfg.APIURL != "" {
		token, err := credential.Token(cfg.Name)
		if err != nil {
			glog.Warningf("[app]no token for %s: %s", cfg.Name, err)
		}
		upstream = remote.NewAdapter(info, cfg.APIURL, token)
	}

	return registeredSource{
		src:      local.New(s, info, upstream),
		interval: time.Duration(cfg.PollIntervalSec) * time.Second,
	}
}
