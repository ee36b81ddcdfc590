// Package sync polls notification sources in the background. Fetches run
// on their own goroutines and only report back through messages.
package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/glog"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/source"
)

// SyncState represents the current state of a source sync operation.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

// SyncStatus holds the sync state for a single source.
type SyncStatus struct {
	Source   string
	State    SyncState
	LastSync time.Time
	Error    error
}

// SyncResultMsg is a tea.Msg sent when one badge of one source has been
// fetched.
type SyncResultMsg struct {
	Badge     model.BadgeType
	Source    string
	Items     []model.ItemData
	Error     error
	AuthError *AuthErrorMsg
	NewCount  int
}

// AuthErrorMsg is a tea.Msg sent when a source returns an authentication error.
type AuthErrorMsg struct {
	Source  string
	Message string
}

// fetchTimeout is the maximum time allowed for a single fetch operation.
const fetchTimeout = 30 * time.Second

// defaultInterval is used for sources registered without an interval.
const defaultInterval = 120 * time.Second

// sourceEntry holds a registered source and its polling schedule.
type sourceEntry struct {
	src      source.Source
	interval time.Duration
	trigger  chan struct{}
	done     chan struct{}
}

// Poller orchestrates background polling of registered sources.
type Poller struct {
	badges   []model.BadgeType
	sources  []*sourceEntry
	statuses map[string]*SyncStatus
	known    map[string]map[int64]bool
	resultCh chan SyncResultMsg
	stopCh   chan struct{}
	mu       gosync.Mutex
	running  bool
}

// New creates a Poller fetching the given badges of every source.
func New(badges ...model.BadgeType) *Poller {
	return &Poller{
		badges:   badges,
		statuses: make(map[string]*SyncStatus),
		known:    make(map[string]map[int64]bool),
		resultCh: make(chan SyncResultMsg, 16),
		stopCh:   make(chan struct{}),
	}
}

// RegisterSource adds a source polled every interval. Sources added to
// a running poller start polling right away.
func (p *Poller) RegisterSource(src source.Source, interval time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if interval <= 0 {
		interval = defaultInterval
	}
	name := src.Info().Name
	entry := &sourceEntry{
		src:      src,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	p.sources = append(p.sources, entry)
	p.statuses[name] = &SyncStatus{
		Source: name,
		State:  SyncIdle,
	}

	if p.running {
		go p.pollSource(entry)
	}
}

// UnregisterSource stops polling source name and forgets its status.
// A fetch already in flight still reports its result.
func (p *Poller) UnregisterSource(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	kept := p.sources[:0]
	for _, entry := range p.sources {
		if entry.src.Info().Name == name {
			close(entry.done)
			continue
		}
		kept = append(kept, entry)
	}
	p.sources = kept
	delete(p.statuses, name)
	for _, badge := range p.badges {
		delete(p.known, name+"/"+string(badge))
	}
}

// Start returns a tea.Cmd that starts all polling goroutines and
// subscribes to results. The returned command waits on the result
// channel and returns SyncResultMsg messages to the Bubble Tea runtime.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	sources := append([]*sourceEntry(nil), p.sources...)
	p.mu.Unlock()

	for _, entry := range sources {
		go p.pollSource(entry)
	}

	return p.waitForResult()
}

// Stop halts all polling goroutines.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// RefreshAll triggers an immediate poll of all registered sources.
func (p *Poller) RefreshAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, entry := range p.sources {
		entry.poke()
	}
}

// RefreshSource triggers an immediate poll of a single source.
func (p *Poller) RefreshSource(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, entry := range p.sources {
		if entry.src.Info().Name == name {
			entry.poke()
		}
	}
}

// poke queues a poll unless one is already queued.
func (e *sourceEntry) poke() {
	select {
	case e.trigger <- struct{}{}:
	default:
	}
}

// GetStatuses returns the current sync status of all registered sources
// in registration order.
func (p *Poller) GetStatuses() []SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	statuses := make([]SyncStatus, 0, len(p.sources))
	for _, entry := range p.sources {
		if s, ok := p.statuses[entry.src.Info().Name]; ok {
			statuses = append(statuses, *s)
		}
	}
	return statuses
}

// pollSource runs the polling loop for a single source.
func (p *Poller) pollSource(entry *sourceEntry) {
	ticker := time.NewTicker(entry.interval)
	defer ticker.Stop()

	// Do an initial fetch immediately
	p.fetch(entry)

	for {
		select {
		case <-p.stopCh:
			return
		case <-entry.done:
			return
		case <-ticker.C:
			p.fetch(entry)
		case <-entry.trigger:
			p.fetch(entry)
		}
	}
}

// fetch fetches every badge of a source and sends one SyncResultMsg per
// badge on the result channel.
func (p *Poller) fetch(entry *sourceEntry) {
	name := entry.src.Info().Name
	p.setStatus(name, SyncRunning, nil)

	var lastErr error
	for _, badge := range p.badges {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		items, err := entry.src.Fetch(ctx, badge)
		cancel()

		if err != nil {
			lastErr = err
			glog.Warningf("[sync][%s]fetch %s failed: %s", name, badge, err)

			// Detect auth errors and emit a specific message.
			if source.IsAuthError(err) {
				p.sendResult(SyncResultMsg{
					Badge:  badge,
					Source: name,
					Error:  err,
					AuthError: &AuthErrorMsg{
						Source: name,
						Message: fmt.Sprintf(
							"%s: authentication expired. Press 'a' to set a new token.",
							name,
						),
					},
				})
				continue
			}

			p.sendResult(SyncResultMsg{Badge: badge, Source: name, Error: err})
			continue
		}

		p.sendResult(SyncResultMsg{
			Badge:    badge,
			Source:   name,
			Items:    items,
			NewCount: p.countNew(name, badge, items),
		})
	}

	if lastErr != nil {
		p.setStatus(name, SyncError, lastErr)
		return
	}
	p.setStatus(name, SyncIdle, nil)
}

// countNew returns how many unread items were not in the previous fetch
// of the same source and badge. The first fetch reports none.
func (p *Poller) countNew(name string, badge model.BadgeType, items []model.ItemData) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := name + "/" + string(badge)
	previous, fetchedBefore := p.known[key]

	current := make(map[int64]bool, len(items))
	count := 0
	for _, item := range items {
		current[item.ID] = true
		if fetchedBefore && !previous[item.ID] && !item.Read {
			count += 1
		}
	}
	p.known[key] = current

	return count
}

// setStatus updates the sync status for a source.
func (p *Poller) setStatus(name string, state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	status, ok := p.statuses[name]
	if !ok {
		return
	}

	status.State = state
	status.Error = err
	if state == SyncIdle && err == nil {
		status.LastSync = time.Now()
	}
}

// sendResult sends a SyncResultMsg on the result channel, giving up when
// the poller is stopped.
func (p *Poller) sendResult(msg SyncResultMsg) {
	select {
	case p.resultCh <- msg:
	case <-p.stopCh:
	}
}

// waitForResult returns a tea.Cmd that waits for the next result from
// the result channel.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case result := <-p.resultCh:
			return result
		case <-p.stopCh:
			return nil
		}
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next sync result.
// This should be called after processing a SyncResultMsg to continue
// listening for future results.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
