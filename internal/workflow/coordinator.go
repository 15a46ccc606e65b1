// Package workflow holds the client-side state the views of the app render:
// the saved-session list, the shot list with per-item generation flags, and
// the fusion workspace.
package workflow

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"shotcraft/internal/api"
	"shotcraft/pkg/logger"
)

// ListState is the session list lifecycle.
type ListState int

const (
	// ListEmpty is the initial state before the first refresh.
	ListEmpty ListState = iota
	// ListLoading means the first refresh is in flight.
	ListLoading
	// ListLoaded means the list reflects a successful refresh.
	ListLoaded
	// ListError means the last refresh failed; the previous list, if any, is
	// kept as last-known state.
	ListError
)

// SessionFilter selects which saved sessions belong to a list.
type SessionFilter func(api.Session) bool

// FusionSessions matches image-fusion sessions by type or name.
func FusionSessions(s api.Session) bool {
	return strings.Contains(strings.ToLower(s.Type), "fusion") ||
		strings.Contains(strings.ToLower(s.Name), "fusion")
}

// ShotSessions matches everything FusionSessions does not.
func ShotSessions(s api.Session) bool {
	return !FusionSessions(s)
}

// AllSessions matches every session.
func AllSessions(api.Session) bool { return true }

// SessionAPI is the backend surface the coordinator depends on.
type SessionAPI interface {
	ListSessions(ctx context.Context, projectID string) ([]api.Session, error)
	ResolveSessionDetails(ctx context.Context, sessionID string) (*api.SessionDetails, api.SessionKind, error)
	DeleteSession(ctx context.Context, projectID, sessionName string) error
}

// RestoreTarget is the dependent workflow state a selected session populates.
//
// Restore must be all-or-nothing: either every field of the target reflects
// the details, or (on error) the target is left exactly as it was. The
// coordinator calls Reset after any failed restore so partial population is
// impossible either way.
type RestoreTarget interface {
	Restore(details *api.SessionDetails) error
	Reset()
}

// ListSink receives the session list after each successful refresh. Used to
// keep the offline cache current; errors are logged, never surfaced.
type ListSink interface {
	ReplaceProject(projectID string, sessions []api.Session) error
}

// Coordinator orchestrates loading, selecting and deleting a project's saved
// sessions, reconciling local list state with the server after each mutation.
//
// Consistency policy: every local mutation bumps a version counter and every
// refresh is stamped with the version current when it was issued. A refresh
// response whose stamp is older than the version at arrival is discarded, so
// a poll racing a delete can never resurrect the deleted session regardless
// of which response resolves last. Overlapping selects are resolved the same
// way with a select generation: exactly one session's data ends up applied,
// never a merge.
type Coordinator struct {
	client SessionAPI
	filter SessionFilter
	target RestoreTarget
	sink   ListSink

	mu            sync.Mutex
	projectID     string
	state         ListState
	sessions      []api.Session
	selected      *api.Session
	pendingDelete *api.Session
	lastError     string
	version       uint64
	selectGen     uint64
}

// NewCoordinator creates a coordinator for one session list.
func NewCoordinator(client SessionAPI, filter SessionFilter, target RestoreTarget) *Coordinator {
	if filter == nil {
		filter = AllSessions
	}
	return &Coordinator{
		client: client,
		filter: filter,
		target: target,
		state:  ListEmpty,
	}
}

// SetSink registers the offline cache sink.
func (c *Coordinator) SetSink(sink ListSink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sink = sink
}

// Refresh fetches the session list and replaces the loaded list. Stale
// responses (issued before a mutation that has since been applied) are
// discarded.
func (c *Coordinator) Refresh(ctx context.Context, projectID string) error {
	c.mu.Lock()
	c.projectID = projectID
	if c.state == ListEmpty {
		c.state = ListLoading
	}
	stamp := c.version
	c.mu.Unlock()

	fetched, err := c.client.ListSessions(ctx, projectID)
	if err != nil {
		c.mu.Lock()
		c.state = ListError
		c.lastError = fmt.Sprintf("failed to load sessions: %v", err)
		c.mu.Unlock()
		return err
	}

	filtered := make([]api.Session, 0, len(fetched))
	for _, s := range fetched {
		if c.filter(s) {
			filtered = append(filtered, s)
		}
	}

	c.mu.Lock()
	if stamp != c.version {
		c.mu.Unlock()
		logger.Debugf("discarding stale session list (stamp %d, version %d)", stamp, c.version)
		return nil
	}
	c.sessions = filtered
	c.state = ListLoaded
	c.lastError = ""
	sink := c.sink
	c.mu.Unlock()

	if sink != nil {
		if err := sink.ReplaceProject(projectID, filtered); err != nil {
			logger.Warnf("failed to update session cache: %v", err)
		}
	}
	return nil
}

// Select fetches a session's full details and populates the dependent
// workflow state. On any failure the dependent state is reset to empty and an
// error is returned; partial population is not allowed. When selects overlap,
// only the latest issued one is applied.
func (c *Coordinator) Select(ctx context.Context, session api.Session) error {
	c.mu.Lock()
	c.selectGen++
	gen := c.selectGen
	c.mu.Unlock()

	details, kind, err := c.client.ResolveSessionDetails(ctx, session.ID)

	c.mu.Lock()
	if gen != c.selectGen {
		c.mu.Unlock()
		logger.Debugf("discarding stale select of session %s", session.ID)
		return nil
	}
	if err != nil {
		c.selected = nil
		c.lastError = fmt.Sprintf("failed to restore session %s: %v", session.Name, err)
		c.mu.Unlock()
		c.target.Reset()
		return fmt.Errorf("restore session %s: %w", session.Name, err)
	}
	if restoreErr := c.target.Restore(details); restoreErr != nil {
		c.selected = nil
		c.lastError = fmt.Sprintf("failed to restore session %s: %v", session.Name, restoreErr)
		c.mu.Unlock()
		c.target.Reset()
		return fmt.Errorf("restore session %s: %w", session.Name, restoreErr)
	}
	selected := session
	c.selected = &selected
	c.lastError = ""
	c.mu.Unlock()

	logger.Debugf("restored session %s (%s)", session.Name, kind)
	return nil
}

// MarkForDeletion records the session a ConfirmDelete call will delete. The
// destructive call never happens without this explicit two-step.
func (c *Coordinator) MarkForDeletion(session api.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	marked := session
	c.pendingDelete = &marked
}

// PendingDeletion returns the session marked for deletion, if any.
func (c *Coordinator) PendingDeletion() *api.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingDelete
}

// CancelDeletion clears the pending deletion mark.
func (c *Coordinator) CancelDeletion() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDelete = nil
}

// ConfirmDelete deletes the marked session. On success the item is removed
// from the loaded list and the mutation version advances, so in-flight poll
// responses cannot bring it back. If the deleted session was selected, the
// workflow state is cleared and the most recently created remaining session
// is auto-selected.
func (c *Coordinator) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	pending := c.pendingDelete
	projectID := c.projectID
	c.mu.Unlock()
	if pending == nil {
		return fmt.Errorf("no session marked for deletion")
	}

	if err := c.client.DeleteSession(ctx, projectID, pending.Name); err != nil {
		c.mu.Lock()
		c.lastError = fmt.Sprintf("failed to delete session %s: %v", pending.Name, err)
		c.mu.Unlock()
		return fmt.Errorf("delete session %s: %w", pending.Name, err)
	}

	c.mu.Lock()
	c.version++
	c.pendingDelete = nil
	remaining := make([]api.Session, 0, len(c.sessions))
	for _, s := range c.sessions {
		if s.ID != pending.ID {
			remaining = append(remaining, s)
		}
	}
	c.sessions = remaining
	wasSelected := c.selected != nil && c.selected.ID == pending.ID
	var next *api.Session
	if wasSelected {
		c.selected = nil
		next = mostRecent(remaining)
	}
	c.mu.Unlock()

	if wasSelected {
		c.target.Reset()
		if next != nil {
			return c.Select(ctx, *next)
		}
	}
	return nil
}

// State returns the list lifecycle state.
func (c *Coordinator) State() ListState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Sessions returns a copy of the loaded list in display order.
func (c *Coordinator) Sessions() []api.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]api.Session, len(c.sessions))
	copy(out, c.sessions)
	return out
}

// Selected returns the currently selected session, if any.
func (c *Coordinator) Selected() *api.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// LastError returns the most recent human-readable failure message.
func (c *Coordinator) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// mostRecent picks the session with the latest creation timestamp. Ties and
// unparseable timestamps keep list-arrival order (stable sort).
func mostRecent(sessions []api.Session) *api.Session {
	if len(sessions) == 0 {
		return nil
	}
	ordered := make([]api.Session, len(sessions))
	copy(ordered, sessions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return createdAt(ordered[i]).After(createdAt(ordered[j]))
	})
	top := ordered[0]
	return &top
}

func createdAt(s api.Session) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s.CreatedAt); err == nil {
			return t
		}
	}
	return time.Time{}
}
