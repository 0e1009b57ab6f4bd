package sessions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"scrimworks/quartermaster/internal/constants"
	"scrimworks/quartermaster/internal/logging"
	"scrimworks/quartermaster/internal/platform"

	"github.com/google/uuid"
)

// ErrSessionActive means the initiator already has a running workflow.
var ErrSessionActive = errors.New("user already has an active session")

// Timeouts configures the inactivity ladder. Warn < Final < Kill, all
// measured from the last qualifying interaction.
type Timeouts struct {
	Warn  time.Duration
	Final time.Duration
	Kill  time.Duration
}

// Session is the transient in-process record of one running workflow. It is
// never persisted; a restart drops in-flight sessions and users start over.
type Session struct {
	ID      string
	ScopeID string
	UserID  string
	Kind    constants.WorkflowKind

	StartedAt time.Time

	// Fields holds collected-but-uncommitted step values, keyed by step
	// name. Purely transient.
	Fields map[string]string

	ctx      context.Context
	cancel   context.CancelFunc
	activity chan struct{}
	done     chan struct{}
	endOnce  sync.Once
}

// Context is cancelled when the session expires or ends; every prompt wait
// inside the workflow runs under it.
func (s *Session) Context() context.Context { return s.ctx }

// Manager enforces one active session per initiating identity and owns the
// inactivity ladder: warning, final warning, expiry with scope teardown.
// All state lives in process memory, keyed by scope id with a secondary
// index by initiator.
type Manager struct {
	mu      sync.Mutex
	byScope map[string]*Session
	byUser  map[string]*Session

	timeouts Timeouts
	prompt   platform.PromptSurface
	scopes   platform.ScopeManager
}

// NewManager creates a session manager posting warnings through prompt and
// tearing down scopes through scopes.
func NewManager(timeouts Timeouts, prompt platform.PromptSurface, scopes platform.ScopeManager) *Manager {
	return &Manager{
		byScope:  make(map[string]*Session),
		byUser:   make(map[string]*Session),
		timeouts: timeouts,
		prompt:   prompt,
		scopes:   scopes,
	}
}

// Begin opens a scope and registers a session for the initiator. A second
// Begin for the same identity fails with ErrSessionActive before any scope
// is created.
func (m *Manager) Begin(ctx context.Context, userID string, kind constants.WorkflowKind, title string) (*Session, error) {
	m.mu.Lock()
	if existing, ok := m.byUser[userID]; ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: scope %s", ErrSessionActive, existing.ScopeID)
	}
	// Reserve the user slot before the scope round-trip so two simultaneous
	// starts cannot both pass the duplicate check.
	placeholder := &Session{UserID: userID}
	m.byUser[userID] = placeholder
	m.mu.Unlock()

	scopeID, err := m.scopes.OpenScope(ctx, userID, title)
	if err != nil {
		m.mu.Lock()
		if m.byUser[userID] == placeholder {
			delete(m.byUser, userID)
		}
		m.mu.Unlock()
		return nil, fmt.Errorf("failed to open session scope: %w", err)
	}

	sctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:        uuid.New().String(),
		ScopeID:   scopeID,
		UserID:    userID,
		Kind:      kind,
		StartedAt: time.Now(),
		Fields:    make(map[string]string),
		ctx:       sctx,
		cancel:    cancel,
		activity:  make(chan struct{}, 1),
		done:      make(chan struct{}),
	}

	m.mu.Lock()
	m.byScope[scopeID] = s
	m.byUser[userID] = s
	m.mu.Unlock()

	go m.watch(s)

	logging.Info("session started",
		"session_id", s.ID,
		"scope_id", scopeID,
		"user_id", userID,
		"workflow", kind.String(),
	)
	return s, nil
}

// Get retrieves the session bound to a scope.
func (m *Manager) Get(scopeID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byScope[scopeID]
	return s, ok
}

// GetByUser retrieves the initiator's active session.
func (m *Manager) GetByUser(userID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byUser[userID]
	if ok && s.ScopeID == "" {
		return nil, false
	}
	return s, ok
}

// Touch resets the inactivity ladder. Called on every qualifying user
// interaction observed in the scope.
func (m *Manager) Touch(scopeID string) {
	m.mu.Lock()
	s, ok := m.byScope[scopeID]
	m.mu.Unlock()
	if !ok {
		return
	}
	select {
	case s.activity <- struct{}{}:
	default:
	}
}

// End terminates a session: cancels its context, stops the watcher, closes
// the scope after the given grace delay, and frees both indexes. Safe to
// call more than once.
func (m *Manager) End(scopeID string, grace time.Duration) {
	m.mu.Lock()
	s, ok := m.byScope[scopeID]
	if ok {
		delete(m.byScope, scopeID)
		if cur, found := m.byUser[s.UserID]; found && cur == s {
			delete(m.byUser, s.UserID)
		}
	}
	m.mu.Unlock()
	if !ok {
		return
	}

	s.endOnce.Do(func() {
		close(s.done)
		s.cancel()

		go func() {
			if grace > 0 {
				time.Sleep(grace)
			}
			if err := m.scopes.CloseScope(context.Background(), scopeID); err != nil {
				logging.Warn("failed to close session scope", "scope_id", scopeID, "error", err.Error())
			}
		}()

		logging.Info("session ended", "session_id", s.ID, "scope_id", scopeID, "user_id", s.UserID)
	})
}

// ActiveCount reports the number of running sessions.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byScope)
}

// watch drives the inactivity ladder for one session. Any activity resets
// the ladder to the beginning; reaching the end expires the session.
func (m *Manager) watch(s *Session) {
	const (
		stageWarn = iota
		stageFinal
		stageKill
	)

	stage := stageWarn
	timer := time.NewTimer(m.stageDelay(stageWarn))
	defer timer.Stop()

	for {
		select {
		case <-s.done:
			return

		case <-s.activity:
			stage = stageWarn
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(m.stageDelay(stageWarn))

		case <-timer.C:
			switch stage {
			case stageWarn:
				_ = m.prompt.Post(s.ctx, s.ScopeID, constants.MsgInactivityWarning)
				stage = stageFinal
				timer.Reset(m.stageDelay(stageFinal))
			case stageFinal:
				_ = m.prompt.Post(s.ctx, s.ScopeID, constants.MsgInactivityFinal)
				stage = stageKill
				timer.Reset(m.stageDelay(stageKill))
			case stageKill:
				logging.Info("session expired",
					"session_id", s.ID,
					"scope_id", s.ScopeID,
					"user_id", s.UserID,
				)
				_ = m.prompt.Post(context.Background(), s.ScopeID, constants.MsgSessionExpired)
				m.End(s.ScopeID, 0)
				return
			}
		}
	}
}

// stageDelay converts the absolute ladder configuration into per-stage
// waits.
func (m *Manager) stageDelay(stage int) time.Duration {
	switch stage {
	case 0:
		return m.timeouts.Warn
	case 1:
		return m.timeouts.Final - m.timeouts.Warn
	default:
		return m.timeouts.Kill - m.timeouts.Final
	}
}
