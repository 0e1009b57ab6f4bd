package workflows

import (
	"context"
	"errors"
	"fmt"

	"scrimworks/quartermaster/internal/config"
	"scrimworks/quartermaster/internal/constants"
	"scrimworks/quartermaster/internal/db/repositories"
	"scrimworks/quartermaster/internal/logging"
	"scrimworks/quartermaster/internal/metrics"
	"scrimworks/quartermaster/internal/platform"
	"scrimworks/quartermaster/internal/services"
	"scrimworks/quartermaster/internal/sessions"

	"gorm.io/gorm"
)

// State names one node in a workflow's transition table.
type State string

// Terminal states shared by every workflow kind.
const (
	StateDone      State = "done"
	StateCancelled State = "cancelled"
)

// Outcome labels reported on the finished-workflows metric.
const (
	OutcomeSuccess   = "success"
	OutcomeCancelled = "cancelled"
	OutcomeDeclined  = "declined"
	OutcomeTimeout   = "timeout"
	OutcomeError     = "error"
	OutcomeRejected  = "rejected"
)

// stepFunc executes one state and names the next. Validation failures that
// should re-prompt return the current state; terminal conditions return
// StateDone or StateCancelled after posting their message.
type stepFunc func(ctx context.Context) (State, error)

// transitions is one workflow's state table.
type transitions map[State]stepFunc

// Engine sequences workflow prompts, validates each step, and drives the
// guarded roster commits. One Engine serves all workflow kinds; each
// invocation runs inside its own session scope.
type Engine struct {
	cfg      *config.Config
	sessions *sessions.Manager
	prompt   platform.PromptSurface
	scopes   platform.ScopeManager
	notify   platform.Notifier
	roles    platform.RoleAssigner
	media    platform.MediaStore
	roster   *services.RosterService

	players *repositories.PlayerRepositoryGORM
	teams   *repositories.TeamRepositoryGORM
	members *repositories.MemberRepositoryGORM
	bans    *repositories.BanRepositoryGORM

	metrics *metrics.MetricsRegistry
}

// EngineDeps bundles the engine's collaborators.
type EngineDeps struct {
	Cfg      *config.Config
	Sessions *sessions.Manager
	Prompt   platform.PromptSurface
	Scopes   platform.ScopeManager
	Notify   platform.Notifier
	Roles    platform.RoleAssigner
	Media    platform.MediaStore
	Roster   *services.RosterService

	Players *repositories.PlayerRepositoryGORM
	Teams   *repositories.TeamRepositoryGORM
	Members *repositories.MemberRepositoryGORM
	Bans    *repositories.BanRepositoryGORM

	Metrics *metrics.MetricsRegistry
}

// NewEngine wires a workflow engine from its dependencies.
func NewEngine(deps EngineDeps) *Engine {
	return &Engine{
		cfg:      deps.Cfg,
		sessions: deps.Sessions,
		prompt:   deps.Prompt,
		scopes:   deps.Scopes,
		notify:   deps.Notify,
		roles:    deps.Roles,
		media:    deps.Media,
		roster:   deps.Roster,
		players:  deps.Players,
		teams:    deps.Teams,
		members:  deps.Members,
		bans:     deps.Bans,
		metrics:  deps.Metrics,
	}
}

// run drives one workflow through its transition table until a terminal
// state, which it returns. The loop is the single dispatch point: every
// (state, event) pair the workflow reacts to is a stepFunc entry.
func (e *Engine) run(s *sessions.Session, start State, table transitions) (State, error) {
	cur := start
	for cur != StateDone && cur != StateCancelled {
		step, ok := table[cur]
		if !ok {
			return cur, fmt.Errorf("workflow %s: no handler for state %q", s.Kind, cur)
		}

		next, err := step(s.Context())
		if err != nil {
			return cur, err
		}

		// A completed step counts as initiator activity.
		e.sessions.Touch(s.ScopeID)
		cur = next
	}
	return cur, nil
}

// runAndFinish executes the table and folds the terminal state and error
// into the recorded outcome. Timeouts are not errors to the caller: the
// expiry message has already been posted by the session watcher or the
// step itself.
func (e *Engine) runAndFinish(ctx context.Context, s *sessions.Session, start State, table transitions) error {
	terminal, err := e.run(s, start, table)
	if err != nil {
		if isTimeout(err) {
			e.finish(s, OutcomeTimeout)
			return nil
		}
		e.post(ctx, s.ScopeID, storeFailureMessage(err))
		e.finish(s, OutcomeError)
		return err
	}
	if terminal == StateCancelled {
		e.finish(s, OutcomeCancelled)
		return nil
	}
	e.finish(s, OutcomeSuccess)
	return nil
}

// finish records the outcome and tears the session down after the grace
// delay so the terminal message stays visible.
func (e *Engine) finish(s *sessions.Session, outcome string) {
	if e.metrics != nil {
		e.metrics.WorkflowsFinished.WithLabelValues(s.Kind.String(), outcome).Inc()
		e.metrics.SessionsActive.Dec()
	}
	e.sessions.End(s.ScopeID, e.cfg.TeardownGrace)
}

// begin opens a session, enforcing one-active-session, and reports the
// rejection to the initiator when a session already exists.
func (e *Engine) begin(ctx context.Context, userID string, kind constants.WorkflowKind, title string) (*sessions.Session, error) {
	s, err := e.sessions.Begin(ctx, userID, kind, title)
	if err != nil {
		if errors.Is(err, sessions.ErrSessionActive) {
			_ = e.notify.Notify(ctx, userID, constants.MsgDuplicateSession)
		}
		return nil, err
	}
	if e.metrics != nil {
		e.metrics.WorkflowsStarted.WithLabelValues(kind.String()).Inc()
		e.metrics.SessionsActive.Inc()
	}
	return s, nil
}

// gateBanned checks the ban record before any session exists. A banned
// identity gets the blocked message over DM and no scope is ever created.
func (e *Engine) gateBanned(ctx context.Context, userID string) (bool, error) {
	banned, err := e.bans.IsBanned(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("ban check failed: %w", err)
	}
	if banned {
		_ = e.notify.Notify(ctx, userID, constants.MsgBanned)
		return true, nil
	}
	return false, nil
}

// post sends a message into the session scope, logging delivery problems.
func (e *Engine) post(ctx context.Context, scopeID, message string) {
	if err := e.prompt.Post(ctx, scopeID, message); err != nil {
		logging.Warn("failed to post to scope", "scope_id", scopeID, "error", err.Error())
	}
}

// storeFailureMessage renders a commit failure for the initiator. Sentinel
// eligibility errors get their guidance text; anything else surfaces as a
// generic failure with the underlying message.
func storeFailureMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrAlreadyOnTeam):
		return constants.MsgAlreadyOnTeam
	case errors.Is(err, services.ErrDuplicateTeamName):
		return constants.MsgDuplicateTeamName
	case errors.Is(err, services.ErrDuplicateTeamTag):
		return constants.MsgDuplicateTeamTag
	case errors.Is(err, services.ErrRoleCapacityFull):
		return constants.MsgPositionFilled
	case errors.Is(err, services.ErrCaptainImmovable):
		return constants.MsgCaptainCannotBeKicked
	default:
		return fmt.Sprintf("Something went wrong saving your request: %v", err)
	}
}

// isTimeout folds the two shapes a response-window expiry can take.
func isTimeout(err error) bool {
	return errors.Is(err, platform.ErrPromptTimeout) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}

// notFound is a readability wrapper around the gorm sentinel.
func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
