package events

import (
	"context"
	"time"

	"scrimworks/quartermaster/internal/constants"
)

// EventKind labels a post-commit roster mutation.
type EventKind string

const (
	TeamCreated          EventKind = "team_created"
	TeamDisbanded        EventKind = "team_disbanded"
	MembershipCommitted  EventKind = "membership_committed"
	MembershipRevoked    EventKind = "membership_revoked"
	CaptaincyTransferred EventKind = "captaincy_transferred"
)

// RosterEvent is published after a roster transaction commits. The badge
// sync worker consumes these to mirror roster state onto platform roles;
// roster correctness never depends on their delivery.
type RosterEvent struct {
	Kind       EventKind          `json:"kind"`
	TeamID     uint               `json:"team_id"`
	TeamName   string             `json:"team_name,omitempty"`
	BadgeRef   string             `json:"badge_ref,omitempty"`
	DiscordID  string             `json:"discord_id,omitempty"`
	Role       constants.TeamRole `json:"role,omitempty"`
	PrevRole   constants.TeamRole `json:"prev_role,omitempty"`
	DemotedTo  constants.TeamRole `json:"demoted_to,omitempty"`
	Affected   []string           `json:"affected,omitempty"`
	OccurredAt time.Time          `json:"occurred_at"`

	// RoleHeldElsewhere is set on revocations: the global position badge is
	// kept when the identity still holds the same role on another team.
	RoleHeldElsewhere bool `json:"role_held_elsewhere,omitempty"`
}

// Publisher delivers roster events to the badge sync pipeline.
type Publisher interface {
	Publish(ctx context.Context, event *RosterEvent) error
}

// NopPublisher discards events. Used when badge sync is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *RosterEvent) error { return nil }
