package platform

import "context"

// RoleAssigner mirrors roster state onto platform role badges. All calls
// are best-effort: the badge sync worker logs failures and moves on, and
// roster state is always re-derivable without them.
type RoleAssigner interface {
	GrantRole(ctx context.Context, discordID string, roleRef string) error
	RevokeRole(ctx context.Context, discordID string, roleRef string) error

	// CreateTeamBadge provisions the team-specific badge and returns its
	// reference. DeleteTeamBadge is its best-effort inverse.
	CreateTeamBadge(ctx context.Context, teamName string) (badgeRef string, err error)
	DeleteTeamBadge(ctx context.Context, badgeRef string) error
}
