package responses

import (
	"time"

	"scrimworks/quartermaster/internal/models/entities"
)

// RosterMemberEntry is one membership row on the team-profile view.
type RosterMemberEntry struct {
	DiscordID string `json:"discord_id"`
	IGN       string `json:"ign,omitempty"`
	Role      string `json:"role"`
	JoinedAt  string `json:"joined_at"`
}

// TeamProfileResponse is the response for GET /api/v1/teams/{teamID}
type TeamProfileResponse struct {
	Stats   entities.TeamRosterStats `json:"stats"`
	Roster  []RosterMemberEntry      `json:"roster"`
	LogoURL *string                  `json:"logo_url,omitempty"`

	// CachedAt is set when the profile was served from the cache layer.
	CachedAt *time.Time `json:"cached_at,omitempty"`
}

// TeamListResponse is the response for GET /api/v1/teams
type TeamListResponse struct {
	Region string                     `json:"region,omitempty"`
	Teams  []entities.TeamRosterStats `json:"teams"`
}

// AdminActionResponse acknowledges a privileged mutation.
type AdminActionResponse struct {
	Action string `json:"action"`
	Detail string `json:"detail,omitempty"`
}
