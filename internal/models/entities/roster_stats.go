package entities

import "time"

// TeamRosterStats is the read-side aggregate behind the team-profile view,
// filled by the sqlx stats queries.
type TeamRosterStats struct {
	ID               uint      `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Tag              string    `db:"tag" json:"tag"`
	Region           string    `db:"region" json:"region"`
	CaptainDiscordID *string   `db:"captain_discord_id" json:"captain_discord_id"`
	LogoURL          *string   `db:"logo_url" json:"logo_url,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	MemberCount      int       `db:"member_count" json:"member_count"`
	ManagerCount     int       `db:"manager_count" json:"manager_count"`
	CoachCount       int       `db:"coach_count" json:"coach_count"`
}
