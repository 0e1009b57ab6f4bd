package gorm

import (
	"time"

	"scrimworks/quartermaster/internal/constants"
)

type TeamMember struct {
	ID        uint               `gorm:"column:id;primaryKey;autoIncrement"`
	TeamID    uint               `gorm:"column:team_id;uniqueIndex:unique_team_member;not null"`
	DiscordID string             `gorm:"column:discord_id;uniqueIndex:unique_team_member;not null"`
	Role      constants.TeamRole `gorm:"column:role"`
	JoinedAt  time.Time          `gorm:"column:joined_at;autoCreateTime"`

	// Relationships
	Team Team `gorm:"foreignKey:TeamID"`
}

// TableName specifies the table name for GORM
func (TeamMember) TableName() string {
	return "team_members"
}
