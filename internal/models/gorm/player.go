package gorm

import (
	"time"

	"scrimworks/quartermaster/internal/constants"
)

type Player struct {
	ID        uint             `gorm:"column:id;primaryKey;autoIncrement"`
	DiscordID string           `gorm:"column:discord_id;uniqueIndex"`
	IGN       string           `gorm:"column:ign;uniqueIndex"`
	GameID    string           `gorm:"column:game_id"`
	Region    constants.Region `gorm:"column:region"`
	AgentTag  *string          `gorm:"column:agent_tag"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	Memberships []TeamMember `gorm:"foreignKey:DiscordID;references:DiscordID"`
}

// TableName specifies the table name for GORM
func (Player) TableName() string {
	return "players"
}
