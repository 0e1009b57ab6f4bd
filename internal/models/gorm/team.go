package gorm

import (
	"time"

	"scrimworks/quartermaster/internal/constants"
)

type Team struct {
	ID               uint             `gorm:"column:id;primaryKey;autoIncrement"`
	Name             string           `gorm:"column:name;uniqueIndex"`
	Tag              string           `gorm:"column:tag;uniqueIndex"`
	Region           constants.Region `gorm:"column:region"`
	CaptainDiscordID *string          `gorm:"column:captain_discord_id"`
	LogoURL          *string          `gorm:"column:logo_url"`
	BadgeRef         *string          `gorm:"column:badge_ref"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	Members []TeamMember `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for GORM
func (Team) TableName() string {
	return "teams"
}
