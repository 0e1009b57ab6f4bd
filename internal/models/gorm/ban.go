package gorm

import "time"

// Ban blocks every registration workflow for the banned identity. Created
// and removed only through admin commands.
type Ban struct {
	ID             uint      `gorm:"column:id;primaryKey;autoIncrement"`
	DiscordID      string    `gorm:"column:discord_id;uniqueIndex"`
	AdminDiscordID string    `gorm:"column:admin_discord_id"`
	Reason         *string   `gorm:"column:reason"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (Ban) TableName() string {
	return "bans"
}
