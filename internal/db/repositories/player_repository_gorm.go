package repositories

import (
	"context"
	"fmt"

	gormModels "scrimworks/quartermaster/internal/models/gorm"

	"gorm.io/gorm"
)

type PlayerRepositoryGORM struct {
	db *gorm.DB
}

// NewPlayerRepositoryGORM creates a new GORM-based player repository
func NewPlayerRepositoryGORM(db *gorm.DB) *PlayerRepositoryGORM {
	return &PlayerRepositoryGORM{db: db}
}

// Create inserts a new player row
func (r *PlayerRepositoryGORM) Create(ctx context.Context, player *gormModels.Player) error {
	if err := r.db.WithContext(ctx).Create(player).Error; err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

// GetByDiscordID retrieves a player by Discord ID
func (r *PlayerRepositoryGORM) GetByDiscordID(ctx context.Context, discordID string) (*gormModels.Player, error) {
	var player gormModels.Player

	err := r.db.WithContext(ctx).
		Where("discord_id = ?", discordID).
		First(&player).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to fetch player: %w", err)
	}

	return &player, nil
}

// GetByIGN retrieves a player by IGN, compared case-insensitively
func (r *PlayerRepositoryGORM) GetByIGN(ctx context.Context, ign string) (*gormModels.Player, error) {
	var player gormModels.Player

	err := r.db.WithContext(ctx).
		Where("LOWER(ign) = LOWER(?)", ign).
		First(&player).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to fetch player by ign: %w", err)
	}

	return &player, nil
}

// Update persists edited player fields
func (r *PlayerRepositoryGORM) Update(ctx context.Context, player *gormModels.Player) error {
	if err := r.db.WithContext(ctx).Save(player).Error; err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}
	return nil
}

// Delete removes a player row. Memberships are not touched here; the
// workflow layer removes those first.
func (r *PlayerRepositoryGORM) Delete(ctx context.Context, discordID string) error {
	err := r.db.WithContext(ctx).
		Where("discord_id = ?", discordID).
		Delete(&gormModels.Player{}).Error

	if err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}
	return nil
}
