package repositories

import (
	"context"
	"fmt"

	gormModels "scrimworks/quartermaster/internal/models/gorm"

	"gorm.io/gorm"
)

type BanRepositoryGORM struct {
	db *gorm.DB
}

// NewBanRepositoryGORM creates a new GORM-based ban repository
func NewBanRepositoryGORM(db *gorm.DB) *BanRepositoryGORM {
	return &BanRepositoryGORM{db: db}
}

// Create inserts a ban record for an identity
func (r *BanRepositoryGORM) Create(ctx context.Context, ban *gormModels.Ban) error {
	if err := r.db.WithContext(ctx).Create(ban).Error; err != nil {
		return fmt.Errorf("failed to create ban: %w", err)
	}
	return nil
}

// Delete lifts the ban for an identity
func (r *BanRepositoryGORM) Delete(ctx context.Context, discordID string) error {
	err := r.db.WithContext(ctx).
		Where("discord_id = ?", discordID).
		Delete(&gormModels.Ban{}).Error

	if err != nil {
		return fmt.Errorf("failed to delete ban: %w", err)
	}
	return nil
}

// Get retrieves the ban record for an identity, gorm.ErrRecordNotFound when absent
func (r *BanRepositoryGORM) Get(ctx context.Context, discordID string) (*gormModels.Ban, error) {
	var ban gormModels.Ban

	err := r.db.WithContext(ctx).
		Where("discord_id = ?", discordID).
		First(&ban).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to fetch ban: %w", err)
	}

	return &ban, nil
}

// IsBanned reports whether the identity currently has a ban record
func (r *BanRepositoryGORM) IsBanned(ctx context.Context, discordID string) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&gormModels.Ban{}).
		Where("discord_id = ?", discordID).
		Count(&count).Error

	if err != nil {
		return false, fmt.Errorf("failed to check ban: %w", err)
	}

	return count > 0, nil
}
