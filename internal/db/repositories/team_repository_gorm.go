package repositories

import (
	"context"
	"fmt"

	gormModels "scrimworks/quartermaster/internal/models/gorm"

	"gorm.io/gorm"
)

type TeamRepositoryGORM struct {
	db *gorm.DB
}

// NewTeamRepositoryGORM creates a new GORM-based team repository
func NewTeamRepositoryGORM(db *gorm.DB) *TeamRepositoryGORM {
	return &TeamRepositoryGORM{db: db}
}

// GetByID retrieves a team by numeric id
func (r *TeamRepositoryGORM) GetByID(ctx context.Context, id uint) (*gormModels.Team, error) {
	var team gormModels.Team

	err := r.db.WithContext(ctx).First(&team, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to fetch team: %w", err)
	}

	return &team, nil
}

// GetByName retrieves a team by name, compared case-insensitively
func (r *TeamRepositoryGORM) GetByName(ctx context.Context, name string) (*gormModels.Team, error) {
	var team gormModels.Team

	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		First(&team).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to fetch team by name: %w", err)
	}

	return &team, nil
}

// GetByTag retrieves a team by short tag, compared case-insensitively
func (r *TeamRepositoryGORM) GetByTag(ctx context.Context, tag string) (*gormModels.Team, error) {
	var team gormModels.Team

	err := r.db.WithContext(ctx).
		Where("LOWER(tag) = LOWER(?)", tag).
		First(&team).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to fetch team by tag: %w", err)
	}

	return &team, nil
}

// ListWithMembers retrieves all teams with members preloaded. Candidate
// filtering for join workflows happens in the workflow layer.
func (r *TeamRepositoryGORM) ListWithMembers(ctx context.Context) ([]gormModels.Team, error) {
	var teams []gormModels.Team

	err := r.db.WithContext(ctx).
		Preload("Members").
		Order("created_at").
		Find(&teams).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	return teams, nil
}

// Update persists edited team fields
func (r *TeamRepositoryGORM) Update(ctx context.Context, team *gormModels.Team) error {
	if err := r.db.WithContext(ctx).Save(team).Error; err != nil {
		return fmt.Errorf("failed to update team: %w", err)
	}
	return nil
}
