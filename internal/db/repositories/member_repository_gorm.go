package repositories

import (
	"context"
	"fmt"

	"scrimworks/quartermaster/internal/constants"
	gormModels "scrimworks/quartermaster/internal/models/gorm"

	"gorm.io/gorm"
)

type MemberRepositoryGORM struct {
	db *gorm.DB
}

// NewMemberRepositoryGORM creates a new GORM-based team member repository
func NewMemberRepositoryGORM(db *gorm.DB) *MemberRepositoryGORM {
	return &MemberRepositoryGORM{db: db}
}

// ListByTeam retrieves all members of one team
func (r *MemberRepositoryGORM) ListByTeam(ctx context.Context, teamID uint) ([]gormModels.TeamMember, error) {
	var members []gormModels.TeamMember

	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("joined_at").
		Find(&members).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}

	return members, nil
}

// ListByDiscordID retrieves every membership held by one identity. The
// one-team rule means this returns at most one row once commits settle, but
// callers must not assume that while validating.
func (r *MemberRepositoryGORM) ListByDiscordID(ctx context.Context, discordID string) ([]gormModels.TeamMember, error) {
	var members []gormModels.TeamMember

	err := r.db.WithContext(ctx).
		Where("discord_id = ?", discordID).
		Find(&members).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	return members, nil
}

// Get retrieves the membership row for (team, identity)
func (r *MemberRepositoryGORM) Get(ctx context.Context, teamID uint, discordID string) (*gormModels.TeamMember, error) {
	var member gormModels.TeamMember

	err := r.db.WithContext(ctx).
		Where("team_id = ? AND discord_id = ?", teamID, discordID).
		First(&member).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to fetch membership: %w", err)
	}

	return &member, nil
}

// CountByRole counts members of a team holding the given role
func (r *MemberRepositoryGORM) CountByRole(ctx context.Context, teamID uint, role constants.TeamRole) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&gormModels.TeamMember{}).
		Where("team_id = ? AND role = ?", teamID, role).
		Count(&count).Error

	if err != nil {
		return 0, fmt.Errorf("failed to count members by role: %w", err)
	}

	return count, nil
}
