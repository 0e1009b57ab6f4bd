package repositories

import (
	"context"
	"fmt"

	"scrimworks/quartermaster/internal/constants"
	"scrimworks/quartermaster/internal/models/entities"

	"github.com/jmoiron/sqlx"
)

// RosterStatsRepository serves the read-side roster aggregates through raw
// SQL. Write paths go through the GORM repositories.
type RosterStatsRepository struct {
	db *sqlx.DB
}

func NewRosterStatsRepository(db *sqlx.DB) *RosterStatsRepository {
	return &RosterStatsRepository{db: db}
}

// GetTeamStats fetches the aggregated profile row for one team
func (r *RosterStatsRepository) GetTeamStats(ctx context.Context, teamID uint) (*entities.TeamRosterStats, error) {
	var stats entities.TeamRosterStats

	if err := r.db.GetContext(ctx, &stats, constants.GetTeamRosterStats, teamID); err != nil {
		return nil, fmt.Errorf("failed to fetch team stats: %w", err)
	}

	return &stats, nil
}

// ListTeams fetches aggregated rows for every team, optionally filtered by region
func (r *RosterStatsRepository) ListTeams(ctx context.Context, region string) ([]entities.TeamRosterStats, error) {
	var stats []entities.TeamRosterStats

	if err := r.db.SelectContext(ctx, &stats, constants.ListTeamsByRegion, region); err != nil {
		return nil, fmt.Errorf("failed to list team stats: %w", err)
	}

	return stats, nil
}
