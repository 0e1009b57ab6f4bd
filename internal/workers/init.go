package workers

import (
	"context"
	"fmt"
	"os"

	"scrimworks/quartermaster/internal/config"
	"scrimworks/quartermaster/internal/constants"
	"scrimworks/quartermaster/internal/metrics"
	"scrimworks/quartermaster/internal/platform"
)

// WorkersContainer holds the running background workers.
type WorkersContainer struct {
	BadgeSync *BadgeSyncWorker
}

// RoleBadgesFromConfig builds the role-to-badge mapping the badge sync
// worker applies. Unset refs leave that position without a global badge.
func RoleBadgesFromConfig(cfg *config.Config) map[constants.TeamRole]string {
	return map[constants.TeamRole]string{
		constants.RoleCaptain: cfg.BadgeCaptainRef,
		constants.RoleManager: cfg.BadgeManagerRef,
		constants.RoleCoach:   cfg.BadgeCoachRef,
		constants.RolePlayer:  cfg.BadgePlayerRef,
	}
}

// InitWorkers starts the background workers and returns the container.
func InitWorkers(
	ctx context.Context,
	cfg *config.Config,
	source EventSource,
	roles platform.RoleAssigner,
	m *metrics.MetricsRegistry,
) *WorkersContainer {
	host, _ := os.Hostname()
	worker := NewBadgeSyncWorker(
		fmt.Sprintf("badge-sync-%s-%d", host, os.Getpid()),
		source,
		roles,
		RoleBadgesFromConfig(cfg),
		m,
	)

	go func() {
		_ = worker.Start(ctx)
	}()

	return &WorkersContainer{BadgeSync: worker}
}
