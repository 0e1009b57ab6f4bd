package workers

import (
	"context"
	"fmt"
	"time"

	"scrimworks/quartermaster/internal/constants"
	"scrimworks/quartermaster/internal/events"
	"scrimworks/quartermaster/internal/logging"
	"scrimworks/quartermaster/internal/metrics"
	"scrimworks/quartermaster/internal/platform"
)

// BadgeSyncGroup is the consumer group the badge workers read under.
const BadgeSyncGroup = "badge-sync"

// EventSource is the queue side the worker consumes from. A nil event with
// no error means the blocking read timed out.
type EventSource interface {
	Dequeue(ctx context.Context, groupName, consumerName string, blockTime time.Duration) (*events.RosterEvent, string, error)
	Ack(ctx context.Context, groupName, messageID string) error
	CreateConsumerGroup(ctx context.Context, groupName string) error
}

// BadgeSyncWorker mirrors committed roster state onto platform role badges.
// Every badge operation is best-effort: a failure is counted and logged,
// the message is acked, and the roster is never touched.
type BadgeSyncWorker struct {
	workerID   string
	source     EventSource
	roles      platform.RoleAssigner
	roleBadges map[constants.TeamRole]string
	metrics    *metrics.MetricsRegistry
}

// NewBadgeSyncWorker creates a badge sync worker. roleBadges maps each
// roster role to the global position badge ref; an empty ref disables that
// position's badge.
func NewBadgeSyncWorker(
	workerID string,
	source EventSource,
	roles platform.RoleAssigner,
	roleBadges map[constants.TeamRole]string,
	m *metrics.MetricsRegistry,
) *BadgeSyncWorker {
	return &BadgeSyncWorker{
		workerID:   workerID,
		source:     source,
		roles:      roles,
		roleBadges: roleBadges,
		metrics:    m,
	}
}

// Start consumes roster events until the context is cancelled.
func (w *BadgeSyncWorker) Start(ctx context.Context) error {
	if err := w.source.CreateConsumerGroup(ctx, BadgeSyncGroup); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	logging.Info("badge sync worker started", "worker", w.workerID)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		event, msgID, err := w.source.Dequeue(ctx, BadgeSyncGroup, w.workerID, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logging.Error("badge sync dequeue failed", "worker", w.workerID, "error", err.Error())
			time.Sleep(2 * time.Second)
			continue
		}
		if event == nil {
			continue
		}

		w.process(ctx, event)

		// Processing is best-effort; a handled message is done either way.
		if err := w.source.Ack(ctx, BadgeSyncGroup, msgID); err != nil {
			logging.Warn("badge sync ack failed", "worker", w.workerID, "msg_id", msgID, "error", err.Error())
		}
	}
}

func (w *BadgeSyncWorker) process(ctx context.Context, event *events.RosterEvent) {
	switch event.Kind {
	case events.TeamCreated:
		// The team badge is provisioned before the creating commit; the
		// founder's badges arrive as a MembershipCommitted event.

	case events.MembershipCommitted:
		if event.BadgeRef != "" {
			w.grant(ctx, event.DiscordID, event.BadgeRef)
		}
		w.grantPosition(ctx, event.DiscordID, event.Role)

	case events.MembershipRevoked:
		if event.BadgeRef != "" {
			w.revoke(ctx, event.DiscordID, event.BadgeRef)
		}
		// The position badge stays while the same role is held on another
		// team.
		if !event.RoleHeldElsewhere {
			w.revokePosition(ctx, event.DiscordID, event.Role)
		}

	case events.CaptaincyTransferred:
		w.grantPosition(ctx, event.DiscordID, constants.RoleCaptain)
		w.revokePosition(ctx, event.DiscordID, event.PrevRole)
		for _, oldCaptain := range event.Affected {
			w.revokePosition(ctx, oldCaptain, constants.RoleCaptain)
			w.grantPosition(ctx, oldCaptain, event.DemotedTo)
		}

	case events.TeamDisbanded:
		// Member-level revocations were emitted alongside this event; only
		// the team badge itself remains.
		if event.BadgeRef != "" {
			if err := w.roles.DeleteTeamBadge(ctx, event.BadgeRef); err != nil {
				w.fail("delete team badge", event.BadgeRef, err)
			}
		}

	default:
		logging.Warn("badge sync skipped unknown event kind", "kind", string(event.Kind))
	}
}

func (w *BadgeSyncWorker) grantPosition(ctx context.Context, discordID string, role constants.TeamRole) {
	if ref := w.roleBadges[role]; ref != "" {
		w.grant(ctx, discordID, ref)
	}
}

func (w *BadgeSyncWorker) revokePosition(ctx context.Context, discordID string, role constants.TeamRole) {
	if ref := w.roleBadges[role]; ref != "" {
		w.revoke(ctx, discordID, ref)
	}
}

func (w *BadgeSyncWorker) grant(ctx context.Context, discordID, badgeRef string) {
	if err := w.roles.GrantRole(ctx, discordID, badgeRef); err != nil {
		w.fail("grant", badgeRef, err)
	}
}

func (w *BadgeSyncWorker) revoke(ctx context.Context, discordID, badgeRef string) {
	if err := w.roles.RevokeRole(ctx, discordID, badgeRef); err != nil {
		w.fail("revoke", badgeRef, err)
	}
}

func (w *BadgeSyncWorker) fail(op, badgeRef string, err error) {
	if w.metrics != nil {
		w.metrics.BadgeSyncFailures.Inc()
	}
	logging.Warn("badge operation failed", "op", op, "badge", badgeRef, "error", err.Error())
}
