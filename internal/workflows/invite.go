package workflows

import (
	"context"
	"fmt"

	"scrimworks/quartermaster/internal/constants"
	"scrimworks/quartermaster/internal/logging"
	gormModels "scrimworks/quartermaster/internal/models/gorm"
	"scrimworks/quartermaster/internal/platform"

	"golang.org/x/sync/errgroup"
)

// Invite delivers a private accept/decline prompt to each target, outside
// any shared thread. Targets resolve independently; a failure or decline
// for one never affects another. The "first player becomes captain" rule is
// decided at accept-time inside the guarded commit, so racing acceptances
// on the same team yield exactly one captain.
func (e *Engine) Invite(ctx context.Context, inviterID string, targetIDs []string) error {
	staff, err := e.staffMembership(ctx, inviterID)
	if err != nil {
		return err
	}
	if staff == nil {
		_ = e.notify.Notify(ctx, inviterID, constants.MsgNotTeamStaff)
		return nil
	}

	team, err := e.teams.GetByID(ctx, staff.TeamID)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, targetID := range targetIDs {
		targetID := targetID
		g.Go(func() error {
			e.inviteOne(gctx, team, inviterID, targetID)
			return nil
		})
	}
	return g.Wait()
}

// staffMembership finds the membership row in which the identity holds
// captain or manager, or nil when they hold neither anywhere.
func (e *Engine) staffMembership(ctx context.Context, discordID string) (*gormModels.TeamMember, error) {
	memberships, err := e.members.ListByDiscordID(ctx, discordID)
	if err != nil {
		return nil, err
	}
	for i := range memberships {
		if memberships[i].Role == constants.RoleCaptain || memberships[i].Role == constants.RoleManager {
			return &memberships[i], nil
		}
	}
	return nil, nil
}

// inviteOne runs one target's complete invite exchange. Per-target
// failures are reported to the inviter and swallowed.
func (e *Engine) inviteOne(ctx context.Context, team *gormModels.Team, inviterID, targetID string) {
	if targetID == inviterID {
		_ = e.notify.Notify(ctx, inviterID, "You cannot invite yourself.")
		return
	}

	if _, err := e.players.GetByDiscordID(ctx, targetID); err != nil {
		if notFound(err) {
			_ = e.notify.Notify(ctx, inviterID,
				fmt.Sprintf("<@%s> skipped: they are not registered as a player.", targetID))
			return
		}
		logging.Error("invite target lookup failed", "target", targetID, "error", err.Error())
		return
	}

	if _, err := e.members.Get(ctx, team.ID, targetID); err == nil {
		_ = e.notify.Notify(ctx, inviterID,
			fmt.Sprintf("<@%s> skipped: already on %s.", targetID, team.Name))
		return
	} else if !notFound(err) {
		logging.Error("invite membership lookup failed", "target", targetID, "error", err.Error())
		return
	}

	// A private one-to-one scope per target gives each invite its own
	// completion event.
	scopeID, err := e.scopes.OpenScope(ctx, targetID, "team-invite")
	if err != nil {
		logging.Error("failed to open invite scope", "target", targetID, "error", err.Error())
		return
	}
	defer func() {
		if err := e.scopes.CloseScope(context.Background(), scopeID); err != nil {
			logging.Warn("failed to close invite scope", "scope_id", scopeID, "error", err.Error())
		}
	}()

	ictx, cancel := context.WithTimeout(ctx, e.cfg.InviteWindow)
	defer cancel()

	resp, err := e.prompt.PresentConfirm(ictx, scopeID, only(targetID),
		fmt.Sprintf("<@%s> invited you to join %s [%s]. Accept?", inviterID, team.Name, team.Tag))
	if err != nil {
		if isTimeout(err) {
			_ = e.notify.Notify(ctx, inviterID,
				fmt.Sprintf("<@%s> did not answer the invite to %s.", targetID, team.Name))
			return
		}
		logging.Error("invite prompt failed", "target", targetID, "error", err.Error())
		return
	}

	if resp.Decision != platform.Accepted {
		// Decline notifies the inviter only.
		_ = e.notify.Notify(ctx, inviterID,
			fmt.Sprintf("<@%s> declined the invite to %s.", targetID, team.Name))
		return
	}

	assigned, err := e.roster.AddMemberClaimingCaptaincy(ctx, team.ID, targetID)
	if err != nil {
		e.post(ctx, scopeID, storeFailureMessage(err))
		_ = e.notify.Notify(ctx, inviterID,
			fmt.Sprintf("<@%s> accepted, but joining %s failed: %s", targetID, team.Name, storeFailureMessage(err)))
		return
	}

	if assigned == constants.RoleCaptain {
		e.post(ctx, scopeID, fmt.Sprintf("You joined %s as its captain!", team.Name))
	} else {
		e.post(ctx, scopeID, fmt.Sprintf("You joined %s as a player.", team.Name))
	}
	_ = e.notify.Notify(ctx, inviterID,
		fmt.Sprintf("<@%s> joined %s as %s.", targetID, team.Name, assigned))
}
