package workflows

import (
	"context"
	"errors"
	"fmt"

	"scrimworks/quartermaster/internal/constants"
	"scrimworks/quartermaster/internal/platform"
	"scrimworks/quartermaster/internal/services"
)

const stateDisbandConfirm State = "disband_confirm"

// Kick removes a member from the actor's team. The actor must hold captain
// or manager there, and captains can never be kicked - captaincy has to be
// transferred away first.
func (e *Engine) Kick(ctx context.Context, actorID, targetID string) error {
	staff, err := e.staffMembership(ctx, actorID)
	if err != nil {
		return err
	}
	if staff == nil {
		_ = e.notify.Notify(ctx, actorID, constants.MsgNotTeamStaff)
		return nil
	}
	if targetID == actorID {
		_ = e.notify.Notify(ctx, actorID, "Use /leave to leave your own team.")
		return nil
	}

	team, err := e.teams.GetByID(ctx, staff.TeamID)
	if err != nil {
		return err
	}

	if _, err := e.members.Get(ctx, team.ID, targetID); err != nil {
		if notFound(err) {
			_ = e.notify.Notify(ctx, actorID, fmt.Sprintf("<@%s> is not on %s.", targetID, team.Name))
			return nil
		}
		return err
	}

	vacated, err := e.roster.RemoveMember(ctx, team.ID, targetID)
	if err != nil {
		if errors.Is(err, services.ErrCaptainImmovable) {
			_ = e.notify.Notify(ctx, actorID, constants.MsgCaptainCannotBeKicked)
			return nil
		}
		_ = e.notify.Notify(ctx, actorID, storeFailureMessage(err))
		return err
	}

	_ = e.notify.Notify(ctx, targetID, fmt.Sprintf("You have been removed from %s.", team.Name))
	_ = e.notify.Notify(ctx, actorID, fmt.Sprintf("<@%s> (%s) was removed from %s.", targetID, vacated, team.Name))
	return nil
}

// Leave is the self-service removal. Captains must transfer captaincy
// before leaving; nobody gets auto-promoted.
func (e *Engine) Leave(ctx context.Context, userID string) error {
	memberships, err := e.members.ListByDiscordID(ctx, userID)
	if err != nil {
		return err
	}
	if len(memberships) == 0 {
		_ = e.notify.Notify(ctx, userID, "You are not on a team.")
		return nil
	}

	membership := memberships[0]
	if membership.Role == constants.RoleCaptain {
		_ = e.notify.Notify(ctx, userID, constants.MsgCaptainCannotLeave)
		return nil
	}

	team, err := e.teams.GetByID(ctx, membership.TeamID)
	if err != nil {
		return err
	}

	if _, err := e.roster.RemoveMember(ctx, team.ID, userID); err != nil {
		_ = e.notify.Notify(ctx, userID, storeFailureMessage(err))
		return err
	}

	_ = e.notify.Notify(ctx, userID, fmt.Sprintf("You left %s.", team.Name))
	return nil
}

type disbandFlow struct {
	engine *Engine
	userID string
	scope  string
	teamID uint
}

// Disband deletes the actor's team after an explicit confirmation step in
// its own session scope. Irreversible.
func (e *Engine) Disband(ctx context.Context, actorID string) error {
	staff, err := e.staffMembership(ctx, actorID)
	if err != nil {
		return err
	}
	if staff == nil {
		_ = e.notify.Notify(ctx, actorID, constants.MsgNotTeamStaff)
		return nil
	}

	s, err := e.begin(ctx, actorID, constants.WorkflowDisband, "disband-team")
	if err != nil {
		return err
	}

	fl := &disbandFlow{engine: e, userID: actorID, scope: s.ScopeID, teamID: staff.TeamID}

	return e.runAndFinish(ctx, s, stateDisbandConfirm, transitions{
		stateDisbandConfirm: fl.stepConfirm,
	})
}

func (fl *disbandFlow) stepConfirm(ctx context.Context) (State, error) {
	resp, err := fl.engine.prompt.PresentConfirm(ctx, fl.scope, only(fl.userID), constants.MsgDisbandConfirm)
	if err != nil {
		return "", err
	}

	if resp.Decision != platform.Accepted {
		fl.engine.post(ctx, fl.scope, "Disband cancelled. The team is untouched.")
		return StateCancelled, nil
	}

	team, members, err := fl.engine.roster.DisbandTeam(ctx, fl.teamID)
	if err != nil {
		return "", err
	}

	for _, m := range members {
		if m.DiscordID == fl.userID {
			continue
		}
		_ = fl.engine.notify.Notify(ctx, m.DiscordID,
			fmt.Sprintf("%s has been disbanded. Your roster spot is released.", team.Name))
	}

	fl.engine.post(ctx, fl.scope, fmt.Sprintf("%s has been disbanded.", team.Name))
	return StateDone, nil
}
