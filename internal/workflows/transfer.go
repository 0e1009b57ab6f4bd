package workflows

import (
	"context"
	"fmt"

	"scrimworks/quartermaster/internal/constants"
	gormModels "scrimworks/quartermaster/internal/models/gorm"
	"scrimworks/quartermaster/internal/platform"
)

const stateSuccessorSelect State = "successor_select"

type transferFlow struct {
	engine *Engine
	userID string
	scope  string

	team     *gormModels.Team
	eligible []gormModels.TeamMember
}

// TransferCaptaincy is the self-service transfer: the current captain picks
// a successor among the team's players and managers. The old captain stays
// on as a manager.
func (e *Engine) TransferCaptaincy(ctx context.Context, userID string) error {
	memberships, err := e.members.ListByDiscordID(ctx, userID)
	if err != nil {
		return err
	}

	var captainOf *gormModels.TeamMember
	for i := range memberships {
		if memberships[i].Role == constants.RoleCaptain {
			captainOf = &memberships[i]
			break
		}
	}
	if captainOf == nil {
		_ = e.notify.Notify(ctx, userID, "Only the current captain can transfer captaincy.")
		return nil
	}

	team, err := e.teams.GetByID(ctx, captainOf.TeamID)
	if err != nil {
		return err
	}

	members, err := e.members.ListByTeam(ctx, team.ID)
	if err != nil {
		return err
	}

	var eligible []gormModels.TeamMember
	for _, m := range members {
		if m.DiscordID == userID {
			continue
		}
		if m.Role == constants.RolePlayer || m.Role == constants.RoleManager {
			eligible = append(eligible, m)
		}
	}
	if len(eligible) == 0 {
		_ = e.notify.Notify(ctx, userID, "There is no player or manager on the team to hand captaincy to.")
		return nil
	}

	s, err := e.begin(ctx, userID, constants.WorkflowTransfer, "transfer-captainship")
	if err != nil {
		return err
	}

	fl := &transferFlow{engine: e, userID: userID, scope: s.ScopeID, team: team, eligible: eligible}

	return e.runAndFinish(ctx, s, stateSuccessorSelect, transitions{
		stateSuccessorSelect: fl.stepSuccessorSelect,
	})
}

func (fl *transferFlow) stepSuccessorSelect(ctx context.Context) (State, error) {
	choices := make([]platform.Choice, 0, len(fl.eligible))
	for _, m := range fl.eligible {
		choices = append(choices, platform.Choice{
			ID:    m.DiscordID,
			Label: fmt.Sprintf("%s (%s)", fl.engine.displayName(ctx, m.DiscordID), m.Role),
		})
	}

	resp, err := fl.engine.prompt.PresentChoice(ctx, fl.scope, only(fl.userID),
		"Who takes over as captain?", choices)
	if err != nil {
		return "", err
	}

	successorID := resp.OptionID
	valid := false
	for _, m := range fl.eligible {
		if m.DiscordID == successorID {
			valid = true
			break
		}
	}
	if !valid {
		return stateSuccessorSelect, nil
	}

	// Self-service transfers keep the old captain in leadership.
	if err := fl.engine.roster.TransferCaptaincy(ctx, fl.team.ID, successorID, constants.RoleManager); err != nil {
		return "", err
	}

	fl.engine.post(ctx, fl.scope,
		fmt.Sprintf("Captaincy of %s transferred to <@%s>. You stay on as manager.", fl.team.Name, successorID))
	_ = fl.engine.notify.Notify(ctx, successorID,
		fmt.Sprintf("You are now the captain of %s.", fl.team.Name))
	fl.engine.notifyTeamExcept(ctx, fl.team.ID, []string{fl.userID, successorID},
		fmt.Sprintf("<@%s> is the new captain of %s.", successorID, fl.team.Name))

	return StateDone, nil
}

// displayName resolves an identity's IGN for prompt labels, falling back
// to the raw id.
func (e *Engine) displayName(ctx context.Context, discordID string) string {
	player, err := e.players.GetByDiscordID(ctx, discordID)
	if err != nil {
		return discordID
	}
	return player.IGN
}

// notifyTeamExcept messages every member of a team except the listed
// identities. Best-effort.
func (e *Engine) notifyTeamExcept(ctx context.Context, teamID uint, except []string, message string) {
	members, err := e.members.ListByTeam(ctx, teamID)
	if err != nil {
		return
	}
	skip := make(map[string]bool, len(except))
	for _, id := range except {
		skip[id] = true
	}
	for _, m := range members {
		if !skip[m.DiscordID] {
			_ = e.notify.Notify(ctx, m.DiscordID, message)
		}
	}
}
