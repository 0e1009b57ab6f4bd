package workflows

import (
	"context"
	"fmt"
	"strconv"

	"scrimworks/quartermaster/internal/constants"
	gormModels "scrimworks/quartermaster/internal/models/gorm"
	"scrimworks/quartermaster/internal/platform"
)

// Join-approval states.
const (
	stateCandidateSelect State = "candidate_select"
	stateApproval        State = "approval"
)

type joinApprovalFlow struct {
	engine *Engine
	userID string
	scope  string
	role   constants.TeamRole

	team    *gormModels.Team
	outcome string
}

// RequestStaffRole runs the manager/coach approval handshake: the initiator
// picks a candidate team, its captain and managers are admitted into the
// scope, and exactly one Accept/Decline from any of them settles the
// request. A decline is final; there is no retry loop.
func (e *Engine) RequestStaffRole(ctx context.Context, userID string, role constants.TeamRole) error {
	if role != constants.RoleManager && role != constants.RoleCoach {
		return fmt.Errorf("role %q has no approval handshake", role)
	}

	if blocked, err := e.gateBanned(ctx, userID); err != nil || blocked {
		return err
	}

	// One-team rule, checked up front as guidance. Re-validated at commit.
	memberships, err := e.members.ListByDiscordID(ctx, userID)
	if err != nil {
		return err
	}
	if len(memberships) > 0 {
		_ = e.notify.Notify(ctx, userID, constants.MsgAlreadyOnTeam)
		return nil
	}

	kind := constants.WorkflowManagerRegister
	if role == constants.RoleCoach {
		kind = constants.WorkflowCoachRegister
	}

	s, err := e.begin(ctx, userID, kind, string(role)+"-registration")
	if err != nil {
		return err
	}

	fl := &joinApprovalFlow{engine: e, userID: userID, scope: s.ScopeID, role: role, outcome: OutcomeSuccess}

	table := transitions{
		stateCandidateSelect: fl.stepCandidateSelect,
		stateApproval:        fl.stepApproval,
	}

	terminal, err := e.run(s, stateCandidateSelect, table)
	if err != nil {
		if isTimeout(err) {
			e.finish(s, OutcomeTimeout)
			return nil
		}
		e.post(ctx, s.ScopeID, storeFailureMessage(err))
		e.finish(s, OutcomeError)
		return err
	}
	if terminal == StateCancelled && fl.outcome == OutcomeSuccess {
		fl.outcome = OutcomeCancelled
	}
	e.finish(s, fl.outcome)
	return nil
}

// stepCandidateSelect enumerates teams the initiator could join in the
// requested role: not already a member, and the role's capacity not yet
// reached. An empty list is explained, never shown silently.
func (fl *joinApprovalFlow) stepCandidateSelect(ctx context.Context) (State, error) {
	teams, err := fl.engine.teams.ListWithMembers(ctx)
	if err != nil {
		return "", err
	}

	limit := fl.role.Capacity()
	var candidates []gormModels.Team
	for _, team := range teams {
		holders := 0
		alreadyMember := false
		for _, m := range team.Members {
			if m.DiscordID == fl.userID {
				alreadyMember = true
			}
			if m.Role == fl.role {
				holders++
			}
		}
		if !alreadyMember && holders < limit {
			candidates = append(candidates, team)
		}
	}

	if len(candidates) == 0 {
		fl.engine.post(ctx, fl.scope, constants.MsgNoCandidateTeams)
		fl.outcome = OutcomeRejected
		return StateCancelled, nil
	}

	choices := make([]platform.Choice, 0, len(candidates))
	for _, team := range candidates {
		choices = append(choices, platform.Choice{
			ID:    strconv.FormatUint(uint64(team.ID), 10),
			Label: fmt.Sprintf("%s [%s] - %s", team.Name, team.Tag, team.Region),
		})
	}

	resp, err := fl.engine.prompt.PresentChoice(ctx, fl.scope, only(fl.userID),
		fmt.Sprintf("Which team do you want to join as %s?", fl.role), choices)
	if err != nil {
		return "", err
	}

	teamID, err := strconv.ParseUint(resp.OptionID, 10, 64)
	if err != nil {
		return stateCandidateSelect, nil
	}
	for i := range candidates {
		if candidates[i].ID == uint(teamID) {
			fl.team = &candidates[i]
			return stateApproval, nil
		}
	}
	return stateCandidateSelect, nil
}

// stepApproval admits the team's staff into the scope and waits for exactly
// one Accept/Decline within the approval window. An answer from anyone
// outside the approver set is refused and the prompt repeats.
func (fl *joinApprovalFlow) stepApproval(ctx context.Context) (State, error) {
	members, err := fl.engine.members.ListByTeam(ctx, fl.team.ID)
	if err != nil {
		return "", err
	}

	var approvers []string
	isApprover := make(map[string]bool)
	for _, m := range members {
		if m.Role == constants.RoleCaptain || m.Role == constants.RoleManager {
			approvers = append(approvers, m.DiscordID)
			isApprover[m.DiscordID] = true
		}
	}

	if err := fl.engine.scopes.AdmitUsers(ctx, fl.scope, approvers); err != nil {
		return "", fmt.Errorf("failed to admit approvers: %w", err)
	}

	actx, cancel := context.WithTimeout(ctx, fl.engine.cfg.ApprovalWindow)
	defer cancel()

	resp, err := fl.engine.prompt.PresentConfirm(actx, fl.scope, approvers,
		fmt.Sprintf("<@%s> wants to join %s as %s. Accept?", fl.userID, fl.team.Name, fl.role))
	if err != nil {
		if isTimeout(err) && ctx.Err() == nil {
			fl.engine.post(ctx, fl.scope, constants.MsgApprovalTimeout)
			fl.outcome = OutcomeTimeout
			return StateCancelled, nil
		}
		return "", err
	}

	if !isApprover[resp.ResponderID] {
		fl.engine.post(ctx, fl.scope, constants.MsgNotAnApprover)
		return stateApproval, nil
	}

	if resp.Decision != platform.Accepted {
		fl.engine.post(ctx, fl.scope, constants.MsgApprovalDeclined)
		fl.outcome = OutcomeDeclined
		return StateCancelled, nil
	}

	// The approval window is long enough for the position to fill in the
	// meantime. A filled cap settles as a rejection, not a commit failure.
	if limit := fl.role.Capacity(); limit > 0 {
		holders, err := fl.engine.members.CountByRole(ctx, fl.team.ID, fl.role)
		if err != nil {
			return "", err
		}
		if holders >= int64(limit) {
			fl.engine.post(ctx, fl.scope, constants.MsgPositionFilled)
			fl.outcome = OutcomeRejected
			return StateCancelled, nil
		}
	}

	if err := fl.engine.roster.AddMemberGuarded(ctx, fl.team.ID, fl.userID, fl.role); err != nil {
		return "", err
	}

	fl.engine.post(ctx, fl.scope,
		fmt.Sprintf("Approved by <@%s>. Welcome to %s, %s!", resp.ResponderID, fl.team.Name, fl.role))
	return StateDone, nil
}
