package workflows

import (
	"context"
	"testing"

	"scrimworks/quartermaster/internal/constants"
	"scrimworks/quartermaster/internal/platform"
)

func TestRequestStaffRole_ManagerApproved(t *testing.T) {
	engine, world := newTestEngine(t)
	seedPlayer(t, world.db, "cap-1", "Cap", constants.RegionEU)
	team := seedTeam(t, world, "Night Owls", "OWL", "cap-1", constants.RegionEU)

	world.prompt.answerChoice("1") // the only candidate team
	world.prompt.answerConfirm(platform.Accepted, "cap-1")

	if err := engine.RequestStaffRole(context.Background(), "mgr-1", constants.RoleManager); err != nil {
		t.Fatalf("RequestStaffRole failed: %v", err)
	}

	if role, ok := memberRole(t, world.db, team.ID, "mgr-1"); !ok || role != constants.RoleManager {
		t.Errorf("Manager membership not committed: %v %v", role, ok)
	}

	// The approver set was admitted into the scope.
	admitted := world.scopes.admitted["scope-1"]
	found := false
	for _, id := range admitted {
		if id == "cap-1" {
			found = true
		}
	}
	if !found {
		t.Errorf("Captain was not admitted as approver: %v", admitted)
	}
}

func TestRequestStaffRole_DeclineIsFinal(t *testing.T) {
	engine, world := newTestEngine(t)
	seedPlayer(t, world.db, "cap-1", "Cap", constants.RegionEU)
	team := seedTeam(t, world, "Night Owls", "OWL", "cap-1", constants.RegionEU)

	world.prompt.answerChoice("1")
	world.prompt.answerConfirm(platform.Declined, "cap-1")

	if err := engine.RequestStaffRole(context.Background(), "mgr-1", constants.RoleManager); err != nil {
		t.Fatalf("RequestStaffRole returned error: %v", err)
	}

	if _, ok := memberRole(t, world.db, team.ID, "mgr-1"); ok {
		t.Error("Declined request must not commit a membership")
	}

	found := false
	for _, msg := range world.prompt.posted() {
		if msg == constants.MsgApprovalDeclined {
			found = true
		}
	}
	if !found {
		t.Error("Expected the decline message")
	}
}

func TestRequestStaffRole_ApprovalTimeout(t *testing.T) {
	engine, world := newTestEngine(t)
	seedPlayer(t, world.db, "cap-1", "Cap", constants.RegionEU)
	team := seedTeam(t, world, "Night Owls", "OWL", "cap-1", constants.RegionEU)

	world.prompt.answerChoice("1")
	world.prompt.failConfirm(platform.ErrPromptTimeout)

	if err := engine.RequestStaffRole(context.Background(), "mgr-1", constants.RoleManager); err != nil {
		t.Fatalf("RequestStaffRole returned error: %v", err)
	}

	if _, ok := memberRole(t, world.db, team.ID, "mgr-1"); ok {
		t.Error("Timed-out request must not commit a membership")
	}

	found := false
	for _, msg := range world.prompt.posted() {
		if msg == constants.MsgApprovalTimeout {
			found = true
		}
	}
	if !found {
		t.Error("Expected the approval-timeout message")
	}
}

func TestRequestStaffRole_OutsiderAnswerIsRefused(t *testing.T) {
	engine, world := newTestEngine(t)
	seedPlayer(t, world.db, "cap-1", "Cap", constants.RegionEU)
	team := seedTeam(t, world, "Night Owls", "OWL", "cap-1", constants.RegionEU)

	world.prompt.answerChoice("1")
	// A non-staff answer is refused and the prompt repeats for the staff.
	world.prompt.answerConfirm(platform.Accepted, "stranger-1")
	world.prompt.answerConfirm(platform.Accepted, "cap-1")

	if err := engine.RequestStaffRole(context.Background(), "mgr-1", constants.RoleManager); err != nil {
		t.Fatalf("RequestStaffRole failed: %v", err)
	}

	found := false
	for _, msg := range world.prompt.posted() {
		if msg == constants.MsgNotAnApprover {
			found = true
		}
	}
	if !found {
		t.Error("Expected the not-an-approver refusal")
	}

	if role, ok := memberRole(t, world.db, team.ID, "mgr-1"); !ok || role != constants.RoleManager {
		t.Errorf("Staff answer after the refusal must still commit: %v %v", role, ok)
	}
}

func TestRequestStaffRole_PositionFilledDuringApproval(t *testing.T) {
	engine, world := newTestEngine(t)
	seedPlayer(t, world.db, "cap-1", "Cap", constants.RegionEU)
	team := seedTeam(t, world, "Night Owls", "OWL", "cap-1", constants.RegionEU)

	world.prompt.answerChoice("1")
	// The coach slot fills while the request waits for an answer.
	world.prompt.confirms = append(world.prompt.confirms, func(string) (*platform.ConfirmResponse, error) {
		if err := world.roster.AddMemberGuarded(context.Background(), team.ID, "coach-0", constants.RoleCoach); err != nil {
			t.Errorf("Fill coach slot: %v", err)
		}
		return &platform.ConfirmResponse{ResponderID: "cap-1", Decision: platform.Accepted}, nil
	})

	if err := engine.RequestStaffRole(context.Background(), "coach-1", constants.RoleCoach); err != nil {
		t.Fatalf("RequestStaffRole returned error: %v", err)
	}

	if _, ok := memberRole(t, world.db, team.ID, "coach-1"); ok {
		t.Error("A filled position must not commit a second holder")
	}

	found := false
	for _, msg := range world.prompt.posted() {
		if msg == constants.MsgPositionFilled {
			found = true
		}
	}
	if !found {
		t.Error("Expected the position-filled message")
	}
}

func TestRequestStaffRole_NoCandidateTeams(t *testing.T) {
	engine, world := newTestEngine(t)
	seedPlayer(t, world.db, "cap-1", "Cap", constants.RegionEU)
	team := seedTeam(t, world, "Night Owls", "OWL", "cap-1", constants.RegionEU)

	// Fill the coach slot so no team can take another coach.
	if err := world.roster.AddMemberGuarded(context.Background(), team.ID, "coach-0", constants.RoleCoach); err != nil {
		t.Fatalf("Seed coach: %v", err)
	}

	if err := engine.RequestStaffRole(context.Background(), "coach-1", constants.RoleCoach); err != nil {
		t.Fatalf("RequestStaffRole returned error: %v", err)
	}

	found := false
	for _, msg := range world.prompt.posted() {
		if msg == constants.MsgNoCandidateTeams {
			found = true
		}
	}
	if !found {
		t.Error("Expected the no-candidate-teams explanation")
	}
}

func TestRequestStaffRole_AlreadyOnTeamGuidance(t *testing.T) {
	engine, world := newTestEngine(t)
	seedPlayer(t, world.db, "cap-1", "Cap", constants.RegionEU)
	seedTeam(t, world, "Night Owls", "OWL", "cap-1", constants.RegionEU)

	if err := engine.RequestStaffRole(context.Background(), "cap-1", constants.RoleManager); err != nil {
		t.Fatalf("RequestStaffRole returned error: %v", err)
	}

	msgs := world.notify.sent("cap-1")
	if len(msgs) != 1 || msgs[0] != constants.MsgAlreadyOnTeam {
		t.Errorf("Expected one-team guidance, got %v", msgs)
	}
	if world.scopes.next != 0 {
		t.Error("No session should be opened")
	}
}

func TestRequestStaffRole_RejectsNonApprovalRole(t *testing.T) {
	engine, _ := newTestEngine(t)

	if err := engine.RequestStaffRole(context.Background(), "user-1", constants.RolePlayer); err == nil {
		t.Fatal("Player role must not go through the approval handshake")
	}
}
