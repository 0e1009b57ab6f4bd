package workflows

import (
	"context"
	"testing"

	"scrimworks/quartermaster/internal/constants"
)

func TestTransferCaptaincy_SelfServiceDemotesToManager(t *testing.T) {
	engine, world := newTestEngine(t)
	seedPlayer(t, world.db, "cap-1", "Cap", constants.RegionEU)
	seedPlayer(t, world.db, "player-1", "Rook", constants.RegionEU)
	team := seedTeam(t, world, "Night Owls", "OWL", "cap-1", constants.RegionEU)
	if err := world.roster.AddMemberGuarded(context.Background(), team.ID, "player-1", constants.RolePlayer); err != nil {
		t.Fatalf("Seed player membership: %v", err)
	}

	world.prompt.answerChoice("player-1")

	if err := engine.TransferCaptaincy(context.Background(), "cap-1"); err != nil {
		t.Fatalf("TransferCaptaincy failed: %v", err)
	}

	if role, _ := memberRole(t, world.db, team.ID, "cap-1"); role != constants.RoleManager {
		t.Errorf("Old captain should stay on as manager, got %s", role)
	}
	if role, _ := memberRole(t, world.db, team.ID, "player-1"); role != constants.RoleCaptain {
		t.Errorf("Successor should be captain, got %s", role)
	}

	if msgs := world.notify.sent("player-1"); len(msgs) == 0 {
		t.Error("New captain should be notified")
	}
}

func TestTransferCaptaincy_OnlyCaptainMayStart(t *testing.T) {
	engine, world := newTestEngine(t)
	seedPlayer(t, world.db, "cap-1", "Cap", constants.RegionEU)
	team := seedTeam(t, world, "Night Owls", "OWL", "cap-1", constants.RegionEU)
	if err := world.roster.AddMemberGuarded(context.Background(), team.ID, "player-1", constants.RolePlayer); err != nil {
		t.Fatalf("Seed player membership: %v", err)
	}

	if err := engine.TransferCaptaincy(context.Background(), "player-1"); err != nil {
		t.Fatalf("TransferCaptaincy returned error: %v", err)
	}

	if role, _ := memberRole(t, world.db, team.ID, "player-1"); role != constants.RolePlayer {
		t.Error("Non-captain start must not change roles")
	}
	if msgs := world.notify.sent("player-1"); len(msgs) == 0 {
		t.Error("Initiator should get guidance")
	}
}

func TestTransferCaptaincy_NoEligibleSuccessor(t *testing.T) {
	engine, world := newTestEngine(t)
	seedPlayer(t, world.db, "cap-1", "Cap", constants.RegionEU)
	team := seedTeam(t, world, "Night Owls", "OWL", "cap-1", constants.RegionEU)
	// A coach is not an eligible successor.
	if err := world.roster.AddMemberGuarded(context.Background(), team.ID, "coach-1", constants.RoleCoach); err != nil {
		t.Fatalf("Seed coach membership: %v", err)
	}

	if err := engine.TransferCaptaincy(context.Background(), "cap-1"); err != nil {
		t.Fatalf("TransferCaptaincy returned error: %v", err)
	}

	if role, _ := memberRole(t, world.db, team.ID, "cap-1"); role != constants.RoleCaptain {
		t.Error("Captain must be unchanged when no successor exists")
	}
	if world.scopes.next != 0 {
		t.Error("No session should be opened without eligible successors")
	}
}
