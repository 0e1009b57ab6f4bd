package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"scrimworks/quartermaster/internal/constants"
	"scrimworks/quartermaster/internal/events"
	gormModels "scrimworks/quartermaster/internal/models/gorm"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Setup test database
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&gormModels.Player{},
		&gormModels.Team{},
		&gormModels.TeamMember{},
		&gormModels.Ban{},
	); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return db
}

// recordingPublisher captures emitted events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*events.RosterEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event *events.RosterEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) kinds() []events.EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	kinds := make([]events.EventKind, 0, len(p.events))
	for _, ev := range p.events {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

func mustCreateTeam(t *testing.T, svc *RosterService, name, tag, captainID string) *gormModels.Team {
	t.Helper()
	team := &gormModels.Team{Name: name, Tag: tag, Region: constants.RegionEU}
	if err := svc.CreateTeamWithFounder(context.Background(), team, captainID, constants.RoleCaptain); err != nil {
		t.Fatalf("CreateTeamWithFounder failed: %v", err)
	}
	return team
}

func TestCreateTeamWithFounder_SetsCaptain(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRosterService(db, nil)

	team := mustCreateTeam(t, svc, "Night Owls", "OWL", "cap-1")

	if team.CaptainDiscordID == nil || *team.CaptainDiscordID != "cap-1" {
		t.Fatalf("Expected captain reference cap-1, got %v", team.CaptainDiscordID)
	}

	var member gormModels.TeamMember
	if err := db.Where("team_id = ? AND discord_id = ?", team.ID, "cap-1").First(&member).Error; err != nil {
		t.Fatalf("Founder membership missing: %v", err)
	}
	if member.Role != constants.RoleCaptain {
		t.Errorf("Expected captain role, got %s", member.Role)
	}
}

func TestCreateTeamWithFounder_DuplicateNameCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRosterService(db, nil)

	mustCreateTeam(t, svc, "Night Owls", "OWL", "cap-1")

	team := &gormModels.Team{Name: "NIGHT owls", Tag: "NOC", Region: constants.RegionEU}
	err := svc.CreateTeamWithFounder(context.Background(), team, "cap-2", constants.RoleCaptain)
	if !errors.Is(err, ErrDuplicateTeamName) {
		t.Fatalf("Expected ErrDuplicateTeamName, got %v", err)
	}
}

func TestCreateTeamWithFounder_DuplicateTag(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRosterService(db, nil)

	mustCreateTeam(t, svc, "Night Owls", "OWL", "cap-1")

	team := &gormModels.Team{Name: "Other Team", Tag: "owl", Region: constants.RegionNA}
	err := svc.CreateTeamWithFounder(context.Background(), team, "cap-2", constants.RoleCaptain)
	if !errors.Is(err, ErrDuplicateTeamTag) {
		t.Fatalf("Expected ErrDuplicateTeamTag, got %v", err)
	}
}

func TestCreateTeamWithFounder_FounderAlreadyOnTeam(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRosterService(db, nil)

	mustCreateTeam(t, svc, "Night Owls", "OWL", "cap-1")

	team := &gormModels.Team{Name: "Second Squad", Tag: "SEC", Region: constants.RegionEU}
	err := svc.CreateTeamWithFounder(context.Background(), team, "cap-1", constants.RoleCaptain)
	if !errors.Is(err, ErrAlreadyOnTeam) {
		t.Fatalf("Expected ErrAlreadyOnTeam, got %v", err)
	}
}

func TestAddMemberGuarded_OneTeamRule(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRosterService(db, nil)

	teamA := mustCreateTeam(t, svc, "Team A", "TA", "cap-a")
	teamB := mustCreateTeam(t, svc, "Team B", "TB", "cap-b")

	if err := svc.AddMemberGuarded(context.Background(), teamA.ID, "player-1", constants.RolePlayer); err != nil {
		t.Fatalf("First membership failed: %v", err)
	}

	err := svc.AddMemberGuarded(context.Background(), teamB.ID, "player-1", constants.RolePlayer)
	if !errors.Is(err, ErrAlreadyOnTeam) {
		t.Fatalf("Expected ErrAlreadyOnTeam, got %v", err)
	}
}

func TestAddMemberGuarded_ManagerCapacity(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRosterService(db, nil)

	team := mustCreateTeam(t, svc, "Team A", "TA", "cap-a")

	if err := svc.AddMemberGuarded(context.Background(), team.ID, "mgr-1", constants.RoleManager); err != nil {
		t.Fatalf("First manager failed: %v", err)
	}
	if err := svc.AddMemberGuarded(context.Background(), team.ID, "mgr-2", constants.RoleManager); err != nil {
		t.Fatalf("Second manager failed: %v", err)
	}

	err := svc.AddMemberGuarded(context.Background(), team.ID, "mgr-3", constants.RoleManager)
	if !errors.Is(err, ErrRoleCapacityFull) {
		t.Fatalf("Expected ErrRoleCapacityFull for third manager, got %v", err)
	}
}

func TestAddMemberGuarded_CoachCapacity(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRosterService(db, nil)

	team := mustCreateTeam(t, svc, "Team A", "TA", "cap-a")

	if err := svc.AddMemberGuarded(context.Background(), team.ID, "coach-1", constants.RoleCoach); err != nil {
		t.Fatalf("First coach failed: %v", err)
	}

	err := svc.AddMemberGuarded(context.Background(), team.ID, "coach-2", constants.RoleCoach)
	if !errors.Is(err, ErrRoleCapacityFull) {
		t.Fatalf("Expected ErrRoleCapacityFull for second coach, got %v", err)
	}
}

func TestAddMemberGuarded_DuplicateMembership(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRosterService(db, nil)

	team := mustCreateTeam(t, svc, "Team A", "TA", "cap-a")

	if err := svc.AddMemberGuarded(context.Background(), team.ID, "player-1", constants.RolePlayer); err != nil {
		t.Fatalf("First add failed: %v", err)
	}

	err := svc.AddMemberGuarded(context.Background(), team.ID, "player-1", constants.RolePlayer)
	if err == nil {
		t.Fatal("Expected duplicate membership to fail")
	}
}

func TestAddMemberClaimingCaptaincy_FirstPlayerBecomesCaptain(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRosterService(db, nil)

	// A managers-only team has no committed captain.
	team := &gormModels.Team{Name: "Team A", Tag: "TA", Region: constants.RegionEU}
	if err := svc.CreateTeamWithFounder(context.Background(), team, "mgr-1", constants.RoleManager); err != nil {
		t.Fatalf("CreateTeamWithFounder failed: %v", err)
	}

	assigned, err := svc.AddMemberClaimingCaptaincy(context.Background(), team.ID, "player-1")
	if err != nil {
		t.Fatalf("AddMemberClaimingCaptaincy failed: %v", err)
	}
	if assigned != constants.RoleCaptain {
		t.Fatalf("Expected first player to claim captaincy, got %s", assigned)
	}

	var updated gormModels.Team
	if err := db.First(&updated, team.ID).Error; err != nil {
		t.Fatalf("Reload team: %v", err)
	}
	if updated.CaptainDiscordID == nil || *updated.CaptainDiscordID != "player-1" {
		t.Errorf("Team captain reference not updated: %v", updated.CaptainDiscordID)
	}

	// The next acceptance joins as a plain player.
	assigned, err = svc.AddMemberClaimingCaptaincy(context.Background(), team.ID, "player-2")
	if err != nil {
		t.Fatalf("Second acceptance failed: %v", err)
	}
	if assigned != constants.RolePlayer {
		t.Errorf("Expected player role for second acceptance, got %s", assigned)
	}
}

func TestAddMemberClaimingCaptaincy_RacingAcceptancesYieldOneCaptain(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRosterService(db, nil)

	team := &gormModels.Team{Name: "Team A", Tag: "TA", Region: constants.RegionEU}
	if err := svc.CreateTeamWithFounder(context.Background(), team, "mgr-1", constants.RoleManager); err != nil {
		t.Fatalf("CreateTeamWithFounder failed: %v", err)
	}

	const racers = 8
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _ = svc.AddMemberClaimingCaptaincy(context.Background(), team.ID, fmt.Sprintf("racer-%d", n))
		}(i)
	}
	wg.Wait()

	var captains int64
	if err := db.Model(&gormModels.TeamMember{}).
		Where("team_id = ? AND role = ?", team.ID, constants.RoleCaptain).
		Count(&captains).Error; err != nil {
		t.Fatalf("Count captains: %v", err)
	}
	if captains != 1 {
		t.Fatalf("Expected exactly one captain after racing acceptances, got %d", captains)
	}
}

func TestAddMember_CrossTeamRaceKeepsOneMembership(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRosterService(db, nil)

	teamA := mustCreateTeam(t, svc, "Team A", "TA", "cap-a")

	// Team B has no committed captain, so the acceptance path races the
	// plain guarded add under different team guards.
	teamB := &gormModels.Team{Name: "Team B", Tag: "TB", Region: constants.RegionEU}
	if err := svc.CreateTeamWithFounder(context.Background(), teamB, "mgr-b", constants.RoleManager); err != nil {
		t.Fatalf("CreateTeamWithFounder failed: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = svc.AddMemberGuarded(context.Background(), teamA.ID, "player-x", constants.RolePlayer)
	}()
	go func() {
		defer wg.Done()
		_, _ = svc.AddMemberClaimingCaptaincy(context.Background(), teamB.ID, "player-x")
	}()
	wg.Wait()

	var rows int64
	if err := db.Model(&gormModels.TeamMember{}).
		Where("discord_id = ?", "player-x").
		Count(&rows).Error; err != nil {
		t.Fatalf("Count memberships: %v", err)
	}
	if rows != 1 {
		t.Fatalf("Expected one membership total across teams, got %d", rows)
	}
}

func TestTransferCaptaincy_DemotesOldCaptain(t *testing.T) {
	db := setupTestDB(t)
	pub := &recordingPublisher{}
	svc := NewRosterService(db, pub)

	team := mustCreateTeam(t, svc, "Team A", "TA", "cap-a")
	if err := svc.AddMemberGuarded(context.Background(), team.ID, "player-1", constants.RolePlayer); err != nil {
		t.Fatalf("Add player: %v", err)
	}

	if err := svc.TransferCaptaincy(context.Background(), team.ID, "player-1", constants.RoleManager); err != nil {
		t.Fatalf("TransferCaptaincy failed: %v", err)
	}

	var old gormModels.TeamMember
	if err := db.Where("team_id = ? AND discord_id = ?", team.ID, "cap-a").First(&old).Error; err != nil {
		t.Fatalf("Load old captain: %v", err)
	}
	if old.Role != constants.RoleManager {
		t.Errorf("Expected old captain demoted to manager, got %s", old.Role)
	}

	var promoted gormModels.TeamMember
	if err := db.Where("team_id = ? AND discord_id = ?", team.ID, "player-1").First(&promoted).Error; err != nil {
		t.Fatalf("Load new captain: %v", err)
	}
	if promoted.Role != constants.RoleCaptain {
		t.Errorf("Expected new captain role, got %s", promoted.Role)
	}

	var updated gormModels.Team
	if err := db.First(&updated, team.ID).Error; err != nil {
		t.Fatalf("Reload team: %v", err)
	}
	if updated.CaptainDiscordID == nil || *updated.CaptainDiscordID != "player-1" {
		t.Errorf("Team captain reference not updated: %v", updated.CaptainDiscordID)
	}

	var captains int64
	if err := db.Model(&gormModels.TeamMember{}).
		Where("team_id = ? AND role = ?", team.ID, constants.RoleCaptain).
		Count(&captains).Error; err != nil {
		t.Fatalf("Count captains: %v", err)
	}
	if captains != 1 {
		t.Fatalf("Expected exactly one captain after transfer, got %d", captains)
	}

	found := false
	for _, kind := range pub.kinds() {
		if kind == events.CaptaincyTransferred {
			found = true
		}
	}
	if !found {
		t.Error("Expected CaptaincyTransferred event")
	}
}

func TestTransferCaptaincy_RejectsInvalidDemotion(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRosterService(db, nil)

	team := mustCreateTeam(t, svc, "Team A", "TA", "cap-a")

	err := svc.TransferCaptaincy(context.Background(), team.ID, "player-1", constants.RoleCoach)
	if !errors.Is(err, ErrInvalidDemotion) {
		t.Fatalf("Expected ErrInvalidDemotion, got %v", err)
	}
}

func TestTransferCaptaincy_TargetNotAMember(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRosterService(db, nil)

	team := mustCreateTeam(t, svc, "Team A", "TA", "cap-a")

	err := svc.TransferCaptaincy(context.Background(), team.ID, "stranger", constants.RolePlayer)
	if !errors.Is(err, ErrNotAMember) {
		t.Fatalf("Expected ErrNotAMember, got %v", err)
	}
}

func TestRemoveMember_CaptainImmovable(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRosterService(db, nil)

	team := mustCreateTeam(t, svc, "Team A", "TA", "cap-a")

	_, err := svc.RemoveMember(context.Background(), team.ID, "cap-a")
	if !errors.Is(err, ErrCaptainImmovable) {
		t.Fatalf("Expected ErrCaptainImmovable, got %v", err)
	}
}

func TestRemoveMember_ReturnsVacatedRole(t *testing.T) {
	db := setupTestDB(t)
	pub := &recordingPublisher{}
	svc := NewRosterService(db, pub)

	team := mustCreateTeam(t, svc, "Team A", "TA", "cap-a")
	if err := svc.AddMemberGuarded(context.Background(), team.ID, "coach-1", constants.RoleCoach); err != nil {
		t.Fatalf("Add coach: %v", err)
	}

	vacated, err := svc.RemoveMember(context.Background(), team.ID, "coach-1")
	if err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	if vacated != constants.RoleCoach {
		t.Errorf("Expected vacated coach role, got %s", vacated)
	}

	var count int64
	if err := db.Model(&gormModels.TeamMember{}).
		Where("team_id = ? AND discord_id = ?", team.ID, "coach-1").
		Count(&count).Error; err != nil {
		t.Fatalf("Count memberships: %v", err)
	}
	if count != 0 {
		t.Error("Membership row still present after removal")
	}
}

func TestDisbandTeam_RemovesEverything(t *testing.T) {
	db := setupTestDB(t)
	pub := &recordingPublisher{}
	svc := NewRosterService(db, pub)

	team := mustCreateTeam(t, svc, "Team A", "TA", "cap-a")
	if err := svc.AddMemberGuarded(context.Background(), team.ID, "player-1", constants.RolePlayer); err != nil {
		t.Fatalf("Add player: %v", err)
	}

	gone, members, err := svc.DisbandTeam(context.Background(), team.ID)
	if err != nil {
		t.Fatalf("DisbandTeam failed: %v", err)
	}
	if gone.Name != "Team A" {
		t.Errorf("Unexpected team returned: %s", gone.Name)
	}
	if len(members) != 2 {
		t.Fatalf("Expected 2 removed members, got %d", len(members))
	}

	var teams int64
	if err := db.Model(&gormModels.Team{}).Count(&teams).Error; err != nil {
		t.Fatalf("Count teams: %v", err)
	}
	if teams != 0 {
		t.Error("Team row still present after disband")
	}

	var rows int64
	if err := db.Model(&gormModels.TeamMember{}).Count(&rows).Error; err != nil {
		t.Fatalf("Count members: %v", err)
	}
	if rows != 0 {
		t.Error("Membership rows still present after disband")
	}

	// One revocation per member plus the team teardown.
	sawDisband := false
	revocations := 0
	for _, kind := range pub.kinds() {
		switch kind {
		case events.TeamDisbanded:
			sawDisband = true
		case events.MembershipRevoked:
			revocations++
		}
	}
	if !sawDisband {
		t.Error("Expected TeamDisbanded event")
	}
	if revocations != 2 {
		t.Errorf("Expected 2 MembershipRevoked events, got %d", revocations)
	}
}

func TestRemoveMember_FreedSlotIsReusable(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRosterService(db, nil)

	team := mustCreateTeam(t, svc, "Team A", "TA", "cap-a")
	if err := svc.AddMemberGuarded(context.Background(), team.ID, "coach-1", constants.RoleCoach); err != nil {
		t.Fatalf("Add coach: %v", err)
	}
	if _, err := svc.RemoveMember(context.Background(), team.ID, "coach-1"); err != nil {
		t.Fatalf("Remove coach: %v", err)
	}

	if err := svc.AddMemberGuarded(context.Background(), team.ID, "coach-2", constants.RoleCoach); err != nil {
		t.Fatalf("Freed coach slot not reusable: %v", err)
	}
}
