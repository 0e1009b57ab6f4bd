package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"scrimworks/quartermaster/internal/constants"
	"scrimworks/quartermaster/internal/events"
	"scrimworks/quartermaster/internal/logging"
	gormModels "scrimworks/quartermaster/internal/models/gorm"

	"gorm.io/gorm"
)

// Sentinel errors surfaced to the workflow layer, which maps them onto
// guidance messages. Anything else coming out of this service is a store
// failure.
var (
	ErrAlreadyOnTeam     = errors.New("player already belongs to a team")
	ErrAlreadyMember     = errors.New("player is already a member of this team")
	ErrRoleCapacityFull  = errors.New("role capacity reached for this team")
	ErrDuplicateTeamName = errors.New("team name already exists")
	ErrDuplicateTeamTag  = errors.New("team tag already exists")
	ErrCaptainImmovable  = errors.New("captain must transfer captaincy first")
	ErrNotAMember        = errors.New("player is not a member of this team")
	ErrInvalidDemotion   = errors.New("old captain can only be demoted to manager or player")
)

// RosterService owns every multi-row roster mutation. Each operation runs
// as one transaction under serializing guards, per team and, for membership
// inserts, per player, re-validating the one-team rule and role capacities
// at commit time. Eligibility checks done earlier at prompt time are
// advisory only.
type RosterService struct {
	db        *gorm.DB
	publisher events.Publisher

	teamLocks   sync.Map // team id -> *sync.Mutex
	playerLocks sync.Map // discord id -> *sync.Mutex
}

// NewRosterService creates a roster service publishing post-commit events
// to the given publisher.
func NewRosterService(db *gorm.DB, publisher events.Publisher) *RosterService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &RosterService{db: db, publisher: publisher}
}

// lockTeam serializes commits touching one team's membership and captaincy.
func (s *RosterService) lockTeam(teamID uint) func() {
	v, _ := s.teamLocks.LoadOrStore(teamID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// lockPlayer serializes commits admitting one identity. The team guard does
// not cover two teams racing to admit the same player, so every membership
// insert also holds the player guard, always acquired after the team guard.
func (s *RosterService) lockPlayer(discordID string) func() {
	v, _ := s.playerLocks.LoadOrStore(discordID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// emit publishes post-commit events. Delivery is best-effort: a publish
// failure is logged and never unwinds the committed mutation.
func (s *RosterService) emit(ctx context.Context, evts ...*events.RosterEvent) {
	for _, ev := range evts {
		ev.OccurredAt = time.Now()
		if err := s.publisher.Publish(ctx, ev); err != nil {
			logging.Warn("roster event publish failed",
				"kind", string(ev.Kind),
				"team_id", ev.TeamID,
				"error", err.Error(),
			)
		}
	}
}

// membershipCount counts committed memberships held by an identity across
// all teams inside the given transaction.
func membershipCount(tx *gorm.DB, discordID string) (int64, error) {
	var count int64
	err := tx.Model(&gormModels.TeamMember{}).
		Where("discord_id = ?", discordID).
		Count(&count).Error
	return count, err
}

// CreateTeamWithFounder atomically creates the team plus the founder's
// membership row. The badge reference, if any, was provisioned by the
// caller before this commit; a badge orphaned by a failed commit is not
// compensated.
func (s *RosterService) CreateTeamWithFounder(
	ctx context.Context,
	team *gormModels.Team,
	founderDiscordID string,
	founderRole constants.TeamRole,
) error {
	// The team row does not exist yet, so only the founder needs guarding.
	unlock := s.lockPlayer(founderDiscordID)
	defer unlock()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&gormModels.Team{}).
			Where("LOWER(name) = LOWER(?)", team.Name).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check team name: %w", err)
		}
		if count > 0 {
			return ErrDuplicateTeamName
		}

		if err := tx.Model(&gormModels.Team{}).
			Where("LOWER(tag) = LOWER(?)", team.Tag).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check team tag: %w", err)
		}
		if count > 0 {
			return ErrDuplicateTeamTag
		}

		memberships, err := membershipCount(tx, founderDiscordID)
		if err != nil {
			return fmt.Errorf("failed to check founder memberships: %w", err)
		}
		if memberships > 0 {
			return ErrAlreadyOnTeam
		}

		if founderRole == constants.RoleCaptain {
			team.CaptainDiscordID = &founderDiscordID
		}

		if err := tx.Create(team).Error; err != nil {
			return fmt.Errorf("failed to create team: %w", err)
		}

		member := gormModels.TeamMember{
			TeamID:    team.ID,
			DiscordID: founderDiscordID,
			Role:      founderRole,
		}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("failed to create founder membership: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	badgeRef := ""
	if team.BadgeRef != nil {
		badgeRef = *team.BadgeRef
	}
	s.emit(ctx,
		&events.RosterEvent{Kind: events.TeamCreated, TeamID: team.ID, TeamName: team.Name, BadgeRef: badgeRef},
		&events.RosterEvent{Kind: events.MembershipCommitted, TeamID: team.ID, BadgeRef: badgeRef, DiscordID: founderDiscordID, Role: founderRole},
	)
	return nil
}

// AddMemberGuarded commits a membership with the one-team rule and the
// role capacity cap re-validated under the team guard.
func (s *RosterService) AddMemberGuarded(
	ctx context.Context,
	teamID uint,
	discordID string,
	role constants.TeamRole,
) error {
	unlockTeam := s.lockTeam(teamID)
	defer unlockTeam()
	unlockPlayer := s.lockPlayer(discordID)
	defer unlockPlayer()

	var team gormModels.Team
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&team, teamID).Error; err != nil {
			return fmt.Errorf("failed to load team: %w", err)
		}

		memberships, err := membershipCount(tx, discordID)
		if err != nil {
			return fmt.Errorf("failed to check memberships: %w", err)
		}
		if memberships > 0 {
			return ErrAlreadyOnTeam
		}

		if limit := role.Capacity(); limit > 0 {
			var holders int64
			if err := tx.Model(&gormModels.TeamMember{}).
				Where("team_id = ? AND role = ?", teamID, role).
				Count(&holders).Error; err != nil {
				return fmt.Errorf("failed to count role holders: %w", err)
			}
			if holders >= int64(limit) {
				return ErrRoleCapacityFull
			}
		}

		member := gormModels.TeamMember{
			TeamID:    teamID,
			DiscordID: discordID,
			Role:      role,
		}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("failed to create membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.emit(ctx, &events.RosterEvent{
		Kind:      events.MembershipCommitted,
		TeamID:    teamID,
		TeamName:  team.Name,
		BadgeRef:  derefBadge(&team),
		DiscordID: discordID,
		Role:      role,
	})
	return nil
}

// AddMemberClaimingCaptaincy commits an invite acceptance. The first player
// joining a team with no committed captain claims captaincy; everyone else
// joins as a plain player. Evaluated against committed membership inside
// the transaction, so two racing acceptances resolve to exactly one captain.
func (s *RosterService) AddMemberClaimingCaptaincy(
	ctx context.Context,
	teamID uint,
	discordID string,
) (constants.TeamRole, error) {
	unlockTeam := s.lockTeam(teamID)
	defer unlockTeam()
	unlockPlayer := s.lockPlayer(discordID)
	defer unlockPlayer()

	assigned := constants.RolePlayer
	var team gormModels.Team

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&team, teamID).Error; err != nil {
			return fmt.Errorf("failed to load team: %w", err)
		}

		memberships, err := membershipCount(tx, discordID)
		if err != nil {
			return fmt.Errorf("failed to check memberships: %w", err)
		}
		if memberships > 0 {
			return ErrAlreadyOnTeam
		}

		var playing int64
		if err := tx.Model(&gormModels.TeamMember{}).
			Where("team_id = ? AND role IN ?", teamID, []constants.TeamRole{constants.RolePlayer, constants.RoleCaptain}).
			Count(&playing).Error; err != nil {
			return fmt.Errorf("failed to count playing members: %w", err)
		}

		if team.CaptainDiscordID == nil && playing == 0 {
			assigned = constants.RoleCaptain
			team.CaptainDiscordID = &discordID
			if err := tx.Model(&gormModels.Team{}).
				Where("id = ?", teamID).
				Update("captain_discord_id", discordID).Error; err != nil {
				return fmt.Errorf("failed to set team captain: %w", err)
			}
		}

		member := gormModels.TeamMember{
			TeamID:    teamID,
			DiscordID: discordID,
			Role:      assigned,
		}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("failed to create membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.emit(ctx, &events.RosterEvent{
		Kind:      events.MembershipCommitted,
		TeamID:    teamID,
		TeamName:  team.Name,
		BadgeRef:  derefBadge(&team),
		DiscordID: discordID,
		Role:      assigned,
	})
	return assigned, nil
}

// TransferCaptaincy relabels the old captain to demoteTo, the new captain's
// row to captain, and updates the team's captain reference - all in one
// transaction so no reader ever observes a team without exactly one captain.
func (s *RosterService) TransferCaptaincy(
	ctx context.Context,
	teamID uint,
	newCaptainDiscordID string,
	demoteTo constants.TeamRole,
) error {
	// The demotion target can never itself be captain.
	if demoteTo != constants.RoleManager && demoteTo != constants.RolePlayer {
		return ErrInvalidDemotion
	}

	unlock := s.lockTeam(teamID)
	defer unlock()

	var team gormModels.Team
	var prevRole constants.TeamRole

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&team, teamID).Error; err != nil {
			return fmt.Errorf("failed to load team: %w", err)
		}

		var newCaptain gormModels.TeamMember
		err := tx.Where("team_id = ? AND discord_id = ?", teamID, newCaptainDiscordID).
			First(&newCaptain).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrNotAMember
			}
			return fmt.Errorf("failed to load new captain: %w", err)
		}
		if newCaptain.Role == constants.RoleCaptain {
			return ErrAlreadyMember
		}
		prevRole = newCaptain.Role

		if team.CaptainDiscordID != nil {
			err := tx.Model(&gormModels.TeamMember{}).
				Where("team_id = ? AND discord_id = ?", teamID, *team.CaptainDiscordID).
				Update("role", demoteTo).Error
			if err != nil {
				return fmt.Errorf("failed to demote old captain: %w", err)
			}
		}

		if err := tx.Model(&gormModels.TeamMember{}).
			Where("team_id = ? AND discord_id = ?", teamID, newCaptainDiscordID).
			Update("role", constants.RoleCaptain).Error; err != nil {
			return fmt.Errorf("failed to promote new captain: %w", err)
		}

		if err := tx.Model(&gormModels.Team{}).
			Where("id = ?", teamID).
			Update("captain_discord_id", newCaptainDiscordID).Error; err != nil {
			return fmt.Errorf("failed to update team captain: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// team still holds the pre-transfer captain reference here.
	var affected []string
	if team.CaptainDiscordID != nil {
		affected = []string{*team.CaptainDiscordID}
	}
	s.emit(ctx, &events.RosterEvent{
		Kind:      events.CaptaincyTransferred,
		TeamID:    teamID,
		TeamName:  team.Name,
		BadgeRef:  derefBadge(&team),
		DiscordID: newCaptainDiscordID,
		Role:      constants.RoleCaptain,
		PrevRole:  prevRole,
		DemotedTo: demoteTo,
		Affected:  affected,
	})
	return nil
}

// RemoveMember deletes a membership row. Captains cannot be removed;
// captaincy must be transferred first. Returns the vacated role.
func (s *RosterService) RemoveMember(
	ctx context.Context,
	teamID uint,
	discordID string,
) (constants.TeamRole, error) {
	unlock := s.lockTeam(teamID)
	defer unlock()

	var team gormModels.Team
	var vacated constants.TeamRole
	var heldElsewhere bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&team, teamID).Error; err != nil {
			return fmt.Errorf("failed to load team: %w", err)
		}

		var member gormModels.TeamMember
		err := tx.Where("team_id = ? AND discord_id = ?", teamID, discordID).
			First(&member).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrNotAMember
			}
			return fmt.Errorf("failed to load membership: %w", err)
		}

		if member.Role == constants.RoleCaptain {
			return ErrCaptainImmovable
		}
		vacated = member.Role

		var sameRole int64
		if err := tx.Model(&gormModels.TeamMember{}).
			Where("discord_id = ? AND role = ? AND team_id <> ?", discordID, member.Role, teamID).
			Count(&sameRole).Error; err != nil {
			return fmt.Errorf("failed to count role holdings: %w", err)
		}
		heldElsewhere = sameRole > 0

		if err := tx.Delete(&member).Error; err != nil {
			return fmt.Errorf("failed to delete membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.emit(ctx, &events.RosterEvent{
		Kind:              events.MembershipRevoked,
		TeamID:            teamID,
		TeamName:          team.Name,
		BadgeRef:          derefBadge(&team),
		DiscordID:         discordID,
		Role:              vacated,
		RoleHeldElsewhere: heldElsewhere,
	})
	return vacated, nil
}

// DisbandTeam deletes the team and every membership row. Returns the
// removed team and members so the workflow can notify each one.
func (s *RosterService) DisbandTeam(ctx context.Context, teamID uint) (*gormModels.Team, []gormModels.TeamMember, error) {
	unlock := s.lockTeam(teamID)
	defer unlock()

	var team gormModels.Team
	var members []gormModels.TeamMember

	heldElsewhere := make(map[string]bool)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&team, teamID).Error; err != nil {
			return fmt.Errorf("failed to load team: %w", err)
		}
		if err := tx.Where("team_id = ?", teamID).Find(&members).Error; err != nil {
			return fmt.Errorf("failed to load members: %w", err)
		}
		if err := tx.Where("team_id = ?", teamID).Delete(&gormModels.TeamMember{}).Error; err != nil {
			return fmt.Errorf("failed to delete members: %w", err)
		}
		if err := tx.Delete(&gormModels.Team{}, teamID).Error; err != nil {
			return fmt.Errorf("failed to delete team: %w", err)
		}
		for _, m := range members {
			var sameRole int64
			if err := tx.Model(&gormModels.TeamMember{}).
				Where("discord_id = ? AND role = ? AND team_id <> ?", m.DiscordID, m.Role, teamID).
				Count(&sameRole).Error; err != nil {
				return fmt.Errorf("failed to count role holdings: %w", err)
			}
			heldElsewhere[m.DiscordID] = sameRole > 0
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	// One revocation per member so badge sync can settle each identity's
	// position badge, then the team-level teardown.
	evts := make([]*events.RosterEvent, 0, len(members)+1)
	affected := make([]string, 0, len(members))
	for _, m := range members {
		affected = append(affected, m.DiscordID)
		evts = append(evts, &events.RosterEvent{
			Kind:              events.MembershipRevoked,
			TeamID:            teamID,
			TeamName:          team.Name,
			BadgeRef:          derefBadge(&team),
			DiscordID:         m.DiscordID,
			Role:              m.Role,
			RoleHeldElsewhere: heldElsewhere[m.DiscordID],
		})
	}
	evts = append(evts, &events.RosterEvent{
		Kind:     events.TeamDisbanded,
		TeamID:   teamID,
		TeamName: team.Name,
		BadgeRef: derefBadge(&team),
		Affected: affected,
	})
	s.emit(ctx, evts...)
	return &team, members, nil
}

func derefBadge(team *gormModels.Team) string {
	if team.BadgeRef == nil {
		return ""
	}
	return *team.BadgeRef
}
