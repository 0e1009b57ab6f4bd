package workflows

import (
	"context"
	"fmt"

	"scrimworks/quartermaster/internal/constants"
	"scrimworks/quartermaster/internal/logging"
	gormModels "scrimworks/quartermaster/internal/models/gorm"
)

// Authorizer answers whether an identity holds tournament admin rights.
// Backed by the platform's role membership outside this package.
type Authorizer interface {
	IsAdmin(ctx context.Context, discordID string) (bool, error)
}

// Admin is the privileged control surface. Every operation re-checks
// authorization and reuses the same guarded roster commits as the
// self-service workflows.
type Admin struct {
	*Engine
	auth Authorizer
}

// NewAdmin wraps the engine with the admin authorization gate.
func NewAdmin(engine *Engine, auth Authorizer) *Admin {
	return &Admin{Engine: engine, auth: auth}
}

// authorize rejects non-admins with the standard message. The bool reports
// whether the caller may proceed.
func (a *Admin) authorize(ctx context.Context, adminID string) (bool, error) {
	ok, err := a.auth.IsAdmin(ctx, adminID)
	if err != nil {
		return false, fmt.Errorf("admin check failed: %w", err)
	}
	if !ok {
		_ = a.notify.Notify(ctx, adminID, constants.MsgAdminOnly)
	}
	return ok, nil
}

// ForceTransferCaptaincy reassigns captaincy on any team. The old captain
// drops to plain player on the admin path.
func (a *Admin) ForceTransferCaptaincy(ctx context.Context, adminID string, teamID uint, newCaptainID string) error {
	ok, err := a.authorize(ctx, adminID)
	if err != nil || !ok {
		return err
	}

	team, err := a.teams.GetByID(ctx, teamID)
	if err != nil {
		return err
	}

	oldCaptain := ""
	if team.CaptainDiscordID != nil {
		oldCaptain = *team.CaptainDiscordID
	}

	if err := a.roster.TransferCaptaincy(ctx, teamID, newCaptainID, constants.RolePlayer); err != nil {
		_ = a.notify.Notify(ctx, adminID, storeFailureMessage(err))
		return err
	}

	logging.Info("admin forced captaincy transfer",
		"admin", adminID, "team_id", teamID, "new_captain", newCaptainID)

	_ = a.notify.Notify(ctx, newCaptainID, fmt.Sprintf("An admin made you captain of %s.", team.Name))
	if oldCaptain != "" {
		_ = a.notify.Notify(ctx, oldCaptain, fmt.Sprintf("An admin transferred captaincy of %s to <@%s>.", team.Name, newCaptainID))
	}
	a.notifyTeamExcept(ctx, teamID, []string{oldCaptain, newCaptainID},
		fmt.Sprintf("<@%s> is the new captain of %s.", newCaptainID, team.Name))
	_ = a.notify.Notify(ctx, adminID, fmt.Sprintf("Captaincy of %s transferred to <@%s>.", team.Name, newCaptainID))
	return nil
}

// ForceDisband deletes any team without the self-service confirmation
// thread; the admin command carries its own confirmation upstream.
func (a *Admin) ForceDisband(ctx context.Context, adminID string, teamID uint) error {
	ok, err := a.authorize(ctx, adminID)
	if err != nil || !ok {
		return err
	}

	team, members, err := a.roster.DisbandTeam(ctx, teamID)
	if err != nil {
		_ = a.notify.Notify(ctx, adminID, storeFailureMessage(err))
		return err
	}

	logging.Info("admin disbanded team", "admin", adminID, "team_id", teamID, "team", team.Name)

	for _, m := range members {
		_ = a.notify.Notify(ctx, m.DiscordID,
			fmt.Sprintf("%s has been removed from the tournament by an admin.", team.Name))
	}
	_ = a.notify.Notify(ctx, adminID, fmt.Sprintf("%s has been disbanded.", team.Name))
	return nil
}

// BanPlayer records a ban, which blocks every registration workflow for
// the identity, and tears down any session they have in flight. Existing
// memberships are left alone; removal is a separate admin decision.
func (a *Admin) BanPlayer(ctx context.Context, adminID, targetID string, reason string) error {
	ok, err := a.authorize(ctx, adminID)
	if err != nil || !ok {
		return err
	}

	ban := &gormModels.Ban{
		DiscordID:      targetID,
		AdminDiscordID: adminID,
	}
	if reason != "" {
		ban.Reason = &reason
	}

	if err := a.bans.Create(ctx, ban); err != nil {
		_ = a.notify.Notify(ctx, adminID, storeFailureMessage(err))
		return err
	}

	if s, found := a.sessions.GetByUser(targetID); found {
		a.sessions.End(s.ScopeID, 0)
	}

	logging.Info("player banned", "admin", adminID, "target", targetID, "reason", reason)

	_ = a.notify.Notify(ctx, targetID, constants.MsgBanned)
	_ = a.notify.Notify(ctx, adminID, fmt.Sprintf("<@%s> is banned from registration.", targetID))
	return nil
}

// UnbanPlayer lifts a ban.
func (a *Admin) UnbanPlayer(ctx context.Context, adminID, targetID string) error {
	ok, err := a.authorize(ctx, adminID)
	if err != nil || !ok {
		return err
	}

	if err := a.bans.Delete(ctx, targetID); err != nil {
		_ = a.notify.Notify(ctx, adminID, storeFailureMessage(err))
		return err
	}

	logging.Info("player unbanned", "admin", adminID, "target", targetID)
	_ = a.notify.Notify(ctx, adminID, fmt.Sprintf("<@%s> may register again.", targetID))
	return nil
}

// PlayerEdit lists the player fields an admin may rewrite.
type PlayerEdit struct {
	IGN      *string
	Region   *constants.Region
	AgentTag *string
}

// EditPlayer force-edits a player record, keeping IGN uniqueness.
func (a *Admin) EditPlayer(ctx context.Context, adminID, targetID string, edit PlayerEdit) error {
	ok, err := a.authorize(ctx, adminID)
	if err != nil || !ok {
		return err
	}

	player, err := a.players.GetByDiscordID(ctx, targetID)
	if err != nil {
		if notFound(err) {
			_ = a.notify.Notify(ctx, adminID, fmt.Sprintf("<@%s> has no player record.", targetID))
			return nil
		}
		return err
	}

	if edit.IGN != nil {
		if existing, err := a.players.GetByIGN(ctx, *edit.IGN); err == nil && existing.DiscordID != targetID {
			_ = a.notify.Notify(ctx, adminID, constants.MsgDuplicateIGN)
			return nil
		} else if err != nil && !notFound(err) {
			return err
		}
		player.IGN = *edit.IGN
	}
	if edit.Region != nil {
		player.Region = *edit.Region
	}
	if edit.AgentTag != nil {
		player.AgentTag = edit.AgentTag
	}

	if err := a.players.Update(ctx, player); err != nil {
		_ = a.notify.Notify(ctx, adminID, storeFailureMessage(err))
		return err
	}

	logging.Info("player edited", "admin", adminID, "target", targetID)
	_ = a.notify.Notify(ctx, adminID, fmt.Sprintf("Player record for <@%s> updated.", targetID))
	return nil
}

// DeletePlayer removes the player record. Memberships are untouched: the
// record cascades nothing by itself, and the player may re-register later.
func (a *Admin) DeletePlayer(ctx context.Context, adminID, targetID string) error {
	ok, err := a.authorize(ctx, adminID)
	if err != nil || !ok {
		return err
	}

	if err := a.players.Delete(ctx, targetID); err != nil {
		_ = a.notify.Notify(ctx, adminID, storeFailureMessage(err))
		return err
	}

	logging.Info("player deleted", "admin", adminID, "target", targetID)
	_ = a.notify.Notify(ctx, adminID, fmt.Sprintf("Player record for <@%s> deleted.", targetID))
	return nil
}

// TeamEdit lists the team fields an admin may rewrite.
type TeamEdit struct {
	Name   *string
	Tag    *string
	Region *constants.Region
}

// EditTeam force-edits team fields, keeping name/tag uniqueness.
func (a *Admin) EditTeam(ctx context.Context, adminID string, teamID uint, edit TeamEdit) error {
	ok, err := a.authorize(ctx, adminID)
	if err != nil || !ok {
		return err
	}

	team, err := a.teams.GetByID(ctx, teamID)
	if err != nil {
		if notFound(err) {
			_ = a.notify.Notify(ctx, adminID, "No such team.")
			return nil
		}
		return err
	}

	if edit.Name != nil {
		if existing, err := a.teams.GetByName(ctx, *edit.Name); err == nil && existing.ID != teamID {
			_ = a.notify.Notify(ctx, adminID, constants.MsgDuplicateTeamName)
			return nil
		} else if err != nil && !notFound(err) {
			return err
		}
		team.Name = *edit.Name
	}
	if edit.Tag != nil {
		if existing, err := a.teams.GetByTag(ctx, *edit.Tag); err == nil && existing.ID != teamID {
			_ = a.notify.Notify(ctx, adminID, constants.MsgDuplicateTeamTag)
			return nil
		} else if err != nil && !notFound(err) {
			return err
		}
		team.Tag = *edit.Tag
	}
	if edit.Region != nil {
		team.Region = *edit.Region
	}

	if err := a.teams.Update(ctx, team); err != nil {
		_ = a.notify.Notify(ctx, adminID, storeFailureMessage(err))
		return err
	}

	logging.Info("team edited", "admin", adminID, "team_id", teamID)
	_ = a.notify.Notify(ctx, adminID, fmt.Sprintf("Team %s updated.", team.Name))
	return nil
}
