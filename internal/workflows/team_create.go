package workflows

import (
	"context"
	"fmt"
	"strings"

	"scrimworks/quartermaster/internal/constants"
	"scrimworks/quartermaster/internal/logging"
	gormModels "scrimworks/quartermaster/internal/models/gorm"
	"scrimworks/quartermaster/internal/platform"
)

// Team creation states. Linear with one branch at the region check.
const (
	stateRoleChoice    State = "role_choice"
	stateNameInput     State = "name_input"
	stateTagInput      State = "tag_input"
	stateTeamRegion    State = "team_region_select"
	stateRegionConfirm State = "region_mismatch_confirm"
	stateLogo          State = "logo_upload"
	stateTeamCommit    State = "team_commit"
)

type teamCreateFlow struct {
	engine *Engine
	userID string
	scope  string

	founderRole  constants.TeamRole
	founder      *gormModels.Player // set on the captain path
	name         string
	tag          string
	region       constants.Region
	logoURL      *string
	badgeWarning string
}

// CreateTeam runs the team registration workflow from role choice through
// the atomic commit. No roster row is written before the commit step, so
// cancellation and expiry at any earlier point leave no partial state.
func (e *Engine) CreateTeam(ctx context.Context, userID string) error {
	if blocked, err := e.gateBanned(ctx, userID); err != nil || blocked {
		return err
	}

	s, err := e.begin(ctx, userID, constants.WorkflowTeamRegister, "team-registration")
	if err != nil {
		return err
	}

	fl := &teamCreateFlow{engine: e, userID: userID, scope: s.ScopeID}

	table := transitions{
		stateRoleChoice:    fl.stepRoleChoice,
		stateNameInput:     fl.stepNameInput,
		stateTagInput:      fl.stepTagInput,
		stateTeamRegion:    fl.stepRegionSelect,
		stateRegionConfirm: fl.stepRegionConfirm,
		stateLogo:          fl.stepLogo,
		stateTeamCommit:    fl.stepCommit,
	}

	return e.runAndFinish(ctx, s, stateRoleChoice, table)
}

func (fl *teamCreateFlow) stepRoleChoice(ctx context.Context) (State, error) {
	resp, err := fl.engine.prompt.PresentChoice(ctx, fl.scope, only(fl.userID),
		"Are you registering this team as its captain or as a manager?",
		[]platform.Choice{
			{ID: string(constants.RoleCaptain), Label: "Captain"},
			{ID: string(constants.RoleManager), Label: "Manager"},
		})
	if err != nil {
		return "", err
	}

	fl.founderRole = constants.TeamRole(resp.OptionID)

	// The captain path requires an existing player record; stopping here is
	// guidance, not an error.
	if fl.founderRole == constants.RoleCaptain {
		player, err := fl.engine.players.GetByDiscordID(ctx, fl.userID)
		if err != nil {
			if notFound(err) {
				fl.engine.post(ctx, fl.scope, constants.MsgNotRegistered)
				return StateCancelled, nil
			}
			return "", err
		}
		fl.founder = player
	}

	return stateNameInput, nil
}

func (fl *teamCreateFlow) stepNameInput(ctx context.Context) (State, error) {
	resp, err := fl.engine.prompt.PresentFreeText(ctx, fl.scope, only(fl.userID),
		"What is the team called?",
		field("team_name", 1, constants.TeamNameMaxLen))
	if err != nil {
		return "", err
	}

	name := strings.TrimSpace(resp.Value)
	if name == "" || len(name) > constants.TeamNameMaxLen {
		fl.engine.post(ctx, fl.scope, fmt.Sprintf("Team names must be 1-%d characters.", constants.TeamNameMaxLen))
		return stateNameInput, nil
	}

	if _, err := fl.engine.teams.GetByName(ctx, name); err == nil {
		fl.engine.post(ctx, fl.scope, constants.MsgDuplicateTeamName)
		return stateNameInput, nil
	} else if !notFound(err) {
		return "", err
	}

	fl.name = name
	return stateTagInput, nil
}

func (fl *teamCreateFlow) stepTagInput(ctx context.Context) (State, error) {
	resp, err := fl.engine.prompt.PresentFreeText(ctx, fl.scope, only(fl.userID),
		"Pick a short team tag.",
		field("team_tag", constants.TeamTagMinLen, constants.TeamTagMaxLen))
	if err != nil {
		return "", err
	}

	tag := strings.ToUpper(strings.TrimSpace(resp.Value))
	if len(tag) < constants.TeamTagMinLen || len(tag) > constants.TeamTagMaxLen {
		fl.engine.post(ctx, fl.scope, fmt.Sprintf("Tags are %d-%d characters.", constants.TeamTagMinLen, constants.TeamTagMaxLen))
		return stateTagInput, nil
	}

	if _, err := fl.engine.teams.GetByTag(ctx, tag); err == nil {
		fl.engine.post(ctx, fl.scope, constants.MsgDuplicateTeamTag)
		return stateTagInput, nil
	} else if !notFound(err) {
		return "", err
	}

	fl.tag = tag
	return stateTeamRegion, nil
}

func (fl *teamCreateFlow) stepRegionSelect(ctx context.Context) (State, error) {
	resp, err := fl.engine.prompt.PresentChoice(ctx, fl.scope, only(fl.userID),
		"Which region will the team compete in?", regionChoices())
	if err != nil {
		return "", err
	}

	region := constants.Region(resp.OptionID)
	if !region.IsValid() {
		return stateTeamRegion, nil
	}
	fl.region = region

	// Captains must normally play where their team competes.
	if fl.founder != nil && !constants.RegionsMatch(fl.founder.Region, region) {
		return stateRegionConfirm, nil
	}
	return stateLogo, nil
}

func (fl *teamCreateFlow) stepRegionConfirm(ctx context.Context) (State, error) {
	resp, err := fl.engine.prompt.PresentConfirm(ctx, fl.scope, only(fl.userID),
		fmt.Sprintf("You are registered in %s but the team will compete in %s. "+
			"You will have to play all matches on the %s ladder. Continue?",
			fl.founder.Region, fl.region, fl.region))
	if err != nil {
		return "", err
	}

	if resp.Decision != platform.Accepted {
		fl.engine.post(ctx, fl.scope, constants.MsgRegionMismatchDecline)
		return StateCancelled, nil
	}
	return stateLogo, nil
}

// stepLogo offers upload-now or skip. Upload failures report and re-offer
// the choice; a missing logo is always an explicit user decision.
func (fl *teamCreateFlow) stepLogo(ctx context.Context) (State, error) {
	resp, err := fl.engine.prompt.PresentChoice(ctx, fl.scope, only(fl.userID),
		"Upload a team logo now, or skip?",
		[]platform.Choice{
			{ID: "upload", Label: "Upload now"},
			{ID: "skip", Label: "Skip"},
		})
	if err != nil {
		return "", err
	}

	if resp.OptionID == "skip" {
		return stateTeamCommit, nil
	}

	attachment, err := fl.engine.prompt.AwaitAttachment(ctx, fl.scope, fl.userID, fl.engine.cfg.UploadWindow)
	if err != nil {
		if isTimeout(err) && ctx.Err() == nil {
			fl.engine.post(ctx, fl.scope, "No image arrived in time. Try again or skip.")
			return stateLogo, nil
		}
		return "", err
	}

	if !strings.HasPrefix(attachment.ContentType, "image/") {
		fl.engine.post(ctx, fl.scope, "That file is not an image. Try again or skip.")
		return stateLogo, nil
	}

	url, err := fl.engine.media.StoreLogo(ctx, fl.tag, attachment)
	if err != nil {
		logging.Warn("logo store failed", "scope_id", fl.scope, "error", err.Error())
		fl.engine.post(ctx, fl.scope, "Storing the logo failed. Try again or skip.")
		return stateLogo, nil
	}

	fl.logoURL = &url
	return stateTeamCommit, nil
}

func (fl *teamCreateFlow) stepCommit(ctx context.Context) (State, error) {
	// Badge provisioning is best-effort and happens before the commit. A
	// badge orphaned by a failed commit is not compensated.
	var badgeRef *string
	if ref, err := fl.engine.roles.CreateTeamBadge(ctx, fl.name); err != nil {
		logging.Warn("team badge provisioning failed", "team", fl.name, "error", err.Error())
		fl.badgeWarning = " (The team role badge could not be created; an admin can re-sync it later.)"
	} else {
		badgeRef = &ref
	}

	team := &gormModels.Team{
		Name:     fl.name,
		Tag:      fl.tag,
		Region:   fl.region,
		LogoURL:  fl.logoURL,
		BadgeRef: badgeRef,
	}

	if err := fl.engine.roster.CreateTeamWithFounder(ctx, team, fl.userID, fl.founderRole); err != nil {
		return "", err
	}

	fl.engine.post(ctx, fl.scope, fmt.Sprintf("Team %s [%s] is registered for the %s ladder.%s",
		fl.name, fl.tag, fl.region, fl.badgeWarning))
	return StateDone, nil
}
