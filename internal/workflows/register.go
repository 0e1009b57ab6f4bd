package workflows

import (
	"context"
	"fmt"
	"strings"

	"scrimworks/quartermaster/internal/constants"
	gormModels "scrimworks/quartermaster/internal/models/gorm"
	"scrimworks/quartermaster/internal/platform"
)

// Player registration states.
const (
	stateIGN      State = "ign_input"
	stateGameID   State = "game_id_input"
	stateRegion   State = "region_select"
	stateAgentTag State = "agent_tag_select"
	stateCommit   State = "commit"
)

// agentTagChoices are the optional playstyle tags offered during player
// registration. Skipping is always an option.
var agentTagChoices = []platform.Choice{
	{ID: "assault", Label: "Assault"},
	{ID: "support", Label: "Support"},
	{ID: "sniper", Label: "Sniper"},
	{ID: "flex", Label: "Flex"},
	{ID: "skip", Label: "Skip for now"},
}

type playerRegisterFlow struct {
	engine *Engine
	userID string
	scope  string

	ign      string
	gameID   string
	region   constants.Region
	agentTag *string
}

// RegisterPlayer runs the guided player registration workflow. Banned
// identities are blocked before any session is created; an existing player
// record terminates with guidance rather than an error.
func (e *Engine) RegisterPlayer(ctx context.Context, userID string) error {
	if blocked, err := e.gateBanned(ctx, userID); err != nil || blocked {
		return err
	}

	if _, err := e.players.GetByDiscordID(ctx, userID); err == nil {
		_ = e.notify.Notify(ctx, userID, constants.StatusAlreadyRegistered)
		return nil
	} else if !notFound(err) {
		return err
	}

	s, err := e.begin(ctx, userID, constants.WorkflowPlayerRegister, "player-registration")
	if err != nil {
		return err
	}

	fl := &playerRegisterFlow{engine: e, userID: userID, scope: s.ScopeID}

	table := transitions{
		stateIGN:      fl.stepIGN,
		stateGameID:   fl.stepGameID,
		stateRegion:   fl.stepRegion,
		stateAgentTag: fl.stepAgentTag,
		stateCommit:   fl.stepCommit,
	}

	return e.runAndFinish(ctx, s, stateIGN, table)
}

func (fl *playerRegisterFlow) stepIGN(ctx context.Context) (State, error) {
	resp, err := fl.engine.prompt.PresentFreeText(ctx, fl.scope, only(fl.userID),
		"Pick your in-game name (IGN).",
		field("ign", 1, constants.IGNMaxLen))
	if err != nil {
		return "", err
	}

	ign := strings.TrimSpace(resp.Value)
	if ign == "" || len(ign) > constants.IGNMaxLen {
		fl.engine.post(ctx, fl.scope, fmt.Sprintf("IGN must be 1-%d characters.", constants.IGNMaxLen))
		return stateIGN, nil
	}

	// IGN uniqueness is case-insensitive.
	if _, err := fl.engine.players.GetByIGN(ctx, ign); err == nil {
		fl.engine.post(ctx, fl.scope, constants.MsgDuplicateIGN)
		return stateIGN, nil
	} else if !notFound(err) {
		return "", err
	}

	fl.ign = ign
	return stateGameID, nil
}

func (fl *playerRegisterFlow) stepGameID(ctx context.Context) (State, error) {
	resp, err := fl.engine.prompt.PresentFreeText(ctx, fl.scope, only(fl.userID),
		"Enter your numeric in-game player ID.",
		field("game_id", 1, 32))
	if err != nil {
		return "", err
	}

	gameID := strings.TrimSpace(resp.Value)
	if gameID == "" {
		fl.engine.post(ctx, fl.scope, "The player ID cannot be empty.")
		return stateGameID, nil
	}

	fl.gameID = gameID
	return stateRegion, nil
}

func (fl *playerRegisterFlow) stepRegion(ctx context.Context) (State, error) {
	resp, err := fl.engine.prompt.PresentChoice(ctx, fl.scope, only(fl.userID),
		"Which region do you play in?", regionChoices())
	if err != nil {
		return "", err
	}

	region := constants.Region(resp.OptionID)
	if !region.IsValid() {
		return stateRegion, nil
	}

	fl.region = region
	return stateAgentTag, nil
}

func (fl *playerRegisterFlow) stepAgentTag(ctx context.Context) (State, error) {
	resp, err := fl.engine.prompt.PresentChoice(ctx, fl.scope, only(fl.userID),
		"Optional: pick the role you mainly play.", agentTagChoices)
	if err != nil {
		return "", err
	}

	if resp.OptionID != "skip" {
		tag := resp.OptionID
		fl.agentTag = &tag
	}
	return stateCommit, nil
}

func (fl *playerRegisterFlow) stepCommit(ctx context.Context) (State, error) {
	player := &gormModels.Player{
		DiscordID: fl.userID,
		IGN:       fl.ign,
		GameID:    fl.gameID,
		Region:    fl.region,
		AgentTag:  fl.agentTag,
	}

	if err := fl.engine.players.Create(ctx, player); err != nil {
		return "", err
	}

	fl.engine.post(ctx, fl.scope, fmt.Sprintf("Welcome, %s! You are registered for the %s ladder.", fl.ign, fl.region))
	return StateDone, nil
}
