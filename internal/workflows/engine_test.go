package workflows

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"scrimworks/quartermaster/internal/config"
	"scrimworks/quartermaster/internal/constants"
	"scrimworks/quartermaster/internal/db/repositories"
	gormModels "scrimworks/quartermaster/internal/models/gorm"
	"scrimworks/quartermaster/internal/platform"
	"scrimworks/quartermaster/internal/services"
	"scrimworks/quartermaster/internal/sessions"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// scriptedPrompt answers prompts from pre-loaded queues, in order. An
// exhausted queue fails the test.
type scriptedPrompt struct {
	t *testing.T

	mu       sync.Mutex
	choices  []func(prompt string, options []platform.Choice) (*platform.ChoiceResponse, error)
	texts    []func(prompt string, field platform.FieldSpec) (*platform.TextResponse, error)
	confirms []func(prompt string) (*platform.ConfirmResponse, error)
	uploads  []func() (*platform.Attachment, error)

	posts      []string
	responders [][]string
}

func (p *scriptedPrompt) PresentChoice(_ context.Context, _ string, responders []string, prompt string, options []platform.Choice) (*platform.ChoiceResponse, error) {
	p.mu.Lock()
	if len(p.choices) == 0 {
		p.mu.Unlock()
		p.t.Fatalf("Unexpected choice prompt: %q", prompt)
	}
	next := p.choices[0]
	p.choices = p.choices[1:]
	p.responders = append(p.responders, responders)
	p.mu.Unlock()
	return next(prompt, options)
}

func (p *scriptedPrompt) PresentFreeText(_ context.Context, _ string, responders []string, prompt string, field platform.FieldSpec) (*platform.TextResponse, error) {
	p.mu.Lock()
	if len(p.texts) == 0 {
		p.mu.Unlock()
		p.t.Fatalf("Unexpected free-text prompt: %q", prompt)
	}
	next := p.texts[0]
	p.texts = p.texts[1:]
	p.responders = append(p.responders, responders)
	p.mu.Unlock()
	return next(prompt, field)
}

func (p *scriptedPrompt) PresentConfirm(_ context.Context, _ string, responders []string, prompt string) (*platform.ConfirmResponse, error) {
	p.mu.Lock()
	if len(p.confirms) == 0 {
		p.mu.Unlock()
		p.t.Fatalf("Unexpected confirm prompt: %q", prompt)
	}
	next := p.confirms[0]
	p.confirms = p.confirms[1:]
	p.responders = append(p.responders, responders)
	p.mu.Unlock()
	return next(prompt)
}

func (p *scriptedPrompt) AwaitAttachment(_ context.Context, _ string, _ string, _ time.Duration) (*platform.Attachment, error) {
	p.mu.Lock()
	if len(p.uploads) == 0 {
		p.mu.Unlock()
		p.t.Fatal("Unexpected attachment wait")
	}
	next := p.uploads[0]
	p.uploads = p.uploads[1:]
	p.mu.Unlock()
	return next()
}

func (p *scriptedPrompt) Post(_ context.Context, _ string, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.posts = append(p.posts, message)
	return nil
}

func (p *scriptedPrompt) posted() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.posts...)
}

func (p *scriptedPrompt) answerText(value string) {
	p.texts = append(p.texts, func(string, platform.FieldSpec) (*platform.TextResponse, error) {
		return &platform.TextResponse{Value: value}, nil
	})
}

func (p *scriptedPrompt) answerChoice(optionID string) {
	p.choices = append(p.choices, func(string, []platform.Choice) (*platform.ChoiceResponse, error) {
		return &platform.ChoiceResponse{OptionID: optionID}, nil
	})
}

func (p *scriptedPrompt) answerConfirm(decision platform.Decision, responderID string) {
	p.confirms = append(p.confirms, func(string) (*platform.ConfirmResponse, error) {
		return &platform.ConfirmResponse{ResponderID: responderID, Decision: decision}, nil
	})
}

func (p *scriptedPrompt) failConfirm(err error) {
	p.confirms = append(p.confirms, func(string) (*platform.ConfirmResponse, error) {
		return nil, err
	})
}

// recordingNotifier captures direct messages by recipient.
type recordingNotifier struct {
	mu       sync.Mutex
	messages map[string][]string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{messages: make(map[string][]string)}
}

func (n *recordingNotifier) Notify(_ context.Context, discordID, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages[discordID] = append(n.messages[discordID], message)
	return nil
}

func (n *recordingNotifier) sent(discordID string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages[discordID]...)
}

// recordingScopes mints scope ids and records admitted users.
type recordingScopes struct {
	mu       sync.Mutex
	next     int
	admitted map[string][]string
}

func newRecordingScopes() *recordingScopes {
	return &recordingScopes{admitted: make(map[string][]string)}
}

func (s *recordingScopes) OpenScope(_ context.Context, userID, title string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("scope-%d", s.next), nil
}

func (s *recordingScopes) AdmitUsers(_ context.Context, scopeID string, userIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admitted[scopeID] = append(s.admitted[scopeID], userIDs...)
	return nil
}

func (s *recordingScopes) CloseScope(context.Context, string) error { return nil }

// fakeRoles provisions badge refs and records grants.
type fakeRoles struct {
	mu      sync.Mutex
	grants  []string
	revokes []string
	fail    bool
}

func (r *fakeRoles) GrantRole(_ context.Context, discordID, roleRef string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grants = append(r.grants, discordID+":"+roleRef)
	return nil
}

func (r *fakeRoles) RevokeRole(_ context.Context, discordID, roleRef string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revokes = append(r.revokes, discordID+":"+roleRef)
	return nil
}

func (r *fakeRoles) CreateTeamBadge(_ context.Context, teamName string) (string, error) {
	if r.fail {
		return "", fmt.Errorf("badge service unavailable")
	}
	return "badge-" + teamName, nil
}

func (r *fakeRoles) DeleteTeamBadge(context.Context, string) error { return nil }

// fakeMedia stores logos by returning a deterministic URL.
type fakeMedia struct{ fail bool }

func (m *fakeMedia) StoreLogo(_ context.Context, teamTag string, _ *platform.Attachment) (string, error) {
	if m.fail {
		return "", fmt.Errorf("storage unavailable")
	}
	return "https://cdn.example/logos/" + teamTag + ".png", nil
}

type testWorld struct {
	db     *gorm.DB
	prompt *scriptedPrompt
	notify *recordingNotifier
	scopes *recordingScopes
	roles  *fakeRoles
	media  *fakeMedia
	roster *services.RosterService
}

func newTestEngine(t *testing.T) (*Engine, *testWorld) {
	t.Helper()

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

	cfg := &config.Config{
		InactivityWarn:  time.Hour,
		InactivityFinal: 2 * time.Hour,
		InactivityKill:  3 * time.Hour,
		ApprovalWindow:  time.Second,
		UploadWindow:    time.Second,
		InviteWindow:    time.Second,
		TeardownGrace:   0,
	}

	world := &testWorld{
		db:     db,
		prompt: &scriptedPrompt{t: t},
		notify: newRecordingNotifier(),
		scopes: newRecordingScopes(),
		roles:  &fakeRoles{},
		media:  &fakeMedia{},
	}
	world.roster = services.NewRosterService(db, nil)

	sessionMgr := sessions.NewManager(sessions.Timeouts{
		Warn:  cfg.InactivityWarn,
		Final: cfg.InactivityFinal,
		Kill:  cfg.InactivityKill,
	}, world.prompt, world.scopes)

	engine := NewEngine(EngineDeps{
		Cfg:      cfg,
		Sessions: sessionMgr,
		Prompt:   world.prompt,
		Scopes:   world.scopes,
		Notify:   world.notify,
		Roles:    world.roles,
		Media:    world.media,
		Roster:   world.roster,
		Players:  repositories.NewPlayerRepositoryGORM(db),
		Teams:    repositories.NewTeamRepositoryGORM(db),
		Members:  repositories.NewMemberRepositoryGORM(db),
		Bans:     repositories.NewBanRepositoryGORM(db),
	})

	return engine, world
}

func seedPlayer(t *testing.T, db *gorm.DB, discordID, ign string, region constants.Region) {
	t.Helper()
	player := &gormModels.Player{DiscordID: discordID, IGN: ign, GameID: "1000" + discordID, Region: region}
	if err := db.Create(player).Error; err != nil {
		t.Fatalf("Seed player: %v", err)
	}
}

func seedTeam(t *testing.T, world *testWorld, name, tag, captainID string, region constants.Region) *gormModels.Team {
	t.Helper()
	team := &gormModels.Team{Name: name, Tag: tag, Region: region}
	if err := world.roster.CreateTeamWithFounder(context.Background(), team, captainID, constants.RoleCaptain); err != nil {
		t.Fatalf("Seed team: %v", err)
	}
	return team
}

func memberRole(t *testing.T, db *gorm.DB, teamID uint, discordID string) (constants.TeamRole, bool) {
	t.Helper()
	var member gormModels.TeamMember
	err := db.Where("team_id = ? AND discord_id = ?", teamID, discordID).First(&member).Error
	if err == gorm.ErrRecordNotFound {
		return "", false
	}
	if err != nil {
		t.Fatalf("Load membership: %v", err)
	}
	return member.Role, true
}
