package api

import (
	"time"

	"scrimworks/quartermaster/internal/db/repositories"
	"scrimworks/quartermaster/internal/events"
	"scrimworks/quartermaster/internal/services"

	"github.com/jmoiron/sqlx"
	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

type Repositories struct {
	Players     *repositories.PlayerRepositoryGORM
	Teams       *repositories.TeamRepositoryGORM
	Members     *repositories.MemberRepositoryGORM
	Bans        *repositories.BanRepositoryGORM
	RosterStats *repositories.RosterStatsRepository
}

type Services struct {
	Roster *services.RosterService

	// ProfileCache holds rendered team profiles between roster commits.
	ProfileCache *gocache.Cache
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
}

func InitDependencies(gormDB *gorm.DB, sqlxDB *sqlx.DB, publisher events.Publisher) (*Dependencies, error) {
	repos := &Repositories{
		Players:     repositories.NewPlayerRepositoryGORM(gormDB),
		Teams:       repositories.NewTeamRepositoryGORM(gormDB),
		Members:     repositories.NewMemberRepositoryGORM(gormDB),
		Bans:        repositories.NewBanRepositoryGORM(gormDB),
		RosterStats: repositories.NewRosterStatsRepository(sqlxDB),
	}

	svcs := &Services{
		Roster:       services.NewRosterService(gormDB, publisher),
		ProfileCache: gocache.New(30*time.Second, 5*time.Minute),
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
	}, nil
}
