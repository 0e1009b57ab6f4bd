package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scrimworks/quartermaster/internal/api"
	"scrimworks/quartermaster/internal/config"
	"scrimworks/quartermaster/internal/db"
	"scrimworks/quartermaster/internal/logging"
	"scrimworks/quartermaster/internal/metrics"
	gormModels "scrimworks/quartermaster/internal/models/gorm"
	"scrimworks/quartermaster/internal/platform"
	"scrimworks/quartermaster/internal/queue"
	"scrimworks/quartermaster/internal/routes"
	"scrimworks/quartermaster/internal/sessions"
	"scrimworks/quartermaster/internal/workers"
	"scrimworks/quartermaster/internal/workflows"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Quartermaster starting up",
		"environment", cfg.AppEnv,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	// Connect to DB with sqlx (read-side stats queries)
	if err := db.InitPostgres(); err != nil {
		logging.Error("Failed to connect to Postgres (sqlx)", "error", err.Error())
		log.Fatalf("Failed to connect to Postgres (sqlx): %v", err)
	}
	logging.Info("Connected to Postgres (sqlx)")

	// Connect to DB with GORM (write side)
	gormDB, err := db.InitPostgresORM(db.PostgresDSN())
	if err != nil {
		logging.Error("Failed to connect to Postgres (GORM)", "error", err.Error())
		log.Fatalf("Failed to connect to Postgres (GORM): %v", err)
	}
	logging.Info("Connected to Postgres (GORM)")

	if err := gormDB.AutoMigrate(
		&gormModels.Player{},
		&gormModels.Team{},
		&gormModels.TeamMember{},
		&gormModels.Ban{},
	); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	queueSvc := queue.NewRedisQueueService(redisClient)

	metricsReg := metrics.NewMetricsRegistry()

	deps, err := api.InitDependencies(gormDB, db.DB, queueSvc)
	if err != nil {
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}

	// The chat gateway attaches its own prompt, scope, badge, and media
	// adapters in the bot process; the API server runs detached ones.
	prompt := platform.DetachedPromptSurface{}
	scopes := platform.LocalScopeManager{}
	roles := platform.NopRoleAssigner{}

	sessionMgr := sessions.NewManager(sessions.Timeouts{
		Warn:  cfg.InactivityWarn,
		Final: cfg.InactivityFinal,
		Kill:  cfg.InactivityKill,
	}, prompt, scopes)

	engine := workflows.NewEngine(workflows.EngineDeps{
		Cfg:      cfg,
		Sessions: sessionMgr,
		Prompt:   prompt,
		Scopes:   scopes,
		Notify:   platform.NopNotifier{},
		Roles:    roles,
		Media:    platform.DetachedMediaStore{},
		Roster:   deps.Services.Roster,
		Players:  deps.Repo.Players,
		Teams:    deps.Repo.Teams,
		Members:  deps.Repo.Members,
		Bans:     deps.Repo.Bans,
		Metrics:  metricsReg,
	})

	adminSurface := workflows.NewAdmin(engine, api.ClaimsAuthorizer{})
	adminHandlers := api.NewAdminHandlers(adminSurface)

	upSince := time.Now()
	router := routes.RegisterRoutes(cfg, metricsReg, deps, adminHandlers, upSince)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workers.InitWorkers(ctx, cfg, queueSvc, roles, metricsReg)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Info("Server starting", "addr", cfg.HTTPAddr, "environment", cfg.AppEnv)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
	logging.Info("Quartermaster stopped")
}
