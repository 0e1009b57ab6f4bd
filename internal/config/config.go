package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries process configuration, read once at bootstrap from the
// environment. Every timing window the workflow engine uses lives here so
// tests can shrink them.
type Config struct {
	AppEnv    string
	HTTPAddr  string
	RedisAddr string
	JWTSecret string

	// Session inactivity ladder: warn, then final warning, then expire.
	// Each duration is measured from the last qualifying interaction.
	InactivityWarn  time.Duration
	InactivityFinal time.Duration
	InactivityKill  time.Duration

	// Response windows for specific waits.
	ApprovalWindow time.Duration
	UploadWindow   time.Duration
	InviteWindow   time.Duration

	// TeardownGrace keeps the scope open briefly after a terminal message.
	TeardownGrace time.Duration

	// Platform role references for the global position badges. Empty refs
	// disable that position's badge sync.
	BadgeCaptainRef string
	BadgeManagerRef string
	BadgeCoachRef   string
	BadgePlayerRef  string
}

// Load reads configuration from the environment with defaults suitable for
// development.
func Load() *Config {
	return &Config{
		AppEnv:    getenv("APP_ENV", "development"),
		HTTPAddr:  getenv("HTTP_ADDR", ":8080"),
		RedisAddr: getenv("REDIS_ADDR", "localhost:6379"),
		JWTSecret: getenv("JWT_SECRET", ""),

		InactivityWarn:  getduration("SESSION_WARN_AFTER", 5*time.Minute),
		InactivityFinal: getduration("SESSION_FINAL_AFTER", 8*time.Minute),
		InactivityKill:  getduration("SESSION_EXPIRE_AFTER", 10*time.Minute),

		ApprovalWindow: getduration("APPROVAL_WINDOW", 24*time.Hour),
		UploadWindow:   getduration("UPLOAD_WINDOW", 3*time.Minute),
		InviteWindow:   getduration("INVITE_WINDOW", 24*time.Hour),

		TeardownGrace: getduration("TEARDOWN_GRACE", 15*time.Second),

		BadgeCaptainRef: getenv("BADGE_CAPTAIN_REF", ""),
		BadgeManagerRef: getenv("BADGE_MANAGER_REF", ""),
		BadgeCoachRef:   getenv("BADGE_COACH_REF", ""),
		BadgePlayerRef:  getenv("BADGE_PLAYER_REF", ""),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
