package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"scrimworks/quartermaster/internal/constants"
	"scrimworks/quartermaster/internal/models/dtos/responses"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

const profileCacheTTL = 30 * time.Second

// GetTeamProfileHandler handles GET /api/v1/teams/{teamID}.
// Profiles are cached briefly; roster commits are rare relative to reads.
func GetTeamProfileHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teamID, err := strconv.ParseUint(chi.URLParam(r, "teamID"), 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid team id")
			return
		}

		cacheKey := fmt.Sprintf("team_profile:%d", teamID)
		if cached, found := deps.Services.ProfileCache.Get(cacheKey); found {
			if profile, ok := cached.(*responses.TeamProfileResponse); ok {
				respondWithSuccess(w, http.StatusOK, profile)
				return
			}
		}

		stats, err := deps.Repo.RosterStats.GetTeamStats(r.Context(), uint(teamID))
		if err != nil {
			respondWithError(w, http.StatusNotFound, "Team not found")
			return
		}

		members, err := deps.Repo.Members.ListByTeam(r.Context(), uint(teamID))
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to load roster")
			return
		}

		roster := make([]responses.RosterMemberEntry, 0, len(members))
		for _, m := range members {
			entry := responses.RosterMemberEntry{
				DiscordID: m.DiscordID,
				Role:      string(m.Role),
				JoinedAt:  m.JoinedAt.UTC().Format(time.RFC3339),
			}
			if player, err := deps.Repo.Players.GetByDiscordID(r.Context(), m.DiscordID); err == nil {
				entry.IGN = player.IGN
			}
			roster = append(roster, entry)
		}

		now := time.Now().UTC()
		profile := &responses.TeamProfileResponse{
			Stats:    *stats,
			Roster:   roster,
			LogoURL:  stats.LogoURL,
			CachedAt: &now,
		}

		deps.Services.ProfileCache.Set(cacheKey, profile, profileCacheTTL)
		respondWithSuccess(w, http.StatusOK, profile)
	}
}

// ListTeamsHandler handles GET /api/v1/teams?region=EU
func ListTeamsHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		region := strings.ToUpper(r.URL.Query().Get("region"))
		if region != "" && !constants.Region(region).IsValid() {
			respondWithError(w, http.StatusBadRequest, "Unknown region")
			return
		}

		teams, err := deps.Repo.RosterStats.ListTeams(r.Context(), region)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to list teams")
			return
		}

		respondWithSuccess(w, http.StatusOK, &responses.TeamListResponse{
			Region: region,
			Teams:  teams,
		})
	}
}

// GetPlayerHandler handles GET /api/v1/players/{discordID}
func GetPlayerHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		discordID := chi.URLParam(r, "discordID")

		player, err := deps.Repo.Players.GetByDiscordID(r.Context(), discordID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				respondWithError(w, http.StatusNotFound, "Player not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "Failed to load player")
			return
		}

		respondWithSuccess(w, http.StatusOK, player)
	}
}
