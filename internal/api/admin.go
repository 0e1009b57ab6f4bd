package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"scrimworks/quartermaster/internal/auth"
	"scrimworks/quartermaster/internal/constants"
	"scrimworks/quartermaster/internal/models/dtos/responses"
	"scrimworks/quartermaster/internal/workflows"

	"github.com/go-chi/chi/v5"
)

// AdminHandlers exposes the privileged workflow operations over HTTP for
// the admin dashboard. The same operations are reachable through the bot
// gateway; both paths converge on workflows.Admin.
type AdminHandlers struct {
	admin *workflows.Admin
}

func NewAdminHandlers(admin *workflows.Admin) *AdminHandlers {
	return &AdminHandlers{admin: admin}
}

// ClaimsAuthorizer answers admin checks from the request's JWT claims. The
// HTTP admin routes sit behind IsAdminMiddleware already; this keeps the
// workflow-level re-check consistent with the gateway-backed authorizer.
type ClaimsAuthorizer struct{}

func (ClaimsAuthorizer) IsAdmin(ctx context.Context, discordID string) (bool, error) {
	claims := auth.GetUserClaims(ctx)
	return claims != nil && claims.IsAdmin() && claims.DiscordID() == discordID, nil
}

func adminID(r *http.Request) string {
	if claims := auth.GetUserClaims(r.Context()); claims != nil {
		return claims.DiscordID()
	}
	return ""
}

func teamIDParam(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "teamID"), 10, 64)
	return uint(id), err == nil
}

// ForceTransfer handles POST /api/v1/admin/teams/{teamID}/captain
func (h *AdminHandlers) ForceTransfer(w http.ResponseWriter, r *http.Request) {
	teamID, ok := teamIDParam(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid team id")
		return
	}

	var body struct {
		NewCaptainDiscordID string `json:"new_captain_discord_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.NewCaptainDiscordID == "" {
		respondWithError(w, http.StatusBadRequest, "new_captain_discord_id is required")
		return
	}

	if err := h.admin.ForceTransferCaptaincy(r.Context(), adminID(r), teamID, body.NewCaptainDiscordID); err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	respondWithSuccess(w, http.StatusOK, &responses.AdminActionResponse{Action: "force_transfer"})
}

// ForceDisband handles DELETE /api/v1/admin/teams/{teamID}
func (h *AdminHandlers) ForceDisband(w http.ResponseWriter, r *http.Request) {
	teamID, ok := teamIDParam(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid team id")
		return
	}

	if err := h.admin.ForceDisband(r.Context(), adminID(r), teamID); err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	respondWithSuccess(w, http.StatusOK, &responses.AdminActionResponse{Action: "force_disband"})
}

// EditTeam handles PATCH /api/v1/admin/teams/{teamID}
func (h *AdminHandlers) EditTeam(w http.ResponseWriter, r *http.Request) {
	teamID, ok := teamIDParam(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid team id")
		return
	}

	var body struct {
		Name   *string `json:"name"`
		Tag    *string `json:"tag"`
		Region *string `json:"region"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed body")
		return
	}

	edit := workflows.TeamEdit{Name: body.Name, Tag: body.Tag}
	if body.Region != nil {
		region := constants.Region(strings.ToUpper(*body.Region))
		if !region.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Unknown region")
			return
		}
		edit.Region = &region
	}

	if err := h.admin.EditTeam(r.Context(), adminID(r), teamID, edit); err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	respondWithSuccess(w, http.StatusOK, &responses.AdminActionResponse{Action: "edit_team"})
}

// BanPlayer handles POST /api/v1/admin/bans
func (h *AdminHandlers) BanPlayer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DiscordID string `json:"discord_id"`
		Reason    string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.DiscordID == "" {
		respondWithError(w, http.StatusBadRequest, "discord_id is required")
		return
	}

	if err := h.admin.BanPlayer(r.Context(), adminID(r), body.DiscordID, body.Reason); err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	respondWithSuccess(w, http.StatusOK, &responses.AdminActionResponse{Action: "ban"})
}

// UnbanPlayer handles DELETE /api/v1/admin/bans/{discordID}
func (h *AdminHandlers) UnbanPlayer(w http.ResponseWriter, r *http.Request) {
	discordID := chi.URLParam(r, "discordID")

	if err := h.admin.UnbanPlayer(r.Context(), adminID(r), discordID); err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	respondWithSuccess(w, http.StatusOK, &responses.AdminActionResponse{Action: "unban"})
}

// EditPlayer handles PATCH /api/v1/admin/players/{discordID}
func (h *AdminHandlers) EditPlayer(w http.ResponseWriter, r *http.Request) {
	discordID := chi.URLParam(r, "discordID")

	var body struct {
		IGN      *string `json:"ign"`
		Region   *string `json:"region"`
		AgentTag *string `json:"agent_tag"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed body")
		return
	}

	edit := workflows.PlayerEdit{IGN: body.IGN, AgentTag: body.AgentTag}
	if body.Region != nil {
		region := constants.Region(strings.ToUpper(*body.Region))
		if !region.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Unknown region")
			return
		}
		edit.Region = &region
	}

	if err := h.admin.EditPlayer(r.Context(), adminID(r), discordID, edit); err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	respondWithSuccess(w, http.StatusOK, &responses.AdminActionResponse{Action: "edit_player"})
}

// DeletePlayer handles DELETE /api/v1/admin/players/{discordID}
func (h *AdminHandlers) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	discordID := chi.URLParam(r, "discordID")

	if err := h.admin.DeletePlayer(r.Context(), adminID(r), discordID); err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	respondWithSuccess(w, http.StatusOK, &responses.AdminActionResponse{Action: "delete_player"})
}
