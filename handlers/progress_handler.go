package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"fitQuestAPI/internal/types/progress"
	"fitQuestAPI/middleware"
	"fitQuestAPI/scoring"
	"fitQuestAPI/services"
)

type ProgressHandler struct {
	progressService  *services.ProgressService
	challengeService *services.ChallengeService
}

func NewProgressHandler(progressService *services.ProgressService, challengeService *services.ChallengeService) *ProgressHandler {
	return &ProgressHandler{
		progressService:  progressService,
		challengeService: challengeService,
	}
}

// POST /api/v1/challenges/{id}/entries
func (h *ProgressHandler) LogEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challengeID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge id")
		return
	}

	var req progress.LogEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.progressService.LogEntry(ctx, clerkID, challengeID, &req)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, entry)
}

// DELETE /api/v1/entries/{id}
func (h *ProgressHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	entryID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid entry id")
		return
	}

	if err := h.progressService.DeleteEntry(ctx, clerkID, entryID); err != nil {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// GET /api/v1/challenges/{id}/progress - aggregated records plus the caller's score
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challengeID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge id")
		return
	}

	ch, err := h.challengeService.GetChallenge(ctx, challengeID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}

	records, err := h.progressService.AggregatedProgressForClerk(ctx, clerkID, challengeID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, &progress.ProgressResponse{
		ChallengeID: challengeID,
		Records:     records,
		TotalPoints: scoring.TotalPoints(ch.Objectives, records, ch.CapPoints, ch.Type),
	})
}
