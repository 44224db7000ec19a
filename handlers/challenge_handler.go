package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"fitQuestAPI/internal/types/challenge"
	"fitQuestAPI/middleware"
	"fitQuestAPI/services"
)

type ChallengeHandler struct {
	challengeService   *services.ChallengeService
	leaderboardService *services.LeaderboardService
}

func NewChallengeHandler(challengeService *services.ChallengeService, leaderboardService *services.LeaderboardService) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService:   challengeService,
		leaderboardService: leaderboardService,
	}
}

// POST /api/v1/challenges
func (h *ChallengeHandler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req challenge.CreateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ch, err := h.challengeService.CreateChallenge(ctx, clerkID, &req)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, ch)
}

// GET /api/v1/challenges
func (h *ChallengeHandler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challenges, err := h.challengeService.ListChallenges(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, challenges)
}

// GET /api/v1/challenges/{id}
func (h *ChallengeHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, ok := middleware.GetClerkID(ctx); !ok {
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

	respondWithJSON(w, http.StatusOK, ch)
}

// POST /api/v1/challenges/{id}/join
func (h *ChallengeHandler) JoinChallenge(w http.ResponseWriter, r *http.Request) {
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

	if err := h.challengeService.JoinChallenge(ctx, clerkID, challengeID); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"joined": true})
}

// GET /api/v1/challenges/{id}/leaderboard
func (h *ChallengeHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
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

	board, err := h.leaderboardService.GetLeaderboard(ctx, clerkID, challengeID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, board)
}
