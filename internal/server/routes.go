package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"scopa-game/internal/database"
)

// ResultStore is the read side of the results database.
type ResultStore interface {
	GetAll(ctx context.Context) ([]database.RoundResult, error)
	GetByPlayer(ctx context.Context, playerName string) ([]database.RoundResult, error)
}

// HandleRoutes registers the results API on mux.
func HandleRoutes(mux *http.ServeMux, db ResultStore, logger *zap.Logger) {
	mux.HandleFunc("GET /api/results/player/{name}", func(w http.ResponseWriter, r *http.Request) {
		GetResultsByPlayerHandler(db, logger, w, r)
	})
	mux.HandleFunc("GET /api/results", func(w http.ResponseWriter, r *http.Request) {
		GetResultsHandler(db, logger, w, r)
	})
	logger.Info("Registered routes", zap.Strings("routes", []string{"/api/results", "/api/results/player/{name}"}))
}

func GetResultsByPlayerHandler(db ResultStore, logger *zap.Logger, w http.ResponseWriter, r *http.Request) {
	player := r.PathValue("name")
	if player == "" {
		http.Error(w, "Player name is required", http.StatusBadRequest)
		return
	}

	results, err := db.GetByPlayer(r.Context(), player)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "No results found for player", http.StatusNotFound)
			return
		}
		logger.Error("Failed to fetch results", zap.String("player", player), zap.Error(err))
		http.Error(w, "Failed to fetch results", http.StatusInternalServerError)
		return
	}

	writeJSON(w, logger, results)
}

func GetResultsHandler(db ResultStore, logger *zap.Logger, w http.ResponseWriter, r *http.Request) {
	results, err := db.GetAll(r.Context())
	if err != nil {
		logger.Error("Failed to fetch results", zap.Error(err))
		http.Error(w, "Failed to fetch results", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []database.RoundResult{}
	}

	writeJSON(w, logger, results)
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to write response", zap.Error(err))
	}
}
