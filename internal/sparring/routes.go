package sparring

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func Routes(mm *Matchmaker, profiles *Profiles, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/api/player", createPlayer(profiles))
	r.Get("/api/leaderboard", leaderboard(profiles))
	r.Get("/api/ws/{username}", WSHandler(mm, log))
	r.Get("/healthz", healthz)
	return r
}

func createPlayer(profiles *Profiles) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username string `json:"username"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Username == "" {
			http.Error(w, "username required", http.StatusBadRequest)
			return
		}

		player := profiles.GetOrCreate(body.Username)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(player)
	}
}

func leaderboard(profiles *Profiles) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(profiles.Top(10))
	}
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
