package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/antony-akshay/stream-oracle/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// Server is the HTTP surface over the settlement engine services
type Server struct {
	streamers   interfaces.StreamerService
	markets     interfaces.MarketService
	betting     interfaces.BettingService
	settlement  interfaces.SettlementService
	leaderboard interfaces.LeaderboardService
	now         func() time.Time
	mux         *http.ServeMux
}

// NewServer wires the services into an http.Handler
func NewServer(
	streamers interfaces.StreamerService,
	markets interfaces.MarketService,
	betting interfaces.BettingService,
	settlement interfaces.SettlementService,
	leaderboard interfaces.LeaderboardService,
) *Server {
	s := &Server{
		streamers:   streamers,
		markets:     markets,
		betting:     betting,
		settlement:  settlement,
		leaderboard: leaderboard,
		now:         time.Now,
		mux:         http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /streamers", s.handleListStreamers)
	s.mux.HandleFunc("POST /streamers", s.handleCreateStreamer)
	s.mux.HandleFunc("GET /streamers/{id}", s.handleGetStreamer)
	s.mux.HandleFunc("POST /streamers/{id}/deactivate", s.handleDeactivateStreamer)

	s.mux.HandleFunc("GET /markets", s.handleListMarkets)
	s.mux.HandleFunc("POST /markets", s.handleCreateMarket)
	s.mux.HandleFunc("GET /markets/{id}", s.handleGetMarket)
	s.mux.HandleFunc("POST /markets/{id}/bets", s.requireUser(s.handlePlaceBet))
	s.mux.HandleFunc("POST /markets/{id}/resolve", s.requireUser(s.handleResolveMarket))
	s.mux.HandleFunc("POST /markets/{id}/settle", s.handleSettleMarket)

	s.mux.HandleFunc("GET /users/{id}/bets", s.handleUserBets)
	s.mux.HandleFunc("GET /users/{id}/rewards", s.handleUserRewards)

	s.mux.HandleFunc("GET /leaderboard", s.handleLeaderboard)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.WithFields(log.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Debug("HTTP request")
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}
