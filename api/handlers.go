package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/antony-akshay/stream-oracle/domain"
	"github.com/antony-akshay/stream-oracle/domain/entities"
	"github.com/antony-akshay/stream-oracle/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeError maps domain errors onto HTTP status codes. AlreadyResolved gets
// its own code so clients can distinguish a lost resolve race from other
// conflicts without parsing messages.
func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error()}
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrAlreadyResolved):
		status = http.StatusConflict
		body.Code = "already_resolved"
	case errors.Is(err, domain.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	default:
		log.WithError(err).Error("Unhandled error in HTTP handler")
		body.Error = "internal server error"
	}

	writeJSON(w, status, body)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// marketResponse is a market with its externally visible status and deadline
type marketResponse struct {
	*entities.Market
	DisplayStatus entities.MarketStatus `json:"displayStatus"`
	Deadline      time.Time             `json:"deadline"`
}

func (s *Server) marketResponse(m *entities.Market) marketResponse {
	return marketResponse{
		Market:        m,
		DisplayStatus: m.DisplayStatus(s.now()),
		Deadline:      m.Deadline(),
	}
}

func (s *Server) marketResponses(markets []*entities.Market) []marketResponse {
	responses := make([]marketResponse, 0, len(markets))
	for _, m := range markets {
		responses = append(responses, s.marketResponse(m))
	}
	return responses
}

type createStreamerRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	TokenAddress string `json:"tokenAddress"`
}

func (s *Server) handleCreateStreamer(w http.ResponseWriter, r *http.Request) {
	var req createStreamerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	streamer, err := s.streamers.CreateStreamer(r.Context(), req.Name, req.Description, req.TokenAddress)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, streamer)
}

func (s *Server) handleListStreamers(w http.ResponseWriter, r *http.Request) {
	streamers, err := s.streamers.ListStreamers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if streamers == nil {
		streamers = []*entities.Streamer{}
	}
	writeJSON(w, http.StatusOK, streamers)
}

func (s *Server) handleGetStreamer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid streamer id"})
		return
	}

	streamer, err := s.streamers.GetStreamer(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, streamer)
}

func (s *Server) handleDeactivateStreamer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid streamer id"})
		return
	}

	streamer, err := s.streamers.DeactivateStreamer(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, streamer)
}

type createMarketRequest struct {
	StreamerID      int64  `json:"streamerId"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	DurationSeconds int64  `json:"durationSeconds"`
}

func (s *Server) handleCreateMarket(w http.ResponseWriter, r *http.Request) {
	var req createMarketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	market, err := s.markets.CreateMarket(r.Context(), req.StreamerID, req.Title, req.Description,
		entities.MarketCategory(req.Category), req.DurationSeconds)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, s.marketResponse(market))
}

func (s *Server) handleListMarkets(w http.ResponseWriter, r *http.Request) {
	var query interfaces.MarketQuery
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := entities.MarketStatus(statusStr)
		query.Status = &status
	}
	if streamerStr := r.URL.Query().Get("streamerId"); streamerStr != "" {
		streamerID, err := strconv.ParseInt(streamerStr, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid streamerId"})
			return
		}
		query.StreamerID = &streamerID
	}

	markets, err := s.markets.ListMarkets(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.marketResponses(markets))
}

func (s *Server) handleGetMarket(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid market id"})
		return
	}

	market, err := s.markets.GetMarket(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.marketResponse(market))
}

type placeBetRequest struct {
	Prediction string `json:"prediction"`
	Amount     int64  `json:"amount"`
}

func (s *Server) handlePlaceBet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid market id"})
		return
	}

	var req placeBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	bet, err := s.betting.PlaceBet(r.Context(), id, r.Header.Get(userHeader),
		entities.Outcome(req.Prediction), req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, bet)
}

type resolveMarketRequest struct {
	Outcome string `json:"outcome"`
}

func (s *Server) handleResolveMarket(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid market id"})
		return
	}

	var req resolveMarketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	result, err := s.settlement.ResolveAndSettle(r.Context(), id,
		entities.Outcome(req.Outcome), r.Header.Get(userHeader))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSettleMarket(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid market id"})
		return
	}

	result, err := s.settlement.Settle(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleUserBets(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	bets, err := s.betting.ListUserBets(r.Context(), userID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if bets == nil {
		bets = []*entities.Bet{}
	}
	writeJSON(w, http.StatusOK, bets)
}

func (s *Server) handleUserRewards(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	rewards, err := s.settlement.ListUserRewards(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if rewards == nil {
		rewards = []*entities.Reward{}
	}
	writeJSON(w, http.StatusOK, rewards)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	entries, err := s.leaderboard.GetLeaderboard(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []*entities.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
