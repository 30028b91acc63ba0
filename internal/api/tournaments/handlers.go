// internal/api/tournaments/handlers.go
package tournaments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/courtmix/courtmix/internal/api/live"
	"github.com/courtmix/courtmix/internal/config"
	"github.com/courtmix/courtmix/internal/engine/fixtures"
	"github.com/courtmix/courtmix/internal/engine/progression"
	"github.com/courtmix/courtmix/internal/engine/scoring"
	"github.com/courtmix/courtmix/internal/models"
	"github.com/courtmix/courtmix/internal/ratelimit"
	"github.com/courtmix/courtmix/internal/store"
	"github.com/courtmix/courtmix/internal/tournament"
)

var (
	manager     *tournament.Manager
	hub         *live.Hub
	defaults    config.EngineConfig
	limiter     *ratelimit.Limiter
	managerOnce sync.Once
)

const organiserKeyHeader = "X-Organiser-Key"

// InitHandlers must be called during server startup before handling
// requests. The engine defaults fill in settings a create request
// leaves at zero.
func InitHandlers(m *tournament.Manager, h *live.Hub, engine config.EngineConfig) {
	if m == nil {
		return
	}
	managerOnce.Do(func() {
		manager = m
		hub = h
		defaults = engine
		limiter = ratelimit.New(nil)
	})
}

type createRequest struct {
	Name         string                    `json:"name"`
	Config       models.TournamentConfig   `json:"config"`
	Entrants     []tournament.EntrantInput `json:"entrants"`
	OrganiserKey string                    `json:"organiserKey"`
}

type scoreRequest struct {
	MatchID string `json:"matchId"`
	Score1  *int   `json:"score1"`
	Score2  *int   `json:"score2"`
}

type renameRequest struct {
	EntrantID string `json:"entrantId"`
	Name      string `json:"name"`
}

func HandleCreate(w http.ResponseWriter, r *http.Request) {
	if manager == nil {
		log.Ctx(r.Context()).Error().Msg("Tournament manager not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Config.PointsPerMatch == 0 {
		req.Config.PointsPerMatch = defaults.PointsPerMatch
	}
	if req.Config.CourtCount == 0 {
		req.Config.CourtCount = defaults.CourtCount
	}

	session, err := manager.Create(r.Context(), req.Name, req.Config, req.Entrants, req.OrganiserKey)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if hub != nil {
		hub.AttachSession(session)
	}

	log.Ctx(r.Context()).Info().
		Str("tournament_id", session.Document().ID).
		Str("format", string(req.Config.Format)).
		Int("entrants", len(req.Entrants)).
		Msg("Tournament created")

	writeDocument(w, r, session, http.StatusCreated)
}

func HandleGet(w http.ResponseWriter, r *http.Request) {
	session, ok := loadSession(w, r)
	if !ok {
		return
	}
	writeDocument(w, r, session, http.StatusOK)
}

func HandleScore(w http.ResponseWriter, r *http.Request) {
	session, ok := authorizedSession(w, r)
	if !ok {
		return
	}

	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := session.RecordScore(req.MatchID, req.Score1, req.Score2); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeDocument(w, r, session, http.StatusOK)
}

func HandleRenameEntrant(w http.ResponseWriter, r *http.Request) {
	session, ok := authorizedSession(w, r)
	if !ok {
		return
	}

	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := session.RenameEntrant(req.EntrantID, req.Name); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeDocument(w, r, session, http.StatusOK)
}

func HandleAdvance(w http.ResponseWriter, r *http.Request) {
	session, ok := authorizedSession(w, r)
	if !ok {
		return
	}
	if err := session.AdvanceRound(); err != nil {
		writeDomainError(w, r, err)
		return
	}
	log.Ctx(r.Context()).Info().
		Str("tournament_id", session.Document().ID).
		Int("current_round", session.Document().CurrentRound).
		Msg("Round advanced")
	writeDocument(w, r, session, http.StatusOK)
}

func HandleEnd(w http.ResponseWriter, r *http.Request) {
	session, ok := authorizedSession(w, r)
	if !ok {
		return
	}
	if err := session.End(); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeDocument(w, r, session, http.StatusOK)
}

func HandleReopen(w http.ResponseWriter, r *http.Request) {
	session, ok := authorizedSession(w, r)
	if !ok {
		return
	}
	if err := session.Reopen(); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeDocument(w, r, session, http.StatusOK)
}

func HandleStandings(w http.ResponseWriter, r *http.Request) {
	session, ok := loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, session.Standings())
}

func loadSession(w http.ResponseWriter, r *http.Request) (*tournament.Session, bool) {
	if manager == nil {
		log.Ctx(r.Context()).Error().Msg("Tournament manager not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}

	id := r.PathValue("id")
	session, err := manager.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "tournament not found", http.StatusNotFound)
			return nil, false
		}
		log.Ctx(r.Context()).Error().Err(err).Str("tournament_id", id).Msg("Failed to load tournament")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	return session, true
}

// authorizedSession loads the session and checks the organiser key
// header. Mutating operations all go through here. Repeated key
// mismatches lock the tournament out for a while.
func authorizedSession(w http.ResponseWriter, r *http.Request) (*tournament.Session, bool) {
	session, ok := loadSession(w, r)
	if !ok {
		return nil, false
	}

	id := session.Document().ID
	ip := ratelimit.GetClientIP(r, false)

	if limiter != nil {
		if result := limiter.CheckAttempt(id, ip); !result.Allowed {
			ratelimit.LogRateLimitExceeded(id, ip, result.Reason)
			w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
			http.Error(w, "too many failed key attempts", http.StatusTooManyRequests)
			return nil, false
		}
	}

	if err := session.Authorize(r.Header.Get(organiserKeyHeader)); err != nil {
		if limiter != nil {
			if lockedOut := limiter.RecordFailure(id, ip); lockedOut {
				ratelimit.LogRateLimitExceeded(id, ip, "lockout")
			}
		}
		http.Error(w, "organiser key does not match", http.StatusForbidden)
		return nil, false
	}
	if limiter != nil {
		limiter.Reset(id)
	}
	return session, true
}

func writeDocument(w http.ResponseWriter, r *http.Request, session *tournament.Session, status int) {
	doc := session.Document()
	doc.Meta.OrganiserKey = "" // hash stays server-side
	writeJSON(w, r, status, doc)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode response")
	}
}

// writeDomainError maps engine errors onto HTTP statuses. Anything
// unrecognized is a 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tournament.ErrUnauthorized):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, tournament.ErrMatchNotFound),
		errors.Is(err, tournament.ErrEntrantNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, tournament.ErrNameRequired),
		errors.Is(err, tournament.ErrEntrantsRequired),
		errors.Is(err, tournament.ErrInvalidConfig),
		errors.Is(err, scoring.ErrScorePairIncomplete),
		errors.Is(err, scoring.ErrScoreNegative),
		errors.Is(err, scoring.ErrScoreSum),
		errors.Is(err, fixtures.ErrInsufficientEntrants),
		errors.Is(err, fixtures.ErrUnsupportedEntrantCount),
		errors.Is(err, fixtures.ErrUnknownFormat):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, progression.ErrRoundIncomplete),
		errors.Is(err, progression.ErrTournamentComplete),
		errors.Is(err, progression.ErrNotCompleted):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg("Unhandled tournament error")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
