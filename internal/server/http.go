package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/peterkang34/holdco-tycoon-sub003/internal/challenge"
	"github.com/peterkang34/holdco-tycoon-sub003/internal/config"
	"github.com/peterkang34/holdco-tycoon-sub003/internal/narrative"
	"github.com/peterkang34/holdco-tycoon-sub003/internal/sim"
	"github.com/peterkang34/holdco-tycoon-sub003/internal/store"
)

type Server struct {
	cfg        *config.Config
	db         *pgxpool.Pool
	rdb        *redis.Client
	hub        *Hub
	logger     *slog.Logger
	mux        *http.ServeMux
	games      *sim.Manager
	gameStore  *store.GameStore
	histStore  *store.HistoryStore
	challenges *challenge.Service
	narrator   narrative.Generator
	metrics    *Metrics
}

func New(cfg *config.Config, db *pgxpool.Pool, rdb *redis.Client, games *sim.Manager, logger *slog.Logger) *Server {
	s := &Server{
		cfg:        cfg,
		db:         db,
		rdb:        rdb,
		logger:     logger,
		mux:        http.NewServeMux(),
		games:      games,
		gameStore:  store.NewGameStore(db),
		histStore:  store.NewHistoryStore(db),
		challenges: challenge.NewService(rdb, cfg.ChallengeSecret, cfg.ChallengeTTL),
		metrics:    NewMetrics(),
	}
	s.hub = NewHub(cfg.WSReadLimit, cfg.WSPingInterval, s.metrics, logger)
	s.routes()
	return s
}

// SetNarrator installs an external flavor-text generator. Optional: the
// templated fallback covers every event without one.
func (s *Server) SetNarrator(n narrative.Generator) {
	s.narrator = n
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /metrics", s.metrics.ServeHTTP)
	s.mux.Handle("GET /ws", s.hub)

	// Game endpoints
	s.mux.HandleFunc("POST /api/games", s.handleCreateGame)
	s.mux.HandleFunc("GET /api/games/{id}", s.handleGetGame)
	s.mux.HandleFunc("POST /api/games/{id}/actions", s.handleAction)
	s.mux.HandleFunc("GET /api/games/{id}/history", s.handleHistory)

	// Challenge endpoints
	s.mux.HandleFunc("POST /api/challenges", s.handleCreateChallenge)
	s.mux.HandleFunc("GET /api/challenges/{id}", s.handleGetChallenge)
	s.mux.HandleFunc("POST /api/challenges/{id}/join", s.handleJoinChallenge)
	s.mux.HandleFunc("POST /api/challenges/{id}/scores", s.handleSubmitScore)
	s.mux.HandleFunc("GET /api/challenges/{id}/leaderboard", s.handleChallengeLeaderboard)
	s.mux.HandleFunc("GET /api/leaderboard", s.handleGlobalLeaderboard)
}

// snapshotView is the full per-transition payload pushed to clients.
type snapshotView struct {
	Game    *sim.Game       `json:"game"`
	State   *sim.GameState  `json:"state"`
	Metrics any             `json:"metrics"`
	Score   *sim.FinalScore `json:"score,omitempty"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID    string  `json:"player_id"`
		Seed        *uint32 `json:"seed,omitempty"`
		ChallengeID string  `json:"challenge_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.PlayerID == "" {
		http.Error(w, "player_id required", http.StatusBadRequest)
		return
	}

	seed := req.Seed
	if req.ChallengeID != "" {
		c, err := s.challenges.Get(r.Context(), req.ChallengeID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if c == nil {
			http.Error(w, "challenge not found", http.StatusNotFound)
			return
		}
		seed = &c.Seed
	}

	g := s.games.Create(req.PlayerID, seed, req.ChallengeID)
	s.metrics.IncrGames()
	s.persist(g)

	g.Do(func(st *sim.GameState) {
		writeJSON(w, snapshotView{Game: g, State: st, Metrics: st.Metrics()})
	})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, found := s.games.Get(r.PathValue("id"))
	if !found {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	g.Do(func(st *sim.GameState) {
		view := snapshotView{Game: g, State: st, Metrics: st.Metrics()}
		if st.Phase == sim.PhaseOver {
			sc := st.Score()
			view.Score = &sc
		}
		writeJSON(w, view)
	})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	g, found := s.games.Get(r.PathValue("id"))
	if !found {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	var action sim.Action
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	var (
		res   sim.Result
		view  snapshotView
		ended bool
	)
	g.Do(func(st *sim.GameState) {
		roundBefore := st.Round
		res = st.Apply(action)
		s.metrics.IncrActions()
		if st.Round > roundBefore {
			s.metrics.IncrRounds()
		}
		if st.Bankrupt {
			ended = true
		}
		s.narrate(r.Context(), st)

		view = snapshotView{Game: g, State: st, Metrics: st.Metrics()}
		if st.Phase == sim.PhaseOver {
			sc := st.Score()
			view.Score = &sc
		}
	})
	if ended {
		s.metrics.IncrBankruptcy()
	}

	// Collaborator failures never fail the action: the in-memory game is
	// authoritative, persistence and pushes are best-effort.
	if res.OK {
		s.persist(g)
		s.hub.PushSnapshot(g.ID, view)
	}

	writeJSON(w, struct {
		Result sim.Result `json:"result"`
		snapshotView
	}{Result: res, snapshotView: view})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	g, found := s.games.Get(r.PathValue("id"))
	if found {
		var out []sim.RoundHistoryEntry
		g.Do(func(st *sim.GameState) {
			out = append(out, st.History...)
		})
		writeJSON(w, out)
		return
	}

	// Fall back to persisted rows for games no longer in memory.
	entries, err := s.histStore.ForGame(r.Context(), r.PathValue("id"))
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, entries)
}

// narrate fills in headlines for any events still missing one. Uses the
// external generator when installed, templates otherwise.
func (s *Server) narrate(ctx context.Context, st *sim.GameState) {
	for i := range st.EventLog {
		e := &st.EventLog[i]
		if e.Headline == "" {
			e.Headline = narrative.Headline(ctx, s.narrator, e)
		}
	}
	if st.PendingEvent != nil && st.PendingEvent.Headline == "" {
		st.PendingEvent.Headline = narrative.Headline(ctx, s.narrator, st.PendingEvent)
	}
}

// persist writes the snapshot and any new history rows. Errors are logged
// and swallowed.
func (s *Server) persist(g *sim.Game) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	g.Do(func(st *sim.GameState) {
		snapshot, err := json.Marshal(st)
		if err != nil {
			s.logger.Error("marshal snapshot", "game", g.ID, "err", err)
			return
		}
		var challengeID *string
		if g.ChallengeID != "" {
			challengeID = &g.ChallengeID
		}
		rec := &store.GameRecord{
			ID:          g.ID,
			PlayerID:    g.PlayerID,
			ChallengeID: challengeID,
			Seed:        int64(st.Seed),
			Round:       st.Round,
			Phase:       st.Phase.String(),
			Snapshot:    snapshot,
		}
		if err := s.gameStore.Save(ctx, rec); err != nil {
			s.logger.Error("persist game", "game", g.ID, "err", err)
		}
		if n := len(st.History); n > 0 {
			if err := s.histStore.Append(ctx, g.ID, st.History[n-1]); err != nil {
				s.logger.Error("persist history", "game", g.ID, "err", err)
			}
		}
	})
}

func (s *Server) handleCreateChallenge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string  `json:"name"`
		CreatedBy string  `json:"created_by"`
		Seed      *uint32 `json:"seed,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	seed := uint32(time.Now().UnixNano())
	if req.Seed != nil {
		seed = *req.Seed
	}
	c, err := s.challenges.Create(r.Context(), req.Name, req.CreatedBy, seed)
	if err != nil {
		s.logger.Error("create challenge", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, struct {
		*challenge.Challenge
		InviteToken string `json:"invite_token"`
	}{Challenge: c, InviteToken: s.challenges.InviteToken(c)})
}

func (s *Server) handleGetChallenge(w http.ResponseWriter, r *http.Request) {
	c, err := s.challenges.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if c == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, c)
}

func (s *Server) handleJoinChallenge(w http.ResponseWriter, r *http.Request) {
	c, joins, err := s.challenges.Join(r.Context(), r.PathValue("id"))
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if c == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, struct {
		*challenge.Challenge
		Participants int64 `json:"participants"`
	}{Challenge: c, Participants: joins})
}

func (s *Server) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GameID string `json:"game_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	g, found := s.games.Get(req.GameID)
	if !found {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	challengeID := r.PathValue("id")
	if g.ChallengeID != challengeID {
		http.Error(w, "game does not belong to this challenge", http.StatusBadRequest)
		return
	}

	var (
		score    sim.FinalScore
		finished bool
	)
	g.Do(func(st *sim.GameState) {
		finished = st.Phase == sim.PhaseOver
		score = st.Score()
	})
	if !finished {
		http.Error(w, "game still in progress", http.StatusBadRequest)
		return
	}

	if err := s.challenges.SubmitScore(r.Context(), challengeID, g.PlayerID, score.MOIC); err != nil {
		s.logger.Error("submit score", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, score)
}

func (s *Server) handleChallengeLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := s.challenges.Leaderboard(r.Context(), r.PathValue("id"), countParam(r, 50))
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, entries)
}

func (s *Server) handleGlobalLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := s.challenges.GlobalLeaderboard(r.Context(), countParam(r, 50))
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, entries)
}

func countParam(r *http.Request, fallback int64) int64 {
	if c := r.URL.Query().Get("count"); c != "" {
		if n, err := strconv.ParseInt(c, 10, 64); err == nil && n > 0 && n <= 100 {
			return n
		}
	}
	return fallback
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok"}

	if err := s.db.Ping(ctx); err != nil {
		status["db"] = "down"
		status["status"] = "degraded"
	} else {
		status["db"] = "ok"
	}

	if err := s.rdb.Ping(ctx).Err(); err != nil {
		status["redis"] = "down"
		status["status"] = "degraded"
	} else {
		status["redis"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if status["status"] != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(status); err != nil {
		s.logger.Error("write json", "err", err)
	}
}

func (s *Server) Handler() http.Handler {
	limiter := NewRateLimiter(30, 60)
	return ChainMiddleware(s.mux,
		RecoveryMiddleware(s.logger),
		LoggingMiddleware(s.logger),
		RateLimitMiddleware(limiter, s.logger),
	)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
}
