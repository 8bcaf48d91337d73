package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics collects basic application counters exposed as JSON.
type Metrics struct {
	wsConnections  atomic.Int64
	gamesCreated   atomic.Int64
	actionsApplied atomic.Int64
	roundsPlayed   atomic.Int64
	bankruptcies   atomic.Int64
	startTime      time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

func (m *Metrics) IncrWSConn()     { m.wsConnections.Add(1) }
func (m *Metrics) DecrWSConn()     { m.wsConnections.Add(-1) }
func (m *Metrics) IncrGames()      { m.gamesCreated.Add(1) }
func (m *Metrics) IncrActions()    { m.actionsApplied.Add(1) }
func (m *Metrics) IncrRounds()     { m.roundsPlayed.Add(1) }
func (m *Metrics) IncrBankruptcy() { m.bankruptcies.Add(1) }

// ServeHTTP exposes metrics as JSON at /metrics.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	data := map[string]any{
		"uptime_seconds":  int(time.Since(m.startTime).Seconds()),
		"ws_connections":  m.wsConnections.Load(),
		"games_created":   m.gamesCreated.Load(),
		"actions_applied": m.actionsApplied.Load(),
		"rounds_played":   m.roundsPlayed.Load(),
		"bankruptcies":    m.bankruptcies.Load(),
		"goroutines":      runtime.NumGoroutine(),
		"heap_alloc_mb":   mem.HeapAlloc / 1024 / 1024,
		"sys_mb":          mem.Sys / 1024 / 1024,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
}
