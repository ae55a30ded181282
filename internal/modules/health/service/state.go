package service

import (
	"sync/atomic"
	"time"
)

// State — наблюдаемое состояние монитора для health-эндпоинтов.
type State struct {
	ready     atomic.Bool
	startedAt time.Time

	wsConnected   atomic.Bool
	lastTradeUnix atomic.Int64 // unix seconds
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) SetWSConnected(v bool) { s.wsConnected.Store(v) }
func (s *State) WSConnected() bool     { return s.wsConnected.Load() }

// TouchTrade отмечает время последней обработанной сделки.
func (s *State) TouchTrade(t time.Time) { s.lastTradeUnix.Store(t.Unix()) }

func (s *State) LastTrade() time.Time {
	u := s.lastTradeUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

// LastTradeAge — сколько лента уже молчит (0, если сделок ещё не было).
func (s *State) LastTradeAge() time.Duration {
	t := s.LastTrade()
	if t.IsZero() {
		return 0
	}
	return time.Since(t)
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
