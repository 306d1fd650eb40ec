package game

import (
	"sync"
	"time"
)

// Scheduler owns the session's timers: item respawns, deferred NPC
// replies, the clock tick and the protection restock loop. Timers are
// keyed so re-arming one cancels its predecessor.
type Scheduler struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	tickers map[string]chan struct{}
	stopped bool
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		timers:  make(map[string]*time.Timer),
		tickers: make(map[string]chan struct{}),
	}
}

// After runs fn once after d, replacing any pending timer under the same
// key. A zero delay runs fn synchronously.
func (s *Scheduler) After(key string, d time.Duration, fn func()) {
	if d <= 0 {
		fn()
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	s.timers[key] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, key)
		s.mu.Unlock()
		fn()
	})
}

// Every runs fn on every tick of d until the key is cancelled or the
// scheduler stops.
func (s *Scheduler) Every(key string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if stop, ok := s.tickers[key]; ok {
		close(stop)
	}
	stop := make(chan struct{})
	s.tickers[key] = stop
	go func() {
		t := time.NewTicker(d)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				fn()
			case <-stop:
				return
			}
		}
	}()
}

// Cancel stops the timer or ticker under key, if any.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
	if stop, ok := s.tickers[key]; ok {
		close(stop)
		delete(s.tickers, key)
	}
}

// StopAll cancels everything and refuses new work.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for k, t := range s.timers {
		t.Stop()
		delete(s.timers, k)
	}
	for k, stop := range s.tickers {
		close(stop)
		delete(s.tickers, k)
	}
}
