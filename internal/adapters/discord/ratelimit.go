package discord

import (
	"sync"
	"time"
)

// clickLimiter frena el spam de clicks en el panel de setup:
// una interacción de componente por usuario por ventana.
type clickLimiter struct {
	mu   sync.Mutex
	next map[string]time.Time
	win  time.Duration
}

func newClickLimiter(window time.Duration) *clickLimiter {
	return &clickLimiter{next: map[string]time.Time{}, win: window}
}

func (l *clickLimiter) Allow(userID string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if until, ok := l.next[userID]; ok && now.Before(until) {
		return false
	}
	l.next[userID] = now.Add(l.win)
	return true
}
