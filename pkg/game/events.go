package game

import (
	"sync"

	"github.com/luckylarry/romance-engine/pkg/quest"
)

// Recorder is a quest.Events implementation that buffers notifications so
// a caller can drain what an action produced. Messages and comments are
// already persisted on the game state by the session; the recorder only
// captures the transient notification stream.
type Recorder struct {
	mu            sync.Mutex
	notifications []string
}

var _ quest.Events = (*Recorder)(nil)

// Notify buffers a notification.
func (r *Recorder) Notify(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, text)
}

// Message implements quest.Events; the session persists chat lines.
func (r *Recorder) Message(speaker, text string) {}

// Comment implements quest.Events; the session persists comments.
func (r *Recorder) Comment(npc, text string) {}

// Drain returns buffered notifications and clears the buffer.
func (r *Recorder) Drain() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.notifications
	r.notifications = nil
	return out
}
