// Package game ties the engines together into a playable session: dialog
// resolution, commands, items, dates, timers and persistence hooks. All
// entry points are safe for concurrent use; deferred work (NPC replies,
// respawns, the clock) re-reads state when it fires.
package game

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/luckylarry/romance-engine/pkg/achievement"
	"github.com/luckylarry/romance-engine/pkg/ai"
	"github.com/luckylarry/romance-engine/pkg/date"
	"github.com/luckylarry/romance-engine/pkg/dialog"
	"github.com/luckylarry/romance-engine/pkg/emotion"
	"github.com/luckylarry/romance-engine/pkg/minigame"
	"github.com/luckylarry/romance-engine/pkg/quest"
	"github.com/luckylarry/romance-engine/pkg/state"
	"github.com/luckylarry/romance-engine/pkg/story"
	"github.com/luckylarry/romance-engine/pkg/textfilter"
	"github.com/luckylarry/romance-engine/pkg/world"
)

// Timer keys.
const (
	keyTick    = "tick"
	keyRestock = "restock"
	keyDialog  = "dialog"
)

const (
	// RestockInterval is how often ambient protection restocking runs.
	RestockInterval = 3 * time.Minute
	// RestockFloor is the stock level ambient restocking tops up to.
	RestockFloor = 3
	// ProtectionCap is the maximum protection stock.
	ProtectionCap = 5
	// ProtectionPrice is the over-the-counter price.
	ProtectionPrice = 50
)

// Config tunes a session.
type Config struct {
	// Logger defaults to slog.Default.
	Logger *slog.Logger
	// Events receives notifications, chat lines and comments as they
	// happen. Callbacks run with the session locked and must not call
	// back into it. May be nil.
	Events quest.Events
	// Rand drives all line selection and jealousy rolls. Defaults to a
	// time-seeded source.
	Rand *rand.Rand
	// ThinkDelay is how long NPCs "think" before replying to a dialog
	// option. Zero resolves replies inline.
	ThinkDelay time.Duration
}

// Session is one player's running game.
type Session struct {
	mu sync.Mutex

	catalog  *world.Catalog
	gs       *state.GameState
	emotions *emotion.Store
	stories  *story.Tracker
	achieve  *achievement.Evaluator
	quests   *quest.Engine
	dates    *date.Orchestrator
	ai       *ai.Responder
	poker    *minigame.Poker
	filter   *textfilter.Filter
	sched    *Scheduler
	rng      *rand.Rand
	logger   *slog.Logger
	sink     quest.Events

	thinkDelay time.Duration
	now        func() time.Time

	pendingOption *dialog.Option
}

// NewSession creates a fresh session over the catalog.
func NewSession(c *world.Catalog, cfg Config) *Session {
	s := &Session{
		catalog:    c,
		sched:      NewScheduler(),
		filter:     textfilter.New(),
		thinkDelay: cfg.ThinkDelay,
		now:        time.Now,
		sink:       cfg.Events,
		logger:     cfg.Logger,
		rng:        cfg.Rand,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s.gs = state.NewGameState(c)
	s.emotions = emotion.NewStore(func() string { return s.gs.CurrentLocation })
	s.stories = story.NewTracker(c)
	s.achieve = achievement.NewEvaluator(c)

	ev := &sessionEvents{s: s}
	s.quests = quest.NewEngine(c, s.achieve, ev).
		WithMoodModifier(func(npc string) float64 {
			return s.emotions.Modifier(npc, emotion.ModifierMood)
		})
	s.dates = date.NewOrchestrator(c, s.emotions, s.quests, s.achieve, ev)
	s.ai = ai.NewResponder(c, s.emotions, s.stories, s.rng)
	s.poker = minigame.NewPoker(s.rng)
	return s
}

// sessionEvents persists chat lines and comments on the game state and
// forwards everything to the configured sink. It is only invoked while
// the session lock is held.
type sessionEvents struct {
	s *Session
}

func (e *sessionEvents) Notify(text string) {
	if e.s.sink != nil {
		e.s.sink.Notify(text)
	}
}

func (e *sessionEvents) Message(speaker, text string) {
	e.s.addMessage(speaker, text)
}

func (e *sessionEvents) Comment(npc, text string) {
	e.s.addComment(npc, text)
}

func (s *Session) addMessage(speaker, text string) {
	text = s.filter.Apply(text, s.gs.AdultMode)
	s.gs.AddMessage(speaker, text)
	if s.sink != nil {
		s.sink.Message(speaker, text)
	}
}

func (s *Session) addComment(npc, text string) {
	text = s.filter.Apply(text, s.gs.AdultMode)
	s.gs.AddComment(text)
	if s.sink != nil {
		s.sink.Comment(npc, text)
	}
}

func (s *Session) notify(text string) {
	if s.sink != nil {
		s.sink.Notify(text)
	}
}

func (s *Session) achNotifier() achievement.Notifier {
	return func(d achievement.Def) {
		s.notify(fmt.Sprintf("🏆 Achievement Unlocked: %s! +%d points", d.Name, achievement.ScoreBonus))
	}
}

// ID returns the session id.
func (s *Session) ID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gs.ID
}

// Snapshot returns a deep copy of the game state, safe to serialize or
// inspect without holding the session.
func (s *Session) Snapshot() (*state.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.gs)
}

func cloneState(gs *state.GameState) (*state.GameState, error) {
	data, err := json.Marshal(gs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game state: %w", err)
	}
	var out state.GameState
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
	}
	return &out, nil
}

// Restore replaces the session state with a saved snapshot. Running
// timers keep their schedule; the NPC's emotional memory is not part of
// the snapshot and carries over from the live session.
func (s *Session) Restore(gs *state.GameState) error {
	clone, err := cloneState(gs)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gs = clone
	s.pendingOption = nil
	s.sched.Cancel(keyDialog)
	s.addComment(s.gs.CurrentNPC, "He loaded a previous save. Trying to undo mistakes?")
	return nil
}

// Reset discards all progress and starts over.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.gs.ID
	s.gs = state.NewGameState(s.catalog)
	s.gs.ID = id
	s.pendingOption = nil
	s.sched.Cancel(keyDialog)
}

// Start arms the session clock: one tick per second, mood decay every
// minute, an achievement sweep every 30 seconds and ambient protection
// restocking every three minutes.
func (s *Session) Start() {
	s.sched.Every(keyTick, time.Second, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.gs.Time++
		if s.gs.Time%60 == 0 && s.gs.Mood > 0 {
			s.gs.Mood--
		}
		if s.gs.Time%30 == 0 {
			s.achieve.CheckAll(s.gs, s.achNotifier())
		}
	})
	s.sched.Every(keyRestock, RestockInterval, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gs.ProtectionCount < RestockFloor {
			s.gs.ProtectionCount++
			s.notify(fmt.Sprintf("🔄 Protection restocked! Now have %d.", s.gs.ProtectionCount))
		}
	})
}

// Stop cancels all timers. The session remains usable for synchronous
// calls.
func (s *Session) Stop() {
	s.sched.StopAll()
}

// VerifyAge records the player's age confirmation, a precondition for
// adult mode.
func (s *Session) VerifyAge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gs.AgeVerified = true
}

// SetAdultMode toggles adult content. Requires prior age verification.
func (s *Session) SetAdultMode(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if enabled && !s.gs.AgeVerified {
		return ErrAgeNotVerified
	}
	s.gs.AdultMode = enabled
	return nil
}

// SetEnhancedMode toggles the enhanced feature set and recomputes overall
// progress, since the available quest pool changes with it.
func (s *Session) SetEnhancedMode(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gs.EnhancedMode = enabled
	s.quests.UpdateOverall(s.gs)
}

// SetAIMode toggles smart dialog generation.
func (s *Session) SetAIMode(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gs.AIMode = enabled
}

// SelectNPC switches the conversation partner. The NPC must be present at
// the current location unless it is one of the background characters.
func (s *Session) SelectNPC(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	npc := s.gs.NPCState(name)
	if npc == nil {
		return fmt.Errorf("%w: %q", ErrUnknownNPC, name)
	}
	s.gs.CurrentNPC = name
	s.gs.Relationship = npc.Relationship
	if !npc.Met {
		npc.Met = true
	}
	return nil
}

// updateRelationship is the relationship change cascade: clamp and record
// the value, re-check story milestones, achievements and jealousy, and
// push the NPC's emotion in the direction of the change.
func (s *Session) updateRelationship(npcName string, delta int) {
	old, updated, ok := s.gs.ApplyRelationship(npcName, delta, s.now())
	if !ok || updated == old {
		if ok {
			return
		}
		s.logger.Warn("relationship change for unknown npc", "npc", npcName)
		return
	}

	for _, m := range s.stories.CheckProgress(s.gs, npcName, updated) {
		s.notify(fmt.Sprintf("📖 New Story Branch Unlocked: %s with %s!", m.Title, npcName))
		s.addComment(npcName, "I feel like I can share more with you now...")
	}

	s.achieve.Check(s.gs, achievement.Romantic, s.achNotifier())
	s.gs.UpdateJealousy(s.catalog)

	if delta > 0 {
		s.emotions.Influence(npcName, emotion.Joy, delta)
	} else if delta < 0 {
		s.emotions.Influence(npcName, emotion.Anger, -delta)
	}
}
