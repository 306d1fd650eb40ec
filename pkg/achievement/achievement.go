// Package achievement evaluates one-shot accomplishment predicates over
// the session state and pays their score bonus exactly once.
package achievement

import (
	"github.com/luckylarry/romance-engine/pkg/state"
	"github.com/luckylarry/romance-engine/pkg/world"
)

// ScoreBonus is awarded once per unlocked achievement.
const ScoreBonus = 100

// Achievement ids.
const (
	FirstMeeting    = "first_meeting"
	SocialButterfly = "social_butterfly"
	Romantic        = "romantic"
	Player          = "player"
	Collector       = "collector"
	Rich            = "rich"
	PerfectRomance  = "perfect_romance"
	MultiDater      = "multi_dater"
	StoryMaster     = "story_master"
	EmotionMaster   = "emotion_master"
)

// Def describes one achievement.
type Def struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// All lists every achievement in display order.
var All = []Def{
	{FirstMeeting, "First Contact", "Talk to your first NPC", "👋"},
	{SocialButterfly, "Social Butterfly", "Talk to all 5 main NPCs", "🦋"},
	{Romantic, "Romantic", "Reach relationship 50 with any NPC", "💝"},
	{Player, "Player", "Have 3 NPCs at relationship 30+", "🎮"},
	{Collector, "Collector", "Collect 10 different items", "🎒"},
	{Rich, "Rich", "Reach 1000 score", "💰"},
	{PerfectRomance, "Perfect Romance", "Reach 100 relationship with any NPC", "💖"},
	{MultiDater, "Multi-Dater", "Go on dates with 3 different NPCs", "📅"},
	{StoryMaster, "Story Master", "Unlock all story branches for one NPC", "📖"},
	{EmotionMaster, "Emotion Master", "Experience all 8 emotions with NPCs", "💭"},
}

var byID = func() map[string]Def {
	m := make(map[string]Def, len(All))
	for _, d := range All {
		m[d.ID] = d
	}
	return m
}()

// Notifier receives the definition of a newly unlocked achievement.
type Notifier func(Def)

// Evaluator checks achievement predicates against a catalog.
type Evaluator struct {
	catalog *world.Catalog
}

// NewEvaluator creates an achievement evaluator.
func NewEvaluator(c *world.Catalog) *Evaluator {
	return &Evaluator{catalog: c}
}

// Check evaluates one achievement. If its predicate holds and it was not
// already unlocked, it is recorded, the bonus is paid and notify (if
// non-nil) is called. Reports whether the achievement was newly unlocked.
func (e *Evaluator) Check(gs *state.GameState, id string, notify Notifier) bool {
	def, ok := byID[id]
	if !ok || gs.Achievements[id] {
		return false
	}
	if !e.satisfied(gs, id) {
		return false
	}
	gs.Achievements[id] = true
	gs.Score += ScoreBonus
	if notify != nil {
		notify(def)
	}
	return true
}

// CheckAll sweeps every achievement and returns how many newly unlocked.
func (e *Evaluator) CheckAll(gs *state.GameState, notify Notifier) int {
	n := 0
	for _, d := range All {
		if e.Check(gs, d.ID, notify) {
			n++
		}
	}
	return n
}

func (e *Evaluator) satisfied(gs *state.GameState, id string) bool {
	switch id {
	case FirstMeeting:
		return e.anyRelationship(gs, func(r int) bool { return r > 0 })
	case SocialButterfly:
		for _, name := range e.catalog.MainNPCNames() {
			npc := gs.NPCs[name]
			if npc == nil || npc.Relationship <= 0 {
				return false
			}
		}
		return true
	case Romantic:
		return e.anyRelationship(gs, func(r int) bool { return r >= 50 })
	case Player:
		count := 0
		for _, npc := range gs.NPCs {
			if npc.Relationship >= 30 {
				count++
			}
		}
		return count >= 3
	case Collector:
		return len(gs.Inventory) >= 10
	case Rich:
		return gs.Score >= 1000
	case PerfectRomance:
		return e.anyRelationship(gs, func(r int) bool { return r >= 100 })
	case MultiDater:
		completed := 0
		for _, d := range gs.ScheduledDates {
			if d.Completed {
				completed++
			}
		}
		return completed >= 3
	case StoryMaster:
		return e.anyRelationship(gs, func(r int) bool { return r >= 80 })
	case EmotionMaster:
		return gs.EnhancedMode && gs.Score > 500
	default:
		return false
	}
}

func (e *Evaluator) anyRelationship(gs *state.GameState, pred func(int) bool) bool {
	for _, npc := range gs.NPCs {
		if pred(npc.Relationship) {
			return true
		}
	}
	return false
}
