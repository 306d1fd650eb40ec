// Package quest drives the global quest line: progress accumulation with
// its gates and floors, completion payouts, per-quest completion effects
// and the overall progress figure.
package quest

import (
	"fmt"

	"github.com/luckylarry/romance-engine/pkg/achievement"
	"github.com/luckylarry/romance-engine/pkg/state"
	"github.com/luckylarry/romance-engine/pkg/world"
)

// Events receives the player-visible side effects of quest evaluation.
// Implementations decide where they go (HTTP response, TUI, log).
type Events interface {
	// Notify surfaces a transient notification.
	Notify(text string)
	// Message appends a chat line from an NPC.
	Message(speaker, text string)
	// Comment appends an ambient NPC comment.
	Comment(npc, text string)
}

// Engine evaluates quest progress against session state.
type Engine struct {
	catalog *world.Catalog
	achieve *achievement.Evaluator
	events  Events

	// moodModifier reports the current NPC's emotion mood multiplier.
	// Progress gained in enhanced mode is scaled by it.
	moodModifier func(npc string) float64
}

// NewEngine creates a quest engine. events may be nil.
func NewEngine(c *world.Catalog, achieve *achievement.Evaluator, events Events) *Engine {
	return &Engine{catalog: c, achieve: achieve, events: events}
}

// WithMoodModifier wires the per-NPC emotion multiplier used to scale
// enhanced-mode progress. Returns the engine for chaining.
func (e *Engine) WithMoodModifier(fn func(npc string) float64) *Engine {
	e.moodModifier = fn
	return e
}

func (e *Engine) notify(text string) {
	if e.events != nil {
		e.events.Notify(text)
	}
}

func (e *Engine) message(speaker, text string) {
	if e.events != nil {
		e.events.Message(speaker, text)
	}
}

func (e *Engine) comment(npc, text string) {
	if e.events != nil {
		e.events.Comment(npc, text)
	}
}

func (e *Engine) achievementNotifier() achievement.Notifier {
	return func(d achievement.Def) {
		e.notify(fmt.Sprintf("🏆 Achievement Unlocked: %s! +%d points", d.Name, achievement.ScoreBonus))
	}
}

// UpdateProgress adds amount to a quest's progress. Completed quests and
// enhanced quests outside enhanced mode ignore it. Quest 1 has two floors:
// Eve above relationship 40 or player mood above 70 raises small gains to
// at least 30, and a headline relationship above 50 completes it outright.
// In enhanced mode the amount is then scaled by the current NPC's emotion
// mood multiplier, rounded down. Progress never leaves [0,100]; hitting
// 100 completes the quest.
func (e *Engine) UpdateProgress(gs *state.GameState, questID, amount int) {
	q := gs.Quest(questID)
	def := e.def(questID)
	if q == nil || def == nil || q.Completed {
		return
	}
	if def.Enhanced && !gs.EnhancedMode {
		return
	}

	actual := amount
	if questID == 1 {
		if eve := gs.NPCs["Eve"]; eve != nil && (eve.Relationship > 40 || gs.Mood > 70) {
			if actual < 30 {
				actual = 30
			}
		}
		if gs.Relationship > 50 {
			actual = 100
		}
	}

	if gs.EnhancedMode && gs.CurrentNPC != "" && e.moodModifier != nil {
		actual = int(float64(actual) * e.moodModifier(gs.CurrentNPC))
	}

	old := q.Progress
	q.Progress = state.Clamp(q.Progress + actual)
	if q.Progress == old {
		return
	}

	if actual >= 10 {
		e.notify(fmt.Sprintf("Quest Progress: %s (%d%%)", def.Name, q.Progress))
	}
	if q.Progress >= 100 {
		e.Complete(gs, questID)
	}
}

// Complete finishes a quest: pays the reward, advances the active quest
// pointer to the next available quest, recomputes overall progress and
// fires the quest's completion effects. Reports whether the quest was
// newly completed.
func (e *Engine) Complete(gs *state.GameState, questID int) bool {
	q := gs.Quest(questID)
	def := e.def(questID)
	if q == nil || def == nil || q.Completed {
		return false
	}

	q.Completed = true
	gs.Score += def.Reward
	gs.QuestsCompleted++
	e.notify(fmt.Sprintf("🎉 Quest Completed: %s! +%d points", def.Name, def.Reward))

	if next := e.nextAvailable(gs); next != -1 {
		gs.CurrentQuest = next
	}
	e.UpdateOverall(gs)

	e.achieve.Check(gs, achievement.FirstMeeting, e.achievementNotifier())
	e.completionEffects(gs, questID)
	return true
}

func (e *Engine) completionEffects(gs *state.GameState, questID int) {
	switch questID {
	case 1:
		e.message("Eve", "Well, you definitely have my attention now! What's next?")
		e.comment("Eve", "He actually did it. He got my full attention. Now I'm curious...")
	case 2:
		e.message("Eve", "Thanks for the drink! That was sweet of you.")
	case 6:
		e.message("Eve", "That was... amazing.")
		e.comment("Eve", "I think I might actually like this guy...")
	case 7:
		e.notify("🏆 All NPCs encountered!")
		e.achieve.Check(gs, achievement.SocialButterfly, e.achievementNotifier())
	case 9:
		if npc := gs.NPCs[gs.CurrentNPC]; npc != nil {
			if gs.UnlockEnding(npc.Name, "perfect") {
				e.notify(fmt.Sprintf("🎉 Perfect Ending Unlocked with %s!", npc.Name))
			}
			e.achieve.Check(gs, achievement.PerfectRomance, e.achievementNotifier())
		}
	case 11:
		e.notify("📖 Story Teller achievement progress!")
	case 12:
		e.notify("💖 Emotion Master achievement progress!")
	}
}

// UpdateOverall recomputes overall progress as the completed share of the
// quests available in the current mode, and announces quarter milestones.
func (e *Engine) UpdateOverall(gs *state.GameState) int {
	available, completed := 0, 0
	for _, def := range e.catalog.Quests {
		if def.Enhanced && !gs.EnhancedMode {
			continue
		}
		available++
		if q := gs.Quest(def.ID); q != nil && q.Completed {
			completed++
		}
	}
	progress := 0
	if available > 0 {
		progress = completed * 100 / available
	}
	gs.Progress = progress

	if progress > 0 && progress%25 == 0 {
		switch progress {
		case 25:
			e.notify("🏆 25% Progress! Keep going!")
		case 50:
			e.notify("🏆 50% Progress! Halfway there!")
		case 75:
			e.notify("🏆 75% Progress! Almost there!")
		case 100:
			e.notify("🎉 100% Progress! All quests completed!")
		}
	}
	return progress
}

// nextAvailable returns the index of the first incomplete quest playable
// in the current mode, or -1.
func (e *Engine) nextAvailable(gs *state.GameState) int {
	for i, def := range e.catalog.Quests {
		q := gs.Quest(def.ID)
		if q == nil || q.Completed {
			continue
		}
		if def.Enhanced && !gs.EnhancedMode {
			continue
		}
		return i
	}
	return -1
}

func (e *Engine) def(questID int) *world.QuestDef {
	for i := range e.catalog.Quests {
		if e.catalog.Quests[i].ID == questID {
			return &e.catalog.Quests[i]
		}
	}
	return nil
}
