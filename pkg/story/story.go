// Package story tracks per-NPC narrative milestones unlocked by
// relationship level.
package story

import (
	"github.com/luckylarry/romance-engine/pkg/state"
	"github.com/luckylarry/romance-engine/pkg/world"
)

// FallbackDialog is returned when an NPC has no line for the requested
// milestone level.
const FallbackDialog = "I'm enjoying our conversation."

// Tracker evaluates catalog milestones against session state.
type Tracker struct {
	catalog *world.Catalog
}

// NewTracker creates a milestone tracker over the content catalog.
func NewTracker(c *world.Catalog) *Tracker {
	return &Tracker{catalog: c}
}

// CheckProgress unlocks every milestone the NPC's relationship level has
// reached and returns only the newly unlocked ones, in ascending level
// order. Calling it again at the same level returns nothing.
func (t *Tracker) CheckProgress(gs *state.GameState, npcName string, relationship int) []world.Milestone {
	def, ok := t.catalog.NPC(npcName)
	if !ok {
		return nil
	}
	var fresh []world.Milestone
	for _, m := range def.Story {
		if relationship < m.Level {
			continue
		}
		if gs.StoryUnlocks.Unlocked(npcName, m.Level) {
			continue
		}
		gs.StoryUnlocks.Add(npcName, m.Level)
		fresh = append(fresh, m)
	}
	return fresh
}

// Dialog returns the NPC's line for an exact milestone level. Levels
// between milestones get the generic fallback; unlocking and having a line
// are deliberately separate (a milestone can unlock at 41 without the
// level-40 line playing).
func (t *Tracker) Dialog(npcName string, level int) string {
	def, ok := t.catalog.NPC(npcName)
	if !ok {
		return FallbackDialog
	}
	if line, ok := def.StoryLines[level]; ok {
		return line
	}
	return FallbackDialog
}

// UnlockedCount counts every unlocked milestone across all NPCs, first
// meetings included.
func (t *Tracker) UnlockedCount(gs *state.GameState) int {
	n := 0
	for _, levels := range gs.StoryUnlocks {
		n += len(levels)
	}
	return n
}

// CompletedNPC reports whether every milestone for the NPC is unlocked.
func (t *Tracker) CompletedNPC(gs *state.GameState, npcName string) bool {
	def, ok := t.catalog.NPC(npcName)
	if !ok {
		return false
	}
	for _, m := range def.Story {
		if !gs.StoryUnlocks.Unlocked(npcName, m.Level) {
			return false
		}
	}
	return true
}
