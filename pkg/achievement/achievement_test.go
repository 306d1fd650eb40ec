package achievement

import (
	"testing"
	"time"

	"github.com/luckylarry/romance-engine/pkg/state"
	"github.com/luckylarry/romance-engine/pkg/world"
)

func TestCheckUnlocksOnce(t *testing.T) {
	c := world.MustDefault()
	e := NewEvaluator(c)
	gs := state.NewGameState(c)
	before := gs.Score

	var notified []string
	notify := func(d Def) { notified = append(notified, d.ID) }

	// Eve starts at relationship 15, so first contact holds immediately.
	if !e.Check(gs, FirstMeeting, notify) {
		t.Fatal("Expected first_meeting to unlock")
	}
	if gs.Score != before+ScoreBonus {
		t.Errorf("Expected score +%d, got +%d", ScoreBonus, gs.Score-before)
	}
	if len(notified) != 1 || notified[0] != FirstMeeting {
		t.Errorf("Expected one notification for first_meeting, got %v", notified)
	}

	if e.Check(gs, FirstMeeting, notify) {
		t.Error("Expected repeat check to be a no-op")
	}
	if gs.Score != before+ScoreBonus {
		t.Error("Expected no double payout")
	}
}

func TestCheckPredicateNotMet(t *testing.T) {
	c := world.MustDefault()
	e := NewEvaluator(c)
	gs := state.NewGameState(c)

	if e.Check(gs, Romantic, nil) {
		t.Error("Expected romantic to stay locked at relationship 15")
	}
	if e.Check(gs, "bogus", nil) {
		t.Error("Expected unknown id to stay locked")
	}
}

func TestPredicates(t *testing.T) {
	c := world.MustDefault()
	now := time.Unix(1000, 0)

	tests := []struct {
		id    string
		setup func(gs *state.GameState)
	}{
		{Romantic, func(gs *state.GameState) { gs.ApplyRelationship("Eve", 40, now) }},
		{PerfectRomance, func(gs *state.GameState) { gs.ApplyRelationship("Eve", 90, now) }},
		{StoryMaster, func(gs *state.GameState) { gs.ApplyRelationship("Eve", 70, now) }},
		{SocialButterfly, func(gs *state.GameState) {
			for _, name := range c.MainNPCNames() {
				gs.ApplyRelationship(name, 5, now)
			}
		}},
		{Player, func(gs *state.GameState) {
			gs.ApplyRelationship("Eve", 30, now)
			gs.ApplyRelationship("Jessica", 30, now)
			gs.ApplyRelationship("Ashley", 30, now)
		}},
		{Collector, func(gs *state.GameState) {
			for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
				if err := gs.AddItem(id); err != nil {
					t.Fatalf("Failed to fill inventory: %v", err)
				}
			}
		}},
		{Rich, func(gs *state.GameState) { gs.Score = 1000 }},
		{MultiDater, func(gs *state.GameState) {
			gs.ScheduledDates = []state.ScheduledDate{
				{NPC: "Eve", Completed: true},
				{NPC: "Jessica", Completed: true},
				{NPC: "Ashley", Completed: true},
			}
		}},
		{EmotionMaster, func(gs *state.GameState) {
			gs.EnhancedMode = true
			gs.Score = 501
		}},
	}

	e := NewEvaluator(c)
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			gs := state.NewGameState(c)
			if e.Check(gs, tt.id, nil) {
				t.Fatalf("Expected %s locked before setup", tt.id)
			}
			tt.setup(gs)
			if !e.Check(gs, tt.id, nil) {
				t.Errorf("Expected %s to unlock after setup", tt.id)
			}
		})
	}
}

func TestCheckAll(t *testing.T) {
	c := world.MustDefault()
	e := NewEvaluator(c)
	gs := state.NewGameState(c)

	// A fresh session already satisfies first contact (Eve at 15,
	// Bartender at 5).
	n := e.CheckAll(gs, nil)
	if n != 1 {
		t.Errorf("Expected exactly first_meeting on a fresh session, got %d unlocks", n)
	}
	if e.CheckAll(gs, nil) != 0 {
		t.Error("Expected second sweep to unlock nothing")
	}
}
