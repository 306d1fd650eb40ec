package date

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/luckylarry/romance-engine/pkg/achievement"
	"github.com/luckylarry/romance-engine/pkg/emotion"
	"github.com/luckylarry/romance-engine/pkg/quest"
	"github.com/luckylarry/romance-engine/pkg/state"
	"github.com/luckylarry/romance-engine/pkg/world"
)

type recorder struct{ notifications []string }

func (r *recorder) Notify(text string)           { r.notifications = append(r.notifications, text) }
func (r *recorder) Message(speaker, text string) {}
func (r *recorder) Comment(npc, text string)     {}

func (r *recorder) has(substr string) bool {
	for _, n := range r.notifications {
		if strings.Contains(n, substr) {
			return true
		}
	}
	return false
}

func setup(t *testing.T) (*Orchestrator, *state.GameState, *recorder) {
	t.Helper()
	c := world.MustDefault()
	rec := &recorder{}
	achieve := achievement.NewEvaluator(c)
	quests := quest.NewEngine(c, achieve, rec)
	emotions := emotion.NewStore(nil)
	o := NewOrchestrator(c, emotions, quests, achieve, rec).
		WithClock(func() time.Time { return time.Unix(1000, 0) })
	gs := state.NewGameState(c)
	gs.AdultMode = true
	return o, gs, rec
}

func TestScheduleRequiresAdultMode(t *testing.T) {
	o, gs, _ := setup(t)
	gs.AdultMode = false

	if _, err := o.Schedule(gs, "Eve", "bar", "Evening"); !errors.Is(err, ErrAdultModeRequired) {
		t.Errorf("Expected ErrAdultModeRequired, got %v", err)
	}
}

func TestScheduleRequiresRelationship(t *testing.T) {
	o, gs, _ := setup(t)

	// Eve starts at 15, below the threshold.
	if _, err := o.Schedule(gs, "Eve", "bar", "Evening"); !errors.Is(err, ErrRelationshipTooLow) {
		t.Errorf("Expected ErrRelationshipTooLow, got %v", err)
	}
	if _, err := o.Schedule(gs, "Nobody", "bar", "Evening"); !errors.Is(err, ErrUnknownNPC) {
		t.Errorf("Expected ErrUnknownNPC, got %v", err)
	}
}

func TestScheduleRejectsLockedLocation(t *testing.T) {
	o, gs, _ := setup(t)
	gs.ApplyRelationship("Eve", 40, time.Unix(1000, 0))

	if _, err := o.Schedule(gs, "Eve", "hotelRoom", "Night"); !errors.Is(err, ErrLocationUnavailable) {
		t.Errorf("Expected ErrLocationUnavailable for the locked suite, got %v", err)
	}
}

func TestScheduleOpensScene(t *testing.T) {
	o, gs, rec := setup(t)
	gs.ApplyRelationship("Eve", 40, time.Unix(1000, 0)) // 55

	line, err := o.Schedule(gs, "Eve", "beach", "Evening")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(line, "Sunset Beach") {
		t.Errorf("Expected location name in opening line, got %q", line)
	}
	// Scheduling pays +10 relationship.
	if got := gs.NPCs["Eve"].Relationship; got != 65 {
		t.Errorf("Expected relationship 65 after scheduling, got %d", got)
	}
	if gs.ActiveDate == nil || gs.ActiveDate.NPC != "Eve" {
		t.Fatal("Expected active date with Eve")
	}
	if len(gs.ScheduledDates) != 1 {
		t.Errorf("Expected 1 scheduled date, got %d", len(gs.ScheduledDates))
	}
	if !rec.has("Date scheduled with Eve") {
		t.Error("Expected scheduling notification")
	}
}

func TestChooseAppliesEffects(t *testing.T) {
	o, gs, _ := setup(t)
	gs.ApplyRelationship("Eve", 40, time.Unix(1000, 0))
	if _, err := o.Schedule(gs, "Eve", "beach", "Evening"); err != nil {
		t.Fatal(err)
	}
	scoreBefore := gs.Score
	moodBefore := gs.Mood

	reply, err := o.Choose(gs, ChoiceGift)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(reply, "spoiling me") {
		t.Errorf("Unexpected reply: %q", reply)
	}
	if gs.Score != scoreBefore+ChoiceScore {
		t.Errorf("Expected score +%d, got +%d", ChoiceScore, gs.Score-scoreBefore)
	}
	if gs.Mood != moodBefore+25 {
		t.Errorf("Expected mood +25, got %d", gs.Mood)
	}
	if got := gs.NPCs["Eve"].Relationship; got != 80 {
		t.Errorf("Expected relationship 65+15=80, got %d", got)
	}

	// One move per scene.
	if _, err := o.Choose(gs, ChoiceFlirt); !errors.Is(err, ErrChoiceAlreadyMade) {
		t.Errorf("Expected ErrChoiceAlreadyMade, got %v", err)
	}
}

func TestChooseUnknownChoice(t *testing.T) {
	o, gs, _ := setup(t)
	gs.ApplyRelationship("Eve", 40, time.Unix(1000, 0))
	if _, err := o.Schedule(gs, "Eve", "beach", "Evening"); err != nil {
		t.Fatal(err)
	}
	if _, err := o.Choose(gs, Choice("dance")); !errors.Is(err, ErrUnknownChoice) {
		t.Errorf("Expected ErrUnknownChoice, got %v", err)
	}
}

func TestChooseWithoutDate(t *testing.T) {
	o, gs, _ := setup(t)
	if _, err := o.Choose(gs, ChoiceGift); !errors.Is(err, ErrNoActiveDate) {
		t.Errorf("Expected ErrNoActiveDate, got %v", err)
	}
	if err := o.End(gs); !errors.Is(err, ErrNoActiveDate) {
		t.Errorf("Expected ErrNoActiveDate from End, got %v", err)
	}
}

func TestPerfectEndingDuringDate(t *testing.T) {
	o, gs, rec := setup(t)
	gs.ApplyRelationship("Eve", 70, time.Unix(1000, 0)) // 85
	if _, err := o.Schedule(gs, "Eve", "beach", "Evening"); err != nil {
		t.Fatal(err)
	}
	scoreBefore := gs.Score

	// 95 + 15 saturates at 100 and unlocks the perfect ending.
	if _, err := o.Choose(gs, ChoiceGift); err != nil {
		t.Fatal(err)
	}
	if gs.NPCs["Eve"].Relationship != 100 {
		t.Fatalf("Expected relationship clamped at 100, got %d", gs.NPCs["Eve"].Relationship)
	}
	if len(gs.UnlockedEndings) != 1 || gs.UnlockedEndings[0] != "Eve_perfect" {
		t.Errorf("Expected Eve_perfect unlocked, got %v", gs.UnlockedEndings)
	}
	if gs.Score != scoreBefore+ChoiceScore+state.EndingScoreBonus+achievement.ScoreBonus {
		t.Errorf("Expected choice, ending and achievement bonuses, got +%d", gs.Score-scoreBefore)
	}
	if !rec.has("Perfect Ending Unlocked with Eve") {
		t.Error("Expected ending notification")
	}
	// The achievement fires with the ending, not on a later sweep.
	if !gs.Achievements[achievement.PerfectRomance] {
		t.Error("Expected perfect_romance unlocked with the ending")
	}
	if !rec.has("Perfect Romance") {
		t.Error("Expected achievement notification")
	}
}

func TestEndCreditsQuestAndAchievement(t *testing.T) {
	o, gs, _ := setup(t)
	gs.EnhancedMode = true // quest 8 is enhanced-gated
	now := time.Unix(1000, 0)

	for i, npcName := range []string{"Eve", "Jessica", "Ashley"} {
		gs.ApplyRelationship(npcName, 40, now)
		if _, err := o.Schedule(gs, npcName, "beach", "Evening"); err != nil {
			t.Fatalf("Failed to schedule with %s: %v", npcName, err)
		}
		if err := o.End(gs); err != nil {
			t.Fatalf("Failed to end date %d: %v", i, err)
		}
	}

	if gs.ActiveDate != nil {
		t.Error("Expected no active date after End")
	}
	for _, d := range gs.ScheduledDates {
		if !d.Completed {
			t.Errorf("Expected date with %s marked completed", d.NPC)
		}
	}
	if !gs.NPCs["Eve"].Dated {
		t.Error("Expected Eve marked dated")
	}
	// Three dates at +33 do not reach 100 on their own (99), so quest 8
	// stays open; the achievement fires on the third completion.
	if got := gs.Quest(8).Progress; got != 99 && !gs.Quest(8).Completed {
		t.Errorf("Expected quest 8 at 99%%, got %d", got)
	}
	if !gs.Achievements[achievement.MultiDater] {
		t.Error("Expected multi_dater achievement after 3 dates")
	}
}
