// Package date runs the date flow: scheduling, the date scene with its
// four choices, and wrapping up with quest and achievement credit.
package date

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/luckylarry/romance-engine/pkg/achievement"
	"github.com/luckylarry/romance-engine/pkg/emotion"
	"github.com/luckylarry/romance-engine/pkg/quest"
	"github.com/luckylarry/romance-engine/pkg/state"
	"github.com/luckylarry/romance-engine/pkg/world"
)

var (
	ErrAdultModeRequired   = errors.New("adult mode required for dating")
	ErrRelationshipTooLow  = errors.New("relationship too low for a date")
	ErrLocationUnavailable = errors.New("location not available for dates")
	ErrNoActiveDate        = errors.New("no date in progress")
	ErrChoiceAlreadyMade   = errors.New("date choice already made")
	ErrUnknownChoice       = errors.New("unknown date choice")
	ErrUnknownNPC          = errors.New("unknown npc")
)

// MinRelationship is the relationship needed before an NPC accepts a date.
const MinRelationship = 30

// ChoiceScore is awarded for every resolved date choice.
const ChoiceScore = 100

// Choice is one of the four moves available during a date scene.
type Choice string

const (
	ChoiceCompliment Choice = "compliment"
	ChoiceGift       Choice = "gift"
	ChoiceFlirt      Choice = "flirt"
	ChoiceStory      Choice = "story"
)

// Choices lists the scene moves in display order.
func Choices() []Choice {
	return []Choice{ChoiceCompliment, ChoiceGift, ChoiceFlirt, ChoiceStory}
}

type choiceEffect struct {
	reply        string
	mood         int
	relationship int
	emotion      emotion.Emotion
	influence    int
}

var choiceEffects = map[Choice]choiceEffect{
	ChoiceCompliment: {`"You're too kind!"`, 15, 8, emotion.Joy, 10},
	ChoiceGift:       {`"Another gift? You're spoiling me!"`, 25, 15, emotion.Trust, 15},
	ChoiceFlirt:      {`*giggles* "You're being naughty..."`, 20, 12, emotion.Anticipation, 12},
	ChoiceStory:      {`"That's a beautiful story. Thank you for sharing."`, 18, 10, emotion.Trust, 10},
}

// Orchestrator drives dates against session state.
type Orchestrator struct {
	catalog  *world.Catalog
	emotions *emotion.Store
	quests   *quest.Engine
	achieve  *achievement.Evaluator
	events   quest.Events
	now      func() time.Time
}

// NewOrchestrator creates a date orchestrator. events may be nil.
func NewOrchestrator(c *world.Catalog, emotions *emotion.Store, quests *quest.Engine, achieve *achievement.Evaluator, events quest.Events) *Orchestrator {
	return &Orchestrator{
		catalog:  c,
		emotions: emotions,
		quests:   quests,
		achieve:  achieve,
		events:   events,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Returns the orchestrator for
// chaining.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

func (o *Orchestrator) notify(text string) {
	if o.events != nil {
		o.events.Notify(text)
	}
}

// EligibleNPCs lists NPCs willing to be asked out: active relationships
// above the date threshold.
func (o *Orchestrator) EligibleNPCs(gs *state.GameState) []*state.NPC {
	var out []*state.NPC
	for _, npc := range gs.ActiveRelationships(o.catalog) {
		if npc.Relationship > MinRelationship {
			out = append(out, npc)
		}
	}
	return out
}

// EligibleLocations lists date-capable locations that are not locked.
func (o *Orchestrator) EligibleLocations(gs *state.GameState) []world.Location {
	var out []world.Location
	for _, loc := range o.catalog.Locations {
		if loc.DateAvailable && !gs.LocationLocked(o.catalog, loc.ID) {
			out = append(out, loc)
		}
	}
	return out
}

// Schedule books a date and opens the scene. Scheduling itself is worth
// +10 relationship. Returns the NPC's opening line.
func (o *Orchestrator) Schedule(gs *state.GameState, npcName, locationID, timeSlot string) (string, error) {
	if !gs.AdultMode {
		return "", ErrAdultModeRequired
	}
	npc := gs.NPCState(npcName)
	if npc == nil {
		return "", ErrUnknownNPC
	}
	if npc.Relationship <= MinRelationship {
		return "", fmt.Errorf("%w: %s is at %d", ErrRelationshipTooLow, npcName, npc.Relationship)
	}
	loc, ok := o.catalog.Location(locationID)
	if !ok || !loc.DateAvailable || gs.LocationLocked(o.catalog, locationID) {
		return "", ErrLocationUnavailable
	}

	gs.ScheduledDates = append(gs.ScheduledDates, state.ScheduledDate{
		NPC:      npcName,
		Location: locationID,
		Time:     timeSlot,
	})
	gs.ApplyRelationship(npcName, 10, o.now())
	o.notify(fmt.Sprintf("Date scheduled with %s!", npcName))

	gs.ActiveDate = &state.ActiveDate{NPC: npcName, Location: locationID}
	return o.sceneLine(npcName, loc), nil
}

func (o *Orchestrator) sceneLine(npcName string, loc *world.Location) string {
	if def, ok := o.catalog.NPC(npcName); ok && def.DateLine != "" {
		return strings.ReplaceAll(def.DateLine, "{location}", loc.Name)
	}
	return fmt.Sprintf("Thanks for meeting me here at the %s.", loc.Name)
}

// Choose resolves the player's scene move. A scene allows one move; the
// date then waits to be ended. Returns the NPC's reply.
func (o *Orchestrator) Choose(gs *state.GameState, choice Choice) (string, error) {
	if gs.ActiveDate == nil {
		return "", ErrNoActiveDate
	}
	if gs.ActiveDate.Choices > 0 {
		return "", ErrChoiceAlreadyMade
	}
	eff, ok := choiceEffects[choice]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownChoice, choice)
	}
	npcName := gs.ActiveDate.NPC
	npc := gs.NPCState(npcName)
	if npc == nil {
		return "", ErrUnknownNPC
	}

	o.emotions.Influence(npcName, eff.emotion, eff.influence)
	npc.Mood = state.Clamp(npc.Mood + eff.mood)
	gs.Mood = state.Clamp(gs.Mood + eff.mood)
	_, updated, _ := gs.ApplyRelationship(npcName, eff.relationship, o.now())
	gs.Score += ChoiceScore
	gs.ActiveDate.Choices++
	gs.ActiveDate.Score += eff.mood + eff.relationship

	if updated >= 100 {
		if gs.UnlockEnding(npcName, "perfect") {
			o.notify(fmt.Sprintf("🎉 Perfect Ending Unlocked with %s!", npcName))
		}
		o.achieve.Check(gs, achievement.PerfectRomance, func(d achievement.Def) {
			o.notify(fmt.Sprintf("🏆 Achievement Unlocked: %s! +%d points", d.Name, achievement.ScoreBonus))
		})
	}
	return eff.reply, nil
}

// End closes the scene, marks the booking completed and credits the
// multi-date quest line.
func (o *Orchestrator) End(gs *state.GameState) error {
	if gs.ActiveDate == nil {
		return ErrNoActiveDate
	}
	npcName := gs.ActiveDate.NPC
	for i := range gs.ScheduledDates {
		d := &gs.ScheduledDates[i]
		if d.NPC == npcName && d.Location == gs.ActiveDate.Location && !d.Completed {
			d.Completed = true
			break
		}
	}
	if npc := gs.NPCState(npcName); npc != nil {
		npc.Dated = true
	}
	gs.ActiveDate = nil
	o.notify("Date completed successfully!")

	o.quests.UpdateProgress(gs, 8, 33)
	o.achieve.Check(gs, achievement.MultiDater, func(d achievement.Def) {
		o.notify(fmt.Sprintf("🏆 Achievement Unlocked: %s! +%d points", d.Name, achievement.ScoreBonus))
	})
	return nil
}
