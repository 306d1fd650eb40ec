package game

import (
	"fmt"
	"math"
	"strings"

	"github.com/luckylarry/romance-engine/pkg/achievement"
	"github.com/luckylarry/romance-engine/pkg/dialog"
	"github.com/luckylarry/romance-engine/pkg/emotion"
	"github.com/luckylarry/romance-engine/pkg/state"
)

// DialogOptions returns the option list for the current conversation.
func (s *Session) DialogOptions() []dialog.Option {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dialogOptionsLocked()
}

func (s *Session) dialogOptionsLocked() []dialog.Option {
	npcName := s.gs.CurrentNPC
	current := s.emotions.Get(npcName).Current
	storyStarted := false
	if npc := s.gs.NPCState(npcName); npc != nil {
		storyStarted = npc.StoryProgress > 0
	}
	return dialog.Options(s.gs, s.catalog, npcName, current, storyStarted)
}

// ChooseOption plays the indexed dialog option. The player's line lands
// immediately; the NPC's reply and all stat effects resolve after the
// configured think delay (inline when zero). Picking a date invitation
// only opens negotiation; the date itself is booked with ScheduleDate.
func (s *Session) ChooseOption(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	opts := s.dialogOptionsLocked()
	if index < 0 || index >= len(opts) {
		return fmt.Errorf("%w: %d", ErrInvalidOption, index)
	}
	opt := opts[index]
	if opt.Disabled {
		return fmt.Errorf("%w: %s", ErrOptionDisabled, opt.DisabledReason)
	}
	npcName := s.gs.CurrentNPC

	s.addMessage("Larry", opt.Text)

	if opt.QuestID != 0 && opt.QuestProgress != 0 {
		s.quests.UpdateProgress(s.gs, opt.QuestID, opt.QuestProgress)
	}

	if opt.Kind == dialog.KindDate {
		s.addMessage(npcName, "A date? I'd like that. Where should we go?")
		return nil
	}

	if opt.InduceEmotion != "" {
		s.emotions.Set(npcName, opt.InduceEmotion, 70)
	}

	// A newer selection supersedes a reply still being "thought about".
	s.sched.Cancel(keyDialog)
	if s.thinkDelay <= 0 {
		s.resolveOptionLocked(opt, npcName)
		return nil
	}
	s.pendingOption = &opt
	s.sched.After(keyDialog, s.thinkDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.pendingOption == nil {
			return
		}
		pending := *s.pendingOption
		s.pendingOption = nil
		s.resolveOptionLocked(pending, s.gs.CurrentNPC)
	})
	return nil
}

func (s *Session) resolveOptionLocked(opt dialog.Option, npcName string) {
	response := s.ai.Response(s.gs, npcName, opt.AdultLevel)
	s.addMessage(npcName, response)

	adjMood := scale(opt.Mood, s.emotions.Modifier(npcName, emotion.ModifierMood))
	adjRel := scale(opt.Relationship, s.emotions.Modifier(npcName, emotion.ModifierResponse))

	s.gs.Mood = state.Clamp(s.gs.Mood + adjMood)
	s.gs.Score += 25 + opt.AdultLevel*10
	if opt.Smart {
		s.gs.Score += 15
	}
	s.updateRelationship(npcName, adjRel)

	if s.gs.EnhancedMode {
		if npc := s.gs.NPCState(npcName); npc != nil {
			npc.Mood = state.Clamp(npc.Mood + adjMood)
			if opt.AdultLevel > 0 {
				npc.Intimacy += opt.AdultLevel
			}
			if opt.NPCSpecific {
				npc.StoryProgress++
			}
		}
		s.enhancedQuestHooks(opt, npcName)
	} else if npcName == "Eve" {
		s.simpleQuestHooks(opt, response)
	}

	s.addComment(npcName, s.ai.Comment(s.gs, npcName, opt.AdultLevel))
	s.checkSpecialEvents(npcName)

	if s.gs.EnhancedMode {
		s.gs.UpdateJealousy(s.catalog)
		if s.gs.JealousyLevel > 50 && s.rng.Float64() > 0.7 {
			s.notify(fmt.Sprintf("%s is getting jealous!", npcName))
		}
	}

	if opt.Item != "" {
		s.gs.RemoveItem(opt.Item)
	}
	s.quests.UpdateOverall(s.gs)
}

func (s *Session) enhancedQuestHooks(opt dialog.Option, npcName string) {
	npc := s.gs.NPCState(npcName)
	if npc == nil {
		return
	}
	if opt.Mood > 0 && opt.Relationship > 0 {
		s.quests.UpdateProgress(s.gs, 7, 5)
		if opt.Smart {
			s.quests.UpdateProgress(s.gs, 1, 15)
		} else {
			s.quests.UpdateProgress(s.gs, 1, 10)
		}
		if npc.Relationship > 20 {
			s.quests.UpdateProgress(s.gs, 11, 10)
		}
		if opt.Emotion != "" {
			s.quests.UpdateProgress(s.gs, 12, 15)
		}
	}
	if npc.Relationship >= 100 {
		s.quests.UpdateProgress(s.gs, 9, 100)
	}

	committed := 0
	for _, active := range s.gs.ActiveRelationships(s.catalog) {
		if active.Relationship >= 50 {
			committed++
		}
	}
	if committed >= 4 {
		s.quests.UpdateProgress(s.gs, 10, 100)
	}
}

func (s *Session) simpleQuestHooks(opt dialog.Option, response string) {
	if opt.Mood > 0 && opt.Relationship > 0 {
		if opt.Smart {
			s.quests.UpdateProgress(s.gs, 1, 15)
		} else {
			s.quests.UpdateProgress(s.gs, 1, 10)
		}
	}
	if strings.Contains(response, "full attention") || strings.Contains(response, "my attention now") {
		s.quests.UpdateProgress(s.gs, 1, 50)
		s.notify("🏆 Eve is fully attentive!")
	}
	if s.gs.Mood > 70 {
		s.quests.UpdateProgress(s.gs, 1, 15)
	}
}

// checkSpecialEvents unlocks the hotel suite once the headline
// relationship reaches 70.
func (s *Session) checkSpecialEvents(npcName string) {
	if s.gs.Relationship >= 70 && s.gs.LocationLocked(s.catalog, "hotelRoom") {
		s.gs.UnlockedLocations["hotelRoom"] = true
		s.notify("🏨 Hotel Suite unlocked! Relationship level reached!")
		s.addComment(npcName, "Maybe we should continue this in my suite...")
	}
}

// Achievements returns the achievement list with unlock states.
func (s *Session) Achievements() []AchievementStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AchievementStatus, len(achievement.All))
	for i, d := range achievement.All {
		out[i] = AchievementStatus{Def: d, Unlocked: s.gs.Achievements[d.ID]}
	}
	return out
}

// AchievementStatus pairs a definition with its unlock state.
type AchievementStatus struct {
	Def      achievement.Def `json:"def"`
	Unlocked bool            `json:"unlocked"`
}

// scale multiplies a delta by an emotion modifier, rounding toward
// negative infinity.
func scale(v int, modifier float64) int {
	return int(math.Floor(float64(v) * modifier))
}
