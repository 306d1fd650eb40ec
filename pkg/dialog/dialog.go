// Package dialog assembles the option list the player sees when talking
// to an NPC. Generation is pure: it reads session state and reports each
// option's effects and availability, while resolution is the session
// layer's job.
package dialog

import (
	"fmt"
	"strings"

	"github.com/luckylarry/romance-engine/pkg/emotion"
	"github.com/luckylarry/romance-engine/pkg/state"
	"github.com/luckylarry/romance-engine/pkg/world"
)

// Kind marks special option behavior at resolution time.
type Kind string

const (
	KindTalk  Kind = "talk"
	KindDate  Kind = "date"
	KindStory Kind = "story"
	KindGift  Kind = "gift"
)

// Option is one selectable dialog line with its effects.
type Option struct {
	Text string `json:"text"`

	Mood         int `json:"mood"`
	Relationship int `json:"relationship"`
	// AdultLevel is how forward the line is; it is checked against the
	// NPC's tolerance. Zero means innocent.
	AdultLevel int `json:"adult_level,omitempty"`

	QuestID       int `json:"quest_id,omitempty"`
	QuestProgress int `json:"quest_progress,omitempty"`

	Smart bool `json:"smart,omitempty"`
	// Emotion is set on options that react to the NPC's current emotion.
	Emotion emotion.Emotion `json:"emotion,omitempty"`
	// InduceEmotion is the emotion the option tries to push the NPC toward.
	InduceEmotion emotion.Emotion `json:"induce_emotion,omitempty"`
	// Item is consumed from the inventory when the option resolves.
	Item string `json:"item,omitempty"`

	Kind        Kind `json:"kind,omitempty"`
	NPCSpecific bool `json:"npc_specific,omitempty"`

	Disabled       bool   `json:"disabled,omitempty"`
	DisabledReason string `json:"disabled_reason,omitempty"`
}

// preferredGifts is the subset of gift items dialog can offer directly.
var preferredGifts = []string{"flowers", "chocolate", "wine", "perfume"}

// Options builds the dialog list for the current NPC. storyStarted is
// whether a character-specific option has already resolved with the NPC,
// which is what opens their personal story line.
func Options(gs *state.GameState, c *world.Catalog, npcName string, current emotion.Emotion, storyStarted bool) []Option {
	npc := gs.NPCState(npcName)
	def, _ := c.NPC(npcName)

	options := []Option{
		{Text: "Compliment her appearance", Mood: 10, Relationship: 5, QuestID: 1, QuestProgress: 30},
		{Text: "Offer a drink", Mood: 5, Relationship: 3, QuestID: 2, QuestProgress: 50},
		{Text: "Tell a joke", Mood: -5, Relationship: 2},
		{Text: "Ask about her interests", Mood: 15, Relationship: 8, QuestID: 1, QuestProgress: 20},
		{Text: "Share a personal story", Mood: 20, Relationship: 12, QuestID: 1, QuestProgress: 25},
	}

	if gs.EnhancedMode && npc != nil {
		options[0].Text = fmt.Sprintf("Compliment %s's appearance", npc.Name)
		options[3].Text = fmt.Sprintf("Ask about %s's interests", npc.Name)

		switch current {
		case emotion.Joy:
			options = append(options, Option{Text: fmt.Sprintf("Make %s laugh", npc.Name), Mood: 15, Relationship: 10, Emotion: emotion.Joy})
		case emotion.Sadness:
			options = append(options, Option{Text: fmt.Sprintf("Cheer up %s", npc.Name), Mood: 20, Relationship: 15, Emotion: emotion.Sadness})
		case emotion.Anger:
			options = append(options, Option{Text: fmt.Sprintf("Calm %s down", npc.Name), Mood: 15, Relationship: 12, Emotion: emotion.Anger})
		}

		if storyStarted {
			options = append(options, Option{Text: fmt.Sprintf("Continue %s's story", npc.Name), Mood: 25, Relationship: 15, Kind: KindStory, NPCSpecific: true})
		}

		if def != nil {
			for _, gift := range preferredGifts {
				if !gs.HasItem(gift) {
					continue
				}
				preferred := false
				for _, p := range def.GiftPreferences {
					if p == gift {
						preferred = true
						break
					}
				}
				if !preferred {
					continue
				}
				name := gift
				if it, ok := c.Item(gift); ok {
					name = it.Name
				}
				options = append(options, Option{Text: fmt.Sprintf("Give %s to %s", name, npc.Name), Mood: 30, Relationship: 20, Item: gift, Kind: KindGift, NPCSpecific: true})
			}
		}

		options = append(options, Option{Text: fmt.Sprintf("Try to make %s happy", npc.Name), Mood: 10, Relationship: 8, InduceEmotion: emotion.Joy})
	}

	if gs.AIMode {
		options = append(options, Option{Text: "Try a clever pickup line", Mood: 15, Relationship: 10, QuestID: 1, QuestProgress: 20, Smart: true})
	}

	if gs.AdultMode && gs.Relationship > 40 {
		options = append(options, Option{Text: "Make a suggestive comment", Mood: -10, Relationship: 10, AdultLevel: 3, QuestID: 6, QuestProgress: 15})
	}
	if gs.AdultMode && gs.Relationship > 60 {
		options = append(options, Option{Text: "Whisper something naughty", Mood: 5, Relationship: 20, AdultLevel: 7, QuestID: 6, QuestProgress: 30})
	}

	if cq := currentQuest(gs, c); cq != nil && !gs.Quest(cq.ID).Completed {
		if cq.ID == 3 && gs.HasItem("flowers") {
			options = append(options, Option{Text: questGiftText(gs, npc, "flowers"), Mood: 30, Relationship: 20, QuestID: 3, QuestProgress: 100})
		}
		if cq.ID == 4 && gs.HasItem("perfume") {
			options = append(options, Option{Text: questGiftText(gs, npc, "perfume"), Mood: 25, Relationship: 15, QuestID: 4, QuestProgress: 100})
		}
	}

	if gs.EnhancedMode && npc != nil && npc.Relationship > 50 {
		options = append(options, Option{Text: fmt.Sprintf("Invite %s on a date", npc.Name), Mood: 20, Relationship: 15, Kind: KindDate, NPCSpecific: true})
	}

	for i := range options {
		markDisabled(gs, npc, &options[i])
	}
	return options
}

func questGiftText(gs *state.GameState, npc *state.NPC, item string) string {
	if gs.EnhancedMode && npc != nil {
		return fmt.Sprintf("Give %s the %s", npc.Name, item)
	}
	return "Give her the " + item
}

// markDisabled applies the availability rules in precedence order; only
// the first failing rule's reason is reported.
func markDisabled(gs *state.GameState, npc *state.NPC, o *Option) {
	tolerance := 5
	if npc != nil {
		tolerance = npc.AdultTolerance
	}

	switch {
	case o.AdultLevel > 0 && !gs.AdultMode:
		o.disable("Adult content disabled")
	case o.AdultLevel > tolerance:
		o.disable("Too forward for this character")
	case strings.Contains(o.Text, "flowers") && !gs.HasItem("flowers"):
		o.disable("You need flowers first!")
	case strings.Contains(o.Text, "perfume") && !gs.HasItem("perfume"):
		o.disable("You need perfume first!")
	case o.Smart && !gs.AIMode:
		o.disable("AI Mode required for smart options")
	case o.Kind == KindDate && !gs.EnhancedMode:
		o.disable("Enhanced Mode required for dating")
	case strings.Contains(o.Text, "drink") && !gs.HasItem("drink") && !gs.ItemAvailable(gs.CurrentLocation, "drink"):
		o.disable("Wait for drinks to respawn at the bar")
	}
}

func (o *Option) disable(reason string) {
	o.Disabled = true
	o.DisabledReason = reason
}

func currentQuest(gs *state.GameState, c *world.Catalog) *world.QuestDef {
	if gs.CurrentQuest < 0 || gs.CurrentQuest >= len(c.Quests) {
		return nil
	}
	return &c.Quests[gs.CurrentQuest]
}
