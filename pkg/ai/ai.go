// Package ai picks NPC reply lines and ambient inner-monologue comments.
// Selection is randomized but every draw goes through an injected rand
// source, so behavior is reproducible under test.
package ai

import (
	"math/rand"

	"github.com/luckylarry/romance-engine/pkg/emotion"
	"github.com/luckylarry/romance-engine/pkg/state"
	"github.com/luckylarry/romance-engine/pkg/story"
	"github.com/luckylarry/romance-engine/pkg/world"
)

// Draw thresholds: a uniform draw above the threshold takes the branch.
const (
	// EmotionResponseChance gates replying straight from the NPC's
	// current emotion.
	EmotionResponseChance = 0.3
	// PersonalityMixChance gates mixing the NPC's own lines into the pool.
	PersonalityMixChance = 0.5
	// StoryLineChance gates surfacing the NPC's story line.
	StoryLineChance = 0.7
)

var (
	aiNeutral = []string{
		"Interesting approach. Let's see where this goes.",
		"You're not like the others. I'll give you that.",
		"That was... unexpected.",
		"You certainly know how to get my attention.",
		"I'm listening. Continue.",
	}
	aiPositive = []string{
		"That's actually quite charming!",
		"You're making this difficult to resist.",
		"I'm starting to see your appeal.",
		"That was surprisingly sweet.",
		"Okay, you've got my full attention now.",
	}
	aiNegative = []string{
		"Seriously? That's your best line?",
		"I've had better conversations with a wall.",
		"You're trying too hard.",
		"That's not going to work on me.",
		"Maybe you should try a different approach.",
	}
	aiAdult = []string{
		"You're being quite forward... I like it.",
		"Now you're speaking my language.",
		"That's bold. Let's see if you can back it up.",
		"You have my attention... and my interest.",
		"Finally, someone who isn't afraid to be direct.",
	}

	simpleNeutral  = []string{"I see.", "Okay.", "Hmm.", "Interesting.", "I understand."}
	simplePositive = []string{"That's nice.", "Good to know.", "Thank you.", "That's interesting.", "I appreciate that."}
	simpleNegative = []string{"I disagree.", "No thank you.", "That's not for me.", "I'd rather not.", "Let's change the subject."}
	simpleAdult    = []string{"That's inappropriate.", "Please be respectful.", "Let's keep it friendly.", "I prefer polite conversation.", "That's not appropriate here."}
)

var emotionComments = map[emotion.Emotion][]string{
	emotion.Joy:          {"I'm really enjoying this!", "He makes me so happy!", "What a wonderful conversation!"},
	emotion.Anger:        {"How annoying!", "I can't believe he said that!", "This is so frustrating!"},
	emotion.Trust:        {"I feel like I can really trust him.", "He's so honest and genuine.", "I can open up to him."},
	emotion.Anticipation: {"I wonder what he'll say next.", "This is getting interesting.", "What's going to happen?"},
}

// Responder selects NPC lines from the catalog, emotion state and story
// progress.
type Responder struct {
	catalog  *world.Catalog
	emotions *emotion.Store
	stories  *story.Tracker
	rng      *rand.Rand
}

// NewResponder creates a line selector drawing from rng.
func NewResponder(c *world.Catalog, emotions *emotion.Store, stories *story.Tracker, rng *rand.Rand) *Responder {
	return &Responder{catalog: c, emotions: emotions, stories: stories, rng: rng}
}

// Response picks the NPC's reply to a dialog option of the given adult
// level. The NPC's current emotion answers directly most of the time;
// otherwise the reply comes from a mood band pool, optionally mixed with
// the NPC's own lines and, in enhanced mode past relationship 20, the
// story line for the current level.
func (r *Responder) Response(gs *state.GameState, npcName string, adultLevel int) string {
	tone := emotion.DialogCompliment
	if adultLevel > 0 {
		tone = emotion.DialogInsult
	}
	if r.rng.Float64() > EmotionResponseChance {
		return r.emotions.Response(npcName, tone, r.rng)
	}

	pool := bandPool(gs.AIMode, gs.AdultMode, gs.Mood, gs.Relationship, adultLevel)

	if def := r.npcDef(npcName); def != nil && r.rng.Float64() > PersonalityMixChance {
		if gs.Mood > 70 && len(def.Compliments) > 0 {
			pool = append(append([]string{}, pool...), def.Compliments...)
		} else if len(def.Greetings) > 0 {
			pool = append(append([]string{}, pool...), def.Greetings...)
		}
	}

	if gs.EnhancedMode && gs.Relationship > 20 && r.rng.Float64() > StoryLineChance {
		pool = append([]string{r.stories.Dialog(npcName, gs.Relationship)}, pool...)
	}

	return pool[r.rng.Intn(len(pool))]
}

// bandPool maps mood and relationship to a response pool. AI mode uses
// bands at 70/40, simple mode at 60/30, with adult pools taking priority.
func bandPool(aiMode, adultMode bool, mood, relationship, adultLevel int) []string {
	if aiMode {
		switch {
		case relationship > 70 && adultLevel > 0 && adultMode:
			return aiAdult
		case mood > 70:
			return aiPositive
		case mood > 40:
			return aiNeutral
		default:
			return aiNegative
		}
	}
	switch {
	case adultLevel > 0 && adultMode:
		return simpleAdult
	case mood > 60:
		return simplePositive
	case mood > 30:
		return simpleNeutral
	default:
		return simpleNegative
	}
}

// Comment produces the NPC's ambient aside about the exchange. Half the
// time it voices the current emotion; otherwise it draws from a pool
// shaped by AI mode, player mood and relationship.
func (r *Responder) Comment(gs *state.GameState, npcName string, adultLevel int) string {
	if r.rng.Float64() > 0.5 {
		st := r.emotions.Get(npcName)
		if lines, ok := emotionComments[st.Current]; ok {
			return lines[r.rng.Intn(len(lines))]
		}
	}

	var pool []string
	if gs.AIMode {
		pool = []string{
			"He actually said something interesting for once.",
			"I might give him a chance if he keeps this up.",
			"Same old lines, different guy.",
			"There might be hope for him yet.",
			"I wonder if he knows how transparent he is.",
		}
		if adultLevel > 0 && gs.AdultMode {
			pool = append(pool,
				"He's being quite forward... I like that.",
				"Finally someone who isn't afraid to go there.",
				"This could get interesting...",
				"He knows what he wants, I'll give him that.",
				"Maybe tonight won't be so boring after all.",
			)
		}
		if gs.Mood > 70 {
			pool = append(pool, "I'm actually enjoying this conversation!", "He's not like the others...")
		} else if gs.Mood < 30 {
			pool = append(pool, "How much longer do I have to pretend to be interested?", "This is getting painful to watch.")
		}
		if gs.Relationship > 50 {
			pool = append(pool, "He's growing on me...")
		}
	} else {
		pool = []string{
			"He's talking to me.",
			"Another conversation.",
			"I should respond.",
			"What should I say?",
			"This is a conversation.",
		}
		if adultLevel > 0 && gs.AdultMode {
			pool = append(pool, "That was forward.", "Direct approach.")
		}
		if gs.Mood > 70 {
			pool = append(pool, "Nice conversation.", "Enjoying this.")
		} else if gs.Mood < 30 {
			pool = append(pool, "Not great.", "Could be better.")
		}
	}
	return pool[r.rng.Intn(len(pool))]
}

func (r *Responder) npcDef(npcName string) *world.NPCDef {
	if def, ok := r.catalog.NPC(npcName); ok {
		return def
	}
	// Unknown speakers borrow Eve's lines.
	if def, ok := r.catalog.NPC("Eve"); ok {
		return def
	}
	return nil
}
