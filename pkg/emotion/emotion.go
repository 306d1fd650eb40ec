// Package emotion tracks per-NPC affective state: a dominant emotion with
// an intensity, a bounded history, and the multipliers that emotion applies
// to mood and response deltas elsewhere in the engine.
package emotion

import (
	"math/rand"
	"time"
)

// Emotion is one of the eight basic emotions an NPC can hold.
type Emotion string

const (
	Joy          Emotion = "joy"
	Anger        Emotion = "anger"
	Trust        Emotion = "trust"
	Anticipation Emotion = "anticipation"
	Sadness      Emotion = "sadness"
	Disgust      Emotion = "disgust"
	Fear         Emotion = "fear"
	Surprise     Emotion = "surprise"
)

// ModifierKind selects which multiplier of the current emotion to read.
type ModifierKind string

const (
	ModifierMood     ModifierKind = "mood"
	ModifierResponse ModifierKind = "response"
)

// Modifiers are the multipliers an emotion applies to mood and
// relationship (response) deltas.
type Modifiers struct {
	Mood     float64
	Response float64
}

var modifiers = map[Emotion]Modifiers{
	Joy:          {Mood: 1.2, Response: 1.3},
	Anger:        {Mood: 0.8, Response: 0.7},
	Trust:        {Mood: 1.1, Response: 1.2},
	Anticipation: {Mood: 1.0, Response: 1.1},
	Sadness:      {Mood: 0.9, Response: 0.9},
	Disgust:      {Mood: 0.7, Response: 0.8},
	Fear:         {Mood: 0.8, Response: 0.9},
	Surprise:     {Mood: 1.0, Response: 1.1},
}

// All lists every emotion, in wheel order.
func All() []Emotion {
	return []Emotion{Joy, Anger, Trust, Anticipation, Sadness, Disgust, Fear, Surprise}
}

// Valid reports whether e is one of the eight known emotions.
func Valid(e Emotion) bool {
	_, ok := modifiers[e]
	return ok
}

const (
	// DefaultIntensity is the intensity assigned on lazy initialization
	// and after an emotion flip.
	DefaultIntensity = 50

	// FlipThreshold is the intensity at or below which contrary pressure
	// switches the dominant emotion.
	FlipThreshold = 30

	// HistoryLimit bounds the per-NPC emotion history.
	HistoryLimit = 10
)

// Entry is one recorded emotion change.
type Entry struct {
	Emotion   Emotion   `json:"emotion"`
	Intensity int       `json:"intensity"`
	Timestamp time.Time `json:"timestamp"`
	Location  string    `json:"location,omitempty"`
}

// State is the current affective state of one NPC.
type State struct {
	Current   Emotion `json:"current"`
	Intensity int     `json:"intensity"`
	History   []Entry `json:"history,omitempty"`
}

// Store keeps emotion state keyed by NPC name. State is created lazily on
// first reference and lives for the session; it is not part of the save
// snapshot.
type Store struct {
	states map[string]*State

	now      func() time.Time
	location func() string
}

// NewStore creates an empty emotion store. location reports the player's
// current location for history entries and may be nil.
func NewStore(location func() string) *Store {
	return &Store{
		states:   make(map[string]*State),
		now:      time.Now,
		location: location,
	}
}

// WithClock overrides the store's time source. Returns the store for chaining.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Get returns the NPC's emotion state, initializing it to
// (anticipation, 50) if absent.
func (s *Store) Get(npc string) *State {
	st, ok := s.states[npc]
	if !ok {
		st = &State{Current: Anticipation, Intensity: DefaultIntensity}
		s.states[npc] = st
	}
	return st
}

// Set overwrites the NPC's current emotion, clamping intensity to [0,100]
// and appending a history entry.
func (s *Store) Set(npc string, e Emotion, intensity int) {
	st := s.Get(npc)
	st.Current = e
	st.Intensity = clamp(intensity)

	loc := ""
	if s.location != nil {
		loc = s.location()
	}
	st.History = append(st.History, Entry{
		Emotion:   e,
		Intensity: intensity,
		Timestamp: s.now(),
		Location:  loc,
	})
	if len(st.History) > HistoryLimit {
		st.History = st.History[len(st.History)-HistoryLimit:]
	}
}

// Influence applies pressure toward e. Pressure on the current emotion
// raises its intensity; contrary pressure drains the current emotion, and
// once it is worn down to FlipThreshold or below, the dominant emotion
// switches to e at DefaultIntensity.
func (s *Store) Influence(npc string, e Emotion, amount int) {
	st := s.Get(npc)
	if st.Current == e {
		st.Intensity = clamp(st.Intensity + amount)
		return
	}
	st.Intensity = clamp(st.Intensity - amount)
	if st.Intensity <= FlipThreshold {
		s.Set(npc, e, DefaultIntensity)
	}
}

// Modifier returns the current emotion's multiplier of the given kind.
// Unknown emotions and kinds yield a neutral 1.0.
func (s *Store) Modifier(npc string, kind ModifierKind) float64 {
	st := s.Get(npc)
	m, ok := modifiers[st.Current]
	if !ok {
		return 1.0
	}
	switch kind {
	case ModifierMood:
		return m.Mood
	case ModifierResponse:
		return m.Response
	default:
		return 1.0
	}
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// DialogType distinguishes the tone the player just used.
type DialogType string

const (
	DialogCompliment DialogType = "compliment"
	DialogInsult     DialogType = "insult"
)

var emotionResponses = map[Emotion]map[DialogType][]string{
	Joy: {
		DialogCompliment: {"You're making me smile!", "That's so sweet of you!", "I'm really happy right now!"},
		DialogInsult:     {"That's not nice...", "Why would you say that?", "I was having such a good mood..."},
	},
	Anger: {
		DialogCompliment: {"Save it.", "Too little too late.", "I'm not in the mood."},
		DialogInsult:     {"How dare you!", "That's it, I'm done!", "You've crossed a line!"},
	},
	Trust: {
		DialogCompliment: {"I feel I can really open up to you.", "You're so understanding.", "I trust you completely."},
		DialogInsult:     {"I thought I could trust you...", "This really hurts coming from you.", "My trust was misplaced."},
	},
}

var neutralResponses = []string{"I see.", "Interesting.", "Okay."}

// Response picks a canned line for the NPC's current emotion and the
// player's tone, falling back to a neutral pool.
func (s *Store) Response(npc string, dt DialogType, rng *rand.Rand) string {
	st := s.Get(npc)
	pool := neutralResponses
	if byType, ok := emotionResponses[st.Current]; ok {
		if lines, ok := byType[dt]; ok && len(lines) > 0 {
			pool = lines
		}
	}
	return pool[rng.Intn(len(pool))]
}
