// Package state holds the mutable session state: player stats, inventory,
// per-NPC relationship values, quest progress and unlocked endings. All of
// it serializes to JSON for persistence. Rule evaluation lives in the
// engine packages; this package only stores and bounds the data.
package state

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/luckylarry/romance-engine/pkg/world"
)

const (
	// InitialScore is the player's starting score.
	InitialScore = 250
	// InitialTime is minutes since midnight at session start (12:45).
	InitialTime = 765
	// InitialMood is the player's starting mood.
	InitialMood = 50
	// InitialProtection is the starting protection stock.
	InitialProtection = 3

	// InventoryLimit caps the inventory size.
	InventoryLimit = 12
	// MessageLimit bounds the rolling message log.
	MessageLimit = 15
	// CommentLimit bounds the ambient NPC comment feed.
	CommentLimit = 6
	// RelationshipHistoryLimit bounds per-NPC relationship samples.
	RelationshipHistoryLimit = 20

	// EndingScoreBonus is awarded once per unlocked ending.
	EndingScoreBonus = 1000
)

// ErrInventoryFull is returned when the inventory is at capacity.
var ErrInventoryFull = errors.New("inventory is full")

// NPC is the runtime state of one character. Static profile data stays in
// the world catalog; this is only what changes during play.
type NPC struct {
	Name           string `json:"name"`
	Mood           int    `json:"mood"`
	Relationship   int    `json:"relationship"`
	AdultTolerance int    `json:"adult_tolerance"`
	JealousyLevel  int    `json:"jealousy_level"`
	Intimacy       int    `json:"intimacy"`
	StoryProgress  int    `json:"story_progress"`
	Met            bool   `json:"met"`
	Dated          bool   `json:"dated"`
	QuestIndex     int    `json:"quest_index"`
	Main           bool   `json:"main"`
}

// Quest is the runtime progress of one quest in the global quest line.
type Quest struct {
	ID        int  `json:"id"`
	Progress  int  `json:"progress"`
	Completed bool `json:"completed"`
}

// StoryUnlocks maps an NPC name to the milestone levels already reached.
type StoryUnlocks map[string][]int

// Unlocked reports whether the NPC has reached the given milestone level.
func (su StoryUnlocks) Unlocked(npc string, level int) bool {
	for _, l := range su[npc] {
		if l == level {
			return true
		}
	}
	return false
}

// Add records a newly reached milestone level.
func (su StoryUnlocks) Add(npc string, level int) {
	su[npc] = append(su[npc], level)
}

// RelationshipSample is one point in an NPC's relationship history.
type RelationshipSample struct {
	Value     int       `json:"value"`
	Timestamp time.Time `json:"timestamp"`
	Location  string    `json:"location,omitempty"`
}

// ScheduledDate is a planned date with an NPC at a location.
type ScheduledDate struct {
	NPC       string `json:"npc"`
	Location  string `json:"location"`
	Time      string `json:"time"`
	Completed bool   `json:"completed"`
}

// ActiveDate tracks an in-progress date scene.
type ActiveDate struct {
	NPC      string `json:"npc"`
	Location string `json:"location"`
	Score    int    `json:"score"`
	Choices  int    `json:"choices"`
}

// Message is one chat log entry.
type Message struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// GameState is the full mutable session state.
type GameState struct {
	ID uuid.UUID `json:"id"`

	AgeVerified  bool `json:"age_verified"`
	AdultMode    bool `json:"adult_mode"`
	EnhancedMode bool `json:"enhanced_mode"`
	AIMode       bool `json:"ai_mode"`

	Score        int `json:"score"`
	Time         int `json:"time"`
	Mood         int `json:"mood"`
	Relationship int `json:"relationship"`

	CurrentLocation string `json:"current_location"`
	CurrentNPC      string `json:"current_npc"`

	Inventory       []string `json:"inventory"`
	SelectedItem    string   `json:"selected_item,omitempty"`
	ProtectionCount int      `json:"protection_count"`

	CurrentQuest    int     `json:"current_quest"`
	QuestsCompleted int     `json:"quests_completed"`
	Progress        int     `json:"progress"`
	Quests          []Quest `json:"quests"`

	StoryUnlocks StoryUnlocks `json:"story_unlocks"`

	Achievements map[string]bool `json:"achievements"`

	JealousyLevel int `json:"jealousy_level"`

	// CollectedItems maps "<location>_<item>" to the collection time; a
	// present key means the item is gone from the scene.
	CollectedItems map[string]time.Time `json:"collected_items"`

	// UnlockedLocations lifts a location's catalog lock for this session.
	UnlockedLocations map[string]bool `json:"unlocked_locations"`

	UnlockedEndings []string        `json:"unlocked_endings"`
	ScheduledDates  []ScheduledDate `json:"scheduled_dates"`
	ActiveDate      *ActiveDate     `json:"active_date,omitempty"`

	NPCs map[string]*NPC `json:"npcs"`

	RelationshipHistory map[string][]RelationshipSample `json:"relationship_history"`

	Messages []Message `json:"messages"`
	Comments []string  `json:"comments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewGameState creates a fresh session seeded from the content catalog.
func NewGameState(c *world.Catalog) *GameState {
	gs := &GameState{
		ID:              uuid.New(),
		AIMode:          true,
		Score:           InitialScore,
		Time:            InitialTime,
		Mood:            InitialMood,
		CurrentLocation: "bar",
		CurrentNPC:      "Eve",
		Inventory:       []string{"money", "phone", "carKeys", "sunglasses"},
		ProtectionCount: InitialProtection,
		StoryUnlocks:    make(StoryUnlocks),
		Achievements:    make(map[string]bool),
		CollectedItems:  make(map[string]time.Time),
		UnlockedLocations: make(map[string]bool),
		NPCs:            make(map[string]*NPC),
		RelationshipHistory: make(map[string][]RelationshipSample),
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	for _, def := range c.NPCs {
		gs.NPCs[def.Name] = &NPC{
			Name:           def.Name,
			Mood:           def.BaseMood,
			Relationship:   def.Relationship,
			AdultTolerance: def.AdultTolerance,
			Main:           true,
		}
		// The first-meeting milestone starts unlocked.
		for _, m := range def.Story {
			if m.Level == 0 {
				gs.StoryUnlocks.Add(def.Name, 0)
			}
		}
	}
	for _, def := range c.MinorNPCs {
		gs.NPCs[def.Name] = &NPC{
			Name:           def.Name,
			Mood:           def.Mood,
			Relationship:   def.Relationship,
			AdultTolerance: def.AdultTolerance,
		}
	}

	gs.Quests = make([]Quest, len(c.Quests))
	for i, q := range c.Quests {
		gs.Quests[i] = Quest{ID: q.ID}
	}

	gs.Relationship = gs.NPCs[gs.CurrentNPC].Relationship
	return gs
}

// Clamp bounds a stat to [0,100].
func Clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// NPCState returns the runtime state for the named NPC, or nil.
func (gs *GameState) NPCState(name string) *NPC {
	return gs.NPCs[name]
}

// Quest returns the runtime entry for the quest id, or nil.
func (gs *GameState) Quest(id int) *Quest {
	for i := range gs.Quests {
		if gs.Quests[i].ID == id {
			return &gs.Quests[i]
		}
	}
	return nil
}

// HasItem reports whether the item id is in the inventory.
func (gs *GameState) HasItem(id string) bool {
	for _, it := range gs.Inventory {
		if it == id {
			return true
		}
	}
	return false
}

// AddItem appends an item to the inventory. Duplicates are ignored without
// error; a full inventory returns ErrInventoryFull.
func (gs *GameState) AddItem(id string) error {
	if gs.HasItem(id) {
		return nil
	}
	if len(gs.Inventory) >= InventoryLimit {
		return ErrInventoryFull
	}
	gs.Inventory = append(gs.Inventory, id)
	return nil
}

// RemoveItem deletes an item from the inventory. Reports whether the item
// was present.
func (gs *GameState) RemoveItem(id string) bool {
	for i, it := range gs.Inventory {
		if it == id {
			gs.Inventory = append(gs.Inventory[:i], gs.Inventory[i+1:]...)
			if gs.SelectedItem == id {
				gs.SelectedItem = ""
			}
			return true
		}
	}
	return false
}

// ApplyRelationship adjusts the named NPC's relationship by delta, clamped
// to [0,100], mirrors it into the headline relationship stat and records a
// history sample. Returns the old and new values; ok is false for unknown
// NPCs. Side effects of a relationship change (story checks, jealousy,
// emotions) are driven by the session layer.
func (gs *GameState) ApplyRelationship(name string, delta int, now time.Time) (old, updated int, ok bool) {
	npc := gs.NPCs[name]
	if npc == nil {
		return 0, 0, false
	}
	old = npc.Relationship
	npc.Relationship = Clamp(npc.Relationship + delta)
	gs.Relationship = npc.Relationship
	gs.recordRelationship(name, npc.Relationship, now)
	return old, npc.Relationship, true
}

func (gs *GameState) recordRelationship(name string, value int, now time.Time) {
	h := append(gs.RelationshipHistory[name], RelationshipSample{
		Value:     value,
		Timestamp: now,
		Location:  gs.CurrentLocation,
	})
	if len(h) > RelationshipHistoryLimit {
		h = h[len(h)-RelationshipHistoryLimit:]
	}
	gs.RelationshipHistory[name] = h
}

// ActiveRelationships returns the main NPCs with relationship > 0, highest
// first.
func (gs *GameState) ActiveRelationships(c *world.Catalog) []*NPC {
	var active []*NPC
	for _, name := range c.MainNPCNames() {
		if npc := gs.NPCs[name]; npc != nil && npc.Relationship > 0 {
			active = append(active, npc)
		}
	}
	for i := 1; i < len(active); i++ {
		for j := i; j > 0 && active[j].Relationship > active[j-1].Relationship; j-- {
			active[j], active[j-1] = active[j-1], active[j]
		}
	}
	return active
}

// AvailableNPCs returns the main NPCs present at the current location that
// the player can talk to. Outside adult mode, low-tolerance NPCs are
// filtered out.
func (gs *GameState) AvailableNPCs(c *world.Catalog) []*NPC {
	loc, ok := c.Location(gs.CurrentLocation)
	if !ok {
		return nil
	}
	var out []*NPC
	for _, name := range c.MainNPCNames() {
		npc := gs.NPCs[name]
		if npc == nil {
			continue
		}
		present := false
		for _, n := range loc.NPCs {
			if n == name {
				present = true
				break
			}
		}
		if !present {
			continue
		}
		if !gs.AdultMode && npc.AdultTolerance < 5 {
			continue
		}
		out = append(out, npc)
	}
	return out
}

// UpdateJealousy recomputes the jealousy level from the number of active
// relationships and raises every rival's personal level. Enhanced mode only.
func (gs *GameState) UpdateJealousy(c *world.Catalog) {
	if !gs.EnhancedMode {
		return
	}
	active := gs.ActiveRelationships(c)
	if len(active) <= 1 {
		gs.JealousyLevel = 0
		return
	}
	gs.JealousyLevel = min(100, len(active)*15)
	for _, npc := range active {
		if npc.Name != gs.CurrentNPC {
			npc.JealousyLevel = min(100, npc.JealousyLevel+5)
		}
	}
}

// UnlockEnding records an ending for the NPC and pays the score bonus.
// Reports whether the ending was newly unlocked.
func (gs *GameState) UnlockEnding(npcName, endingType string) bool {
	id := npcName + "_" + endingType
	for _, e := range gs.UnlockedEndings {
		if e == id {
			return false
		}
	}
	gs.UnlockedEndings = append(gs.UnlockedEndings, id)
	gs.Score += EndingScoreBonus
	return true
}

// LocationLocked reports whether a location is still locked, catalog lock
// minus session unlocks.
func (gs *GameState) LocationLocked(c *world.Catalog, id string) bool {
	loc, ok := c.Location(id)
	if !ok {
		return true
	}
	return loc.Locked && !gs.UnlockedLocations[id]
}

// MarkItemCollected removes an item from its scene.
func (gs *GameState) MarkItemCollected(locationID, itemID string, now time.Time) {
	gs.CollectedItems[locationID+"_"+itemID] = now
}

// RespawnItem returns a collected item to its scene.
func (gs *GameState) RespawnItem(locationID, itemID string) {
	delete(gs.CollectedItems, locationID+"_"+itemID)
}

// ItemAvailable reports whether the item is still present in the scene.
func (gs *GameState) ItemAvailable(locationID, itemID string) bool {
	_, collected := gs.CollectedItems[locationID+"_"+itemID]
	return !collected
}

// AvailableItems lists the items currently visible at a location.
func (gs *GameState) AvailableItems(c *world.Catalog, locationID string) []string {
	loc, ok := c.Location(locationID)
	if !ok {
		return nil
	}
	var out []string
	for _, id := range loc.Items {
		if gs.ItemAvailable(locationID, id) {
			out = append(out, id)
		}
	}
	return out
}

// AddMessage appends to the rolling chat log, dropping the oldest entry
// past the limit.
func (gs *GameState) AddMessage(speaker, text string) {
	gs.Messages = append(gs.Messages, Message{Speaker: speaker, Text: text})
	if len(gs.Messages) > MessageLimit {
		gs.Messages = gs.Messages[len(gs.Messages)-MessageLimit:]
	}
}

// AddComment pushes an ambient NPC comment to the front of the feed.
func (gs *GameState) AddComment(text string) {
	gs.Comments = append([]string{text}, gs.Comments...)
	if len(gs.Comments) > CommentLimit {
		gs.Comments = gs.Comments[:CommentLimit]
	}
}
