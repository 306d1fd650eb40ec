// Package world holds the static content catalog: NPCs, locations, items,
// quest definitions and story branches. The catalog is data, not state;
// mutable session values live in pkg/state.
package world

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var contentYAML []byte

// Item is a collectible object in the world.
type Item struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Adult       bool   `yaml:"adult"`
	Consumable  bool   `yaml:"consumable"`
	Restockable bool   `yaml:"restockable"`
}

// Location is a visitable scene.
type Location struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"name"`
	Items           []string `yaml:"items"`
	NPCs            []string `yaml:"npcs"`
	AdultAvailable  bool     `yaml:"adult_available"`
	DateAvailable   bool     `yaml:"date_available"`
	Locked          bool     `yaml:"locked"`
	RespawnItems    []string `yaml:"respawn_items"`
	RespawnSeconds  int      `yaml:"respawn_seconds"`
	SellsProtection bool     `yaml:"sells_protection"`
	ProtectionPrice int      `yaml:"protection_price"`
	Examine         string   `yaml:"examine"`
}

// QuestDef defines one quest in the global ordered quest line.
type QuestDef struct {
	ID          int    `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Objective   string `yaml:"objective"`
	Reward      int    `yaml:"reward"`
	Adult       bool   `yaml:"adult"`
	Enhanced    bool   `yaml:"enhanced"`
}

// Milestone is one story branch, unlocked at a relationship threshold.
type Milestone struct {
	Level       int    `yaml:"level"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// NPCQuestDef is a per-NPC side quest entry.
type NPCQuestDef struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// NPCDef defines a romanceable NPC's static profile.
type NPCDef struct {
	ID              string         `yaml:"id"`
	Name            string         `yaml:"name"`
	Locations       []string       `yaml:"locations"`
	BaseMood        int            `yaml:"base_mood"`
	Relationship    int            `yaml:"relationship"`
	AdultTolerance  int            `yaml:"adult_tolerance"`
	Personality     string         `yaml:"personality"`
	GiftPreferences []string       `yaml:"gift_preferences"`
	Quests          []NPCQuestDef  `yaml:"quests"`
	Greetings       []string       `yaml:"greetings"`
	Compliments     []string       `yaml:"compliments"`
	StoryHooks      []string       `yaml:"story_hooks"`
	Story           []Milestone    `yaml:"story"`
	StoryLines      map[int]string `yaml:"story_lines"`
	DateLine        string         `yaml:"date_line"`
}

// MinorNPCDef is a background character: present in scenes, not romanceable.
type MinorNPCDef struct {
	Name           string `yaml:"name"`
	Mood           int    `yaml:"mood"`
	Relationship   int    `yaml:"relationship"`
	AdultTolerance int    `yaml:"adult_tolerance"`
}

// Catalog is the full static content set.
type Catalog struct {
	NPCs               []NPCDef          `yaml:"npcs"`
	MinorNPCs          []MinorNPCDef     `yaml:"minor_npcs"`
	Locations          []Location        `yaml:"locations"`
	Items              []Item            `yaml:"items"`
	Quests             []QuestDef        `yaml:"quests"`
	EndingTitles       map[string]string `yaml:"ending_titles"`
	EndingDescriptions map[string]string `yaml:"ending_descriptions"`

	npcIndex  map[string]*NPCDef
	itemIndex map[string]*Item
	locIndex  map[string]*Location
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog, parsed once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(contentYAML)
	})
	return defaultCatalog, defaultErr
}

// MustDefault is Default for wiring paths where the embedded catalog is
// known-good (it is validated by tests).
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse unmarshals and indexes a catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal content: %w", err)
	}
	c.npcIndex = make(map[string]*NPCDef, len(c.NPCs))
	for i := range c.NPCs {
		c.npcIndex[c.NPCs[i].Name] = &c.NPCs[i]
	}
	c.itemIndex = make(map[string]*Item, len(c.Items))
	for i := range c.Items {
		c.itemIndex[c.Items[i].ID] = &c.Items[i]
	}
	c.locIndex = make(map[string]*Location, len(c.Locations))
	for i := range c.Locations {
		c.locIndex[c.Locations[i].ID] = &c.Locations[i]
	}
	return &c, nil
}

// NPC looks up a romanceable NPC by name.
func (c *Catalog) NPC(name string) (*NPCDef, bool) {
	n, ok := c.npcIndex[name]
	return n, ok
}

// Item looks up an item by id.
func (c *Catalog) Item(id string) (*Item, bool) {
	it, ok := c.itemIndex[id]
	return it, ok
}

// Location looks up a location by id.
func (c *Catalog) Location(id string) (*Location, bool) {
	l, ok := c.locIndex[id]
	return l, ok
}

// MainNPCNames returns the romanceable NPC names in catalog order.
func (c *Catalog) MainNPCNames() []string {
	names := make([]string, len(c.NPCs))
	for i := range c.NPCs {
		names[i] = c.NPCs[i].Name
	}
	return names
}

// EndingTitle returns the display title for an ending type.
func (c *Catalog) EndingTitle(endingType string) string {
	if t, ok := c.EndingTitles[endingType]; ok {
		return t
	}
	return "Special Ending"
}

// EndingDescription returns the ending text with the NPC name substituted.
func (c *Catalog) EndingDescription(npc, endingType string) string {
	d, ok := c.EndingDescriptions[endingType]
	if !ok {
		d = "You reached a special ending with {npc}."
	}
	return strings.ReplaceAll(d, "{npc}", npc)
}
