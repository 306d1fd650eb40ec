package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/luckylarry/romance-engine/pkg/achievement"
	"github.com/luckylarry/romance-engine/pkg/date"
	"github.com/luckylarry/romance-engine/pkg/emotion"
	"github.com/luckylarry/romance-engine/pkg/minigame"
	"github.com/luckylarry/romance-engine/pkg/state"
)

// CollectItem picks up an item from the current location. Adult items need
// adult mode; protection restocks the counter instead of the inventory.
func (s *Session) CollectItem(itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, ok := s.catalog.Item(itemID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownItem, itemID)
	}
	loc, ok := s.catalog.Location(s.gs.CurrentLocation)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLocation, s.gs.CurrentLocation)
	}
	present := false
	for _, id := range loc.Items {
		if id == itemID {
			present = true
			break
		}
	}
	if !present || !s.gs.ItemAvailable(loc.ID, itemID) {
		return fmt.Errorf("%w: %q", ErrItemNotHere, itemID)
	}
	if def.Adult && !s.gs.AdultMode {
		return fmt.Errorf("%w: %q", ErrAdultItemLocked, itemID)
	}

	if itemID == "condom" {
		if s.gs.ProtectionCount >= ProtectionCap {
			return ErrProtectionFull
		}
		s.gs.ProtectionCount++
		s.gs.MarkItemCollected(loc.ID, itemID, s.now())
		s.scheduleRespawn(loc.ID, itemID)
		s.notify(fmt.Sprintf("🛡️ Protection restocked! Now have %d.", s.gs.ProtectionCount))
		return nil
	}

	if s.gs.HasItem(itemID) {
		return fmt.Errorf("%w: %q", ErrAlreadyOwned, itemID)
	}
	if err := s.gs.AddItem(itemID); err != nil {
		return err
	}
	s.gs.MarkItemCollected(loc.ID, itemID, s.now())
	s.scheduleRespawn(loc.ID, itemID)

	s.gs.Score += 50
	if def.Adult {
		s.gs.Score += 50
	}
	s.notify(fmt.Sprintf("Picked up %s!", def.Name))

	switch itemID {
	case "flowers":
		s.quests.UpdateProgress(s.gs, 3, 50)
	case "perfume":
		s.quests.UpdateProgress(s.gs, 4, 50)
	case "roomKey":
		s.quests.UpdateProgress(s.gs, 5, 50)
	case "wine", "champagne":
		s.quests.UpdateProgress(s.gs, 6, 10)
	case "drink":
		s.quests.UpdateProgress(s.gs, 2, 30)
	}

	s.achieve.Check(s.gs, achievement.Collector, s.achNotifier())
	s.quests.UpdateOverall(s.gs)
	return nil
}

// scheduleRespawn arms a respawn timer for items the location replenishes.
func (s *Session) scheduleRespawn(locationID, itemID string) {
	loc, ok := s.catalog.Location(locationID)
	if !ok || loc.RespawnSeconds <= 0 {
		return
	}
	respawns := false
	for _, id := range loc.RespawnItems {
		if id == itemID {
			respawns = true
			break
		}
	}
	if !respawns {
		return
	}
	name := itemID
	if def, ok := s.catalog.Item(itemID); ok {
		name = def.Name
	}
	key := "respawn_" + locationID + "_" + itemID
	s.sched.After(key, time.Duration(loc.RespawnSeconds)*time.Second, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.gs.RespawnItem(locationID, itemID)
		s.notify(fmt.Sprintf("%s has respawned!", name))
	})
}

// SelectItem marks an inventory item as the one to use next.
func (s *Session) SelectItem(itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.gs.HasItem(itemID) {
		return fmt.Errorf("%w: %q", ErrNotOwned, itemID)
	}
	s.gs.SelectedItem = itemID
	return nil
}

type itemUse struct {
	mood          int
	relationship  int
	questID       int
	questProgress int
	emotion       emotion.Emotion
}

var itemUses = map[string]itemUse{
	"flowers":   {20, 10, 3, 50, emotion.Joy},
	"drink":     {15, 5, 2, 50, emotion.Joy},
	"wine":      {25, 15, 6, 25, emotion.Trust},
	"champagne": {30, 20, 6, 30, emotion.Joy},
	"perfume":   {25, 15, 4, 50, emotion.Anticipation},
	"roomKey":   {35, 25, 5, 50, emotion.Surprise},
}

// UseSelectedItem presents the selected item to the current NPC, applying
// its mood, relationship and quest effects. Consumables are removed.
func (s *Session) UseSelectedItem() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	itemID := s.gs.SelectedItem
	if itemID == "" {
		return ErrNoSelection
	}
	if !s.gs.HasItem(itemID) {
		s.gs.SelectedItem = ""
		return fmt.Errorf("%w: %q", ErrNotOwned, itemID)
	}
	npcName := s.gs.CurrentNPC

	use, ok := itemUses[itemID]
	if !ok {
		use = itemUse{mood: 5, relationship: 3}
	}
	if itemID == "condom" {
		use = s.condomUse(npcName)
	}

	s.gs.Mood = state.Clamp(s.gs.Mood + use.mood)
	s.updateRelationship(npcName, use.relationship)
	if use.questID != 0 {
		s.quests.UpdateProgress(s.gs, use.questID, use.questProgress)
	}
	if s.gs.EnhancedMode && use.emotion != "" {
		s.emotions.Influence(npcName, use.emotion, 20)
	}
	if use.mood > 0 && use.relationship > 0 {
		s.quests.UpdateProgress(s.gs, 1, 15)
	}
	s.gs.Score += 50

	switch {
	case use.mood > 20:
		s.addMessage(npcName, "Oh my! You really know how to impress a girl!")
	case use.mood > 0:
		replies := []string{
			"Nice try, but not quite.",
			"Interesting choice...",
			"That was... unexpected.",
			"You're full of surprises.",
		}
		s.addMessage(npcName, replies[s.rng.Intn(len(replies))])
	default:
		s.addMessage(npcName, "That was... inappropriate.")
	}

	if def, ok := s.catalog.Item(itemID); ok && def.Consumable {
		s.gs.RemoveItem(itemID)
	}
	s.gs.SelectedItem = ""
	s.quests.UpdateOverall(s.gs)
	return nil
}

// condomUse works out the protection item's reception: welcomed only once
// the relationship is intimate and stock is on hand.
func (s *Session) condomUse(npcName string) itemUse {
	npc := s.gs.NPCState(npcName)
	rel := 0
	if npc != nil {
		rel = npc.Relationship
	}
	if s.gs.AdultMode && rel > 60 {
		if s.gs.ProtectionCount > 0 {
			s.gs.ProtectionCount--
			s.addComment(npcName, "He came prepared... smart and responsible.")
			if s.gs.ProtectionCount <= 1 {
				s.notify(fmt.Sprintf("⚠️ Protection running low: %d left.", s.gs.ProtectionCount))
			}
			return itemUse{40, 30, 6, 50, emotion.Trust}
		}
		return itemUse{mood: -10, relationship: -5}
	}
	s.addComment(npcName, "Too soon, Larry. Way too soon.")
	return itemUse{mood: -20, relationship: -10}
}

// Look surveys the current location: visible items, present characters.
func (s *Session) Look() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.catalog.Location(s.gs.CurrentLocation)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLocation, s.gs.CurrentLocation)
	}
	items := s.gs.AvailableItems(s.catalog, loc.ID)
	desc := fmt.Sprintf("You look around the %s.", loc.Name)
	if len(items) > 0 {
		desc += " You can see: " + strings.Join(items, ", ") + "."
	}
	if len(loc.NPCs) > 0 {
		desc += " Present: " + strings.Join(loc.NPCs, ", ") + "."
	}
	s.quests.UpdateProgress(s.gs, 1, 5)
	s.addComment(s.gs.CurrentNPC, "He's looking around like a lost puppy.")
	return desc, nil
}

// Examine studies the current location closely.
func (s *Session) Examine() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.catalog.Location(s.gs.CurrentLocation)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLocation, s.gs.CurrentLocation)
	}
	s.quests.UpdateProgress(s.gs, 1, 10)
	s.addComment(s.gs.CurrentNPC, "He's examining the surroundings. At least he's observant.")
	return loc.Examine, nil
}

// Move advances to the next unlocked location in catalog order.
func (s *Session) Move() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	locs := s.catalog.Locations
	current := 0
	for i := range locs {
		if locs[i].ID == s.gs.CurrentLocation {
			current = i
			break
		}
	}
	for step := 1; step <= len(locs); step++ {
		next := &locs[(current+step)%len(locs)]
		if s.gs.LocationLocked(s.catalog, next.ID) {
			continue
		}
		s.gs.CurrentLocation = next.ID
		s.addComment(s.gs.CurrentNPC, "He moved to a different location. Persistent, I'll give him that.")
		return next.Name, nil
	}
	return "", ErrLocationLocked
}

// MoveTo jumps directly to a location.
func (s *Session) MoveTo(locationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.catalog.Location(locationID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLocation, locationID)
	}
	if s.gs.LocationLocked(s.catalog, locationID) {
		return fmt.Errorf("%w: %q", ErrLocationLocked, locationID)
	}
	s.gs.CurrentLocation = loc.ID
	return nil
}

var pickupLines = []string{
	"Are you a parking ticket? Because you've got FINE written all over you.",
	"Do you believe in love at first sight, or should I walk by again?",
	"Is it hot in here, or is it just you?",
	"I must be a snowflake, because I've fallen for you.",
	"Are you a magician? Every time I look at you, everyone else disappears.",
}

var flirtWarmReplies = []string{
	"*blushes* You certainly know how to make a girl feel special.",
	"Smooth talker! I like that about you.",
	"*laughs* That's terrible... but charming.",
}

var flirtSimpleReplies = []string{
	"*giggles* You're sweet.",
	"Oh, stop it!",
	"*smiles* Keep trying, Larry.",
}

// Flirt delivers a pickup line. Needs adult mode; reception depends on how
// far along the relationship is.
func (s *Session) Flirt() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.gs.AdultMode {
		return ErrAdultModeRequired
	}
	npcName := s.gs.CurrentNPC
	s.addMessage("Larry", pickupLines[s.rng.Intn(len(pickupLines))])

	npc := s.gs.NPCState(npcName)
	rel := 0
	if npc != nil {
		rel = npc.Relationship
	}
	if rel > 40 {
		pool := flirtSimpleReplies
		if s.gs.AIMode {
			pool = flirtWarmReplies
		}
		s.addMessage(npcName, pool[s.rng.Intn(len(pool))])
		s.gs.Mood = state.Clamp(s.gs.Mood + 15)
		s.updateRelationship(npcName, 10)
		s.quests.UpdateProgress(s.gs, 6, 10)
		s.quests.UpdateProgress(s.gs, 1, 20)
		s.emotions.Influence(npcName, emotion.Joy, 15)
	} else {
		s.addMessage(npcName, "Seriously? Try harder.")
		s.gs.Mood = state.Clamp(s.gs.Mood - 10)
		s.emotions.Influence(npcName, emotion.Anger, 10)
	}
	s.quests.UpdateOverall(s.gs)
	return nil
}

// BuyProtection purchases one unit over the counter. The current location
// must sell it, and stock is capped.
func (s *Session) BuyProtection() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.gs.AdultMode {
		return ErrAdultModeRequired
	}
	loc, ok := s.catalog.Location(s.gs.CurrentLocation)
	if !ok || !loc.SellsProtection {
		return ErrProtectionNotSold
	}
	price := loc.ProtectionPrice
	if price <= 0 {
		price = ProtectionPrice
	}
	if s.gs.Score < price {
		return ErrInsufficientScore
	}
	if s.gs.ProtectionCount >= ProtectionCap {
		return ErrProtectionFull
	}
	s.gs.Score -= price
	s.gs.ProtectionCount++
	s.addMessage("Larry", "*Buys protection* Always be prepared!")
	return nil
}

// ScheduleDate books a date with the NPC at the location. Enhanced mode
// gates the whole dating feature.
func (s *Session) ScheduleDate(npcName, locationID, timeSlot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.gs.EnhancedMode {
		return ErrEnhancedModeRequired
	}
	line, err := s.dates.Schedule(s.gs, npcName, locationID, timeSlot)
	if err != nil {
		return err
	}
	s.addMessage(npcName, line)
	return nil
}

// DateChoice plays one of the four scene moves during an active date.
func (s *Session) DateChoice(choice date.Choice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	npcName := ""
	if s.gs.ActiveDate != nil {
		npcName = s.gs.ActiveDate.NPC
	}
	reply, err := s.dates.Choose(s.gs, choice)
	if err != nil {
		return err
	}
	s.addMessage(npcName, reply)
	return nil
}

// EndDate wraps up the active date.
func (s *Session) EndDate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dates.End(s.gs)
}

// PlayPoker deals a free hand at the casino table.
func (s *Session) PlayPoker() (minigame.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gs.CurrentLocation != "casino" {
		return minigame.Result{}, fmt.Errorf("%w: the poker table is at the casino", ErrUnknownLocation)
	}
	res := s.poker.Deal(s.gs)
	if res.Won {
		s.notify(fmt.Sprintf("🃏 You won the hand! +%d", res.Payout))
	}
	return res, nil
}

// BetPoker stakes a bet and deals a hand.
func (s *Session) BetPoker() (minigame.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gs.CurrentLocation != "casino" {
		return minigame.Result{}, fmt.Errorf("%w: the poker table is at the casino", ErrUnknownLocation)
	}
	return s.poker.Bet(s.gs)
}

// EndingsGallery renders the unlocked endings with their catalog titles
// and descriptions.
func (s *Session) EndingsGallery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.gs.UnlockedEndings) == 0 {
		return "No endings unlocked yet. Keep charming."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Endings unlocked (%d):\n", len(s.gs.UnlockedEndings))
	for _, id := range s.gs.UnlockedEndings {
		npc, kind, ok := strings.Cut(id, "_")
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "💖 %s (%s)\n%s\n", s.catalog.EndingTitle(kind), npc, s.catalog.EndingDescription(npc, kind))
	}
	return strings.TrimRight(b.String(), "\n")
}
