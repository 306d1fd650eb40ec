package game

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/luckylarry/romance-engine/pkg/date"
	"github.com/luckylarry/romance-engine/pkg/dialog"
	"github.com/luckylarry/romance-engine/pkg/world"
)

func newTestSession(t *testing.T) (*Session, *Recorder) {
	t.Helper()
	c, err := world.Default()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	rec := &Recorder{}
	s := NewSession(c, Config{
		Events: rec,
		Rand:   rand.New(rand.NewSource(1)),
	})
	return s, rec
}

func TestNewSessionDefaults(t *testing.T) {
	s, _ := newTestSession(t)

	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.CurrentNPC != "Eve" {
		t.Errorf("Expected current NPC Eve, got %s", snap.CurrentNPC)
	}
	if snap.CurrentLocation != "bar" {
		t.Errorf("Expected starting location bar, got %s", snap.CurrentLocation)
	}
	if snap.Score != 250 {
		t.Errorf("Expected starting score 250, got %d", snap.Score)
	}

	opts := s.DialogOptions()
	// Five base options plus the smart pickup line from AI mode.
	if len(opts) != 6 {
		t.Errorf("Expected 6 dialog options, got %d", len(opts))
	}
}

func TestChooseOptionResolvesInline(t *testing.T) {
	s, _ := newTestSession(t)

	// "Ask about her interests": mood +15, relationship +8.
	if err := s.ChooseOption(3); err != nil {
		t.Fatalf("ChooseOption failed: %v", err)
	}

	if s.gs.Mood != 65 {
		t.Errorf("Expected mood 65, got %d", s.gs.Mood)
	}
	// Anticipation's response modifier is 1.1: floor(8*1.1) = 8.
	if s.gs.Relationship != 23 {
		t.Errorf("Expected relationship 23, got %d", s.gs.Relationship)
	}
	if s.gs.Score < 275 {
		t.Errorf("Expected score of at least 275, got %d", s.gs.Score)
	}
	if q := s.gs.Quest(1); q.Progress < 30 {
		t.Errorf("Expected charm quest progress of at least 30, got %d", q.Progress)
	}
	if len(s.gs.Messages) < 2 {
		t.Errorf("Expected player line and NPC reply, got %d messages", len(s.gs.Messages))
	}
}

func TestChooseOptionDeferredReply(t *testing.T) {
	c, err := world.Default()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	s := NewSession(c, Config{
		Rand:       rand.New(rand.NewSource(1)),
		ThinkDelay: time.Minute,
	})
	defer s.Stop()

	if err := s.ChooseOption(0); err != nil {
		t.Fatalf("ChooseOption failed: %v", err)
	}
	if s.pendingOption == nil {
		t.Error("Expected a pending option while the NPC thinks")
	}
	if len(s.gs.Messages) != 1 {
		t.Errorf("Expected only the player's line before resolution, got %d messages", len(s.gs.Messages))
	}
	if s.gs.Mood != 50 {
		t.Errorf("Expected mood unchanged before resolution, got %d", s.gs.Mood)
	}
}

func TestChooseOptionInvalidIndex(t *testing.T) {
	s, _ := newTestSession(t)
	if err := s.ChooseOption(99); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("Expected ErrInvalidOption, got %v", err)
	}
}

func TestBuyProtection(t *testing.T) {
	s, _ := newTestSession(t)

	if err := s.BuyProtection(); !errors.Is(err, ErrAdultModeRequired) {
		t.Errorf("Expected ErrAdultModeRequired, got %v", err)
	}

	s.VerifyAge()
	if err := s.SetAdultMode(true); err != nil {
		t.Fatalf("SetAdultMode failed: %v", err)
	}
	if err := s.BuyProtection(); err != nil {
		t.Fatalf("BuyProtection failed: %v", err)
	}
	if s.gs.ProtectionCount != 4 {
		t.Errorf("Expected protection count 4, got %d", s.gs.ProtectionCount)
	}
	if s.gs.Score != 200 {
		t.Errorf("Expected score 200 after purchase, got %d", s.gs.Score)
	}

	s.gs.ProtectionCount = ProtectionCap
	if err := s.BuyProtection(); !errors.Is(err, ErrProtectionFull) {
		t.Errorf("Expected ErrProtectionFull, got %v", err)
	}

	s.gs.ProtectionCount = 0
	s.gs.Score = 40
	if err := s.BuyProtection(); !errors.Is(err, ErrInsufficientScore) {
		t.Errorf("Expected ErrInsufficientScore, got %v", err)
	}
}

func TestCollectItem(t *testing.T) {
	s, _ := newTestSession(t)

	if err := s.CollectItem("drink"); err != nil {
		t.Fatalf("CollectItem failed: %v", err)
	}
	if !s.gs.HasItem("drink") {
		t.Error("Expected drink in inventory")
	}
	if s.gs.Score != 300 {
		t.Errorf("Expected score 300 after pickup, got %d", s.gs.Score)
	}
	if q := s.gs.Quest(2); q.Progress != 30 {
		t.Errorf("Expected drink quest progress 30, got %d", q.Progress)
	}

	// The scene slot is empty until the respawn timer fires.
	if err := s.CollectItem("drink"); !errors.Is(err, ErrItemNotHere) {
		t.Errorf("Expected ErrItemNotHere, got %v", err)
	}
}

func TestCollectItemAdultGate(t *testing.T) {
	s, _ := newTestSession(t)
	if err := s.CollectItem("wine"); !errors.Is(err, ErrAdultItemLocked) {
		t.Errorf("Expected ErrAdultItemLocked, got %v", err)
	}
}

func TestUseSelectedItem(t *testing.T) {
	s, _ := newTestSession(t)

	if err := s.UseSelectedItem(); !errors.Is(err, ErrNoSelection) {
		t.Errorf("Expected ErrNoSelection, got %v", err)
	}

	if err := s.gs.AddItem("flowers"); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if err := s.SelectItem("flowers"); err != nil {
		t.Fatalf("SelectItem failed: %v", err)
	}
	score := s.gs.Score
	if err := s.UseSelectedItem(); err != nil {
		t.Fatalf("UseSelectedItem failed: %v", err)
	}

	if s.gs.Mood != 70 {
		t.Errorf("Expected mood 70 after flowers, got %d", s.gs.Mood)
	}
	if s.gs.Relationship != 25 {
		t.Errorf("Expected relationship 25 after flowers, got %d", s.gs.Relationship)
	}
	if q := s.gs.Quest(3); q.Progress != 50 {
		t.Errorf("Expected flowers quest progress 50, got %d", q.Progress)
	}
	if s.gs.Score != score+50 {
		t.Errorf("Expected score +50, got %d", s.gs.Score-score)
	}
	if s.gs.HasItem("flowers") {
		t.Error("Expected flowers to be consumed")
	}
	if s.gs.SelectedItem != "" {
		t.Errorf("Expected selection cleared, got %q", s.gs.SelectedItem)
	}
}

func TestFlirt(t *testing.T) {
	s, _ := newTestSession(t)

	if err := s.Flirt(); !errors.Is(err, ErrAdultModeRequired) {
		t.Errorf("Expected ErrAdultModeRequired, got %v", err)
	}

	s.VerifyAge()
	if err := s.SetAdultMode(true); err != nil {
		t.Fatalf("SetAdultMode failed: %v", err)
	}

	// Eve starts at 15: the line falls flat.
	if err := s.Flirt(); err != nil {
		t.Fatalf("Flirt failed: %v", err)
	}
	if s.gs.Mood != 40 {
		t.Errorf("Expected mood 40 after a failed flirt, got %d", s.gs.Mood)
	}
	last := s.gs.Messages[len(s.gs.Messages)-1]
	if last.Text != "Seriously? Try harder." {
		t.Errorf("Expected brush-off reply, got %q", last.Text)
	}

	// Warm her up and try again.
	s.gs.NPCs["Eve"].Relationship = 50
	if err := s.Flirt(); err != nil {
		t.Fatalf("Flirt failed: %v", err)
	}
	if s.gs.Mood != 55 {
		t.Errorf("Expected mood 55 after a landed flirt, got %d", s.gs.Mood)
	}
	if s.gs.Relationship != 60 {
		t.Errorf("Expected relationship 60, got %d", s.gs.Relationship)
	}
	if q := s.gs.Quest(6); q.Progress != 10 {
		t.Errorf("Expected seduction quest progress 10, got %d", q.Progress)
	}
}

func TestMoveSkipsLockedLocations(t *testing.T) {
	s, _ := newTestSession(t)

	visited := []string{}
	for i := 0; i < 4; i++ {
		if _, err := s.Move(); err != nil {
			t.Fatalf("Move failed: %v", err)
		}
		visited = append(visited, s.gs.CurrentLocation)
	}
	expected := []string{"hotel", "beach", "casino", "bar"}
	for i, loc := range expected {
		if visited[i] != loc {
			t.Errorf("Expected stop %d to be %s, got %s", i, loc, visited[i])
		}
	}

	if err := s.MoveTo("hotelRoom"); !errors.Is(err, ErrLocationLocked) {
		t.Errorf("Expected ErrLocationLocked, got %v", err)
	}
}

func TestDateFlow(t *testing.T) {
	s, _ := newTestSession(t)

	if err := s.ScheduleDate("Eve", "beach", "evening"); !errors.Is(err, ErrEnhancedModeRequired) {
		t.Errorf("Expected ErrEnhancedModeRequired, got %v", err)
	}

	s.VerifyAge()
	if err := s.SetAdultMode(true); err != nil {
		t.Fatalf("SetAdultMode failed: %v", err)
	}
	s.SetEnhancedMode(true)
	s.gs.NPCs["Eve"].Relationship = 55

	if err := s.ScheduleDate("Eve", "beach", "evening"); err != nil {
		t.Fatalf("ScheduleDate failed: %v", err)
	}
	if s.gs.Relationship != 65 {
		t.Errorf("Expected relationship 65 after scheduling, got %d", s.gs.Relationship)
	}
	if s.gs.ActiveDate == nil {
		t.Fatal("Expected an active date scene")
	}

	if err := s.DateChoice(date.ChoiceGift); err != nil {
		t.Fatalf("DateChoice failed: %v", err)
	}
	if err := s.DateChoice(date.ChoiceFlirt); !errors.Is(err, date.ErrChoiceAlreadyMade) {
		t.Errorf("Expected ErrChoiceAlreadyMade, got %v", err)
	}

	if err := s.EndDate(); err != nil {
		t.Fatalf("EndDate failed: %v", err)
	}
	if s.gs.ActiveDate != nil {
		t.Error("Expected the scene to be closed")
	}
	if !s.gs.NPCs["Eve"].Dated {
		t.Error("Expected Eve to be marked dated")
	}
	if q := s.gs.Quest(8); q.Progress != 33 {
		t.Errorf("Expected dating quest progress 33, got %d", q.Progress)
	}
}

func TestRecorderDrain(t *testing.T) {
	s, rec := newTestSession(t)

	// "Compliment her appearance" carries 30 quest progress, enough to
	// produce a progress notification.
	if err := s.ChooseOption(0); err != nil {
		t.Fatalf("ChooseOption failed: %v", err)
	}
	notes := rec.Drain()
	if len(notes) == 0 {
		t.Error("Expected at least one notification")
	}
	if again := rec.Drain(); len(again) != 0 {
		t.Errorf("Expected drained recorder to be empty, got %d", len(again))
	}
}

func TestSnapshotRestore(t *testing.T) {
	s, _ := newTestSession(t)

	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	s.gs.Score = 9999
	s.gs.CurrentLocation = "beach"

	if err := s.Restore(snap); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if s.gs.Score != 250 {
		t.Errorf("Expected restored score 250, got %d", s.gs.Score)
	}
	if s.gs.CurrentLocation != "bar" {
		t.Errorf("Expected restored location bar, got %s", s.gs.CurrentLocation)
	}
	if len(s.gs.Comments) == 0 {
		t.Error("Expected a comment about loading a save")
	}
}

func TestReset(t *testing.T) {
	s, _ := newTestSession(t)
	id := s.gs.ID

	s.gs.Score = 9999
	s.Reset()

	if s.gs.Score != 250 {
		t.Errorf("Expected score reset to 250, got %d", s.gs.Score)
	}
	if s.gs.ID != id {
		t.Error("Expected the session id to survive a reset")
	}
}

func TestPokerRequiresCasino(t *testing.T) {
	s, _ := newTestSession(t)

	if _, err := s.PlayPoker(); err == nil {
		t.Error("Expected an error playing poker outside the casino")
	}

	if err := s.MoveTo("casino"); err != nil {
		t.Fatalf("MoveTo failed: %v", err)
	}
	res, err := s.PlayPoker()
	if err != nil {
		t.Fatalf("PlayPoker failed: %v", err)
	}
	if len(res.Cards) != 5 {
		t.Errorf("Expected a 5 card hand, got %d", len(res.Cards))
	}
}

func TestHotelRoomUnlocksAtHighRelationship(t *testing.T) {
	s, _ := newTestSession(t)

	s.gs.NPCs["Eve"].Relationship = 68
	if err := s.ChooseOption(4); err != nil { // Share a personal story: +12
		t.Fatalf("ChooseOption failed: %v", err)
	}
	if s.gs.LocationLocked(s.catalog, "hotelRoom") {
		t.Error("Expected the hotel suite to unlock at relationship 70+")
	}
	if err := s.MoveTo("hotelRoom"); err != nil {
		t.Errorf("Expected the suite to be enterable, got %v", err)
	}
}

func findOption(opts []dialog.Option, substr string) int {
	for i, o := range opts {
		if strings.Contains(o.Text, substr) {
			return i
		}
	}
	return -1
}

func TestStoryOptionNeedsCharacterProgress(t *testing.T) {
	s, _ := newTestSession(t)
	s.SetEnhancedMode(true)
	s.gs.AddItem("flowers")

	// Plain lines, however well received, do not open Eve's story.
	for i := 0; i < 3; i++ {
		if err := s.ChooseOption(3); err != nil { // Ask about Eve's interests
			t.Fatalf("ChooseOption failed: %v", err)
		}
	}
	if findOption(s.DialogOptions(), "Continue Eve's story") >= 0 {
		t.Fatal("Expected no story option before a character-specific line resolved")
	}
	if got := s.gs.NPCs["Eve"].StoryProgress; got != 0 {
		t.Fatalf("Expected story progress 0, got %d", got)
	}

	gift := findOption(s.DialogOptions(), "to Eve")
	if gift < 0 {
		t.Fatal("Expected a gift option for Eve with flowers in the inventory")
	}
	if err := s.ChooseOption(gift); err != nil {
		t.Fatalf("ChooseOption failed: %v", err)
	}

	if got := s.gs.NPCs["Eve"].StoryProgress; got != 1 {
		t.Errorf("Expected story progress 1 after the gift, got %d", got)
	}
	if findOption(s.DialogOptions(), "Continue Eve's story") < 0 {
		t.Error("Expected the story option once Eve's story opened")
	}
}

func TestAdultLinesBuildIntimacy(t *testing.T) {
	s, _ := newTestSession(t)
	s.SetEnhancedMode(true)
	s.VerifyAge()
	if err := s.SetAdultMode(true); err != nil {
		t.Fatalf("SetAdultMode failed: %v", err)
	}
	s.gs.NPCs["Eve"].Relationship = 50
	s.gs.Relationship = 50

	idx := findOption(s.DialogOptions(), "Make a suggestive comment")
	if idx < 0 {
		t.Fatal("Expected the level 3 adult option at relationship 50")
	}
	if err := s.ChooseOption(idx); err != nil {
		t.Fatalf("ChooseOption failed: %v", err)
	}
	if got := s.gs.NPCs["Eve"].Intimacy; got != 3 {
		t.Errorf("Expected intimacy 3, got %d", got)
	}

	idx = findOption(s.DialogOptions(), "Make a suggestive comment")
	if err := s.ChooseOption(idx); err != nil {
		t.Fatalf("ChooseOption failed: %v", err)
	}
	if got := s.gs.NPCs["Eve"].Intimacy; got != 6 {
		t.Errorf("Expected intimacy 6 after a second line, got %d", got)
	}
}

func TestEndingsGallery(t *testing.T) {
	s, _ := newTestSession(t)

	if out := s.EndingsGallery(); !strings.Contains(out, "No endings") {
		t.Errorf("Expected an empty gallery message, got %q", out)
	}

	s.gs.UnlockEnding("Eve", "perfect")
	out := s.EndingsGallery()
	if !strings.Contains(out, "Perfect Romance") {
		t.Errorf("Expected the ending title, got %q", out)
	}
	if !strings.Contains(out, "Eve") || !strings.Contains(out, "true love") {
		t.Errorf("Expected Eve's ending description, got %q", out)
	}
}
