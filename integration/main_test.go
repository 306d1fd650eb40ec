//go:build integration
// +build integration

// Package integration drives a running API instance end to end. Start the
// stack first (docker-compose up -d), then:
//
//	go test -tags integration ./integration/
//
// API_BASE_URL overrides the target (default http://localhost:8080).
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/luckylarry/romance-engine/internal/handlers"
)

var baseURL string

func TestMain(m *testing.M) {
	baseURL = os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	fmt.Printf("Running Romance Engine Integration Tests\n")
	fmt.Printf("   API Base URL: %s\n", baseURL)

	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		fmt.Printf("API is not reachable: %v\n", err)
		os.Exit(1)
	}
	_ = resp.Body.Close()

	os.Exit(m.Run())
}

func post(t *testing.T, path string, payload any, out any) int {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}
	resp, err := http.Post(baseURL+path, "application/json", body)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode response from %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func action(t *testing.T, id string, req handlers.ActionRequest) (*handlers.ActionResponse, int) {
	t.Helper()
	var out handlers.ActionResponse
	status := post(t, "/v1/sessions/"+id+"/actions", req, &out)
	return &out, status
}

func TestFullPlaythrough(t *testing.T) {
	var view handlers.SessionResponse
	if status := post(t, "/v1/sessions", nil, &view); status != http.StatusCreated {
		t.Fatalf("Expected 201 creating session, got %d", status)
	}
	id := view.State.ID.String()
	if view.State.Score != 250 {
		t.Errorf("Expected starting score 250, got %d", view.State.Score)
	}
	if len(view.Options) == 0 {
		t.Error("Expected dialog options on a fresh session")
	}

	// Adult content is gated behind age verification.
	if _, status := action(t, id, handlers.ActionRequest{Type: "set_adult", Enabled: true}); status != http.StatusForbidden {
		t.Errorf("Expected 403 enabling adult mode before verification, got %d", status)
	}
	if _, status := action(t, id, handlers.ActionRequest{Type: "verify_age"}); status != http.StatusOK {
		t.Errorf("Expected 200 verifying age, got %d", status)
	}
	if res, status := action(t, id, handlers.ActionRequest{Type: "set_adult", Enabled: true}); status != http.StatusOK {
		t.Errorf("Expected 200 enabling adult mode, got %d", status)
	} else if !res.State.AdultMode {
		t.Error("Expected adult mode enabled")
	}

	// Talk, collect, look.
	res, status := action(t, id, handlers.ActionRequest{Type: "dialog", Option: 0})
	if status != http.StatusOK {
		t.Fatalf("Expected 200 choosing dialog option, got %d", status)
	}
	if res.State.Score <= 250 {
		t.Errorf("Expected score to rise after dialog, got %d", res.State.Score)
	}
	if res, status = action(t, id, handlers.ActionRequest{Type: "collect", Item: "drink"}); status != http.StatusOK {
		t.Fatalf("Expected 200 collecting drink, got %d", status)
	}
	if len(res.State.Inventory) != 1 {
		t.Errorf("Expected 1 inventory item, got %d", len(res.State.Inventory))
	}
	if res, status = action(t, id, handlers.ActionRequest{Type: "look"}); status != http.StatusOK || res.Output == "" {
		t.Errorf("Expected look output, got status %d output %q", status, res.Output)
	}

	// Casino round trip.
	if _, status = action(t, id, handlers.ActionRequest{Type: "poker_deal"}); status == http.StatusOK {
		t.Error("Expected poker to be rejected outside the casino")
	}
	if _, status = action(t, id, handlers.ActionRequest{Type: "move_to", Location: "casino"}); status != http.StatusOK {
		t.Fatalf("Expected 200 moving to casino, got %d", status)
	}
	if res, status = action(t, id, handlers.ActionRequest{Type: "poker_deal"}); status != http.StatusOK {
		t.Fatalf("Expected 200 dealing poker, got %d", status)
	} else if res.Poker == nil || len(res.Poker.Cards) != 5 {
		t.Error("Expected a five card poker hand")
	}

	// Save, mutate, load restores the snapshot.
	if status = post(t, "/v1/sessions/"+id+"/save", nil, nil); status != http.StatusOK {
		t.Fatalf("Expected 200 saving, got %d", status)
	}
	savedScore := res.State.Score
	if _, status = action(t, id, handlers.ActionRequest{Type: "poker_bet"}); status != http.StatusOK {
		t.Fatalf("Expected 200 betting, got %d", status)
	}
	var loaded handlers.SessionResponse
	if status = post(t, "/v1/sessions/"+id+"/load", nil, &loaded); status != http.StatusOK {
		t.Fatalf("Expected 200 loading, got %d", status)
	}
	if loaded.State.Score != savedScore {
		t.Errorf("Expected loaded score %d, got %d", savedScore, loaded.State.Score)
	}

	// Cleanup.
	req, err := http.NewRequest(http.MethodDelete, baseURL+"/v1/sessions/"+id, nil)
	if err != nil {
		t.Fatalf("Failed to build delete request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204 deleting session, got %d", resp.StatusCode)
	}
}

func TestSessionClockAdvances(t *testing.T) {
	var view handlers.SessionResponse
	if status := post(t, "/v1/sessions", nil, &view); status != http.StatusCreated {
		t.Fatalf("Expected 201 creating session, got %d", status)
	}
	id := view.State.ID.String()
	start := view.State.Time

	time.Sleep(2 * time.Second)

	res, status := action(t, id, handlers.ActionRequest{Type: "look"})
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if res.State.Time <= start {
		t.Errorf("Expected in-game clock past %d, got %d", start, res.State.Time)
	}

	req, _ := http.NewRequest(http.MethodDelete, baseURL+"/v1/sessions/"+id, nil)
	resp, err := http.DefaultClient.Do(req)
	if err == nil {
		_ = resp.Body.Close()
	}
}
