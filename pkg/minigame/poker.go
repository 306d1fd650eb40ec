// Package minigame implements the casino poker table.
package minigame

import (
	"errors"
	"math/rand"

	"github.com/luckylarry/romance-engine/pkg/state"
)

// ErrInsufficientScore is returned when the player cannot cover a bet.
var ErrInsufficientScore = errors.New("not enough money to bet")

const (
	// WinPayout is added to the score on a winning hand.
	WinPayout = 100
	// LossCost is deducted on a losing hand, when the player can cover it.
	LossCost = 50
	// BetCost is the up-front stake for a raised hand.
	BetCost = 50

	handSize = 5
)

var (
	suits  = []string{"♠", "♥", "♦", "♣"}
	values = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
)

// Card is one dealt card.
type Card struct {
	Suit  string `json:"suit"`
	Value string `json:"value"`
	Red   bool   `json:"red"`
}

// Result is the outcome of one hand.
type Result struct {
	Cards       []Card `json:"cards"`
	PlayerScore int    `json:"player_score"`
	NPCScore    int    `json:"npc_score"`
	Won         bool   `json:"won"`
	// Payout is the net score change, stake included.
	Payout int `json:"payout"`
}

// Poker deals hands from an injected rand source.
type Poker struct {
	rng *rand.Rand
}

// NewPoker creates a poker table.
func NewPoker(rng *rand.Rand) *Poker {
	return &Poker{rng: rng}
}

// Deal plays a free hand. Player draws 25-74 against the NPC's 20-69; a
// win pays out, a loss costs LossCost when the player can cover it.
func (p *Poker) Deal(gs *state.GameState) Result {
	res := Result{
		Cards:       p.hand(),
		PlayerScore: p.rng.Intn(50) + 25,
		NPCScore:    p.rng.Intn(50) + 20,
	}
	if res.PlayerScore > res.NPCScore {
		res.Won = true
		res.Payout = WinPayout
		gs.Score += WinPayout
	} else if gs.Score >= LossCost {
		res.Payout = -LossCost
		gs.Score -= LossCost
	}
	return res
}

// Bet stakes BetCost up front and plays a hand.
func (p *Poker) Bet(gs *state.GameState) (Result, error) {
	if gs.Score < BetCost {
		return Result{}, ErrInsufficientScore
	}
	gs.Score -= BetCost
	res := p.Deal(gs)
	res.Payout -= BetCost
	return res, nil
}

func (p *Poker) hand() []Card {
	cards := make([]Card, handSize)
	for i := range cards {
		suit := suits[p.rng.Intn(len(suits))]
		cards[i] = Card{
			Suit:  suit,
			Value: values[p.rng.Intn(len(values))],
			Red:   suit == "♥" || suit == "♦",
		}
	}
	return cards
}
