package models

import (
	"errors"
	"fmt"
	"time"
)

type GamePhase string

const (
	PhaseWaiting GamePhase = "waiting"
	PhasePlaying GamePhase = "playing"
	// PhaseAccusation never persists: an accusation resolves to revelation
	// within the same operation.
	PhaseAccusation GamePhase = "accusation"
	PhaseRevelation GamePhase = "revelation"
	PhaseFinished   GamePhase = "finished"
)

const (
	MinPlayers              = 2
	MaxPlayers              = 6
	StartingHandSize        = 7
	PenaltyBatchSize        = 3
	DefaultTurnTimerSeconds = 45
)

var (
	ErrGameFull             = errors.New("game is full")
	ErrGameFinished         = errors.New("game is finished")
	ErrGameNotActive        = errors.New("game is not in the playing phase")
	ErrNotRevelationPhase   = errors.New("no revelation to continue from")
	ErrPlayerNotFound       = errors.New("player not found in game")
	ErrNotYourTurn          = errors.New("not your turn")
	ErrCardNotFound         = errors.New("card not found in hand")
	ErrNoCardToAccuse       = errors.New("no card to accuse")
	ErrAccusedNotLastPlayer = errors.New("accused player did not play the last card")
)

// PendingAccusation is set only while the session is in the revelation phase.
type PendingAccusation struct {
	AccusingPlayerID string `json:"accusing_player_id"`
	RevealedCard     Card   `json:"revealed_card"`
}

// GameSession is the authoritative per-game state. Its methods validate and
// apply one transition at a time; a failed transition leaves the session
// unchanged. Serialization of concurrent callers is the registry's job, not
// the session's.
type GameSession struct {
	ID                string             `json:"id"`
	Phase             GamePhase          `json:"phase"`
	Players           []*Player          `json:"players"`
	CurrentPlayerID   string             `json:"current_player_id"`
	CenterPile        []Card             `json:"center_pile"`
	LastPlayedCard    *Card              `json:"last_played_card,omitempty"`
	LastPlayerID      string             `json:"last_player_id,omitempty"`
	PendingAccusation *PendingAccusation `json:"pending_accusation,omitempty"`
	Events            []GameEvent        `json:"events"`
	TurnTimerSeconds  int                `json:"turn_timer_seconds"`
	CreatedAt         time.Time          `json:"created_at"`
	FinishedAt        *time.Time         `json:"finished_at,omitempty"`
}

func NewGameSession(id string) *GameSession {
	return &GameSession{
		ID:               id,
		Phase:            PhaseWaiting,
		Players:          []*Player{},
		CenterPile:       []Card{},
		Events:           []GameEvent{},
		TurnTimerSeconds: DefaultTurnTimerSeconds,
		CreatedAt:        time.Now(),
	}
}

// AddPlayer appends a player holding the given starting hand. The first
// player to join becomes the current player.
func (g *GameSession) AddPlayer(name string, hand []Card) (*Player, error) {
	if g.Phase == PhaseFinished {
		return nil, ErrGameFinished
	}
	if len(g.Players) >= MaxPlayers {
		return nil, ErrGameFull
	}

	player := NewPlayer(name)
	player.Hand = hand
	g.Players = append(g.Players, player)

	if g.CurrentPlayerID == "" {
		g.CurrentPlayerID = player.ID
	}

	event := newEvent(EventJoin, fmt.Sprintf("%s joined the game", player.Name))
	event.ActorID = player.ID
	event.ActorName = player.Name
	g.Events = append(g.Events, event)

	g.maybeStart()

	return player, nil
}

// maybeStart is the single place the waiting-to-playing transition lives.
func (g *GameSession) maybeStart() {
	if g.Phase != PhaseWaiting || len(g.Players) < MinPlayers {
		return
	}
	g.Phase = PhasePlaying
	g.Events = append(g.Events, newEvent(EventGameStart, "The game has started"))
}

// RemovePlayer drops a player along with their hand. Falling below the
// player minimum ends the game whatever phase it was in.
func (g *GameSession) RemovePlayer(playerID string) (*Player, error) {
	idx := -1
	for i, p := range g.Players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrPlayerNotFound
	}

	player := g.Players[idx]
	g.Players = append(g.Players[:idx], g.Players[idx+1:]...)

	if g.CurrentPlayerID == player.ID && len(g.Players) > 0 {
		// hand the turn to whoever now sits at the departed player's slot
		g.CurrentPlayerID = g.Players[idx%len(g.Players)].ID
	}

	message := fmt.Sprintf("%s left the game", player.Name)
	if len(g.Players) < MinPlayers && g.Phase != PhaseFinished {
		g.finish()
		message = fmt.Sprintf("%s left the game — not enough players, game over", player.Name)
	}

	event := newEvent(EventLeave, message)
	event.ActorID = player.ID
	event.ActorName = player.Name
	g.Events = append(g.Events, event)

	return player, nil
}

// PlayCard moves a card from the player's hand to the center pile and opens
// the accusation window on it. Emptying your hand wins the game on the spot;
// the turn does not advance past a winner.
func (g *GameSession) PlayCard(playerID, cardID string) error {
	if g.Phase == PhaseFinished {
		return ErrGameFinished
	}
	if g.Phase != PhasePlaying {
		return ErrGameNotActive
	}

	player := g.FindPlayer(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}
	if g.CurrentPlayerID != playerID {
		return ErrNotYourTurn
	}

	cardIdx := player.findCard(cardID)
	if cardIdx < 0 {
		return ErrCardNotFound
	}

	card := player.Hand[cardIdx]
	player.Hand = append(player.Hand[:cardIdx], player.Hand[cardIdx+1:]...)
	g.CenterPile = append(g.CenterPile, card)
	g.LastPlayedCard = &card
	g.LastPlayerID = player.ID

	if len(player.Hand) == 0 {
		g.finish()
		event := newEvent(EventCardPlayed, fmt.Sprintf("%s played their last card and wins!", player.Name))
		event.ActorID = player.ID
		event.ActorName = player.Name
		g.Events = append(g.Events, event)
		return nil
	}

	g.advanceTurn()

	event := newEvent(EventCardPlayed, fmt.Sprintf("%s played a card face down", player.Name))
	event.ActorID = player.ID
	event.ActorName = player.Name
	g.Events = append(g.Events, event)

	return nil
}

// Accuse challenges the most recent play. The accused must be the player who
// made it. If the revealed card was a lie the accused takes the penalty
// batch, otherwise the accuser does. The session enters the revelation phase
// until ContinueAfterRevelation.
func (g *GameSession) Accuse(accusingPlayerID, accusedPlayerID string, penalty []Card) error {
	if g.Phase == PhaseFinished {
		return ErrGameFinished
	}
	if g.Phase != PhasePlaying {
		return ErrGameNotActive
	}
	if g.LastPlayedCard == nil || g.LastPlayerID == "" {
		return ErrNoCardToAccuse
	}

	accuser := g.FindPlayer(accusingPlayerID)
	accused := g.FindPlayer(accusedPlayerID)
	if accuser == nil || accused == nil {
		return ErrPlayerNotFound
	}
	if accusedPlayerID != g.LastPlayerID {
		return ErrAccusedNotLastPlayer
	}

	revealed := *g.LastPlayedCard
	wasLie := revealed.Kind == CardLie

	recipient := accuser
	if wasLie {
		recipient = accused
	}
	recipient.Hand = append(recipient.Hand, penalty...)

	g.Phase = PhaseRevelation
	g.PendingAccusation = &PendingAccusation{
		AccusingPlayerID: accuser.ID,
		RevealedCard:     revealed,
	}

	accusation := newEvent(EventAccusation, fmt.Sprintf("%s accuses %s of lying!", accuser.Name, accused.Name))
	accusation.ActorID = accuser.ID
	accusation.ActorName = accuser.Name
	accusation.TargetID = accused.ID
	accusation.TargetName = accused.Name
	g.Events = append(g.Events, accusation)

	verdict := "it was the truth"
	if wasLie {
		verdict = "it was a lie"
	}
	revelation := newEvent(EventRevelation, fmt.Sprintf("The card is revealed — %s", verdict))
	revelation.ActorID = accused.ID
	revelation.ActorName = accused.Name
	revelation.CardKind = revealed.Kind
	g.Events = append(g.Events, revelation)

	draw := newEvent(EventPenalty, fmt.Sprintf("%s draws %d penalty cards", recipient.Name, len(penalty)))
	draw.ActorID = recipient.ID
	draw.ActorName = recipient.Name
	g.Events = append(g.Events, draw)

	return nil
}

// ContinueAfterRevelation closes the revelation and resumes play. The
// resolved play can no longer be accused; the next window opens with the
// next PlayCard. The turn does not advance here.
func (g *GameSession) ContinueAfterRevelation() error {
	if g.Phase == PhaseFinished {
		return ErrGameFinished
	}
	if g.Phase != PhaseRevelation {
		return ErrNotRevelationPhase
	}

	g.Phase = PhasePlaying
	g.PendingAccusation = nil
	g.LastPlayedCard = nil
	g.LastPlayerID = ""

	return nil
}

func (g *GameSession) advanceTurn() {
	for i, p := range g.Players {
		if p.ID == g.CurrentPlayerID {
			g.CurrentPlayerID = g.Players[(i+1)%len(g.Players)].ID
			return
		}
	}
}

func (g *GameSession) finish() {
	g.Phase = PhaseFinished
	now := time.Now()
	g.FinishedAt = &now
}

func (g *GameSession) FindPlayer(playerID string) *Player {
	for _, p := range g.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// TotalCardCount is the number of cards currently in play: every hand plus
// the center pile.
func (g *GameSession) TotalCardCount() int {
	total := len(g.CenterPile)
	for _, p := range g.Players {
		total += len(p.Hand)
	}
	return total
}

// Clone returns a deep copy safe to hand to renderers and broadcasters while
// the original keeps mutating under the registry's lock.
func (g *GameSession) Clone() *GameSession {
	clone := *g

	clone.Players = make([]*Player, len(g.Players))
	for i, p := range g.Players {
		player := *p
		player.Hand = append([]Card{}, p.Hand...)
		clone.Players[i] = &player
	}

	clone.CenterPile = append([]Card{}, g.CenterPile...)
	clone.Events = append([]GameEvent{}, g.Events...)

	if g.LastPlayedCard != nil {
		card := *g.LastPlayedCard
		clone.LastPlayedCard = &card
	}
	if g.PendingAccusation != nil {
		pending := *g.PendingAccusation
		clone.PendingAccusation = &pending
	}
	if g.FinishedAt != nil {
		finished := *g.FinishedAt
		clone.FinishedAt = &finished
	}

	return &clone
}
