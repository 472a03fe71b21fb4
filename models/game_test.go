package models

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handOf(kind CardKind, n int) []Card {
	cards := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, NewCard(kind))
	}
	return cards
}

func countEvents(g *GameSession, kind EventKind) int {
	count := 0
	for _, e := range g.Events {
		if e.Kind == kind {
			count++
		}
	}
	return count
}

func TestAddPlayer_StartsGameAtMinimum(t *testing.T) {
	assert := assert.New(t)

	g := NewGameSession("AAAAAA")

	_, err := g.AddPlayer("Alice", handOf(CardTruth, StartingHandSize))
	assert.NoError(err)
	assert.Equal(PhaseWaiting, g.Phase)

	_, err = g.AddPlayer("Bob", handOf(CardTruth, StartingHandSize))
	assert.NoError(err)
	assert.Equal(PhasePlaying, g.Phase)

	// the maybe-start rule fires exactly once
	assert.Equal(1, countEvents(g, EventGameStart))

	_, err = g.AddPlayer("Carol", handOf(CardTruth, StartingHandSize))
	assert.NoError(err)
	assert.Equal(1, countEvents(g, EventGameStart))
}

func TestAddPlayer_FirstPlayerBecomesCurrent(t *testing.T) {
	assert := assert.New(t)

	g := NewGameSession("AAAAAA")
	alice, _ := g.AddPlayer("Alice", handOf(CardTruth, StartingHandSize))
	g.AddPlayer("Bob", handOf(CardTruth, StartingHandSize))

	assert.Equal(alice.ID, g.CurrentPlayerID, "joins must not steal the turn")
}

func TestAddPlayer_GameFull(t *testing.T) {
	assert := assert.New(t)

	g := NewGameSession("AAAAAA")
	for i := 0; i < MaxPlayers; i++ {
		_, err := g.AddPlayer(fmt.Sprintf("Player%d", i), handOf(CardTruth, StartingHandSize))
		assert.NoError(err)
	}

	_, err := g.AddPlayer("Overflow", handOf(CardTruth, StartingHandSize))
	assert.ErrorIs(err, ErrGameFull)
	assert.Len(g.Players, MaxPlayers)
}

func TestPlayCard_NotYourTurn(t *testing.T) {
	assert := assert.New(t)

	g := NewGameSession("AAAAAA")
	g.AddPlayer("Alice", handOf(CardTruth, StartingHandSize))
	bob, _ := g.AddPlayer("Bob", handOf(CardTruth, StartingHandSize))

	before := len(g.Events)
	err := g.PlayCard(bob.ID, bob.Hand[0].ID)

	assert.ErrorIs(err, ErrNotYourTurn)
	assert.Len(bob.Hand, StartingHandSize)
	assert.Empty(g.CenterPile)
	assert.Len(g.Events, before, "rejected command must not append events")
}

func TestPlayCard_UnknownPlayerAndCard(t *testing.T) {
	assert := assert.New(t)

	g := NewGameSession("AAAAAA")
	alice, _ := g.AddPlayer("Alice", handOf(CardTruth, StartingHandSize))
	g.AddPlayer("Bob", handOf(CardTruth, StartingHandSize))

	err := g.PlayCard("nobody", "whatever")
	assert.ErrorIs(err, ErrPlayerNotFound)

	err = g.PlayCard(alice.ID, "not-a-card")
	assert.ErrorIs(err, ErrCardNotFound)
}

func TestPlayCard_RotationIsCircular(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g := NewGameSession("AAAAAA")
	p1, _ := g.AddPlayer("P1", handOf(CardTruth, StartingHandSize))
	p2, _ := g.AddPlayer("P2", handOf(CardTruth, StartingHandSize))
	p3, _ := g.AddPlayer("P3", handOf(CardTruth, StartingHandSize))

	require.NoError(g.PlayCard(p1.ID, p1.Hand[0].ID))
	assert.Equal(p2.ID, g.CurrentPlayerID)

	require.NoError(g.PlayCard(p2.ID, p2.Hand[0].ID))
	assert.Equal(p3.ID, g.CurrentPlayerID)

	require.NoError(g.PlayCard(p3.ID, p3.Hand[0].ID))
	assert.Equal(p1.ID, g.CurrentPlayerID)
}

func TestPlayCard_MovesCardToCenterPile(t *testing.T) {
	assert := assert.New(t)

	g := NewGameSession("AAAAAA")
	alice, _ := g.AddPlayer("Alice", handOf(CardLie, StartingHandSize))
	g.AddPlayer("Bob", handOf(CardTruth, StartingHandSize))

	total := g.TotalCardCount()
	played := alice.Hand[0]

	assert.NoError(g.PlayCard(alice.ID, played.ID))

	assert.Len(alice.Hand, StartingHandSize-1)
	assert.Len(g.CenterPile, 1)
	assert.Equal(played.ID, g.CenterPile[0].ID)
	assert.Equal(played.ID, g.LastPlayedCard.ID)
	assert.Equal(alice.ID, g.LastPlayerID)
	assert.Equal(total, g.TotalCardCount(), "playing never changes the card total")
}

func TestPlayCard_WinOnEmptyHand(t *testing.T) {
	assert := assert.New(t)

	g := NewGameSession("AAAAAA")
	alice, _ := g.AddPlayer("Alice", handOf(CardTruth, 1))
	g.AddPlayer("Bob", handOf(CardTruth, StartingHandSize))

	assert.NoError(g.PlayCard(alice.ID, alice.Hand[0].ID))

	assert.Equal(PhaseFinished, g.Phase)
	assert.NotNil(g.FinishedAt)
	assert.Equal(alice.ID, g.CurrentPlayerID, "turn must not advance past a winner")
}

func TestAccuse_NoCardToAccuse(t *testing.T) {
	assert := assert.New(t)

	g := NewGameSession("AAAAAA")
	alice, _ := g.AddPlayer("Alice", handOf(CardTruth, StartingHandSize))
	bob, _ := g.AddPlayer("Bob", handOf(CardTruth, StartingHandSize))

	err := g.Accuse(bob.ID, alice.ID, handOf(CardTruth, PenaltyBatchSize))
	assert.ErrorIs(err, ErrNoCardToAccuse)
}

func TestAccuse_LiePenalizesAccused(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g := NewGameSession("AAAAAA")
	alice, _ := g.AddPlayer("Alice", handOf(CardLie, StartingHandSize))
	bob, _ := g.AddPlayer("Bob", handOf(CardTruth, StartingHandSize))

	require.NoError(g.PlayCard(alice.ID, alice.Hand[0].ID))
	total := g.TotalCardCount()

	require.NoError(g.Accuse(bob.ID, alice.ID, handOf(CardTruth, PenaltyBatchSize)))

	assert.Equal(PhaseRevelation, g.Phase)
	assert.Len(alice.Hand, StartingHandSize-1+PenaltyBatchSize)
	assert.Len(bob.Hand, StartingHandSize)
	assert.Equal(total+PenaltyBatchSize, g.TotalCardCount())

	require.NotNil(g.PendingAccusation)
	assert.Equal(bob.ID, g.PendingAccusation.AccusingPlayerID)
	assert.Equal(CardLie, g.PendingAccusation.RevealedCard.Kind)
}

func TestAccuse_TruthPenalizesAccuser(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g := NewGameSession("AAAAAA")
	alice, _ := g.AddPlayer("Alice", handOf(CardTruth, StartingHandSize))
	bob, _ := g.AddPlayer("Bob", handOf(CardTruth, StartingHandSize))

	require.NoError(g.PlayCard(alice.ID, alice.Hand[0].ID))
	require.NoError(g.Accuse(bob.ID, alice.ID, handOf(CardTruth, PenaltyBatchSize)))

	assert.Len(alice.Hand, StartingHandSize-1)
	assert.Len(bob.Hand, StartingHandSize+PenaltyBatchSize)
}

func TestAccuse_AccusedMustBeLastPlayer(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g := NewGameSession("AAAAAA")
	alice, _ := g.AddPlayer("Alice", handOf(CardLie, StartingHandSize))
	bob, _ := g.AddPlayer("Bob", handOf(CardTruth, StartingHandSize))
	carol, _ := g.AddPlayer("Carol", handOf(CardTruth, StartingHandSize))

	require.NoError(g.PlayCard(alice.ID, alice.Hand[0].ID))

	err := g.Accuse(bob.ID, carol.ID, handOf(CardTruth, PenaltyBatchSize))
	assert.ErrorIs(err, ErrAccusedNotLastPlayer)
	assert.Equal(PhasePlaying, g.Phase)
	assert.Len(carol.Hand, StartingHandSize)
}

func TestAccuse_UnknownPlayer(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g := NewGameSession("AAAAAA")
	alice, _ := g.AddPlayer("Alice", handOf(CardLie, StartingHandSize))
	g.AddPlayer("Bob", handOf(CardTruth, StartingHandSize))

	require.NoError(g.PlayCard(alice.ID, alice.Hand[0].ID))

	err := g.Accuse("nobody", alice.ID, handOf(CardTruth, PenaltyBatchSize))
	assert.ErrorIs(err, ErrPlayerNotFound)
}

func TestContinueAfterRevelation(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g := NewGameSession("AAAAAA")
	alice, _ := g.AddPlayer("Alice", handOf(CardLie, StartingHandSize))
	bob, _ := g.AddPlayer("Bob", handOf(CardTruth, StartingHandSize))

	require.NoError(g.PlayCard(alice.ID, alice.Hand[0].ID))
	require.NoError(g.Accuse(bob.ID, alice.ID, handOf(CardTruth, PenaltyBatchSize)))

	current := g.CurrentPlayerID
	require.NoError(g.ContinueAfterRevelation())

	assert.Equal(PhasePlaying, g.Phase)
	assert.Nil(g.PendingAccusation)
	assert.Nil(g.LastPlayedCard)
	assert.Empty(g.LastPlayerID)
	assert.Equal(current, g.CurrentPlayerID, "continuing does not advance the turn")

	// the resolved play can no longer be accused
	err := g.Accuse(bob.ID, alice.ID, handOf(CardTruth, PenaltyBatchSize))
	assert.ErrorIs(err, ErrNoCardToAccuse)
}

func TestContinueAfterRevelation_WrongPhase(t *testing.T) {
	assert := assert.New(t)

	g := NewGameSession("AAAAAA")
	g.AddPlayer("Alice", handOf(CardTruth, StartingHandSize))
	g.AddPlayer("Bob", handOf(CardTruth, StartingHandSize))

	assert.ErrorIs(g.ContinueAfterRevelation(), ErrNotRevelationPhase)
}

func TestRemovePlayer_BelowMinimumFinishes(t *testing.T) {
	assert := assert.New(t)

	g := NewGameSession("AAAAAA")
	alice, _ := g.AddPlayer("Alice", handOf(CardTruth, StartingHandSize))
	g.AddPlayer("Bob", handOf(CardTruth, StartingHandSize))
	assert.Equal(PhasePlaying, g.Phase)

	removed, err := g.RemovePlayer(alice.ID)
	assert.NoError(err)
	assert.Equal(alice.ID, removed.ID)
	assert.Equal(PhaseFinished, g.Phase)
	assert.NotNil(g.FinishedAt)
}

func TestRemovePlayer_NotFound(t *testing.T) {
	assert := assert.New(t)

	g := NewGameSession("AAAAAA")
	g.AddPlayer("Alice", handOf(CardTruth, StartingHandSize))

	_, err := g.RemovePlayer("nobody")
	assert.ErrorIs(err, ErrPlayerNotFound)
}

func TestRemovePlayer_CurrentPlayerHandsOverTurn(t *testing.T) {
	assert := assert.New(t)

	g := NewGameSession("AAAAAA")
	p1, _ := g.AddPlayer("P1", handOf(CardTruth, StartingHandSize))
	p2, _ := g.AddPlayer("P2", handOf(CardTruth, StartingHandSize))
	g.AddPlayer("P3", handOf(CardTruth, StartingHandSize))

	_, err := g.RemovePlayer(p1.ID)
	assert.NoError(err)
	assert.Equal(PhasePlaying, g.Phase)
	assert.Equal(p2.ID, g.CurrentPlayerID)
}

func TestClone_IsDeep(t *testing.T) {
	assert := assert.New(t)

	g := NewGameSession("AAAAAA")
	alice, _ := g.AddPlayer("Alice", handOf(CardLie, StartingHandSize))
	g.AddPlayer("Bob", handOf(CardTruth, StartingHandSize))

	clone := g.Clone()
	assert.NoError(g.PlayCard(alice.ID, alice.Hand[0].ID))

	assert.Len(clone.Players[0].Hand, StartingHandSize)
	assert.Empty(clone.CenterPile)
	assert.Nil(clone.LastPlayedCard)
}
