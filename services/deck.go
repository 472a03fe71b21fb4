package services

import (
	"math/rand"

	"bluffcall/models"
)

const (
	deckTruthCount = 30
	deckLieCount   = 30
)

// BuildShuffledDeck returns a fresh 60-card deck of 30 truth and 30 lie
// cards in a uniformly random order.
func BuildShuffledDeck() []models.Card {
	deck := make([]models.Card, 0, deckTruthCount+deckLieCount)
	for i := 0; i < deckTruthCount; i++ {
		deck = append(deck, models.NewCard(models.CardTruth))
	}
	for i := 0; i < deckLieCount; i++ {
		deck = append(deck, models.NewCard(models.CardLie))
	}

	rand.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	return deck
}

// BuildPenaltyCards returns n cards, each independently truth or lie with
// equal probability.
func BuildPenaltyCards(n int) []models.Card {
	cards := make([]models.Card, 0, n)
	for i := 0; i < n; i++ {
		kind := models.CardTruth
		if rand.Intn(2) == 1 {
			kind = models.CardLie
		}
		cards = append(cards, models.NewCard(kind))
	}
	return cards
}
