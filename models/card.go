package models

import (
	"github.com/google/uuid"
)

type CardKind string

const (
	CardTruth CardKind = "truth"
	CardLie   CardKind = "lie"
)

// Card is immutable once created. It belongs to exactly one of: a deck,
// a player's hand, or the center pile.
type Card struct {
	ID   string   `json:"id"`
	Kind CardKind `json:"kind"`
}

func NewCard(kind CardKind) Card {
	return Card{
		ID:   uuid.NewString(),
		Kind: kind,
	}
}
