package models

import (
	"time"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventCardPlayed EventKind = "card_played"
	EventAccusation EventKind = "accusation"
	EventRevelation EventKind = "revelation"
	EventPenalty    EventKind = "penalty"
	EventJoin       EventKind = "join"
	EventLeave      EventKind = "leave"
	EventGameStart  EventKind = "game_start"
)

// GameEvent is an append-only narration record. Events are never read back
// to drive game logic.
type GameEvent struct {
	ID         string    `json:"id"`
	Kind       EventKind `json:"kind"`
	ActorID    string    `json:"actor_id,omitempty"`
	ActorName  string    `json:"actor_name,omitempty"`
	TargetID   string    `json:"target_id,omitempty"`
	TargetName string    `json:"target_name,omitempty"`
	CardKind   CardKind  `json:"card_kind,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Message    string    `json:"message"`
}

func newEvent(kind EventKind, message string) GameEvent {
	return GameEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		Timestamp: time.Now(),
		Message:   message,
	}
}
