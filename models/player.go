package models

import (
	"hash/fnv"
	"time"

	"github.com/google/uuid"
)

var avatarGlyphs = []string{
	"🦊", "🐻", "🐼", "🦉", "🐸", "🦁", "🐙", "🦄", "🐺", "🐯", "🐨", "🦅",
}

type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Hand      []Card    `json:"hand"`
	Avatar    string    `json:"avatar"`
	Connected bool      `json:"connected"`
	JoinedAt  time.Time `json:"joined_at"`
}

func NewPlayer(name string) *Player {
	id := uuid.NewString()
	return &Player{
		ID:        id,
		Name:      name,
		Hand:      []Card{},
		Avatar:    avatarFor(id),
		Connected: true,
		JoinedAt:  time.Now(),
	}
}

// HandSize is always derived from the hand itself, never stored separately.
func (p *Player) HandSize() int {
	return len(p.Hand)
}

func (p *Player) findCard(cardID string) int {
	for i, card := range p.Hand {
		if card.ID == cardID {
			return i
		}
	}
	return -1
}

func avatarFor(playerID string) string {
	h := fnv.New32a()
	h.Write([]byte(playerID))
	return avatarGlyphs[h.Sum32()%uint32(len(avatarGlyphs))]
}
