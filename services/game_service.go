package services

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"bluffcall/models"

	"github.com/redis/go-redis/v9"
)

var ErrGameNotFound = errors.New("game not found")

const (
	gameIDLength   = 6
	gameIDCharset  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	snapshotTTL    = 2 * time.Hour
	finishedLinger = time.Hour
	sweepInterval  = 10 * time.Minute
	snapshotPrefix = "game:"
)

// GameService is the registry owning every live session. Each session sits
// behind its own mutex so unrelated games never contend; the registry map
// itself is guarded separately. Redis holds best-effort JSON snapshots with
// a TTL — memory stays authoritative, snapshots only survive restarts.
type GameService struct {
	redis    *redis.Client
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	mu   sync.Mutex
	game *models.GameSession
}

func NewGameService(redisClient *redis.Client) *GameService {
	return &GameService{
		redis:    redisClient,
		sessions: make(map[string]*sessionEntry),
	}
}

type CreateGameRequest struct {
	HostName string `json:"host_name" binding:"required,min=1,max=20"`
}

type JoinGameRequest struct {
	Name string `json:"name" binding:"required,min=1,max=20"`
}

type PlayCardRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
	CardID   string `json:"card_id" binding:"required"`
}

type AccuseRequest struct {
	AccusingPlayerID string `json:"accusing_player_id" binding:"required"`
	AccusedPlayerID  string `json:"accused_player_id" binding:"required"`
}

// CreateGame allocates a session code, deals the host their starting hand
// and registers the session. Returns the session and the host's player id.
func (s *GameService) CreateGame(hostName string) (*models.GameSession, string, error) {
	s.mu.Lock()
	id := s.generateGameIDLocked()
	entry := &sessionEntry{game: models.NewGameSession(id)}
	s.sessions[id] = entry
	s.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	deck := BuildShuffledDeck()
	host, err := entry.game.AddPlayer(hostName, deck[:models.StartingHandSize])
	if err != nil {
		return nil, "", err
	}

	s.storeSnapshot(entry.game)
	log.Printf("Created game %s (host %s)", id, hostName)

	return entry.game.Clone(), host.ID, nil
}

// GetGame reports absence rather than an error so callers can decide what a
// missing game means. On a registry miss it falls back to the Redis
// snapshot, which revives sessions across restarts.
func (s *GameService) GetGame(id string) (*models.GameSession, bool) {
	s.mu.RLock()
	entry, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		entry = s.restoreSnapshot(id)
		if entry == nil {
			return nil, false
		}
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.game.Clone(), true
}

// ListGames returns a clone of every registered session.
func (s *GameService) ListGames() []*models.GameSession {
	s.mu.RLock()
	entries := make([]*sessionEntry, 0, len(s.sessions))
	for _, entry := range s.sessions {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	games := make([]*models.GameSession, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		games = append(games, entry.game.Clone())
		entry.mu.Unlock()
	}
	return games
}

// JoinGame deals the joiner a starting hand from a fresh shuffled deck and
// adds them to the session. Reaching the player minimum starts the game.
func (s *GameService) JoinGame(id, name string) (*models.GameSession, string, error) {
	var playerID string
	game, err := s.withSession(id, func(g *models.GameSession) error {
		deck := BuildShuffledDeck()
		player, err := g.AddPlayer(name, deck[:models.StartingHandSize])
		if err != nil {
			return err
		}
		playerID = player.ID
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return game, playerID, nil
}

func (s *GameService) PlayCard(id, playerID, cardID string) (*models.GameSession, error) {
	return s.withSession(id, func(g *models.GameSession) error {
		return g.PlayCard(playerID, cardID)
	})
}

func (s *GameService) AccusePlayer(id, accusingPlayerID, accusedPlayerID string) (*models.GameSession, error) {
	return s.withSession(id, func(g *models.GameSession) error {
		return g.Accuse(accusingPlayerID, accusedPlayerID, BuildPenaltyCards(models.PenaltyBatchSize))
	})
}

func (s *GameService) ContinueAfterRevelation(id string) (*models.GameSession, error) {
	return s.withSession(id, func(g *models.GameSession) error {
		return g.ContinueAfterRevelation()
	})
}

// RemovePlayer is driven both by explicit leave commands and by the hub when
// a connection drops. Returns the departed player alongside the session.
func (s *GameService) RemovePlayer(id, playerID string) (*models.GameSession, *models.Player, error) {
	var removed *models.Player
	game, err := s.withSession(id, func(g *models.GameSession) error {
		player, err := g.RemovePlayer(playerID)
		if err != nil {
			return err
		}
		removed = player
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return game, removed, nil
}

// withSession serializes one mutation against one session. A failed mutation
// leaves the session untouched and skips the snapshot.
func (s *GameService) withSession(id string, fn func(*models.GameSession) error) (*models.GameSession, error) {
	s.mu.RLock()
	entry, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		entry = s.restoreSnapshot(id)
		if entry == nil {
			return nil, ErrGameNotFound
		}
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := fn(entry.game); err != nil {
		return nil, err
	}

	s.storeSnapshot(entry.game)
	return entry.game.Clone(), nil
}

// generateGameIDLocked draws 6-character uppercase alphanumeric codes until
// one misses the registry. Caller holds s.mu.
func (s *GameService) generateGameIDLocked() string {
	for {
		bytes := make([]byte, gameIDLength)
		rand.Read(bytes)

		code := make([]byte, gameIDLength)
		for i, b := range bytes {
			code[i] = gameIDCharset[int(b)%len(gameIDCharset)]
		}

		id := string(code)
		if _, exists := s.sessions[id]; !exists {
			return id
		}
	}
}

// StartSweeper evicts finished and emptied sessions in the background.
// Finished games linger for an hour so late clients can still fetch the
// final state; the Redis snapshot expires on its own TTL.
func (s *GameService) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweepOnce(time.Now())
			}
		}
	}()
}

func (s *GameService) sweepOnce(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entry := range s.sessions {
		entry.mu.Lock()
		expired := len(entry.game.Players) == 0 ||
			(entry.game.Phase == models.PhaseFinished &&
				entry.game.FinishedAt != nil &&
				now.Sub(*entry.game.FinishedAt) >= finishedLinger)
		entry.mu.Unlock()

		if expired {
			delete(s.sessions, id)
			if s.redis != nil {
				s.redis.Del(context.Background(), snapshotPrefix+id)
			}
			log.Printf("Evicted game %s", id)
		}
	}
}

func (s *GameService) storeSnapshot(game *models.GameSession) {
	if s.redis == nil {
		return
	}

	data, err := json.Marshal(game)
	if err != nil {
		log.Printf("Failed to marshal snapshot for game %s: %v", game.ID, err)
		return
	}

	if err := s.redis.Set(context.Background(), snapshotPrefix+game.ID, data, snapshotTTL).Err(); err != nil {
		log.Printf("Failed to store snapshot for game %s: %v", game.ID, err)
	}
}

func (s *GameService) restoreSnapshot(id string) *sessionEntry {
	if s.redis == nil {
		return nil
	}

	data, err := s.redis.Get(context.Background(), snapshotPrefix+id).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("Redis error loading snapshot for game %s: %v", id, err)
		}
		return nil
	}

	var game models.GameSession
	if err := json.Unmarshal([]byte(data), &game); err != nil {
		log.Printf("Failed to unmarshal snapshot for game %s: %v", id, err)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[id]; ok {
		// another caller restored it first
		return existing
	}
	entry := &sessionEntry{game: &game}
	s.sessions[id] = entry
	log.Printf("Restored game %s from snapshot", id)
	return entry
}
