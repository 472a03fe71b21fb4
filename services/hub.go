package services

import (
	"encoding/json"
	"errors"
	"log"
	"sync"

	"bluffcall/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Message is the wire envelope for everything the hub sends or receives.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Outbound payloads. One struct per message type keeps the broadcast surface
// a closed set instead of loose maps.
type PlayerJoinedPayload struct {
	Player *models.Player      `json:"player"`
	Game   *models.GameSession `json:"game"`
}

type CardPlayedPayload struct {
	Game *models.GameSession `json:"game"`
}

type AccusationPayload struct {
	Game *models.GameSession `json:"game"`
}

type PlayerLeftPayload struct {
	PlayerID string              `json:"player_id"`
	Game     *models.GameSession `json:"game,omitempty"`
}

type StateSyncPayload struct {
	Game *models.GameSession `json:"game"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type joinGamePayload struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
}

// Hub tracks live websocket connections and fans game events out to every
// connection subscribed to a game. A connection receives nothing until it
// announces itself with a join_game message; the gameID→clients index and
// each client's subscription are updated together under one lock.
type Hub struct {
	clients     map[*Client]bool
	games       map[string]map[*Client]bool
	register    chan *Client
	unregister  chan *Client
	mutex       sync.Mutex
	gameService *GameService
}

type Client struct {
	hub      *Hub
	id       string
	socket   *websocket.Conn
	send     chan []byte
	gameID   string
	playerID string
}

func NewHub(gameService *GameService) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		games:       make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		gameService: gameService,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			log.Printf("Client %s connected - total clients: %d", client.id, total)

		case client := <-h.unregister:
			h.mutex.Lock()
			var gameID, playerID string
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				gameID, playerID = client.gameID, client.playerID
				h.detachLocked(client)
			}
			total := len(h.clients)
			h.mutex.Unlock()

			log.Printf("Client %s disconnected - total clients: %d", client.id, total)

			// A dropped connection that had announced itself removes its
			// player from the game and tells everyone left.
			if gameID != "" && playerID != "" {
				h.handleDeparture(gameID, playerID)
			}
		}
	}
}

func (h *Hub) handleDeparture(gameID, playerID string) {
	game, removed, err := h.gameService.RemovePlayer(gameID, playerID)
	if err != nil {
		if !errors.Is(err, ErrGameNotFound) && !errors.Is(err, models.ErrPlayerNotFound) {
			log.Printf("Error removing player %s from game %s after disconnect: %v", playerID, gameID, err)
		}
		return
	}
	h.BroadcastPlayerLeft(gameID, removed.ID, game)
}

// RegisterClient wires a raw websocket connection into the hub. The
// connection stays unsubscribed until it sends join_game.
func (h *Hub) RegisterClient(conn *websocket.Conn) *Client {
	client := &Client{
		hub:    h,
		id:     uuid.NewString(),
		socket: conn,
		send:   make(chan []byte, 256),
	}

	h.register <- client

	go client.writePump()
	go client.readPump()

	return client
}

func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

func (h *Hub) BroadcastPlayerJoined(gameID string, player *models.Player, game *models.GameSession) {
	h.broadcastToGame(gameID, "player_joined", PlayerJoinedPayload{Player: player, Game: game})
}

func (h *Hub) BroadcastCardPlayed(gameID string, game *models.GameSession) {
	h.broadcastToGame(gameID, "card_played", CardPlayedPayload{Game: game})
}

func (h *Hub) BroadcastAccusation(gameID string, game *models.GameSession) {
	h.broadcastToGame(gameID, "accusation", AccusationPayload{Game: game})
}

func (h *Hub) BroadcastPlayerLeft(gameID, playerID string, game *models.GameSession) {
	h.broadcastToGame(gameID, "player_left", PlayerLeftPayload{PlayerID: playerID, Game: game})
}

func (h *Hub) BroadcastStateSync(gameID string, game *models.GameSession) {
	h.broadcastToGame(gameID, "state_sync", StateSyncPayload{Game: game})
}

// broadcastToGame delivers best-effort: a client whose send buffer is full
// is dropped rather than allowed to stall the rest of the game.
func (h *Hub) broadcastToGame(gameID, messageType string, payload any) {
	data, err := json.Marshal(Message{Type: messageType, Payload: payload})
	if err != nil {
		log.Printf("Error marshaling %s message: %v", messageType, err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	sent := 0
	for client := range h.games[gameID] {
		select {
		case client.send <- data:
			sent++
		default:
			log.Printf("Client %s send buffer full, dropping connection", client.id)
			close(client.send)
			delete(h.clients, client)
			h.detachLocked(client)
		}
	}

	log.Printf("Broadcast %s to %d clients in game %s", messageType, sent, gameID)
}

// ConnectedPlayers lists the player ids currently subscribed to a game.
func (h *Hub) ConnectedPlayers(gameID string) []string {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	var playerIDs []string
	for client := range h.games[gameID] {
		if client.playerID != "" {
			playerIDs = append(playerIDs, client.playerID)
		}
	}
	return playerIDs
}

func (h *Hub) subscribe(client *Client, gameID, playerID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if client.gameID != "" {
		h.detachLocked(client)
	}

	client.gameID = gameID
	client.playerID = playerID

	if h.games[gameID] == nil {
		h.games[gameID] = make(map[*Client]bool)
	}
	h.games[gameID][client] = true
}

// detachLocked removes a client from the game index. Caller holds h.mutex.
func (h *Hub) detachLocked(client *Client) {
	if client.gameID == "" {
		return
	}
	if set, ok := h.games[client.gameID]; ok {
		delete(set, client)
		if len(set) == 0 {
			delete(h.games, client.gameID)
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		c.socket.Close()
	}()

	for {
		_, data, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Error unmarshaling message from client %s: %v", c.id, err)
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	defer c.socket.Close()

	for message := range c.send {
		w, err := c.socket.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)
		if err := w.Close(); err != nil {
			return
		}
	}

	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) handleMessage(msg inboundMessage) {
	switch msg.Type {
	case "ping":
		c.sendMessage("pong", "pong")

	case "join_game":
		var payload joinGamePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendMessage("error", ErrorPayload{Message: "malformed join_game payload"})
			return
		}

		game, ok := c.hub.gameService.GetGame(payload.GameID)
		if !ok {
			c.sendMessage("error", ErrorPayload{Message: "game not found"})
			return
		}
		if game.FindPlayer(payload.PlayerID) == nil {
			c.sendMessage("error", ErrorPayload{Message: "player not found in game"})
			return
		}

		c.hub.subscribe(c, payload.GameID, payload.PlayerID)
		log.Printf("Client %s announced as player %s in game %s", c.id, payload.PlayerID, payload.GameID)
		c.sendMessage("state_sync", StateSyncPayload{Game: game})

	case "request_state":
		if c.gameID == "" {
			c.sendMessage("error", ErrorPayload{Message: "not in a game"})
			return
		}
		game, ok := c.hub.gameService.GetGame(c.gameID)
		if !ok {
			c.sendMessage("error", ErrorPayload{Message: "game not found"})
			return
		}
		c.sendMessage("state_sync", StateSyncPayload{Game: game})

	default:
		log.Printf("Unknown message type %q from client %s", msg.Type, c.id)
	}
}

func (c *Client) sendMessage(messageType string, payload any) {
	data, err := json.Marshal(Message{Type: messageType, Payload: payload})
	if err != nil {
		log.Printf("Error marshaling %s message: %v", messageType, err)
		return
	}

	select {
	case c.send <- data:
	default:
		log.Printf("Client %s send buffer full, message %s dropped", c.id, messageType)
	}
}
