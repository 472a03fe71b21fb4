package handlers

import (
	"errors"
	"net/http"

	"bluffcall/models"
	"bluffcall/services"

	"github.com/gin-gonic/gin"
)

type GameHandler struct {
	gameService *services.GameService
	hub         *services.Hub
}

func NewGameHandler(gameService *services.GameService, hub *services.Hub) *GameHandler {
	return &GameHandler{
		gameService: gameService,
		hub:         hub,
	}
}

func (h *GameHandler) CreateGame(c *gin.Context) {
	var req services.CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, hostPlayerID, err := h.gameService.CreateGame(req.HostName)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"game":           game,
		"host_player_id": hostPlayerID,
	})
}

func (h *GameHandler) GetGame(c *gin.Context) {
	game, ok := h.gameService.GetGame(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	c.JSON(http.StatusOK, game)
}

func (h *GameHandler) ListGames(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"games": h.gameService.ListGames()})
}

func (h *GameHandler) JoinGame(c *gin.Context) {
	var req services.JoinGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gameID := c.Param("id")
	game, playerID, err := h.gameService.JoinGame(gameID, req.Name)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	h.hub.BroadcastPlayerJoined(gameID, game.FindPlayer(playerID), game)

	c.JSON(http.StatusOK, gin.H{
		"game":      game,
		"player_id": playerID,
	})
}

func (h *GameHandler) PlayCard(c *gin.Context) {
	var req services.PlayCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gameID := c.Param("id")
	game, err := h.gameService.PlayCard(gameID, req.PlayerID, req.CardID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	h.hub.BroadcastCardPlayed(gameID, game)

	c.JSON(http.StatusOK, game)
}

func (h *GameHandler) AccusePlayer(c *gin.Context) {
	var req services.AccuseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gameID := c.Param("id")
	game, err := h.gameService.AccusePlayer(gameID, req.AccusingPlayerID, req.AccusedPlayerID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	h.hub.BroadcastAccusation(gameID, game)

	c.JSON(http.StatusOK, game)
}

func (h *GameHandler) ContinueAfterRevelation(c *gin.Context) {
	gameID := c.Param("id")
	game, err := h.gameService.ContinueAfterRevelation(gameID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	h.hub.BroadcastStateSync(gameID, game)

	c.JSON(http.StatusOK, game)
}

// statusForError keeps absence (404) distinct from rule violations (409).
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrGameNotFound),
		errors.Is(err, models.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrGameFull),
		errors.Is(err, models.ErrGameFinished),
		errors.Is(err, models.ErrGameNotActive),
		errors.Is(err, models.ErrNotRevelationPhase),
		errors.Is(err, models.ErrNotYourTurn),
		errors.Is(err, models.ErrCardNotFound),
		errors.Is(err, models.ErrNoCardToAccuse),
		errors.Is(err, models.ErrAccusedNotLastPlayer):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
