package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/chessgame-go/internal/api/middleware"
	"github.com/mcoot/chessgame-go/internal/api/response"
	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/services/lobby"
)

// LobbyHandler handles game creation and matchmaking endpoints
type LobbyHandler struct {
	lobbyController *lobby.Controller
}

// NewLobbyHandler creates a new lobby handler
func NewLobbyHandler(lobbyController *lobby.Controller) *LobbyHandler {
	return &LobbyHandler{
		lobbyController: lobbyController,
	}
}

// NewGame handles POST /new_game
func (h *LobbyHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	handle := middleware.MustGetHandle(r.Context())

	g, err := h.lobbyController.CreateGame(r.Context(), handle)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.GameCreated{
		GameID:  string(g.ID),
		Message: "New game created. Waiting for an opponent to join.",
	})
}

// OpenGames handles GET /open_games
func (h *LobbyHandler) OpenGames(w http.ResponseWriter, r *http.Request) {
	handle := middleware.MustGetHandle(r.Context())

	games, err := h.lobbyController.ListOpenGames(r.Context(), handle)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OpenGamesFromModel(games))
}

// JoinGame handles POST /join_game/{gameId}
func (h *LobbyHandler) JoinGame(w http.ResponseWriter, r *http.Request) {
	handle := middleware.MustGetHandle(r.Context())
	id := model.GameID(mux.Vars(r)["gameId"])

	if _, err := h.lobbyController.JoinGame(r.Context(), id, handle); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Message{Message: "Joined game successfully"})
}
