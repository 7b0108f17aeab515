package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/chessgame-go/internal/api/middleware"
	"github.com/mcoot/chessgame-go/internal/api/request"
	"github.com/mcoot/chessgame-go/internal/api/response"
	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/services/game"
)

// GameHandler handles in-game endpoints
type GameHandler struct {
	gameController *game.Controller
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameController *game.Controller) *GameHandler {
	return &GameHandler{
		gameController: gameController,
	}
}

// List handles GET /get_games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	handle := middleware.MustGetHandle(r.Context())

	games, err := h.gameController.ListGames(r.Context(), handle)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameSummariesFromModel(handle, games))
}

// Board handles GET /get_board/{gameId}
func (h *GameHandler) Board(w http.ResponseWriter, r *http.Request) {
	handle := middleware.MustGetHandle(r.Context())
	id := model.GameID(mux.Vars(r)["gameId"])

	view, err := h.gameController.GetBoard(r.Context(), id, handle)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.BoardFromView(view))
}

// Move handles POST /make_move/{gameId}
func (h *GameHandler) Move(w http.ResponseWriter, r *http.Request) {
	handle := middleware.MustGetHandle(r.Context())
	id := model.GameID(mux.Vars(r)["gameId"])

	var req request.MoveRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	result, err := h.gameController.MakeMove(r.Context(), id, handle, req.Move)
	if err != nil {
		WriteError(w, err)
		return
	}

	// A rejected move still answers 200 with success false
	response.JSON(w, http.StatusOK, response.MoveResponseFromResult(result))
}

// History handles GET /moves/{gameId}
func (h *GameHandler) History(w http.ResponseWriter, r *http.Request) {
	handle := middleware.MustGetHandle(r.Context())
	id := model.GameID(mux.Vars(r)["gameId"])

	moves, err := h.gameController.GetMoves(r.Context(), id, handle)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MovesFromModel(moves))
}
