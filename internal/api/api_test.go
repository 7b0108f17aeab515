package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/chessgame-go/internal/api"
	"github.com/mcoot/chessgame-go/internal/api/apierr"
	"github.com/mcoot/chessgame-go/internal/api/response"
	"github.com/mcoot/chessgame-go/internal/factory"
	"github.com/mcoot/chessgame-go/internal/middleware"
	"github.com/mcoot/chessgame-go/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.App
}

func newTestServer(t *testing.T, opts ...func(*api.RouterConfig)) *testServer {
	t.Helper()

	logger := testutil.NopLogger()

	// API tests are integration tests - use production factory with real random/clock
	app, err := factory.New(t.Context(), factory.Config{AuthConfig: factory.TestAuthConfig()})
	require.NoError(t, err)

	cfg := api.RouterConfig{
		Logger:          logger,
		AuthService:     app.AuthService,
		LobbyController: app.LobbyController,
		GameController:  app.GameController,
		Metrics:         middleware.NewMetrics("chess"),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &testServer{
		t:       t,
		handler: api.NewRouter(cfg),
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// login registers handle and returns a session token
func (ts *testServer) login(handle string) string {
	ts.t.Helper()

	creds := map[string]string{"handle": handle, "password": handle + "-secret"}
	rr := ts.request(http.MethodPost, "/register", creds, "")
	require.Equal(ts.t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodPost, "/login", creds, "")
	require.Equal(ts.t, http.StatusOK, rr.Code, rr.Body.String())

	var resp response.LoginResponse
	require.NoError(ts.t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(ts.t, resp.Token)
	return resp.Token
}

func (ts *testServer) newGame(token string) string {
	ts.t.Helper()

	rr := ts.request(http.MethodPost, "/new_game", nil, token)
	require.Equal(ts.t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp response.GameCreated
	require.NoError(ts.t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(ts.t, resp.GameID)
	return resp.GameID
}

func (ts *testServer) move(gameID, token, move string) (*httptest.ResponseRecorder, response.MoveResponse) {
	ts.t.Helper()

	rr := ts.request(http.MethodPost, "/make_move/"+gameID, map[string]string{"move": move}, token)
	var resp response.MoveResponse
	if rr.Code == http.StatusOK {
		require.NoError(ts.t, json.Unmarshal(rr.Body.Bytes(), &resp))
	}
	return rr, resp
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.APIError {
	t.Helper()
	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	// Register
	rr := ts.request(http.MethodPost, "/register", map[string]string{"handle": "alice", "password": "pw1"}, "")
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), "registered")

	// Duplicate handle
	rr = ts.request(http.MethodPost, "/register", map[string]string{"handle": "alice", "password": "other"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeHandleExists, decodeError(t, rr).Code)

	// Login
	rr = ts.request(http.MethodPost, "/login", map[string]string{"handle": "alice", "password": "pw1"}, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var loginResp response.LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &loginResp))
	assert.NotEmpty(t, loginResp.Token)
	assert.False(t, loginResp.ExpiresAt.IsZero())

	// Me
	rr = ts.request(http.MethodGet, "/me", nil, loginResp.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	var me response.MeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
	assert.Equal(t, "alice", me.Handle)
}

func TestRegisterAcceptsUsernameAlias(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/register", map[string]string{"username": "bob", "password": "pw"}, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodPost, "/login", map[string]string{"handle": "bob", "password": "pw"}, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body any
	}{
		{"missing handle", map[string]string{"password": "pw"}},
		{"missing password", map[string]string{"handle": "alice"}},
		{"blank handle", map[string]string{"handle": "   ", "password": "pw"}},
		{"not an object", []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/register", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, apierr.CodeInvalidRequest, decodeError(t, rr).Code)
		})
	}
}

func TestLoginFailures(t *testing.T) {
	ts := newTestServer(t)
	ts.login("alice")

	rr := ts.request(http.MethodPost, "/login", map[string]string{"handle": "alice", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeInvalidCredentials, decodeError(t, rr).Code)

	// Unknown handles are indistinguishable from wrong passwords
	rr = ts.request(http.MethodPost, "/login", map[string]string{"handle": "nobody", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeInvalidCredentials, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/login", map[string]string{"handle": "alice"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/me"},
		{http.MethodPost, "/new_game"},
		{http.MethodGet, "/open_games"},
		{http.MethodGet, "/get_games"},
		{http.MethodPost, "/join_game/g1"},
		{http.MethodGet, "/get_board/g1"},
		{http.MethodPost, "/make_move/g1"},
		{http.MethodGet, "/moves/g1"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rr := ts.request(route.method, route.path, nil, "")
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, apierr.CodeUnauthorized, decodeError(t, rr).Code)

			rr = ts.request(route.method, route.path, nil, "garbage")
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestLobbyFlow(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.login("alice")
	bob := ts.login("bob")
	carol := ts.login("carol")

	gameID := ts.newGame(alice)

	// Own games are not listed as joinable
	rr := ts.request(http.MethodGet, "/open_games", nil, alice)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = ts.request(http.MethodGet, "/open_games", nil, bob)
	require.Equal(t, http.StatusOK, rr.Code)
	var open []response.OpenGame
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &open))
	require.Len(t, open, 1)
	assert.Equal(t, gameID, open[0].GameID)
	assert.Equal(t, "alice", open[0].White)

	// Cannot join own game
	rr = ts.request(http.MethodPost, "/join_game/"+gameID, nil, alice)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeOwnGame, decodeError(t, rr).Code)

	// Unknown game
	rr = ts.request(http.MethodPost, "/join_game/does-not-exist", nil, bob)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeGameNotFound, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/join_game/"+gameID, nil, bob)
	require.Equal(t, http.StatusOK, rr.Code)

	// A started game is no longer open
	rr = ts.request(http.MethodPost, "/join_game/"+gameID, nil, carol)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeGameNotOpen, decodeError(t, rr).Code)

	rr = ts.request(http.MethodGet, "/open_games", nil, carol)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = ts.request(http.MethodGet, "/get_games", nil, bob)
	require.Equal(t, http.StatusOK, rr.Code)
	var games []response.GameSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &games))
	require.Len(t, games, 1)
	assert.Equal(t, "alice", games[0].White)
	require.NotNil(t, games[0].Black)
	assert.Equal(t, "bob", *games[0].Black)
	assert.Equal(t, "in_progress", games[0].Status)
	assert.Equal(t, "black", games[0].Color)
	require.NotNil(t, games[0].Opponent)
	assert.Equal(t, "alice", *games[0].Opponent)

	rr = ts.request(http.MethodGet, "/get_games", nil, alice)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &games))
	require.Len(t, games, 1)
	assert.Equal(t, "white", games[0].Color)
	require.NotNil(t, games[0].Opponent)
	assert.Equal(t, "bob", *games[0].Opponent)

	// Outsiders cannot see the game
	rr = ts.request(http.MethodGet, "/get_board/"+gameID, nil, carol)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestOpenGameBoardHasNoBlack(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.login("alice")
	gameID := ts.newGame(alice)

	rr := ts.request(http.MethodGet, "/get_board/"+gameID, nil, alice)
	require.Equal(t, http.StatusOK, rr.Code)

	var board response.Board
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &board))
	assert.Nil(t, board.Black)
	assert.Equal(t, "open", board.Status)
	assert.Equal(t, "white", board.Turn)
	assert.Len(t, board.LegalMoves, 20)

	rr, _ = ts.move(gameID, alice, "e2e4")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeGameNotInProgress, decodeError(t, rr).Code)
}

func TestPlayToCheckmate(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.login("alice")
	bob := ts.login("bob")
	gameID := ts.newGame(alice)
	require.Equal(t, http.StatusOK, ts.request(http.MethodPost, "/join_game/"+gameID, nil, bob).Code)

	// Black cannot move first
	rr, _ := ts.move(gameID, bob, "e7e5")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, apierr.CodeNotYourTurn, decodeError(t, rr).Code)

	// Illegal moves are reported in the body
	rr, resp := ts.move(gameID, alice, "e2e5")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)

	for _, blank := range []string{"", "   "} {
		rr, resp = ts.move(gameID, alice, blank)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.False(t, resp.Success)
		assert.NotEmpty(t, resp.Error)
	}
	rr = ts.request(http.MethodGet, "/moves/"+gameID, nil, alice)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())

	rr, resp = ts.move(gameID, alice, "f2f3")
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, resp.Success)
	assert.Equal(t, "in_progress", resp.Status)
	assert.Contains(t, resp.Position, " b ")

	rr = ts.request(http.MethodGet, "/get_board/"+gameID, nil, bob)
	require.Equal(t, http.StatusOK, rr.Code)
	var board response.Board
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &board))
	assert.Equal(t, "black", board.Turn)
	assert.Contains(t, board.LegalMoves, "e7e5")
	assert.False(t, board.IsOver)
	assert.Nil(t, board.Result)

	_, resp = ts.move(gameID, bob, "e5")
	require.True(t, resp.Success)
	assert.Equal(t, "e7e5", resp.UCI)
	_, resp = ts.move(gameID, alice, "g2g4")
	require.True(t, resp.Success)
	_, resp = ts.move(gameID, bob, "d8h4")
	require.True(t, resp.Success)
	assert.Equal(t, "completed", resp.Status)
	assert.True(t, resp.IsOver)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "0-1", resp.Result.Outcome)
	assert.Equal(t, "black", resp.Result.Winner)

	rr = ts.request(http.MethodGet, "/get_board/"+gameID, nil, alice)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &board))
	assert.True(t, board.IsOver)
	assert.Empty(t, board.LegalMoves)
	assert.Equal(t, "completed", board.Status)

	rr, _ = ts.move(gameID, alice, "e2e4")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeGameNotInProgress, decodeError(t, rr).Code)

	rr = ts.request(http.MethodGet, "/moves/"+gameID, nil, bob)
	require.Equal(t, http.StatusOK, rr.Code)
	var moves []response.Move
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &moves))
	require.Len(t, moves, 4)
	assert.Equal(t, []string{"f2f3", "e7e5", "g2g4", "d8h4"}, []string{moves[0].UCI, moves[1].UCI, moves[2].UCI, moves[3].UCI})
	assert.Equal(t, "bob", moves[3].Player)
	assert.Equal(t, "Qh4#", moves[3].SAN)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.request(http.MethodGet, "/health", nil, "")

	rr := ts.request(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `chess_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, func(cfg *api.RouterConfig) {
		cfg.CORSAllowedOrigins = []string{"http://localhost:3000"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/make_move/g1", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	ts := newTestServer(t, func(cfg *api.RouterConfig) {
		cfg.AuthRateLimit = 0.001
		cfg.AuthRateBurst = 2
	})

	creds := map[string]string{"handle": "alice", "password": "pw"}
	assert.Equal(t, http.StatusCreated, ts.request(http.MethodPost, "/register", creds, "").Code)
	assert.Equal(t, http.StatusOK, ts.request(http.MethodPost, "/login", creds, "").Code)

	rr := ts.request(http.MethodPost, "/login", creds, "")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, apierr.CodeRateLimited, decodeError(t, rr).Code)

	// Other routes are not limited
	assert.Equal(t, http.StatusOK, ts.request(http.MethodGet, "/health", nil, "").Code)
}
