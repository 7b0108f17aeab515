package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/chessgame-go/internal/api/handler"
	"github.com/mcoot/chessgame-go/internal/api/middleware"
	httpmw "github.com/mcoot/chessgame-go/internal/middleware"
	"github.com/mcoot/chessgame-go/internal/services/auth"
	"github.com/mcoot/chessgame-go/internal/services/game"
	"github.com/mcoot/chessgame-go/internal/services/lobby"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	AuthService     *auth.Service
	LobbyController *lobby.Controller
	GameController  *game.Controller

	// Metrics is optional; when set, requests are instrumented and /metrics is served
	Metrics *httpmw.Metrics
	// UI is optional; when set it serves / and /static/
	UI http.Handler

	CORSAllowedOrigins []string
	// AuthRateLimit is requests per second per client on /register and /login; 0 disables
	AuthRateLimit float64
	AuthRateBurst int
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	lobbyHandler := handler.NewLobbyHandler(cfg.LobbyController)
	gameHandler := handler.NewGameHandler(cfg.GameController)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	rateLimitMiddleware := middleware.RateLimit(cfg.AuthRateLimit, cfg.AuthRateBurst)

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(httpmw.Logging(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	// Account routes (no auth required)
	accounts := r.NewRoute().Subrouter()
	accounts.Use(rateLimitMiddleware)
	accounts.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	accounts.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)

	// Protected routes
	protected := r.NewRoute().Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/me", authHandler.Me).Methods(http.MethodGet)
	protected.HandleFunc("/new_game", lobbyHandler.NewGame).Methods(http.MethodPost)
	protected.HandleFunc("/open_games", lobbyHandler.OpenGames).Methods(http.MethodGet)
	protected.HandleFunc("/join_game/{gameId}", lobbyHandler.JoinGame).Methods(http.MethodPost)
	protected.HandleFunc("/get_games", gameHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/get_board/{gameId}", gameHandler.Board).Methods(http.MethodGet)
	protected.HandleFunc("/make_move/{gameId}", gameHandler.Move).Methods(http.MethodPost)
	protected.HandleFunc("/moves/{gameId}", gameHandler.History).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	r.HandleFunc("/health", handler.Health).Methods(http.MethodGet)

	if cfg.UI != nil {
		r.PathPrefix("/static/").Handler(cfg.UI).Methods(http.MethodGet, http.MethodHead)
		r.Handle("/", cfg.UI).Methods(http.MethodGet, http.MethodHead)
	}

	// CORS wraps the router so preflight requests are answered before method matching
	return httpmw.CORS(cfg.CORSAllowedOrigins)(r)
}
