package web

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/chessgame-go/internal/middleware"
)

//go:embed static
var staticFiles embed.FS

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger *slog.Logger
}

// NewRouter creates the router serving the browser client: the page at /
// and its assets under /static/
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger, middleware.PlainPanicHandler))

	assets, err := fs.Sub(staticFiles, "static")
	if err != nil {
		// The embedded tree is fixed at build time
		panic(err)
	}

	r.PathPrefix("/static/").Handler(
		noCache(http.StripPrefix("/static/", http.FileServerFS(assets))),
	).Methods(http.MethodGet, http.MethodHead)

	r.HandleFunc("/", indexHandler(assets)).Methods(http.MethodGet, http.MethodHead)

	return r
}

// indexHandler serves index.html
func indexHandler(assets fs.FS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := fs.ReadFile(assets, "index.html")
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			_, _ = w.Write(page)
		}
	}
}

func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		next.ServeHTTP(w, r)
	})
}
