package web_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/chessgame-go/internal/testutil"
	"github.com/mcoot/chessgame-go/internal/web"
)

func newWebTestServer(t *testing.T) http.Handler {
	t.Helper()
	return web.NewRouter(web.RouterConfig{Logger: testutil.NopLogger()})
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestIndexPage(t *testing.T) {
	h := newWebTestServer(t)

	rr := get(h, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")

	doc, err := goquery.NewDocumentFromReader(rr.Body)
	require.NoError(t, err)

	assert.Equal(t, "Chess", doc.Find("title").Text())

	// Login and registration share one form
	form := doc.Find("form#auth-form")
	require.Equal(t, 1, form.Length())
	assert.Equal(t, 1, form.Find(`input[name="handle"]`).Length())
	assert.Equal(t, 1, form.Find(`input[name="password"][type="password"]`).Length())
	assert.Equal(t, 1, form.Find(`button[value="login"]`).Length())
	assert.Equal(t, 1, form.Find(`button[value="register"]`).Length())

	// Lobby and game panels start hidden
	for _, id := range []string{"#lobby-panel", "#game-panel"} {
		_, hidden := doc.Find(id).Attr("hidden")
		assert.True(t, hidden, "%s should be hidden", id)
	}
	assert.Equal(t, 1, doc.Find("#board").Length())
	assert.Equal(t, 1, doc.Find("#my-games").Length())
	assert.Equal(t, 1, doc.Find("#open-games").Length())
	assert.Equal(t, 1, doc.Find("#toasts").Length())

	// Every referenced asset is served
	var assets []string
	doc.Find(`link[rel="stylesheet"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		assets = append(assets, href)
	})
	doc.Find("script[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		assets = append(assets, src)
	})
	require.Len(t, assets, 2)
	for _, path := range assets {
		assert.Equal(t, http.StatusOK, get(h, path).Code, path)
	}
}

func TestStaticAssets(t *testing.T) {
	h := newWebTestServer(t)

	rr := get(h, "/static/app.js")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "javascript")
	assert.Contains(t, rr.Body.String(), "/make_move/")
	assert.Equal(t, "no-cache", rr.Header().Get("Cache-Control"))

	rr = get(h, "/static/style.css")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/css")
}

func TestUnknownPaths(t *testing.T) {
	h := newWebTestServer(t)

	assert.Equal(t, http.StatusNotFound, get(h, "/static/missing.js").Code)
	assert.Equal(t, http.StatusNotFound, get(h, "/nope").Code)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
