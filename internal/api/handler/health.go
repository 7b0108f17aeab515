package handler

import (
	"net/http"

	"github.com/mcoot/chessgame-go/internal/api/response"
)

// Health handles GET /health
func Health(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
