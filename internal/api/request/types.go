package request

import "strings"

// CredentialsRequest is the request body for /register and /login.
// "username" is accepted as an alias of "handle".
type CredentialsRequest struct {
	Handle   string `json:"handle"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

// HandleOrUsername returns the trimmed handle, falling back to username
func (r CredentialsRequest) HandleOrUsername() string {
	if h := strings.TrimSpace(r.Handle); h != "" {
		return h
	}
	return strings.TrimSpace(r.Username)
}

// MoveRequest is the request body for /make_move/{gameId}
type MoveRequest struct {
	Move string `json:"move"`
}
