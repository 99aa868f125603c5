package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/journallm/journallm/internal/api/respond"
	"github.com/journallm/journallm/internal/whoop"
)

// WhoopAuthHandler drives the vendor OAuth flow for the single local user.
type WhoopAuthHandler struct {
	oauth  *whoop.OAuth
	tokens *whoop.TokenStore
}

func NewWhoopAuthHandler(o *whoop.OAuth, tokens *whoop.TokenStore) *WhoopAuthHandler {
	return &WhoopAuthHandler{oauth: o, tokens: tokens}
}

// HandleLogin handles GET /api/whoop/login
func (h *WhoopAuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.oauth.Configured() {
		respond.WriteInternalError(w, "WHOOP_CLIENT_ID not configured. Please set it in your .env file")
		return
	}
	state, err := whoop.NewState()
	if err != nil {
		log.Error().Err(err).Msg("generate oauth state")
		respond.WriteInternalError(w, "Failed to start WHOOP login")
		return
	}
	h.tokens.SetState(state)
	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// HandleCallback handles GET /api/whoop/callback?code=&state=
func (h *WhoopAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	code, state := r.URL.Query().Get("code"), r.URL.Query().Get("state")
	if code == "" || state == "" {
		respond.WriteBadRequest(w, "code and state are required")
		return
	}
	if !h.tokens.ConsumeState(state) {
		respond.WriteBadRequest(w, "Invalid state parameter. Possible CSRF attack.")
		return
	}

	sess, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		writeTokenError(w, "Failed to exchange code for token: ", err)
		return
	}
	h.tokens.Set(sess)
	log.Info().Str("scope", sess.Scope).Msg("whoop connected")
	http.Redirect(w, r, "/?whoop_connected=true", http.StatusTemporaryRedirect)
}

// HandleRefresh handles POST /api/whoop/refresh
func (h *WhoopAuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	rt := h.tokens.RefreshToken()
	if rt == "" {
		respond.WriteUnauthorized(w, "No refresh token available. Please re-authenticate.")
		return
	}
	sess, err := h.oauth.Refresh(r.Context(), rt)
	if err != nil {
		writeTokenError(w, "Failed to refresh token: ", err)
		return
	}
	if sess.RefreshToken == "" {
		sess.RefreshToken = rt
	}
	h.tokens.Set(sess)
	respond.WriteJSON(w, http.StatusOK, map[string]any{
		"message":    "Token refreshed successfully",
		"expires_in": sess.ExpiresIn(),
	})
}

// HandleStatus handles GET /api/whoop/status
func (h *WhoopAuthHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.tokens.Session()
	var scopes []string
	if ok && sess.Scope != "" {
		scopes = strings.Fields(sess.Scope)
	}
	respond.WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": ok,
		"scopes":        scopes,
	})
}

// HandleLogout handles POST /api/whoop/logout
func (h *WhoopAuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.tokens.Clear()
	respond.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func writeTokenError(w http.ResponseWriter, prefix string, err error) {
	var te *whoop.TokenError
	if errors.As(err, &te) {
		respond.WriteError(w, te.StatusCode, prefix+te.Body)
		return
	}
	log.Error().Err(err).Msg("whoop token request failed")
	respond.WriteError(w, http.StatusBadGateway, prefix+err.Error())
}
