package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/dafibh/finora/finora-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// JWTValidator resolves an access token to the caller's workspace. A valid
// token for a login that has not completed /auth/callback yields 0.
type JWTValidator interface {
	ValidateToken(ctx context.Context, token string) (workspaceID int32, err error)
}

// WebSocketHandler upgrades /ws requests into realtime ledger sessions
type WebSocketHandler struct {
	hub            *websocket.Hub
	validator      JWTValidator
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a WebSocketHandler accepting browser
// connections from the CORS origins
func NewWebSocketHandler(hub *websocket.Hub, validator JWTValidator, allowedOrigins []string) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:            hub,
		validator:      validator,
		allowedOrigins: make(map[string]bool, len(allowedOrigins)),
	}
	for _, origin := range allowedOrigins {
		h.allowedOrigins[origin] = true
	}
	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin lets non-browser clients (no Origin header) through
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigins[origin] {
		return true
	}
	log.Warn().Str("origin", origin).Msg("Realtime connection rejected: origin not allowed")
	return false
}

// HandleWS serves GET /ws?token=<access token>. The session receives every
// ledger event of the token's workspace.
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return NewUnauthorizedError(c, "Missing token")
	}

	workspaceID, err := h.validator.ValidateToken(c.Request().Context(), token)
	if err != nil {
		log.Debug().Err(err).Msg("Realtime connection rejected: invalid token")
		return NewUnauthorizedError(c, "Invalid token")
	}
	if workspaceID <= 0 {
		return NewUnauthorizedError(c, "Workspace not set up")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already answered the request.
		log.Debug().Err(err).Int32("workspace_id", workspaceID).Msg("Realtime upgrade failed")
		return nil
	}

	client, err := h.hub.Attach(conn, workspaceID)
	if err != nil {
		if !errors.Is(err, websocket.ErrHubClosed) {
			log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to attach realtime client")
		}
		return nil
	}

	log.Info().
		Int32("workspace_id", workspaceID).
		Str("client_id", client.ID()).
		Msg("Realtime client connected")
	return nil
}
