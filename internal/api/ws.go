package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/ashureev/ajiwai-labs/internal/domain"
	"github.com/ashureev/ajiwai-labs/internal/identity"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// Frame types accepted over the WebSocket.
const (
	frameState  = "state"
	frameSubmit = "submit"
	frameReset  = "reset"
	framePing   = "ping"
)

// wsRequest is a client frame.
type wsRequest struct {
	Page    domain.Page `json:"page"`
	Type    string      `json:"type"`
	Content string      `json:"content,omitempty"`
}

// wsResponse is a server frame. Data carries the same body the JSON API returns.
type wsResponse struct {
	Page  domain.Page `json:"page,omitempty"`
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// ServeWS upgrades the request and serves page operations over one socket.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	slog.Info("WebSocket connection request", "user_id", userID, "session_id", sessionID, "ip", identity.IPFromRequest(r))

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // origin already checked above
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "user_id", userID)
		}
	}()

	h.conns.Register(userID, sessionID, ws)
	defer h.conns.Unregister(userID, sessionID, ws)

	ctx := r.Context()
	for {
		var req wsRequest
		if err := wsjson.Read(ctx, ws, &req); err != nil {
			if websocket.CloseStatus(err) != -1 || errors.Is(err, context.Canceled) {
				slog.Debug("WebSocket closed by client", "user_id", userID)
			} else {
				slog.Warn("WebSocket read error", "error", err, "user_id", userID)
			}
			return
		}

		resp := h.dispatch(ctx, userID, req)
		if err := wsjson.Write(ctx, ws, resp); err != nil {
			slog.Debug("WebSocket write error", "error", err, "user_id", userID)
			return
		}
	}
}

// CloseConnections terminates every live WebSocket.
func (h *Handler) CloseConnections() {
	h.conns.CloseAll()
}

func (h *Handler) dispatch(ctx context.Context, userID string, req wsRequest) wsResponse {
	resp := wsResponse{Page: req.Page, Type: req.Type}

	if req.Type == framePing {
		resp.Type = "pong"
		return resp
	}
	if req.Type == frameSubmit && h.limiter != nil && !h.limiter.Allow(userID) {
		resp.Error = "rate_limited"
		return resp
	}

	var err error
	switch req.Page {
	case domain.PageChat:
		resp.Data, err = h.dispatchChat(ctx, userID, req)
	case domain.PageSimulator:
		resp.Data, err = h.dispatchSimulator(ctx, userID, req)
	case domain.PageManual:
		if req.Type != frameSubmit {
			err = errUnsupportedFrame
			break
		}
		var v manualView
		if v, err = h.answerManual(ctx, req.Content); err == nil {
			resp.Data = v
		}
	default:
		resp.Error = "unknown page"
		return resp
	}

	if errors.Is(err, errUnsupportedFrame) {
		resp.Data = nil
		resp.Error = "unsupported frame"
		return resp
	}
	if err != nil {
		status, code := errorStatus(err)
		if status >= http.StatusInternalServerError {
			slog.Error("WebSocket request failed", "error", err, "user_id", userID, "page", req.Page)
		}
		resp.Data = nil
		resp.Error = code
	}
	return resp
}

var errUnsupportedFrame = errors.New("unsupported frame")

func (h *Handler) dispatchChat(ctx context.Context, userID string, req wsRequest) (interface{}, error) {
	key := identity.SessionKey(ctx, domain.PageChat)
	switch req.Type {
	case frameState:
		return newChatView(h.chat.GetOrInit(key), ""), nil
	case frameSubmit:
		reply, sess, err := h.chat.Send(ctx, userID, key, req.Content)
		if err != nil {
			return nil, err
		}
		return newChatView(sess, reply), nil
	case frameReset:
		h.chat.Reset(key)
		h.observeSessions()
		return newChatView(h.chat.GetOrInit(key), ""), nil
	}
	return nil, errUnsupportedFrame
}

func (h *Handler) dispatchSimulator(ctx context.Context, userID string, req wsRequest) (interface{}, error) {
	key := identity.SessionKey(ctx, domain.PageSimulator)
	switch req.Type {
	case frameState:
		return newSimulatorView(h.sim.GetOrInit(key)), nil
	case frameSubmit:
		res, err := h.sim.Submit(ctx, userID, key, req.Content)
		if err != nil {
			return nil, err
		}
		return newTurnView(res), nil
	case frameReset:
		h.sim.Reset(key)
		h.observeSessions()
		return newSimulatorView(h.sim.GetOrInit(key)), nil
	}
	return nil, errUnsupportedFrame
}

func (h *Handler) answerManual(ctx context.Context, question string) (manualView, error) {
	res, err := h.manual.Answer(ctx, question)
	if err != nil {
		return manualView{}, err
	}
	return newManualView(res), nil
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range h.origins {
		if o == "*" || o == origin {
			return true
		}
	}
	// Same-origin requests from the embedded UI.
	if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.origins)
	return false
}
