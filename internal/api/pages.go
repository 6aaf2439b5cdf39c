package api

import (
	"net/http"
	"strconv"

	"github.com/ashureev/ajiwai-labs/internal/domain"
	"github.com/ashureev/ajiwai-labs/internal/identity"
)

// GetChat returns the chat transcript, creating the session if needed.
func (h *Handler) GetChat(w http.ResponseWriter, r *http.Request) {
	sess := h.chat.GetOrInit(identity.SessionKey(r.Context(), domain.PageChat))
	h.observeSessions()
	JSON(w, http.StatusOK, newChatView(sess, ""))
}

// PostChat sends one message to the assistant.
func (h *Handler) PostChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := identity.UserIDFromContext(ctx)

	req, ok := decodeSubmit(w, r)
	if !ok || !h.allow(w, userID) {
		return
	}

	reply, sess, err := h.chat.Send(ctx, userID, identity.SessionKey(ctx, domain.PageChat), req.Message)
	if err != nil {
		writeServiceError(w, err, "user_id", userID, "page", domain.PageChat)
		return
	}
	JSON(w, http.StatusOK, newChatView(sess, reply))
}

// ResetChat discards the chat session.
func (h *Handler) ResetChat(w http.ResponseWriter, r *http.Request) {
	h.chat.Reset(identity.SessionKey(r.Context(), domain.PageChat))
	h.observeSessions()
	JSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// GetSimulator returns the scenario, transcript and checklist.
func (h *Handler) GetSimulator(w http.ResponseWriter, r *http.Request) {
	sess := h.sim.GetOrInit(identity.SessionKey(r.Context(), domain.PageSimulator))
	h.observeSessions()
	JSON(w, http.StatusOK, newSimulatorView(sess))
}

// PostSimulator submits the trainee's response to the customer.
func (h *Handler) PostSimulator(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := identity.UserIDFromContext(ctx)

	req, ok := decodeSubmit(w, r)
	if !ok || !h.allow(w, userID) {
		return
	}

	res, err := h.sim.Submit(ctx, userID, identity.SessionKey(ctx, domain.PageSimulator), req.Message)
	if err != nil {
		writeServiceError(w, err, "user_id", userID, "page", domain.PageSimulator)
		return
	}
	JSON(w, http.StatusOK, newTurnView(res))
}

// ResetSimulator sends the customer away. The next access draws a new one.
func (h *Handler) ResetSimulator(w http.ResponseWriter, r *http.Request) {
	h.sim.Reset(identity.SessionKey(r.Context(), domain.PageSimulator))
	h.observeSessions()
	JSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// ListAttempts returns the user's recent resolved attempts.
func (h *Handler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := identity.UserIDFromContext(ctx)

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	attempts, err := h.sim.Attempts(ctx, userID, limit)
	if err != nil {
		writeServiceError(w, err, "user_id", userID)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"attempts": attempts})
}

// PostManual answers a question from the manual.
func (h *Handler) PostManual(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := identity.UserIDFromContext(ctx)

	req, ok := decodeSubmit(w, r)
	if !ok || !h.allow(w, userID) {
		return
	}

	question := req.Question
	if question == "" {
		question = req.Message
	}

	res, err := h.manual.Answer(ctx, question)
	if err != nil {
		writeServiceError(w, err, "user_id", userID, "page", domain.PageManual)
		return
	}
	JSON(w, http.StatusOK, newManualView(res))
}
