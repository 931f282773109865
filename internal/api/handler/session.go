package handler

import (
	"net/http"

	"docchat/internal/api/response"
	"docchat/internal/domain"
	"docchat/internal/service"
	"github.com/go-chi/chi/v5"
)

type sessionResponse struct {
	SessionID     string             `json:"sessionId"`
	DocumentCount int                `json:"documentCount"`
	Storage       domain.StorageTier `json:"storage"`
}

// SessionHandler reports per-session document state
type SessionHandler struct {
	chat *service.ChatService
}

func NewSessionHandler(chat *service.ChatService) *SessionHandler {
	return &SessionHandler{chat: chat}
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		response.BadRequest(w, "missing session id")
		return
	}

	count, tier := h.chat.SessionInfo(r.Context(), sessionID)

	response.OK(w, sessionResponse{
		SessionID:     sessionID,
		DocumentCount: count,
		Storage:       tier,
	})
}
