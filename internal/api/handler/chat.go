package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"docchat/internal/api/response"
	"docchat/internal/domain"
	"docchat/internal/service"
	"github.com/go-playground/validator/v10"
)

type chatRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

type chatResponse struct {
	Success        bool               `json:"success"`
	Response       string             `json:"response"`
	DocumentsFound int                `json:"documentsFound"`
	Storage        domain.StorageTier `json:"storage"`
	Warning        string             `json:"warning,omitempty"`
}

// ChatHandler handles chat turns
type ChatHandler struct {
	chat     *service.ChatService
	validate *validator.Validate
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{
		chat:     chat,
		validate: validator.New(),
	}
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, "sessionId and message are required")
		return
	}

	result, err := h.chat.Chat(r.Context(), req.SessionID, req.Message)
	if err != nil {
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) {
			response.BadGateway(w, "model call failed", upstream.Error())
			return
		}
		response.InternalError(w, "chat failed", err.Error())
		return
	}

	response.OK(w, chatResponse{
		Success:        true,
		Response:       result.Response,
		DocumentsFound: result.DocumentsFound,
		Storage:        result.Tier,
		Warning:        result.Warning,
	})
}
