package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/journallm/journallm/internal/api/respond"
	"github.com/journallm/journallm/internal/api/validate"
	"github.com/journallm/journallm/internal/chat"
	"github.com/journallm/journallm/internal/model"
)

// Replier produces an assistant reply for one chat request.
type Replier interface {
	Reply(ctx context.Context, req chat.Request) (string, error)
}

type ChatHandler struct {
	replier Replier
}

func NewChatHandler(r Replier) *ChatHandler {
	return &ChatHandler{replier: r}
}

type chatRequest struct {
	Message   string         `json:"message"`
	StartDate string         `json:"start_date"`
	EndDate   string         `json:"end_date"`
	History   []chat.Message `json:"history"`
}

type chatResponse struct {
	Response  string `json:"response"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// HandleChat handles POST /api/chat/
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}

	if err := validate.NonEmpty("message", req.Message); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	start, end, err := validate.DateRange("start_date", req.StartDate, "end_date", req.EndDate)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	for _, m := range req.History {
		if err := validate.Role(m.Role); err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}
	}

	reply, err := h.replier.Reply(r.Context(), chat.Request{
		Message: req.Message,
		Start:   start,
		End:     end,
		History: chat.PairHistory(req.History),
	})
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			respond.WriteBadRequest(w, err.Error())
			return
		}
		respond.WriteInternalError(w, "Failed to get response from assistant: "+err.Error())
		return
	}

	respond.WriteJSON(w, http.StatusOK, chatResponse{
		Response:  reply,
		StartDate: strings.TrimSpace(req.StartDate),
		EndDate:   strings.TrimSpace(req.EndDate),
	})
}
