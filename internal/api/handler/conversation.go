package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/tourneybot/internal/api/request"
	"github.com/mcoot/tourneybot/internal/api/response"
	"github.com/mcoot/tourneybot/internal/model"
	"github.com/mcoot/tourneybot/internal/services/registration"
)

// Dialogue processes one conversation event
type Dialogue interface {
	Handle(ctx context.Context, userID model.UserID, ev model.Event) (*registration.Reply, error)
}

// ConversationHandler drives the registration dialogue over HTTP,
// exactly as the Telegram transport does
type ConversationHandler struct {
	dialogue Dialogue
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(dialogue Dialogue) *ConversationHandler {
	return &ConversationHandler{
		dialogue: dialogue,
	}
}

// PostEvent handles POST /api/v1/conversations/{user_id}/events
func (h *ConversationHandler) PostEvent(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(mux.Vars(r)["user_id"])
	if userID == "" {
		WriteError(w, NewInvalidRequestError("user_id is required"))
		return
	}

	var req request.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Kind == "" {
		WriteError(w, NewInvalidRequestError("kind is required"))
		return
	}

	ev := model.Event{Kind: model.EventKind(req.Kind), Payload: req.Payload}
	reply, err := h.dialogue.Handle(r.Context(), model.UserID(userID), ev)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ReplyFromModel(reply))
}
