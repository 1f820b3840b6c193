package handler

import (
	"net/http"

	"github.com/msomdec/taskchat/internal/service"
)

// ChatHandler handles chat HTTP requests.
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// HandleChat processes one chat turn. Omitting conversation_id starts a new
// conversation.
// POST /chat
// Request:  {"conversation_id":"...","message":"..."}
// Response: {"conversation_id":"...","reply":"..."}
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConversationID string `json:"conversation_id"`
		Message        string `json:"message"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body.")
		return
	}

	conv, reply, err := h.chat.Respond(r.Context(), req.ConversationID, req.Message)
	if err != nil {
		writeDomainError(w, "chat turn", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"conversation_id": conv.ID,
		"reply":           reply,
	})
}

// HandleConversations lists the subject's conversations, most recently
// active first.
// GET /chat/conversations
// Response: {"conversations":[...]}
func (h *ChatHandler) HandleConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := h.chat.ListConversations(r.Context())
	if err != nil {
		writeDomainError(w, "list conversations", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"conversations": toConversationDTOs(convs),
	})
}

// HandleConversation returns one conversation with its transcript.
// GET /chat/conversations/{id}
// Response: {"conversation":{...},"messages":[...]}
func (h *ChatHandler) HandleConversation(w http.ResponseWriter, r *http.Request) {
	conv, msgs, err := h.chat.Messages(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, "get conversation", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"conversation": toConversationDTO(conv),
		"messages":     toMessageDTOs(msgs),
	})
}
