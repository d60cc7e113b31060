package chat

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zixuanzhao/chat-relay/internal/middleware"
	chatmodel "github.com/zixuanzhao/chat-relay/internal/model/chat"
	chatservice "github.com/zixuanzhao/chat-relay/internal/service/chat"
	"github.com/zixuanzhao/chat-relay/pkg/utils"
)

// Handler exposes the authenticated history read endpoint.
type Handler struct {
	chatSvc *chatservice.Service
}

// New creates the chat handler.
func New(chatSvc *chatservice.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes registers the history route. The router mounts it behind
// the bearer-token middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/chats", h.handleListChats)
}

func (h *Handler) handleListChats(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.UsernameFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "could not validate credentials")
		return
	}

	turns, err := h.chatSvc.History(r.Context(), username)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "history unavailable")
		return
	}

	if turns == nil {
		turns = []chatmodel.Turn{}
	}
	utils.RespondJSON(w, http.StatusOK, turns)
}
