package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zixuanzhao/chat-relay/internal/auth"
	"github.com/zixuanzhao/chat-relay/internal/model/chat"
)

// Exchanger runs one full message cycle against storage and the completion
// provider. *chatservice.Service satisfies it.
type Exchanger interface {
	Exchange(ctx context.Context, username, message string, at time.Time) (chat.Turn, error)
}

// inboundFrame is the client payload for one message cycle.
type inboundFrame struct {
	AccessToken string `json:"access_token"`
	Message     string `json:"message"`
}

// outboundFrame carries a generated reply or a notice back to the client.
type outboundFrame struct {
	Message string `json:"message"`
	Time    string `json:"time"`
}

const (
	invalidTokenNotice    = "Invalid access token. Please Log Out and Log In Again."
	malformedNotice       = "Could not read that message. Send a JSON object with access_token and message."
	cycleFailedNotice     = "Sorry, no reply could be generated right now. Please try again."
	authUnavailableNotice = "Authentication is temporarily unavailable. Please try again."
)

// Handler owns the websocket endpoint: it upgrades the connection, registers
// it, and runs message cycles until the transport closes.
type Handler struct {
	registry  *Registry
	verifier  auth.Verifier
	exchanger Exchanger
	upgrader  websocket.Upgrader
}

// New creates the websocket handler.
func New(registry *Registry, verifier auth.Verifier, exchanger Exchanger) *Handler {
	return &Handler{
		registry:  registry,
		verifier:  verifier,
		exchanger: exchanger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the websocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/chat", h.handleChat)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}

	sess := h.registry.Register(conn)
	defer conn.Close()
	defer h.registry.Unregister(sess)

	h.serve(r.Context(), sess, conn)
}

// serve is the session loop. Cycles run strictly in order: the next frame is
// not read until the current cycle finishes. Cycle failures notify the client
// and keep the connection open; only a transport error ends the session.
func (h *Handler) serve(ctx context.Context, sess *Session, conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[ws] session %s read error: %v", sess.ID(), err)
			}
			return
		}

		h.runCycle(ctx, sess, raw)
	}
}

func (h *Handler) runCycle(ctx context.Context, sess *Session, raw []byte) {
	now := time.Now()
	stamp := chat.FormatTime(now)

	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil || frame.Message == "" {
		h.notify(sess, malformedNotice, stamp)
		return
	}

	username, err := h.verifier.Verify(frame.AccessToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			h.notify(sess, invalidTokenNotice, stamp)
			return
		}
		log.Printf("[ws] session %s verifier error: %v", sess.ID(), err)
		h.notify(sess, authUnavailableNotice, stamp)
		return
	}

	reply, err := h.exchanger.Exchange(ctx, username, frame.Message, now)
	if err != nil {
		log.Printf("[ws] session %s cycle failed for user %s: %v", sess.ID(), username, err)
		h.notify(sess, cycleFailedNotice, stamp)
		return
	}

	if err := h.registry.Deliver(sess, outboundFrame{Message: reply.Message, Time: stamp}); err != nil {
		log.Printf("[ws] session %s deliver failed: %v", sess.ID(), err)
	}
}

func (h *Handler) notify(sess *Session, message, stamp string) {
	if err := h.registry.Deliver(sess, outboundFrame{Message: message, Time: stamp}); err != nil {
		log.Printf("[ws] session %s notify failed: %v", sess.ID(), err)
	}
}
