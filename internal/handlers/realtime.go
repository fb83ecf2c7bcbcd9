package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	apierrors "github.com/yukikurage/agency-hub/internal/errors"
	"github.com/yukikurage/agency-hub/internal/middleware"
	"github.com/yukikurage/agency-hub/internal/policy"
	"github.com/yukikurage/agency-hub/internal/realtime"
	"github.com/yukikurage/agency-hub/internal/services"
	"github.com/yukikurage/agency-hub/internal/token"
)

// RealtimeHandler upgrades authenticated requests to websocket connections.
type RealtimeHandler struct {
	hub         *realtime.Hub
	tokens      *token.Manager
	users       middleware.UserLoader
	chatService *services.ChatService
	upgrader    websocket.Upgrader
}

// NewRealtimeHandler creates a RealtimeHandler. allowOrigin decides cross-origin upgrades; nil allows same-origin only.
func NewRealtimeHandler(hub *realtime.Hub, tokens *token.Manager, users middleware.UserLoader, chatService *services.ChatService, allowOrigin func(*http.Request) bool) *RealtimeHandler {
	return &RealtimeHandler{
		hub:         hub,
		tokens:      tokens,
		users:       users,
		chatService: chatService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     allowOrigin,
		},
	}
}

// Connect verifies the token from ?token= or the Authorization header, then joins
// the socket to its user room, its agency room and, for client users, the client room.
func (h *RealtimeHandler) Connect(c *gin.Context) {
	raw := c.Query("token")
	if raw == "" {
		raw = token.FromHeader(c.GetHeader("Authorization"))
	}
	if raw == "" {
		apierrors.Unauthorized(c, "Authentication error")
		return
	}

	claims, err := h.tokens.Parse(raw)
	if err != nil {
		apierrors.Unauthorized(c, "Authentication error")
		return
	}
	fromToken, err := claims.Principal()
	if err != nil {
		apierrors.Unauthorized(c, "Authentication error")
		return
	}
	user, err := h.users.FindByID(fromToken.UserID)
	if err != nil || !user.IsActive {
		apierrors.Unauthorized(c, "Authentication error")
		return
	}

	p := policy.Principal{
		UserID:   user.ID,
		Role:     user.Role,
		AgencyID: user.AgencyID,
		ClientID: user.ClientID,
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Uint64("user_id", p.UserID).Msg("Websocket upgrade failed")
		return
	}

	h.hub.Serve(c.Request.Context(), ws, p.UserID, Rooms(p), h.inbound(p))
}

// Rooms lists the rooms a principal's connection joins.
func Rooms(p policy.Principal) []string {
	rooms := []string{realtime.UserRoom(p.UserID)}
	if p.AgencyID != nil {
		rooms = append(rooms, realtime.AgencyRoom(*p.AgencyID))
	}
	if p.IsClient() && p.ClientID != nil {
		rooms = append(rooms, realtime.ClientRoom(*p.ClientID))
	}
	return rooms
}

func (h *RealtimeHandler) inbound(p policy.Principal) realtime.InboundHandler {
	return func(ctx context.Context, _ *realtime.Client, env realtime.Envelope) error {
		switch env.Event {
		case realtime.EventSendMessage:
			var input services.SendMessageInput
			if err := env.Decode(&input); err != nil {
				return fmt.Errorf("invalid %s payload", env.Event)
			}
			_, err := h.chatService.Send(ctx, p, input)
			return err
		default:
			return fmt.Errorf("unknown event %q", env.Event)
		}
	}
}
