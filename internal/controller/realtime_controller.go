package controller

import (
	"blog-autowriter-be/internal/dto"
	"blog-autowriter-be/internal/pkg/logger"
	"blog-autowriter-be/internal/service"
	"blog-autowriter-be/internal/session"
	internalWS "blog-autowriter-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	identityLocal = "ws_identity_key"
	framesLocal   = "ws_initial_frames"
)

type IRealtimeController interface {
	RegisterRoutes(r fiber.Router)
}

type realtimeController struct {
	hub            *internalWS.Hub
	profileService service.IProfileService
	messageService service.IMessageService
	requireSession fiber.Handler
	logger         logger.ILogger
}

func NewRealtimeController(hub *internalWS.Hub, profileService service.IProfileService, messageService service.IMessageService, requireSession fiber.Handler, log logger.ILogger) IRealtimeController {
	return &realtimeController{
		hub:            hub,
		profileService: profileService,
		messageService: messageService,
		requireSession: requireSession,
		logger:         log,
	}
}

func (c *realtimeController) RegisterRoutes(r fiber.Router) {
	r.Get("/ws", c.requireSession, c.upgrade, websocket.New(c.serve))
}

// upgrade runs before the handshake. It snapshots the current state so the
// socket starts with fresh values.
func (c *realtimeController) upgrade(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}
	sess := session.FromCtx(ctx)

	var frames []internalWS.Envelope
	if profile, err := c.profileService.GetProfile(ctx.Context(), sess); err == nil {
		frames = append(frames, internalWS.Envelope{Type: internalWS.TypeProfile, Data: profile})
	}
	if count, err := c.messageService.UnreadCount(ctx.Context(), sess.IdentityKey); err == nil {
		frames = append(frames, internalWS.Envelope{Type: internalWS.TypeMessages, Data: &dto.UnreadCountResponse{Unread: count}})
	}

	ctx.Locals(identityLocal, sess.IdentityKey)
	ctx.Locals(framesLocal, frames)
	return ctx.Next()
}

func (c *realtimeController) serve(conn *websocket.Conn) {
	key, _ := conn.Locals(identityLocal).(string)
	if key == "" {
		conn.Close()
		return
	}
	frames, _ := conn.Locals(framesLocal).([]internalWS.Envelope)

	c.logger.Debug("HUB", "Websocket connected", map[string]interface{}{"identity_key": key})
	internalWS.ServeWs(c.hub, conn, key, frames...)
}
