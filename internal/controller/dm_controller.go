package controller

import (
	"unimind-be/internal/dto"
	"unimind-be/internal/pkg/serverutils"
	"unimind-be/internal/service"
	ws "unimind-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type IDirectMessageController interface {
	RegisterRoutes(r fiber.Router)
	GetConnections(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	Send(ctx *fiber.Ctx) error
}

type directMessageController struct {
	dmService service.IDirectMessageService
	hub       *ws.Hub
}

func NewDirectMessageController(dmService service.IDirectMessageService, hub *ws.Hub) IDirectMessageController {
	return &directMessageController{
		dmService: dmService,
		hub:       hub,
	}
}

func (c *directMessageController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/dm/v1")

	// Websocket upgrades cannot carry the Authorization header from browsers,
	// so the socket route does its own token check during the handshake.
	h.Use("/ws", func(ctx *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(ctx) {
			return fiber.ErrUpgradeRequired
		}
		userIdStr, err := serverutils.ParseWsToken(ctx)
		if err != nil {
			return err
		}
		ctx.Locals("ws_user_id", userIdStr)
		return ctx.Next()
	})
	h.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		userIdStr, _ := conn.Locals("ws_user_id").(string)
		userId, err := uuid.Parse(userIdStr)
		if err != nil {
			conn.Close()
			return
		}
		ws.ServeWs(c.hub, conn, userId)
	}))

	h.Use(serverutils.JwtMiddleware)
	h.Get("connections", c.GetConnections)
	h.Get("history/:peerId", c.GetHistory)
	h.Post("send", c.Send)
}

func (c *directMessageController) GetConnections(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.dmService.GetConnections(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get connections", res))
}

func (c *directMessageController) GetHistory(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	peerId, err := uuid.Parse(ctx.Params("peerId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid peer id")
	}

	res, err := c.dmService.GetHistory(ctx.Context(), userId, peerId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get message history", res))
}

func (c *directMessageController) Send(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.SendDirectMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.dmService.Send(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send message", res))
}
