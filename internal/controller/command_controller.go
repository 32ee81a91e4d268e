package controller

import (
	"errors"

	"unimind-be/internal/dto"
	"unimind-be/internal/pkg/serverutils"
	"unimind-be/pkg/command"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICommandController interface {
	RegisterRoutes(r fiber.Router)
	GetConsentURL(ctx *fiber.Ctx) error
	ConsentCallback(ctx *fiber.Ctx) error
	DenyConsent(ctx *fiber.Ctx) error
}

type commandController struct {
	dispatcher *command.Dispatcher
}

func NewCommandController(dispatcher *command.Dispatcher) ICommandController {
	return &commandController{
		dispatcher: dispatcher,
	}
}

func (c *commandController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/command/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("consent/url", c.GetConsentURL)
	h.Post("consent/callback", c.ConsentCallback)
	h.Post("consent/deny", c.DenyConsent)
}

// GetConsentURL rebuilds the consent link for a pending command, e.g. after
// the client reloaded and lost the one returned from the ask call.
func (c *commandController) GetConsentURL(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	sessionId, err := uuid.Parse(ctx.Query("chat_session_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid session id")
	}

	url, err := c.dispatcher.ConsentURL(userId, sessionId)
	if err != nil {
		if errors.Is(err, command.ErrNoPendingCommand) {
			return fiber.NewError(fiber.StatusNotFound, "No pending command for this session")
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get consent url", &dto.ConsentURLResponse{
		ChatSessionId: sessionId,
		ConsentURL:    url,
	}))
}

func (c *commandController) ConsentCallback(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.ConsentCallbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	status, message, err := c.dispatcher.Grant(ctx.Context(), userId, req.ChatSessionId, req.Code)
	if err != nil {
		if errors.Is(err, command.ErrNoPendingCommand) {
			return fiber.NewError(fiber.StatusNotFound, "No pending command for this session")
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Command resolved", &dto.CommandOutcomeResponse{
		ChatSessionId: req.ChatSessionId,
		Status:        string(status),
		Message:       message,
	}))
}

func (c *commandController) DenyConsent(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.ConsentDenyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	message, err := c.dispatcher.Deny(ctx.Context(), userId, req.ChatSessionId)
	if err != nil {
		if errors.Is(err, command.ErrNoPendingCommand) {
			return fiber.NewError(fiber.StatusNotFound, "No pending command for this session")
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Command dismissed", &dto.CommandOutcomeResponse{
		ChatSessionId: req.ChatSessionId,
		Status:        string(command.StatusFailed),
		Message:       message,
	}))
}
