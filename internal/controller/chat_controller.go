package controller

import (
	"github.com/rvemuri2/helix-backend/internal/dto"
	"github.com/rvemuri2/helix-backend/internal/pkg/serverutils"
	"github.com/rvemuri2/helix-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendMessage(ctx *fiber.Ctx) error
	Classify(ctx *fiber.Ctx) error
	LoadHistory(ctx *fiber.Ctx) error
	ClearHistory(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("message", c.SendMessage)
	h.Post("classify", c.Classify)
	h.Get("load", c.LoadHistory)
	h.Delete("history", c.ClearHistory)
}

// Chat errors are rendered in the chat envelope itself so the panel can show
// the reply inline instead of a generic error toast.
func chatError(ctx *fiber.Ctx, err error) error {
	if appErr, ok := serverutils.AsAppError(err); ok {
		return ctx.Status(appErr.Code).JSON(dto.ChatResponse{
			Reply:    appErr.Message,
			Sequence: []dto.StepDTO{},
		})
	}
	return err
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if req.UserId == "" {
		return chatError(ctx, serverutils.NewAppError(fiber.StatusBadRequest, "Missing user_id."))
	}

	res, err := c.chatService.SendMessage(ctx.Context(), &req)
	if err != nil {
		return chatError(ctx, err)
	}

	return ctx.JSON(res)
}

func (c *chatController) Classify(ctx *fiber.Ctx) error {
	var req dto.ClassifyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	res, err := c.chatService.Classify(ctx.Context(), &req)
	if err != nil {
		return chatError(ctx, err)
	}

	return ctx.JSON(res)
}

func (c *chatController) LoadHistory(ctx *fiber.Ctx) error {
	userId := ctx.Query("user_id", "")
	if userId == "" {
		return chatError(ctx, serverutils.NewAppError(fiber.StatusBadRequest, "Missing user_id."))
	}

	res, err := c.chatService.LoadHistory(ctx.Context(), userId)
	if err != nil {
		return chatError(ctx, err)
	}

	return ctx.JSON(res)
}

func (c *chatController) ClearHistory(ctx *fiber.Ctx) error {
	userId := ctx.Query("user_id", "")
	if userId == "" {
		return chatError(ctx, serverutils.NewAppError(fiber.StatusBadRequest, "Missing user_id."))
	}

	if err := c.chatService.ClearHistory(ctx.Context(), userId); err != nil {
		return chatError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Chat history cleared.", nil))
}
