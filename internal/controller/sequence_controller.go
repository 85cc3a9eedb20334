package controller

import (
	"github.com/rvemuri2/helix-backend/internal/dto"
	"github.com/rvemuri2/helix-backend/internal/pkg/serverutils"
	"github.com/rvemuri2/helix-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISequenceController interface {
	RegisterRoutes(r fiber.Router)
	UpdateStep(ctx *fiber.Ctx) error
}

type sequenceController struct {
	sequenceService service.ISequenceService
}

func NewSequenceController(sequenceService service.ISequenceService) ISequenceController {
	return &sequenceController{
		sequenceService: sequenceService,
	}
}

func (c *sequenceController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sequence/v1")
	h.Put("update", c.UpdateStep)
}

func (c *sequenceController) UpdateStep(ctx *fiber.Ctx) error {
	var req dto.UpdateStepRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "Missing required parameters."))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "Missing required parameters."))
	}

	res, err := c.sequenceService.UpdateStep(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Step updated.", res))
}
