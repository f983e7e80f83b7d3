package controller

import (
	"recall-be/internal/dto"
	"recall-be/internal/pkg/apperror"
	"recall-be/internal/pkg/serverutils"
	"recall-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IExtractionController interface {
	RegisterRoutes(r fiber.Router)
	Open(ctx *fiber.Ctx) error
	Close(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	StageFile(ctx *fiber.Ctx) error
	Analyze(ctx *fiber.Ctx) error
	Confirm(ctx *fiber.Ctx) error
	Ignore(ctx *fiber.Ctx) error
}

type extractionController struct {
	service service.IExtractionService
}

func NewExtractionController(service service.IExtractionService) IExtractionController {
	return &extractionController{service: service}
}

func (c *extractionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/extraction/v1/projects/:projectId")
	h.Post("/session", c.Open)
	h.Delete("/session", c.Close)
	h.Post("/session/reset", c.Reset)
	h.Get("/session", c.Status)
	h.Post("/session/file", c.StageFile)
	h.Post("/session/analyze", c.Analyze)
	h.Post("/session/decisions/:decisionId/confirm", c.Confirm)
	h.Post("/session/decisions/:decisionId/ignore", c.Ignore)
}

func projectIdParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("projectId"))
	if err != nil {
		return uuid.Nil, apperror.NewInvalidArgument("Invalid project id")
	}
	return id, nil
}

func (c *extractionController) Open(ctx *fiber.Ctx) error {
	projectId, err := projectIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.OpenSession(ctx.Context(), projectId)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Extraction session opened", res))
}

func (c *extractionController) Close(ctx *fiber.Ctx) error {
	projectId, err := projectIdParam(ctx)
	if err != nil {
		return err
	}

	if err := c.service.CloseSession(ctx.Context(), projectId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Extraction session closed", nil))
}

func (c *extractionController) Reset(ctx *fiber.Ctx) error {
	projectId, err := projectIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.ResetSession(ctx.Context(), projectId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Extraction session reset", res))
}

func (c *extractionController) Status(ctx *fiber.Ctx) error {
	projectId, err := projectIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Status(ctx.Context(), projectId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Extraction session status", res))
}

func (c *extractionController) StageFile(ctx *fiber.Ctx) error {
	projectId, err := projectIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.StageFileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.StageFile(ctx.Context(), projectId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("File staged", res))
}

func (c *extractionController) Analyze(ctx *fiber.Ctx) error {
	projectId, err := projectIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.BeginAnalysis(ctx.Context(), projectId)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Analysis started", res))
}

func (c *extractionController) Confirm(ctx *fiber.Ctx) error {
	projectId, err := projectIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.ConfirmDecision(ctx.Context(), projectId, ctx.Params("decisionId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Decision confirm processed", res))
}

func (c *extractionController) Ignore(ctx *fiber.Ctx) error {
	projectId, err := projectIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.IgnoreDecision(ctx.Context(), projectId, ctx.Params("decisionId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Decision ignore processed", res))
}
