package handler

import (
	"fmt"
	"io"

	"github.com/fadilmartias/cv-screener/internal/dto"
	"github.com/fadilmartias/cv-screener/internal/model"
	"github.com/fadilmartias/cv-screener/internal/usecase"
	"github.com/fadilmartias/cv-screener/internal/util"
	"github.com/gofiber/fiber/v2"
)

const uploadField = "pdf_file"

type UploadHandler struct {
	pipeline       *usecase.UploadPipeline
	maxUploadBytes int64
}

func NewUploadHandler(pipeline *usecase.UploadPipeline, maxUploadBytes int64) *UploadHandler {
	return &UploadHandler{pipeline: pipeline, maxUploadBytes: maxUploadBytes}
}

func (h *UploadHandler) RegisterRoutes(app fiber.Router) {
	g := app.Group("/upload")
	g.Get("/", h.Show)
	g.Post("/", h.Select)
	g.Post("/extract", h.Extract)
	g.Put("/position", h.SetPosition)
	g.Post("/analyze", h.Analyze)
}

func (h *UploadHandler) Show(c *fiber.Ctx) error {
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get upload state",
		Data:    dto.NewPipelineDTO(h.pipeline.Snapshot()),
	})
}

// Select accepts the multipart upload and runs extraction on it straight away.
func (h *UploadHandler) Select(c *fiber.Ctx) error {
	doc, ok, err := h.readDocument(c)
	if !ok {
		return err
	}

	if err := h.pipeline.SelectDocument(c.UserContext(), doc); err != nil {
		return util.FailWith(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "PDF uploaded!",
		Data:    dto.NewPipelineDTO(h.pipeline.Snapshot()),
	})
}

// readDocument loads the uploaded file. When ok is false the error response
// has already been written and err is what the handler should return.
func (h *UploadHandler) readDocument(c *fiber.Ctx) (model.Document, bool, error) {
	file, err := c.FormFile(uploadField)
	if err != nil {
		return model.Document{}, false, util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: fmt.Sprintf("%s file is required", uploadField),
		}, err)
	}
	if h.maxUploadBytes > 0 && file.Size > h.maxUploadBytes {
		return model.Document{}, false, util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusRequestEntityTooLarge,
			Message: fmt.Sprintf("%s file size is too large (max %d bytes)", uploadField, h.maxUploadBytes),
		})
	}

	f, err := file.Open()
	if err != nil {
		return model.Document{}, false, util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "cannot read uploaded file",
		}, err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return model.Document{}, false, util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "cannot read uploaded file",
		}, err)
	}
	return model.Document{
		Name:      file.Filename,
		MediaType: file.Header.Get(fiber.HeaderContentType),
		Content:   content,
	}, true, nil
}

// Extract retries extraction on the current document.
func (h *UploadHandler) Extract(c *fiber.Ctx) error {
	if err := h.pipeline.ExtractSkills(c.UserContext()); err != nil {
		return util.FailWith(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success extract skills",
		Data:    dto.NewPipelineDTO(h.pipeline.Snapshot()),
	})
}

func (h *UploadHandler) SetPosition(c *fiber.Ctx) error {
	var req dto.PositionRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}
	h.pipeline.SetTargetPosition(req.Position)
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success set position",
		Data:    dto.NewPipelineDTO(h.pipeline.Snapshot()),
	})
}

func (h *UploadHandler) Analyze(c *fiber.Ctx) error {
	outcome, err := h.pipeline.Analyze(c.UserContext())
	if err != nil {
		return util.FailWith(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Analysis complete!",
		Data:    dto.NewAnalysisDTO(outcome),
	})
}
