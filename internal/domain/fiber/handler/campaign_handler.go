package handler

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/fadilmartias/cv-screener/internal/apperror"
	"github.com/fadilmartias/cv-screener/internal/dto"
	"github.com/fadilmartias/cv-screener/internal/export"
	"github.com/fadilmartias/cv-screener/internal/middleware"
	"github.com/fadilmartias/cv-screener/internal/response"
	"github.com/fadilmartias/cv-screener/internal/usecase"
	"github.com/fadilmartias/cv-screener/internal/util"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type CampaignHandler struct {
	campaign *usecase.Campaign
	log      *zap.Logger
}

func NewCampaignHandler(campaign *usecase.Campaign, log *zap.Logger) *CampaignHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CampaignHandler{campaign: campaign, log: log}
}

func (h *CampaignHandler) RegisterRoutes(app fiber.Router) {
	g := app.Group("/campaign")
	g.Get("/candidates", h.Candidates)
	g.Post("/candidates/:name/send", h.SendOne)
	g.Get("/confirmation", h.Confirmation)
	g.Post("/send-all", middleware.RateLimiter(1, 4*time.Second), h.SendAll)
	g.Delete("/status", h.Reset)
	g.Get("/export", h.Export)
}

func (h *CampaignHandler) Candidates(c *fiber.Ctx) error {
	views := h.campaign.Candidates()
	page := response.NewPagination(c.QueryInt("page", 1), c.QueryInt("page_size", response.DefaultPageSize), len(views))
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success get candidates",
		Data:       dto.NewCandidateDTOs(response.Slice(views, page)),
		Pagination: page,
	})
}

func (h *CampaignHandler) SendOne(c *fiber.Ctx) error {
	name := c.Params("name")
	candidate, ok := h.campaign.Candidate(name)
	if !ok {
		return util.FailWith(c, apperror.NewValidationError(apperror.ReasonUnknownCandidate,
			fmt.Sprintf("no candidate named %q", name)))
	}
	if err := h.campaign.SendOne(c.UserContext(), candidate); err != nil {
		return util.FailWith(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: fmt.Sprintf("Email sent to %s", candidate.Name),
		Data:    fiber.Map{"name": candidate.Name, "status": h.campaign.StatusOf(candidate.Name)},
	})
}

func (h *CampaignHandler) Confirmation(c *fiber.Ctx) error {
	confirmation := h.campaign.RequestConfirmation()
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: confirmation.Message,
		Data:    dto.ConfirmationDTO{Pending: confirmation.Pending, Message: confirmation.Message},
	})
}

// SendAll runs the whole batch inside the request. The batch is not tied to
// the request context so a dropped client does not stop it midway.
func (h *CampaignHandler) SendAll(c *fiber.Ctx) error {
	var req dto.SendAllRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadRequest,
				Message: "invalid request body",
			}, err)
		}
	}

	summary, err := h.campaign.SendAll(context.WithoutCancel(c.UserContext()), req.Confirmed)
	if err != nil {
		return util.FailWith(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: fmt.Sprintf("All emails processed! %d sent, %d failed.", summary.Sent, summary.Failed),
		Data:    dto.NewDispatchSummaryDTO(summary),
	})
}

func (h *CampaignHandler) Reset(c *fiber.Ctx) error {
	h.campaign.ResetStatus(c.UserContext())
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Mail status reset",
	})
}

func (h *CampaignHandler) Export(c *fiber.Ctx) error {
	var buf bytes.Buffer
	now := time.Now()
	if err := export.WriteCampaignReport(&buf, h.campaign.Candidates(), now); err != nil {
		h.log.Error("campaign export failed", zap.Error(err))
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to export campaign",
		}, err)
	}
	c.Attachment(fmt.Sprintf("campaign-%s.xlsx", now.UTC().Format("20060102-150405")))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(buf.Bytes())
}
