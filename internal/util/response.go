package util

import (
	"errors"
	"runtime/debug"

	"github.com/fadilmartias/cv-screener/internal/apperror"
	"github.com/fadilmartias/cv-screener/internal/config"
	"github.com/fadilmartias/cv-screener/internal/response"
	"github.com/gofiber/fiber/v2"
)

type SuccessResponseFormat struct {
	Code       int
	Message    string
	Data       any
	Pagination *response.Pagination
	Meta       any
}

type OrderedSuccessResponse struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Meta       any                  `json:"meta,omitempty"`
	Pagination *response.Pagination `json:"pagination,omitempty"`
	Data       any                  `json:"data,omitempty"`
}

type ErrorResponseFormat struct {
	Code       int
	Message    string
	Reason     string
	DevMessage string
	Details    any
	Trace      string
}

type OrderedErrorResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Reason     string `json:"reason,omitempty"`
	DevMessage string `json:"dev_message,omitempty"`
	Details    any    `json:"details,omitempty"`
	Trace      string `json:"trace,omitempty"`
}

// SuccessResponse writes the standard success envelope.
func SuccessResponse(c *fiber.Ctx, params SuccessResponseFormat) error {
	response := OrderedSuccessResponse{
		Success:    true,
		Message:    params.Message,
		Data:       params.Data,
		Pagination: params.Pagination,
		Meta:       params.Meta,
	}
	code := params.Code
	if code == 0 {
		code = fiber.StatusOK
	}
	return c.Status(code).JSON(response)
}

// ErrorResponse writes the standard error envelope. Outside production the
// first error is echoed back with a stack trace.
func ErrorResponse(c *fiber.Ctx, params ErrorResponseFormat, errs ...error) error {
	response := OrderedErrorResponse{
		Success: false,
		Message: params.Message,
		Reason:  params.Reason,
	}
	if params.Details != nil {
		response.Details = params.Details
	}
	if !config.LoadAppConfig().IsProduction() {
		if len(errs) > 0 && errs[0] != nil {
			response.DevMessage = errs[0].Error()
			response.Trace = string(debug.Stack())
		}
		if params.DevMessage != "" {
			response.DevMessage = params.DevMessage
		}
		if params.Trace != "" {
			response.Trace = params.Trace
		}
	}

	errorCode := params.Code
	if params.Code == 0 {
		errorCode = fiber.StatusInternalServerError
	}
	return c.Status(errorCode).JSON(response)
}

// StatusFor maps the error taxonomy onto HTTP status codes.
func StatusFor(err error) int {
	var ve *apperror.ValidationError
	switch {
	case errors.As(err, &ve):
		if ve.Reason == apperror.ReasonUnknownCandidate {
			return fiber.StatusNotFound
		}
		if ve.Reason == apperror.ReasonUnsupportedMediaType {
			return fiber.StatusUnsupportedMediaType
		}
		return fiber.StatusBadRequest
	case errors.Is(err, apperror.ErrOperationInProgress),
		errors.Is(err, apperror.ErrBatchInProgress),
		errors.Is(err, apperror.ErrSuperseded):
		return fiber.StatusConflict
	case apperror.IsRemote(err):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// FailWith answers with the status and user-facing message derived from err.
func FailWith(c *fiber.Ctx, err error) error {
	params := ErrorResponseFormat{
		Code:    StatusFor(err),
		Message: apperror.UserMessage(err),
	}
	var ve *apperror.ValidationError
	if errors.As(err, &ve) {
		params.Reason = ve.Reason
	}
	return ErrorResponse(c, params, err)
}
