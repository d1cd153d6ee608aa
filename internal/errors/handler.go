package errors

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
)

// ErrorHandler centralizes HTTP error responses so every handler logs and
// renders failures the same way.
type ErrorHandler struct {
	logger        *slog.Logger
	includeDetail bool
}

// NewErrorHandler creates a handler. includeDetail controls whether internal
// error details reach the client; keep it off outside development.
func NewErrorHandler(logger *slog.Logger, includeDetail bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{logger: logger, includeDetail: includeDetail}
}

// HandleError maps an error to an HTTP response. APIError values render
// as-is; AppError values map by type; anything else becomes a generic 500.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		h.logger.WarnContext(ctx, "request failed",
			slog.String("error_code", apiErr.ErrorCode),
			slog.Int("status", apiErr.StatusCode),
			slog.String("message", apiErr.Message))
		render.Render(w, r, NewErrorResponse(apiErr))
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		mapped := h.mapAppError(appErr)
		h.logger.WarnContext(ctx, "request failed",
			slog.String("error_type", string(appErr.Type)),
			slog.Int("status", mapped.StatusCode),
			slog.String("error", appErr.Error()))
		render.Render(w, r, NewErrorResponse(mapped))
		return
	}

	h.logger.ErrorContext(ctx, "unexpected error",
		slog.String("error", err.Error()))
	resp := ErrInternalServer
	if h.includeDetail {
		resp = NewWithDetails(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error", err.Error())
	}
	render.Render(w, r, NewErrorResponse(resp))
}

// mapAppError translates the application error taxonomy into HTTP terms.
func (h *ErrorHandler) mapAppError(appErr *AppError) *APIError {
	switch appErr.Type {
	case ErrTypeParsing, ErrTypeFormat:
		return UnprocessableUploadError(appErr)
	case ErrTypeValidation:
		return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", appErr.Message, appErr.Context)
	case ErrTypeNotFound:
		return New(http.StatusNotFound, "NOT_FOUND", appErr.Message)
	case ErrTypeConfig, ErrTypeStorage:
		fallthrough
	default:
		if h.includeDetail {
			return NewWithDetails(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error", appErr.Error())
		}
		return ErrInternalServer
	}
}
