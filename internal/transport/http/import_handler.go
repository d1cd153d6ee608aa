package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "pledgecli/internal/errors"
	"pledgecli/internal/services"
	"pledgecli/pkg/contracts/domain"
)

// Importer runs the import pipeline for a batch of uploaded files.
type Importer interface {
	ImportFiles(ctx context.Context, files []services.UploadedFile) (*domain.ImportResult, error)
}

// ImportHandler handles transaction-export upload requests.
type ImportHandler struct {
	service        Importer
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
	maxFiles       int
}

// NewImportHandler creates a new import handler.
func NewImportHandler(service Importer, logger *slog.Logger, maxUploadBytes int64, maxFiles int) *ImportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportHandler{
		service:        service,
		logger:         logger,
		errorHandler:   apierrors.NewErrorHandler(logger, true),
		maxUploadBytes: maxUploadBytes,
		maxFiles:       maxFiles,
	}
}

// Routes returns the router for import endpoints
func (h *ImportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Import)
	return r
}

// Import handles POST /api/import. It accepts one or more files in the
// multipart field "files" and responds with the comparison rows, the
// itemized row errors, and the run statistics.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, apierrors.ErrUploadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	parts := r.MultipartForm.File["files"]
	if len(parts) == 0 {
		h.errorHandler.HandleError(w, r, apierrors.ErrMissingFiles)
		return
	}
	if h.maxFiles > 0 && len(parts) > h.maxFiles {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest, "TOO_MANY_FILES",
			"Too many files in upload", len(parts)))
		return
	}

	files := make([]services.UploadedFile, 0, len(parts))
	for _, part := range parts {
		f, err := part.Open()
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
		files = append(files, services.UploadedFile{Name: part.Filename, Data: data})
	}

	result, err := h.service.ImportFiles(ctx, files)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}
