package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/flipper-app/flipper/internal/domain"
	"github.com/flipper-app/flipper/internal/utils"
	"github.com/flipper-app/flipper/internal/validation"
)

func loadAndValidateRequestBody(r *http.Request, body any) error {
	return utils.DecodeValidate(r.Body, body)
}

// parseUploadRequest parses the multipart publication form: title and
// description as plain form values, page sources under the "files" field.
func (h *Handler) parseUploadRequest(w http.ResponseWriter, r *http.Request) (title, description string, files []domain.PendingFile, err error) {
	maxBatchSize := h.cfg.Public.MaxFileSizeBytes * int64(h.cfg.Public.MaxBatchFiles)
	maxRequestSize := validation.CalculateMaxRequestSize(maxBatchSize, 1<<20)
	if err = validation.ValidateAndParseMultipart(r, w, maxRequestSize); err != nil {
		maxSizeMB := validation.FormatSizeMB(maxBatchSize)
		err = fmt.Errorf("%w: total upload size exceeds the limit of %.0f MB. Please reduce the number or size of files", validation.ErrPayloadTooLarge, maxSizeMB)
		return
	}

	title = r.FormValue("title")
	description = r.FormValue("description")

	files, err = validation.ValidateBatch(
		r.MultipartForm.File["files"],
		h.cfg.Public.AllowedMimeTypes,
		h.cfg.Public.MaxFileSizeBytes,
		h.cfg.Public.MaxBatchFiles,
	)
	return
}

// writeValidationError maps batch validation sentinels to HTTP status codes.
func writeValidationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, validation.ErrPayloadTooLarge):
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, validation.ErrInvalidMimeType):
		http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
	case errors.Is(err, validation.ErrTooManyFiles),
		errors.Is(err, validation.ErrFileTooLarge),
		errors.Is(err, validation.ErrEmptyBatch):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		utils.WriteErrorAndStatusCode(w, err)
	}
}
