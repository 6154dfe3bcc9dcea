package api

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/erazemk/izgubljeno/internal/apperr"
	"github.com/erazemk/izgubljeno/internal/imaging"
)

// UploadHandler stores item images.
type UploadHandler struct {
	Images   *imaging.Store
	MaxBytes int64
	Logger   *zap.Logger
}

// Upload handles POST /api/upload. The image is sent as the multipart field
// "image".
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart framing around the file.
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes+64<<10)
	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, r, h.Logger, &apperr.Error{
				Kind:    apperr.KindValidation,
				Message: fmt.Sprintf("Image must be at most %d MB", h.MaxBytes>>20),
			})
			return
		}
		jsonError(w, r, h.Logger, &apperr.Error{Kind: apperr.KindValidation, Message: "Invalid upload"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		jsonError(w, r, h.Logger, apperr.Validation(apperr.FieldError{Field: "image", Message: "image is required"}))
		return
	}
	defer file.Close()

	if header.Size > h.MaxBytes {
		jsonError(w, r, h.Logger, &apperr.Error{
			Kind:    apperr.KindValidation,
			Message: fmt.Sprintf("Image must be at most %d MB", h.MaxBytes>>20),
		})
		return
	}

	url, err := h.Images.Save(file)
	switch {
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		jsonError(w, r, h.Logger, &apperr.Error{Kind: apperr.KindValidation, Message: "Only JPEG and PNG images are allowed"})
		return
	case errors.Is(err, imaging.ErrTooLarge):
		jsonError(w, r, h.Logger, &apperr.Error{Kind: apperr.KindValidation, Message: "Image dimensions are too large"})
		return
	}
	if err != nil {
		jsonError(w, r, h.Logger, apperr.Internal(err))
		return
	}

	h.Logger.Info("image uploaded", zap.String("url", url), zap.Int64("size", header.Size))
	jsonSuccess(w, http.StatusCreated, envelope{"url": url})
}
