package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/voltaic/energy-cms/internal/api/middleware"
	"github.com/voltaic/energy-cms/internal/core/domain"
	"github.com/voltaic/energy-cms/internal/core/ports"
)

// UploadHandler accepts media files for content records.
type UploadHandler struct {
	svc ports.UploadService
}

// NewUploadHandler accepts a nil service when uploads are not configured.
func NewUploadHandler(svc ports.UploadService) *UploadHandler {
	return &UploadHandler{svc: svc}
}

// Upload stores the multipart "file" field and returns its public URL.
//
// @Summary      Upload an image
// @Tags         admin
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Image file"
// @Success      201   {object}  envelope{data=ports.UploadResult}
// @Failure      400   {object}  api.errorResponse
// @Failure      401   {object}  api.errorResponse
// @Failure      503   {object}  api.errorResponse
// @Router       /api/admin/uploads [post]
func (h *UploadHandler) Upload(c echo.Context) error {
	if h.svc == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "uploads are not configured")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return domain.NewValidationError("file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return domain.NewValidationError("file could not be read")
	}
	defer f.Close()

	contentType := fh.Header.Get(echo.HeaderContentType)
	if contentType == "" || strings.HasPrefix(contentType, echo.MIMEOctetStream) {
		head := make([]byte, 512)
		n, _ := io.ReadFull(f, head)
		contentType = http.DetectContentType(head[:n])
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return domain.NewValidationError("file could not be read")
		}
	}

	res, err := h.svc.Upload(c.Request().Context(), middleware.ActorFrom(c), ports.UploadInput{
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, res, "")
}
