package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"produce-lookup-api/internal/service"
	"produce-lookup-api/pkg/apierror"
	"produce-lookup-api/pkg/response"
)

// maxPhotoSize caps uploaded photos at 5MB.
const maxPhotoSize = 5 << 20

// AdminProduceHandler serves the authenticated produce management
// endpoints: create, update, delete and CSV import/export.
type AdminProduceHandler struct {
	produce *service.ProduceService
	logger  *zap.SugaredLogger
}

// NewAdminProduceHandler creates a new admin produce handler.
func NewAdminProduceHandler(produce *service.ProduceService, logger *zap.SugaredLogger) *AdminProduceHandler {
	return &AdminProduceHandler{produce: produce, logger: logger}
}

// parseProduceForm reads a multipart form into a ProduceInput. The
// photo part is optional; when present it must be an image under 5MB.
func parseProduceForm(r *http.Request) (service.ProduceInput, *apierror.Error) {
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		return service.ProduceInput{}, apierror.BadRequest("Invalid multipart form")
	}

	in := service.ProduceInput{
		Name:        r.FormValue("name"),
		PLUCode:     r.FormValue("plu_code"),
		Description: r.FormValue("description"),
	}

	file, header, err := r.FormFile("photo")
	if err == http.ErrMissingFile {
		return in, nil
	}
	if err != nil {
		return service.ProduceInput{}, apierror.BadRequest("Invalid photo upload")
	}
	defer file.Close()

	if header.Size > maxPhotoSize {
		return service.ProduceInput{}, apierror.ValidationError("Photo must be 5MB or smaller")
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return service.ProduceInput{}, apierror.ValidationError("Photo must be an image")
	}

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoSize+1))
	if err != nil {
		return service.ProduceInput{}, apierror.BadRequest("Failed to read photo upload")
	}
	if len(data) > maxPhotoSize {
		return service.ProduceInput{}, apierror.ValidationError("Photo must be 5MB or smaller")
	}

	in.Photo = &service.PhotoUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}
	return in, nil
}

// Create handles POST /admin/{routeToken}/api/produce
func (h *AdminProduceHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, apiErr := parseProduceForm(r)
	if apiErr != nil {
		response.Error(w, apiErr)
		return
	}

	item, err := h.produce.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.Created(w, item)
}

// Update handles PUT /admin/{routeToken}/api/produce/{id}
func (h *AdminProduceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	in, apiErr := parseProduceForm(r)
	if apiErr != nil {
		response.Error(w, apiErr)
		return
	}

	item, err := h.produce.Update(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.OK(w, item)
}

// Delete handles DELETE /admin/{routeToken}/api/produce/{id}
func (h *AdminProduceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.produce.Delete(r.Context(), id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.NoContent(w)
}

// maxCSVSize caps CSV imports at 2MB.
const maxCSVSize = 2 << 20

// ImportCSV handles POST /admin/{routeToken}/api/produce/import
// The CSV arrives either as a multipart "file" part or as the raw
// request body.
func (h *AdminProduceHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	text, apiErr := readCSVUpload(r)
	if apiErr != nil {
		response.Error(w, apiErr)
		return
	}

	imported, err := h.produce.ImportCSV(r.Context(), text)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.OK(w, map[string]int{"imported": imported})
}

func readCSVUpload(r *http.Request) (string, *apierror.Error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxCSVSize); err != nil {
			return "", apierror.BadRequest("Invalid multipart form")
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return "", apierror.BadRequest("CSV file is required")
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxCSVSize))
		if err != nil {
			return "", apierror.BadRequest("Failed to read CSV file")
		}
		return string(data), nil
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxCSVSize))
	if err != nil {
		return "", apierror.BadRequest("Failed to read request body")
	}
	return string(data), nil
}

// ExportCSV handles GET /admin/{routeToken}/api/produce/export
func (h *AdminProduceHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	filename, data, err := h.produce.ExportCSV(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.CSV(w, filename, data)
}
