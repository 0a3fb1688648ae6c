package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"produce-lookup-api/internal/repository"
	"produce-lookup-api/internal/service"
	"produce-lookup-api/pkg/apierror"
	"produce-lookup-api/pkg/response"
)

// writeServiceError maps service and repository errors onto API errors.
func writeServiceError(w http.ResponseWriter, logger *zap.SugaredLogger, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		response.Error(w, apierror.NotFound("Produce item not found"))
	case errors.Is(err, service.ErrMissingFields):
		response.Error(w, apierror.ValidationError("Name and PLU code are required"))
	case errors.Is(err, service.ErrCSVMissingRows):
		response.Error(w, apierror.ValidationError("CSV must contain a header row and at least one data row"))
	case errors.Is(err, service.ErrCSVNoValidRows):
		response.Error(w, apierror.ValidationError("CSV contains no valid rows"))
	default:
		logger.Errorw("request failed", "error", err)
		response.Error(w, apierror.InternalError("Something went wrong"))
	}
}
