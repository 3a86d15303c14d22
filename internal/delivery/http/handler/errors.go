package handler

import (
	"errors"
	"net/http"

	"github.com/Pesokrava/point_of_sale/internal/delivery/http/response"
	"github.com/Pesokrava/point_of_sale/internal/domain"
	"github.com/Pesokrava/point_of_sale/internal/pkg/logger"
)

// writeError maps domain errors to HTTP responses. notFound names the missing resource.
func writeError(w http.ResponseWriter, log *logger.Logger, err error, notFound string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.Error(w, http.StatusNotFound, notFound)
	case errors.Is(err, domain.ErrInvalidInput):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrStorageTimeout):
		log.Error("Storage timed out", err)
		response.Error(w, http.StatusGatewayTimeout, "Storage did not respond in time, nothing was changed")
	case errors.Is(err, domain.ErrStorage):
		log.Error("Storage failure", err)
		response.Error(w, http.StatusServiceUnavailable, "Storage unavailable, nothing was changed")
	default:
		log.Error("Internal error", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
