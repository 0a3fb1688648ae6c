package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"produce-lookup-api/internal/model"
	"produce-lookup-api/internal/service"
	"produce-lookup-api/pkg/response"
)

// ProduceHandler serves the public produce lookup endpoints.
type ProduceHandler struct {
	produce *service.ProduceService
	logger  *zap.SugaredLogger
}

// NewProduceHandler creates a new produce handler.
func NewProduceHandler(produce *service.ProduceService, logger *zap.SugaredLogger) *ProduceHandler {
	return &ProduceHandler{produce: produce, logger: logger}
}

// List handles GET /api/v1/produce
// Without a query it returns the most recently added items. With
// ?q=<term> it searches name, PLU code and description.
func (h *ProduceHandler) List(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var items []model.ProduceItem
	var err error
	if query == "" {
		items, err = h.produce.ListRecent(r.Context())
	} else {
		items, err = h.produce.Search(r.Context(), query)
	}
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.List(w, items, len(items))
}

// Search handles GET /api/v1/produce/search?q=<term>
func (h *ProduceHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	items, err := h.produce.Search(r.Context(), query)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.List(w, items, len(items))
}

// Get handles GET /api/v1/produce/{id}
func (h *ProduceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := h.produce.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.OK(w, item)
}

// Count handles GET /api/v1/produce/count
func (h *ProduceHandler) Count(w http.ResponseWriter, r *http.Request) {
	total, err := h.produce.Count(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.OK(w, map[string]int64{"count": total})
}
