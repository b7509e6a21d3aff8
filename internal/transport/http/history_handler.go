package http

import (
	"net/http"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// HistoryHandler serves saved quiz results.
type HistoryHandler struct {
	service *app.HistoryService
	logger  *zap.Logger
}

func NewHistoryHandler(service *app.HistoryService, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{service: service, logger: orNop(logger)}
}

func (h *HistoryHandler) Save(w http.ResponseWriter, r *http.Request) {
	var submission domain.HistorySubmission
	if err := decodeJSON(w, r, &submission); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}
	record, err := h.service.Save(r.Context(), UserID(r.Context()), submission)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context(), UserID(r.Context()))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Get(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}
