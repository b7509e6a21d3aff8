package http

import (
	"net/http"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UserHandler registers identity-provider accounts.
type UserHandler struct {
	service *app.UserService
	logger  *zap.Logger
}

func NewUserHandler(service *app.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{service: service, logger: orNop(logger)}
}

func (h *UserHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var profile domain.UserProfile
	if err := decodeJSON(w, r, &profile); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}
	user, created, err := h.service.Authenticate(r.Context(), profile)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, user)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Get(r.Context(), chi.URLParam(r, "authId"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
