package http

import (
	"errors"
	"io"
	"net/http"

	"adaptive-quiz-service/internal/app"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SessionHandler exposes the adaptive quiz engine over REST.
type SessionHandler struct {
	service *app.QuizService
	logger  *zap.Logger
}

func NewSessionHandler(service *app.QuizService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{service: service, logger: orNop(logger)}
}

type answerRequest struct {
	Option *string `json:"option"`
}

func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.StartSession(r.Context(), UserID(r.Context()))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionView(snap))
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.GetSession(r.Context(), chi.URLParam(r, "id"), UserID(r.Context()))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(snap))
}

func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}
	if req.Option == nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "option is required")
		return
	}
	outcome, err := h.service.SubmitAnswer(r.Context(), chi.URLParam(r, "id"), UserID(r.Context()), *req.Option)
	h.writeOutcome(w, outcome, err)
}

func (h *SessionHandler) Skip(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.service.SkipQuestion(r.Context(), chi.URLParam(r, "id"), UserID(r.Context()))
	h.writeOutcome(w, outcome, err)
}

func (h *SessionHandler) Finish(w http.ResponseWriter, r *http.Request) {
	historyID, err := h.service.Finish(r.Context(), chi.URLParam(r, "id"), UserID(r.Context()))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"historyId": historyID})
}

func (h *SessionHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Abandon(r.Context(), chi.URLParam(r, "id"), UserID(r.Context())); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeOutcome reports a completed-but-unsaved session as 502 with the
// outcome attached so the client can retry via finish.
func (h *SessionHandler) writeOutcome(w http.ResponseWriter, outcome app.AnswerOutcome, err error) {
	if err != nil && !outcome.Completed {
		handleServiceError(w, h.logger, err)
		return
	}
	if err != nil {
		status, code := statusFor(err)
		writeJSON(w, status, struct {
			errorBody
			Result answerView `json:"result"`
		}{
			errorBody: errorBody{Error: apiError{Code: code, Message: err.Error()}},
			Result:    newAnswerView(outcome),
		})
		return
	}
	writeJSON(w, http.StatusOK, newAnswerView(outcome))
}
