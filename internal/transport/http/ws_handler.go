package http

import (
	"encoding/json"
	"net/http"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WSHandler struct {
	service  *app.QuizService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		logger:  orNop(logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Option string `json:"option"`
}

type completedPayload struct {
	HistoryID string                 `json:"historyId,omitempty"`
	Summary   *domain.SessionSummary `json:"summary"`
	Error     string                 `json:"error,omitempty"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServeWS upgrades the request and runs one quiz session over the socket.
// A sessionId query parameter resumes an existing session; otherwise a new
// one is started.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	ctx := r.Context()

	var (
		snap app.SessionSnapshot
		err  error
	)
	if sessionID := r.URL.Query().Get("sessionId"); sessionID != "" {
		snap, err = h.service.GetSession(ctx, sessionID, userID)
	} else {
		snap, err = h.service.StartSession(ctx, userID)
	}
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "question", Payload: newSessionView(snap)}

	sessionID := snap.ID
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}

		var (
			outcome app.AnswerOutcome
			err     error
		)
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("INVALID_REQUEST", "invalid answer payload")
				continue
			}
			outcome, err = h.service.SubmitAnswer(ctx, sessionID, userID, payload.Option)
		case "skip":
			outcome, err = h.service.SkipQuestion(ctx, sessionID, userID)
		case "finish":
			historyID, err := h.service.Finish(ctx, sessionID, userID)
			if err != nil {
				send <- serviceErrorMessage(err)
				continue
			}
			send <- outboundMessage[any]{Type: "completed", Payload: completedPayload{HistoryID: historyID}}
			continue
		default:
			send <- errorMessage("UNSUPPORTED", "unsupported message type")
			continue
		}

		if err != nil && !outcome.Completed {
			send <- serviceErrorMessage(err)
			continue
		}
		send <- outboundMessage[any]{Type: "answerResult", Payload: newAnswerView(outcome)}
		if outcome.Next != nil {
			send <- outboundMessage[any]{Type: "question", Payload: newQuestionView(*outcome.Next, outcome.Position+1)}
		}
		if outcome.Completed {
			completed := completedPayload{HistoryID: outcome.HistoryID, Summary: outcome.Summary}
			if err != nil {
				completed.Error = err.Error()
			}
			send <- outboundMessage[any]{Type: "completed", Payload: completed}
		}
	}

	close(send)
	<-writerDone
}

func errorMessage(code, message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Code: code, Message: message}}
}

func serviceErrorMessage(err error) outboundMessage[any] {
	_, code := statusFor(err)
	return errorMessage(code, err.Error())
}
