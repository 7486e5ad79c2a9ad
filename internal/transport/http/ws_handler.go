package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quiz-grading-service/internal/app"
	"quiz-grading-service/internal/domain"
)

type WSHandler struct {
	service  *app.GradingService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GradingService, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		logger:  logger,
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
	QuestionID string          `json:"questionId"`
	Answer     json.RawMessage `json:"answer"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and runs one quiz attempt over them.
// Clients send "answer" messages and a final "finish"; the connection closes once
// the attempt result has been written.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	userID := r.URL.Query().Get("userId")
	if quizID == "" || userID == "" {
		http.Error(w, "missing quizId or userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	summary, err := h.service.Start(ctx, quizID, userID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: clientMessage(err)}})
		return
	}

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	// Single writer: gorilla connections support one concurrent writer.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Warn("ws write error", zap.String("quizId", quizID), zap.Error(err))
				// Unblock the pending read.
				_ = conn.Close()
				return
			}
		}
	}()

	// emit reports false once the writer has stopped.
	emit := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		}
	}

	if !emit(outboundMessage[any]{Type: "ready", Payload: summary}) {
		close(send)
		return
	}

read:
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		var out outboundMessage[any]
		finished := false
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.QuestionID == "" {
				out = errorMessage("invalid answer payload")
				break
			}
			result, err := h.service.SubmitAnswer(ctx, quizID, userID, domain.AnswerSubmission{
				QuestionID: payload.QuestionID,
				Answer:     payload.Answer,
			})
			if err != nil {
				out = errorMessage(clientMessage(err))
				break
			}
			out = outboundMessage[any]{Type: "answerResult", Payload: result}
		case "finish":
			result, err := h.service.FinishAttempt(ctx, quizID, userID)
			if err != nil {
				out = errorMessage(clientMessage(err))
				break
			}
			out = outboundMessage[any]{Type: "attemptResult", Payload: result}
			finished = true
		default:
			out = errorMessage("unsupported message type")
		}
		if !emit(out) || finished {
			break read
		}
	}

	close(send)
	<-writerDone
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}

// clientMessage hides resolution details behind the user-facing unavailable error.
func clientMessage(err error) string {
	if errors.Is(err, domain.ErrQuizUnavailable) {
		return domain.ErrQuizUnavailable.Error()
	}
	return err.Error()
}
