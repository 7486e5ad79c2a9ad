package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"quiz-grading-service/internal/app"
	"quiz-grading-service/internal/domain"
)

// WeightsHandler serves the normalized grade tree of a course.
type WeightsHandler struct {
	service *app.GradingService
	logger  *zap.Logger
}

func NewWeightsHandler(service *app.GradingService, logger *zap.Logger) *WeightsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeightsHandler{service: service, logger: logger}
}

// ServeHTTP expects the {courseID} path wildcard.
func (h *WeightsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	courseID := r.PathValue("courseID")
	tree, err := h.service.CourseWeights(r.Context(), courseID)
	switch {
	case errors.Is(err, domain.ErrCourseNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		h.logger.Error("course weights", zap.String("courseId", courseID), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(tree); err != nil {
		h.logger.Warn("write course weights", zap.Error(err))
	}
}

// NewRouter registers every endpoint of the service.
func NewRouter(service *app.GradingService, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", NewWSHandler(service, logger).ServeWS)
	mux.Handle("GET /courses/{courseID}/weights", NewWeightsHandler(service, logger))
	return mux
}
