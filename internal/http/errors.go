package http

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/after-school-classes/internal/domain"
	"github.com/robertarktes/after-school-classes/internal/observability"
)

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

var errorResponses = []struct {
	target  error
	status  int
	message string
}{
	{domain.ErrInvalidOrder, http.StatusBadRequest, "Invalid input data"},
	{domain.ErrInvalidLessonID, http.StatusBadRequest, "Invalid lesson ID format"},
	{domain.ErrInvalidSpaces, http.StatusBadRequest, "Invalid spaces value"},
	{domain.ErrSearchQueryRequired, http.StatusBadRequest, "Search query is required"},
	{domain.ErrLessonsNotFound, http.StatusBadRequest, "One or more lessons not found"},
	{domain.ErrFullyBooked, http.StatusBadRequest, "One or more lessons are fully booked"},
	{domain.ErrLessonNotFound, http.StatusNotFound, "Lesson not found"},
	{domain.ErrServiceUnavailable, http.StatusInternalServerError, "Database not connected"},
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders known domain errors with their status and message.
// Anything else is logged and answered with a 500 carrying fallback.
func writeError(w http.ResponseWriter, r *http.Request, logger observability.Logger, err error, fallback string) {
	for _, resp := range errorResponses {
		if errors.Is(err, resp.target) {
			writeJSON(w, resp.status, errorBody{Error: resp.message})
			return
		}
	}
	observability.LoggerFromContext(r.Context(), logger).WithError(err).Error(fallback)
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: fallback})
}
