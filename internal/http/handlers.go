package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/robertarktes/after-school-classes/internal/domain"
	"github.com/robertarktes/after-school-classes/internal/observability"
	"github.com/robertarktes/after-school-classes/internal/service"
)

const maxBodyBytes = 1 << 20

// Readiness reports whether the persistence gateway can serve requests.
type Readiness interface {
	Ready() bool
}

type Handlers struct {
	lessons *service.LessonService
	orders  *service.OrderService
	store   Readiness
	logger  observability.Logger
}

func NewHandlers(lessons *service.LessonService, orders *service.OrderService, store Readiness, logger observability.Logger) *Handlers {
	return &Handlers{
		lessons: lessons,
		orders:  orders,
		store:   store,
		logger:  logger,
	}
}

func (h *Handlers) ListLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.lessons.ListAll(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err, "Error fetching lessons")
		return
	}
	writeJSON(w, http.StatusOK, lessons)
}

func (h *Handlers) SearchLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.lessons.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, h.logger, err, "Error searching lessons")
		return
	}
	writeJSON(w, http.StatusOK, lessons)
}

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	req, err := decodeOrderRequest(w, r)
	if err != nil {
		writeError(w, r, h.logger, err, "Error placing order")
		return
	}
	if _, err := h.orders.PlaceOrder(r.Context(), req); err != nil {
		writeError(w, r, h.logger, err, "Error placing order")
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Order placed successfully"})
}

// decodeOrderRequest accepts {name, phone, lessons: [id, ...]}. A missing
// field or a non-array lessons value is invalid input; a non-string element
// is an invalid lesson id.
func decodeOrderRequest(w http.ResponseWriter, r *http.Request) (domain.OrderRequest, error) {
	var body struct {
		Name    interface{} `json:"name"`
		Phone   interface{} `json:"phone"`
		Lessons interface{} `json:"lessons"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		return domain.OrderRequest{}, domain.ErrInvalidOrder
	}

	name, _ := body.Name.(string)
	phone, _ := body.Phone.(string)
	lessons, isArray := body.Lessons.([]interface{})
	if name == "" || phone == "" || !isArray {
		return domain.OrderRequest{}, domain.ErrInvalidOrder
	}

	ids := make([]string, 0, len(lessons))
	for _, v := range lessons {
		id, ok := v.(string)
		if !ok {
			return domain.OrderRequest{}, domain.ErrInvalidLessonID
		}
		ids = append(ids, id)
	}
	return domain.OrderRequest{Name: name, Phone: phone, LessonIDs: ids}, nil
}

func (h *Handlers) UpdateLesson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !domain.IsValidID(id) {
		writeError(w, r, h.logger, domain.ErrInvalidLessonID, "Error updating lesson")
		return
	}

	var body struct {
		Spaces *float64 `json:"spaces"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil || body.Spaces == nil {
		writeError(w, r, h.logger, domain.ErrInvalidSpaces, "Error updating lesson")
		return
	}

	if err := h.lessons.SetSpaces(r.Context(), id, *body.Spaces); err != nil {
		writeError(w, r, h.logger, err, "Error updating lesson")
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Lesson updated"})
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if !h.store.Ready() {
		http.Error(w, "Not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}
