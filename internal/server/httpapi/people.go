package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/fieldreport/internal/common"
	"github.com/dmitrijs2005/fieldreport/internal/server/models"
)

type personRequest struct {
	Name      string `json:"name"`
	Role      string `json:"role"`
	Phone     string `json:"phone"`
	Community string `json:"community"`
	Timestamp int64  `json:"timestamp"`
}

type personResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Phone     string `json:"phone"`
	Community string `json:"community"`
	Timestamp int64  `json:"timestamp"`
}

func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get(common.IdempotencyKeyHeaderName)
	if key == "" {
		respondError(w, http.StatusBadRequest, "missing idempotency key")
		return
	}

	var req personRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec := &models.Person{
		IdempotencyKey: key,
		Name:           req.Name,
		Role:           req.Role,
		Phone:          req.Phone,
		Community:      req.Community,
		Timestamp:      time.UnixMilli(req.Timestamp),
	}

	id, err := s.people.Create(r.Context(), rec)
	if err != nil {
		s.respondServiceError(w, r, err, "failed to create person")
		return
	}

	respondJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	result, err := s.people.List(r.Context(), page, limit)
	if err != nil {
		s.respondServiceError(w, r, err, "failed to list people")
		return
	}

	items := make([]personResponse, 0, len(result.Items))
	for _, rec := range result.Items {
		items = append(items, personResponse{
			ID:        rec.ID,
			Name:      rec.Name,
			Role:      rec.Role,
			Phone:     rec.Phone,
			Community: rec.Community,
			Timestamp: rec.Timestamp.UnixMilli(),
		})
	}

	respondJSON(w, http.StatusOK, pageResponse[personResponse]{
		Items: items,
		Total: result.Total,
		Page:  result.Page,
		Pages: result.Pages,
	})
}

func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.people.Delete(r.Context(), id); err != nil {
		s.respondServiceError(w, r, err, "failed to delete person")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
