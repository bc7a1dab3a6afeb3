package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/fieldreport/internal/common"
	"github.com/dmitrijs2005/fieldreport/internal/server/models"
)

type locationDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type reportRequest struct {
	Municipio      string      `json:"municipio"`
	Comunidad      string      `json:"comunidad"`
	Location       locationDTO `json:"location"`
	NeedType       string      `json:"needType"`
	Description    string      `json:"description"`
	EvidenceBase64 string      `json:"evidenceBase64"`
	Timestamp      int64       `json:"timestamp"`
	User           string      `json:"user"`
}

type reportResponse struct {
	ID             string      `json:"id"`
	Municipio      string      `json:"municipio"`
	Comunidad      string      `json:"comunidad"`
	Location       locationDTO `json:"location"`
	NeedType       string      `json:"needType"`
	Description    string      `json:"description"`
	EvidenceBase64 string      `json:"evidenceBase64,omitempty"`
	EvidenceURL    string      `json:"evidenceUrl,omitempty"`
	Timestamp      int64       `json:"timestamp"`
	User           string      `json:"user"`
	Status         string      `json:"status"`
}

type createdResponse struct {
	ID string `json:"id"`
}

type pageResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get(common.IdempotencyKeyHeaderName)
	if key == "" {
		respondError(w, http.StatusBadRequest, "missing idempotency key")
		return
	}

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec := &models.Report{
		IdempotencyKey: key,
		Municipio:      req.Municipio,
		Comunidad:      req.Comunidad,
		Lat:            req.Location.Lat,
		Lng:            req.Location.Lng,
		NeedType:       req.NeedType,
		Description:    req.Description,
		EvidenceBase64: req.EvidenceBase64,
		Status:         models.StatusPending,
		ReportedBy:     req.User,
		Timestamp:      time.UnixMilli(req.Timestamp),
	}

	id, err := s.reports.Create(r.Context(), rec)
	if err != nil {
		s.respondServiceError(w, r, err, "failed to create report")
		return
	}

	respondJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	result, err := s.reports.List(r.Context(), page, limit)
	if err != nil {
		s.respondServiceError(w, r, err, "failed to list reports")
		return
	}

	items := make([]reportResponse, 0, len(result.Items))
	for _, rec := range result.Items {
		items = append(items, reportResponse{
			ID:             rec.ID,
			Municipio:      rec.Municipio,
			Comunidad:      rec.Comunidad,
			Location:       locationDTO{Lat: rec.Lat, Lng: rec.Lng},
			NeedType:       rec.NeedType,
			Description:    rec.Description,
			EvidenceBase64: rec.EvidenceBase64,
			EvidenceURL:    s.reports.EvidenceURL(r.Context(), rec),
			Timestamp:      rec.Timestamp.UnixMilli(),
			User:           rec.ReportedBy,
			Status:         rec.Status,
		})
	}

	respondJSON(w, http.StatusOK, pageResponse[reportResponse]{
		Items: items,
		Total: result.Total,
		Page:  result.Page,
		Pages: result.Pages,
	})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateReportStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.reports.UpdateStatus(r.Context(), id, req.Status); err != nil {
		s.respondServiceError(w, r, err, "failed to update report status")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": req.Status})
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.reports.Delete(r.Context(), id); err != nil {
		s.respondServiceError(w, r, err, "failed to delete report")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, common.ErrValidation):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		respondError(w, http.StatusNotFound, "not found")
	default:
		s.log.Error(r.Context(), msg, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func intQuery(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}
