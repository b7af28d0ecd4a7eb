package event_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"events-app/internal/events"
	"events-app/internal/logger"
	"events-app/internal/models"
)

// maxMultipartMemory is the in-memory buffer threshold before multipart parts
// spill to temp files.
const maxMultipartMemory = 10 << 20

type Handler struct {
	EventService *events.EventService
	Logger       *logger.Logger
}

type messageResponse struct {
	Message string `json:"message"`
}

type paginationInfo struct {
	TotalPages   int `json:"totalPages"`
	TotalRecords int `json:"totalRecords"`
}

type listResponse struct {
	Data       []models.Event `json:"data"`
	Pagination paginationInfo `json:"pagination"`
}

// RegisterRoutes mounts the five event endpoints under /api/events.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/events", func(r chi.Router) {
		r.Post("/", h.CreateEvent)
		r.Get("/", h.ListEvents)
		r.Get("/{id}", h.GetEvent)
		r.Put("/{id}", h.UpdateEvent)
		r.Delete("/{id}", h.DeleteEvent)
	})
}

// ServeUploads mounts the upload sidecar directory read-only under /uploads.
func ServeUploads(r chi.Router, dir string) {
	fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(dir)))
	r.Get("/uploads/*", fs.ServeHTTP)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// renderError maps service errors onto the API taxonomy. Unexpected errors
// stay server-side: the client only ever sees a generic message.
func (h *Handler) renderError(w http.ResponseWriter, err error) {
	switch {
	case events.IsValidation(err):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, events.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Event not found")
	default:
		h.Logger.Error("API", fmt.Sprintf("Request failed: %v", err))
		writeMessage(w, http.StatusInternalServerError, "Server error")
	}
}

// parseForm pulls the text fields and the optional image out of a multipart
// request. A missing image field is not an error.
func parseForm(r *http.Request) (events.EventInput, multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return events.EventInput{}, nil, nil, err
	}

	input := events.EventInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		StartDate:   r.FormValue("startDate"),
		EndDate:     r.FormValue("endDate"),
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return input, nil, nil, nil
		}
		return events.EventInput{}, nil, nil, err
	}
	return input, file, header, nil
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	input, file, header, err := parseForm(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	if file != nil {
		defer file.Close()
	}

	created, err := h.EventService.Create(r.Context(), input, file, header)
	if err != nil {
		h.renderError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	result, err := h.EventService.List(r.Context(), events.ListQuery{
		Page:      page,
		Limit:     limit,
		Search:    query.Get("search"),
		SortBy:    query.Get("sortBy"),
		SortOrder: query.Get("sortOrder"),
	})
	if err != nil {
		h.renderError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		Data: result.Data,
		Pagination: paginationInfo{
			TotalPages:   result.TotalPages,
			TotalRecords: result.TotalRecords,
		},
	})
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Event not found")
		return
	}

	event, err := h.EventService.Get(r.Context(), id)
	if err != nil {
		h.renderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Event not found")
		return
	}

	input, file, header, err := parseForm(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	if file != nil {
		defer file.Close()
	}

	updated, err := h.EventService.Update(r.Context(), id, input, file, header)
	if err != nil {
		h.renderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Event not found")
		return
	}

	if err := h.EventService.Delete(r.Context(), id); err != nil {
		h.renderError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Event deleted")
}
