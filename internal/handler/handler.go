// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Vaishnavi-Kahar/FloorPlanManagementSystem/internal/model"
	"github.com/Vaishnavi-Kahar/FloorPlanManagementSystem/internal/repository"
	"github.com/Vaishnavi-Kahar/FloorPlanManagementSystem/internal/service"
	"github.com/go-chi/chi/v5"
)

// API holds all HTTP handlers for the workspace backend.
type API struct {
	alloc   *service.AllocationService
	layouts *service.LayoutService
}

// NewAPI constructs an API.
func NewAPI(alloc *service.AllocationService, layouts *service.LayoutService) *API {
	return &API{alloc: alloc, layouts: layouts}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeBookingError maps the engine's error taxonomy onto HTTP statuses.
func writeBookingError(w http.ResponseWriter, err error) {
	var conflict *repository.SlotConflictError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "no suitable room found")
	case errors.Is(err, repository.ErrCapacityExceeded):
		writeError(w, http.StatusConflict, "participant count exceeds room capacity")
	case errors.Is(err, repository.ErrRoomBusy):
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, "room is busy, retry later")
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, model.ErrorResponse{
			Error:    "requested slot conflicts with an existing booking",
			Conflict: &conflict.Conflict,
		})
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

// ─── Room handlers ────────────────────────────────────────────────────────────

// CreateRoom handles POST /rooms
func (h *API) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req model.CreateRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	room, err := h.alloc.CreateRoom(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

// ListRooms handles GET /rooms
func (h *API) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.alloc.ListRooms(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list rooms")
		return
	}
	if rooms == nil {
		rooms = []model.Room{}
	}
	writeJSON(w, http.StatusOK, rooms)
}

// GetRoom handles GET /rooms/{id}
func (h *API) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.alloc.GetRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "room not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get room")
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// SuggestRoom handles GET /rooms/suggest?capacity=N
func (h *API) SuggestRoom(w http.ResponseWriter, r *http.Request) {
	capacity, err := strconv.Atoi(r.URL.Query().Get("capacity"))
	if err != nil || capacity <= 0 {
		writeError(w, http.StatusBadRequest, "capacity must be a positive integer")
		return
	}

	room, err := h.alloc.SuggestRoom(r.Context(), capacity)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no room with sufficient capacity")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to suggest room")
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// ─── Booking handlers ─────────────────────────────────────────────────────────

// CreateBooking handles POST /bookings
// The room is optional in the payload; without one the engine picks the
// best fit for the participant count.
func (h *API) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req model.BookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	booking, err := h.alloc.Book(r.Context(), req)
	if err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

// BookRoom handles POST /rooms/{id}/bookings
func (h *API) BookRoom(w http.ResponseWriter, r *http.Request) {
	var req model.BookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.RoomID = chi.URLParam(r, "id")

	booking, err := h.alloc.Book(r.Context(), req)
	if err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

// ListBookings handles GET /rooms/{id}/bookings
func (h *API) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.alloc.ListBookings(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "room not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

// ─── Layout handlers ──────────────────────────────────────────────────────────

// MergeLayouts handles POST /layouts/merge
// Pure merge of two client-supplied layouts; nothing is persisted.
func (h *API) MergeLayouts(w http.ResponseWriter, r *http.Request) {
	var req model.MergeLayoutsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.layouts.Merge(req.Local, req.Remote))
}

// GetLayout handles GET /layouts/{id}
func (h *API) GetLayout(w http.ResponseWriter, r *http.Request) {
	l, err := h.layouts.GetLayout(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "layout not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load layout")
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// SyncLayout handles POST /layouts/{id}/sync
// Merges the client's layout into the stored one and returns the result.
func (h *API) SyncLayout(w http.ResponseWriter, r *http.Request) {
	var client model.Layout
	if err := decodeJSON(r, &client); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	merged, err := h.layouts.Sync(r.Context(), chi.URLParam(r, "id"), client)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to sync layout")
		return
	}
	writeJSON(w, http.StatusOK, merged)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
