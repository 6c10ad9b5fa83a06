package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/talentops/scheduler/internal/availability"
	"github.com/talentops/scheduler/internal/model"
	"github.com/talentops/scheduler/internal/service"
)

// Handler holds the services the HTTP layer exposes. Authentication and
// role checks happen upstream; the manager id in the path is trusted.
type Handler struct {
	availabilitySvc *service.AvailabilityService
	bookingSvc      *service.BookingService
	horizonDays     int
	logger          *zap.Logger
}

func NewHandler(availabilitySvc *service.AvailabilityService, bookingSvc *service.BookingService, horizonDays int, logger *zap.Logger) *Handler {
	return &Handler{
		availabilitySvc: availabilitySvc,
		bookingSvc:      bookingSvc,
		horizonDays:     horizonDays,
		logger:          logger,
	}
}

// GetAvailability returns the manager's recurring slots, meeting duration
// and date exceptions.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	managerID, ok := h.managerID(w, r)
	if !ok {
		return
	}

	schedule, err := h.availabilitySvc.Schedule(r.Context(), managerID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, schedule)
}

// SaveAvailability reconciles a desired slot set into storage.
func (h *Handler) SaveAvailability(w http.ResponseWriter, r *http.Request) {
	managerID, ok := h.managerID(w, r)
	if !ok {
		return
	}

	var req saveAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "invalid JSON body")
		return
	}

	desired, err := decodeSlots(req.Slots)
	if err != nil {
		h.writeBadRequest(w, err.Error())
		return
	}

	result, err := h.availabilitySvc.Reconcile(r.Context(), managerID, req.DurationMinutes, desired)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// TransformAvailability applies a bulk edit operation to a submitted
// desired set and returns the transformed set. Nothing is persisted; the
// client keeps holding the edit state until it saves.
func (h *Handler) TransformAvailability(w http.ResponseWriter, r *http.Request) {
	managerID, ok := h.managerID(w, r)
	if !ok {
		return
	}

	var req transformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "invalid JSON body")
		return
	}

	slots, err := decodeSlots(req.Slots)
	if err != nil {
		h.writeBadRequest(w, err.Error())
		return
	}
	for i := range slots {
		slots[i].ManagerID = managerID
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = service.DefaultMeetingDuration
	}

	planner, err := availability.NewPlanner(managerID, duration, slots)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.applyOperation(planner, req); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"slots":                    planner.Slots(),
		"meeting_duration_minutes": planner.DurationMinutes(),
	})
}

func (h *Handler) applyOperation(planner *availability.Planner, req transformRequest) error {
	day := func(p *int) (time.Weekday, bool) {
		if p == nil || *p < 0 || *p > 6 {
			return 0, false
		}
		return time.Weekday(*p), true
	}

	switch req.Operation {
	case "copy_to_weekdays":
		source, ok := day(req.SourceDay)
		if !ok {
			return errBadOperand
		}
		return planner.CopyToWeekdays(source)
	case "copy_to_weekend":
		source, ok := day(req.SourceDay)
		if !ok {
			return errBadOperand
		}
		return planner.CopyToWeekend(source)
	case "clear_day":
		d, ok := day(req.Day)
		if !ok {
			return errBadOperand
		}
		planner.ClearDay(d)
		return nil
	case "apply_business_hours":
		planner.ApplyBusinessHours()
		return nil
	case "clear_all":
		planner.ClearAll()
		return nil
	default:
		return errBadOperand
	}
}

// ListExceptions returns the manager's date exceptions.
func (h *Handler) ListExceptions(w http.ResponseWriter, r *http.Request) {
	managerID, ok := h.managerID(w, r)
	if !ok {
		return
	}

	exceptions, err := h.availabilitySvc.Exceptions(r.Context(), managerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if exceptions == nil {
		exceptions = []model.DateException{}
	}

	h.writeJSON(w, http.StatusOK, exceptions)
}

// AddException blocks a specific date.
func (h *Handler) AddException(w http.ResponseWriter, r *http.Request) {
	managerID, ok := h.managerID(w, r)
	if !ok {
		return
	}

	var req addExceptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "invalid JSON body")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		h.writeBadRequest(w, err.Error())
		return
	}

	exception, err := h.availabilitySvc.AddException(r.Context(), managerID, date, req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, exception)
}

// RemoveException lifts the block on a date.
func (h *Handler) RemoveException(w http.ResponseWriter, r *http.Request) {
	managerID, ok := h.managerID(w, r)
	if !ok {
		return
	}

	date, err := parseDate(chi.URLParam(r, "date"))
	if err != nil {
		h.writeBadRequest(w, err.Error())
		return
	}

	if err := h.availabilitySvc.RemoveException(r.Context(), managerID, date); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// FreeWindows enumerates bookable windows for a manager. The horizon is
// capped server-side so a caller cannot request an unbounded expansion.
func (h *Handler) FreeWindows(w http.ResponseWriter, r *http.Request) {
	managerID, ok := h.managerID(w, r)
	if !ok {
		return
	}

	from, err := parseDate(r.URL.Query().Get("from"))
	if err != nil {
		h.writeBadRequest(w, "from: "+err.Error())
		return
	}

	to, err := parseDate(r.URL.Query().Get("to"))
	if err != nil {
		h.writeBadRequest(w, "to: "+err.Error())
		return
	}
	if to.Before(from) {
		h.writeBadRequest(w, "to must not be before from")
		return
	}

	if horizon := from.AddDate(0, 0, h.horizonDays); to.After(horizon) {
		to = horizon
	}

	duration := 0
	if raw := r.URL.Query().Get("duration"); raw != "" {
		duration, err = strconv.Atoi(raw)
		if err != nil || duration < 0 {
			h.writeBadRequest(w, "duration must be a non-negative integer")
			return
		}
	}

	windows, err := h.bookingSvc.FreeWindows(r.Context(), managerID, from, to, duration)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if windows == nil {
		windows = []model.ConcreteWindow{}
	}

	h.writeJSON(w, http.StatusOK, windows)
}

// CreateBooking attempts to reserve a window for a creator.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.ManagerID <= 0 || req.CreatorID <= 0 {
		h.writeBadRequest(w, "manager_id and creator_id are required")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		h.writeBadRequest(w, err.Error())
		return
	}

	start, err := model.ParseTimeOfDay(req.Start)
	if err != nil {
		h.writeBadRequest(w, err.Error())
		return
	}

	booking, err := h.bookingSvc.Book(r.Context(), service.BookingRequest{
		ManagerID:       req.ManagerID,
		CreatorID:       req.CreatorID,
		Date:            date,
		Start:           start,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, booking)
}

// CancelBooking marks a booking cancelled, freeing its window.
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		h.writeBadRequest(w, "invalid booking id")
		return
	}

	if err := h.bookingSvc.Cancel(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListBookings returns a manager's active bookings over a date range.
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	managerID, ok := h.managerID(w, r)
	if !ok {
		return
	}

	from, err := parseDate(r.URL.Query().Get("from"))
	if err != nil {
		h.writeBadRequest(w, "from: "+err.Error())
		return
	}

	to, err := parseDate(r.URL.Query().Get("to"))
	if err != nil {
		h.writeBadRequest(w, "to: "+err.Error())
		return
	}

	bookings, err := h.bookingSvc.Bookings(r.Context(), managerID, from, to)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if bookings == nil {
		bookings = []model.MeetingBooking{}
	}

	h.writeJSON(w, http.StatusOK, bookings)
}

var errBadOperand = errors.New("unknown operation or missing day operand")

func (h *Handler) managerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "managerID"), 10, 64)
	if err != nil || id <= 0 {
		h.writeBadRequest(w, "invalid manager id")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("Failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeBadRequest(w http.ResponseWriter, message string) {
	h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: message})
}

// writeError maps domain error kinds to HTTP statuses: validation kinds
// become 422, lost booking races 409, missing rows 404, anything else 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, availability.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, availability.ErrDoubleBooking):
		h.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, availability.ErrDuplicateException):
		h.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, availability.ErrInvalidInterval),
		errors.Is(err, availability.ErrOverlapConflict),
		errors.Is(err, availability.ErrEmptySource),
		errors.Is(err, availability.ErrValidationFailed),
		errors.Is(err, availability.ErrSlotUnavailable),
		errors.Is(err, availability.ErrOutsideAvailability),
		errors.Is(err, availability.ErrPastDate):
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, errBadOperand):
		h.writeBadRequest(w, err.Error())
	default:
		h.logger.Error("Request failed", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
