package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"slotcal/internal/database"
	"slotcal/internal/models"
	"slotcal/internal/service"
	"slotcal/internal/timeutil"
)

type eventTypeRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes"`
	Slug            string `json:"slug"`
}

type availabilityRequest struct {
	Weekday   string `json:"weekday"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type availabilityResponse struct {
	Weekday   string `json:"weekday"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type bookingRequest struct {
	EventTypeID int64  `json:"event_type_id"`
	BookerName  string `json:"booker_name"`
	BookerEmail string `json:"booker_email"`
	StartTime   string `json:"start_time"`
}

type bookingResponse struct {
	ID          int64  `json:"id"`
	EventTypeID int64  `json:"event_type_id"`
	EventTitle  string `json:"event_title"`
	BookerName  string `json:"booker_name"`
	BookerEmail string `json:"booker_email"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

func toAvailabilityResponse(w models.AvailabilityWindow) availabilityResponse {
	return availabilityResponse{
		Weekday:   w.Weekday,
		StartTime: timeutil.FormatClock(w.StartMinute),
		EndTime:   timeutil.FormatClock(w.EndMinute),
	}
}

func toBookingResponse(b models.Booking) bookingResponse {
	return bookingResponse{
		ID:          b.ID,
		EventTypeID: b.EventTypeID,
		EventTitle:  b.EventTitle,
		BookerName:  b.BookerName,
		BookerEmail: b.BookerEmail,
		Date:        b.Date,
		StartTime:   timeutil.FormatClock(b.StartMinute),
		EndTime:     timeutil.FormatClock(b.EndMinute),
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func pathID(r *http.Request, prefix string) (int64, bool) {
	raw := strings.TrimPrefix(r.URL.Path, prefix)
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.Contains(raw, "/") {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (s *HTTPServer) handleEventTypes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		types, err := s.catalog.ListEventTypes(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"event_types": types})

	case http.MethodPost:
		var req eventTypeRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		et := &models.EventType{
			Title:           req.Title,
			Description:     req.Description,
			DurationMinutes: req.DurationMinutes,
			Slug:            req.Slug,
		}
		if err := s.catalog.CreateEventType(r.Context(), et); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, et)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleEventTypeByID(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/event-types/"

	switch r.Method {
	case http.MethodGet:
		// Lookup by numeric ID or by slug
		raw := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, prefix))
		if raw == "" || strings.Contains(raw, "/") {
			writeError(w, http.StatusBadRequest, "event type id or slug is required")
			return
		}

		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			et, err := s.catalog.GetEventType(r.Context(), id)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, et)
			return
		}

		et, err := s.catalog.GetEventTypeBySlug(r.Context(), raw)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, et)

	case http.MethodDelete:
		id, ok := pathID(r, prefix)
		if !ok {
			writeError(w, http.StatusBadRequest, "event type id is required")
			return
		}
		if err := s.catalog.DeleteEventType(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		windows, err := s.catalog.ListAvailability(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out := make([]availabilityResponse, 0, len(windows))
		for _, win := range windows {
			out = append(out, toAvailabilityResponse(win))
		}
		writeJSON(w, http.StatusOK, map[string]any{"availability": out})

	case http.MethodPost:
		var req availabilityRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		start, err := timeutil.ParseClock(req.StartTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start_time; expected HH:MM")
			return
		}
		end, err := timeutil.ParseClock(req.EndTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid end_time; expected HH:MM")
			return
		}

		window := &models.AvailabilityWindow{
			Weekday:     strings.TrimSpace(req.Weekday),
			StartMinute: start,
			EndMinute:   end,
		}
		if err := s.catalog.SetAvailability(r.Context(), window); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAvailabilityResponse(*window))

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleAvailabilityByWeekday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	const prefix = "/api/v1/availability/"
	weekday := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, prefix))
	if weekday == "" || strings.Contains(weekday, "/") {
		writeError(w, http.StatusBadRequest, "weekday is required")
		return
	}

	if err := s.catalog.DeleteAvailability(r.Context(), weekday); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *HTTPServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}

	rawID := strings.TrimSpace(r.URL.Query().Get("event_type_id"))
	eventTypeID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || eventTypeID <= 0 {
		writeError(w, http.StatusBadRequest, "event_type_id is required")
		return
	}

	slots, err := s.engine.ComputeSlots(r.Context(), date, eventTypeID)
	if err != nil {
		if err == database.ErrInvalidInput {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"date":          date,
		"event_type_id": eventTypeID,
		"slots":         s.engine.FormatSlots(slots),
	})
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		bookings, err := s.coordinator.ListBookings(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out := make([]bookingResponse, 0, len(bookings))
		for _, b := range bookings {
			out = append(out, toBookingResponse(b))
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": out})

	case http.MethodPost:
		var req bookingRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		booking, err := s.coordinator.Reserve(r.Context(), service.ReservationRequest{
			EventTypeID: req.EventTypeID,
			BookerName:  req.BookerName,
			BookerEmail: req.BookerEmail,
			StartTime:   req.StartTime,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toBookingResponse(*booking))

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/bookings/"
	id, ok := pathID(r, prefix)
	if !ok {
		writeError(w, http.StatusBadRequest, "booking id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		booking, err := s.coordinator.GetBooking(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toBookingResponse(*booking))

	case http.MethodDelete:
		if err := s.coordinator.Cancel(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
