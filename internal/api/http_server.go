package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"peercar/internal/config"
	"peercar/internal/database"
	"peercar/internal/metrics"
	"peercar/internal/schedule"
	"peercar/internal/service"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the booking and catalog API over HTTP.
type HTTPServer struct {
	cfg      config.Config
	bookings *service.BookingService
	catalog  *service.CatalogService
	server   *http.Server
	auth     *HTTPAuth
	logger   zerolog.Logger
}

func NewHTTPServer(cfg config.Config, bookings *service.BookingService, catalog *service.CatalogService, logger *zerolog.Logger) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:      cfg,
		bookings: bookings,
		catalog:  catalog,
		logger:   logger.With().Str("component", "http_api").Logger(),
	}
	srv.auth = NewHTTPAuth(cfg.API)

	mux.HandleFunc("/api/v1/bookings", srv.handleBookings)
	mux.HandleFunc("/api/v1/bookings/detail", srv.handleBookingDetail)
	mux.HandleFunc("/api/v1/cars", srv.handleCars)
	mux.HandleFunc("/api/v1/cars/", srv.handleCarDetails)
	mux.HandleFunc("/api/v1/bays", srv.handleBays)
	mux.HandleFunc("/api/v1/bays/search", srv.handleBaySearch)
	mux.HandleFunc("/api/v1/bays/", srv.handleBaySubpaths)
	mux.HandleFunc("/api/v1/members/", srv.handleMembers)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the full middleware chain, for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

type bookingRequest struct {
	Email         string `json:"email"`
	Rego          string `json:"rego"`
	Date          string `json:"date"`
	StartHour     int    `json:"start_hour"`
	DurationHours int    `json:"duration_hours"`
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateBooking(w, r)
	case http.MethodGet:
		s.handleMemberBookings(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("create_booking")

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var body bookingRequest
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	email := strings.TrimSpace(body.Email)
	rego := strings.TrimSpace(body.Rego)
	if email == "" || rego == "" {
		writeError(w, http.StatusBadRequest, "email and rego are required")
		return
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(body.Date))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	if s.cfg.Booking.RateLimitAttempts > 0 {
		window := time.Duration(s.cfg.Booking.RateLimitWindow) * time.Second
		allowed, err := s.catalog.CheckBookingRateLimit(r.Context(), email, s.cfg.Booking.RateLimitAttempts, window)
		if err == nil && !allowed {
			writeError(w, http.StatusTooManyRequests, "too many booking attempts")
			return
		}
	}

	booking, err := s.bookings.BookCar(r.Context(), email, rego, date, body.StartHour, body.DurationHours)
	if err != nil {
		s.writeBookingError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"ref":         booking.Ref,
		"rego":        booking.CarRego,
		"member_no":   booking.MemberNo,
		"start_time":  booking.StartTime.Format(time.RFC3339),
		"end_time":    booking.EndTime.Format(time.RFC3339),
		"when_booked": booking.WhenBooked.Format(time.RFC3339),
	})
}

func (s *HTTPServer) writeBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, schedule.ErrInvalidWindow),
		errors.Is(err, schedule.ErrPastDate),
		errors.Is(err, schedule.ErrDateTooFar):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrMemberNotFound),
		errors.Is(err, database.ErrCarNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrMemberOverlap),
		errors.Is(err, database.ErrCarOverlap):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, "booking storage unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *HTTPServer) handleMemberBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("member_bookings")

	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	bookings, err := s.bookings.GetMemberBookings(r.Context(), email)
	if err != nil {
		if errors.Is(err, database.ErrMemberNotFound) {
			writeError(w, http.StatusNotFound, "member not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleBookingDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("booking_detail")

	q := r.URL.Query()
	rego := strings.TrimSpace(q.Get("rego"))
	if rego == "" {
		writeError(w, http.StatusBadRequest, "rego is required")
		return
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(q.Get("date")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	hour, err := strconv.Atoi(strings.TrimSpace(q.Get("hour")))
	if err != nil || hour < 0 || hour > 23 {
		writeError(w, http.StatusBadRequest, "hour must be between 0 and 23")
		return
	}

	details, err := s.bookings.GetBookingDetails(r.Context(), rego, date, hour)
	if err != nil {
		if errors.Is(err, database.ErrBookingNotFound) {
			writeError(w, http.StatusNotFound, "booking not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, details)
}

func (s *HTTPServer) handleCars(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("cars")

	cars, err := s.catalog.GetAllCars(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cars": cars})
}

func (s *HTTPServer) handleCarDetails(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("car_details")

	rego := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/api/v1/cars/"))
	if rego == "" || strings.Contains(rego, "/") {
		writeError(w, http.StatusBadRequest, "rego is required")
		return
	}

	car, err := s.catalog.GetCarDetails(r.Context(), rego)
	if err != nil {
		if errors.Is(err, database.ErrCarNotFound) {
			writeError(w, http.StatusNotFound, "car not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (s *HTTPServer) handleBays(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("bays")

	bays, err := s.catalog.GetAllBays(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bays": bays})
}

func (s *HTTPServer) handleBaySearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("bay_search")

	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	bays, err := s.catalog.SearchBays(r.Context(), term)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bays": bays})
}

// handleBaySubpaths routes /api/v1/bays/{name} and /api/v1/bays/{name}/cars.
func (s *HTTPServer) handleBaySubpaths(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/bays/")
	if name := strings.TrimSuffix(rest, "/cars"); name != rest {
		s.handleBayCars(w, r, strings.TrimSpace(name))
		return
	}

	name := strings.TrimSpace(rest)
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "bay name is required")
		return
	}

	metrics.IncHTTP("bay_details")
	bay, err := s.catalog.GetBay(r.Context(), name)
	if err != nil {
		if errors.Is(err, database.ErrBayNotFound) {
			writeError(w, http.StatusNotFound, "bay not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, bay)
}

func (s *HTTPServer) handleBayCars(w http.ResponseWriter, r *http.Request, name string) {
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "bay name is required")
		return
	}
	metrics.IncHTTP("bay_cars")

	cars, err := s.catalog.GetCarsInBay(r.Context(), name)
	if err != nil {
		if errors.Is(err, database.ErrBayNotFound) {
			writeError(w, http.StatusNotFound, "bay not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cars": cars})
}

// handleMembers routes /api/v1/members/{email}/homebay (PUT) and
// /api/v1/members/{email} (GET).
func (s *HTTPServer) handleMembers(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/members/")

	if email := strings.TrimSuffix(rest, "/homebay"); email != rest {
		s.handleUpdateHomeBay(w, r, strings.TrimSpace(email))
		return
	}

	email := strings.TrimSpace(rest)
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if email == "" || strings.Contains(email, "/") {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	metrics.IncHTTP("member_profile")
	member, err := s.catalog.GetMemberByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, database.ErrMemberNotFound) {
			writeError(w, http.StatusNotFound, "member not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (s *HTTPServer) handleUpdateHomeBay(w http.ResponseWriter, r *http.Request, email string) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if email == "" || strings.Contains(email, "/") {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	metrics.IncHTTP("update_homebay")

	var body struct {
		Bay string `json:"bay"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	bayName := strings.TrimSpace(body.Bay)
	if bayName == "" {
		writeError(w, http.StatusBadRequest, "bay is required")
		return
	}

	resolved, err := s.catalog.UpdateHomeBay(r.Context(), email, bayName)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrMemberNotFound):
			writeError(w, http.StatusNotFound, "member not found")
		case errors.Is(err, database.ErrBayNotFound):
			writeError(w, http.StatusNotFound, "bay not found")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"home_bay": resolved})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
