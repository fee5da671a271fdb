package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/config"
	"github.com/BruksfildServices01/clinic-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/clinic-scheduler/internal/metrics"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
	ucAuth "github.com/BruksfildServices01/clinic-scheduler/internal/usecase/auth"
)

type server struct {
	t          *testing.T
	engine     *gin.Engine
	dispatcher *audit.Dispatcher
	token      string
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := timezone.FixedClock{At: time.Date(2025, 3, 1, 9, 0, 0, 0, timezone.Location(6))}
	store := memory.New()
	store.Now = clock.Now

	_, err := ucAuth.EnsureAdmin(context.Background(), store, "admin", "s3cret")
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	dispatcher := audit.NewDispatcher(store, 100, clock, nil, m)
	t.Cleanup(dispatcher.Close)

	r := gin.New()
	RegisterRoutes(r, Deps{
		Config: &config.Config{
			JWTSecret:          "test-secret",
			JWTTTL:             time.Hour,
			SlotMinutes:        15,
			BookingHorizonDays: 365,
		},
		Repos: Repositories{
			Bookings: store,
			Billing:  store,
			Clients:  store,
			Catalog:  store,
			Users:    store,
			Audit:    store,
		},
		Recorder: dispatcher,
		Clock:    clock,
		Metrics:  m,
		Gatherer: reg,
	})
	return &server{t: t, engine: r, dispatcher: dispatcher}
}

func (s *server) do(method, path string, body any) (int, map[string]any) {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func (s *server) login() {
	s.t.Helper()
	code, body := s.do(http.MethodPost, "/api/auth/login", gin.H{"username": "admin", "password": "s3cret"})
	require.Equal(s.t, http.StatusOK, code)
	s.token = body["token"].(string)
}

func id(v any) uint {
	return uint(v.(float64))
}

func TestHealthAndAuth(t *testing.T) {
	s := newServer(t)

	code, body := s.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	code, _ = s.do(http.MethodGet, "/api/bookings?from=2025-03-10", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = s.do(http.MethodPost, "/api/auth/login", gin.H{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid_credentials", body["error_code"])

	s.login()
	code, body = s.do(http.MethodGet, "/api/me", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "admin", body["user"].(map[string]any)["access_level"])
}

func TestBookingAndPaymentFlow(t *testing.T) {
	s := newServer(t)
	s.login()

	code, body := s.do(http.MethodPost, "/api/practitioners", gin.H{
		"first_name": "John", "last_name": "Smith", "specialization": "Therapist",
	})
	require.Equal(t, http.StatusCreated, code, body)
	practitionerID := id(body["id"])

	code, body = s.do(http.MethodPost, "/api/services", gin.H{
		"practitioner_id": practitionerID, "name": "Consultation", "price": "5000",
	})
	require.Equal(t, http.StatusCreated, code, body)
	serviceID := id(body["id"])

	code, body = s.do(http.MethodPost, "/api/bookings", gin.H{
		"client":          gin.H{"first_name": "Aliya", "last_name": "Tekeyeva", "phone": "+77011234567"},
		"practitioner_id": practitionerID,
		"service_id":      serviceID,
		"date":            "2025-03-10",
		"time":            "10:00",
	})
	require.Equal(t, http.StatusCreated, code, body)
	bookingID := id(body["id"])
	assert.Equal(t, "10:00:00", body["time"])

	// second client, same slot
	code, body = s.do(http.MethodPost, "/api/bookings", gin.H{
		"client":          gin.H{"first_name": "Bob", "phone": "+77017654321"},
		"practitioner_id": practitionerID,
		"service_id":      serviceID,
		"date":            "2025-03-10",
		"time":            "10:00",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "time_conflict", body["error_code"])
	assert.Contains(t, body["message"], "Aliya Tekeyeva")

	code, body = s.do(http.MethodGet, "/api/clients?phone=%2B77017654321", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "client_not_found", body["error_code"])

	code, body = s.do(http.MethodGet, fmt.Sprintf("/api/bookings/%d/services", bookingID), nil)
	require.Equal(t, http.StatusOK, code)
	lines := body["services"].([]any)
	require.Len(t, lines, 1)
	lineID := id(lines[0].(map[string]any)["id"])

	code, body = s.do(http.MethodPost, fmt.Sprintf("/api/service-lines/%d/payments", lineID), gin.H{"method": "cash", "amount": "3000"})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "partially-paid", body["balance"].(map[string]any)["payment_status"])

	code, body = s.do(http.MethodPost, fmt.Sprintf("/api/service-lines/%d/payments", lineID), gin.H{"method": "card", "amount": "2000"})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "paid", body["balance"].(map[string]any)["payment_status"])

	code, body = s.do(http.MethodGet, fmt.Sprintf("/api/bookings/%d/payments/summary", bookingID), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["by_method"], 2)

	code, body = s.do(http.MethodPost, fmt.Sprintf("/api/bookings/%d/checkout", bookingID), gin.H{
		"tenders": []gin.H{{"method": "cash", "amount": "100"}},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "overpayment", body["error_code"])

	code, body = s.do(http.MethodGet, "/api/bookings?from=2025-03-10&to=2025-03-10", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["total"])
	row := body["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "paid", row["payment_status"])
	assert.Equal(t, "Aliya Tekeyeva", row["client_name"])

	code, _ = s.do(http.MethodPatch, fmt.Sprintf("/api/bookings/%d/cancel", bookingID), nil)
	assert.Equal(t, http.StatusOK, code)

	code, body = s.do(http.MethodDelete, "/api/bookings/999", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "booking_not_found", body["error_code"])

	s.dispatcher.Close()
	code, body = s.do(http.MethodGet, "/api/audit-logs?table=bookings", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, body["total"])

	code, body = s.do(http.MethodGet, "/api/audit-logs?action=LOGIN", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["total"])
}

func TestBadRequests(t *testing.T) {
	s := newServer(t)
	s.login()

	code, body := s.do(http.MethodGet, "/api/bookings/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_id", body["error_code"])

	code, body = s.do(http.MethodGet, "/api/bookings?from=10.03.2025", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_from", body["error_code"])

	code, body = s.do(http.MethodPost, "/api/clients", gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "first_name_required", body["error_code"])

	code, body = s.do(http.MethodGet, "/api/clients?query=a", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "query_too_short", body["error_code"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t)
	s.do(http.MethodGet, "/health", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "clinic_http_request_duration_seconds")
}
