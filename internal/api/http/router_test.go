package http

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/booking-service/internal/api/http/handlers"
	"github.com/spec-kit/booking-service/internal/auth"
	"github.com/spec-kit/booking-service/internal/config"
	"github.com/spec-kit/booking-service/internal/domain"
	"github.com/spec-kit/booking-service/internal/events"
	"github.com/spec-kit/booking-service/internal/observability"
	"github.com/spec-kit/booking-service/internal/repository/memory"
	"github.com/spec-kit/booking-service/internal/service"
)

const (
	testTenant = "salon-a"
	testDate   = "2030-06-03"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
	Timestamp string `json:"timestamp"`
}

type testServer struct {
	app    *fiber.App
	tokens *auth.TokenManager
}

func newTestServer(t *testing.T, limits config.RateLimitConfig) *testServer {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	created := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Staff().Create(ctx, &domain.StaffMember{ID: "staff-a", TenantID: testTenant, Name: "A", Active: true, CreatedAt: created}))
	require.NoError(t, store.Staff().Create(ctx, &domain.StaffMember{ID: "staff-b", TenantID: testTenant, Name: "B", Active: true, CreatedAt: created.Add(time.Minute)}))
	require.NoError(t, store.Menus().Create(ctx, &domain.Menu{ID: "trim", TenantID: testTenant, Name: "Trim", DurationMinutes: 30, Active: true}))

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	schedule := config.DefaultSchedule()
	flagSvc := service.NewFeatureFlagService(store.FeatureFlags(), logger)
	availability := service.NewAvailabilityService(service.AvailabilityDependencies{
		Store:    store,
		Flags:    store.FeatureFlags(),
		Schedule: schedule,
		Metrics:  metrics,
		Logger:   logger,
	})
	booking := service.NewBookingService(service.BookingDependencies{
		Store:      store,
		TxManager:  store,
		Flags:      store.FeatureFlags(),
		Schedule:   schedule,
		Dispatcher: events.NewInMemoryDispatcher(logger),
		Metrics:    metrics,
		Logger:     logger,
	})

	tokens := auth.NewTokenManager("test-secret", 5)
	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("booking-service", "test", map[string]handlers.Pinger{"store": store}),
		Availability:   handlers.NewAvailabilityHandler(availability),
		Reservations:   handlers.NewReservationsHandler(booking),
		FeatureFlags:   handlers.NewFeatureFlagsHandler(flagSvc),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, auth.TenantFromContext),
		DefaultTenant:  "demo-booking",
		BookingLimiter: NewBookingRateLimiter(limits),
		Metrics:        metrics,
	})
	return &testServer{app: app, tokens: tokens}
}

func (s *testServer) token(t *testing.T, user string, role domain.SubjectRole) string {
	t.Helper()
	tok, _, err := s.tokens.GenerateToken(domain.Principal{UserID: user, TenantID: testTenant, Role: role})
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(auth.TenantHeader, testTenant)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp.StatusCode, env
}

func booking(at string) map[string]any {
	return map[string]any{"menu_id": "trim", "date": testDate, "time": at}
}

func TestAvailabilityEndpoint(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{})

	status, env := s.do(t, nethttp.MethodGet, "/api/v1/availability?date="+testDate+"&menu_id=trim", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Timestamp)

	var data struct {
		DurationMinutes int `json:"duration_minutes"`
		Slots           []struct {
			Time      string  `json:"time"`
			Available bool    `json:"available"`
			StaffID   *string `json:"staff_id"`
		} `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 30, data.DurationMinutes)
	require.Len(t, data.Slots, 18)
	assert.Equal(t, "09:00", data.Slots[0].Time)
	assert.True(t, data.Slots[0].Available)
	require.NotNil(t, data.Slots[0].StaffID)
	assert.Equal(t, "staff-a", *data.Slots[0].StaffID)

	status, env = s.do(t, nethttp.MethodGet, "/api/v1/availability?date="+testDate, "", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	status, env = s.do(t, nethttp.MethodGet, "/api/v1/availability?date="+testDate+"&menu_id=nope", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestReservationLifecycle(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{})
	user := s.token(t, "user-1", domain.SubjectRoleUser)
	other := s.token(t, "user-2", domain.SubjectRoleUser)
	admin := s.token(t, "admin-1", domain.SubjectRoleAdmin)

	status, env := s.do(t, nethttp.MethodPost, "/api/v1/reservations", "", booking("10:00"))
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	status, env = s.do(t, nethttp.MethodPost, "/api/v1/reservations", user, booking("10:00"))
	require.Equal(t, fiber.StatusCreated, status)
	var created struct {
		ID      string  `json:"id"`
		Status  string  `json:"status"`
		StaffID *string `json:"staff_id"`
		Date    string  `json:"date"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "PENDING", created.Status)
	assert.Equal(t, testDate, created.Date)
	require.NotNil(t, created.StaffID)
	assert.Equal(t, "staff-a", *created.StaffID)

	status, env = s.do(t, nethttp.MethodPost, "/api/v1/reservations", user, booking("10:00"))
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	status, env = s.do(t, nethttp.MethodPost, "/api/v1/reservations", user, booking("9:30"))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	status, _ = s.do(t, nethttp.MethodPost, "/api/v1/reservations/"+created.ID+"/cancel", other, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = s.do(t, nethttp.MethodPatch, "/api/v1/admin/reservations/"+created.ID+"/status", user, map[string]any{"status": "CONFIRMED"})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, env = s.do(t, nethttp.MethodPatch, "/api/v1/admin/reservations/"+created.ID+"/status", admin, map[string]any{"status": "SHIPPED"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	status, env = s.do(t, nethttp.MethodPatch, "/api/v1/admin/reservations/"+created.ID+"/status", admin, map[string]any{"status": "CONFIRMED"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(env.Data), `"status":"CONFIRMED"`)

	status, env = s.do(t, nethttp.MethodPost, "/api/v1/reservations/"+created.ID+"/cancel", user, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(env.Data), `"status":"CANCELLED"`)

	status, env = s.do(t, nethttp.MethodPost, "/api/v1/reservations/"+created.ID+"/cancel", user, nil)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", env.Error.Code)
}

func TestTokenForAnotherTenantIsForbidden(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{})
	tok, _, err := s.tokens.GenerateToken(domain.Principal{UserID: "u1", TenantID: "salon-b", Role: domain.SubjectRoleUser})
	require.NoError(t, err)

	status, env := s.do(t, nethttp.MethodPost, "/api/v1/reservations", tok, booking("10:00"))
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)
}

func TestFeatureFlagEndpoints(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{})
	admin := s.token(t, "admin-1", domain.SubjectRoleAdmin)
	user := s.token(t, "user-1", domain.SubjectRoleUser)

	status, env := s.do(t, nethttp.MethodGet, "/api/v1/feature-flags", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(env.Data), `"enable_staff_selection":true`)

	status, _ = s.do(t, nethttp.MethodPut, "/api/v1/admin/feature-flags", user, map[string]any{"enable_staff_selection": false})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, env = s.do(t, nethttp.MethodPut, "/api/v1/admin/feature-flags", admin, map[string]any{"enable_staff_selection": false})
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(env.Data), `"enable_staff_selection":false`)

	// a staff preference is rejected once selection is off
	req := booking("10:00")
	req["staff_id"] = "staff-b"
	status, env = s.do(t, nethttp.MethodPost, "/api/v1/reservations", user, req)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestBookingRateLimit(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{BookingsPerMinute: 1, Burst: 1})
	user := s.token(t, "user-1", domain.SubjectRoleUser)

	status, _ := s.do(t, nethttp.MethodPost, "/api/v1/reservations", user, booking("10:00"))
	require.Equal(t, fiber.StatusCreated, status)

	status, env := s.do(t, nethttp.MethodPost, "/api/v1/reservations", user, booking("11:00"))
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Equal(t, "TOO_MANY_REQUESTS", env.Error.Code)

	// other users keep their own budget
	status, _ = s.do(t, nethttp.MethodPost, "/api/v1/reservations", s.token(t, "user-2", domain.SubjectRoleUser), booking("11:00"))
	assert.Equal(t, fiber.StatusCreated, status)
}

func TestOperationalEndpoints(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{})

	status, _ := s.do(t, nethttp.MethodGet, "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = s.do(t, nethttp.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, status)

	s.do(t, nethttp.MethodGet, "/api/v1/availability?date="+testDate+"&menu_id=trim", "", nil)
	req := httptest.NewRequest(nethttp.MethodGet, "/metrics", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "booking_http_request_duration_seconds")

	status, env := s.do(t, nethttp.MethodGet, "/api/v1/nowhere", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}
