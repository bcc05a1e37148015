package routers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"consultation-service/internal/app/config"
	"consultation-service/internal/app/contracts"
	"consultation-service/internal/app/delivery/http/controllers"
	"consultation-service/internal/app/delivery/http/middlewares"
	"consultation-service/internal/app/models"
	"consultation-service/internal/app/services/shared/rbac"
	"consultation-service/internal/pkg/constvars"
	"consultation-service/internal/pkg/dto/requests"
	"consultation-service/internal/pkg/dto/responses"
	"consultation-service/internal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "router-test-secret"

type MockAppointmentUsecase struct {
	mock.Mock
}

func (m *MockAppointmentUsecase) appointment(args mock.Arguments) (*models.Appointment, error) {
	appointment, _ := args.Get(0).(*models.Appointment)
	return appointment, args.Error(1)
}

func (m *MockAppointmentUsecase) Book(ctx context.Context, actor *models.Actor, request *requests.BookAppointment) (*models.Appointment, error) {
	return m.appointment(m.Called(ctx, actor, request))
}

func (m *MockAppointmentUsecase) BookEmergency(ctx context.Context, actor *models.Actor, request *requests.BookEmergencyAppointment) (*models.Appointment, error) {
	return m.appointment(m.Called(ctx, actor, request))
}

func (m *MockAppointmentUsecase) Get(ctx context.Context, actor *models.Actor, appointmentID int64) (*models.Appointment, error) {
	return m.appointment(m.Called(ctx, actor, appointmentID))
}

func (m *MockAppointmentUsecase) Confirm(ctx context.Context, actor *models.Actor, appointmentID int64) (*models.Appointment, error) {
	return m.appointment(m.Called(ctx, actor, appointmentID))
}

func (m *MockAppointmentUsecase) Start(ctx context.Context, actor *models.Actor, appointmentID int64) (*models.Appointment, error) {
	return m.appointment(m.Called(ctx, actor, appointmentID))
}

func (m *MockAppointmentUsecase) Complete(ctx context.Context, actor *models.Actor, appointmentID int64) (*models.Appointment, error) {
	return m.appointment(m.Called(ctx, actor, appointmentID))
}

func (m *MockAppointmentUsecase) Cancel(ctx context.Context, actor *models.Actor, appointmentID int64) (*models.Appointment, error) {
	return m.appointment(m.Called(ctx, actor, appointmentID))
}

func (m *MockAppointmentUsecase) CancelStale(ctx context.Context, actor *models.Actor, olderThan time.Time) (*responses.StaleCancellation, error) {
	args := m.Called(ctx, actor, olderThan)
	result, _ := args.Get(0).(*responses.StaleCancellation)
	return result, args.Error(1)
}

func (m *MockAppointmentUsecase) ListActiveEmergencies(ctx context.Context, actor *models.Actor) ([]models.Appointment, error) {
	args := m.Called(ctx, actor)
	appointments, _ := args.Get(0).([]models.Appointment)
	return appointments, args.Error(1)
}

func actorWithID(id int64) interface{} {
	return mock.MatchedBy(func(actor *models.Actor) bool { return actor != nil && actor.ID == id })
}

func newTestRouter(t *testing.T, appointments contracts.AppointmentUsecase) *chi.Mux {
	t.Helper()
	logger := zap.NewNop()
	cfg := &config.InternalConfig{}
	cfg.App.EndpointPrefix = "api"
	cfg.App.Version = "v1"
	cfg.App.MaxRequests = 1000
	cfg.App.RequestBodyLimitInMegabyte = 1
	cfg.App.Timezone = "UTC"
	cfg.JWT.Secret = testSecret

	accessControl, err := rbac.NewAccessControl(logger)
	require.NoError(t, err)

	router := chi.NewRouter()
	SetupRoutes(
		router,
		cfg,
		&middlewares.Middlewares{Log: logger, InternalConfig: cfg, AccessControl: accessControl},
		&controllers.AppointmentController{Log: logger, AppointmentUsecase: appointments},
		&controllers.PaymentController{Log: logger},
		&controllers.QuotaController{Log: logger, AccessControl: accessControl},
		&controllers.EarningsController{Log: logger, AccessControl: accessControl, InternalConfig: cfg},
	)
	return router
}

func bearer(t *testing.T, actor models.Actor) string {
	t.Helper()
	token, err := utils.GenerateActorJWT(actor, testSecret, time.Minute)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRoutesRequireAuthentication(t *testing.T) {
	appointments := new(MockAppointmentUsecase)
	router := newTestRouter(t, appointments)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/appointments/1"},
		{http.MethodPost, "/api/v1/appointments/1/payment/preauthorize"},
		{http.MethodGet, "/api/v1/quotas/1"},
		{http.MethodPut, "/api/v1/quotas/1/cycle"},
		{http.MethodGet, "/api/v1/earnings/doctors/7/report"},
	}
	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code, p.path)
		assert.NotEmpty(t, rr.Header().Get(constvars.HeaderXRequestID), p.path)
	}
	appointments.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestRoutesRejectUnknownRole(t *testing.T) {
	appointments := new(MockAppointmentUsecase)
	router := newTestRouter(t, appointments)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/42", nil)
	req.Header.Set(constvars.HeaderAuthorization, bearer(t, models.Actor{ID: 3, Role: "nurse"}))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	appointments.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestRoutesDispatchToController(t *testing.T) {
	appointments := new(MockAppointmentUsecase)
	appointments.On("Get", mock.Anything, actorWithID(3), int64(42)).
		Return(&models.Appointment{ID: 42, PatientID: 3}, nil).Once()
	router := newTestRouter(t, appointments)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/42", nil)
	req.Header.Set(constvars.HeaderAuthorization, bearer(t, models.Actor{ID: 3, Role: constvars.RolePatient}))
	req.Header.Set(constvars.HeaderXRequestID, "req-router")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "req-router", rr.Header().Get(constvars.HeaderXRequestID))
	appointments.AssertExpectations(t)
}

func TestStaticAppointmentRoutesWinOverID(t *testing.T) {
	appointments := new(MockAppointmentUsecase)
	appointments.On("ListActiveEmergencies", mock.Anything, actorWithID(1)).
		Return([]models.Appointment{}, nil).Once()
	router := newTestRouter(t, appointments)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/emergencies/active", nil)
	req.Header.Set(constvars.HeaderAuthorization, bearer(t, models.Actor{ID: 1, Role: constvars.RoleAdmin}))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), constvars.AppointmentActiveEmergencySuccess)
	appointments.AssertExpectations(t)
	appointments.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestQuotaCycleRouteIsAdminOnly(t *testing.T) {
	router := newTestRouter(t, new(MockAppointmentUsecase))

	req := httptest.NewRequest(http.MethodPut, "/api/v1/quotas/3/cycle",
		strings.NewReader(`{"plan_name":"standard","cycle_start":"2026-03-01T00:00:00Z","cycle_end":"2026-04-01T00:00:00Z"}`))
	req.Header.Set(constvars.HeaderAuthorization, bearer(t, models.Actor{ID: 3, Role: constvars.RolePatient}))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}
