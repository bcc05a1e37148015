package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"consultation-service/internal/app/config"
	"consultation-service/internal/app/models"
	"consultation-service/internal/app/services/core/coretest"
	"consultation-service/internal/pkg/constvars"
	"consultation-service/internal/pkg/dto/requests"
	"consultation-service/internal/pkg/dto/responses"
	"consultation-service/internal/pkg/exceptions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	patientID = int64(1)
	doctorID  = int64(7)
)

var (
	patient = &models.Actor{ID: patientID, Role: constvars.RolePatient}
	doctor  = &models.Actor{ID: doctorID, Role: constvars.RoleDoctor}
	admin   = &models.Actor{ID: 99, Role: constvars.RoleAdmin}
)

// MockSettlementUsecase records calls and, when the expectation returns no error,
// resolves the held payment against the appointment store.
type MockSettlementUsecase struct {
	mock.Mock
	store *coretest.AppointmentStore
}

func (m *MockSettlementUsecase) RequestPreauthorization(ctx context.Context, actor *models.Actor, appointmentID int64, request *requests.Preauthorization) (*responses.Preauthorization, error) {
	args := m.Called(ctx, actor, appointmentID, request)
	response, _ := args.Get(0).(*responses.Preauthorization)
	return response, args.Error(1)
}

func (m *MockSettlementUsecase) CapturePayment(ctx context.Context, actor *models.Actor, appointmentID int64) (*models.Appointment, error) {
	args := m.Called(ctx, actor, appointmentID)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	current := m.store.Snapshot(appointmentID)
	return m.store.MarkPaymentCompleted(ctx, appointmentID, current.AuthorizationID())
}

func (m *MockSettlementUsecase) CancelPayment(ctx context.Context, actor *models.Actor, appointmentID int64) (*models.Appointment, error) {
	args := m.Called(ctx, actor, appointmentID)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	current := m.store.Snapshot(appointmentID)
	return m.store.MarkPaymentCancelled(ctx, appointmentID, current.AuthorizationID())
}

type fixture struct {
	uc           *appointmentUsecase
	appointments *coretest.AppointmentStore
	settlement   *MockSettlementUsecase
	rooms        *coretest.VideoRooms
	publisher    *coretest.Publisher
}

func newFixture() *fixture {
	cfg := &config.InternalConfig{}
	cfg.Settlement.DefaultEmergencyDurationMins = 30
	cfg.Settlement.StaleSweepBatchSize = 10

	store := coretest.NewAppointmentStore()
	f := &fixture{
		appointments: store,
		settlement:   &MockSettlementUsecase{store: store},
		rooms:        &coretest.VideoRooms{},
		publisher:    &coretest.Publisher{},
	}
	f.uc = &appointmentUsecase{
		AppointmentRepository: store,
		SettlementUsecase:     f.settlement,
		VideoRoomService:      f.rooms,
		EventPublisher:        f.publisher,
		AccessControl:         coretest.AccessControl(),
		InternalConfig:        cfg,
		Log:                   zap.NewNop(),
	}
	return f
}

func (f *fixture) put(status models.AppointmentStatus, payment models.PaymentStatus) models.Appointment {
	appointment := models.Appointment{
		PatientID:       patientID,
		DoctorID:        coretest.Int64Ptr(doctorID),
		ScheduledAt:     time.Now().Add(time.Hour),
		DurationMinutes: 30,
		Type:            models.AppointmentTypeTelemedicine,
		Status:          status,
		PaymentStatus:   payment,
	}
	if payment == models.PaymentStatusAuthorized {
		appointment.PaymentAuthorizationID = coretest.StringPtr("auth_1")
		appointment.PaymentAmount = 10000
	}
	return f.appointments.Put(appointment)
}

func TestBook(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	request := &requests.BookAppointment{
		ScheduledAt:     "2026-03-10T09:00:00Z",
		DurationMinutes: 30,
		DoctorID:        coretest.Int64Ptr(doctorID),
	}

	appointment, err := f.uc.Book(ctx, patient, request)
	require.NoError(t, err)
	assert.Equal(t, patientID, appointment.PatientID)
	assert.Equal(t, models.AppointmentStatusScheduled, appointment.Status)
	assert.Equal(t, models.PaymentStatusPending, appointment.PaymentStatus)
	assert.False(t, appointment.IsEmergency)
	assert.Equal(t, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), appointment.ScheduledAt.UTC())

	request.PatientID = 2
	_, err = f.uc.Book(ctx, patient, request)
	assert.True(t, exceptions.IsKind(err, exceptions.KindForbidden))

	_, err = f.uc.Book(ctx, doctor, request)
	assert.True(t, exceptions.IsKind(err, exceptions.KindForbidden))

	onBehalf, err := f.uc.Book(ctx, admin, request)
	require.NoError(t, err)
	assert.Equal(t, int64(2), onBehalf.PatientID)

	request.PatientID = 0
	_, err = f.uc.Book(ctx, admin, request)
	assert.True(t, exceptions.IsKind(err, exceptions.KindInvalidInput))
}

func TestBookEmergency(t *testing.T) {
	f := newFixture()

	appointment, err := f.uc.BookEmergency(context.Background(), patient, &requests.BookEmergencyAppointment{})
	require.NoError(t, err)
	assert.True(t, appointment.IsEmergency)
	assert.Equal(t, models.AppointmentTypeEmergency, appointment.Type)
	assert.Equal(t, 30, appointment.DurationMinutes)
	assert.Nil(t, appointment.DoctorID)
	assert.WithinDuration(t, time.Now(), appointment.ScheduledAt, time.Minute)
}

func TestConfirmAssignsDoctorAndCreatesRoom(t *testing.T) {
	f := newFixture()
	appointment := f.put(models.AppointmentStatusScheduled, models.PaymentStatusIncludedInPlan)
	appointment.DoctorID = nil
	f.appointments.Put(appointment)

	confirmed, err := f.uc.Confirm(context.Background(), doctor, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusConfirmed, confirmed.Status)
	assert.True(t, confirmed.HasDoctor(doctorID))
	require.NotNil(t, confirmed.VideoRoomURL)
	assert.Equal(t, "https://video.example.test/consultation-1", *confirmed.VideoRoomURL)
	assert.Equal(t, "https://video.example.test/consultation-1", *f.appointments.Snapshot(appointment.ID).VideoRoomURL)
	assert.Equal(t, []string{constvars.EventAppointmentConfirmed}, f.publisher.Types())

	_, err = f.uc.Confirm(context.Background(), doctor, appointment.ID)
	assert.True(t, exceptions.IsKind(err, exceptions.KindInvalidAppointmentState))
}

func TestConfirmSurvivesVideoRoomFailure(t *testing.T) {
	f := newFixture()
	f.rooms.Err = errors.New("provider unavailable")
	appointment := f.put(models.AppointmentStatusScheduled, models.PaymentStatusAuthorized)

	confirmed, err := f.uc.Confirm(context.Background(), doctor, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusConfirmed, confirmed.Status)
	assert.Nil(t, confirmed.VideoRoomURL)
}

func TestConfirmForbiddenForOtherDoctor(t *testing.T) {
	f := newFixture()
	appointment := f.put(models.AppointmentStatusScheduled, models.PaymentStatusPending)

	other := &models.Actor{ID: 8, Role: constvars.RoleDoctor}
	_, err := f.uc.Confirm(context.Background(), other, appointment.ID)
	assert.True(t, exceptions.IsKind(err, exceptions.KindForbidden))

	_, err = f.uc.Confirm(context.Background(), patient, appointment.ID)
	assert.True(t, exceptions.IsKind(err, exceptions.KindForbidden))
}

func TestStartRequiresHeldPayment(t *testing.T) {
	f := newFixture()
	unpaid := f.put(models.AppointmentStatusConfirmed, models.PaymentStatusPending)

	_, err := f.uc.Start(context.Background(), doctor, unpaid.ID)
	assert.True(t, exceptions.IsKind(err, exceptions.KindInvalidPaymentState))

	held := f.put(models.AppointmentStatusConfirmed, models.PaymentStatusAuthorized)
	started, err := f.uc.Start(context.Background(), doctor, held.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusInProgress, started.Status)

	scheduled := f.put(models.AppointmentStatusScheduled, models.PaymentStatusAuthorized)
	_, err = f.uc.Start(context.Background(), doctor, scheduled.ID)
	assert.True(t, exceptions.IsKind(err, exceptions.KindInvalidAppointmentState))
}

func TestComplete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	held := f.put(models.AppointmentStatusInProgress, models.PaymentStatusAuthorized)
	f.settlement.On("CapturePayment", mock.Anything, doctor, held.ID).Return(nil, nil).Once()
	completed, err := f.uc.Complete(ctx, doctor, held.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCompleted, completed.Status)
	assert.Equal(t, models.PaymentStatusCompleted, completed.PaymentStatus)

	covered := f.put(models.AppointmentStatusInProgress, models.PaymentStatusIncludedInPlan)
	completed, err = f.uc.Complete(ctx, doctor, covered.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCompleted, completed.Status)
	assert.Equal(t, models.PaymentStatusIncludedInPlan, completed.PaymentStatus)

	unpaid := f.put(models.AppointmentStatusInProgress, models.PaymentStatusPending)
	_, err = f.uc.Complete(ctx, doctor, unpaid.ID)
	assert.True(t, exceptions.IsKind(err, exceptions.KindInvalidPaymentState))

	_, err = f.uc.Complete(ctx, patient, held.ID)
	assert.True(t, exceptions.IsKind(err, exceptions.KindForbidden))

	assert.Equal(t, []string{constvars.EventAppointmentCompleted, constvars.EventAppointmentCompleted}, f.publisher.Types())
	f.settlement.AssertExpectations(t)
	f.settlement.AssertNumberOfCalls(t, "CapturePayment", 1)
	f.settlement.AssertNotCalled(t, "CancelPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelReleasesHeldPayment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	held := f.put(models.AppointmentStatusConfirmed, models.PaymentStatusAuthorized)
	f.settlement.On("CancelPayment", mock.Anything, patient, held.ID).Return(nil, nil).Once()
	cancelled, err := f.uc.Cancel(ctx, patient, held.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCancelled, cancelled.Status)
	assert.Equal(t, models.PaymentStatusCancelled, cancelled.PaymentStatus)

	unpaid := f.put(models.AppointmentStatusScheduled, models.PaymentStatusPending)
	cancelled, err = f.uc.Cancel(ctx, doctor, unpaid.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCancelled, cancelled.Status)
	assert.Equal(t, models.PaymentStatusPending, cancelled.PaymentStatus)

	_, err = f.uc.Cancel(ctx, patient, unpaid.ID)
	assert.True(t, exceptions.IsKind(err, exceptions.KindInvalidAppointmentState))
	f.settlement.AssertExpectations(t)
	f.settlement.AssertNumberOfCalls(t, "CancelPayment", 1)
	f.settlement.AssertNotCalled(t, "CapturePayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelKeepsStateWhenGatewayFails(t *testing.T) {
	f := newFixture()
	held := f.put(models.AppointmentStatusConfirmed, models.PaymentStatusAuthorized)
	f.settlement.On("CancelPayment", mock.Anything, admin, held.ID).
		Return(nil, exceptions.ErrGatewayTimeout(nil, constvars.GatewayOperationCancel)).Once()

	_, err := f.uc.Cancel(context.Background(), admin, held.ID)
	assert.True(t, exceptions.IsKind(err, exceptions.KindGatewayTimeout))
	assert.Equal(t, models.AppointmentStatusConfirmed, f.appointments.Snapshot(held.ID).Status)
	assert.Empty(t, f.publisher.Events)
	f.settlement.AssertExpectations(t)
}

func TestCancelStale(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	past := time.Now().Add(-3 * time.Hour)

	staleHeld := f.put(models.AppointmentStatusConfirmed, models.PaymentStatusAuthorized)
	staleHeld.ScheduledAt = past
	f.appointments.Put(staleHeld)
	stalePending := f.put(models.AppointmentStatusScheduled, models.PaymentStatusPending)
	stalePending.ScheduledAt = past
	f.appointments.Put(stalePending)
	upcoming := f.put(models.AppointmentStatusScheduled, models.PaymentStatusPending)
	f.settlement.On("CancelPayment", mock.Anything, mock.Anything, staleHeld.ID).Return(nil, nil).Once()

	_, err := f.uc.CancelStale(ctx, doctor, time.Now())
	assert.True(t, exceptions.IsKind(err, exceptions.KindForbidden))

	result, err := f.uc.CancelStale(ctx, admin, time.Now())
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{staleHeld.ID, stalePending.ID}, result.Cancelled)
	assert.Empty(t, result.Failed)
	f.settlement.AssertExpectations(t)
	f.settlement.AssertNumberOfCalls(t, "CancelPayment", 1)
	assert.Equal(t, models.AppointmentStatusScheduled, f.appointments.Snapshot(upcoming.ID).Status)
}

func TestCancelStaleReportsFailures(t *testing.T) {
	f := newFixture()
	stale := f.put(models.AppointmentStatusConfirmed, models.PaymentStatusAuthorized)
	stale.ScheduledAt = time.Now().Add(-3 * time.Hour)
	f.appointments.Put(stale)
	f.settlement.On("CancelPayment", mock.Anything, mock.Anything, stale.ID).Return(nil, exceptions.ErrCancelFailed(nil))

	result, err := f.uc.CancelStale(context.Background(), admin, time.Now())
	require.NoError(t, err)
	assert.Empty(t, result.Cancelled)
	assert.Equal(t, map[int64]string{stale.ID: string(exceptions.KindCancelFailed)}, result.Failed)
}

func TestCancelStaleRotatesFailedAppointments(t *testing.T) {
	f := newFixture()
	f.uc.InternalConfig.Settlement.StaleSweepBatchSize = 1
	ctx := context.Background()
	past := time.Now().Add(-3 * time.Hour)

	failing := f.put(models.AppointmentStatusConfirmed, models.PaymentStatusAuthorized)
	failing.ScheduledAt = past
	failing.UpdatedAt = time.Now().Add(-2 * time.Hour)
	f.appointments.Put(failing)
	f.settlement.On("CancelPayment", mock.Anything, mock.Anything, failing.ID).Return(nil, exceptions.ErrCancelFailed(nil))
	pending := f.put(models.AppointmentStatusScheduled, models.PaymentStatusPending)
	pending.ScheduledAt = past
	pending.UpdatedAt = time.Now().Add(-time.Hour)
	f.appointments.Put(pending)

	result, err := f.uc.CancelStale(ctx, admin, time.Now())
	require.NoError(t, err)
	assert.Contains(t, result.Failed, failing.ID)

	result, err = f.uc.CancelStale(ctx, admin, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []int64{pending.ID}, result.Cancelled)
	assert.Equal(t, models.AppointmentStatusCancelled, f.appointments.Snapshot(pending.ID).Status)
	f.settlement.AssertNumberOfCalls(t, "CancelPayment", 1)
}

func TestListActiveEmergencies(t *testing.T) {
	f := newFixture()
	emergency := f.put(models.AppointmentStatusInProgress, models.PaymentStatusIncludedInPlan)
	emergency.IsEmergency = true
	emergency.Type = models.AppointmentTypeEmergency
	f.appointments.Put(emergency)
	f.put(models.AppointmentStatusScheduled, models.PaymentStatusPending)

	active, err := f.uc.ListActiveEmergencies(context.Background(), doctor)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, emergency.ID, active[0].ID)

	_, err = f.uc.ListActiveEmergencies(context.Background(), patient)
	assert.True(t, exceptions.IsKind(err, exceptions.KindForbidden))
}

func TestGet(t *testing.T) {
	f := newFixture()
	appointment := f.put(models.AppointmentStatusScheduled, models.PaymentStatusPending)

	got, err := f.uc.Get(context.Background(), patient, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, appointment.ID, got.ID)

	stranger := &models.Actor{ID: 2, Role: constvars.RolePatient}
	_, err = f.uc.Get(context.Background(), stranger, appointment.ID)
	assert.True(t, exceptions.IsKind(err, exceptions.KindForbidden))

	_, err = f.uc.Get(context.Background(), admin, 404)
	assert.True(t, exceptions.IsKind(err, exceptions.KindAppointmentNotFound))
}
