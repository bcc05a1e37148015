package settlement

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"consultation-service/internal/app/config"
	"consultation-service/internal/app/models"
	"consultation-service/internal/app/services/core/coretest"
	"consultation-service/internal/pkg/constvars"
	"consultation-service/internal/pkg/dto/requests"
	"consultation-service/internal/pkg/exceptions"

	"github.com/stretchr/testify/assert"
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

type fixture struct {
	uc           *settlementUsecase
	appointments *coretest.AppointmentStore
	quotas       *coretest.QuotaStore
	billing      *coretest.BillingStore
	gateway      *coretest.Gateway
	publisher    *coretest.Publisher
	earnings     *coretest.EarningsRecorder
}

func newFixture() *fixture {
	cfg := &config.InternalConfig{}
	cfg.PaymentGateway.Currency = "IDR"
	cfg.Settlement.DefaultEmergencyFee = 25000

	plans := coretest.NewPlanStore(
		models.NonePlan(),
		&models.Plan{Name: "basic", EmergencyQuota: models.EmergencyQuota{Count: 1}, EmergencyIncludedMinutes: 30},
		&models.Plan{Name: "standard", EmergencyQuota: models.EmergencyQuota{Count: 3}, SpecialistDiscountPct: 10, EmergencyIncludedMinutes: 30},
		&models.Plan{Name: "premium", EmergencyQuota: models.EmergencyQuota{Unlimited: true}, SpecialistDiscountPct: 20, EmergencyIncludedMinutes: 60},
	)

	f := &fixture{
		appointments: coretest.NewAppointmentStore(),
		quotas:       coretest.NewQuotaStore(),
		billing:      coretest.NewBillingStore(),
		gateway:      &coretest.Gateway{},
		publisher:    &coretest.Publisher{},
		earnings:     &coretest.EarningsRecorder{},
	}
	f.billing.Profiles[patientID] = &models.BillingProfile{PatientID: patientID, CustomerRef: "cus_1", PaymentMethodRef: "pm_card"}
	f.billing.Fees[doctorID] = &models.DoctorFee{DoctorID: doctorID, ConsultationFee: 10000, EmergencyFee: 30000}

	f.uc = &settlementUsecase{
		AppointmentRepository: f.appointments,
		BillingRepository:     f.billing,
		QuotaUsecase:          &coretest.QuotaTracker{Store: f.quotas, Plans: plans},
		PaymentGateway:        f.gateway,
		EventPublisher:        f.publisher,
		EarningsUsecase:       f.earnings,
		AccessControl:         coretest.AccessControl(),
		InternalConfig:        cfg,
		Log:                   zap.NewNop(),
	}
	return f
}

func (f *fixture) subscribe(planName string, remaining int) {
	f.quotas.SetEntry(models.QuotaEntry{
		PatientID:  patientID,
		PlanName:   planName,
		Remaining:  remaining,
		CycleStart: time.Now().AddDate(0, 0, -1),
		CycleEnd:   time.Now().AddDate(0, 1, 0),
	})
}

func (f *fixture) book(isEmergency bool) models.Appointment {
	appointment := models.Appointment{
		PatientID:       patientID,
		DoctorID:        coretest.Int64Ptr(doctorID),
		ScheduledAt:     time.Now(),
		DurationMinutes: 30,
		Type:            models.AppointmentTypeTelemedicine,
		Status:          models.AppointmentStatusScheduled,
		PaymentStatus:   models.PaymentStatusPending,
	}
	if isEmergency {
		appointment.Type = models.AppointmentTypeEmergency
		appointment.IsEmergency = true
	}
	return f.appointments.Put(appointment)
}

func (f *fixture) authorized(status models.AppointmentStatus) models.Appointment {
	appointment := f.book(false)
	appointment.Status = status
	appointment.PaymentStatus = models.PaymentStatusAuthorized
	appointment.PaymentAuthorizationID = coretest.StringPtr("auth_seed")
	appointment.PaymentAmount = 10000
	return f.appointments.Put(appointment)
}

func preauth(isEmergency bool) *requests.Preauthorization {
	return &requests.Preauthorization{DoctorID: doctorID, IsEmergency: isEmergency}
}

func TestPreauthorizeUnlimitedPlanNeverCallsGateway(t *testing.T) {
	f := newFixture()
	f.subscribe("premium", 0)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		appointment := f.book(true)
		response, err := f.uc.RequestPreauthorization(ctx, patient, appointment.ID, preauth(true))
		require.NoError(t, err)
		assert.True(t, response.IncludedInPlan)
		assert.Equal(t, models.PaymentStatusIncludedInPlan, f.appointments.Snapshot(appointment.ID).PaymentStatus)
	}

	assert.Zero(t, f.gateway.AuthorizeCalls())
	assert.Equal(t, 5, f.quotas.UsageCount())
	assert.Zero(t, f.quotas.Remaining(patientID))
}

func TestPreauthorizeNumericQuotaBoundary(t *testing.T) {
	f := newFixture()
	f.subscribe("standard", 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		appointment := f.book(true)
		response, err := f.uc.RequestPreauthorization(ctx, patient, appointment.ID, preauth(true))
		require.NoError(t, err)
		assert.True(t, response.IncludedInPlan)
	}
	assert.Zero(t, f.quotas.Remaining(patientID))
	assert.Zero(t, f.gateway.AuthorizeCalls())

	chargeable := f.book(true)
	response, err := f.uc.RequestPreauthorization(ctx, patient, chargeable.ID, preauth(true))
	require.NoError(t, err)
	assert.False(t, response.IncludedInPlan)
	assert.Equal(t, models.PaymentStatusAuthorized, response.PaymentStatus)
	assert.Equal(t, 1, f.gateway.AuthorizeCalls())
	assert.Zero(t, f.quotas.Remaining(patientID))
}

func TestPreauthorizeBasicPlanScenario(t *testing.T) {
	f := newFixture()
	f.subscribe("basic", 1)
	ctx := context.Background()

	first := f.book(true)
	response, err := f.uc.RequestPreauthorization(ctx, patient, first.ID, preauth(true))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusIncludedInPlan, response.PaymentStatus)
	assert.Zero(t, f.quotas.Remaining(patientID))

	second := f.book(true)
	second.DurationMinutes = 45
	f.appointments.Put(second)
	response, err = f.uc.RequestPreauthorization(ctx, patient, second.ID, preauth(true))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusAuthorized, response.PaymentStatus)
	assert.Equal(t, "auth_1", response.AuthorizationID)
	assert.Equal(t, "auth_1_secret", response.ClientSecret)
	assert.Equal(t, int64(30000), response.Amount)

	require.Len(t, f.gateway.AuthorizeRequests, 1)
	sent := f.gateway.AuthorizeRequests[0]
	assert.Equal(t, int64(30000), sent.Amount)
	assert.Equal(t, "cus_1", sent.CustomerRef)
	assert.Equal(t, "IDR", sent.Currency)
	assert.Equal(t, "appointment-2-pm_card", sent.IdempotencyKey)
	assert.Equal(t, map[string]string{"appointment_id": "2", "doctor_id": "7", "is_emergency": "true"}, sent.Metadata)

	assert.Equal(t, []string{constvars.EventPaymentIncludedInPlan, constvars.EventPaymentAuthorized}, f.publisher.Types())
}

func TestPreauthorizeChargeableEmergencyMatchesEarningsRule(t *testing.T) {
	f := newFixture()
	f.subscribe("standard", 0)
	ctx := context.Background()

	short := f.book(true)
	response, err := f.uc.RequestPreauthorization(ctx, patient, short.ID, preauth(true))
	require.NoError(t, err)
	assert.Equal(t, int64(9000), response.Amount)

	long := f.book(true)
	long.DurationMinutes = 60
	f.appointments.Put(long)
	response, err = f.uc.RequestPreauthorization(ctx, patient, long.ID, preauth(true))
	require.NoError(t, err)
	assert.Equal(t, int64(30000), response.Amount)
}

func TestPreauthorizeRetryDoesNotConsumeQuotaTwice(t *testing.T) {
	f := newFixture()
	f.subscribe("standard", 2)
	ctx := context.Background()

	appointment := f.book(true)
	_, err := f.uc.RequestPreauthorization(ctx, patient, appointment.ID, preauth(true))
	require.NoError(t, err)
	response, err := f.uc.RequestPreauthorization(ctx, patient, appointment.ID, preauth(true))
	require.NoError(t, err)
	assert.True(t, response.IncludedInPlan)
	assert.Equal(t, 1, f.quotas.Remaining(patientID))

	// quota consumed before a crash, ledger never updated
	crashed := f.book(true)
	consumed, err := f.quotas.ConsumeOnce(ctx, patientID, crashed.ID, true, time.Now())
	require.NoError(t, err)
	require.True(t, consumed)

	response, err = f.uc.RequestPreauthorization(ctx, patient, crashed.ID, preauth(true))
	require.NoError(t, err)
	assert.True(t, response.IncludedInPlan)
	assert.Zero(t, f.quotas.Remaining(patientID))
	assert.Equal(t, 2, f.quotas.UsageCount())
	assert.Zero(t, f.gateway.AuthorizeCalls())
}

func TestPreauthorizeExpiredCycleIsChargeable(t *testing.T) {
	f := newFixture()
	f.quotas.SetEntry(models.QuotaEntry{
		PatientID:  patientID,
		PlanName:   "premium",
		CycleStart: time.Now().AddDate(0, -2, 0),
		CycleEnd:   time.Now().AddDate(0, -1, 0),
	})

	appointment := f.book(true)
	response, err := f.uc.RequestPreauthorization(context.Background(), patient, appointment.ID, preauth(true))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusAuthorized, response.PaymentStatus)
	assert.Zero(t, f.quotas.UsageCount())
}

func TestPreauthorizePricesRegularConsultation(t *testing.T) {
	f := newFixture()
	f.subscribe("standard", 3)
	ctx := context.Background()

	priced := f.book(false)
	response, err := f.uc.RequestPreauthorization(ctx, patient, priced.ID, preauth(false))
	require.NoError(t, err)
	assert.Equal(t, int64(9000), response.Amount)

	explicit := f.book(false)
	request := preauth(false)
	request.Amount = 12345
	response, err = f.uc.RequestPreauthorization(ctx, patient, explicit.ID, request)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), response.Amount)
	assert.Equal(t, 3, f.quotas.Remaining(patientID))
}

func TestPreauthorizeNonChargeableAmount(t *testing.T) {
	f := newFixture()
	f.billing.Fees[doctorID] = &models.DoctorFee{DoctorID: doctorID}
	appointment := f.book(false)

	_, err := f.uc.RequestPreauthorization(context.Background(), patient, appointment.ID, preauth(false))
	assert.True(t, exceptions.IsKind(err, exceptions.KindQuotaExceededButNotChargeable))
	assert.Zero(t, f.gateway.AuthorizeCalls())
	assert.Equal(t, models.PaymentStatusPending, f.appointments.Snapshot(appointment.ID).PaymentStatus)
}

func TestPreauthorizeAlreadyAuthorized(t *testing.T) {
	f := newFixture()
	appointment := f.book(false)
	ctx := context.Background()

	_, err := f.uc.RequestPreauthorization(ctx, patient, appointment.ID, preauth(false))
	require.NoError(t, err)

	_, err = f.uc.RequestPreauthorization(ctx, patient, appointment.ID, preauth(false))
	assert.True(t, exceptions.IsKind(err, exceptions.KindAlreadyAuthorized))
	assert.Equal(t, 1, f.gateway.AuthorizeCalls())
}

func TestPreauthorizeConcurrentLoserCancelsOrphan(t *testing.T) {
	f := newFixture()
	appointment := f.book(false)
	f.appointments.BeforeMarkAuthorized = func(appointmentID int64) {
		winner := f.appointments.Snapshot(appointmentID)
		winner.PaymentStatus = models.PaymentStatusAuthorized
		winner.PaymentAuthorizationID = coretest.StringPtr("auth_winner")
		winner.PaymentAmount = 10000
		f.appointments.Put(winner)
	}

	_, err := f.uc.RequestPreauthorization(context.Background(), patient, appointment.ID, preauth(false))
	assert.True(t, exceptions.IsKind(err, exceptions.KindAlreadyAuthorized))
	assert.Equal(t, []string{"auth_1"}, f.gateway.Cancelled)
	stored := f.appointments.Snapshot(appointment.ID)
	assert.Equal(t, "auth_winner", stored.AuthorizationID())
	assert.Empty(t, f.publisher.Events)
}

func TestPreauthorizeConcurrentSameAuthorization(t *testing.T) {
	f := newFixture()
	appointment := f.book(false)
	f.appointments.BeforeMarkAuthorized = func(appointmentID int64) {
		winner := f.appointments.Snapshot(appointmentID)
		winner.PaymentStatus = models.PaymentStatusAuthorized
		winner.PaymentAuthorizationID = coretest.StringPtr("auth_1")
		f.appointments.Put(winner)
	}

	_, err := f.uc.RequestPreauthorization(context.Background(), patient, appointment.ID, preauth(false))
	assert.True(t, exceptions.IsKind(err, exceptions.KindAlreadyAuthorized))
	assert.Empty(t, f.gateway.Cancelled)
}

func TestPreauthorizePaymentMethodMissing(t *testing.T) {
	f := newFixture()
	f.subscribe("basic", 1)
	f.billing.Profiles[patientID] = &models.BillingProfile{PatientID: patientID, CustomerRef: "cus_1"}
	ctx := context.Background()

	for _, isEmergency := range []bool{false, true} {
		appointment := f.book(isEmergency)
		_, err := f.uc.RequestPreauthorization(ctx, patient, appointment.ID, preauth(isEmergency))
		assert.True(t, exceptions.IsKind(err, exceptions.KindPaymentMethodMissing))
		assert.Equal(t, models.PaymentStatusPending, f.appointments.Snapshot(appointment.ID).PaymentStatus)
	}
	assert.Zero(t, f.gateway.AuthorizeCalls())
	assert.Equal(t, 1, f.quotas.Remaining(patientID))
}

func TestPreauthorizePaymentMethodMissingLeavesDoctorUnassigned(t *testing.T) {
	f := newFixture()
	f.billing.Profiles[patientID] = &models.BillingProfile{PatientID: patientID, CustomerRef: "cus_1"}
	unassigned := f.book(false)
	unassigned.DoctorID = nil
	f.appointments.Put(unassigned)

	_, err := f.uc.RequestPreauthorization(context.Background(), patient, unassigned.ID, preauth(false))
	assert.True(t, exceptions.IsKind(err, exceptions.KindPaymentMethodMissing))
	assert.Nil(t, f.appointments.Snapshot(unassigned.ID).DoctorID)
}

func TestPreauthorizeGatewayFailureLeavesPending(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind exceptions.Kind
	}{
		{"declined", errors.New("card_declined"), exceptions.KindAuthorizationFailed},
		{"deadline", context.DeadlineExceeded, exceptions.KindGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.gateway.AuthorizeErr = tt.err
			appointment := f.book(false)

			_, err := f.uc.RequestPreauthorization(context.Background(), patient, appointment.ID, preauth(false))
			assert.True(t, exceptions.IsKind(err, tt.kind))

			stored := f.appointments.Snapshot(appointment.ID)
			assert.Equal(t, models.PaymentStatusPending, stored.PaymentStatus)
			assert.Nil(t, stored.PaymentAuthorizationID)

			f.gateway.AuthorizeErr = nil
			response, err := f.uc.RequestPreauthorization(context.Background(), patient, appointment.ID, preauth(false))
			require.NoError(t, err)
			assert.Equal(t, models.PaymentStatusAuthorized, response.PaymentStatus)
		})
	}
}

func TestPreauthorizeChecksActorAndLedger(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	appointment := f.book(false)

	_, err := f.uc.RequestPreauthorization(ctx, doctor, appointment.ID, preauth(false))
	assert.True(t, exceptions.IsKind(err, exceptions.KindForbidden))

	stranger := &models.Actor{ID: 2, Role: constvars.RolePatient}
	_, err = f.uc.RequestPreauthorization(ctx, stranger, appointment.ID, preauth(false))
	assert.True(t, exceptions.IsKind(err, exceptions.KindForbidden))

	_, err = f.uc.RequestPreauthorization(ctx, patient, appointment.ID, preauth(true))
	assert.True(t, exceptions.IsKind(err, exceptions.KindInvalidInput))

	_, err = f.uc.RequestPreauthorization(ctx, patient, appointment.ID, &requests.Preauthorization{DoctorID: 8})
	assert.True(t, exceptions.IsKind(err, exceptions.KindInvalidInput))

	_, err = f.uc.RequestPreauthorization(ctx, patient, 404, preauth(false))
	assert.True(t, exceptions.IsKind(err, exceptions.KindAppointmentNotFound))

	assert.Zero(t, f.gateway.AuthorizeCalls())
}

func TestPreauthorizeAssignsDoctor(t *testing.T) {
	f := newFixture()
	unassigned := f.book(false)
	unassigned.DoctorID = nil
	f.appointments.Put(unassigned)

	response, err := f.uc.RequestPreauthorization(context.Background(), admin, unassigned.ID, preauth(false))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusAuthorized, response.PaymentStatus)
	stored := f.appointments.Snapshot(unassigned.ID)
	assert.True(t, stored.HasDoctor(doctorID))
}

func TestPreauthorizeRejectsSettledAppointment(t *testing.T) {
	f := newFixture()
	appointment := f.book(false)
	appointment.Status = models.AppointmentStatusCancelled
	appointment.PaymentStatus = models.PaymentStatusCancelled
	f.appointments.Put(appointment)

	_, err := f.uc.RequestPreauthorization(context.Background(), patient, appointment.ID, preauth(false))
	assert.True(t, exceptions.IsKind(err, exceptions.KindInvalidPaymentState))
}

func TestPreauthorizeRejectsCompletedPayment(t *testing.T) {
	f := newFixture()
	appointment := f.authorized(models.AppointmentStatusConfirmed)
	appointment.PaymentStatus = models.PaymentStatusCompleted
	f.appointments.Put(appointment)

	_, err := f.uc.RequestPreauthorization(context.Background(), patient, appointment.ID, preauth(false))
	assert.True(t, exceptions.IsKind(err, exceptions.KindInvalidPaymentState))
	assert.Zero(t, f.gateway.AuthorizeCalls())
}

func TestCheckPaymentTransition(t *testing.T) {
	tests := []struct {
		from models.PaymentStatus
		to   models.PaymentStatus
		ok   bool
	}{
		{models.PaymentStatusPending, models.PaymentStatusAuthorized, true},
		{models.PaymentStatusPending, models.PaymentStatusIncludedInPlan, true},
		{models.PaymentStatusPending, models.PaymentStatusCompleted, false},
		{models.PaymentStatusAuthorized, models.PaymentStatusCompleted, true},
		{models.PaymentStatusAuthorized, models.PaymentStatusCancelled, true},
		{models.PaymentStatusIncludedInPlan, models.PaymentStatusCancelled, false},
		{models.PaymentStatusCompleted, models.PaymentStatusCancelled, false},
		{models.PaymentStatusCancelled, models.PaymentStatusAuthorized, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := checkPaymentTransition(&models.Appointment{ID: 1, PaymentStatus: tt.from}, tt.to, constvars.OperationPaymentCapture)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, exceptions.IsKind(err, exceptions.KindInvalidPaymentState))
		})
	}
}

func TestCancelPlanCoveredPaymentIsRejected(t *testing.T) {
	f := newFixture()
	appointment := f.book(true)
	appointment.PaymentStatus = models.PaymentStatusIncludedInPlan
	f.appointments.Put(appointment)

	_, err := f.uc.CancelPayment(context.Background(), patient, appointment.ID)
	assert.True(t, exceptions.IsKind(err, exceptions.KindInvalidPaymentState))
	assert.Empty(t, f.gateway.Cancelled)
}

func TestCaptureIncludedInPlanIsNoop(t *testing.T) {
	f := newFixture()
	appointment := f.book(true)
	appointment.PaymentStatus = models.PaymentStatusIncludedInPlan
	f.appointments.Put(appointment)

	got, err := f.uc.CapturePayment(context.Background(), doctor, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusIncludedInPlan, got.PaymentStatus)
	assert.Empty(t, f.gateway.Captured)
	assert.Empty(t, f.publisher.Events)
}

func TestCapturePendingFails(t *testing.T) {
	f := newFixture()
	appointment := f.book(false)

	_, err := f.uc.CapturePayment(context.Background(), doctor, appointment.ID)
	assert.True(t, exceptions.IsKind(err, exceptions.KindInvalidPaymentState))
	assert.Empty(t, f.gateway.Captured)
}

func TestCaptureRequiresStartedConsultation(t *testing.T) {
	f := newFixture()
	appointment := f.authorized(models.AppointmentStatusScheduled)

	_, err := f.uc.CapturePayment(context.Background(), doctor, appointment.ID)
	assert.True(t, exceptions.IsKind(err, exceptions.KindInvalidAppointmentState))
	assert.Empty(t, f.gateway.Captured)
}

func TestCaptureForbiddenForPatient(t *testing.T) {
	f := newFixture()
	appointment := f.authorized(models.AppointmentStatusConfirmed)

	_, err := f.uc.CapturePayment(context.Background(), patient, appointment.ID)
	assert.True(t, exceptions.IsKind(err, exceptions.KindForbidden))

	otherDoctor := &models.Actor{ID: 8, Role: constvars.RoleDoctor}
	_, err = f.uc.CapturePayment(context.Background(), otherDoctor, appointment.ID)
	assert.True(t, exceptions.IsKind(err, exceptions.KindForbidden))

	got, err := f.uc.CapturePayment(context.Background(), admin, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, got.PaymentStatus)
}

func TestCaptureTimeoutThenRetryCompletesOnce(t *testing.T) {
	f := newFixture()
	appointment := f.authorized(models.AppointmentStatusInProgress)
	ctx := context.Background()

	f.gateway.CaptureErr = context.DeadlineExceeded
	_, err := f.uc.CapturePayment(ctx, doctor, appointment.ID)
	assert.True(t, exceptions.IsKind(err, exceptions.KindGatewayTimeout))
	stored := f.appointments.Snapshot(appointment.ID)
	assert.Equal(t, models.PaymentStatusAuthorized, stored.PaymentStatus)
	assert.Equal(t, models.AppointmentStatusInProgress, stored.Status)

	f.gateway.CaptureErr = nil
	got, err := f.uc.CapturePayment(ctx, doctor, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, got.PaymentStatus)
	assert.Equal(t, models.AppointmentStatusCompleted, got.Status)
	assert.Equal(t, "auth_seed", got.AuthorizationID())

	_, err = f.uc.CapturePayment(ctx, doctor, appointment.ID)
	assert.True(t, exceptions.IsKind(err, exceptions.KindInvalidPaymentState))

	assert.Equal(t, []string{"auth_seed"}, f.gateway.Captured)
	assert.Equal(t, []string{constvars.EventPaymentCaptured}, f.publisher.Types())
	assert.Equal(t, []int64{appointment.ID}, f.earnings.Calls)
}

func TestCaptureConcurrentDuplicateIsSuccess(t *testing.T) {
	f := newFixture()
	appointment := f.authorized(models.AppointmentStatusConfirmed)
	f.appointments.BeforeMarkPaymentCompleted = func(appointmentID int64) {
		done := f.appointments.Snapshot(appointmentID)
		done.PaymentStatus = models.PaymentStatusCompleted
		done.Status = models.AppointmentStatusCompleted
		f.appointments.Put(done)
	}

	got, err := f.uc.CapturePayment(context.Background(), doctor, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, got.PaymentStatus)
	assert.Empty(t, f.publisher.Events)
}

func TestCaptureGatewayFailureKeepsAuthorization(t *testing.T) {
	f := newFixture()
	appointment := f.authorized(models.AppointmentStatusConfirmed)
	f.gateway.CaptureErr = errors.New("authorization_expired")

	_, err := f.uc.CapturePayment(context.Background(), doctor, appointment.ID)
	assert.True(t, exceptions.IsKind(err, exceptions.KindCaptureFailed))
	assert.Equal(t, models.PaymentStatusAuthorized, f.appointments.Snapshot(appointment.ID).PaymentStatus)
	assert.Empty(t, f.earnings.Calls)
}

func TestCaptureSurvivesEarningsFailure(t *testing.T) {
	f := newFixture()
	appointment := f.authorized(models.AppointmentStatusConfirmed)
	f.earnings.Err = exceptions.ErrDoctorFeeNotFound(nil, doctorID)

	got, err := f.uc.CapturePayment(context.Background(), doctor, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, got.PaymentStatus)
}

func TestPreauthorizeThenCancelRoundTrip(t *testing.T) {
	f := newFixture()
	appointment := f.book(false)
	ctx := context.Background()

	_, err := f.uc.RequestPreauthorization(ctx, patient, appointment.ID, preauth(false))
	require.NoError(t, err)

	got, err := f.uc.CancelPayment(ctx, patient, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCancelled, got.PaymentStatus)
	assert.Equal(t, models.AppointmentStatusCancelled, got.Status)

	_, err = f.uc.CancelPayment(ctx, patient, appointment.ID)
	assert.True(t, exceptions.IsKind(err, exceptions.KindInvalidPaymentState))

	assert.Equal(t, []string{"auth_1"}, f.gateway.Cancelled)
	assert.Equal(t, []string{constvars.EventPaymentAuthorized, constvars.EventPaymentCancelled}, f.publisher.Types())
}

func TestCancelPaymentActors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for _, actor := range []*models.Actor{patient, doctor, admin} {
		appointment := f.authorized(models.AppointmentStatusConfirmed)
		_, err := f.uc.CancelPayment(ctx, actor, appointment.ID)
		assert.NoError(t, err)
	}

	appointment := f.authorized(models.AppointmentStatusConfirmed)
	stranger := &models.Actor{ID: 2, Role: constvars.RolePatient}
	_, err := f.uc.CancelPayment(ctx, stranger, appointment.ID)
	assert.True(t, exceptions.IsKind(err, exceptions.KindForbidden))
}

func TestCancelGatewayFailureKeepsAuthorization(t *testing.T) {
	f := newFixture()
	appointment := f.authorized(models.AppointmentStatusConfirmed)
	f.gateway.CancelErr = &net.DNSError{Err: "i/o timeout", IsTimeout: true}

	_, err := f.uc.CancelPayment(context.Background(), patient, appointment.ID)
	assert.True(t, exceptions.IsKind(err, exceptions.KindGatewayTimeout))
	assert.Equal(t, models.PaymentStatusAuthorized, f.appointments.Snapshot(appointment.ID).PaymentStatus)

	f.gateway.CancelErr = errors.New("gateway unavailable")
	_, err = f.uc.CancelPayment(context.Background(), patient, appointment.ID)
	assert.True(t, exceptions.IsKind(err, exceptions.KindCancelFailed))
}

func TestPublisherFailureDoesNotFailSettlement(t *testing.T) {
	f := newFixture()
	f.publisher.Err = errors.New("channel closed")
	appointment := f.book(false)

	response, err := f.uc.RequestPreauthorization(context.Background(), patient, appointment.ID, preauth(false))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusAuthorized, response.PaymentStatus)
	assert.Equal(t, []string{constvars.EventPaymentAuthorized}, f.publisher.Types())
}

func TestClassifyGatewayError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		operation string
		kind      exceptions.Kind
	}{
		{"deadline", context.DeadlineExceeded, constvars.GatewayOperationCapture, exceptions.KindGatewayTimeout},
		{"net timeout", &net.DNSError{IsTimeout: true}, constvars.GatewayOperationAuthorize, exceptions.KindGatewayTimeout},
		{"classified timeout", exceptions.ErrGatewayTimeout(nil, "capture"), constvars.GatewayOperationCancel, exceptions.KindGatewayTimeout},
		{"authorize", errors.New("declined"), constvars.GatewayOperationAuthorize, exceptions.KindAuthorizationFailed},
		{"capture", errors.New("declined"), constvars.GatewayOperationCapture, exceptions.KindCaptureFailed},
		{"cancel", errors.New("declined"), constvars.GatewayOperationCancel, exceptions.KindCancelFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, exceptions.KindOf(classifyGatewayError(tt.err, tt.operation)))
		})
	}
}
