package settlement

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"consultation-service/internal/app/config"
	"consultation-service/internal/app/contracts"
	"consultation-service/internal/app/models"
	"consultation-service/internal/pkg/constvars"
	"consultation-service/internal/pkg/dto/requests"
	"consultation-service/internal/pkg/dto/responses"
	"consultation-service/internal/pkg/exceptions"
	"consultation-service/internal/pkg/utils"

	"go.uber.org/zap"
)

type settlementUsecase struct {
	AppointmentRepository contracts.AppointmentRepository
	BillingRepository     contracts.BillingRepository
	QuotaUsecase          contracts.QuotaUsecase
	PaymentGateway        contracts.PaymentGatewayService
	EventPublisher        contracts.EventPublisher
	EarningsUsecase       contracts.EarningsUsecase
	AccessControl         contracts.AccessControl
	InternalConfig        *config.InternalConfig
	Log                   *zap.Logger
}

var (
	settlementUsecaseInstance contracts.SettlementUsecase
	onceSettlementUsecase     sync.Once
)

func NewSettlementUsecase(
	appointmentRepository contracts.AppointmentRepository,
	billingRepository contracts.BillingRepository,
	quotaUsecase contracts.QuotaUsecase,
	paymentGateway contracts.PaymentGatewayService,
	eventPublisher contracts.EventPublisher,
	earningsUsecase contracts.EarningsUsecase,
	accessControl contracts.AccessControl,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.SettlementUsecase {
	onceSettlementUsecase.Do(func() {
		settlementUsecaseInstance = &settlementUsecase{
			AppointmentRepository: appointmentRepository,
			BillingRepository:     billingRepository,
			QuotaUsecase:          quotaUsecase,
			PaymentGateway:        paymentGateway,
			EventPublisher:        eventPublisher,
			EarningsUsecase:       earningsUsecase,
			AccessControl:         accessControl,
			InternalConfig:        internalConfig,
			Log:                   logger,
		}
	})
	return settlementUsecaseInstance
}

func (uc *settlementUsecase) RequestPreauthorization(ctx context.Context, actor *models.Actor, appointmentID int64, request *requests.Preauthorization) (*responses.Preauthorization, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Info("settlementUsecase.RequestPreauthorization called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
		zap.Int64(constvars.LoggingDoctorIDKey, request.DoctorID),
		zap.Bool(constvars.LoggingIsEmergencyKey, request.IsEmergency),
	)

	appointment, err := uc.findAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := uc.AccessControl.AuthorizeAppointment(actor, constvars.OperationPaymentPreauthorize, appointment); err != nil {
		return nil, err
	}
	if request.IsEmergency != appointment.IsEmergency {
		return nil, exceptions.ErrEmergencyFlagMismatch(nil, appointmentID)
	}

	switch appointment.PaymentStatus {
	case models.PaymentStatusAuthorized:
		return nil, exceptions.ErrAlreadyAuthorized(nil, appointmentID)
	case models.PaymentStatusIncludedInPlan:
		uc.Log.Info("settlementUsecase.RequestPreauthorization already included in plan",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
		)
		return buildPreauthorizationResponse(appointment, nil), nil
	}
	if !appointment.PaymentStatus.IsValid() || appointment.PaymentStatus.IsTerminal() {
		return nil, exceptions.ErrInvalidPaymentState(nil, appointmentID, string(appointment.PaymentStatus), constvars.OperationPaymentPreauthorize)
	}
	if appointment.Status.IsTerminal() {
		return nil, exceptions.ErrInvalidPaymentState(nil, appointmentID, string(appointment.Status), constvars.OperationPaymentPreauthorize)
	}

	// the billing profile is checked before a doctor gets assigned
	profile, err := uc.BillingRepository.FindBillingProfileByPatientID(ctx, appointment.PatientID)
	if err != nil {
		return nil, err
	}
	if !profile.HasPaymentMethod() {
		uc.Log.Warn("settlementUsecase.RequestPreauthorization payment method missing",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingPatientIDKey, appointment.PatientID),
		)
		return nil, exceptions.ErrPaymentMethodMissing(nil, appointment.PatientID)
	}

	appointment, err = uc.ensureDoctor(ctx, appointment, request.DoctorID)
	if err != nil {
		return nil, err
	}

	if appointment.IsEmergency {
		covered, err := uc.coverWithPlan(ctx, appointment)
		if err != nil {
			return nil, err
		}
		if covered != nil {
			uc.publish(ctx, actor, constvars.EventPaymentIncludedInPlan, covered)
			return buildPreauthorizationResponse(covered, nil), nil
		}
	}

	amount, err := uc.chargeableAmount(ctx, appointment, request.Amount)
	if err != nil {
		return nil, err
	}

	if err := checkPaymentTransition(appointment, models.PaymentStatusAuthorized, constvars.OperationPaymentPreauthorize); err != nil {
		return nil, err
	}

	authorization, err := uc.PaymentGateway.CreateAuthorization(ctx, &requests.GatewayAuthorization{
		Amount:        amount,
		Currency:      uc.InternalConfig.PaymentGateway.Currency,
		CustomerRef:   profile.CustomerRef,
		PaymentMethod: profile.PaymentMethodRef,
		Metadata: map[string]string{
			constvars.GatewayMetadataAppointmentID: strconv.FormatInt(appointment.ID, 10),
			constvars.GatewayMetadataDoctorID:      strconv.FormatInt(*appointment.DoctorID, 10),
			constvars.GatewayMetadataIsEmergency:   strconv.FormatBool(appointment.IsEmergency),
		},
		IdempotencyKey: utils.GenerateIdempotencyKey(appointment.ID, profile.PaymentMethodRef),
	})
	if err != nil {
		uc.Log.Error("settlementUsecase.RequestPreauthorization gateway authorization failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err),
		)
		return nil, classifyGatewayError(err, constvars.GatewayOperationAuthorize)
	}

	authorized, err := uc.AppointmentRepository.MarkAuthorized(ctx, appointmentID, authorization.ID, amount)
	if err != nil {
		return nil, err
	}
	if authorized == nil {
		return nil, uc.resolveLostAuthorization(ctx, appointmentID, authorization.ID)
	}

	uc.Log.Info("settlementUsecase.RequestPreauthorization authorized",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
		zap.String(constvars.LoggingAuthorizationIDKey, authorization.ID),
		zap.Int64(constvars.LoggingAmountKey, amount),
	)
	uc.publish(ctx, actor, constvars.EventPaymentAuthorized, authorized)
	return buildPreauthorizationResponse(authorized, authorization), nil
}

func (uc *settlementUsecase) CapturePayment(ctx context.Context, actor *models.Actor, appointmentID int64) (*models.Appointment, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Info("settlementUsecase.CapturePayment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	appointment, err := uc.findAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := uc.AccessControl.AuthorizeAppointment(actor, constvars.OperationPaymentCapture, appointment); err != nil {
		return nil, err
	}

	if appointment.PaymentStatus == models.PaymentStatusIncludedInPlan {
		uc.Log.Info("settlementUsecase.CapturePayment nothing to capture for plan-covered consultation",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
		)
		return appointment, nil
	}
	if err := checkPaymentTransition(appointment, models.PaymentStatusCompleted, constvars.OperationPaymentCapture); err != nil {
		return nil, err
	}

	switch appointment.Status {
	case models.AppointmentStatusConfirmed, models.AppointmentStatusInProgress, models.AppointmentStatusCompleted:
	default:
		return nil, exceptions.ErrInvalidAppointmentState(nil, appointmentID, string(appointment.Status), constvars.OperationPaymentCapture)
	}

	authorizationID := appointment.AuthorizationID()
	if _, err := uc.PaymentGateway.Capture(ctx, authorizationID); err != nil {
		uc.Log.Error("settlementUsecase.CapturePayment gateway capture failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAuthorizationIDKey, authorizationID),
			zap.Error(err),
		)
		return nil, classifyGatewayError(err, constvars.GatewayOperationCapture)
	}

	captured, err := uc.AppointmentRepository.MarkPaymentCompleted(ctx, appointmentID, authorizationID)
	if err != nil {
		return nil, err
	}
	if captured == nil {
		current, err := uc.findAppointment(ctx, appointmentID)
		if err != nil {
			return nil, err
		}
		if current.PaymentStatus == models.PaymentStatusCompleted && current.AuthorizationID() == authorizationID {
			return current, nil
		}
		return nil, exceptions.ErrInvalidPaymentState(nil, appointmentID, string(current.PaymentStatus), constvars.OperationPaymentCapture)
	}

	uc.Log.Info("settlementUsecase.CapturePayment captured",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
		zap.String(constvars.LoggingAuthorizationIDKey, authorizationID),
	)
	uc.publish(ctx, actor, constvars.EventPaymentCaptured, captured)

	if _, err := uc.EarningsUsecase.ComputeEarnings(ctx, appointmentID); err != nil {
		uc.Log.Warn("settlementUsecase.CapturePayment earnings not computed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err),
		)
	}
	return captured, nil
}

func (uc *settlementUsecase) CancelPayment(ctx context.Context, actor *models.Actor, appointmentID int64) (*models.Appointment, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Info("settlementUsecase.CancelPayment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	appointment, err := uc.findAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := uc.AccessControl.AuthorizeAppointment(actor, constvars.OperationPaymentCancel, appointment); err != nil {
		return nil, err
	}
	if err := checkPaymentTransition(appointment, models.PaymentStatusCancelled, constvars.OperationPaymentCancel); err != nil {
		return nil, err
	}

	authorizationID := appointment.AuthorizationID()
	if _, err := uc.PaymentGateway.Cancel(ctx, authorizationID); err != nil {
		uc.Log.Error("settlementUsecase.CancelPayment gateway cancel failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAuthorizationIDKey, authorizationID),
			zap.Error(err),
		)
		return nil, classifyGatewayError(err, constvars.GatewayOperationCancel)
	}

	cancelled, err := uc.AppointmentRepository.MarkPaymentCancelled(ctx, appointmentID, authorizationID)
	if err != nil {
		return nil, err
	}
	if cancelled == nil {
		current, err := uc.findAppointment(ctx, appointmentID)
		if err != nil {
			return nil, err
		}
		return nil, exceptions.ErrInvalidPaymentState(nil, appointmentID, string(current.PaymentStatus), constvars.OperationPaymentCancel)
	}

	uc.Log.Info("settlementUsecase.CancelPayment cancelled",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
		zap.String(constvars.LoggingAuthorizationIDKey, authorizationID),
	)
	uc.publish(ctx, actor, constvars.EventPaymentCancelled, cancelled)
	return cancelled, nil
}

func (uc *settlementUsecase) findAppointment(ctx context.Context, appointmentID int64) (*models.Appointment, error) {
	appointment, err := uc.AppointmentRepository.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, exceptions.ErrAppointmentNotFound(nil, appointmentID)
	}
	return appointment, nil
}

// ensureDoctor assigns the doctor to an unassigned appointment, or checks that it matches.
func (uc *settlementUsecase) ensureDoctor(ctx context.Context, appointment *models.Appointment, doctorID int64) (*models.Appointment, error) {
	if appointment.DoctorID != nil {
		if *appointment.DoctorID != doctorID {
			return nil, exceptions.ErrDoctorMismatch(nil, appointment.ID)
		}
		return appointment, nil
	}

	assigned, err := uc.AppointmentRepository.AssignDoctor(ctx, appointment.ID, doctorID)
	if err != nil {
		return nil, err
	}
	if assigned != nil {
		return assigned, nil
	}

	current, err := uc.findAppointment(ctx, appointment.ID)
	if err != nil {
		return nil, err
	}
	if !current.HasDoctor(doctorID) {
		return nil, exceptions.ErrDoctorMismatch(nil, appointment.ID)
	}
	return current, nil
}

// coverWithPlan settles an emergency consultation against the patient's plan quota. It returns nil
// when the consultation is chargeable.
func (uc *settlementUsecase) coverWithPlan(ctx context.Context, appointment *models.Appointment) (*models.Appointment, error) {
	requestID := utils.RequestIDFromContext(ctx)

	consumed, err := uc.QuotaUsecase.HasConsumedQuota(ctx, appointment.ID)
	if err != nil {
		return nil, err
	}
	if !consumed {
		status, err := uc.QuotaUsecase.HasRemainingQuota(ctx, appointment.PatientID)
		if err != nil {
			return nil, err
		}
		if !status.Covers() {
			uc.Log.Info("settlementUsecase.coverWithPlan quota exhausted, consultation is chargeable",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Int64(constvars.LoggingAppointmentIDKey, appointment.ID),
				zap.String(constvars.LoggingPlanNameKey, status.PlanName),
			)
			return nil, nil
		}

		if _, err := uc.QuotaUsecase.DecrementOnce(ctx, appointment.PatientID, appointment.ID); err != nil {
			if exceptions.IsKind(err, exceptions.KindQuotaExhausted) {
				uc.Log.Info("settlementUsecase.coverWithPlan quota used up concurrently, consultation is chargeable",
					zap.String(constvars.LoggingRequestIDKey, requestID),
					zap.Int64(constvars.LoggingAppointmentIDKey, appointment.ID),
				)
				return nil, nil
			}
			return nil, err
		}
	}

	if err := checkPaymentTransition(appointment, models.PaymentStatusIncludedInPlan, constvars.OperationPaymentPreauthorize); err != nil {
		return nil, err
	}
	covered, err := uc.AppointmentRepository.MarkIncludedInPlan(ctx, appointment.ID)
	if err != nil {
		return nil, err
	}
	if covered != nil {
		uc.Log.Info("settlementUsecase.coverWithPlan included in plan",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingAppointmentIDKey, appointment.ID),
		)
		return covered, nil
	}

	current, err := uc.findAppointment(ctx, appointment.ID)
	if err != nil {
		return nil, err
	}
	switch current.PaymentStatus {
	case models.PaymentStatusIncludedInPlan:
		return current, nil
	case models.PaymentStatusAuthorized:
		return nil, exceptions.ErrAlreadyAuthorized(nil, appointment.ID)
	default:
		return nil, exceptions.ErrInvalidPaymentState(nil, appointment.ID, string(current.PaymentStatus), constvars.OperationPaymentPreauthorize)
	}
}

// chargeableAmount prefers the caller's amount and otherwise prices the consultation from the
// doctor's fee schedule with the same rule that computes the doctor's earnings.
func (uc *settlementUsecase) chargeableAmount(ctx context.Context, appointment *models.Appointment, requested int64) (int64, error) {
	amount := requested
	if amount <= 0 {
		doctorID := *appointment.DoctorID
		fee, err := uc.BillingRepository.FindDoctorFeeByDoctorID(ctx, doctorID)
		if err != nil {
			return 0, err
		}
		if fee == nil {
			return 0, exceptions.ErrDoctorFeeNotFound(nil, doctorID)
		}

		plan, err := uc.QuotaUsecase.PlanForPatient(ctx, appointment.PatientID)
		if err != nil {
			return 0, err
		}
		amount = plan.ConsultationPrice(appointment, fee, uc.InternalConfig.Settlement.DefaultEmergencyFee)
	}

	if amount <= 0 {
		return 0, exceptions.ErrQuotaExceededButNotChargeable(errors.New("non-positive chargeable amount"), appointment.ID)
	}
	return amount, nil
}

// resolveLostAuthorization handles a concurrent call that stored its authorization first.
// Our own authorization is cancelled at the gateway unless it is the one that was stored.
func (uc *settlementUsecase) resolveLostAuthorization(ctx context.Context, appointmentID int64, authorizationID string) error {
	requestID := utils.RequestIDFromContext(ctx)

	current, err := uc.findAppointment(ctx, appointmentID)
	if err != nil {
		return err
	}
	if current.AuthorizationID() == authorizationID {
		return exceptions.ErrAlreadyAuthorized(nil, appointmentID)
	}

	uc.Log.Warn("settlementUsecase.RequestPreauthorization lost race, cancelling orphaned authorization",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
		zap.String(constvars.LoggingAuthorizationIDKey, authorizationID),
	)
	if _, err := uc.PaymentGateway.Cancel(ctx, authorizationID); err != nil {
		uc.Log.Error("settlementUsecase.RequestPreauthorization error cancelling orphaned authorization",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAuthorizationIDKey, authorizationID),
			zap.Error(err),
		)
	}

	if current.PaymentStatus == models.PaymentStatusAuthorized {
		return exceptions.ErrAlreadyAuthorized(nil, appointmentID)
	}
	return exceptions.ErrInvalidPaymentState(nil, appointmentID, string(current.PaymentStatus), constvars.OperationPaymentPreauthorize)
}

// publish emits a settlement event. Delivery failures are logged and never undo the transition.
func (uc *settlementUsecase) publish(ctx context.Context, actor *models.Actor, eventType string, appointment *models.Appointment) {
	event := models.NewSettlementEvent(utils.GenerateEventID(), eventType, appointment, actor, time.Now())
	if err := uc.EventPublisher.Publish(ctx, event); err != nil {
		uc.Log.Warn("settlementUsecase.publish event not delivered",
			zap.String(constvars.LoggingRequestIDKey, utils.RequestIDFromContext(ctx)),
			zap.String(constvars.LoggingEventTypeKey, eventType),
			zap.Int64(constvars.LoggingAppointmentIDKey, appointment.ID),
			zap.Error(err),
		)
	}
}

// checkPaymentTransition rejects a ledger write the payment state machine does not allow.
func checkPaymentTransition(appointment *models.Appointment, to models.PaymentStatus, operation string) error {
	if !models.ValidatePaymentTransition(appointment.PaymentStatus, to) {
		return exceptions.ErrInvalidPaymentState(nil, appointment.ID, string(appointment.PaymentStatus), operation)
	}
	return nil
}

func buildPreauthorizationResponse(appointment *models.Appointment, authorization *responses.GatewayAuthorization) *responses.Preauthorization {
	response := &responses.Preauthorization{
		AppointmentID:   appointment.ID,
		PaymentStatus:   appointment.PaymentStatus,
		AuthorizationID: appointment.AuthorizationID(),
		Amount:          appointment.PaymentAmount,
		IncludedInPlan:  appointment.PaymentStatus == models.PaymentStatusIncludedInPlan,
	}
	if authorization != nil {
		response.ClientSecret = authorization.ClientSecret
	}
	return response
}
