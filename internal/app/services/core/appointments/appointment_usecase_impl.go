package appointments

import (
	"context"
	"errors"
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

const defaultStaleSweepBatchSize = 100

var openPaymentStatuses = []models.PaymentStatus{
	models.PaymentStatusPending,
	models.PaymentStatusAuthorized,
	models.PaymentStatusIncludedInPlan,
}

type appointmentUsecase struct {
	AppointmentRepository contracts.AppointmentRepository
	SettlementUsecase     contracts.SettlementUsecase
	VideoRoomService      contracts.VideoRoomService
	EventPublisher        contracts.EventPublisher
	AccessControl         contracts.AccessControl
	InternalConfig        *config.InternalConfig
	Log                   *zap.Logger
}

var (
	appointmentUsecaseInstance contracts.AppointmentUsecase
	onceAppointmentUsecase     sync.Once
)

func NewAppointmentUsecase(
	appointmentRepository contracts.AppointmentRepository,
	settlementUsecase contracts.SettlementUsecase,
	videoRoomService contracts.VideoRoomService,
	eventPublisher contracts.EventPublisher,
	accessControl contracts.AccessControl,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.AppointmentUsecase {
	onceAppointmentUsecase.Do(func() {
		appointmentUsecaseInstance = &appointmentUsecase{
			AppointmentRepository: appointmentRepository,
			SettlementUsecase:     settlementUsecase,
			VideoRoomService:      videoRoomService,
			EventPublisher:        eventPublisher,
			AccessControl:         accessControl,
			InternalConfig:        internalConfig,
			Log:                   logger,
		}
	})
	return appointmentUsecaseInstance
}

func (uc *appointmentUsecase) Book(ctx context.Context, actor *models.Actor, request *requests.BookAppointment) (*models.Appointment, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Info("appointmentUsecase.Book called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	patientID, err := uc.resolvePatient(actor, request.PatientID)
	if err != nil {
		return nil, err
	}

	scheduledAt, err := time.Parse(time.RFC3339, request.ScheduledAt)
	if err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}

	appointment, err := uc.AppointmentRepository.Create(ctx, &models.Appointment{
		PatientID:       patientID,
		DoctorID:        request.DoctorID,
		ScheduledAt:     scheduledAt,
		DurationMinutes: request.DurationMinutes,
		Type:            models.AppointmentTypeTelemedicine,
		Status:          models.AppointmentStatusScheduled,
		PaymentStatus:   models.PaymentStatusPending,
		Notes:           request.Notes,
	})
	if err != nil {
		uc.Log.Error("appointmentUsecase.Book error creating appointment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.Log.Info("appointmentUsecase.Book succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointment.ID),
	)
	return appointment, nil
}

// BookEmergency opens an emergency consultation starting now.
func (uc *appointmentUsecase) BookEmergency(ctx context.Context, actor *models.Actor, request *requests.BookEmergencyAppointment) (*models.Appointment, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Info("appointmentUsecase.BookEmergency called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	patientID, err := uc.resolvePatient(actor, request.PatientID)
	if err != nil {
		return nil, err
	}

	duration := request.DurationMinutes
	if duration <= 0 {
		duration = uc.InternalConfig.Settlement.DefaultEmergencyDurationMins
	}

	appointment, err := uc.AppointmentRepository.Create(ctx, &models.Appointment{
		PatientID:       patientID,
		DoctorID:        request.DoctorID,
		ScheduledAt:     time.Now(),
		DurationMinutes: duration,
		Type:            models.AppointmentTypeEmergency,
		Status:          models.AppointmentStatusScheduled,
		IsEmergency:     true,
		PaymentStatus:   models.PaymentStatusPending,
		Notes:           request.Notes,
	})
	if err != nil {
		uc.Log.Error("appointmentUsecase.BookEmergency error creating appointment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.Log.Info("appointmentUsecase.BookEmergency succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointment.ID),
	)
	return appointment, nil
}

func (uc *appointmentUsecase) Get(ctx context.Context, actor *models.Actor, appointmentID int64) (*models.Appointment, error) {
	appointment, err := uc.findAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := uc.AccessControl.AuthorizeAppointment(actor, constvars.OperationAppointmentView, appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

// Confirm accepts a scheduled appointment and provisions its video room. Room creation failures
// are logged and leave the appointment confirmed without a room.
func (uc *appointmentUsecase) Confirm(ctx context.Context, actor *models.Actor, appointmentID int64) (*models.Appointment, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Info("appointmentUsecase.Confirm called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	appointment, err := uc.findAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := uc.AccessControl.AuthorizeAppointment(actor, constvars.OperationAppointmentConfirm, appointment); err != nil {
		return nil, err
	}

	if appointment.DoctorID == nil && !actor.IsAdmin() {
		assigned, err := uc.AppointmentRepository.AssignDoctor(ctx, appointmentID, actor.ID)
		if err != nil {
			return nil, err
		}
		if assigned == nil {
			return nil, exceptions.ErrDoctorMismatch(nil, appointmentID)
		}
		appointment = assigned
	}

	confirmed, err := uc.transition(ctx, appointment, models.AppointmentStatusConfirmed, openPaymentStatuses)
	if err != nil {
		return nil, err
	}

	roomName := utils.GenerateVideoRoomName(appointmentID)
	url, err := uc.VideoRoomService.CreateRoom(ctx, roomName)
	if err != nil {
		uc.Log.Warn("appointmentUsecase.Confirm video room not created",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err),
		)
	} else if err := uc.AppointmentRepository.SetVideoRoomURL(ctx, appointmentID, url); err != nil {
		uc.Log.Warn("appointmentUsecase.Confirm video room not stored",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err),
		)
	} else {
		confirmed.VideoRoomURL = &url
	}

	uc.publish(ctx, actor, constvars.EventAppointmentConfirmed, confirmed)
	return confirmed, nil
}

// Start begins a confirmed consultation. The payment must be held or covered by the plan.
func (uc *appointmentUsecase) Start(ctx context.Context, actor *models.Actor, appointmentID int64) (*models.Appointment, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Info("appointmentUsecase.Start called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	appointment, err := uc.findAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := uc.AccessControl.AuthorizeAppointment(actor, constvars.OperationAppointmentStart, appointment); err != nil {
		return nil, err
	}
	if appointment.PaymentStatus != models.PaymentStatusAuthorized && appointment.PaymentStatus != models.PaymentStatusIncludedInPlan {
		return nil, exceptions.ErrInvalidPaymentState(nil, appointmentID, string(appointment.PaymentStatus), constvars.OperationAppointmentStart)
	}

	return uc.transition(ctx, appointment, models.AppointmentStatusInProgress, []models.PaymentStatus{
		models.PaymentStatusAuthorized,
		models.PaymentStatusIncludedInPlan,
	})
}

// Complete ends the consultation and settles its payment.
func (uc *appointmentUsecase) Complete(ctx context.Context, actor *models.Actor, appointmentID int64) (*models.Appointment, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Info("appointmentUsecase.Complete called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	appointment, err := uc.findAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := uc.AccessControl.AuthorizeAppointment(actor, constvars.OperationAppointmentComplete, appointment); err != nil {
		return nil, err
	}

	var completed *models.Appointment
	switch appointment.PaymentStatus {
	case models.PaymentStatusAuthorized:
		completed, err = uc.SettlementUsecase.CapturePayment(ctx, actor, appointmentID)
	case models.PaymentStatusIncludedInPlan:
		completed, err = uc.transition(ctx, appointment, models.AppointmentStatusCompleted, []models.PaymentStatus{
			models.PaymentStatusIncludedInPlan,
		})
	default:
		return nil, exceptions.ErrInvalidPaymentState(nil, appointmentID, string(appointment.PaymentStatus), constvars.OperationAppointmentComplete)
	}
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, actor, constvars.EventAppointmentCompleted, completed)
	return completed, nil
}

// Cancel ends the appointment. A held payment is released at the gateway first.
func (uc *appointmentUsecase) Cancel(ctx context.Context, actor *models.Actor, appointmentID int64) (*models.Appointment, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Info("appointmentUsecase.Cancel called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	appointment, err := uc.findAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := uc.AccessControl.AuthorizeAppointment(actor, constvars.OperationAppointmentCancel, appointment); err != nil {
		return nil, err
	}
	if appointment.Status.IsTerminal() {
		return nil, exceptions.ErrInvalidAppointmentState(nil, appointmentID, string(appointment.Status), constvars.OperationAppointmentCancel)
	}

	var cancelled *models.Appointment
	if appointment.PaymentStatus == models.PaymentStatusAuthorized {
		cancelled, err = uc.SettlementUsecase.CancelPayment(ctx, actor, appointmentID)
	} else {
		cancelled, err = uc.transition(ctx, appointment, models.AppointmentStatusCancelled, []models.PaymentStatus{
			models.PaymentStatusPending,
			models.PaymentStatusIncludedInPlan,
		})
	}
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, actor, constvars.EventAppointmentCancelled, cancelled)
	return cancelled, nil
}

// CancelStale cancels open appointments whose window ended before olderThan, one batch per call.
func (uc *appointmentUsecase) CancelStale(ctx context.Context, actor *models.Actor, olderThan time.Time) (*responses.StaleCancellation, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Info("appointmentUsecase.CancelStale called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Time("older_than", olderThan),
	)

	if err := uc.AccessControl.Authorize(actor, constvars.OperationAppointmentCancelStale); err != nil {
		return nil, err
	}

	limit := uc.InternalConfig.Settlement.StaleSweepBatchSize
	if limit <= 0 {
		limit = defaultStaleSweepBatchSize
	}

	stale, err := uc.AppointmentRepository.FindStale(ctx, olderThan, limit)
	if err != nil {
		uc.Log.Error("appointmentUsecase.CancelStale error fetching stale appointments",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	result := &responses.StaleCancellation{Cancelled: make([]int64, 0, len(stale))}
	for _, appointment := range stale {
		if _, err := uc.Cancel(ctx, actor, appointment.ID); err != nil {
			uc.Log.Warn("appointmentUsecase.CancelStale appointment not cancelled",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Int64(constvars.LoggingAppointmentIDKey, appointment.ID),
				zap.Error(err),
			)
			if result.Failed == nil {
				result.Failed = make(map[int64]string)
			}
			result.Failed[appointment.ID] = string(exceptions.KindOf(err))
			if err := uc.AppointmentRepository.Touch(ctx, appointment.ID); err != nil {
				uc.Log.Warn("appointmentUsecase.CancelStale error touching appointment",
					zap.String(constvars.LoggingRequestIDKey, requestID),
					zap.Int64(constvars.LoggingAppointmentIDKey, appointment.ID),
					zap.Error(err),
				)
			}
			continue
		}
		result.Cancelled = append(result.Cancelled, appointment.ID)
	}

	uc.Log.Info("appointmentUsecase.CancelStale completed",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int("cancelled", len(result.Cancelled)),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

func (uc *appointmentUsecase) ListActiveEmergencies(ctx context.Context, actor *models.Actor) ([]models.Appointment, error) {
	if err := uc.AccessControl.Authorize(actor, constvars.OperationAppointmentListEmergencies); err != nil {
		return nil, err
	}
	return uc.AppointmentRepository.FindActiveEmergencies(ctx)
}

func (uc *appointmentUsecase) findAppointment(ctx context.Context, appointmentID int64) (*models.Appointment, error) {
	appointment, err := uc.AppointmentRepository.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, exceptions.ErrAppointmentNotFound(nil, appointmentID)
	}
	return appointment, nil
}

func (uc *appointmentUsecase) transition(ctx context.Context, appointment *models.Appointment, to models.AppointmentStatus, allowedPayment []models.PaymentStatus) (*models.Appointment, error) {
	if !models.ValidateStatusTransition(appointment.Status, to) {
		return nil, exceptions.ErrInvalidAppointmentState(nil, appointment.ID, string(appointment.Status), string(to))
	}

	updated, err := uc.AppointmentRepository.TransitionStatus(ctx, appointment.ID, appointment.Status, to, allowedPayment)
	if err != nil {
		return nil, err
	}
	if updated != nil {
		return updated, nil
	}

	current, err := uc.findAppointment(ctx, appointment.ID)
	if err != nil {
		return nil, err
	}
	if current.Status != appointment.Status {
		return nil, exceptions.ErrInvalidAppointmentState(nil, appointment.ID, string(current.Status), string(to))
	}
	return nil, exceptions.ErrInvalidPaymentState(nil, appointment.ID, string(current.PaymentStatus), string(to))
}

func (uc *appointmentUsecase) publish(ctx context.Context, actor *models.Actor, eventType string, appointment *models.Appointment) {
	event := models.NewSettlementEvent(utils.GenerateEventID(), eventType, appointment, actor, time.Now())
	if err := uc.EventPublisher.Publish(ctx, event); err != nil {
		uc.Log.Warn("appointmentUsecase.publish event not delivered",
			zap.String(constvars.LoggingRequestIDKey, utils.RequestIDFromContext(ctx)),
			zap.String(constvars.LoggingEventTypeKey, eventType),
			zap.Int64(constvars.LoggingAppointmentIDKey, appointment.ID),
			zap.Error(err),
		)
	}
}

// resolvePatient returns the patient an appointment is booked for. Patients book for themselves;
// admins book on behalf of a patient.
func (uc *appointmentUsecase) resolvePatient(actor *models.Actor, requested int64) (int64, error) {
	if err := uc.AccessControl.Authorize(actor, constvars.OperationAppointmentBook); err != nil {
		return 0, err
	}
	if actor.IsAdmin() {
		if requested <= 0 {
			return 0, exceptions.ErrInputValidation(errors.New("patient_id is required when booking on behalf of a patient"))
		}
		return requested, nil
	}

	if requested == 0 {
		requested = actor.ID
	}
	if err := uc.AccessControl.AuthorizeSubject(actor, constvars.OperationAppointmentBook, constvars.RolePatient, requested); err != nil {
		return 0, err
	}
	return requested, nil
}
