package controllers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"consultation-service/internal/app/contracts"
	"consultation-service/internal/app/models"
	"consultation-service/internal/pkg/constvars"
	"consultation-service/internal/pkg/dto/requests"
	"consultation-service/internal/pkg/exceptions"
	"consultation-service/internal/pkg/utils"

	"go.uber.org/zap"
)

type AppointmentController struct {
	Log                *zap.Logger
	AppointmentUsecase contracts.AppointmentUsecase
}

var (
	appointmentControllerInstance *AppointmentController
	onceAppointmentController     sync.Once
)

func NewAppointmentController(logger *zap.Logger, appointmentUsecase contracts.AppointmentUsecase) *AppointmentController {
	onceAppointmentController.Do(func() {
		instance := &AppointmentController{
			Log:                logger,
			AppointmentUsecase: appointmentUsecase,
		}
		appointmentControllerInstance = instance
	})
	return appointmentControllerInstance
}

func (ctrl *AppointmentController) Book(w http.ResponseWriter, r *http.Request) {
	requestID, actor, ok := requestScope(ctrl.Log, w, r, "AppointmentController.Book")
	if !ok {
		return
	}

	request := new(requests.BookAppointment)
	if err := decodeAndValidate(r, request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), usecaseTimeout)
	defer cancel()

	appointment, err := ctrl.AppointmentUsecase.Book(ctx, actor, request)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, requestID, "AppointmentController.Book", err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.AppointmentBookedSuccess, appointment)
}

func (ctrl *AppointmentController) BookEmergency(w http.ResponseWriter, r *http.Request) {
	requestID, actor, ok := requestScope(ctrl.Log, w, r, "AppointmentController.BookEmergency")
	if !ok {
		return
	}

	request := new(requests.BookEmergencyAppointment)
	if err := decodeAndValidate(r, request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), usecaseTimeout)
	defer cancel()

	appointment, err := ctrl.AppointmentUsecase.BookEmergency(ctx, actor, request)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, requestID, "AppointmentController.BookEmergency", err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.AppointmentBookedSuccess, appointment)
}

func (ctrl *AppointmentController) Get(w http.ResponseWriter, r *http.Request) {
	ctrl.handleByID(w, r, "AppointmentController.Get", constvars.AppointmentGetSuccess, ctrl.AppointmentUsecase.Get)
}

func (ctrl *AppointmentController) Confirm(w http.ResponseWriter, r *http.Request) {
	ctrl.handleByID(w, r, "AppointmentController.Confirm", constvars.AppointmentConfirmedSuccess, ctrl.AppointmentUsecase.Confirm)
}

func (ctrl *AppointmentController) Start(w http.ResponseWriter, r *http.Request) {
	ctrl.handleByID(w, r, "AppointmentController.Start", constvars.AppointmentStartedSuccess, ctrl.AppointmentUsecase.Start)
}

func (ctrl *AppointmentController) Complete(w http.ResponseWriter, r *http.Request) {
	ctrl.handleByID(w, r, "AppointmentController.Complete", constvars.AppointmentCompletedSuccess, ctrl.AppointmentUsecase.Complete)
}

func (ctrl *AppointmentController) Cancel(w http.ResponseWriter, r *http.Request) {
	ctrl.handleByID(w, r, "AppointmentController.Cancel", constvars.AppointmentCancelledSuccess, ctrl.AppointmentUsecase.Cancel)
}

func (ctrl *AppointmentController) CancelStale(w http.ResponseWriter, r *http.Request) {
	requestID, actor, ok := requestScope(ctrl.Log, w, r, "AppointmentController.CancelStale")
	if !ok {
		return
	}

	request := new(requests.CancelStaleAppointments)
	if err := decodeAndValidate(r, request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	olderThan, err := time.Parse(time.RFC3339, request.OlderThan)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), usecaseTimeout)
	defer cancel()

	result, err := ctrl.AppointmentUsecase.CancelStale(ctx, actor, olderThan)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, requestID, "AppointmentController.CancelStale", err)
		return
	}

	ctrl.Log.Info("AppointmentController.CancelStale succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int("cancelled", len(result.Cancelled)),
		zap.Int("failed", len(result.Failed)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.AppointmentStaleCancelledSuccess, result)
}

func (ctrl *AppointmentController) ListActiveEmergencies(w http.ResponseWriter, r *http.Request) {
	requestID, actor, ok := requestScope(ctrl.Log, w, r, "AppointmentController.ListActiveEmergencies")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), usecaseTimeout)
	defer cancel()

	appointments, err := ctrl.AppointmentUsecase.ListActiveEmergencies(ctx, actor)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, requestID, "AppointmentController.ListActiveEmergencies", err)
		return
	}
	if appointments == nil {
		appointments = []models.Appointment{}
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.AppointmentActiveEmergencySuccess, appointments)
}

func (ctrl *AppointmentController) handleByID(
	w http.ResponseWriter,
	r *http.Request,
	handler, successMessage string,
	operation func(ctx context.Context, actor *models.Actor, appointmentID int64) (*models.Appointment, error),
) {
	requestID, actor, ok := requestScope(ctrl.Log, w, r, handler)
	if !ok {
		return
	}

	appointmentID, err := utils.ParseInt64URLParam(r, constvars.URLParamID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), usecaseTimeout)
	defer cancel()

	appointment, err := operation(ctx, actor, appointmentID)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, requestID, handler, err)
		return
	}

	ctrl.Log.Info(handler+" succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointment.ID),
		zap.String(constvars.LoggingStatusKey, string(appointment.Status)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, successMessage, appointment)
}
