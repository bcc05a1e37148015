package controllers

import (
	"context"
	"net/http"
	"sync"

	"consultation-service/internal/app/contracts"
	"consultation-service/internal/app/models"
	"consultation-service/internal/pkg/constvars"
	"consultation-service/internal/pkg/dto/requests"
	"consultation-service/internal/pkg/dto/responses"
	"consultation-service/internal/pkg/utils"

	"go.uber.org/zap"
)

type PaymentController struct {
	Log               *zap.Logger
	SettlementUsecase contracts.SettlementUsecase
}

var (
	paymentControllerInstance *PaymentController
	oncePaymentController     sync.Once
)

func NewPaymentController(logger *zap.Logger, settlementUsecase contracts.SettlementUsecase) *PaymentController {
	oncePaymentController.Do(func() {
		instance := &PaymentController{
			Log:               logger,
			SettlementUsecase: settlementUsecase,
		}
		paymentControllerInstance = instance
	})
	return paymentControllerInstance
}

func (ctrl *PaymentController) Preauthorize(w http.ResponseWriter, r *http.Request) {
	requestID, actor, ok := requestScope(ctrl.Log, w, r, "PaymentController.Preauthorize")
	if !ok {
		return
	}

	appointmentID, err := utils.ParseInt64URLParam(r, constvars.URLParamID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	request := new(requests.Preauthorization)
	if err := decodeAndValidate(r, request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), usecaseTimeout)
	defer cancel()

	response, err := ctrl.SettlementUsecase.RequestPreauthorization(ctx, actor, appointmentID, request)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, requestID, "PaymentController.Preauthorize", err)
		return
	}

	ctrl.Log.Info("PaymentController.Preauthorize succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
		zap.String(constvars.LoggingPaymentStatusKey, string(response.PaymentStatus)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.PaymentPreauthorizedSuccess, response)
}

func (ctrl *PaymentController) Capture(w http.ResponseWriter, r *http.Request) {
	ctrl.resolve(w, r, "PaymentController.Capture", constvars.PaymentCapturedSuccess, ctrl.SettlementUsecase.CapturePayment)
}

func (ctrl *PaymentController) Cancel(w http.ResponseWriter, r *http.Request) {
	ctrl.resolve(w, r, "PaymentController.Cancel", constvars.PaymentCancelledSuccess, ctrl.SettlementUsecase.CancelPayment)
}

func (ctrl *PaymentController) resolve(
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
		zap.String(constvars.LoggingPaymentStatusKey, string(appointment.PaymentStatus)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, successMessage, responses.PaymentResolution{
		AppointmentID: appointment.ID,
		Status:        appointment.Status,
		PaymentStatus: appointment.PaymentStatus,
	})
}
