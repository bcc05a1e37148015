package controllers

import (
	"context"
	"net/http"
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

type EarningsController struct {
	Log             *zap.Logger
	EarningsUsecase contracts.EarningsUsecase
	AccessControl   contracts.AccessControl
	InternalConfig  *config.InternalConfig
}

var (
	earningsControllerInstance *EarningsController
	onceEarningsController     sync.Once
)

func NewEarningsController(logger *zap.Logger, earningsUsecase contracts.EarningsUsecase, accessControl contracts.AccessControl, internalConfig *config.InternalConfig) *EarningsController {
	onceEarningsController.Do(func() {
		instance := &EarningsController{
			Log:             logger,
			EarningsUsecase: earningsUsecase,
			AccessControl:   accessControl,
			InternalConfig:  internalConfig,
		}
		earningsControllerInstance = instance
	})
	return earningsControllerInstance
}

// Compute re-runs the earnings calculation for a settled appointment. Admin only.
func (ctrl *EarningsController) Compute(w http.ResponseWriter, r *http.Request) {
	requestID, actor, ok := requestScope(ctrl.Log, w, r, "EarningsController.Compute")
	if !ok {
		return
	}

	appointmentID, err := utils.ParseInt64URLParam(r, constvars.URLParamID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	if err := ctrl.AccessControl.Authorize(actor, constvars.OperationEarningsCompute); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), usecaseTimeout)
	defer cancel()

	amount, err := ctrl.EarningsUsecase.ComputeEarnings(ctx, appointmentID)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, requestID, "EarningsController.Compute", err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.EarningsComputedSuccess, responses.ComputedEarnings{
		AppointmentID: appointmentID,
		Amount:        amount,
	})
}

func (ctrl *EarningsController) Report(w http.ResponseWriter, r *http.Request) {
	requestID, actor, ok := requestScope(ctrl.Log, w, r, "EarningsController.Report")
	if !ok {
		return
	}

	doctorID, ok := ctrl.doctorScope(w, r, actor)
	if !ok {
		return
	}

	query := &requests.EarningsReportQuery{
		From: r.URL.Query().Get(constvars.QueryParamFrom),
		To:   r.URL.Query().Get(constvars.QueryParamTo),
	}
	if err := utils.ValidateStruct(query); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	from, to, err := utils.DateRange(query.From, query.To, ctrl.location())
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrQueryParamValidation(err, constvars.QueryParamFrom))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), usecaseTimeout)
	defer cancel()

	report, err := ctrl.EarningsUsecase.MonthlyReport(ctx, doctorID, from, to)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, requestID, "EarningsController.Report", err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.EarningsReportGetSuccess, report)
}

func (ctrl *EarningsController) Export(w http.ResponseWriter, r *http.Request) {
	requestID, actor, ok := requestScope(ctrl.Log, w, r, "EarningsController.Export")
	if !ok {
		return
	}

	doctorID, ok := ctrl.doctorScope(w, r, actor)
	if !ok {
		return
	}

	query := &requests.EarningsReportExport{
		Month: r.URL.Query().Get(constvars.QueryParamMonth),
	}
	if err := utils.ValidateStruct(query); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), usecaseTimeout)
	defer cancel()

	exported, err := ctrl.EarningsUsecase.ExportMonthlyReport(ctx, doctorID, query.Month)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, requestID, "EarningsController.Export", err)
		return
	}

	ctrl.Log.Info("EarningsController.Export succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingObjectNameKey, exported.ObjectName),
	)
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.EarningsReportExportSuccess, exported)
}

// doctorScope resolves the doctor in the URL; doctors may only read their own earnings.
func (ctrl *EarningsController) doctorScope(w http.ResponseWriter, r *http.Request, actor *models.Actor) (int64, bool) {
	doctorID, err := utils.ParseInt64URLParam(r, constvars.URLParamDoctorID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return 0, false
	}

	if err := ctrl.AccessControl.AuthorizeSubject(actor, constvars.OperationEarningsReport, constvars.RoleDoctor, doctorID); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return 0, false
	}
	return doctorID, true
}

func (ctrl *EarningsController) location() *time.Location {
	location, err := time.LoadLocation(ctrl.InternalConfig.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return location
}
