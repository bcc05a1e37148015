package controllers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"consultation-service/internal/app/contracts"
	"consultation-service/internal/pkg/constvars"
	"consultation-service/internal/pkg/dto/requests"
	"consultation-service/internal/pkg/exceptions"
	"consultation-service/internal/pkg/utils"

	"go.uber.org/zap"
)

type QuotaController struct {
	Log           *zap.Logger
	QuotaUsecase  contracts.QuotaUsecase
	AccessControl contracts.AccessControl
}

var (
	quotaControllerInstance *QuotaController
	onceQuotaController     sync.Once
)

func NewQuotaController(logger *zap.Logger, quotaUsecase contracts.QuotaUsecase, accessControl contracts.AccessControl) *QuotaController {
	onceQuotaController.Do(func() {
		instance := &QuotaController{
			Log:           logger,
			QuotaUsecase:  quotaUsecase,
			AccessControl: accessControl,
		}
		quotaControllerInstance = instance
	})
	return quotaControllerInstance
}

// FindByPatientID reports the emergency quota left on the patient's current cycle.
// Patients may only read their own quota.
func (ctrl *QuotaController) FindByPatientID(w http.ResponseWriter, r *http.Request) {
	requestID, actor, ok := requestScope(ctrl.Log, w, r, "QuotaController.FindByPatientID")
	if !ok {
		return
	}

	patientID, err := utils.ParseInt64URLParam(r, constvars.URLParamPatient)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	if err := ctrl.AccessControl.AuthorizeSubject(actor, constvars.OperationQuotaView, constvars.RolePatient, patientID); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), usecaseTimeout)
	defer cancel()

	status, err := ctrl.QuotaUsecase.HasRemainingQuota(ctx, patientID)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, requestID, "QuotaController.FindByPatientID", err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.QuotaGetSuccess, status)
}

// ResetCycle starts a new billing cycle for the patient, refilling the plan's emergency quota.
func (ctrl *QuotaController) ResetCycle(w http.ResponseWriter, r *http.Request) {
	requestID, actor, ok := requestScope(ctrl.Log, w, r, "QuotaController.ResetCycle")
	if !ok {
		return
	}

	if err := ctrl.AccessControl.Authorize(actor, constvars.OperationQuotaResetCycle); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	patientID, err := utils.ParseInt64URLParam(r, constvars.URLParamPatient)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	request := new(requests.ResetQuotaCycle)
	if err := decodeAndValidate(r, request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	cycleStart, err := time.Parse(time.RFC3339, request.CycleStart)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}
	cycleEnd, err := time.Parse(time.RFC3339, request.CycleEnd)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), usecaseTimeout)
	defer cancel()

	entry, err := ctrl.QuotaUsecase.ResetCycle(ctx, patientID, request.PlanName, cycleStart, cycleEnd)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, requestID, "QuotaController.ResetCycle", err)
		return
	}

	ctrl.Log.Info("QuotaController.ResetCycle succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingPatientIDKey, patientID),
		zap.String(constvars.LoggingPlanNameKey, entry.PlanName),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.QuotaCycleResetSuccess, entry)
}
