package quotas

import (
	"context"
	"errors"
	"sync"
	"time"

	"consultation-service/internal/app/contracts"
	"consultation-service/internal/app/models"
	"consultation-service/internal/pkg/constvars"
	"consultation-service/internal/pkg/exceptions"
	"consultation-service/internal/pkg/utils"

	"go.uber.org/zap"
)

type quotaUsecase struct {
	QuotaRepository contracts.QuotaRepository
	PlanCatalog     contracts.PlanCatalog
	Log             *zap.Logger
	Now             func() time.Time
}

var (
	quotaUsecaseInstance contracts.QuotaUsecase
	onceQuotaUsecase     sync.Once
)

func NewQuotaUsecase(
	quotaRepository contracts.QuotaRepository,
	planCatalog contracts.PlanCatalog,
	logger *zap.Logger,
) contracts.QuotaUsecase {
	onceQuotaUsecase.Do(func() {
		quotaUsecaseInstance = &quotaUsecase{
			QuotaRepository: quotaRepository,
			PlanCatalog:     planCatalog,
			Log:             logger,
			Now:             time.Now,
		}
	})
	return quotaUsecaseInstance
}

func (uc *quotaUsecase) HasRemainingQuota(ctx context.Context, patientID int64) (*models.QuotaStatus, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Info("quotaUsecase.HasRemainingQuota called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingPatientIDKey, patientID),
	)

	entry, err := uc.QuotaRepository.FindByPatientID(ctx, patientID)
	if err != nil {
		uc.Log.Error("quotaUsecase.HasRemainingQuota error fetching quota entry",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if entry == nil {
		return &models.QuotaStatus{PatientID: patientID, PlanName: constvars.PlanNameNone}, nil
	}

	plan, err := uc.PlanCatalog.GetPlan(ctx, entry.PlanName)
	if err != nil {
		uc.Log.Error("quotaUsecase.HasRemainingQuota error fetching plan",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPlanNameKey, entry.PlanName),
			zap.Error(err),
		)
		return nil, err
	}

	now := uc.Now()
	status := &models.QuotaStatus{
		PatientID: patientID,
		PlanName:  plan.Name,
		Unlimited: plan.EmergencyQuota.Unlimited && !now.After(entry.CycleEnd),
		Remaining: entry.EffectiveRemaining(now),
	}

	uc.Log.Info("quotaUsecase.HasRemainingQuota resolved",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPlanNameKey, status.PlanName),
		zap.Int(constvars.LoggingRemainingQuotaKey, status.Remaining),
	)
	return status, nil
}

// DecrementOnce consumes one emergency consultation for the appointment. A repeated call for the
// same appointment is a no-op and returns false.
func (uc *quotaUsecase) DecrementOnce(ctx context.Context, patientID, appointmentID int64) (bool, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Info("quotaUsecase.DecrementOnce called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingPatientIDKey, patientID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	status, err := uc.HasRemainingQuota(ctx, patientID)
	if err != nil {
		return false, err
	}

	consumed, err := uc.QuotaRepository.ConsumeOnce(ctx, patientID, appointmentID, !status.Unlimited, uc.Now())
	if err != nil {
		uc.Log.Warn("quotaUsecase.DecrementOnce quota not consumed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err),
		)
		return false, err
	}

	uc.Log.Info("quotaUsecase.DecrementOnce completed",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
		zap.Bool("consumed", consumed),
	)
	return consumed, nil
}

func (uc *quotaUsecase) HasConsumedQuota(ctx context.Context, appointmentID int64) (bool, error) {
	return uc.QuotaRepository.ExistsUsage(ctx, appointmentID)
}

// ResetCycle starts a new quota cycle on subscription activation, renewal or plan change.
func (uc *quotaUsecase) ResetCycle(ctx context.Context, patientID int64, planName string, cycleStart, cycleEnd time.Time) (*models.QuotaEntry, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Info("quotaUsecase.ResetCycle called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingPatientIDKey, patientID),
		zap.String(constvars.LoggingPlanNameKey, planName),
	)

	if !cycleEnd.After(cycleStart) {
		return nil, exceptions.ErrInputValidation(errors.New("cycle end must be after cycle start"))
	}

	plan, err := uc.PlanCatalog.GetPlan(ctx, planName)
	if err != nil {
		return nil, err
	}

	remaining := plan.EmergencyQuota.Count
	if plan.EmergencyQuota.Unlimited {
		remaining = 0
	}

	entry, err := uc.QuotaRepository.Upsert(ctx, &models.QuotaEntry{
		PatientID:  patientID,
		PlanName:   plan.Name,
		Remaining:  remaining,
		CycleStart: cycleStart,
		CycleEnd:   cycleEnd,
	})
	if err != nil {
		uc.Log.Error("quotaUsecase.ResetCycle error saving quota entry",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	return entry, nil
}

// PlanForPatient resolves the patient's current plan; patients without an entry are on the none plan.
func (uc *quotaUsecase) PlanForPatient(ctx context.Context, patientID int64) (*models.Plan, error) {
	entry, err := uc.QuotaRepository.FindByPatientID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return models.NonePlan(), nil
	}
	return uc.PlanCatalog.GetPlan(ctx, entry.PlanName)
}
