package earnings

import (
	"context"
	"errors"
	"sync"
	"time"

	"consultation-service/internal/app/config"
	"consultation-service/internal/app/contracts"
	"consultation-service/internal/app/models"
	"consultation-service/internal/pkg/constvars"
	"consultation-service/internal/pkg/exceptions"
	"consultation-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type earningsUsecase struct {
	EarningsRepository    contracts.EarningsRepository
	AppointmentRepository contracts.AppointmentRepository
	BillingRepository     contracts.BillingRepository
	QuotaUsecase          contracts.QuotaUsecase
	Storage               contracts.Storage
	InternalConfig        *config.InternalConfig
	Log                   *zap.Logger
}

var (
	earningsUsecaseInstance contracts.EarningsUsecase
	onceEarningsUsecase     sync.Once
)

func NewEarningsUsecase(
	earningsRepository contracts.EarningsRepository,
	appointmentRepository contracts.AppointmentRepository,
	billingRepository contracts.BillingRepository,
	quotaUsecase contracts.QuotaUsecase,
	storage contracts.Storage,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.EarningsUsecase {
	onceEarningsUsecase.Do(func() {
		earningsUsecaseInstance = &earningsUsecase{
			EarningsRepository:    earningsRepository,
			AppointmentRepository: appointmentRepository,
			BillingRepository:     billingRepository,
			QuotaUsecase:          quotaUsecase,
			Storage:               storage,
			InternalConfig:        internalConfig,
			Log:                   logger,
		}
	})
	return earningsUsecaseInstance
}

func (uc *earningsUsecase) ComputeEarnings(ctx context.Context, appointmentID int64) (int64, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Info("earningsUsecase.ComputeEarnings called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	appointment, err := uc.AppointmentRepository.FindByID(ctx, appointmentID)
	if err != nil {
		return 0, err
	}
	if appointment == nil {
		return 0, exceptions.ErrAppointmentNotFound(nil, appointmentID)
	}
	if appointment.Status != models.AppointmentStatusCompleted {
		return 0, exceptions.ErrInvalidAppointmentState(nil, appointmentID, string(appointment.Status), "compute earnings")
	}

	existing, err := uc.EarningsRepository.FindByAppointmentID(ctx, appointmentID)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return existing.Amount, nil
	}

	switch appointment.PaymentStatus {
	case models.PaymentStatusIncludedInPlan:
		uc.Log.Info("earningsUsecase.ComputeEarnings plan-covered consultation, no earnings line",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
		)
		return 0, nil
	case models.PaymentStatusCompleted:
	default:
		return 0, exceptions.ErrInvalidPaymentState(nil, appointmentID, string(appointment.PaymentStatus), "compute earnings")
	}

	if appointment.DoctorID == nil {
		return 0, exceptions.ErrInvalidAppointmentState(errors.New("no doctor assigned"), appointmentID, string(appointment.Status), "compute earnings")
	}
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

	amount := CalculateEarnings(appointment, plan, fee, uc.InternalConfig.Settlement.DefaultEmergencyFee)
	line, err := uc.EarningsRepository.CreateIfAbsent(ctx, &models.EarningsLine{
		DoctorID:      doctorID,
		AppointmentID: appointmentID,
		Amount:        amount,
		Status:        models.EarningsStatusPending,
		IsEmergency:   appointment.IsEmergency,
	})
	if err != nil {
		uc.Log.Error("earningsUsecase.ComputeEarnings error saving earnings line",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err),
		)
		return 0, err
	}

	uc.Log.Info("earningsUsecase.ComputeEarnings completed",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
		zap.Int64(constvars.LoggingDoctorIDKey, doctorID),
		zap.Int64(constvars.LoggingAmountKey, line.Amount),
	)
	return line.Amount, nil
}

func (uc *earningsUsecase) MonthlyReport(ctx context.Context, doctorID int64, from, to time.Time) (*models.EarningsReport, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Info("earningsUsecase.MonthlyReport called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingDoctorIDKey, doctorID),
	)

	if !to.After(from) {
		return nil, exceptions.ErrInputValidation(errors.New("report range end must be after its start"))
	}

	lines, err := uc.EarningsRepository.FindByDoctorAndRange(ctx, doctorID, from, to)
	if err != nil {
		uc.Log.Error("earningsUsecase.MonthlyReport error fetching earnings lines",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	report := &models.EarningsReport{DoctorID: doctorID, From: from, To: to}
	for _, line := range lines {
		report.Add(line)
	}
	return report, nil
}

// ExportMonthlyReport stores the report for a YYYY-MM month in the reports bucket.
func (uc *earningsUsecase) ExportMonthlyReport(ctx context.Context, doctorID int64, month string) (*models.ExportedReport, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Info("earningsUsecase.ExportMonthlyReport called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingDoctorIDKey, doctorID),
	)

	location, err := time.LoadLocation(uc.InternalConfig.App.Timezone)
	if err != nil {
		location = time.UTC
	}
	from, to, err := utils.MonthRange(month, location)
	if err != nil {
		return nil, exceptions.ErrQueryParamValidation(err, constvars.QueryParamMonth)
	}

	report, err := uc.MonthlyReport(ctx, doctorID, from, to)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}

	bucketName := uc.InternalConfig.Minio.ReportBucketName
	objectName := utils.GenerateReportObjectName(doctorID, month)
	if err := uc.Storage.PutObject(ctx, bucketName, objectName, payload, constvars.MIMEApplicationJSON); err != nil {
		uc.Log.Error("earningsUsecase.ExportMonthlyReport error storing report",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingBucketNameKey, bucketName),
			zap.String(constvars.LoggingObjectNameKey, objectName),
			zap.Error(err),
		)
		return nil, err
	}

	expiry := time.Duration(uc.InternalConfig.Minio.MinioPreSignedUrlObjectExpiryTimeInHours) * time.Hour
	url, err := uc.Storage.GetObjectUrlWithExpiryTime(ctx, bucketName, objectName, expiry)
	if err != nil {
		return nil, err
	}

	return &models.ExportedReport{
		ObjectName:   objectName,
		PresignedURL: url,
		Report:       *report,
	}, nil
}
