package utils

import (
	"fmt"

	"consultation-service/internal/pkg/constvars"

	"github.com/google/uuid"
)

func GenerateRequestID() string {
	return uuid.NewString()
}

func GenerateEventID() string {
	return uuid.NewString()
}

func GenerateIdempotencyKey(appointmentID int64, paymentMethodRef string) string {
	return fmt.Sprintf(constvars.AppIdempotencyKeyFormat, appointmentID, paymentMethodRef)
}

func GenerateVideoRoomName(appointmentID int64) string {
	return fmt.Sprintf(constvars.AppVideoRoomNameFormat, appointmentID)
}

func GenerateReportObjectName(doctorID int64, month string) string {
	return fmt.Sprintf(constvars.AppReportObjectKeyFormat, doctorID, month)
}

func GeneratePlanCacheKey(planName string) string {
	return fmt.Sprintf(constvars.AppPlanCacheKeyFormat, planName)
}
