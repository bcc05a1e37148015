package constvars

const (
	ResponseUnknown = "unknown"

	AppointmentBookedSuccess          = "consultation booked successfully"
	AppointmentGetSuccess             = "get consultation successfully"
	AppointmentConfirmedSuccess       = "consultation confirmed successfully"
	AppointmentStartedSuccess         = "consultation started successfully"
	AppointmentCompletedSuccess       = "consultation completed successfully"
	AppointmentCancelledSuccess       = "consultation cancelled successfully"
	AppointmentStaleCancelledSuccess  = "stale consultations cancelled successfully"
	AppointmentActiveEmergencySuccess = "get active emergency consultations successfully"

	PaymentPreauthorizedSuccess = "payment preauthorized successfully"
	PaymentCapturedSuccess      = "payment captured successfully"
	PaymentCancelledSuccess     = "payment cancelled successfully"

	QuotaGetSuccess        = "get emergency quota successfully"
	QuotaCycleResetSuccess = "emergency quota cycle reset successfully"

	EarningsComputedSuccess     = "doctor earnings computed successfully"
	EarningsReportGetSuccess    = "get earnings report successfully"
	EarningsReportExportSuccess = "earnings report exported successfully"
)
