package constvars

const (
	EventPaymentAuthorized     = "payment.authorized"
	EventPaymentIncludedInPlan = "payment.included_in_plan"
	EventPaymentCaptured       = "payment.captured"
	EventPaymentCancelled      = "payment.cancelled"
	EventAppointmentConfirmed  = "appointment.confirmed"
	EventAppointmentCompleted  = "appointment.completed"
	EventAppointmentCancelled  = "appointment.cancelled"
)

const (
	GatewayOperationAuthorize = "create-authorization"
	GatewayOperationCapture   = "capture"
	GatewayOperationCancel    = "cancel"
)

const (
	GatewayMetadataAppointmentID = "appointment_id"
	GatewayMetadataDoctorID      = "doctor_id"
	GatewayMetadataIsEmergency   = "is_emergency"
)

const (
	PlanNameNone = "none"
)
