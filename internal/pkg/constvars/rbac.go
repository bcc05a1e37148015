package constvars

// Operations checked against the role policy in services/shared/rbac.
const (
	OperationAPIAccess                  = "api:access"
	OperationAppointmentBook            = "appointment:book"
	OperationAppointmentView            = "appointment:view"
	OperationAppointmentConfirm         = "appointment:confirm"
	OperationAppointmentStart           = "appointment:start"
	OperationAppointmentComplete        = "appointment:complete"
	OperationAppointmentCancel          = "appointment:cancel"
	OperationAppointmentCancelStale     = "appointment:cancel-stale"
	OperationAppointmentListEmergencies = "appointment:list-emergencies"
	OperationPaymentPreauthorize        = "payment:preauthorize"
	OperationPaymentCapture             = "payment:capture"
	OperationPaymentCancel              = "payment:cancel"
	OperationQuotaView                  = "quota:view"
	OperationQuotaResetCycle            = "quota:reset-cycle"
	OperationEarningsCompute            = "earnings:compute"
	OperationEarningsReport             = "earnings:report"
)
