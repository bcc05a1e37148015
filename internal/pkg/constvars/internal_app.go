package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
	CONTEXT_ACTOR_KEY                ContextKey = "actor"
)

const (
	RoleAdmin   = "admin"
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

const (
	ResourceAppointments = "appointments"
	ResourceQuotas       = "quotas"
	ResourceEarnings     = "earnings"
)

const (
	AppDefaultTimezone       = "Asia/Jakarta"
	AppReportMonthFormat     = "2006-01"
	AppReportObjectKeyFormat = "earnings/doctor-%d/%s.json"
	AppVideoRoomNameFormat   = "consultation-%d"
	AppIdempotencyKeyFormat  = "appointment-%d-%s"
	AppPlanCacheKeyFormat    = "plan:%s"
)
