package constvars

const (
	LoggingRequestIDKey       = "request_id"
	LoggingRequestKey         = "request"
	LoggingResponseKey        = "response"
	LoggingErrorTypeKey       = "error_type"
	LoggingMethodKey          = "method"
	LoggingEndpointKey        = "endpoint"
	LoggingRemoteAddrKey      = "remote_addr"
	LoggingUserAgentKey       = "user_agent"
	LoggingQueryKey           = "query"
	LoggingStatusCodeKey      = "status_code"
	LoggingDurationKey        = "duration"
	LoggingSuccessKey         = "success"
	LoggingAppointmentIDKey   = "appointment_id"
	LoggingPatientIDKey       = "patient_id"
	LoggingDoctorIDKey        = "doctor_id"
	LoggingActorIDKey         = "actor_id"
	LoggingActorRoleKey       = "actor_role"
	LoggingOperationKey       = "operation"
	LoggingPaymentStatusKey   = "payment_status"
	LoggingStatusKey          = "status"
	LoggingAuthorizationIDKey = "authorization_id"
	LoggingAmountKey          = "amount"
	LoggingIsEmergencyKey     = "is_emergency"
	LoggingPlanNameKey        = "plan_name"
	LoggingRemainingQuotaKey  = "remaining_quota"
	LoggingEventTypeKey       = "event_type"
	LoggingRedisKey           = "redis_key"
	LoggingLockValueKey       = "lock_value"
	LoggingQueueNameKey       = "queue_name"
	LoggingBucketNameKey      = "bucket_name"
	LoggingObjectNameKey      = "object_name"
	LoggingGatewayURLKey      = "gateway_url"
)
