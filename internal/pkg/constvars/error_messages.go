package constvars

// Validation messages mapper
var CustomValidationErrorMessages = map[string]string{
	"required": "is required",
	"gt":       "must be greater than %s",
	"gte":      "must be greater than or equal to %s",
	"lte":      "must be less than or equal to %s",
	"oneof":    "must be one of [%s]",
	"datetime": "must follow the %s layout",
}

var TagsWithParams = map[string]bool{
	"gt":       true,
	"gte":      true,
	"lte":      true,
	"oneof":    true,
	"datetime": true,
}

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientServerLongRespond             = "the app taking too long to respond"
	ErrClientNotAuthorized                 = "you can't access this feature"
	ErrClientNotLoggedIn                   = "your session ended, please login again"
	ErrClientPaymentNotProcessed           = "payment could not be processed, please try again"
	ErrClientConsultationStateLocked       = "this consultation cannot be modified in its current state"
	ErrClientPaymentMethodMissing          = "please add a payment method before booking this consultation"
	ErrClientConsultationAlreadyAuthorized = "payment for this consultation is already authorized"
	ErrClientAppointmentNotFound           = "consultation not found"
	ErrClientPlanNotFound                  = "subscription plan not found"
)

// Error messages for developers
const (
	ErrDevValidationFailed         = "validation failed"
	ErrDevCannotParseJSON          = "cannot parse JSON"
	ErrDevCannotMarshalJSON        = "cannot marshal JSON"
	ErrDevURLParamValidation       = "invalid url parameter %s"
	ErrDevQueryParamValidation     = "invalid query parameter %s"
	ErrDevServerProcess            = "failed to process request"
	ErrDevServerDeadlineExceeded   = "deadline exceeded"
	ErrDevMissingRequestID         = "request id missing from context"
	ErrDevAuthTokenMissing         = "token missing"
	ErrDevAuthTokenInvalid         = "token invalid or expired"
	ErrDevAuthPermissionDenied     = "permission denied for %s on appointment %d"
	ErrDevResourcePermissionDenied = "permission denied for %s on %s %d"
	ErrDevActorMissing             = "actor missing from context"
	ErrDevCreateHTTPRequest        = "failed to create HTTP request"
	ErrDevSendHTTPRequest          = "failed to send HTTP request to %s"
	ErrDevUnexpectedHTTPStatus     = "unexpected HTTP status %d from %s"
	ErrDevDecodeHTTPResponse       = "failed to decode HTTP response from %s"
	ErrDevDBFailedToFindData       = "failed to find data on database"
	ErrDevDBFailedToInsertData     = "failed to insert data into database"
	ErrDevDBFailedToUpdateData     = "failed to update data on database"
	ErrDevDBFailedToBeginTx        = "failed to begin database transaction"
	ErrDevDBFailedToCommitTx       = "failed to commit database transaction"
	ErrDevRedisGetData             = "failed to get data from redis"
	ErrDevRedisGetNoData           = "no data found in redis for key %s"
	ErrDevRedisSetData             = "failed to set data into redis"
	ErrDevRedisDeleteData          = "failed to delete data from redis"
	ErrDevRedisUnlock              = "lock %s is not owned by this client"
	ErrDevRabbitMQPublishMessage   = "failed to publish message to queue %s"
	ErrDevMinioCreateObject        = "failed to create object in bucket %s"
	ErrDevMinioPresignObject       = "failed to presign object in bucket %s"
	ErrDevPaymentMethodMissing     = "patient %d has no payment method on file"
	ErrDevAlreadyAuthorized        = "appointment %d already has an active authorization"
	ErrDevInvalidPaymentState      = "appointment %d payment status %s does not allow %s"
	ErrDevInvalidAppointmentState  = "appointment %d status %s does not allow %s"
	ErrDevAuthorizationFailed      = "payment gateway failed to create authorization"
	ErrDevCaptureFailed            = "payment gateway failed to capture authorization"
	ErrDevCancelFailed             = "payment gateway failed to cancel authorization"
	ErrDevGatewayTimeout           = "payment gateway %s outcome unknown after timeout"
	ErrDevQuotaExhausted           = "patient %d has no remaining emergency quota"
	ErrDevQuotaNotChargeable       = "appointment %d exceeded quota but resolved to a non-chargeable amount"
	ErrDevAppointmentNotFound      = "appointment %d not found"
	ErrDevPlanNotFound             = "plan %s not found"
	ErrDevDoctorFeeNotFound        = "fee schedule for doctor %d not found"
	ErrDevDoctorMismatch           = "appointment %d is assigned to another doctor"
	ErrDevEmergencyFlagMismatch    = "appointment %d emergency flag does not match request"
	ErrDevVideoRoomCreate          = "failed to create video room %s"
)

const (
	ErrFileLocationUnknown = "file location unknown"
	ErrFunctionNameUnknown = "function name unknown"
)
