package exceptions

import (
	"fmt"

	"consultation-service/internal/pkg/constvars"
)

// Request and infrastructure errors.
var (
	ErrInputValidation = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, FormatFirstValidationError(err), constvars.ErrDevValidationFailed).WithKind(KindInvalidInput)
	}
	ErrCannotParseJSON = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, constvars.ErrDevCannotParseJSON).WithKind(KindInvalidInput)
	}
	ErrCannotMarshalJSON = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevCannotMarshalJSON).WithKind(KindInternal)
	}
	ErrURLParamValidation = func(err error, paramName string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevURLParamValidation, paramName)).WithKind(KindInvalidInput)
	}
	ErrQueryParamValidation = func(err error, paramName string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevQueryParamValidation, paramName)).WithKind(KindInvalidInput)
	}
	ErrServerProcess = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevServerProcess).WithKind(KindInternal)
	}
	ErrServerDeadlineExceeded = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusGatewayTimeout, constvars.ErrClientServerLongRespond, constvars.ErrDevServerDeadlineExceeded).WithKind(KindInternal)
	}
	ErrMissingRequestID = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevMissingRequestID).WithKind(KindInternal)
	}
	ErrTokenMissing = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnauthorized, constvars.ErrClientNotLoggedIn, constvars.ErrDevAuthTokenMissing).WithKind(KindUnauthorized)
	}
	ErrTokenInvalidOrExpired = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnauthorized, constvars.ErrClientNotLoggedIn, constvars.ErrDevAuthTokenInvalid).WithKind(KindUnauthorized)
	}
	ErrActorMissing = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnauthorized, constvars.ErrClientNotLoggedIn, constvars.ErrDevActorMissing).WithKind(KindUnauthorized)
	}
	ErrForbidden = func(err error, operation string, appointmentID int64) *CustomError {
		return BuildNewCustomError(err, constvars.StatusForbidden, constvars.ErrClientNotAuthorized, fmt.Sprintf(constvars.ErrDevAuthPermissionDenied, operation, appointmentID)).WithKind(KindForbidden)
	}
	ErrResourceForbidden = func(err error, operation, resource string, resourceID int64) *CustomError {
		return BuildNewCustomError(err, constvars.StatusForbidden, constvars.ErrClientNotAuthorized, fmt.Sprintf(constvars.ErrDevResourcePermissionDenied, operation, resource, resourceID)).WithKind(KindForbidden)
	}
	ErrCreateHTTPRequest = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevCreateHTTPRequest).WithKind(KindInternal)
	}
	ErrSendHTTPRequest = func(err error, url string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevSendHTTPRequest, url)).WithKind(KindInternal)
	}
	ErrUnexpectedHTTPStatus = func(err error, statusCode int, url string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevUnexpectedHTTPStatus, statusCode, url)).WithKind(KindInternal)
	}
	ErrDecodeHTTPResponse = func(err error, url string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevDecodeHTTPResponse, url)).WithKind(KindInternal)
	}
	ErrPostgresDBFindData = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToFindData).WithKind(KindInternal)
	}
	ErrPostgresDBInsertData = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToInsertData).WithKind(KindInternal)
	}
	ErrPostgresDBUpdateData = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToUpdateData).WithKind(KindInternal)
	}
	ErrPostgresDBBeginTx = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToBeginTx).WithKind(KindInternal)
	}
	ErrPostgresDBCommitTx = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToCommitTx).WithKind(KindInternal)
	}
	ErrRedisGetData = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisGetData).WithKind(KindInternal)
	}
	ErrRedisGetNoData = func(err error, key string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusNotFound, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevRedisGetNoData, key)).WithKind(KindInternal)
	}
	ErrRedisSetData = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisSetData).WithKind(KindInternal)
	}
	ErrRedisDeleteData = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisDeleteData).WithKind(KindInternal)
	}
	ErrRedisUnlock = func(err error, key string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevRedisUnlock, key)).WithKind(KindInternal)
	}
	ErrRabbitMQPublishMessage = func(err error, queue string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevRabbitMQPublishMessage, queue)).WithKind(KindInternal)
	}
	ErrMinioCreateObject = func(err error, bucket string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevMinioCreateObject, bucket)).WithKind(KindInternal)
	}
	ErrMinioPresignObject = func(err error, bucket string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevMinioPresignObject, bucket)).WithKind(KindInternal)
	}
	ErrVideoRoomCreate = func(err error, roomName string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevVideoRoomCreate, roomName)).WithKind(KindInternal)
	}
)

// Settlement errors.
var (
	ErrAppointmentNotFound = func(err error, appointmentID int64) *CustomError {
		return BuildNewCustomError(err, constvars.StatusNotFound, constvars.ErrClientAppointmentNotFound, fmt.Sprintf(constvars.ErrDevAppointmentNotFound, appointmentID)).WithKind(KindAppointmentNotFound)
	}
	ErrPlanNotFound = func(err error, planName string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusNotFound, constvars.ErrClientPlanNotFound, fmt.Sprintf(constvars.ErrDevPlanNotFound, planName)).WithKind(KindPlanNotFound)
	}
	ErrDoctorFeeNotFound = func(err error, doctorID int64) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnprocessableEntity, constvars.ErrClientPaymentNotProcessed, fmt.Sprintf(constvars.ErrDevDoctorFeeNotFound, doctorID)).WithKind(KindDoctorFeeNotFound)
	}
	ErrDoctorMismatch = func(err error, appointmentID int64) *CustomError {
		return BuildNewCustomError(err, constvars.StatusConflict, constvars.ErrClientConsultationStateLocked, fmt.Sprintf(constvars.ErrDevDoctorMismatch, appointmentID)).WithKind(KindInvalidInput)
	}
	ErrEmergencyFlagMismatch = func(err error, appointmentID int64) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevEmergencyFlagMismatch, appointmentID)).WithKind(KindInvalidInput)
	}
	ErrPaymentMethodMissing = func(err error, patientID int64) *CustomError {
		return BuildNewCustomError(err, constvars.StatusPaymentRequired, constvars.ErrClientPaymentMethodMissing, fmt.Sprintf(constvars.ErrDevPaymentMethodMissing, patientID)).WithKind(KindPaymentMethodMissing)
	}
	ErrAlreadyAuthorized = func(err error, appointmentID int64) *CustomError {
		return BuildNewCustomError(err, constvars.StatusConflict, constvars.ErrClientConsultationAlreadyAuthorized, fmt.Sprintf(constvars.ErrDevAlreadyAuthorized, appointmentID)).WithKind(KindAlreadyAuthorized)
	}
	ErrInvalidPaymentState = func(err error, appointmentID int64, current, operation string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusConflict, constvars.ErrClientConsultationStateLocked, fmt.Sprintf(constvars.ErrDevInvalidPaymentState, appointmentID, current, operation)).WithKind(KindInvalidPaymentState)
	}
	ErrInvalidAppointmentState = func(err error, appointmentID int64, current, operation string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusConflict, constvars.ErrClientConsultationStateLocked, fmt.Sprintf(constvars.ErrDevInvalidAppointmentState, appointmentID, current, operation)).WithKind(KindInvalidAppointmentState)
	}
	ErrAuthorizationFailed = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, constvars.ErrClientPaymentNotProcessed, constvars.ErrDevAuthorizationFailed).WithKind(KindAuthorizationFailed)
	}
	ErrCaptureFailed = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, constvars.ErrClientPaymentNotProcessed, constvars.ErrDevCaptureFailed).WithKind(KindCaptureFailed)
	}
	ErrCancelFailed = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, constvars.ErrClientPaymentNotProcessed, constvars.ErrDevCancelFailed).WithKind(KindCancelFailed)
	}
	ErrGatewayTimeout = func(err error, operation string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusGatewayTimeout, constvars.ErrClientPaymentNotProcessed, fmt.Sprintf(constvars.ErrDevGatewayTimeout, operation)).WithKind(KindGatewayTimeout)
	}
	ErrQuotaExhausted = func(err error, patientID int64) *CustomError {
		return BuildNewCustomError(err, constvars.StatusConflict, constvars.ErrClientConsultationStateLocked, fmt.Sprintf(constvars.ErrDevQuotaExhausted, patientID)).WithKind(KindQuotaExhausted)
	}
	ErrQuotaExceededButNotChargeable = func(err error, appointmentID int64) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnprocessableEntity, constvars.ErrClientPaymentNotProcessed, fmt.Sprintf(constvars.ErrDevQuotaNotChargeable, appointmentID)).WithKind(KindQuotaExceededButNotChargeable)
	}
)
