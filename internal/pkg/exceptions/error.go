package exceptions

import (
	"errors"
	"fmt"
	"runtime"

	"consultation-service/internal/pkg/constvars"
)

type Kind string

const (
	KindUnknown                       Kind = ""
	KindInvalidInput                  Kind = "InvalidInput"
	KindUnauthorized                  Kind = "Unauthorized"
	KindForbidden                     Kind = "Forbidden"
	KindAppointmentNotFound           Kind = "AppointmentNotFound"
	KindPlanNotFound                  Kind = "PlanNotFound"
	KindDoctorFeeNotFound             Kind = "DoctorFeeNotFound"
	KindPaymentMethodMissing          Kind = "PaymentMethodMissing"
	KindAlreadyAuthorized             Kind = "AlreadyAuthorized"
	KindInvalidPaymentState           Kind = "InvalidPaymentState"
	KindInvalidAppointmentState       Kind = "InvalidAppointmentState"
	KindAuthorizationFailed           Kind = "AuthorizationFailed"
	KindCaptureFailed                 Kind = "CaptureFailed"
	KindCancelFailed                  Kind = "CancelFailed"
	KindGatewayTimeout                Kind = "GatewayTimeout"
	KindQuotaExhausted                Kind = "QuotaExhausted"
	KindQuotaExceededButNotChargeable Kind = "QuotaExceededButNotChargeable"
	KindInternal                      Kind = "Internal"
)

type CustomError struct {
	StatusCode    int        `json:"status_code"`
	Success       bool       `json:"success"`
	ClientMessage string     `json:"message"`
	DevMessage    string     `json:"-"`
	Kind          Kind       `json:"kind,omitempty"`
	Locations     []Location `json:"-"`
	cause         error
}

type Location struct {
	File         string
	Line         int
	FunctionName string
}

func (e *CustomError) Error() string {
	if len(e.Locations) == 0 {
		return e.DevMessage
	}
	loc := e.Locations[0]
	return fmt.Sprintf("%s (%s:%d %s)", e.DevMessage, loc.File, loc.Line, loc.FunctionName)
}

func (e *CustomError) Unwrap() error {
	return e.cause
}

// WithKind tags the error and returns it for chaining.
func (e *CustomError) WithKind(kind Kind) *CustomError {
	e.Kind = kind
	return e
}

func BuildNewCustomError(err error, statusCode int, clientMessage, devMessage string) *CustomError {
	if err != nil {
		devMessage = fmt.Sprintf("%s: %s", devMessage, err.Error())
	}
	return &CustomError{
		StatusCode:    statusCode,
		Success:       false,
		ClientMessage: clientMessage,
		DevMessage:    devMessage,
		Locations:     []Location{getLocation(3)},
		cause:         err,
	}
}

// IsKind reports whether err (or anything it wraps) is a CustomError of the given kind.
func IsKind(err error, kind Kind) bool {
	var customErr *CustomError
	if !errors.As(err, &customErr) {
		return false
	}
	return customErr.Kind == kind
}

// KindOf returns the kind of the outermost CustomError in err's chain.
func KindOf(err error) Kind {
	var customErr *CustomError
	if !errors.As(err, &customErr) {
		return KindUnknown
	}
	return customErr.Kind
}

func getLocation(skip int) Location {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return Location{
			File:         constvars.ErrFileLocationUnknown,
			Line:         0,
			FunctionName: constvars.ErrFunctionNameUnknown,
		}
	}
	return Location{
		File:         file,
		Line:         line,
		FunctionName: runtime.FuncForPC(pc).Name(),
	}
}
