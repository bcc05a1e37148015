package settlement

import (
	"context"
	"errors"
	"net"

	"consultation-service/internal/pkg/constvars"
	"consultation-service/internal/pkg/exceptions"
)

// classifyGatewayError maps a gateway call failure to the settlement error for the operation.
// Timeouts are kept apart because their outcome at the gateway is unknown.
func classifyGatewayError(err error, operation string) *exceptions.CustomError {
	if isTimeout(err) {
		return exceptions.ErrGatewayTimeout(err, operation)
	}

	switch operation {
	case constvars.GatewayOperationCapture:
		return exceptions.ErrCaptureFailed(err)
	case constvars.GatewayOperationCancel:
		return exceptions.ErrCancelFailed(err)
	default:
		return exceptions.ErrAuthorizationFailed(err)
	}
}

func isTimeout(err error) bool {
	if exceptions.IsKind(err, exceptions.KindGatewayTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
