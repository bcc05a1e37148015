package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"consultation-service/internal/app/models"
	"consultation-service/internal/pkg/constvars"
	"consultation-service/internal/pkg/exceptions"
	"consultation-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Upper bound for a single usecase call; gateway calls carry their own shorter timeout.
const usecaseTimeout = 30 * time.Second

// requestScope pulls the request id and authenticated actor off the request, writing the error response itself on failure.
func requestScope(log *zap.Logger, w http.ResponseWriter, r *http.Request, handler string) (string, *models.Actor, bool) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok {
		log.Error(handler + " requestID not found in context")
		utils.BuildErrorResponse(log, w, exceptions.ErrMissingRequestID(nil))
		return "", nil, false
	}

	actor, err := utils.ActorFromContext(r.Context())
	if err != nil {
		log.Error(handler+" actor not found in context",
			zap.String(constvars.LoggingRequestIDKey, requestID),
		)
		utils.BuildErrorResponse(log, w, err)
		return "", nil, false
	}

	log.Info(handler+" called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingActorIDKey, actor.ID),
		zap.String(constvars.LoggingActorRoleKey, actor.Role),
	)
	return requestID, actor, true
}

func decodeAndValidate(r *http.Request, request interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		return exceptions.ErrCannotParseJSON(err)
	}
	if err := utils.ValidateStruct(request); err != nil {
		return exceptions.ErrInputValidation(err)
	}
	return nil
}

func writeUsecaseError(log *zap.Logger, w http.ResponseWriter, requestID, handler string, err error) {
	log.Error(handler+" usecase error",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Error(err),
	)

	var customErr *exceptions.CustomError
	if !errors.As(err, &customErr) && errors.Is(err, context.DeadlineExceeded) {
		utils.BuildErrorResponse(log, w, exceptions.ErrServerDeadlineExceeded(err))
		return
	}
	utils.BuildErrorResponse(log, w, err)
}
