package utils

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"consultation-service/internal/app/models"
	"consultation-service/internal/pkg/constvars"
	"consultation-service/internal/pkg/exceptions"

	"github.com/go-chi/chi/v5"
)

func ParseInt64URLParam(r *http.Request, name string) (int64, error) {
	value, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, exceptions.ErrURLParamValidation(err, name)
	}
	if value <= 0 {
		return 0, exceptions.ErrURLParamValidation(errors.New("must be positive"), name)
	}
	return value, nil
}

func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	return requestID
}

func ActorFromContext(ctx context.Context) (*models.Actor, error) {
	actor, ok := ctx.Value(constvars.CONTEXT_ACTOR_KEY).(*models.Actor)
	if !ok || actor == nil {
		return nil, exceptions.ErrActorMissing(nil)
	}
	return actor, nil
}

func ContextWithActor(ctx context.Context, actor *models.Actor) context.Context {
	return context.WithValue(ctx, constvars.CONTEXT_ACTOR_KEY, actor)
}
