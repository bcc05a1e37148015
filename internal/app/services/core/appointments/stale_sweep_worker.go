package appointments

import (
	"context"
	"time"

	"consultation-service/internal/app/config"
	"consultation-service/internal/app/contracts"
	"consultation-service/internal/app/models"
	"consultation-service/internal/pkg/constvars"
	"consultation-service/internal/pkg/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// sweepLockKey keeps a single instance sweeping at a time.
const sweepLockKey = "appointments:stale-sweep:leader"

const sweepLockTTL = 5 * time.Minute

// StaleSweepWorker periodically cancels appointments whose window ended without the consultation starting.
type StaleSweepWorker struct {
	log                *zap.Logger
	cfg                *config.InternalConfig
	locker             contracts.LockerService
	appointmentUsecase contracts.AppointmentUsecase
	now                func() time.Time
	cron               *cron.Cron
	runCtx             context.Context
	cancel             context.CancelFunc
}

func NewStaleSweepWorker(log *zap.Logger, cfg *config.InternalConfig, lockerSvc contracts.LockerService, appointmentUsecase contracts.AppointmentUsecase) *StaleSweepWorker {
	return &StaleSweepWorker{
		log:                log,
		cfg:                cfg,
		locker:             lockerSvc,
		appointmentUsecase: appointmentUsecase,
		now:                time.Now,
	}
}

func (w *StaleSweepWorker) Start(ctx context.Context) {
	w.runCtx, w.cancel = context.WithCancel(ctx)
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	spec := w.cfg.Settlement.StaleSweepCronSpec
	_, err := c.AddFunc(spec, func() { w.runOnce(w.runCtx) })
	if err != nil {
		w.log.Warn("appointments.staleSweepWorker: invalid cron spec; falling back to @every 15m",
			zap.String("cron_spec", spec),
			zap.Error(err),
		)
		c = cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
		_, _ = c.AddFunc("@every 15m", func() { w.runOnce(w.runCtx) })
	}
	c.Start()
	w.cron = c
}

// Stop waits for an in-flight sweep to finish.
func (w *StaleSweepWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
}

func (w *StaleSweepWorker) runOnce(ctx context.Context) {
	ctx = context.WithValue(ctx, constvars.CONTEXT_REQUEST_ID_KEY, utils.GenerateRequestID())
	requestID := utils.RequestIDFromContext(ctx)

	acquired, token, err := w.locker.TryLock(ctx, sweepLockKey, sweepLockTTL)
	if err != nil {
		w.log.Warn("appointments.staleSweepWorker: leader lock attempt failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return
	}
	if !acquired {
		return
	}
	defer func() {
		if err := w.locker.Unlock(context.WithoutCancel(ctx), sweepLockKey, token); err != nil {
			w.log.Warn("appointments.staleSweepWorker: failed to release leader lock",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
		}
	}()

	grace := time.Duration(w.cfg.Settlement.StaleSweepGraceInMinutes) * time.Minute
	cutoff := w.now().Add(-grace)

	result, err := w.appointmentUsecase.CancelStale(ctx, systemActor, cutoff)
	if err != nil {
		w.log.Error("appointments.staleSweepWorker: sweep failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return
	}

	w.log.Info("appointments.staleSweepWorker: sweep finished",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Time("cutoff", cutoff),
		zap.Int("cancelled", len(result.Cancelled)),
		zap.Int("failed", len(result.Failed)),
	)
}

var systemActor = &models.Actor{Role: constvars.RoleAdmin}
