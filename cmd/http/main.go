package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"consultation-service/internal/app/config"
	"consultation-service/internal/app/delivery/http/controllers"
	"consultation-service/internal/app/delivery/http/middlewares"
	"consultation-service/internal/app/delivery/http/routers"
	"consultation-service/internal/app/drivers/database"
	"consultation-service/internal/app/drivers/logger"
	"consultation-service/internal/app/drivers/messaging"
	"consultation-service/internal/app/drivers/storage"
	"consultation-service/internal/app/services/core/appointments"
	"consultation-service/internal/app/services/core/billing"
	"consultation-service/internal/app/services/core/earnings"
	"consultation-service/internal/app/services/core/plans"
	"consultation-service/internal/app/services/core/quotas"
	"consultation-service/internal/app/services/core/settlement"
	"consultation-service/internal/app/services/shared/events"
	"consultation-service/internal/app/services/shared/locker"
	"consultation-service/internal/app/services/shared/payment_gateway"
	"consultation-service/internal/app/services/shared/rbac"
	"consultation-service/internal/app/services/shared/redis"
	sharedStorage "consultation-service/internal/app/services/shared/storage"
	"consultation-service/internal/app/services/shared/videoroom"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func main() {
	driverConfig, err := config.NewDriverConfig()
	if err != nil {
		log.Fatalf("Error loading driver config: %v", err)
	}
	internalConfig, err := config.NewInternalConfig()
	if err != nil {
		log.Fatalf("Error loading internal config: %v", err)
	}

	zapLogger := logger.NewZapLogger(driverConfig, internalConfig)

	location, err := time.LoadLocation(internalConfig.App.Timezone)
	if err != nil {
		log.Fatalf("Error loading location: %v", err)
	}
	time.Local = location

	bootstrap := &config.Bootstrap{
		Router:         chi.NewRouter(),
		Postgres:       database.NewPostgresDB(driverConfig),
		Redis:          database.NewRedisClient(driverConfig),
		Logger:         zapLogger,
		RabbitMQ:       messaging.NewRabbitMQ(driverConfig),
		Minio:          storage.NewMinio(driverConfig, internalConfig),
		InternalConfig: internalConfig,
		DriverConfig:   driverConfig,
	}

	sweepWorker, err := bootstrapingTheApp(bootstrap)
	if err != nil {
		log.Fatalf("Error bootstraping the app: %v", err)
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	sweepWorker.Start(workerCtx)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", internalConfig.App.Address, internalConfig.App.Port),
		Handler: bootstrap.Router,
	}

	go func() {
		zapLogger.Info("Server listening", zap.String("address", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	log.Println("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeoutInSeconds),
	)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	stopWorkers()
	sweepWorker.Stop()

	err = bootstrap.Shutdown(shutdownCtx)
	if err != nil {
		log.Printf("Error closing drivers: %v", err)
	}

	log.Println("Server exiting")
}

func bootstrapingTheApp(bootstrap *config.Bootstrap) (*appointments.StaleSweepWorker, error) {
	cfg := bootstrap.InternalConfig
	log := bootstrap.Logger

	// Shared
	redisRepository := redis.NewRedisRepository(bootstrap.Redis)
	lockerService := locker.NewLockService(redisRepository, log)
	minioStorage := sharedStorage.NewMinioStorage(bootstrap.Minio)
	paymentGateway := payment_gateway.NewPaymentGatewayService(cfg, log)
	videoRoomService := videoroom.NewVideoRoomService(cfg, log)
	accessControl, err := rbac.NewAccessControl(log)
	if err != nil {
		return nil, err
	}
	eventPublisher, err := events.NewSettlementEventPublisher(bootstrap.RabbitMQ, log, cfg.RabbitMQ.SettlementEventQueue)
	if err != nil {
		return nil, err
	}

	// Repositories
	appointmentRepository := appointments.NewAppointmentPostgresRepository(bootstrap.Postgres)
	planRepository := plans.NewPlanPostgresRepository(bootstrap.Postgres)
	quotaRepository := quotas.NewQuotaPostgresRepository(bootstrap.Postgres)
	billingRepository := billing.NewBillingPostgresRepository(bootstrap.Postgres)
	earningsRepository := earnings.NewEarningsPostgresRepository(bootstrap.Postgres)

	// Usecases
	planCatalog := plans.NewPlanCatalog(planRepository, redisRepository, cfg, log)
	quotaUsecase := quotas.NewQuotaUsecase(quotaRepository, planCatalog, log)
	earningsUsecase := earnings.NewEarningsUsecase(
		earningsRepository,
		appointmentRepository,
		billingRepository,
		quotaUsecase,
		minioStorage,
		cfg,
		log,
	)
	settlementUsecase := settlement.NewSettlementUsecase(
		appointmentRepository,
		billingRepository,
		quotaUsecase,
		paymentGateway,
		eventPublisher,
		earningsUsecase,
		accessControl,
		cfg,
		log,
	)
	appointmentUsecase := appointments.NewAppointmentUsecase(
		appointmentRepository,
		settlementUsecase,
		videoRoomService,
		eventPublisher,
		accessControl,
		cfg,
		log,
	)

	// Delivery
	middlewares := middlewares.NewMiddlewares(log, cfg, accessControl)
	appointmentController := controllers.NewAppointmentController(log, appointmentUsecase)
	paymentController := controllers.NewPaymentController(log, settlementUsecase)
	quotaController := controllers.NewQuotaController(log, quotaUsecase, accessControl)
	earningsController := controllers.NewEarningsController(log, earningsUsecase, accessControl, cfg)

	routers.SetupRoutes(
		bootstrap.Router,
		cfg,
		middlewares,
		appointmentController,
		paymentController,
		quotaController,
		earningsController,
	)

	sweepWorker := appointments.NewStaleSweepWorker(log, cfg, lockerService, appointmentUsecase)
	return sweepWorker, nil
}
