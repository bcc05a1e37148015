package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func init() {
	godotenv.Load()
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// NewDriverConfig reads infrastructure settings, e.g. POSTGRES_HOST overrides postgres.host.
func NewDriverConfig() (*DriverConfig, error) {
	v := newViper()

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.username", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.db_name", "consultation")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_open_connections", 25)
	v.SetDefault("postgres.max_idle_connections", 5)
	v.SetDefault("postgres.conn_max_lifetime_minutes", 30)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_file_name", "stdout")
	v.SetDefault("logger.output_error_file_name", "stderr")

	v.SetDefault("rabbitmq.host", "localhost")
	v.SetDefault("rabbitmq.port", "5672")
	v.SetDefault("rabbitmq.username", "guest")
	v.SetDefault("rabbitmq.password", "guest")

	v.SetDefault("minio.host", "localhost")
	v.SetDefault("minio.port", "9000")
	v.SetDefault("minio.username", "minioadmin")
	v.SetDefault("minio.password", "minioadmin")
	v.SetDefault("minio.use_ssl", false)

	var cfg DriverConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewInternalConfig reads application settings, e.g. APP_PORT overrides app.port.
func NewInternalConfig() (*InternalConfig, error) {
	v := newViper()

	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.version", "v1")
	v.SetDefault("app.address", "0.0.0.0")
	v.SetDefault("app.timezone", "Asia/Jakarta")
	v.SetDefault("app.endpoint_prefix", "api")
	v.SetDefault("app.max_requests", 100)
	v.SetDefault("app.shutdown_timeout_in_seconds", 10)
	v.SetDefault("app.request_body_limit_in_megabyte", 1)
	v.SetDefault("app.migration_dir", "internal/migration")

	v.SetDefault("jwt.secret", "")

	v.SetDefault("minio.report_bucket_name", "earnings-reports")
	v.SetDefault("minio.pre_signed_url_object_expiry_time_in_hours", 24)

	v.SetDefault("rabbitmq.settlement_event_queue", "consultation.settlement_events")

	v.SetDefault("payment_gateway.username", "")
	v.SetDefault("payment_gateway.api_key", "")
	v.SetDefault("payment_gateway.base_url", "http://localhost:9090")
	v.SetDefault("payment_gateway.currency", "IDR")
	v.SetDefault("payment_gateway.request_timeout_in_seconds", 10)
	v.SetDefault("payment_gateway.rate_limit_per_second", 20.0)
	v.SetDefault("payment_gateway.rate_limit_burst", 5)

	v.SetDefault("video_room.base_url", "http://localhost:9191")
	v.SetDefault("video_room.api_key", "")
	v.SetDefault("video_room.request_timeout_in_seconds", 5)

	v.SetDefault("settlement.default_emergency_fee", 25000)
	v.SetDefault("settlement.plan_cache_ttl_in_minutes", 10)
	v.SetDefault("settlement.stale_sweep_batch_size", 100)
	v.SetDefault("settlement.default_emergency_duration_minutes", 30)
	v.SetDefault("settlement.stale_sweep_cron_spec", "@every 15m")
	v.SetDefault("settlement.stale_sweep_grace_in_minutes", 30)

	var cfg InternalConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
