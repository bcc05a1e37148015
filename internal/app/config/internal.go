package config

type InternalConfig struct {
	App            App               `mapstructure:"app"`
	JWT            AppJWT            `mapstructure:"jwt"`
	Minio          AppMinio          `mapstructure:"minio"`
	RabbitMQ       AppRabbitMQ       `mapstructure:"rabbitmq"`
	PaymentGateway AppPaymentGateway `mapstructure:"payment_gateway"`
	VideoRoom      AppVideoRoom      `mapstructure:"video_room"`
	Settlement     AppSettlement     `mapstructure:"settlement"`
}

type App struct {
	Env                        string `mapstructure:"env"`
	Port                       string `mapstructure:"port"`
	Version                    string `mapstructure:"version"`
	Address                    string `mapstructure:"address"`
	Timezone                   string `mapstructure:"timezone"`
	EndpointPrefix             string `mapstructure:"endpoint_prefix"`
	MaxRequests                int    `mapstructure:"max_requests"`
	ShutdownTimeoutInSeconds   int    `mapstructure:"shutdown_timeout_in_seconds"`
	RequestBodyLimitInMegabyte int    `mapstructure:"request_body_limit_in_megabyte"`
	MigrationDir               string `mapstructure:"migration_dir"`
}

type AppJWT struct {
	Secret string `mapstructure:"secret"`
}

type AppMinio struct {
	ReportBucketName                         string `mapstructure:"report_bucket_name"`
	MinioPreSignedUrlObjectExpiryTimeInHours int    `mapstructure:"pre_signed_url_object_expiry_time_in_hours"`
}

type AppRabbitMQ struct {
	SettlementEventQueue string `mapstructure:"settlement_event_queue"`
}

type AppPaymentGateway struct {
	Username                string  `mapstructure:"username"`
	ApiKey                  string  `mapstructure:"api_key"`
	BaseUrl                 string  `mapstructure:"base_url"`
	Currency                string  `mapstructure:"currency"`
	RequestTimeoutInSeconds int     `mapstructure:"request_timeout_in_seconds"`
	RateLimitPerSecond      float64 `mapstructure:"rate_limit_per_second"`
	RateLimitBurst          int     `mapstructure:"rate_limit_burst"`
}

type AppVideoRoom struct {
	BaseUrl                 string `mapstructure:"base_url"`
	ApiKey                  string `mapstructure:"api_key"`
	RequestTimeoutInSeconds int    `mapstructure:"request_timeout_in_seconds"`
}

type AppSettlement struct {
	DefaultEmergencyFee          int64  `mapstructure:"default_emergency_fee"`
	PlanCacheTTLInMinutes        int    `mapstructure:"plan_cache_ttl_in_minutes"`
	StaleSweepBatchSize          int    `mapstructure:"stale_sweep_batch_size"`
	DefaultEmergencyDurationMins int    `mapstructure:"default_emergency_duration_minutes"`
	StaleSweepCronSpec           string `mapstructure:"stale_sweep_cron_spec"`
	StaleSweepGraceInMinutes     int    `mapstructure:"stale_sweep_grace_in_minutes"`
}
