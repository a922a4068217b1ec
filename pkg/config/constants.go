package config

const (
	EnvPrefix = "VIEWER"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv                = "VIEWER_APP_ENV"
	EnvPort                  = "VIEWER_APP_PORT"
	EnvLogLevel              = "VIEWER_LOG_LEVEL"
	EnvLogFormat             = "VIEWER_LOG_FORMAT"
	EnvExposeInternalErrors  = "VIEWER_EXPOSE_INTERNAL_ERRORS"
	EnvDBDSN                 = "VIEWER_DB_DSN"
	EnvDBDriver              = "VIEWER_DB_DRIVER"
	EnvDBHost                = "VIEWER_DB_HOST"
	EnvDBUser                = "VIEWER_DB_USER"
	EnvDBName                = "VIEWER_DB_NAME"
	EnvRedisURL              = "VIEWER_REDIS_URL"
	EnvJWTSecret             = "VIEWER_JWT_SECRET"
	EnvBotURL                = "VIEWER_BOT_URL"
	EnvProcessorURL          = "VIEWER_PROCESSOR_URL"
	EnvViewerURL             = "VIEWER_PUBLIC_URL"
	EnvCacheBackend          = "VIEWER_CACHE_BACKEND"
	EnvCacheTTL              = "VIEWER_CACHE_TTL"
	EnvCacheCapacity         = "VIEWER_CACHE_CAPACITY"
	EnvCacheSweepInterval    = "VIEWER_CACHE_SWEEP_INTERVAL"
	EnvSnapshotSource        = "VIEWER_SNAPSHOT_SOURCE"
	EnvRetryAttempts         = "VIEWER_RETRY_ATTEMPTS"
	EnvRateLimitRPS          = "VIEWER_RATE_LIMIT_RPS"
	EnvRateLimitBurst        = "VIEWER_RATE_LIMIT_BURST"
	EnvTemplatePath          = "VIEWER_TEMPLATE_PATH"
	EnvStaticDir             = "VIEWER_STATIC_DIR"
	EnvAutoMigrate           = "VIEWER_AUTO_MIGRATE"
	EnvProcessorFetchTimeout = "VIEWER_PROCESSOR_TIMEOUT"
	EnvBotCallbackTimeout    = "VIEWER_BOT_TIMEOUT"

	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"

	SnapshotSourceDB        = "db"
	SnapshotSourceProcessor = "processor"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
