package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Services     ServicesConfig
	Cache        CacheConfig
	Retry        RetryConfig
	Viewer       ViewerConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Services.normalize()
	return &cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Cache.Backend) {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if !c.Redis.Enabled() {
			return fmt.Errorf("%s=redis requires %s", EnvCacheBackend, EnvRedisURL)
		}
	default:
		return fmt.Errorf("unsupported cache backend %q", c.Cache.Backend)
	}
	switch strings.ToLower(c.Viewer.SnapshotSource) {
	case SnapshotSourceDB, SnapshotSourceProcessor:
	default:
		return fmt.Errorf("unsupported snapshot source %q", c.Viewer.SnapshotSource)
	}
	return nil
}

type AppConfig struct {
	Env                  string `envconfig:"VIEWER_APP_ENV" required:"true"`
	Port                 string `envconfig:"VIEWER_APP_PORT" default:"8080"`
	LogLevel             string `envconfig:"VIEWER_LOG_LEVEL" default:"info"`
	LogFormat            string `envconfig:"VIEWER_LOG_FORMAT" default:"json"`
	LogWarnStack         bool   `envconfig:"VIEWER_LOG_WARN_STACK" default:"false"`
	ExposeInternalErrors bool   `envconfig:"VIEWER_EXPOSE_INTERNAL_ERRORS" default:"true"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VIEWER_DB_DSN"`
	Driver string `envconfig:"VIEWER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VIEWER_DB_HOST"`
	LegacyPort     int    `envconfig:"VIEWER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VIEWER_DB_USER"`
	LegacyPassword string `envconfig:"VIEWER_DB_PASSWORD"`
	LegacyName     string `envconfig:"VIEWER_DB_NAME"`
	LegacySSLMode  string `envconfig:"VIEWER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VIEWER_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"VIEWER_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"VIEWER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VIEWER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite driver was selected (local runs only).
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, "sqlite")
}

type RedisConfig struct {
	URL          string        `envconfig:"VIEWER_REDIS_URL"`
	Address      string        `envconfig:"VIEWER_REDIS_ADDR"`
	Password     string        `envconfig:"VIEWER_REDIS_PASSWORD"`
	DB           int           `envconfig:"VIEWER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VIEWER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VIEWER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VIEWER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VIEWER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VIEWER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

// JWTConfig holds the shared secret used by the bot to sign viewer tokens.
type JWTConfig struct {
	Secret            string `envconfig:"VIEWER_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"VIEWER_JWT_ISSUER"`
	ExpirationMinutes int    `envconfig:"VIEWER_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type ServicesConfig struct {
	BotURL           string        `envconfig:"VIEWER_BOT_URL" default:"https://gioia-bot-production.up.railway.app"`
	ProcessorURL     string        `envconfig:"VIEWER_PROCESSOR_URL" default:"https://gioia-processor-production.up.railway.app"`
	ViewerURL        string        `envconfig:"VIEWER_PUBLIC_URL" default:"https://vineinventory-viewer-production.up.railway.app"`
	ProcessorTimeout time.Duration `envconfig:"VIEWER_PROCESSOR_TIMEOUT" default:"30s"`
	BotTimeout       time.Duration `envconfig:"VIEWER_BOT_TIMEOUT" default:"10s"`
}

func (s *ServicesConfig) normalize() {
	s.BotURL = NormalizeServiceURL(s.BotURL)
	s.ProcessorURL = NormalizeServiceURL(s.ProcessorURL)
	s.ViewerURL = NormalizeServiceURL(s.ViewerURL)
}

type CacheConfig struct {
	Backend       string        `envconfig:"VIEWER_CACHE_BACKEND" default:"memory"`
	TTL           time.Duration `envconfig:"VIEWER_CACHE_TTL" default:"1h"`
	Capacity      int           `envconfig:"VIEWER_CACHE_CAPACITY" default:"500"`
	SweepInterval time.Duration `envconfig:"VIEWER_CACHE_SWEEP_INTERVAL" default:"5m"`
}

type RetryConfig struct {
	Attempts int           `envconfig:"VIEWER_RETRY_ATTEMPTS" default:"5"`
	Delay    time.Duration `envconfig:"VIEWER_RETRY_DELAY" default:"2s"`
	MaxDelay time.Duration `envconfig:"VIEWER_RETRY_MAX_DELAY" default:"2s"`
}

type ViewerConfig struct {
	TemplatePath   string `envconfig:"VIEWER_TEMPLATE_PATH"`
	StaticDir      string `envconfig:"VIEWER_STATIC_DIR"`
	APIBase        string `envconfig:"VIEWER_API_BASE"`
	SnapshotSource string `envconfig:"VIEWER_SNAPSHOT_SOURCE" default:"db"`
}

// UseProcessor reports whether page generation reads from the processor service.
func (v ViewerConfig) UseProcessor() bool {
	return strings.EqualFold(v.SnapshotSource, SnapshotSourceProcessor)
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `envconfig:"VIEWER_RATE_LIMIT_RPS" default:"10"`
	Burst             int     `envconfig:"VIEWER_RATE_LIMIT_BURST" default:"20"`
	// TrustProxyHeaders keys clients on X-Forwarded-For / X-Real-IP. Enable only
	// behind a proxy that overwrites them.
	TrustProxyHeaders bool    `envconfig:"VIEWER_TRUST_PROXY_HEADERS" default:"false"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"VIEWER_AUTO_MIGRATE" default:"false"`
}

// NormalizeServiceURL trims trailing slashes and prepends https:// when the
// scheme is missing.
func NormalizeServiceURL(raw string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return ""
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "https://" + trimmed
	}
	return trimmed
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
