package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Eventing      EventingConfig
	Checkout      CheckoutConfig
	Razorpay      RazorpayConfig
	Storage       StorageConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PETCO_APP_ENV" required:"true"`
	Port         string `envconfig:"PETCO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PETCO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PETCO_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"PETCO_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	parts := strings.Split(a.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

type ServiceConfig struct {
	Kind string `envconfig:"PETCO_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PETCO_DB_DSN"`
	Driver string `envconfig:"PETCO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PETCO_DB_HOST"`
	LegacyPort     int    `envconfig:"PETCO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PETCO_DB_USER"`
	LegacyPassword string `envconfig:"PETCO_DB_PASSWORD"`
	LegacyName     string `envconfig:"PETCO_DB_NAME"`
	LegacySSLMode  string `envconfig:"PETCO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PETCO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PETCO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PETCO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PETCO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PETCO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PETCO_REDIS_ADDR"`
	Password     string        `envconfig:"PETCO_REDIS_PASSWORD"`
	DB           int           `envconfig:"PETCO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PETCO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PETCO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PETCO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PETCO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PETCO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PETCO_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PETCO_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PETCO_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// TTL returns the configured access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PETCO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PETCO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PETCO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PETCO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PETCO_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"PETCO_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"PETCO_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"PETCO_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"PETCO_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"PETCO_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"PETCO_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PETCO_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PETCO_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"PETCO_EVENTING_IDEMPOTENCY_TTL" default:"24h"`
}

type CheckoutConfig struct {
	StandardShippingFee string `envconfig:"PETCO_CHECKOUT_STANDARD_FEE" default:"50"`
	ExpressShippingFee  string `envconfig:"PETCO_CHECKOUT_EXPRESS_FEE" default:"100"`
}

// Fees parses the configured shipping fees.
func (c CheckoutConfig) Fees() (standard, express decimal.Decimal, err error) {
	standard, err = decimal.NewFromString(strings.TrimSpace(c.StandardShippingFee))
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("invalid %s: %w", EnvCheckoutStandardFee, err)
	}
	express, err = decimal.NewFromString(strings.TrimSpace(c.ExpressShippingFee))
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("invalid %s: %w", EnvCheckoutExpressFee, err)
	}
	return standard, express, nil
}

type RazorpayConfig struct {
	KeyID     string        `envconfig:"PETCO_RAZORPAY_KEY_ID"`
	KeySecret string        `envconfig:"PETCO_RAZORPAY_KEY_SECRET"`
	BaseURL   string        `envconfig:"PETCO_RAZORPAY_BASE_URL" default:"https://api.razorpay.com"`
	Timeout   time.Duration `envconfig:"PETCO_RAZORPAY_TIMEOUT" default:"10s"`
}

type StorageConfig struct {
	Bucket          string `envconfig:"PETCO_STORAGE_BUCKET"`
	Region          string `envconfig:"PETCO_STORAGE_REGION" default:"ap-south-1"`
	Endpoint        string `envconfig:"PETCO_STORAGE_ENDPOINT"`
	AccessKeyID     string `envconfig:"PETCO_STORAGE_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"PETCO_STORAGE_SECRET_ACCESS_KEY"`
	PublicBaseURL   string `envconfig:"PETCO_STORAGE_PUBLIC_BASE_URL"`
	MaxUploadMB     int    `envconfig:"PETCO_MAX_UPLOAD_MB" default:"10"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PETCO_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"PETCO_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"PETCO_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic   string `envconfig:"PETCO_PUBSUB_ORDERS_TOPIC" default:"petco-order-events"`
	BookingsTopic string `envconfig:"PETCO_PUBSUB_BOOKINGS_TOPIC" default:"petco-booking-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"PETCO_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"PETCO_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"PETCO_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval               time.Duration `envconfig:"PETCO_CRON_INTERVAL" default:"1h"`
	LockKey                string        `envconfig:"PETCO_CRON_LOCK_KEY" default:"cron-worker"`
	LockTTL                time.Duration `envconfig:"PETCO_CRON_LOCK_TTL" default:"10m"`
	SelectionRetentionDays int           `envconfig:"PETCO_CRON_SELECTION_RETENTION_DAYS" default:"30"`
}

func (db *DBConfig) ensureDSN(sqlite bool) error {
	if db.DSN != "" {
		return nil
	}
	if sqlite {
		db.DSN = "file:petco.db?cache=shared"
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
