package config

const (
	EnvPrefix = "PETCO"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "PETCO_APP_ENV"
	EnvPort     = "PETCO_APP_PORT"
	EnvLogLevel = "PETCO_LOG_LEVEL"

	EnvDBDSN  = "PETCO_DB_DSN"
	EnvDBHost = "PETCO_DB_HOST"
	EnvDBPort = "PETCO_DB_PORT"
	EnvDBUser = "PETCO_DB_USER"
	EnvDBPass = "PETCO_DB_PASSWORD"
	EnvDBName = "PETCO_DB_NAME"

	EnvRedisURL = "PETCO_REDIS_URL"

	EnvJWTSecret  = "PETCO_JWT_SECRET"
	EnvJWTIssuer  = "PETCO_JWT_ISSUER"
	EnvJWTExpMins = "PETCO_JWT_EXPIRATION_MINUTES"

	EnvUseSQLite = "PETCO_USE_SQLITE"

	EnvCheckoutStandardFee = "PETCO_CHECKOUT_STANDARD_FEE"
	EnvCheckoutExpressFee  = "PETCO_CHECKOUT_EXPRESS_FEE"

	EnvRazorpayKeyID     = "PETCO_RAZORPAY_KEY_ID"
	EnvRazorpayKeySecret = "PETCO_RAZORPAY_KEY_SECRET"

	EnvStorageBucket = "PETCO_STORAGE_BUCKET"
	EnvGCPProjectID  = "PETCO_GCP_PROJECT_ID"

	EnvPubSubOrdersTopic = "PETCO_PUBSUB_ORDERS_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
