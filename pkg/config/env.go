package config

// EnvPrefix is passed to envconfig; every field carries its full key.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv         = "BOOKSTORE_APP_ENV"
	EnvPort           = "BOOKSTORE_APP_PORT"
	EnvRedisURL       = "BOOKSTORE_REDIS_URL"
	EnvJWTSecret      = "BOOKSTORE_JWT_SECRET"
	EnvUseSQLite      = "BOOKSTORE_USE_SQLITE"
	EnvDBDSN          = "BOOKSTORE_DB_DSN"
	EnvDBHost         = "BOOKSTORE_DB_HOST"
	EnvDBUser         = "BOOKSTORE_DB_USER"
	EnvDBName         = "BOOKSTORE_DB_NAME"
	EnvEventingBroker = "BOOKSTORE_EVENTING_BROKER"
)

const (
	BrokerPubSub   = "pubsub"
	BrokerRabbitMQ = "rabbitmq"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const defaultSQLiteDSN = "file:bookstore.db?_foreign_keys=on"

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
