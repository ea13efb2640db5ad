package config // package config loads application configuration from environment variables

import (
	"log" // log is used to report configuration errors and halt execution
	"os"  // os provides access to environment variables

	"github.com/joho/godotenv" // godotenv reads a local .env file into the environment
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The database settings are optional: when DB_HOST
// is empty the audit trail of applied edits is disabled.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	LogLevel       string // zap level: debug, info, warn, error
	LogFormat      string // json or console
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address (optional)
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to verify operator JWTs
	MaxUploadBytes int64  // largest seat map accepted on upload
	AMQPURL        string // RabbitMQ URL for edit events (empty disables publishing)
	ConsumeEvents  bool   // run the edit-log consumer inside the server process
}

// Load reads a .env file when present, then builds a Config from the
// environment.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}
	return Config{
		Env:            envStr("APP_ENV", "dev"),
		Port:           must("APP_PORT"),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		LogFormat:      envStr("LOG_FORMAT", "json"),
		DBUser:         envStr("DB_USER", "root"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         os.Getenv("DB_HOST"),
		DBPort:         envStr("DB_PORT", "3306"),
		DBName:         envStr("DB_NAME", "seatmap"),
		JWTSecret:      must("JWT_SECRET"),
		MaxUploadBytes: int64(envInt("MAX_UPLOAD_BYTES", 20<<20)),
		AMQPURL:        AMQPURL(),
		ConsumeEvents:  envBool("EDIT_LOG_CONSUMER", false),
	}
}

// AuditEnabled reports whether a database is configured for the edit log.
func (c Config) AuditEnabled() bool { return c.DBHost != "" }

// AMQPURL returns RABBITMQ_URL, falling back to AMQP_URL.  Empty means no
// broker is configured.
func AMQPURL() string {
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		return url
	}
	return os.Getenv("AMQP_URL")
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
