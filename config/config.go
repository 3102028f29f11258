package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// WindowConfig is one business-hours span of a policy, e.g. open "09:00", close "14:00".
type WindowConfig struct {
	Open           string `mapstructure:"open"`
	Close          string `mapstructure:"close"`
	CloseInclusive bool   `mapstructure:"closeInclusive"`
}

// PolicyConfig describes a booking form loaded from the POLICIES key.
type PolicyConfig struct {
	Interval int            `mapstructure:"interval"` // minutes, must divide 60
	Windows  []WindowConfig `mapstructure:"windows"`
	Weekend  []string       `mapstructure:"weekend"` // weekday names; empty means Saturday and Sunday
}

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	CORSOrigins       string `mapstructure:"CORS_ALLOWED_ORIGINS"` // comma separated; "*" allows all

	// Scheduling.
	BusinessTimezone string                  `mapstructure:"BUSINESS_TIMEZONE"`
	MinLeadTime      time.Duration           `mapstructure:"MIN_LEAD_TIME"`
	DefaultPolicy    string                  `mapstructure:"DEFAULT_POLICY"`
	Policies         map[string]PolicyConfig `mapstructure:"POLICIES"`

	// Record store.
	StoreDriver     string        `mapstructure:"STORE_DRIVER"` // airtable | mongo
	UpstreamTimeout time.Duration `mapstructure:"UPSTREAM_TIMEOUT"`
	UpstreamRetries int           `mapstructure:"UPSTREAM_RETRIES"`

	AirtableBaseURL          string `mapstructure:"AIRTABLE_BASE_URL"`
	AirtableBaseID           string `mapstructure:"AIRTABLE_BASE_ID"`
	AirtableToken            string `mapstructure:"AIRTABLE_TOKEN"`
	AirtableServicesTable    string `mapstructure:"AIRTABLE_TABLE_SERVICIOS"`
	AirtableAppointmentField string `mapstructure:"AIRTABLE_FIELD_CITA"`
	AirtableBlackoutsTable   string `mapstructure:"AIRTABLE_TABLE_BLOQUEOS"`

	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis backs the shared booking lock. Empty address means in-process locking.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisLockDB   int    `mapstructure:"REDIS_LOCK_DB"`

	// Admin authorization.
	AdminAuthMode     string `mapstructure:"ADMIN_AUTH_MODE"` // secret | jwt
	AdminPassword     string `mapstructure:"ADMIN_PASSWORD"`
	AdminPasswordHash string `mapstructure:"ADMIN_PASSWORD_HASH"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`

	// Background jobs.
	BlackoutRetentionDays int    `mapstructure:"BLACKOUT_RETENTION_DAYS"` // 0 disables the sweep
	RetentionSchedule     string `mapstructure:"RETENTION_SCHEDULE"`

	// Telemetry.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"` // empty disables tracing export
	ServiceName  string `mapstructure:"OTEL_SERVICE_NAME"`
}

var AppConfig Config

func LoadConfig() {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	viper.SetDefault("BUSINESS_TIMEZONE", "Europe/Madrid")
	viper.SetDefault("MIN_LEAD_TIME", "2h")
	viper.SetDefault("DEFAULT_POLICY", "diagnostic")

	viper.SetDefault("STORE_DRIVER", "airtable")
	viper.SetDefault("UPSTREAM_TIMEOUT", "5s")
	viper.SetDefault("UPSTREAM_RETRIES", 3)

	viper.SetDefault("AIRTABLE_BASE_URL", "https://api.airtable.com/v0")
	viper.SetDefault("AIRTABLE_BASE_ID", "")
	viper.SetDefault("AIRTABLE_TOKEN", "")
	viper.SetDefault("AIRTABLE_TABLE_SERVICIOS", "Servicios")
	viper.SetDefault("AIRTABLE_FIELD_CITA", "Cita técnico")
	viper.SetDefault("AIRTABLE_TABLE_BLOQUEOS", "Bloqueos")

	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "fieldservice")

	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_LOCK_DB", 0)

	viper.SetDefault("ADMIN_AUTH_MODE", "secret")
	viper.SetDefault("ADMIN_PASSWORD", "")
	viper.SetDefault("ADMIN_PASSWORD_HASH", "")
	viper.SetDefault("JWT_SECRET", "")

	viper.SetDefault("BLACKOUT_RETENTION_DAYS", 0)
	viper.SetDefault("RETENTION_SCHEDULE", "@daily")

	viper.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	viper.SetDefault("OTEL_SERVICE_NAME", "fieldservice")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
