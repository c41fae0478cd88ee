package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DB       DBConfig
	MinIO    MinIOConfig
	JWT      JWTConfig
	Server   ServerConfig
	Tenant   TenantConfig
	SMTP     SMTPConfig
	Calendar CalendarConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

type ServerConfig struct {
	Port string
}

type TenantConfig struct {
	// RootDomain is the bare platform domain; requests to it carry no
	// tenant context. Any other host resolves its leftmost label as a
	// tenant slug.
	RootDomain string
	// DevFallback substitutes the oldest tenant when a slug does not
	// resolve. Development escape hatch only; never enable in production.
	DevFallback bool
}

type SMTPConfig struct {
	Host string
	Port int
}

type CalendarConfig struct {
	// CredentialsFile points at a Google service-account JSON file.
	// Empty disables Meet-link creation.
	CredentialsFile string
	CalendarID      string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "staffdocs"),
			Password: getEnv("DB_PASSWORD", "staffdocs_secret"),
			Name:     getEnv("DB_NAME", "staffdocs"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "staffdocs"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "staffdocs_secret"),
			Bucket:    getEnv("MINIO_BUCKET", "staffdocs"),
			UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "change-me-in-production"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Tenant: TenantConfig{
			RootDomain:  getEnv("ROOT_DOMAIN", "localhost"),
			DevFallback: getEnvAsBool("TENANT_DEV_FALLBACK", false),
		},
		SMTP: SMTPConfig{
			Host: getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port: getEnvAsInt("SMTP_PORT", 465),
		},
		Calendar: CalendarConfig{
			CredentialsFile: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
			CalendarID:      getEnv("GOOGLE_CALENDAR_ID", "primary"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
