package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	Port        int
	DBURL       string
	ServiceName string

	JWTSecret   string
	JWTTTLHours int

	// bootstrap administrator, created when no row with this email exists
	AdminEmail     string
	AdminPassword  string
	AdminFirstName string
	AdminLastName  string

	// image storage
	StorageDriver  string // "local" | "minio"
	UploadsDir     string
	UploadsPrefix  string
	MaxUploadBytes int64
	MaxUploadFiles int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KBAUsername string
	KBABaseURL  string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	ContactInbox string

	CORSOrigins  []string
	OTLPEndpoint string
}

func Load() Config {
	// a missing .env is fine, the process env still applies
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "dev")

	return Config{
		Env:         env,
		Port:        getEnvInt("PORT", 8080),
		DBURL:       getEnv("DATABASE_URL", buildDBURL()),
		ServiceName: getEnv("SERVICE_NAME", "autoonline-api"),

		JWTSecret:   getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTTTLHours: getEnvInt("JWT_TTL_HOURS", 7*24),

		AdminEmail:     getEnv("ADMIN_EMAIL", "admin@admin.com"),
		AdminPassword:  getEnv("ADMIN_PASSWORD", "admin12345"),
		AdminFirstName: getEnv("ADMIN_FIRST_NAME", "Admin"),
		AdminLastName:  getEnv("ADMIN_LAST_NAME", "User"),

		StorageDriver:  getEnv("STORAGE_DRIVER", "local"),
		UploadsDir:     getEnv("UPLOADS_DIR", "uploads"),
		UploadsPrefix:  getEnv("UPLOADS_PREFIX", "/uploads"),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 5*1024*1024)),
		MaxUploadFiles: getEnvInt("MAX_UPLOAD_FILES", 15),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "listing-images"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		KBAUsername: getEnv("KBA_API_USERNAME", ""),
		KBABaseURL:  getEnv("KBA_API_URL", "https://www.kbaapi.de/api/reg.asmx/CheckGermany"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "no-reply@autoonline.local"),
		ContactInbox: getEnv("CONTACT_INBOX", ""),

		CORSOrigins:  getEnvList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}

func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

func (c Config) IsProd() bool {
	return c.Env == "prod"
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "autoonline")
	pass := getEnv("DB_PASSWORD", "autoonline")
	name := getEnv("DB_NAME", "autoonline")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %s=%q is not an integer, using %d\n", key, v, fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return b
	}
	return fallback
}

// comma separated, blanks dropped
func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
