package config

import (
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	Provider     string // gemini | openai
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string

	GatewayTimeout time.Duration
	MaxUploadBytes int64

	CORSAllowedOrigins []string
	DatabaseURL        string
	ArchiveRetention   time.Duration // 0 keeps everything

	MinioEndpoint  string
	MinioRegion    string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	TelegramBotToken string // bot disabled when empty
	WebhookURL       string // long polling when empty

	LogLevel slog.Level
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing required env %s", k)
	}
	return v
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		log.Printf("bad %s=%q, using %d", k, v, def)
	}
	return def
}

func getEnvBool(k string, def bool) bool {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Load reads .env (if present) and the process environment. The API key of the
// selected provider is required; the process exits without it.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "8000"),

		Provider:    strings.ToLower(getEnv("GATEWAY_PROVIDER", "gemini")),
		GeminiModel: getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		OpenAIModel: getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		GatewayTimeout: time.Duration(getEnvInt("GATEWAY_TIMEOUT_SEC", 120)) * time.Second,
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_MB", 20)) << 20,

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		ArchiveRetention:   time.Duration(getEnvInt("ARCHIVE_RETENTION_DAYS", 0)) * 24 * time.Hour,

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "question-scans"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		WebhookURL:       getEnv("TELEGRAM_WEBHOOK_URL", ""),

		LogLevel: parseLevel(getEnv("LOG_LEVEL", "info")),
	}

	switch cfg.Provider {
	case "gemini":
		cfg.GeminiAPIKey = mustEnv("GEMINI_API_KEY")
		cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", "")
	case "openai", "gpt":
		cfg.Provider = "openai"
		cfg.OpenAIAPIKey = mustEnv("OPENAI_API_KEY")
		cfg.GeminiAPIKey = getEnv("GEMINI_API_KEY", "")
	default:
		log.Fatalf("unknown GATEWAY_PROVIDER %q (gemini|openai)", cfg.Provider)
	}
	return cfg
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
