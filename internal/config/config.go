package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Gemini   GeminiConfig
	Removal  RemovalConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Supabase SupabaseConfig
	Database DatabaseConfig
	Storage  StorageConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// GeminiConfig drives the generative-image call. An empty APIKey short-circuits
// the pipeline straight to the fallback image.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// RemovalConfig holds the background-removal provider credentials. Any empty
// key simply disables that provider; the chain skips it without a network call.
type RemovalConfig struct {
	RemoveBgAPIKey    string
	RemoveBgBaseURL   string
	ClipdropAPIKey    string
	ClipdropBaseURL   string
	ReplicateAPIToken string
	ReplicateBaseURL  string
	AttemptTimeout    time.Duration
	PollInterval      time.Duration
	PollDeadline      time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	URL string
}

type SupabaseConfig struct {
	URL    string
	KEY    string
	BUCKET string
}

type DatabaseConfig struct {
	Path string
}

type StorageConfig struct {
	MaxFileSize int64
	UploadPath  string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDuration("READ_TIMEOUT", 60*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 120*time.Second),
		},
		Gemini: GeminiConfig{
			APIKey:  getEnv("GOOGLE_API_KEY", ""),
			BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.5-flash-image"),
			Timeout: getDuration("GEMINI_TIMEOUT", 40*time.Second),
		},
		Removal: RemovalConfig{
			RemoveBgAPIKey:    getEnv("REMOVEBG_API_KEY", ""),
			RemoveBgBaseURL:   getEnv("REMOVEBG_BASE_URL", "https://api.remove.bg"),
			ClipdropAPIKey:    getEnv("CLIPDROP_API_KEY", ""),
			ClipdropBaseURL:   getEnv("CLIPDROP_BASE_URL", "https://clipdrop-api.co"),
			ReplicateAPIToken: getEnv("REPLICATE_API_TOKEN", ""),
			ReplicateBaseURL:  getEnv("REPLICATE_BASE_URL", "https://api.replicate.com"),
			AttemptTimeout:    getDuration("REMOVAL_TIMEOUT", 30*time.Second),
			PollInterval:      getDuration("REMOVAL_POLL_INTERVAL", time.Second),
			PollDeadline:      getDuration("REMOVAL_POLL_DEADLINE", 120*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RabbitMQ: RabbitMQConfig{
			URL: getEnv("RABBITMQ_URL", ""),
		},
		Supabase: SupabaseConfig{
			URL:    getEnv("SUPABASE_URL", ""),
			KEY:    getEnv("SUPABASE_KEY", ""),
			BUCKET: getEnv("SUPABASE_BUCKET", ""),
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./outfits.db"),
		},
		Storage: StorageConfig{
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10*1024*1024), // 10MB
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}
