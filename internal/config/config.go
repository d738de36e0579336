package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"alfredoptarigan/screenly/internal/validator"
)

type Config struct {
	Server      ServerConfig
	Logging     LoggingConfig
	Database    DatabaseConfig
	Qdrant      QdrantConfig
	Gemini      GeminiConfig
	Storage     StorageConfig
	Spreadsheet SpreadsheetConfig
	Worker      WorkerConfig

	// ExternalCallTimeout bounds every prompt, lookup, export and storage call.
	ExternalCallTimeout time.Duration `validate:"gt=0"`
}

type ServerConfig struct {
	Port string `validate:"required"`
	Env  string `validate:"oneof=development production test"`
}

type LoggingConfig struct {
	Level     string `validate:"oneof=debug info warn error"`
	GormLevel string `validate:"oneof=debug info warn error"`
}

type DatabaseConfig struct {
	Driver          string `validate:"oneof=postgres sqlite"`
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SQLitePath      string
	MaxOpenConns    int `validate:"gte=1"`
	MaxIdleConns    int `validate:"gte=0"`
	ConnMaxLifetime time.Duration
}

type QdrantConfig struct {
	Enabled    bool
	Host       string `validate:"required_if=Enabled true"`
	Port       int    `validate:"gte=0"`
	APIKey     string
	UseTLS     bool
	Collection string `validate:"required_if=Enabled true"`
	MinScore   float32
}

type GeminiConfig struct {
	APIKey         string
	Backend        string `validate:"oneof=gemini vertex"`
	Project        string `validate:"required_if=Backend vertex"`
	Location       string `validate:"required_if=Backend vertex"`
	Model          string `validate:"required"`
	EmbeddingModel string `validate:"required"`
	Temperature    float32
}

type StorageConfig struct {
	Backend        string `validate:"oneof=local minio"`
	UploadPath     string
	MaxFileSize    int64 `validate:"gt=0"`
	MinioEndpoint  string `validate:"required_if=Backend minio"`
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string `validate:"required_if=Backend minio"`
	MinioUseSSL    bool
	RetryAttempts  uint64
	RetryDelay     time.Duration
}

type SpreadsheetConfig struct {
	// Backend is "sheets", "xlsx" or empty for no spreadsheet.
	Backend             string `validate:"omitempty,oneof=sheets xlsx"`
	CredentialsFile     string `validate:"required_if=Backend sheets"`
	ProfilesSheetURL    string
	ResultsSheetURL     string
	ProfilesSheetName   string
	ResultsSheetName    string
	WorkbookPath        string `validate:"required_if=Backend xlsx"`
	ProfilesWorkbook    string
	RoleColumn          string
	ProfileWantedColumn string
}

type WorkerConfig struct {
	Concurrency  int `validate:"gte=1"`
	QueueSize    int `validate:"gte=1"`
	PollInterval time.Duration
	PollBatch    int `validate:"gte=1"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Logging: LoggingConfig{
			Level:     strings.ToLower(getEnv("LOG_LEVEL", "info")),
			GormLevel: strings.ToLower(getEnv("GORM_LOG_LEVEL", "warn")),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "postgres"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "screenly"),
			SQLitePath:      getEnv("SQLITE_PATH", "./screenly.db"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", "30m"),
		},
		Qdrant: QdrantConfig{
			Enabled:    getEnvAsBool("QDRANT_ENABLED", false),
			Host:       getEnv("QDRANT_HOST", "localhost"),
			Port:       getEnvAsInt("QDRANT_PORT", 6334),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			UseTLS:     getEnvAsBool("QDRANT_USE_TLS", false),
			Collection: getEnv("QDRANT_COLLECTION", "job_profiles"),
			MinScore:   float32(getEnvAsFloat("QDRANT_MIN_SCORE", 0.75)),
		},
		Gemini: GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Backend:        getEnv("GEMINI_BACKEND", "gemini"),
			Project:        getEnv("GOOGLE_CLOUD_PROJECT", ""),
			Location:       getEnv("GOOGLE_CLOUD_LOCATION", "us-central1"),
			Model:          getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			EmbeddingModel: getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004"),
			Temperature:    float32(getEnvAsFloat("GEMINI_TEMPERATURE", 0.2)),
		},
		Storage: StorageConfig{
			Backend:        getEnv("STORAGE_BACKEND", "local"),
			UploadPath:     getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize:    getEnvAsInt64("MAX_FILE_SIZE", 10485760),
			MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
			MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
			MinioBucket:    getEnv("MINIO_BUCKET", "cvs"),
			MinioUseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
			RetryAttempts:  uint64(getEnvAsInt("STORAGE_RETRY_ATTEMPTS", 3)),
			RetryDelay:     getEnvAsDuration("STORAGE_RETRY_DELAY", "500ms"),
		},
		Spreadsheet: SpreadsheetConfig{
			Backend:             getEnv("SPREADSHEET_BACKEND", ""),
			CredentialsFile:     getEnv("GOOGLE_CREDENTIALS_FILE", ""),
			ProfilesSheetURL:    getEnv("JOB_PROFILES_SHEET_URL", ""),
			ResultsSheetURL:     getEnv("RESULTS_SHEET_URL", ""),
			ProfilesSheetName:   getEnv("JOB_PROFILES_SHEET_NAME", "Profiles"),
			ResultsSheetName:    getEnv("RESULTS_SHEET_NAME", "Results"),
			WorkbookPath:        getEnv("RESULTS_WORKBOOK_PATH", "./results.xlsx"),
			ProfilesWorkbook:    getEnv("PROFILES_WORKBOOK_PATH", ""),
			RoleColumn:          getEnv("PROFILE_ROLE_COLUMN", "Role"),
			ProfileWantedColumn: getEnv("PROFILE_WANTED_COLUMN", "Profile Wanted"),
		},
		Worker: WorkerConfig{
			Concurrency:  getEnvAsInt("WORKER_CONCURRENCY", 3),
			QueueSize:    getEnvAsInt("WORKER_QUEUE_SIZE", 100),
			PollInterval: getEnvAsDuration("WORKER_POLL_INTERVAL", "10s"),
			PollBatch:    getEnvAsInt("WORKER_POLL_BATCH", 10),
		},
		ExternalCallTimeout: getEnvAsDuration("EXTERNAL_CALL_TIMEOUT", "60s"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Validate(c); err != nil {
		return fmt.Errorf("invalid configuration: %s", validator.Describe(err))
	}
	if c.Gemini.Backend == "gemini" && c.Gemini.APIKey == "" {
		return fmt.Errorf("invalid configuration: GEMINI_API_KEY is required for the gemini backend")
	}
	return nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
