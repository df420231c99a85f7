package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Redis    RedisConfig    `yaml:"redis"`
	Storage  StorageConfig  `yaml:"storage"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Search   SearchConfig   `yaml:"search"`
	Telegram TelegramConfig `yaml:"telegram"`
	Logger   LoggerConfig   `yaml:"logger"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type JWTConfig struct {
	SecretKey  string        `yaml:"secret_key"`
	Expiration time.Duration `yaml:"expiration"`
	RefreshExp time.Duration `yaml:"refresh_expiration"`
}

// RedisConfig is optional. With an empty Addr document locks stay in-process.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type StorageConfig struct {
	UploadDir     string `yaml:"upload_dir"`
	MaxUploadSize int    `yaml:"max_upload_size"`
}

type IngestConfig struct {
	ChunkSize    int           `yaml:"chunk_size"`
	ChunkOverlap int           `yaml:"chunk_overlap"`
	Workers      int           `yaml:"workers"`
	QueueSize    int           `yaml:"queue_size"`
	LockTTL      time.Duration `yaml:"lock_ttl"`
}

type SearchConfig struct {
	MaxResults    int     `yaml:"max_results"`
	MinScore      float64 `yaml:"min_score"`
	DisplayLimit  int     `yaml:"display_limit"`
	SnippetLength int     `yaml:"snippet_length"`
}

type TelegramConfig struct {
	PollTimeout int     `yaml:"poll_timeout"`
	RateLimit   float64 `yaml:"rate_limit"`
	RateBurst   int     `yaml:"rate_burst"`
}

func Load() (*Config, error) {
	// .env is optional, plain environment variables work too (Docker/K8s)
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshExp, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	maxUpload, _ := strconv.Atoi(getEnv("MAX_UPLOAD_SIZE_MB", "16"))
	chunkSize, _ := strconv.Atoi(getEnv("INGEST_CHUNK_SIZE", "1000"))
	chunkOverlap, _ := strconv.Atoi(getEnv("INGEST_CHUNK_OVERLAP", "200"))
	workers, _ := strconv.Atoi(getEnv("INGEST_WORKERS", "2"))
	queueSize, _ := strconv.Atoi(getEnv("INGEST_QUEUE_SIZE", "100"))
	lockTTL, _ := strconv.Atoi(getEnv("INGEST_LOCK_TTL_SECONDS", "300"))
	maxResults, _ := strconv.Atoi(getEnv("SEARCH_MAX_RESULTS", "5"))
	minScore, _ := strconv.ParseFloat(getEnv("SEARCH_MIN_SCORE", "0.1"), 64)
	displayLimit, _ := strconv.Atoi(getEnv("SEARCH_DISPLAY_LIMIT", "3"))
	snippetLength, _ := strconv.Atoi(getEnv("SEARCH_SNIPPET_LENGTH", "300"))
	pollTimeout, _ := strconv.Atoi(getEnv("TELEGRAM_POLL_TIMEOUT", "60"))
	rateLimit, _ := strconv.ParseFloat(getEnv("TELEGRAM_RATE_LIMIT", "1"), 64)
	rateBurst, _ := strconv.Atoi(getEnv("TELEGRAM_RATE_BURST", "5"))

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "kbbot"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Storage: StorageConfig{
			UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
			MaxUploadSize: maxUpload * 1024 * 1024,
		},
		Ingest: IngestConfig{
			ChunkSize:    chunkSize,
			ChunkOverlap: chunkOverlap,
			Workers:      workers,
			QueueSize:    queueSize,
			LockTTL:      time.Duration(lockTTL) * time.Second,
		},
		Search: SearchConfig{
			MaxResults:    maxResults,
			MinScore:      minScore,
			DisplayLimit:  displayLimit,
			SnippetLength: snippetLength,
		},
		Telegram: TelegramConfig{
			PollTimeout: pollTimeout,
			RateLimit:   rateLimit,
			RateBurst:   rateBurst,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyFile overlays values present in a YAML file on top of the env config.
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Ingest.ChunkSize <= 0 {
		return fmt.Errorf("ingest chunk size must be positive, got %d", c.Ingest.ChunkSize)
	}
	if c.Ingest.ChunkOverlap < 0 || c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		return fmt.Errorf("ingest chunk overlap must be in [0, %d), got %d", c.Ingest.ChunkSize, c.Ingest.ChunkOverlap)
	}
	if c.Ingest.Workers <= 0 {
		c.Ingest.Workers = 1
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 5
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
