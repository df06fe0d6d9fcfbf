package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Redis      RedisConfig
	RabbitMQ   RabbitMQConfig
	Conversion ConversionConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Mode         string
}

// RedisConfig configures the batch statistics store. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RabbitMQConfig configures batch event publishing. An empty URL disables it.
type RabbitMQConfig struct {
	URL   string
	Queue string
}

type ConversionConfig struct {
	Workers       int
	FileTimeout   time.Duration
	FailurePolicy string
	MaxUploadSize int64
	MaxMemory     int64
	MaxPixels     int64
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "5002"),
			ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 5*time.Minute),
			Mode:         getEnv("GIN_MODE", "release"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   getEnv("RABBITMQ_URL", ""),
			Queue: getEnv("RABBITMQ_QUEUE", "image_conversion_events"),
		},
		Conversion: ConversionConfig{
			Workers:       getEnvAsInt("CONVERSION_WORKERS", runtime.NumCPU()),
			FileTimeout:   getDuration("CONVERSION_FILE_TIMEOUT", 30*time.Second),
			FailurePolicy: getEnv("CONVERSION_FAILURE_POLICY", "abort"),
			MaxUploadSize: getEnvAsInt64("MAX_UPLOAD_SIZE", 256*1024*1024), // 256MB
			MaxMemory:     getEnvAsInt64("MAX_MULTIPART_MEMORY", 32*1024*1024),
			MaxPixels:     getEnvAsInt64("CONVERSION_MAX_PIXELS", 64<<20),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("GIN_MODE must be debug, release or test, got %q", c.Server.Mode))
	}
	if c.Conversion.Workers <= 0 {
		errs = append(errs, fmt.Errorf("CONVERSION_WORKERS must be positive, got %d", c.Conversion.Workers))
	}
	if c.Conversion.FileTimeout < 0 {
		errs = append(errs, fmt.Errorf("CONVERSION_FILE_TIMEOUT must not be negative, got %s", c.Conversion.FileTimeout))
	}
	switch c.Conversion.FailurePolicy {
	case "abort", "skip":
	default:
		errs = append(errs, fmt.Errorf("CONVERSION_FAILURE_POLICY must be abort or skip, got %q", c.Conversion.FailurePolicy))
	}
	if c.Conversion.MaxUploadSize <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_SIZE must be positive, got %d", c.Conversion.MaxUploadSize))
	}
	if c.Conversion.MaxPixels <= 0 {
		errs = append(errs, fmt.Errorf("CONVERSION_MAX_PIXELS must be positive, got %d", c.Conversion.MaxPixels))
	}
	if c.Conversion.MaxMemory <= 0 {
		errs = append(errs, fmt.Errorf("MAX_MULTIPART_MEMORY must be positive, got %d", c.Conversion.MaxMemory))
	}

	return errors.Join(errs...)
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
