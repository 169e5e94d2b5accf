package config

import (
	"os"
	"strconv"
	"time"
)

type InsuranceServiceConfig struct {
	Port         string
	LogDir       string
	StoreTimeout time.Duration
	PostgresCfg  PostgresConfig
	RedisCfg     RedisConfig
	RabbitMQCfg  RabbitMQConfig
	MinioCfg     MinioConfig
	LoaderCfg    LoaderConfig
}

type PostgresConfig struct {
	DBname         string
	Username       string
	Password       string
	Host           string
	Port           string
	ConnectTimeout time.Duration
}

type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RabbitMQConfig with an empty Host disables reconciliation alerts.
type RabbitMQConfig struct {
	Host           string
	Username       string
	Password       string
	Port           string
	VHost          string
	Heartbeat      time.Duration
	PublishTimeout time.Duration
}

type MinioConfig struct {
	MinioURL       string
	MinioAccessKey string
	MinioSecretKey string
	MinioLocation  string
	MinioSecure    string
}

type LoaderConfig struct {
	Source  string
	CSVDir  string
	Bucket  string
	Workers int
}

func New() *InsuranceServiceConfig {
	storeTimeout := getDurationOrDefault("STORE_TIMEOUT", 5*time.Second)
	return &InsuranceServiceConfig{
		Port:         getEnvOrDefault("PORT", "8085"),
		LogDir:       getEnvOrDefault("LOG_DIR", "/aseguradora/log/insurance_service"),
		StoreTimeout: storeTimeout,
		PostgresCfg: PostgresConfig{
			DBname:         getEnvOrDefault("POSTGRES_DB", "aseguradora_db"),
			Username:       getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password:       getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			Host:           getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:           getEnvOrDefault("POSTGRES_PORT", "5432"),
			ConnectTimeout: storeTimeout,
		},
		RedisCfg: RedisConfig{
			Host:         getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:         getEnvOrDefault("REDIS_PORT", "6379"),
			Password:     getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:           getIntOrDefault("REDIS_DB", 0),
			DialTimeout:  storeTimeout,
			ReadTimeout:  getDurationOrDefault("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDurationOrDefault("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		RabbitMQCfg: RabbitMQConfig{
			Host:           getEnvOrDefault("RABBITMQ_HOST", ""),
			Username:       getEnvOrDefault("RABBITMQ_USER", "admin"),
			Password:       getEnvOrDefault("RABBITMQ_PWD", "admin"),
			Port:           getEnvOrDefault("RABBITMQ_PORT", "5672"),
			VHost:          getEnvOrDefault("RABBITMQ_VHOST", "/"),
			Heartbeat:      getDurationOrDefault("RABBITMQ_HEARTBEAT", 10*time.Second),
			PublishTimeout: getDurationOrDefault("RABBITMQ_PUBLISH_TIMEOUT", storeTimeout),
		},
		MinioCfg: MinioConfig{
			MinioURL:       getEnvOrDefault("MINIO_ENDPOINT", "http://localhost:9407"),
			MinioAccessKey: getEnvOrDefault("MINIO_ACCESS_KEY", "minio"),
			MinioSecretKey: getEnvOrDefault("MINIO_SECRET_KEY", "minio123"),
			MinioLocation:  getEnvOrDefault("MINIO_LOCATION", "us-east-1"),
			MinioSecure:    getEnvOrDefault("MINIO_SECURE", "false"),
		},
		LoaderCfg: LoaderConfig{
			Source:  getEnvOrDefault("LOADER_SOURCE", "fs"),
			CSVDir:  getEnvOrDefault("LOADER_CSV_DIR", "csv/"),
			Bucket:  getEnvOrDefault("LOADER_BUCKET", "aseguradora-datasets"),
			Workers: getIntOrDefault("LOADER_WORKERS", 4),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnvOrDefault(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnvOrDefault(key, ""))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
