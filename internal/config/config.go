package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type EscrowConfig struct {
	Env            string `yaml:"env" env:"ESCROW_ENV" env-default:"local"`
	GRPCServer     `yaml:"grpc_server"`
	HTTPServer     `yaml:"http_server"`
	EscrowDB       `yaml:"escrow_db"`
	LogConfig      `yaml:"log_config"`
	KafkaService   `yaml:"kafka-service"`
	ListingService `yaml:"listing-service"`
	PaymentGateway `yaml:"payment_gateway"`
	Escrow         EscrowSettings `yaml:"escrow"`
	RateLimit      `yaml:"rate_limit"`
}

type GRPCServer struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"50061"`
}

type HTTPServer struct {
	Host         string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port         string        `yaml:"port" env:"HTTP_PORT" env-default:"8086"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"10s"`
}

type EscrowDB struct {
	Driver       string `yaml:"driver" env:"ESCROW_DB_DRIVER" env-default:"postgres"`
	Dsn          string `yaml:"dsn" env:"ESCROW_DB_DSN"`
	MaxOpenConns int    `yaml:"max_open_conns" env-default:"20"`
}

type LogConfig struct {
	LogLevel   string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat  string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
	LogOutput  string `yaml:"log_output" env:"LOG_OUTPUT" env-default:"stdout"`
	MaxSizeMB  int    `yaml:"max_size_mb" env-default:"100"`
	MaxBackups int    `yaml:"max_backups" env-default:"5"`
	MaxAgeDays int    `yaml:"max_age_days" env-default:"30"`
}

type KafkaService struct {
	Enabled       bool     `yaml:"enabled" env:"KAFKA_ENABLED" env-default:"true"`
	Brokers       []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	EventsTopic   string   `yaml:"events_topic" env-default:"escrow-events"`
	PaymentsTopic string   `yaml:"payments_topic" env-default:"payment-confirmations"`
	GroupID       string   `yaml:"group_id" env-default:"escrow-service"`
}

type ListingService struct {
	Address string        `yaml:"address" env:"LISTING_SERVICE_ADDRESS"`
	Timeout time.Duration `yaml:"timeout" env-default:"5s"`
}

// PaymentGateway holds the shared secret the gateway presents on the manual
// fund route. The route is not served while Token is empty.
type PaymentGateway struct {
	Token string `yaml:"token" env:"PAYMENT_GATEWAY_TOKEN"`
}

type EscrowSettings struct {
	DefaultCurrency          string `yaml:"default_currency" env-default:"KES"`
	DefaultAutoReleaseDays   int    `yaml:"default_auto_release_days" env-default:"7"`
	DefaultDisputeWindowDays int    `yaml:"default_dispute_window_days" env-default:"3"`
	FingerprintAlgorithm     string `yaml:"fingerprint_algorithm" env-default:"sha256"`
	SweepSchedule            string `yaml:"sweep_schedule" env-default:"@every 1m"`
	SweepBatchSize           int    `yaml:"sweep_batch_size" env-default:"100"`
}

type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"50"`
	Burst int     `yaml:"burst" env-default:"100"`
}

// Load reads the YAML file at path and applies env overrides.
func Load(path string) (*EscrowConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	var cfg EscrowConfig
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if cfg.Escrow.DefaultAutoReleaseDays < 0 || cfg.Escrow.DefaultDisputeWindowDays < 0 {
		return nil, fmt.Errorf("escrow policy defaults must be non-negative")
	}
	return &cfg, nil
}

func MustLoad() *EscrowConfig {

	// Processing env config variable and file
	configPath := os.Getenv("ESCROW_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("ESCROW_CONFIG_PATH was not found\n")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("%v", err)
	}

	return cfg
}
