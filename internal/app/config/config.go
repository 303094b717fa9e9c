package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DefaultAuthBaseURL     = "http://localhost:8001/api/auth"
	DefaultListingsBaseURL = "http://localhost:5000/api"
)

type APIConfig struct {
	BaseURL string `yaml:"base_url"`
}

type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"10s"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password  string `yaml:"password" env:"REDIS_PASSWORD"`
	DB        int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	KeyPrefix string `yaml:"key_prefix" env:"REDIS_KEY_PREFIX" env-default:"stay-client:"`
}

// StorageConfig selects the device-local key-value store that holds the
// session token and the user blob. Backend is one of file, redis, memory
// or none.
type StorageConfig struct {
	Backend    string      `yaml:"backend" env:"STORAGE_BACKEND" env-default:"file"`
	FilePath   string      `yaml:"file_path" env:"STORAGE_FILE_PATH"`
	Passphrase string      `yaml:"passphrase" env:"STORAGE_PASSPHRASE"`
	Redis      RedisConfig `yaml:"redis"`
}

type NATSConfig struct {
	URL            string        `yaml:"url" env:"NATS_URL"`
	SubjectPrefix  string        `yaml:"subject_prefix" env:"NATS_SUBJECT_PREFIX" env-default:"stayclient"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"NATS_CONNECT_TIMEOUT" env-default:"5s"`
	MaxReconnects  int           `yaml:"max_reconnects" env:"NATS_MAX_RECONNECTS" env-default:"5"`
	ReconnectWait  time.Duration `yaml:"reconnect_wait" env:"NATS_RECONNECT_WAIT" env-default:"2s"`
}

type MetricsConfig struct {
	Port string `yaml:"port" env:"METRICS_PORT"`
}

type TracingConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `yaml:"service_name" env:"OTEL_SERVICE_NAME" env-default:"stay-client"`
}

type LoggerConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding   string `yaml:"encoding" env:"LOG_ENCODING" env-default:"console"`
	TimeFormat string `yaml:"time_format" env:"LOG_TIME_FORMAT" env-default:"2006-01-02T15:04:05.000Z07:00"`
}

type ListingsConfig struct {
	PageSize int `yaml:"page_size" env:"LISTINGS_PAGE_SIZE" env-default:"20"`
}

type Config struct {
	Env         string         `yaml:"env" env:"ENV" env-default:"local"`
	AuthAPI     APIConfig      `yaml:"auth_api"`
	ListingsAPI APIConfig      `yaml:"listings_api"`
	HTTP        HTTPConfig     `yaml:"http"`
	Storage     StorageConfig  `yaml:"storage"`
	NATS        NATSConfig     `yaml:"nats"`
	Metrics     MetricsConfig  `yaml:"metrics"`
	Tracing     TracingConfig  `yaml:"tracing"`
	Logger      LoggerConfig   `yaml:"logger"`
	Listings    ListingsConfig `yaml:"listings"`
}

func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
		cfg.resolveBaseURLs()
		return &cfg, nil
	}

	err := cleanenv.ReadConfig(path, &cfg)
	if err != nil {
		if _, ok := err.(*os.PathError); ok {
			log.Printf("Warning: Config file not found at %s, attempting to load from environment variables only.", path)
			if errEnv := cleanenv.ReadEnv(&cfg); errEnv != nil {
				return nil, errEnv
			}
			cfg.resolveBaseURLs()
			return &cfg, nil
		}
		return nil, err
	}
	cfg.resolveBaseURLs()
	return &cfg, nil
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH_STAY_CLIENT")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	return cfg
}

// resolveBaseURLs applies env overrides, then the hardcoded defaults. The
// EXPO_PUBLIC_* names are the ones the mobile build used.
func (c *Config) resolveBaseURLs() {
	c.AuthAPI.BaseURL = firstNonEmpty(
		os.Getenv("AUTH_API_URL"),
		os.Getenv("EXPO_PUBLIC_AUTH_URL"),
		c.AuthAPI.BaseURL,
		DefaultAuthBaseURL,
	)
	c.ListingsAPI.BaseURL = firstNonEmpty(
		os.Getenv("LISTINGS_API_URL"),
		os.Getenv("EXPO_PUBLIC_LISTING_URL"),
		c.ListingsAPI.BaseURL,
		DefaultListingsBaseURL,
	)
	c.AuthAPI.BaseURL = strings.TrimRight(c.AuthAPI.BaseURL, "/")
	c.ListingsAPI.BaseURL = strings.TrimRight(c.ListingsAPI.BaseURL, "/")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
