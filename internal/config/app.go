package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const DefaultConfigPath = "config.yaml"

type HTTPServer struct {
	Port string `mapstructure:"port"`
}

// ExchangeAPI describes the rates endpoint; the request URL is
// BaseURL + EndPoint + CurrencyQuery.
type ExchangeAPI struct {
	BaseURL       string `mapstructure:"base_url"`
	EndPoint      string `mapstructure:"end_point"`
	CurrencyQuery string `mapstructure:"currency_query"`
}

type HTTPClient struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

func (c HTTPClient) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type Scheduler struct {
	RefreshIntervalSec int `mapstructure:"refresh_interval_sec"`
}

func (c Scheduler) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSec) * time.Second
}

type Cache struct {
	MaxItems int64 `mapstructure:"max_items"`
	TTLSec   int   `mapstructure:"ttl_sec"`
}

func (c Cache) TTL() time.Duration {
	return time.Duration(c.TTLSec) * time.Second
}

type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type Archive struct {
	Enabled bool `mapstructure:"enabled"`
}

type DbServer struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Pass     string `mapstructure:"pass"`
	Name     string `mapstructure:"name"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (config *DbServer) GetConnectionStr() string {
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=disable",
		config.User, config.Pass, config.Host, config.Port, config.Name,
	)
}

type AppConfig struct {
	HTTPServer  HTTPServer  `mapstructure:"http_server"`
	ExchangeAPI ExchangeAPI `mapstructure:"exchange_api"`
	HTTPClient  HTTPClient  `mapstructure:"http_client"`
	Scheduler   Scheduler   `mapstructure:"scheduler"`
	Cache       Cache       `mapstructure:"cache"`
	Logging     Logging     `mapstructure:"logging"`
	Archive     Archive     `mapstructure:"archive"`
	DbServer    DbServer    `mapstructure:"db_server"`
}

// Init loads .env (if present) and the config file named by CONFIG_PATH,
// falling back to config.yaml. Missing files leave defaults and env in place.
func Init() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	_ = v.BindEnv("config_path", "CONFIG_PATH")
	v.SetDefault("config_path", DefaultConfigPath)
	return Load(v, v.GetString("config_path"))
}

func Load(v *viper.Viper, path string) (*AppConfig, error) {
	var cfg AppConfig

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.SetDefault("http_server.port", "8080")
	v.SetDefault("exchange_api.base_url", "https://api.fiscaldata.treasury.gov/services/api/fiscal_service/")
	v.SetDefault("exchange_api.end_point", "v1/accounting/od/rates_of_exchange")
	v.SetDefault("exchange_api.currency_query", "?fields=currency,exchange_rate,record_date&sort=-record_date&page[size]=1000")
	v.SetDefault("http_client.timeout_seconds", 10)
	v.SetDefault("scheduler.refresh_interval_sec", 3600)
	v.SetDefault("cache.max_items", 16)
	v.SetDefault("cache.ttl_sec", 300)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("archive.enabled", false)
	v.SetDefault("db_server.max_conns", 10)

	// http server env vars
	_ = v.BindEnv("http_server.port", "HTTP_PORT")

	// exchange api env vars
	_ = v.BindEnv("exchange_api.base_url", "EXCHANGE_API_BASE_URL")
	_ = v.BindEnv("exchange_api.end_point", "EXCHANGE_API_END_POINT")
	_ = v.BindEnv("exchange_api.currency_query", "EXCHANGE_API_CURRENCY_QUERY")

	// http client env vars
	_ = v.BindEnv("http_client.timeout_seconds", "HTTP_CLIENT_TIMEOUT_SECONDS")

	// logging env vars
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.file", "LOG_FILE")

	// archive and db server env vars
	_ = v.BindEnv("archive.enabled", "ARCHIVE_ENABLED")
	_ = v.BindEnv("db_server.host", "DB_HOST")
	_ = v.BindEnv("db_server.port", "DB_PORT")
	_ = v.BindEnv("db_server.user", "DB_USER")
	_ = v.BindEnv("db_server.pass", "DB_PASS")
	_ = v.BindEnv("db_server.name", "DB_NAME")
	_ = v.BindEnv("db_server.max_conns", "DB_MAX_CONNS")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if cfg.ExchangeAPI.BaseURL == "" {
		return nil, errors.New("exchange api base url is required")
	}

	return &cfg, nil
}
