package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port                   string `mapstructure:"PORT"`
	AllowedOrigin          string `mapstructure:"ALLOWED_ORIGIN"`
	DatabaseURL            string `mapstructure:"DATABASE_URL"`
	RedisAddr              string `mapstructure:"REDIS_ADDR"`
	RedisPassword          string `mapstructure:"REDIS_PASSWORD"`
	RedisDB                int    `mapstructure:"REDIS_DB"`
	ReceiptCacheTTLSeconds int    `mapstructure:"RECEIPT_CACHE_TTL_SECONDS"`
	SaleLockTTLSeconds     int    `mapstructure:"SALE_LOCK_TTL_SECONDS"`
	AuthSecret             string `mapstructure:"AUTH_SECRET"`
	AccessTokenTTLMinutes  int    `mapstructure:"ACCESS_TOKEN_TTL_MINUTES"`
	LogLevel               string `mapstructure:"LOG_LEVEL"`
	LogPretty              bool   `mapstructure:"LOG_PRETTY"`
	KafkaBrokers           string `mapstructure:"KAFKA_BROKERS"`
	KafkaStockTopic        string `mapstructure:"KAFKA_STOCK_TOPIC"`
	DefaultPhoneRegion     string `mapstructure:"DEFAULT_PHONE_REGION"`
	BootstrapAdminUsername string `mapstructure:"BOOTSTRAP_ADMIN_USERNAME"`
	BootstrapAdminPassword string `mapstructure:"BOOTSTRAP_ADMIN_PASSWORD"`
}

var defaults = map[string]any{
	"PORT":                      "8080",
	"ALLOWED_ORIGIN":            "http://127.0.0.1:3000",
	"DATABASE_URL":              "",
	"REDIS_ADDR":                "",
	"REDIS_PASSWORD":            "",
	"REDIS_DB":                  0,
	"RECEIPT_CACHE_TTL_SECONDS": 300,
	"SALE_LOCK_TTL_SECONDS":     10,
	"AUTH_SECRET":               "",
	"ACCESS_TOKEN_TTL_MINUTES":  480,
	"LOG_LEVEL":                 "info",
	"LOG_PRETTY":                false,
	"KAFKA_BROKERS":             "",
	"KAFKA_STOCK_TOPIC":         "dukaan.stock-movements",
	"DEFAULT_PHONE_REGION":      "PK",
	"BOOTSTRAP_ADMIN_USERNAME":  "admin",
	"BOOTSTRAP_ADMIN_PASSWORD":  "",
}

// Load reads the environment, plus the file named by CONFIG_FILE when set.
// Secrets have no defaults: an unset AUTH_SECRET stays empty.
func Load() (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if file := strings.TrimSpace(v.GetString("CONFIG_FILE")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	cfg.AuthSecret = strings.TrimSpace(cfg.AuthSecret)
	if cfg.ReceiptCacheTTLSeconds < 1 {
		cfg.ReceiptCacheTTLSeconds = 300
	}
	if cfg.SaleLockTTLSeconds < 1 {
		cfg.SaleLockTTLSeconds = 10
	}
	if cfg.AccessTokenTTLMinutes < 1 {
		cfg.AccessTokenTTLMinutes = 480
	}
	return cfg, nil
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) Brokers() []string {
	brokers := make([]string, 0)
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func (c Config) ReceiptCacheTTL() time.Duration {
	return time.Duration(c.ReceiptCacheTTLSeconds) * time.Second
}

func (c Config) SaleLockTTL() time.Duration {
	return time.Duration(c.SaleLockTTLSeconds) * time.Second
}

func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}
