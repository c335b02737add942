package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret string
}

type ExternalServicesConfig struct {
	LPRServiceURL    string
	LPRInternalToken string
}

type BillingConfig struct {
	RatePerMinute        int64
	MinimumChargeMinutes int64
	Currency             string
	InvoiceDir           string
}

type GateConfig struct {
	DebounceWindow time.Duration
	InternalToken  string
}

// SlotsConfig is the fixed capacity per slot class, applied once when the
// slot table is empty.
type SlotsConfig struct {
	Small  int
	Medium int
	Large  int
	XL     int
}

type Config struct {
	Environment      string
	HTTP             HTTPConfig
	DB               DBConfig
	Auth             AuthConfig
	ExternalServices ExternalServicesConfig
	Billing          BillingConfig
	Gate             GateConfig
	Slots            SlotsConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		ExternalServices: ExternalServicesConfig{
			LPRServiceURL:    v.GetString("LPR_SERVICE_URL"),
			LPRInternalToken: v.GetString("LPR_INTERNAL_TOKEN"),
		},
		Billing: BillingConfig{
			RatePerMinute:        v.GetInt64("BILLING_RATE_PER_MINUTE"),
			MinimumChargeMinutes: v.GetInt64("BILLING_MIN_CHARGE_MINUTES"),
			Currency:             v.GetString("BILLING_CURRENCY"),
			InvoiceDir:           v.GetString("INVOICE_DIR"),
		},
		Gate: GateConfig{
			DebounceWindow: v.GetDuration("GATE_DEBOUNCE_WINDOW"),
			InternalToken:  v.GetString("GATE_INTERNAL_TOKEN"),
		},
		Slots: SlotsConfig{
			Small:  v.GetInt("SLOTS_SMALL"),
			Medium: v.GetInt("SLOTS_MEDIUM"),
			Large:  v.GetInt("SLOTS_LARGE"),
			XL:     v.GetInt("SLOTS_XL"),
		},
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Billing.RatePerMinute == 0 {
		cfg.Billing.RatePerMinute = 2
	}
	if cfg.Billing.MinimumChargeMinutes == 0 {
		cfg.Billing.MinimumChargeMinutes = 1
	}
	if cfg.Billing.Currency == "" {
		cfg.Billing.Currency = "₹"
	}
	if cfg.Billing.InvoiceDir == "" {
		cfg.Billing.InvoiceDir = "output"
	}
	if cfg.Gate.DebounceWindow == 0 {
		cfg.Gate.DebounceWindow = 30 * time.Second
	}
	if cfg.Slots.Small == 0 {
		cfg.Slots.Small = 20
	}
	if cfg.Slots.Medium == 0 {
		cfg.Slots.Medium = 40
	}
	if cfg.Slots.Large == 0 {
		cfg.Slots.Large = 30
	}
	if cfg.Slots.XL == 0 {
		cfg.Slots.XL = 10
	}
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Billing.RatePerMinute < 0 {
		return fmt.Errorf("BILLING_RATE_PER_MINUTE must not be negative")
	}
	return nil
}
