package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "PAYTAKSI"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Dispatch     DispatchConfig
	Pricing      PricingConfig
	Wallet       WalletConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	GoogleMaps   GoogleMapsConfig
	Outbox       OutboxConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Dispatch.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PAYTAKSI_APP_ENV" required:"true"`
	Port         string `envconfig:"PAYTAKSI_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PAYTAKSI_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PAYTAKSI_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PAYTAKSI_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PAYTAKSI_DB_DSN"`
	Driver string `envconfig:"PAYTAKSI_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"PAYTAKSI_DB_HOST"`
	Port     int    `envconfig:"PAYTAKSI_DB_PORT" default:"5432"`
	User     string `envconfig:"PAYTAKSI_DB_USER"`
	Password string `envconfig:"PAYTAKSI_DB_PASSWORD"`
	Name     string `envconfig:"PAYTAKSI_DB_NAME"`
	SSLMode  string `envconfig:"PAYTAKSI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PAYTAKSI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PAYTAKSI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PAYTAKSI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PAYTAKSI_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN assembles a postgres DSN from the discrete parts when no DSN was
// provided directly.
func (d *DBConfig) ensureDSN() error {
	if strings.TrimSpace(d.DSN) != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either PAYTAKSI_DB_DSN or host/user/name parts are required")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"PAYTAKSI_REDIS_URL"`
	Address      string        `envconfig:"PAYTAKSI_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"PAYTAKSI_REDIS_PASSWORD"`
	DB           int           `envconfig:"PAYTAKSI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PAYTAKSI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PAYTAKSI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PAYTAKSI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PAYTAKSI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PAYTAKSI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// DispatchConfig tunes candidate selection and offer fan-out.
type DispatchConfig struct {
	SearchRadiusKm    float64       `envconfig:"PAYTAKSI_DISPATCH_SEARCH_RADIUS_KM" default:"6"`
	MaxOffers         int           `envconfig:"PAYTAKSI_DISPATCH_MAX_OFFERS" default:"10"`
	PositionFreshness time.Duration `envconfig:"PAYTAKSI_DISPATCH_POSITION_FRESHNESS" default:"15m"`
}

func (d DispatchConfig) validate() error {
	if d.SearchRadiusKm <= 0 {
		return fmt.Errorf("PAYTAKSI_DISPATCH_SEARCH_RADIUS_KM must be > 0")
	}
	if d.MaxOffers <= 0 {
		return fmt.Errorf("PAYTAKSI_DISPATCH_MAX_OFFERS must be > 0")
	}
	if d.PositionFreshness <= 0 {
		return fmt.Errorf("PAYTAKSI_DISPATCH_POSITION_FRESHNESS must be > 0")
	}
	return nil
}

// PricingConfig holds the tariff parameters. Defaults match the production
// tariff: 3.50 base covering the first 3 km, 0.40 per km after, 10% commission.
type PricingConfig struct {
	BaseFare          decimal.Decimal `envconfig:"PAYTAKSI_PRICING_BASE_FARE" default:"3.50"`
	IncludedKm        decimal.Decimal `envconfig:"PAYTAKSI_PRICING_INCLUDED_KM" default:"3"`
	PerKmAfter        decimal.Decimal `envconfig:"PAYTAKSI_PRICING_PER_KM_AFTER" default:"0.40"`
	CommissionPercent decimal.Decimal `envconfig:"PAYTAKSI_PRICING_COMMISSION_PERCENT" default:"10"`
}

func (p PricingConfig) validate() error {
	if p.BaseFare.IsNegative() || p.IncludedKm.IsNegative() || p.PerKmAfter.IsNegative() {
		return fmt.Errorf("pricing parameters must be non-negative")
	}
	if p.CommissionPercent.IsNegative() || p.CommissionPercent.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("PAYTAKSI_PRICING_COMMISSION_PERCENT must be within [0,100]")
	}
	return nil
}

// WalletConfig holds the balance gate. Drivers with balance at or below the
// block threshold cannot accept new offers.
type WalletConfig struct {
	BlockThresholdCents int64 `envconfig:"PAYTAKSI_WALLET_BLOCK_THRESHOLD_CENTS" default:"-1000"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"PAYTAKSI_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	RideTopic                 string `envconfig:"PAYTAKSI_PUBSUB_RIDE_TOPIC" default:"ride-events"`
	WalletTopic               string `envconfig:"PAYTAKSI_PUBSUB_WALLET_TOPIC" default:"wallet-events"`
	NotificationsSubscription string `envconfig:"PAYTAKSI_PUBSUB_NOTIFICATIONS_SUBSCRIPTION" default:"ride-events-notifications"`
}

type GoogleMapsConfig struct {
	APIKey   string `envconfig:"PAYTAKSI_GOOGLE_MAPS_API_KEY"`
	Region   string `envconfig:"PAYTAKSI_GOOGLE_MAPS_REGION" default:"az"`
	Language string `envconfig:"PAYTAKSI_GOOGLE_MAPS_LANGUAGE" default:"az"`
}

type OutboxConfig struct {
	BatchSize    int           `envconfig:"PAYTAKSI_OUTBOX_BATCH_SIZE" default:"50"`
	PollInterval time.Duration `envconfig:"PAYTAKSI_OUTBOX_POLL_INTERVAL" default:"2s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PAYTAKSI_AUTO_MIGRATE" default:"false"`
}
