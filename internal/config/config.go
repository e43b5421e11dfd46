// Package config loads settlementd settings from flags, SETTLEMENT_* environment
// variables and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/MarkoPoloResearchLab/settlement/pkg/pricing"
	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

const (
	EnvPrefix = "SETTLEMENT"

	StoreDriverGorm   = "gorm"
	StoreDriverPgx    = "pgx"
	StoreDriverMongo  = "mongo"
	StoreDriverMemory = "memory"

	GatewaySandbox = "sandbox"
	GatewayOmise   = "omise"

	defaultDatabaseURL       = "sqlite:///tmp/settlement.db"
	defaultMongoDatabase     = "settlement"
	defaultHTTPListenAddr    = ":8080"
	defaultGRPCListenAddr    = ":7000"
	defaultAllowedOrigin     = "http://localhost:8000"
	defaultSessionIssuer     = "tauth"
	defaultSessionCookie     = "app_session"
	defaultCurrency          = "usd"
	defaultExternalTimeout   = 10 * time.Second
	defaultConflictRetries   = 3
	defaultLogFormat         = "json"
	defaultLogLevel          = "info"
	defaultHoldWindow        = 72 * time.Hour
	defaultCommissionRate    = "20"
	defaultTaxRate           = "18"
	defaultSchedulerWorkers  = 4
	defaultSchedulerQueue    = 256
	defaultInitialBackoff    = 500 * time.Millisecond
	defaultMaxBackoff        = 30 * time.Second
	defaultMaxAttempts       = 5
	defaultCooldown          = 5 * time.Minute
	defaultNotifyQueue       = 1024
	defaultAMQPExchange      = "booking.events"
	defaultKafkaTopic        = "booking-events"
	defaultS3Bucket          = "settlement-receipts"
	defaultServiceName       = "settlementd"
	defaultDeploymentEnviron = "dev"
)

// ErrInvalidConfig is returned by Validate and Load.
var ErrInvalidConfig = errors.New("invalid configuration")

// VerticalConfig is the configurable policy of one vertical.
type VerticalConfig struct {
	RatePerUnit    int64            `mapstructure:"rate_per_unit"`
	CommissionRate string           `mapstructure:"commission_rate"`
	TaxRate        string           `mapstructure:"tax_rate"`
	HoldWindow     time.Duration    `mapstructure:"hold_window"`
	ProviderRates  map[string]int64 `mapstructure:"provider_rates"`
}

// SchedulerConfig tunes the release scheduler.
type SchedulerConfig struct {
	Workers        int           `mapstructure:"workers"`
	QueueSize      int           `mapstructure:"queue_size"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	Cooldown       time.Duration `mapstructure:"cooldown"`
}

// NotifyConfig selects the notification sinks. Empty addresses disable a sink.
type NotifyConfig struct {
	QueueSize    int      `mapstructure:"queue_size"`
	AMQPURL      string   `mapstructure:"amqp_url"`
	AMQPExchange string   `mapstructure:"amqp_exchange"`
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	KafkaTopic   string   `mapstructure:"kafka_topic"`
	S3Endpoint   string   `mapstructure:"s3_endpoint"`
	S3AccessKey  string   `mapstructure:"s3_access_key"`
	S3SecretKey  string   `mapstructure:"s3_secret_key"`
	S3Bucket     string   `mapstructure:"s3_bucket"`
	S3UseSSL     bool     `mapstructure:"s3_use_ssl"`
}

// GatewayConfig selects the payment gateway.
type GatewayConfig struct {
	Driver           string            `mapstructure:"driver"`
	OmisePublicKey   string            `mapstructure:"omise_public_key"`
	OmiseSecretKey   string            `mapstructure:"omise_secret_key"`
	OmiseCustomers   map[string]string `mapstructure:"omise_customers"`
	OmiseRecipients  map[string]string `mapstructure:"omise_recipients"`
	DeclinedCustomer []string          `mapstructure:"declined_customers"`
}

// TracingConfig configures OTLP export.
type TracingConfig struct {
	Endpoint    string `mapstructure:"otlp_endpoint"`
	Insecure    bool   `mapstructure:"otlp_insecure"`
	ServiceName string `mapstructure:"service_name"`
	Environment string `mapstructure:"environment"`
}

// Config aggregates runtime settings for settlementd.
type Config struct {
	DatabaseURL        string                    `mapstructure:"database_url"`
	StoreDriver        string                    `mapstructure:"store_driver"`
	MongoDatabase      string                    `mapstructure:"mongo_database"`
	HTTPListenAddr     string                    `mapstructure:"http_listen_addr"`
	GRPCListenAddr     string                    `mapstructure:"grpc_listen_addr"`
	AllowedOrigins     []string                  `mapstructure:"allowed_origins"`
	SessionSigningKey  string                    `mapstructure:"session_signing_key"`
	SessionIssuer      string                    `mapstructure:"session_issuer"`
	SessionCookieName  string                    `mapstructure:"session_cookie_name"`
	OperatorIDs        []string                  `mapstructure:"operator_ids"`
	Currency           string                    `mapstructure:"currency"`
	ExternalTimeout    time.Duration             `mapstructure:"external_timeout"`
	MaxConflictRetries int                       `mapstructure:"max_conflict_retries"`
	LogFormat          string                    `mapstructure:"log_format"`
	LogLevel           string                    `mapstructure:"log_level"`
	Scheduler          SchedulerConfig           `mapstructure:"scheduler"`
	Notify             NotifyConfig              `mapstructure:"notify"`
	Gateway            GatewayConfig             `mapstructure:"gateway"`
	Tracing            TracingConfig             `mapstructure:"tracing"`
	Verticals          map[string]VerticalConfig `mapstructure:"verticals"`
}

// Default returns the built-in configuration. The signing key stays empty.
func Default() Config {
	return Config{
		DatabaseURL:        defaultDatabaseURL,
		StoreDriver:        StoreDriverGorm,
		MongoDatabase:      defaultMongoDatabase,
		HTTPListenAddr:     defaultHTTPListenAddr,
		GRPCListenAddr:     defaultGRPCListenAddr,
		AllowedOrigins:     []string{defaultAllowedOrigin},
		SessionIssuer:      defaultSessionIssuer,
		SessionCookieName:  defaultSessionCookie,
		Currency:           defaultCurrency,
		ExternalTimeout:    defaultExternalTimeout,
		MaxConflictRetries: defaultConflictRetries,
		LogFormat:          defaultLogFormat,
		LogLevel:           defaultLogLevel,
		Scheduler: SchedulerConfig{
			Workers:        defaultSchedulerWorkers,
			QueueSize:      defaultSchedulerQueue,
			InitialBackoff: defaultInitialBackoff,
			MaxBackoff:     defaultMaxBackoff,
			MaxAttempts:    defaultMaxAttempts,
			Cooldown:       defaultCooldown,
		},
		Notify: NotifyConfig{
			QueueSize:    defaultNotifyQueue,
			AMQPExchange: defaultAMQPExchange,
			KafkaTopic:   defaultKafkaTopic,
			S3Bucket:     defaultS3Bucket,
		},
		Gateway: GatewayConfig{Driver: GatewaySandbox},
		Tracing: TracingConfig{ServiceName: defaultServiceName, Environment: defaultDeploymentEnviron},
		Verticals: map[string]VerticalConfig{
			string(settlement.VerticalTraining):  defaultVertical(4500),
			string(settlement.VerticalWalk):      defaultVertical(2000),
			string(settlement.VerticalSitting):   defaultVertical(6000),
			string(settlement.VerticalTransport): defaultVertical(3000),
			string(settlement.VerticalWash):      defaultVertical(2500),
		},
	}
}

func defaultVertical(ratePerUnit int64) VerticalConfig {
	return VerticalConfig{
		RatePerUnit:    ratePerUnit,
		CommissionRate: defaultCommissionRate,
		TaxRate:        defaultTaxRate,
		HoldWindow:     defaultHoldWindow,
	}
}

// Validate fills empty optional values and ensures the rest are sane.
func (cfg *Config) Validate() error {
	cfg.DatabaseURL = defaultIfEmpty(cfg.DatabaseURL, defaultDatabaseURL)
	cfg.StoreDriver = strings.ToLower(defaultIfEmpty(cfg.StoreDriver, StoreDriverGorm))
	cfg.MongoDatabase = defaultIfEmpty(cfg.MongoDatabase, defaultMongoDatabase)
	cfg.SessionIssuer = defaultIfEmpty(cfg.SessionIssuer, defaultSessionIssuer)
	cfg.SessionCookieName = defaultIfEmpty(cfg.SessionCookieName, defaultSessionCookie)
	cfg.Gateway.Driver = strings.ToLower(defaultIfEmpty(cfg.Gateway.Driver, GatewaySandbox))
	cfg.AllowedOrigins = normalizeList(cfg.AllowedOrigins)
	cfg.OperatorIDs = normalizeList(cfg.OperatorIDs)
	cfg.Notify.KafkaBrokers = normalizeList(cfg.Notify.KafkaBrokers)

	switch cfg.StoreDriver {
	case StoreDriverGorm, StoreDriverPgx, StoreDriverMongo, StoreDriverMemory:
	default:
		return fmt.Errorf("%w: unsupported store driver %q", ErrInvalidConfig, cfg.StoreDriver)
	}
	if strings.TrimSpace(cfg.HTTPListenAddr) == "" && strings.TrimSpace(cfg.GRPCListenAddr) == "" {
		return fmt.Errorf("%w: at least one of http or grpc listen addr is required", ErrInvalidConfig)
	}
	if len(cfg.SessionSigningKey) == 0 {
		return fmt.Errorf("%w: session signing key is required", ErrInvalidConfig)
	}
	if _, err := pricing.NormalizeCurrency(cfg.Currency); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if cfg.ExternalTimeout <= 0 {
		return fmt.Errorf("%w: external timeout must be positive", ErrInvalidConfig)
	}
	if cfg.MaxConflictRetries < 0 {
		return fmt.Errorf("%w: max conflict retries must not be negative", ErrInvalidConfig)
	}
	switch cfg.Gateway.Driver {
	case GatewaySandbox:
	case GatewayOmise:
		if cfg.Gateway.OmisePublicKey == "" || cfg.Gateway.OmiseSecretKey == "" {
			return fmt.Errorf("%w: omise gateway requires public and secret keys", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unsupported gateway %q", ErrInvalidConfig, cfg.Gateway.Driver)
	}
	if len(cfg.Notify.KafkaBrokers) > 0 && strings.TrimSpace(cfg.Notify.KafkaTopic) == "" {
		return fmt.Errorf("%w: kafka topic is required with brokers", ErrInvalidConfig)
	}
	if cfg.Notify.AMQPURL != "" && strings.TrimSpace(cfg.Notify.AMQPExchange) == "" {
		return fmt.Errorf("%w: amqp exchange is required with a url", ErrInvalidConfig)
	}
	if cfg.Notify.S3Endpoint != "" && strings.TrimSpace(cfg.Notify.S3Bucket) == "" {
		return fmt.Errorf("%w: s3 bucket is required with an endpoint", ErrInvalidConfig)
	}
	if _, err := cfg.PolicyTable(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// PolicyTable converts the vertical settings into settlement policies.
func (cfg Config) PolicyTable() (settlement.PolicyTable, error) {
	policies := make(map[settlement.Vertical]settlement.VerticalPolicy, len(cfg.Verticals))
	for name, vertical := range cfg.Verticals {
		parsed, err := settlement.ParseVertical(name)
		if err != nil {
			return settlement.PolicyTable{}, err
		}
		commission, err := pricing.ParseRate(vertical.CommissionRate)
		if err != nil {
			return settlement.PolicyTable{}, fmt.Errorf("%s commission rate: %w", name, err)
		}
		tax, err := pricing.ParseRate(vertical.TaxRate)
		if err != nil {
			return settlement.PolicyTable{}, fmt.Errorf("%s tax rate: %w", name, err)
		}
		policies[parsed] = settlement.VerticalPolicy{
			RatePerUnit:           vertical.RatePerUnit,
			CommissionRatePercent: commission,
			TaxRatePercent:        tax,
			HoldWindow:            vertical.HoldWindow,
			ProviderRates:         vertical.ProviderRates,
		}
	}
	return settlement.NewPolicyTable(cfg.Currency, policies)
}

// IsOperator reports whether id is a configured platform operator.
func (cfg Config) IsOperator(id string) bool {
	for _, operatorID := range cfg.OperatorIDs {
		if operatorID == id {
			return true
		}
	}
	return false
}

// Load resolves the configuration from v. Flags must already be bound; a
// non-empty configFile is read as YAML.
func Load(v *viper.Viper, configFile string) (Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())
	if strings.TrimSpace(configFile) != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.AllowedOrigins = splitEach(cfg.AllowedOrigins)
	cfg.OperatorIDs = splitEach(cfg.OperatorIDs)
	cfg.Notify.KafkaBrokers = splitEach(cfg.Notify.KafkaBrokers)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, defaults Config) {
	v.SetDefault("database_url", defaults.DatabaseURL)
	v.SetDefault("store_driver", defaults.StoreDriver)
	v.SetDefault("mongo_database", defaults.MongoDatabase)
	v.SetDefault("http_listen_addr", defaults.HTTPListenAddr)
	v.SetDefault("grpc_listen_addr", defaults.GRPCListenAddr)
	v.SetDefault("allowed_origins", defaults.AllowedOrigins)
	v.SetDefault("session_signing_key", defaults.SessionSigningKey)
	v.SetDefault("session_issuer", defaults.SessionIssuer)
	v.SetDefault("session_cookie_name", defaults.SessionCookieName)
	v.SetDefault("operator_ids", defaults.OperatorIDs)
	v.SetDefault("currency", defaults.Currency)
	v.SetDefault("external_timeout", defaults.ExternalTimeout)
	v.SetDefault("max_conflict_retries", defaults.MaxConflictRetries)
	v.SetDefault("log_format", defaults.LogFormat)
	v.SetDefault("log_level", defaults.LogLevel)

	v.SetDefault("scheduler.workers", defaults.Scheduler.Workers)
	v.SetDefault("scheduler.queue_size", defaults.Scheduler.QueueSize)
	v.SetDefault("scheduler.initial_backoff", defaults.Scheduler.InitialBackoff)
	v.SetDefault("scheduler.max_backoff", defaults.Scheduler.MaxBackoff)
	v.SetDefault("scheduler.max_attempts", defaults.Scheduler.MaxAttempts)
	v.SetDefault("scheduler.cooldown", defaults.Scheduler.Cooldown)

	v.SetDefault("notify.queue_size", defaults.Notify.QueueSize)
	v.SetDefault("notify.amqp_url", defaults.Notify.AMQPURL)
	v.SetDefault("notify.amqp_exchange", defaults.Notify.AMQPExchange)
	v.SetDefault("notify.kafka_brokers", defaults.Notify.KafkaBrokers)
	v.SetDefault("notify.kafka_topic", defaults.Notify.KafkaTopic)
	v.SetDefault("notify.s3_endpoint", defaults.Notify.S3Endpoint)
	v.SetDefault("notify.s3_access_key", defaults.Notify.S3AccessKey)
	v.SetDefault("notify.s3_secret_key", defaults.Notify.S3SecretKey)
	v.SetDefault("notify.s3_bucket", defaults.Notify.S3Bucket)
	v.SetDefault("notify.s3_use_ssl", defaults.Notify.S3UseSSL)

	v.SetDefault("gateway.driver", defaults.Gateway.Driver)
	v.SetDefault("gateway.omise_public_key", defaults.Gateway.OmisePublicKey)
	v.SetDefault("gateway.omise_secret_key", defaults.Gateway.OmiseSecretKey)

	v.SetDefault("tracing.otlp_endpoint", defaults.Tracing.Endpoint)
	v.SetDefault("tracing.otlp_insecure", defaults.Tracing.Insecure)
	v.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)
	v.SetDefault("tracing.environment", defaults.Tracing.Environment)

	names := make([]string, 0, len(defaults.Verticals))
	for name := range defaults.Verticals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		vertical := defaults.Verticals[name]
		prefix := "verticals." + name + "."
		v.SetDefault(prefix+"rate_per_unit", vertical.RatePerUnit)
		v.SetDefault(prefix+"commission_rate", vertical.CommissionRate)
		v.SetDefault(prefix+"tax_rate", vertical.TaxRate)
		v.SetDefault(prefix+"hold_window", vertical.HoldWindow)
	}
}

func defaultIfEmpty(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

// ParseList splits a comma-delimited value into trimmed, non-empty items.
func ParseList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	normalized := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	return normalized
}

func splitEach(values []string) []string {
	var result []string
	for _, value := range values {
		result = append(result, ParseList(value)...)
	}
	return result
}

func normalizeList(values []string) []string {
	normalized := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	return normalized
}
