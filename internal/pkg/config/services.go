package config

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/jcmexdev/purchase-sagas/internal/pkg/storage"
)

// Environment variable prefixes, one per binary.
const (
	GatewayPrefix  = "GATEWAY"
	IdentityPrefix = "IDENTITY"
	OrdersPrefix   = "ORDERS"
	BillingPrefix  = "BILLING"
)

var logLevels = []any{"debug", "info", "warn", "error"}

// Common holds the settings every service shares.
type Common struct {
	Port            int           `mapstructure:"port"`
	LogLevel        string        `mapstructure:"log_level"`
	OTLPEndpoint    string        `mapstructure:"otel_exporter_otlp_endpoint"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func (c *Common) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.LogLevel, validation.In(logLevels...)),
		validation.Field(&c.ShutdownTimeout, validation.Required),
	)
}

type Gateway struct {
	Common `mapstructure:",squash"`

	IdentityURL string `mapstructure:"identity_url"`
	OrdersURL   string `mapstructure:"orders_url"`
	BillingURL  string `mapstructure:"billing_url"`

	RemoteTimeout          time.Duration `mapstructure:"remote_timeout"`
	ReconcileRetryAttempts uint          `mapstructure:"reconcile_retry_attempts"`
	ReconcileRetryDelay    time.Duration `mapstructure:"reconcile_retry_delay"`

	// SagaLogPath selects the SQLite saga log; empty keeps it in memory.
	SagaLogPath string `mapstructure:"saga_log_path"`

	// KafkaBrokers enables outcome events when set.
	KafkaBrokers string `mapstructure:"kafka_brokers"`
	KafkaTopic   string `mapstructure:"kafka_topic"`

	// KafkaPublishTimeout bounds the delivery of one outcome event.
	KafkaPublishTimeout time.Duration `mapstructure:"kafka_publish_timeout"`
}

func DefaultGateway() *Gateway {
	return &Gateway{
		Common: Common{
			Port:            8000,
			LogLevel:        "info",
			ShutdownTimeout: 10 * time.Second,
		},
		IdentityURL:            "http://localhost:8001",
		OrdersURL:              "http://localhost:8002",
		BillingURL:             "http://localhost:8003",
		RemoteTimeout:          5 * time.Second,
		ReconcileRetryAttempts: 1,
		ReconcileRetryDelay:    200 * time.Millisecond,
		KafkaTopic:             "purchase-outcomes",
		KafkaPublishTimeout:    2 * time.Second,
	}
}

func (c *Gateway) Validate() error {
	if err := c.Common.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.IdentityURL, validation.Required, is.URL),
		validation.Field(&c.OrdersURL, validation.Required, is.URL),
		validation.Field(&c.BillingURL, validation.Required, is.URL),
		validation.Field(&c.RemoteTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.ReconcileRetryAttempts, validation.Required, validation.Max(uint(10))),
		validation.Field(&c.KafkaPublishTimeout, validation.Required, validation.Min(time.Millisecond)),
	)
}

type Registry struct {
	Common `mapstructure:",squash"`

	StoreBackend string `mapstructure:"store_backend"`
	PebbleDir    string `mapstructure:"pebble_dir"`
	RedisAddr    string `mapstructure:"redis_addr"`
}

func DefaultRegistry(port int, dataDir string) *Registry {
	return &Registry{
		Common: Common{
			Port:            port,
			LogLevel:        "info",
			ShutdownTimeout: 10 * time.Second,
		},
		StoreBackend: storage.BackendMemory,
		PebbleDir:    dataDir,
		RedisAddr:    "localhost:6379",
	}
}

func (c *Registry) Validate() error {
	if err := c.Common.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.StoreBackend, validation.Required,
			validation.In(storage.BackendMemory, storage.BackendPebble, storage.BackendRedis)),
		validation.Field(&c.PebbleDir, validation.When(c.StoreBackend == storage.BackendPebble, validation.Required)),
		validation.Field(&c.RedisAddr, validation.When(c.StoreBackend == storage.BackendRedis, validation.Required)),
	)
}

// StorageOptions maps the registry settings onto storage.Open.
func (c *Registry) StorageOptions(namespace string) storage.Options {
	return storage.Options{
		Backend:   c.StoreBackend,
		PebbleDir: c.PebbleDir,
		RedisAddr: c.RedisAddr,
		Namespace: namespace,
	}
}

type Billing struct {
	Registry `mapstructure:",squash"`

	// PaymentApprovalRate is the share of charges approved.
	PaymentApprovalRate float64 `mapstructure:"payment_approval_rate"`
	// PaymentDeclineAbove declines every charge above it; zero disables it.
	PaymentDeclineAbove float64 `mapstructure:"payment_decline_above"`
}

func DefaultBilling() *Billing {
	return &Billing{
		Registry:            *DefaultRegistry(8003, "./data/billing"),
		PaymentApprovalRate: 0.9,
	}
}

func (c *Billing) Validate() error {
	if err := c.Registry.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.PaymentApprovalRate, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.PaymentDeclineAbove, validation.Min(0.0)),
	)
}
