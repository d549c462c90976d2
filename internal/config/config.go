package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Service holds process-level settings shared by both binaries.
type Service struct {
	Environment string `envconfig:"SERVICE_ENVIRONMENT" required:"true"`
	APIPort     string `envconfig:"SERVICE_API_PORT" default:"8080"`
	BaseURL     string `envconfig:"SERVICE_BASE_URL" default:"http://localhost:8080"`
	TestHosts   string `envconfig:"SERVICE_TEST_HOSTS" default:"localhost,127.0.0.1,staging.wieder-lebendig.de"`
}

// SQS configures the event queue.
type SQS struct {
	Endpoint string `envconfig:"SQS_ENDPOINT"`
	QueueURL string `envconfig:"SQS_QUEUE_URL" required:"true"`
	Region   string `envconfig:"SQS_REGION" required:"true"`
}

// ClickHouse configures the append-only event store.
type ClickHouse struct {
	Host            string `envconfig:"CLICKHOUSE_HOST" required:"true"`
	Port            string `envconfig:"CLICKHOUSE_PORT" required:"true"`
	Database        string `envconfig:"CLICKHOUSE_DB" required:"true"`
	User            string `envconfig:"CLICKHOUSE_USER" default:""`
	Password        string `envconfig:"CLICKHOUSE_PASSWORD" default:""`
	UseTLS          bool   `envconfig:"CLICKHOUSE_USE_TLS" default:"false"`
	MaxOpenConns    int    `envconfig:"CLICKHOUSE_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int    `envconfig:"CLICKHOUSE_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime int    `envconfig:"CLICKHOUSE_CONN_MAX_LIFETIME_SEC" default:"3600"`
}

// Postgres configures the lead and spend ledger store.
type Postgres struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     string `envconfig:"POSTGRES_PORT" default:"5432"`
	Database string `envconfig:"POSTGRES_DB" required:"true"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
}

// Valkey configures the shared rate-limit counter store. When Host is empty
// the API falls back to its in-process limiter.
type Valkey struct {
	Host string `envconfig:"VALKEY_HOST"`
	Port string `envconfig:"VALKEY_PORT" default:"6379"`
}

// GoogleAds holds the ad platform credentials. All of them are required: a
// missing credential fails the whole process at startup rather than at the
// first sync.
type GoogleAds struct {
	ClientID       string `envconfig:"GOOGLE_ADS_CLIENT_ID" required:"true"`
	ClientSecret   string `envconfig:"GOOGLE_ADS_CLIENT_SECRET" required:"true"`
	DeveloperToken string `envconfig:"GOOGLE_ADS_DEVELOPER_TOKEN" required:"true"`
	CustomerID     string `envconfig:"GOOGLE_ADS_CUSTOMER_ID" required:"true"`
	RefreshToken   string `envconfig:"GOOGLE_ADS_REFRESH_TOKEN" required:"true"`
}

// Cron configures the shared secret gating admin and cron endpoints.
type Cron struct {
	Secret string `envconfig:"CRON_SECRET" required:"true"`
}

// SMTP configures the nurture mailer.
type SMTP struct {
	Host   string `envconfig:"SMTP_HOST" required:"true"`
	Port   int    `envconfig:"SMTP_PORT" default:"465"`
	User   string `envconfig:"SMTP_USER" required:"true"`
	Pass   string `envconfig:"SMTP_PASS" required:"true"`
	Sender string `envconfig:"SMTP_SENDER" required:"true"`
}

// Consumer configures the event consumer pipeline.
type Consumer struct {
	BatchSizeMax    int    `envconfig:"CONSUMER_BATCH_SIZE_MAX" default:"2000"`
	BatchTimeoutSec int    `envconfig:"CONSUMER_BATCH_TIMEOUT_SEC" default:"10"`
	HealthCheckPort string `envconfig:"CONSUMER_HEALTH_CHECK_PORT" default:"8081"`
}

type Config struct {
	Service    Service
	SQS        SQS
	ClickHouse ClickHouse
	Postgres   Postgres
	Valkey     Valkey
	GoogleAds  GoogleAds
	Cron       Cron
	SMTP       SMTP
	Consumer   Consumer
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
