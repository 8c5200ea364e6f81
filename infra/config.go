package infra

import (
	"fmt"
	"time"

	"github.com/openbankly/consent-backend/models"
)

type PgConfig struct {
	ConnectionString   string
	Database           string
	Hostname           string
	Password           string
	Port               string
	User               string
	MaxPoolConnections int
	SslMode            string
}

func (config PgConfig) GetConnectionString() string {
	if config.ConnectionString != "" {
		return config.ConnectionString
	}

	if config.SslMode == "" {
		config.SslMode = "prefer"
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s database=%s sslmode=%s",
		config.Hostname, config.Port, config.User, config.Password,
		config.Database, config.SslMode)
}

// NotificationConfig tunes the delivery engine. Validated once at startup;
// a bad backoff function refuses to start rather than misbehaving later.
type NotificationConfig struct {
	WorkerCount   int
	QueueCapacity int

	MaxRetries           int
	InitialBackoff       time.Duration
	BackoffFunction      models.BackoffFunction
	CircuitBreakerWindow time.Duration

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration

	TokenIssuer   string
	SigningKeyPem string
}
