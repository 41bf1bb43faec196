package internal

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

type Config struct {
	QueueCapacity        int           `env:"QUEUE_CAPACITY,default=100" validate:"gt=0"`
	PaymentCount         int           `env:"PAYMENT_COUNT,default=10" validate:"gte=0"`
	PaymentReceiver      string        `env:"PAYMENT_RECEIVER,default=merchant" validate:"required"`
	BaseAmount           string        `env:"PAYMENT_BASE_AMOUNT,default=10.5" validate:"required,numeric"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=1s" validate:"gt=0"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gt=0"`
	LowCapacityThreshold int           `env:"LOW_CAPACITY_THRESHOLD,default=10" validate:"gte=0"`
	TelemetryBufferSize  int           `env:"TELEMETRY_BUFFER_SIZE,default=100" validate:"gt=0"`
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// BaseAmountDecimal parses PAYMENT_BASE_AMOUNT as an exact decimal.
func (c Config) BaseAmountDecimal() (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(c.BaseAmount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("PAYMENT_BASE_AMOUNT must be a decimal, got %q: %w", c.BaseAmount, err)
	}
	return amount, nil
}
