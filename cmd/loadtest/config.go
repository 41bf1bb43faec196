package main

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// LOADTEST_PAYMENTS is the number of payments pushed through the pipeline per run
	Payments int `envconfig:"LOADTEST_PAYMENTS" default:"1000"`
	// LOADTEST_PRODUCERS is the number of concurrent producers sharing the queue
	Producers     int    `envconfig:"LOADTEST_PRODUCERS" default:"4"`
	QueueCapacity int    `envconfig:"LOADTEST_QUEUE_CAPACITY" default:"1000"`
	Runs          int    `envconfig:"LOADTEST_RUNS" default:"5"`
	LogLevel      string `envconfig:"LOADTEST_LOG_LEVEL" default:"WARN"`
	// LOADTEST_COLOURS enables colorized verdicts
	Colours bool `envconfig:"LOADTEST_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
