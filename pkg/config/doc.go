// Package config loads environment variables into typed configuration
// structs using github.com/caarlos0/env, with optional .env file support via
// github.com/joho/godotenv.
//
// Each configuration type is parsed at most once per process and cached, so
// packages can call Load for their own Config struct without coordinating
// with each other.
//
// # Usage
//
//	type QueueConfig struct {
//	    DrainInterval time.Duration `env:"QUEUE_DRAIN_INTERVAL" envDefault:"30s"`
//	    MaxAttempts   int           `env:"QUEUE_MAX_ATTEMPTS" envDefault:"3"`
//	}
//
//	var cfg QueueConfig
//	if err := config.Load(&cfg); err != nil {
//	    // handle error
//	}
package config
