// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config loads the settings of a netreq manager and its HTTP
// transport from a YAML file and NETREQ_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/gogama/netreq"
	"github.com/gogama/netreq/timeout"
)

// Config holds the application configuration.
type Config struct {
	Workers           int           `mapstructure:"workers"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"`
	LowSpeedLimit     int64         `mapstructure:"low_speed_limit"`
	LowSpeedTime      time.Duration `mapstructure:"low_speed_time"`
	ProgressInterval  time.Duration `mapstructure:"progress_interval"`
	LogLevel          string        `mapstructure:"log_level"`
}

// Default returns a Config with the default timeout policy, one worker
// and no rate limit.
func Default() Config {
	return Config{
		Workers:          1,
		ConnectTimeout:   timeout.DefaultPolicy.ConnectTimeout,
		LowSpeedLimit:    timeout.DefaultPolicy.LowSpeedLimit,
		LowSpeedTime:     timeout.DefaultPolicy.LowSpeedTime,
		ProgressInterval: netreq.DefaultProgressInterval,
		LogLevel:         "info",
	}
}

// Load reads the config file at path, applies NETREQ_ environment
// overrides (for example NETREQ_WORKERS), and validates the result. An
// empty path loads defaults and environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()
	def := Default()
	v.SetDefault("workers", def.Workers)
	v.SetDefault("requests_per_second", def.RequestsPerSecond)
	v.SetDefault("connect_timeout", def.ConnectTimeout)
	v.SetDefault("low_speed_limit", def.LowSpeedLimit)
	v.SetDefault("low_speed_time", def.LowSpeedTime)
	v.SetDefault("progress_interval", def.ProgressInterval)
	v.SetDefault("log_level", def.LogLevel)

	v.SetEnvPrefix("NETREQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for values the manager cannot use.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return errors.New("workers must be positive")
	}
	if c.RequestsPerSecond < 0 {
		return errors.New("requests_per_second must not be negative")
	}
	if c.ConnectTimeout < 0 || c.LowSpeedTime < 0 || c.ProgressInterval < 0 {
		return errors.New("durations must not be negative")
	}
	if c.LowSpeedLimit < 0 {
		return errors.New("low_speed_limit must not be negative")
	}
	return nil
}

// TimeoutPolicy returns the transfer timeout policy described by c.
func (c *Config) TimeoutPolicy() timeout.Policy {
	return timeout.Fixed(c.ConnectTimeout).WithLowSpeed(c.LowSpeedLimit, c.LowSpeedTime)
}

// ManagerOptions returns the manager options described by c.
func (c *Config) ManagerOptions() netreq.ManagerOptions {
	return netreq.ManagerOptions{
		Workers:           c.Workers,
		RequestsPerSecond: c.RequestsPerSecond,
	}
}

// Transport returns an HTTP transport measuring progress every
// ProgressInterval. The timeout policy travels with each request, see
// TimeoutPolicy.
func (c *Config) Transport() *netreq.HTTPTransport {
	return &netreq.HTTPTransport{
		ProgressInterval: c.ProgressInterval,
	}
}
