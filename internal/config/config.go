package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	Version string `yaml:"version"`

	Sqlite struct {
		Dsn string `yaml:"dsn"`
	} `yaml:"sqlite"`

	Log struct {
		Level  string   `yaml:"level"`
		Writer []string `yaml:"writer"`
		File   string   `yaml:"file"`
	} `yaml:"log"`

	Host struct {
		Listen         string   `yaml:"listen"`
		ReplyTimeoutMS int      `yaml:"replyTimeoutMS"`
		AllowedHosts   []string `yaml:"allowedHosts"`
	} `yaml:"host"`

	Watchdog struct {
		Endpoints        []string `yaml:"endpoints"`
		AttemptTimeoutMS int      `yaml:"attemptTimeoutMS"`
		ProbeRetries     int      `yaml:"probeRetries"`
		BackoffBaseMS    int      `yaml:"backoffBaseMS"`
		BackoffCapMS     int      `yaml:"backoffCapMS"`
		BudgetMS         int      `yaml:"budgetMS"`
	} `yaml:"watchdog"`
}

// NewConfig returns the defaults used when no file is present.
func NewConfig() *Config {
	c := &Config{Version: "1.0.0"}
	c.Sqlite.Dsn = "bridge.sqlite3"
	c.Log.Level = "debug"
	c.Log.Writer = []string{"console", "file"}
	c.Log.File = "metanet-desktop.log"
	c.Host.Listen = "127.0.0.1:3321"
	c.Host.ReplyTimeoutMS = 1500
	c.Host.AllowedHosts = []string{
		"backend.2efa4b8fe4c2bd42083636871b007e9e.projects.babbage.systems",
		"overlay-eu-1.bsvb.tech",
		"overlay-ap-1.bsvb.tech",
	}
	c.Watchdog.Endpoints = []string{
		"http://127.0.0.1:3321/healthz",
		"http://127.0.0.1:3321/getStatus",
	}
	c.Watchdog.AttemptTimeoutMS = 3000
	c.Watchdog.ProbeRetries = 3
	c.Watchdog.BackoffBaseMS = 500
	c.Watchdog.BackoffCapMS = 4000
	c.Watchdog.BudgetMS = 20000
	return c
}

// Load reads path if it exists, falling back to defaults otherwise.
func Load(path string) (*Config, error) {
	c := NewConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return c, nil
}
