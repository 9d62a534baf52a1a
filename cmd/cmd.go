package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	LogLevel         string `json:"log_level"`
	LogFormat        string `json:"log_format"`
	DatabaseName     string `json:"database_name"`
	DatabaseUser     string `json:"database_user"`
	DatabaseHost     string `json:"database_host"`
	DatabasePassword string `json:"database_password"`
	ServerSecret     string `json:"server_secret,required"`
	Addr             string `json:"addr"`
	DirectoryURL     string `json:"directory_url"`
	SlackWebhookURL  string `json:"slack_webhook_url"`
	AgencyName       string `json:"agency_name"`
	AgencyCode       string `json:"agency_code"`
	PublicURL        string `json:"public_url"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "json",
		DatabaseName:     "newswire",
		DatabaseUser:     "postgres",
		DatabasePassword: "postgres",
		DatabaseHost:     "127.0.0.1",
		Addr:             "localhost:8080",
	}
}

// Load reads config.json if present, then applies the environment on top.
// A .env file is honored so development setups don't need exported vars.
func (c *Config) Load() error {
	_ = godotenv.Load()

	f, err := os.Open("config.json")
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	if !os.IsNotExist(err) {
		err = json.NewDecoder(f).Decode(c)
		if err != nil {
			return err
		}
	}

	v := os.Getenv("LOG_LEVEL")
	if v != "" {
		c.LogLevel = v
	}

	v = os.Getenv("LOG_FORMAT")
	if v != "" {
		c.LogFormat = v
	}

	v = os.Getenv("DATABASE_NAME")
	if v != "" {
		c.DatabaseName = v
	}

	v = os.Getenv("DATABASE_USER")
	if v != "" {
		c.DatabaseUser = v
	}

	v = os.Getenv("DATABASE_HOST")
	if v != "" {
		c.DatabaseHost = v
	}

	v = os.Getenv("DATABASE_PASSWORD")
	if v != "" {
		c.DatabasePassword = v
	}

	v = os.Getenv("SERVER_SECRET")
	if v != "" {
		c.ServerSecret = v
	}

	v = os.Getenv("ADDR")
	if v != "" {
		c.Addr = v
	}

	v = os.Getenv("DIRECTORY_URL")
	if v != "" {
		c.DirectoryURL = v
	}

	v = os.Getenv("SLACK_WEBHOOK_URL")
	if v != "" {
		c.SlackWebhookURL = v
	}

	v = os.Getenv("AGENCY_NAME")
	if v != "" {
		c.AgencyName = v
	}

	v = os.Getenv("AGENCY_CODE")
	if v != "" {
		c.AgencyCode = v
	}

	v = os.Getenv("PUBLIC_URL")
	if v != "" {
		c.PublicURL = v
	}

	if c.ServerSecret == "" {
		return fmt.Errorf("missing config 'server secret'")
	}

	return nil
}

func SetupLogger(cfg *Config) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("input", cfg.LogLevel).Msg("Cannot parse log level")
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "" || cfg.LogFormat == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}
}

// DatabaseString assembles the lib/pq connection string.
func (c *Config) DatabaseString() string {
	return fmt.Sprintf(
		"user=%v dbname=%v sslmode=disable password=%v host=%v",
		c.DatabaseUser,
		c.DatabaseName,
		c.DatabasePassword,
		c.DatabaseHost,
	)
}
