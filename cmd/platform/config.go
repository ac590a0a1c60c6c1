package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/gulfcoastprop/platform/internal/logger"
)

const (
	defaultListenAddr   = "localhost:8000"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction
	defaultQualifyURL   = "https://example.com/qualify"
	defaultRehabURL     = "https://example.com/rehab"
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the service will be run
	ListenAddr string

	// Database to connect to
	// Empty selects the process local development store
	DatabaseDSN string

	// Secret key for signing access tokens
	// Required: the process refuses to start without it
	SecretKey string

	// Environment
	Environment string

	// Stripe credentials. Empty disables checkout
	StripeSecretKey     string
	StripeWebhookSecret string

	// Base URL of the front end, used for checkout redirect defaults
	FrontendURL string

	// Resend credentials for password reset mail. Empty disables mail
	ResendAPIKey string
	EmailFrom    string

	// External agent endpoints
	QualifyURL string
	RehabURL   string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:    defaultLoggingLevel,
		ListenAddr:  defaultListenAddr,
		Environment: defaultEnvironment,
		QualifyURL:  defaultQualifyURL,
		RehabURL:    defaultRehabURL,
	}
}

// Validate checks settings that must be present before serving anything.
// Starting with a missing signing key would silently break every token,
// so it is a hard startup error.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY is required")
	}
	return nil
}

// Load variables from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":           setString(&c.ListenAddr),
		"DATABASE_URI":          setString(&c.DatabaseDSN),
		"SECRET_KEY":            setString(&c.SecretKey),
		"LOG_LEVEL":             setString(&c.LogLevel),
		"ENVIRONMENT":           setString(&c.Environment),
		"STRIPE_SECRET_KEY":     setString(&c.StripeSecretKey),
		"STRIPE_WEBHOOK_SECRET": setString(&c.StripeWebhookSecret),
		"FRONTEND_URL":          setString(&c.FrontendURL),
		"RESEND_API_KEY":        setString(&c.ResendAPIKey),
		"EMAIL_FROM":            setString(&c.EmailFrom),
		"AI_QUALIFY_URL":        setString(&c.QualifyURL),
		"AI_REHAB_URL":          setString(&c.RehabURL),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("platform", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string (empty: in-memory dev store)")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")

	return fs.Parse(args)
}
