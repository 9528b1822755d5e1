package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/fadhlanhapp/manpower-backend/utils"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Backend     BackendConfig     `yaml:"backend"`
	Eligibility EligibilityConfig `yaml:"eligibility"`
	Loan        LoanConfig        `yaml:"loan"`
	Payment     PaymentConfig     `yaml:"payment"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
	Log         LogConfig         `yaml:"log"`
	NewRelic    NewRelicConfig    `yaml:"new_relic"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port string `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

// DSN returns the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// BackendConfig points at the MANPOWER REST backend
type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the per-request timeout
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// EligibilityConfig holds the loan eligibility policy
type EligibilityConfig struct {
	MinContributionForLoan decimal.Decimal `yaml:"min_contribution_for_loan"`
	MaxLoanFactor          decimal.Decimal `yaml:"max_loan_factor"`
}

// LoanConfig holds defaults for new loan requests
type LoanConfig struct {
	InterestRatePercent decimal.Decimal `yaml:"interest_rate_percent"`
	RepaymentMonths     int             `yaml:"repayment_months"`
}

// PaymentConfig holds settlement polling settings
type PaymentConfig struct {
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
	MaxAttempts         int `yaml:"max_attempts"`
}

// PollInterval returns the delay between two status checks
func (p PaymentConfig) PollInterval() time.Duration {
	return time.Duration(p.PollIntervalSeconds) * time.Second
}

// SchedulerConfig contains cron expressions (with seconds)
type SchedulerConfig struct {
	SweepStaleSessions string `yaml:"sweep_stale_sessions"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// NewRelicConfig contains APM settings
type NewRelicConfig struct {
	AppName    string `yaml:"app_name"`
	LicenseKey string `yaml:"license_key"`
}

// Default returns the configuration used when nothing else is provided
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "postgres",
			Name:     "manpower",
			SSLMode:  "disable",
		},
		Backend: BackendConfig{
			BaseURL:        "http://localhost:8080/api",
			TimeoutSeconds: 15,
		},
		Eligibility: EligibilityConfig{
			MinContributionForLoan: decimal.NewFromInt(utils.DefaultMinContributionForLoan),
			MaxLoanFactor:          decimal.NewFromInt(utils.DefaultMaxLoanFactor),
		},
		Loan: LoanConfig{
			InterestRatePercent: decimal.NewFromInt(utils.DefaultInterestRatePercent),
			RepaymentMonths:     utils.DefaultRepaymentMonths,
		},
		Payment: PaymentConfig{
			PollIntervalSeconds: utils.DefaultPollIntervalSeconds,
			MaxAttempts:         utils.DefaultPollMaxAttempts,
		},
		Scheduler: SchedulerConfig{
			SweepStaleSessions: "0 */10 * * * *",
		},
		Log:      LogConfig{Level: "info", Format: "json"},
		NewRelic: NewRelicConfig{AppName: "MANPOWER Loans API"},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order of precedence (environment wins).
func Load(configPath string) (*Config, error) {
	// Load environment variables
	_ = godotenv.Load()

	cfg := Default()

	if configPath == "" {
		configPath = os.Getenv("CONFIG_FILE")
	}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.overrideWithEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() error {
	setString(&c.Server.Port, "PORT")

	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.Port, "DB_PORT")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Name, "DB_NAME")
	setString(&c.Database.SSLMode, "DB_SSL_MODE")

	setString(&c.Backend.BaseURL, "BACKEND_BASE_URL")
	setString(&c.Scheduler.SweepStaleSessions, "SWEEP_STALE_SESSIONS_CRON")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.NewRelic.AppName, "NEW_RELIC_APP_NAME")
	setString(&c.NewRelic.LicenseKey, "NEW_RELIC_LICENSE_KEY")

	ints := map[string]*int{
		"BACKEND_TIMEOUT_SECONDS": &c.Backend.TimeoutSeconds,
		"LOAN_REPAYMENT_MONTHS":   &c.Loan.RepaymentMonths,
		"PAYMENT_POLL_INTERVAL":   &c.Payment.PollIntervalSeconds,
		"PAYMENT_MAX_ATTEMPTS":    &c.Payment.MaxAttempts,
	}
	for key, dst := range ints {
		if err := setInt(dst, key); err != nil {
			return err
		}
	}

	decimals := map[string]*decimal.Decimal{
		"MIN_CONTRIBUTION_FOR_LOAN": &c.Eligibility.MinContributionForLoan,
		"MAX_LOAN_FACTOR":           &c.Eligibility.MaxLoanFactor,
		"LOAN_INTEREST_RATE":        &c.Loan.InterestRatePercent,
	}
	for key, dst := range decimals {
		if err := setDecimal(dst, key); err != nil {
			return err
		}
	}

	return nil
}

// Validate checks the configuration for values the services cannot run with
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base url is required")
	}
	if c.Backend.TimeoutSeconds <= 0 {
		return fmt.Errorf("backend timeout must be positive")
	}
	if c.Eligibility.MinContributionForLoan.IsNegative() {
		return fmt.Errorf("minimum contribution for loan cannot be negative")
	}
	if !c.Eligibility.MaxLoanFactor.IsPositive() {
		return fmt.Errorf("max loan factor must be positive")
	}
	if c.Loan.InterestRatePercent.IsNegative() {
		return fmt.Errorf("loan interest rate cannot be negative")
	}
	if c.Loan.RepaymentMonths < 1 {
		return fmt.Errorf("loan repayment months must be at least 1")
	}
	if c.Payment.PollIntervalSeconds <= 0 {
		return fmt.Errorf("payment poll interval must be positive")
	}
	if c.Payment.MaxAttempts < 1 {
		return fmt.Errorf("payment max attempts must be at least 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func setInt(dst *int, key string) error {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDecimal(dst *decimal.Decimal, key string) error {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	d, err := decimal.NewFromString(val)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
