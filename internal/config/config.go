package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type Config struct {
	AppPort  string
	LogLevel string

	DBDriver    string
	MySQLHost   string
	MySQLPort   string
	MySQLDB     string
	MySQLUser   string
	MySQLPass   string
	DatabaseURL string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	AdminJWTSecret string

	FedaPay FedaPayConfig
	Vonage  VonageConfig

	GatewayTimeout time.Duration
	OTPThrottle    time.Duration

	Loan LoanPolicy
}

type FedaPayConfig struct {
	PublicKey     string
	SecretKey     string
	WebhookSecret string
	BaseURL       string
	Currency      string
	Country       string
	CallbackURL   string
}

type VonageConfig struct {
	APIKey    string
	APISecret string
	From      string
	BaseURL   string
}

// LoanPolicy bounds what a borrower may request.
type LoanPolicy struct {
	InterestRate    decimal.Decimal
	MinAmount       decimal.Decimal
	MaxAmount       decimal.Decimal
	MaxDurationDays int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getdec(k string, d decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(k); v != "" {
		if n, err := decimal.NewFromString(v); err == nil {
			return n
		}
	}
	return d
}

// Load reads an optional .env file, then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	c := &Config{
		AppPort:  getenv("APP_PORT", "8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		DBDriver:  getenv("DB_DRIVER", DriverMySQL),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "abcampus"),
		MySQLUser: getenv("MYSQL_USER", "abcampus"),
		MySQLPass: getenv("MYSQL_PASS", "abcampus"),
		// Supabase exposes its Postgres DSN; SUPABASE_DB_URL is accepted as an alias.
		DatabaseURL: getenv("DATABASE_URL", os.Getenv("SUPABASE_DB_URL")),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:      getint("REDIS_DB", 0),
		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),

		AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),

		FedaPay: FedaPayConfig{
			PublicKey:     os.Getenv("FEDAPAY_PUBLIC_KEY"),
			SecretKey:     os.Getenv("FEDAPAY_SECRET_KEY"),
			WebhookSecret: getenv("FEDAPAY_WEBHOOK_SECRET", os.Getenv("FEDAPAY_SECRET_KEY")),
			BaseURL:       getenv("FEDAPAY_BASE_URL", "https://sandbox-api.fedapay.com"),
			Currency:      getenv("FEDAPAY_CURRENCY", "XOF"),
			Country:       getenv("FEDAPAY_COUNTRY", "bj"),
			CallbackURL:   os.Getenv("FEDAPAY_CALLBACK_URL"),
		},
		Vonage: VonageConfig{
			APIKey:    os.Getenv("VONAGE_API_KEY"),
			APISecret: os.Getenv("VONAGE_API_SECRET"),
			From:      getenv("VONAGE_FROM", "ABCampus"),
			BaseURL:   getenv("VONAGE_BASE_URL", "https://rest.nexmo.com"),
		},

		GatewayTimeout: time.Duration(getint("GATEWAY_TIMEOUT_SECONDS", 15)) * time.Second,
		OTPThrottle:    time.Duration(getint("OTP_THROTTLE_SECONDS", 60)) * time.Second,

		Loan: LoanPolicy{
			InterestRate:    getdec("LOAN_INTEREST_RATE", decimal.RequireFromString("0.10")),
			MinAmount:       getdec("LOAN_MIN_AMOUNT", decimal.NewFromInt(1000)),
			MaxAmount:       getdec("LOAN_MAX_AMOUNT", decimal.NewFromInt(500000)),
			MaxDurationDays: getint("LOAN_MAX_DURATION_DAYS", 365),
		},
	}
	return c
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case DriverMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("missing DATABASE_URL for postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.FedaPay.SecretKey == "" || c.FedaPay.PublicKey == "" {
		return errors.New("missing FedaPay keys (FEDAPAY_PUBLIC_KEY/FEDAPAY_SECRET_KEY)")
	}
	if c.AdminJWTSecret == "" {
		return errors.New("missing ADMIN_JWT_SECRET")
	}
	if !c.Loan.InterestRate.IsPositive() || c.Loan.MinAmount.GreaterThan(c.Loan.MaxAmount) {
		return errors.New("invalid loan policy (LOAN_INTEREST_RATE/LOAN_MIN_AMOUNT/LOAN_MAX_AMOUNT)")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// SMSEnabled reports whether Vonage credentials are present.
func (c *Config) SMSEnabled() bool { return c.Vonage.APIKey != "" && c.Vonage.APISecret != "" }
