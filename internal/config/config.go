package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	// InvoiceNumberTemplate is expanded by format.FormatInvoiceNumber.
	InvoiceNumberTemplate string
	// BillingPasswordHash is a bcrypt hash guarding the back-office routes.
	BillingPasswordHash string

	Company CompanyConfig
	PDF     PDFConfig
	Storage StorageConfig
	Email   EmailConfig

	RateLimit RateLimitConfig

	Observability ObservabilityConfig
}

// ObservabilityConfig drives logging and OTLP export. OTLPEndpoint is shared
// by traces and metrics.
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string

	OtelEnabled   bool
	OtelProtocol  string
	SamplingRatio float64
}

// CompanyConfig is the issuer letterhead printed on every document.
type CompanyConfig struct {
	Name        string
	Tagline     string
	Address     string
	Email       string
	Phone       string
	Website     string
	TaxID       string
	LogoPath    string
	BankName    string
	BankAccount string
	BankIFSC    string
	BankBranch  string
	BankSwift   string
	Signatory   string
}

type PDFConfig struct {
	Engine        string
	ChromePath    string
	ChromeWSURL   string
	RenderTimeout time.Duration
}

type StorageConfig struct {
	Driver        string
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	PathStyle     bool
}

// RateLimitConfig throttles the public routes. Without RedisAddr the buckets
// and the resend lock are kept in process memory.
type RateLimitConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LoginRate   float64
	LoginBurst  int
	CreateRate  float64
	CreateBurst int

	ResendLockTTL time.Duration
}

type EmailConfig struct {
	Provider     string
	FromAddress  string
	FromName     string
	ReplyTo      string
	BrevoAPIKey  string
	BrevoBaseURL string
	ResendAPIKey string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	Timeout      time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:      getenv("APP_SERVICE", "billdesk"),
		AppVersion:   getenv("APP_VERSION", "0.1.0"),
		Environment:  getenv("ENVIRONMENT", "development"),
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "postgres"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     int(getenvInt64("DATABASE_MAX_IDLE_CONN", 5)),
		DBMaxOpenConn:     int(getenvInt64("DATABASE_MAX_OPEN_CONN", 20)),
		DBConnMaxLifetime: int(getenvInt64("DATABASE_CONN_MAX_LIFETIME", 300)),
		DBConnMaxIdleTime: int(getenvInt64("DATABASE_CONN_MAX_IDLE_TIME", 60)),

		InvoiceNumberTemplate: getenv("INVOICE_NUMBER_TEMPLATE", "INV/{YYYY}/{SEQ3}"),
		BillingPasswordHash:   strings.TrimSpace(getenv("BILLING_PASSWORD_HASH", "")),

		Company: CompanyConfig{
			Name:        getenv("COMPANY_NAME", "Billdesk"),
			Tagline:     getenv("COMPANY_TAGLINE", ""),
			Address:     getenv("COMPANY_ADDRESS", ""),
			Email:       getenv("COMPANY_EMAIL", ""),
			Phone:       getenv("COMPANY_PHONE", ""),
			Website:     getenv("COMPANY_WEBSITE", ""),
			TaxID:       getenv("COMPANY_TAX_ID", ""),
			LogoPath:    getenv("COMPANY_LOGO_PATH", ""),
			BankName:    getenv("COMPANY_BANK_NAME", ""),
			BankAccount: getenv("COMPANY_BANK_ACCOUNT", ""),
			BankIFSC:    getenv("COMPANY_BANK_IFSC", ""),
			BankBranch:  getenv("COMPANY_BANK_BRANCH", ""),
			BankSwift:   getenv("COMPANY_BANK_SWIFT", ""),
			Signatory:   getenv("COMPANY_SIGNATORY", "Authorised Signatory"),
		},
		PDF: PDFConfig{
			Engine:        strings.ToLower(getenv("PDF_ENGINE", "chrome")),
			ChromePath:    strings.TrimSpace(getenv("CHROME_PATH", "")),
			ChromeWSURL:   strings.TrimSpace(getenv("CHROME_WS_URL", "")),
			RenderTimeout: getenvDuration("PDF_RENDER_TIMEOUT", 30*time.Second),
		},
		Storage: StorageConfig{
			Driver:        strings.ToLower(getenv("STORAGE_DRIVER", "s3")),
			Bucket:        getenv("STORAGE_BUCKET", "invoices"),
			Region:        getenv("STORAGE_REGION", "us-east-1"),
			Endpoint:      strings.TrimSpace(getenv("STORAGE_ENDPOINT", "")),
			AccessKey:     strings.TrimSpace(getenv("STORAGE_ACCESS_KEY", "")),
			SecretKey:     strings.TrimSpace(getenv("STORAGE_SECRET_KEY", "")),
			PublicBaseURL: strings.TrimRight(getenv("STORAGE_PUBLIC_BASE_URL", ""), "/"),
			PathStyle:     getenvBool("STORAGE_PATH_STYLE", false),
		},
		Email: EmailConfig{
			Provider:     strings.ToLower(getenv("EMAIL_PROVIDER", "noop")),
			FromAddress:  getenv("EMAIL_FROM", ""),
			FromName:     getenv("EMAIL_FROM_NAME", ""),
			ReplyTo:      getenv("EMAIL_REPLY_TO", ""),
			BrevoAPIKey:  strings.TrimSpace(getenv("BREVO_API_KEY", "")),
			BrevoBaseURL: getenv("BREVO_BASE_URL", "https://api.brevo.com/v3"),
			ResendAPIKey: strings.TrimSpace(getenv("RESEND_API_KEY", "")),
			SMTPHost:     getenv("SMTP_HOST", ""),
			SMTPPort:     int(getenvInt64("SMTP_PORT", 587)),
			SMTPUsername: getenv("SMTP_USERNAME", ""),
			SMTPPassword: getenv("SMTP_PASSWORD", ""),
			Timeout:      getenvDuration("EMAIL_TIMEOUT", 10*time.Second),
		},
		RateLimit: RateLimitConfig{
			RedisAddr:     strings.TrimSpace(getenv("RATE_LIMIT_REDIS_ADDR", "")),
			RedisPassword: strings.TrimSpace(getenv("RATE_LIMIT_REDIS_PASSWORD", "")),
			RedisDB:       int(getenvInt64("RATE_LIMIT_REDIS_DB", 0)),
			LoginRate:     getenvFloat("RATE_LIMIT_LOGIN_RATE", 0.1),
			LoginBurst:    int(getenvInt64("RATE_LIMIT_LOGIN_BURST", 5)),
			CreateRate:    getenvFloat("RATE_LIMIT_CREATE_RATE", 0.5),
			CreateBurst:   int(getenvInt64("RATE_LIMIT_CREATE_BURST", 10)),
			ResendLockTTL: getenvDuration("RESEND_LOCK_TTL", time.Minute),
		},
		Observability: ObservabilityConfig{
			LogLevel:      strings.ToLower(getenv("LOG_LEVEL", "info")),
			LogFormat:     strings.ToLower(getenv("LOG_FORMAT", "json")),
			OtelEnabled:   getenvBool("OTEL_ENABLED", false),
			OtelProtocol:  strings.ToLower(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")),
			SamplingRatio: getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
		},
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
