package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Auth0
	Auth0Domain   string
	Auth0Audience string
	Auth0ClientID string

	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// PublicURL is the externally visible origin, listed in /openapi.json
	PublicURL string

	// Calendar used for "today" and date keys
	Timezone string
	// Locale used for amounts in notification messages
	Locale string

	// S3 Storage for transaction attachments
	S3 S3Config

	// Redis cache for category suggestions
	Redis RedisConfig

	// Gemini category classifier
	Gemini GeminiConfig

	Automation AutomationConfig

	Catalog CatalogConfig

	// ImportCategoryRules is a list of "pattern=Category" pairs applied to
	// imported rows without a category
	ImportCategoryRules string
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
}

// Enabled reports whether attachment storage is configured
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// RedisConfig holds the suggestion cache connection. An empty address
// disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// GeminiConfig holds the classifier settings. An empty API key disables it.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// AutomationConfig controls the background automation worker
type AutomationConfig struct {
	Enabled       bool
	Interval      time.Duration
	HorizonMonths int
	SuggestPerMin float64
	SuggestBurst  int
}

// CatalogConfig overrides the built-in category and account lists. Empty
// fields keep the defaults.
type CatalogConfig struct {
	IncomeCategories []string
	// ExpenseGroups is "Group:Sub1|Sub2;Group2:Sub3"
	ExpenseGroups string
	Accounts      []string
}

// Build returns the built-in catalog with any configured overrides applied
func (c CatalogConfig) Build() (*domain.Catalog, error) {
	catalog := domain.DefaultCatalog()
	if len(c.IncomeCategories) > 0 {
		catalog.IncomeCategories = c.IncomeCategories
	}
	if len(c.Accounts) > 0 {
		catalog.Accounts = c.Accounts
	}
	if c.ExpenseGroups != "" {
		groups := make([]domain.CategoryGroup, 0)
		for _, entry := range splitList(c.ExpenseGroups, ";") {
			name, subs, _ := strings.Cut(entry, ":")
			name = strings.TrimSpace(name)
			if name == "" {
				return nil, fmt.Errorf("CATEGORY_EXPENSE has an empty group in %q", entry)
			}
			groups = append(groups, domain.CategoryGroup{Name: name, Subcategories: splitList(subs, "|")})
		}
		catalog.ExpenseGroups = groups
	}
	return catalog, nil
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		Auth0Domain:   getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience: getEnv("AUTH0_AUDIENCE", ""),
		Auth0ClientID: getEnv("AUTH0_CLIENT_ID", ""),
		Port:          getEnv("PORT", "8080"),
		CORSOrigins:   strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:           getEnv("ENV", "development"),
		PublicURL:     getEnv("PUBLIC_API_URL", ""),
		Timezone:      getEnv("TIMEZONE", "America/Sao_Paulo"),
		Locale:        getEnv("LOCALE", "pt-BR"),
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("SUGGESTION_CACHE_TTL", 30*24*time.Hour),
		},
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Timeout: getEnvDuration("GEMINI_TIMEOUT", 10*time.Second),
		},
		Automation: AutomationConfig{
			Enabled:       getEnv("AUTOMATION_ENABLED", "true") == "true",
			Interval:      getEnvDuration("AUTOMATION_INTERVAL", time.Hour),
			HorizonMonths: getEnvInt("RECURRENCE_HORIZON_MONTHS", 12),
			SuggestPerMin: float64(getEnvInt("SUGGEST_RATE_PER_MINUTE", 30)),
			SuggestBurst:  getEnvInt("SUGGEST_RATE_BURST", 5),
		},
		Catalog: CatalogConfig{
			IncomeCategories: splitList(getEnv("CATEGORY_INCOME", ""), ","),
			ExpenseGroups:    getEnv("CATEGORY_EXPENSE", ""),
			Accounts:         splitList(getEnv("ACCOUNTS", ""), ","),
		},
		ImportCategoryRules: getEnv("IMPORT_CATEGORY_RULES", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth0Domain == "" {
		return fmt.Errorf("AUTH0_DOMAIN is required")
	}
	if c.Auth0Audience == "" {
		return fmt.Errorf("AUTH0_AUDIENCE is required")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}
	if c.Automation.HorizonMonths < 1 || c.Automation.HorizonMonths > 120 {
		return fmt.Errorf("RECURRENCE_HORIZON_MONTHS must be between 1 and 120")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(raw, sep string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(raw, sep) {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
