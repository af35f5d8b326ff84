package infra

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	LogLevel    string
	Port        string
	StoreDriver string
	DatabaseURL string
	GeoIPDBPath string

	PromptProvider   string
	GeminiAPIKey     string
	GeminiBaseURL    string
	GeminiTextModel  string
	GeminiImageModel string
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIBaseURL    string

	FirebaseProjectID      string
	FirebaseJWKSURL        string
	FirebaseServiceAccount bool

	SumitAPIKey    string
	SumitCompanyID int64
	SumitBaseURL   string
	AppBaseURL     string
	PremiumPrice   float64

	FreeCreditsLimit      int
	UnlimitedAccessEmails []string
	CreditsFailOpen       bool

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		LogLevel:              strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		Port:                  getEnv("PORT", "8080"),
		StoreDriver:           strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		GeoIPDBPath:           os.Getenv("GEOIP_DB_PATH"),
		PromptProvider:        strings.ToLower(getEnv("PROMPT_PROVIDER", "gemini")),
		GeminiAPIKey:          strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiBaseURL:         getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiTextModel:       getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
		GeminiImageModel:      getEnv("GEMINI_IMAGE_MODEL", "gemini-3-pro-image-preview"),
		OpenAIAPIKey:          strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:           getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:         getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		FirebaseProjectID:     strings.TrimSpace(os.Getenv("FIREBASE_PROJECT_ID")),
		FirebaseJWKSURL:       getEnv("FIREBASE_JWKS_URL", "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"),
		SumitAPIKey:           strings.TrimSpace(os.Getenv("SUMIT_API_KEY")),
		SumitCompanyID:        getEnvInt64("SUMIT_COMPANY_ID", 0),
		SumitBaseURL:          getEnv("SUMIT_BASE_URL", "https://api.sumit.co.il"),
		AppBaseURL:            strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:5173"), "/"),
		PremiumPrice:          getEnvFloat("PREMIUM_PRICE_ILS", 49),
		FreeCreditsLimit:      getEnvInt("FREE_CREDITS_LIMIT", 3),
		UnlimitedAccessEmails: getEnvList("UNLIMITED_ACCESS_EMAILS"),
		CreditsFailOpen:       getEnvBool("CREDITS_FAIL_OPEN", true),
		HTTPReadTimeout:       time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:      time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 240)),
		HTTPIdleTimeout:       time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:       getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if raw := strings.TrimSpace(os.Getenv("FIREBASE_SERVICE_ACCOUNT")); raw != "" {
		cfg.FirebaseServiceAccount = true
		if cfg.FirebaseProjectID == "" {
			var sa struct {
				ProjectID string `json:"project_id"`
			}
			if err := json.Unmarshal([]byte(raw), &sa); err != nil {
				return nil, fmt.Errorf("FIREBASE_SERVICE_ACCOUNT is not valid JSON: %w", err)
			}
			cfg.FirebaseProjectID = strings.TrimSpace(sa.ProjectID)
		}
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	case StoreDriverMemory:
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	switch cfg.PromptProvider {
	case "gemini", "openai":
	default:
		return nil, fmt.Errorf("unsupported PROMPT_PROVIDER %q", cfg.PromptProvider)
	}

	if cfg.FreeCreditsLimit < 0 {
		return nil, fmt.Errorf("FREE_CREDITS_LIMIT must not be negative")
	}

	return cfg, nil
}

// HasSumitCredentials reports whether checkout can reach the gateway.
func (c *Config) HasSumitCredentials() bool {
	return c.SumitAPIKey != "" && c.SumitCompanyID != 0
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvList splits a comma separated variable, lower-cased and de-duplicated.
func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(raw, ",") {
		item := strings.ToLower(strings.TrimSpace(part))
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
