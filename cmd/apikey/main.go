package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"smartstudio/internal/infra"
	"smartstudio/internal/infra/credentials"
)

// apikey stores a text or image provider key in app_credentials so the API
// can start without it in the environment.
func main() {
	_ = godotenv.Load()

	var (
		keyFlag      string
		providerFlag string
	)
	flag.StringVar(&keyFlag, "key", "", "API key for the selected provider (falls back to the environment)")
	flag.StringVar(&providerFlag, "provider", credentials.ProviderGemini, "provider to configure (gemini or openai)")
	flag.Parse()

	provider := strings.TrimSpace(strings.ToLower(providerFlag))
	switch provider {
	case credentials.ProviderGemini, credentials.ProviderOpenAI:
	case "":
		provider = credentials.ProviderGemini
	default:
		exitWithError(fmt.Errorf("unsupported provider %q", providerFlag))
	}

	key := strings.TrimSpace(keyFlag)
	if key == "" {
		env := "GEMINI_API_KEY"
		if provider == credentials.ProviderOpenAI {
			env = "OPENAI_API_KEY"
		}
		key = strings.TrimSpace(os.Getenv(env))
	}
	if key == "" {
		exitWithError(fmt.Errorf("%s API key is required via -key or environment", strings.ToUpper(provider)))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(fmt.Errorf("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to create pool: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger(infra.LogOptions{
		Env:     os.Getenv("APP_ENV"),
		Level:   os.Getenv("LOG_LEVEL"),
		Service: "smart-studio-apikey",
		Out:     os.Stderr,
	}).With().Str("provider", provider).Logger()
	runner := infra.NewSQLRunner(pool, logger)
	if err := infra.EnsureSchema(ctx, runner); err != nil {
		exitWithError(err)
	}

	store := credentials.NewStore(runner)
	var persistErr error
	if provider == credentials.ProviderOpenAI {
		persistErr = store.SetOpenAIAPIKey(ctx, key)
	} else {
		persistErr = store.SetGeminiAPIKey(ctx, key)
	}
	if persistErr != nil {
		exitWithError(fmt.Errorf("failed to persist %s api key: %w", provider, persistErr))
	}

	fmt.Printf("%s API key stored successfully\n", strings.ToUpper(provider))
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
