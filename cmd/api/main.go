package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"smartstudio/internal/adapter/repo"
	"smartstudio/internal/auth"
	"smartstudio/internal/concepts"
	"smartstudio/internal/credits"
	"smartstudio/internal/domain"
	"smartstudio/internal/http/handlers"
	"smartstudio/internal/http/httpapi"
	"smartstudio/internal/infra"
	"smartstudio/internal/infra/credentials"
	"smartstudio/internal/infra/geoip"
	"smartstudio/internal/middleware"
	"smartstudio/internal/payments"
	"smartstudio/internal/providers/genai"
	"smartstudio/internal/providers/image"
	"smartstudio/internal/providers/prompt"
)

type stores struct {
	accounts domain.AccountRepository
	payments domain.PaymentRepository
	keys     *credentials.Store
	pool     *pgxpool.Pool
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(infra.LogOptions{Env: cfg.AppEnv, Level: cfg.LogLevel, Service: "smart-studio-api"})
	ctx := logger.WithContext(context.Background())

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	if st.pool != nil {
		defer st.pool.Close()
	}

	app := &handlers.App{
		Store: st.accounts,
		Env: handlers.Environment{
			FirebaseProjectID:   cfg.FirebaseProjectID,
			StoreDriver:         cfg.StoreDriver,
			HasSumitCredentials: cfg.HasSumitCredentials(),
		},
	}

	verifier, err := auth.NewVerifier(cfg.FirebaseProjectID, cfg.FirebaseJWKSURL)
	if err != nil {
		app.Env.IdentityInitError = err.Error()
		logger.Error().Err(err).Msg("identity verification disabled")
	} else {
		app.Verifier = verifier
	}

	ledger := credits.NewLedger(st.accounts, credits.Policy{
		FreeLimit:       cfg.FreeCreditsLimit,
		UnlimitedEmails: cfg.UnlimitedAccessEmails,
		FailOpen:        cfg.CreditsFailOpen,
	})
	app.Credits = ledger

	geminiKey, err := st.keys.ResolveAPIKey(ctx, credentials.ProviderGemini, cfg.GeminiAPIKey)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load stored gemini key")
	}
	app.Env.HasGeminiKey = geminiKey != ""

	text, closeText := newTextGenerator(ctx, cfg, st.keys, geminiKey, logger)
	defer closeText()
	images := newImageGenerator(cfg, geminiKey, logger)
	if text != nil {
		app.Suggester = concepts.NewAutoFiller(text)
		if images != nil {
			app.Concepts = concepts.NewGenerator(text, images)
			app.Reviser = concepts.NewReviser(text, images)
		}
	}

	var gateway payments.Gateway
	if cfg.HasSumitCredentials() {
		sumit, err := payments.NewSumitClient(payments.SumitOptions{
			APIKey:    cfg.SumitAPIKey,
			CompanyID: cfg.SumitCompanyID,
			BaseURL:   cfg.SumitBaseURL,
			Logger:    &logger,
		})
		if err != nil {
			logger.Error().Err(err).Msg("payment gateway disabled")
		} else {
			gateway = sumit
		}
	}
	app.Checkout = payments.NewCheckout(gateway, st.payments, payments.CheckoutOptions{
		BaseURL: cfg.AppBaseURL,
		Price:   cfg.PremiumPrice,
	})
	app.Settler = payments.NewSettler(st.payments, ledger, cfg.PremiumPrice)

	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	var lookup middleware.CountryLookup
	if resolver != nil {
		defer resolver.Close()
		lookup = resolver.CountryCode
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		DefaultLocale:   language.Hebrew,
		CountryLookup:   lookup,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("store", cfg.StoreDriver).Str("prompt_provider", cfg.PromptProvider).Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func openStores(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (*stores, error) {
	if cfg.StoreDriver == infra.StoreDriverMemory {
		mem := repo.NewMemoryStore()
		logger.Warn().Msg("using in-memory store; accounts and payments are lost on restart")
		return &stores{accounts: mem, payments: mem}, nil
	}

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	runner := infra.NewSQLRunner(pool, logger)
	if err := infra.EnsureSchema(ctx, runner); err != nil {
		pool.Close()
		return nil, err
	}
	return &stores{
		accounts: repo.NewAccountRepository(runner),
		payments: repo.NewPaymentRepository(runner),
		keys:     credentials.NewStore(runner),
		pool:     pool,
	}, nil
}

// newTextGenerator builds the configured prompt provider. A nil generator
// means text endpoints answer "not configured".
func newTextGenerator(ctx context.Context, cfg *infra.Config, keys *credentials.Store, geminiKey string, logger zerolog.Logger) (prompt.Generator, func()) {
	noop := func() {}
	switch cfg.PromptProvider {
	case prompt.ProviderOpenAI:
		key, err := keys.ResolveAPIKey(ctx, credentials.ProviderOpenAI, cfg.OpenAIAPIKey)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to load stored openai key")
		}
		gen, err := prompt.NewOpenAIGenerator(prompt.OpenAIOptions{
			APIKey:  key,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
			OnWarning: func(reason, detail string) {
				logger.Warn().Str("reason", reason).Msg(detail)
			},
		})
		if err != nil {
			logNotConfigured(logger, "openai text provider", err)
			return nil, noop
		}
		return gen, noop
	default:
		gen, err := prompt.NewGeminiGenerator(ctx, prompt.GeminiOptions{APIKey: geminiKey, Model: cfg.GeminiTextModel})
		if err != nil {
			logNotConfigured(logger, "gemini text provider", err)
			return nil, noop
		}
		return gen, func() { _ = gen.Close() }
	}
}

func newImageGenerator(cfg *infra.Config, geminiKey string, logger zerolog.Logger) image.Generator {
	client, err := genai.NewClient(genai.Options{
		APIKey:  geminiKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiImageModel,
		Logger:  &logger,
	})
	if err != nil {
		logNotConfigured(logger, "gemini image provider", err)
		return nil
	}
	return image.NewGeminiGenerator(client)
}

func logNotConfigured(logger zerolog.Logger, what string, err error) {
	if errors.Is(err, domain.ErrNotConfigured) {
		logger.Warn().Msgf("%s not configured", what)
		return
	}
	logger.Error().Err(err).Msgf("%s failed to initialize", what)
}
