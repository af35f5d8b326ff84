package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"smartstudio/internal/adapter/repo"
	"smartstudio/internal/credits"
	"smartstudio/internal/domain"
	"smartstudio/internal/infra"
)

// credits inspects and adjusts a user's credit record:
//
//	credits -id <uid> show
//	credits -email <email> reset
//	credits -id <uid> -email <email> upgrade
func main() {
	_ = godotenv.Load()

	var idFlag, emailFlag string
	flag.StringVar(&idFlag, "id", "", "user id")
	flag.StringVar(&emailFlag, "email", "", "user email (used to find the user when -id is empty)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-id uid] [-email email] show|reset|upgrade\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	action := strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	if action == "" {
		action = "show"
	}
	userID := strings.TrimSpace(idFlag)
	email := strings.TrimSpace(emailFlag)
	if userID == "" && email == "" {
		exitWithError(errors.New("either -id or -email must be provided"))
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}
	if cfg.StoreDriver != infra.StoreDriverPostgres {
		exitWithError(fmt.Errorf("credits requires STORE_DRIVER=%s", infra.StoreDriverPostgres))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger(infra.LogOptions{Env: cfg.AppEnv, Level: cfg.LogLevel, Service: "smart-studio-credits", Out: os.Stderr})
	ctx = logger.WithContext(ctx)
	ledger := credits.NewLedger(repo.NewAccountRepository(infra.NewSQLRunner(pool, logger)), credits.Policy{
		FreeLimit:       cfg.FreeCreditsLimit,
		UnlimitedEmails: cfg.UnlimitedAccessEmails,
	})

	lookup := userID
	if lookup == "" {
		lookup = email
	}

	var acct *domain.UserAccount
	switch action {
	case "show":
		acct, err = ledger.Account(ctx, lookup)
	case "reset":
		acct, err = ledger.Account(ctx, lookup)
		if err == nil {
			acct, err = ledger.ResetCredits(ctx, acct.ID)
		}
	case "upgrade":
		if userID == "" {
			acct, err = ledger.Account(ctx, email)
			if err == nil {
				userID = acct.ID
			}
		}
		if err == nil {
			acct, err = ledger.UpgradeToPremium(ctx, userID, email)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			exitWithError(fmt.Errorf("user %s not found", lookup))
		}
		exitWithError(err)
	}

	printAccount(acct)
}

func printAccount(acct *domain.UserAccount) {
	fmt.Printf("User %s (%s) plan=%s\n", acct.ID, acct.Email, acct.Plan)
	if acct.IsPremium() {
		fmt.Println("credits=unlimited")
	} else {
		fmt.Printf("credits_used=%d credits_limit=%d remaining=%d\n", acct.Credits.Used, acct.Credits.Limit, acct.Credits.Remaining())
	}
	if acct.Credits.ResetAt != nil {
		fmt.Printf("credits_reset_at=%s\n", acct.Credits.ResetAt.UTC().Format(time.RFC3339))
	}
	if acct.Subscription.Status != "" {
		fmt.Printf("subscription=%s\n", acct.Subscription.Status)
	}
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
