package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ebetcoin/backend/internal/config"
	"github.com/ebetcoin/backend/internal/middleware"
	"github.com/ebetcoin/backend/internal/model"
	"github.com/ebetcoin/backend/internal/repository"
	"github.com/ebetcoin/backend/internal/service"
	"github.com/ebetcoin/backend/pkg/logger"
)

const usage = `usage: ledgerctl <command> [flags]

commands:
  status                          show whether balances are in USD or EBT
  convert-ebt                     convert all USD balances to EBT (runs once)
  revert-ebt                      undo convert-ebt
  dedupe-wallets                  merge duplicate wallets per user
  credit -admin ID [-file F] [-desc D] USER:AMOUNT...
                                  credit users in one transaction
  add-admin -user ID [-role R]    grant admin access
  issue-token -user ID [-name N] [-ttl D]
                                  print a signed API token`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Global().Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(logger.Config{Level: cfg.Log.Level, Format: "console", Output: os.Stderr})
	log := logger.Global()

	cmd, args := os.Args[1], os.Args[2:]

	// issue-token needs no database
	if cmd == "issue-token" {
		if err := issueToken(cfg.Auth, args); err != nil {
			log.Fatal().Err(err).Msg("issue-token failed")
		}
		return
	}

	repo, err := repository.New(cfg.Database.DSN(), cfg.Ledger.SnowflakeNode)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	maintenance := service.NewMaintenanceService(repo, cfg.Ledger.EBTPerUSD)
	admin := service.NewAdminService(repo, cfg.Ledger)

	switch cmd {
	case "status":
		err = status(ctx, maintenance)
	case "convert-ebt":
		err = convert(ctx, maintenance)
	case "revert-ebt":
		err = revert(ctx, maintenance)
	case "dedupe-wallets":
		err = dedupe(ctx, maintenance)
	case "credit":
		err = credit(ctx, admin, args)
	case "add-admin":
		err = addAdmin(ctx, admin, args)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", cmd).Msg("command failed")
	}
}

func status(ctx context.Context, svc *service.MaintenanceService) error {
	st, err := svc.Status(ctx)
	if err != nil {
		return err
	}
	return printJSON(st)
}

func convert(ctx context.Context, svc *service.MaintenanceService) error {
	rep, err := svc.ConvertToEBT(ctx)
	if err != nil {
		return err
	}
	logger.Global().Info().
		Int64("wallets", rep.Wallets).
		Int64("transactions", rep.Transactions).
		Int64("withdrawals", rep.Withdrawals).
		Msg("converted to EBT")
	return nil
}

func revert(ctx context.Context, svc *service.MaintenanceService) error {
	rep, err := svc.RevertEBT(ctx)
	if err != nil {
		return err
	}
	logger.Global().Info().
		Int64("wallets", rep.Wallets).
		Int64("transactions", rep.Transactions).
		Int64("withdrawals", rep.Withdrawals).
		Msg("reverted to USD")
	return nil
}

func dedupe(ctx context.Context, svc *service.MaintenanceService) error {
	merges, err := svc.DeduplicateWallets(ctx)
	if err != nil {
		return err
	}
	if len(merges) == 0 {
		logger.Global().Info().Msg("no duplicate wallets")
		return nil
	}
	return printJSON(merges)
}

func credit(ctx context.Context, svc *service.AdminService, args []string) error {
	fs := flag.NewFlagSet("credit", flag.ExitOnError)
	adminID := fs.Int64("admin", 0, "id of the operator recorded in the audit log")
	file := fs.String("file", "", `JSON file with [{"user_id":1,"amount":"10.00"}]`)
	desc := fs.String("desc", "", "transaction description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *adminID <= 0 {
		return fmt.Errorf("-admin is required")
	}

	credits, err := parseCreditArgs(fs.Args())
	if err != nil {
		return err
	}
	if *file != "" {
		fromFile, err := readCreditFile(*file)
		if err != nil {
			return err
		}
		credits = append(credits, fromFile...)
	}

	txs, err := svc.CreditUsers(ctx, *adminID, credits, *desc)
	if err != nil {
		return err
	}
	return printJSON(txs)
}

// parseCreditArgs reads USER:AMOUNT pairs. Amounts are left as strings and
// validated by the service.
func parseCreditArgs(args []string) ([]model.Credit, error) {
	credits := make([]model.Credit, 0, len(args))
	for _, arg := range args {
		user, amount, ok := strings.Cut(arg, ":")
		if !ok {
			return nil, fmt.Errorf("expected USER:AMOUNT, got %q", arg)
		}
		id, err := strconv.ParseInt(user, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q", user)
		}
		credits = append(credits, model.Credit{UserID: id, Amount: amount})
	}
	return credits, nil
}

func readCreditFile(path string) ([]model.Credit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credit file: %w", err)
	}
	var credits []model.Credit
	if err := json.Unmarshal(data, &credits); err != nil {
		return nil, fmt.Errorf("failed to parse credit file: %w", err)
	}
	return credits, nil
}

func addAdmin(ctx context.Context, svc *service.AdminService, args []string) error {
	fs := flag.NewFlagSet("add-admin", flag.ExitOnError)
	userID := fs.Int64("user", 0, "user id")
	role := fs.String("role", string(model.AdminRoleAdmin), "admin or superadmin")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID <= 0 {
		return fmt.Errorf("-user is required")
	}
	if err := svc.GrantAdmin(ctx, *userID, model.AdminRole(*role)); err != nil {
		return err
	}
	logger.Global().Info().Int64("user_id", *userID).Str("role", *role).Msg("admin granted")
	return nil
}

func issueToken(auth config.AuthConfig, args []string) error {
	fs := flag.NewFlagSet("issue-token", flag.ExitOnError)
	userID := fs.Int64("user", 0, "user id")
	name := fs.String("name", "", "username claim")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID <= 0 {
		return fmt.Errorf("-user is required")
	}
	tok, err := middleware.NewToken(auth, *userID, *name, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
