// Command rewardctl is the oracle and operator client of the reward ledger.
//
//	rewardctl distribute --snapshot snapshot.yaml --as GADMIN --jwt-secret ...
//	rewardctl claim --campaign 3 --as GALICE --jwt-secret ...
//	rewardctl claim-all --as GALICE --token ...
//	rewardctl rewards --user GALICE
//	rewardctl campaign --campaign 3
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	httpadapter "reward-ledger/internal/adapter/http"
	"reward-ledger/internal/core/domain"
	"reward-ledger/internal/oracle"
)

const usage = `usage: rewardctl <distribute|claim|claim-all|rewards|campaign> [flags]`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	_ = godotenv.Load()

	cmd := args[0]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	urlFlag := fs.String("url", envOr("REWARD_LEDGER_URL", "http://localhost:8080"), "ledger API base URL (or REWARD_LEDGER_URL)")
	tokenFlag := fs.String("token", os.Getenv("REWARD_LEDGER_TOKEN"), "bearer token (or REWARD_LEDGER_TOKEN)")
	secretFlag := fs.String("jwt-secret", os.Getenv("AUTH_JWT_SECRET"), "mint a token with this HS256 secret (or AUTH_JWT_SECRET)")
	issuerFlag := fs.String("issuer", envOr("AUTH_ISSUER", "reward-ledger"), "token issuer")
	asFlag := fs.String("as", "", "address to act as when minting a token")
	campaignFlag := fs.Uint32("campaign", 0, "campaign id")
	userFlag := fs.String("user", "", "user address (defaults to --as)")
	snapshotFlag := fs.String("snapshot", "", "balance snapshot YAML file")
	dryRunFlag := fs.Bool("dry-run", false, "print the distribution payload without sending it")
	timeoutFlag := fs.Duration("timeout", 30*time.Second, "request timeout")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	token := *tokenFlag
	if token == "" && *secretFlag != "" && *asFlag != "" {
		auth, err := httpadapter.NewTokenAuth(*secretFlag, *issuerFlag, 0)
		if err != nil {
			return err
		}
		if token, err = auth.Issue(domain.ParseAddress(*asFlag), 5*time.Minute); err != nil {
			return err
		}
	}
	user := *userFlag
	if user == "" {
		user = *asFlag
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancel = context.WithTimeout(ctx, *timeoutFlag)
	defer cancel()

	client := oracle.NewClient(*urlFlag, token)
	var (
		out json.RawMessage
		err error
	)
	switch cmd {
	case "distribute":
		if *snapshotFlag == "" {
			return errors.New("--snapshot is required")
		}
		snap, err := oracle.LoadSnapshot(*snapshotFlag)
		if err != nil {
			return err
		}
		if *campaignFlag != 0 {
			snap.CampaignID = *campaignFlag
		}
		payload, err := snap.Payload()
		if err != nil {
			return err
		}
		if *dryRunFlag {
			return printJSON(payload)
		}
		out, err = client.Distribute(ctx, snap.CampaignID, payload)
		if err != nil {
			return printError(out, err)
		}
	case "claim":
		if *campaignFlag == 0 {
			return errors.New("--campaign is required")
		}
		out, err = client.Claim(ctx, *campaignFlag)
	case "claim-all":
		if user == "" {
			return errors.New("--user or --as is required")
		}
		out, err = client.ClaimAll(ctx, user)
	case "rewards":
		if user == "" {
			return errors.New("--user or --as is required")
		}
		out, err = client.Rewards(ctx, user)
	case "campaign":
		if *campaignFlag == 0 {
			return errors.New("--campaign is required")
		}
		out, err = client.Campaign(ctx, *campaignFlag)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
	if err != nil {
		return printError(out, err)
	}
	return printJSON(out)
}

// printError shows partial results, such as the claims that succeeded
// before a claim-all failed, and returns err.
func printError(out json.RawMessage, err error) error {
	if len(out) > 0 {
		_ = printJSON(out)
	}
	return err
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
