package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/pkg/config"
)

var (
	baseURL   = flag.String("api", envOr("EVMARKET_API_URL", config.DefaultAPIBaseURL), "Marketplace API base URL")
	email     = flag.String("email", os.Getenv("EVMARKET_EMAIL"), "Account e-mail")
	password  = flag.String("password", os.Getenv("EVMARKET_PASSWORD"), "Account password")
	method    = flag.String("method", "momo", "Payment method for buy: momo or wallet")
	page      = flag.Int("page", 1, "History page")
	limit     = flag.Int("limit", 10, "History page size")
	timeout   = flag.Duration("timeout", 15*time.Second, "Request timeout")
	noBrowser = flag.Bool("no-browser", false, "Print payment links instead of opening them")
	verbose   = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	// Setup logger
	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger = zap.NewNop()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := options{
		BaseURL:   *baseURL,
		Email:     *email,
		Password:  *password,
		Method:    *method,
		Page:      *page,
		Limit:     *limit,
		Timeout:   *timeout,
		NoBrowser: *noBrowser,
		Verbose:   *verbose,
		Out:       os.Stdout,
	}

	if err := run(ctx, opts, flag.Args(), logger); err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: checkout [flags] <command> [args]

Commands:
  vehicles                   list vehicles for sale
  batteries                  list batteries for sale
  prepare <type> <id>        check that a listing can be bought
  ask <question...>          ask the marketplace assistant
  buy <type> <id>            buy a listing (type is vehicle or battery)
  wallet                     show wallet balance
  deposit <amount>           top up the wallet through MoMo
  history                    list your transactions

Flags:
`)
	flag.PrintDefaults()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
