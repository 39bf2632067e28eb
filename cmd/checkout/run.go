package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/adapter/api"
	"github.com/evmarket/checkout-client/internal/adapter/cache"
	"github.com/evmarket/checkout-client/internal/adapter/linking"
	"github.com/evmarket/checkout-client/internal/adapter/queue"
	"github.com/evmarket/checkout-client/internal/adapter/storage/memory"
	"github.com/evmarket/checkout-client/internal/domain"
	"github.com/evmarket/checkout-client/internal/infrastructure/circuitbreaker"
	"github.com/evmarket/checkout-client/internal/ports"
	"github.com/evmarket/checkout-client/internal/service/auth"
	"github.com/evmarket/checkout-client/internal/service/chatbot"
	"github.com/evmarket/checkout-client/internal/service/checkout"
	"github.com/evmarket/checkout-client/internal/service/listing"
	"github.com/evmarket/checkout-client/internal/service/notification"
	"github.com/evmarket/checkout-client/internal/service/session"
	"github.com/evmarket/checkout-client/internal/service/transaction"
	"github.com/evmarket/checkout-client/internal/service/wallet"
)

var errUsage = errors.New("usage: checkout [flags] <command> [args], see -h")

type options struct {
	BaseURL   string
	Email     string
	Password  string
	Method    string
	Page      int
	Limit     int
	Timeout   time.Duration
	NoBrowser bool
	Verbose   bool
	Out       io.Writer

	// Opener overrides the URL handler chosen from NoBrowser.
	Opener ports.URLOpener
}

// app holds the services one CLI invocation works with.
type app struct {
	opts         options
	auth         *auth.Service
	checkout     *checkout.Service
	wallet       *wallet.Service
	transactions *transaction.Service
	listings     *listing.Service
	chatbot      *chatbot.Service
	opener       ports.URLOpener
	log          *zap.Logger
}

func newApp(opts options, log *zap.Logger) (*app, func()) {
	localCache := cache.NewLocalCache(time.Minute, log)
	sessions := session.NewStore(localCache, session.Config{}, log)

	client := api.NewClient(api.Config{
		BaseURL: opts.BaseURL,
		Timeout: opts.Timeout,
	}, circuitbreaker.New(circuitbreaker.Settings{Name: "evmarket-api"}, log), sessions, log)

	records := memory.NewCheckoutRecordRepository()
	mq := queue.NewLocalQueue(log)

	// Checkout milestones only matter to a terminal user in verbose mode
	var events ports.EventPublisher
	if opts.Verbose {
		if err := queue.SubscribeCheckoutEvents(mq, queue.CheckoutSubjects, func(e domain.CheckoutEvent) error {
			log.Info("Checkout event",
				zap.String("subject", e.Subject),
				zap.String("transaction_id", e.TransactionID),
				zap.String("stage", string(e.Stage)),
			)
			return nil
		}, log); err == nil {
			events = queue.NewEventPublisher(mq, log)
		}
	}

	opener := opts.Opener
	if opener == nil {
		if opts.NoBrowser {
			opener = linking.NewPrintOpener(opts.Out)
		} else {
			opener = linking.NewSystemOpener(log)
		}
	}

	a := &app{
		opts: opts,
		auth: auth.NewService(client, sessions, log),
		checkout: checkout.NewService(
			checkout.NewGate(client, log),
			checkout.NewRouter(client, log),
			records, events, sessions, log,
		),
		wallet:       wallet.NewService(client, log),
		transactions: transaction.NewService(client, records, log),
		listings:     listing.NewService(client, log),
		chatbot:      chatbot.NewService(client, log),
		opener:       opener,
		log:          log,
	}

	cleanup := func() {
		_ = mq.Close()
		_ = localCache.Close()
	}
	return a, cleanup
}

func run(ctx context.Context, opts options, args []string, log *zap.Logger) error {
	if len(args) == 0 {
		return errUsage
	}

	a, cleanup := newApp(opts, log)
	defer cleanup()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "vehicles":
		return a.listVehicles(ctx)
	case "batteries":
		return a.listBatteries(ctx)
	case "prepare":
		productType, productID, err := listingArgs(rest)
		if err != nil {
			return err
		}
		return a.prepare(ctx, productType, productID)
	case "ask":
		return a.ask(ctx, strings.Join(rest, " "))
	}

	// Everything else needs a session
	if err := a.login(ctx); err != nil {
		return err
	}
	defer func() {
		if err := a.auth.Logout(context.Background()); err != nil {
			log.Debug("Logout failed", zap.Error(err))
		}
	}()

	switch cmd {
	case "buy":
		productType, productID, err := listingArgs(rest)
		if err != nil {
			return err
		}
		return a.buy(ctx, productType, productID)
	case "wallet":
		return a.balance(ctx)
	case "deposit":
		if len(rest) != 1 {
			return errUsage
		}
		amount, err := strconv.ParseFloat(rest[0], 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", rest[0], err)
		}
		return a.deposit(ctx, amount)
	case "history":
		return a.history(ctx)
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

func listingArgs(args []string) (domain.ListingType, string, error) {
	if len(args) != 2 {
		return "", "", errUsage
	}
	productType, err := domain.ParseListingType(args[0])
	if err != nil {
		return "", "", err
	}
	return productType, args[1], nil
}

func (a *app) login(ctx context.Context) error {
	if a.opts.Email == "" || a.opts.Password == "" {
		return errors.New("set -email and -password (or EVMARKET_EMAIL and EVMARKET_PASSWORD)")
	}
	sess, err := a.auth.Login(ctx, a.opts.Email, a.opts.Password)
	if err != nil {
		return err
	}
	if sess.User != nil {
		a.log.Debug("Logged in", zap.String("user_id", sess.User.ID))
	}
	return nil
}

func (a *app) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.opts.Out, format, args...)
}

func (a *app) listVehicles(ctx context.Context) error {
	listings, err := a.listings.ListVehicles(ctx)
	if err != nil {
		return err
	}
	a.printListings(listings)
	return nil
}

func (a *app) listBatteries(ctx context.Context) error {
	listings, err := a.listings.ListBatteries(ctx)
	if err != nil {
		return err
	}
	a.printListings(listings)
	return nil
}

func (a *app) printListings(listings []domain.Listing) {
	w := tabwriter.NewWriter(a.opts.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRICE\tSTATUS")
	for _, l := range listings {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", l.ID, l.Title, notification.FormatVND(l.Price), l.Status)
	}
	_ = w.Flush()
}

func (a *app) prepare(ctx context.Context, productType domain.ListingType, productID string) error {
	l, err := a.checkout.Prepare(ctx, productID, productType)
	if err != nil {
		return err
	}
	a.printf("%s is available for %s\n", l.Title, notification.FormatVND(l.Price))
	return nil
}

func (a *app) ask(ctx context.Context, question string) error {
	answer, err := a.chatbot.Ask(ctx, question)
	if err != nil {
		return err
	}
	a.printf("%s\n", answer.Answer)
	return nil
}

func (a *app) buy(ctx context.Context, productType domain.ListingType, productID string) error {
	selection, err := domain.ParsePaymentSelection(a.opts.Method)
	if err != nil {
		return domain.NewCheckoutError(domain.KindValidation, domain.MsgPaymentMethodRequired, err)
	}

	outcome, err := a.checkout.Checkout(ctx, ports.CheckoutCommand{
		ProductID:   productID,
		ProductType: productType,
		Selection:   selection,
		Opener:      a.opener,
	})
	if err != nil {
		return err
	}

	a.printf("%s\n", outcome.Message)
	a.printf("Transaction: %s (%s)\n", outcome.TransactionID, outcome.Stage)
	if outcome.Handoff != nil {
		a.printf("Payment link (%s): %s\n", outcome.Handoff.Via, outcome.Handoff.URL)
		a.printf("Run \"checkout history\" once the payment is done.\n")
	}
	return nil
}

func (a *app) balance(ctx context.Context) error {
	w, err := a.wallet.Balance(ctx)
	if err != nil {
		return err
	}
	a.printf("Available: %s\n", notification.FormatVND(w.AvailableBalance))
	a.printf("Locked:    %s\n", notification.FormatVND(w.LockedBalance))
	return nil
}

func (a *app) deposit(ctx context.Context, amount float64) error {
	handoff, err := a.wallet.Deposit(ctx, amount, a.opener)
	if err != nil {
		return err
	}
	a.printf("Complete the %s top-up in MoMo (%s): %s\n", notification.FormatVND(amount), handoff.Via, handoff.URL)
	return nil
}

func (a *app) history(ctx context.Context) error {
	p, err := a.transactions.History(ctx, a.opts.Page, a.opts.Limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.opts.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRODUCT\tAMOUNT\tMETHOD\tSTATUS")
	for _, tx := range p.Transactions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", tx.ID, productTitle(&tx), notification.FormatVND(tx.FinalPrice), tx.PaymentGateway, tx.Status)
	}
	_ = w.Flush()
	a.printf("Page %d of %d\n", p.Page.Page, p.TotalPages)
	return nil
}

func productTitle(tx *domain.Transaction) string {
	switch {
	case tx.Vehicle != nil:
		return tx.Vehicle.Title
	case tx.Battery != nil:
		return tx.Battery.Title
	default:
		return tx.ListingID()
	}
}

// describe renders an error for the terminal. Checkout errors show their
// buyer-facing text and any transaction left pending.
func describe(err error) string {
	var ce *domain.CheckoutError
	if !errors.As(err, &ce) {
		return "Error: " + err.Error()
	}

	var b strings.Builder
	b.WriteString(ce.Message)
	if ce.PendingTransactionID != "" {
		fmt.Fprintf(&b, "\nTransaction %s was created and is still pending.", ce.PendingTransactionID)
	}
	return b.String()
}
