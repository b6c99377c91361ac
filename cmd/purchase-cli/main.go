// Command purchase-cli drives the gateway through a full purchase: health,
// register, login, purchase and order listing.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"

	"github.com/jcmexdev/purchase-sagas/internal/pkg/money"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/remote"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/telemetry"
)

func main() {
	var (
		gateway = pflag.String("gateway", "http://localhost:8000", "gateway base url")
		name    = pflag.String("name", "Ana", "identity name")
		email   = pflag.String("email", "", "identity email, generated when empty")
		amount  = pflag.String("amount", "150.00", "purchase amount")
		product = pflag.String("product", "Widget", "product name")
		method  = pflag.String("payment-method", "credit_card", "payment method")
		timeout = pflag.Duration("timeout", 10*time.Second, "per-call timeout")
		verbose = pflag.BoolP("verbose", "v", false, "log every remote call")
	)
	pflag.Parse()

	level := "error"
	if *verbose {
		level = "info"
	}
	logger := telemetry.InitLogger(level, "purchase-cli")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	amt, err := money.Parse(*amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid amount %q: %v\n", *amount, err)
		os.Exit(2)
	}

	d := &demo{
		client: remote.NewClient(remote.WithTimeout(*timeout), remote.WithLogger(logger)),
		base:   *gateway,
		out:    os.Stdout,
	}
	err = d.run(ctx, demoInput{
		Name:          *name,
		Email:         *email,
		Amount:        amt,
		ProductName:   *product,
		PaymentMethod: *method,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
