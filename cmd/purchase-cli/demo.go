package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jcmexdev/purchase-sagas/internal/pkg/interceptors"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/money"
)

type invoker interface {
	Invoke(ctx context.Context, method, target string, body, out any) error
}

type demoInput struct {
	Name          string
	Email         string
	Amount        money.Amount
	ProductName   string
	PaymentMethod string
}

type demo struct {
	client invoker
	base   string
	out    io.Writer
}

type userEnvelope struct {
	Message string `json:"message"`
	User    struct {
		UserID int64  `json:"user_id"`
		Name   string `json:"name"`
		Email  string `json:"email"`
	} `json:"user"`
}

type purchaseOutcome struct {
	SagaID         string `json:"saga_id"`
	Message        string `json:"message"`
	PurchaseStatus string `json:"purchase_status"`
	Reconciled     bool   `json:"reconciled"`
	Order          struct {
		OrderID int64  `json:"order_id"`
		Status  string `json:"status"`
	} `json:"order"`
	Transaction struct {
		TransactionID int64  `json:"transaction_id"`
		Status        string `json:"status"`
	} `json:"transaction"`
}

func (d *demo) run(ctx context.Context, in demoInput) error {
	if in.Email == "" {
		in.Email = fmt.Sprintf("%s.%s@demo.local", strings.ToLower(in.Name), uuid.NewString()[:8])
	}

	var report map[string]any
	if err := d.call(ctx, "health", http.MethodGet, "/health", nil, &report); err != nil {
		return err
	}

	var registered userEnvelope
	if err := d.call(ctx, "register", http.MethodPost, "/gateway/register",
		map[string]string{"name": in.Name, "email": in.Email}, &registered); err != nil {
		return err
	}

	var login userEnvelope
	if err := d.call(ctx, "login", http.MethodPost, "/gateway/login",
		map[string]string{"email": in.Email}, &login); err != nil {
		return err
	}

	var outcome purchaseOutcome
	if err := d.call(ctx, "purchase", http.MethodPost, "/gateway/purchase", map[string]any{
		"user_id":        login.User.UserID,
		"amount":         in.Amount,
		"product_name":   in.ProductName,
		"payment_method": in.PaymentMethod,
	}, &outcome); err != nil {
		return err
	}

	var orders map[string]any
	path := fmt.Sprintf("/gateway/user/%d/orders", login.User.UserID)
	if err := d.call(ctx, "orders", http.MethodGet, path, nil, &orders); err != nil {
		return err
	}

	fmt.Fprintf(d.out, "saga %s: %s (order %d %s, transaction %d %s)\n",
		outcome.SagaID, outcome.PurchaseStatus,
		outcome.Order.OrderID, outcome.Order.Status,
		outcome.Transaction.TransactionID, outcome.Transaction.Status)
	return nil
}

// call runs one step under a fresh request id and prints the decoded body.
func (d *demo) call(ctx context.Context, step, method, path string, body, out any) error {
	ctx = interceptors.WithRequestID(ctx, uuid.NewString())
	if err := d.client.Invoke(ctx, method, strings.TrimRight(d.base, "/")+path, body, out); err != nil {
		return fmt.Errorf("%s: %w", step, err)
	}
	pretty, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: encode output: %w", step, err)
	}
	fmt.Fprintf(d.out, "== %s\n%s\n", step, pretty)
	return nil
}
