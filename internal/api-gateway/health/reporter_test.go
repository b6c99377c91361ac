package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/jcmexdev/purchase-sagas/internal/pkg/remote"
)

type fakeInvoker struct {
	statuses map[string]string
	failing  map[string]error
}

func (f *fakeInvoker) Invoke(_ context.Context, _, target string, _, out any) error {
	for name, err := range f.failing {
		if strings.Contains(target, name) {
			return err
		}
	}
	for name, status := range f.statuses {
		if strings.Contains(target, name) {
			raw, _ := json.Marshal(map[string]string{"status": status})
			return json.Unmarshal(raw, out)
		}
	}
	return errors.New("no route")
}

func targets() []Target {
	return []Target{
		{Name: "users", BaseURL: "http://users"},
		{Name: "orders", BaseURL: "http://orders/"},
		{Name: "billing", BaseURL: "http://billing"},
	}
}

func TestCheck_AllHealthy(t *testing.T) {
	defer goleak.VerifyNone(t)

	inv := &fakeInvoker{statuses: map[string]string{"users": "healthy", "orders": "healthy", "billing": "healthy"}}
	report := NewReporter(inv, targets()...).Check(context.Background())

	assert.Equal(t, StatusHealthy, report.Status)
	assert.Equal(t, "gateway", report.Service)
	assert.Equal(t, map[string]string{"users": "healthy", "orders": "healthy", "billing": "healthy"}, report.Services)
}

func TestCheck_OneFailureDegrades(t *testing.T) {
	defer goleak.VerifyNone(t)

	inv := &fakeInvoker{
		statuses: map[string]string{"users": "healthy", "orders": "healthy"},
		failing:  map[string]error{"billing": &remote.Error{Class: remote.ClassTimeout, Message: "deadline exceeded"}},
	}
	report := NewReporter(inv, targets()...).Check(context.Background())

	assert.Equal(t, StatusDegraded, report.Status)
	assert.Equal(t, StatusUnhealthy, report.Services["billing"])
	assert.Equal(t, StatusHealthy, report.Services["users"])
}

func TestCheck_NonHealthyStatusIsReported(t *testing.T) {
	inv := &fakeInvoker{statuses: map[string]string{"users": "starting", "orders": "", "billing": "healthy"}}
	report := NewReporter(inv, targets()...).Check(context.Background())

	assert.Equal(t, StatusDegraded, report.Status)
	assert.Equal(t, "starting", report.Services["users"])
	assert.Equal(t, StatusUnknown, report.Services["orders"])
}

func TestCheck_TimedOutProbeOverHTTP(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"healthy","service":"x"}`))
	}))
	defer ok.Close()
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer slow.Close()
	defer close(release)

	client := remote.NewClient(remote.WithTimeout(100 * time.Millisecond))
	reporter := NewReporter(client,
		Target{Name: "users", BaseURL: ok.URL},
		Target{Name: "orders", BaseURL: ok.URL},
		Target{Name: "billing", BaseURL: slow.URL},
	)

	start := time.Now()
	report := reporter.Check(context.Background())

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, StatusDegraded, report.Status)
	assert.Equal(t, StatusUnhealthy, report.Services["billing"])
	assert.Equal(t, StatusHealthy, report.Services["orders"])
}
