package order

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chungmin23/storefront/internal/api"
	"github.com/chungmin23/storefront/internal/models"
	"github.com/chungmin23/storefront/internal/storage"
)

func TestCanCancel(t *testing.T) {
	tests := []struct {
		status models.OrderStatus
		want   bool
	}{
		{models.OrderPending, true},
		{models.OrderPaid, true},
		{models.OrderPreparing, false},
		{models.OrderShipping, false},
		{models.OrderDelivered, false},
		{models.OrderCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := CanCancel(tt.status); got != tt.want {
				t.Errorf("CanCancel(%s) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestStatusLabel(t *testing.T) {
	if got := StatusLabel(models.OrderShipping); got != "Shipping" {
		t.Errorf("StatusLabel(SHIPPING) = %q, want %q", got, "Shipping")
	}

	// Unknown statuses pass through verbatim so new backend statuses
	// never break the display.
	if got := StatusLabel(models.OrderStatus("REFUND_REQUESTED")); got != "REFUND_REQUESTED" {
		t.Errorf("StatusLabel(unknown) = %q, want verbatim", got)
	}
}

func TestCancelRejectedBeforeNetworkCall(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := api.New(srv.URL, 5*time.Second, storage.NewMemory(), log)
	svc := New(client, log)

	err := svc.Cancel(context.Background(), models.Order{
		OrderID: 1,
		Status:  models.OrderShipping,
	})
	if err == nil {
		t.Fatal("Cancel() succeeded for a shipping order")
	}
	if calls != 0 {
		t.Errorf("Cancel() made %d network calls, want 0", calls)
	}
}

func TestCancelPendingOrder(t *testing.T) {
	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ono":7,"status":"CANCELLED"}`))
	}))
	defer srv.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := api.New(srv.URL, 5*time.Second, storage.NewMemory(), log)
	svc := New(client, log)

	err := svc.Cancel(context.Background(), models.Order{
		OrderID: 7,
		Status:  models.OrderPending,
	})
	if err != nil {
		t.Fatalf("Cancel() unexpected error: %v", err)
	}
	if method != http.MethodDelete || path != "/orders/7" {
		t.Errorf("Cancel() called %s %s, want DELETE /orders/7", method, path)
	}
}
