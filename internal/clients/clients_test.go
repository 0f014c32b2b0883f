package clients_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pujcovna/internal/clients"
	"pujcovna/internal/metrics"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type invoicingStub struct {
	tokenCalls   atomic.Int32
	invoiceCalls atomic.Int32
	rejectFirst  bool
}

func (s *invoicingStub) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		id, secret, ok := r.BasicAuth()
		if !ok || id != "client" || secret != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_client"})
			return
		}
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		n := s.tokenCalls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"access_token": "tok-" + string(rune('0'+n)), "expires_in": 3600})
	})
	mux.HandleFunc("/invoices", func(w http.ResponseWriter, r *http.Request) {
		n := s.invoiceCalls.Add(1)
		if s.rejectFirst && n == 1 {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token expired"})
			return
		}
		if r.Header.Get("Authorization") == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing token"})
			return
		}
		var req clients.InvoiceRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeJSON(w, http.StatusCreated, clients.Invoice{ID: "inv-" + req.ExternalID, Number: "2025-0001"})
	})
	return mux
}

func newInvoicing(url, secret string) *clients.InvoicingClient {
	return clients.NewInvoicingClient(clients.InvoicingConfig{
		BaseURL: url, ClientID: "client", ClientSecret: secret, Timeout: 2 * time.Second,
	}, clients.NewTokenCache(time.Now, 30*time.Second), clients.NewBreaker("invoicing-test"))
}

func TestInvoicingClient_CachesToken(t *testing.T) {
	stub := &invoicingStub{}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()
	c := newInvoicing(srv.URL, "secret")

	for i := 0; i < 3; i++ {
		inv, err := c.CreateInvoice(context.Background(), clients.InvoiceRequest{ExternalID: "r-1", Currency: "CZK"})
		require.NoError(t, err)
		assert.Equal(t, "inv-r-1", inv.ID)
	}
	assert.EqualValues(t, 1, stub.tokenCalls.Load())
	assert.EqualValues(t, 3, stub.invoiceCalls.Load())
}

func TestInvoicingClient_RetriesOnceAfter401(t *testing.T) {
	stub := &invoicingStub{rejectFirst: true}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()
	c := newInvoicing(srv.URL, "secret")

	inv, err := c.CreateInvoice(context.Background(), clients.InvoiceRequest{ExternalID: "r-2"})
	require.NoError(t, err)
	assert.Equal(t, "2025-0001", inv.Number)
	assert.EqualValues(t, 2, stub.tokenCalls.Load())
	assert.EqualValues(t, 2, stub.invoiceCalls.Load())
}

func TestInvoicingClient_BadCredentials(t *testing.T) {
	stub := &invoicingStub{}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()
	c := newInvoicing(srv.URL, "wrong")

	_, err := c.CreateInvoice(context.Background(), clients.InvoiceRequest{ExternalID: "r-3"})
	require.Error(t, err)
	assert.ErrorIs(t, err, clients.ErrUpstream)
	var apiErr *clients.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.EqualValues(t, 0, stub.invoiceCalls.Load())
}

func TestShippingClient_SendsKeyAndSender(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/labels", r.URL.Path)
		assert.Equal(t, "k-123", r.Header.Get("X-Api-Key"))
		var req clients.LabelRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sender-7", req.SenderID)
		assert.Equal(t, "Brno", req.Recipient.City)
		writeJSON(w, http.StatusOK, clients.Label{TrackingNumber: "TRK-" + req.Reference, LabelURL: "https://labels.example/1.pdf"})
	}))
	defer srv.Close()

	c := clients.NewShippingClient(clients.ShippingConfig{
		BaseURL: srv.URL, APIKey: "k-123", SenderID: "sender-7", Timeout: 2 * time.Second,
	}, clients.NewBreaker("shipping-test"))

	label, err := c.CreateLabel(context.Background(), clients.LabelRequest{
		Reference:   "r-1",
		Recipient:   clients.Recipient{Name: "Jana", City: "Brno", Street: "Husova 5", Zip: "60200"},
		WeightGrams: 1500,
	})
	require.NoError(t, err)
	assert.Equal(t, "TRK-r-1", label.TrackingNumber)
}

func TestShippingClient_BreakerOpensAfterServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "down"})
	}))
	defer srv.Close()

	c := clients.NewShippingClient(clients.ShippingConfig{BaseURL: srv.URL, APIKey: "k", Timeout: time.Second},
		clients.NewBreaker("shipping-trip-test"))

	for i := 0; i < 3; i++ {
		_, err := c.CreateLabel(context.Background(), clients.LabelRequest{Reference: "r"})
		assert.ErrorIs(t, err, clients.ErrUpstream)
	}
	_, err := c.CreateLabel(context.Background(), clients.LabelRequest{Reference: "r"})
	assert.ErrorIs(t, err, clients.ErrUpstream)
	assert.Contains(t, err.Error(), "open")
	assert.EqualValues(t, 3, hits.Load())
	// the short-circuited call is not a recorded failure
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.CircuitBreakerFailures.WithLabelValues("shipping-trip-test")))
}

func TestShippingClient_ClientErrorsDoNotTrip(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "bad zip"})
	}))
	defer srv.Close()

	c := clients.NewShippingClient(clients.ShippingConfig{BaseURL: srv.URL, APIKey: "k", Timeout: time.Second},
		clients.NewBreaker("shipping-4xx-test"))
	for i := 0; i < 5; i++ {
		_, err := c.CreateLabel(context.Background(), clients.LabelRequest{Reference: "r"})
		var apiErr *clients.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	}
	assert.EqualValues(t, 5, hits.Load())
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.CircuitBreakerFailures.WithLabelValues("shipping-4xx-test")))
}
