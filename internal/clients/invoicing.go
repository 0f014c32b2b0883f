package clients

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	applog "pujcovna/internal/log"
)

type InvoicingConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

type InvoiceLine struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Total     int64  `json:"total"`
}

type InvoiceRequest struct {
	ExternalID    string        `json:"external_id"`
	CustomerName  string        `json:"customer_name"`
	CustomerEmail string        `json:"customer_email"`
	Street        string        `json:"street,omitempty"`
	City          string        `json:"city,omitempty"`
	Zip           string        `json:"zip,omitempty"`
	Currency      string        `json:"currency"`
	IssuedOn      string        `json:"issued_on"`
	DueOn         string        `json:"due_on"`
	Lines         []InvoiceLine `json:"lines"`
}

type Invoice struct {
	ID     string `json:"id"`
	Number string `json:"number"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// InvoicingClient talks to the accounting API with OAuth client credentials.
type InvoicingClient struct {
	http    *resty.Client
	cfg     InvoicingConfig
	tokens  *TokenCache
	breaker *Breaker
	now     func() time.Time
}

func NewInvoicingClient(cfg InvoicingConfig, tokens *TokenCache, breaker *Breaker) *InvoicingClient {
	if tokens == nil {
		tokens = NewTokenCache(time.Now, 30*time.Second)
	}
	if breaker == nil {
		breaker = NewBreaker("invoicing")
	}
	return &InvoicingClient{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetRetryCount(0), // the breaker decides, not resty
		cfg:     cfg,
		tokens:  tokens,
		breaker: breaker,
		now:     tokens.now,
	}
}

func (c *InvoicingClient) fetchToken(ctx context.Context) (Token, error) {
	var out tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&out).
		Post("/oauth/token")
	if err != nil {
		return Token{}, fmt.Errorf("%w: invoicing token: %w", ErrUpstream, err)
	}
	if resp.IsError() {
		return Token{}, &APIError{Service: "invoicing", Status: resp.StatusCode(), Body: resp.String()}
	}
	if out.AccessToken == "" {
		return Token{}, fmt.Errorf("%w: invoicing token: empty access_token", ErrUpstream)
	}
	applog.WithFields(map[string]any{"expires_in": out.ExpiresIn}).Info("invoicing.token.refreshed")
	return Token{
		Value:     out.AccessToken,
		ExpiresAt: c.now().Add(time.Duration(out.ExpiresIn) * time.Second),
	}, nil
}

// CreateInvoice issues an invoice. A 401 drops the cached token and retries once.
func (c *InvoicingClient) CreateInvoice(ctx context.Context, req InvoiceRequest) (Invoice, error) {
	out, err := c.breaker.Execute(func() (any, error) {
		inv, status, err := c.postInvoice(ctx, req)
		if status == http.StatusUnauthorized {
			c.tokens.Invalidate()
			inv, _, err = c.postInvoice(ctx, req)
		}
		return inv, err
	})
	if err != nil {
		applog.WithFields(map[string]any{"reservation_id": req.ExternalID}).WithError(err).Error("invoicing.create.failed")
		return Invoice{}, err
	}
	inv := out.(Invoice)
	applog.WithFields(map[string]any{"reservation_id": req.ExternalID, "invoice_id": inv.ID}).Info("invoicing.create.ok")
	return inv, nil
}

func (c *InvoicingClient) postInvoice(ctx context.Context, req InvoiceRequest) (Invoice, int, error) {
	tok, err := c.tokens.Get(ctx, c.fetchToken)
	if err != nil {
		return Invoice{}, 0, err
	}
	var inv Invoice
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(tok).
		SetBody(req).
		SetResult(&inv).
		Post("/invoices")
	if err != nil {
		return Invoice{}, 0, fmt.Errorf("%w: invoicing: %w", ErrUpstream, err)
	}
	if resp.IsError() {
		return Invoice{}, resp.StatusCode(), &APIError{Service: "invoicing", Status: resp.StatusCode(), Body: resp.String()}
	}
	return inv, resp.StatusCode(), nil
}
