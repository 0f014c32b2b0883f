package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	applog "pujcovna/internal/log"
)

type ShippingConfig struct {
	BaseURL  string
	APIKey   string
	SenderID string
	Timeout  time.Duration
}

type Recipient struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone,omitempty"`
	Street string `json:"street"`
	City   string `json:"city"`
	Zip    string `json:"zip"`
}

type LabelRequest struct {
	SenderID    string    `json:"sender_id"`
	Reference   string    `json:"reference"`
	Recipient   Recipient `json:"recipient"`
	WeightGrams int       `json:"weight_g"`
}

type Label struct {
	TrackingNumber string `json:"tracking_number"`
	LabelURL       string `json:"label_url"`
}

// ShippingClient books parcel labels with the carrier API.
type ShippingClient struct {
	http    *resty.Client
	cfg     ShippingConfig
	breaker *Breaker
}

func NewShippingClient(cfg ShippingConfig, breaker *Breaker) *ShippingClient {
	if breaker == nil {
		breaker = NewBreaker("shipping")
	}
	return &ShippingClient{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetHeader("X-Api-Key", cfg.APIKey).
			SetRetryCount(0),
		cfg:     cfg,
		breaker: breaker,
	}
}

func (c *ShippingClient) CreateLabel(ctx context.Context, req LabelRequest) (Label, error) {
	if req.SenderID == "" {
		req.SenderID = c.cfg.SenderID
	}
	out, err := c.breaker.Execute(func() (any, error) {
		var label Label
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(req).
			SetResult(&label).
			Post("/labels")
		if err != nil {
			return nil, fmt.Errorf("%w: shipping: %w", ErrUpstream, err)
		}
		if resp.IsError() {
			return nil, &APIError{Service: "shipping", Status: resp.StatusCode(), Body: resp.String()}
		}
		if label.TrackingNumber == "" {
			return nil, fmt.Errorf("%w: shipping: response without tracking number", ErrUpstream)
		}
		return label, nil
	})
	if err != nil {
		applog.WithFields(map[string]any{"reservation_id": req.Reference}).WithError(err).Error("shipping.label.failed")
		return Label{}, err
	}
	label := out.(Label)
	applog.WithFields(map[string]any{"reservation_id": req.Reference, "tracking": label.TrackingNumber}).Info("shipping.label.ok")
	return label, nil
}
