// Package events publishes reservation lifecycle events to RabbitMQ so that
// out-of-process consumers (the customer mailer) can react to them.
package events

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const RoutingReservationConfirmed = "reservation.confirmed"

type ReservationConfirmed struct {
	ReservationID string    `json:"reservation_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	TotalPrice    int64     `json:"total_price"`
	DepositTotal  int64     `json:"deposit_total"`
	Currency      string    `json:"currency"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}

// Publishing encodes the event as a persistent JSON message.
func (e ReservationConfirmed) Publishing() (amqp.Publishing, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    e.ReservationID,
		Type:         RoutingReservationConfirmed,
		Timestamp:    e.ConfirmedAt.UTC(),
		Body:         body,
	}, nil
}

type Publisher interface {
	PublishReservationConfirmed(ctx context.Context, ev ReservationConfirmed) error
}

// NopPublisher drops every event; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishReservationConfirmed(context.Context, ReservationConfirmed) error { return nil }
