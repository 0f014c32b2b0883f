package events

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	applog "pujcovna/internal/log"
	"pujcovna/internal/metrics"
)

// AMQPPublisher keeps one broker connection and opens a channel per message.
// A dropped connection is redialled on the next publish.
type AMQPPublisher struct {
	url  string
	mu   sync.Mutex
	conn *amqp.Connection
}

func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	p := &AMQPPublisher{url: url}
	if _, err := p.connection(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *AMQPPublisher) connection() (*amqp.Connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn, nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, err
	}
	p.conn = conn
	return conn, nil
}

func (p *AMQPPublisher) PublishReservationConfirmed(ctx context.Context, ev ReservationConfirmed) error {
	err := p.publish(ctx, RoutingReservationConfirmed, ev)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		applog.WithFields(map[string]any{"reservation_id": ev.ReservationID}).WithError(err).Error("rabbitmq.publish.failed")
	}
	metrics.EventsPublished.WithLabelValues(RoutingReservationConfirmed, outcome).Inc()
	return err
}

func (p *AMQPPublisher) publish(ctx context.Context, queue string, ev ReservationConfirmed) error {
	conn, err := p.connection()
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return err
	}
	msg, err := ev.Publishing()
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, "", queue, false, false, msg)
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	return p.conn.Close()
}
