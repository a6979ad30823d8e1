package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/diagnosis/carshop-bookings/pkg/logger"
	"github.com/nats-io/nats.go"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("carshop-bookings"),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{conn: conn}, nil
}

func (n *NATSPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

// Close flushes buffered messages before closing the connection.
func (n *NATSPublisher) Close() error {
	return n.conn.Drain()
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, interface{}) error { return nil }
func (Nop) Close() error                                       { return nil }

const (
	ServiceCreated       = "service.created"
	BookingCreated       = "booking.created"
	BookingStatusUpdated = "booking.status_updated"
	BookingDeleted       = "booking.deleted"
	BookingsPurged       = "booking.purged"
)

type ServiceCreatedEvent struct {
	ServiceID string    `json:"service_id"`
	Name      string    `json:"name,omitempty"`
	Price     any       `json:"price,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type BookingCreatedEvent struct {
	BookingID string    `json:"booking_id"`
	Email     string    `json:"email"`
	ServiceID string    `json:"service_id,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type BookingStatusUpdatedEvent struct {
	BookingID string    `json:"booking_id"`
	Status    string    `json:"status"`
	Modified  bool      `json:"modified"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BookingDeletedEvent struct {
	BookingID string    `json:"booking_id,omitempty"`
	Count     int64     `json:"count"`
	DeletedAt time.Time `json:"deleted_at"`
}
