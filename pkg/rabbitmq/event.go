// Package rabbitmq publishes and consumes product change events.
package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType is both the event name and its routing key.
type EventType string

const (
	ProductCreated EventType = "product.created"
	ProductUpdated EventType = "product.updated"
	ProductDeleted EventType = "product.deleted"
)

// ProductEvent records one change to a product. Product holds the JSON view
// of the product after the change, or before it for deletions.
type ProductEvent struct {
	EventID    string          `json:"event_id"`
	Type       EventType       `json:"type"`
	ProductID  uint            `json:"product_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Product    json.RawMessage `json:"product,omitempty"`
}

// NewProductEvent builds an event with a fresh id, marshalling product as
// its payload.
func NewProductEvent(t EventType, productID uint, product any) (ProductEvent, error) {
	payload, err := json.Marshal(product)
	if err != nil {
		return ProductEvent{}, fmt.Errorf("failed to marshal product payload: %w", err)
	}
	return ProductEvent{
		EventID:    uuid.NewString(),
		Type:       t,
		ProductID:  productID,
		OccurredAt: time.Now().UTC(),
		Product:    payload,
	}, nil
}

// DecodeProductEvent parses a message body.
func DecodeProductEvent(body []byte) (ProductEvent, error) {
	var e ProductEvent
	if err := json.Unmarshal(body, &e); err != nil {
		return ProductEvent{}, fmt.Errorf("failed to decode product event: %w", err)
	}
	if e.EventID == "" || e.Type == "" {
		return ProductEvent{}, fmt.Errorf("product event is missing id or type")
	}
	return e, nil
}
