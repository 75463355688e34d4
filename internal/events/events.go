package events

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/kevin-vien/web-mobile-tranning/internal/models"
)

const EventOrderCreated = "order.created"

type Event struct {
	EventID   string         `json:"event_id"`
	OrderID   uint           `json:"order_id"`
	CreatedAt time.Time      `json:"created_at"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
}

type Line struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

// OrderCreated builds the event emitted after a checkout commits.
func OrderCreated(order models.Order) Event {
	lines := make([]Line, 0, len(order.Details))
	for _, d := range order.Details {
		lines = append(lines, Line{ProductID: d.ProductID, Quantity: d.Quantity, Price: d.Price.StringFixed(2)})
	}
	return Event{
		EventID:   uuid.NewString(),
		OrderID:   order.ID,
		CreatedAt: time.Now().UTC(),
		Type:      EventOrderCreated,
		Payload: map[string]any{
			"user_id":        order.UserID,
			"total_price":    order.TotalPrice.StringFixed(2),
			"payment_method": order.PaymentMethod,
			"status":         order.Status,
			"lines":          lines,
		},
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes order events to one topic, keyed by order id so every
// event of an order lands on the same partition.
type Publisher struct {
	writer messageWriter
}

func ParseBrokers(csv string) []string {
	brokers := []string{}
	for _, b := range strings.Split(csv, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}}
}

func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(ev.OrderID), 10)),
		Value: data,
		Time:  ev.CreatedAt,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
