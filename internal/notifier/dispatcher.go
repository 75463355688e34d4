package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kevin-vien/web-mobile-tranning/internal/events"
	"github.com/kevin-vien/web-mobile-tranning/internal/logging"
	"github.com/kevin-vien/web-mobile-tranning/internal/metrics"
	"github.com/kevin-vien/web-mobile-tranning/internal/models"
)

type Mailer interface {
	Name() string
	Send(ctx context.Context, to string, msg Message) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, text string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, ev events.Event) error
}

type ContactLookup interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// Dispatcher fans a committed order out to every configured channel. Each
// channel runs on its own goroutine under a shared deadline; failures are
// logged and counted, never returned.
type Dispatcher struct {
	timeout  time.Duration
	mailer   Mailer
	sms      SMSSender
	events   EventPublisher
	contacts ContactLookup
	metrics  *metrics.Metrics

	wg sync.WaitGroup
}

func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{timeout: timeout}
}

func (d *Dispatcher) WithMailer(m Mailer) *Dispatcher {
	d.mailer = m
	return d
}

// WithSMS needs contacts to find the customer's phone number.
func (d *Dispatcher) WithSMS(s SMSSender, contacts ContactLookup) *Dispatcher {
	d.sms = s
	d.contacts = contacts
	return d
}

func (d *Dispatcher) WithEvents(p EventPublisher) *Dispatcher {
	d.events = p
	return d
}

func (d *Dispatcher) WithMetrics(m *metrics.Metrics) *Dispatcher {
	d.metrics = m
	return d
}

// OrderPlaced returns immediately; delivery happens in the background.
func (d *Dispatcher) OrderPlaced(order models.Order, email string) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		d.deliver(ctx, order, email)
	}()
}

// Wait blocks until in-flight deliveries finish or ctx expires.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) deliver(ctx context.Context, order models.Order, email string) {
	var wg sync.WaitGroup
	run := func(channel string, send func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.attempt(ctx, order.ID, channel, send)
		}()
	}

	if d.mailer != nil && email != "" {
		run("email_"+d.mailer.Name(), func(ctx context.Context) error {
			return d.mailer.Send(ctx, email, OrderConfirmation(order))
		})
	}

	if d.sms != nil && d.contacts != nil {
		run("sms", func(ctx context.Context) error {
			user, err := d.contacts.GetByID(ctx, order.UserID)
			if err != nil {
				return fmt.Errorf("contact lookup: %w", err)
			}
			if user.Phone == "" {
				return errSkipped
			}
			return d.sms.SendSMS(ctx, user.Phone, orderSMS(order))
		})
	}

	if d.events != nil {
		run("kafka", func(ctx context.Context) error {
			return d.events.Publish(ctx, events.OrderCreated(order))
		})
	}

	wg.Wait()
}

var errSkipped = errors.New("nothing to send")

func (d *Dispatcher) attempt(ctx context.Context, orderID uint, channel string, send func(context.Context) error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			d.metrics.ObserveNotification(channel, "failed")
			logging.Log(logging.Fields{OrderID: orderID, Step: "notify_" + channel, Status: "panic", Error: fmt.Sprint(r)})
		}
	}()

	err := send(ctx)
	fields := logging.Fields{OrderID: orderID, Step: "notify_" + channel, DurationMS: time.Since(start).Milliseconds()}
	switch {
	case err == nil:
		d.metrics.ObserveNotification(channel, "sent")
		fields.Status = "sent"
		logging.Log(fields)
	case errors.Is(err, errSkipped):
		d.metrics.ObserveNotification(channel, "skipped")
	default:
		d.metrics.ObserveNotification(channel, "failed")
		fields.Status = "failed"
		logging.Err(fields, err)
	}
}
