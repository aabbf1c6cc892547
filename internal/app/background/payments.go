package background

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/LavaJover/agro-escrow-service/internal/domain"
	"github.com/LavaJover/agro-escrow-service/internal/infrastructure/metrics"
	"github.com/cenkalti/backoff/v4"
)

const PaymentCaptured = "captured"

const (
	defaultRetryInitial = 500 * time.Millisecond
	defaultRetryMax     = 30 * time.Second
)

var errFundingFailed = errors.New("funding failed")

// PaymentConfirmation is the message the payment gateway emits once a buyer's
// payment settles.
type PaymentConfirmation struct {
	EscrowID         string `json:"escrow_id"`
	PaymentReference string `json:"payment_reference"`
	Status           string `json:"status"`
}

type EscrowFunder interface {
	Fund(ctx context.Context, escrowID, paymentReference string) (*domain.Escrow, error)
	Get(ctx context.Context, escrowID string) (*domain.Escrow, error)
}

type PaymentConsumer struct {
	subscriber   domain.SubscriberPort
	escrow       EscrowFunder
	metrics      *metrics.EscrowMetrics
	topic        string
	groupID      string
	retryInitial time.Duration
	retryMax     time.Duration
}

type PaymentConsumerOption func(*PaymentConsumer)

// WithRetryInterval bounds the exponential backoff between attempts at a
// confirmation whose funding failed.
func WithRetryInterval(initial, maxInterval time.Duration) PaymentConsumerOption {
	return func(c *PaymentConsumer) {
		c.retryInitial = initial
		c.retryMax = maxInterval
	}
}

func NewPaymentConsumer(subscriber domain.SubscriberPort, escrow EscrowFunder, m *metrics.EscrowMetrics, topic, groupID string, opts ...PaymentConsumerOption) *PaymentConsumer {
	c := &PaymentConsumer{
		subscriber:   subscriber,
		escrow:       escrow,
		metrics:      m,
		topic:        topic,
		groupID:      groupID,
		retryInitial: defaultRetryInitial,
		retryMax:     defaultRetryMax,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run consumes confirmations until ctx is done or the subscription closes.
// A message is committed once it reaches a final outcome; a failed funding
// is retried and stays uncommitted, so a restart delivers it again.
func (c *PaymentConsumer) Run(ctx context.Context) error {
	msgs, err := c.subscriber.Subscribe(ctx, c.topic, c.groupID)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", c.topic, err)
	}
	slog.Info("payment consumer started", "topic", c.topic, "group_id", c.groupID)

	for msg := range msgs {
		if err := c.process(ctx, msg); err != nil {
			slog.Warn("payment consumer stopped with uncommitted confirmation", "key", string(msg.Key), "error", err.Error())
			return err
		}
		if msg.Commit == nil {
			continue
		}
		if err := msg.Commit(ctx); err != nil {
			slog.Error("failed to commit payment confirmation", "key", string(msg.Key), "error", err.Error())
		}
	}
	return ctx.Err()
}

// process handles msg until it reaches an outcome other than failed.
func (c *PaymentConsumer) process(ctx context.Context, msg domain.Message) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInitial
	b.MaxInterval = c.retryMax
	b.MaxElapsedTime = 0
	b.Reset()

	return backoff.RetryNotify(func() error {
		result := c.Handle(ctx, msg)
		c.metrics.RecordPaymentConfirmation(result)
		if result == "failed" {
			return errFundingFailed
		}
		return nil
	}, backoff.WithContext(b, ctx), func(err error, wait time.Duration) {
		slog.Warn("retrying payment confirmation", "key", string(msg.Key), "retry_in", wait.String(), "error", err.Error())
	})
}

// Handle applies one message and returns the outcome label.
func (c *PaymentConsumer) Handle(ctx context.Context, msg domain.Message) string {
	var confirmation PaymentConfirmation
	if err := json.Unmarshal(msg.Value, &confirmation); err != nil {
		slog.Warn("malformed payment confirmation", "key", string(msg.Key), "error", err.Error())
		return "malformed"
	}
	if !strings.EqualFold(confirmation.Status, PaymentCaptured) {
		return "ignored"
	}

	_, err := c.escrow.Fund(ctx, confirmation.EscrowID, confirmation.PaymentReference)
	switch {
	case err == nil:
		slog.Info("escrow funded", "escrow_id", confirmation.EscrowID, "payment_reference", confirmation.PaymentReference)
		return "funded"
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrConflict):
		if c.isDuplicate(ctx, confirmation) {
			return "duplicate"
		}
		slog.Warn("payment confirmation for escrow that cannot be funded",
			"escrow_id", confirmation.EscrowID,
			"payment_reference", confirmation.PaymentReference,
			"error", err.Error(),
		)
		return "rejected"
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidArgument):
		slog.Warn("payment confirmation rejected", "escrow_id", confirmation.EscrowID, "error", err.Error())
		return "rejected"
	default:
		slog.Error("failed to fund escrow", "escrow_id", confirmation.EscrowID, "error", err.Error())
		return "failed"
	}
}

// isDuplicate reports a redelivery of the confirmation that already funded
// the escrow.
func (c *PaymentConsumer) isDuplicate(ctx context.Context, confirmation PaymentConfirmation) bool {
	escrow, err := c.escrow.Get(ctx, confirmation.EscrowID)
	if err != nil {
		return false
	}
	return escrow.PaymentReference != "" &&
		escrow.PaymentReference == strings.TrimSpace(confirmation.PaymentReference)
}
