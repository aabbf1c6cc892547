package usecase

import (
	"context"
	"time"

	"github.com/LavaJover/agro-escrow-service/internal/domain"
	"github.com/LavaJover/agro-escrow-service/internal/infrastructure/audit"
	"github.com/LavaJover/agro-escrow-service/internal/infrastructure/metrics"
	escrowdto "github.com/LavaJover/agro-escrow-service/internal/usecase/dto/escrow"
	"github.com/jaevor/go-nanoid"
)

type EscrowUsecase interface {
	Create(ctx context.Context, input *escrowdto.CreateEscrowInput) (*domain.Escrow, error)
	Fund(ctx context.Context, escrowID, paymentReference string) (*domain.Escrow, error)
	ConfirmDelivery(ctx context.Context, escrowID, buyerID string) (*domain.Escrow, error)
	Release(ctx context.Context, escrowID, actorID string) (*domain.Escrow, error)
	RequestRefund(ctx context.Context, escrowID, buyerID, reason string) (*domain.Escrow, error)
	Dispute(ctx context.Context, escrowID, actorID, reason string) (*domain.Escrow, error)

	Get(ctx context.Context, escrowID string) (*domain.Escrow, error)
	ListForUser(ctx context.Context, userID string) ([]*domain.Escrow, error)
	History(ctx context.Context, escrowID string) ([]*domain.EscrowEvent, error)
	VerifyHistory(ctx context.Context, escrowID string) (*domain.VerificationReport, error)
	DueForRelease(ctx context.Context, limit int) ([]*domain.Escrow, error)
}

// Defaults applied at creation when the caller leaves a field empty.
type Defaults struct {
	Currency          string
	AutoReleaseDays   int
	DisputeWindowDays int
}

type DefaultEscrowUsecase struct {
	EscrowRepo domain.EscrowRepository
	Chain      *audit.Chain
	Publisher  domain.EscrowEventPublisher
	Metrics    *metrics.EscrowMetrics
	Defaults   Defaults

	now              func() time.Time
	newTransactionID func() string
}

type Option func(*DefaultEscrowUsecase)

// WithClock replaces the wall clock; every operation reads it once.
func WithClock(now func() time.Time) Option {
	return func(uc *DefaultEscrowUsecase) { uc.now = now }
}

func WithPublisher(p domain.EscrowEventPublisher) Option {
	return func(uc *DefaultEscrowUsecase) { uc.Publisher = p }
}

func WithMetrics(m *metrics.EscrowMetrics) Option {
	return func(uc *DefaultEscrowUsecase) { uc.Metrics = m }
}

func NewDefaultEscrowUsecase(
	escrowRepo domain.EscrowRepository,
	chain *audit.Chain,
	defaults Defaults,
	opts ...Option,
) (*DefaultEscrowUsecase, error) {
	idGenerator, err := nanoid.CustomASCII("0123456789ABCDEFGHJKLMNPQRSTUVWXYZ", 12)
	if err != nil {
		return nil, err
	}
	if chain == nil {
		chain = audit.NewChain(nil)
	}
	uc := &DefaultEscrowUsecase{
		EscrowRepo:       escrowRepo,
		Chain:            chain,
		Defaults:         defaults,
		now:              time.Now,
		newTransactionID: func() string { return "ESC-" + idGenerator() },
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc, nil
}

// clock returns the operation's single reading of now, in UTC and at the
// precision the store keeps.
func (uc *DefaultEscrowUsecase) clock() time.Time {
	return uc.now().UTC().Truncate(time.Microsecond)
}
