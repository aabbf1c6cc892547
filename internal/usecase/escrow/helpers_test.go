package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/agro-escrow-service/internal/domain"
	"github.com/LavaJover/agro-escrow-service/internal/infrastructure/audit"
	"github.com/LavaJover/agro-escrow-service/internal/infrastructure/postgres"
	"github.com/LavaJover/agro-escrow-service/internal/infrastructure/postgres/repository"
	escrowdto "github.com/LavaJover/agro-escrow-service/internal/usecase/dto/escrow"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*domain.EscrowEvent
	err    error
}

func (p *recordingPublisher) PublishEscrowEvents(_ context.Context, _ *domain.Escrow, events []*domain.EscrowEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []domain.EscrowEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EscrowEventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	uc        *DefaultEscrowUsecase
	db        *gorm.DB
	clock     *fakeClock
	publisher *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, postgres.AutoMigrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })

	clock := &fakeClock{now: time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)}
	pub := &recordingPublisher{}
	chain := audit.NewChain(nil)
	uc, err := NewDefaultEscrowUsecase(
		repository.NewDefaultEscrowRepository(db, chain),
		chain,
		Defaults{Currency: "KES", AutoReleaseDays: 7, DisputeWindowDays: 3},
		WithClock(clock.Now),
		WithPublisher(pub),
	)
	require.NoError(t, err)
	return &testEnv{uc: uc, db: db, clock: clock, publisher: pub}
}

func intPtr(v int) *int { return &v }

func scenarioInput() *escrowdto.CreateEscrowInput {
	return &escrowdto.CreateEscrowInput{
		BuyerID:              "B",
		SellerID:             "S",
		ListingID:            "L1",
		Amount:               10000,
		Fees:                 100,
		AutoReleaseAfterDays: intPtr(7),
	}
}

func (env *testEnv) funded(t *testing.T, input *escrowdto.CreateEscrowInput) *domain.Escrow {
	t.Helper()
	ctx := context.Background()
	created, err := env.uc.Create(ctx, input)
	require.NoError(t, err)
	funded, err := env.uc.Fund(ctx, created.ID, "PAY-1")
	require.NoError(t, err)
	return funded
}

var errPublish = errors.New("broker down")
