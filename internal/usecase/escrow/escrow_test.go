package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/agro-escrow-service/internal/domain"
	"github.com/LavaJover/agro-escrow-service/internal/infrastructure/postgres/models"
	escrowdto "github.com/LavaJover/agro-escrow-service/internal/usecase/dto/escrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenario_ReleaseAfterDeliveryConfirmation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.uc.Create(ctx, scenarioInput())
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowCreated, created.Status)
	assert.Equal(t, int64(10100), created.Money.TotalAmount)
	assert.Equal(t, "KES", created.Money.Currency)
	assert.NotEmpty(t, created.BlockchainHash)
	assert.Regexp(t, `^ESC-[0-9A-Z]{12}$`, created.TransactionID)

	funded, err := env.uc.Fund(ctx, created.ID, "PAY-1")
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowFunded, funded.Status)
	assert.Equal(t, "PAY-1", funded.PaymentReference)
	require.NotNil(t, funded.AutoReleaseAt)
	assert.Equal(t, funded.FundedAt.Add(7*24*time.Hour), *funded.AutoReleaseAt)

	_, err = env.uc.Release(ctx, created.ID, "S")
	assert.ErrorIs(t, err, domain.ErrNotEligible)

	confirmed, err := env.uc.ConfirmDelivery(ctx, created.ID, "B")
	require.NoError(t, err)
	assert.NotNil(t, confirmed.DeliveryConfirmedAt)
	assert.Equal(t, domain.EscrowFunded, confirmed.Status)

	released, err := env.uc.Release(ctx, created.ID, "S")
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowReleased, released.Status)
	assert.NotNil(t, released.ReleasedAt)
	assert.True(t, released.Money.Balanced())

	history, err := env.uc.History(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, domain.EventReleased, history[3].Type)
	assert.Equal(t, false, history[3].Data["auto_release"])

	assert.Equal(t, []domain.EscrowEventType{
		domain.EventCreated, domain.EventFunded, domain.EventDeliveryConfirmed, domain.EventReleased,
	}, env.publisher.types())
}

func TestScenario_AutoReleaseAfterPeriod(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	funded := env.funded(t, scenarioInput())

	env.clock.Advance(8 * 24 * time.Hour)

	released, err := env.uc.Release(ctx, funded.ID, "S")
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowReleased, released.Status)

	history, err := env.uc.History(ctx, funded.ID)
	require.NoError(t, err)
	last := history[len(history)-1]
	assert.Equal(t, domain.EventReleased, last.Type)
	assert.Equal(t, true, last.Data["auto_release"])
	assert.Equal(t, "S", last.ActorID)
}

func TestReleaseEventRecordsEligibilityPath(t *testing.T) {
	tests := []struct {
		name       string
		prepare    func(t *testing.T, env *testEnv, id string)
		actor      string
		wantAuto   bool
		wantDetail string
	}{
		{
			name: "seller after confirmation",
			prepare: func(t *testing.T, env *testEnv, id string) {
				_, err := env.uc.ConfirmDelivery(context.Background(), id, "B")
				require.NoError(t, err)
			},
			actor:      "S",
			wantDetail: "funds released to seller",
		},
		{
			name:       "buyer before the period ends",
			prepare:    func(*testing.T, *testEnv, string) {},
			actor:      "B",
			wantDetail: "funds released to seller",
		},
		{
			name: "seller after the period ends",
			prepare: func(_ *testing.T, env *testEnv, _ string) {
				env.clock.Advance(8 * 24 * time.Hour)
			},
			actor:      "S",
			wantAuto:   true,
			wantDetail: "funds auto-released to seller after the release period",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			funded := env.funded(t, scenarioInput())
			tt.prepare(t, env, funded.ID)

			_, err := env.uc.Release(ctx, funded.ID, tt.actor)
			require.NoError(t, err)

			history, err := env.uc.History(ctx, funded.ID)
			require.NoError(t, err)
			last := history[len(history)-1]
			assert.Equal(t, domain.EventReleased, last.Type)
			assert.Equal(t, tt.wantAuto, last.Data["auto_release"])
			assert.Equal(t, tt.wantDetail, last.Detail)
		})
	}
}

func TestScenario_RefundThenReleaseFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	funded := env.funded(t, scenarioInput())

	refunded, err := env.uc.RequestRefund(ctx, funded.ID, "B", "changed mind")
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowRefunded, refunded.Status)
	assert.NotNil(t, refunded.RefundedAt)

	_, err = env.uc.Release(ctx, funded.ID, "B")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	history, err := env.uc.History(ctx, funded.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, domain.EventRefundRequested, history[2].Type)
	assert.Equal(t, "changed mind", history[2].Data["reason"])
	assert.Equal(t, domain.EventRefunded, history[3].Type)
	assert.Equal(t, history[2].Hash, history[3].PrevHash)
}

func TestCreateValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		mutate func(in *escrowdto.CreateEscrowInput)
	}{
		{"negative amount", func(in *escrowdto.CreateEscrowInput) { in.Amount = -1 }},
		{"negative fees", func(in *escrowdto.CreateEscrowInput) { in.Fees = -5 }},
		{"same parties", func(in *escrowdto.CreateEscrowInput) { in.SellerID = in.BuyerID }},
		{"missing buyer", func(in *escrowdto.CreateEscrowInput) { in.BuyerID = " " }},
		{"missing listing", func(in *escrowdto.CreateEscrowInput) { in.ListingID = "" }},
		{"bad currency", func(in *escrowdto.CreateEscrowInput) { in.Currency = "shilling" }},
		{"negative window", func(in *escrowdto.CreateEscrowInput) { in.DisputeWindowDays = intPtr(-1) }},
		{"system party", func(in *escrowdto.CreateEscrowInput) { in.SellerID = domain.SystemActorID }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := scenarioInput()
			tt.mutate(in)
			_, err := env.uc.Create(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}

	_, err := env.uc.Create(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestCreateAppliesDefaultsAndOffer(t *testing.T) {
	env := newTestEnv(t)
	in := scenarioInput()
	in.AutoReleaseAfterDays = nil
	offer := "O-9"
	in.OfferID = &offer
	in.Currency = "UGX"

	created, err := env.uc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 7, created.Policy.AutoReleaseAfterDays)
	assert.Equal(t, 3, created.Policy.DisputeWindowDays)
	assert.Equal(t, "UGX", created.Money.Currency)
	require.NotNil(t, created.OfferID)
	assert.Equal(t, "O-9", *created.OfferID)
}

func TestFund(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created, err := env.uc.Create(ctx, scenarioInput())
	require.NoError(t, err)

	_, err = env.uc.Fund(ctx, created.ID, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = env.uc.Fund(ctx, "0b7f0d3e-1111-4c1e-9d59-000000000000", "PAY-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.uc.Fund(ctx, created.ID, "PAY-1")
	require.NoError(t, err)

	_, err = env.uc.Fund(ctx, created.ID, "PAY-2")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	stored, err := env.uc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "PAY-1", stored.PaymentReference)
}

func TestConfirmDelivery(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.uc.Create(ctx, scenarioInput())
	require.NoError(t, err)
	_, err = env.uc.ConfirmDelivery(ctx, created.ID, "B")
	assert.ErrorIs(t, err, domain.ErrInvalidState, "not funded yet")

	_, err = env.uc.Fund(ctx, created.ID, "PAY-1")
	require.NoError(t, err)

	_, err = env.uc.ConfirmDelivery(ctx, created.ID, "S")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = env.uc.ConfirmDelivery(ctx, created.ID, "B")
	require.NoError(t, err)

	_, err = env.uc.ConfirmDelivery(ctx, created.ID, "B")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestRequestRefundGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("not funded", func(t *testing.T) {
		created, err := env.uc.Create(ctx, scenarioInput())
		require.NoError(t, err)
		_, err = env.uc.RequestRefund(ctx, created.ID, "B", "x")
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("seller cannot refund", func(t *testing.T) {
		funded := env.funded(t, scenarioInput())
		_, err := env.uc.RequestRefund(ctx, funded.ID, "S", "x")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("after delivery confirmation", func(t *testing.T) {
		funded := env.funded(t, scenarioInput())
		_, err := env.uc.ConfirmDelivery(ctx, funded.ID, "B")
		require.NoError(t, err)

		_, err = env.uc.RequestRefund(ctx, funded.ID, "B", "too late")
		assert.ErrorIs(t, err, domain.ErrAlreadyConfirmed)

		stored, err := env.uc.Get(ctx, funded.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.EscrowFunded, stored.Status)
	})
}

func TestReleaseGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("not funded", func(t *testing.T) {
		created, err := env.uc.Create(ctx, scenarioInput())
		require.NoError(t, err)
		_, err = env.uc.Release(ctx, created.ID, "B")
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("stranger", func(t *testing.T) {
		funded := env.funded(t, scenarioInput())
		_, err := env.uc.Release(ctx, funded.ID, "mallory")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("buyer releases unilaterally", func(t *testing.T) {
		funded := env.funded(t, scenarioInput())
		released, err := env.uc.Release(ctx, funded.ID, "B")
		require.NoError(t, err)
		assert.Equal(t, domain.EscrowReleased, released.Status)

		history, err := env.uc.History(ctx, funded.ID)
		require.NoError(t, err)
		assert.Equal(t, false, history[len(history)-1].Data["auto_release"])
	})

	t.Run("released twice", func(t *testing.T) {
		funded := env.funded(t, scenarioInput())
		_, err := env.uc.Release(ctx, funded.ID, "B")
		require.NoError(t, err)
		_, err = env.uc.Release(ctx, funded.ID, "B")
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})
}

func TestReleaseBySystemRespectsRequiredConfirmation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := scenarioInput()
	in.RequireDeliveryConfirmation = true
	funded := env.funded(t, in)
	env.clock.Advance(30 * 24 * time.Hour)

	_, err := env.uc.Release(ctx, funded.ID, domain.SystemActorID)
	assert.ErrorIs(t, err, domain.ErrNotEligible)

	_, err = env.uc.ConfirmDelivery(ctx, funded.ID, "B")
	require.NoError(t, err)

	released, err := env.uc.Release(ctx, funded.ID, domain.SystemActorID)
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowReleased, released.Status)
}

func TestDispute(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("inside window", func(t *testing.T) {
		funded := env.funded(t, scenarioInput())
		disputed, err := env.uc.Dispute(ctx, funded.ID, "S", "goods not collected")
		require.NoError(t, err)
		assert.Equal(t, domain.EscrowDisputed, disputed.Status)
		assert.NotNil(t, disputed.DisputedAt)

		// disputed contracts are frozen
		_, err = env.uc.Release(ctx, funded.ID, "B")
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		_, err = env.uc.RequestRefund(ctx, funded.ID, "B", "x")
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("stranger", func(t *testing.T) {
		funded := env.funded(t, scenarioInput())
		_, err := env.uc.Dispute(ctx, funded.ID, "mallory", "x")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("window closed", func(t *testing.T) {
		funded := env.funded(t, scenarioInput())
		env.clock.Advance(3*24*time.Hour + time.Second)
		_, err := env.uc.Dispute(ctx, funded.ID, "B", "late")
		assert.ErrorIs(t, err, domain.ErrNotEligible)
	})

	t.Run("not funded", func(t *testing.T) {
		created, err := env.uc.Create(ctx, scenarioInput())
		require.NoError(t, err)
		_, err = env.uc.Dispute(ctx, created.ID, "B", "x")
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})
}

func TestConcurrentReleaseSucceedsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	funded := env.funded(t, scenarioInput())
	_, err := env.uc.ConfirmDelivery(ctx, funded.ID, "B")
	require.NoError(t, err)

	const callers = 8
	var (
		wg   sync.WaitGroup
		errs = make(chan error, callers)
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(actor string) {
			defer wg.Done()
			_, err := env.uc.Release(ctx, funded.ID, actor)
			errs <- err
		}([]string{"B", "S"}[i%2])
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		kind := domain.ErrorKind(err)
		assert.Contains(t, []string{"invalid_state", "conflict"}, kind, err.Error())
	}
	assert.Equal(t, 1, succeeded)

	history, err := env.uc.History(ctx, funded.ID)
	require.NoError(t, err)
	released := 0
	for _, ev := range history {
		if ev.Type == domain.EventReleased {
			released++
		}
	}
	assert.Equal(t, 1, released)

	report, err := env.uc.VerifyHistory(ctx, funded.ID)
	require.NoError(t, err)
	assert.True(t, report.Valid, report.Reason)
}

func TestVerifyHistoryDetectsTampering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	funded := env.funded(t, scenarioInput())

	report, err := env.uc.VerifyHistory(ctx, funded.ID)
	require.NoError(t, err)
	assert.True(t, report.Valid, report.Reason)
	assert.Equal(t, 2, report.Events)

	require.NoError(t, env.db.Model(&models.EscrowEventModel{}).
		Where("escrow_id = ? AND sequence = ?", funded.ID, 2).
		Update("payload", `{"tampered":true}`).Error)

	report, err = env.uc.VerifyHistory(ctx, funded.ID)
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.Equal(t, int64(2), report.BrokenAt)
}

func TestVerifyHistoryDetectsContractTampering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	funded := env.funded(t, scenarioInput())

	require.NoError(t, env.db.Model(&models.EscrowContractModel{}).
		Where("id = ?", funded.ID).
		Updates(map[string]any{"amount": 1, "total_amount": 101, "seller_id": "MALLORY"}).Error)

	report, err := env.uc.VerifyHistory(ctx, funded.ID)
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.Equal(t, int64(0), report.BrokenAt)
	assert.Contains(t, report.Reason, "genesis")
}

func TestTotalInvariantHoldsInEveryState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.uc.Create(ctx, scenarioInput())
	require.NoError(t, err)
	assert.True(t, created.Money.Balanced())

	steps := []func() (*domain.Escrow, error){
		func() (*domain.Escrow, error) { return env.uc.Fund(ctx, created.ID, "PAY-1") },
		func() (*domain.Escrow, error) { return env.uc.ConfirmDelivery(ctx, created.ID, "B") },
		func() (*domain.Escrow, error) { return env.uc.Release(ctx, created.ID, "S") },
	}
	for _, step := range steps {
		e, err := step()
		require.NoError(t, err)
		assert.True(t, e.Money.Balanced())
		assert.Equal(t, int64(10100), e.Money.TotalAmount)
	}
}

func TestPublishFailureDoesNotUndoOperation(t *testing.T) {
	env := newTestEnv(t)
	env.publisher.err = errPublish
	ctx := context.Background()

	created, err := env.uc.Create(ctx, scenarioInput())
	require.NoError(t, err)
	funded, err := env.uc.Fund(ctx, created.ID, "PAY-1")
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowFunded, funded.Status)
}

func TestListForUserAndDueForRelease(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.funded(t, scenarioInput())
	env.clock.Advance(time.Hour)
	other := scenarioInput()
	other.BuyerID, other.SellerID = "S", "C"
	second := env.funded(t, other)

	list, err := env.uc.ListForUser(ctx, "S")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	_, err = env.uc.ListForUser(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	due, err := env.uc.DueForRelease(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, due)

	env.clock.Advance(7 * 24 * time.Hour)
	due, err = env.uc.DueForRelease(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, due, 2)
}
