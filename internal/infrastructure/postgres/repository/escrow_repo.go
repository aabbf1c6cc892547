package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/agro-escrow-service/internal/domain"
	"github.com/LavaJover/agro-escrow-service/internal/infrastructure/audit"
	"github.com/LavaJover/agro-escrow-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/agro-escrow-service/internal/infrastructure/postgres/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultEscrowRepository struct {
	db    *gorm.DB
	chain *audit.Chain
}

func NewDefaultEscrowRepository(db *gorm.DB, chain *audit.Chain) *DefaultEscrowRepository {
	if chain == nil {
		chain = audit.NewChain(nil)
	}
	return &DefaultEscrowRepository{db: db, chain: chain}
}

// Create seals the genesis payload, then stores the contract together with
// its first events.
func (r *DefaultEscrowRepository) Create(ctx context.Context, escrow *domain.Escrow, drafts []domain.EventDraft) (*domain.Escrow, []*domain.EscrowEvent, error) {
	created := escrow.Clone()
	genesis, err := r.chain.Genesis(created)
	if err != nil {
		return nil, nil, err
	}
	created.BlockchainHash = genesis.Hash
	created.GenesisPayload = string(genesis.Payload)

	var events []*domain.EscrowEvent
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(mappers.ToGORMEscrow(created)).Error; err != nil {
			return fmt.Errorf("insert escrow: %w", err)
		}
		events, err = r.appendEvents(tx, created.ID, 0, created.BlockchainHash, drafts)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return created, events, nil
}

// Transition locks the contract row, checks the expected status and version,
// lets fn mutate a copy and writes the new state plus the returned events in
// the same transaction.
func (r *DefaultEscrowRepository) Transition(
	ctx context.Context,
	escrowID string,
	expected domain.EscrowStatus,
	expectedVersion int64,
	fn domain.TransitionFunc,
) (*domain.Escrow, []*domain.EscrowEvent, error) {
	if !validID(escrowID) {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrNotFound, escrowID)
	}
	var (
		updated *domain.Escrow
		events  []*domain.EscrowEvent
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.EscrowContractModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, "id = ?", escrowID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", domain.ErrNotFound, escrowID)
			}
			return err
		}
		current := mappers.ToDomainEscrow(&model)
		if current.Status != expected || current.Version != expectedVersion {
			return fmt.Errorf("%w: escrow %s is %s at version %d", domain.ErrConflict, escrowID, current.Status, current.Version)
		}

		next := current.Clone()
		drafts, err := fn(next)
		if err != nil {
			return err
		}
		if next.Status != current.Status && !current.Status.CanTransitionTo(next.Status) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidState, current.Status, next.Status)
		}
		next.Version = current.Version + 1

		res := tx.Model(&models.EscrowContractModel{}).
			Where("id = ? AND status = ? AND version = ?", escrowID, string(current.Status), current.Version).
			Updates(mappers.ToEscrowStateColumns(next))
		if res.Error != nil {
			return fmt.Errorf("update escrow: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: escrow %s changed concurrently", domain.ErrConflict, escrowID)
		}

		var tail models.EscrowEventModel
		found := tx.Where("escrow_id = ?", escrowID).Order("sequence DESC").Limit(1).Find(&tail)
		if found.Error != nil {
			return found.Error
		}
		prevSeq, prevHash := int64(0), current.BlockchainHash
		if found.RowsAffected > 0 {
			prevSeq, prevHash = tail.Sequence, tail.Hash
		}

		events, err = r.appendEvents(tx, escrowID, prevSeq, prevHash, drafts)
		if err != nil {
			return err
		}

		// immutable fields come from the locked row, whatever fn did to them
		updated = current.Clone()
		updated.Status = next.Status
		updated.PaymentReference = next.PaymentReference
		updated.FundedAt = next.FundedAt
		updated.ReleasedAt = next.ReleasedAt
		updated.RefundedAt = next.RefundedAt
		updated.DeliveryConfirmedAt = next.DeliveryConfirmedAt
		updated.DisputedAt = next.DisputedAt
		updated.AutoReleaseAt = next.AutoReleaseAt
		updated.UpdatedAt = next.UpdatedAt
		updated.Version = next.Version
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, events, nil
}

func (r *DefaultEscrowRepository) appendEvents(tx *gorm.DB, escrowID string, prevSeq int64, prevHash string, drafts []domain.EventDraft) ([]*domain.EscrowEvent, error) {
	events := make([]*domain.EscrowEvent, 0, len(drafts))
	for i, draft := range drafts {
		event, err := r.chain.SealEvent(escrowID, prevSeq+int64(i)+1, prevHash, draft)
		if err != nil {
			return nil, err
		}
		event.ID = uuid.NewString()
		if err := tx.Create(mappers.ToGORMEscrowEvent(event)).Error; err != nil {
			return nil, fmt.Errorf("append %s event: %w", draft.Type, err)
		}
		events = append(events, event)
		prevHash = event.Hash
	}
	return events, nil
}

func (r *DefaultEscrowRepository) GetByID(ctx context.Context, escrowID string) (*domain.Escrow, error) {
	if !validID(escrowID) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, escrowID)
	}
	var model models.EscrowContractModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", escrowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, escrowID)
		}
		return nil, err
	}
	return mappers.ToDomainEscrow(&model), nil
}

func (r *DefaultEscrowRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Escrow, error) {
	var escrowModels []models.EscrowContractModel
	if err := r.db.WithContext(ctx).
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("created_at DESC").Order("id DESC").
		Find(&escrowModels).Error; err != nil {
		return nil, err
	}
	escrows := make([]*domain.Escrow, len(escrowModels))
	for i := range escrowModels {
		escrows[i] = mappers.ToDomainEscrow(&escrowModels[i])
	}
	return escrows, nil
}

func (r *DefaultEscrowRepository) ListEvents(ctx context.Context, escrowID string) ([]*domain.EscrowEvent, error) {
	var eventModels []models.EscrowEventModel
	if err := r.db.WithContext(ctx).
		Where("escrow_id = ?", escrowID).
		Order("sequence ASC").
		Find(&eventModels).Error; err != nil {
		return nil, err
	}
	events := make([]*domain.EscrowEvent, len(eventModels))
	for i := range eventModels {
		events[i] = mappers.ToDomainEscrowEvent(&eventModels[i])
	}
	return events, nil
}

// FindAutoReleaseCandidates returns funded contracts that either have a
// delivery confirmation or passed their auto-release deadline without
// requiring one. Oldest funding first.
func (r *DefaultEscrowRepository) FindAutoReleaseCandidates(ctx context.Context, now time.Time, limit int) ([]*domain.Escrow, error) {
	query := r.db.WithContext(ctx).
		Where("status = ?", string(domain.EscrowFunded)).
		Where(r.db.Where("delivery_confirmed_at IS NOT NULL").
			Or("auto_release_at <= ? AND require_delivery_confirmation = ?", now.UTC(), false)).
		Order("funded_at ASC").Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var escrowModels []models.EscrowContractModel
	if err := query.Find(&escrowModels).Error; err != nil {
		return nil, err
	}
	escrows := make([]*domain.Escrow, len(escrowModels))
	for i := range escrowModels {
		escrows[i] = mappers.ToDomainEscrow(&escrowModels[i])
	}
	return escrows, nil
}

// validID keeps malformed ids away from the uuid column, where postgres would
// reject them with a syntax error instead of an empty result.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
