package usecase

import (
	"time"

	"github.com/LavaJover/agro-escrow-service/internal/domain"
)

func (uc *DefaultEscrowUsecase) recordCreatedMetrics(escrow *domain.Escrow) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordEscrowCreated(escrow.Money.Currency, escrow.Money.TotalAmount)
}

// recordTransitionMetrics - called after a committed operation
func (uc *DefaultEscrowUsecase) recordTransitionMetrics(operation string, before, after *domain.Escrow, took time.Duration) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordTransition(operation, string(before.Status), string(after.Status))
	uc.Metrics.ObserveDuration(operation, took.Seconds())

	switch after.Status {
	case domain.EscrowReleased, domain.EscrowRefunded:
		if before.Status != after.Status {
			uc.Metrics.RecordSettled(string(after.Status), after.Money.Currency, after.Money.TotalAmount)
		}
	}
}

func (uc *DefaultEscrowUsecase) recordErrorMetrics(operation string, err error) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordError(operation, domain.ErrorKind(err))
}
