package setup

import (
	"fmt"

	escrowusecase "github.com/LavaJover/agro-escrow-service/internal/usecase/escrow"
	settlementusecase "github.com/LavaJover/agro-escrow-service/internal/usecase/settlement"
)

type UseCases struct {
	EscrowUsecase     *escrowusecase.DefaultEscrowUsecase
	SettlementUsecase *settlementusecase.DefaultSettlementUsecase
}

func InitializeUseCases(deps *Dependencies) (*UseCases, error) {
	settings := deps.Config.Escrow
	opts := []escrowusecase.Option{escrowusecase.WithMetrics(deps.Metrics)}
	if deps.EventPublisher != nil {
		opts = append(opts, escrowusecase.WithPublisher(deps.EventPublisher))
	}

	escrowUsecase, err := escrowusecase.NewDefaultEscrowUsecase(
		deps.Repositories.EscrowRepo,
		deps.Chain,
		escrowusecase.Defaults{
			Currency:          settings.DefaultCurrency,
			AutoReleaseDays:   settings.DefaultAutoReleaseDays,
			DisputeWindowDays: settings.DefaultDisputeWindowDays,
		},
		opts...,
	)
	if err != nil {
		return nil, fmt.Errorf("escrow usecase: %w", err)
	}

	settlementUsecase := settlementusecase.NewDefaultSettlementUsecase(escrowUsecase, deps.Listings, deps.Metrics)

	return &UseCases{
		EscrowUsecase:     escrowUsecase,
		SettlementUsecase: settlementUsecase,
	}, nil
}
