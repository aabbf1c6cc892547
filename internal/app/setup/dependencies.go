package setup

import (
	"fmt"
	"log/slog"

	"github.com/LavaJover/agro-escrow-service/internal/client"
	"github.com/LavaJover/agro-escrow-service/internal/config"
	"github.com/LavaJover/agro-escrow-service/internal/domain"
	"github.com/LavaJover/agro-escrow-service/internal/infrastructure/audit"
	publisher "github.com/LavaJover/agro-escrow-service/internal/infrastructure/kafka"
	"github.com/LavaJover/agro-escrow-service/internal/infrastructure/metrics"
	"github.com/LavaJover/agro-escrow-service/internal/infrastructure/migrate"
	"github.com/LavaJover/agro-escrow-service/internal/infrastructure/postgres"
	"github.com/LavaJover/agro-escrow-service/internal/infrastructure/postgres/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config   *config.EscrowConfig
	DB       *gorm.DB
	Chain    *audit.Chain
	Metrics  *metrics.EscrowMetrics
	Registry *prometheus.Registry

	KafkaPublisher  *publisher.DefaultKafkaPublisher
	KafkaSubscriber *publisher.DefaultKafkaSubscriber
	EventPublisher  domain.EscrowEventPublisher
	Listings        domain.ListingNotifier

	Repositories *Repositories
}

type Repositories struct {
	EscrowRepo domain.EscrowRepository
}

func InitializeDependencies(cfg *config.EscrowConfig) (*Dependencies, error) {
	db, err := postgres.OpenDB(cfg.EscrowDB)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if cfg.EscrowDB.Driver == postgres.DriverPostgres || cfg.EscrowDB.Driver == "" {
		if err := migrate.RunMigrations(db); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	alg, err := audit.ParseAlgorithm(cfg.Escrow.FingerprintAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("fingerprint: %w", err)
	}
	chain := audit.NewChain(audit.NewFingerprinter(alg))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps := &Dependencies{
		Config:   cfg,
		DB:       db,
		Chain:    chain,
		Metrics:  metrics.NewEscrowMetrics(registry),
		Registry: registry,
		Repositories: &Repositories{
			EscrowRepo: repository.NewDefaultEscrowRepository(db, chain),
		},
	}

	if cfg.KafkaService.Enabled {
		if len(cfg.KafkaService.Brokers) == 0 {
			return nil, fmt.Errorf("kafka is enabled but no brokers are configured")
		}
		deps.KafkaPublisher = publisher.NewDefaultKafkaPublisher(cfg.KafkaService.Brokers)
		deps.KafkaSubscriber = publisher.NewDefaultKafkaSubscriber(cfg.KafkaService.Brokers)
		deps.EventPublisher = publisher.NewEscrowEventPublisher(deps.KafkaPublisher, cfg.KafkaService.EventsTopic)
	} else {
		slog.Warn("kafka disabled: lifecycle events are not published and payment confirmations are not consumed")
	}

	if cfg.ListingService.Address != "" {
		listings, err := client.NewHTTPListingClient(cfg.ListingService.Address, cfg.ListingService.Timeout)
		if err != nil {
			return nil, fmt.Errorf("listing client: %w", err)
		}
		deps.Listings = listings
	} else {
		slog.Warn("listing service address is empty: settled listings are not signaled")
	}

	return deps, nil
}

// Close releases the connections opened by InitializeDependencies.
func (d *Dependencies) Close() {
	if d.KafkaPublisher != nil {
		if err := d.KafkaPublisher.Close(); err != nil {
			slog.Error("failed to close kafka publisher", "error", err.Error())
		}
	}
	if sqlDB, err := d.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
