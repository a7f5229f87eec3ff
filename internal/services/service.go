package services

import (
	"context"
	"fmt"

	"github.com/stakelab-io/stake-ledger/internal/config"
	"github.com/stakelab-io/stake-ledger/internal/db"
	"github.com/stakelab-io/stake-ledger/internal/ledger"
	"github.com/stakelab-io/stake-ledger/internal/queue"
	"github.com/stakelab-io/stake-ledger/internal/token"
)

// EventPublisher is the slice of the queue manager the service depends on.
type EventPublisher interface {
	PushStakingEvent(ctx context.Context, event *queue.StakingEvent) error
}

// Service ties the in-memory stake ledger to its durable surroundings:
// the stake documents in Mongo, the maturity markers the checker scans,
// and the staking events pushed to the queue.
type Service struct {
	cfg    *config.Config
	db     db.DbInterface
	asset  *token.Ledger
	ledger *ledger.StakeLedger
	events EventPublisher
	clock  ledger.Clock
}

func NewService(
	cfg *config.Config,
	dbClient db.DbInterface,
	asset *token.Ledger,
	events EventPublisher,
	clock ledger.Clock,
) (*Service, error) {
	if clock == nil {
		clock = ledger.SystemClock()
	}

	sink := &eventSink{
		db:     dbClient,
		events: events,
		clock:  clock,
		cfg:    &cfg.Ledger,
	}

	stakeLedger, err := ledger.New(
		ledger.Params{
			CustodyAddress:    cfg.Ledger.CustodyAddress,
			OwnerAddress:      cfg.Ledger.OwnerAddress,
			MinStakingPeriod:  cfg.Ledger.MinStakingPeriod,
			RewardRatePercent: cfg.Ledger.RewardRatePercent,
		},
		asset,
		clock,
		sink,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create stake ledger: %w", err)
	}

	return &Service{
		cfg:    cfg,
		db:     dbClient,
		asset:  asset,
		ledger: stakeLedger,
		events: events,
		clock:  clock,
	}, nil
}

// Ledger exposes the underlying stake ledger for read paths.
func (s *Service) Ledger() *ledger.StakeLedger {
	return s.ledger
}

// Asset exposes the underlying asset ledger for read paths.
func (s *Service) Asset() *token.Ledger {
	return s.asset
}
