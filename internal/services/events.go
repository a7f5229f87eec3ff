package services

import (
	"context"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/stakelab-io/stake-ledger/internal/config"
	"github.com/stakelab-io/stake-ledger/internal/db"
	"github.com/stakelab-io/stake-ledger/internal/db/model"
	"github.com/stakelab-io/stake-ledger/internal/ledger"
	"github.com/stakelab-io/stake-ledger/internal/queue"
	"github.com/stakelab-io/stake-ledger/internal/types"
)

// eventSink receives the ledger's observable side effects and fans them out
// to the queue and the custody audit trail. It must not call back into the
// ledger: it runs inside the ledger's critical section.
type eventSink struct {
	db     db.DbInterface
	events EventPublisher
	clock  ledger.Clock
	cfg    *config.LedgerConfig
}

func (s *eventSink) TokensStaked(
	ctx context.Context, participant string, amount sdkmath.Int, since time.Time,
) error {
	if err := s.db.SaveTokenTransfer(ctx, &model.TokenTransferDocument{
		From:      participant,
		To:        s.cfg.CustodyAddress,
		Amount:    amount.String(),
		Kind:      model.TransferKindStake,
		CreatedAt: since,
	}); err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("participant", participant).
			Msg("failed to record stake transfer")
	}

	return s.events.PushStakingEvent(ctx, &queue.StakingEvent{
		EventType:   types.EventTokensStaked,
		Participant: participant,
		Amount:      amount.String(),
		Timestamp:   since,
	})
}

func (s *eventSink) TokensUnstaked(
	ctx context.Context, participant string, principal, reward sdkmath.Int,
) error {
	now := s.clock.Now()

	if err := s.db.SaveTokenTransfer(ctx, &model.TokenTransferDocument{
		From:      s.cfg.CustodyAddress,
		To:        participant,
		Amount:    principal.Add(reward).String(),
		Kind:      model.TransferKindUnstake,
		CreatedAt: now,
	}); err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("participant", participant).
			Msg("failed to record unstake transfer")
	}

	return s.events.PushStakingEvent(ctx, &queue.StakingEvent{
		EventType:   types.EventTokensUnstaked,
		Participant: participant,
		Principal:   principal.String(),
		Reward:      reward.String(),
		Timestamp:   now,
	})
}
