package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stakelab-io/stake-ledger/internal/db"
	"github.com/stakelab-io/stake-ledger/internal/observability/metrics"
	"github.com/stakelab-io/stake-ledger/internal/queue"
	"github.com/stakelab-io/stake-ledger/internal/types"
	"github.com/stakelab-io/stake-ledger/internal/utils/poller"
)

// StartMaturityChecker periodically flips stakes whose minimum staking period
// has elapsed from STAKING to WITHDRAWABLE and emits a StakeWithdrawable
// event for each. The transition is purely observational: the authoritative
// time gate stays inside the ledger's unstake path.
func (s *Service) StartMaturityChecker(ctx context.Context) {
	maturityPoller := poller.NewPoller(
		s.cfg.Poller.MaturityCheckInterval,
		s.checkMaturity,
	)
	go maturityPoller.Start(ctx)
}

func (s *Service) checkMaturity(ctx context.Context) error {
	start := time.Now()
	err := s.runMaturityCheck(ctx)
	metrics.RecordMaturityCheckerDuration(time.Since(start), err != nil)

	return err
}

func (s *Service) runMaturityCheck(ctx context.Context) error {
	now := s.clock.Now()

	matured, err := s.db.FindMaturedStakes(ctx, now, s.cfg.Poller.MaturedStakesLimit)
	if err != nil {
		return fmt.Errorf("failed to find matured stakes: %w", err)
	}
	metrics.RecordMaturedStakesCount(len(matured))

	for _, maturityDoc := range matured {
		stake, err := s.db.GetStakeByParticipant(ctx, maturityDoc.Participant)
		if err != nil {
			if db.IsNotFoundError(err) {
				// stake document is gone; the marker is stale
				if err := s.db.DeleteMaturity(ctx, maturityDoc.Participant); err != nil {
					return fmt.Errorf("failed to delete stale maturity marker: %w", err)
				}
				continue
			}
			return fmt.Errorf("failed to get stake by participant: %w", err)
		}

		log.Ctx(ctx).Debug().
			Str("participant", stake.Participant).
			Stringer("current_state", stake.State).
			Time("matures_at", maturityDoc.MaturesAt).
			Msg("checking if stake is withdrawable")

		// Handle already withdrawn stakes
		if stake.State == types.StateWithdrawn {
			if err := s.db.DeleteMaturity(ctx, stake.Participant); err != nil {
				return fmt.Errorf("failed to delete maturity marker: %w", err)
			}
			continue
		}

		qualifiedStates := types.QualifiedStatesForWithdrawable()

		// Skip if current state is not qualified for transition
		if !slices.Contains(qualifiedStates, stake.State) {
			log.Ctx(ctx).Debug().
				Str("participant", stake.Participant).
				Stringer("current_state", stake.State).
				Msg("skipping matured stake, current state not qualified for transition")
			continue
		}

		if err := s.db.UpdateStakeState(
			ctx,
			stake.Participant,
			qualifiedStates,
			types.StateWithdrawable,
		); err != nil {
			return fmt.Errorf("failed to update stake state: %w", err)
		}

		// Emit event and cleanup
		if err := s.events.PushStakingEvent(ctx, &queue.StakingEvent{
			EventType:   types.EventStakeWithdrawable,
			Participant: stake.Participant,
			Amount:      stake.Amount,
			Timestamp:   now,
		}); err != nil {
			return fmt.Errorf("failed to emit withdrawable event: %w", err)
		}

		if err := s.db.DeleteMaturity(ctx, stake.Participant); err != nil {
			return fmt.Errorf("failed to delete maturity marker: %w", err)
		}
	}

	return nil
}
