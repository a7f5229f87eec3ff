package services

import (
	"context"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/stakelab-io/stake-ledger/internal/db"
	"github.com/stakelab-io/stake-ledger/internal/db/model"
	"github.com/stakelab-io/stake-ledger/internal/observability/metrics"
	"github.com/stakelab-io/stake-ledger/internal/types"
)

// Stake moves amount of the participant's balance into custody and persists
// the resulting stake record together with its maturity marker.
func (s *Service) Stake(ctx context.Context, participant string, amount sdkmath.Int) error {
	start := time.Now()

	err := s.ledger.Stake(ctx, participant, amount)
	metrics.RecordLedgerOpDuration(time.Since(start), "Stake", err != nil)
	if err != nil {
		return err
	}

	record, ok := s.ledger.StakeOf(participant)
	if !ok {
		// the record was created by the call above; missing means a bug
		return fmt.Errorf("stake record missing for participant %s after stake", participant)
	}

	maturesAt := record.Since.Add(s.cfg.Ledger.MinStakingPeriod)
	stakeDoc := &model.StakeDocument{
		Participant: participant,
		Amount:      record.Amount.String(),
		Since:       record.Since,
		MaturesAt:   maturesAt,
		State:       types.StateStaking,
		UpdatedAt:   s.clock.Now(),
	}
	if err := s.db.SaveStake(ctx, stakeDoc); err != nil {
		return fmt.Errorf("failed to persist stake record: %w", err)
	}
	if err := s.db.SaveMaturity(ctx, participant, maturesAt); err != nil {
		return fmt.Errorf("failed to persist maturity marker: %w", err)
	}

	s.updateGauges()

	log.Ctx(ctx).Info().
		Str("participant", participant).
		Stringer("amount", amount).
		Time("matures_at", maturesAt).
		Msg("tokens staked")
	return nil
}

// Unstake returns the caller's principal plus reward and marks the persisted
// stake withdrawn.
func (s *Service) Unstake(ctx context.Context, caller, participant string) (principal, reward sdkmath.Int, err error) {
	start := time.Now()

	principal, reward, err = s.ledger.Unstake(ctx, caller, participant)
	metrics.RecordLedgerOpDuration(time.Since(start), "Unstake", err != nil)
	if err != nil {
		return principal, reward, err
	}

	if err := s.db.MarkStakeWithdrawn(ctx, participant); err != nil {
		// the in-memory ledger is authoritative; a missing document only
		// degrades the audit view
		log.Ctx(ctx).Error().Err(err).
			Str("participant", participant).
			Msg("failed to mark persisted stake withdrawn")
	}
	if err := s.db.DeleteMaturity(ctx, participant); err != nil && !db.IsNotFoundError(err) {
		log.Ctx(ctx).Error().Err(err).
			Str("participant", participant).
			Msg("failed to delete maturity marker")
	}

	s.updateGauges()

	log.Ctx(ctx).Info().
		Str("participant", participant).
		Stringer("principal", principal).
		Stringer("reward", reward).
		Msg("tokens unstaked")
	return principal, reward, nil
}

// Reward returns the reward the participant would receive if they unstaked now.
func (s *Service) Reward(ctx context.Context, participant string) sdkmath.Int {
	start := time.Now()
	reward := s.ledger.CalculateReward(participant)
	metrics.RecordLedgerOpDuration(time.Since(start), "CalculateReward", false)

	return reward
}

// GetStake returns the persisted stake document for the participant.
func (s *Service) GetStake(ctx context.Context, participant string) (*model.StakeDocument, error) {
	return s.db.GetStakeByParticipant(ctx, participant)
}

// SetPaused toggles acceptance of new stakes. Owner only.
func (s *Service) SetPaused(ctx context.Context, caller string, paused bool) error {
	if err := s.ledger.SetPaused(caller, paused); err != nil {
		return err
	}

	log.Ctx(ctx).Info().Bool("paused", paused).Msg("staking pause state changed")
	return nil
}

// FundRewards moves amount from the owner's balance into custody and records
// the transfer in the audit trail. Owner only.
func (s *Service) FundRewards(ctx context.Context, caller string, amount sdkmath.Int) error {
	if err := s.ledger.FundRewards(caller, amount); err != nil {
		return err
	}

	if err := s.db.SaveTokenTransfer(ctx, &model.TokenTransferDocument{
		From:      s.cfg.Ledger.OwnerAddress,
		To:        s.cfg.Ledger.CustodyAddress,
		Amount:    amount.String(),
		Kind:      model.TransferKindRewardFunding,
		CreatedAt: s.clock.Now(),
	}); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to record reward funding transfer")
	}

	s.updateGauges()
	return nil
}

func (s *Service) updateGauges() {
	totalStaked, _ := s.ledger.TotalStaked().ToLegacyDec().Float64()
	metrics.RecordTotalStaked(totalStaked)

	custody, _ := s.asset.BalanceOf(s.cfg.Ledger.CustodyAddress).ToLegacyDec().Float64()
	metrics.RecordCustodyBalance(custody)
}
