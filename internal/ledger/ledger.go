package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"
)

const DefaultRewardRatePercent = 10

// AssetLedger is the external fungible asset ledger the stake ledger moves
// custody through. It is owned externally; the stake ledger only calls into it.
type AssetLedger interface {
	BalanceOf(addr string) sdkmath.Int
	Transfer(from, to string, amount sdkmath.Int) error
	TransferFrom(spender, from, to string, amount sdkmath.Int) error
}

// StakeRecord is the per-participant stake entry. A zero Amount is equivalent
// to not staking.
type StakeRecord struct {
	Amount sdkmath.Int
	Since  time.Time
}

// Params carries the construction-time configuration of a StakeLedger.
// All fields are immutable after construction.
type Params struct {
	// CustodyAddress is the asset-ledger address holding staked funds.
	CustodyAddress string
	// OwnerAddress is the only caller allowed on the administrative surface.
	OwnerAddress string
	// MinStakingPeriod gates unstake and normalizes the reward rate.
	MinStakingPeriod time.Duration
	// RewardRatePercent defaults to DefaultRewardRatePercent when zero.
	RewardRatePercent int64
}

func (p *Params) Validate() error {
	if p.CustodyAddress == "" {
		return fmt.Errorf("custody address is required")
	}
	if p.OwnerAddress == "" {
		return fmt.Errorf("owner address is required")
	}
	if p.MinStakingPeriod < time.Second {
		return fmt.Errorf("min staking period must be at least one second")
	}
	if p.RewardRatePercent < 0 {
		return fmt.Errorf("reward rate percent must not be negative")
	}
	return nil
}

// StakeLedger maintains one StakeRecord per participant and moves custody of
// funds through an external asset ledger. Every operation runs under one
// mutex, so each call is a single serialized all-or-nothing transition:
// all preconditions are checked before the first effect.
type StakeLedger struct {
	mu sync.Mutex

	asset  AssetLedger
	clock  Clock
	sink   EventSink
	params Params

	stakes map[string]StakeRecord
	paused bool
}

func New(params Params, asset AssetLedger, clock Clock, sink EventSink) (*StakeLedger, error) {
	if params.RewardRatePercent == 0 {
		params.RewardRatePercent = DefaultRewardRatePercent
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid stake ledger params: %w", err)
	}
	if asset == nil {
		return nil, fmt.Errorf("asset ledger is required")
	}
	if clock == nil {
		clock = SystemClock()
	}
	if sink == nil {
		sink = NopSink()
	}

	return &StakeLedger{
		asset:  asset,
		clock:  clock,
		sink:   sink,
		params: params,
		stakes: make(map[string]StakeRecord),
	}, nil
}

func (l *StakeLedger) Params() Params {
	return l.params
}

// Stake moves amount from the participant's balance on the asset ledger into
// custody and resets the participant's stake clock. The participant must have
// approved the custody address to spend at least amount beforehand.
func (l *StakeLedger) Stake(ctx context.Context, participant string, amount sdkmath.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.paused {
		return &StakingPausedError{
			Message: "staking is paused",
		}
	}
	if amount.IsNil() || !amount.IsPositive() {
		return &InvalidAmountError{
			Message: "stake amount must be positive",
		}
	}

	balance := l.asset.BalanceOf(participant)
	if balance.LT(amount) {
		return &InsufficientBalanceError{
			Participant: participant,
			Message:     fmt.Sprintf("balance %s is less than stake amount %s", balance, amount),
		}
	}

	if err := l.asset.TransferFrom(l.params.CustodyAddress, participant, l.params.CustodyAddress, amount); err != nil {
		return fmt.Errorf("failed to move stake into custody: %w", err)
	}

	record := l.stakes[participant]
	if record.Amount.IsNil() {
		record.Amount = sdkmath.ZeroInt()
	}
	record.Amount = record.Amount.Add(amount)
	record.Since = l.clock.Now()
	l.stakes[participant] = record

	if err := l.sink.TokensStaked(ctx, participant, amount, record.Since); err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Str("participant", participant).
			Msg("failed to emit TokensStaked event")
	}
	return nil
}

// Unstake returns the caller's principal plus the accrued reward to their
// balance on the asset ledger and clears their stake record. Only the staking
// participant may unstake their own stake.
func (l *StakeLedger) Unstake(ctx context.Context, caller, participant string) (principal, reward sdkmath.Int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	zero := sdkmath.ZeroInt()

	if caller != participant {
		return zero, zero, &UnauthorizedError{
			Caller:  caller,
			Message: fmt.Sprintf("caller %s may not unstake for participant %s", caller, participant),
		}
	}

	record, ok := l.stakes[participant]
	if !ok || record.Amount.IsNil() || record.Amount.IsZero() {
		return zero, zero, &NoActiveStakeError{
			Participant: participant,
			Message:     fmt.Sprintf("participant %s has no active stake", participant),
		}
	}

	now := l.clock.Now()
	elapsed := now.Sub(record.Since)
	if elapsed < l.params.MinStakingPeriod {
		return zero, zero, &StakingPeriodNotMetError{
			Participant: participant,
			Message: fmt.Sprintf("only %s of the minimum staking period %s has elapsed",
				elapsed, l.params.MinStakingPeriod),
		}
	}

	principal = record.Amount
	reward = l.rewardAt(record, now)

	payout := principal.Add(reward)
	if err := l.asset.Transfer(l.params.CustodyAddress, participant, payout); err != nil {
		return zero, zero, fmt.Errorf("failed to return stake from custody: %w", err)
	}

	delete(l.stakes, participant)

	if err := l.sink.TokensUnstaked(ctx, participant, principal, reward); err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Str("participant", participant).
			Msg("failed to emit TokensUnstaked event")
	}
	return principal, reward, nil
}

// CalculateReward returns the reward the participant would receive if they
// unstaked now. It is a pure read: repeated calls without time passing return
// the same value, and a participant with no active stake gets exactly zero.
func (l *StakeLedger) CalculateReward(participant string) sdkmath.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.stakes[participant]
	if !ok {
		return sdkmath.ZeroInt()
	}
	return l.rewardAt(record, l.clock.Now())
}

// StakeOf returns the participant's stake record. The second return value is
// false when the participant has no active stake.
func (l *StakeLedger) StakeOf(participant string) (StakeRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.stakes[participant]
	return record, ok
}

// TotalStaked returns the sum of all staked amounts. It never exceeds the
// custody balance on the asset ledger.
func (l *StakeLedger) TotalStaked() sdkmath.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := sdkmath.ZeroInt()
	for _, record := range l.stakes {
		total = total.Add(record.Amount)
	}
	return total
}

// SetPaused toggles acceptance of new stakes. Owner only; unstake is never
// blocked by pausing.
func (l *StakeLedger) SetPaused(caller string, paused bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.params.OwnerAddress {
		return &UnauthorizedError{
			Caller:  caller,
			Message: fmt.Sprintf("caller %s is not the ledger owner", caller),
		}
	}
	l.paused = paused
	return nil
}

func (l *StakeLedger) Paused() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paused
}

// FundRewards moves amount from the owner's balance into custody so rewards
// can be paid without dipping into staked principal. Owner only.
func (l *StakeLedger) FundRewards(caller string, amount sdkmath.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.params.OwnerAddress {
		return &UnauthorizedError{
			Caller:  caller,
			Message: fmt.Sprintf("caller %s is not the ledger owner", caller),
		}
	}
	if amount.IsNil() || !amount.IsPositive() {
		return &InvalidAmountError{
			Message: "funding amount must be positive",
		}
	}

	if err := l.asset.TransferFrom(l.params.CustodyAddress, l.params.OwnerAddress, l.params.CustodyAddress, amount); err != nil {
		return fmt.Errorf("failed to move reward funding into custody: %w", err)
	}
	return nil
}

// rewardAt computes the reward for a stake record at the given time:
//
//	principal * ratePercent * (elapsed - minStakingPeriod) / (100 * minStakingPeriod)
//
// The rate is normalized per minStakingPeriod and scales linearly with the
// time elapsed beyond it. At exactly minStakingPeriod the reward is zero;
// this boundary behavior is load-bearing for callers that unstake as soon as
// the time gate opens. Arithmetic is over whole seconds.
func (l *StakeLedger) rewardAt(record StakeRecord, now time.Time) sdkmath.Int {
	if record.Amount.IsNil() || !record.Amount.IsPositive() {
		return sdkmath.ZeroInt()
	}

	elapsed := now.Sub(record.Since)
	if elapsed <= l.params.MinStakingPeriod {
		return sdkmath.ZeroInt()
	}

	extraSeconds := int64((elapsed - l.params.MinStakingPeriod) / time.Second)
	minPeriodSeconds := int64(l.params.MinStakingPeriod / time.Second)

	return record.Amount.
		MulRaw(l.params.RewardRatePercent).
		MulRaw(extraSeconds).
		QuoRaw(100 * minPeriodSeconds)
}
