//go:build integration

package services

import (
	"context"
	"sync"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakelab-io/stake-ledger/internal/config"
	"github.com/stakelab-io/stake-ledger/internal/queue"
	"github.com/stakelab-io/stake-ledger/internal/token"
	"github.com/stakelab-io/stake-ledger/internal/types"
)

const (
	custodyAddr = "0xcustody"
	ownerAddr   = "0xowner"
	aliceAddr   = "0xalice"

	minStakingPeriod = 1000 * time.Second
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.StakingEvent
}

func (p *recordingPublisher) PushStakingEvent(_ context.Context, event *queue.StakingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *event)
	return nil
}

func (p *recordingPublisher) byType(eventType types.EventType) []queue.StakingEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	var matched []queue.StakingEvent
	for _, event := range p.events {
		if event.EventType == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

func testConfig() *config.Config {
	return &config.Config{
		Ledger: config.LedgerConfig{
			CustodyAddress:    custodyAddr,
			OwnerAddress:      ownerAddr,
			MinStakingPeriod:  minStakingPeriod,
			RewardRatePercent: 10,
		},
		Poller: config.PollerConfig{
			MaturityCheckInterval: 50 * time.Millisecond,
			MaturedStakesLimit:    100,
		},
	}
}

func setupService(t *testing.T) (*Service, *fakeClock, *recordingPublisher) {
	t.Helper()

	asset := token.NewLedger("Stake Token", "STK")
	require.NoError(t, asset.Mint(aliceAddr, sdkmath.NewInt(1000)))
	require.NoError(t, asset.Approve(aliceAddr, custodyAddr, sdkmath.NewInt(1000)))
	require.NoError(t, asset.Mint(ownerAddr, sdkmath.NewInt(10_000)))
	require.NoError(t, asset.Approve(ownerAddr, custodyAddr, sdkmath.NewInt(10_000)))

	clock := &fakeClock{now: time.Unix(1_700_000_000, 0).UTC()}
	publisher := &recordingPublisher{}

	svc, err := NewService(testConfig(), testDB, asset, publisher, clock)
	require.NoError(t, err)

	return svc, clock, publisher
}

func TestStakeLifecycle(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	svc, clock, publisher := setupService(t)

	// stake persists the record, the maturity marker and emits the event
	require.NoError(t, svc.Stake(ctx, aliceAddr, sdkmath.NewInt(100)))

	stake, err := svc.GetStake(ctx, aliceAddr)
	require.NoError(t, err)
	assert.Equal(t, types.StateStaking, stake.State)
	assert.Equal(t, "100", stake.Amount)
	assert.True(t, stake.MaturesAt.Equal(stake.Since.Add(minStakingPeriod)))

	markers, err := testDB.FindMaturedStakes(ctx, clock.Now().Add(minStakingPeriod), 100)
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Equal(t, aliceAddr, markers[0].Participant)

	staked := publisher.byType(types.EventTokensStaked)
	require.Len(t, staked, 1)
	assert.Equal(t, "100", staked[0].Amount)

	// the checker flips the stake to WITHDRAWABLE once matured
	clock.Advance(minStakingPeriod)
	require.NoError(t, svc.checkMaturity(ctx))

	stake, err = svc.GetStake(ctx, aliceAddr)
	require.NoError(t, err)
	assert.Equal(t, types.StateWithdrawable, stake.State)

	withdrawable := publisher.byType(types.EventStakeWithdrawable)
	require.Len(t, withdrawable, 1)
	assert.Equal(t, aliceAddr, withdrawable[0].Participant)

	// marker is consumed, a second run is a no-op
	require.NoError(t, svc.checkMaturity(ctx))
	assert.Len(t, publisher.byType(types.EventStakeWithdrawable), 1)

	// unstake returns the principal with zero reward at the boundary
	principal, reward, err := svc.Unstake(ctx, aliceAddr, aliceAddr)
	require.NoError(t, err)
	assert.Equal(t, sdkmath.NewInt(100), principal)
	assert.True(t, reward.IsZero())

	stake, err = svc.GetStake(ctx, aliceAddr)
	require.NoError(t, err)
	assert.Equal(t, types.StateWithdrawn, stake.State)
	assert.Equal(t, "0", stake.Amount)

	unstaked := publisher.byType(types.EventTokensUnstaked)
	require.Len(t, unstaked, 1)
	assert.Equal(t, "100", unstaked[0].Principal)
	assert.Equal(t, "0", unstaked[0].Reward)

	// custody audit trail has both moves
	transfers, err := testDB.GetTokenTransfersByAddress(ctx, aliceAddr, 10)
	require.NoError(t, err)
	require.Len(t, transfers, 2)
}

func TestUnstakeBeforeMaturity(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	svc, clock, publisher := setupService(t)
	require.NoError(t, svc.Stake(ctx, aliceAddr, sdkmath.NewInt(100)))

	clock.Advance(minStakingPeriod / 2)
	_, _, err := svc.Unstake(ctx, aliceAddr, aliceAddr)
	require.Error(t, err)

	// nothing changed durably
	stake, err := svc.GetStake(ctx, aliceAddr)
	require.NoError(t, err)
	assert.Equal(t, types.StateStaking, stake.State)
	assert.Empty(t, publisher.byType(types.EventTokensUnstaked))
}

func TestCheckMaturitySkipsUnqualifiedStates(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	svc, clock, publisher := setupService(t)
	require.NoError(t, svc.Stake(ctx, aliceAddr, sdkmath.NewInt(100)))

	clock.Advance(minStakingPeriod)
	_, _, err := svc.Unstake(ctx, aliceAddr, aliceAddr)
	require.NoError(t, err)

	// a stale marker pointing at a withdrawn stake is swept without an event
	require.NoError(t, testDB.SaveMaturity(ctx, aliceAddr, clock.Now().Add(-time.Minute)))
	require.NoError(t, svc.checkMaturity(ctx))
	assert.Empty(t, publisher.byType(types.EventStakeWithdrawable))

	markers, err := testDB.FindMaturedStakes(ctx, clock.Now(), 100)
	require.NoError(t, err)
	assert.Empty(t, markers)
}

func TestMaturedStakesLimitIsRespected(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	svc, clock, publisher := setupService(t)
	svc.cfg.Poller.MaturedStakesLimit = 2

	asset := svc.Asset()
	participants := []string{"0xp1", "0xp2", "0xp3"}
	for _, participant := range participants {
		require.NoError(t, asset.Mint(participant, sdkmath.NewInt(100)))
		require.NoError(t, asset.Approve(participant, custodyAddr, sdkmath.NewInt(100)))
		require.NoError(t, svc.Stake(ctx, participant, sdkmath.NewInt(100)))
	}

	clock.Advance(minStakingPeriod)
	require.NoError(t, svc.checkMaturity(ctx))
	assert.Len(t, publisher.byType(types.EventStakeWithdrawable), 2)

	// the next run drains the rest
	require.NoError(t, svc.checkMaturity(ctx))
	assert.Len(t, publisher.byType(types.EventStakeWithdrawable), 3)
}
