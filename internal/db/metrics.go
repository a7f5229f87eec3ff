package db

import (
	"context"
	"time"

	"github.com/stakelab-io/stake-ledger/internal/db/model"
	"github.com/stakelab-io/stake-ledger/internal/observability/metrics"
	"github.com/stakelab-io/stake-ledger/internal/types"
)

type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *DbWithMetrics) SaveStake(ctx context.Context, stakeDoc *model.StakeDocument) error {
	return d.run("SaveStake", func() error {
		return d.db.SaveStake(ctx, stakeDoc)
	})
}

func (d *DbWithMetrics) GetStakeByParticipant(ctx context.Context, participant string) (result *model.StakeDocument, err error) {
	//nolint:errcheck
	d.run("GetStakeByParticipant", func() error {
		result, err = d.db.GetStakeByParticipant(ctx, participant)
		return err
	})

	return
}

func (d *DbWithMetrics) UpdateStakeState(ctx context.Context, participant string, qualifiedPreviousStates []types.StakeState, newState types.StakeState) error {
	return d.run("UpdateStakeState", func() error {
		return d.db.UpdateStakeState(ctx, participant, qualifiedPreviousStates, newState)
	})
}

func (d *DbWithMetrics) MarkStakeWithdrawn(ctx context.Context, participant string) error {
	return d.run("MarkStakeWithdrawn", func() error {
		return d.db.MarkStakeWithdrawn(ctx, participant)
	})
}

func (d *DbWithMetrics) GetStakesByStates(ctx context.Context, states []types.StakeState) (result []model.StakeDocument, err error) {
	//nolint:errcheck
	d.run("GetStakesByStates", func() error {
		result, err = d.db.GetStakesByStates(ctx, states)
		return err
	})

	return
}

func (d *DbWithMetrics) SaveMaturity(ctx context.Context, participant string, maturesAt time.Time) error {
	return d.run("SaveMaturity", func() error {
		return d.db.SaveMaturity(ctx, participant, maturesAt)
	})
}

func (d *DbWithMetrics) FindMaturedStakes(ctx context.Context, now time.Time, limit uint64) (result []model.MaturityDocument, err error) {
	//nolint:errcheck
	d.run("FindMaturedStakes", func() error {
		result, err = d.db.FindMaturedStakes(ctx, now, limit)
		return err
	})

	return
}

func (d *DbWithMetrics) DeleteMaturity(ctx context.Context, participant string) error {
	return d.run("DeleteMaturity", func() error {
		return d.db.DeleteMaturity(ctx, participant)
	})
}

func (d *DbWithMetrics) SaveTokenTransfer(ctx context.Context, transferDoc *model.TokenTransferDocument) error {
	return d.run("SaveTokenTransfer", func() error {
		return d.db.SaveTokenTransfer(ctx, transferDoc)
	})
}

func (d *DbWithMetrics) GetTokenTransfersByAddress(ctx context.Context, addr string, limit int64) (result []model.TokenTransferDocument, err error) {
	//nolint:errcheck
	d.run("GetTokenTransfersByAddress", func() error {
		result, err = d.db.GetTokenTransfersByAddress(ctx, addr, limit)
		return err
	})

	return
}

// run executes f recording its latency and outcome under the given method name
func (d *DbWithMetrics) run(method string, f func() error) error {
	start := time.Now()
	err := f()
	metrics.RecordDbLatency(time.Since(start), method, err != nil)

	return err
}
