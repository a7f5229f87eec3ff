package db

import (
	"context"
	"time"

	"github.com/stakelab-io/stake-ledger/internal/db/model"
	"github.com/stakelab-io/stake-ledger/internal/types"
)

type DbInterface interface {
	Ping(ctx context.Context) error

	SaveStake(ctx context.Context, stakeDoc *model.StakeDocument) error
	GetStakeByParticipant(ctx context.Context, participant string) (*model.StakeDocument, error)
	UpdateStakeState(
		ctx context.Context,
		participant string,
		qualifiedPreviousStates []types.StakeState,
		newState types.StakeState,
	) error
	MarkStakeWithdrawn(ctx context.Context, participant string) error
	GetStakesByStates(ctx context.Context, states []types.StakeState) ([]model.StakeDocument, error)

	SaveMaturity(ctx context.Context, participant string, maturesAt time.Time) error
	FindMaturedStakes(ctx context.Context, now time.Time, limit uint64) ([]model.MaturityDocument, error)
	DeleteMaturity(ctx context.Context, participant string) error

	SaveTokenTransfer(ctx context.Context, transferDoc *model.TokenTransferDocument) error
	GetTokenTransfersByAddress(ctx context.Context, addr string, limit int64) ([]model.TokenTransferDocument, error)
}
