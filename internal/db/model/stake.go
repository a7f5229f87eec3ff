package model

import (
	"time"

	"github.com/stakelab-io/stake-ledger/internal/types"
)

const StakeCollection = "stakes"

// StakeDocument mirrors one participant's stake record plus the bookkeeping
// the maturity checker needs. Amounts are decimal strings in the smallest
// denomination so they survive any size.
type StakeDocument struct {
	Participant string           `bson:"_id"` // Primary key
	Amount      string           `bson:"amount"`
	Since       time.Time        `bson:"since"`
	MaturesAt   time.Time        `bson:"matures_at"`
	State       types.StakeState `bson:"state"`
	UpdatedAt   time.Time        `bson:"updated_at"`
}
