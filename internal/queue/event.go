package queue

import (
	"time"

	"github.com/stakelab-io/stake-ledger/internal/types"
)

// StakingEvent is the message published for every observable ledger side
// effect. Amounts are decimal strings in the smallest denomination.
type StakingEvent struct {
	EventType   types.EventType `json:"event_type"`
	Participant string          `json:"participant"`
	// Amount is set for TokensStaked events.
	Amount string `json:"amount,omitempty"`
	// Principal and Reward are set for TokensUnstaked events.
	Principal string    `json:"principal,omitempty"`
	Reward    string    `json:"reward,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
