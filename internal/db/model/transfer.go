package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const TokenTransferCollection = "token_transfers"

// Transfer kinds recorded in the custody audit trail.
const (
	TransferKindStake         = "stake"
	TransferKindUnstake       = "unstake"
	TransferKindRewardFunding = "reward_funding"
)

type TokenTransferDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	From      string             `bson:"from"`
	To        string             `bson:"to"`
	Amount    string             `bson:"amount"`
	Kind      string             `bson:"kind"`
	CreatedAt time.Time          `bson:"created_at"`
}
