package model

import "time"

const MaturityCollection = "maturity"

// MaturityDocument marks when a participant's stake passes the minimum
// staking period. The maturity checker scans these and deletes each marker
// once the stake has been flipped to WITHDRAWABLE.
type MaturityDocument struct {
	Participant string    `bson:"_id"` // Primary key
	MaturesAt   time.Time `bson:"matures_at"`
}

func NewMaturityDocument(participant string, maturesAt time.Time) *MaturityDocument {
	return &MaturityDocument{
		Participant: participant,
		MaturesAt:   maturesAt,
	}
}
