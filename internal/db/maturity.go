package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stakelab-io/stake-ledger/internal/db/model"
)

// SaveMaturity upserts the participant's maturity marker. Re-staking resets
// the stake clock, so an existing marker is simply replaced.
func (db *Database) SaveMaturity(
	ctx context.Context, participant string, maturesAt time.Time,
) error {
	maturityDoc := model.NewMaturityDocument(participant, maturesAt)

	filter := bson.M{"_id": participant}
	opts := options.Replace().SetUpsert(true)

	_, err := db.collection(model.MaturityCollection).
		ReplaceOne(ctx, filter, maturityDoc, opts)
	return err
}

func (db *Database) FindMaturedStakes(
	ctx context.Context, now time.Time, limit uint64,
) ([]model.MaturityDocument, error) {
	filter := bson.M{"matures_at": bson.M{"$lte": now}}

	opts := options.Find().SetLimit(int64(limit))
	cursor, err := db.collection(model.MaturityCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var matured []model.MaturityDocument
	if err := cursor.All(ctx, &matured); err != nil {
		return nil, err
	}

	return matured, nil
}

func (db *Database) DeleteMaturity(ctx context.Context, participant string) error {
	filter := bson.M{"_id": participant}

	result, err := db.collection(model.MaturityCollection).DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete maturity marker for %v: %w", participant, err)
	}

	if result.DeletedCount == 0 {
		return &NotFoundError{
			Key:     participant,
			Message: "no maturity marker found for participant",
		}
	}

	return nil
}
