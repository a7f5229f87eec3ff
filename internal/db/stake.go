package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stakelab-io/stake-ledger/internal/db/model"
	"github.com/stakelab-io/stake-ledger/internal/types"
)

// SaveStake upserts the participant's stake document. Staking on top of an
// existing stake resets the stake clock, so the whole document is replaced.
func (db *Database) SaveStake(ctx context.Context, stakeDoc *model.StakeDocument) error {
	if stakeDoc == nil {
		return errors.New("stake document is nil")
	}

	filter := bson.M{"_id": stakeDoc.Participant}
	opts := options.Replace().SetUpsert(true)

	_, err := db.collection(model.StakeCollection).
		ReplaceOne(ctx, filter, stakeDoc, opts)
	return err
}

func (db *Database) GetStakeByParticipant(
	ctx context.Context, participant string,
) (*model.StakeDocument, error) {
	filter := bson.M{"_id": participant}

	res := db.collection(model.StakeCollection).FindOne(ctx, filter)

	var stakeDoc model.StakeDocument
	if err := res.Decode(&stakeDoc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     participant,
				Message: "stake not found for participant",
			}
		}
		return nil, err
	}

	return &stakeDoc, nil
}

// UpdateStakeState transitions the participant's stake to newState, but only
// when the current state is one of qualifiedPreviousStates. This guards the
// maturity checker and the unstake path against racing each other.
func (db *Database) UpdateStakeState(
	ctx context.Context,
	participant string,
	qualifiedPreviousStates []types.StakeState,
	newState types.StakeState,
) error {
	qualifiedStateStrs := make([]string, len(qualifiedPreviousStates))
	for i, state := range qualifiedPreviousStates {
		qualifiedStateStrs[i] = state.String()
	}

	filter := bson.M{
		"_id":   participant,
		"state": bson.M{"$in": qualifiedStateStrs},
	}

	update := bson.M{
		"$set": bson.M{
			"state":      newState.String(),
			"updated_at": time.Now().UTC(),
		},
	}

	res := db.collection(model.StakeCollection).FindOneAndUpdate(ctx, filter, update)
	if res.Err() != nil {
		if errors.Is(res.Err(), mongo.ErrNoDocuments) {
			return &NotFoundError{
				Key:     participant,
				Message: "stake not found or current state is not a qualified state",
			}
		}
		return res.Err()
	}

	return nil
}

// MarkStakeWithdrawn zeroes the staked amount and flips the state to
// WITHDRAWN, matching what unstake did on the in-memory ledger.
func (db *Database) MarkStakeWithdrawn(ctx context.Context, participant string) error {
	filter := bson.M{"_id": participant}
	update := bson.M{
		"$set": bson.M{
			"amount":     "0",
			"state":      types.StateWithdrawn.String(),
			"updated_at": time.Now().UTC(),
		},
	}

	res, err := db.collection(model.StakeCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &NotFoundError{
			Key:     participant,
			Message: "stake not found when marking withdrawn",
		}
	}

	return nil
}

func (db *Database) GetStakesByStates(
	ctx context.Context, states []types.StakeState,
) ([]model.StakeDocument, error) {
	stateStrs := make([]string, len(states))
	for i := range states {
		stateStrs[i] = states[i].String()
	}

	filter := bson.M{"state": bson.M{"$in": stateStrs}}

	cursor, err := db.collection(model.StakeCollection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find stakes by states: %w", err)
	}
	defer cursor.Close(ctx)

	var stakes []model.StakeDocument
	if err := cursor.All(ctx, &stakes); err != nil {
		return nil, err
	}

	return stakes, nil
}
