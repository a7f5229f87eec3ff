package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stakelab-io/stake-ledger/internal/db/model"
)

// SaveTokenTransfer appends one custody move to the audit trail.
func (db *Database) SaveTokenTransfer(
	ctx context.Context, transferDoc *model.TokenTransferDocument,
) error {
	_, err := db.collection(model.TokenTransferCollection).InsertOne(ctx, transferDoc)
	return err
}

// GetTokenTransfersByAddress returns the custody moves touching addr, newest
// first, capped at limit.
func (db *Database) GetTokenTransfersByAddress(
	ctx context.Context, addr string, limit int64,
) ([]model.TokenTransferDocument, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"from": addr},
			{"to": addr},
		},
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := db.collection(model.TokenTransferCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var transfers []model.TokenTransferDocument
	if err := cursor.All(ctx, &transfers); err != nil {
		return nil, err
	}

	return transfers, nil
}
