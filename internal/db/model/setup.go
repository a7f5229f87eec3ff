package model

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stakelab-io/stake-ledger/internal/config"
)

type index struct {
	Indexes map[string]int
	Unique  bool
}

var collections = map[string][]index{
	StakeCollection: {
		{Indexes: map[string]int{"state": 1}, Unique: false},
		{Indexes: map[string]int{"matures_at": 1}, Unique: false},
	},
	MaturityCollection: {
		{Indexes: map[string]int{"matures_at": 1}, Unique: false},
	},
	TokenTransferCollection: {
		{Indexes: map[string]int{"from": 1, "created_at": -1}, Unique: false},
		{Indexes: map[string]int{"to": 1, "created_at": -1}, Unique: false},
	},
}

// Setup creates the collections and indexes the stake ledger relies on.
// It is idempotent and safe to run on every startup.
func Setup(ctx context.Context, cfg *config.DbConfig) error {
	credential := options.Credential{
		Username: cfg.Username,
		Password: cfg.Password,
	}
	clientOps := options.Client().ApplyURI(cfg.Address).SetAuth(credential)
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return err
	}

	// Create a context with timeout for the setup process
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	database := client.Database(cfg.DbName)

	// Create collections
	for collection := range collections {
		createCollection(ctx, database, collection)
	}

	for name, idxs := range collections {
		for _, idx := range idxs {
			createIndex(ctx, database, name, idx)
		}
	}

	return client.Disconnect(ctx)
}

func createCollection(ctx context.Context, database *mongo.Database, collectionName string) {
	// collection already exists: CreateCollection returns a NamespaceExists
	// error which we deliberately ignore
	_ = database.CreateCollection(ctx, collectionName)
}

func createIndex(ctx context.Context, database *mongo.Database, collectionName string, idx index) {
	if len(idx.Indexes) == 0 {
		return
	}

	indexKeys := bson.D{}
	for field, order := range idx.Indexes {
		indexKeys = append(indexKeys, bson.E{Key: field, Value: order})
	}

	indexModel := mongo.IndexModel{
		Keys:    indexKeys,
		Options: options.Index().SetUnique(idx.Unique),
	}

	_, _ = database.Collection(collectionName).Indexes().CreateOne(ctx, indexModel)
}
