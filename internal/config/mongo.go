package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectMongoDB(cfg *Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	// Test connection
	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	// Create indexes
	err = createIndexes(client, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to create indexes: %v", err)
	}

	return client, nil
}

func createIndexes(client *mongo.Client, dbName string) error {
	db := client.Database(dbName)

	// Chunk metadata rows: one row per (file, chunk) pair
	chunksCollection := db.Collection("file_chunks")
	chunkIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "file_name", Value: 1}, {Key: "chunk_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "embedding_id", Value: 1}},
		},
	}
	_, err := chunksCollection.Indexes().CreateMany(context.Background(), chunkIndexes)
	if err != nil {
		return err
	}

	// Bookings collection indexes
	bookingsCollection := db.Collection("bookings")
	bookingIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}
	_, err = bookingsCollection.Indexes().CreateMany(context.Background(), bookingIndexes)
	if err != nil {
		return err
	}

	return nil
}
