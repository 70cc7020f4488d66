package services

import (
	"context"

	"modular-rag-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoChunkMetaStore persists chunk metadata rows in the file_chunks
// collection.
type MongoChunkMetaStore struct {
	collection *mongo.Collection
}

func NewMongoChunkMetaStore(db *mongo.Database) *MongoChunkMetaStore {
	return &MongoChunkMetaStore{collection: db.Collection("file_chunks")}
}

func (s *MongoChunkMetaStore) InsertChunkMeta(ctx context.Context, meta *models.FileChunkMeta) error {
	res, err := s.collection.InsertOne(ctx, meta)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		meta.ID = oid
	}
	return nil
}

// MongoBookingStore persists booking rows in the bookings collection.
type MongoBookingStore struct {
	collection *mongo.Collection
}

func NewMongoBookingStore(db *mongo.Database) *MongoBookingStore {
	return &MongoBookingStore{collection: db.Collection("bookings")}
}

func (s *MongoBookingStore) InsertBooking(ctx context.Context, booking *models.BookingRecord) error {
	res, err := s.collection.InsertOne(ctx, booking)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid
	}
	return nil
}
