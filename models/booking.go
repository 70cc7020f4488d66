package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookingRecord is a confirmed interview booking. Rows are insert-only; no
// update or delete surface exists for them.
type BookingRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Date      string             `bson:"date" json:"date"`
	Time      string             `bson:"time" json:"time"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// ChatRequest is an incoming conversational message
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChatResponse either confirms a stored booking or reports that none was
// recorded. The negative case carries no detail about why.
type ChatResponse struct {
	Booked  bool           `json:"booked"`
	Message string         `json:"message,omitempty"`
	Booking *BookingRecord `json:"booking,omitempty"`
}
