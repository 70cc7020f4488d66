package services

import (
	"context"
	"testing"

	"modular-rag-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeBookingStore struct {
	bookings []*models.BookingRecord
}

func (f *fakeBookingStore) InsertBooking(ctx context.Context, booking *models.BookingRecord) error {
	booking.ID = primitive.NewObjectID()
	f.bookings = append(f.bookings, booking)
	return nil
}

func TestDetectIntent(t *testing.T) {
	bs := NewBookingService(nil, nil, nil)

	cases := []struct {
		text string
		want bool
	}{
		{"I want to book an interview next week", true},
		{"Can you SCHEDULE AN INTERVIEW for me?", true},
		{"please Book Interview asap", true},
		{"What are your opening hours?", false},
		{"Tell me about the interview process", false},
		{"", false},
	}
	for _, c := range cases {
		if got := bs.DetectIntent(c.text); got != c.want {
			t.Errorf("DetectIntent(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestHandleMessageNoIntentSkipsExtraction(t *testing.T) {
	complete, calls := failingCompletion(t)
	store := &fakeBookingStore{}
	bs := NewBookingService(NewStructuredExtractor(complete, nil), store, nil)

	record, booked, err := bs.HandleMessage(context.Background(), "My email is a@b.com and I'm free at 10:00 on 2025-03-14")
	if err != nil {
		t.Fatalf("handle error: %v", err)
	}
	if booked || record != nil {
		t.Errorf("expected no booking, got %+v", record)
	}
	if *calls != 0 {
		t.Errorf("extractor ran without intent: %d completion calls", *calls)
	}
	if len(store.bookings) != 0 {
		t.Errorf("booking persisted without intent")
	}
}

func TestHandleMessageIntentWithoutDetails(t *testing.T) {
	complete, _ := failingCompletion(t)
	store := &fakeBookingStore{}
	bs := NewBookingService(NewStructuredExtractor(complete, nil), store, nil)

	record, booked, err := bs.HandleMessage(context.Background(), "I want to schedule an interview")
	if err != nil {
		t.Fatalf("handle error: %v", err)
	}
	if booked || record != nil {
		t.Errorf("expected no booking, got %+v", record)
	}
	if len(store.bookings) != 0 {
		t.Errorf("booking persisted without details")
	}
}

func TestHandleMessageBooksViaFallback(t *testing.T) {
	complete, _ := failingCompletion(t)
	store := &fakeBookingStore{}
	bs := NewBookingService(NewStructuredExtractor(complete, nil), store, nil)

	record, booked, err := bs.HandleMessage(context.Background(),
		"I want to book an interview. My name is Alice, email alice@example.com, on 2025-03-14 at 14:30")
	if err != nil {
		t.Fatalf("handle error: %v", err)
	}
	if !booked {
		t.Fatal("expected a booking")
	}
	if record.Name != "Alice" || record.Email != "alice@example.com" ||
		record.Date != "2025-03-14" || record.Time != "14:30" {
		t.Errorf("unexpected booking: %+v", record)
	}
	if record.ID.IsZero() {
		t.Error("booking should carry its assigned identity")
	}
	if len(store.bookings) != 1 {
		t.Fatalf("expected 1 stored booking, got %d", len(store.bookings))
	}
}

func TestHandleMessageBooksViaGenerative(t *testing.T) {
	store := &fakeBookingStore{}
	extractor := NewStructuredExtractor(staticCompletion(
		`{"name": "Eve", "email": "eve@example.com", "date": "2025-07-07", "time": "4 pm"}`,
	), nil)
	bs := NewBookingService(extractor, store, nil)

	record, booked, err := bs.HandleMessage(context.Background(),
		"Hi, I would like to book an interview please, I'm Eve (eve@example.com), July 7 at 4 pm")
	if err != nil {
		t.Fatalf("handle error: %v", err)
	}
	if !booked {
		t.Fatal("expected a booking")
	}
	if record.Name != "Eve" || record.Email != "eve@example.com" {
		t.Errorf("unexpected booking: %+v", record)
	}
}
