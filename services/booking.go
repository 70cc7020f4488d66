package services

import (
	"context"
	"strings"
	"time"

	"modular-rag-service/internal/logger"
	"modular-rag-service/internal/telemetry"
	"modular-rag-service/models"
)

// bookingPhrases gates extraction: a message matching none of these is not
// treated as a booking attempt at all, and the extractor is never invoked.
var bookingPhrases = []string{
	"book an interview",
	"book interview",
	"schedule an interview",
	"i want to book an interview",
	"i want to schedule an interview",
}

// bookingSchema is what the extractor must pull out of a booking message.
// Name is optional and defaults to the sentinel when absent.
var bookingSchema = ExtractionSchema{
	Fields:   []string{"name", "email", "date", "time"},
	Required: []string{"email", "date", "time"},
}

// BookingStore appends booking rows and assigns their identity.
type BookingStore interface {
	InsertBooking(ctx context.Context, booking *models.BookingRecord) error
}

// BookingService detects booking intent in chat messages, extracts the
// details, and persists confirmed bookings.
type BookingService struct {
	extractor *StructuredExtractor
	store     BookingStore
	metrics   *telemetry.Metrics
}

// NewBookingService creates a new booking service
func NewBookingService(extractor *StructuredExtractor, store BookingStore, metrics *telemetry.Metrics) *BookingService {
	return &BookingService{
		extractor: extractor,
		store:     store,
		metrics:   metrics,
	}
}

// DetectIntent reports whether the message likely asks for a booking.
func (bs *BookingService) DetectIntent(text string) bool {
	lowered := strings.ToLower(text)
	for _, phrase := range bookingPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

// HandleMessage returns the stored booking, or booked=false when the message
// carries no booking intent or not enough details to record one. Those two
// cases are deliberately indistinguishable to the caller.
func (bs *BookingService) HandleMessage(ctx context.Context, text string) (*models.BookingRecord, bool, error) {
	if !bs.DetectIntent(text) {
		return nil, false, nil
	}

	fields, ok := bs.extractor.Extract(ctx, text, bookingSchema)
	if !ok {
		logger.Info("booking intent detected but details not extractable")
		return nil, false, nil
	}

	booking := &models.BookingRecord{
		Name:      fields["name"],
		Email:     fields["email"],
		Date:      fields["date"],
		Time:      fields["time"],
		CreatedAt: time.Now().UTC(),
	}
	if err := bs.store.InsertBooking(ctx, booking); err != nil {
		return nil, false, err
	}

	if bs.metrics != nil {
		bs.metrics.BookingsRecorded.Add(ctx, 1)
	}
	logger.Info("booking recorded", "email", booking.Email, "date", booking.Date, "time", booking.Time)
	return booking, true, nil
}
