package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the application metric instruments.
type Metrics struct {
	ChunksIngested      metric.Int64Counter
	EmbeddingsGenerated metric.Int64Counter
	ExtractionFallbacks metric.Int64Counter
	BookingsRecorded    metric.Int64Counter
	CompletionDuration  metric.Float64Histogram
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("modular-rag-service")

	chunksIngested, err := meter.Int64Counter(
		"ingestion.chunks.stored",
		metric.WithDescription("Chunks fully stored (vector plus metadata row)"),
	)
	if err != nil {
		return nil, err
	}

	embeddingsGenerated, err := meter.Int64Counter(
		"ingestion.embeddings.generated",
		metric.WithDescription("Embedding vectors produced"),
	)
	if err != nil {
		return nil, err
	}

	extractionFallbacks, err := meter.Int64Counter(
		"extraction.fallbacks.total",
		metric.WithDescription("Generative extraction failures that fell back to pattern matching"),
	)
	if err != nil {
		return nil, err
	}

	bookingsRecorded, err := meter.Int64Counter(
		"bookings.recorded.total",
		metric.WithDescription("Bookings persisted"),
	)
	if err != nil {
		return nil, err
	}

	completionDuration, err := meter.Float64Histogram(
		"completion.request.duration",
		metric.WithDescription("Completion endpoint call duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		ChunksIngested:      chunksIngested,
		EmbeddingsGenerated: embeddingsGenerated,
		ExtractionFallbacks: extractionFallbacks,
		BookingsRecorded:    bookingsRecorded,
		CompletionDuration:  completionDuration,
	}, nil
}
