package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"modular-rag-service/internal/logger"
	"modular-rag-service/internal/telemetry"
)

// CompletionFunc is the injected text-completion call. Implementations may
// fail with transport, timeout, or non-success errors; the extractor treats
// every failure the same way and moves on to the next strategy.
type CompletionFunc func(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)

// UnknownValue fills optional fields that no strategy could produce.
const UnknownValue = "Unknown"

// extractionMaxTokens bounds the generative pass output
const extractionMaxTokens = 200

// ExtractionSchema names the fields to extract from free text and which of
// them must be present for the extraction to count at all.
type ExtractionSchema struct {
	Fields   []string
	Required []string
}

// ExtractionStrategy is one way of pulling schema fields out of prose.
// A strategy reports failure through its error return; deciding what to try
// next is the extractor's job, not the strategy's.
type ExtractionStrategy interface {
	Name() string
	Extract(ctx context.Context, text string, schema ExtractionSchema) (map[string]string, error)
}

// StructuredExtractor tries its strategies in fixed priority order and
// returns the first result satisfying the schema. The default order is the
// generative pass first, with deterministic pattern matching as fallback.
type StructuredExtractor struct {
	strategies []ExtractionStrategy
	metrics    *telemetry.Metrics
}

// NewStructuredExtractor builds the default two-phase extractor around the
// given completion call.
func NewStructuredExtractor(complete CompletionFunc, metrics *telemetry.Metrics) *StructuredExtractor {
	return &StructuredExtractor{
		strategies: []ExtractionStrategy{
			&generativeStrategy{complete: complete},
			newPatternStrategy(),
		},
		metrics: metrics,
	}
}

// Extract returns the extracted field map, or ok=false when no strategy
// produced all required fields. Strategy failures are absorbed here; the
// caller only sees success or "no extraction".
func (se *StructuredExtractor) Extract(ctx context.Context, text string, schema ExtractionSchema) (map[string]string, bool) {
	for i, strategy := range se.strategies {
		fields, err := strategy.Extract(ctx, text, schema)
		if err != nil {
			logger.Debug("extraction strategy failed", "strategy", strategy.Name(), "error", err)
			if i == 0 && se.metrics != nil {
				se.metrics.ExtractionFallbacks.Add(ctx, 1)
			}
			continue
		}
		return fields, true
	}
	return nil, false
}

// generativeStrategy asks the completion endpoint for a strict JSON object
// and validates the parsed result against the schema.
type generativeStrategy struct {
	complete CompletionFunc
}

func (g *generativeStrategy) Name() string { return "generative" }

func (g *generativeStrategy) Extract(ctx context.Context, text string, schema ExtractionSchema) (map[string]string, error) {
	if g.complete == nil {
		return nil, fmt.Errorf("no completion call configured")
	}

	// temperature pinned to 0 for deterministic sampling
	raw, err := g.complete(ctx, buildExtractionPrompt(text, schema), extractionMaxTokens, 0)
	if err != nil {
		return nil, err
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("model returned malformed JSON: %w", err)
	}

	fields := make(map[string]string, len(schema.Fields))
	for _, field := range schema.Fields {
		if v, ok := parsed[field].(string); ok {
			fields[field] = strings.TrimSpace(v)
		}
	}
	if err := finalizeFields(fields, schema); err != nil {
		return nil, err
	}
	return fields, nil
}

func buildExtractionPrompt(text string, schema ExtractionSchema) string {
	var b strings.Builder
	b.WriteString("Extract the requested information from the following text.\n")
	fmt.Fprintf(&b, "Return ONLY a valid JSON object with these exact keys: %s.\n", strings.Join(schema.Fields, ", "))
	b.WriteString("If any information is missing, return null for that field.\n\n")
	fmt.Fprintf(&b, "Text: %s\n\n", text)
	b.WriteString("JSON (no additional text):")
	return b.String()
}

// stripCodeFence removes one leading triple-backtick fence with an optional
// json language tag, plus the matching trailing fence. Anything beyond that
// grammar is left untouched.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// patternStrategy extracts fields with fixed patterns. Patterns are keyed by
// field name; a schema field with no registered pattern can never be found
// by this strategy.
type patternStrategy struct {
	patterns map[string]*regexp.Regexp
}

func newPatternStrategy() *patternStrategy {
	return &patternStrategy{
		patterns: map[string]*regexp.Regexp{
			"email": regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`),
			"date":  regexp.MustCompile(`\d{4}-\d{2}-\d{2}|\d{2}/\d{2}/\d{4}|\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{1,2}(?:,\s*\d{4})?`),
			"time":  regexp.MustCompile(`\d{1,2}:\d{2}(?:\s?[APap][Mm])?|\d{1,2}\s?(?:AM|PM|am|pm)`),
			"name":  regexp.MustCompile(`(?:name is|I'm|I am|this is)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
		},
	}
}

func (p *patternStrategy) Name() string { return "pattern" }

func (p *patternStrategy) Extract(_ context.Context, text string, schema ExtractionSchema) (map[string]string, error) {
	fields := make(map[string]string, len(schema.Fields))
	for _, field := range schema.Fields {
		re, ok := p.patterns[field]
		if !ok {
			continue
		}
		match := re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		value := match[0]
		if len(match) > 1 && match[1] != "" {
			value = match[1]
		}
		fields[field] = value
	}
	if err := finalizeFields(fields, schema); err != nil {
		return nil, err
	}
	return fields, nil
}

// finalizeFields enforces required fields and substitutes the sentinel for
// missing optional ones.
func finalizeFields(fields map[string]string, schema ExtractionSchema) error {
	for _, field := range schema.Required {
		if fields[field] == "" {
			return fmt.Errorf("required field %q not found", field)
		}
	}
	for _, field := range schema.Fields {
		if fields[field] == "" {
			fields[field] = UnknownValue
		}
	}
	return nil
}
