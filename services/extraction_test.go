package services

import (
	"context"
	"errors"
	"testing"
)

func failingCompletion(t *testing.T) (CompletionFunc, *int) {
	t.Helper()
	calls := 0
	return func(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
		calls++
		return "", errors.New("simulated transport failure")
	}, &calls
}

func staticCompletion(response string) CompletionFunc {
	return func(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
		return response, nil
	}
}

func TestGenerativeResultUsedVerbatim(t *testing.T) {
	// The text contains details the pattern fallback would find, but the
	// generative result must win without the fallback ever running.
	text := "My name is Bob, reach me at real@example.com on 2025-01-01 at 9:00"
	extractor := NewStructuredExtractor(staticCompletion(
		`{"name": null, "email": "gen@example.com", "date": "2025-06-30", "time": "10:00"}`,
	), nil)

	fields, ok := extractor.Extract(context.Background(), text, bookingSchema)
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if fields["email"] != "gen@example.com" {
		t.Errorf("email = %q, want generative value", fields["email"])
	}
	if fields["date"] != "2025-06-30" || fields["time"] != "10:00" {
		t.Errorf("date/time = %q/%q, want generative values", fields["date"], fields["time"])
	}
	if fields["name"] != UnknownValue {
		t.Errorf("null optional field should get sentinel, got %q", fields["name"])
	}
}

func TestGenerativeOutputWithCodeFence(t *testing.T) {
	extractor := NewStructuredExtractor(staticCompletion(
		"```json\n{\"name\": \"Carol\", \"email\": \"c@example.com\", \"date\": \"2025-02-02\", \"time\": \"3 pm\"}\n```",
	), nil)

	fields, ok := extractor.Extract(context.Background(), "anything", bookingSchema)
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if fields["name"] != "Carol" || fields["email"] != "c@example.com" {
		t.Errorf("unexpected fields: %v", fields)
	}
}

func TestFallbackOnTransportError(t *testing.T) {
	complete, calls := failingCompletion(t)
	extractor := NewStructuredExtractor(complete, nil)
	text := "My name is Alice, email alice@example.com, book on 2025-03-14 at 14:30"

	fields, ok := extractor.Extract(context.Background(), text, bookingSchema)
	if !ok {
		t.Fatal("expected fallback extraction to succeed")
	}
	if *calls != 1 {
		t.Errorf("completion called %d times, want 1", *calls)
	}

	want := map[string]string{
		"name":  "Alice",
		"email": "alice@example.com",
		"date":  "2025-03-14",
		"time":  "14:30",
	}
	for field, value := range want {
		if fields[field] != value {
			t.Errorf("%s = %q, want %q", field, fields[field], value)
		}
	}
}

func TestFallbackOnMalformedJSON(t *testing.T) {
	extractor := NewStructuredExtractor(staticCompletion("Sure! The booking details are..."), nil)
	text := "Please book an interview for jane.doe@corp.io on 12/24/2025 at 11:15 am"

	fields, ok := extractor.Extract(context.Background(), text, bookingSchema)
	if !ok {
		t.Fatal("expected fallback extraction to succeed")
	}
	if fields["email"] != "jane.doe@corp.io" {
		t.Errorf("email = %q", fields["email"])
	}
	if fields["date"] != "12/24/2025" {
		t.Errorf("date = %q", fields["date"])
	}
	if fields["name"] != UnknownValue {
		t.Errorf("name should be sentinel when no introduction phrase present, got %q", fields["name"])
	}
}

func TestGenerativeMissingRequiredFieldTriggersFallback(t *testing.T) {
	// Well-formed JSON but a required field is null; the fallback still has
	// everything it needs from the text itself.
	extractor := NewStructuredExtractor(staticCompletion(
		`{"name": "Dave", "email": null, "date": "2025-05-05", "time": "12:00"}`,
	), nil)
	text := "This is Dave, dave@example.com, May 5, 2025 at 12:00"

	fields, ok := extractor.Extract(context.Background(), text, bookingSchema)
	if !ok {
		t.Fatal("expected fallback extraction to succeed")
	}
	if fields["email"] != "dave@example.com" {
		t.Errorf("email = %q, want fallback value", fields["email"])
	}
	if fields["date"] != "May 5, 2025" {
		t.Errorf("date = %q", fields["date"])
	}
}

func TestNoExtractionWhenNothingFound(t *testing.T) {
	complete, _ := failingCompletion(t)
	extractor := NewStructuredExtractor(complete, nil)

	if fields, ok := extractor.Extract(context.Background(), "I want to schedule an interview", bookingSchema); ok {
		t.Errorf("expected no extraction, got %v", fields)
	}
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"  ```json\n{\"a\": 1}\n```  ", `{"a": 1}`},
	}
	for _, c := range cases {
		if got := stripCodeFence(c.in); got != c.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
