package services

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"modular-rag-service/models"
)

func repeatTokens(n int) string {
	tokens := make([]string, n)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(tokens, " ")
}

func TestFixedChunkSizes(t *testing.T) {
	cs := NewChunkingService()

	chunks, err := cs.Chunk(repeatTokens(1000), models.StrategyFixed, 500)
	if err != nil {
		t.Fatalf("chunk error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Errorf("chunk %d has index %d", i, chunk.Index)
		}
		if got := len(strings.Fields(chunk.Text)); got != 500 {
			t.Errorf("chunk %d has %d tokens, want 500", i, got)
		}
	}
}

func TestFixedLastChunkMayBeShorter(t *testing.T) {
	cs := NewChunkingService()

	chunks, err := cs.Chunk(repeatTokens(1203), models.StrategyFixed, 500)
	if err != nil {
		t.Fatalf("chunk error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks[:2] {
		if got := len(strings.Fields(chunk.Text)); got != 500 {
			t.Errorf("chunk %d has %d tokens, want 500", i, got)
		}
	}
	if got := len(strings.Fields(chunks[2].Text)); got != 203 {
		t.Errorf("last chunk has %d tokens, want 203", got)
	}
}

func TestFixedChunkReconstruction(t *testing.T) {
	cs := NewChunkingService()
	text := "  The quick   brown fox\n jumps over\tthe lazy dog.  It was a cold day. "

	chunks, err := cs.Chunk(text, models.StrategyFixed, 4)
	if err != nil {
		t.Fatalf("chunk error: %v", err)
	}

	parts := make([]string, len(chunks))
	for i, chunk := range chunks {
		parts[i] = chunk.Text
	}
	got := strings.Join(parts, " ")
	want := strings.Join(strings.Fields(text), " ")
	if got != want {
		t.Errorf("reconstruction mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestSentenceChunkingGroupsSentences(t *testing.T) {
	cs := NewChunkingService()
	text := "One two three. Four five. Six seven eight nine. Ten."

	chunks, err := cs.Chunk(text, models.StrategySentence, 5)
	if err != nil {
		t.Fatalf("chunk error: %v", err)
	}

	want := []string{
		"One two three. Four five.",
		"Six seven eight nine. Ten.",
	}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %v", len(want), len(chunks), chunks)
	}
	for i, chunk := range chunks {
		if chunk.Text != want[i] {
			t.Errorf("chunk %d = %q, want %q", i, chunk.Text, want[i])
		}
	}
}

func TestSentenceChunkingNeverSplitsASentence(t *testing.T) {
	cs := NewChunkingService()
	long := "This sentence has quite a few more tokens than the budget allows!"
	text := "Short one. " + long + " Tail."

	chunks, err := cs.Chunk(text, models.StrategySentence, 3)
	if err != nil {
		t.Fatalf("chunk error: %v", err)
	}

	found := false
	for _, chunk := range chunks {
		if chunk.Text == long {
			found = true
		}
		if strings.Contains(chunk.Text, "quite a few") && chunk.Text != long {
			t.Errorf("oversized sentence was split or merged: %q", chunk.Text)
		}
	}
	if !found {
		t.Errorf("oversized sentence should be its own chunk, got %v", chunks)
	}
}

func TestChunkingIsDeterministic(t *testing.T) {
	cs := NewChunkingService()
	text := "Alpha beta gamma. Delta epsilon! Zeta eta theta iota? Kappa."

	for _, strategy := range []string{models.StrategyFixed, models.StrategySentence} {
		first, err := cs.Chunk(text, strategy, 4)
		if err != nil {
			t.Fatalf("%s: chunk error: %v", strategy, err)
		}
		second, err := cs.Chunk(text, strategy, 4)
		if err != nil {
			t.Fatalf("%s: chunk error: %v", strategy, err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("%s: repeated chunking differs:\n%v\n%v", strategy, first, second)
		}
	}
}

func TestChunkingEmptyText(t *testing.T) {
	cs := NewChunkingService()

	for _, strategy := range []string{models.StrategyFixed, models.StrategySentence} {
		for _, text := range []string{"", "   \n\t  "} {
			chunks, err := cs.Chunk(text, strategy, 10)
			if err != nil {
				t.Fatalf("%s: chunk error: %v", strategy, err)
			}
			if len(chunks) != 0 {
				t.Errorf("%s: expected no chunks for %q, got %d", strategy, text, len(chunks))
			}
		}
	}
}

func TestChunkingRejectsBadArguments(t *testing.T) {
	cs := NewChunkingService()

	if _, err := cs.Chunk("some text", models.StrategyFixed, 0); err == nil {
		t.Error("expected error for size 0")
	}
	if _, err := cs.Chunk("some text", models.StrategyFixed, -5); err == nil {
		t.Error("expected error for negative size")
	}
	if _, err := cs.Chunk("some text", "paragraph", 10); err == nil {
		t.Error("expected error for unknown strategy")
	}
}
