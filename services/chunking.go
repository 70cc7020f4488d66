package services

import (
	"fmt"
	"regexp"
	"strings"

	"modular-rag-service/models"
)

// ChunkingService splits raw document text into ordered retrieval chunks.
// It holds no state besides compiled patterns; output is a pure function of
// its inputs.
type ChunkingService struct {
	sentenceRegex *regexp.Regexp
}

// NewChunkingService creates a new chunking service
func NewChunkingService() *ChunkingService {
	return &ChunkingService{
		sentenceRegex: regexp.MustCompile(`[.!?]+[\s]+`),
	}
}

// Chunk splits text under the given strategy. size is the per-chunk token
// budget, where a token is a whitespace-separated word. Empty or
// whitespace-only text yields no chunks.
func (cs *ChunkingService) Chunk(text, strategy string, size int) ([]models.TextChunk, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}

	switch strategy {
	case models.StrategyFixed:
		return cs.chunkFixed(text, size), nil
	case models.StrategySentence:
		return cs.chunkSentences(text, size), nil
	default:
		return nil, fmt.Errorf("unknown chunking strategy: %q", strategy)
	}
}

// chunkFixed groups whitespace tokens into consecutive windows of exactly
// size tokens; only the final window may be shorter.
func (cs *ChunkingService) chunkFixed(text string, size int) []models.TextChunk {
	tokens := strings.Fields(text)
	chunks := make([]models.TextChunk, 0, (len(tokens)+size-1)/size)

	for start := 0; start < len(tokens); start += size {
		end := start + size
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, models.TextChunk{
			Index: len(chunks),
			Text:  strings.Join(tokens[start:end], " "),
		})
	}

	return chunks
}

// chunkSentences accumulates whole sentences into chunks of at most size
// tokens. A single sentence longer than the budget becomes its own oversized
// chunk; sentences are never split in the middle.
func (cs *ChunkingService) chunkSentences(text string, size int) []models.TextChunk {
	sentences := cs.splitSentences(text)

	var chunks []models.TextChunk
	var current []string
	currentCount := 0

	for _, sentence := range sentences {
		tokenCount := len(strings.Fields(sentence))
		if currentCount+tokenCount > size && currentCount > 0 {
			chunks = append(chunks, models.TextChunk{
				Index: len(chunks),
				Text:  strings.Join(current, " "),
			})
			current = []string{sentence}
			currentCount = tokenCount
		} else {
			current = append(current, sentence)
			currentCount += tokenCount
		}
	}

	if len(current) > 0 {
		chunks = append(chunks, models.TextChunk{
			Index: len(chunks),
			Text:  strings.Join(current, " "),
		})
	}

	return chunks
}

// splitSentences cuts on runs of ./!/? followed by whitespace, keeping the
// punctuation with the sentence. Abbreviations and decimal numbers are not
// special-cased.
func (cs *ChunkingService) splitSentences(text string) []string {
	var sentences []string
	last := 0

	for _, loc := range cs.sentenceRegex.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[last:loc[1]]); s != "" {
			sentences = append(sentences, s)
		}
		last = loc[1]
	}
	if s := strings.TrimSpace(text[last:]); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
