package processor

import (
	"fmt"
	"regexp"
	"strings"
)

// sentenceBoundary marks terminal punctuation followed by whitespace. The
// punctuation is captured so it stays attached to its sentence.
var sentenceBoundary = regexp.MustCompile(`([.!?])\s+`)

// Chunker splits cleaned text into overlapping, size-bounded segments.
// Sizes are measured in whitespace-delimited words as a token approximation.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker validates the chunking parameters. chunkOverlap must be smaller
// than chunkSize: an overlap that large would make the sliding window stop
// moving forward.
func NewChunker(chunkSize, chunkOverlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap must be >= 0 and < chunk size, got overlap %d with size %d", chunkOverlap, chunkSize)
	}
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}, nil
}

// ChunkText splits text into word windows of chunkSize words, each window
// starting chunkSize-chunkOverlap words after the previous one. Text that
// fits in a single window is returned unchanged. Leftover words after the
// last full window are always emitted as a final shorter chunk.
func (c *Chunker) ChunkText(text string) []string {
	if text == "" {
		return nil
	}

	words := strings.Fields(text)
	if len(words) <= c.chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(words) {
		// A full window always remains here: the loop only continues
		// while start <= len(words)-chunkSize.
		end := start + c.chunkSize
		chunks = append(chunks, strings.Join(words[start:end], " "))

		start = end - c.chunkOverlap
		if start <= len(words)-c.chunkSize {
			continue
		}
		if start < len(words) {
			chunks = append(chunks, strings.Join(words[start:], " "))
		}
		break
	}

	return chunks
}

// ChunkBySentences accumulates whole sentences into chunks of at most
// chunkSize words. When a sentence would overflow the current chunk, the
// chunk is flushed and the next one starts with the last chunkOverlap words
// of the flushed chunk for context continuity. A single sentence longer than
// chunkSize falls back to word-window splitting, without overlap seeding.
func (c *Chunker) ChunkBySentences(text string) []string {
	if text == "" {
		return nil
	}

	sentences := splitSentences(text)

	var chunks []string
	var current []string
	currentSize := 0

	for _, sentence := range sentences {
		sentenceSize := len(strings.Fields(sentence))

		if currentSize+sentenceSize <= c.chunkSize {
			current = append(current, sentence)
			currentSize += sentenceSize
			continue
		}

		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
		}

		if sentenceSize <= c.chunkSize {
			var overlapWords []string
			if len(chunks) > 0 && c.chunkOverlap > 0 {
				prevWords := strings.Fields(chunks[len(chunks)-1])
				if len(prevWords) > c.chunkOverlap {
					overlapWords = prevWords[len(prevWords)-c.chunkOverlap:]
				} else {
					overlapWords = prevWords
				}
			}
			if len(overlapWords) > 0 {
				current = []string{strings.Join(overlapWords, " "), sentence}
			} else {
				current = []string{sentence}
			}
			currentSize = len(strings.Fields(strings.Join(current, " ")))
		} else {
			chunks = append(chunks, c.ChunkText(sentence)...)
			current = nil
			currentSize = 0
		}
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	return chunks
}

// splitSentences cuts text after terminal punctuation followed by
// whitespace, keeping the punctuation with the preceding sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceBoundary.FindAllStringSubmatchIndex(text, -1) {
		sentences = append(sentences, text[start:loc[3]])
		start = loc[1]
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}
