package ingestion

import (
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"

	"docqa/internal/models"
)

// Splitter breaks page text into bounded chunks with overlap, preferring
// paragraph and sentence boundaries over hard cuts
type Splitter struct {
	chunkSize    int
	chunkOverlap int
}

// NewSplitter creates a splitter. Overlap must be smaller than size; invalid
// values fall back to defaults.
func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 5
	}
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Split chunks the pages of one document. Chunk IDs continue from startIndex
// so they stay unique across repeated ingestions into the same session.
func (s *Splitter) Split(pages []models.PageRecord, source string, startIndex int) []models.Chunk {
	idx := startIndex
	var chunks []models.Chunk

	for _, pg := range pages {
		pageNum := pg.Page
		for _, piece := range s.splitText(pg.Text) {
			p := pageNum
			chunks = append(chunks, models.Chunk{
				Content: piece,
				Metadata: models.ChunkMetadata{
					Source:  source,
					Page:    &p,
					ChunkID: fmt.Sprintf("%s_chunk_%d", source, idx),
				},
			})
			idx++
		}
	}

	return chunks
}

// splitText splits a single page's text into pieces of at most chunkSize
// characters, packing whole sentences and carrying chunkOverlap characters of
// trailing context into the next piece
func (s *Splitter) splitText(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= s.chunkSize {
		return []string{text}
	}

	var pieces []string
	for _, paragraph := range strings.Split(text, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		if len(paragraph) <= s.chunkSize {
			pieces = append(pieces, paragraph)
			continue
		}
		pieces = append(pieces, s.packSentences(splitSentences(paragraph))...)
	}

	return pieces
}

// packSentences greedily fills chunks with whole sentences up to chunkSize,
// then backs up enough sentences to provide the configured overlap
func (s *Splitter) packSentences(sentences []string) []string {
	var pieces []string
	i := 0
	for i < len(sentences) {
		var size int
		end := i
		for end < len(sentences) && size+len(sentences[end]) <= s.chunkSize {
			size += len(sentences[end]) + 1
			end++
		}

		if end == i {
			// Single sentence longer than the chunk size: hard-split by words
			pieces = append(pieces, splitByWords(sentences[i], s.chunkSize, s.chunkOverlap)...)
			i++
			continue
		}

		pieces = append(pieces, strings.Join(sentences[i:end], " "))
		if end == len(sentences) {
			break
		}

		// Back up sentences until the overlap budget is covered
		next := end
		var carried int
		for next > i+1 && carried < s.chunkOverlap {
			next--
			carried += len(sentences[next]) + 1
		}
		i = next
	}

	return pieces
}

// splitSentences segments text into sentences, falling back to line splitting
// when NLP segmentation fails
func splitSentences(text string) []string {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err == nil {
		var sentences []string
		for _, sent := range doc.Sentences() {
			if trimmed := strings.TrimSpace(sent.Text); trimmed != "" {
				sentences = append(sentences, trimmed)
			}
		}
		if len(sentences) > 0 {
			return sentences
		}
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) == 0 {
		return []string{text}
	}
	return lines
}

// splitByWords is the last-resort split for sentences that exceed the chunk
// size on their own. Budgets are converted from characters to words assuming
// an average word length of six characters.
func splitByWords(text string, size, overlap int) []string {
	words := strings.Fields(text)
	wordsPerChunk := size / 6
	if wordsPerChunk < 1 {
		wordsPerChunk = 1
	}
	step := wordsPerChunk - overlap/6
	if step < 1 {
		step = 1
	}

	var out []string
	for i := 0; i < len(words); i += step {
		end := i + wordsPerChunk
		if end > len(words) {
			end = len(words)
		}
		out = append(out, strings.Join(words[i:end], " "))
		if end == len(words) {
			break
		}
	}
	return out
}
