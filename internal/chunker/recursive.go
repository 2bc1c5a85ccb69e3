package chunker

import (
	"maps"
	"strings"
	"unicode/utf8"

	"pdfchat/internal/domain"
)

// DefaultSeparators are tried in order: paragraphs, lines, words, characters.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// RecursiveChunker splits text into windows of at most chunkSize characters,
// preferring to break on the coarsest separator that keeps pieces small enough.
// Consecutive windows of the same text share up to overlap characters.
type RecursiveChunker struct {
	chunkSize  int
	overlap    int
	separators []string
}

func NewRecursiveChunker(chunkSize, overlap int) *RecursiveChunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}
	return &RecursiveChunker{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: DefaultSeparators,
	}
}

// Split chunks every document, copying the document metadata onto each chunk.
func (c *RecursiveChunker) Split(documents []domain.Document) []domain.Chunk {
	var chunks []domain.Chunk
	for _, d := range documents {
		for i, text := range c.SplitText(d.Content) {
			chunks = append(chunks, domain.Chunk{
				Content:  text,
				Metadata: maps.Clone(d.Metadata),
				Index:    i,
			})
		}
	}
	return chunks
}

// SplitText returns the windows for a single text. Blank text yields none.
func (c *RecursiveChunker) SplitText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return c.split(text, c.separators)
}

func (c *RecursiveChunker) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var next []string
	for i, sep := range separators {
		if sep == "" {
			separator = ""
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			next = separators[i+1:]
			break
		}
	}

	var pieces []string
	for _, p := range splitOn(text, separator) {
		if p != "" {
			pieces = append(pieces, p)
		}
	}

	var out, good []string
	for _, p := range pieces {
		if length(p) < c.chunkSize {
			good = append(good, p)
			continue
		}
		if len(good) > 0 {
			out = append(out, c.merge(good, separator)...)
			good = nil
		}
		if len(next) == 0 {
			out = append(out, p)
		} else {
			out = append(out, c.split(p, next)...)
		}
	}
	if len(good) > 0 {
		out = append(out, c.merge(good, separator)...)
	}
	return out
}

// merge packs small pieces into windows, carrying a tail of at most
// overlap characters from one window into the next.
func (c *RecursiveChunker) merge(pieces []string, separator string) []string {
	sepLen := length(separator)
	var docs, current []string
	total := 0
	for _, p := range pieces {
		l := length(p)
		if total+l+joinCost(current, sepLen) > c.chunkSize {
			if len(current) > 0 {
				if doc := strings.TrimSpace(strings.Join(current, separator)); doc != "" {
					docs = append(docs, doc)
				}
				for total > c.overlap || (total > 0 && total+l+joinCost(current, sepLen) > c.chunkSize) {
					total -= length(current[0])
					if len(current) > 1 {
						total -= sepLen
					}
					current = current[1:]
				}
			}
		}
		current = append(current, p)
		total += l
		if len(current) > 1 {
			total += sepLen
		}
	}
	if doc := strings.TrimSpace(strings.Join(current, separator)); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

func joinCost(current []string, sepLen int) int {
	if len(current) > 0 {
		return sepLen
	}
	return 0
}

func splitOn(text, separator string) []string {
	if separator != "" {
		return strings.Split(text, separator)
	}
	out := make([]string, 0, utf8.RuneCountInString(text))
	for _, r := range text {
		out = append(out, string(r))
	}
	return out
}

func length(s string) int { return utf8.RuneCountInString(s) }
