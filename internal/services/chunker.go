package services

import (
	"strings"
	"unicode/utf8"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 100
)

// TextChunker splits long profile text into overlapping pieces for embedding.
type TextChunker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

// ChunkText implements TextChunker. Paragraphs stay whole when they fit;
// longer ones are cut at sentence ends. Each new chunk repeats the last
// overlap runes of the previous one.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = defaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	var pieces []piece
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if utf8.RuneCountInString(para) <= maxChunkSize {
			pieces = append(pieces, piece{text: para, sep: "\n\n"})
			continue
		}
		for _, sentence := range splitIntoSentences(para) {
			pieces = append(pieces, piece{text: sentence, sep: " "})
		}
	}

	var (
		chunks  []string
		current strings.Builder
	)
	for _, p := range pieces {
		if current.Len() > 0 && utf8.RuneCountInString(current.String())+len(p.sep)+utf8.RuneCountInString(p.text) > maxChunkSize {
			chunks = append(chunks, current.String())
			current.Reset()
			if tail := lastRunes(chunks[len(chunks)-1], overlap); tail != "" {
				current.WriteString(tail)
			}
		}
		if current.Len() > 0 {
			current.WriteString(p.sep)
		}
		current.WriteString(p.text)
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}

type piece struct {
	text string
	sep  string
}

func splitIntoSentences(text string) []string {
	sentences := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	var result []string
	for _, s := range sentences {
		if s = strings.TrimSpace(s); s != "" {
			result = append(result, s)
		}
	}
	return result
}

func lastRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}

	return string(runes[len(runes)-n:])
}
