package rag

import (
	"strings"
	"unicode/utf8"
)

const defaultChunkSize = 500

// Splitter cuts a document into chunks that are embedded separately.
type Splitter interface {
	SplitText(text string) []string
}

// RecursiveCharacterSplitter splits text recursively using a list of separators.
// It tries to keep related text together (paragraphs, then sentences, then words).
type RecursiveCharacterSplitter struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

// NewSplitter picks separators by strategy: "markdown", "code", "fixed" or
// "recursive" (the default). Custom separators win over the strategy.
func NewSplitter(strategy string, size, overlap int, separators []string) Splitter {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	if len(separators) > 0 {
		return &RecursiveCharacterSplitter{ChunkSize: size, ChunkOverlap: overlap, Separators: separators}
	}

	switch strategy {
	case "code", "go", "python":
		return NewCodeSplitter(size, overlap)
	case "markdown", "md":
		return &RecursiveCharacterSplitter{
			ChunkSize:    size,
			ChunkOverlap: overlap,
			Separators:   []string{"\n## ", "\n### ", "\n\n", "\n", " ", ""}, // header first
		}
	case "fixed":
		return &RecursiveCharacterSplitter{ChunkSize: size, ChunkOverlap: overlap, Separators: []string{""}}
	default:
		return NewRecursiveSplitter(size, overlap)
	}
}

// NewRecursiveSplitter creates a splitter with default separators suitable for generic text
func NewRecursiveSplitter(chunkSize, chunkOverlap int) *RecursiveCharacterSplitter {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &RecursiveCharacterSplitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		Separators:   []string{"\n\n", "\n", " ", ""},
	}
}

// NewCodeSplitter prefers declaration boundaries.
func NewCodeSplitter(chunkSize, chunkOverlap int) *RecursiveCharacterSplitter {
	return &RecursiveCharacterSplitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		Separators:   []string{"\nfunc ", "\ntype ", "\nclass ", "\ndef ", "\n\n", "\n", " ", ""},
	}
}

// SplitText returns the chunks of text. Whitespace-only input gives none.
func (s *RecursiveCharacterSplitter) SplitText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var chunks []string
	for _, c := range s.recursiveSplit(text, s.Separators) {
		if strings.TrimSpace(c) != "" {
			chunks = append(chunks, c)
		}
	}
	return chunks
}

// recursiveSplit splits text on the first separator and recurses with the
// next ones into the pieces that are still too large.
func (s *RecursiveCharacterSplitter) recursiveSplit(text string, separators []string) []string {
	if len(separators) == 0 {
		return []string{text}
	}

	separator := separators[0]
	next := separators[1:]

	parts := strings.Split(text, separator)
	if len(parts) == 1 && separator != "" {
		return s.recursiveSplit(text, next)
	}

	var good []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		if utf8.RuneCountInString(part) < s.ChunkSize || len(next) == 0 {
			good = append(good, part)
			continue
		}
		good = append(good, s.recursiveSplit(part, next)...)
	}
	return s.mergeSplits(good, separator)
}

// mergeSplits joins small pieces with separator up to ChunkSize, carrying
// the tail of each chunk over as overlap.
func (s *RecursiveCharacterSplitter) mergeSplits(splits []string, separator string) []string {
	var merged []string
	var current []string
	sepLen := utf8.RuneCountInString(separator)

	for _, split := range splits {
		splitLen := utf8.RuneCountInString(split)
		if len(current) > 0 && joinedLen(current, sepLen)+sepLen+splitLen > s.ChunkSize {
			merged = append(merged, strings.Join(current, separator))
			if s.ChunkOverlap > 0 {
				current = trimToOverlap(current, sepLen, s.ChunkOverlap)
			} else {
				current = nil
			}
		}
		current = append(current, split)
	}
	if len(current) > 0 {
		merged = append(merged, strings.Join(current, separator))
	}
	return merged
}

func joinedLen(parts []string, sepLen int) int {
	n := 0
	for _, p := range parts {
		n += utf8.RuneCountInString(p)
	}
	if len(parts) > 1 {
		n += (len(parts) - 1) * sepLen
	}
	return n
}

// trimToOverlap drops pieces from the head until the rest fits in overlap.
func trimToOverlap(parts []string, sepLen, overlap int) []string {
	out := append([]string(nil), parts...)
	for len(out) > 0 && joinedLen(out, sepLen) > overlap {
		out = out[1:]
	}
	return out
}
