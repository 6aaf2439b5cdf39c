package manual

import (
	"strings"
	"unicode/utf8"
)

// Splitter defaults used for the shop manual.
const (
	DefaultSeparator = "\n"
	DefaultChunkSize = 500
)

// Splitter cuts text on a separator and greedily merges the pieces back
// into chunks of at most Size runes. A single piece longer than Size becomes
// a chunk of its own. Overlap is the number of trailing runes carried into
// the next chunk.
type Splitter struct {
	Separator string
	Size      int
	Overlap   int
}

// NewSplitter returns the splitter used for the manual: newline separated,
// 500 runes, no overlap.
func NewSplitter() Splitter {
	return Splitter{Separator: DefaultSeparator, Size: DefaultChunkSize}
}

// Split returns the chunks of text in order. Empty pieces are dropped and
// every chunk is trimmed of surrounding whitespace.
func (s Splitter) Split(text string) []string {
	var pieces []string
	for _, p := range strings.Split(text, s.Separator) {
		if p != "" {
			pieces = append(pieces, p)
		}
	}
	return s.merge(pieces)
}

func (s Splitter) merge(pieces []string) []string {
	sepLen := utf8.RuneCountInString(s.Separator)

	var (
		chunks  []string
		current []string
		total   int
	)
	joinLen := func() int {
		if len(current) > 0 {
			return sepLen
		}
		return 0
	}

	for _, p := range pieces {
		n := utf8.RuneCountInString(p)
		if total+n+joinLen() > s.Size && len(current) > 0 {
			if chunk := s.join(current); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for total > s.Overlap || (total > 0 && total+n+joinLen() > s.Size) {
				drop := utf8.RuneCountInString(current[0])
				if len(current) > 1 {
					drop += sepLen
				}
				total -= drop
				current = current[1:]
			}
		}
		current = append(current, p)
		total += n
		if len(current) > 1 {
			total += sepLen
		}
	}

	if chunk := s.join(current); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func (s Splitter) join(pieces []string) string {
	return strings.TrimSpace(strings.Join(pieces, s.Separator))
}
