// Package chunker splits normalised document text into ordered, overlapping
// passages sized by an approximate token budget.
package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Default chunking parameters, in tokens.
const (
	DefaultTargetTokens  = 500
	DefaultOverlapTokens = 50
	DefaultMinTokens     = 100
)

// charsPerToken is the approximation ratio used to convert token budgets
// into character budgets.
const charsPerToken = 4

// breakWindow is how far (in characters) around a proposed cut position
// the chunker looks for a natural break.
const breakWindow = 200

// Chunk is a contiguous passage of the normalised input text.
type Chunk struct {
	// Content is the passage text.
	Content string

	// Index is zero-based and contiguous across the returned sequence.
	Index int

	// TokenCount is ceil(len(Content) / 4).
	TokenCount int

	// StartChar and EndChar locate the passage in the normalised text.
	StartChar int
	EndChar   int
}

// Chunker splits text into overlapping passages. The zero value is not
// usable; construct with New.
type Chunker struct {
	targetTokens  int
	overlapTokens int
	minTokens     int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithTargetTokens sets the chunk size goal in tokens.
func WithTargetTokens(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.targetTokens = n
		}
	}
}

// WithOverlapTokens sets the overlap between consecutive chunks in tokens.
func WithOverlapTokens(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.overlapTokens = n
		}
	}
}

// WithMinTokens sets the smallest chunk worth emitting, in tokens.
func WithMinTokens(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.minTokens = n
		}
	}
}

// New creates a Chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		targetTokens:  DefaultTargetTokens,
		overlapTokens: DefaultOverlapTokens,
		minTokens:     DefaultMinTokens,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// multiNewline matches runs of three or more newlines.
var multiNewline = regexp.MustCompile(`\n{3,}`)

// Normalize canonicalises line endings and collapses runs of three or more
// newlines to a paragraph break. Chunk offsets refer to the normalised text.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return multiNewline.ReplaceAllString(text, "\n\n")
}

// Chunk splits text into ordered, overlapping passages. The input is
// normalised first. Whitespace-only input yields no chunks; any other input
// yields at least one. Identical input and parameters always produce an
// identical sequence, so reprocessing is idempotent in output shape.
func (c *Chunker) Chunk(text string) []Chunk {
	text = Normalize(text)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	targetChars := c.targetTokens * charsPerToken
	overlapChars := c.overlapTokens * charsPerToken
	minChars := c.minTokens * charsPerToken

	total := len(text)
	cursor := 0
	index := 0
	var chunks []Chunk

	for cursor < total {
		end := cursor + targetChars
		if end >= total || total-end < minChars {
			// The remainder would be too small to stand alone,
			// so the rest of the text becomes the final chunk.
			end = total
		} else {
			end = findBreak(text, cursor, end)
		}

		content := text[cursor:end]

		// A candidate below the minimum is discarded without consuming an
		// index: its content is already covered by the previous chunk's
		// overlap. The sole exception guarantees at least one chunk.
		if len(content) >= minChars || (end == total && len(chunks) == 0) {
			chunks = append(chunks, Chunk{
				Content:    content,
				Index:      index,
				TokenCount: estimateTokens(len(content)),
				StartChar:  cursor,
				EndChar:    end,
			})
			index++
		}

		if end == total {
			break
		}

		// Advance monotonically: overlap may never stall the cursor.
		next := end - overlapChars
		if next <= cursor {
			next = cursor + 1
		}
		cursor = runeAlign(text, next)
	}

	return chunks
}

// estimateTokens approximates the token count, rounding up.
func estimateTokens(chars int) int {
	return (chars + charsPerToken - 1) / charsPerToken
}

// findBreak searches a fixed window around the proposed cut for a natural
// break: a paragraph break is preferred, then a sentence boundary. Failing
// both, the proposed position is used (hard cut).
func findBreak(text string, cursor, proposed int) int {
	lo := proposed - breakWindow
	if lo <= cursor {
		lo = cursor + 1
	}
	hi := proposed + breakWindow
	if hi > len(text) {
		hi = len(text)
	}

	if at := nearestParagraphBreak(text, lo, hi, proposed); at > 0 {
		return at
	}
	if at := nearestSentenceBreak(text, lo, hi, proposed); at > 0 {
		return at
	}
	return runeAlign(text, proposed)
}

// runeAlign nudges a byte position forward to the nearest rune start, so a
// cut never splits a multi-byte rune.
func runeAlign(text string, i int) int {
	for i < len(text) && !utf8.RuneStart(text[i]) {
		i++
	}
	return i
}

// nearestParagraphBreak returns the cut position at the "\n\n" closest to
// proposed within [lo, hi), or 0 if none exists.
func nearestParagraphBreak(text string, lo, hi, proposed int) int {
	best := 0
	for i := lo; i+1 < hi; i++ {
		if text[i] == '\n' && text[i+1] == '\n' {
			if best == 0 || abs(i-proposed) < abs(best-proposed) {
				best = i
			}
		}
	}
	return best
}

// nearestSentenceBreak returns the cut position just after the sentence
// terminator closest to proposed within [lo, hi), or 0 if none exists.
// A terminator is '.', '!' or '?' followed by whitespace.
func nearestSentenceBreak(text string, lo, hi, proposed int) int {
	best := 0
	for i := lo; i+1 < hi; i++ {
		if isSentenceEnd(text[i]) && isWhitespace(text[i+1]) {
			cut := i + 1
			if best == 0 || abs(cut-proposed) < abs(best-proposed) {
				best = cut
			}
		}
	}
	return best
}

func isSentenceEnd(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t'
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
