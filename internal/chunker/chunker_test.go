package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := New()
		if c.targetTokens != DefaultTargetTokens {
			t.Errorf("expected targetTokens %d, got %d", DefaultTargetTokens, c.targetTokens)
		}
		if c.overlapTokens != DefaultOverlapTokens {
			t.Errorf("expected overlapTokens %d, got %d", DefaultOverlapTokens, c.overlapTokens)
		}
		if c.minTokens != DefaultMinTokens {
			t.Errorf("expected minTokens %d, got %d", DefaultMinTokens, c.minTokens)
		}
	})

	t.Run("custom values", func(t *testing.T) {
		c := New(WithTargetTokens(100), WithOverlapTokens(10), WithMinTokens(20))
		if c.targetTokens != 100 || c.overlapTokens != 10 || c.minTokens != 20 {
			t.Errorf("options not applied: %+v", c)
		}
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		c := New(WithTargetTokens(0), WithOverlapTokens(-1), WithMinTokens(-5))
		if c.targetTokens != DefaultTargetTokens {
			t.Errorf("expected default targetTokens, got %d", c.targetTokens)
		}
		if c.overlapTokens != DefaultOverlapTokens {
			t.Errorf("expected default overlapTokens, got %d", c.overlapTokens)
		}
		if c.minTokens != DefaultMinTokens {
			t.Errorf("expected default minTokens, got %d", c.minTokens)
		}
	})
}

func TestNormalize(t *testing.T) {
	t.Run("line endings", func(t *testing.T) {
		got := Normalize("a\r\nb\rc\nd")
		if got != "a\nb\nc\nd" {
			t.Errorf("unexpected normalisation: %q", got)
		}
	})

	t.Run("collapses newline runs", func(t *testing.T) {
		got := Normalize("a\n\n\n\n\nb")
		if got != "a\n\nb" {
			t.Errorf("unexpected normalisation: %q", got)
		}
	})

	t.Run("paragraph break preserved", func(t *testing.T) {
		got := Normalize("a\n\nb")
		if got != "a\n\nb" {
			t.Errorf("unexpected normalisation: %q", got)
		}
	})
}

func TestChunk_EmptyInput(t *testing.T) {
	c := New()
	if got := c.Chunk(""); got != nil {
		t.Errorf("expected no chunks for empty input, got %d", len(got))
	}
	if got := c.Chunk("  \n\n\t  "); got != nil {
		t.Errorf("expected no chunks for whitespace input, got %d", len(got))
	}
}

func TestChunk_SmallInput(t *testing.T) {
	// Below minChars the whole text becomes the single chunk.
	c := New()
	text := "short document"
	chunks := c.Chunk(text)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != text {
		t.Errorf("expected whole text, got %q", chunks[0].Content)
	}
	if chunks[0].Index != 0 || chunks[0].StartChar != 0 || chunks[0].EndChar != len(text) {
		t.Errorf("unexpected chunk bounds: %+v", chunks[0])
	}
	if chunks[0].TokenCount != 4 { // ceil(14/4)
		t.Errorf("expected token count 4, got %d", chunks[0].TokenCount)
	}
}

func TestChunk_UnbrokenText(t *testing.T) {
	// 3000 characters with no breaks at all: defaults (2000/200/400 chars)
	// must produce exactly two chunks overlapping by the overlap budget.
	c := New()
	text := strings.Repeat("a", 3000)
	chunks := c.Chunk(text)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].StartChar != 0 || chunks[0].EndChar != 2000 {
		t.Errorf("unexpected first chunk bounds: %d..%d", chunks[0].StartChar, chunks[0].EndChar)
	}
	if chunks[1].StartChar != 1800 || chunks[1].EndChar != 3000 {
		t.Errorf("unexpected second chunk bounds: %d..%d", chunks[1].StartChar, chunks[1].EndChar)
	}
	for _, chunk := range chunks {
		if len(chunk.Content) < 400 {
			t.Errorf("chunk %d below minimum: %d chars", chunk.Index, len(chunk.Content))
		}
	}
}

func TestChunk_PrefersParagraphBreak(t *testing.T) {
	// A paragraph break 100 chars before the proposed cut should win over
	// a hard cut.
	c := New()
	text := strings.Repeat("a", 1900) + "\n\n" + strings.Repeat("b", 1500)
	chunks := c.Chunk(text)

	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	if chunks[0].EndChar != 1900 {
		t.Errorf("expected first chunk to end at the paragraph break, got %d", chunks[0].EndChar)
	}
}

func TestChunk_FallsBackToSentenceBreak(t *testing.T) {
	c := New()
	text := strings.Repeat("a", 1897) + ". " + strings.Repeat("b", 1500)
	chunks := c.Chunk(text)

	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	// Cut lands just after the full stop.
	if chunks[0].EndChar != 1898 {
		t.Errorf("expected first chunk to end after the sentence, got %d", chunks[0].EndChar)
	}
	if !strings.HasSuffix(chunks[0].Content, ".") {
		t.Errorf("expected first chunk to end with the terminator")
	}
}

func TestChunk_Properties(t *testing.T) {
	c := New()
	inputs := []string{
		strings.Repeat("The quick brown fox jumps over the lazy dog. ", 300),
		strings.Repeat("para\n\n", 800),
		strings.Repeat("x", 5000),
		"tiny",
	}

	for _, text := range inputs {
		chunks := c.Chunk(text)

		if len(chunks) == 0 {
			t.Fatalf("non-empty input produced no chunks")
		}

		prevStart, prevEnd := -1, -1
		for i, chunk := range chunks {
			if chunk.Index != i {
				t.Errorf("index gap: chunk %d has index %d", i, chunk.Index)
			}
			if chunk.StartChar < prevStart || chunk.EndChar < prevEnd {
				t.Errorf("offsets not non-decreasing at chunk %d", i)
			}
			if len(chunks) > 1 && len(chunk.Content) < 400 {
				t.Errorf("chunk %d below minimum: %d chars", i, len(chunk.Content))
			}
			// Only adjacent chunks may overlap.
			if i >= 2 && chunk.StartChar < chunks[i-2].EndChar {
				t.Errorf("chunk %d overlaps non-adjacent chunk %d", i, i-2)
			}
			prevStart, prevEnd = chunk.StartChar, chunk.EndChar
		}
	}
}

func TestChunk_Deterministic(t *testing.T) {
	c := New()
	text := strings.Repeat("Sentences vary in length. Some are short! Others go on and on, clause after clause? ", 120)

	first := c.Chunk(text)
	second := c.Chunk(text)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestChunk_HardCutKeepsRunesIntact(t *testing.T) {
	// Unbroken multi-byte text forces hard cuts; every chunk must still be
	// valid UTF-8, with cuts nudged to rune boundaries.
	c := New(WithTargetTokens(5), WithOverlapTokens(1), WithMinTokens(2))
	text := strings.Repeat("界", 100) // 3 bytes each, no break candidates

	chunks := c.Chunk(text)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for _, chunk := range chunks {
		if !utf8.ValidString(chunk.Content) {
			t.Errorf("chunk %d is not valid UTF-8: %q", chunk.Index, chunk.Content)
		}
		if chunk.Content != text[chunk.StartChar:chunk.EndChar] {
			t.Errorf("chunk %d content does not match its offsets", chunk.Index)
		}
	}
}

func TestChunk_ForwardProgress(t *testing.T) {
	// Overlap larger than the chunk must still advance the cursor.
	c := New(WithTargetTokens(10), WithOverlapTokens(50), WithMinTokens(1))
	text := strings.Repeat("z", 500)
	chunks := c.Chunk(text)

	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].StartChar <= chunks[i-1].StartChar {
			t.Fatalf("cursor stalled at chunk %d", i)
		}
	}
}
