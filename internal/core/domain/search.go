package domain

import "math"

// MaxQueryLength is the longest accepted search query, in characters.
const MaxQueryLength = 1000

// SearchOptions configures a retrieval query. Zero values mean "use the
// configured default"; out-of-range values are clamped, not rejected.
type SearchOptions struct {
	// Limit is the maximum number of results.
	Limit int

	// Threshold is the minimum similarity score for a result to be included.
	Threshold float64
}

// SearchResult represents a single retrieval hit.
type SearchResult struct {
	// Chunk is the matched passage.
	Chunk DocumentChunk

	// DocumentName is the display name of the owning document,
	// carried for citation.
	DocumentName string

	// Similarity is the cosine similarity between the query embedding
	// and the chunk embedding. Higher is more relevant.
	Similarity float64
}

// SearchResponse is the full answer to a retrieval query.
type SearchResponse struct {
	// Results are ordered by descending similarity.
	Results []SearchResult

	// Count is len(Results).
	Count int

	// Context is a pre-formatted, citation-bearing block of the result
	// passages, suitable for direct inclusion as grounding context by a
	// downstream language-model caller. When no provider is configured it
	// explains why no passages were retrieved.
	Context string
}

// CosineSimilarity returns the cosine similarity of two vectors, in [-1, 1].
// Mismatched or empty vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
