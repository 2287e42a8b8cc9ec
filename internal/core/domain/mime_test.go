package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveContentType(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		filename string
		want     string
		wantErr  bool
	}{
		{"declared plain", "text/plain", "notes.bin", ContentTypePlain, false},
		{"declared markdown", "text/markdown", "", ContentTypeMarkdown, false},
		{"declared with charset", "text/plain; charset=utf-8", "", ContentTypePlain, false},
		{"declared uppercase", "TEXT/PLAIN", "", ContentTypePlain, false},
		{"no header, md extension", "", "README.md", ContentTypeMarkdown, false},
		{"no header, markdown extension", "", "guide.markdown", ContentTypeMarkdown, false},
		{"no header, txt extension", "", "notes.TXT", ContentTypePlain, false},
		{"unsupported declared, good extension", "application/octet-stream", "notes.txt", ContentTypePlain, false},
		{"unsupported everything", "application/pdf", "report.pdf", "", true},
		{"nothing to go on", "", "archive", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveContentType(tt.declared, tt.filename)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedType)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveContentType_ErrorListsSupportedTypes(t *testing.T) {
	_, err := ResolveContentType("application/pdf", "report.pdf")

	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Contains(t, err.Error(), ContentTypePlain)
	assert.Contains(t, err.Error(), ContentTypeMarkdown)
}

func TestSupportedContentTypes(t *testing.T) {
	types := SupportedContentTypes()
	assert.Contains(t, types, ContentTypePlain)
	assert.Contains(t, types, ContentTypeMarkdown)
	assert.Len(t, types, 2)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)

	// Degenerate inputs score zero rather than erroring.
	assert.Zero(t, CosineSimilarity(nil, nil))
	assert.Zero(t, CosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
}
