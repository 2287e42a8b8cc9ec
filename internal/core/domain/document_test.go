package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentStatus_IsValid(t *testing.T) {
	valid := []DocumentStatus{StatusPending, StatusProcessing, StatusReady, StatusFailed}
	for _, s := range valid {
		assert.True(t, s.IsValid(), "expected %s to be valid", s)
	}
	assert.False(t, DocumentStatus("queued").IsValid())
	assert.False(t, DocumentStatus("").IsValid())
}

func TestDocumentStatus_Transitions(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.True(t, StatusReady.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())

	assert.True(t, StatusReady.CanReprocess())
	assert.True(t, StatusFailed.CanReprocess())
	assert.False(t, StatusPending.CanReprocess())
	assert.False(t, StatusProcessing.CanReprocess())
}

func TestDocument_IsDegraded(t *testing.T) {
	doc := &Document{Status: StatusReady}

	withVector := []DocumentChunk{{Embedding: []float32{0.1, 0.2}}}
	withoutVector := []DocumentChunk{{}, {}}

	assert.False(t, doc.IsDegraded(withVector))
	assert.True(t, doc.IsDegraded(withoutVector))
	assert.False(t, doc.IsDegraded(nil))

	pending := &Document{Status: StatusPending}
	assert.False(t, pending.IsDegraded(withoutVector))
}

func TestOwnerScope_Validate(t *testing.T) {
	assert.NoError(t, OwnerScope{UserID: "u1"}.Validate())
	assert.ErrorIs(t, OwnerScope{}.Validate(), ErrInvalidInput)
}

func TestOwnerScope_CanRead(t *testing.T) {
	private := &Document{UserID: "alice"}
	shared := &Document{UserID: "alice", OrganizationID: "org-1"}

	owner := OwnerScope{UserID: "alice"}
	colleague := OwnerScope{UserID: "bob", OrganizationID: "org-1"}
	outsider := OwnerScope{UserID: "bob", OrganizationID: "org-2"}

	assert.True(t, owner.CanRead(private))
	assert.True(t, owner.CanRead(shared))
	assert.True(t, colleague.CanRead(shared))
	assert.False(t, colleague.CanRead(private))
	assert.False(t, outsider.CanRead(shared))
	assert.False(t, OwnerScope{UserID: "bob"}.CanRead(private))
}

func TestOwnerScope_CanModify(t *testing.T) {
	shared := &Document{UserID: "alice", OrganizationID: "org-1"}

	// Organization membership grants reads, never mutation.
	assert.True(t, OwnerScope{UserID: "alice"}.CanModify(shared))
	assert.False(t, OwnerScope{UserID: "bob", OrganizationID: "org-1"}.CanModify(shared))
}
