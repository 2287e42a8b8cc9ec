package domain

// OwnerScope is the identity a caller acts under. It is supplied by the
// surrounding application (session validation is outside this core) and
// determines which documents are visible and mutable.
type OwnerScope struct {
	// UserID identifies the calling user. Required.
	UserID string

	// OrganizationID is the caller's organization, if any. Grants read
	// access to documents shared with that organization.
	OrganizationID string
}

// Validate checks the scope carries a user identity.
func (s OwnerScope) Validate() error {
	if s.UserID == "" {
		return ErrInvalidInput
	}
	return nil
}

// CanRead reports whether the scope may read the document: the caller owns
// it, or the document is shared with the caller's organization.
func (s OwnerScope) CanRead(doc *Document) bool {
	if doc.UserID == s.UserID {
		return true
	}
	return doc.OrganizationID != "" && doc.OrganizationID == s.OrganizationID
}

// CanModify reports whether the scope may mutate the document.
// Reprocess and delete require sole ownership: organization members who are
// not the uploader may read shared documents but not change them.
func (s OwnerScope) CanModify(doc *Document) bool {
	return doc.UserID == s.UserID
}
