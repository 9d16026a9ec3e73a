// Package domain holds the typed identifiers and closed enumerations shared
// across features. IDs wrap uuid.UUID so a ConsentID can never be passed where
// a UserID is expected; construct from external input via the Parse functions.
package domain

import (
	"github.com/google/uuid"

	dErrors "carevault/pkg/domain-errors"
)

// UserID identifies a record owner.
type UserID uuid.UUID

// ConsentID identifies a consent grant.
type ConsentID uuid.UUID

// DocumentID identifies a stored health document.
type DocumentID uuid.UUID

// NewUserID generates a random user identifier.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewConsentID generates a random consent identifier.
func NewConsentID() ConsentID { return ConsentID(uuid.New()) }

// NewDocumentID generates a random document identifier.
func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }

// parseUUID enforces the shared invariant: a valid, non-nil UUID.
func parseUUID(s, what string) (uuid.UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil || u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what)
	}
	return u, nil
}

// ParseUserID constructs a UserID from external input.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	if err != nil {
		return UserID{}, err
	}
	return UserID(u), nil
}

// ParseConsentID constructs a ConsentID from external input.
func ParseConsentID(s string) (ConsentID, error) {
	u, err := parseUUID(s, "consent id")
	if err != nil {
		return ConsentID{}, err
	}
	return ConsentID(u), nil
}

// ParseDocumentID constructs a DocumentID from external input.
func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parseUUID(s, "document id")
	if err != nil {
		return DocumentID{}, err
	}
	return DocumentID(u), nil
}

func (id UserID) String() string { return uuid.UUID(id).String() }
func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id ConsentID) String() string { return uuid.UUID(id).String() }
func (id ConsentID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id DocumentID) String() string { return uuid.UUID(id).String() }
func (id DocumentID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
