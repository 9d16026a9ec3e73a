// Package audit records the lifecycle and access history of consents. Entries
// are append-only: nothing in normal operation deletes or rewrites one.
package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	id "carevault/pkg/domain"
)

// Action labels what happened to a consent.
type Action string

const (
	ActionGrant  Action = "grant"
	ActionAccess Action = "access"
	ActionRevoke Action = "revoke"
)

// ActorType distinguishes the record owner from an anonymous grantee.
type ActorType string

const (
	ActorUser      ActorType = "user"      // owner acting through a session
	ActorRecipient ActorType = "recipient" // anonymous holder of a shareable token
)

// Entry is one immutable audit event. ActorID is best effort: the owner's
// user id for session actions, the client IP for anonymous access. Details is
// an opaque forensic payload and is never consulted by authorization logic.
type Entry struct {
	ID        uuid.UUID
	ConsentID id.ConsentID
	Action    Action
	ActorID   string
	ActorType ActorType
	Details   json.RawMessage
	Timestamp time.Time
}

// GrantDetails is the conventional Details payload for grant events.
type GrantDetails struct {
	Scopes       []string `json:"scopes"`
	DurationType string   `json:"duration_type"`
}
