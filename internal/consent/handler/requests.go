package handler

import (
	"encoding/json"
	"time"

	"carevault/internal/audit"
	"carevault/internal/consent"
	"carevault/internal/consent/service"
	id "carevault/pkg/domain"
	pstrings "carevault/pkg/platform/strings"
)

// createConsentRequest is the owner-facing creation body. The owner identity
// comes from the session, never from here.
type createConsentRequest struct {
	RecipientName    string     `json:"recipient_name"`
	RecipientRole    string     `json:"recipient_role"`
	Scopes           []string   `json:"scopes"`
	DurationType     string     `json:"duration_type"`
	CustomExpiryDate *time.Time `json:"custom_expiry_date,omitempty"`
	Purpose          string     `json:"purpose"`
}

func (r createConsentRequest) toParams(ownerID id.UserID) (service.CreateParams, error) {
	role, err := id.ParseRecipientRole(r.RecipientRole)
	if err != nil {
		return service.CreateParams{}, err
	}
	scopes, err := id.ParseScopes(pstrings.DedupeAndTrim(r.Scopes))
	if err != nil {
		return service.CreateParams{}, err
	}
	duration, err := id.ParseDurationType(r.DurationType)
	if err != nil {
		return service.CreateParams{}, err
	}
	return service.CreateParams{
		OwnerID:          ownerID,
		RecipientName:    r.RecipientName,
		RecipientRole:    role,
		Scopes:           scopes,
		DurationType:     duration,
		CustomExpiryDate: r.CustomExpiryDate,
		Purpose:          r.Purpose,
	}, nil
}

type consentResponse struct {
	ID             string     `json:"id"`
	RecipientName  string     `json:"recipient_name"`
	RecipientRole  string     `json:"recipient_role"`
	Scopes         []string   `json:"scopes"`
	DurationType   string     `json:"duration_type"`
	Purpose        string     `json:"purpose"`
	Status         string     `json:"status"`
	ShareableToken string     `json:"shareable_token"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      time.Time  `json:"expires_at"`
	RevokedAt      *time.Time `json:"revoked_at,omitempty"`
}

func toConsentResponse(c *consent.Consent) consentResponse {
	scopes := make([]string, len(c.Scopes))
	for i, sc := range c.Scopes {
		scopes[i] = sc.String()
	}
	return consentResponse{
		ID:             c.ID.String(),
		RecipientName:  c.RecipientName,
		RecipientRole:  c.RecipientRole.String(),
		Scopes:         scopes,
		DurationType:   c.DurationType.String(),
		Purpose:        c.Purpose,
		Status:         string(c.Status),
		ShareableToken: c.ShareableToken,
		CreatedAt:      c.CreatedAt,
		ExpiresAt:      c.ExpiresAt,
		RevokedAt:      c.RevokedAt,
	}
}

type auditEntryResponse struct {
	ID        string          `json:"id"`
	ConsentID string          `json:"consent_id"`
	Action    string          `json:"action"`
	ActorID   string          `json:"actor_id"`
	ActorType string          `json:"actor_type"`
	Details   json.RawMessage `json:"details"`
	Timestamp time.Time       `json:"timestamp"`
}

func toAuditResponse(entries []audit.Entry) []auditEntryResponse {
	out := make([]auditEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = auditEntryResponse{
			ID:        e.ID.String(),
			ConsentID: e.ConsentID.String(),
			Action:    string(e.Action),
			ActorID:   e.ActorID,
			ActorType: string(e.ActorType),
			Details:   e.Details,
			Timestamp: e.Timestamp,
		}
	}
	return out
}

type qrResponse struct {
	ShareableURL string `json:"shareable_url"`
	QRCode       string `json:"qr_code"`
}
