package handler

import (
	"time"

	"carevault/internal/document"
	"carevault/internal/share"
)

type summaryResponse struct {
	RecipientName string    `json:"recipient_name"`
	RecipientRole string    `json:"recipient_role"`
	Scopes        []string  `json:"scopes"`
	Purpose       string    `json:"purpose"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

func toSummaryResponse(s *share.ConsentSummary) summaryResponse {
	scopes := make([]string, len(s.Scopes))
	for i, sc := range s.Scopes {
		scopes[i] = sc.String()
	}
	return summaryResponse{
		RecipientName: s.RecipientName,
		RecipientRole: s.RecipientRole.String(),
		Scopes:        scopes,
		Purpose:       s.Purpose,
		CreatedAt:     s.CreatedAt,
		ExpiresAt:     s.ExpiresAt,
	}
}

type documentResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Category     string    `json:"category"`
	Provider     string    `json:"provider"`
	DocumentDate time.Time `json:"document_date"`
	FileType     string    `json:"file_type"`
}

func toDocumentsResponse(summaries []document.Summary) map[string]any {
	out := make([]documentResponse, len(summaries))
	for i, s := range summaries {
		out[i] = documentResponse{
			ID:           s.ID.String(),
			Title:        s.Title,
			Category:     s.Category,
			Provider:     s.Provider,
			DocumentDate: s.DocumentDate,
			FileType:     s.FileType,
		}
	}
	return map[string]any{"documents": out}
}

type fileResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

func toFileResponse(g *share.FileGrant) fileResponse {
	return fileResponse{
		URL:       g.Locator.URL,
		ExpiresIn: int(g.Locator.ExpiresIn.Seconds()),
	}
}

// goneResponse is the 410 body for expired or revoked links. Timestamp is
// when access ended.
type goneResponse struct {
	Error     string    `json:"error"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
