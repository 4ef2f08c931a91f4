package handler

import (
	"remitguard/internal/lists/models"
	"remitguard/pkg/platform/httputil"
)

// EntryResponse is the JSON form of a list entry.
type EntryResponse struct {
	ID             string  `json:"id"`
	Type           string  `json:"type"`
	CounterpartyID string  `json:"counterpartyId"`
	Reason         *string `json:"reason"`
	Scope          *string `json:"scope"`
	CreatedAt      string  `json:"createdAt"`
}

// ListResponse is the body of GET /v1/lists/entries.
type ListResponse struct {
	Entries []EntryResponse `json:"entries"`
}

func FromEntry(e *models.Entry) EntryResponse {
	return EntryResponse{
		ID:             e.ID.String(),
		Type:           e.ListType.String(),
		CounterpartyID: e.Address,
		Reason:         e.Reason,
		Scope:          e.Scope,
		CreatedAt:      httputil.FormatTime(e.CreatedAt),
	}
}

func FromEntries(entries []*models.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, FromEntry(e))
	}
	return out
}
