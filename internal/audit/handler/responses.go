package handler

import (
	"remitguard/internal/audit"
	"remitguard/pkg/platform/httputil"
)

// EntryResponse is the JSON form of one audit entry.
type EntryResponse struct {
	ID                string   `json:"id"`
	DecisionID        string   `json:"decisionId"`
	RuleName          string   `json:"ruleName"`
	InputSnapshotHash string   `json:"inputSnapshotHash"`
	Outcome           string   `json:"outcome"`
	Reasons           []string `json:"reasons"`
	Timestamp         string   `json:"timestamp"`
}

// ListResponse is the body of GET /v1/audit.
type ListResponse struct {
	Entries []EntryResponse `json:"entries"`
}

// FromEntry converts a domain entry to its response form.
func FromEntry(e *audit.Entry) EntryResponse {
	reasons := e.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	return EntryResponse{
		ID:                e.ID.String(),
		DecisionID:        e.DecisionID.String(),
		RuleName:          e.RuleName,
		InputSnapshotHash: e.InputSnapshotHash,
		Outcome:           e.Outcome,
		Reasons:           reasons,
		Timestamp:         httputil.FormatTime(e.CreatedAt),
	}
}

// FromEntries converts a slice, never returning nil.
func FromEntries(entries []*audit.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, FromEntry(e))
	}
	return out
}
