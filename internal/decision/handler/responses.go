package handler

import (
	"encoding/json"

	"remitguard/internal/audit"
	"remitguard/internal/decision"
	"remitguard/pkg/platform/httputil"
)

type PrecheckResponse struct {
	DecisionID          string   `json:"decisionId"`
	Status              string   `json:"status"`
	Reasons             []string `json:"reasons"`
	SignedDecisionToken string   `json:"signedDecisionToken"`
	IssuedAt            string   `json:"issuedAt"`
}

type DecodedToken struct {
	DecisionID string  `json:"decisionId"`
	Status     string  `json:"status"`
	SenderID   string  `json:"senderId"`
	ReceiverID string  `json:"receiverId"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	IssuedAt   string  `json:"issuedAt"`
}

type DBCheck struct {
	Found       bool    `json:"found"`
	StatusMatch bool    `json:"statusMatch"`
	DBStatus    *string `json:"dbStatus"`
}

type VerifyResponse struct {
	Valid   bool         `json:"valid"`
	Decoded DecodedToken `json:"decoded"`
	DBCheck DBCheck      `json:"dbCheck"`
}

type InvalidTokenResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error"`
}

type DecisionBody struct {
	ID                string   `json:"id"`
	Status            string   `json:"status"`
	Reasons           []string `json:"reasons"`
	Sender            string   `json:"sender"`
	Receiver          string   `json:"receiver"`
	Amount            string   `json:"amount"`
	Currency          string   `json:"currency"`
	InputSnapshotHash string   `json:"inputSnapshotHash"`
	CreatedAt         string   `json:"createdAt"`
}

type AuditLogBody struct {
	ID                string          `json:"id"`
	DecisionID        string          `json:"decisionId"`
	RuleName          string          `json:"ruleName"`
	InputSnapshotHash string          `json:"inputSnapshotHash"`
	Outcome           string          `json:"outcome"`
	Reasons           []string        `json:"reasons"`
	Type              string          `json:"type"`
	Payload           json.RawMessage `json:"payload,omitempty"`
	Timestamp         string          `json:"timestamp"`
}

type DecisionResponse struct {
	Decision  DecisionBody   `json:"decision"`
	AuditLogs []AuditLogBody `json:"auditLogs"`
}

type NotFoundResponse struct {
	Error string `json:"error"`
	ID    string `json:"id"`
}

func FromPrecheckResult(r *decision.PrecheckResult) PrecheckResponse {
	return PrecheckResponse{
		DecisionID:          r.DecisionID.String(),
		Status:              string(r.Status),
		Reasons:             nonNil(r.Reasons),
		SignedDecisionToken: r.SignedDecisionToken,
		IssuedAt:            httputil.FormatTime(r.IssuedAt),
	}
}

func FromVerifyResult(r *decision.VerifyResult) VerifyResponse {
	resp := VerifyResponse{
		Valid: true,
		Decoded: DecodedToken{
			DecisionID: r.Claims.DecisionID,
			Status:     string(r.Claims.Status),
			SenderID:   r.Claims.SenderID,
			ReceiverID: r.Claims.ReceiverID,
			Amount:     r.Claims.Amount,
			Currency:   r.Claims.Currency,
			IssuedAt:   httputil.FormatTime(r.Claims.IssuedAt),
		},
		DBCheck: DBCheck{
			Found:       r.DBCheck.Found,
			StatusMatch: r.DBCheck.StatusMatch,
		},
	}
	if r.DBCheck.DBStatus != nil {
		status := string(*r.DBCheck.DBStatus)
		resp.DBCheck.DBStatus = &status
	}
	return resp
}

func FromDecision(record *decision.Record, entries []*audit.Entry) DecisionResponse {
	logs := make([]AuditLogBody, 0, len(entries))
	for _, e := range entries {
		logs = append(logs, AuditLogBody{
			ID:                e.ID.String(),
			DecisionID:        e.DecisionID.String(),
			RuleName:          e.RuleName,
			InputSnapshotHash: e.InputSnapshotHash,
			Outcome:           e.Outcome,
			Reasons:           nonNil(e.Reasons),
			Type:              e.Type,
			Payload:           e.Payload,
			Timestamp:         httputil.FormatTime(e.CreatedAt),
		})
	}
	return DecisionResponse{
		Decision: DecisionBody{
			ID:                record.ID.String(),
			Status:            string(record.Status),
			Reasons:           nonNil(record.Reasons),
			Sender:            record.Sender,
			Receiver:          record.Receiver,
			Amount:            record.Amount,
			Currency:          record.Currency,
			InputSnapshotHash: record.InputSnapshotHash,
			CreatedAt:         httputil.FormatTime(record.CreatedAt),
		},
		AuditLogs: logs,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
