package audit

import (
	"encoding/json"
	"time"

	"remitguard/pkg/domain"
)

// Entry is one rule outcome recorded for one decision. Entries are
// append-only: nothing updates or deletes them once written.
type Entry struct {
	ID                domain.AuditEntryID
	DecisionID        domain.DecisionID
	Seq               int // position in evaluation order
	RuleName          string
	InputSnapshotHash string
	Outcome           string
	Reasons           []string
	Type              string // "rule:<ruleName>"
	Payload           json.RawMessage
	CreatedAt         time.Time
}

// Filter narrows an audit query. Nil fields are unconstrained.
type Filter struct {
	DecisionID *domain.DecisionID
	From       *time.Time
	To         *time.Time
}

// Matches reports whether e satisfies f. From and To are inclusive.
func (f Filter) Matches(e *Entry) bool {
	if f.DecisionID != nil && e.DecisionID != *f.DecisionID {
		return false
	}
	if f.From != nil && e.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && e.CreatedAt.After(*f.To) {
		return false
	}
	return true
}

// Event is emitted after a decision is committed so downstream consumers can
// follow decisions without polling storage. Keep it transport-agnostic.
type Event struct {
	Action            string    `json:"action"`
	Timestamp         time.Time `json:"timestamp"`
	DecisionID        string    `json:"decisionId"`
	Status            string    `json:"status"`
	Reasons           []string  `json:"reasons"`
	SenderID          string    `json:"senderId"`
	ReceiverID        string    `json:"receiverId"`
	Amount            float64   `json:"amount"`
	Currency          string    `json:"currency"`
	InputSnapshotHash string    `json:"inputSnapshotHash"`
	RequestID         string    `json:"requestId,omitempty"`
	ClientIP          string    `json:"clientIp,omitempty"`
	Client            string    `json:"client,omitempty"`
}

// EventDecisionMade is the action of events emitted for new decisions.
const EventDecisionMade = "decision_made"
