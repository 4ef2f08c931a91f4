package domain

import (
	"github.com/google/uuid"

	dErrors "remitguard/pkg/domain-errors"
)

// Typed identifiers keep decision, audit and list IDs from being mixed up at
// compile time. Construct them with the Parse functions at trust boundaries.
type (
	DecisionID   uuid.UUID
	AuditEntryID uuid.UUID
	ListEntryID  uuid.UUID
)

func (id DecisionID) String() string   { return uuid.UUID(id).String() }
func (id AuditEntryID) String() string { return uuid.UUID(id).String() }
func (id ListEntryID) String() string  { return uuid.UUID(id).String() }

// IsNil reports whether the decision ID is the zero UUID.
func (id DecisionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// NewDecisionID returns a random decision ID.
func NewDecisionID() DecisionID { return DecisionID(uuid.New()) }

// NewAuditEntryID returns a random audit entry ID.
func NewAuditEntryID() AuditEntryID { return AuditEntryID(uuid.New()) }

// NewListEntryID returns a random list entry ID.
func NewListEntryID() ListEntryID { return ListEntryID(uuid.New()) }

// ParseDecisionID parses a non-nil UUID.
func ParseDecisionID(s string) (DecisionID, error) {
	u, err := parseUUID(s, "decision id")
	return DecisionID(u), err
}

// ParseUUID validates a counterparty or other external UUID string.
func ParseUUID(s, field string) (uuid.UUID, error) {
	return parseUUID(s, field)
}

func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+field)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be nil")
	}
	return u, nil
}
