package decision

import (
	"strconv"
	"time"

	"remitguard/pkg/domain"
	dErrors "remitguard/pkg/domain-errors"
)

// Status is the outcome of a single rule and of the aggregated decision.
type Status string

const (
	StatusAllow  Status = "ALLOW"
	StatusReview Status = "REVIEW"
	StatusBlock  Status = "BLOCK"
)

// Severity orders statuses: BLOCK > REVIEW > ALLOW.
func (s Status) Severity() int {
	switch s {
	case StatusBlock:
		return 2
	case StatusReview:
		return 1
	default:
		return 0
	}
}

// IsValid reports whether s is one of the three known statuses.
func (s Status) IsValid() bool {
	return s == StatusAllow || s == StatusReview || s == StatusBlock
}

// ParseListAction validates a configured non-ALLOW action.
func ParseListAction(s string) (Status, error) {
	switch Status(s) {
	case StatusReview, StatusBlock:
		return Status(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "action must be REVIEW or BLOCK")
	}
}

// Counterparty is one side of a transfer.
// Optional fields are pointers so an explicit "" stays part of the snapshot
// and hashes differently from an absent field.
type Counterparty struct {
	ID          string  `json:"id"`
	Name        *string `json:"name,omitempty"`
	Country     *string `json:"country,omitempty"`
	Wallet      *string `json:"wallet,omitempty"`
	BankAccount *string `json:"bankAccount,omitempty"`
}

// WalletAddress returns the wallet, or "" when none was supplied.
func (c Counterparty) WalletAddress() string {
	if c.Wallet == nil {
		return ""
	}
	return *c.Wallet
}

// Amount is a non-negative value in a 3-letter currency.
type Amount struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

// Corridor is the origin/destination country pair of a transfer.
type Corridor struct {
	FromCountry string `json:"fromCountry"`
	ToCountry   string `json:"toCountry"`
}

// Metadata carries free-text context supplied by the caller.
type Metadata struct {
	Purpose   *string `json:"purpose,omitempty"`
	Reference *string `json:"reference,omitempty"`
}

// PrecheckInput is the validated transfer under evaluation. Its JSON form is
// what the snapshot hash is computed over: absent optional fields are omitted,
// supplied ones are kept even when empty.
type PrecheckInput struct {
	Sender   Counterparty `json:"sender"`
	Receiver Counterparty `json:"receiver"`
	Amount   Amount       `json:"amount"`
	Corridor Corridor     `json:"corridor"`
	Metadata *Metadata    `json:"metadata,omitempty"`
}

// RuleResult is one rule's outcome for one evaluation.
type RuleResult struct {
	RuleName string
	Outcome  Status
	Reason   string
}

// Decision is the aggregate of all rule results for one evaluation.
type Decision struct {
	Status  Status
	Reasons []string
}

// Record is a persisted decision together with the inputs that identify it.
type Record struct {
	ID                domain.DecisionID
	Status            Status
	Reasons           []string
	Sender            string
	Receiver          string
	Amount            string
	Currency          string
	InputSnapshotHash string
	CreatedAt         time.Time
}

// PrecheckResult is returned to callers after a successful precheck.
type PrecheckResult struct {
	DecisionID          domain.DecisionID
	Status              Status
	Reasons             []string
	SignedDecisionToken string
	IssuedAt            time.Time
}

// TokenCheck is the advisory comparison of a verified token against storage.
type TokenCheck struct {
	Found       bool
	StatusMatch bool
	DBStatus    *Status
}

// VerifyResult is the outcome of a successful token verification.
type VerifyResult struct {
	Claims  TokenClaims
	DBCheck TokenCheck
}

// TokenClaims are the decision fields attested by a token.
type TokenClaims struct {
	DecisionID string
	Status     Status
	SenderID   string
	ReceiverID string
	Amount     float64
	Currency   string
	IssuedAt   time.Time
}

// FormatNumber renders a float the way a JSON number prints: no exponent for
// ordinary amounts and no trailing ".0" for integral values.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
