package handler

import (
	"regexp"

	"remitguard/internal/decision"
	"remitguard/pkg/domain"
	dErrors "remitguard/pkg/domain-errors"
)

const (
	msgRequired    = "Required"
	msgInvalidUUID = "Invalid uuid"
)

var currencyPattern = regexp.MustCompile(`^[A-Za-z]{3}$`)

type CounterpartyRequest struct {
	ID          string  `json:"id"`
	Name        *string `json:"name,omitempty"`
	Country     *string `json:"country,omitempty"`
	Wallet      *string `json:"wallet,omitempty"`
	BankAccount *string `json:"bankAccount,omitempty"`
}

type AmountRequest struct {
	Value    *float64 `json:"value"`
	Currency string   `json:"currency"`
}

type CorridorRequest struct {
	FromCountry *string `json:"fromCountry"`
	ToCountry   *string `json:"toCountry"`
}

type MetadataRequest struct {
	Purpose   *string `json:"purpose,omitempty"`
	Reference *string `json:"reference,omitempty"`
}

// PrecheckRequest is the body of POST /v1/precheck.
type PrecheckRequest struct {
	Sender   *CounterpartyRequest `json:"sender"`
	Receiver *CounterpartyRequest `json:"receiver"`
	Amount   *AmountRequest       `json:"amount"`
	Corridor *CorridorRequest     `json:"corridor"`
	Metadata *MetadataRequest     `json:"metadata,omitempty"`
}

// Validate implements httputil.Validatable.
func (r *PrecheckRequest) Validate() error {
	var verr dErrors.ValidationError

	validateCounterparty(&verr, "sender", r.Sender)
	validateCounterparty(&verr, "receiver", r.Receiver)

	switch {
	case r.Amount == nil:
		verr.Add("amount", msgRequired)
	default:
		if r.Amount.Value == nil {
			verr.Add("amount.value", msgRequired)
		} else if *r.Amount.Value < 0 {
			verr.Add("amount.value", "Number must be greater than or equal to 0")
		}
		if len(r.Amount.Currency) != 3 {
			verr.Add("amount.currency", "String must contain exactly 3 character(s)")
		} else if !currencyPattern.MatchString(r.Amount.Currency) {
			verr.Add("amount.currency", "Currency must be a 3-letter code")
		}
	}

	switch {
	case r.Corridor == nil:
		verr.Add("corridor", msgRequired)
	default:
		if r.Corridor.FromCountry == nil {
			verr.Add("corridor.fromCountry", msgRequired)
		}
		if r.Corridor.ToCountry == nil {
			verr.Add("corridor.toCountry", msgRequired)
		}
	}

	return verr.Err()
}

func validateCounterparty(verr *dErrors.ValidationError, field string, c *CounterpartyRequest) {
	if c == nil {
		verr.Add(field, msgRequired)
		return
	}
	if _, err := domain.ParseUUID(c.ID, field+".id"); err != nil {
		verr.Add(field+".id", msgInvalidUUID)
	}
}

// ToInput converts a validated request. Currency keeps the caller's case;
// rules compare case-insensitively.
func (r *PrecheckRequest) ToInput() decision.PrecheckInput {
	input := decision.PrecheckInput{
		Sender:   toCounterparty(r.Sender),
		Receiver: toCounterparty(r.Receiver),
		Amount: decision.Amount{
			Value:    *r.Amount.Value,
			Currency: r.Amount.Currency,
		},
		Corridor: decision.Corridor{
			FromCountry: *r.Corridor.FromCountry,
			ToCountry:   *r.Corridor.ToCountry,
		},
	}
	if r.Metadata != nil {
		input.Metadata = &decision.Metadata{
			Purpose:   r.Metadata.Purpose,
			Reference: r.Metadata.Reference,
		}
	}
	return input
}

func toCounterparty(c *CounterpartyRequest) decision.Counterparty {
	return decision.Counterparty{
		ID:          c.ID,
		Name:        c.Name,
		Country:     c.Country,
		Wallet:      c.Wallet,
		BankAccount: c.BankAccount,
	}
}

// VerifyTokenRequest is the body of POST /v1/verify-decision-token.
type VerifyTokenRequest struct {
	Token string `json:"token"`
}

// Validate implements httputil.Validatable.
func (r *VerifyTokenRequest) Validate() error {
	var verr dErrors.ValidationError
	if r.Token == "" {
		verr.Add("token", "String must contain at least 1 character(s)")
	}
	return verr.Err()
}

// ParseDecisionIDParam validates the {id} path parameter.
func ParseDecisionIDParam(raw string) (domain.DecisionID, error) {
	id, err := domain.ParseDecisionID(raw)
	if err != nil {
		var verr dErrors.ValidationError
		verr.Add("id", msgInvalidUUID)
		return domain.DecisionID{}, &verr
	}
	return id, nil
}
