package handler

import (
	"net/url"

	"remitguard/internal/lists"
	"remitguard/pkg/domain"
	dErrors "remitguard/pkg/domain-errors"
)

// UpsertEntryRequest is the body of POST /v1/lists/entries.
type UpsertEntryRequest struct {
	Type           string  `json:"type"`
	CounterpartyID string  `json:"counterpartyId"`
	Reason         *string `json:"reason,omitempty"`
	Scope          *string `json:"scope,omitempty"`

	parsedType domain.ListType
}

// Validate implements httputil.Validatable.
func (r *UpsertEntryRequest) Validate() error {
	var verr dErrors.ValidationError

	lt, err := domain.ParseListType(r.Type)
	if err != nil {
		verr.Add("type", "Invalid enum value. Expected 'BLACKLIST' | 'WHITELIST'")
	} else {
		r.parsedType = lt
	}

	if _, err := domain.ParseUUID(r.CounterpartyID, "counterpartyId"); err != nil {
		verr.Add("counterpartyId", "Invalid uuid")
	}

	return verr.Err()
}

// ToServiceRequest converts a validated request.
func (r *UpsertEntryRequest) ToServiceRequest() lists.UpsertRequest {
	return lists.UpsertRequest{
		ListType: r.parsedType,
		Address:  r.CounterpartyID,
		Reason:   r.Reason,
		Scope:    r.Scope,
	}
}

// ParseListQuery validates the optional ?type= filter.
func ParseListQuery(q url.Values) (*domain.ListType, error) {
	raw := q.Get("type")
	if raw == "" {
		return nil, nil
	}
	lt, err := domain.ParseListType(raw)
	if err != nil {
		var verr dErrors.ValidationError
		verr.Add("type", "Invalid enum value. Expected 'BLACKLIST' | 'WHITELIST'")
		return nil, &verr
	}
	return &lt, nil
}
