package handler

import (
	"net/url"

	"remitguard/internal/audit"
	"remitguard/pkg/domain"
	dErrors "remitguard/pkg/domain-errors"
	"remitguard/pkg/platform/httputil"
)

// ParseQuery validates the audit query string into a filter.
func ParseQuery(q url.Values) (audit.Filter, error) {
	var (
		filter audit.Filter
		verr   dErrors.ValidationError
	)

	if raw := q.Get("decisionId"); raw != "" {
		id, err := domain.ParseDecisionID(raw)
		if err != nil {
			verr.Add("decisionId", "Invalid uuid")
		} else {
			filter.DecisionID = &id
		}
	}
	if raw := q.Get("from"); raw != "" {
		t, err := httputil.ParseTime(raw)
		if err != nil {
			verr.Add("from", "Invalid date")
		} else {
			filter.From = &t
		}
	}
	if raw := q.Get("to"); raw != "" {
		t, err := httputil.ParseTime(raw)
		if err != nil {
			verr.Add("to", "Invalid date")
		} else {
			filter.To = &t
		}
	}

	if err := verr.Err(); err != nil {
		return audit.Filter{}, err
	}
	return filter, nil
}
