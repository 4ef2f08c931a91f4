package domain

import (
	"strings"

	dErrors "remitguard/pkg/domain-errors"
)

// ListType names an administrative counterparty list.
// Invariant: the value is one of BLACKLIST or WHITELIST.
type ListType string

const (
	ListBlacklist ListType = "BLACKLIST"
	ListWhitelist ListType = "WHITELIST"
)

// ParseListType constructs a ListType from external input. Matching is exact:
// the API only accepts the upper-case names.
func ParseListType(s string) (ListType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "list type cannot be empty")
	}
	lt := ListType(s)
	if !lt.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "list type must be BLACKLIST or WHITELIST")
	}
	return lt, nil
}

// IsValid reports whether lt is a supported list type.
func (lt ListType) IsValid() bool {
	return lt == ListBlacklist || lt == ListWhitelist
}

// StorageKey is the lower-case form persisted in the list_entries table.
func (lt ListType) StorageKey() string {
	return strings.ToLower(string(lt))
}

// ListTypeFromStorage maps a persisted list_type column back to a ListType.
func ListTypeFromStorage(s string) ListType {
	return ListType(strings.ToUpper(s))
}

func (lt ListType) String() string {
	return string(lt)
}
