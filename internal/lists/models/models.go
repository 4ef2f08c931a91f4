package models

import (
	"time"

	"remitguard/pkg/domain"
)

// Entry is an administrative list record for one counterparty identifier.
// Invariant: (ListType, Address) is unique; entries never expire on their own.
type Entry struct {
	ID        domain.ListEntryID
	ListType  domain.ListType
	Address   string
	Reason    *string
	Scope     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Key identifies an entry by its natural key.
func (e *Entry) Key() string {
	return Key(e.ListType, e.Address)
}

// Key builds the natural key used by caches and in-memory stores.
func Key(listType domain.ListType, address string) string {
	return listType.StorageKey() + ":" + address
}
