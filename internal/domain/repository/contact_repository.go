package repository

import (
	"context"

	"github.com/wekeepgrowing/paylink-sync/internal/domain/entity"
)

// ContactRepository reads and patches contacts in the remote table.
type ContactRepository interface {
	// FetchEligibleContacts returns eligible contacts in store order.
	FetchEligibleContacts(ctx context.Context) ([]entity.Contact, error)
	// UpdateContact merges update into the record identified by id.
	UpdateContact(ctx context.Context, id string, update entity.ContactUpdate) error
}
