package lists

import (
	"context"

	"github.com/google/uuid"

	"github.com/shaunplee/superlists/internal/models"
)

// ItemSummary is the read-API projection of an item.
type ItemSummary struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Text string    `json:"text" db:"text"`
}

// Store is the persistence boundary for lists and items. Implementations
// translate storage-level failures into the package's sentinel errors:
// ErrListNotFound for missing lists, ErrDuplicateItem for a (list, text)
// collision. Duplicate detection must be a storage-level constraint so that
// racing writers are arbitrated atomically, not checked-then-inserted.
type Store interface {
	// CreateList persists a list and its first item atomically; a failure
	// on the item must not leave an orphaned list behind.
	CreateList(ctx context.Context, list *models.List, first *models.Item) error

	// GetList loads a list with its share set and its items in insertion
	// order.
	GetList(ctx context.Context, id uuid.UUID) (models.List, error)

	// InsertItem appends one item to an existing list.
	InsertItem(ctx context.Context, item *models.Item) error

	// ListItems returns the read-API projection of a list's items in
	// insertion order.
	ListItems(ctx context.Context, listID uuid.UUID) ([]ItemSummary, error)

	// ListsOwnedBy returns the lists owned by the given email, items
	// loaded, oldest list first.
	ListsOwnedBy(ctx context.Context, email string) ([]models.List, error)

	// GetUser looks up a registered user by lowercased email.
	GetUser(ctx context.Context, email string) (models.User, error)

	// AddShare adds the user to the list's share set. Adding an existing
	// member is a no-op.
	AddShare(ctx context.Context, listID uuid.UUID, email string) error
}
