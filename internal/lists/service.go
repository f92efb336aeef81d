package lists

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shaunplee/superlists/internal/models"
)

const (
	listCreatedTopic = "superlists.lists.created"
	itemAddedTopic   = "superlists.items.added"
	listSharedTopic  = "superlists.lists.shared"
)

// Publisher emits domain events. Publishing is fire-and-forget: failures are
// logged, never surfaced to the request.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// Service owns the list/item domain logic: validation, derived names, and
// sharing. Access control is the caller's job (MayAppend); the service
// persists whatever it is asked to.
type Service struct {
	store  Store
	events Publisher
	log    zerolog.Logger
}

// NewService wires a Service over the given store. events may be nil.
func NewService(store Store, events Publisher, log zerolog.Logger) *Service {
	return &Service{store: store, events: events, log: log}
}

// CreateList creates a list holding a single item with the given text,
// optionally owned by the requesting identity. The list and item are
// persisted atomically. Rejects blank text with ErrEmptyItem.
func (s *Service) CreateList(ctx context.Context, firstItemText string, owner Identity) (models.List, error) {
	text := strings.TrimSpace(firstItemText)
	if text == "" {
		return models.List{}, ErrEmptyItem
	}

	list := models.List{ID: uuid.New()}
	if !owner.IsAnonymous() {
		email := owner.Email
		list.OwnerEmail = &email
	}
	first := models.Item{ID: uuid.New(), Text: text}

	if err := s.store.CreateList(ctx, &list, &first); err != nil {
		return models.List{}, err
	}
	list.Items = []models.Item{first}

	s.publish(ctx, listCreatedTopic, map[string]any{
		"list_id": list.ID,
		"owner":   owner.Email,
	})
	return list, nil
}

// AddItem appends an item to an existing list. Rejects blank text with
// ErrEmptyItem and duplicate text with ErrDuplicateItem; the duplicate check
// is the database constraint, so concurrent identical appends resolve to one
// winner.
func (s *Service) AddItem(ctx context.Context, listID uuid.UUID, text string) (models.Item, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return models.Item{}, ErrEmptyItem
	}

	item := models.Item{ID: uuid.New(), ListID: listID, Text: trimmed}
	if err := s.store.InsertItem(ctx, &item); err != nil {
		return models.Item{}, err
	}

	s.publish(ctx, itemAddedTopic, map[string]any{
		"list_id": listID,
		"item_id": item.ID,
	})
	return item, nil
}

// GetList loads a list with its items and share set.
func (s *Service) GetList(ctx context.Context, id uuid.UUID) (models.List, error) {
	return s.store.GetList(ctx, id)
}

// Items returns the read-API projection of a list's items in insertion
// order. The list must exist; callers resolve it first.
func (s *Service) Items(ctx context.Context, listID uuid.UUID) ([]ItemSummary, error) {
	return s.store.ListItems(ctx, listID)
}

// ListsOwnedBy returns the lists owned by the user registered under the
// given email, or ErrUserNotFound.
func (s *Service) ListsOwnedBy(ctx context.Context, email string) ([]models.List, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if _, err := s.store.GetUser(ctx, normalized); err != nil {
		return nil, err
	}
	return s.store.ListsOwnedBy(ctx, normalized)
}

// Share grants shareeEmail append access to the list. The sharee must be a
// registered user; an unknown email yields a UserNotFoundError carrying the
// input for display and leaves the share set unchanged. Re-sharing an
// existing member is a no-op. The requesting identity is threaded through for
// event attribution; share rights are deliberately not restricted to the
// owner (kept as the reference system behaves).
func (s *Service) Share(ctx context.Context, listID uuid.UUID, requester Identity, shareeEmail string) error {
	if _, err := s.store.GetList(ctx, listID); err != nil {
		return err
	}

	normalized := strings.ToLower(strings.TrimSpace(shareeEmail))
	sharee, err := s.store.GetUser(ctx, normalized)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return &UserNotFoundError{Email: shareeEmail}
		}
		return err
	}

	if err := s.store.AddShare(ctx, listID, sharee.Email); err != nil {
		return err
	}

	s.publish(ctx, listSharedTopic, map[string]any{
		"list_id":   listID,
		"sharee":    sharee.Email,
		"shared_by": requester.Email,
	})
	return nil
}

func (s *Service) publish(ctx context.Context, subject string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, subject, payload); err != nil {
		s.log.Debug().Err(err).Str("subject", subject).Msg("publish event")
	}
}
