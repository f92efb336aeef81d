package lists

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shaunplee/superlists/internal/models"
)

// memStore is an in-memory Store used to exercise the service without
// postgres. It honours the same contracts the gorm store gets from the
// database: atomic list+item creation, unique (list, text), sentinel errors.
type memStore struct {
	mu    sync.Mutex
	lists map[uuid.UUID]*models.List
	users map[string]models.User
	seq   int64
}

func newMemStore() *memStore {
	return &memStore{
		lists: make(map[uuid.UUID]*models.List),
		users: make(map[string]models.User),
	}
}

func (s *memStore) addUser(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = models.User{Email: email}
}

func (s *memStore) CreateList(_ context.Context, list *models.List, first *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *list
	s.seq++
	first.ListID = list.ID
	first.Seq = s.seq
	stored.Items = []models.Item{*first}
	s.lists[list.ID] = &stored
	return nil
}

func (s *memStore) GetList(_ context.Context, id uuid.UUID) (models.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.lists[id]
	if !ok {
		return models.List{}, ErrListNotFound
	}
	return *list, nil
}

func (s *memStore) InsertItem(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.lists[item.ListID]
	if !ok {
		return ErrListNotFound
	}
	for _, existing := range list.Items {
		if existing.Text == item.Text {
			return ErrDuplicateItem
		}
	}
	s.seq++
	item.Seq = s.seq
	list.Items = append(list.Items, *item)
	return nil
}

func (s *memStore) ListItems(_ context.Context, listID uuid.UUID) ([]ItemSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.lists[listID]
	if !ok {
		return nil, ErrListNotFound
	}
	summaries := []ItemSummary{}
	for _, item := range list.Items {
		summaries = append(summaries, ItemSummary{ID: item.ID, Text: item.Text})
	}
	return summaries, nil
}

func (s *memStore) ListsOwnedBy(_ context.Context, email string) ([]models.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var owned []models.List
	for _, list := range s.lists {
		if list.OwnerEmail != nil && *list.OwnerEmail == email {
			owned = append(owned, *list)
		}
	}
	return owned, nil
}

func (s *memStore) GetUser(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[email]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

func (s *memStore) AddShare(_ context.Context, listID uuid.UUID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.lists[listID]
	if !ok {
		return ErrListNotFound
	}
	for _, u := range list.SharedWith {
		if u.Email == email {
			return nil
		}
	}
	list.SharedWith = append(list.SharedWith, models.User{Email: email})
	return nil
}

func newTestService(store Store) *Service {
	return NewService(store, nil, zerolog.Nop())
}

func TestCreateListHoldsFirstItem(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	list, err := svc.CreateList(context.Background(), "Buy milk", Anonymous)
	if err != nil {
		t.Fatalf("CreateList() error = %v", err)
	}
	if got := list.Name(); got != "Buy milk" {
		t.Fatalf("Name() = %q, want %q", got, "Buy milk")
	}
	if list.OwnerEmail != nil {
		t.Fatalf("OwnerEmail = %q, want nil", *list.OwnerEmail)
	}

	stored, err := svc.GetList(context.Background(), list.ID)
	if err != nil {
		t.Fatalf("GetList() error = %v", err)
	}
	if len(stored.Items) != 1 || stored.Items[0].Text != "Buy milk" {
		t.Fatalf("stored items = %+v, want a single %q item", stored.Items, "Buy milk")
	}
}

func TestCreateListRecordsOwner(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	list, err := svc.CreateList(context.Background(), "Owned item", IdentityFor("a@b.com"))
	if err != nil {
		t.Fatalf("CreateList() error = %v", err)
	}
	if list.OwnerEmail == nil || *list.OwnerEmail != "a@b.com" {
		t.Fatalf("OwnerEmail = %v, want a@b.com", list.OwnerEmail)
	}
}

func TestCreateListRejectsBlankText(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "spaces", text: "   "},
		{name: "tabs and newlines", text: "\t\n "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			svc := newTestService(store)

			_, err := svc.CreateList(context.Background(), tt.text, Anonymous)
			if !errors.Is(err, ErrEmptyItem) {
				t.Fatalf("CreateList(%q) error = %v, want ErrEmptyItem", tt.text, err)
			}
			if len(store.lists) != 0 {
				t.Fatalf("store holds %d lists, want none", len(store.lists))
			}
		})
	}
}

func TestAddItemRejectsBlankText(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	list, _ := svc.CreateList(context.Background(), "Buy milk", Anonymous)

	_, err := svc.AddItem(context.Background(), list.ID, "  ")
	if !errors.Is(err, ErrEmptyItem) {
		t.Fatalf("AddItem() error = %v, want ErrEmptyItem", err)
	}

	stored, _ := svc.GetList(context.Background(), list.ID)
	if len(stored.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(stored.Items))
	}
}

func TestAddItemRejectsDuplicateText(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	list, _ := svc.CreateList(context.Background(), "Buy milk", Anonymous)

	_, err := svc.AddItem(context.Background(), list.ID, "Buy milk")
	if !errors.Is(err, ErrDuplicateItem) {
		t.Fatalf("AddItem() error = %v, want ErrDuplicateItem", err)
	}

	stored, _ := svc.GetList(context.Background(), list.ID)
	if len(stored.Items) != 1 {
		t.Fatalf("items = %d, want exactly 1 %q item", len(stored.Items), "Buy milk")
	}
}

func TestAddItemKeepsInsertionOrder(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	list, _ := svc.CreateList(context.Background(), "Buy milk", Anonymous)

	if _, err := svc.AddItem(context.Background(), list.ID, "Make tea"); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}

	stored, _ := svc.GetList(context.Background(), list.ID)
	want := []string{"Buy milk", "Make tea"}
	if len(stored.Items) != len(want) {
		t.Fatalf("items = %d, want %d", len(stored.Items), len(want))
	}
	for i, text := range want {
		if stored.Items[i].Text != text {
			t.Fatalf("items[%d] = %q, want %q", i, stored.Items[i].Text, text)
		}
	}
}

func TestAddItemUnknownList(t *testing.T) {
	svc := newTestService(newMemStore())

	_, err := svc.AddItem(context.Background(), uuid.New(), "orphan")
	if !errors.Is(err, ErrListNotFound) {
		t.Fatalf("AddItem() error = %v, want ErrListNotFound", err)
	}
}

func TestListNameEmptyListIsUnnamed(t *testing.T) {
	list := models.List{ID: uuid.New()}
	if got := list.Name(); got != "" {
		t.Fatalf("Name() = %q, want empty string", got)
	}
}

func TestDuplicateTextAllowedAcrossLists(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	first, _ := svc.CreateList(context.Background(), "Buy milk", Anonymous)
	second, _ := svc.CreateList(context.Background(), "Buy milk", Anonymous)

	if _, err := svc.AddItem(context.Background(), second.ID, "Make tea"); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	storedFirst, _ := svc.GetList(context.Background(), first.ID)
	if len(storedFirst.Items) != 1 {
		t.Fatalf("first list items = %d, want 1", len(storedFirst.Items))
	}
}

func TestListsOwnedBy(t *testing.T) {
	store := newMemStore()
	store.addUser("a@b.com")
	svc := newTestService(store)

	owned, err := svc.ListsOwnedBy(context.Background(), "A@B.com")
	if err != nil {
		t.Fatalf("ListsOwnedBy() error = %v", err)
	}
	if len(owned) != 0 {
		t.Fatalf("owned = %d, want 0", len(owned))
	}

	list, _ := svc.CreateList(context.Background(), "Mine", IdentityFor("a@b.com"))
	owned, err = svc.ListsOwnedBy(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("ListsOwnedBy() error = %v", err)
	}
	if len(owned) != 1 || owned[0].ID != list.ID {
		t.Fatalf("owned = %+v, want the one created list", owned)
	}
}

func TestListsOwnedByUnknownUser(t *testing.T) {
	svc := newTestService(newMemStore())

	_, err := svc.ListsOwnedBy(context.Background(), "nobody@example.com")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("ListsOwnedBy() error = %v, want ErrUserNotFound", err)
	}
}

func TestShareUnknownUser(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	list, _ := svc.CreateList(context.Background(), "Buy milk", IdentityFor("a@b.com"))

	err := svc.Share(context.Background(), list.ID, IdentityFor("a@b.com"), "dogggg@example.com")
	var notFound *UserNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Share() error = %v, want UserNotFoundError", err)
	}
	if got, want := notFound.Error(), "User 'dogggg@example.com' not found."; got != want {
		t.Fatalf("error message = %q, want %q", got, want)
	}

	stored, _ := svc.GetList(context.Background(), list.ID)
	if len(stored.SharedWith) != 0 {
		t.Fatalf("shared_with = %d, want unchanged (0)", len(stored.SharedWith))
	}
}

func TestShareGrowsShareSetOnce(t *testing.T) {
	store := newMemStore()
	store.addUser("cherie@example.com")
	svc := newTestService(store)
	list, _ := svc.CreateList(context.Background(), "Buy milk", IdentityFor("a@b.com"))

	if err := svc.Share(context.Background(), list.ID, IdentityFor("a@b.com"), "cherie@example.com"); err != nil {
		t.Fatalf("Share() error = %v", err)
	}
	stored, _ := svc.GetList(context.Background(), list.ID)
	if len(stored.SharedWith) != 1 {
		t.Fatalf("shared_with = %d, want 1", len(stored.SharedWith))
	}

	// Re-sharing the same member is a no-op.
	if err := svc.Share(context.Background(), list.ID, IdentityFor("a@b.com"), "cherie@example.com"); err != nil {
		t.Fatalf("Share() repeat error = %v", err)
	}
	stored, _ = svc.GetList(context.Background(), list.ID)
	if len(stored.SharedWith) != 1 {
		t.Fatalf("shared_with after repeat = %d, want 1", len(stored.SharedWith))
	}
}

func TestShareNormalizesEmailCase(t *testing.T) {
	store := newMemStore()
	store.addUser("cherie@example.com")
	svc := newTestService(store)
	list, _ := svc.CreateList(context.Background(), "Buy milk", IdentityFor("a@b.com"))

	if err := svc.Share(context.Background(), list.ID, IdentityFor("a@b.com"), " Cherie@Example.COM "); err != nil {
		t.Fatalf("Share() error = %v", err)
	}
	stored, _ := svc.GetList(context.Background(), list.ID)
	if len(stored.SharedWith) != 1 || stored.SharedWith[0].Email != "cherie@example.com" {
		t.Fatalf("shared_with = %+v, want [cherie@example.com]", stored.SharedWith)
	}
}

func TestSharedUserMayAppend(t *testing.T) {
	store := newMemStore()
	store.addUser("cherie@example.com")
	svc := newTestService(store)
	list, _ := svc.CreateList(context.Background(), "Buy milk", IdentityFor("a@b.com"))

	if err := svc.Share(context.Background(), list.ID, IdentityFor("a@b.com"), "cherie@example.com"); err != nil {
		t.Fatalf("Share() error = %v", err)
	}
	stored, _ := svc.GetList(context.Background(), list.ID)

	if !MayAppend(IdentityFor("cherie@example.com"), stored) {
		t.Fatal("shared user should be allowed to append")
	}
	if MayAppend(IdentityFor("notcherie@example.com"), stored) {
		t.Fatal("unrelated user should not be allowed to append")
	}
}
