package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shaunplee/superlists/internal/accounts"
	"github.com/shaunplee/superlists/internal/lists"
	"github.com/shaunplee/superlists/internal/mail"
	"github.com/shaunplee/superlists/internal/models"
)

// In-memory fakes standing in for the postgres-backed stores. They honour
// the store contracts the handlers rely on: sentinel errors, per-list text
// uniqueness, idempotent shares, single-use tokens.

type fakeListStore struct {
	mu    sync.Mutex
	lists map[uuid.UUID]*models.List
	users map[string]models.User
	seq   int64
}

func newFakeListStore() *fakeListStore {
	return &fakeListStore{
		lists: make(map[uuid.UUID]*models.List),
		users: make(map[string]models.User),
	}
}

func (s *fakeListStore) addUser(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = models.User{Email: email}
}

func (s *fakeListStore) addList(owner string, shared []string, texts ...string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := &models.List{ID: uuid.New()}
	if owner != "" {
		list.OwnerEmail = &owner
	}
	for _, email := range shared {
		list.SharedWith = append(list.SharedWith, models.User{Email: email})
	}
	for _, text := range texts {
		s.seq++
		list.Items = append(list.Items, models.Item{ID: uuid.New(), ListID: list.ID, Text: text, Seq: s.seq})
	}
	s.lists[list.ID] = list
	return list.ID
}

func (s *fakeListStore) itemCount(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lists[id].Items)
}

func (s *fakeListStore) CreateList(_ context.Context, list *models.List, first *models.Item) error {
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

func (s *fakeListStore) GetList(_ context.Context, id uuid.UUID) (models.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.lists[id]
	if !ok {
		return models.List{}, lists.ErrListNotFound
	}
	return *list, nil
}

func (s *fakeListStore) InsertItem(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.lists[item.ListID]
	if !ok {
		return lists.ErrListNotFound
	}
	for _, existing := range list.Items {
		if existing.Text == item.Text {
			return lists.ErrDuplicateItem
		}
	}
	s.seq++
	item.Seq = s.seq
	list.Items = append(list.Items, *item)
	return nil
}

func (s *fakeListStore) ListItems(_ context.Context, listID uuid.UUID) ([]lists.ItemSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.lists[listID]
	if !ok {
		return nil, lists.ErrListNotFound
	}
	summaries := []lists.ItemSummary{}
	for _, item := range list.Items {
		summaries = append(summaries, lists.ItemSummary{ID: item.ID, Text: item.Text})
	}
	return summaries, nil
}

func (s *fakeListStore) ListsOwnedBy(_ context.Context, email string) ([]models.List, error) {
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

func (s *fakeListStore) GetUser(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[email]
	if !ok {
		return models.User{}, lists.ErrUserNotFound
	}
	return user, nil
}

func (s *fakeListStore) AddShare(_ context.Context, listID uuid.UUID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.lists[listID]
	if !ok {
		return lists.ErrListNotFound
	}
	for _, u := range list.SharedWith {
		if u.Email == email {
			return nil
		}
	}
	list.SharedWith = append(list.SharedWith, models.User{Email: email})
	return nil
}

type fakeAccountStore struct {
	mu       sync.Mutex
	tokens   map[string]models.Token
	users    map[string]models.User
	sessions map[string]models.Session
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{
		tokens:   make(map[string]models.Token),
		users:    make(map[string]models.User),
		sessions: make(map[string]models.Session),
	}
}

func (s *fakeAccountStore) addToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := models.Token{UID: uuid.NewString(), Email: email, ExpiresAt: time.Now().Add(time.Hour)}
	s.tokens[token.UID] = token
	return token.UID
}

func (s *fakeAccountStore) addSession(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := models.Session{Token: uuid.NewString(), Email: email, ExpiresAt: time.Now().Add(time.Hour)}
	s.sessions[session.Token] = session
	return session.Token
}

func (s *fakeAccountStore) InsertToken(_ context.Context, token *models.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.UID] = *token
	return nil
}

func (s *fakeAccountStore) GetToken(_ context.Context, uid string) (models.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[uid]
	if !ok {
		return models.Token{}, accounts.ErrInvalidToken
	}
	return token, nil
}

func (s *fakeAccountStore) ConsumeToken(_ context.Context, uid string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[uid]
	if !ok || token.ConsumedAt != nil {
		return false, nil
	}
	token.ConsumedAt = &at
	s.tokens[uid] = token
	return true, nil
}

func (s *fakeAccountStore) UpsertUser(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[email]; ok {
		return user, nil
	}
	user := models.User{Email: email}
	s.users[email] = user
	return user, nil
}

func (s *fakeAccountStore) InsertSession(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = *session
	return nil
}

func (s *fakeAccountStore) GetSession(_ context.Context, token string) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return models.Session{}, accounts.ErrInvalidToken
	}
	return session, nil
}

func (s *fakeAccountStore) RevokeSession(_ context.Context, token string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok || session.RevokedAt != nil {
		return nil
	}
	session.RevokedAt = &at
	s.sessions[token] = session
	return nil
}

type testServer struct {
	handler      http.Handler
	listStore    *fakeListStore
	accountStore *fakeAccountStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	listStore := newFakeListStore()
	accountStore := newFakeAccountStore()

	listsSvc := lists.NewService(listStore, nil, zerolog.Nop())
	accountsSvc := accounts.NewService(accountStore, mail.LogSender{Log: zerolog.Nop()}, nil, accounts.Config{
		SiteBaseURL: "http://testserver",
		TokenTTL:    time.Hour,
		SessionTTL:  time.Hour,
	}, zerolog.Nop())

	handler, err := NewRouter(listsSvc, accountsSvc, RouterOptions{Log: zerolog.Nop()})
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	return &testServer{handler: handler, listStore: listStore, accountStore: accountStore}
}

func (ts *testServer) get(t *testing.T, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) postForm(t *testing.T, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func sessionCookieFor(store *fakeAccountStore, email string) *http.Cookie {
	return &http.Cookie{Name: sessionCookie, Value: store.addSession(email)}
}
