package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/shaunplee/superlists/internal/accounts"
	"github.com/shaunplee/superlists/internal/lists"
	"github.com/shaunplee/superlists/internal/models"
)

// Handlers holds the services and renderer behind the HTTP surface.
type Handlers struct {
	lists        *lists.Service
	accounts     *accounts.Service
	render       *Engine
	sanitize     *bluemonday.Policy
	log          zerolog.Logger
	cookieSecure bool
}

type homePage struct {
	Identity lists.Identity
	Text     string
	Error    string
}

type listPage struct {
	Identity   lists.Identity
	List       models.List
	Name       string
	Items      []models.Item
	Text       string
	Error      string
	ShareError string
}

type listLink struct {
	ID   uuid.UUID
	Name string
}

type myListsPage struct {
	Identity lists.Identity
	Owner    string
	Lists    []listLink
}

func (h *Handlers) listPageData(r *http.Request, list models.List) listPage {
	return listPage{
		Identity: identityFrom(r.Context()),
		List:     list,
		Name:     displayName(list),
		Items:    list.Items,
	}
}

func displayName(list models.List) string {
	if name := list.Name(); name != "" {
		return name
	}
	return "(unnamed list)"
}

func listURL(id uuid.UUID) string {
	return fmt.Sprintf("/lists/%s/", id)
}

func (h *Handlers) handleHome(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, http.StatusOK, "home.html.tmpl", homePage{Identity: identityFrom(r.Context())})
}

func (h *Handlers) handleNewList(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	text := r.FormValue("text")

	list, err := h.lists.CreateList(r.Context(), text, identity)
	switch {
	case errors.Is(err, lists.ErrEmptyItem):
		h.renderPage(w, http.StatusOK, "home.html.tmpl", homePage{
			Identity: identity,
			Text:     text,
			Error:    lists.EmptyItemError,
		})
	case err != nil:
		h.log.Error().Err(err).Msg("create list")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	default:
		listsCreated.Inc()
		http.Redirect(w, r, listURL(list.ID), http.StatusFound)
	}
}

func (h *Handlers) loadList(w http.ResponseWriter, r *http.Request) (models.List, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "listID"))
	if err != nil {
		http.NotFound(w, r)
		return models.List{}, false
	}
	list, err := h.lists.GetList(r.Context(), id)
	if errors.Is(err, lists.ErrListNotFound) {
		http.NotFound(w, r)
		return models.List{}, false
	}
	if err != nil {
		h.log.Error().Err(err).Str("list_id", id.String()).Msg("load list")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return models.List{}, false
	}
	return list, true
}

func (h *Handlers) handleViewList(w http.ResponseWriter, r *http.Request) {
	list, ok := h.loadList(w, r)
	if !ok {
		return
	}
	h.renderPage(w, http.StatusOK, "list.html.tmpl", h.listPageData(r, list))
}

func (h *Handlers) handleAddItem(w http.ResponseWriter, r *http.Request) {
	list, ok := h.loadList(w, r)
	if !ok {
		return
	}
	identity := identityFrom(r.Context())
	text := r.FormValue("text")

	if strings.TrimSpace(text) == "" {
		data := h.listPageData(r, list)
		data.Text = text
		data.Error = lists.EmptyItemError
		h.renderPage(w, http.StatusOK, "list.html.tmpl", data)
		return
	}

	// An unauthorized append is dropped without an error: the requester is
	// redirected back to the list as if nothing happened.
	if !lists.MayAppend(identity, list) {
		http.Redirect(w, r, listURL(list.ID), http.StatusFound)
		return
	}

	_, err := h.lists.AddItem(r.Context(), list.ID, text)
	switch {
	case errors.Is(err, lists.ErrEmptyItem), errors.Is(err, lists.ErrDuplicateItem):
		data := h.listPageData(r, list)
		data.Text = text
		data.Error = err.Error()
		h.renderPage(w, http.StatusOK, "list.html.tmpl", data)
	case err != nil:
		h.log.Error().Err(err).Str("list_id", list.ID.String()).Msg("add item")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	default:
		itemsCreated.Inc()
		http.Redirect(w, r, listURL(list.ID), http.StatusFound)
	}
}

func (h *Handlers) handleMyLists(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	owned, err := h.lists.ListsOwnedBy(r.Context(), email)
	if errors.Is(err, lists.ErrUserNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("email", email).Msg("my lists")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	page := myListsPage{
		Identity: identityFrom(r.Context()),
		Owner:    strings.ToLower(strings.TrimSpace(email)),
	}
	for _, list := range owned {
		page.Lists = append(page.Lists, listLink{ID: list.ID, Name: displayName(list)})
	}
	h.renderPage(w, http.StatusOK, "my_lists.html.tmpl", page)
}

func (h *Handlers) handleShareList(w http.ResponseWriter, r *http.Request) {
	list, ok := h.loadList(w, r)
	if !ok {
		return
	}
	identity := identityFrom(r.Context())

	// Neutralize markup injected through the share form before the email
	// is looked up, stored, or echoed back.
	sharee := h.sanitize.Sanitize(r.FormValue("sharee"))

	err := h.lists.Share(r.Context(), list.ID, identity, sharee)
	var notFound *lists.UserNotFoundError
	switch {
	case errors.As(err, &notFound):
		data := h.listPageData(r, list)
		data.ShareError = notFound.Error()
		h.renderPage(w, http.StatusOK, "list.html.tmpl", data)
	case err != nil:
		h.log.Error().Err(err).Str("list_id", list.ID.String()).Msg("share list")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	default:
		listsShared.Inc()
		http.Redirect(w, r, listURL(list.ID), http.StatusFound)
	}
}

func (h *Handlers) handleSendLoginEmail(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")

	_, err := h.accounts.IssueToken(r.Context(), email, accounts.ClientInfo{
		IP:        r.RemoteAddr,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		h.log.Error().Err(err).Msg("issue login token")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	uid := r.URL.Query().Get("token")

	_, session, err := h.accounts.Redeem(r.Context(), uid)
	if errors.Is(err, accounts.ErrInvalidToken) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("redeem login token")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	logins.Inc()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		if err := h.accounts.Logout(r.Context(), cookie.Value); err != nil {
			h.log.Error().Err(err).Msg("revoke session")
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}
