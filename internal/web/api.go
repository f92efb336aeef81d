package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shaunplee/superlists/internal/lists"
	"github.com/shaunplee/superlists/internal/models"
)

var errNotAllowed = errors.New("you do not have permission to add items to this list")

func (h *Handlers) loadListAPI(w http.ResponseWriter, r *http.Request) (models.List, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "listID"))
	if err != nil {
		respondError(w, http.StatusNotFound, lists.ErrListNotFound)
		return models.List{}, false
	}
	list, err := h.lists.GetList(r.Context(), id)
	if errors.Is(err, lists.ErrListNotFound) {
		respondError(w, http.StatusNotFound, err)
		return models.List{}, false
	}
	if err != nil {
		h.log.Error().Err(err).Str("list_id", id.String()).Msg("api load list")
		respondError(w, http.StatusInternalServerError, err)
		return models.List{}, false
	}
	return list, true
}

func (h *Handlers) handleAPIListItems(w http.ResponseWriter, r *http.Request) {
	list, ok := h.loadListAPI(w, r)
	if !ok {
		return
	}

	items, err := h.lists.Items(r.Context(), list.ID)
	if err != nil {
		h.log.Error().Err(err).Str("list_id", list.ID.String()).Msg("list items")
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handlers) handleAPICreateItem(w http.ResponseWriter, r *http.Request) {
	list, ok := h.loadListAPI(w, r)
	if !ok {
		return
	}
	identity := identityFrom(r.Context())
	text := r.FormValue("text")

	if !lists.MayAppend(identity, list) {
		respondError(w, http.StatusBadRequest, errNotAllowed)
		return
	}

	_, err := h.lists.AddItem(r.Context(), list.ID, text)
	switch {
	case errors.Is(err, lists.ErrEmptyItem), errors.Is(err, lists.ErrDuplicateItem):
		respondError(w, http.StatusBadRequest, err)
	case err != nil:
		h.log.Error().Err(err).Str("list_id", list.ID.String()).Msg("api add item")
		respondError(w, http.StatusInternalServerError, err)
	default:
		itemsCreated.Inc()
		w.WriteHeader(http.StatusCreated)
	}
}
