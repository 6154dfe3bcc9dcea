package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/erazemk/izgubljeno/internal/apperr"
	"github.com/erazemk/izgubljeno/internal/config"
	"github.com/erazemk/izgubljeno/internal/model"
	"github.com/erazemk/izgubljeno/internal/store"
)

const msgItemNotFound = "Item not found"

// statusAll lists items of every status.
const statusAll = "all"

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	DB          *sql.DB
	ClaimPolicy string
	Logger      *zap.Logger
}

type createItemRequest struct {
	Title         string `json:"title" validate:"required"`
	Description   string `json:"description"`
	Category      string `json:"category" validate:"required"`
	Location      string `json:"location" validate:"required"`
	DateLostFound string `json:"dateLostFound" validate:"required,datetime=2006-01-02"`
	ItemType      string `json:"itemType" validate:"required,oneof=lost found"`
	ContactEmail  string `json:"contactEmail"`
	ContactPhone  string `json:"contactPhone"`
	ImageURL      string `json:"imageUrl"`
	Emoji         string `json:"emoji"`
}

type updateItemRequest struct {
	Title         *string `json:"title" validate:"omitnil,min=1"`
	Description   *string `json:"description"`
	Category      *string `json:"category" validate:"omitnil,min=1"`
	Location      *string `json:"location" validate:"omitnil,min=1"`
	DateLostFound *string `json:"dateLostFound" validate:"omitnil,datetime=2006-01-02"`
	ContactEmail  *string `json:"contactEmail"`
	ContactPhone  *string `json:"contactPhone"`
	ImageURL      *string `json:"imageUrl"`
	Emoji         *string `json:"emoji"`
}

// listFilter reads the listing parameters. Unparseable numbers fall back
// to the defaults applied by the store.
func listFilter(r *http.Request) store.ItemFilter {
	q := r.URL.Query()
	f := store.ItemFilter{
		Type:     q.Get("type"),
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Sort:     q.Get("sort"),
	}
	if f.Status == statusAll {
		f.Status = ""
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		f.Limit = n
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil {
		f.Offset = n
	}
	return f
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListItems(r.Context(), h.DB, listFilter(r))
	if err != nil {
		jsonError(w, r, h.Logger, apperr.Internal(err))
		return
	}
	if items == nil {
		items = []model.Item{}
	}

	if user := GetUser(r.Context()); user != nil {
		for i := range items {
			items[i].IsOwner = items[i].OwnedBy(user.ID)
		}
	}

	jsonSuccess(w, http.StatusOK, envelope{
		"count": len(items),
		"items": items,
	})
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, r, h.Logger, apperr.NotFound(msgItemNotFound))
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, r, h.Logger, apperr.Internal(err))
		return
	}
	if item == nil {
		jsonError(w, r, h.Logger, apperr.NotFound(msgItemNotFound))
		return
	}

	if user := GetUser(r.Context()); user != nil {
		item.IsOwner = item.OwnedBy(user.ID)
	}

	jsonSuccess(w, http.StatusOK, envelope{"item": item})
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, r, h.Logger, err)
		return
	}
	if err := apperr.Validate(req); err != nil {
		jsonError(w, r, h.Logger, err)
		return
	}

	user := GetUser(r.Context())
	item, err := store.CreateItem(r.Context(), h.DB, user.ID, store.NewItem{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Location:      req.Location,
		DateLostFound: req.DateLostFound,
		ItemType:      req.ItemType,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
		ImageURL:      req.ImageURL,
		Emoji:         req.Emoji,
	})
	if err != nil {
		jsonError(w, r, h.Logger, apperr.Internal(err))
		return
	}
	item.IsOwner = true

	h.Logger.Info("item created",
		zap.Int64("item_id", item.ID),
		zap.String("type", item.ItemType),
		zap.Int64("user_id", user.ID),
	)
	jsonSuccess(w, http.StatusCreated, envelope{"item": item})
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, r, h.Logger, apperr.NotFound(msgItemNotFound))
		return
	}

	var req updateItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, r, h.Logger, err)
		return
	}
	if err := apperr.Validate(req); err != nil {
		jsonError(w, r, h.Logger, err)
		return
	}

	user := GetUser(r.Context())
	item, err := store.UpdateItem(r.Context(), h.DB, id, user.ID, store.ItemUpdate{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Location:      req.Location,
		DateLostFound: req.DateLostFound,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
		ImageURL:      req.ImageURL,
		Emoji:         req.Emoji,
	})
	if err != nil {
		jsonError(w, r, h.Logger, itemError(err, "Not authorized to update this item"))
		return
	}
	h.respondItem(w, r, item)
}

// Claim handles PATCH /api/items/{id}/claim. Under the owner policy only
// the poster may claim.
func (h *ItemsHandler) Claim(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, r, h.Logger, apperr.NotFound(msgItemNotFound))
		return
	}

	user := GetUser(r.Context())
	var item *model.Item
	var err error
	if h.ClaimPolicy == config.ClaimOwner {
		item, err = store.SetOwnedItemStatus(r.Context(), h.DB, id, user.ID, model.ItemStatusClaimed)
	} else {
		item, err = store.SetItemStatus(r.Context(), h.DB, id, model.ItemStatusClaimed)
	}
	if err != nil {
		jsonError(w, r, h.Logger, itemError(err, "Not authorized to claim this item"))
		return
	}

	h.Logger.Info("item claimed", zap.Int64("item_id", id), zap.Int64("user_id", user.ID))
	h.respondItem(w, r, item)
}

// Reactivate handles PATCH /api/items/{id}/reactivate.
func (h *ItemsHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, r, h.Logger, apperr.NotFound(msgItemNotFound))
		return
	}

	user := GetUser(r.Context())
	item, err := store.SetOwnedItemStatus(r.Context(), h.DB, id, user.ID, model.ItemStatusActive)
	if err != nil {
		jsonError(w, r, h.Logger, itemError(err, "Not authorized"))
		return
	}
	h.respondItem(w, r, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, r, h.Logger, apperr.NotFound(msgItemNotFound))
		return
	}

	user := GetUser(r.Context())
	if err := store.DeleteItem(r.Context(), h.DB, id, user.ID); err != nil {
		jsonError(w, r, h.Logger, itemError(err, "Not authorized to delete this item"))
		return
	}

	h.Logger.Info("item deleted", zap.Int64("item_id", id), zap.Int64("user_id", user.ID))
	jsonSuccess(w, http.StatusOK, envelope{"message": "Item deleted successfully"})
}

// respondItem writes a mutated item. A nil item means it was deleted
// between the update and the re-read.
func (h *ItemsHandler) respondItem(w http.ResponseWriter, r *http.Request, item *model.Item) {
	if item == nil {
		jsonError(w, r, h.Logger, apperr.NotFound(msgItemNotFound))
		return
	}
	if user := GetUser(r.Context()); user != nil {
		item.IsOwner = item.OwnedBy(user.ID)
	}
	jsonSuccess(w, http.StatusOK, envelope{"item": item})
}

// itemError maps store errors of item mutations to client errors.
func itemError(err error, forbidden string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(msgItemNotFound)
	case errors.Is(err, store.ErrNotOwner):
		return apperr.Forbidden(forbidden)
	default:
		return apperr.Internal(err)
	}
}
