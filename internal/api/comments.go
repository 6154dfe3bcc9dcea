package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/erazemk/izgubljeno/internal/apperr"
	"github.com/erazemk/izgubljeno/internal/model"
	"github.com/erazemk/izgubljeno/internal/store"
)

// CommentsHandler handles comment endpoints. The {id} parameter is the item
// id for List and Create and the comment id for Delete.
type CommentsHandler struct {
	DB     *sql.DB
	Logger *zap.Logger
}

type createCommentRequest struct {
	Text string `json:"text" validate:"required"`
}

// List handles GET /api/comments/{id}.
func (h *CommentsHandler) List(w http.ResponseWriter, r *http.Request) {
	comments := []model.Comment{}
	if itemID, ok := pathID(r); ok {
		found, err := store.ListComments(r.Context(), h.DB, itemID)
		if err != nil {
			jsonError(w, r, h.Logger, apperr.Internal(err))
			return
		}
		if found != nil {
			comments = found
		}
	}

	jsonSuccess(w, http.StatusOK, envelope{
		"count":    len(comments),
		"comments": comments,
	})
}

// Create handles POST /api/comments/{id}.
func (h *CommentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(r)
	if !ok {
		jsonError(w, r, h.Logger, apperr.NotFound(msgItemNotFound))
		return
	}

	var req createCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, r, h.Logger, err)
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if err := apperr.Validate(req); err != nil {
		jsonError(w, r, h.Logger, err)
		return
	}

	user := GetUser(r.Context())
	comment, err := store.CreateComment(r.Context(), h.DB, itemID, user.ID, req.Text)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, r, h.Logger, apperr.NotFound(msgItemNotFound))
		return
	}
	if err != nil {
		jsonError(w, r, h.Logger, apperr.Internal(err))
		return
	}

	jsonSuccess(w, http.StatusCreated, envelope{"comment": comment})
}

// Delete handles DELETE /api/comments/{id}.
func (h *CommentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, r, h.Logger, apperr.NotFound("Comment not found"))
		return
	}

	user := GetUser(r.Context())
	err := store.DeleteComment(r.Context(), h.DB, id, user.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, r, h.Logger, apperr.NotFound("Comment not found"))
		return
	case errors.Is(err, store.ErrNotOwner):
		jsonError(w, r, h.Logger, apperr.Forbidden("Not authorized to delete this comment"))
		return
	case err != nil:
		jsonError(w, r, h.Logger, apperr.Internal(err))
		return
	}

	jsonSuccess(w, http.StatusOK, envelope{"message": "Comment deleted successfully"})
}
