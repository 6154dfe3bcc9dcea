package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/erazemk/izgubljeno/internal/apperr"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// envelope is a JSON response body. Success responses carry success=true
// next to their payload.
type envelope map[string]any

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		// The status line is already sent, so an encoding failure can only
		// truncate the body.
		_ = json.NewEncoder(w).Encode(data)
	}
}

// jsonSuccess writes body with success=true.
func jsonSuccess(w http.ResponseWriter, status int, body envelope) {
	if body == nil {
		body = envelope{}
	}
	body["success"] = true
	jsonResponse(w, status, body)
}

// jsonError translates err into an error response. Internal errors are
// logged with their cause and answered with a generic message.
func jsonError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	e := apperr.From(err)
	if e.Kind == apperr.KindInternal {
		logger.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}

	body := envelope{"success": false}
	if len(e.Fields) > 0 {
		body["errors"] = e.Fields
	} else {
		body["message"] = e.Message
	}
	jsonResponse(w, apperr.StatusCode(e), body)
}

// errBadBody is returned for request bodies that are not valid JSON.
var errBadBody = &apperr.Error{Kind: apperr.KindValidation, Message: "Invalid request body"}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &apperr.Error{Kind: apperr.KindValidation, Message: "Request body too large"}
		}
		return errBadBody
	}
	return nil
}

// pathID parses the {id} route parameter. ok is false for anything that is
// not a positive integer.
func pathID(r *http.Request) (id int64, ok bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
