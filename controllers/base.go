package controllers

import (
	"context"
	"net/http"
	"time"

	"go-ordering/apperrors"
	"go-ordering/flash"
	"go-ordering/middleware"
	"go-ordering/views"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Flash keys
const (
	flashSuccess = "success"
	flashClosed  = "closed"
	flashDeliver = "deliver"
)

// Page is the data handed to a template. The layout reads Viewer and
// Messages, everything else belongs to the page.
type Page map[string]any

// Base holds what every controller needs to answer a request.
type Base struct {
	Views   *views.Renderer
	Flash   *flash.Messenger
	Timeout time.Duration
}

func (b *Base) withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), b.Timeout)
}

func (b *Base) render(w http.ResponseWriter, r *http.Request, status int, name string, data Page) {
	if data == nil {
		data = Page{}
	}
	if claims, ok := middleware.ClaimsFrom(r.Context()); ok {
		data["Viewer"] = claims
	}

	if err := b.Views.Render(w, status, name, data); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("template", name).Msg("render failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// RespondError is the one place where request errors are logged and turned
// into a response.
func (b *Base) RespondError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.Ctx(r.Context())
	kind := apperrors.KindOf(err)

	var status int
	var page string
	switch kind {
	case apperrors.KindUnauthorized:
		logger.Warn().Err(err).Msg("unauthenticated request")
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return
	case apperrors.KindValidation:
		status, page = http.StatusBadRequest, "error400"
	case apperrors.KindConflict:
		status, page = http.StatusConflict, "error400"
	case apperrors.KindForbidden:
		status, page = http.StatusForbidden, "error403"
	case apperrors.KindNotFound:
		status, page = http.StatusNotFound, "error404"
	default:
		status, page = http.StatusInternalServerError, "error500"
	}

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).Int("status", status).Str("kind", kind.String()).Msg("request failed")

	data := Page{}
	if status < http.StatusInternalServerError {
		data["Message"] = apperrors.Message(err)
	}
	b.render(w, r, status, page, data)
}

// addFlash stores a notice for the next page. The mutation it reports has
// already happened, so a lost notice is only logged.
func (b *Base) addFlash(w http.ResponseWriter, r *http.Request, key, msg string) {
	if err := b.Flash.Add(w, r, key, msg); err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Str("key", key).Msg("flash add failed")
	}
}

func (b *Base) popFlash(r *http.Request, key string) []string {
	msgs, err := b.Flash.Pop(r, key)
	if err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Str("key", key).Msg("flash pop failed")
	}
	return msgs
}

// viewerID returns the id of the logged-in user.
func viewerID(r *http.Request) (primitive.ObjectID, error) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		return primitive.NilObjectID, apperrors.Unauthorized("login required")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, apperrors.Unauthorized("session token has no valid user id")
	}
	return id, nil
}

// pathID parses the route variable name. A malformed id names nothing, so it
// is reported as not found.
func pathID(r *http.Request, name string) (primitive.ObjectID, error) {
	raw := mux.Vars(r)[name]
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperrors.NotFound("%s %q not found", name, raw)
	}
	return id, nil
}

// formID parses a form field holding an object id.
func formID(r *http.Request, field string) (primitive.ObjectID, error) {
	raw := r.FormValue(field)
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperrors.Validation("%s %q is not a valid id", field, raw)
	}
	return id, nil
}
