// Package session keeps the signed-in user for the lifetime of the current session.
package session

import (
	"context"

	"dms-service/internal/cache"
	"dms-service/internal/collection"
	"dms-service/internal/models"
)

// CurrentUserKey is the session-scoped key of the signed-in user
const CurrentUserKey = "dms_current_user"

// Holder reads and writes the current user
type Holder struct {
	coll *collection.Store
}

// NewHolder creates a holder over coll
func NewHolder(coll *collection.Store) *Holder {
	return &Holder{coll: coll}
}

// Get returns the signed-in user, or nil when nobody is signed in or the stored value is corrupt.
func (h *Holder) Get(ctx context.Context) *models.User {
	return collection.GetObject[models.User](ctx, h.coll, cache.Session, CurrentUserKey)
}

// Set replaces the signed-in user
func (h *Holder) Set(ctx context.Context, user models.User) error {
	return collection.SetObject(ctx, h.coll, cache.Session, CurrentUserKey, user)
}

// Clear signs the user out
func (h *Holder) Clear(ctx context.Context) {
	h.coll.RemoveObject(ctx, cache.Session, CurrentUserKey)
}
