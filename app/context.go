package main

import (
	"context"
	"net/http"

	"github.com/sushihentaime/blogcms/internal/userservice"
)

type contextKey string

const userContextKey = contextKey("user")

func (app *application) createUserContext(r *http.Request, user *userservice.User) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	return r.WithContext(ctx)
}

// getUserContext returns the requester set by authenticate, or the anonymous user when the
// request never passed through it.
func (app *application) getUserContext(r *http.Request) *userservice.User {
	user, ok := r.Context().Value(userContextKey).(*userservice.User)
	if !ok || user == nil {
		return userservice.AnonymousUser
	}
	return user
}

// requesterName is the display name recorded as a blog's author; empty for anonymous requests.
func (app *application) requesterName(r *http.Request) string {
	user := app.getUserContext(r)
	if user.IsAnonymous() {
		return ""
	}
	return user.Name
}
