package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/claude/fixfit/internal/store"
)

// Resolver maps display names to durable identity IDs for one import run.
// The memo cache lives on the resolver itself, so a run never leaks state
// into the next one and repeated references to the same person cost one
// provider round-trip.
type Resolver struct {
	docs              store.DocumentStore
	ids               store.IdentityProvider
	log               *slog.Logger
	defaultPassword   string
	placeholderDomain string

	byName map[string]string
}

// NewResolver creates a resolver scoped to one run.
func NewResolver(docs store.DocumentStore, ids store.IdentityProvider, log *slog.Logger, defaultPassword, placeholderDomain string) *Resolver {
	return &Resolver{
		docs:              docs,
		ids:               ids,
		log:               log,
		defaultPassword:   defaultPassword,
		placeholderDomain: placeholderDomain,
		byName:            map[string]string{},
	}
}

// Lookup returns the memoized UID for a display name, if any.
func (r *Resolver) Lookup(name string) (string, bool) {
	uid, ok := r.byName[name]
	return uid, ok
}

// Resolve returns the durable identity ID for a person, creating the backing
// account and profile document when none exists. An empty email synthesizes
// a placeholder address from the display name. An empty password falls back
// to the run default; an empty role defaults to trainee. The second return
// value reports whether a new account was created.
func (r *Resolver) Resolve(ctx context.Context, name, email, password, role string) (string, bool, error) {
	if uid, ok := r.byName[name]; ok {
		return uid, false, nil
	}

	if email == "" {
		email = Slug(name) + "@" + r.placeholderDomain
	}
	if password == "" {
		password = r.defaultPassword
	}
	if role == "" {
		role = "trainee"
	}

	created := false
	user, err := r.ids.UserByEmail(ctx, email)
	switch {
	case err == nil:
		r.log.Info("identity exists", "email", email)
	case errors.Is(err, store.ErrUserNotFound):
		user, err = r.ids.CreateUser(ctx, email, password, name)
		if err != nil {
			return "", false, fmt.Errorf("creating account for %s: %w", email, err)
		}
		created = true
		r.log.Info("created identity", "email", email, "name", name)
	default:
		return "", false, fmt.Errorf("looking up %s: %w", email, err)
	}

	profile := store.Document{
		"uid":         user.UID,
		"email":       email,
		"displayName": name,
		"role":        role,
		"updatedAt":   store.ServerTimestamp,
	}
	if err := r.docs.Set(ctx, store.CollectionUsers, user.UID, profile, true); err != nil {
		return "", created, fmt.Errorf("writing profile for %s: %w", email, err)
	}

	r.byName[name] = user.UID
	return user.UID, created, nil
}

// Slug derives the local part of a placeholder email from a display name:
// lowercase, whitespace runs collapsed to single dots.
func Slug(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "."))
}
