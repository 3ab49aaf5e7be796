// Package store defines the document-store and identity-provider contracts
// the rest of the application is written against. The hosted backend
// (Firestore + Firebase Auth) and the self-hosted Postgres backend both
// satisfy them; tests use the in-memory implementation.
package store

import (
	"context"
	"errors"
)

// Collection names used by the application.
const (
	CollectionUsers        = "users"
	CollectionWorkouts     = "workouts"
	CollectionExerciseBank = "exercise_bank"
)

// Document is a persisted document body. Field values are loosely typed the
// way the backend client returns them.
type Document = map[string]any

// ServerTimestamp marks a field to be filled with a server-assigned write
// timestamp by the backend.
var ServerTimestamp = serverTimestamp{}

type serverTimestamp struct{}

// IsServerTimestamp reports whether a field value is the ServerTimestamp
// marker. Backends translate it to their native server-time write.
func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

// Snapshot is one stored document together with its key.
type Snapshot struct {
	ID   string
	Data Document
}

// WriteBatch accumulates writes that commit atomically where the backend
// supports it. Batches are single-use.
type WriteBatch interface {
	// Set writes a document under an explicit key. With merge, existing
	// fields not present in doc are kept.
	Set(collection, id string, doc Document, merge bool)
	// Add writes a document under a backend-generated key.
	Add(collection string, doc Document)
	Commit(ctx context.Context) error
}

// DocumentStore is the document database surface the pipeline and the API
// server write against.
type DocumentStore interface {
	Set(ctx context.Context, collection, id string, doc Document, merge bool) error
	Add(ctx context.Context, collection string, doc Document) (string, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	List(ctx context.Context, collection string) ([]Snapshot, error)
	// ListWhere returns documents whose string field equals value.
	ListWhere(ctx context.Context, collection, field, value string) ([]Snapshot, error)
	Delete(ctx context.Context, collection, id string) error
	// DeleteAll removes every document in the collection, returning the count.
	DeleteAll(ctx context.Context, collection string) (int, error)
	Batch() WriteBatch
}

// ErrNotFound is returned by Get for a missing document.
var ErrNotFound = errors.New("store: document not found")

// ErrUserNotFound is returned by UserByEmail when no account exists.
var ErrUserNotFound = errors.New("store: user not found")

// User is an account held by the identity provider.
type User struct {
	UID         string
	Email       string
	DisplayName string
}

// IdentityProvider is the external authentication backend. Account creation
// and deletion happen here; profile documents live in the users collection.
type IdentityProvider interface {
	UserByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, email, password, displayName string) (*User, error)
	DeleteUser(ctx context.Context, uid string) error
	ListUsers(ctx context.Context) ([]User, error)
}
