// Package firestoredb is the hosted backend: documents in Cloud Firestore,
// accounts in Firebase Authentication.
package firestoredb

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/claude/fixfit/internal/store"
)

// Client bundles the Firestore and Auth clients behind the store contracts.
type Client struct {
	fs   *firestore.Client
	auth *auth.Client
}

// New initializes the Firebase app. An empty credentials path falls back to
// application-default credentials.
func New(ctx context.Context, credentialsFile string) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		fs.Close()
		return nil, fmt.Errorf("creating auth client: %w", err)
	}
	return &Client{fs: fs, auth: authClient}, nil
}

// Close closes the Firestore client.
func (c *Client) Close() error {
	return c.fs.Close()
}

// translate swaps the server-timestamp marker for the Firestore sentinel.
func translate(doc store.Document) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if store.IsServerTimestamp(v) {
			out[k] = firestore.ServerTimestamp
			continue
		}
		out[k] = v
	}
	return out
}

func (c *Client) Set(ctx context.Context, collection, id string, doc store.Document, merge bool) error {
	ref := c.fs.Collection(collection).Doc(id)
	var err error
	if merge {
		_, err = ref.Set(ctx, translate(doc), firestore.MergeAll)
	} else {
		_, err = ref.Set(ctx, translate(doc))
	}
	if err != nil {
		return fmt.Errorf("writing %s/%s: %w", collection, id, err)
	}
	return nil
}

func (c *Client) Add(ctx context.Context, collection string, doc store.Document) (string, error) {
	ref, _, err := c.fs.Collection(collection).Add(ctx, translate(doc))
	if err != nil {
		return "", fmt.Errorf("adding to %s: %w", collection, err)
	}
	return ref.ID, nil
}

func (c *Client) Get(ctx context.Context, collection, id string) (store.Document, error) {
	snap, err := c.fs.Collection(collection).Doc(id).Get(ctx)
	if snap != nil && !snap.Exists() {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", collection, id, err)
	}
	return snap.Data(), nil
}

func (c *Client) List(ctx context.Context, collection string) ([]store.Snapshot, error) {
	return drain(c.fs.Collection(collection).Documents(ctx), collection)
}

func (c *Client) ListWhere(ctx context.Context, collection, field, value string) ([]store.Snapshot, error) {
	it := c.fs.Collection(collection).Where(field, "==", value).Documents(ctx)
	return drain(it, collection)
}

func drain(it *firestore.DocumentIterator, collection string) ([]store.Snapshot, error) {
	defer it.Stop()
	var out []store.Snapshot
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("iterating %s: %w", collection, err)
		}
		out = append(out, store.Snapshot{ID: snap.Ref.ID, Data: snap.Data()})
	}
}

func (c *Client) Delete(ctx context.Context, collection, id string) error {
	if _, err := c.fs.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	return nil
}

func (c *Client) DeleteAll(ctx context.Context, collection string) (int, error) {
	it := c.fs.Collection(collection).Documents(ctx)
	defer it.Stop()

	count := 0
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return count, nil
		}
		if err != nil {
			return count, fmt.Errorf("iterating %s: %w", collection, err)
		}
		if _, err := snap.Ref.Delete(ctx); err != nil {
			return count, fmt.Errorf("deleting %s/%s: %w", collection, snap.Ref.ID, err)
		}
		count++
	}
}

type writeBatch struct {
	c   *Client
	ops []func(b *firestore.WriteBatch)
}

func (c *Client) Batch() store.WriteBatch {
	return &writeBatch{c: c}
}

func (b *writeBatch) Set(collection, id string, doc store.Document, merge bool) {
	b.ops = append(b.ops, func(wb *firestore.WriteBatch) {
		ref := b.c.fs.Collection(collection).Doc(id)
		if merge {
			wb.Set(ref, translate(doc), firestore.MergeAll)
			return
		}
		wb.Set(ref, translate(doc))
	})
}

func (b *writeBatch) Add(collection string, doc store.Document) {
	b.ops = append(b.ops, func(wb *firestore.WriteBatch) {
		wb.Set(b.c.fs.Collection(collection).NewDoc(), translate(doc))
	})
}

func (b *writeBatch) Commit(ctx context.Context) error {
	if len(b.ops) == 0 {
		return nil
	}
	wb := b.c.fs.Batch()
	for _, op := range b.ops {
		op(wb)
	}
	b.ops = nil
	if _, err := wb.Commit(ctx); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

// --- IdentityProvider ---

func (c *Client) UserByEmail(ctx context.Context, email string) (*store.User, error) {
	rec, err := c.auth.GetUserByEmail(ctx, email)
	if auth.IsUserNotFound(err) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", email, err)
	}
	return &store.User{UID: rec.UID, Email: rec.Email, DisplayName: rec.DisplayName}, nil
}

func (c *Client) CreateUser(ctx context.Context, email, password, displayName string) (*store.User, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)
	rec, err := c.auth.CreateUser(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("creating account %s: %w", email, err)
	}
	return &store.User{UID: rec.UID, Email: rec.Email, DisplayName: rec.DisplayName}, nil
}

func (c *Client) DeleteUser(ctx context.Context, uid string) error {
	if err := c.auth.DeleteUser(ctx, uid); err != nil {
		if auth.IsUserNotFound(err) {
			return store.ErrUserNotFound
		}
		return fmt.Errorf("deleting account %s: %w", uid, err)
	}
	return nil
}

func (c *Client) ListUsers(ctx context.Context) ([]store.User, error) {
	it := c.auth.Users(ctx, "")
	var out []store.User
	for {
		rec, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("listing accounts: %w", err)
		}
		out = append(out, store.User{UID: rec.UID, Email: rec.Email, DisplayName: rec.DisplayName})
	}
}

var (
	_ store.DocumentStore    = (*Client)(nil)
	_ store.IdentityProvider = (*Client)(nil)
)
