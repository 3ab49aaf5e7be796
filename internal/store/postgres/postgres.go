// Package postgres is the self-hosted backend: documents live as JSONB rows
// keyed by (collection, id), accounts in an identities table. It satisfies
// the same contracts as the hosted backend.
package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/claude/fixfit/internal/store"
)

// DB wraps a pgxpool.Pool and implements the document-store and
// identity-provider contracts.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new DB with a connection pool.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}

// RunMigrations applies all pending migrations from the given directory.
func RunMigrations(dsn, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// encode marshals a document to JSONB, resolving server-timestamp markers.
// Postgres has no deferred write timestamp for a JSONB field, so the marker
// resolves to the connection-side clock at encode time.
func encode(doc store.Document) ([]byte, error) {
	out := make(map[string]any, len(doc))
	now := time.Now().UTC()
	for k, v := range doc {
		if store.IsServerTimestamp(v) {
			out[k] = now
			continue
		}
		out[k] = v
	}
	return json.Marshal(out)
}

func (db *DB) Set(ctx context.Context, collection, id string, doc store.Document, merge bool) error {
	data, err := encode(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	update := `data = EXCLUDED.data`
	if merge {
		update = `data = documents.data || EXCLUDED.data`
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)
		 ON CONFLICT (collection, id) DO UPDATE SET `+update,
		collection, id, data)
	if err != nil {
		return fmt.Errorf("writing %s/%s: %w", collection, id, err)
	}
	return nil
}

func (db *DB) Add(ctx context.Context, collection string, doc store.Document) (string, error) {
	id := uuid.NewString()
	if err := db.Set(ctx, collection, id, doc, false); err != nil {
		return "", err
	}
	return id, nil
}

func (db *DB) Get(ctx context.Context, collection, id string) (store.Document, error) {
	var data []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", collection, id, err)
	}
	return decode(data)
}

func decode(data []byte) (store.Document, error) {
	var doc store.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return doc, nil
}

func (db *DB) List(ctx context.Context, collection string) ([]store.Snapshot, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, data FROM documents WHERE collection = $1 ORDER BY id`,
		collection)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

func (db *DB) ListWhere(ctx context.Context, collection, field, value string) ([]store.Snapshot, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, data FROM documents WHERE collection = $1 AND data->>$2 = $3 ORDER BY id`,
		collection, field, value)
	if err != nil {
		return nil, fmt.Errorf("querying %s by %s: %w", collection, field, err)
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

func scanSnapshots(rows pgx.Rows) ([]store.Snapshot, error) {
	var out []store.Snapshot
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc, err := decode(data)
		if err != nil {
			return nil, err
		}
		out = append(out, store.Snapshot{ID: id, Data: doc})
	}
	return out, rows.Err()
}

func (db *DB) Delete(ctx context.Context, collection, id string) error {
	_, err := db.Pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	return nil
}

func (db *DB) DeleteAll(ctx context.Context, collection string) (int, error) {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1`, collection)
	if err != nil {
		return 0, fmt.Errorf("clearing %s: %w", collection, err)
	}
	return int(tag.RowsAffected()), nil
}

type batchOp struct {
	collection string
	id         string
	doc        store.Document
	merge      bool
	add        bool
}

type writeBatch struct {
	db  *DB
	ops []batchOp
}

func (db *DB) Batch() store.WriteBatch {
	return &writeBatch{db: db}
}

func (b *writeBatch) Set(collection, id string, doc store.Document, merge bool) {
	b.ops = append(b.ops, batchOp{collection: collection, id: id, doc: doc, merge: merge})
}

func (b *writeBatch) Add(collection string, doc store.Document) {
	b.ops = append(b.ops, batchOp{collection: collection, doc: doc, add: true})
}

// Commit applies the batch in one transaction.
func (b *writeBatch) Commit(ctx context.Context) error {
	tx, err := b.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("starting batch: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, op := range b.ops {
		id := op.id
		if op.add {
			id = uuid.NewString()
		}
		data, err := encode(op.doc)
		if err != nil {
			return fmt.Errorf("encoding document: %w", err)
		}
		update := `data = EXCLUDED.data`
		if op.merge {
			update = `data = documents.data || EXCLUDED.data`
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)
			 ON CONFLICT (collection, id) DO UPDATE SET `+update,
			op.collection, id, data); err != nil {
			return fmt.Errorf("writing %s/%s: %w", op.collection, id, err)
		}
	}

	b.ops = nil
	return tx.Commit(ctx)
}

// --- IdentityProvider ---

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (db *DB) UserByEmail(ctx context.Context, email string) (*store.User, error) {
	var u store.User
	err := db.Pool.QueryRow(ctx,
		`SELECT uid, email, display_name FROM identities WHERE lower(email) = lower($1)`,
		email).Scan(&u.UID, &u.Email, &u.DisplayName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up identity: %w", err)
	}
	return &u, nil
}

func (db *DB) CreateUser(ctx context.Context, email, password, displayName string) (*store.User, error) {
	uid := uuid.NewString()
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO identities (uid, email, display_name, password_hash) VALUES ($1, $2, $3, $4)`,
		uid, email, displayName, hashPassword(password))
	if err != nil {
		return nil, fmt.Errorf("creating identity %s: %w", email, err)
	}
	return &store.User{UID: uid, Email: email, DisplayName: displayName}, nil
}

func (db *DB) DeleteUser(ctx context.Context, uid string) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM identities WHERE uid = $1`, uid)
	if err != nil {
		return fmt.Errorf("deleting identity %s: %w", uid, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

func (db *DB) ListUsers(ctx context.Context) ([]store.User, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT uid, email, display_name FROM identities ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("listing identities: %w", err)
	}
	defer rows.Close()

	var out []store.User
	for rows.Next() {
		var u store.User
		if err := rows.Scan(&u.UID, &u.Email, &u.DisplayName); err != nil {
			return nil, fmt.Errorf("scanning identity: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

var (
	_ store.DocumentStore    = (*DB)(nil)
	_ store.IdentityProvider = (*DB)(nil)
)
