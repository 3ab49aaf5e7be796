package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Memory is an in-process DocumentStore and IdentityProvider used by tests
// and by nothing else. It resolves ServerTimestamp to the current time the
// way the real backends do.
type Memory struct {
	collections map[string]map[string]Document
	users       []User
	nextID      int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: map[string]map[string]Document{}}
}

func (m *Memory) coll(name string) map[string]Document {
	c, ok := m.collections[name]
	if !ok {
		c = map[string]Document{}
		m.collections[name] = c
	}
	return c
}

func resolveTimestamps(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		if _, ok := v.(serverTimestamp); ok {
			out[k] = time.Now().UTC()
			continue
		}
		out[k] = v
	}
	return out
}

func (m *Memory) Set(_ context.Context, collection, id string, doc Document, merge bool) error {
	c := m.coll(collection)
	doc = resolveTimestamps(doc)
	if existing, ok := c[id]; ok && merge {
		for k, v := range doc {
			existing[k] = v
		}
		return nil
	}
	c[id] = doc
	return nil
}

func (m *Memory) Add(_ context.Context, collection string, doc Document) (string, error) {
	m.nextID++
	id := fmt.Sprintf("gen-%04d", m.nextID)
	m.coll(collection)[id] = resolveTimestamps(doc)
	return id, nil
}

func (m *Memory) Get(_ context.Context, collection, id string) (Document, error) {
	if doc, ok := m.coll(collection)[id]; ok {
		return doc, nil
	}
	return nil, ErrNotFound
}

func (m *Memory) List(_ context.Context, collection string) ([]Snapshot, error) {
	c := m.coll(collection)
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Snapshot, 0, len(ids))
	for _, id := range ids {
		out = append(out, Snapshot{ID: id, Data: c[id]})
	}
	return out, nil
}

func (m *Memory) ListWhere(ctx context.Context, collection, field, value string) ([]Snapshot, error) {
	all, _ := m.List(ctx, collection)
	var out []Snapshot
	for _, snap := range all {
		if s, ok := snap.Data[field].(string); ok && s == value {
			out = append(out, snap)
		}
	}
	return out, nil
}

func (m *Memory) Delete(_ context.Context, collection, id string) error {
	delete(m.coll(collection), id)
	return nil
}

func (m *Memory) DeleteAll(_ context.Context, collection string) (int, error) {
	n := len(m.coll(collection))
	m.collections[collection] = map[string]Document{}
	return n, nil
}

type memoryBatch struct {
	m   *Memory
	ops []func(ctx context.Context) error
}

func (m *Memory) Batch() WriteBatch {
	return &memoryBatch{m: m}
}

func (b *memoryBatch) Set(collection, id string, doc Document, merge bool) {
	b.ops = append(b.ops, func(ctx context.Context) error {
		return b.m.Set(ctx, collection, id, doc, merge)
	})
}

func (b *memoryBatch) Add(collection string, doc Document) {
	b.ops = append(b.ops, func(ctx context.Context) error {
		_, err := b.m.Add(ctx, collection, doc)
		return err
	})
}

func (b *memoryBatch) Commit(ctx context.Context) error {
	for _, op := range b.ops {
		if err := op(ctx); err != nil {
			return err
		}
	}
	b.ops = nil
	return nil
}

// --- IdentityProvider ---

func (m *Memory) UserByEmail(_ context.Context, email string) (*User, error) {
	for i := range m.users {
		if strings.EqualFold(m.users[i].Email, email) {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *Memory) CreateUser(_ context.Context, email, password, displayName string) (*User, error) {
	for i := range m.users {
		if strings.EqualFold(m.users[i].Email, email) {
			return nil, fmt.Errorf("memory: user %s already exists", email)
		}
	}
	_ = password
	m.nextID++
	u := User{UID: fmt.Sprintf("user-%04d", m.nextID), Email: email, DisplayName: displayName}
	m.users = append(m.users, u)
	return &u, nil
}

func (m *Memory) DeleteUser(_ context.Context, uid string) error {
	for i := range m.users {
		if m.users[i].UID == uid {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return nil
		}
	}
	return ErrUserNotFound
}

func (m *Memory) ListUsers(_ context.Context) ([]User, error) {
	out := make([]User, len(m.users))
	copy(out, m.users)
	return out, nil
}

var (
	_ DocumentStore    = (*Memory)(nil)
	_ IdentityProvider = (*Memory)(nil)
)
