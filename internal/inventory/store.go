// Package inventory holds the Item and Tag entities and the Store that
// callers use to persist and retrieve them.
package inventory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/eleven-am/inventory/internal/logger"
	"github.com/eleven-am/inventory/internal/orm"
)

// ErrItemNotFound is returned when no item has the requested id
var ErrItemNotFound = fmt.Errorf("item %w", orm.ErrNotFound)

// ItemRepository is the generic repository specialised to items
type ItemRepository = orm.Repository[Item, string, ItemFilter, *Item]

// TagRepository is the generic repository specialised to tags
type TagRepository = orm.Repository[Tag, TagKey, TagFilter, *Tag]

// Store is the boundary the outer layers talk to. Every call holds the
// store's lock for its whole duration, so the connection is never used by
// two callers at once.
type Store struct {
	mu    sync.Mutex
	db    *sqlx.DB
	items *ItemRepository
	log   logger.Logger
}

// NewStore wraps db. Statements are logged at debug level.
func NewStore(db *sqlx.DB) *Store {
	conn := orm.NewConn(db)
	conn.Use(orm.LoggingMiddleware(logger.ORM()))

	return &Store{
		db:    db,
		items: orm.NewRepository[Item, string, ItemFilter](conn),
		log:   logger.Store(),
	}
}

// Migrate creates the schema if it does not exist yet
func (s *Store) Migrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return CreateSchema(ctx, s.db)
}

// Get returns the item with the given id, or ErrItemNotFound
func (s *Store) Get(ctx context.Context, id string) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.get(ctx, s.items, id)
}

func (s *Store) get(ctx context.Context, repo *ItemRepository, id string) (*Item, error) {
	item, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return item, nil
}

// GetAll returns every item
func (s *Store) GetAll(ctx context.Context) ([]*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.items.GetAll(ctx)
}

// GetBy returns the items matching filter
func (s *Store) GetBy(ctx context.Context, filter ItemFilter) ([]*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.items.GetBy(ctx, filter)
}

// Put inserts or replaces item together with its tags
func (s *Store) Put(ctx context.Context, item *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.items.Put(ctx, item); err != nil {
		return err
	}

	s.log.Info("item saved", "id", item.ID(), "tags", len(item.tags))
	return nil
}

// Create builds a new item and saves it
func (s *Store) Create(ctx context.Context, description string, isContainer bool, parent *string, tags map[string]string) (*Item, error) {
	item := NewItem(description, isContainer, parent)
	for k, v := range tags {
		item.SetTag(k, v)
	}

	if err := s.Put(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// SetTag loads an item, sets one tag and saves it in a single transaction
func (s *Store) SetTag(ctx context.Context, id, key, value string) (*Item, error) {
	return s.update(ctx, id, func(item *Item) {
		item.SetTag(key, value)
	})
}

// CheckOut stamps the item as checked out at the given time
func (s *Store) CheckOut(ctx context.Context, id string, at time.Time) (*Item, error) {
	return s.update(ctx, id, func(item *Item) {
		item.CheckOut(at)
	})
}

// CheckIn clears the checked-out stamp
func (s *Store) CheckIn(ctx context.Context, id string) (*Item, error) {
	return s.update(ctx, id, func(item *Item) {
		item.CheckIn()
	})
}

// Destroy stamps the item as destroyed at the given time
func (s *Store) Destroy(ctx context.Context, id string, at time.Time) (*Item, error) {
	return s.update(ctx, id, func(item *Item) {
		item.Destroy(at)
	})
}

// update runs a read-modify-write on one item inside a transaction
func (s *Store) update(ctx context.Context, id string, mutate func(*Item)) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated *Item
	err := s.items.Conn().WithTransaction(ctx, func(tx *orm.Conn) error {
		repo := s.items.WithConn(tx)

		item, err := s.get(ctx, repo, id)
		if err != nil {
			return err
		}

		mutate(item)

		if err := repo.Put(ctx, item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("item updated", "id", id)
	return updated, nil
}
