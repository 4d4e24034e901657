package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"blog-autowriter-be/internal/repository/contract"
	"blog-autowriter-be/internal/repository/specification"
	"blog-autowriter-be/internal/repository/unitofwork"

	"github.com/patrickmn/go-cache"
)

// Store holds every table in process memory. It backs DB_DRIVER=memory and
// the service tests. Transactions are serialized and undone on Rollback.
type Store struct {
	profiles   *cache.Cache
	identities *cache.Cache
	credits    *cache.Cache
	incidents  *cache.Cache
	posts      *cache.Cache
	messages   *cache.Cache

	txMu  sync.Mutex
	rowMu sync.Mutex
	seq   atomic.Int64
}

func NewStore() *Store {
	return &Store{
		profiles:   cache.New(cache.NoExpiration, 0),
		identities: cache.New(cache.NoExpiration, 0),
		credits:    cache.New(cache.NoExpiration, 0),
		incidents:  cache.New(cache.NoExpiration, 0),
		posts:      cache.New(cache.NoExpiration, 0),
		messages:   cache.New(cache.NoExpiration, 0),
	}
}

type row struct {
	value     interface{}
	createdAt time.Time
	seq       int64
}

func (s *Store) newRow(value interface{}, createdAt time.Time) row {
	return row{value: value, createdAt: createdAt, seq: s.seq.Add(1)}
}

type RepositoryFactory struct {
	store *Store
}

func NewRepositoryFactory(store *Store) unitofwork.RepositoryFactory {
	return &RepositoryFactory{store: store}
}

func (f *RepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

// UnitOfWork records an undo entry for every write made after Begin.
type UnitOfWork struct {
	store *Store
	inTx  bool
	undo  []func()
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.inTx {
		return fmt.Errorf("transaction already started")
	}
	u.store.txMu.Lock()
	u.inTx = true
	u.undo = nil
	return nil
}

func (u *UnitOfWork) Commit() error {
	if !u.inTx {
		return fmt.Errorf("no transaction to commit")
	}
	u.undo = nil
	u.inTx = false
	u.store.txMu.Unlock()
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if !u.inTx {
		return fmt.Errorf("no transaction to rollback")
	}
	for i := len(u.undo) - 1; i >= 0; i-- {
		u.undo[i]()
	}
	u.undo = nil
	u.inTx = false
	u.store.txMu.Unlock()
	return nil
}

// record remembers how to restore key in c to its state before a write.
func (u *UnitOfWork) record(c *cache.Cache, key string) {
	if !u.inTx {
		return
	}
	prev, existed := c.Get(key)
	u.undo = append(u.undo, func() {
		if existed {
			c.Set(key, prev, cache.NoExpiration)
		} else {
			c.Delete(key)
		}
	})
}

func (u *UnitOfWork) ProfileRepository() contract.ProfileRepository {
	return &ProfileRepository{uow: u}
}

func (u *UnitOfWork) IdentityRepository() contract.IdentityRepository {
	return &IdentityRepository{uow: u}
}

func (u *UnitOfWork) CreditTransactionRepository() contract.CreditTransactionRepository {
	return &CreditTransactionRepository{uow: u}
}

func (u *UnitOfWork) LedgerIncidentRepository() contract.LedgerIncidentRepository {
	return &LedgerIncidentRepository{uow: u}
}

func (u *UnitOfWork) GeneratedPostRepository() contract.GeneratedPostRepository {
	return &GeneratedPostRepository{uow: u}
}

func (u *UnitOfWork) SupportMessageRepository() contract.SupportMessageRepository {
	return &SupportMessageRepository{uow: u}
}

// query filters the rows of c with every Matcher spec, then applies ordering
// and pagination. Only created_at ordering is understood; insertion order
// breaks ties.
func query(c *cache.Cache, specs ...specification.Specification) []interface{} {
	var rows []row
	for _, item := range c.Items() {
		r := item.Object.(row)
		if matchesAll(r.value, specs) {
			rows = append(rows, r)
		}
	}

	desc := false
	var page *specification.Pagination
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.OrderBy:
			if s.Field == "created_at" {
				desc = s.Desc
			}
		case specification.Pagination:
			p := s
			page = &p
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.createdAt.Equal(b.createdAt) {
			if desc {
				return a.createdAt.After(b.createdAt)
			}
			return a.createdAt.Before(b.createdAt)
		}
		if desc {
			return a.seq > b.seq
		}
		return a.seq < b.seq
	})

	if page != nil {
		start := page.Offset
		if start > len(rows) {
			start = len(rows)
		}
		rows = rows[start:]
		if page.Limit > 0 && page.Limit < len(rows) {
			rows = rows[:page.Limit]
		}
	}

	out := make([]interface{}, len(rows))
	for i, r := range rows {
		out[i] = r.value
	}
	return out
}

func matchesAll(value interface{}, specs []specification.Specification) bool {
	for _, spec := range specs {
		if m, ok := spec.(specification.Matcher); ok && !m.Match(value) {
			return false
		}
	}
	return true
}

func first(c *cache.Cache, specs ...specification.Specification) interface{} {
	found := query(c, specs...)
	if len(found) == 0 {
		return nil
	}
	return found[0]
}
