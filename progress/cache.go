package progress

import (
	"sort"
	"time"

	"github.com/metafates/gache"
	"github.com/reelkit/reel/filesystem"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// CacheStore keeps every resume point in one JSON file.
type CacheStore struct {
	cacher      *gache.Cache[map[string]*Entry]
	minPosition time.Duration
}

// NewCacheStore opens the store at path. Positions below minPosition are not worth
// resuming from and are removed instead of recorded.
func NewCacheStore(path string, minPosition time.Duration) *CacheStore {
	return &CacheStore{
		cacher: gache.New[map[string]*Entry](
			&gache.Options{
				Path:       path,
				FileSystem: &filesystem.GacheFs{},
			},
		),
		minPosition: minPosition,
	}
}

// All returns every stored entry.
func (c *CacheStore) All() (map[string]*Entry, error) {
	cached, expired, err := c.cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Entry), nil
	}
	return cached, nil
}

// IDs returns stored ids, most recently updated first.
func (c *CacheStore) IDs() ([]string, error) {
	all, err := c.All()
	if err != nil {
		return nil, err
	}

	ids := lo.Keys(all)
	sort.Slice(ids, func(i, j int) bool {
		return all[ids[i]].UpdatedAt.After(all[ids[j]].UpdatedAt)
	})
	return ids, nil
}

func (c *CacheStore) Get(id string) (mo.Option[time.Duration], error) {
	all, err := c.All()
	if err != nil {
		return mo.None[time.Duration](), err
	}

	entry, ok := all[id]
	if !ok {
		return mo.None[time.Duration](), nil
	}
	return mo.Some(entry.Position), nil
}

func (c *CacheStore) Record(id string, pos time.Duration) error {
	if pos < c.minPosition {
		return c.Remove(id)
	}

	all, err := c.All()
	if err != nil {
		return err
	}

	all[id] = &Entry{Position: pos, UpdatedAt: time.Now()}
	return c.cacher.Set(all)
}

func (c *CacheStore) Remove(id string) error {
	all, err := c.All()
	if err != nil {
		return err
	}

	if _, ok := all[id]; !ok {
		return nil
	}

	delete(all, id)
	return c.cacher.Set(all)
}

// Clear drops every entry.
func (c *CacheStore) Clear() error {
	return c.cacher.Set(make(map[string]*Entry))
}
