package items

import (
	"encoding/json"
	"errors"
	"os"
	"sync"

	"github.com/sta4888/TZL/internal/model"
	"github.com/sta4888/TZL/internal/repo"
	"go.uber.org/zap"
)

// Repository holds the master list of purchasable items. All access goes
// through one mutex so readers always see a consistent list while the
// administrative side mutates it. Ids are strictly monotonic over the
// repository's lifetime and are never reused after a removal.
type Repository struct {
	mu     sync.Mutex
	path   string
	items  []model.Item
	lastID int
}

func New(path string) (*Repository, error) {
	r := &Repository{path: path}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// normalize assigns ids to entries that are missing one, using the
// max-seen-plus-one policy. lastID carries the highest id ever issued so
// a reload cannot hand out an id that was already seen.
func normalize(entries []model.Item, lastID int) ([]model.Item, int) {
	next := lastID + 1
	if next < 1 {
		next = 1
	}

	res := make([]model.Item, 0, len(entries))
	for _, it := range entries {
		if it.ID == 0 {
			it.ID = next
		}
		if it.ID >= next {
			next = it.ID + 1
		}
		res = append(res, it)
	}
	return res, next - 1
}

// Reload replaces the in-memory list wholesale from the backing file.
// A missing file yields an empty catalog.
func (r *Repository) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		r.items = nil
		return nil
	} else if err != nil {
		return err
	}

	var entries []model.Item
	if err = json.Unmarshal(data, &entries); err != nil {
		return err
	}

	r.items, r.lastID = normalize(entries, r.lastID)
	zap.L().Info(
		"catalog loaded",
		zap.String("path", r.path), zap.Int("items", len(r.items)),
	)
	return nil
}

// Persist writes the current list back to the backing file.
func (r *Repository) Persist() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(r.items, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0644)
}

// ListAll returns a snapshot copy, safe to hand out concurrently with
// mutation.
func (r *Repository) ListAll() []model.Item {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := make([]model.Item, len(r.items))
	copy(res, r.items)
	return res
}

func (r *Repository) Get(itemID int) (*model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, it := range r.items {
		if it.ID == itemID {
			res := it
			return &res, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *Repository) Add(name string, price int) model.Item {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	it := model.Item{ID: r.lastID, Name: name, Price: price}
	r.items = append(r.items, it)
	return it
}

func (r *Repository) Update(itemID int, name string, price int) (*model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].ID == itemID {
			r.items[i].Name = name
			r.items[i].Price = price
			res := r.items[i]
			return &res, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *Repository) Remove(itemID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].ID == itemID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return true
		}
	}
	return false
}
