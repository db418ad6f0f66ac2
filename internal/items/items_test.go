package items

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sta4888/TZL/internal/model"
	"github.com/sta4888/TZL/internal/repo"
)

func newTestRepo(t *testing.T) (*Repository, string) {
	path := filepath.Join(t.TempDir(), "items.json")
	r, err := New(path)
	require.NoError(t, err)
	return r, path
}

func TestRepository_AddGet(t *testing.T) {
	r, _ := newTestRepo(t)

	sword := r.Add("Sword", 50)
	assert.Equal(t, 1, sword.ID)

	shield := r.Add("Shield", 35)
	assert.Equal(t, 2, shield.ID)

	got, err := r.Get(sword.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sword", got.Name)
	assert.Equal(t, 50, got.Price)

	_, err = r.Get(999)
	assert.Equal(t, repo.ErrNotFound, err)
}

func TestRepository_IDsNotReusedAfterRemoval(t *testing.T) {
	r, _ := newTestRepo(t)

	r.Add("Sword", 50)
	shield := r.Add("Shield", 35)

	require.True(t, r.Remove(shield.ID))
	require.False(t, r.Remove(shield.ID))

	potion := r.Add("Potion", 10)
	assert.Equal(t, 3, potion.ID, "removed ids must not be reused")
}

func TestRepository_Update(t *testing.T) {
	r, _ := newTestRepo(t)

	sword := r.Add("Sword", 50)

	updated, err := r.Update(sword.ID, "Longsword", 75)
	require.NoError(t, err)
	assert.Equal(t, "Longsword", updated.Name)
	assert.Equal(t, 75, updated.Price)

	got, err := r.Get(sword.ID)
	require.NoError(t, err)
	assert.Equal(t, "Longsword", got.Name)

	_, err = r.Update(999, "Ghost", 1)
	assert.Equal(t, repo.ErrNotFound, err)
}

func TestRepository_ListAllIsSnapshot(t *testing.T) {
	r, _ := newTestRepo(t)

	r.Add("Sword", 50)
	list := r.ListAll()
	require.Len(t, list, 1)

	list[0].Name = "mutated"
	got, err := r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Sword", got.Name)
}

func TestRepository_PersistReload(t *testing.T) {
	r, path := newTestRepo(t)

	r.Add("Sword", 50)
	r.Add("Shield", 35)
	require.NoError(t, r.Persist())

	r2, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, r.ListAll(), r2.ListAll())
}

func TestRepository_ReloadAssignsMissingIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.json")
	data := `[{"id":3,"name":"Sword","price":50},{"name":"Shield","price":35}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	r, err := New(path)
	require.NoError(t, err)

	list := r.ListAll()
	require.Len(t, list, 2)
	assert.Equal(t, 3, list[0].ID)
	assert.Equal(t, 4, list[1].ID, "missing id is assigned max seen + 1")

	next := r.Add("Potion", 10)
	assert.Equal(t, 5, next.ID)
}

func TestRepository_ReloadKeepsLifetimeMonotonicIDs(t *testing.T) {
	r, path := newTestRepo(t)

	for i := 0; i < 5; i++ {
		r.Add("Item", 1)
	}

	data := `[{"name":"Fresh","price":1}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	require.NoError(t, r.Reload())

	list := r.ListAll()
	require.Len(t, list, 1)
	assert.Equal(t, 6, list[0].ID, "ids issued before reload must never come back")
}

func TestRepository_MissingFileYieldsEmptyCatalog(t *testing.T) {
	r, err := New(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Empty(t, r.ListAll())
}

func TestNormalize(t *testing.T) {
	entries := []model.Item{
		{Name: "A", Price: 1},
		{ID: 7, Name: "B", Price: 2},
		{Name: "C", Price: 3},
	}

	res, lastID := normalize(entries, 0)
	assert.Equal(t, 1, res[0].ID)
	assert.Equal(t, 7, res[1].ID)
	assert.Equal(t, 8, res[2].ID)
	assert.Equal(t, 8, lastID)

	res, lastID = normalize([]model.Item{{Name: "D", Price: 4}}, 10)
	assert.Equal(t, 11, res[0].ID)
	assert.Equal(t, 11, lastID)

	res, lastID = normalize(nil, 3)
	assert.Empty(t, res)
	assert.Equal(t, 3, lastID)
}
