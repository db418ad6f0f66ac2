package cli

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/sta4888/TZL/internal/model"
)

// ItemCache keeps the last master list received from the server so the
// shop can be browsed between sessions.
type ItemCache struct {
	Path string
}

func (c *ItemCache) Save(items []model.Item) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.Path, data, 0644)
}

// Load returns nil without an error when no cache file exists yet.
func (c *ItemCache) Load() ([]model.Item, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var items []model.Item
	if err = json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}
