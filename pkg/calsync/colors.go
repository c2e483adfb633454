package calsync

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// CategoryState tracks the color assignment for one task category.
type CategoryState struct {
	ColorID      string    `json:"color_id"`
	LastModified time.Time `json:"last_modified"`
}

// ColorCache maps task categories onto the eleven Google Calendar event
// colors, evicting the least recently used category when all slots are
// taken.
type ColorCache struct {
	Path       string
	Categories map[string]*CategoryState `json:"categories"`
	dirty      bool
}

// NewColorCache loads the cache stored at path, or starts empty.
func NewColorCache(path string) (*ColorCache, error) {
	cache := &ColorCache{
		Path:       path,
		Categories: make(map[string]*CategoryState),
	}
	if _, err := os.Stat(path); err == nil {
		if err := cache.Load(); err != nil {
			return nil, err
		}
	}
	return cache, nil
}

func (c *ColorCache) Load() error {
	f, err := os.Open(c.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(&c.Categories)
}

func (c *ColorCache) Save() error {
	if !c.dirty {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0700); err != nil {
		return err
	}
	f, err := os.Create(c.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	err = json.NewEncoder(f).Encode(c.Categories)
	if err == nil {
		c.dirty = false
	}
	return err
}

// GetColorID returns the color for a category, assigning one on first use.
// The default category gets the neutral gray.
func (c *ColorCache) GetColorID(category string) string {
	if category == "" || category == "default" {
		return "14"
	}

	if state, exists := c.Categories[category]; exists {
		state.LastModified = time.Now()
		c.dirty = true
		return state.ColorID
	}
	return c.assignColor(category)
}

func (c *ColorCache) assignColor(category string) string {
	used := make(map[string]bool)
	for _, s := range c.Categories {
		used[s.ColorID] = true
	}

	for i := 1; i <= 11; i++ {
		id := strconv.Itoa(i)
		if !used[id] {
			c.Categories[category] = &CategoryState{
				ColorID:      id,
				LastModified: time.Now(),
			}
			c.dirty = true
			return id
		}
	}

	// All slots taken, evict the least recently used category.
	var oldestCategory string
	var oldestTime time.Time
	first := true
	for cat, s := range c.Categories {
		if first || s.LastModified.Before(oldestTime) {
			oldestTime = s.LastModified
			oldestCategory = cat
			first = false
		}
	}

	if oldestCategory != "" {
		recycled := c.Categories[oldestCategory].ColorID
		delete(c.Categories, oldestCategory)
		c.Categories[category] = &CategoryState{
			ColorID:      recycled,
			LastModified: time.Now(),
		}
		c.dirty = true
		return recycled
	}
	return "1"
}
