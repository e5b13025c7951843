package file

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// collection stores one entity kind as JSON files under root/<name>/<id>.json.
type collection[T any] struct {
	mu   sync.RWMutex
	dir  string
	name string
}

func newCollection[T any](root, name string) *collection[T] {
	return &collection[T]{
		dir:  path.Join(root, name),
		name: name,
	}
}

// get returns nil when the file does not exist.
func (c *collection[T]) get(id string) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.read(id)
}

func (c *collection[T]) read(id string) (*T, error) {
	filePath := filepath.Clean(path.Join(c.dir, id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch %s %s: %w", c.name, id, err)
	}

	var entity T

	err = json.Unmarshal(body, &entity)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s %s: %w", c.name, id, err)
	}

	return &entity, nil
}

func (c *collection[T]) all() ([]*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	jsonFiles, err := fs.Glob(os.DirFS(c.dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s files: %w", c.name, err)
	}

	entities := make([]*T, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := strings.TrimSuffix(file, ".json")

		entity, err := c.read(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s %s: %w", c.name, id, err)
		}

		if entity != nil {
			entities = append(entities, entity)
		}
	}

	return entities, nil
}

func (c *collection[T]) filter(keep func(*T) bool) ([]*T, error) {
	entities, err := c.all()
	if err != nil {
		return nil, err
	}

	filtered := make([]*T, 0, len(entities))

	for _, entity := range entities {
		if keep(entity) {
			filtered = append(filtered, entity)
		}
	}

	return filtered, nil
}

func (c *collection[T]) first(match func(*T) bool) (*T, error) {
	entities, err := c.filter(match)
	if err != nil {
		return nil, err
	}

	if len(entities) == 0 {
		return nil, nil
	}

	return entities[0], nil
}

func (c *collection[T]) save(id string, entity *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := os.MkdirAll(c.dir, 0750)
	if err != nil {
		return fmt.Errorf("failed to create %s directory: %w", c.name, err)
	}

	data, err := json.MarshalIndent(entity, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s %s: %w", c.name, id, err)
	}

	return os.WriteFile(path.Join(c.dir, id+".json"), data, 0600)
}

func (c *collection[T]) delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := os.Remove(path.Join(c.dir, id+".json"))
	if err != nil && os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", c.name, id, err)
	}

	return nil
}
