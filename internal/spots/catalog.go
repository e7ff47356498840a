package spots

import (
	"encoding/json"
	"fmt"
	"os"
)

// Spot is static reference data for one kitesurf spot. The catalog is
// loaded once at startup and read-only afterwards.
type Spot struct {
	SpotID    string  `json:"spotId"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Catalog holds the spot list and an index by id.
type Catalog struct {
	spots []Spot
	byID  map[string]Spot
}

// Load reads the spot catalog from a JSON file.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spot catalog: %w", err)
	}

	var list []Spot
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("parse spot catalog: %w", err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("spot catalog %s is empty", path)
	}

	return New(list), nil
}

// New builds a catalog from an in-memory spot list.
func New(list []Spot) *Catalog {
	byID := make(map[string]Spot, len(list))
	for _, s := range list {
		byID[s.SpotID] = s
	}
	return &Catalog{spots: list, byID: byID}
}

// Get returns the spot with the given id.
func (c *Catalog) Get(id string) (Spot, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// All returns the full spot list in catalog order.
func (c *Catalog) All() []Spot {
	return c.spots
}

// Len returns the number of spots in the catalog.
func (c *Catalog) Len() int {
	return len(c.spots)
}
