package tarot

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var catalogFS embed.FS

// Catalog is the static reference data shipped with the binary.
type Catalog struct {
	Cards   []Card      `yaml:"cards"`
	Spreads []Spread    `yaml:"spreads"`
	Styles  []StyleInfo `yaml:"styles"`
}

var (
	catalogOnce sync.Once
	catalog     *Catalog
	catalogErr  error
)

// LoadCatalog parses the embedded YAML files once and returns the shared catalog.
// Callers must treat the result as read-only.
func LoadCatalog() (*Catalog, error) {
	catalogOnce.Do(func() {
		catalog, catalogErr = parseCatalog()
	})
	return catalog, catalogErr
}

func parseCatalog() (*Catalog, error) {
	var c Catalog
	for _, name := range []string{"data/cards.yaml", "data/spreads.yaml", "data/styles.yaml"} {
		part, err := readCatalogFile(name)
		if err != nil {
			return nil, err
		}
		c.Cards = append(c.Cards, part.Cards...)
		c.Spreads = append(c.Spreads, part.Spreads...)
		c.Styles = append(c.Styles, part.Styles...)
	}
	for i := range c.Cards {
		c.Cards[i].Upright = true
	}
	return &c, nil
}

func readCatalogFile(name string) (*Catalog, error) {
	raw, err := catalogFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("tarot catalog: read %s: %w", name, err)
	}
	var part Catalog
	if err := yaml.Unmarshal(raw, &part); err != nil {
		return nil, fmt.Errorf("tarot catalog: parse %s: %w", name, err)
	}
	return &part, nil
}

// Spread returns the spread with the given id.
func (c *Catalog) Spread(id string) (Spread, error) {
	for _, s := range c.Spreads {
		if s.ID == id {
			return s, nil
		}
	}
	return Spread{}, fmt.Errorf("%w: %s", ErrSpreadNotFound, id)
}

// Card returns a copy of the card with the given id.
func (c *Catalog) Card(id int) (Card, error) {
	for _, card := range c.Cards {
		if card.ID == id {
			return card, nil
		}
	}
	return Card{}, fmt.Errorf("%w: %d", ErrCardNotFound, id)
}

// Style returns display metadata for a style tag.
func (c *Catalog) Style(id Style) (StyleInfo, bool) {
	for _, s := range c.Styles {
		if s.ID == id {
			return s, true
		}
	}
	return StyleInfo{}, false
}
