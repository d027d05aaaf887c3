package itinerary

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
)

//go:embed catalog.yaml
var catalogYAML []byte

var (
	catalogOnce sync.Once
	catalog     []travel.Activity
	catalogErr  error
)

// Catalog returns a copy of the built-in Dubai activity catalog.
func Catalog() ([]travel.Activity, error) {
	catalogOnce.Do(func() {
		catalog, catalogErr = parseCatalog(catalogYAML)
	})
	if catalogErr != nil {
		return nil, catalogErr
	}
	out := make([]travel.Activity, len(catalog))
	for i, a := range catalog {
		out[i] = a.Clone()
	}
	return out, nil
}

func parseCatalog(raw []byte) ([]travel.Activity, error) {
	var doc struct {
		Activities []travel.Activity `yaml:"activities"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse activity catalog: %w", err)
	}
	seen := make(map[string]bool, len(doc.Activities))
	for _, a := range doc.Activities {
		if a.ID == "" || a.Name == "" {
			return nil, fmt.Errorf("catalog activity missing id or name: %+v", a)
		}
		if seen[a.ID] {
			return nil, fmt.Errorf("duplicate catalog activity id %q", a.ID)
		}
		seen[a.ID] = true
	}
	return doc.Activities, nil
}
