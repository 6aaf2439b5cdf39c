package simulator

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"sync"

	"github.com/ashureev/ajiwai-labs/internal/domain"
	"gopkg.in/yaml.v3"
)

// ErrEmptyCatalog is returned when a catalog has no scenarios.
var ErrEmptyCatalog = errors.New("scenario catalog is empty")

// Catalog is an immutable list of scenarios with a seedable picker.
type Catalog struct {
	scenarios []domain.Scenario

	mu  sync.Mutex
	rng *rand.Rand
}

type catalogFile struct {
	Scenarios []domain.Scenario `yaml:"scenarios"`
}

// NewCatalog copies scenarios into a catalog. A zero seed draws a random one.
func NewCatalog(scenarios []domain.Scenario, seed uint64) (*Catalog, error) {
	if len(scenarios) == 0 {
		return nil, ErrEmptyCatalog
	}
	for i, sc := range scenarios {
		if strings.TrimSpace(sc.Issue) == "" || strings.TrimSpace(sc.OpeningLine) == "" {
			return nil, fmt.Errorf("scenario %d: issue and opening_line are required", i)
		}
	}

	if seed == 0 {
		seed = rand.Uint64()
	}

	return &Catalog{
		scenarios: append([]domain.Scenario(nil), scenarios...),
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}, nil
}

// LoadCatalog reads a YAML catalog from path, or uses the built-in scenarios
// when path is empty.
func LoadCatalog(path string, seed uint64) (*Catalog, error) {
	if path == "" {
		return NewCatalog(domain.DefaultScenarios, seed)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario catalog: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scenario catalog %s: %w", path, err)
	}

	c, err := NewCatalog(f.Scenarios, seed)
	if err != nil {
		return nil, fmt.Errorf("scenario catalog %s: %w", path, err)
	}
	return c, nil
}

// Pick draws one scenario uniformly at random.
func (c *Catalog) Pick() domain.Scenario {
	c.mu.Lock()
	i := c.rng.IntN(len(c.scenarios))
	c.mu.Unlock()
	return c.scenarios[i]
}

// Scenarios returns a copy of every scenario in catalog order.
func (c *Catalog) Scenarios() []domain.Scenario {
	return append([]domain.Scenario(nil), c.scenarios...)
}

// Len returns the number of scenarios.
func (c *Catalog) Len() int {
	return len(c.scenarios)
}
