package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/dougsko/rigd/pkg/rig"
)

// Catalog resolves model identifiers to capability descriptors. The
// builtin table covers common models from all five supported
// manufacturers; site-specific models load from a YAML overlay file.
// Capabilities are immutable after load and shared by reference.
type Catalog struct {
	models map[string]*rig.Capabilities
}

// New creates a catalog with the builtin model table
func New() *Catalog {
	c := &Catalog{models: make(map[string]*rig.Capabilities)}
	for i := range builtinModels {
		m := builtinModels[i]
		c.models[strings.ToLower(m.ModelID)] = &m
	}
	return c
}

// LoadOverlay merges model definitions from a YAML file. Overlay
// entries replace builtin entries with the same model ID.
func (c *Catalog) LoadOverlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog overlay: %w", err)
	}

	var overlay struct {
		Models []rig.Capabilities `yaml:"models"`
	}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("failed to parse catalog overlay: %w", err)
	}

	for i := range overlay.Models {
		m := overlay.Models[i]
		if m.ModelID == "" {
			return fmt.Errorf("catalog overlay entry %d has no model id", i)
		}
		if err := checkModel(&m); err != nil {
			return fmt.Errorf("catalog overlay model %s: %w", m.ModelID, err)
		}
		c.models[strings.ToLower(m.ModelID)] = &m
	}
	return nil
}

// Lookup returns the capabilities for a model identifier
func (c *Catalog) Lookup(model string) (*rig.Capabilities, error) {
	caps, ok := c.models[strings.ToLower(model)]
	if !ok {
		return nil, fmt.Errorf("unknown radio model %q", model)
	}
	return caps, nil
}

// Models returns all known model identifiers, sorted
func (c *Catalog) Models() []string {
	out := make([]string, 0, len(c.models))
	for id := range c.models {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// checkModel rejects structurally unusable capability records
func checkModel(m *rig.Capabilities) error {
	switch m.Family {
	case rig.FamilyCIV, rig.FamilyYaesu, rig.FamilyKenwood, rig.FamilyElecraft:
	default:
		return fmt.Errorf("unknown protocol family %q", m.Family)
	}
	if m.Family == rig.FamilyCIV && m.CIVAddress == 0 {
		return fmt.Errorf("ci-v model without device address")
	}
	if len(m.Ranges) == 0 {
		return fmt.Errorf("no frequency ranges declared")
	}
	for _, r := range m.Ranges {
		if r.Low > r.High {
			return fmt.Errorf("inverted range %s: %d > %d", r.Band, r.Low, r.High)
		}
	}
	return nil
}
