package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dougsko/rigd/pkg/rig"
)

func TestLookup(t *testing.T) {
	c := New()

	t.Run("Builtin Model", func(t *testing.T) {
		caps, err := c.Lookup("ic-7300")
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if caps.Family != rig.FamilyCIV {
			t.Errorf("Expected CI-V family, got %s", caps.Family)
		}
		if caps.CIVAddress != 0x94 {
			t.Errorf("Expected address 0x94, got 0x%02X", caps.CIVAddress)
		}
	})

	t.Run("Case Insensitive", func(t *testing.T) {
		caps, err := c.Lookup("IC-7300")
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if caps.ModelID != "ic-7300" {
			t.Errorf("Expected ic-7300, got %s", caps.ModelID)
		}
	})

	t.Run("Unknown Model", func(t *testing.T) {
		if _, err := c.Lookup("ft-101zd"); err == nil {
			t.Error("Expected error for unknown model")
		}
	})

	t.Run("All Families Represented", func(t *testing.T) {
		families := make(map[rig.ProtocolFamily]bool)
		for _, id := range c.Models() {
			caps, err := c.Lookup(id)
			if err != nil {
				t.Fatalf("Expected no error for %s, got: %v", id, err)
			}
			families[caps.Family] = true
		}
		for _, f := range []rig.ProtocolFamily{
			rig.FamilyCIV, rig.FamilyYaesu, rig.FamilyKenwood, rig.FamilyElecraft,
		} {
			if !families[f] {
				t.Errorf("Expected builtin coverage for family %s", f)
			}
		}
	})

	t.Run("Every Builtin Resolvable In Any Case", func(t *testing.T) {
		for _, id := range c.Models() {
			if _, err := c.Lookup(strings.ToUpper(id)); err != nil {
				t.Errorf("Expected %s resolvable uppercased, got: %v", id, err)
			}
		}
	})

	t.Run("Builtins Are Structurally Valid", func(t *testing.T) {
		for _, id := range c.Models() {
			caps, _ := c.Lookup(id)
			if err := checkModel(caps); err != nil {
				t.Errorf("Builtin model %s invalid: %v", id, err)
			}
		}
	})
}

func TestLoadOverlay(t *testing.T) {
	writeOverlay := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "models.yaml")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write overlay: %v", err)
		}
		return path
	}

	t.Run("New Model", func(t *testing.T) {
		c := New()
		path := writeOverlay(t, `
models:
  - model: ic-703
    manufacturer: Icom
    name: IC-703
    family: ci-v
    civ_address: 0x68
    ranges:
      - band: hf
        low: 1800000
        high: 29700000
    modes: [LSB, USB, CW]
    min_power: 0.1
    max_power: 10
`)
		if err := c.LoadOverlay(path); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		caps, err := c.Lookup("ic-703")
		if err != nil {
			t.Fatalf("Expected overlay model resolvable, got: %v", err)
		}
		if caps.MaxPower != 10 {
			t.Errorf("Expected 10 W max, got %.1f", caps.MaxPower)
		}
	})

	t.Run("Overlay Replaces Builtin", func(t *testing.T) {
		c := New()
		path := writeOverlay(t, `
models:
  - model: ic-7300
    manufacturer: Icom
    name: IC-7300 (site)
    family: ci-v
    civ_address: 0x95
    ranges:
      - band: hf
        low: 1800000
        high: 29700000
    modes: [USB]
    max_power: 100
`)
		if err := c.LoadOverlay(path); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		caps, _ := c.Lookup("ic-7300")
		if caps.CIVAddress != 0x95 {
			t.Errorf("Expected overridden address 0x95, got 0x%02X", caps.CIVAddress)
		}
	})

	t.Run("CIV Model Without Address Rejected", func(t *testing.T) {
		c := New()
		path := writeOverlay(t, `
models:
  - model: broken
    family: ci-v
    ranges:
      - band: hf
        low: 1800000
        high: 29700000
`)
		if err := c.LoadOverlay(path); err == nil {
			t.Error("Expected validation error")
		}
	})

	t.Run("Inverted Range Rejected", func(t *testing.T) {
		c := New()
		path := writeOverlay(t, `
models:
  - model: broken
    family: kenwood-cat
    ranges:
      - band: hf
        low: 29700000
        high: 1800000
`)
		if err := c.LoadOverlay(path); err == nil {
			t.Error("Expected validation error")
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		c := New()
		if err := c.LoadOverlay("/nonexistent/models.yaml"); err == nil {
			t.Error("Expected error for missing file")
		}
	})
}
