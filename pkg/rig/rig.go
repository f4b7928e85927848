package rig

import "fmt"

// Mode represents a canonical operating mode, independent of any
// manufacturer's wire encoding.
type Mode string

// Canonical operating modes
const (
	ModeLSB   Mode = "LSB"
	ModeUSB   Mode = "USB"
	ModeCW    Mode = "CW"
	ModeCWR   Mode = "CW-R"
	ModeAM    Mode = "AM"
	ModeFM    Mode = "FM"
	ModeRTTY  Mode = "RTTY"
	ModeRTTYR Mode = "RTTY-R"
	ModeData  Mode = "DATA"
	ModeDV    Mode = "DV"
)

// VFO represents a selectable tuning register on the radio
type VFO string

const (
	VFOA       VFO = "A"
	VFOB       VFO = "B"
	VFOCurrent VFO = "CURR"
)

// ProtocolFamily selects which wire codec a model speaks. The set is
// closed; adding a manufacturer means adding a variant here and one
// codec implementation.
type ProtocolFamily string

const (
	FamilyCIV      ProtocolFamily = "ci-v"
	FamilyYaesu    ProtocolFamily = "yaesu-cat"
	FamilyKenwood  ProtocolFamily = "kenwood-cat"
	FamilyElecraft ProtocolFamily = "elecraft-cat"
)

// FreqRange is a closed interval of supported frequencies in Hz
type FreqRange struct {
	Band string `yaml:"band"`
	Low  int64  `yaml:"low"`
	High int64  `yaml:"high"`
}

// Contains reports whether hz lies within the range, bounds inclusive
func (r FreqRange) Contains(hz int64) bool {
	return hz >= r.Low && hz <= r.High
}

// Features describes optional per-model functionality. Operations gated
// on a feature are rejected before transmission when the flag is absent.
type Features struct {
	Split          bool `yaml:"split"`
	DualReceiver   bool `yaml:"dual_receiver"`
	Satellite      bool `yaml:"satellite"`
	DStar          bool `yaml:"dstar"`
	RIT            bool `yaml:"rit"`
	XIT            bool `yaml:"xit"`
	MemoryChannels bool `yaml:"memory_channels"`
}

// Capabilities describes what a radio model supports. Loaded once from
// the catalog and shared read-only across sessions for that model.
type Capabilities struct {
	ModelID      string         `yaml:"model"`
	Manufacturer string         `yaml:"manufacturer"`
	Name         string         `yaml:"name"`
	Family       ProtocolFamily `yaml:"family"`

	Ranges   []FreqRange `yaml:"ranges"`
	Modes    []Mode      `yaml:"modes"`
	MinPower float64     `yaml:"min_power"`
	MaxPower float64     `yaml:"max_power"`
	Features Features    `yaml:"features"`

	// CI-V only: device address and BCD frequency width in bytes.
	// Legacy Icom models use 4 bytes, everything current uses 5.
	CIVAddress   byte `yaml:"civ_address"`
	CIVFreqBytes int  `yaml:"civ_freq_bytes"`
}

// SupportsFrequency reports whether hz falls in one of the model's ranges
func (c *Capabilities) SupportsFrequency(hz int64) bool {
	for _, r := range c.Ranges {
		if r.Contains(hz) {
			return true
		}
	}
	return false
}

// SupportsMode reports whether the model supports the given mode
func (c *Capabilities) SupportsMode(mode Mode) bool {
	for _, m := range c.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// ValidateFrequency rejects frequencies outside every declared range
func (c *Capabilities) ValidateFrequency(hz int64) error {
	if !c.SupportsFrequency(hz) {
		return &CapabilityError{
			Model:  c.ModelID,
			Op:     "frequency",
			Reason: fmt.Sprintf("%d Hz outside supported ranges", hz),
		}
	}
	return nil
}

// ValidateMode rejects modes the model does not implement
func (c *Capabilities) ValidateMode(mode Mode) error {
	if !c.SupportsMode(mode) {
		return &CapabilityError{
			Model:  c.ModelID,
			Op:     "mode",
			Reason: fmt.Sprintf("mode %s not supported", mode),
		}
	}
	return nil
}

// ValidatePower rejects power levels outside the model's range
func (c *Capabilities) ValidatePower(watts float64) error {
	if watts < c.MinPower || watts > c.MaxPower {
		return &CapabilityError{
			Model:  c.ModelID,
			Op:     "power",
			Reason: fmt.Sprintf("%.1f W outside %.1f-%.1f W", watts, c.MinPower, c.MaxPower),
		}
	}
	return nil
}

// ValidateFeature rejects operations gated on a feature the model lacks
func (c *Capabilities) ValidateFeature(op string, enabled bool) error {
	if !enabled {
		return &CapabilityError{
			Model:  c.ModelID,
			Op:     op,
			Reason: "feature not supported by this model",
		}
	}
	return nil
}
