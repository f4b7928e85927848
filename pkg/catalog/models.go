package catalog

import "github.com/dougsko/rigd/pkg/rig"

// Standard amateur HF allocations (Hz), used by most transceivers below
func hfBands() []rig.FreqRange {
	return []rig.FreqRange{
		{Band: "160m", Low: 1800000, High: 2000000},
		{Band: "80m", Low: 3500000, High: 4000000},
		{Band: "60m", Low: 5330500, High: 5406400},
		{Band: "40m", Low: 7000000, High: 7300000},
		{Band: "30m", Low: 10100000, High: 10150000},
		{Band: "20m", Low: 14000000, High: 14350000},
		{Band: "17m", Low: 18068000, High: 18168000},
		{Band: "15m", Low: 21000000, High: 21450000},
		{Band: "12m", Low: 24890000, High: 24990000},
		{Band: "10m", Low: 28000000, High: 29700000},
	}
}

func hfAnd6m() []rig.FreqRange {
	return append(hfBands(), rig.FreqRange{Band: "6m", Low: 50000000, High: 54000000})
}

func hfVhfUhf() []rig.FreqRange {
	return append(hfAnd6m(),
		rig.FreqRange{Band: "2m", Low: 144000000, High: 148000000},
		rig.FreqRange{Band: "70cm", Low: 430000000, High: 450000000},
	)
}

var ssbCwModes = []rig.Mode{
	rig.ModeLSB, rig.ModeUSB, rig.ModeCW, rig.ModeCWR,
	rig.ModeAM, rig.ModeFM, rig.ModeRTTY, rig.ModeRTTYR,
}

// builtinModels is declarative configuration, not engine logic. The
// full deployed fleet loads the remaining models from a YAML overlay.
var builtinModels = []rig.Capabilities{
	// Icom
	{
		ModelID: "ic-7300", Manufacturer: "Icom", Name: "IC-7300",
		Family: rig.FamilyCIV, CIVAddress: 0x94, CIVFreqBytes: 5,
		Ranges: hfAnd6m(), Modes: append(ssbCwModes, rig.ModeDV),
		MinPower: 1, MaxPower: 100,
		Features: rig.Features{Split: true, RIT: true, XIT: true, MemoryChannels: true},
	},
	{
		ModelID: "ic-7610", Manufacturer: "Icom", Name: "IC-7610",
		Family: rig.FamilyCIV, CIVAddress: 0x98, CIVFreqBytes: 5,
		Ranges: hfAnd6m(), Modes: ssbCwModes,
		MinPower: 1, MaxPower: 100,
		Features: rig.Features{Split: true, DualReceiver: true, RIT: true, XIT: true, MemoryChannels: true},
	},
	{
		ModelID: "ic-9700", Manufacturer: "Icom", Name: "IC-9700",
		Family: rig.FamilyCIV, CIVAddress: 0xA2, CIVFreqBytes: 5,
		Ranges: []rig.FreqRange{
			{Band: "2m", Low: 144000000, High: 148000000},
			{Band: "70cm", Low: 430000000, High: 450000000},
			{Band: "23cm", Low: 1240000000, High: 1300000000},
		},
		Modes:    append(ssbCwModes, rig.ModeDV),
		MinPower: 1, MaxPower: 100,
		Features: rig.Features{Split: true, Satellite: true, DStar: true, DualReceiver: true, RIT: true, MemoryChannels: true},
	},
	{
		ModelID: "ic-705", Manufacturer: "Icom", Name: "IC-705",
		Family: rig.FamilyCIV, CIVAddress: 0xA4, CIVFreqBytes: 5,
		Ranges: hfVhfUhf(), Modes: append(ssbCwModes, rig.ModeDV),
		MinPower: 0.5, MaxPower: 10,
		Features: rig.Features{Split: true, DStar: true, RIT: true, XIT: true, MemoryChannels: true},
	},
	{
		// legacy model: 4-byte BCD frequency payloads
		ModelID: "ic-735", Manufacturer: "Icom", Name: "IC-735",
		Family: rig.FamilyCIV, CIVAddress: 0x04, CIVFreqBytes: 4,
		Ranges: hfBands(), Modes: []rig.Mode{rig.ModeLSB, rig.ModeUSB, rig.ModeCW, rig.ModeAM, rig.ModeFM, rig.ModeRTTY},
		MinPower: 2, MaxPower: 100,
		Features: rig.Features{RIT: true, MemoryChannels: true},
	},
	{
		ModelID: "ic-718", Manufacturer: "Icom", Name: "IC-718",
		Family: rig.FamilyCIV, CIVAddress: 0x5E, CIVFreqBytes: 5,
		Ranges: hfBands(), Modes: []rig.Mode{rig.ModeLSB, rig.ModeUSB, rig.ModeCW, rig.ModeCWR, rig.ModeAM, rig.ModeRTTY},
		MinPower: 2, MaxPower: 100,
		Features: rig.Features{RIT: true, MemoryChannels: true},
	},

	// Xiegu speaks CI-V with its own addresses
	{
		ModelID: "g90", Manufacturer: "Xiegu", Name: "G90",
		Family: rig.FamilyCIV, CIVAddress: 0xA4, CIVFreqBytes: 5,
		Ranges: hfBands(), Modes: []rig.Mode{rig.ModeLSB, rig.ModeUSB, rig.ModeCW, rig.ModeCWR, rig.ModeAM},
		MinPower: 1, MaxPower: 20,
		Features: rig.Features{Split: true, RIT: true, MemoryChannels: true},
	},
	{
		ModelID: "x6100", Manufacturer: "Xiegu", Name: "X6100",
		Family: rig.FamilyCIV, CIVAddress: 0x55, CIVFreqBytes: 5,
		Ranges: hfAnd6m(), Modes: []rig.Mode{rig.ModeLSB, rig.ModeUSB, rig.ModeCW, rig.ModeCWR, rig.ModeAM, rig.ModeFM},
		MinPower: 0.5, MaxPower: 10,
		Features: rig.Features{Split: true, RIT: true, MemoryChannels: true},
	},
	{
		ModelID: "x5105", Manufacturer: "Xiegu", Name: "X5105",
		Family: rig.FamilyCIV, CIVAddress: 0x70, CIVFreqBytes: 5,
		Ranges: hfAnd6m(), Modes: []rig.Mode{rig.ModeLSB, rig.ModeUSB, rig.ModeCW, rig.ModeAM},
		MinPower: 0.5, MaxPower: 5,
		Features: rig.Features{RIT: true, MemoryChannels: true},
	},

	// Yaesu
	{
		ModelID: "ft-991a", Manufacturer: "Yaesu", Name: "FT-991A",
		Family: rig.FamilyYaesu,
		Ranges: hfVhfUhf(), Modes: append(ssbCwModes, rig.ModeData),
		MinPower: 5, MaxPower: 100,
		Features: rig.Features{Split: true, RIT: true, XIT: true, MemoryChannels: true},
	},
	{
		ModelID: "ft-891", Manufacturer: "Yaesu", Name: "FT-891",
		Family: rig.FamilyYaesu,
		Ranges: hfAnd6m(), Modes: append(ssbCwModes, rig.ModeData),
		MinPower: 5, MaxPower: 100,
		Features: rig.Features{Split: true, RIT: true, MemoryChannels: true},
	},
	{
		ModelID: "ft-710", Manufacturer: "Yaesu", Name: "FT-710",
		Family: rig.FamilyYaesu,
		Ranges: hfAnd6m(), Modes: append(ssbCwModes, rig.ModeData),
		MinPower: 5, MaxPower: 100,
		Features: rig.Features{Split: true, RIT: true, XIT: true, MemoryChannels: true},
	},
	{
		ModelID: "ftdx10", Manufacturer: "Yaesu", Name: "FTDX10",
		Family: rig.FamilyYaesu,
		Ranges: hfAnd6m(), Modes: append(ssbCwModes, rig.ModeData),
		MinPower: 5, MaxPower: 100,
		Features: rig.Features{Split: true, RIT: true, XIT: true, MemoryChannels: true},
	},

	// Kenwood
	{
		ModelID: "ts-480sat", Manufacturer: "Kenwood", Name: "TS-480SAT",
		Family: rig.FamilyKenwood,
		Ranges: hfAnd6m(), Modes: ssbCwModes,
		MinPower: 5, MaxPower: 100,
		Features: rig.Features{Split: true, RIT: true, XIT: true, MemoryChannels: true},
	},
	{
		ModelID: "ts-590sg", Manufacturer: "Kenwood", Name: "TS-590SG",
		Family: rig.FamilyKenwood,
		Ranges: hfAnd6m(), Modes: ssbCwModes,
		MinPower: 5, MaxPower: 100,
		Features: rig.Features{Split: true, RIT: true, XIT: true, MemoryChannels: true},
	},
	{
		ModelID: "ts-890s", Manufacturer: "Kenwood", Name: "TS-890S",
		Family: rig.FamilyKenwood,
		Ranges: hfAnd6m(), Modes: ssbCwModes,
		MinPower: 5, MaxPower: 100,
		Features: rig.Features{Split: true, RIT: true, XIT: true, MemoryChannels: true},
	},

	// Elecraft
	{
		ModelID: "k3", Manufacturer: "Elecraft", Name: "K3",
		Family: rig.FamilyElecraft,
		Ranges: hfAnd6m(),
		Modes: []rig.Mode{rig.ModeLSB, rig.ModeUSB, rig.ModeCW, rig.ModeCWR,
			rig.ModeAM, rig.ModeFM, rig.ModeData},
		MinPower: 0.1, MaxPower: 100,
		Features: rig.Features{Split: true, DualReceiver: true, RIT: true, XIT: true, MemoryChannels: true},
	},
	{
		ModelID: "kx2", Manufacturer: "Elecraft", Name: "KX2",
		Family: rig.FamilyElecraft,
		Ranges: hfBands(),
		Modes: []rig.Mode{rig.ModeLSB, rig.ModeUSB, rig.ModeCW, rig.ModeCWR,
			rig.ModeAM, rig.ModeFM, rig.ModeData},
		MinPower: 0.1, MaxPower: 10,
		Features: rig.Features{Split: true, RIT: true, XIT: true, MemoryChannels: true},
	},
	{
		ModelID: "kx3", Manufacturer: "Elecraft", Name: "KX3",
		Family: rig.FamilyElecraft,
		Ranges: hfAnd6m(),
		Modes: []rig.Mode{rig.ModeLSB, rig.ModeUSB, rig.ModeCW, rig.ModeCWR,
			rig.ModeAM, rig.ModeFM, rig.ModeData},
		MinPower: 0.1, MaxPower: 15,
		Features: rig.Features{Split: true, RIT: true, XIT: true, MemoryChannels: true},
	},
	{
		ModelID: "k4", Manufacturer: "Elecraft", Name: "K4",
		Family: rig.FamilyElecraft,
		Ranges: hfAnd6m(),
		Modes: []rig.Mode{rig.ModeLSB, rig.ModeUSB, rig.ModeCW, rig.ModeCWR,
			rig.ModeAM, rig.ModeFM, rig.ModeData},
		MinPower: 0.1, MaxPower: 110,
		Features: rig.Features{Split: true, DualReceiver: true, RIT: true, XIT: true, MemoryChannels: true},
	},
}
