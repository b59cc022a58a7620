package config

import "sort"

var Presets = map[string]*Config{
	"argon": DefaultConfig(),
	"argon_short": func() *Config {
		c := DefaultConfig()
		c.Name = "argon_short"
		c.Steps = 1000
		return c
	}(),
	"argon_coarse": func() *Config {
		c := DefaultConfig()
		c.Name = "argon_coarse"
		c.Dt = 1e-14
		c.Steps = 2000
		return c
	}(),
	// ε/k_B ≈ 36 K
	"neon": func() *Config {
		c := DefaultConfig()
		c.Name = "neon"
		c.Sigma = 2.74e-10
		c.Epsilon = 4.97e-22
		c.Mass = 3.35e-26
		c.Lattice.Spacing = 1.12 * c.Sigma
		c.Lattice.Speed = 150
		return c
	}(),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
