package config

import "sort"

var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"quick": {
		TotalTime: 20.0, TimeSteps: []float64{0.01, 0.1, 1}, Velocities: []float64{1, 2},
		Parallel: 1, Plot: true,
	},
	"stable": {
		TotalTime: DefaultTotalTime, TimeSteps: []float64{0.0002, 0.001, 0.01}, Velocities: []float64{1, 2, 4, 8},
		Parallel: 1, Plot: true,
	},
	"unstable": {
		TotalTime: DefaultTotalTime, TimeSteps: []float64{1, 2, 4}, Velocities: []float64{1, 8},
		Parallel: 1, Plot: true,
	},
	"displaced": {
		TotalTime: 50.0, PosStart: 1.0, TimeSteps: []float64{0.001, 0.01, 0.1}, Velocities: []float64{0, 1},
		Parallel: 1, Plot: true,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	c.TimeSteps = append([]float64(nil), cfg.TimeSteps...)
	c.Velocities = append([]float64(nil), cfg.Velocities...)
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
