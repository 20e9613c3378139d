package clicmd

import "github.com/caarlos0/env/v6"

// Config holds the runtime tuning knobs spec.md §4.6 and §9 call out as
// environment-driven rather than flag-driven, since they are meant for
// debugging and benchmarking rather than everyday invocation: stressing
// the garbage collector, overriding its growth factor, and bounding a
// runaway script's step count.
type Config struct {
	GCStress     bool  `env:"LOXVM_GC_STRESS" envDefault:"false"`
	GCGrowFactor int64 `env:"LOXVM_GC_GROW_FACTOR" envDefault:"0"`
	MaxSteps     int64 `env:"LOXVM_MAX_STEPS" envDefault:"0"`
}

// LoadConfig reads Config from the process environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
