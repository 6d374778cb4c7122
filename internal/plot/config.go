package plot

import (
	"errors"
	"fmt"
	"log/slog"
)

// Config controls the adaptive sampler.
type Config struct {
	CoarseSteps        int     // grid steps per visible extent
	Cutoff             float64 // magnitude beyond which a sample counts as near a pole
	DeltaMaxPercent    float64 // vertical tolerance as a fraction of the visible height
	MaxDepth           int     // bisection depth limit
	DeltaMinMultiplier float64 // horizontal tolerance as a multiple of the visible width
	PoleDeltaFactor    float64 // steep-asymptote check: |dy| > PoleDeltaFactor*dyMax
	PoleSlopeFactor    float64 // steep-asymptote check: |dy/dx| > PoleSlopeFactor*dyMax
	Intervals          int     // contiguous grid ranges, one pool task each

	Logger *slog.Logger // task failures; nil means slog.Default()
}

// DefaultConfig returns the tuned sampler constants.
func DefaultConfig() Config {
	return Config{
		CoarseSteps:        1000,
		Cutoff:             1e3,
		DeltaMaxPercent:    0.02,
		MaxDepth:           10,
		DeltaMinMultiplier: 2.0,
		PoleDeltaFactor:    200,
		PoleSlopeFactor:    100,
		Intervals:          16,
	}
}

// Validate reports every out-of-range field.
func (c Config) Validate() error {
	var errs []error
	if c.CoarseSteps < 1 {
		errs = append(errs, fmt.Errorf("CoarseSteps = %d, want >= 1", c.CoarseSteps))
	}
	if !(c.Cutoff > 0) {
		errs = append(errs, fmt.Errorf("Cutoff = %g, want > 0", c.Cutoff))
	}
	if !(c.DeltaMaxPercent > 0) {
		errs = append(errs, fmt.Errorf("DeltaMaxPercent = %g, want > 0", c.DeltaMaxPercent))
	}
	if c.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("MaxDepth = %d, want >= 0", c.MaxDepth))
	}
	if !(c.DeltaMinMultiplier > 0) {
		errs = append(errs, fmt.Errorf("DeltaMinMultiplier = %g, want > 0", c.DeltaMinMultiplier))
	}
	if !(c.PoleDeltaFactor > 0) || !(c.PoleSlopeFactor > 0) {
		errs = append(errs, fmt.Errorf("pole factors = %g, %g, want > 0", c.PoleDeltaFactor, c.PoleSlopeFactor))
	}
	if c.Intervals < 1 {
		errs = append(errs, fmt.Errorf("Intervals = %d, want >= 1", c.Intervals))
	}
	if len(errs) > 0 {
		return fmt.Errorf("plot: invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
