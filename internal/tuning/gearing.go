// Package tuning holds the transmission math behind the gearing chart.
package tuning

import (
	"errors"
	"math"

	"apexgarage/internal/model"
)

// Chart constants, matching the in-game approximation.
const (
	// MaxRPM is the rev ceiling the chart projects each gear to.
	MaxRPM = 8000.0

	// TireDiameterMeters is the approximate tire diameter used for the
	// speed projection.
	TireDiameterMeters = 0.65

	// MaxGears is the most gears a customisable gearbox carries.
	MaxGears = 10
)

var (
	ErrTooManyGears     = errors.New("too many gears")
	ErrNonPositiveRatio = errors.New("gear ratios must be positive")
	ErrRatiosNotDescend = errors.New("gear ratios must descend")
	ErrNonPositiveFinal = errors.New("final drive ratio must be positive")
)

// TopSpeed returns the speed in km/h reached at MaxRPM for the given gear and
// final drive ratios:
//
//	speed = (rpm * 60 * circumference) / (gearRatio * finalDrive * 1000)
//
// A zero ratio yields 0 rather than a division blow-up.
func TopSpeed(gearRatio, finalDrive float64) float64 {
	if gearRatio == 0 || finalDrive == 0 {
		return 0
	}
	circumference := math.Pi * TireDiameterMeters
	return (MaxRPM * 60 * circumference) / (gearRatio * finalDrive * 1000)
}

// TopSpeeds projects every gear of the gearbox, in gear order.
func TopSpeeds(gearbox model.GearboxSettings) []float64 {
	speeds := make([]float64, len(gearbox.Manual))
	for i, ratio := range gearbox.Manual {
		speeds[i] = TopSpeed(ratio, gearbox.Final)
	}
	return speeds
}

// ValidateGearbox checks a customisable gearbox before it is saved. An empty
// Manual slice means stock gearing and passes; when ratios are present they
// must be positive and descend from first gear to top gear, and the final
// drive must be positive.
func ValidateGearbox(gearbox model.GearboxSettings) error {
	if len(gearbox.Manual) == 0 {
		return nil
	}
	if len(gearbox.Manual) > MaxGears {
		return ErrTooManyGears
	}
	if gearbox.Final <= 0 {
		return ErrNonPositiveFinal
	}
	for i, ratio := range gearbox.Manual {
		if ratio <= 0 {
			return ErrNonPositiveRatio
		}
		if i > 0 && ratio >= gearbox.Manual[i-1] {
			return ErrRatiosNotDescend
		}
	}
	return nil
}
