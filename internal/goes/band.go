package goes

import (
	"fmt"
	"math"
)

// Calibration holds the per-band constants shipped inside each level-1b
// file. kappa0 applies to solar-reflective bands; the planck_* constants
// apply to thermal bands. Constants irrelevant to a band's type are NaN.
type Calibration struct {
	Kappa0    float64
	PlanckFK1 float64
	PlanckFK2 float64
	PlanckBC1 float64
	PlanckBC2 float64
}

// Band is one spectral band of a scan: calibrated raw radiance plus the
// constants needed to convert it to physical units. Immutable once loaded.
type Band struct {
	Channel     int
	Rad         Grid
	Calibration Calibration
	ResolutionM float64
}

// nativeResolutions maps channel number to native spatial resolution in
// meters. Band 2 is the visible red band at 500 m; 1, 3 and 5 are 1 km;
// everything else is 2 km.
var nativeResolutions = map[int]float64{
	1: 1000, 2: 500, 3: 1000, 4: 2000, 5: 1000, 6: 2000,
	7: 2000, 8: 2000, 9: 2000, 10: 2000, 11: 2000, 12: 2000,
	13: 2000, 14: 2000, 15: 2000, 16: 2000,
}

// NativeResolutionM returns a channel's native resolution in meters.
func NativeResolutionM(channel int) (float64, error) {
	res, ok := nativeResolutions[channel]
	if !ok {
		return 0, fmt.Errorf("channel %d out of range", channel)
	}
	return res, nil
}

// IsReflective reports whether a channel measures reflected sunlight
// (bands 1–6) as opposed to emitted thermal radiation (bands 7–16).
func IsReflective(channel int) bool {
	return channel >= 1 && channel <= 6
}

// ReflectanceFactor converts raw radiance to reflectance factor for a
// solar-reflective band. The conversion is linear in radiance; invalid
// radiance samples stay NaN.
func (b Band) ReflectanceFactor() (Grid, error) {
	if !IsReflective(b.Channel) {
		return Grid{}, fmt.Errorf("channel %d is thermal, not solar-reflective", b.Channel)
	}
	kappa0 := b.Calibration.Kappa0
	return b.Rad.Map(func(rad float64) float64 {
		return rad * kappa0
	}), nil
}

// BrightnessTemperature converts raw radiance to equivalent blackbody
// temperature via the inverse Planck function for a thermal band.
// Non-positive radiance has no physical temperature and converts to NaN
// rather than raising.
func (b Band) BrightnessTemperature() (Grid, error) {
	if IsReflective(b.Channel) {
		return Grid{}, fmt.Errorf("channel %d is solar-reflective, not thermal", b.Channel)
	}
	cal := b.Calibration
	return b.Rad.Map(func(rad float64) float64 {
		if rad <= 0 || math.IsNaN(rad) {
			return math.NaN()
		}
		return (cal.PlanckFK2/math.Log(cal.PlanckFK1/rad+1) - cal.PlanckBC1) / cal.PlanckBC2
	}), nil
}

// Product returns the band's derived product in physical units:
// reflectance factor for bands 1–6, brightness temperature for 7–16.
func (b Band) Product() (Grid, error) {
	if IsReflective(b.Channel) {
		return b.ReflectanceFactor()
	}
	return b.BrightnessTemperature()
}
