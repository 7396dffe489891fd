package firemodel

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ferrumofomega/wildfire/internal/goes"
)

// Synthetic calibration shared by thermal test bands. Radiance for a
// target brightness temperature comes from the forward Planck function.
var testCal = goes.Calibration{
	Kappa0:    0.001,
	PlanckFK1: 1000,
	PlanckFK2: 2000,
	PlanckBC1: 0.5,
	PlanckBC2: 0.99,
}

func radianceForBT(bt float64) float64 {
	return testCal.PlanckFK1 / (math.Exp(testCal.PlanckFK2/(testCal.PlanckBC1+testCal.PlanckBC2*bt)) - 1)
}

func gridOf(t *testing.T, values ...float64) goes.Grid {
	t.Helper()
	g, err := goes.NewGridFrom(values, 1, len(values))
	require.NoError(t, err)
	return g
}

func TestIsHotPixel(t *testing.T) {
	bt389 := gridOf(t, 400, 335, 331, 320, math.NaN())
	bt1119 := gridOf(t, 290, 330, 290, 280, 290)

	mask := IsHotPixel(bt389, bt1119)

	assert.True(t, mask.At(0, 0), "hot and high contrast")
	assert.False(t, mask.At(0, 1), "hot but contrast too low")
	assert.True(t, mask.At(0, 2), "just above both thresholds")
	assert.False(t, mask.At(0, 3), "below absolute threshold")
	assert.False(t, mask.At(0, 4), "invalid shortwave compares false")
}

func TestIsNightPixel(t *testing.T) {
	refl064 := gridOf(t, 0.005, 0.005, 0.5, math.NaN())
	refl087 := gridOf(t, 0.005, 0.02, 0.005, 0.005)

	mask := IsNightPixel(refl064, refl087)

	assert.True(t, mask.At(0, 0), "both bands dark")
	assert.False(t, mask.At(0, 1), "near-IR illuminated")
	assert.False(t, mask.At(0, 2), "visible illuminated")
	assert.False(t, mask.At(0, 3), "invalid reflectance compares false")
}

func TestIsWaterPixel(t *testing.T) {
	refl225 := gridOf(t, 0.01, 0.03, 0.2, math.NaN())

	mask := IsWaterPixel(refl225)

	assert.True(t, mask.At(0, 0), "low shortwave-IR reflectance")
	assert.False(t, mask.At(0, 1), "threshold is strict")
	assert.False(t, mask.At(0, 2), "land reflectance")
	assert.False(t, mask.At(0, 3), "invalid reflectance compares false")
}

func TestIsCloudPixel(t *testing.T) {
	cases := []struct {
		name             string
		refl064, refl087 float64
		bt1227           float64
		want             bool
	}{
		{"opaque cold top", 0.1, 0.1, 260, true},
		{"bright over moderately cold top", 0.5, 0.3, 280, true},
		{"very bright alone", 0.9, 0.7, 300, true},
		{"clear warm land", 0.2, 0.2, 295, false},
		{"bright but warm top", 0.5, 0.3, 290, false},
		{"bright daytime scene over a warm top", 0.6, 0.6, 300, false},
		{"invalid temperature compares false", 0.2, 0.2, math.NaN(), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mask := IsCloudPixel(gridOf(t, tc.refl064), gridOf(t, tc.refl087), gridOf(t, tc.bt1227))
			assert.Equal(t, tc.want, mask.At(0, 0))
		})
	}
}

func TestPredict(t *testing.T) {
	t.Run("hot is necessary and cloud and water disqualify", func(t *testing.T) {
		hot := maskOf(true, true, true, false)
		cloud := maskOf(false, true, false, false)
		water := maskOf(false, false, true, false)

		fire := Predict(ModelFeatures{
			IsHot:   hot,
			IsNight: maskOf(false, false, false, false),
			IsWater: water,
			IsCloud: cloud,
		})

		assert.True(t, fire.At(0, 0), "hot, clear, dry")
		assert.False(t, fire.At(0, 1), "cloud disqualifies")
		assert.False(t, fire.At(0, 2), "water disqualifies")
		assert.False(t, fire.At(0, 3), "not hot")
	})

	t.Run("raising a disqualifier never creates a detection", func(t *testing.T) {
		for _, hot := range []bool{false, true} {
			for _, cloud := range []bool{false, true} {
				for _, water := range []bool{false, true} {
					fire := Predict(ModelFeatures{
						IsHot:   maskOf(hot),
						IsNight: maskOf(false),
						IsWater: maskOf(water),
						IsCloud: maskOf(cloud),
					}).At(0, 0)

					want := hot && !cloud && !water
					assert.Equal(t, want, fire, "hot=%v cloud=%v water=%v", hot, cloud, water)
					if cloud || water {
						assert.False(t, fire)
					}
				}
			}
		}
	})

	t.Run("night mask does not gate the prediction", func(t *testing.T) {
		fire := Predict(ModelFeatures{
			IsHot:   maskOf(true),
			IsNight: maskOf(true),
			IsWater: maskOf(false),
			IsCloud: maskOf(false),
		})
		assert.True(t, fire.At(0, 0))
	})
}

// TestFeaturesEndToEnd runs the full chain from raw radiance through
// rescaling and classification for a uniform daytime fire scene: 3.89 µm
// far above the 11.19 µm background, shortwave-IR too reflective for
// water, and bright visible reflectance (sum 1.2) that is not cloud
// because the 12.27 µm top at 300 K is warmer than every cloud branch
// allows.
func TestFeaturesEndToEnd(t *testing.T) {
	targets := map[int]float64{
		2:  0.6 / testCal.Kappa0,
		3:  0.6 / testCal.Kappa0,
		6:  0.05 / testCal.Kappa0,
		7:  radianceForBT(400),
		14: radianceForBT(290),
		15: radianceForBT(300),
	}

	bands := make([]goes.Band, 0, 16)
	for c := 1; c <= 16; c++ {
		res, err := goes.NativeResolutionM(c)
		require.NoError(t, err)
		side := int(2000 / res)

		rad := targets[c]
		if rad == 0 {
			rad = 1
		}
		g := goes.NewGrid(side, side)
		for row := 0; row < side; row++ {
			for col := 0; col < side; col++ {
				g.Set(row, col, rad)
			}
		}
		bands = append(bands, goes.Band{
			Channel:     c,
			Rad:         g,
			Calibration: testCal,
			ResolutionM: res,
		})
	}

	startedAt := time.Date(2019, time.October, 27, 20, 48, 27, 500_000_000, time.UTC)
	scan, err := goes.NewScan("noaa-goes17", "M1", startedAt, bands)
	require.NoError(t, err)

	rescaled, err := goes.RescaleTo2km(scan)
	require.NoError(t, err)

	features, err := Features(rescaled)
	require.NoError(t, err)

	assert.True(t, features.IsHot.At(0, 0))
	assert.False(t, features.IsNight.At(0, 0))
	assert.False(t, features.IsWater.At(0, 0))
	assert.False(t, features.IsCloud.At(0, 0))

	fire := Predict(features)
	assert.True(t, fire.Any())
	assert.Equal(t, 1.0, fire.Mean())
}

func TestMask(t *testing.T) {
	m := NewMask(2, 2)
	assert.False(t, m.Any())
	assert.Zero(t, m.Count())
	assert.Zero(t, m.Mean())

	m.Set(0, 1, true)
	assert.True(t, m.Any())
	assert.Equal(t, 1, m.Count())
	assert.InDelta(t, 0.25, m.Mean(), 1e-12)
	assert.True(t, m.At(0, 1))
	assert.False(t, m.At(1, 0))
}

func maskOf(values ...bool) Mask {
	m := NewMask(1, len(values))
	for i, v := range values {
		m.Set(0, i, v)
	}
	return m
}
