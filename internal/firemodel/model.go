package firemodel

import (
	"fmt"

	"github.com/Ferrumofomega/wildfire/internal/goes"
)

// Operational threshold constants, in kelvin for brightness temperatures
// and dimensionless reflectance factor otherwise. Tuned against GOES-17
// mesoscale scans of the 2019 Kincade fire; changing any of them changes
// classification at fire perimeters.
const (
	// hotBT389Min is the minimum 3.89 µm brightness temperature for a
	// candidate fire pixel.
	hotBT389Min = 330.0
	// hotContrastMin is the minimum excess of the 3.89 µm band over the
	// 11.19 µm band. The longwave band sees the background temperature,
	// so a large difference isolates subpixel heat sources.
	hotContrastMin = 10.0

	// nightReflectanceMax bounds the visible and near-IR reflectance under
	// which a pixel is considered unilluminated.
	nightReflectanceMax = 0.01

	// waterReflectanceMax bounds the 2.25 µm reflectance of open water.
	waterReflectanceMax = 0.03

	// cloudOpaqueTopMaxK flags opaque cold cloud tops regardless of
	// brightness.
	cloudOpaqueTopMaxK = 265.0
	// cloudBrightSumMin and cloudBrightTopMaxK flag bright cloud paired
	// with a moderately cold top.
	cloudBrightSumMin = 0.7
	cloudBrightTopMaxK = 285.0
	// cloudVeryBrightSumMin flags very bright daytime cloud on
	// reflectance alone.
	cloudVeryBrightSumMin = 1.5
)

// ModelFeatures are the four boolean masks the decision policy combines.
// Computed fresh per classification call, never persisted.
type ModelFeatures struct {
	IsHot   Mask
	IsNight Mask
	IsWater Mask
	IsCloud Mask
}

// IsHotPixel is true where the 3.89 µm band is anomalously hot relative
// to the 11.19 µm band. NaN in either band compares false.
func IsHotPixel(bt389, bt1119 goes.Grid) Mask {
	return combine2(bt389, bt1119, func(shortwave, longwave float64) bool {
		return shortwave > hotBT389Min && shortwave-longwave > hotContrastMin
	})
}

// IsNightPixel is true where visible-band reflectance is near zero,
// meaning no solar illumination reaches the pixel.
func IsNightPixel(refl064, refl087 goes.Grid) Mask {
	return combine2(refl064, refl087, func(red, nearIR float64) bool {
		return red < nightReflectanceMax && nearIR < nightReflectanceMax
	})
}

// IsWaterPixel is true where shortwave-IR reflectance is characteristic
// of open water.
func IsWaterPixel(refl225 goes.Grid) Mask {
	out := NewMask(refl225.Height(), refl225.Width())
	for row := 0; row < refl225.Height(); row++ {
		for col := 0; col < refl225.Width(); col++ {
			out.Set(row, col, refl225.At(row, col) < waterReflectanceMax)
		}
	}
	return out
}

// IsCloudPixel is true where the pixel looks like cloud cover that would
// mask the hot-pixel signal: an opaque cold top, bright reflectance over
// a moderately cold top, or very bright reflectance alone.
func IsCloudPixel(refl064, refl087, bt1227 goes.Grid) Mask {
	out := NewMask(refl064.Height(), refl064.Width())
	for row := 0; row < out.Height(); row++ {
		for col := 0; col < out.Width(); col++ {
			sum := refl064.At(row, col) + refl087.At(row, col)
			top := bt1227.At(row, col)
			cloud := top < cloudOpaqueTopMaxK ||
				(sum > cloudBrightSumMin && top < cloudBrightTopMaxK) ||
				sum > cloudVeryBrightSumMin
			out.Set(row, col, cloud)
		}
	}
	return out
}

// Predict combines the feature masks into the final per-pixel wildfire
// prediction: hot is necessary, cloud and water are disqualifying. The
// night mask intentionally does not participate; see the package comment.
func Predict(features ModelFeatures) Mask {
	out := NewMask(features.IsHot.Height(), features.IsHot.Width())
	for row := 0; row < out.Height(); row++ {
		for col := 0; col < out.Width(); col++ {
			fire := features.IsHot.At(row, col) &&
				!features.IsCloud.At(row, col) &&
				!features.IsWater.At(row, col)
			out.Set(row, col, fire)
		}
	}
	return out
}

// Features computes the model features from a scan rescaled to the 2 km
// grid.
func Features(scan *goes.Resampled) (ModelFeatures, error) {
	grids := make(map[int]goes.Grid, 6)
	for _, channel := range []int{2, 3, 6, 7, 14, 15} {
		g, err := scan.Product(channel)
		if err != nil {
			return ModelFeatures{}, fmt.Errorf("model features: %w", err)
		}
		grids[channel] = g
	}

	return ModelFeatures{
		IsHot:   IsHotPixel(grids[7], grids[14]),
		IsNight: IsNightPixel(grids[2], grids[3]),
		IsWater: IsWaterPixel(grids[6]),
		IsCloud: IsCloudPixel(grids[2], grids[3], grids[15]),
	}, nil
}

// combine2 evaluates a binary predicate over two same-shape grids.
func combine2(a, b goes.Grid, pred func(float64, float64) bool) Mask {
	out := NewMask(a.Height(), a.Width())
	for row := 0; row < a.Height(); row++ {
		for col := 0; col < a.Width(); col++ {
			out.Set(row, col, pred(a.At(row, col), b.At(row, col)))
		}
	}
	return out
}
