// Package firemodel implements the fixed threshold model that flags
// fire-consistent pixels in a rescaled GOES scan.
//
// The model is not learned. It combines four boolean pixel tests computed
// from six bands on the common 2 km grid:
//
//	is_hot    3.89 µm band anomalously hot relative to the 11.19 µm band —
//	          the classic subpixel fire signature.
//	is_night  visible and near-IR reflectance both near zero, meaning no
//	          solar illumination.
//	is_water  shortwave-IR reflectance characteristic of open water,
//	          suppressing specular false positives.
//	is_cloud  bright visible reflectance paired with a cold cloud top, or
//	          an opaque cold top alone.
//
// The decision policy is: a pixel is a wildfire when it is hot and neither
// cloud nor water. Hot is necessary; cloud and water are disqualifying.
// The night mask is computed and exposed for callers that want to reason
// about illumination, but it does not gate the decision. A scan is labeled
// positive when at least one pixel survives.
//
// Comparisons against NaN evaluate to false, so invalid pixels never count
// as detections.
package firemodel
