// Package goes models GOES-16/17 ABI level-1b radiance data.
//
// # Data Source
//
// Scans originate from the NOAA GOES archive on Amazon S3 (buckets
// noaa-goes16 and noaa-goes17). One scan of a region is split across 16
// NetCDF files, one per spectral band, keyed like:
//
//	ABI-L1b-RadM/2019/300/20/OR_ABI-L1b-RadM1-M6C14_G17_s20193002048275_e20193002048332_c20193002048405.nc
//
// # Filename Conventions
//
// The object key encodes everything needed to correlate files into scans:
//
//	Rad{region}  →  F (full disk), C (CONUS), M1 or M2 (mesoscale sectors)
//	C{channel}   →  two-digit band number, 01–16
//	G{16|17}     →  satellite, mapped to bucket names noaa-goes16/noaa-goes17
//	s{start}     →  scan start time as YYYYJJJHHMMSSt
//	              (year, day of year, hour, minute, second, tenths)
//
// A complete scan is the set of 16 files sharing satellite, region, and
// start time, one file per band. Grouping is a pure function over the
// parsed key; validation of completeness happens at scan assembly.
//
// # Physical Units
//
// Raw sensor output is spectral radiance. Each file carries the constants
// to convert it into a physically meaningful quantity:
//
//	Bands 1–6 (solar-reflective):
//	  reflectance_factor = Rad * kappa0
//	Bands 7–16 (thermal):
//	  brightness_temperature = (planck_fk2 / ln(planck_fk1/Rad + 1) - planck_bc1) / planck_bc2
//
// Invalid radiance (non-positive, saturated, missing) converts to NaN
// rather than raising; NaN propagates through classification where any
// comparison against it evaluates false.
//
// # Spatial Resolution
//
// Bands are captured at different native resolutions: band 2 at 500 m,
// bands 1, 3 and 5 at 1 km, everything else at 2 km. The threshold model
// consumes all bands on a common 2 km grid, the coarsest resolution among
// its inputs, so alignment only ever aggregates — it never upsamples.
package goes
