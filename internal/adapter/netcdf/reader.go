// Package netcdf adapts NetCDF level-1b files to the pipeline's raster
// store interface using a pure-Go NetCDF reader, so the core never
// touches the on-disk byte format.
package netcdf

import (
	"fmt"
	"math"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/Ferrumofomega/wildfire/internal/goes"
)

// Variable names inside an ABI L1b radiance file.
const (
	varRadiance = "Rad"
	varQuality  = "DQF"
)

// Reader implements goes.RasterReader for ABI level-1b NetCDF files.
type Reader struct{}

// NewReader creates a Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Read opens one band file and returns its raw radiance, per-pixel
// quality flags, and calibration constants. Packed integer radiance is
// unpacked via the scale_factor/add_offset attributes; fill values become
// NaN.
func (r *Reader) Read(localPath string) (goes.RasterData, error) {
	group, err := netcdf.Open(localPath)
	if err != nil {
		return goes.RasterData{}, fmt.Errorf("open %s: %w", localPath, err)
	}
	defer group.Close()

	rad, err := read2D(group, varRadiance)
	if err != nil {
		return goes.RasterData{}, fmt.Errorf("%s: %w", localPath, err)
	}

	// DQF is optional; not every store carries quality flags.
	quality, err := readQuality(group, rad.Height()*rad.Width())
	if err != nil {
		return goes.RasterData{}, fmt.Errorf("%s: %w", localPath, err)
	}

	return goes.RasterData{
		Rad:     rad,
		Quality: quality,
		Calibration: goes.Calibration{
			Kappa0:    readScalar(group, "kappa0"),
			PlanckFK1: readScalar(group, "planck_fk1"),
			PlanckFK2: readScalar(group, "planck_fk2"),
			PlanckBC1: readScalar(group, "planck_bc1"),
			PlanckBC2: readScalar(group, "planck_bc2"),
		},
	}, nil
}

// read2D reads a named 2D variable, applying packing attributes.
func read2D(group api.Group, name string) (goes.Grid, error) {
	v, err := group.GetVariable(name)
	if err != nil {
		return goes.Grid{}, fmt.Errorf("variable %s: %w", name, err)
	}

	scale, hasScale := attrFloat(v, "scale_factor")
	offset, hasOffset := attrFloat(v, "add_offset")
	fill, hasFill := attrFloat(v, "_FillValue")
	if !hasScale {
		scale = 1
	}
	if !hasOffset {
		offset = 0
	}

	unpack := func(raw float64) float64 {
		if hasFill && raw == fill {
			return math.NaN()
		}
		return raw*scale + offset
	}

	switch vals := v.Values.(type) {
	case [][]float64:
		return gridFromRows(vals, len(vals), unpack)
	case [][]float32:
		rows := make([][]float64, len(vals))
		for i, row := range vals {
			rows[i] = make([]float64, len(row))
			for j, s := range row {
				rows[i][j] = float64(s)
			}
		}
		return gridFromRows(rows, len(rows), unpack)
	case [][]int16:
		rows := make([][]float64, len(vals))
		for i, row := range vals {
			rows[i] = make([]float64, len(row))
			for j, s := range row {
				rows[i][j] = float64(s)
			}
		}
		return gridFromRows(rows, len(rows), unpack)
	default:
		return goes.Grid{}, fmt.Errorf("variable %s: unsupported type %T", name, v.Values)
	}
}

func gridFromRows(rows [][]float64, height int, unpack func(float64) float64) (goes.Grid, error) {
	if height == 0 {
		return goes.Grid{}, fmt.Errorf("variable has no rows")
	}
	width := len(rows[0])
	flat := make([]float64, 0, height*width)
	for _, row := range rows {
		if len(row) != width {
			return goes.Grid{}, fmt.Errorf("ragged variable: row width %d, want %d", len(row), width)
		}
		for _, raw := range row {
			flat = append(flat, unpack(raw))
		}
	}
	return goes.NewGridFrom(flat, height, width)
}

// readQuality reads the DQF flags when present. A missing variable is not
// an error; a malformed one is.
func readQuality(group api.Group, want int) ([]int, error) {
	v, err := group.GetVariable(varQuality)
	if err != nil {
		return nil, nil
	}

	var flat []int
	switch vals := v.Values.(type) {
	case [][]int8:
		for _, row := range vals {
			for _, f := range row {
				flat = append(flat, int(f))
			}
		}
	case [][]uint8:
		for _, row := range vals {
			for _, f := range row {
				flat = append(flat, int(f))
			}
		}
	case [][]int16:
		for _, row := range vals {
			for _, f := range row {
				flat = append(flat, int(f))
			}
		}
	default:
		return nil, fmt.Errorf("variable %s: unsupported type %T", varQuality, v.Values)
	}

	if len(flat) != want {
		return nil, fmt.Errorf("variable %s: %d flags for %d radiance samples", varQuality, len(flat), want)
	}
	return flat, nil
}

// readScalar reads a scalar calibration variable, returning NaN when the
// file does not carry it. kappa0 only exists for reflective bands and the
// planck_* constants only for thermal bands.
func readScalar(group api.Group, name string) float64 {
	v, err := group.GetVariable(name)
	if err != nil {
		return math.NaN()
	}

	switch val := v.Values.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case []float64:
		if len(val) == 1 {
			return val[0]
		}
	case []float32:
		if len(val) == 1 {
			return float64(val[0])
		}
	}
	return math.NaN()
}

// attrFloat fetches a numeric attribute from a variable.
func attrFloat(v *api.Variable, name string) (float64, bool) {
	raw, has := v.Attributes.Get(name)
	if !has {
		return 0, false
	}
	switch val := raw.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case []float64:
		if len(val) == 1 {
			return val[0], true
		}
	case []float32:
		if len(val) == 1 {
			return float64(val[0]), true
		}
	case []int16:
		if len(val) == 1 {
			return float64(val[0]), true
		}
	case []int32:
		if len(val) == 1 {
			return float64(val[0]), true
		}
	}
	return 0, false
}
