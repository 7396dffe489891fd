package goes

import (
	"fmt"
	"math"
	"time"
)

// targetResolutionM is the common grid resolution the threshold model
// operates on. It is the coarsest native resolution among the bands the
// model consumes, so alignment only aggregates and never upsamples.
const targetResolutionM = 2000

// PixelFilter decides whether a native sample participates in block
// aggregation. The default keeps finite values only.
type PixelFilter func(float64) bool

// ResampleOption configures RescaleTo2km.
type ResampleOption func(*resampler)

// WithPixelFilter installs a quality filter that excludes samples from
// aggregation, e.g. to drop saturated or sentinel values the upstream
// store did not flag.
func WithPixelFilter(filter PixelFilter) ResampleOption {
	return func(r *resampler) {
		if filter != nil {
			r.filter = filter
		}
	}
}

type resampler struct {
	filter PixelFilter
}

// Resampled is a scan aligned onto the common 2 km grid. Each channel's
// grid holds the band's derived product — reflectance factor for bands
// 1–6, brightness temperature for 7–16 — already in physical units, so no
// unit reconversion happens here.
type Resampled struct {
	Satellite string
	Region    string
	StartedAt time.Time

	products map[int]Grid
}

// Product returns a channel's derived product on the 2 km grid.
func (r *Resampled) Product(channel int) (Grid, error) {
	g, ok := r.products[channel]
	if !ok {
		return Grid{}, fmt.Errorf("channel %d out of range", channel)
	}
	return g, nil
}

// RescaleTo2km converts every band to its derived product and aggregates
// it onto the 2 km grid.
//
// Aggregation rule: each target cell is the arithmetic mean of the valid
// native samples inside its f×f block, where f = 2000m / native
// resolution. A block with zero valid samples becomes NaN. The rule is
// deterministic; it was chosen over nearest-neighbour because averaging
// is less sensitive to single-pixel noise at fire perimeters.
func RescaleTo2km(s *Scan, opts ...ResampleOption) (*Resampled, error) {
	r := &resampler{filter: defaultPixelFilter}
	for _, opt := range opts {
		opt(r)
	}

	products := make(map[int]Grid, channelCount)
	var shape Grid
	first := true

	for channel := 1; channel <= channelCount; channel++ {
		band, err := s.Band(channel)
		if err != nil {
			return nil, err
		}
		product, err := band.Product()
		if err != nil {
			return nil, fmt.Errorf("band %d: %w", channel, err)
		}

		factor := int(targetResolutionM / band.ResolutionM)
		if factor < 1 {
			return nil, fmt.Errorf("band %d: native resolution %.0fm coarser than target", channel, band.ResolutionM)
		}

		aggregated, err := r.blockMean(product, factor)
		if err != nil {
			return nil, fmt.Errorf("band %d: %w", channel, err)
		}

		if first {
			shape = aggregated
			first = false
		} else if !aggregated.SameShape(shape) {
			return nil, fmt.Errorf("%w: band %d resamples to %dx%d, want %dx%d",
				ErrMalformedScan, channel, aggregated.Height(), aggregated.Width(), shape.Height(), shape.Width())
		}
		products[channel] = aggregated
	}

	return &Resampled{
		Satellite: s.Satellite,
		Region:    s.Region,
		StartedAt: s.StartedAt,
		products:  products,
	}, nil
}

// blockMean aggregates factor×factor blocks into single cells.
func (r *resampler) blockMean(g Grid, factor int) (Grid, error) {
	if g.Height()%factor != 0 || g.Width()%factor != 0 {
		return Grid{}, fmt.Errorf("grid %dx%d not divisible by block factor %d", g.Height(), g.Width(), factor)
	}
	if factor == 1 && isAllValid(g, r.filter) {
		return g, nil
	}

	out := NewGrid(g.Height()/factor, g.Width()/factor)
	for row := 0; row < out.Height(); row++ {
		for col := 0; col < out.Width(); col++ {
			sum, n := 0.0, 0
			for dr := 0; dr < factor; dr++ {
				for dc := 0; dc < factor; dc++ {
					v := g.At(row*factor+dr, col*factor+dc)
					if r.filter(v) {
						sum += v
						n++
					}
				}
			}
			if n > 0 {
				out.Set(row, col, sum/float64(n))
			}
		}
	}
	return out, nil
}

func defaultPixelFilter(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isAllValid(g Grid, filter PixelFilter) bool {
	for row := 0; row < g.Height(); row++ {
		for col := 0; col < g.Width(); col++ {
			if !filter(g.At(row, col)) {
				return false
			}
		}
	}
	return true
}
