package goes

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedScan marks a file group that cannot be assembled into a
// complete, consistent 16-band scan. The search engine treats it as a
// recoverable per-group failure.
var ErrMalformedScan = errors.New("malformed scan")

// channelCount is the number of spectral bands in a complete ABI scan.
const channelCount = 16

// Scan is one synchronized capture of all 16 bands over one region at one
// start time. Constructed only through NewScan; consumed and discarded by
// the classification pipeline.
type Scan struct {
	Satellite string
	Region    string
	StartedAt time.Time

	bands map[int]Band
}

// NewScan assembles a Scan from exactly 16 bands, one per channel.
// Wrong counts or duplicate channels are a malformed-scan error.
func NewScan(satellite, region string, startedAt time.Time, bands []Band) (*Scan, error) {
	if len(bands) != channelCount {
		return nil, fmt.Errorf("%w: got %d bands, want %d", ErrMalformedScan, len(bands), channelCount)
	}

	byChannel := make(map[int]Band, channelCount)
	for _, b := range bands {
		if b.Channel < 1 || b.Channel > channelCount {
			return nil, fmt.Errorf("%w: channel %d out of range", ErrMalformedScan, b.Channel)
		}
		if _, dup := byChannel[b.Channel]; dup {
			return nil, fmt.Errorf("%w: duplicate channel %d", ErrMalformedScan, b.Channel)
		}
		byChannel[b.Channel] = b
	}

	return &Scan{
		Satellite: satellite,
		Region:    region,
		StartedAt: startedAt,
		bands:     byChannel,
	}, nil
}

// Band returns the band for a channel. Channel presence is guaranteed by
// construction, so an error here means the caller asked for a channel
// outside 1–16.
func (s *Scan) Band(channel int) (Band, error) {
	b, ok := s.bands[channel]
	if !ok {
		return Band{}, fmt.Errorf("channel %d out of range", channel)
	}
	return b, nil
}

// Key returns the scan's grouping identity.
func (s *Scan) Key() GroupKey {
	return GroupKey{Satellite: s.Satellite, Region: s.Region, StartedAt: s.StartedAt}
}
