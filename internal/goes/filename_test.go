package goes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyM1C14 = "ABI-L1b-RadM/2019/300/20/OR_ABI-L1b-RadM1-M6C14_G17_s20193002048275_e20193002048332_c20193002048405.nc"

func TestParseFilename(t *testing.T) {
	t.Run("mesoscale key", func(t *testing.T) {
		id, err := ParseFilename(testKeyM1C14)
		require.NoError(t, err)

		assert.Equal(t, "noaa-goes17", id.Satellite)
		assert.Equal(t, "M1", id.Region)
		assert.Equal(t, 14, id.Channel)
		// Day 300 of 2019 is October 27; trailing digit is tenths of a second.
		assert.Equal(t, time.Date(2019, time.October, 27, 20, 48, 27, 500_000_000, time.UTC), id.StartedAt)
		assert.Equal(t, testKeyM1C14, id.Filepath)
	})

	t.Run("full disk key", func(t *testing.T) {
		id, err := ParseFilename("OR_ABI-L1b-RadF-M6C01_G16_s20193001000000_e20193001009570_c20193001010100.nc")
		require.NoError(t, err)

		assert.Equal(t, "noaa-goes16", id.Satellite)
		assert.Equal(t, "F", id.Region)
		assert.Equal(t, 1, id.Channel)
	})

	t.Run("conus key", func(t *testing.T) {
		id, err := ParseFilename("OR_ABI-L1b-RadC-M3C16_G16_s20193001000000_e20193001009570_c20193001010100.nc")
		require.NoError(t, err)
		assert.Equal(t, "C", id.Region)
		assert.Equal(t, 16, id.Channel)
	})

	t.Run("unsupported satellite", func(t *testing.T) {
		_, err := ParseFilename("OR_ABI-L1b-RadM1-M6C14_G18_s20193002048275_e20193002048332_c20193002048405.nc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported satellite")
	})

	t.Run("unsupported region", func(t *testing.T) {
		_, err := ParseFilename("OR_ABI-L1b-RadM3-M6C14_G17_s20193002048275_e20193002048332_c20193002048405.nc")
		require.Error(t, err)
	})

	t.Run("not a radiance key", func(t *testing.T) {
		_, err := ParseFilename("OR_ABI-L2-FDCF-M6_G16_s20193002048275_e20193002048332_c20193002048405.nc")
		require.Error(t, err)
	})

	t.Run("day of year out of range", func(t *testing.T) {
		_, err := ParseFilename("OR_ABI-L1b-RadM1-M6C14_G17_s20190002048275_e20193002048332_c20193002048405.nc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "day of year")
	})
}

func TestFileIDKey(t *testing.T) {
	id, err := ParseFilename(testKeyM1C14)
	require.NoError(t, err)

	key := id.Key()
	assert.Equal(t, "noaa-goes17", key.Satellite)
	assert.Equal(t, "M1", key.Region)
	assert.Equal(t, id.StartedAt, key.StartedAt)
}
