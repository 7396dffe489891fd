package goes

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scanKeys builds the 16 object keys of one synthetic scan.
func scanKeys(satToken, region, start string) []string {
	keys := make([]string, 0, 16)
	for c := 1; c <= 16; c++ {
		keys = append(keys, fmt.Sprintf(
			"OR_ABI-L1b-Rad%s-M6C%02d_G%s_s%s_e%s_c%s.nc",
			region, c, satToken, start, start, start,
		))
	}
	return keys
}

func TestGroupFilepaths(t *testing.T) {
	t.Run("two shuffled scans produce two groups", func(t *testing.T) {
		scanA := scanKeys("17", "M1", "20193002048275")
		scanB := scanKeys("16", "C", "20193011100000")

		mixed := append(append([]string{}, scanA...), scanB...)
		rand.New(rand.NewSource(42)).Shuffle(len(mixed), func(i, j int) {
			mixed[i], mixed[j] = mixed[j], mixed[i]
		})

		groups, invalid := GroupFilepaths(mixed)
		require.Empty(t, invalid)
		require.Len(t, groups, 2)

		// Deterministic order: noaa-goes16 sorts before noaa-goes17, and
		// filepaths within a group come back channel-ordered.
		assert.Equal(t, "noaa-goes16", groups[0].Key.Satellite)
		assert.Equal(t, "C", groups[0].Key.Region)
		assert.Empty(t, cmp.Diff(scanB, groups[0].Filepaths))

		assert.Equal(t, "noaa-goes17", groups[1].Key.Satellite)
		assert.Equal(t, "M1", groups[1].Key.Region)
		assert.Empty(t, cmp.Diff(scanA, groups[1].Filepaths))
	})

	t.Run("incomplete group survives grouping", func(t *testing.T) {
		// Validation of completeness belongs to scan assembly; the short
		// group must be surfaced, not dropped.
		short := scanKeys("17", "M1", "20193002048275")[:13]

		groups, invalid := GroupFilepaths(short)
		require.Empty(t, invalid)
		require.Len(t, groups, 1)
		assert.Len(t, groups[0].Filepaths, 13)
	})

	t.Run("unparseable keys returned separately", func(t *testing.T) {
		keys := append(scanKeys("16", "F", "20193001000000"), "not-a-key.nc")

		groups, invalid := GroupFilepaths(keys)
		require.Len(t, groups, 1)
		require.Len(t, invalid, 1)
		assert.Equal(t, "not-a-key.nc", invalid[0].Filepath)
		assert.Error(t, invalid[0].Err)
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		keys := append(scanKeys("17", "M2", "20193002048275"), scanKeys("17", "M1", "20193002048275")...)

		first, _ := GroupFilepaths(keys)
		second, _ := GroupFilepaths(keys)
		assert.Empty(t, cmp.Diff(first, second))
	})
}
