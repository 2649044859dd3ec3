package mp3

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxReservoirBitsDisabled(t *testing.T) {
	enc := newTestEncoder(t, DefaultConfig(44100, 2))
	enc.meanBits = 2000

	// With the reservoir disabled every granule gets its plain per-channel
	// share, perceptual entropy notwithstanding.
	assert.Equal(t, 1000, enc.maxReservoirBits(0))
	assert.Equal(t, 1000, enc.maxReservoirBits(5000))
}

func TestMaxReservoirBitsCapped(t *testing.T) {
	enc := newTestEncoder(t, DefaultConfig(44100, 1))
	enc.meanBits = 5000

	assert.Equal(t, maxPart23Length, enc.maxReservoirBits(0))
}

func TestMaxReservoirBitsBonus(t *testing.T) {
	enc := newTestEncoder(t, DefaultConfig(44100, 2))
	enc.meanBits = 2000
	enc.resvMax = 4000
	enc.resvSize = 1000

	// pe*3.1 - 1000 = 2100 extra wanted, limited to 60% of the level.
	got := enc.maxReservoirBits(1000)
	assert.Equal(t, 1000+600, got)

	// A reservoir past 80% of capacity drains even without demand.
	enc.resvSize = 3800
	got = enc.maxReservoirBits(300)
	assert.Equal(t, 1000+(3800-3200), got)
}

func TestAdjustReservoir(t *testing.T) {
	enc := newTestEncoder(t, DefaultConfig(44100, 2))
	enc.meanBits = 2000

	gi := granuleInfo{part23Length: 600}
	enc.adjustReservoir(&gi)
	assert.Equal(t, 400, enc.resvSize, "unused share is credited")

	gi.part23Length = 1400
	enc.adjustReservoir(&gi)
	assert.Equal(t, 0, enc.resvSize, "overdraw saturates at zero")
}

func TestReservoirFrameEndStuffsFirstGranule(t *testing.T) {
	enc := newTestEncoder(t, DefaultConfig(44100, 2))
	enc.meanBits = 2000
	enc.resvSize = 240
	enc.side.granules[0][0].part23Length = 1000

	stuffing, drain := enc.reservoirFrameEnd()
	assert.Equal(t, 240, stuffing, "everything over a zero-capacity reservoir is stuffing")
	assert.Equal(t, 0, drain)
	assert.Equal(t, 1240, enc.side.granules[0][0].part23Length)
	assert.Equal(t, 0, enc.resvSize)
}

func TestReservoirFrameEndSpillsAcrossGranules(t *testing.T) {
	enc := newTestEncoder(t, DefaultConfig(44100, 2))
	enc.meanBits = 2000
	enc.resvSize = 800
	for gr := 0; gr < 2; gr++ {
		for ch := 0; ch < 2; ch++ {
			enc.side.granules[gr][ch].part23Length = maxPart23Length - 100
		}
	}

	stuffing, drain := enc.reservoirFrameEnd()
	assert.Equal(t, 800, stuffing)
	assert.Equal(t, 400, drain, "bits past every granule's field limit drain to ancillary")
	assert.Equal(t, 400, enc.side.resvDrain)
	for gr := 0; gr < 2; gr++ {
		for ch := 0; ch < 2; ch++ {
			assert.Equal(t, maxPart23Length, enc.side.granules[gr][ch].part23Length)
		}
	}
}

func TestReservoirFrameEndOddMeanBits(t *testing.T) {
	enc := newTestEncoder(t, DefaultConfig(44100, 2))
	enc.meanBits = 2001
	enc.resvSize = 7

	// The odd bit lost to the per-channel split comes back, and the total
	// is byte aligned.
	stuffing, drain := enc.reservoirFrameEnd()
	assert.Equal(t, 8, stuffing)
	assert.Equal(t, 0, drain)
}
