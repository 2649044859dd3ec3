package mp3

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestButterflyCoefficientsNormalized(t *testing.T) {
	// Each aliasing-reduction pair must satisfy ca^2 + cs^2 = 1.
	for i := range butterflyC {
		ca := float64(mdctCATab[i]) / math.MaxInt32
		cs := float64(mdctCSTab[i]) / math.MaxInt32
		assert.InDelta(t, 1.0, ca*ca+cs*cs, 1e-6, "butterfly %d", i)
	}
}

func TestMDCTZeroInput(t *testing.T) {
	enc := newTestEncoder(t, DefaultConfig(44100, 2))

	pcm := make([]int16, MaxSamplesPerFrame*2)
	enc.chanPCM[0] = pcm
	enc.chanPCM[1] = pcm[1:]
	enc.mdctGranules(2)

	for ch := 0; ch < 2; ch++ {
		for gr := 0; gr < 2; gr++ {
			assert.Equal(t, [GranuleSize]int32{}, enc.mdctFreq[ch][gr], "ch %d gr %d", ch, gr)
		}
	}
}

func TestAliasReductionBoundaryLocality(t *testing.T) {
	var spectrum [GranuleSize]int32
	for i := range spectrum {
		spectrum[i] = int32(i + 1)
	}
	before := spectrum

	applyAliasReduction(&spectrum, 16)

	// The butterflies only reach 8 coefficients either side of the band 16
	// boundary (coefficient 288).
	for i := 0; i < 288-8; i++ {
		assert.Equal(t, before[i], spectrum[i], "coefficient %d below the butterflies", i)
	}
	for i := 288 + 8; i < GranuleSize; i++ {
		assert.Equal(t, before[i], spectrum[i], "coefficient %d above the butterflies", i)
	}
	changed := false
	for i := 288 - 8; i < 288+8; i++ {
		if spectrum[i] != before[i] {
			changed = true
			break
		}
	}
	assert.True(t, changed, "the boundary region must be transformed")
}

func TestMDCTOverlapCarries(t *testing.T) {
	enc := newTestEncoder(t, DefaultConfig(44100, 1))

	loud := make([]int16, MaxSamplesPerFrame)
	for i := range loud {
		loud[i] = int16(10000 * math.Sin(float64(i)*0.1))
	}
	enc.chanPCM[0] = loud
	enc.mdctGranules(1)

	silence := make([]int16, MaxSamplesPerFrame)
	enc.chanPCM[0] = silence
	enc.mdctGranules(1)

	// The first granule of the silent frame overlaps the last granule of
	// the loud one, so it cannot be all zero.
	nonZero := false
	for _, v := range enc.mdctFreq[0][0] {
		if v != 0 {
			nonZero = true
			break
		}
	}
	assert.True(t, nonZero, "MDCT overlap must carry across frames")
}
