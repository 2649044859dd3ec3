package mp3

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEncoder(t *testing.T, cfg Config) *Encoder {
	t.Helper()
	enc, err := NewEncoder(cfg)
	require.NoError(t, err)
	return enc
}

func TestInt2idxTable(t *testing.T) {
	enc := newTestEncoder(t, DefaultConfig(44100, 2))
	for _, i := range []int{0, 1, 2, 100, 999, 5000, 9999} {
		expected := int(math.Pow(float64(i), 0.75) - 0.0946 + 0.5)
		assert.Equal(t, expected, enc.quant.int2idx[i], "int2idx[%d]", i)
	}
}

func TestStepTable(t *testing.T) {
	enc := newTestEncoder(t, DefaultConfig(44100, 2))
	assert.InDelta(t, 1.0, enc.quant.stepTable[127], 1e-12)
	// Each entry is the fourth root of 2 times the next.
	for i := 1; i < 128; i++ {
		ratio := enc.quant.stepTable[i-1] / enc.quant.stepTable[i]
		assert.InDelta(t, math.Pow(2, 0.25), ratio, 1e-9, "index %d", i)
	}
}

func TestCalcRunLength(t *testing.T) {
	testCases := []struct {
		name      string
		fill      func(ix *[GranuleSize]int)
		bigValues int
		count1    int
	}{
		{
			name:      "all zero",
			fill:      func(ix *[GranuleSize]int) {},
			bigValues: 0,
			count1:    0,
		},
		{
			name: "all big",
			fill: func(ix *[GranuleSize]int) {
				for i := range ix {
					ix[i] = 3
				}
			},
			bigValues: maxBigValues,
			count1:    0,
		},
		{
			name: "big then count1 then zeros",
			fill: func(ix *[GranuleSize]int) {
				for i := 0; i < 10; i++ {
					ix[i] = 5
				}
				for i := 10; i < 18; i++ {
					ix[i] = 1
				}
			},
			bigValues: 5,
			count1:    2,
		},
		{
			name: "lone value at the bottom",
			fill: func(ix *[GranuleSize]int) {
				// The zero run stops at the last nonzero pair, and a
				// single pair is below the quadruple granularity.
				ix[0] = 1
			},
			bigValues: 1,
			count1:    0,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var ix [GranuleSize]int
			var gi granuleInfo
			tc.fill(&ix)
			calcRunLength(&ix, &gi)
			assert.Equal(t, tc.bigValues, gi.bigValues)
			assert.Equal(t, tc.count1, gi.count1)
			// The three regions must tile the granule.
			assert.LessOrEqual(t, gi.bigValues*2+gi.count1*4, GranuleSize)
		})
	}
}

func TestCount1BitCount(t *testing.T) {
	var ix [GranuleSize]int
	gi := granuleInfo{count1: 1}

	// One quadruple of all ones: table 32 codes pattern 15 in 6 bits, table
	// 33 in 4, plus four sign bits either way.
	ix[0], ix[1], ix[2], ix[3] = 1, 1, 1, 1
	bits := count1BitCount(&ix, &gi)
	assert.Equal(t, 1, gi.count1TableSelect)
	assert.Equal(t, 8, bits)

	// All zeros: table 32 codes pattern 0 in a single bit.
	ix[0], ix[1], ix[2], ix[3] = 0, 0, 0, 0
	bits = count1BitCount(&ix, &gi)
	assert.Equal(t, 0, gi.count1TableSelect)
	assert.Equal(t, 1, bits)
}

func TestSubdivideEmpty(t *testing.T) {
	enc := newTestEncoder(t, DefaultConfig(44100, 2))
	gi := granuleInfo{region0Count: 7, region1Count: 7}
	enc.subdivide(&gi)
	assert.Equal(t, 0, gi.region0Count)
	assert.Equal(t, 0, gi.region1Count)
}

func TestSubdivideBoundaries(t *testing.T) {
	enc := newTestEncoder(t, DefaultConfig(44100, 2))
	sfBand := scaleFactorBandIndex[enc.mpeg.sampleRateIndex]

	gi := granuleInfo{bigValues: 100}
	enc.subdivide(&gi)

	// Region boundaries must land on scale-factor band edges inside the
	// big-values region.
	assert.Equal(t, sfBand[gi.region0Count+1], gi.address1)
	assert.LessOrEqual(t, gi.address1, gi.bigValues*2)
	assert.LessOrEqual(t, gi.address2, gi.bigValues*2)
	assert.Equal(t, gi.bigValues*2, gi.address3)
}

func TestChooseTableSmallValues(t *testing.T) {
	var ix [GranuleSize]int

	assert.Equal(t, 0, chooseTable(&ix, 0, 16), "all zeros need no table")

	for i := 0; i < 16; i++ {
		ix[i] = 1
	}
	table := chooseTable(&ix, 0, 16)
	assert.Equal(t, 1, table, "values of at most 1 fit table 1")

	for i := 0; i < 16; i++ {
		ix[i] = 14
	}
	table = chooseTable(&ix, 0, 16)
	assert.GreaterOrEqual(t, table, 13, "values of 14 need a 15-wide table")
	assert.LessOrEqual(t, table, 15)
}

func TestChooseTableEscape(t *testing.T) {
	var ix [GranuleSize]int
	for i := 0; i < 16; i++ {
		ix[i] = 100
	}
	table := chooseTable(&ix, 0, 16)
	require.Greater(t, table, 15, "values past 15 need linbits")
	assert.GreaterOrEqual(t, huffmanTables[table].linMax, 100-15)
}

func TestQuantizeRange(t *testing.T) {
	enc := newTestEncoder(t, DefaultConfig(44100, 2))
	var ix [GranuleSize]int

	for i := 0; i < GranuleSize; i++ {
		enc.quant.xrabs[i] = int32(i * 1000)
	}
	enc.quant.xrmax = enc.quant.xrabs[GranuleSize-1]

	// A coarse step keeps everything inside the table range.
	max := enc.quantize(&ix, 0)
	assert.LessOrEqual(t, max, 8192)
	for i := 0; i < GranuleSize; i++ {
		assert.GreaterOrEqual(t, ix[i], 0)
	}

	// The early-out fires long before the finest step could overflow.
	enc.quant.xrmax = math.MaxInt32
	assert.Equal(t, 16384, enc.quantize(&ix, -120))
}

func TestInnerLoopStaysBounded(t *testing.T) {
	enc := newTestEncoder(t, DefaultConfig(44100, 2))
	var ix [GranuleSize]int

	for i := 0; i < GranuleSize; i++ {
		enc.quant.xrabs[i] = int32(1) << 24
	}
	enc.quant.xrmax = 1 << 24

	gi := &enc.side.granules[0][0]
	gi.quantStepSize = enc.binSearchStepSize(100, &ix, gi)
	assert.GreaterOrEqual(t, gi.quantStepSize, -127)
	assert.LessOrEqual(t, gi.quantStepSize, 0)

	// Even with an absurdly small budget the loop terminates at step 0,
	// and the resulting global gain stays inside its 8-bit field.
	enc.innerLoop(&ix, 10, gi)
	assert.LessOrEqual(t, gi.quantStepSize, 0)
	assert.GreaterOrEqual(t, gi.quantStepSize+210, 0)
	assert.LessOrEqual(t, gi.quantStepSize+210, 255)
}
