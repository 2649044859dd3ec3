package mp3

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAbsAndSign(t *testing.T) {
	x := 5
	assert.Equal(t, uint32(0), absAndSign(&x))
	assert.Equal(t, 5, x)

	x = -5
	assert.Equal(t, uint32(1), absAndSign(&x))
	assert.Equal(t, 5, x)

	x = 0
	assert.Equal(t, uint32(1), absAndSign(&x), "zero takes the negative branch but has no sign bit to write")
	assert.Equal(t, 0, x)
}

func TestHuffmanCodePair(t *testing.T) {
	var bw bitWriter
	bw.open(16)

	// Table 1, pair (1, 0): code word 1 of length 2 plus one sign bit.
	huffmanCode(&bw, 1, 1, 0)
	assert.Equal(t, 3, bw.bitCount())

	// Pad to a byte and inspect: 01 + sign 0, then five zeros.
	bw.putBits(0, 5)
	bw.drain()
	assert.Equal(t, uint8(0x40), bw.data[0])
}

func TestHuffmanCodeNegativePair(t *testing.T) {
	var bw bitWriter
	bw.open(16)

	// Table 1, pair (-1, -1): code word 0 of length 3, two sign bits set.
	huffmanCode(&bw, 1, -1, -1)
	assert.Equal(t, 5, bw.bitCount())
	bw.putBits(0, 3)
	bw.drain()
	assert.Equal(t, uint8(0x18), bw.data[0])
}

func TestHuffmanCodeEscape(t *testing.T) {
	var bw bitWriter
	bw.open(64)

	// Table 16 carries 1 linbit: value 16 codes as 15 plus escape 1.
	h := &huffmanTables[16]
	expected := int(h.lengths[15*h.yLen+15]) + // code word for (15, 15)
		h.linBits + 1 + // escape and sign of x
		h.linBits + 1 // escape and sign of y
	huffmanCode(&bw, 16, 16, -16)
	assert.Equal(t, expected, bw.bitCount())
}

func TestHuffmanCodeCount1MatchesBitCount(t *testing.T) {
	// The writer and the counter must agree on every quadruple pattern.
	for p := 0; p < 16; p++ {
		var ix [GranuleSize]int
		ix[0] = p & 1
		ix[1] = (p >> 1) & 1
		ix[2] = (p >> 2) & 1
		ix[3] = (p >> 3) & 1

		gi := granuleInfo{count1: 1}
		counted := count1BitCount(&ix, &gi)

		var bw bitWriter
		bw.open(16)
		h := &huffmanTables[gi.count1TableSelect+32]
		huffmanCodeCount1(&bw, h, ix[0], ix[1], ix[2], ix[3])
		assert.Equal(t, counted, bw.bitCount(), "pattern %04b", p)
	}
}

func TestBigValuesBitCountMatchesWriter(t *testing.T) {
	// countBits and huffmanCode must agree for an escape table region.
	values := []int{3, 0, 17, 1, 200, 14, 15, 15}
	var ix [GranuleSize]int
	copy(ix[:], values)

	table := chooseTable(&ix, 0, len(values))
	counted := countBits(&ix, 0, len(values), table)

	var bw bitWriter
	bw.open(256)
	for i := 0; i < len(values); i += 2 {
		huffmanCode(&bw, table, ix[i], ix[i+1])
	}
	assert.Equal(t, counted, bw.bitCount())
}
