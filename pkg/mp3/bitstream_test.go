package mp3

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPutBits(t *testing.T) {
	var bw bitWriter
	bw.open(16)

	bw.putBits(0xFF, 8)
	bw.putBits(0xFB, 8)
	bw.putBits(0x9, 4)
	bw.putBits(0x0, 4)
	bw.putBits(0xC4, 8)

	assert.Equal(t, 32, bw.bitCount())
	// The cache spills once it holds a full word.
	assert.Equal(t, []uint8{0xFF, 0xFB, 0x90, 0xC4}, bw.data[:bw.dataPos])
}

func TestPutBitsAcrossWordBoundary(t *testing.T) {
	var bw bitWriter
	bw.open(16)

	bw.putBits(0x7FF, 11)
	bw.putBits(0x3FFFFFFF, 30)

	assert.Equal(t, 41, bw.bitCount())
	bw.putBits(0, 23)
	assert.Equal(t, 64, bw.bitCount())
	assert.Equal(t, []uint8{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x80, 0x00, 0x00}, bw.data[:bw.dataPos])
}

func TestDrainEmptiesWholeBytes(t *testing.T) {
	var bw bitWriter
	bw.open(16)

	bw.putBits(0xAB, 8)
	bw.putBits(0xCD, 8)
	assert.Equal(t, 0, bw.dataPos, "cache should not have spilled yet")

	bw.drain()
	assert.Equal(t, 2, bw.dataPos)
	assert.Equal(t, []uint8{0xAB, 0xCD}, bw.data[:bw.dataPos])
	assert.Equal(t, 16, bw.bitCount(), "drain must not change the bit count")
}

func TestBufferGrows(t *testing.T) {
	var bw bitWriter
	bw.open(4)

	for i := 0; i < 100; i++ {
		bw.putBits(0xFFFFFFFF, 32)
	}
	bw.drain()
	assert.Equal(t, 400, bw.dataPos)
	for _, b := range bw.data[:bw.dataPos] {
		assert.Equal(t, uint8(0xFF), b)
	}
}
