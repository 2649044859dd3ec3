// bitstream.go is the bit-packed output buffer frames are assembled into.
package mp3

const (
	// maxPutBits is the widest single write the buffer accepts.
	maxPutBits = 32
	// bufferSize is the initial byte capacity of the buffer.
	bufferSize = 4096
)

// bitWriter is an append-only bit-packed byte buffer. Bits accumulate in a
// 32-bit cache and spill into data four bytes at a time, so the tail of the
// stream lives in the cache until it fills.
type bitWriter struct {
	data      []uint8
	dataSize  int
	dataPos   int
	cache     uint32
	cacheBits int
}

func (bs *bitWriter) open(size int) {
	bs.data = make([]uint8, size)
	bs.dataSize = size
	bs.dataPos = 0
	bs.cache = 0
	bs.cacheBits = 32
}

// putBits appends the low n bits of val, most significant first. n must be
// at most maxPutBits and val must fit in n bits.
func (bs *bitWriter) putBits(val uint32, n uint) {
	if bs.cacheBits > int(n) {
		bs.cacheBits -= int(n)
		bs.cache |= val << uint32(bs.cacheBits)
		return
	}
	if bs.dataPos+4 >= bs.dataSize {
		grown := make([]uint8, bs.dataSize+(bs.dataSize>>1))
		copy(grown, bs.data)
		bs.data = grown
		bs.dataSize = len(grown)
	}
	n -= uint(bs.cacheBits)
	bs.cache |= val >> n
	bs.data[bs.dataPos] = uint8(bs.cache >> 24)
	bs.data[bs.dataPos+1] = uint8(bs.cache >> 16)
	bs.data[bs.dataPos+2] = uint8(bs.cache >> 8)
	bs.data[bs.dataPos+3] = uint8(bs.cache)
	bs.dataPos += 4
	bs.cacheBits = int(32 - n)
	if n != 0 {
		bs.cache = val << uint(bs.cacheBits)
	} else {
		bs.cache = 0
	}
}

// bitCount reports the total number of bits written so far, including the
// partially filled cache.
func (bs *bitWriter) bitCount() int {
	return bs.dataPos*8 + 32 - bs.cacheBits
}

// drain moves every whole byte out of the cache into data. Frames are byte
// aligned, so calling it at a frame boundary empties the cache completely and
// dataPos lands exactly on the frame edge.
func (bs *bitWriter) drain() {
	for bs.cacheBits <= 24 {
		if bs.dataPos+1 >= bs.dataSize {
			grown := make([]uint8, bs.dataSize+(bs.dataSize>>1))
			copy(grown, bs.data)
			bs.data = grown
			bs.dataSize = len(grown)
		}
		bs.data[bs.dataPos] = uint8(bs.cache >> 24)
		bs.dataPos++
		bs.cache <<= 8
		bs.cacheBits += 8
	}
}
