package mp3

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterSubbandZeroInput(t *testing.T) {
	enc := newTestEncoder(t, DefaultConfig(44100, 1))

	pcm := make([]int16, 64)
	var s [subbandLimit]int32
	rest := enc.filterSubband(pcm, &s, 0, 1)

	assert.Len(t, rest, 32, "one analysis step consumes 32 samples")
	assert.Equal(t, [subbandLimit]int32{}, s, "silence filters to silence")
}

func TestFilterSubbandAdvancesByStride(t *testing.T) {
	enc := newTestEncoder(t, DefaultConfig(44100, 2))

	pcm := make([]int16, 128)
	var s [subbandLimit]int32
	rest := enc.filterSubband(pcm, &s, 0, 2)
	assert.Len(t, rest, 64, "interleaved stereo consumes 64 interleaved samples per step")
}

func TestFilterSubbandSecondChannelTail(t *testing.T) {
	enc := newTestEncoder(t, DefaultConfig(44100, 2))

	// Channel 1's cursor is frame[1:], one sample shorter than the frame
	// itself. The last analysis step reads up to index 62 of 63 remaining
	// samples and must clamp the advance instead of slicing past the end.
	frame := make([]int16, 64)
	var s [subbandLimit]int32
	rest := enc.filterSubband(frame[1:], &s, 1, 2)
	assert.Empty(t, rest, "clamped advance consumes the whole tail")
}

func TestFilterSubbandDeterministic(t *testing.T) {
	mk := func() *Encoder { return newTestEncoder(t, DefaultConfig(44100, 1)) }

	pcm := make([]int16, 32)
	for i := range pcm {
		pcm[i] = int16(i*137 - 1000)
	}

	enc1, enc2 := mk(), mk()
	var s1, s2 [subbandLimit]int32
	enc1.filterSubband(pcm, &s1, 0, 1)
	enc2.filterSubband(pcm, &s2, 0, 1)
	assert.Equal(t, s1, s2, "fresh encoders produce identical subband samples")
}

func TestFilterSubbandHistoryCarries(t *testing.T) {
	enc := newTestEncoder(t, DefaultConfig(44100, 1))

	loud := make([]int16, 32)
	for i := range loud {
		loud[i] = 20000
	}
	silence := make([]int16, 32)

	var s [subbandLimit]int32
	enc.filterSubband(loud, &s, 0, 1)
	enc.filterSubband(silence, &s, 0, 1)

	// The 512-sample history still holds the loud step, so silence in does
	// not mean silence out.
	nonZero := false
	for _, v := range s {
		if v != 0 {
			nonZero = true
			break
		}
	}
	assert.True(t, nonZero, "filter history must carry across steps")
}
