package mp3

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// walkFrames checks the MPEG framing of an encoded stream and returns the
// frame count.
func walkFrames(t *testing.T, data []byte, sampleRate, bitrate int) int {
	t.Helper()
	frames := 0
	for pos := 0; pos < len(data); frames++ {
		require.Greater(t, len(data)-pos, 4, "truncated frame header at %d", pos)
		require.Equal(t, uint8(0xFF), data[pos], "lost sync at %d", pos)
		require.Equal(t, uint8(0xFB), data[pos+1], "expected MPEG-1 Layer III, no CRC, at %d", pos)
		padding := int(data[pos+2]>>1) & 1
		size := 144*bitrate*1000/sampleRate + padding
		pos += size
	}
	return frames
}

func sineWave(samples, channels int, freq float64, sampleRate int) []int16 {
	pcm := make([]int16, samples*channels)
	for i := 0; i < samples; i++ {
		v := int16(12000 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
		for ch := 0; ch < channels; ch++ {
			pcm[i*channels+ch] = v
		}
	}
	return pcm
}

func TestEncodeSilenceFraming(t *testing.T) {
	enc := newTestEncoder(t, DefaultConfig(44100, 2))

	pcm := make([]int16, 44100*2) // one second
	out, err := enc.Encode(pcm)
	require.NoError(t, err)
	tail, err := enc.Flush()
	require.NoError(t, err)
	out = append(out, tail...)

	// 44100 samples are 38 full frames plus a padded final one.
	frames := walkFrames(t, out, 44100, 128)
	assert.Equal(t, 39, frames)
}

func TestHighBitrateFramesFillHeaderSize(t *testing.T) {
	// Mono at 320 kbps gives each granule far more bits than the 4095-bit
	// part2_3_length fields can hold, so most of the frame must go out as
	// ancillary bits after the main data.
	cfg := DefaultConfig(32000, 1)
	cfg.Bitrate = 320
	enc := newTestEncoder(t, cfg)

	frame, err := enc.EncodeFrame(make([]int16, 1152))
	require.NoError(t, err)
	// 144 * 320000 / 32000 slots with no fractional remainder, never padded.
	assert.Len(t, frame, 1440, "frame must fill the size its header advertises")
	assert.Greater(t, enc.side.resvDrain, 0, "this configuration overflows the side-info fields")

	out, err := enc.Encode(sineWave(1152*4, 1, 440, 32000))
	require.NoError(t, err)
	frames := walkFrames(t, out, 32000, 320)
	assert.Equal(t, 4, frames)
}

func TestEncodeFrameStrictSize(t *testing.T) {
	enc := newTestEncoder(t, DefaultConfig(44100, 2))
	require.Equal(t, 1152, enc.SamplesPerFrame())

	_, err := enc.EncodeFrame(make([]int16, 100))
	assert.ErrorIs(t, err, ErrBadFrameSize)

	_, err = enc.EncodeFrame(make([]int16, 1152)) // per-channel count, not total
	assert.ErrorIs(t, err, ErrBadFrameSize)

	frame, err := enc.EncodeFrame(make([]int16, 1152*2))
	require.NoError(t, err)
	walkFrames(t, frame, 44100, 128)
}

func TestEncodeBuffersPartialFrames(t *testing.T) {
	enc := newTestEncoder(t, DefaultConfig(44100, 2))

	out, err := enc.Encode(make([]int16, 1000))
	require.NoError(t, err)
	assert.Empty(t, out, "less than a frame must produce nothing")

	// The remainder of the first frame plus most of a second.
	out, err = enc.Encode(make([]int16, 1152*2))
	require.NoError(t, err)
	assert.Equal(t, 1, walkFrames(t, out, 44100, 128))

	tail, err := enc.Flush()
	require.NoError(t, err)
	assert.Equal(t, 1, walkFrames(t, tail, 44100, 128), "flush pads the buffered remainder")
}

func TestFlushClosesEncoder(t *testing.T) {
	enc := newTestEncoder(t, DefaultConfig(44100, 2))

	out, err := enc.Flush()
	require.NoError(t, err)
	assert.Empty(t, out, "nothing buffered, nothing emitted")

	_, err = enc.Flush()
	assert.ErrorIs(t, err, ErrEncoderClosed)
	_, err = enc.Encode(make([]int16, 64))
	assert.ErrorIs(t, err, ErrEncoderClosed)
	_, err = enc.EncodeFrame(make([]int16, 1152*2))
	assert.ErrorIs(t, err, ErrEncoderClosed)
}

func TestEncodeDeterministic(t *testing.T) {
	pcm := sineWave(1152*4, 2, 440, 44100)

	encode := func() []byte {
		enc := newTestEncoder(t, DefaultConfig(44100, 2))
		out, err := enc.Encode(pcm)
		require.NoError(t, err)
		return out
	}
	assert.True(t, bytes.Equal(encode(), encode()), "fresh encoders must agree byte for byte")
}

func TestResetRestoresInitialState(t *testing.T) {
	pcm := sineWave(1152*3, 1, 220, 44100)
	cfg := DefaultConfig(44100, 1)

	enc := newTestEncoder(t, cfg)
	first, err := enc.Encode(pcm)
	require.NoError(t, err)
	_, err = enc.Flush()
	require.NoError(t, err)

	enc.Reset()
	second, err := enc.Encode(pcm)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(first, second), "a reset encoder must reproduce its first output")
}

func TestWriteStreams(t *testing.T) {
	enc := newTestEncoder(t, DefaultConfig(44100, 2))
	var buf bytes.Buffer

	pcm := sineWave(1152*2, 2, 440, 44100)
	require.NoError(t, enc.Write(&buf, pcm))
	assert.Equal(t, 2, walkFrames(t, buf.Bytes(), 44100, 128))
}

func TestMono22050UsesMPEG2Framing(t *testing.T) {
	cfg := DefaultConfig(22050, 1)
	cfg.Bitrate = 64
	enc := newTestEncoder(t, cfg)
	require.Equal(t, 576, enc.SamplesPerFrame(), "MPEG-2 frames carry one granule")

	frame, err := enc.EncodeFrame(make([]int16, 576))
	require.NoError(t, err)
	require.Greater(t, len(frame), 4)
	assert.Equal(t, uint8(0xFF), frame[0])
	// Version 2 (10), Layer III (01), no CRC: 1111 0011.
	assert.Equal(t, uint8(0xF3), frame[1])
}

type recordingObserver struct {
	spectra  int
	granules []GranuleStats
	frames   []int
}

func (o *recordingObserver) GranuleTransformed(ch, gr int, spectrum []int32) {
	o.spectra++
}

func (o *recordingObserver) GranuleEncoded(ch, gr int, stats GranuleStats) {
	o.granules = append(o.granules, stats)
}

func (o *recordingObserver) FrameEncoded(index, size int) {
	o.frames = append(o.frames, size)
}

func TestObserverCallbacks(t *testing.T) {
	enc := newTestEncoder(t, DefaultConfig(44100, 2))
	obs := &recordingObserver{}
	enc.SetObserver(obs)

	frame, err := enc.EncodeFrame(sineWave(1152, 2, 440, 44100))
	require.NoError(t, err)

	assert.Len(t, obs.granules, 4, "two granules times two channels")
	assert.Equal(t, 4, obs.spectra)
	require.Len(t, obs.frames, 1)
	assert.Equal(t, len(frame), obs.frames[0])
	for i, g := range obs.granules {
		assert.GreaterOrEqual(t, g.GlobalGain, 0, "granule %d", i)
		assert.LessOrEqual(t, g.GlobalGain, 255, "granule %d", i)
		assert.LessOrEqual(t, g.BigValues, maxBigValues, "granule %d", i)
		assert.LessOrEqual(t, g.Part23Length, maxPart23Length, "granule %d", i)
	}
}

func TestSideInfoFieldRanges(t *testing.T) {
	enc := newTestEncoder(t, DefaultConfig(44100, 2))
	_, err := enc.EncodeFrame(sineWave(1152, 2, 1000, 44100))
	require.NoError(t, err)

	for gr := 0; gr < 2; gr++ {
		for ch := 0; ch < 2; ch++ {
			gi := &enc.side.granules[gr][ch]
			assert.LessOrEqual(t, gi.bigValues, maxBigValues)
			assert.GreaterOrEqual(t, gi.globalGain, 0)
			assert.LessOrEqual(t, gi.globalGain, 255)
			assert.LessOrEqual(t, gi.part23Length, maxPart23Length)
			for _, ts := range gi.tableSelect {
				assert.GreaterOrEqual(t, ts, 0)
				assert.Less(t, ts, 32)
			}
			assert.LessOrEqual(t, gi.region0Count, 15)
			assert.LessOrEqual(t, gi.region1Count, 7)
		}
	}
}
