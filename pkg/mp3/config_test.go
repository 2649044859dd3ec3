package mp3

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig(44100, 2)
	assert.Equal(t, 128, cfg.Bitrate)
	assert.Equal(t, Stereo, cfg.Mode)
	assert.NoError(t, cfg.Validate())

	cfg = DefaultConfig(22050, 1)
	assert.Equal(t, Mono, cfg.Mode)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		name string
		cfg  Config
		err  error
	}{
		{
			name: "unsupported samplerate",
			cfg:  Config{SampleRate: 44000, Channels: 2, Bitrate: 128, Mode: Stereo},
			err:  ErrUnsupportedSampleRate,
		},
		{
			name: "bitrate illegal for MPEG-1",
			cfg:  Config{SampleRate: 44100, Channels: 2, Bitrate: 8, Mode: Stereo},
			err:  ErrUnsupportedBitrate,
		},
		{
			name: "bitrate illegal for MPEG-2",
			cfg:  Config{SampleRate: 22050, Channels: 1, Bitrate: 320, Mode: Mono},
			err:  ErrUnsupportedBitrate,
		},
		{
			name: "zero channels",
			cfg:  Config{SampleRate: 44100, Channels: 0, Bitrate: 128, Mode: Stereo},
			err:  ErrInvalidChannels,
		},
		{
			name: "three channels",
			cfg:  Config{SampleRate: 44100, Channels: 3, Bitrate: 128, Mode: Stereo},
			err:  ErrInvalidChannels,
		},
		{
			name: "mono samples with stereo mode",
			cfg:  Config{SampleRate: 44100, Channels: 1, Bitrate: 128, Mode: Stereo},
			err:  ErrInvalidMode,
		},
		{
			name: "stereo samples with mono mode",
			cfg:  Config{SampleRate: 44100, Channels: 2, Bitrate: 128, Mode: Mono},
			err:  ErrInvalidMode,
		},
		{
			name: "valid MPEG-2.5",
			cfg:  Config{SampleRate: 8000, Channels: 1, Bitrate: 64, Mode: Mono},
			err:  nil,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.cfg.Validate(), tc.err)
		})
	}
}

func TestVersionForSampleRate(t *testing.T) {
	for _, rate := range []int{44100, 48000, 32000} {
		idx, err := findSampleRateIndex(rate)
		assert.NoError(t, err)
		assert.Equal(t, mpeg1, versionForSampleRateIndex(idx), "rate %d", rate)
	}
	for _, rate := range []int{22050, 24000, 16000} {
		idx, _ := findSampleRateIndex(rate)
		assert.Equal(t, mpeg2, versionForSampleRateIndex(idx), "rate %d", rate)
	}
	for _, rate := range []int{11025, 12000, 8000} {
		idx, _ := findSampleRateIndex(rate)
		assert.Equal(t, mpeg25, versionForSampleRateIndex(idx), "rate %d", rate)
	}
}
