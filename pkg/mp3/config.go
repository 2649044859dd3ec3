package mp3

// Config describes the stream the encoder produces. It is validated by
// NewEncoder and copied; changing a Config after construction has no effect
// on a running encoder.
type Config struct {
	// SampleRate in Hz. Must be one of the nine MPEG rates; the MPEG version
	// is derived from it.
	SampleRate int
	// Channels is 1 or 2.
	Channels int
	// Bitrate in kbps. Must be legal for the implied MPEG version.
	Bitrate int
	// Mode is the stereo mode written to the header. Must be Mono for one
	// channel and non-Mono for two.
	Mode StereoMode
	// Emphasis is the de-emphasis header flag.
	Emphasis Emphasis
	// Copyright and Original set the corresponding header bits.
	Copyright bool
	Original  bool
}

// DefaultConfig returns the encoder defaults for a samplerate and channel
// count: 128 kbps, stereo or mono by channel count, no emphasis, original
// bit set.
func DefaultConfig(sampleRate, channels int) Config {
	mode := Stereo
	if channels == 1 {
		mode = Mono
	}
	return Config{
		SampleRate: sampleRate,
		Channels:   channels,
		Bitrate:    128,
		Mode:       mode,
		Emphasis:   EmphasisNone,
		Original:   true,
	}
}

// granulesPerFrame maps the 2-bit MPEG version field to granules per frame.
var granulesPerFrame = [4]int{
	1,  // MPEG-2.5
	-1, // reserved
	1,  // MPEG-2
	2,  // MPEG-1
}

// versionForSampleRateIndex derives the MPEG version from the samplerate
// index: the first three rates are MPEG-1, the next three MPEG-2, the rest
// MPEG-2.5.
func versionForSampleRateIndex(idx int) mpegVersion {
	switch {
	case idx < 3:
		return mpeg1
	case idx < 6:
		return mpeg2
	default:
		return mpeg25
	}
}

// findSampleRateIndex maps a samplerate in Hz to its table index.
func findSampleRateIndex(freq int) (int, error) {
	for i := 0; i < len(sampleRates); i++ {
		if freq == sampleRates[i] {
			return i, nil
		}
	}
	return -1, ErrUnsupportedSampleRate
}

// findBitrateIndex maps a bitrate in kbps to its table index for a version.
func findBitrateIndex(bitrate int, ver mpegVersion) (int, error) {
	for i := 0; i < len(bitRates); i++ {
		if bitrate == bitRates[i][ver] {
			return i, nil
		}
	}
	return -1, ErrUnsupportedBitrate
}

// Validate checks the full configuration against the MPEG parameter tables.
// It is called by NewEncoder; no encoder state exists for an invalid Config.
func (c Config) Validate() error {
	if c.Channels < 1 || c.Channels > MaxChannels {
		return ErrInvalidChannels
	}
	if (c.Channels == 1) != (c.Mode == Mono) {
		return ErrInvalidMode
	}
	idx, err := findSampleRateIndex(c.SampleRate)
	if err != nil {
		return err
	}
	if _, err := findBitrateIndex(c.Bitrate, versionForSampleRateIndex(idx)); err != nil {
		return err
	}
	return nil
}
