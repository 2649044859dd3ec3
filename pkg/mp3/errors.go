package mp3

import "errors"

var (
	// ErrUnsupportedSampleRate is returned when the samplerate is not one of
	// the nine rates defined by MPEG-1, MPEG-2 and MPEG-2.5.
	ErrUnsupportedSampleRate = errors.New("mp3: unsupported samplerate")
	// ErrUnsupportedBitrate is returned when the bitrate is not legal for the
	// MPEG version implied by the samplerate.
	ErrUnsupportedBitrate = errors.New("mp3: unsupported bitrate for samplerate")
	// ErrInvalidChannels is returned for channel counts other than 1 or 2.
	ErrInvalidChannels = errors.New("mp3: channel count must be 1 or 2")
	// ErrInvalidMode is returned when the stereo mode contradicts the channel
	// count, e.g. Mono with two channels.
	ErrInvalidMode = errors.New("mp3: stereo mode incompatible with channel count")
	// ErrBadFrameSize is returned by EncodeFrame when the sample count is not
	// exactly one frame for the configured format.
	ErrBadFrameSize = errors.New("mp3: pcm length is not one full frame")
	// ErrEncoderClosed is returned when an encoder is used after Flush.
	ErrEncoderClosed = errors.New("mp3: encoder already flushed")
)
