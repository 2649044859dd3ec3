/*
Package mp3 implements a fixed-point MPEG-1/2 Audio Layer III encoder.

The encoder converts interleaved 16-bit PCM samples into a constant-bitrate
MP3 elementary stream. It is a faithful reproduction of the classic
integer-only encoder design: no floating point is used on the per-sample
path, so the same PCM input always produces the same bytes.

# Pipeline

Each frame of audio (1152 samples per channel for MPEG-I, 576 otherwise)
passes through the following stages:

 1. Polyphase analysis filterbank: a 512-sample rolling history per channel
    is windowed and filtered into 32 subband samples per 32 input samples.
 2. MDCT: 36 subband time samples (18 previous + 18 current) per subband are
    transformed into 18 frequency coefficients, 576 per granule, followed by
    an 8-tap aliasing-reduction butterfly at each internal subband boundary.
 3. Quantization loop: a bounded search over the global gain, combined with
    a bit allowance from the bit reservoir, quantizes the 576 coefficients so
    the Huffman-coded length fits the frame's bit budget. For MPEG-I streams
    the scale-factor selection information (SCFSI) is computed so the second
    granule can reuse the first granule's scale factors.
 4. Huffman coding: the quantized spectrum is split into a "big values"
    region (coefficient pairs, three selectable code tables) and a "count1"
    region (quadruples restricted to -1, 0, +1), and written as
    variable-length codes plus sign bits.
 5. Frame assembly: 4-byte header, side information, and main data are
    bit-packed into the output stream. The CBR padding slot is toggled by a
    fractional slot accumulator so the long-run frame size matches the
    target bitrate exactly.

# Usage

	enc, err := mp3.NewEncoder(mp3.DefaultConfig(44100, 2))
	if err != nil {
		// unsupported samplerate/bitrate/channel combination
	}
	out, err := enc.Encode(pcm) // interleaved int16 samples
	...
	tail, err := enc.Flush() // pads the last partial frame with silence

An Encoder is not safe for concurrent use; run one instance per stream.
Independent instances share only immutable tables and may run in parallel.
*/
package mp3
