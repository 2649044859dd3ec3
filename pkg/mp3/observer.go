package mp3

// GranuleStats summarizes the outcome of quantizing one granule of one
// channel.
type GranuleStats struct {
	// Part23Length is the scale-factor plus Huffman bit count.
	Part23Length int
	// BigValues is the number of coefficient pairs in the big-values region.
	BigValues int
	// Count1 is the number of quadruples in the count1 region.
	Count1 int
	// GlobalGain is the quantizer step index written into the side info.
	GlobalGain int
}

// Observer receives progress callbacks from the encoder. Implementations
// must not retain the arguments past the call. A nil observer disables all
// callbacks.
type Observer interface {
	// GranuleTransformed fires after the MDCT and aliasing reduction of one
	// granule, with the 576 frequency coefficients about to be quantized.
	// The slice aliases encoder state and must not be modified.
	GranuleTransformed(ch, gr int, spectrum []int32)
	// GranuleEncoded fires after the quantization loop settles one granule.
	GranuleEncoded(ch, gr int, stats GranuleStats)
	// FrameEncoded fires after a frame is fully assembled, with the frame's
	// ordinal (starting at 0) and its size in bytes.
	FrameEncoded(index, size int)
}

// SetObserver installs or clears the encoder's observer. It must not be
// called while an Encode is in progress.
func (enc *Encoder) SetObserver(o Observer) {
	enc.observer = o
}
