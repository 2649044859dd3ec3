package mp3

import "math"

// initSubband computes the analysis filterbank coefficient matrix, rounded
// to the 9th-decimal accuracy of the tables in the ISO document, then scaled
// to fixed point.
func (enc *Encoder) initSubband() {
	for i := subbandLimit - 1; i >= 0; i-- {
		for j := 63; j >= 0; j-- {
			filter := math.Cos(float64((i*2+1)*(16-j))*pi64) * 1e+09
			if filter >= 0 {
				filter, _ = math.Modf(filter + 0.5)
			} else {
				filter, _ = math.Modf(filter - 0.5)
			}
			enc.subband.fl[i][j] = int32(filter * (math.MaxInt32 * 1e-09))
		}
	}
}

// filterSubband runs one analysis step for a channel: 32 new PCM samples
// from pcm (consecutive frames separated by stride) replace the oldest
// samples of the 512-sample history, the history is multiplied by the
// analysis window into 64 windowed values, and the filter matrix maps those
// onto the 32 subband samples written to s. The output depends only on the
// accumulated history, never on call timing.
func (enc *Encoder) filterSubband(pcm []int16, s *[subbandLimit]int32, ch, stride int) []int16 {
	sb := &enc.subband
	off := sb.off[ch]

	// Replace the 32 oldest samples with 32 new ones, scaled to fractional
	// two's complement.
	for i := 31; i >= 0; i-- {
		sb.x[ch][i+off] = int32(pcm[(31-i)*stride]) << 16
	}

	var y [64]int32
	for i := 63; i >= 0; i-- {
		v := mul(sb.x[ch][(off+i)&(hanSize-1)], enWindow[i])
		v += mul(sb.x[ch][(off+i+(1<<6))&(hanSize-1)], enWindow[i+(1<<6)])
		v += mul(sb.x[ch][(off+i+(2<<6))&(hanSize-1)], enWindow[i+(2<<6)])
		v += mul(sb.x[ch][(off+i+(3<<6))&(hanSize-1)], enWindow[i+(3<<6)])
		v += mul(sb.x[ch][(off+i+(4<<6))&(hanSize-1)], enWindow[i+(4<<6)])
		v += mul(sb.x[ch][(off+i+(5<<6))&(hanSize-1)], enWindow[i+(5<<6)])
		v += mul(sb.x[ch][(off+i+(6<<6))&(hanSize-1)], enWindow[i+(6<<6)])
		v += mul(sb.x[ch][(off+i+(7<<6))&(hanSize-1)], enWindow[i+(7<<6)])
		y[i] = v
	}

	sb.off[ch] = (off + 480) & (hanSize - 1)

	for i := subbandLimit - 1; i >= 0; i-- {
		v := mul(sb.fl[i][63], y[63])
		for j := 63; j != 0; j -= 7 {
			v += mul(sb.fl[i][j-1], y[j-1])
			v += mul(sb.fl[i][j-2], y[j-2])
			v += mul(sb.fl[i][j-3], y[j-3])
			v += mul(sb.fl[i][j-4], y[j-4])
			v += mul(sb.fl[i][j-5], y[j-5])
			v += mul(sb.fl[i][j-6], y[j-6])
			v += mul(sb.fl[i][j-7], y[j-7])
		}
		s[i] = v
	}

	// The cursor for an interleaved channel other than the first starts
	// inside the frame slice, so the final advance can pass its end.
	if n := 32 * stride; n < len(pcm) {
		return pcm[n:]
	}
	return pcm[len(pcm):]
}
