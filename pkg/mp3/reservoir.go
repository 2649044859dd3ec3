// reservoir.go implements the Layer III bit reservoir, C.1.5.4.2.2 of the IS.
package mp3

// maxReservoirBits computes the bit allowance for the coming granule from
// the mean bits per channel and, when the perceptual entropy overruns that
// share by more than 100 bits, a bonus drawn from the reservoir: at most 60%
// of the current level, forced higher when the reservoir sits above 80% of
// capacity so it drains. The result never exceeds the 4095-bit
// part2_3_length ceiling.
func (enc *Encoder) maxReservoirBits(pe float64) int {
	meanBits := enc.meanBits / enc.cfg.Channels
	maxBits := meanBits
	if maxBits > maxPart23Length {
		maxBits = maxPart23Length
	}
	if enc.resvMax == 0 {
		return maxBits
	}

	moreBits := int(pe*3.1) - meanBits
	addBits := 0
	if moreBits > 100 {
		if frac := (enc.resvSize * 6) / 10; frac < moreBits {
			addBits = frac
		} else {
			addBits = moreBits
		}
	}
	if overBits := enc.resvSize - (enc.resvMax<<3)/10 - addBits; overBits > 0 {
		addBits += overBits
	}

	maxBits += addBits
	if maxBits > maxPart23Length {
		maxBits = maxPart23Length
	}
	return maxBits
}

// adjustReservoir is called after a granule's bit allocation: the unused
// share of the granule's mean bits is credited, an overdraw is debited. A
// debit beyond the available level saturates at zero instead of failing;
// the transient quality loss is preferred over an error mid-frame.
func (enc *Encoder) adjustReservoir(gi *granuleInfo) {
	enc.resvSize += enc.meanBits/enc.cfg.Channels - gi.part23Length
	if enc.resvSize < 0 {
		enc.resvSize = 0
	}
}

// reservoirFrameEnd settles the reservoir at the end of a frame. Any level
// beyond capacity becomes stuffing bits, the remainder is trimmed to a byte
// boundary, and the stuffing is folded into the first granule's
// part2_3_length when it fits, otherwise spread across granules up to the
// 4095-bit field limit with the rest recorded as ancillary drain. It
// returns the stuffing bits and the drain so callers can account for every
// bit.
func (enc *Encoder) reservoirFrameEnd() (stuffingBits, drainBits int) {
	side := &enc.side
	side.resvDrain = 0

	// Balance the rounding loss of splitting an odd meanBits between two
	// channels.
	if enc.cfg.Channels == 2 && enc.meanBits&1 != 0 {
		enc.resvSize++
	}

	overBits := enc.resvSize - enc.resvMax
	if overBits < 0 {
		overBits = 0
	}
	enc.resvSize -= overBits
	stuffingBits = overBits

	// Keep the reservoir byte aligned.
	if overBits = enc.resvSize % 8; overBits != 0 {
		stuffingBits += overBits
		enc.resvSize -= overBits
	}
	if stuffingBits == 0 {
		return 0, 0
	}

	gi := &side.granules[0][0]
	if gi.part23Length+stuffingBits < maxPart23Length {
		gi.part23Length += stuffingBits
		return stuffingBits, 0
	}

	remaining := stuffingBits
	for gr := 0; gr < enc.mpeg.granulesPerFrame; gr++ {
		for ch := 0; ch < enc.cfg.Channels; ch++ {
			if remaining == 0 {
				break
			}
			gi := &side.granules[gr][ch]
			extra := maxPart23Length - gi.part23Length
			if extra > remaining {
				extra = remaining
			}
			gi.part23Length += extra
			remaining -= extra
		}
	}
	side.resvDrain = remaining
	return stuffingBits, remaining
}
