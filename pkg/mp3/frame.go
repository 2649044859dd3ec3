package mp3

// formatBitstream writes one complete frame: header, side information and
// main data. The quantized magnitudes pick their signs back up from the
// spectrum first, since the quantization loop works on absolute values.
func (enc *Encoder) formatBitstream() {
	for ch := 0; ch < enc.cfg.Channels; ch++ {
		for gr := 0; gr < enc.mpeg.granulesPerFrame; gr++ {
			pi := &enc.quantized[ch][gr]
			pr := &enc.mdctFreq[ch][gr]
			for i := 0; i < GranuleSize; i++ {
				if pr[i] < 0 && pi[i] > 0 {
					pi[i] = -pi[i]
				}
			}
		}
	}
	enc.encodeSideInfo()
	enc.encodeMainData()
}

// encodeSideInfo writes the 32-bit header and the side information block.
// With the reservoir disabled main_data_begin is always zero, so every
// frame is self-contained.
func (enc *Encoder) encodeSideInfo() {
	bw := &enc.bs

	bw.putBits(0x7FF, 11)
	bw.putBits(uint32(enc.mpeg.version), 2)
	bw.putBits(uint32(enc.mpeg.layer), 2)
	if enc.mpeg.crc == 0 {
		bw.putBits(1, 1)
	} else {
		bw.putBits(0, 1)
	}
	bw.putBits(uint32(enc.mpeg.bitrateIndex), 4)
	bw.putBits(uint32(enc.mpeg.sampleRateIndex%3), 2)
	bw.putBits(uint32(enc.mpeg.padding), 1)
	bw.putBits(uint32(enc.mpeg.ext), 1)
	bw.putBits(uint32(enc.mpeg.mode), 2)
	bw.putBits(uint32(enc.mpeg.modeExt), 2)
	bw.putBits(uint32(enc.mpeg.copyright), 1)
	bw.putBits(uint32(enc.mpeg.original), 1)
	bw.putBits(uint32(enc.mpeg.emphasis), 2)

	if enc.mpeg.version == mpeg1 {
		bw.putBits(0, 9) // main_data_begin
		if enc.cfg.Channels == 2 {
			bw.putBits(uint32(enc.side.privateBits), 3)
		} else {
			bw.putBits(uint32(enc.side.privateBits), 5)
		}
		for ch := 0; ch < enc.cfg.Channels; ch++ {
			for band := 0; band < 4; band++ {
				bw.putBits(uint32(enc.side.scfsi[ch][band]), 1)
			}
		}
	} else {
		bw.putBits(0, 8) // main_data_begin
		if enc.cfg.Channels == 2 {
			bw.putBits(uint32(enc.side.privateBits), 2)
		} else {
			bw.putBits(uint32(enc.side.privateBits), 1)
		}
	}

	for gr := 0; gr < enc.mpeg.granulesPerFrame; gr++ {
		for ch := 0; ch < enc.cfg.Channels; ch++ {
			gi := &enc.side.granules[gr][ch]
			bw.putBits(uint32(gi.part23Length), 12)
			bw.putBits(uint32(gi.bigValues), 9)
			bw.putBits(uint32(gi.globalGain), 8)
			if enc.mpeg.version == mpeg1 {
				bw.putBits(uint32(gi.scalefacCompress), 4)
			} else {
				bw.putBits(uint32(gi.scalefacCompress), 9)
			}
			bw.putBits(0, 1) // long blocks only
			for region := 0; region < 3; region++ {
				bw.putBits(uint32(gi.tableSelect[region]), 5)
			}
			bw.putBits(uint32(gi.region0Count), 4)
			bw.putBits(uint32(gi.region1Count), 3)
			if enc.mpeg.version == mpeg1 {
				bw.putBits(uint32(gi.preflag), 1)
			}
			bw.putBits(uint32(gi.scalefacScale), 1)
			bw.putBits(uint32(gi.count1TableSelect), 1)
		}
	}
}

// encodeMainData writes the scale factors and Huffman-coded spectra of every
// granule, honoring the SCFSI reuse flags for the second granule.
func (enc *Encoder) encodeMainData() {
	bw := &enc.bs

	for gr := 0; gr < enc.mpeg.granulesPerFrame; gr++ {
		for ch := 0; ch < enc.cfg.Channels; ch++ {
			gi := &enc.side.granules[gr][ch]
			slen1 := uint(slen1Tab[gi.scalefacCompress])
			slen2 := uint(slen2Tab[gi.scalefacCompress])

			if gr == 0 || enc.side.scfsi[ch][0] == 0 {
				for sfb := 0; sfb < 6; sfb++ {
					bw.putBits(uint32(enc.scalefac.l[gr][ch][sfb]), slen1)
				}
			}
			if gr == 0 || enc.side.scfsi[ch][1] == 0 {
				for sfb := 6; sfb < 11; sfb++ {
					bw.putBits(uint32(enc.scalefac.l[gr][ch][sfb]), slen1)
				}
			}
			if gr == 0 || enc.side.scfsi[ch][2] == 0 {
				for sfb := 11; sfb < 16; sfb++ {
					bw.putBits(uint32(enc.scalefac.l[gr][ch][sfb]), slen2)
				}
			}
			if gr == 0 || enc.side.scfsi[ch][3] == 0 {
				for sfb := 16; sfb < 21; sfb++ {
					bw.putBits(uint32(enc.scalefac.l[gr][ch][sfb]), slen2)
				}
			}
			enc.huffmanCodeBits(&enc.quantized[ch][gr], gi)
		}
	}

	// Stuffing the part2_3_length fields could not absorb is still owed to
	// the frame; without these ancillary bits the frame comes up short of
	// the size its header promises and the next sync word lands early.
	for drain := enc.side.resvDrain; drain > 0; {
		n := uint(32)
		if drain < 32 {
			n = uint(drain)
		}
		bw.putBits(0, n)
		drain -= int(n)
	}
}

// huffmanCodeBits writes the big-values pairs and count1 quadruples of one
// granule, then pads with ones up to part23Length. Huffman code tables never
// start with a run of ones, so a decoder cannot mistake the stuffing for a
// code word.
func (enc *Encoder) huffmanCodeBits(ix *[GranuleSize]int, gi *granuleInfo) {
	bw := &enc.bs
	sfBand := &scaleFactorBandIndex[enc.mpeg.sampleRateIndex]

	bits := bw.bitCount()
	bigValues := gi.bigValues << 1
	idx := gi.region0Count + 1
	region1Start := sfBand[idx]
	idx += gi.region1Count + 1
	region2Start := sfBand[idx]

	for i := 0; i < bigValues; i += 2 {
		region := 0
		if i >= region1Start {
			region++
		}
		if i >= region2Start {
			region++
		}
		if table := gi.tableSelect[region]; table != 0 {
			huffmanCode(bw, table, ix[i], ix[i+1])
		}
	}

	h := &huffmanTables[gi.count1TableSelect+32]
	count1End := bigValues + gi.count1<<2
	for i := bigValues; i < count1End; i += 4 {
		huffmanCodeCount1(bw, h, ix[i], ix[i+1], ix[i+2], ix[i+3])
	}

	used := bw.bitCount() - bits
	stuffing := gi.part23Length - gi.part2Length - used
	for stuffing >= 32 {
		bw.putBits(^uint32(0), 32)
		stuffing -= 32
	}
	if stuffing > 0 {
		bw.putBits(uint32(1)<<uint(stuffing)-1, uint(stuffing))
	}
}
