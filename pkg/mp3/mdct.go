package mp3

import "math"

// Aliasing-reduction butterfly coefficients, ISO table B.9. Each pair
// satisfies ca*ca + cs*cs = 1 after the Q31 scaling.
func mdctCA(c float64) int32 {
	return int32(c / math.Sqrt(1.0+c*c) * float64(math.MaxInt32))
}

func mdctCS(c float64) int32 {
	return int32(1.0 / math.Sqrt(1.0+c*c) * float64(math.MaxInt32))
}

var butterflyC = [8]float64{-0.6, -0.535, -0.33, -0.185, -0.095, -0.041, -0.0142, -0.0037}

var (
	mdctCATab [8]int32
	mdctCSTab [8]int32
)

func init() {
	for i, c := range butterflyC {
		mdctCATab[i] = mdctCA(c)
		mdctCSTab[i] = mdctCS(c)
	}
}

// initMDCT combines the MDCT window and cosine basis into one fixed-point
// table: 18 output lines by 36 input samples.
func (enc *Encoder) initMDCT() {
	for m := 17; m >= 0; m-- {
		for k := 35; k >= 0; k-- {
			enc.mdctTab[m][k] = int32(math.Sin(pi36*(float64(k)+0.5)) *
				math.Cos((pi/72)*float64(k*2+19)*float64(m*2+1)) * math.MaxInt32)
		}
	}
}

// mdctGranules feeds every granule of the frame through the polyphase
// filterbank and the MDCT, then applies the aliasing-reduction butterflies
// across adjacent subband boundaries. The previous granule's 18 subband
// samples per band overlap into each transform; the final granule's samples
// are kept for the next frame.
func (enc *Encoder) mdctGranules(stride int) {
	var mdctIn [36]int32

	for ch := enc.cfg.Channels - 1; ch >= 0; ch-- {
		pcm := enc.chanPCM[ch]
		for gr := 0; gr < enc.mpeg.granulesPerFrame; gr++ {
			mdctEnc := &enc.mdctFreq[ch][gr]

			// Polyphase filtering, two analysis steps at a time.
			for k := 0; k < 18; k += 2 {
				pcm = enc.filterSubband(pcm, &enc.sbSamples[ch][gr+1][k], ch, stride)
				pcm = enc.filterSubband(pcm, &enc.sbSamples[ch][gr+1][k+1], ch, stride)

				// Compensate for the inversion in the analysis filter:
				// every odd sample of every odd band.
				for band := 1; band < 32; band += 2 {
					enc.sbSamples[ch][gr+1][k+1][band] *= -1
				}
			}

			// MDCT of 18 previous + 18 current subband samples per band.
			// Long blocks only: 36 time samples in, 18 coefficients out.
			for band := 0; band < 32; band++ {
				for k := 17; k >= 0; k-- {
					mdctIn[k] = enc.sbSamples[ch][gr][k][band]
					mdctIn[k+18] = enc.sbSamples[ch][gr+1][k][band]
				}
				for k := 17; k >= 0; k-- {
					v := mul(mdctIn[35], enc.mdctTab[k][35])
					for j := 35; j != 0; j -= 7 {
						v += mul(mdctIn[j-1], enc.mdctTab[k][j-1])
						v += mul(mdctIn[j-2], enc.mdctTab[k][j-2])
						v += mul(mdctIn[j-3], enc.mdctTab[k][j-3])
						v += mul(mdctIn[j-4], enc.mdctTab[k][j-4])
						v += mul(mdctIn[j-5], enc.mdctTab[k][j-5])
						v += mul(mdctIn[j-6], enc.mdctTab[k][j-6])
						v += mul(mdctIn[j-7], enc.mdctTab[k][j-7])
					}
					mdctEnc[band*18+k] = v
				}

				// Aliasing-reduction butterflies against the previous band.
				// Band 0 has no lower neighbour, so its first coefficients
				// are never touched, and likewise the top of band 31.
				if band != 0 {
					applyAliasReduction(mdctEnc, band)
				}
			}

			if enc.observer != nil {
				enc.observer.GranuleTransformed(ch, gr, mdctEnc[:])
			}
		}
		enc.chanPCM[ch] = pcm

		// Keep the last granule's subband samples for the next frame's
		// overlap.
		enc.sbSamples[ch][0] = enc.sbSamples[ch][enc.mpeg.granulesPerFrame]
	}
}

// applyAliasReduction runs the 8 butterfly rotations across the boundary
// between band-1 and band in place.
func applyAliasReduction(mdctEnc *[GranuleSize]int32, band int) {
	for i := 0; i < 8; i++ {
		lo := (band-1)*18 + 17 - i
		hi := band*18 + i
		mdctEnc[hi], mdctEnc[lo] = cmuls(mdctEnc[hi], mdctEnc[lo], mdctCSTab[i], mdctCATab[i])
	}
}
