// loop.go is the rate-control loop: it searches the global gain and scale
// factors that fit each granule's 576 spectral coefficients into the bit
// budget granted by the reservoir.
package mp3

import "math"

const (
	sfbLongMax = 22

	// SCFSI eligibility and per-band thresholds. Protocol constants;
	// changing them changes the bitstream.
	enTotCrit       = 10
	enDifCrit       = 100
	enScfsiBandCrit = 10
	xmScfsiBandCrit = 10
)

// initLoop fills the quantizer lookup tables.
func (enc *Encoder) initLoop() {
	// Step size conversion: fourth root of 2 table. Stored inverted
	// (negative power) because x*y is quicker than x/y. The integer copy is
	// doubled for one extra bit of accuracy; quantize compensates by not
	// shifting its product left.
	for i := 127; i >= 0; i-- {
		enc.quant.stepTable[i] = math.Pow(2.0, float64(127-i)/4)
		if enc.quant.stepTable[i]*2 > math.MaxInt32 {
			enc.quant.stepTableI[i] = math.MaxInt32
		} else {
			enc.quant.stepTableI[i] = int32(enc.quant.stepTable[i]*2 + 0.5)
		}
	}
	// Vector conversion: three-quarter power table. The 0.5 rounds, the
	// 0.0946 is the standard's nearest-neighbor bias term.
	for i := 9999; i >= 0; i-- {
		enc.quant.int2idx[i] = int(math.Sqrt(math.Sqrt(float64(i))*float64(i)) - 0.0946 + 0.5)
	}
}

// iterationLoop allocates bits and quantizes every granule of the frame.
func (enc *Encoder) iterationLoop() {
	var xMin psyXMin

	for ch := enc.cfg.Channels - 1; ch >= 0; ch-- {
		for gr := 0; gr < enc.mpeg.granulesPerFrame; gr++ {
			ix := &enc.quantized[ch][gr]

			// Coefficient magnitudes drive the initial gain guess.
			enc.quant.xr = enc.mdctFreq[ch][gr][:]
			enc.quant.xrmax = 0
			for i := GranuleSize - 1; i >= 0; i-- {
				enc.quant.xrsq[i] = mulSR(enc.quant.xr[i], enc.quant.xr[i])
				enc.quant.xrabs[i] = int32(math.Abs(float64(enc.quant.xr[i])))
				if enc.quant.xrabs[i] > enc.quant.xrmax {
					enc.quant.xrmax = enc.quant.xrabs[i]
				}
			}

			gi := &enc.side.granules[gr][ch]
			gi.sfbMax = sfbLongMax - 1
			enc.calcXMin(gi, &xMin, gr, ch)
			if enc.mpeg.version == mpeg1 {
				enc.calcSCFSI(&xMin, ch, gr)
			}

			maxBits := enc.maxReservoirBits(enc.perceptualEnergy[ch][gr])

			gi.part23Length = 0
			gi.bigValues = 0
			gi.count1 = 0
			gi.scalefacCompress = 0
			gi.tableSelect = [3]int{}
			gi.region0Count = 0
			gi.region1Count = 0
			gi.part2Length = 0
			gi.preflag = 0
			gi.scalefacScale = 0
			gi.count1TableSelect = 0

			if enc.quant.xrmax != 0 {
				gi.part23Length = enc.outerLoop(maxBits, ix, gr, ch)
			}

			enc.adjustReservoir(gi)
			gi.globalGain = gi.quantStepSize + 210

			if enc.observer != nil {
				enc.observer.GranuleEncoded(ch, gr, GranuleStats{
					Part23Length: gi.part23Length,
					BigValues:    gi.bigValues,
					Count1:       gi.count1,
					GlobalGain:   gi.globalGain,
				})
			}
		}
	}
	enc.reservoirFrameEnd()
}

// outerLoop computes the scale-factor cost, then drives the inner loop that
// settles the quantizer step size within the remaining Huffman budget.
func (enc *Encoder) outerLoop(maxBits int, ix *[GranuleSize]int, gr, ch int) int {
	gi := &enc.side.granules[gr][ch]

	gi.quantStepSize = enc.binSearchStepSize(maxBits, ix, gi)
	gi.part2Length = enc.calcPart2Length(gr, ch)
	huffBits := maxBits - gi.part2Length
	bits := enc.innerLoop(ix, huffBits, gi)
	gi.part23Length = gi.part2Length + bits
	return gi.part23Length
}

// innerLoop raises the quantizer step size until the Huffman-coded length
// of the quantized spectrum fits huffBits. The search is bounded by the
// step-table domain; if even the coarsest legal step overshoots the budget
// the loop keeps that closest result rather than failing.
func (enc *Encoder) innerLoop(ix *[GranuleSize]int, huffBits int, gi *granuleInfo) int {
	if huffBits < 0 {
		gi.quantStepSize--
	}
	bits := 0
	for {
		gi.quantStepSize++
		for enc.quantize(ix, gi.quantStepSize) > 8192 && gi.quantStepSize < 0 {
			// Step not coarse enough for the Huffman table range.
			gi.quantStepSize++
		}
		calcRunLength(ix, gi)
		bits = count1BitCount(ix, gi)
		enc.subdivide(gi)
		bigValuesTableSelect(ix, gi)
		bits += bigValuesBitCount(ix, gi)
		if bits <= huffBits || gi.quantStepSize >= 0 {
			break
		}
	}
	return bits
}

// binSearchStepSize narrows the quantizer step size to a good starting
// point for the inner loop: the coarsest step whose coded length still
// exceeds the desired rate, so the inner loop's first increment lands near
// the answer. The interval keeps the search inside the step-table domain.
func (enc *Encoder) binSearchStepSize(desiredRate int, ix *[GranuleSize]int, gi *granuleInfo) int {
	next := -120
	count := 120
	for {
		half := count / 2
		var bit int
		if enc.quantize(ix, next+half) > 8192 {
			// Out of Huffman table range, treat as infinitely expensive.
			bit = 100000
		} else {
			calcRunLength(ix, gi)
			bit = count1BitCount(ix, gi)
			enc.subdivide(gi)
			bigValuesTableSelect(ix, gi)
			bit += bigValuesBitCount(ix, gi)
		}
		if bit < desiredRate {
			count = half
		} else {
			next += half
			count -= half
		}
		if count <= 1 {
			break
		}
	}
	return next
}

// quantize maps the spectrum onto quantized integers for a step size and
// returns the largest one. The x^(3/4) power law is approximated by the
// int2idx lookup; values past the table fall back to the float path.
func (enc *Encoder) quantize(ix *[GranuleSize]int, stepSize int) int {
	ixMax := 0
	scaleI := enc.quant.stepTableI[stepSize+127]

	// Quick check whether ixMax can stay under 8192, which speeds up the
	// early binary-search probes: 165140 == 8192^(4/3).
	if mulR(enc.quant.xrmax, scaleI) > 165140 {
		return 16384 // step size not big enough, no point continuing
	}
	for i := 0; i < GranuleSize; i++ {
		// The multiply must round or quality suffers badly.
		ln := int(mulR(enc.quant.xrabs[i], scaleI))
		if ln < 10000 {
			ix[i] = enc.quant.int2idx[ln]
		} else {
			// Outside the lookup table, do it with floats.
			scale := enc.quant.stepTable[stepSize+127]
			dbl := float64(enc.quant.xrabs[i]) * scale * 4.656612875e-10
			ix[i] = int(math.Sqrt(math.Sqrt(dbl) * dbl))
		}
		if ixMax < ix[i] {
			ixMax = ix[i]
		}
	}
	return ixMax
}

// ixMaxRange returns the largest quantized value in [begin, end).
func ixMaxRange(ix *[GranuleSize]int, begin, end int) int {
	max := 0
	for i := begin; i < end; i++ {
		if max < ix[i] {
			max = ix[i]
		}
	}
	return max
}

// calcRunLength partitions the quantized spectrum from the top down into
// trailing zeros, count1 quadruples (all values -1..1) and big-values
// pairs. bigValues can never legally exceed 288 pairs; the clamp guards the
// 9-bit side-info field against any upstream defect.
func calcRunLength(ix *[GranuleSize]int, gi *granuleInfo) {
	i := GranuleSize
	for ; i > 1; i -= 2 {
		if ix[i-1] != 0 || ix[i-2] != 0 {
			break
		}
	}
	gi.count1 = 0
	for ; i > 3; i -= 4 {
		if ix[i-1] > 1 || ix[i-2] > 1 || ix[i-3] > 1 || ix[i-4] > 1 {
			break
		}
		gi.count1++
	}
	gi.bigValues = i >> 1
	if gi.bigValues > maxBigValues {
		gi.bigValues = maxBigValues
	}
}

// count1BitCount sizes the count1 region with both candidate tables and
// records the cheaper choice.
func count1BitCount(ix *[GranuleSize]int, gi *granuleInfo) int {
	sum0, sum1 := 0, 0
	i := gi.bigValues << 1
	for k := 0; k < gi.count1; k++ {
		v, w, x, y := ix[i], ix[i+1], ix[i+2], ix[i+3]
		p := v + w<<1 + x<<2 + y<<3
		signBits := 0
		if v != 0 {
			signBits++
		}
		if w != 0 {
			signBits++
		}
		if x != 0 {
			signBits++
		}
		if y != 0 {
			signBits++
		}
		sum0 += signBits + int(huffmanTables[32].lengths[p])
		sum1 += signBits + int(huffmanTables[33].lengths[p])
		i += 4
	}
	if sum0 < sum1 {
		gi.count1TableSelect = 0
		return sum0
	}
	gi.count1TableSelect = 1
	return sum1
}

// subdivideTable maps the number of scale-factor bands spanned by the
// big-values region to the region0/region1 partition counts.
var subdivideTable = [23][2]int{
	{0, 0}, {0, 0}, {0, 0}, {0, 0}, {0, 0},
	{0, 1}, {1, 1}, {1, 1}, {1, 2}, {2, 2},
	{2, 3}, {2, 3}, {3, 4}, {3, 4}, {3, 4},
	{4, 5}, {4, 5}, {4, 6}, {5, 6}, {5, 6},
	{5, 7}, {6, 7}, {6, 7},
}

// subdivide splits the big-values region into the up-to-three subregions
// that use separate Huffman tables, aligning the boundaries to scale-factor
// bands.
func (enc *Encoder) subdivide(gi *granuleInfo) {
	if gi.bigValues == 0 {
		gi.region0Count = 0
		gi.region1Count = 0
		return
	}

	sfBand := scaleFactorBandIndex[enc.mpeg.sampleRateIndex][:]
	bigValuesRegion := gi.bigValues * 2

	sfbCount := 0
	for sfBand[sfbCount] < bigValuesRegion {
		sfbCount++
	}
	var count int
	for count = subdivideTable[sfbCount][0]; count != 0; count-- {
		if sfBand[count+1] <= bigValuesRegion {
			break
		}
	}
	gi.region0Count = count
	gi.address1 = sfBand[count+1]

	sfBand = sfBand[gi.region0Count+1:]
	for count = subdivideTable[sfbCount][1]; count != 0; count-- {
		if sfBand[count+1] <= bigValuesRegion {
			break
		}
	}
	gi.region1Count = count
	gi.address2 = sfBand[count+1]
	gi.address3 = bigValuesRegion
}

// bigValuesTableSelect picks a Huffman table for each subregion.
func bigValuesTableSelect(ix *[GranuleSize]int, gi *granuleInfo) {
	gi.tableSelect = [3]int{}
	if gi.address1 > 0 {
		gi.tableSelect[0] = chooseTable(ix, 0, gi.address1)
	}
	if gi.address2 > gi.address1 {
		gi.tableSelect[1] = chooseTable(ix, gi.address1, gi.address2)
	}
	if gi.bigValues<<1 > gi.address2 {
		gi.tableSelect[2] = chooseTable(ix, gi.address2, gi.bigValues<<1)
	}
}

// chooseTable picks the Huffman table that codes ix[begin..end) in the
// fewest bits. It knows the size layout of the tables in the IS (Table B.7)
// and will not work with arbitrary tables.
func chooseTable(ix *[GranuleSize]int, begin, end int) int {
	max := ixMaxRange(ix, begin, end)
	if max == 0 {
		return 0
	}

	var choice [2]int
	var sum [2]int

	if max < 15 {
		// Tables without linbits: the smallest one that covers the range.
		for i := 0; i < 14; i++ {
			if huffmanTables[i].xLen > max {
				choice[0] = i
				break
			}
		}
		sum[0] = countBits(ix, begin, end, choice[0])
		switch choice[0] {
		case 2:
			if countBits(ix, begin, end, 3) <= sum[0] {
				choice[0] = 3
			}
		case 5:
			if countBits(ix, begin, end, 6) <= sum[0] {
				choice[0] = 6
			}
		case 7:
			sum[1] = countBits(ix, begin, end, 8)
			if sum[1] <= sum[0] {
				choice[0] = 8
				sum[0] = sum[1]
			}
			if countBits(ix, begin, end, 9) <= sum[0] {
				choice[0] = 9
			}
		case 10:
			sum[1] = countBits(ix, begin, end, 11)
			if sum[1] <= sum[0] {
				choice[0] = 11
				sum[0] = sum[1]
			}
			if countBits(ix, begin, end, 12) <= sum[0] {
				choice[0] = 12
			}
		case 13:
			if countBits(ix, begin, end, 15) <= sum[0] {
				choice[0] = 15
			}
		}
		return choice[0]
	}

	// Tables with linbits.
	max -= 15
	for i := 15; i < 24; i++ {
		if huffmanTables[i].linMax >= max {
			choice[0] = i
			break
		}
	}
	for i := 24; i < 32; i++ {
		if huffmanTables[i].linMax >= max {
			choice[1] = i
			break
		}
	}
	sum[0] = countBits(ix, begin, end, choice[0])
	sum[1] = countBits(ix, begin, end, choice[1])
	if sum[1] < sum[0] {
		choice[0] = choice[1]
	}
	return choice[0]
}

// bigValuesBitCount sizes the three big-values subregions with their
// selected tables.
func bigValuesBitCount(ix *[GranuleSize]int, gi *granuleInfo) int {
	bits := 0
	if table := gi.tableSelect[0]; table != 0 {
		bits += countBits(ix, 0, gi.address1, table)
	}
	if table := gi.tableSelect[1]; table != 0 {
		bits += countBits(ix, gi.address1, gi.address2, table)
	}
	if table := gi.tableSelect[2]; table != 0 {
		bits += countBits(ix, gi.address2, gi.address3, table)
	}
	return bits
}

// countBits counts the bits needed to code ix[start..end) with a table.
func countBits(ix *[GranuleSize]int, start, end, table int) int {
	if table == 0 {
		return 0
	}
	h := &huffmanTables[table]
	sum := 0
	yLen := h.yLen
	if table > 15 {
		// ESC table: magnitudes above 14 cost linbits extra.
		linBits := h.linBits
		for i := start; i < end; i += 2 {
			x, y := ix[i], ix[i+1]
			if x > 14 {
				x = 15
				sum += linBits
			}
			if y > 14 {
				y = 15
				sum += linBits
			}
			sum += int(h.lengths[x*yLen+y])
			if x != 0 {
				sum++
			}
			if y != 0 {
				sum++
			}
		}
		return sum
	}
	for i := start; i < end; i += 2 {
		x, y := ix[i], ix[i+1]
		sum += int(h.lengths[x*yLen+y])
		if x != 0 {
			sum++
		}
		if y != 0 {
			sum++
		}
	}
	return sum
}

// calcXMin computes the allowed distortion per scale-factor band from the
// perceptual model: xmin(sb) = ratio(sb) * en(sb) / bw(sb). With the
// minimal model the ratios are zero, so xmin stays zero.
func (enc *Encoder) calcXMin(gi *granuleInfo, xMin *psyXMin, gr, ch int) {
	for sfb := gi.sfbMax - 1; sfb >= 0; sfb-- {
		// The minimal model reports zero ratios, so the allowed
		// distortion collapses to the ratio itself.
		xMin.l[gr][ch][sfb] = enc.ratio.l[gr][ch][sfb]
	}
}

// calcPart2Length counts the scale-factor bits of the granule, skipping
// band groups the SCFSI lets granule 2 reuse.
func (enc *Encoder) calcPart2Length(gr, ch int) int {
	gi := &enc.side.granules[gr][ch]
	slen1 := slen1Tab[gi.scalefacCompress]
	slen2 := slen2Tab[gi.scalefacCompress]

	bits := 0
	if gr == 0 || enc.side.scfsi[ch][0] == 0 {
		bits += slen1 * 6
	}
	if gr == 0 || enc.side.scfsi[ch][1] == 0 {
		bits += slen1 * 5
	}
	if gr == 0 || enc.side.scfsi[ch][2] == 0 {
		bits += slen2 * 5
	}
	if gr == 0 || enc.side.scfsi[ch][3] == 0 {
		bits += slen2 * 5
	}
	return bits
}

// scfsiBandLong groups the 21 scale-factor bands into the 4 SCFSI bands.
var scfsiBandLong = [5]int{0, 6, 11, 16, 21}

// calcSCFSI computes the scale-factor selection information. Granule
// energies are folded into log-domain sums per band; when granule 1 is
// reached the six-part eligibility condition (non-zero peaks, total-energy
// and distortion differences under fixed thresholds) gates the per-band
// comparison that marks bands whose scale factors granule 2 reuses.
func (enc *Encoder) calcSCFSI(xMin *psyXMin, ch, gr int) {
	q := &enc.quant
	sfBand := &scaleFactorBandIndex[enc.mpeg.sampleRateIndex]
	q.xrmaxl[gr] = q.xrmax

	temp := int64(0)
	for i := GranuleSize - 1; i >= 0; i-- {
		// Scaled down to dodge overflow; crude but matches the reference.
		temp += int64(q.xrsq[i]) >> 10
	}
	if temp != 0 {
		q.enTot[gr] = int32(math.Log(float64(temp)*4.768371584e-07) / ln2)
	} else {
		q.enTot[gr] = 0
	}

	for sfb := 20; sfb >= 0; sfb-- {
		start := sfBand[sfb]
		end := sfBand[sfb+1]
		temp = 0
		for i := start; i < end; i++ {
			temp += int64(q.xrsq[i]) >> 10
		}
		if temp != 0 {
			q.en[gr][sfb] = int32(math.Log(float64(temp)*4.768371584e-07) / ln2)
		} else {
			q.en[gr][sfb] = 0
		}
		if xMin.l[gr][ch][sfb] != 0 {
			q.xm[gr][sfb] = int32(math.Log(xMin.l[gr][ch][sfb]) / ln2)
		} else {
			q.xm[gr][sfb] = 0
		}
	}

	if gr != 1 {
		return
	}

	condition := 0
	for gr2 := 1; gr2 >= 0; gr2-- {
		if q.xrmaxl[gr2] != 0 {
			condition++
		}
		condition++
	}
	if math.Abs(float64(q.enTot[0])-float64(q.enTot[1])) < enTotCrit {
		condition++
	}
	tp := int64(0)
	for sfb := 20; sfb >= 0; sfb-- {
		tp += int64(math.Abs(float64(q.en[0][sfb]) - float64(q.en[1][sfb])))
	}
	if tp < enDifCrit {
		condition++
	}

	if condition != 6 {
		for band := 0; band < 4; band++ {
			enc.side.scfsi[ch][band] = 0
		}
		return
	}

	for band := 0; band < 4; band++ {
		sum0, sum1 := int64(0), int64(0)
		enc.side.scfsi[ch][band] = 0
		for sfb := scfsiBandLong[band]; sfb < scfsiBandLong[band+1]; sfb++ {
			sum0 += int64(math.Abs(float64(q.en[0][sfb]) - float64(q.en[1][sfb])))
			sum1 += int64(math.Abs(float64(q.xm[0][sfb]) - float64(q.xm[1][sfb])))
		}
		if sum0 < enScfsiBandCrit && sum1 < xmScfsiBandCrit {
			enc.side.scfsi[ch][band] = 1
		}
	}
}
