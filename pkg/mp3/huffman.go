package mp3

// absAndSign folds the sign out of a quantized value. It returns 1 for
// negative input (and negates it in place) and 0 otherwise, matching the
// sign bit convention of the Layer III code tables.
func absAndSign(x *int) uint32 {
	if *x > 0 {
		return 0
	}
	*x = -*x
	return 1
}

// huffmanCode emits one big-values pair (x, y) using the selected table.
// Tables above 15 carry linbits escapes for magnitudes beyond 14.
func huffmanCode(bw *bitWriter, tableSelect, x, y int) {
	signX := absAndSign(&x)
	signY := absAndSign(&y)
	h := &huffmanTables[tableSelect]
	yLen := h.yLen

	if tableSelect > 15 {
		linBits := uint(h.linBits)
		var linBitsX, linBitsY uint32
		if x > 14 {
			linBitsX = uint32(x - 15)
			x = 15
		}
		if y > 14 {
			linBitsY = uint32(y - 15)
			y = 15
		}
		idx := x*yLen + y
		code := uint32(h.codes[idx])
		cBits := uint(h.lengths[idx])

		var ext uint32
		var extBits uint
		if x > 14 {
			ext |= linBitsX
			extBits += linBits
		}
		if x != 0 {
			ext = ext<<1 | signX
			extBits++
		}
		if y > 14 {
			ext = ext<<linBits | linBitsY
			extBits += linBits
		}
		if y != 0 {
			ext = ext<<1 | signY
			extBits++
		}
		bw.putBits(code, cBits)
		bw.putBits(ext, extBits)
		return
	}

	idx := x*yLen + y
	code := uint32(h.codes[idx])
	cBits := uint(h.lengths[idx])
	if x != 0 {
		code = code<<1 | signX
		cBits++
	}
	if y != 0 {
		code = code<<1 | signY
		cBits++
	}
	bw.putBits(code, cBits)
}

// huffmanCodeCount1 emits one count1 quadruple (v, w, x, y) of values in
// -1..1 followed by a sign bit per nonzero member.
func huffmanCodeCount1(bw *bitWriter, h *huffTable, v, w, x, y int) {
	signV := absAndSign(&v)
	signW := absAndSign(&w)
	signX := absAndSign(&x)
	signY := absAndSign(&y)

	p := v + w<<1 + x<<2 + y<<3
	bw.putBits(uint32(h.codes[p]), uint(h.lengths[p]))

	var code uint32
	var cBits uint
	if v != 0 {
		code = signV
		cBits = 1
	}
	if w != 0 {
		code = code<<1 | signW
		cBits++
	}
	if x != 0 {
		code = code<<1 | signX
		cBits++
	}
	if y != 0 {
		code = code<<1 | signY
		cBits++
	}
	bw.putBits(code, cBits)
}
