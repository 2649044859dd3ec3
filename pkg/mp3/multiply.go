package mp3

// Fixed-point multiply helpers. Operands are Q31-ish 32-bit values; widening
// to int64 before the multiply avoids overflow, and the shift picks the
// output scaling.

// mul multiplies two fixed-point values, keeping the top 32 bits.
func mul(a, b int32) int32 {
	return int32((int64(a) * int64(b)) >> 32)
}

// mulR is mul with rounding of the discarded half.
func mulR(a, b int32) int32 {
	return int32((int64(a)*int64(b) + 0x80000000) >> 32)
}

// mulSR is a signed Q31 multiply with rounding.
func mulSR(a, b int32) int32 {
	return int32((int64(a)*int64(b) + 0x40000000) >> 31)
}

// cmuls rotates the vector (aRe, aIm) by (bRe, bIm), the butterfly used by
// the aliasing reduction. Both results are Q31.
func cmuls(aRe, aIm, bRe, bIm int32) (int32, int32) {
	re := int32((int64(aRe)*int64(bRe) - int64(aIm)*int64(bIm)) >> 31)
	im := int32((int64(aRe)*int64(bIm) + int64(aIm)*int64(bRe)) >> 31)
	return re, im
}
