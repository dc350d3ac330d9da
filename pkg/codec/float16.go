package codec

import "math"

// halfToFloat widens an IEEE 754 binary16 value.
func halfToFloat(h uint16) float64 {
	sign := h >> 15
	exp := int(h>>10) & 0x1f
	mant := float64(h & 0x3ff)

	var v float64
	switch exp {
	case 0:
		v = math.Ldexp(mant, -24)
	case 0x1f:
		if mant != 0 {
			return math.NaN()
		}
		v = math.Inf(1)
	default:
		v = math.Ldexp(1+mant/1024, exp-15)
	}

	if sign == 1 {
		return -v
	}
	return v
}

// floatToHalf narrows f to binary16, rounding to nearest even. Values out
// of range become infinities.
func floatToHalf(f float64) uint16 {
	b := math.Float64bits(f)
	sign := uint16(b>>48) & 0x8000
	exp := int(b>>52) & 0x7ff
	mant := b & (1<<52 - 1)

	if exp == 0x7ff {
		if mant != 0 {
			return sign | 0x7e00
		}
		return sign | 0x7c00
	}

	e := exp - 1023 + 15
	switch {
	case e >= 0x1f:
		return sign | 0x7c00
	case e <= 0:
		if e < -10 {
			return sign
		}
		mant |= 1 << 52
		shift := uint(43 - e)
		h := uint16(mant >> shift)
		rem := mant & (1<<shift - 1)
		half := uint64(1) << (shift - 1)
		if rem > half || (rem == half && h&1 == 1) {
			h++
		}
		return sign | h
	}

	h := uint16(e)<<10 | uint16(mant>>42)
	rem := mant & (1<<42 - 1)
	// a carry out of the mantissa bumps the exponent, which is still correct
	if rem > 1<<41 || (rem == 1<<41 && h&1 == 1) {
		h++
	}
	return sign | h
}
