package core

import "math"

// gammaExponent is the pow() exponent used once bitplane count exceeds the
// fidelity of RGB565 (§6 GAMMA tunable).
const gammaExponent = 2.6

// buildRemapTables computes the two channel-to-plane lookup tables per
// §4.4. For numPlanes < 6 the conversion is a linear truncation; at exactly
// 6 it's a bit-replicating expansion that preserves the full 6-bit green
// channel; above 6 it's gamma-corrected expansion, computed once here with
// floating point (the ISR itself never touches a float).
func buildRemapTables(numPlanes int) (remapRB [32]uint16, remapG [64]uint16) {
	switch {
	case numPlanes < 6:
		shiftRB := uint(5 - numPlanes)
		shiftG := uint(6 - numPlanes)
		for i := range remapRB {
			remapRB[i] = uint16(i) >> shiftRB
		}
		for i := range remapG {
			remapG[i] = uint16(i) >> shiftG
		}
	case numPlanes == 6:
		for i := range remapRB {
			remapRB[i] = uint16((i << 1) | (i >> 4))
		}
		for i := range remapG {
			remapG[i] = uint16(i)
		}
	default:
		top := float64((uint32(1) << uint(numPlanes)) - 1)
		for i := range remapRB {
			remapRB[i] = uint16(math.Pow(float64(i)/31.0, gammaExponent)*top + 0.5)
		}
		for i := range remapG {
			remapG[i] = uint16(math.Pow(float64(i)/63.0, gammaExponent)*top + 0.5)
		}
	}
	return
}
