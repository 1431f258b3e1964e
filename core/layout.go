package core

// classifyPortWidth inspects which octets of a 32-bit port register a
// bitmask touches and returns the narrowest element width, in bytes, that
// can represent it -- §4.1 step 3. A mask confined to one byte needs 1; one
// confined to the lower or upper half-word needs 2; anything else (including
// a mask straddling the middle half-word, which this deliberately does not
// special-case) needs the full 4.
func classifyPortWidth(bitMask uint32) int {
	var octets uint8
	if bitMask&0xFF000000 != 0 {
		octets |= 0b1000
	}
	if bitMask&0x00FF0000 != 0 {
		octets |= 0b0100
	}
	if bitMask&0x0000FF00 != 0 {
		octets |= 0b0010
	}
	if bitMask&0x000000FF != 0 {
		octets |= 0b0001
	}
	switch octets {
	case 0b0001, 0b0010, 0b0100, 0b1000:
		return 1
	case 0b0011, 0b1100:
		return 2
	default:
		return 4
	}
}

// paddedColumns rounds width up to the nearest multiple of chunkSize, the
// arch-declared unroll factor (§4.1 step 4). A width that is already a
// multiple of chunkSize is returned unchanged.
func paddedColumns(width, chunkSize int) int {
	if chunkSize <= 1 {
		return width
	}
	chunks := (width + chunkSize - 1) / chunkSize
	return chunks * chunkSize
}
