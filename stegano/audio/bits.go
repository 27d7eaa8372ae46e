package audio

/*
 * bit-level plumbing: payload bytes go over the wire one bit at a
 * time, most significant bit first, byte order preserved.
 */

// BitIterator walks the bits of a byte slice lazily, MSB first.
type BitIterator struct {
	data []byte
	pos  int // bit offset from the start
}

func BytesToBits(data []byte) *BitIterator {
	return &BitIterator{data: data}
}

// Next returns the next bit (0 or 1), or false when exhausted.
func (it *BitIterator) Next() (byte, bool) {
	if it.pos >= len(it.data)*8 {
		return 0, false
	}
	b := it.data[it.pos/8]
	bit := (b >> (7 - uint(it.pos%8))) & 1
	it.pos++
	return bit, true
}

// BitsToByte folds up to 8 bits into a byte, MSB first.
func BitsToByte(bits []byte) byte {
	var value byte
	for _, bit := range bits {
		value = value<<1 | (bit & 1)
	}
	return value
}
