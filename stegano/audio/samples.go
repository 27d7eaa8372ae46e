package audio

import (
	"fmt"
	"sort"
)

// DecodeSamples turns raw interleaved frame bytes into signed sample
// values, one per channel slot. 1-byte samples are unsigned and get
// recentered around zero; wider samples are little-endian two's
// complement. when maskLSB is set, bit 0 of the first byte of each
// sample is cleared before decoding, so the result does not depend on
// anything previously embedded there.
func DecodeSamples(frames []byte, sampleWidth int, maskLSB bool) []int {
	if sampleWidth < MinSampleWidth || sampleWidth > MaxSampleWidth {
		return nil
	}
	samples := make([]int, 0, len(frames)/sampleWidth)
	for i := 0; i+sampleWidth <= len(frames); i += sampleWidth {
		first := frames[i]
		if maskLSB {
			first &= 0xfe
		}
		var val int
		switch sampleWidth {
		case 1:
			val = int(first) - 128
		case 2:
			val = int(int16(uint16(first) | uint16(frames[i+1])<<8))
		case 3:
			raw := uint32(first) | uint32(frames[i+1])<<8 | uint32(frames[i+2])<<16
			val = int(int32(raw<<8) >> 8) // sign-extend 24 bits
		case 4:
			raw := uint32(first) | uint32(frames[i+1])<<8 |
				uint32(frames[i+2])<<16 | uint32(frames[i+3])<<24
			val = int(int32(raw))
		}
		samples = append(samples, val)
	}
	return samples
}

// SelectEligible returns the indices of the high-energy samples, in
// ascending order. the threshold sits at the configured percentile of
// the absolute magnitudes, so roughly the loudest 40% of the carrier
// qualifies. decoding is done with the LSB masked out, which makes the
// selection identical before and after embedding.
func SelectEligible(frames []byte, sampleWidth int) ([]int, error) {
	samples := DecodeSamples(frames, sampleWidth, true)
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: audio has no samples", ErrCapacity)
	}

	energies := make([]int, len(samples))
	for i, val := range samples {
		if val < 0 {
			val = -val
		}
		energies[i] = val
	}

	sorted := make([]int, len(energies))
	copy(sorted, energies)
	sort.Ints(sorted)

	cutoff := int(float64(len(sorted)) * HighEnergyPercentile)
	if cutoff >= len(sorted) {
		cutoff = len(sorted) - 1
	}
	threshold := sorted[cutoff]

	positions := []int{}
	for i, energy := range energies {
		if energy >= threshold {
			positions = append(positions, i)
		}
	}
	if len(positions) == 0 {
		// can only happen for degenerate all-quiet audio
		return nil, fmt.Errorf("%w: no high-energy samples available", ErrCapacity)
	}
	return positions, nil
}
