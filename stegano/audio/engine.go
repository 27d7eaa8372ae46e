package audio

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"soniccipher/stegano/wave"
)

/*
 * the embedding engine. payload bits are written into the least
 * significant bit of password-selected high-energy samples, so the
 * order of the bits depends on the password and the carrier content,
 * nothing else. hide and extract share the selection and permutation
 * code paths, keeping both sides bit-exact by construction.
 */

func readCarrier(path string) (wave.Params, []byte, error) {
	params, frames, err := wave.ReadWaveFile(path)
	if err != nil {
		return params, nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return params, frames, nil
}

// Capacity returns how many payload bytes the carrier can take,
// excluding the delimiter.
func Capacity(path string) (int, error) {
	params, frames, err := readCarrier(path)
	if err != nil {
		return 0, err
	}
	positions, err := SelectEligible(frames, params.SampleWidth)
	if err != nil {
		return 0, err
	}
	available := len(positions)/8 - len(Delimiter)
	if available < 0 {
		available = 0
	}
	return available, nil
}

// HideData embeds payload into the carrier at inPath and writes the
// result to outPath. nothing is written until the whole embedding
// loop finished in memory, so a failure never produces an output file.
func HideData(inPath, outPath string, payload []byte, password string) error {
	if len(payload) == 0 {
		return fmt.Errorf("%w: payload must not be empty", ErrCapacity)
	}
	if strings.ToLower(filepath.Ext(outPath)) != ".wav" {
		return fmt.Errorf("%w: output file must have a .wav extension", ErrFormat)
	}
	inAbs, err := filepath.Abs(inPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFormat, err)
	}
	outAbs, err := filepath.Abs(outPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFormat, err)
	}
	if inAbs == outAbs {
		return fmt.Errorf("%w: output path must be different from input path", ErrFormat)
	}

	params, frames, err := readCarrier(inPath)
	if err != nil {
		return err
	}

	full := make([]byte, 0, len(payload)+len(Delimiter))
	full = append(full, payload...)
	full = append(full, Delimiter...)
	requiredBits := len(full) * 8

	if requiredBits > params.TotalSamples() {
		return fmt.Errorf("%w: need %d bits, carrier has %d samples",
			ErrCapacity, requiredBits, params.TotalSamples())
	}

	positions, err := SelectEligible(frames, params.SampleWidth)
	if err != nil {
		return err
	}
	if requiredBits > len(positions) {
		return fmt.Errorf("%w: need %d bits, only %d high-energy samples",
			ErrCapacity, requiredBits, len(positions))
	}

	keyed, err := KeyedPositions(positions, password)
	if err != nil {
		return err
	}

	bits := BytesToBits(full)
	for {
		bit, ok := bits.Next()
		if ok == false {
			break
		}
		pos, _ := keyed.Next() // capacity was checked, cannot run dry
		byteIndex := pos * params.SampleWidth
		frames[byteIndex] = frames[byteIndex]&0xfe | bit
	}

	return wave.WriteWaveFile(outPath, params, frames)
}

// ExtractData recovers the payload hidden at path. a wrong password
// and an absent message both surface as ErrNotFound.
func ExtractData(path string, password string) ([]byte, error) {
	params, frames, err := readCarrier(path)
	if err != nil {
		return nil, err
	}

	// masked decoding keeps the selection identical to hide time
	positions, err := SelectEligible(frames, params.SampleWidth)
	if err != nil {
		return nil, err
	}
	keyed, err := KeyedPositions(positions, password)
	if err != nil {
		return nil, err
	}

	delimiter := []byte(Delimiter)
	collected := []byte{}
	bitBuf := make([]byte, 0, 8)
	for {
		pos, ok := keyed.Next()
		if ok == false {
			break
		}
		bitBuf = append(bitBuf, frames[pos*params.SampleWidth]&1)
		if len(bitBuf) == 8 {
			collected = append(collected, BitsToByte(bitBuf))
			bitBuf = bitBuf[:0]
			if bytes.HasSuffix(collected, delimiter) {
				return collected[:len(collected)-len(delimiter)], nil
			}
		}
	}
	return nil, ErrNotFound
}
