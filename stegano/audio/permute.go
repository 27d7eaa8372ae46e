package audio

import (
	"crypto/sha256"
	"fmt"
	"math"
	mrand "math/rand/v2"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/pbkdf2"

	"soniccipher/util"
)

/*
 * password-keyed permutation over the eligible sample positions.
 * the same password and the same position set must reproduce the
 * identical sequence on hide and extract, this is the property the
 * whole scheme hangs on. everything below is therefore fully
 * specified: PBKDF2 output bytes key a ChaCha8 stream, and bounded
 * draws use plain modulo with rejection over Uint64().
 */

func validatePassword(password string) ([]byte, error) {
	if password == "" || strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("%w: password cannot be empty", ErrPassword)
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters",
			ErrPassword, MinPasswordLength)
	}
	// normalize so visually identical passwords derive the same seed
	return []byte(util.FixUnicode(password)), nil
}

// DeriveSeed stretches the password into 32 bytes, read as a 256-bit
// big-endian seed. slow on purpose.
func DeriveSeed(password string) ([SeedSize]byte, error) {
	var seed [SeedSize]byte
	passwordBytes, err := validatePassword(password)
	if err != nil {
		return seed, err
	}
	key := pbkdf2.Key(passwordBytes, []byte(EmbedKdfSalt), EmbedKdfIterations,
		SeedSize, sha256.New)
	copy(seed[:], key)
	return seed, nil
}

// deterministic generator scoped to a single hide/extract call.
type keyedRand struct {
	src *mrand.ChaCha8
}

func newKeyedRand(seed [SeedSize]byte) *keyedRand {
	return &keyedRand{src: mrand.NewChaCha8(seed)}
}

// uniform draw from [0, n) without modulo bias. same rejection idea as
// crypto/rand.Int, but over a seeded stream.
func (r *keyedRand) intn(n int) int {
	bound := uint64(n)
	limit := math.MaxUint64 - math.MaxUint64%bound
	for {
		v := r.src.Uint64()
		if v < limit {
			return int(v % bound)
		}
	}
}

// PositionIterator yields a keyed permutation of the eligible
// positions one element at a time. it runs a Fisher-Yates shuffle
// lazily, keeping only the displaced elements in a sparse swap map,
// so consuming k of n positions costs O(k) memory on top of the
// position slice, which is never mutated.
type PositionIterator struct {
	positions []int
	swaps     map[int]int
	rng       *keyedRand
	next      int
}

// KeyedPositions derives the permutation for (positions, password).
func KeyedPositions(positions []int, password string) (*PositionIterator, error) {
	if len(positions) == 0 {
		return nil, fmt.Errorf("%w: no eligible samples for embedding", ErrCapacity)
	}
	seed, err := DeriveSeed(password)
	if err != nil {
		return nil, err
	}
	return &PositionIterator{
		positions: positions,
		swaps:     map[int]int{},
		rng:       newKeyedRand(seed),
	}, nil
}

func (it *PositionIterator) lookup(idx int) int {
	if val, ok := it.swaps[idx]; ok {
		return val
	}
	return it.positions[idx]
}

// Next returns the next permuted position, or false once all
// positions were consumed.
func (it *PositionIterator) Next() (int, bool) {
	n := len(it.positions)
	if it.next >= n {
		return 0, false
	}
	j := it.next + it.rng.intn(n-it.next)
	picked := it.lookup(j)
	it.swaps[j] = it.lookup(it.next)
	it.swaps[it.next] = picked
	it.next++
	return picked, true
}

// ShufflePositions is the eager twin of KeyedPositions: a classic
// in-place Fisher-Yates over a copy of the positions, with the exact
// same draw sequence. kept around because the equivalence of the two
// is what the tests pin down.
func ShufflePositions(positions []int, password string) ([]int, error) {
	if len(positions) == 0 {
		return nil, fmt.Errorf("%w: no eligible samples for embedding", ErrCapacity)
	}
	seed, err := DeriveSeed(password)
	if err != nil {
		return nil, err
	}
	shuffled := make([]int, len(positions))
	copy(shuffled, positions)
	rng := newKeyedRand(seed)
	for i := 0; i < len(shuffled); i++ {
		j := i + rng.intn(len(shuffled)-i)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled, nil
}
