package cryptography

import (
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	SymKeySize = chacha20poly1305.KeySize
	NonceSize  = chacha20poly1305.NonceSize

	// key derivation parameters for the payload layer. the random
	// per-message salt keeps these keys unrelated to the embedding
	// seed, which uses a fixed domain salt of its own.
	SaltSize      = 16
	KdfIterations = 200000

	MinPasswordLength = 8

	FlagCompressed = 0x01
)

// version tag of the encrypted payload format
var MagicHeader = []byte("SC1")
