package audio

const (
	// marker appended to every payload so the extractor knows where the
	// message ends. a payload that happens to contain these nine bytes
	// gets truncated at their first occurrence, so callers hiding raw
	// binary data should frame it themselves (the encrypted payloads
	// produced by the cryptography package are safe in practice).
	Delimiter = "###END###"

	// seed derivation parameters. the salt is fixed and must stay
	// distinct from the encryption layer's salts, so that the embedding
	// seed never doubles as an encryption key.
	EmbedKdfSalt       = "SonicCipher|Embedding"
	EmbedKdfIterations = 120000
	SeedSize           = 32

	// share of samples excluded as too quiet for embedding
	HighEnergyPercentile = 0.6

	MinPasswordLength = 8

	// supported bytes per sample
	MinSampleWidth = 1
	MaxSampleWidth = 4
)
