package audio

import "errors"

/*
 * every failure of the engine belongs to one of these four classes.
 * details are wrapped with %w so callers can match with errors.Is.
 */
var (
	// the carrier is not an uncompressed WAV file, or paths are invalid
	ErrFormat = errors.New("invalid or unsupported carrier file")

	// empty, blank or too short password
	ErrPassword = errors.New("invalid password")

	// payload plus delimiter does not fit into the eligible samples
	ErrCapacity = errors.New("message too large for this audio file")

	// the delimiter never showed up: wrong password or no hidden
	// message. the two cases are indistinguishable on purpose, so the
	// extractor never works as a password oracle.
	ErrNotFound = errors.New("delimiter not found: wrong password or no hidden message")
)
