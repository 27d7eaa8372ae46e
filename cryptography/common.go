package cryptography

import (
	"bytes"
	"compress/gzip"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"

	"soniccipher/util"
)

/*
 * password-based authenticated encryption for the message payload.
 * the steganography engine only ever sees the opaque blob produced
 * here: magic + flags + salt + nonce + sealed ciphertext.
 */

var (
	ErrPassword = errors.New("invalid password")

	// authentication failure: wrong password and corrupted data are
	// reported the same way
	ErrDecryption = errors.New("wrong password or corrupted data")
)

func validatePassword(password string) ([]byte, error) {
	if password == "" || strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("%w: password cannot be empty", ErrPassword)
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters",
			ErrPassword, MinPasswordLength)
	}
	return []byte(util.FixUnicode(password)), nil
}

// derive the symmetric key from password and per-message salt
func deriveKey(password string, salt []byte) ([]byte, error) {
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("invalid salt")
	}
	passwordBytes, err := validatePassword(password)
	if err != nil {
		return nil, err
	}
	return pbkdf2.Key(passwordBytes, salt, KdfIterations, SymKeySize, sha256.New), nil
}

// compress only when it actually shrinks the data, the returned flag
// says which variant was kept.
func compressPayload(data []byte) (byte, []byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		return 0, nil, err
	}
	if err := gz.Close(); err != nil {
		return 0, nil, err
	}
	if buf.Len() >= len(data) {
		return 0, data, nil
	}
	return FlagCompressed, buf.Bytes(), nil
}

func decompressPayload(data []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decompression failed", ErrDecryption)
	}
	defer gz.Close()

	var out bytes.Buffer
	if _, err := io.Copy(&out, gz); err != nil {
		return nil, fmt.Errorf("%w: decompression failed", ErrDecryption)
	}
	return out.Bytes(), nil
}

// EncryptMessage turns a plaintext message into a versioned,
// authenticated payload blob keyed by the password.
func EncryptMessage(plaintext string, password string, compress bool) ([]byte, error) {
	if plaintext == "" {
		return nil, fmt.Errorf("message cannot be empty")
	}
	data := []byte(plaintext)

	flags := byte(0)
	if compress {
		var err error
		flags, data, err = compressPayload(data)
		if err != nil {
			return nil, err
		}
	}

	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	key, err := deriveKey(password, salt)
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	sealed := aead.Seal(nil, nonce, data, nil)

	payload := make([]byte, 0, len(MagicHeader)+1+SaltSize+NonceSize+len(sealed))
	payload = append(payload, MagicHeader...)
	payload = append(payload, flags)
	payload = append(payload, salt...)
	payload = append(payload, nonce...)
	payload = append(payload, sealed...)
	return payload, nil
}

// DecryptMessage reverses EncryptMessage. payloads without the magic
// header are treated as the legacy salt+nonce+ciphertext layout.
func DecryptMessage(payload []byte, password string) (string, error) {
	if payload == nil || len(payload) <= SaltSize {
		return "", fmt.Errorf("%w: payload is too short", ErrDecryption)
	}

	compressed := false
	rest := payload
	if bytes.HasPrefix(payload, MagicHeader) {
		if len(payload) <= len(MagicHeader)+1+SaltSize+NonceSize {
			return "", fmt.Errorf("%w: payload is too short", ErrDecryption)
		}
		flags := payload[len(MagicHeader)]
		compressed = flags&FlagCompressed == FlagCompressed
		rest = payload[len(MagicHeader)+1:]
	}
	if len(rest) <= SaltSize+NonceSize {
		return "", fmt.Errorf("%w: payload is too short", ErrDecryption)
	}
	salt := rest[:SaltSize]
	nonce := rest[SaltSize : SaltSize+NonceSize]
	sealed := rest[SaltSize+NonceSize:]

	key, err := deriveKey(password, salt)
	if err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return "", err
	}
	data, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryption
	}

	if compressed {
		if data, err = decompressPayload(data); err != nil {
			return "", err
		}
	}
	if utf8.Valid(data) == false {
		return "", fmt.Errorf("%w: decrypted data is not valid UTF-8", ErrDecryption)
	}
	return string(data), nil
}
