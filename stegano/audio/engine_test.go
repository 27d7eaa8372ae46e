package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"soniccipher/stegano/wave"
)

// a sine carrier gives a realistic spread of magnitudes, so the
// energy selection keeps roughly the loudest 40% of the samples.
func makeCarrier16(t *testing.T, path string, frames int) {
	samples := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		val := int16(8000 * math.Sin(float64(i)/37.0))
		binary.LittleEndian.PutUint16(samples[2*i:], uint16(val))
	}
	params := wave.Params{SampleWidth: 2, NumChannels: 1, SampleRate: 44100, NumFrames: frames}
	if err := wave.WriteWaveFile(path, params, samples); err != nil {
		t.Fatalf("Failed to write carrier: %v", err)
	}
}

func TestHideExtractRoundTrip(t *testing.T) {
	dir := t.TempDir()
	carrier := filepath.Join(dir, "carrier.wav")
	stego := filepath.Join(dir, "stego.wav")
	makeCarrier16(t, carrier, 20000)

	payload := make([]byte, 50)
	for i := range payload {
		payload[i] = byte(i*31 + 7)
	}
	password := "hunter2hunter2"

	capacity, err := Capacity(carrier)
	if err != nil {
		t.Fatalf("Failed to compute capacity: %v", err)
	}
	if capacity < len(payload) {
		t.Fatalf("Test carrier too small: capacity %d", capacity)
	}

	if err = HideData(carrier, stego, payload, password); err != nil {
		t.Fatalf("Failed to hide payload: %v", err)
	}

	extracted, err := ExtractData(stego, password)
	if err != nil {
		t.Fatalf("Failed to extract payload: %v", err)
	}
	assert.Equal(t, payload, extracted, "Extracted payload differs from the original")

	// wrong password must look exactly like an absent message
	_, err = ExtractData(stego, "hunter2hunter3")
	assert.ErrorIs(t, err, ErrNotFound, "Wrong password should yield ErrNotFound")
}

func TestHideTouchesOnlyLSBs(t *testing.T) {
	dir := t.TempDir()
	carrier := filepath.Join(dir, "carrier.wav")
	stego := filepath.Join(dir, "stego.wav")
	makeCarrier16(t, carrier, 10000)

	if err := HideData(carrier, stego, []byte("quiet please"), "hunter2hunter2"); err != nil {
		t.Fatalf("Failed to hide payload: %v", err)
	}

	origParams, origFrames, err := wave.ReadWaveFile(carrier)
	if err != nil {
		t.Fatalf("Failed to read carrier: %v", err)
	}
	stegoParams, stegoFrames, err := wave.ReadWaveFile(stego)
	if err != nil {
		t.Fatalf("Failed to read stego file: %v", err)
	}

	if origParams != stegoParams {
		t.Errorf("Embedding changed the container parameters: %+v != %+v",
			stegoParams, origParams)
	}
	for i := range origFrames {
		diff := origFrames[i] ^ stegoFrames[i]
		if diff == 0 {
			continue
		}
		if diff != 1 || i%origParams.SampleWidth != 0 {
			t.Fatalf("Byte %d changed by %#x, only first-byte LSBs may move", i, diff)
		}
	}
}

func TestRoundTripOtherWidths(t *testing.T) {
	dir := t.TempDir()
	payload := []byte("short secret")
	password := "hunter2hunter2"

	// 8-bit mono
	frames8 := make([]byte, 20000)
	for i := range frames8 {
		frames8[i] = byte(128 + 100*math.Sin(float64(i)/37.0))
	}
	carrier8 := filepath.Join(dir, "c8.wav")
	params8 := wave.Params{SampleWidth: 1, NumChannels: 1, SampleRate: 8000, NumFrames: len(frames8)}
	if err := wave.WriteWaveFile(carrier8, params8, frames8); err != nil {
		t.Fatalf("Failed to write 8-bit carrier: %v", err)
	}

	// 24-bit stereo
	numFrames24 := 10000
	frames24 := make([]byte, numFrames24*6)
	for i := 0; i < numFrames24*2; i++ {
		val := int32(500000 * math.Sin(float64(i)/53.0))
		raw := uint32(val)
		frames24[3*i] = byte(raw)
		frames24[3*i+1] = byte(raw >> 8)
		frames24[3*i+2] = byte(raw >> 16)
	}
	carrier24 := filepath.Join(dir, "c24.wav")
	params24 := wave.Params{SampleWidth: 3, NumChannels: 2, SampleRate: 48000, NumFrames: numFrames24}
	if err := wave.WriteWaveFile(carrier24, params24, frames24); err != nil {
		t.Fatalf("Failed to write 24-bit carrier: %v", err)
	}

	for _, carrier := range []string{carrier8, carrier24} {
		stego := carrier[:len(carrier)-4] + "_out.wav"
		if err := HideData(carrier, stego, payload, password); err != nil {
			t.Fatalf("Failed to hide in %s: %v", carrier, err)
		}
		extracted, err := ExtractData(stego, password)
		if err != nil {
			t.Fatalf("Failed to extract from %s: %v", stego, err)
		}
		if bytes.Equal(extracted, payload) == false {
			t.Errorf("Round trip spoiled the payload for %s: %v != %v",
				carrier, extracted, payload)
		}
	}
}

func TestCapacityFormula(t *testing.T) {
	dir := t.TempDir()
	carrier := filepath.Join(dir, "carrier.wav")
	makeCarrier16(t, carrier, 8000)

	params, frames, err := wave.ReadWaveFile(carrier)
	if err != nil {
		t.Fatalf("Failed to read carrier: %v", err)
	}
	positions, err := SelectEligible(frames, params.SampleWidth)
	if err != nil {
		t.Fatalf("Failed to select positions: %v", err)
	}

	capacity, err := Capacity(carrier)
	if err != nil {
		t.Fatalf("Failed to compute capacity: %v", err)
	}
	expected := len(positions)/8 - len(Delimiter)
	if expected < 0 {
		expected = 0
	}
	if capacity != expected {
		t.Errorf("Capacity = %d, want %d", capacity, expected)
	}
}

func TestCapacityNeverNegative(t *testing.T) {
	dir := t.TempDir()
	carrier := filepath.Join(dir, "tiny.wav")
	makeCarrier16(t, carrier, 30) // way below one delimiter worth of bits

	capacity, err := Capacity(carrier)
	if err != nil {
		t.Fatalf("Failed to compute capacity: %v", err)
	}
	if capacity != 0 {
		t.Errorf("Capacity of a tiny carrier = %d, want 0", capacity)
	}
}

func TestHideCapacityErrorLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	carrier := filepath.Join(dir, "carrier.wav")
	stego := filepath.Join(dir, "stego.wav")
	makeCarrier16(t, carrier, 200)

	payload := bytes.Repeat([]byte("x"), 5000)
	err := HideData(carrier, stego, payload, "hunter2hunter2")
	assert.ErrorIs(t, err, ErrCapacity)

	if _, err := os.Stat(stego); os.IsNotExist(err) == false {
		t.Errorf("Failed hide still created an output file")
	}
}

func TestHideValidation(t *testing.T) {
	dir := t.TempDir()
	carrier := filepath.Join(dir, "carrier.wav")
	makeCarrier16(t, carrier, 5000)

	tests := []struct {
		name     string
		out      string
		payload  []byte
		password string
		want     error
	}{
		{"empty payload", filepath.Join(dir, "out.wav"), nil, "hunter2hunter2", ErrCapacity},
		{"same path", carrier, []byte("data"), "hunter2hunter2", ErrFormat},
		{"bad extension", filepath.Join(dir, "out.txt"), []byte("data"), "hunter2hunter2", ErrFormat},
		{"short password", filepath.Join(dir, "out.wav"), []byte("data"), "short", ErrPassword},
		{"blank password", filepath.Join(dir, "out.wav"), []byte("data"), "        ", ErrPassword},
	}
	for _, test := range tests {
		err := HideData(carrier, test.out, test.payload, test.password)
		if errors.Is(err, test.want) == false {
			t.Errorf("[%s] expected %v, got %v", test.name, test.want, err)
		}
		if test.out != carrier {
			if _, statErr := os.Stat(test.out); os.IsNotExist(statErr) == false {
				t.Errorf("[%s] failed hide still created an output file", test.name)
			}
		}
	}
}

func TestExtractFromCleanCarrier(t *testing.T) {
	dir := t.TempDir()
	carrier := filepath.Join(dir, "carrier.wav")
	makeCarrier16(t, carrier, 10000)

	_, err := ExtractData(carrier, "hunter2hunter2")
	if errors.Is(err, ErrNotFound) == false {
		t.Errorf("Expected ErrNotFound on a clean carrier, got %v", err)
	}
}

func TestFormatErrors(t *testing.T) {
	dir := t.TempDir()
	notWav := filepath.Join(dir, "junk.wav")
	if err := os.WriteFile(notWav, []byte("definitely not audio"), 0660); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	if _, err := Capacity(notWav); errors.Is(err, ErrFormat) == false {
		t.Errorf("Expected format error for junk data, got %v", err)
	}
	if _, err := Capacity(filepath.Join(dir, "missing.mp3")); errors.Is(err, ErrFormat) == false {
		t.Errorf("Expected format error for wrong extension, got %v", err)
	}
	if _, err := ExtractData(notWav, "hunter2hunter2"); errors.Is(err, ErrFormat) == false {
		t.Errorf("Expected format error on extract, got %v", err)
	}
}
