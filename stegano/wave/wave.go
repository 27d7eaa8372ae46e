package wave

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

/*
 * reader and writer for uncompressed PCM WAV containers.
 * unlike most decoders we keep the frame bytes raw instead of
 * converting them to normalized samples, because the embedding
 * engine needs byte-exact access to every sample.
 */

const (
	headerSize = 44
	pcmFormat  = 1
)

var (
	ErrNotWave     = fmt.Errorf("not a WAV file")
	ErrNotPCM      = fmt.Errorf("compressed WAV files are not supported")
	ErrSampleWidth = fmt.Errorf("unsupported sample width")
	ErrNoFrames    = fmt.Errorf("WAV file has no audio frames")
	ErrExtension   = fmt.Errorf("only .wav files are supported")
)

// parameters of the PCM stream inside the container.
type Params struct {
	SampleWidth int // bytes per sample, 1..4
	NumChannels int
	SampleRate  int
	NumFrames   int
}

// one frame holds one sample per channel.
func (p Params) BlockAlign() int {
	return p.SampleWidth * p.NumChannels
}

func (p Params) TotalSamples() int {
	return p.NumFrames * p.NumChannels
}

func (p Params) validate() error {
	if p.SampleWidth < 1 || p.SampleWidth > 4 {
		return fmt.Errorf("%w: %d bytes", ErrSampleWidth, p.SampleWidth)
	}
	if p.NumChannels < 1 {
		return fmt.Errorf("%w: no channels", ErrNotWave)
	}
	if p.NumFrames < 1 {
		return ErrNoFrames
	}
	return nil
}

// ReadWaveFile reads a .wav file and returns its parameters together
// with the raw interleaved PCM frame bytes.
func ReadWaveFile(path string) (Params, []byte, error) {
	if strings.ToLower(filepath.Ext(path)) != ".wav" {
		return Params{}, nil, ErrExtension
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, nil, err
	}
	return ReadWaveFromReader(bytes.NewReader(data))
}

// ReadWaveFromReader parses a RIFF/WAVE stream. Chunks other than
// fmt and data are skipped, honoring the odd-size padding byte.
func ReadWaveFromReader(r io.Reader) (Params, []byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Params{}, nil, err
	}

	if len(data) < 12 ||
		bytes.Equal(data[0:4], []byte("RIFF")) == false ||
		bytes.Equal(data[8:12], []byte("WAVE")) == false {
		return Params{}, nil, ErrNotWave
	}

	var params Params
	var frames []byte
	haveFmt := false
	haveData := false

	pos := 12
	for pos+8 <= len(data) {
		chunkID := data[pos : pos+4]
		chunkSize := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		pos += 8
		if chunkSize < 0 || pos+chunkSize > len(data) {
			// tolerate a short final chunk, some encoders lie about it
			chunkSize = len(data) - pos
		}
		body := data[pos : pos+chunkSize]

		if bytes.Equal(chunkID, []byte("fmt ")) {
			if chunkSize < 16 {
				return Params{}, nil, ErrNotWave
			}
			audioFormat := binary.LittleEndian.Uint16(body[0:2])
			if audioFormat != pcmFormat {
				return Params{}, nil, fmt.Errorf("%w (format tag %d)", ErrNotPCM, audioFormat)
			}
			bits := int(binary.LittleEndian.Uint16(body[14:16]))
			if bits == 0 || bits%8 != 0 {
				return Params{}, nil, fmt.Errorf("%w: %d bits", ErrSampleWidth, bits)
			}
			params.SampleWidth = bits / 8
			params.NumChannels = int(binary.LittleEndian.Uint16(body[2:4]))
			params.SampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			haveFmt = true
		} else if bytes.Equal(chunkID, []byte("data")) {
			frames = body
			haveData = true
		}

		pos += chunkSize
		if chunkSize%2 == 1 {
			pos++ // chunks are word-aligned
		}
	}

	if haveFmt == false || haveData == false {
		return Params{}, nil, ErrNotWave
	}

	// keep only whole frames; a partial tail can never carry a full sample
	align := params.BlockAlign()
	if align <= 0 {
		return Params{}, nil, ErrNotWave
	}
	params.NumFrames = len(frames) / align
	frames = frames[:params.NumFrames*align]

	if err := params.validate(); err != nil {
		return Params{}, nil, err
	}
	return params, frames, nil
}

// WriteWaveToWriter emits a canonical 44-byte header followed by the frames.
func WriteWaveToWriter(w io.Writer, p Params, frames []byte) error {
	if err := p.validate(); err != nil {
		return err
	}

	byteRate := uint32(p.SampleRate) * uint32(p.BlockAlign())
	dataSize := uint32(len(frames))
	riffSize := uint32(headerSize-8) + dataSize

	header := make([]byte, headerSize)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], riffSize)
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], pcmFormat)
	binary.LittleEndian.PutUint16(header[22:24], uint16(p.NumChannels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(p.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], uint16(p.BlockAlign()))
	binary.LittleEndian.PutUint16(header[34:36], uint16(p.SampleWidth*8))

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	if _, err := w.Write(header); err != nil {
		return err
	}
	if _, err := w.Write(frames); err != nil {
		return err
	}
	return nil
}

// WriteWaveFile assembles the whole container in memory and stores it
// with a single write, so a failure never leaves a partial file behind.
func WriteWaveFile(path string, p Params, frames []byte) error {
	buf := bytes.NewBuffer(make([]byte, 0, headerSize+len(frames)))
	if err := WriteWaveToWriter(buf, p, frames); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0660)
}
