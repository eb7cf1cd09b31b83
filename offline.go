package vpiano

import (
	"bytes"
	"encoding/binary"

	intsynth "github.com/cbegin/vpiano-go/internal/synth"
)

// RenderTone renders seconds of one key press at freq Hz as interleaved stereo,
// using the same envelope as live playback.
func RenderTone(freq float64, sampleRate int, seconds float64) []float32 {
	return RenderToneWithParams(freq, sampleRate, seconds, intsynth.DefaultParams())
}

func RenderToneWithParams(freq float64, sampleRate int, seconds float64, params intsynth.Params) []float32 {
	s := intsynth.New(sampleRate, params)
	s.NoteOn(freq)
	frames := int(float64(sampleRate) * seconds)
	if frames < 0 {
		frames = 0
	}
	out := make([]float32, frames*2)
	s.Process(out)
	return out
}

// wavHeader is a canonical 44-byte RIFF header for IEEE float PCM.
type wavHeader struct {
	RIFF          [4]byte
	ChunkSize     uint32
	WAVE          [4]byte
	Fmt           [4]byte
	FmtSize       uint32
	Format        uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Data          [4]byte
	DataSize      uint32
}

const wavFormatIEEEFloat = 3

func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := uint32(len(samples) * 4)
	h := wavHeader{
		RIFF:          [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		WAVE:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		Format:        wavFormatIEEEFloat,
		Channels:      uint16(channels),
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * channels * 4),
		BlockAlign:    uint16(channels * 4),
		BitsPerSample: 32,
		Data:          [4]byte{'d', 'a', 't', 'a'},
		DataSize:      dataSize,
	}
	var buf bytes.Buffer
	buf.Grow(44 + int(dataSize))
	// Writes to a bytes.Buffer cannot fail.
	_ = binary.Write(&buf, binary.LittleEndian, h)
	_ = binary.Write(&buf, binary.LittleEndian, samples)
	return buf.Bytes()
}
