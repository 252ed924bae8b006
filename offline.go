package takyon

import (
	"encoding/binary"
	"math"

	"github.com/aaratha/takyon/render"
)

// RenderSamples runs r for seconds worth of frames at sampleRate and
// returns the interleaved stereo f32 buffer, without touching any audio
// device.
func RenderSamples(r *render.Renderer, sampleRate int, seconds float64) []float32 {
	frames := int(float64(sampleRate) * seconds)
	out := make([]float32, frames*2)
	r.Process(out)
	return out
}

// EncodeWAVFloat32LE wraps samples (interleaved, channels-wide) in a
// 32-bit float PCM WAV container.
func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
