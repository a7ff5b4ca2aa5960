// Package wavewriter encodes signed 16-bit PCM sample streams as RIFF/WAVE
// files, adapted from the teacher's float32 WAV encoder to the int16
// output format the engine produces.
package wavewriter

import (
	"bytes"
	"encoding/binary"
)

// EncodePCM16LE builds a complete WAV file (RIFF header + fmt chunk +
// data chunk) from interleaved int16 samples. channels is 1 (mono) or 2
// (stereo); srate is the sample rate in Hz.
func EncodePCM16LE(samples []int16, channels int, srate int) []byte {
	const bitsPerSample = 16
	byteRate := srate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8
	dataSize := len(samples) * 2

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16)) // fmt chunk size
	binary.Write(&buf, binary.LittleEndian, uint16(1))  // format code 1 = PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(srate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	binary.Write(&buf, binary.LittleEndian, samples)

	return buf.Bytes()
}
