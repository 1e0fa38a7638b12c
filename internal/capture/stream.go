package capture

import (
	"encoding/binary"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

const (
	sampleRate      = 16000
	framesPerBuffer = 1024
)

// Stream is a minimal microphone source: PCM 16kHz little-endian mono.
// The portaudio implementation below is the production one; tests feed the
// Recorder through a fake.
type Stream interface {
	Start() error
	// Read blocks for one buffer of captured audio and returns it as
	// little-endian int16 bytes.
	Read() ([]byte, error)
	Stop() error
	Close() error
}

type micStream struct {
	stream *portaudio.Stream
	buffer []int16
}

// OpenMic initializes portaudio and opens the default input device.
func OpenMic() (Stream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	buffer := make([]int16, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), len(buffer), buffer)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("open input stream: %w", err)
	}
	return &micStream{stream: stream, buffer: buffer}, nil
}

func (m *micStream) Start() error { return m.stream.Start() }

func (m *micStream) Read() ([]byte, error) {
	if err := m.stream.Read(); err != nil {
		return nil, err
	}
	out := make([]byte, len(m.buffer)*2)
	for i, v := range m.buffer {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(v))
	}
	return out, nil
}

func (m *micStream) Stop() error { return m.stream.Stop() }

func (m *micStream) Close() error {
	err := m.stream.Close()
	if terr := portaudio.Terminate(); terr != nil && err == nil {
		err = terr
	}
	return err
}

// wavEncode prepends a RIFF header describing PCM 16kHz mono 16-bit data.
func wavEncode(pcm []byte) []byte {
	const headerLen = 44
	out := make([]byte, headerLen+len(pcm))
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(36+len(pcm)))
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 1) // PCM
	binary.LittleEndian.PutUint16(out[22:], 1) // mono
	binary.LittleEndian.PutUint32(out[24:], sampleRate)
	binary.LittleEndian.PutUint32(out[28:], sampleRate*2) // byte rate
	binary.LittleEndian.PutUint16(out[32:], 2)            // block align
	binary.LittleEndian.PutUint16(out[34:], 16)           // bits per sample
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(len(pcm)))
	copy(out[headerLen:], pcm)
	return out
}
