package playback

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
)

// Speaker plays synthesized payloads (MP3 or wav, sniffed by header) on the
// default output device. One payload plays at a time; starting a new one
// while another is active is the caller's bug, not supported behavior.
type Speaker struct {
	mu   sync.Mutex
	rate beep.SampleRate
	init bool
}

func NewSpeaker() *Speaker {
	return &Speaker{}
}

// Handle controls one in-flight playback.
type Handle struct {
	once     sync.Once
	streamer beep.StreamSeekCloser
}

// Stop halts playback immediately. The completion callback does not fire for
// a stopped playback. Idempotent.
func (h *Handle) Stop() {
	h.once.Do(func() {
		speaker.Clear()
		_ = h.streamer.Close()
	})
}

// Play decodes the payload, starts playback and arranges for onEnded to run
// exactly once when the audio finishes naturally.
func (s *Speaker) Play(data []byte, onEnded func()) (*Handle, error) {
	streamer, format, err := decode(data)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if !s.init || s.rate != format.SampleRate {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			s.mu.Unlock()
			_ = streamer.Close()
			return nil, fmt.Errorf("speaker init: %w", err)
		}
		s.init = true
		s.rate = format.SampleRate
	}
	s.mu.Unlock()

	h := &Handle{streamer: streamer}
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		_ = streamer.Close()
		if onEnded != nil {
			onEnded()
		}
	})))
	return h, nil
}

func decode(data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	if IsWAV(data) {
		return wav.Decode(bytes.NewReader(data))
	}
	return mp3.Decode(io.NopCloser(bytes.NewReader(data)))
}

// IsWAV reports whether the payload starts with a RIFF/WAVE header.
func IsWAV(data []byte) bool {
	return len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE"))
}
