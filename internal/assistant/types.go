package assistant

import (
	"context"

	"github.com/DiarCode/q-tale/internal/capture"
)

// State is the assistant lifecycle phase. Transitions always go
// idle -> listening -> thinking -> speaking -> idle; any phase can be cut
// short back to idle by Stop.
type State int

const (
	StateIdle State = iota
	StateListening
	StateThinking
	StateSpeaking
)

func (s State) String() string {
	switch s {
	case StateListening:
		return "listening"
	case StateThinking:
		return "thinking"
	case StateSpeaking:
		return "speaking"
	default:
		return "idle"
	}
}

const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Message is one entry in the conversation log.
type Message struct {
	ID       int
	Sender   string
	Text     string
	AudioRef string // local path of the synthesized reply, empty for user turns
}

// Transcriber turns a recorded clip into text.
type Transcriber interface {
	Transcribe(ctx context.Context, clip capture.Clip) (string, error)
}

// Responder produces the assistant reply for a user utterance.
type Responder interface {
	Respond(ctx context.Context, system, user string) (string, error)
}

// Synthesizer turns reply text into audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Playback controls one in-flight audio playback.
type Playback interface {
	Stop()
}

// Player starts playback of a synthesized payload. onEnded fires exactly
// once if the audio finishes naturally, never after Stop.
type Player interface {
	Play(data []byte, onEnded func()) (Playback, error)
}

// Recorder captures microphone clips. Stop finalizes the clip and delivers
// it via the OnClip callback; Cancel discards it without delivery.
type Recorder interface {
	Start() error
	Stop()
	Cancel()
	SetOnClip(func(capture.Clip))
	Teardown()
}

// SegmentSource provides transcript segments for a book. Implementations
// return an empty slice rather than an error when segments are unavailable.
type SegmentSource interface {
	Segments(ctx context.Context, bookID int) []string
}
