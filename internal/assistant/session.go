package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/DiarCode/q-tale/internal/capture"
	"github.com/DiarCode/q-tale/internal/catalog"
	"github.com/DiarCode/q-tale/internal/playback"
)

const (
	whisperTimeout = 60 * time.Second
	chatTimeout    = 20 * time.Second
	ttsTimeout     = 60 * time.Second
)

// User-facing error strings, surfaced through Err. Microphone problems are
// reported in English (they come from the device layer), pipeline failures
// in Kazakh like the rest of the product copy.
const (
	msgMicDenied        = "Microphone access denied or error."
	msgMicMissing       = "Microphone not initialized."
	msgTranscribeFailed = "Транскрипция қатесі"
	msgChatFailed       = "Чат қатесі"
	msgTTSFailed        = "TTS қатесі"
)

// Config wires a Session to its collaborators. Recorder may be nil when no
// microphone is available; the session then reports msgMicMissing on Start.
type Config struct {
	Recorder    Recorder
	Transcriber Transcriber
	Responder   Responder
	Synthesizer Synthesizer
	Player      Player
	Segments    SegmentSource
	Book        catalog.Book
	// Position reports the listener's playback position and the book's
	// total length, both in seconds. Used to ground replies in the part
	// of the book the listener has actually reached.
	Position func() (positionSec, totalSec float64)
	// Notify, if set, is called on every state transition.
	Notify func(State)
}

// Session runs the voice assistant pipeline for one book:
// record -> transcribe -> respond -> synthesize -> play. At most one
// pipeline run is live at a time, and at most one stage of it holds a
// cancel function. Stop cancels whichever stage is live and resets to idle.
type Session struct {
	recorder    Recorder
	transcriber Transcriber
	responder   Responder
	synthesizer Synthesizer
	player      Player
	segments    SegmentSource
	book        catalog.Book
	position    func() (float64, float64)
	notify      func(State)

	mu            sync.Mutex
	state         State
	gen           int
	msgs          []Message
	nextID        int
	errMsg        string
	whisperCancel context.CancelFunc
	chatCancel    context.CancelFunc
	ttsCancel     context.CancelFunc
	playback      Playback
}

func NewSession(cfg Config) *Session {
	s := &Session{
		recorder:    cfg.Recorder,
		transcriber: cfg.Transcriber,
		responder:   cfg.Responder,
		synthesizer: cfg.Synthesizer,
		player:      cfg.Player,
		segments:    cfg.Segments,
		book:        cfg.Book,
		position:    cfg.Position,
		notify:      cfg.Notify,
	}
	if s.recorder != nil {
		s.recorder.SetOnClip(s.handleClip)
	}
	return s
}

// Start begins listening. It fails when a pipeline run is already active or
// when no microphone is available.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.state != StateIdle {
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("assistant busy: %s", st)
	}
	s.errMsg = ""
	if s.recorder == nil {
		s.errMsg = msgMicMissing
		s.mu.Unlock()
		return fmt.Errorf("microphone not initialized")
	}
	s.mu.Unlock()

	if err := s.recorder.Start(); err != nil {
		s.mu.Lock()
		s.errMsg = msgMicDenied
		s.mu.Unlock()
		return fmt.Errorf("start recording: %w", err)
	}

	s.mu.Lock()
	s.state = StateListening
	s.mu.Unlock()
	s.notifyState(StateListening)
	return nil
}

// StopRecording finalizes the current recording. The resulting clip arrives
// asynchronously via handleClip, which kicks off the pipeline run.
func (s *Session) StopRecording() {
	s.mu.Lock()
	listening := s.state == StateListening
	s.mu.Unlock()
	if listening {
		s.recorder.Stop()
	}
}

// Stop aborts whatever the assistant is doing and resets to idle: a live
// recording is discarded, an in-flight stage is canceled, active playback is
// halted. Stopping never re-triggers the pipeline. Idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	s.gen++
	for _, cancel := range []context.CancelFunc{s.whisperCancel, s.chatCancel, s.ttsCancel} {
		if cancel != nil {
			cancel()
		}
	}
	s.whisperCancel, s.chatCancel, s.ttsCancel = nil, nil, nil
	pb := s.playback
	s.playback = nil
	s.errMsg = ""
	wasListening := s.state == StateListening
	changed := s.state != StateIdle
	s.state = StateIdle
	s.mu.Unlock()

	if wasListening && s.recorder != nil {
		s.recorder.Cancel()
	}
	if pb != nil {
		pb.Stop()
	}
	if changed {
		s.notifyState(StateIdle)
	}
}

// Teardown stops the session and releases the microphone.
func (s *Session) Teardown() {
	s.Stop()
	if s.recorder != nil {
		s.recorder.Teardown()
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

func (s *Session) handleClip(clip capture.Clip) {
	s.mu.Lock()
	if s.state != StateListening {
		s.mu.Unlock()
		return
	}
	s.state = StateThinking
	gen := s.gen
	s.mu.Unlock()
	s.notifyState(StateThinking)
	go s.run(clip, gen)
}

func (s *Session) run(clip capture.Clip, gen int) {
	var text string
	err := s.stage(gen, &s.whisperCancel, whisperTimeout, func(ctx context.Context) error {
		var err error
		text, err = s.transcriber.Transcribe(ctx, clip)
		return err
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.fail(gen, msgTranscribeFailed)
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		s.fail(gen, msgTranscribeFailed)
		return
	}
	if !s.append(gen, SenderUser, text, "") {
		return
	}

	var reply string
	err = s.stage(gen, &s.chatCancel, chatTimeout, func(ctx context.Context) error {
		var err error
		reply, err = s.responder.Respond(ctx, s.grounding(ctx), text)
		return err
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.fail(gen, msgChatFailed)
		return
	}

	var audio []byte
	err = s.stage(gen, &s.ttsCancel, ttsTimeout, func(ctx context.Context) error {
		var err error
		audio, err = s.synthesizer.Synthesize(ctx, reply)
		return err
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.fail(gen, msgTTSFailed)
		return
	}

	if !s.append(gen, SenderAssistant, reply, s.saveAudio(audio)) {
		return
	}
	s.play(audio, gen)
}

// stage runs one pipeline step with its own timeout, parking the cancel
// function where Stop can reach it. Returns context.Canceled when the run
// was superseded before the step could start.
func (s *Session) stage(gen int, slot *context.CancelFunc, timeout time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return context.Canceled
	}
	*slot = cancel
	s.mu.Unlock()

	err := fn(ctx)

	s.mu.Lock()
	// A superseded run returning late must not clear a handle a newer run
	// has parked in the same slot.
	if s.gen == gen {
		*slot = nil
	}
	s.mu.Unlock()
	return err
}

func (s *Session) play(audio []byte, gen int) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.state = StateSpeaking
	s.mu.Unlock()
	s.notifyState(StateSpeaking)

	onEnded := func() {
		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.gen++
		s.state = StateIdle
		s.playback = nil
		s.mu.Unlock()
		s.notifyState(StateIdle)
	}

	pb, err := s.player.Play(audio, onEnded)
	if err != nil {
		s.fail(gen, msgTTSFailed)
		return
	}

	s.mu.Lock()
	if s.gen == gen && s.state == StateSpeaking {
		s.playback = pb
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	// Playback already finished or was superseded while Play returned.
	pb.Stop()
}

func (s *Session) fail(gen int, msg string) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.gen++
	s.errMsg = msg
	s.state = StateIdle
	s.mu.Unlock()
	s.notifyState(StateIdle)
}

func (s *Session) append(gen int, sender, text, audioRef string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	s.nextID++
	s.msgs = append(s.msgs, Message{ID: s.nextID, Sender: sender, Text: text, AudioRef: audioRef})
	return true
}

func (s *Session) grounding(ctx context.Context) string {
	var pos, total float64
	if s.position != nil {
		pos, total = s.position()
	}
	var snippet string
	if s.segments != nil {
		snippet = SnippetAt(s.segments.Segments(ctx, s.book.ID), pos, total)
	}
	return groundingContext(s.book, snippet, pos)
}

func (s *Session) saveAudio(audio []byte) string {
	suffix := ".mp3"
	if playback.IsWAV(audio) {
		suffix = ".wav"
	}
	f, err := os.CreateTemp("", "qtale-reply-*"+suffix)
	if err != nil {
		log.Printf("assistant: save reply audio: %v", err)
		return ""
	}
	if _, err := f.Write(audio); err != nil {
		f.Close()
		os.Remove(f.Name())
		log.Printf("assistant: save reply audio: %v", err)
		return ""
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		log.Printf("assistant: save reply audio: %v", err)
		return ""
	}
	return f.Name()
}

func (s *Session) notifyState(st State) {
	if s.notify != nil {
		s.notify(st)
	}
}

// SnippetAt maps a playback position onto the transcript segment the
// listener is currently hearing. Returns "" when the position cannot be
// resolved (no segments, unknown duration, position out of range).
func SnippetAt(segments []string, positionSec, totalSec float64) string {
	if len(segments) == 0 || totalSec <= 0 || positionSec < 0 || positionSec > totalSec {
		return ""
	}
	idx := int(positionSec / totalSec * float64(len(segments)))
	if idx >= len(segments) {
		idx = len(segments) - 1
	}
	return segments[idx]
}

func groundingContext(b catalog.Book, snippet string, positionSec float64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Сен — «%s» аудиокітабын тыңдап отырған оқырманға көмектесетін кітап ассистентісің.\n", b.Title)
	fmt.Fprintf(&sb, "Авторы: %s. Жанры: %s. Жылы: %s. Ұзақтығы: %s.\n", b.Author, b.Genre, b.Year, b.Duration)
	if b.Description != "" {
		fmt.Fprintf(&sb, "Сипаттамасы: %s\n", b.Description)
	}
	fmt.Fprintf(&sb, "Пайдаланушы аудионы %d секундта тоқтатты.\n", int(positionSec))
	if snippet != "" {
		fmt.Fprintf(&sb, "Тыңдаушы қазір мына үзіндіні тыңдап отыр: «%s»\n", snippet)
	}
	sb.WriteString("Тек осы кітап аясында, қазақ тілінде қысқа әрі түсінікті жауап бер. Кітапқа қатысы жоқ сұраққа сыпайы түрде бас тарт.")
	return sb.String()
}
