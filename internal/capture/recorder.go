package capture

import (
	"errors"
	"log"
	"sync"
)

// ErrDeviceUnavailable means the microphone stream was never acquired; every
// Start call fails until the owner is rebuilt with a working device.
var ErrDeviceUnavailable = errors.New("capture: microphone unavailable")

// Clip is one finalized recording.
type Clip struct {
	MIME string
	Data []byte
}

// Recorder owns the microphone stream for its whole lifetime and buffers
// captured audio between Start and Stop. Stop finalizes the buffer into a
// Clip and hands it to the registered callback.
type Recorder struct {
	mu        sync.Mutex
	stream    Stream
	onClip    func(Clip)
	recording bool
	torn      bool
	chunks    [][]byte
	done      chan struct{}
}

// NewRecorder wraps an already-acquired stream. A nil stream produces a
// permanently degraded recorder whose Start always fails.
func NewRecorder(stream Stream) *Recorder {
	return &Recorder{stream: stream}
}

// Open acquires the default microphone and wraps it. On failure the returned
// recorder is non-nil but degraded.
func Open() (*Recorder, error) {
	stream, err := OpenMic()
	if err != nil {
		return NewRecorder(nil), err
	}
	return NewRecorder(stream), nil
}

// SetOnClip registers the finalized-clip callback. The callback runs on the
// goroutine that called Stop.
func (r *Recorder) SetOnClip(fn func(Clip)) {
	r.mu.Lock()
	r.onClip = fn
	r.mu.Unlock()
}

// Start clears any previously buffered audio and begins capturing.
func (r *Recorder) Start() error {
	r.mu.Lock()
	if r.stream == nil || r.torn {
		r.mu.Unlock()
		return ErrDeviceUnavailable
	}
	if r.recording {
		r.mu.Unlock()
		return nil
	}
	r.chunks = nil
	r.recording = true
	done := make(chan struct{})
	r.done = done
	stream := r.stream
	r.mu.Unlock()

	if err := stream.Start(); err != nil {
		r.mu.Lock()
		r.recording = false
		r.done = nil
		r.mu.Unlock()
		return ErrDeviceUnavailable
	}
	go r.loop(stream, done)
	return nil
}

func (r *Recorder) loop(stream Stream, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		default:
		}
		buf, err := stream.Read()
		if err != nil {
			select {
			case <-done:
			default:
				log.Printf("capture: read: %v", err)
			}
			return
		}
		r.mu.Lock()
		if r.recording {
			r.chunks = append(r.chunks, buf)
		}
		r.mu.Unlock()
	}
}

// Stop finalizes the buffered audio into a single wav clip and invokes the
// clip callback. No-op when not recording.
func (r *Recorder) Stop() {
	clip, cb, ok := r.finish()
	if !ok {
		return
	}
	if cb != nil {
		cb(clip)
	}
}

// Cancel stops an in-flight recording and discards the buffered audio
// without invoking the clip callback.
func (r *Recorder) Cancel() {
	_, _, _ = r.finish()
}

func (r *Recorder) finish() (Clip, func(Clip), bool) {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return Clip{}, nil, false
	}
	r.recording = false
	close(r.done)
	r.done = nil
	var size int
	for _, c := range r.chunks {
		size += len(c)
	}
	pcm := make([]byte, 0, size)
	for _, c := range r.chunks {
		pcm = append(pcm, c...)
	}
	r.chunks = nil
	cb := r.onClip
	stream := r.stream
	r.mu.Unlock()

	if err := stream.Stop(); err != nil {
		log.Printf("capture: stop: %v", err)
	}
	return Clip{MIME: "audio/wav", Data: wavEncode(pcm)}, cb, true
}

// Recording reports whether a capture is in flight.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Teardown releases the underlying device unconditionally. Idempotent.
func (r *Recorder) Teardown() {
	r.Cancel()
	r.mu.Lock()
	if r.torn {
		r.mu.Unlock()
		return
	}
	r.torn = true
	stream := r.stream
	r.stream = nil
	r.mu.Unlock()
	if stream != nil {
		if err := stream.Close(); err != nil {
			log.Printf("capture: close: %v", err)
		}
	}
}
