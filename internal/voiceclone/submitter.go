// Package voiceclone submits reference audio to an external voice cloning
// service and returns a reference to the generated speech. Two wire formats
// are supported: a Gradio-style /predict endpoint that answers with a file
// URL, and a direct endpoint that answers with base64 audio inline.
package voiceclone

import (
	"context"
	"errors"
	"sync/atomic"
)

var (
	// ErrEmptyResponse means the service answered without any payload.
	ErrEmptyResponse = errors.New("voiceclone: empty response from service")
	// ErrRemote wraps an error message reported by the service itself.
	ErrRemote = errors.New("voiceclone: service reported an error")
	// ErrMissingPayload means the response parsed but carried no audio.
	ErrMissingPayload = errors.New("voiceclone: response carried no audio")
)

// Submitter sends one cloning request and returns a locally usable
// reference to the generated audio: a URL for services that host results,
// a file path for services that return audio inline.
type Submitter interface {
	Submit(ctx context.Context, serviceURL string, refAudio []byte, refName, refText, genText string) (string, error)
}

// serviceProcessing is one advisory flag for the whole package: the cloning
// backend handles one request at a time no matter which adapter fronts it.
// It does not serialize requests; it only lets callers show a "processing"
// state.
var serviceProcessing atomic.Bool

type busyFlag struct{}

func (busyFlag) Processing() bool { return serviceProcessing.Load() }

func (busyFlag) begin() { serviceProcessing.Store(true) }
func (busyFlag) end()   { serviceProcessing.Store(false) }
