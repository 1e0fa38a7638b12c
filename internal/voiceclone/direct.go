package voiceclone

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

// DirectSubmitter talks to a cloning service that returns the generated
// audio inline as base64. The decoded audio is written to a temp wav file
// and its path is returned as the reference.
type DirectSubmitter struct {
	busyFlag

	once   sync.Once
	client *http.Client
}

func NewDirectSubmitter() *DirectSubmitter {
	return &DirectSubmitter{}
}

func (d *DirectSubmitter) handle() *http.Client {
	d.once.Do(func() {
		d.client = &http.Client{Timeout: 5 * time.Minute}
	})
	return d.client
}

type directResponse struct {
	AudioBase64 string `json:"audio_base64"`
	Error       string `json:"error"`
}

// decodeDirect accepts both shapes the service is known to answer with:
// a bare object and a one-element array of that object.
func decodeDirect(raw []byte) (directResponse, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return directResponse{}, ErrEmptyResponse
	}
	if raw[0] == '[' {
		var list []directResponse
		if err := json.Unmarshal(raw, &list); err != nil {
			return directResponse{}, fmt.Errorf("voiceclone: decode response: %w", err)
		}
		if len(list) == 0 {
			return directResponse{}, ErrEmptyResponse
		}
		return list[0], nil
	}
	var one directResponse
	if err := json.Unmarshal(raw, &one); err != nil {
		return directResponse{}, fmt.Errorf("voiceclone: decode response: %w", err)
	}
	return one, nil
}

func (d *DirectSubmitter) Submit(ctx context.Context, serviceURL string, refAudio []byte, refName, refText, genText string) (string, error) {
	d.begin()
	defer d.end()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	_ = w.WriteField("gen_text", genText)
	_ = w.WriteField("ref_text", refText)
	part, err := w.CreateFormFile("ref_audio", refName)
	if err != nil {
		return "", fmt.Errorf("voiceclone: build request: %w", err)
	}
	if _, err := part.Write(refAudio); err != nil {
		return "", fmt.Errorf("voiceclone: build request: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("voiceclone: build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serviceURL, &body)
	if err != nil {
		return "", fmt.Errorf("voiceclone: build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	res, err := d.handle().Do(req)
	if err != nil {
		return "", fmt.Errorf("voiceclone: submit: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("voiceclone: read response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrRemote, res.StatusCode, strings.TrimSpace(string(raw)))
	}

	parsed, err := decodeDirect(raw)
	if err != nil {
		return "", err
	}
	// The service reports model-side failures in-band; check before the
	// payload so a message like "voice too short" is not masked.
	if parsed.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrRemote, parsed.Error)
	}
	if parsed.AudioBase64 == "" {
		return "", ErrMissingPayload
	}

	audio, err := base64.StdEncoding.DecodeString(parsed.AudioBase64)
	if err != nil {
		return "", fmt.Errorf("voiceclone: decode audio: %w", err)
	}

	f, err := os.CreateTemp("", "qtale-clone-*.wav")
	if err != nil {
		return "", fmt.Errorf("voiceclone: save audio: %w", err)
	}
	if _, err := f.Write(audio); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("voiceclone: save audio: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("voiceclone: save audio: %w", err)
	}
	return f.Name(), nil
}
