package voiceclone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"
)

// GradioSubmitter talks to a Gradio-hosted cloning model. The service
// stores the generated audio itself and answers with a URL to it.
type GradioSubmitter struct {
	busyFlag

	once   sync.Once
	client *http.Client
}

func NewGradioSubmitter() *GradioSubmitter {
	return &GradioSubmitter{}
}

// handle returns the shared HTTP client, created on first use. Cloning runs
// take a while on the model side, hence the generous timeout.
func (g *GradioSubmitter) handle() *http.Client {
	g.once.Do(func() {
		g.client = &http.Client{Timeout: 5 * time.Minute}
	})
	return g.client
}

type gradioFileData struct {
	URL string `json:"url"`
}

type gradioPredictResponse struct {
	Data []gradioFileData `json:"data"`
}

func (g *GradioSubmitter) Submit(ctx context.Context, serviceURL string, refAudio []byte, refName, refText, genText string) (string, error) {
	g.begin()
	defer g.end()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("ref_audio_file", refName)
	if err != nil {
		return "", fmt.Errorf("voiceclone: build request: %w", err)
	}
	if _, err := part.Write(refAudio); err != nil {
		return "", fmt.Errorf("voiceclone: build request: %w", err)
	}
	_ = w.WriteField("ref_text", refText)
	_ = w.WriteField("gen_text", genText)
	_ = w.WriteField("language", "kz")
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("voiceclone: build request: %w", err)
	}

	endpoint := strings.TrimRight(serviceURL, "/") + "/predict"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("voiceclone: build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	res, err := g.handle().Do(req)
	if err != nil {
		return "", fmt.Errorf("voiceclone: submit: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return "", fmt.Errorf("%w: status %d: %s", ErrRemote, res.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed gradioPredictResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("voiceclone: decode response: %w", err)
	}
	// Missing, empty and URL-less results are all the same failure here:
	// the service produced nothing usable.
	if len(parsed.Data) == 0 || parsed.Data[0].URL == "" {
		return "", ErrEmptyResponse
	}
	return parsed.Data[0].URL, nil
}
