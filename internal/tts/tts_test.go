package tts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/openai/openai-go/v3/option"
)

func TestOpenAI_SynthesizeReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3fake-mpeg-bytes"))
	}))
	defer srv.Close()

	c := NewOpenAIClient("key", "shimmer", option.WithBaseURL(srv.URL))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	audio, err := c.Synthesize(ctx, "Сәлем")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if string(audio) != "ID3fake-mpeg-bytes" {
		t.Fatalf("unexpected audio payload: %q", audio)
	}
}

func TestOpenAI_SynthesizeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewOpenAIClient("key", "shimmer", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := c.Synthesize(ctx, "Сәлем"); err == nil {
		t.Fatalf("expected error on 500")
	}
}

func TestSpeechVoice_Defaults(t *testing.T) {
	if speechVoice("") != speechVoice("shimmer") {
		t.Fatalf("empty voice must default to shimmer")
	}
	if speechVoice("unknown") != speechVoice("shimmer") {
		t.Fatalf("unknown voice must default to shimmer")
	}
}

func TestDeepgram_NoKey(t *testing.T) {
	c := NewDeepgramClient("", "")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.Synthesize(ctx, "hi"); err == nil {
		t.Fatalf("expected error with missing key")
	}
}

func TestDeepgram_EmptyText(t *testing.T) {
	c := NewDeepgramClient("key", "")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.Synthesize(ctx, ""); err == nil {
		t.Fatalf("expected error with empty text")
	}
}

func TestDeepgram_DefaultModel(t *testing.T) {
	c := NewDeepgramClient("key", "")
	if c.model == "" {
		t.Fatalf("expected default model")
	}
}

func TestAudioCollector_ConcurrentWrites(t *testing.T) {
	var col audioCollector
	var wg sync.WaitGroup

	const writers, chunks = 8, 100
	chunk := []byte{1, 2, 3, 4}
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < chunks; j++ {
				col.write(chunk)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			col.snapshot()
			col.idle(time.Millisecond)
		}
	}()

	wg.Wait()
	<-done

	if got := len(col.snapshot()); got != writers*chunks*len(chunk) {
		t.Fatalf("expected %d bytes collected, got %d", writers*chunks*len(chunk), got)
	}
	if !col.idle(0) {
		t.Fatalf("collector with audio must report idle once quiet")
	}
}
