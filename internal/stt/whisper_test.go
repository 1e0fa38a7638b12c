package stt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openai/openai-go/v3/option"

	"github.com/DiarCode/q-tale/internal/capture"
)

func TestWhisper_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if len(r.MultipartForm.File["file"]) != 1 {
			t.Errorf("expected audio file part")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":" Сәлем, кітап не туралы? "}`))
	}))
	defer srv.Close()

	c := NewWhisperClient("key", option.WithBaseURL(srv.URL))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	text, err := c.Transcribe(ctx, capture.Clip{MIME: "audio/wav", Data: []byte("RIFFwav")})
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if text != "Сәлем, кітап не туралы?" {
		t.Fatalf("unexpected transcript %q", text)
	}
}

func TestWhisper_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewWhisperClient("key", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := c.Transcribe(ctx, capture.Clip{MIME: "audio/wav", Data: []byte("RIFFwav")}); err == nil {
		t.Fatalf("expected error on 500")
	}
}
