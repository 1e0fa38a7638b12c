package voiceclone

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func TestGradio_Submit(t *testing.T) {
	var gotLanguage, gotRefText, gotGenText, gotFileName string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotLanguage = r.FormValue("language")
		gotRefText = r.FormValue("ref_text")
		gotGenText = r.FormValue("gen_text")
		if fhs := r.MultipartForm.File["ref_audio_file"]; len(fhs) == 1 {
			gotFileName = fhs[0].Filename
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"url": "https://cdn.example/out.wav"}},
		})
	}))
	defer srv.Close()

	g := NewGradioSubmitter()
	ref, err := g.Submit(context.Background(), srv.URL, []byte("RIFFwav"), "ref.wav", "сәлем", "жаңа мәтін")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if ref != "https://cdn.example/out.wav" {
		t.Fatalf("unexpected ref %q", ref)
	}
	if gotLanguage != "kz" {
		t.Fatalf("expected language kz, got %q", gotLanguage)
	}
	if gotRefText != "сәлем" || gotGenText != "жаңа мәтін" {
		t.Fatalf("unexpected form fields: ref=%q gen=%q", gotRefText, gotGenText)
	}
	if gotFileName != "ref.wav" {
		t.Fatalf("unexpected file name %q", gotFileName)
	}
	if g.Processing() {
		t.Fatalf("processing flag must reset after submit")
	}
}

func TestGradio_EmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer srv.Close()

	g := NewGradioSubmitter()
	if _, err := g.Submit(context.Background(), srv.URL, []byte("wav"), "ref.wav", "a", "b"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestGradio_MissingURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]string{{"url": ""}}})
	}))
	defer srv.Close()

	g := NewGradioSubmitter()
	if _, err := g.Submit(context.Background(), srv.URL, []byte("wav"), "ref.wav", "a", "b"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse for url-less result, got %v", err)
	}
}

func TestGradio_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewGradioSubmitter()
	if _, err := g.Submit(context.Background(), srv.URL, []byte("wav"), "ref.wav", "a", "b"); !errors.Is(err, ErrRemote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}
}

func TestDirect_Submit(t *testing.T) {
	audio := []byte("RIFFgenerated")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if r.FormValue("gen_text") == "" || r.FormValue("ref_text") == "" {
			t.Errorf("missing text fields")
		}
		if len(r.MultipartForm.File["ref_audio"]) != 1 {
			t.Errorf("missing ref_audio file")
		}
		json.NewEncoder(w).Encode(map[string]string{
			"audio_base64": base64.StdEncoding.EncodeToString(audio),
		})
	}))
	defer srv.Close()

	d := NewDirectSubmitter()
	path, err := d.Submit(context.Background(), srv.URL, []byte("RIFFref"), "ref.wav", "сәлем", "жаңа мәтін")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	defer os.Remove(path)

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read generated file: %v", err)
	}
	if string(got) != string(audio) {
		t.Fatalf("generated file mismatch: %q", got)
	}
}

func TestDirect_ArrayResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]string{
			{"audio_base64": base64.StdEncoding.EncodeToString([]byte("x"))},
		})
	}))
	defer srv.Close()

	d := NewDirectSubmitter()
	path, err := d.Submit(context.Background(), srv.URL, []byte("wav"), "ref.wav", "a", "b")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	os.Remove(path)
}

func TestDirect_RemoteErrorBeforePayloadCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"audio_base64": "",
			"error":        "voice too short",
		})
	}))
	defer srv.Close()

	d := NewDirectSubmitter()
	_, err := d.Submit(context.Background(), srv.URL, []byte("wav"), "ref.wav", "a", "b")
	if !errors.Is(err, ErrRemote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "voice too short") {
		t.Fatalf("expected service message in error, got %q", got)
	}
}

func TestDirect_MissingPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"audio_base64": ""})
	}))
	defer srv.Close()

	d := NewDirectSubmitter()
	if _, err := d.Submit(context.Background(), srv.URL, []byte("wav"), "ref.wav", "a", "b"); !errors.Is(err, ErrMissingPayload) {
		t.Fatalf("expected ErrMissingPayload, got %v", err)
	}
}

func TestProcessingFlagSharedAcrossAdapters(t *testing.T) {
	g := NewGradioSubmitter()
	d := NewDirectSubmitter()

	g.begin()
	if !d.Processing() {
		t.Fatalf("direct adapter must see the gradio adapter's in-flight request")
	}
	g.end()
	if g.Processing() || d.Processing() {
		t.Fatalf("flag must clear for both adapters")
	}
}

func TestDecodeDirect_Empty(t *testing.T) {
	if _, err := decodeDirect([]byte("  ")); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	if _, err := decodeDirect([]byte("[]")); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse for empty array, got %v", err)
	}
}
