package config

import (
	"os"
	"testing"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	os.Setenv("HTTP_ADDRESS", "")
	os.Setenv("OPENAI_CHAT_MODEL", "")
	os.Setenv("TTS_PROVIDER", "")
	os.Setenv("VOICECLONE_MODE", "")
	os.Setenv("TRANSCRIPTS_DIR", "")
	cfg := Load()
	if cfg.HTTPAddress == "" {
		t.Fatalf("expected default http address")
	}
	if cfg.ChatModel == "" {
		t.Fatalf("expected default chat model")
	}
	if cfg.TTSProvider != "openai" {
		t.Fatalf("expected default tts provider, got %q", cfg.TTSProvider)
	}
	if cfg.VoiceCloneMode != "gradio" {
		t.Fatalf("expected default voice clone mode, got %q", cfg.VoiceCloneMode)
	}
	if cfg.TranscriptsDir == "" {
		t.Fatalf("expected default transcripts dir")
	}
}

func TestLoad_Overrides(t *testing.T) {
	os.Setenv("HTTP_ADDRESS", ":9999")
	os.Setenv("TTS_PROVIDER", "deepgram")
	os.Setenv("VOICECLONE_MODE", "direct")
	defer func() {
		os.Unsetenv("HTTP_ADDRESS")
		os.Unsetenv("TTS_PROVIDER")
		os.Unsetenv("VOICECLONE_MODE")
	}()
	cfg := Load()
	if cfg.HTTPAddress != ":9999" {
		t.Fatalf("expected address override, got %q", cfg.HTTPAddress)
	}
	if cfg.TTSProvider != "deepgram" {
		t.Fatalf("expected provider override, got %q", cfg.TTSProvider)
	}
	if cfg.VoiceCloneMode != "direct" {
		t.Fatalf("expected clone mode override, got %q", cfg.VoiceCloneMode)
	}
}
