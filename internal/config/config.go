package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	HTTPAddress string

	OpenAIKey string
	ChatModel string

	TTSProvider   string // "openai" or "deepgram"
	TTSVoice      string
	DeepgramKey   string
	DeepgramModel string

	VoiceCloneMode string // "gradio" or "direct"
	VoiceCloneURL  string

	TranscriptsDir  string
	TranscriptsBase string

	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string
}

// Load reads environment variables and returns Config with sane defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded")
	}

	addr := os.Getenv("HTTP_ADDRESS")
	if addr == "" {
		addr = ":8080"
	}

	openAIKey := os.Getenv("OPENAI_API_KEY")
	if openAIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set - transcription and chat will not work")
	}

	chatModel := os.Getenv("OPENAI_CHAT_MODEL")
	if chatModel == "" {
		chatModel = "gpt-4o-mini"
	}

	ttsProvider := os.Getenv("TTS_PROVIDER")
	if ttsProvider == "" {
		ttsProvider = "openai"
	}

	deepgramKey := os.Getenv("DEEPGRAM_API_KEY")
	if ttsProvider == "deepgram" && deepgramKey == "" {
		log.Println("Warning: DEEPGRAM_API_KEY not set - TTS will not work")
	}

	cloneMode := os.Getenv("VOICECLONE_MODE")
	if cloneMode == "" {
		cloneMode = "gradio"
	}

	transcriptsDir := os.Getenv("TRANSCRIPTS_DIR")
	if transcriptsDir == "" {
		transcriptsDir = "transcripts"
	}

	log.Printf("config: HTTP_ADDRESS=%s TTS_PROVIDER=%s VOICECLONE_MODE=%s", addr, ttsProvider, cloneMode)
	return Config{
		HTTPAddress:     addr,
		OpenAIKey:       openAIKey,
		ChatModel:       chatModel,
		TTSProvider:     ttsProvider,
		TTSVoice:        os.Getenv("TTS_VOICE"),
		DeepgramKey:     deepgramKey,
		DeepgramModel:   os.Getenv("DEEPGRAM_TTS_MODEL"),
		VoiceCloneMode:  cloneMode,
		VoiceCloneURL:   os.Getenv("VOICECLONE_URL"),
		TranscriptsDir:  transcriptsDir,
		TranscriptsBase: os.Getenv("TRANSCRIPTS_BASE_URL"),
		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseKey:     os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		SupabaseBucket:  os.Getenv("SUPABASE_BUCKET"),
	}
}
