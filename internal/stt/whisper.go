package stt

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	"github.com/DiarCode/q-tale/internal/capture"
)

// transcribePrompt keeps Whisper in Kazakh regardless of accent.
const transcribePrompt = "Өтінемін, тек қазақ тілінде транскрипциялаңыз."

// WhisperClient transcribes finalized clips with OpenAI Whisper.
type WhisperClient struct {
	client openai.Client
}

func NewWhisperClient(apiKey string, opts ...option.RequestOption) *WhisperClient {
	options := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &WhisperClient{client: openai.NewClient(options...)}
}

// Transcribe returns the recognized text, trimmed of surrounding whitespace.
func (w *WhisperClient) Transcribe(ctx context.Context, clip capture.Clip) (string, error) {
	resp, err := w.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model:          openai.AudioModelWhisper1,
		File:           openai.File(bytes.NewReader(clip.Data), "user.wav", clip.MIME),
		Prompt:         param.NewOpt(transcribePrompt),
		ResponseFormat: openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
