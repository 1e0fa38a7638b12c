package tts

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient synthesizes MPEG audio with the OpenAI speech endpoint.
type OpenAIClient struct {
	client openai.Client
	voice  openai.AudioSpeechNewParamsVoice
}

func NewOpenAIClient(apiKey, voice string, opts ...option.RequestOption) *OpenAIClient {
	options := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIClient{client: openai.NewClient(options...), voice: speechVoice(voice)}
}

func speechVoice(voice string) openai.AudioSpeechNewParamsVoice {
	switch strings.ToLower(voice) {
	case "alloy":
		return openai.AudioSpeechNewParamsVoiceAlloy
	case "echo":
		return openai.AudioSpeechNewParamsVoiceEcho
	case "nova":
		return openai.AudioSpeechNewParamsVoice("nova")
	case "shimmer", "":
		return openai.AudioSpeechNewParamsVoiceShimmer
	default:
		return openai.AudioSpeechNewParamsVoiceShimmer
	}
}

// Synthesize returns the spoken text as MP3 bytes.
func (c *OpenAIClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	res, err := c.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModelTTS1,
		Input:          text,
		Voice:          c.voice,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis: %w", err)
	}
	defer res.Body.Close()
	audio, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("speech synthesis: read body: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("speech synthesis: empty audio")
	}
	return audio, nil
}
