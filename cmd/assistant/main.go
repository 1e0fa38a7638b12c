// Command assistant runs the book assistant loop in the terminal: record a
// question from the microphone, transcribe it, answer it grounded in the
// chosen audiobook and speak the answer back.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/DiarCode/q-tale/internal/assistant"
	"github.com/DiarCode/q-tale/internal/capture"
	"github.com/DiarCode/q-tale/internal/catalog"
	"github.com/DiarCode/q-tale/internal/config"
	"github.com/DiarCode/q-tale/internal/llm"
	"github.com/DiarCode/q-tale/internal/playback"
	"github.com/DiarCode/q-tale/internal/stt"
	"github.com/DiarCode/q-tale/internal/transcripts"
	"github.com/DiarCode/q-tale/internal/tts"
)

// speakerPlayer adapts the beep speaker to the session's Player interface.
type speakerPlayer struct {
	speaker *playback.Speaker
}

func (p speakerPlayer) Play(data []byte, onEnded func()) (assistant.Playback, error) {
	h, err := p.speaker.Play(data, onEnded)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	bookID := flag.Int("book", 1, "catalog id of the book to discuss")
	flag.Parse()

	cfg := config.Load()

	book, err := catalog.BookByID(*bookID)
	if err != nil {
		log.Fatalf("%v", err)
	}
	totalSec := float64(catalog.ParseDuration(book.Duration))

	recorder, err := capture.Open()
	if err != nil {
		log.Printf("microphone unavailable, recording disabled: %v", err)
	}

	var synthesizer assistant.Synthesizer
	if cfg.TTSProvider == "deepgram" {
		synthesizer = tts.NewDeepgramClient(cfg.DeepgramKey, cfg.DeepgramModel)
	} else {
		synthesizer = tts.NewOpenAIClient(cfg.OpenAIKey, cfg.TTSVoice)
	}

	var segments assistant.SegmentSource
	if cfg.TranscriptsBase != "" {
		segments = transcripts.NewLoader(cfg.TranscriptsBase, &http.Client{Timeout: 10 * time.Second})
	}

	// Playback position: for the CLI the listener "plays" the book in real
	// time from launch, capped at the book's length.
	started := time.Now()
	position := func() (float64, float64) {
		pos := time.Since(started).Seconds()
		if pos > totalSec {
			pos = totalSec
		}
		return pos, totalSec
	}

	session := assistant.NewSession(assistant.Config{
		Recorder:    recorder,
		Transcriber: stt.NewWhisperClient(cfg.OpenAIKey),
		Responder:   llm.NewOpenAIClient(cfg.OpenAIKey, cfg.ChatModel),
		Synthesizer: synthesizer,
		Player:      speakerPlayer{speaker: playback.NewSpeaker()},
		Segments:    segments,
		Book:        book,
		Position:    position,
		Notify: func(st assistant.State) {
			log.Printf("assistant: %s", st)
		},
	})
	defer session.Teardown()

	fmt.Printf("Кітап: %s — %s\n", book.Title, book.Author)
	fmt.Println("Enter: жазуды бастау/аяқтау, s: тоқтату, q: шығу")

	seen := 0
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "":
			if session.State() == assistant.StateListening {
				session.StopRecording()
			} else if err := session.Start(); err != nil {
				log.Printf("start: %v", err)
				if msg := session.Err(); msg != "" {
					fmt.Println(msg)
				}
			}
		case "s":
			session.Stop()
		case "q":
			return
		}

		for _, m := range session.Messages()[seen:] {
			fmt.Printf("[%s] %s\n", m.Sender, m.Text)
			seen++
		}
		if msg := session.Err(); msg != "" {
			fmt.Println(msg)
		}
	}
}
