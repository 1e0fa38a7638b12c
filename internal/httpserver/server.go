package httpserver

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/DiarCode/q-tale/internal/catalog"
	"github.com/DiarCode/q-tale/internal/config"
	"github.com/DiarCode/q-tale/internal/voiceclone"
)

// maxRefAudioBytes caps the uploaded reference clip.
const maxRefAudioBytes = 10 << 20

// Cloner is a voice cloning submitter that also reports whether a request
// is in flight.
type Cloner interface {
	voiceclone.Submitter
	Processing() bool
}

// Archiver persists reference clips for later reuse. May be nil.
type Archiver interface {
	Upload(key string, data []byte) error
}

// Server serves the catalog API, static transcripts and the voice cloning
// endpoints.
type Server struct {
	echo    *echo.Echo
	cfg     config.Config
	cloner  Cloner
	archive Archiver
}

func New(cfg config.Config, cloner Cloner, archive Archiver) *Server {
	s := &Server{echo: newRouter(), cfg: cfg, cloner: cloner, archive: archive}

	s.echo.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	api := s.echo.Group("/api")
	api.GET("/categories", s.listCategories)
	api.GET("/books", s.listBooks)
	api.GET("/books/:id", s.getBook)
	api.GET("/books/:id/audio", s.getBookAudio)
	api.POST("/voice/generate", s.generateVoice)
	api.GET("/voice/status", s.voiceStatus)

	if cfg.TranscriptsDir != "" {
		s.echo.Static("/transcripts", cfg.TranscriptsDir)
	}

	return s
}

// Router exposes the handler for an http.Server.
func (s *Server) Router() http.Handler {
	return s.echo
}

func (s *Server) listCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, catalog.Categories)
}

func (s *Server) listBooks(c echo.Context) error {
	books := catalog.Books()
	category := c.QueryParam("category")
	if category == "" || category == catalog.Categories[0] {
		return c.JSON(http.StatusOK, books)
	}
	filtered := make([]catalog.Book, 0, len(books))
	for _, b := range books {
		if b.Category == category {
			filtered = append(filtered, b)
		}
	}
	return c.JSON(http.StatusOK, filtered)
}

func (s *Server) getBook(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "жарамсыз id"})
	}
	book, err := catalog.BookByID(id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, book)
}

func (s *Server) getBookAudio(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "жарамсыз id"})
	}
	voice := catalog.Voice(c.QueryParam("voice"))
	if voice == "" {
		voice = catalog.VoiceFemale
	}
	url, err := catalog.BookAudio(id, voice)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

func (s *Server) generateVoice(c echo.Context) error {
	if s.cloner == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "voice cloning is not configured"})
	}

	refText := strings.TrimSpace(c.FormValue("ref_text"))
	genText := strings.TrimSpace(c.FormValue("gen_text"))
	if genText == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "gen_text is required"})
	}

	fh, err := c.FormFile("ref_audio")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "ref_audio file is required"})
	}
	if fh.Size > maxRefAudioBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "ref_audio too large"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "ref_audio unreadable"})
	}
	defer src.Close()
	refAudio, err := io.ReadAll(io.LimitReader(src, maxRefAudioBytes+1))
	if err != nil || len(refAudio) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "ref_audio unreadable"})
	}
	if len(refAudio) > maxRefAudioBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "ref_audio too large"})
	}

	if s.archive != nil {
		key := fmt.Sprintf("voiceclone/%d-%s", time.Now().UnixNano(), fh.Filename)
		if err := s.archive.Upload(key, refAudio); err != nil {
			log.Printf("voice: archive reference clip: %v", err)
		}
	}

	ref, err := s.cloner.Submit(c.Request().Context(), s.cfg.VoiceCloneURL, refAudio, fh.Filename, refText, genText)
	if err != nil {
		log.Printf("voice: clone request failed: %v", err)
		status := http.StatusInternalServerError
		if errors.Is(err, voiceclone.ErrRemote) {
			status = http.StatusBadGateway
		}
		return c.JSON(status, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"audio_url": ref})
}

func (s *Server) voiceStatus(c echo.Context) error {
	processing := s.cloner != nil && s.cloner.Processing()
	return c.JSON(http.StatusOK, map[string]bool{"processing": processing})
}
