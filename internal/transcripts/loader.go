package transcripts

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

// Loader fetches per-book transcript segments used to ground assistant
// answers. A book without a transcript is not an error: callers always get a
// slice, possibly empty. Results are cached per book for the loader lifetime.
type Loader struct {
	base   string
	client *http.Client

	mu    sync.Mutex
	cache map[int][]string
}

// NewLoader creates a loader against the given base URL. A nil client gets a
// default with a short timeout.
func NewLoader(base string, client *http.Client) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Loader{base: base, client: client, cache: make(map[int][]string)}
}

// Segments returns the transcript segments for a book. Any transport or
// decode failure yields an empty slice; the outcome is cached either way.
func (l *Loader) Segments(ctx context.Context, bookID int) []string {
	l.mu.Lock()
	if segs, ok := l.cache[bookID]; ok {
		l.mu.Unlock()
		return segs
	}
	l.mu.Unlock()

	segs := l.fetch(ctx, bookID)

	l.mu.Lock()
	l.cache[bookID] = segs
	l.mu.Unlock()
	return segs
}

func (l *Loader) fetch(ctx context.Context, bookID int) []string {
	url := fmt.Sprintf("%s/transcripts/%d.json", l.base, bookID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}
	resp, err := l.client.Do(req)
	if err != nil {
		log.Printf("transcripts: fetch %s: %v", url, err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil
	}
	var segs []string
	if err := json.NewDecoder(resp.Body).Decode(&segs); err != nil {
		log.Printf("transcripts: decode %s: %v", url, err)
		return nil
	}
	return segs
}
