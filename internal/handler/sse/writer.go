package sse

import (
	"fmt"
	"net/http"
	"sync"
)

// Writer serializes SSE frames onto one response. Keep-alives run on their
// own goroutine, so every write goes through the same lock.
type Writer struct {
	mu       sync.Mutex
	w        http.ResponseWriter
	flusher  http.Flusher
	clientID string
}

// NewWriter creates a writer for one client connection
func NewWriter(w http.ResponseWriter, flusher http.Flusher, clientID string) *Writer {
	return &Writer{
		w:        w,
		flusher:  flusher,
		clientID: clientID,
	}
}

// ClientID identifies the connection in logs
func (s *Writer) ClientID() string {
	return s.clientID
}

// WriteKeepAlive writes an SSE comment (": keepalive") and flushes
func (s *Writer) WriteKeepAlive() error {
	return s.write(": keepalive\n\n")
}

// WriteComment writes an arbitrary SSE comment line
func (s *Writer) WriteComment(text string) error {
	return s.write(fmt.Sprintf(": %s\n\n", text))
}

// WriteEvent writes one named event with a JSON payload
func (s *Writer) WriteEvent(id uint64, name string, data []byte) error {
	return s.write(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", id, name, data))
}

func (s *Writer) write(frame string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprint(s.w, frame); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	s.flusher.Flush()
	return nil
}
