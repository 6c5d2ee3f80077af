// Package response collects the status and headers a view wants to emit.
package response

import (
	"net/http"
	"sync"
	"time"
)

// Sink receives status and header side effects from views.
type Sink interface {
	SetHeader(name, value string, replace bool)
	SetStatus(code int)
	AllowCache(allow bool)
	SendHeaders()
}

// Recorder is a Sink that keeps everything in memory until it is copied to
// an http.ResponseWriter.
type Recorder struct {
	mu         sync.Mutex
	status     int
	header     http.Header
	allowCache bool
	sent       int
}

var _ Sink = (*Recorder)(nil)

// NewRecorder returns a recorder with caching allowed and no status.
func NewRecorder() *Recorder {
	return &Recorder{header: make(http.Header), allowCache: true}
}

func (r *Recorder) SetHeader(name, value string, replace bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if replace {
		r.header.Set(name, value)
		return
	}
	r.header.Add(name, value)
}

func (r *Recorder) SetStatus(code int) {
	r.mu.Lock()
	r.status = code
	r.mu.Unlock()
}

func (r *Recorder) AllowCache(allow bool) {
	r.mu.Lock()
	r.allowCache = allow
	r.mu.Unlock()
}

func (r *Recorder) SendHeaders() {
	r.mu.Lock()
	r.sent++
	r.mu.Unlock()
}

// Status returns the recorded status, or 200 when none was set.
func (r *Recorder) Status() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// StatusSet reports whether SetStatus was called.
func (r *Recorder) StatusSet() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status != 0
}

// Header returns a copy of the recorded headers.
func (r *Recorder) Header() http.Header {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.header.Clone()
}

// CacheAllowed reports the last AllowCache value.
func (r *Recorder) CacheAllowed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.allowCache
}

// Sent returns how many times SendHeaders was called.
func (r *Recorder) Sent() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent
}

// Apply copies headers to w and writes the status line.
func (r *Recorder) Apply(w http.ResponseWriter) {
	if w == nil {
		return
	}
	header := r.Header()
	for name, values := range header {
		w.Header()[name] = append([]string(nil), values...)
	}
	if !r.CacheAllowed() && w.Header().Get("Pragma") == "" {
		w.Header().Set("Pragma", "no-cache")
	}
	w.WriteHeader(r.Status())
}

const (
	expiresInPast = "Mon, 1 Jan 2001 00:00:00 GMT"
	noStore       = "no-store, must-revalidate, post-check=0, pre-check=0"
)

// DisableCaching applies the forum's browser cache policy to s and sends the
// headers.
func DisableCaching(s Sink, now time.Time) {
	if s == nil {
		return
	}
	s.AllowCache(false)
	s.SetHeader("Expires", expiresInPast, true)
	s.SetHeader("Last-Modified", now.UTC().Format(http.TimeFormat), true)
	s.SetHeader("Cache-Control", noStore, true)
	s.SendHeaders()
}
