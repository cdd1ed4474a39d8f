package server

import (
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// snapshot is one rendered image together with its metadata.
type snapshot struct {
	data        []byte
	contentType string
	updatedAt   time.Time
	renders     int
}

// snapshotCache holds the most recent encoded snapshot and serves it.
type snapshotCache struct {
	mu  sync.RWMutex
	cur snapshot
}

func (c *snapshotCache) Set(data []byte, contentType string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = snapshot{
		data:        data,
		contentType: contentType,
		updatedAt:   time.Now(),
		renders:     c.cur.renders + 1,
	}
}

func (c *snapshotCache) Get() snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cur
}

// ServeHTTP writes the cached bytes, or 503 before the first render.
func (c *snapshotCache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snap := c.Get()
	if snap.data == nil {
		http.Error(w, "image not ready", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", snap.contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(snap.data)))
	w.Header().Set("Last-Modified", snap.updatedAt.UTC().Format(http.TimeFormat))
	w.Header().Set("ETag", `"`+strconv.Itoa(snap.renders)+`"`)
	if _, err := w.Write(snap.data); err != nil {
		log.Println("write image error:", err)
	}
}
