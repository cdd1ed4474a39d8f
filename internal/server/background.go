package server

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log"
	"time"

	"pixel-dither/internal/source"
	"pixel-dither/internal/worker"
)

// Snapshotter grabs the image that the background renderer processes.
type Snapshotter interface {
	CaptureURL(ctx context.Context, url string) (image.Image, error)
}

// StartBackgroundRenderer refreshes the snapshot every interval until ctx is
// done. The first render happens immediately.
func (s *Server) StartBackgroundRenderer(ctx context.Context, snap Snapshotter, url string, interval time.Duration) {
	s.renderSnapshot(ctx, snap, url)

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.renderSnapshot(ctx, snap, url)
			case <-ctx.Done():
				log.Println("background renderer stopped:", ctx.Err())
				return
			}
		}
	}()
}

func (s *Server) renderSnapshot(ctx context.Context, snap Snapshotter, url string) {
	if bmp, err := s.snapshotBMP(ctx, snap, url); err == nil {
		s.snapshot.Set(bmp, "image/bmp")
	} else {
		log.Println("render snapshot error:", err)
	}
}

func (s *Server) snapshotBMP(ctx context.Context, snap Snapshotter, url string) ([]byte, error) {
	img, err := snap.CaptureURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("unable to capture %s: %w", url, err)
	}

	resp := s.worker.Submit(ctx, worker.NewRequest(source.FromImage(img), s.snapshotParams))
	out, err := resp.Buffer()
	if err != nil {
		return nil, fmt.Errorf("unable to process snapshot: %w", err)
	}

	var buf bytes.Buffer
	if err := source.Encode(&buf, out, source.FormatBMP); err != nil {
		return nil, fmt.Errorf("unable to encode bmp: %w", err)
	}
	return buf.Bytes(), nil
}
