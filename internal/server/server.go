// Package server exposes the worker over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"pixel-dither/internal/effect"
	"pixel-dither/internal/pipeline"
	"pixel-dither/internal/source"
	"pixel-dither/internal/worker"
)

// MaxUploadBytes caps request bodies.
const MaxUploadBytes = 64 << 20

// Server routes HTTP requests to a single pipeline worker.
type Server struct {
	worker         *worker.Worker
	snapshot       snapshotCache
	snapshotParams pipeline.Params
}

// New creates a server. snapshotParams is used by the background renderer.
func New(w *worker.Worker, snapshotParams pipeline.Params) *Server {
	return &Server{worker: w, snapshotParams: snapshotParams}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /process", s.handleProcess)
	mux.HandleFunc("POST /process.bmp", s.handleProcessImage(source.FormatBMP))
	mux.HandleFunc("POST /process.png", s.handleProcessImage(source.FormatPNG))
	mux.Handle("GET /snapshot.bmp", &s.snapshot)
	return mux
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req worker.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxUploadBytes)).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request: %v", err), http.StatusBadRequest)
		return
	}

	resp := s.worker.Submit(r.Context(), req)

	w.Header().Set("Content-Type", "application/json")
	if resp.Type == worker.TypeError {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Println("write response error:", err)
	}
}

func (s *Server) handleProcessImage(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := ParamsFromQuery(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		src, _, err := source.Decode(http.MaxBytesReader(w, r.Body, MaxUploadBytes))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		out, err := s.worker.Submit(r.Context(), worker.NewRequest(src, params)).Buffer()
		if err != nil {
			log.Println("process error:", err)
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		var buf bytes.Buffer
		if err := source.Encode(&buf, out, format); err != nil {
			log.Println("encode error:", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/"+format)
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		if _, err := w.Write(buf.Bytes()); err != nil {
			log.Println("write image error:", err)
		}
	}
}

// ParamsFromQuery reads pipeline parameters from URL query values, starting
// from the defaults. Mode and color mode names are taken as-is.
func ParamsFromQuery(q url.Values) (pipeline.Params, error) {
	p := pipeline.DefaultParams()

	if v := q.Get("mode"); v != "" {
		p.Mode = pipeline.Mode(v)
	}
	if v := q.Get("threshold"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return p, fmt.Errorf("threshold: %w", err)
		}
		p.Threshold = t
	}
	if v := q.Get("pixelSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("pixelSize: %w", err)
		}
		p.PixelSize = n
	}
	if v := q.Get("colorMode"); v != "" {
		p.ColorMode = effect.ColorMode(v)
	}
	p.CustomWhite = q.Get("customWhite")
	p.CustomGrey = q.Get("customGrey")
	p.CustomBlack = q.Get("customBlack")

	return p, nil
}
