// Package worker runs the pipeline behind a request/response message
// boundary, one request at a time.
package worker

import (
	"context"
	"fmt"

	"pixel-dither/internal/pipeline"
	"pixel-dither/internal/raster"
)

// Message types.
const (
	TypeProcess   = "process"
	TypeProcessed = "processed"
	TypeError     = "error"
)

// Request asks for one pipeline run. Data is raw RGBA, base64 in JSON.
type Request struct {
	Type   string          `json:"type"`
	Width  int             `json:"width"`
	Height int             `json:"height"`
	Data   []byte          `json:"data"`
	Params pipeline.Params `json:"params"`
}

// ImageData is a processed image.
type ImageData struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Data   []byte `json:"data"`
}

// Response carries either ImageData or an error description.
type Response struct {
	Type      string     `json:"type"`
	ImageData *ImageData `json:"imageData,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Err returns the response error, if any.
func (r Response) Err() error {
	if r.Type == TypeError {
		return fmt.Errorf("worker: %s", r.Error)
	}
	return nil
}

// Buffer returns the processed image as a buffer.
func (r Response) Buffer() (*raster.Buffer, error) {
	if err := r.Err(); err != nil {
		return nil, err
	}
	if r.ImageData == nil {
		return nil, fmt.Errorf("worker: response has no image data")
	}
	return raster.Wrap(r.ImageData.Width, r.ImageData.Height, r.ImageData.Data)
}

func errorResponse(err error) Response {
	return Response{Type: TypeError, Error: err.Error()}
}

// NewRequest builds a process request for buf.
func NewRequest(buf *raster.Buffer, p pipeline.Params) Request {
	return Request{
		Type:   TypeProcess,
		Width:  buf.Width,
		Height: buf.Height,
		Data:   buf.Pix,
		Params: p,
	}
}

// Handle converts one request into its response.
func Handle(ctx context.Context, req Request) Response {
	if req.Type != TypeProcess {
		return errorResponse(fmt.Errorf("unknown request type %q", req.Type))
	}

	src, err := raster.Wrap(req.Width, req.Height, req.Data)
	if err != nil {
		return errorResponse(err)
	}

	out, err := pipeline.Process(ctx, src, req.Params)
	if err != nil {
		return errorResponse(err)
	}

	return Response{
		Type: TypeProcessed,
		ImageData: &ImageData{
			Width:  out.Width,
			Height: out.Height,
			Data:   out.Pix,
		},
	}
}
