package main

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePage struct {
	w, h   int
	html   string
	err    error
	closed bool
}

func (f *fakePage) CaptureHTML(ctx context.Context, html string) (image.Image, error) {
	f.html = html
	if f.err != nil {
		return nil, f.err
	}
	img := image.NewRGBA(image.Rect(0, 0, f.w, f.h))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.SetRGBA(0, 0, color.RGBA{10, 20, 30, 255})
	return img, nil
}

func (f *fakePage) Close() { f.closed = true }

func useFakePage(t *testing.T, page *fakePage) {
	t.Helper()
	orig := newPageRenderer
	newPageRenderer = func(ctx context.Context, w, h int) pageRenderer {
		page.w, page.h = w, h
		return page
	}
	t.Cleanup(func() { newPageRenderer = orig })
}

func writeHTML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "board.html")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadInputHTML(t *testing.T) {
	page := &fakePage{}
	useFakePage(t, page)
	path := writeHTML(t, "<h1>hello</h1>")

	buf, err := loadInput(context.Background(), path, 0, 0, "")
	require.NoError(t, err)
	assert.Equal(t, "<h1>hello</h1>", page.html)
	assert.True(t, page.closed)
	assert.Equal(t, 800, buf.Width)
	assert.Equal(t, 480, buf.Height)
	assert.Equal(t, []byte{10, 20, 30, 255}, buf.Pix[0:4])
}

func TestLoadInputHTMLViewportFromFit(t *testing.T) {
	page := &fakePage{}
	useFakePage(t, page)

	buf, err := loadInput(context.Background(), writeHTML(t, "<p/>"), 0, 0, "64x32")
	require.NoError(t, err)
	assert.Equal(t, 64, buf.Width)
	assert.Equal(t, 32, buf.Height)
}

func TestLoadInputHTMLCaptureError(t *testing.T) {
	page := &fakePage{err: errors.New("no browser")}
	useFakePage(t, page)

	_, err := loadInput(context.Background(), writeHTML(t, "<p/>"), 0, 0, "")
	require.Error(t, err)
	assert.True(t, page.closed)
}

func TestBatchOutputsRejectsCollisions(t *testing.T) {
	outs, err := batchOutputs("out", []string{"a/cat.jpg", "b/dog.png"}, "bmp")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("out", "cat.bmp"), filepath.Join("out", "dog.bmp")}, outs)

	_, err = batchOutputs("out", []string{"a/cat.jpg", "b/cat.png"}, "png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cat.png")
}
