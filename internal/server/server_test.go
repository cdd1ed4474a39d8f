package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"pixel-dither/internal/effect"
	"pixel-dither/internal/pipeline"
	"pixel-dither/internal/raster"
	"pixel-dither/internal/worker"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	w := worker.New(4)
	w.Start(ctx)
	t.Cleanup(func() {
		w.Stop()
		cancel()
	})
	return New(w, pipeline.DefaultParams())
}

func gray(w, h int, v uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

func TestHandleProcessJSON(t *testing.T) {
	s := newTestServer(t)

	buf := raster.New(1, 1)
	copy(buf.Pix, []byte{120, 0, 0, 255})
	body, err := json.Marshal(worker.NewRequest(buf, pipeline.Params{Mode: pipeline.ModeFloyd, ColorMode: effect.ColorCyan}))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/process", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp worker.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, worker.TypeProcessed, resp.Type)
	require.NotNil(t, resp.ImageData)
	assert.Equal(t, []byte{0, 120, 120, 255}, resp.ImageData.Data)
}

func TestHandleProcessErrorResponse(t *testing.T) {
	s := newTestServer(t)

	body := `{"type":"process","width":3,"height":3,"data":"AAAA","params":{"mode":"dither-bayer"}}`
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(body)))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp worker.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, worker.TypeError, resp.Type)
	assert.Contains(t, resp.Error, "does not match dimensions")
}

func TestHandleProcessBadJSON(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/process", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleProcessImage(t *testing.T) {
	s := newTestServer(t)

	var in bytes.Buffer
	require.NoError(t, png.Encode(&in, gray(8, 8, 128)))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/process.bmp?pixelSize=2&colorMode=blue", &in)
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/bmp", rec.Header().Get("Content-Type"))

	img, err := bmp.Decode(rec.Body)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds())

	_, _, b, _ := img.At(0, 0).RGBA()
	assert.EqualValues(t, 0xffff, b)
	_, _, b, _ = img.At(1, 0).RGBA()
	assert.EqualValues(t, 0, b)
}

func TestHandleProcessImageBadParams(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/process.png?threshold=high", strings.NewReader("")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParamsFromQuery(t *testing.T) {
	q := url.Values{}
	q.Set("mode", "halftone")
	q.Set("threshold", "96.5")
	q.Set("pixelSize", "4")
	q.Set("colorMode", "custom")
	q.Set("customWhite", "FFFFFF")
	q.Set("customGrey", "808080")
	q.Set("customBlack", "000000")

	p, err := ParamsFromQuery(q)
	require.NoError(t, err)
	assert.Equal(t, pipeline.Params{
		Mode:        pipeline.ModeHalftone,
		Threshold:   96.5,
		PixelSize:   4,
		ColorMode:   effect.ColorCustom,
		CustomWhite: "FFFFFF",
		CustomGrey:  "808080",
		CustomBlack: "000000",
	}, p)

	p, err = ParamsFromQuery(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, pipeline.DefaultParams(), p)

	_, err = ParamsFromQuery(url.Values{"pixelSize": {"two"}})
	require.Error(t, err)
}

type fakeSnapshotter struct {
	img image.Image
	err error
}

func (f fakeSnapshotter) CaptureURL(ctx context.Context, url string) (image.Image, error) {
	return f.img, f.err
}

func TestSnapshotNotReady(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/snapshot.bmp", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBackgroundRenderer(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.StartBackgroundRenderer(ctx, fakeSnapshotter{img: gray(16, 10, 200)}, "http://example.invalid", time.Hour)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/snapshot.bmp", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Last-Modified"))

	img, err := bmp.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 10), img.Bounds())
}

func TestBackgroundRendererCaptureError(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.StartBackgroundRenderer(ctx, fakeSnapshotter{err: errors.New("no browser")}, "http://example.invalid", time.Hour)

	assert.Nil(t, s.snapshot.Get().data)
}

func TestSnapshotCacheServesLatest(t *testing.T) {
	var c snapshotCache
	c.Set([]byte("first"), "image/bmp")
	c.Set([]byte("second"), "image/bmp")

	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/snapshot.bmp", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "second", rec.Body.String())
	assert.Equal(t, "image/bmp", rec.Header().Get("Content-Type"))
	assert.Equal(t, `"2"`, rec.Header().Get("ETag"))
	assert.Equal(t, 2, c.Get().renders)
}
