package detection

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 60, B: 40, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solidImage(w, h)))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solidImage(w, h), nil))
	return buf.Bytes()
}

func TestPrepare_DownscalesLargeImages(t *testing.T) {
	p := NewPreparer(config.ImageConfig{MaxSizeBytes: 10 << 20, MaxDimension: 100})

	out, err := p.Prepare(encodePNG(t, 400, 200))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", out.ContentType)

	img, format, err := image.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestPrepare_KeepsSmallJPEG(t *testing.T) {
	p := NewPreparer(config.ImageConfig{MaxDimension: 100})
	data := encodeJPEG(t, 40, 40)

	out, err := p.Prepare(data)
	require.NoError(t, err)
	assert.Equal(t, data, out.Data)
}

func TestPrepare_PassesThroughUndecodable(t *testing.T) {
	p := NewPreparer(config.ImageConfig{MaxDimension: 100})
	data := []byte("definitely not an image")

	out, err := p.Prepare(data)
	require.NoError(t, err)
	assert.Equal(t, data, out.Data)
	assert.Equal(t, "upload", out.FileName)
}

func TestPrepare_Rejects(t *testing.T) {
	p := NewPreparer(config.ImageConfig{MaxSizeBytes: 10})

	_, err := p.Prepare(nil)
	assert.True(t, errors.Is(err, common.ErrInvalidImageFormat))

	_, err = p.Prepare(bytes.Repeat([]byte("x"), 11))
	assert.True(t, errors.Is(err, common.ErrInvalidImageSize))
}

func newRemote(t *testing.T, handler http.HandlerFunc) *RemoteDetector {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRemoteDetector(
		config.DetectionConfig{BaseURL: srv.URL, Timeout: 2 * time.Second},
		NewPreparer(config.ImageConfig{MaxSizeBytes: 10 << 20, MaxDimension: 1024}),
	)
}

func TestRemoteDetector_Success(t *testing.T) {
	var uploaded []byte
	d := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/detect_items", r.URL.Path)
		if file, _, err := r.FormFile("file"); assert.NoError(t, err) {
			uploaded, _ = io.ReadAll(file)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"detected_items":{"ingredients":["tomatoes"," onions ","","tomatoes","paneer"]}}`))
	})

	img := encodeJPEG(t, 32, 32)
	items, err := d.Detect(context.Background(), img)

	require.NoError(t, err)
	assert.Equal(t, []string{"tomatoes", "onions", "paneer"}, items)
	assert.Equal(t, img, uploaded)
}

func TestRemoteDetector_ErrorBody(t *testing.T) {
	d := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"no file uploaded"}`))
	})

	items, err := d.Detect(context.Background(), encodeJPEG(t, 8, 8))

	require.Error(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
	assert.True(t, errors.Is(err, common.ErrDetectionService))
	assert.Contains(t, err.Error(), "no file uploaded")
}

func TestRemoteDetector_StatusWithoutBody(t *testing.T) {
	d := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	items, err := d.Detect(context.Background(), encodeJPEG(t, 8, 8))

	require.Error(t, err)
	assert.Empty(t, items)
	assert.Contains(t, err.Error(), "status: 503")
}

func TestRemoteDetector_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	d := NewRemoteDetector(config.DetectionConfig{BaseURL: base, Timeout: time.Second},
		NewPreparer(config.ImageConfig{}))
	items, err := d.Detect(context.Background(), encodeJPEG(t, 8, 8))

	require.Error(t, err)
	assert.Empty(t, items)
}

func TestSimulatedDetector(t *testing.T) {
	d := NewSimulatedDetectorWithSeed(42)
	vocab := map[string]bool{}
	for _, v := range simulatedVocabulary {
		vocab[v] = true
	}

	for i := 0; i < 50; i++ {
		items, err := d.Detect(context.Background(), nil)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(items), 3)
		assert.LessOrEqual(t, len(items), 5)

		seen := map[string]bool{}
		for _, item := range items {
			assert.True(t, vocab[item], item)
			assert.False(t, seen[item], "duplicate %s", item)
			seen[item] = true
		}
	}
}

func TestNew_SelectsImplementation(t *testing.T) {
	assert.IsType(t, &SimulatedDetector{}, New(config.DetectionConfig{Mode: config.DetectionSimulated}, config.ImageConfig{}))
	assert.IsType(t, &RemoteDetector{}, New(config.DetectionConfig{Mode: config.DetectionRemote, BaseURL: "http://x"}, config.ImageConfig{}))
}
