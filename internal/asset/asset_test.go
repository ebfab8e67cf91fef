package asset

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 31, G: 78, B: 121, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))
	return buf.Bytes()
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logo.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, 40, 10), 0o644))

	l := NewLoader(nil)

	tests := []struct {
		name string
		ref  string
	}{
		{"plain path", path},
		{"file url", "file://" + path},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := l.Load(context.Background(), "logo", tt.ref)
			require.NoError(t, err)
			assert.Equal(t, "logo", img.Name)
			assert.Equal(t, "PNG", img.Type)
			assert.Equal(t, 40, img.Width)
			assert.Equal(t, 10, img.Height)
			assert.Equal(t, []byte("\x89PNG"), img.Data[:4])
		})
	}
}

func TestLoad_JPEGIsReencoded(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(16, 8), nil))
	path := filepath.Join(t.TempDir(), "logo.jpg")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	img, err := NewLoader(nil).Load(context.Background(), "logo", path)
	require.NoError(t, err)
	assert.Equal(t, "PNG", img.Type)
	assert.Equal(t, []byte("\x89PNG"), img.Data[:4])
	assert.Equal(t, 16, img.Width)
}

func TestLoad_HTTP(t *testing.T) {
	data := pngBytes(t, 20, 20)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/logo.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	l := NewLoader(nil)
	l.Client = srv.Client()

	img, err := l.Load(context.Background(), "logo", srv.URL+"/logo.png")
	require.NoError(t, err)
	assert.Equal(t, 20, img.Width)

	_, err = l.Load(context.Background(), "logo", srv.URL+"/missing.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	junk := filepath.Join(dir, "junk.png")
	require.NoError(t, os.WriteFile(junk, []byte("not an image"), 0o644))
	big := filepath.Join(dir, "big.png")
	require.NoError(t, os.WriteFile(big, pngBytes(t, 64, 64), 0o644))

	l := NewLoader(nil)

	_, err := l.Load(context.Background(), "logo", "")
	assert.Error(t, err)

	_, err = l.Load(context.Background(), "logo", filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = l.Load(context.Background(), "logo", junk)
	assert.ErrorContains(t, err, "failed to decode")

	l.MaxBytes = 16
	_, err = l.Load(context.Background(), "logo", big)
	assert.ErrorIs(t, err, ErrTooLarge)

	l.MaxBytes = DefaultMaxBytes
	l.MaxPixels = 64*64 - 1
	_, err = l.Load(context.Background(), "logo", big)
	assert.ErrorIs(t, err, ErrTooLarge)
}

// hugePNG returns a tiny PNG whose header claims w x h pixels.
func hugePNG(t *testing.T, w, h uint32) []byte {
	t.Helper()
	data := pngBytes(t, 1, 1)
	// signature (8), IHDR length (4), "IHDR" (4), width (4), height (4)
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestLoad_RejectsHugeDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bomb.png")
	require.NoError(t, os.WriteFile(path, hugePNG(t, 100000, 100000), 0o644))

	core, logs := observer.New(zapcore.WarnLevel)
	l := NewLoader(zap.New(core))

	_, err := l.Load(context.Background(), "logo", path)
	assert.ErrorIs(t, err, ErrTooLarge)

	assert.Nil(t, l.LoadOptional(context.Background(), "logo", path))
	assert.Equal(t, 1, logs.Len())
}

func TestLoadOptional_LogsAndReturnsNil(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	l := NewLoader(zap.New(core))

	img := l.LoadOptional(context.Background(), "logo", filepath.Join(t.TempDir(), "nope.png"))
	assert.Nil(t, img)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "image unavailable, continuing without it", logs.All()[0].Message)

	assert.Nil(t, l.LoadOptional(context.Background(), "logo", "  "))
	assert.Equal(t, 1, logs.Len())
}
