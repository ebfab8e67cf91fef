// Package asset fetches the images an invoice embeds, currently the business
// logo, from a local path or an http(s) URL.
package asset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxBytes caps the size of a fetched image.
const DefaultMaxBytes = 8 << 20

// DefaultMaxPixels caps the decoded size of an image (width x height).
const DefaultMaxPixels = 25_000_000

// ErrTooLarge is returned when an image exceeds the loader's size cap.
var ErrTooLarge = errors.New("image exceeds size limit")

// Image is a decoded picture re-encoded as PNG, ready for embedding.
type Image struct {
	Name   string
	Type   string // image type understood by the PDF writer
	Data   []byte
	Width  int // pixels
	Height int // pixels
}

// Loader resolves image references.
type Loader struct {
	Client    *http.Client
	Logger    *zap.Logger
	MaxBytes  int64
	MaxPixels int
}

// NewLoader returns a loader with a bounded HTTP client.
func NewLoader(log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		Client:    &http.Client{Timeout: 10 * time.Second},
		Logger:    log,
		MaxBytes:  DefaultMaxBytes,
		MaxPixels: DefaultMaxPixels,
	}
}

// Load reads and decodes the image at ref. ref is an http(s) URL, a file://
// URL or a plain path. Any format the image package can decode is accepted;
// the result is always PNG.
func (l *Loader) Load(ctx context.Context, name, ref string) (*Image, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New("empty image reference")
	}

	raw, err := l.read(ctx, ref)
	if err != nil {
		return nil, err
	}

	// the header alone tells the pixel size; refuse before allocating it
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", ref, err)
	}
	if err := l.checkPixels(cfg.Width, cfg.Height); err != nil {
		return nil, fmt.Errorf("%s: %w", ref, err)
	}

	img, kind, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", ref, err)
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("image %s is empty", ref)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image %s: %w", ref, err)
	}

	l.logger().Debug("image loaded",
		zap.String("ref", ref),
		zap.String("format", kind),
		zap.Int("width", bounds.Dx()),
		zap.Int("height", bounds.Dy()),
	)
	return &Image{
		Name:   name,
		Type:   "PNG",
		Data:   buf.Bytes(),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// LoadOptional is Load for decorative images: failures are logged and yield
// nil so the caller can carry on without the image.
func (l *Loader) LoadOptional(ctx context.Context, name, ref string) *Image {
	if strings.TrimSpace(ref) == "" {
		return nil
	}
	img, err := l.Load(ctx, name, ref)
	if err != nil {
		l.logger().Warn("image unavailable, continuing without it",
			zap.String("ref", ref),
			zap.Error(err),
		)
		return nil
	}
	return img
}

func (l *Loader) read(ctx context.Context, ref string) ([]byte, error) {
	u, err := url.Parse(ref)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			return l.fetch(ctx, ref)
		case "file":
			return l.readFile(u.Path)
		}
	}
	return l.readFile(ref)
}

func (l *Loader) fetch(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", ref, err)
	}

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch %s: status %s", ref, resp.Status)
	}
	return l.limited(resp.Body, ref)
}

func (l *Loader) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()
	return l.limited(f, path)
}

func (l *Loader) limited(r io.Reader, ref string) ([]byte, error) {
	limit := l.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ref, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s: %w (%d bytes)", ref, ErrTooLarge, limit)
	}
	return data, nil
}

func (l *Loader) checkPixels(w, h int) error {
	limit := l.MaxPixels
	if limit <= 0 {
		limit = DefaultMaxPixels
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("invalid image size %dx%d", w, h)
	}
	if w > limit/h {
		return fmt.Errorf("%w (%dx%d pixels, limit %d)", ErrTooLarge, w, h, limit)
	}
	return nil
}

func (l *Loader) logger() *zap.Logger {
	if l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger
}
