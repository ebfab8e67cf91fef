// Package export turns a captured invoice into a finished PDF artifact.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"invoicer/internal/asset"
	"invoicer/internal/invoice"
	"invoicer/internal/layout"
	"invoicer/internal/render"
)

const logoName = "logo"

// Artifact is one exported invoice.
type Artifact struct {
	Name  string // download file name
	Data  []byte
	Pages int
}

// Save writes the artifact into dir and returns its path. The file appears
// under its final name only once it is complete.
func (a *Artifact) Save(dir string) (string, error) {
	if a.Name == "" || a.Name == "." || a.Name == ".." || filepath.Base(a.Name) != a.Name {
		return "", fmt.Errorf("invalid artifact name %q", a.Name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".invoice-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(a.Data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write PDF: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write PDF: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write PDF: %w", err)
	}

	path := filepath.Join(dir, a.Name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move PDF into place: %w", err)
	}
	return path, nil
}

// Exporter holds everything an export needs besides the invoice itself.
type Exporter struct {
	Theme    layout.Theme
	Business layout.Business
	Currency string
	LogoRef  string
	Assets   *asset.Loader
	Logger   *zap.Logger
}

// Export lays out and renders doc. The invoice is snapshotted first so the
// caller may keep editing its copy. A missing logo is not an error; layout
// and render failures are.
func (e *Exporter) Export(ctx context.Context, doc invoice.Document) (*Artifact, error) {
	log := e.Logger
	if log == nil {
		log = zap.NewNop()
	}
	snap := doc.Snapshot()
	log = log.With(zap.String("invoice", snap.Number))

	var (
		logo   *layout.Logo
		images []*asset.Image
	)
	if e.LogoRef != "" && e.Assets != nil {
		if img := e.Assets.LoadOptional(ctx, logoName, e.LogoRef); img != nil {
			logo = &layout.Logo{Name: img.Name, Width: img.Width, Height: img.Height}
			images = append(images, img)
		}
	}

	cp := layout.Composer{Theme: e.Theme, Metrics: render.NewMetrics()}
	laid, err := cp.Compose(layout.Input{
		Invoice:  snap,
		Business: e.Business,
		Logo:     logo,
		Currency: e.Currency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to lay out invoice %s: %w", snap.Number, err)
	}

	data, err := render.Render(laid, images...)
	if err != nil {
		return nil, fmt.Errorf("failed to render invoice %s: %w", snap.Number, err)
	}

	log.Info("invoice exported",
		zap.Int("items", len(snap.Items)),
		zap.Int("pages", len(laid.Pages)),
		zap.Int("bytes", len(data)),
		zap.Bool("logo", logo != nil),
	)
	return &Artifact{
		Name:  invoice.FileName(snap.Number),
		Data:  data,
		Pages: len(laid.Pages),
	}, nil
}
