package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"invoicer/internal/asset"
	"invoicer/internal/invoice"
	"invoicer/internal/layout"
)

func sample() invoice.Document {
	return invoice.Document{
		Number:    "INV-007",
		IssueDate: invoice.Day(2026, 10, 16),
		DueDate:   invoice.Day(2026, 10, 30),
		BillTo:    invoice.Party{Name: "Acme Corp", Address: "Main Street 1", ClientID: "C-42"},
		Items: []invoice.LineItem{{
			Service:     "DEV",
			Date:        invoice.Day(2026, 10, 1),
			Description: "Backend work",
			Hours:       decimal.NewFromInt(3),
			Rate:        decimal.RequireFromString("50.00"),
		}},
	}
}

func newExporter(log *zap.Logger) *Exporter {
	return &Exporter{
		Theme:    layout.DefaultTheme(),
		Business: layout.Business{Name: "Example Consulting", Email: "billing@example.com"},
		Currency: "EUR",
		Assets:   asset.NewLoader(log),
		Logger:   log,
	}
}

func TestExport(t *testing.T) {
	art, err := newExporter(nil).Export(context.Background(), sample())
	require.NoError(t, err)

	assert.Equal(t, "invoice-inv-007.pdf", art.Name)
	assert.Equal(t, 1, art.Pages)
	assert.True(t, bytes.HasPrefix(art.Data, []byte("%PDF")))
}

func TestExport_Idempotent(t *testing.T) {
	e := newExporter(nil)
	first, err := e.Export(context.Background(), sample())
	require.NoError(t, err)
	second, err := e.Export(context.Background(), sample())
	require.NoError(t, err)
	assert.Equal(t, first.Data, second.Data)
}

func TestExport_InputUntouched(t *testing.T) {
	doc := sample()
	doc.Notes = "  "
	_, err := newExporter(nil).Export(context.Background(), doc)
	require.NoError(t, err)

	want := sample()
	want.Notes = "  "
	assert.Equal(t, want, doc)
}

func TestExport_ContentChangesOutput(t *testing.T) {
	e := newExporter(nil)
	before, err := e.Export(context.Background(), sample())
	require.NoError(t, err)

	doc := sample()
	doc.Items[0].Hours = decimal.NewFromInt(4)
	after, err := e.Export(context.Background(), doc)
	require.NoError(t, err)
	assert.NotEqual(t, before.Data, after.Data)
}

func TestExport_Logo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 40, 20))))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	e := newExporter(nil)
	e.LogoRef = srv.URL + "/logo.png"
	withLogo, err := e.Export(context.Background(), sample())
	require.NoError(t, err)
	assert.True(t, bytes.Contains(withLogo.Data, []byte("/Subtype /Image")))
}

func TestExport_UnreachableLogo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	core, logs := observer.New(zapcore.InfoLevel)
	e := newExporter(zap.New(core))
	e.LogoRef = srv.URL + "/logo.png"

	art, err := e.Export(context.Background(), sample())
	require.NoError(t, err)
	assert.False(t, bytes.Contains(art.Data, []byte("/Subtype /Image")))
	assert.Equal(t, 1, logs.FilterMessage("image unavailable, continuing without it").Len())
	assert.Equal(t, 1, logs.FilterMessage("invoice exported").Len())
}

func TestExport_LayoutFailure(t *testing.T) {
	e := newExporter(nil)
	e.Theme.Geometry.MarginLeft = 200

	_, err := e.Export(context.Background(), sample())
	require.Error(t, err)
	assert.True(t, errors.Is(err, layout.ErrLayout))
}

func TestArtifactSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	art := &Artifact{Name: "invoice-inv-007.pdf", Data: []byte("%PDF-1.3 test")}

	path, err := art.Save(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "invoice-inv-007.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, art.Data, data)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestArtifactSave_StaysInDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "out")

	doc := sample()
	doc.Number = "x/../../escaped"
	art, err := newExporter(nil).Export(context.Background(), doc)
	require.NoError(t, err)

	path, err := art.Save(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	doc.Number = "2026/001"
	art, err = newExporter(nil).Export(context.Background(), doc)
	require.NoError(t, err)
	path, err = art.Save(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "invoice-2026-001.pdf"), path)
}

func TestArtifactSave_RejectsPathNames(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"", "..", "../evil.pdf", "sub/inv.pdf"} {
		_, err := (&Artifact{Name: name, Data: []byte("%PDF")}).Save(dir)
		assert.Error(t, err, name)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
