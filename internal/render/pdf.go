// Package render emits a laid-out invoice as a PDF document using the core
// PDF fonts.
package render

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"invoicer/internal/asset"
	"invoicer/internal/layout"
)

// RenderError reports a failure while serializing the document.
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeEmptyDocument = "EMPTY_DOCUMENT"
	ErrCodeImage         = "IMAGE_FAILED"
	ErrCodeRenderFailed  = "RENDER_FAILED"
)

func newRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

// ---------------------------------------------------------------------------
// PDF Generation
// ---------------------------------------------------------------------------

// Render draws every page of doc and returns the PDF bytes. Images referenced
// by the layout must be passed in; unknown image names are an error. The
// output depends only on its input.
func Render(doc *layout.Document, images ...*asset.Image) ([]byte, error) {
	if doc == nil || len(doc.Pages) == 0 {
		return nil, newRenderError(ErrCodeEmptyDocument, "document has no pages", nil)
	}

	g := doc.Geometry
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: g.Width, Ht: g.Height},
	})
	pdf.SetMargins(g.MarginLeft, g.MarginTop, g.MarginRight)
	pdf.SetAutoPageBreak(false, g.MarginBottom)
	pdf.SetCellMargin(0)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(doc.Meta.Created)
	pdf.SetTitle(doc.Meta.Title, true)
	pdf.SetSubject(doc.Meta.Subject, true)
	pdf.SetAuthor(doc.Meta.Author, true)
	pdf.SetCreator("invoicer", false)

	registered := make(map[string]bool, len(images))
	for _, img := range images {
		if img == nil {
			continue
		}
		pdf.RegisterImageOptionsReader(img.Name, fpdf.ImageOptions{ImageType: img.Type}, bytes.NewReader(img.Data))
		if pdf.Err() {
			return nil, newRenderError(ErrCodeImage, fmt.Sprintf("failed to register image %q", img.Name), pdf.Error())
		}
		registered[img.Name] = true
	}

	for _, page := range doc.Pages {
		pdf.AddPage()
		for _, el := range page.Elements {
			switch e := el.(type) {
			case layout.Text:
				drawText(pdf, e)
			case layout.Fill:
				pdf.SetFillColor(e.Color.R, e.Color.G, e.Color.B)
				pdf.Rect(e.X, e.Y, e.W, e.H, "F")
			case layout.Rule:
				pdf.SetDrawColor(e.Color.R, e.Color.G, e.Color.B)
				pdf.SetLineWidth(e.Width)
				pdf.Line(e.X, e.Y, e.X+e.W, e.Y)
			case layout.Image:
				if !registered[e.Name] {
					return nil, newRenderError(ErrCodeImage, fmt.Sprintf("image %q is not registered", e.Name), nil)
				}
				pdf.ImageOptions(e.Name, e.X, e.Y, e.W, e.H, false, fpdf.ImageOptions{}, 0, "")
			default:
				return nil, newRenderError(ErrCodeRenderFailed, fmt.Sprintf("unsupported element %T on page %d", el, page.Number), nil)
			}
		}
		if pdf.Err() {
			return nil, newRenderError(ErrCodeRenderFailed, fmt.Sprintf("failed to draw page %d", page.Number), pdf.Error())
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, newRenderError(ErrCodeRenderFailed, "failed to serialize PDF", err)
	}
	return buf.Bytes(), nil
}

func drawText(pdf *fpdf.Fpdf, t layout.Text) {
	if t.Value == "" {
		return
	}
	pdf.SetFont(t.Font.Family, t.Font.Style, t.Font.Size)
	pdf.SetTextColor(t.Color.R, t.Color.G, t.Color.B)
	pdf.SetXY(t.X, t.Y)
	pdf.CellFormat(t.W, t.H, encodeText(t.Value), "", 0, string(t.Align), false, 0, "")
}
