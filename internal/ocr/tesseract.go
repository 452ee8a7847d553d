package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strconv"

	"github.com/otiai10/gosseract/v2"

	"github.com/Mugil-an/carcheckmate/internal/model"
)

// Tesseract implements Engine using the gosseract client. A fresh client
// is created per page; gosseract clients are not safe for concurrent use
// and per-page setup cost is negligible next to recognition itself.
type Tesseract struct {
	psm       int
	dpi       int
	languages []string
}

// NewTesseract constructs a Tesseract-backed engine from the OCR config.
func NewTesseract(cfg model.OCRConfig) *Tesseract {
	return &Tesseract{
		psm:       cfg.PageSegMode,
		dpi:       cfg.DPI,
		languages: cfg.Languages,
	}
}

// Name identifies the engine.
func (t *Tesseract) Name() string { return "tesseract" }

// Recognize runs page preprocessing and recognition, returning the page
// text and the word-level token table with layout grouping identifiers.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (Page, error) {
	select {
	case <-ctx.Done():
		return Page{}, ctx.Err()
	default:
	}

	prepared := Preprocess(img)

	var buf bytes.Buffer
	if err := png.Encode(&buf, prepared); err != nil {
		return Page{}, fmt.Errorf("encode page image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return Page{}, fmt.Errorf("set image: %w", err)
	}
	if len(t.languages) > 0 {
		if err := client.SetLanguage(t.languages...); err != nil {
			return Page{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(t.psm)); err != nil {
		return Page{}, fmt.Errorf("set page segmentation mode: %w", err)
	}
	if t.dpi > 0 {
		if err := client.SetVariable("user_defined_dpi", strconv.Itoa(t.dpi)); err != nil {
			return Page{}, fmt.Errorf("set dpi: %w", err)
		}
	}

	text, err := client.Text()
	if err != nil {
		return Page{}, fmt.Errorf("recognize text: %w", err)
	}

	boxes, err := client.GetBoundingBoxesVerbose()
	if err != nil {
		return Page{}, fmt.Errorf("read word boxes: %w", err)
	}

	page := Page{Text: text}
	for _, b := range boxes {
		page.Tokens.Append(model.Token{
			Text:     b.Word,
			Left:     b.Box.Min.X,
			Top:      b.Box.Min.Y,
			Width:    b.Box.Dx(),
			Height:   b.Box.Dy(),
			BlockNum: b.BlockNum,
			ParNum:   b.ParNum,
			LineNum:  b.LineNum,
		})
	}
	return page, nil
}
