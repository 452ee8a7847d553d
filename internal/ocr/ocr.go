// Package ocr is the recognition boundary: a small engine contract plus
// the Tesseract-backed default implementation, image preprocessing, and
// the PDF rasterization collaborator. The interfaces stay transport-
// agnostic so engines can be local binaries or remote APIs without
// leaking provider concerns into the pipeline.
package ocr

import (
	"context"
	"image"

	"github.com/Mugil-an/carcheckmate/internal/model"
)

// Page is the recognition output for one page: the full text string and
// the positional token table the line assembler consumes.
type Page struct {
	Text   string
	Tokens model.TokenTable
}

// Engine is the OCR provider contract: one page image in, one Page out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img image.Image) (Page, error)
}

// Rasterizer turns a multi-page input (PDF) into page images. Single
// image files bypass this collaborator entirely.
type Rasterizer interface {
	Rasterize(ctx context.Context, path string, dpi int) ([]image.Image, error)
}
